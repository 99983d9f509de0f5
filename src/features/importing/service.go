package importing

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/thunderoad/setlistd/src/features/config"
	"github.com/thunderoad/setlistd/src/features/stats"
	"github.com/thunderoad/setlistd/src/setlist"
)

// The three files an import directory must contain.
const (
	songsFile    = "songs.csv"
	showsFile    = "shows.csv"
	setlistsFile = "setlists.csv"
)

// Result summarizes one ingest run.
type Result struct {
	SongsAdded          int `json:"songs_added"`
	SongsSkipped        int `json:"songs_skipped"`
	ShowsAdded          int `json:"shows_added"`
	ShowsSkipped        int `json:"shows_skipped"`
	PerformancesAdded   int `json:"performances_added"`
	PerformancesSkipped int `json:"performances_skipped"`
}

// Service ingests setlist CSV exports into the catalog. An ingest run
// replaces the whole catalog; source row ids are remapped to fresh
// uuids on the way in.
type Service struct {
	catalog       setlist.Catalog
	configManager *config.Manager
	stats         *stats.Service
	watcher       Watcher
	eventChan     chan FileEvent

	mu        sync.Mutex
	importing bool
}

// NewService creates a new importing service.
func NewService(catalog setlist.Catalog, cfgManager *config.Manager, statsService *stats.Service) *Service {
	return &Service{
		catalog:       catalog,
		configManager: cfgManager,
		stats:         statsService,
		eventChan:     make(chan FileEvent, 10),
	}
}

// EventChannel exposes the channel the file watcher feeds.
func (s *Service) EventChannel() chan FileEvent {
	return s.eventChan
}

// SetWatcher attaches a file system watcher implementation.
func (s *Service) SetWatcher(w Watcher) {
	s.watcher = w
}

// StartWatcher begins watching the configured import path. New CSV
// drops trigger a full re-ingest after the watcher's debounce.
func (s *Service) StartWatcher(ctx context.Context) error {
	if s.watcher == nil {
		return fmt.Errorf("no watcher configured")
	}
	path := s.configManager.Get().Import.Path
	if err := s.watcher.Start(ctx, path); err != nil {
		slog.Error("Failed to start import watcher", "path", path, "error", err)
		return err
	}
	go s.handleEvents(ctx)
	return nil
}

// StopWatcher stops the file system watcher.
func (s *Service) StopWatcher() {
	if s.watcher != nil {
		s.watcher.Stop()
	}
}

func (s *Service) handleEvents(ctx context.Context) {
	for {
		select {
		case event := <-s.eventChan:
			slog.Info("Import watcher event received", "path", event.Path)
			if _, err := s.ImportDirectory(ctx, event.Path); err != nil {
				slog.Error("Watcher-triggered import failed", "path", event.Path, "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Run ingests the configured import path.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	return s.ImportDirectory(ctx, s.configManager.Get().Import.Path)
}

// ImportDirectory replaces the catalog with the contents of the three
// CSV files in dir, then recomputes statistics if so configured. Only
// one import runs at a time.
func (s *Service) ImportDirectory(ctx context.Context, dir string) (*Result, error) {
	s.mu.Lock()
	if s.importing {
		s.mu.Unlock()
		return nil, fmt.Errorf("an import is already running")
	}
	s.importing = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.importing = false
		s.mu.Unlock()
	}()

	slog.Info("Starting catalog import", "dir", dir)
	if err := s.catalog.Clear(ctx); err != nil {
		slog.Error("Failed to clear catalog before import", "error", err)
		return nil, err
	}

	result := &Result{}
	songIDs, err := s.importSongs(ctx, filepath.Join(dir, songsFile), result)
	if err != nil {
		return nil, err
	}
	showIDs, err := s.importShows(ctx, filepath.Join(dir, showsFile), result)
	if err != nil {
		return nil, err
	}
	if err := s.importSetlists(ctx, filepath.Join(dir, setlistsFile), songIDs, showIDs, result); err != nil {
		return nil, err
	}

	if s.configManager.Get().Import.RecomputeStats {
		if err := s.stats.ComputeGlobalStatistics(ctx); err != nil {
			return nil, err
		}
		if err := s.stats.RecomputeShowSongCounts(ctx); err != nil {
			return nil, err
		}
	}

	slog.Info("Catalog import finished",
		"songs", result.SongsAdded, "songs_skipped", result.SongsSkipped,
		"shows", result.ShowsAdded, "shows_skipped", result.ShowsSkipped,
		"performances", result.PerformancesAdded, "performances_skipped", result.PerformancesSkipped)
	return result, nil
}

// importSongs reads songs.csv (song_id, title, album, is_outtake) and
// returns a map from source id to stored uuid. Rows whose normalized
// title collides with an already imported song are skipped.
func (s *Service) importSongs(ctx context.Context, path string, result *Result) (map[string]string, error) {
	rows, err := readCSV(path, 4)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]string, len(rows))
	seenKeys := make(map[string]string, len(rows))
	for _, row := range rows {
		sourceID, rawTitle, album, rawOuttake := row[0], row[1], row[2], row[3]
		if strings.TrimSpace(rawTitle) == "" {
			slog.Warn("Skipping song row without title", "source_id", sourceID)
			result.SongsSkipped++
			continue
		}
		key := setlist.TitleKey(rawTitle)
		if priorID, dup := seenKeys[key]; dup {
			// Same song under a variant spelling; point the source id
			// at the song already stored.
			slog.Warn("Skipping duplicate song title", "title", rawTitle)
			ids[sourceID] = priorID
			result.SongsSkipped++
			continue
		}

		song := &setlist.Song{
			ID:        uuid.New().String(),
			Title:     setlist.DisplayTitle(rawTitle),
			Album:     album,
			IsOuttake: parseBool(rawOuttake),
		}
		if err := song.Validate(); err != nil {
			slog.Warn("Skipping invalid song row", "title", rawTitle, "error", err)
			result.SongsSkipped++
			continue
		}
		if err := s.catalog.AddSong(ctx, song); err != nil {
			slog.Error("Failed to add song", "title", song.Title, "error", err)
			return nil, err
		}
		seenKeys[key] = song.ID
		ids[sourceID] = song.ID
		result.SongsAdded++
	}
	return ids, nil
}

// importShows reads shows.csv (show_id, date, tour, venue, city,
// state_name, state_code, country_name, country_code, show_notes).
// Rows colliding on (date, venue) are skipped.
func (s *Service) importShows(ctx context.Context, path string, result *Result) (map[string]string, error) {
	rows, err := readCSV(path, 10)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]string, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		sourceID, rawDate := row[0], row[1]
		date, err := parseDate(rawDate)
		if err != nil {
			slog.Warn("Skipping show with unparseable date", "date", rawDate, "error", err)
			result.ShowsSkipped++
			continue
		}
		show := &setlist.Show{
			ID:          uuid.New().String(),
			Date:        date,
			Tour:        row[2],
			Venue:       row[3],
			City:        row[4],
			StateName:   row[5],
			StateCode:   row[6],
			CountryName: row[7],
			CountryCode: row[8],
			Notes:       row[9],
		}
		slot := rawDate + "|" + show.Venue
		if seen[slot] {
			slog.Warn("Skipping duplicate show slot", "date", rawDate, "venue", show.Venue)
			result.ShowsSkipped++
			continue
		}
		if err := show.Validate(); err != nil {
			slog.Warn("Skipping invalid show row", "date", rawDate, "error", err)
			result.ShowsSkipped++
			continue
		}
		if err := s.catalog.AddShow(ctx, show); err != nil {
			slog.Error("Failed to add show", "date", rawDate, "venue", show.Venue, "error", err)
			return nil, err
		}
		seen[slot] = true
		ids[sourceID] = show.ID
		result.ShowsAdded++
	}
	return ids, nil
}

// importSetlists reads setlists.csv (setlist_entry_id, show_id,
// song_id, position, notes). Entries referencing a skipped show or
// song are skipped too.
func (s *Service) importSetlists(ctx context.Context, path string, songIDs, showIDs map[string]string, result *Result) error {
	rows, err := readCSV(path, 5)
	if err != nil {
		return err
	}

	for _, row := range rows {
		showID, ok := showIDs[row[1]]
		if !ok {
			result.PerformancesSkipped++
			continue
		}
		songID, ok := songIDs[row[2]]
		if !ok {
			result.PerformancesSkipped++
			continue
		}
		position, err := strconv.Atoi(row[3])
		if err != nil {
			slog.Warn("Skipping setlist entry with bad position", "position", row[3], "error", err)
			result.PerformancesSkipped++
			continue
		}

		performance := &setlist.Performance{
			ShowID:   showID,
			SongID:   songID,
			Position: position,
			Notes:    row[4],
		}
		if err := performance.Validate(); err != nil {
			slog.Warn("Skipping invalid setlist entry", "show", row[1], "song", row[2], "error", err)
			result.PerformancesSkipped++
			continue
		}
		if err := s.catalog.AddPerformance(ctx, performance); err != nil {
			slog.Error("Failed to add performance", "show", row[1], "song", row[2], "error", err)
			return err
		}
		result.PerformancesAdded++
	}
	return nil
}

// readCSV reads all data rows of a CSV file with a header line,
// requiring at least minFields columns per row.
func readCSV(path string, minFields int) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", filepath.Base(path), err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	// Header line.
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot read %s: %w", filepath.Base(path), err)
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", filepath.Base(path), err)
		}
		if len(row) < minFields {
			slog.Warn("Skipping short CSV row", "file", filepath.Base(path), "fields", len(row))
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse(setlist.DateLayout, raw)
}

func parseBool(raw string) bool {
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return value
}
