package stats

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/thunderoad/setlistd/src/features/metrics"
	"github.com/thunderoad/setlistd/src/setlist"
)

// Service is the statistics engine. It reads the catalog and maintains the
// derived fields (songs.times_played, songs.rarity_level,
// shows.song_count); it never touches raw data.
type Service struct {
	catalog setlist.Catalog
}

// NewService creates a new stats service.
func NewService(catalog setlist.Catalog) *Service {
	return &Service{catalog: catalog}
}

// ScopedSongStats is one row of a scoped statistics result.
type ScopedSongStats struct {
	Title       string `json:"title"`
	TimesPlayed int    `json:"times_played"`
	RarityLevel int    `json:"rarity_level"`
}

// RecencyRow is one song in a ranked-recency result. Dates holds the most
// recent qualifying show dates, rank 1 first, at most K entries; a song
// played fewer than K times just has fewer entries.
type RecencyRow struct {
	Title     string      `json:"title"`
	Album     string      `json:"album,omitempty"`
	IsOuttake bool        `json:"is_outtake"`
	Dates     []time.Time `json:"dates"`
}

// ComputeGlobalStatistics recomputes and persists times_played and
// rarity_level for every song, over the full show population. Two passes
// in fixed order, each its own transaction: play counts first, rarity
// second. The whole thing is idempotent; rerun it after any change to the
// performance data (the min/max normalization cannot be updated
// incrementally).
func (s *Service) ComputeGlobalStatistics(ctx context.Context) error {
	start := time.Now()
	slog.Debug("ComputeGlobalStatistics service called")

	counts, err := s.catalog.GlobalPlayCounts(ctx)
	if err != nil {
		slog.Error("ComputeGlobalStatistics: counting failed", "error", err)
		return err
	}
	if err := s.catalog.SavePlayCounts(ctx, counts); err != nil {
		slog.Error("ComputeGlobalStatistics: saving play counts failed", "error", err)
		return err
	}

	levels := RarityLevels(counts)
	if err := s.catalog.SaveRarityLevels(ctx, levels); err != nil {
		slog.Error("ComputeGlobalStatistics: saving rarity levels failed", "error", err)
		return err
	}

	metrics.ObserveRecompute(time.Since(start))
	slog.Info("Global statistics recomputed", "songs", len(counts), "candidates", len(levels), "duration", time.Since(start).String())
	return nil
}

// RecomputeShowSongCounts refreshes shows.song_count. Independent of the
// song passes; callers run it after ComputeGlobalStatistics.
func (s *Service) RecomputeShowSongCounts(ctx context.Context) error {
	slog.Debug("RecomputeShowSongCounts service called")
	if err := s.catalog.UpdateShowSongCounts(ctx); err != nil {
		slog.Error("RecomputeShowSongCounts failed", "error", err)
		return err
	}
	return nil
}

// GetGlobalStatistics returns every song with its persisted derived
// fields.
func (s *Service) GetGlobalStatistics(ctx context.Context) ([]*setlist.Song, error) {
	slog.Debug("GetGlobalStatistics service called")
	songs, err := s.catalog.GetSongs(ctx)
	if err != nil {
		slog.Error("GetGlobalStatistics failed", "error", err)
		return nil, err
	}
	return songs, nil
}

// SongByTitle finds a song by title, trying the exact stored title first
// and falling back to normalized-key matching for variant spellings.
func (s *Service) SongByTitle(ctx context.Context, title string) (*setlist.Song, error) {
	song, err := s.catalog.GetSongByTitle(ctx, setlist.DisplayTitle(title))
	if err != nil {
		slog.Error("SongByTitle: lookup failed", "title", title, "error", err)
		return nil, err
	}
	if song != nil {
		return song, nil
	}

	songs, err := s.catalog.GetSongs(ctx)
	if err != nil {
		return nil, err
	}
	key := setlist.TitleKey(title)
	for _, candidate := range songs {
		if setlist.TitleKey(candidate.Title) == key {
			return candidate, nil
		}
	}
	return nil, fmt.Errorf("%w: song %q", setlist.ErrNotFound, title)
}

// ResolveShowSubset resolves a filter to the set of matching show ids.
// Pure read; an empty set means "no shows matched", not an error.
func (s *Service) ResolveShowSubset(ctx context.Context, filter setlist.ShowFilter) ([]string, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	ids, err := s.catalog.ResolveShows(ctx, filter)
	if err != nil {
		slog.Error("ResolveShowSubset failed", "error", err)
		return nil, err
	}
	slog.Debug("ResolveShowSubset completed", "count", len(ids))
	return ids, nil
}

// ComputeScopedStatistics computes play counts and rarity over the given
// shows only. Pure function, nothing is persisted. Songs never played
// within the scope produce no row; an empty scope yields an empty result.
// Rows come back most-played first, ties broken by title.
func (s *Service) ComputeScopedStatistics(ctx context.Context, showIDs []string) ([]ScopedSongStats, error) {
	slog.Debug("ComputeScopedStatistics service called", "shows", len(showIDs))
	if len(showIDs) == 0 {
		return []ScopedSongStats{}, nil
	}

	counts, err := s.catalog.ScopedPlayCounts(ctx, showIDs)
	if err != nil {
		slog.Error("ComputeScopedStatistics: counting failed", "error", err)
		return nil, err
	}
	if len(counts) == 0 {
		return []ScopedSongStats{}, nil
	}

	levels := RarityLevels(counts)

	titles, err := s.songTitles(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]ScopedSongStats, 0, len(counts))
	for id, count := range counts {
		rows = append(rows, ScopedSongStats{
			Title:       titles[id],
			TimesPlayed: count,
			RarityLevel: levels[id],
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TimesPlayed != rows[j].TimesPlayed {
			return rows[i].TimesPlayed > rows[j].TimesPlayed
		}
		return rows[i].Title < rows[j].Title
	})
	return rows, nil
}

// RankedRecency computes, for every song matching songFilter, the topK
// most recent dates it was played at shows matching showFilter. Shows
// sharing a date are tie-broken by show id so the ranking is reproducible.
// Songs are ordered ascending by their most recent date, never-played
// songs first, ties broken by title.
func (s *Service) RankedRecency(ctx context.Context, songFilter setlist.SongFilter, showFilter setlist.ShowFilter, topK int) ([]RecencyRow, error) {
	if err := songFilter.Validate(); err != nil {
		return nil, err
	}
	if err := showFilter.Validate(); err != nil {
		return nil, err
	}
	if topK < 1 {
		return nil, fmt.Errorf("%w: topK must be at least 1, got %d", setlist.ErrInvalidFilter, topK)
	}

	songs, err := s.catalog.FindSongs(ctx, songFilter)
	if err != nil {
		slog.Error("RankedRecency: song lookup failed", "error", err)
		return nil, err
	}
	if len(songs) == 0 {
		return []RecencyRow{}, nil
	}

	ids := make([]string, len(songs))
	for i, song := range songs {
		ids[i] = song.ID
	}
	played, err := s.catalog.PlayDates(ctx, ids, showFilter)
	if err != nil {
		slog.Error("RankedRecency: play date lookup failed", "error", err)
		return nil, err
	}

	rows := make([]RecencyRow, 0, len(songs))
	for _, song := range songs {
		dates := played[song.ID]
		sort.Slice(dates, func(i, j int) bool {
			if !dates[i].Date.Equal(dates[j].Date) {
				return dates[i].Date.After(dates[j].Date)
			}
			return dates[i].ShowID < dates[j].ShowID
		})
		if len(dates) > topK {
			dates = dates[:topK]
		}
		row := RecencyRow{Title: song.Title, Album: song.Album, IsOuttake: song.IsOuttake, Dates: []time.Time{}}
		for _, d := range dates {
			row.Dates = append(row.Dates, d.Date)
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if len(a.Dates) == 0 || len(b.Dates) == 0 {
			if len(a.Dates) == 0 && len(b.Dates) == 0 {
				return a.Title < b.Title
			}
			return len(a.Dates) == 0
		}
		if !a.Dates[0].Equal(b.Dates[0]) {
			return a.Dates[0].Before(b.Dates[0])
		}
		return a.Title < b.Title
	})
	return rows, nil
}

func (s *Service) songTitles(ctx context.Context) (map[string]string, error) {
	songs, err := s.catalog.GetSongs(ctx)
	if err != nil {
		slog.Error("songTitles: lookup failed", "error", err)
		return nil, err
	}
	titles := make(map[string]string, len(songs))
	for _, song := range songs {
		titles[song.ID] = song.Title
	}
	return titles, nil
}
