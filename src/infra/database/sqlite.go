package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/thunderoad/setlistd/src/setlist"
)

// SqliteCatalog is a SQLite implementation of the Catalog interface.
type SqliteCatalog struct {
	db *sql.DB
}

// NewSqliteCatalog creates a new SqliteCatalog.
func NewSqliteCatalog(path string) (*SqliteCatalog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// Cascade deletes depend on FK enforcement being on.
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	return &SqliteCatalog{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS songs (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL UNIQUE,
			album TEXT,
			is_outtake BOOLEAN NOT NULL DEFAULT FALSE,
			times_played INTEGER NOT NULL DEFAULT 0,
			rarity_level INTEGER
		);

		CREATE TABLE IF NOT EXISTS shows (
			id TEXT PRIMARY KEY,
			date TEXT NOT NULL,
			tour TEXT,
			venue TEXT NOT NULL,
			city TEXT,
			state_name TEXT,
			state_code TEXT,
			country_name TEXT,
			country_code TEXT,
			notes TEXT,
			song_count INTEGER NOT NULL DEFAULT 0,
			UNIQUE(date, venue)
		);

		CREATE TABLE IF NOT EXISTS performances (
			id INTEGER PRIMARY KEY,
			show_id TEXT NOT NULL,
			song_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			notes TEXT,
			UNIQUE(show_id, song_id, position),
			FOREIGN KEY (show_id) REFERENCES shows(id) ON DELETE CASCADE,
			FOREIGN KEY (song_id) REFERENCES songs(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_performances_show ON performances(show_id);
		CREATE INDEX IF NOT EXISTS idx_performances_song ON performances(song_id);
		CREATE INDEX IF NOT EXISTS idx_shows_date ON shows(date);
	`)
	return err
}

// translateErr maps sqlite constraint errors onto the domain taxonomy.
func translateErr(err error) error {
	var serr sqlite3.Error
	if errors.As(err, &serr) && serr.Code == sqlite3.ErrConstraint {
		if serr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
			return fmt.Errorf("%w: %v", setlist.ErrReferenceNotFound, err)
		}
		return fmt.Errorf("%w: %v", setlist.ErrConstraintViolation, err)
	}
	return err
}

// AddSong adds a song to the catalog.
func (d *SqliteCatalog) AddSong(ctx context.Context, song *setlist.Song) error {
	if err := song.Validate(); err != nil {
		slog.Error("AddSong: validation failed", "error", err, "songID", song.ID)
		return err
	}

	var rarity sql.NullInt64
	if song.RarityLevel != nil {
		rarity = sql.NullInt64{Int64: int64(*song.RarityLevel), Valid: true}
	}
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO songs (id, title, album, is_outtake, times_played, rarity_level)
		VALUES (?, ?, NULLIF(?, ''), ?, ?, ?)
	`, song.ID, song.Title, song.Album, song.IsOuttake, song.TimesPlayed, rarity)
	if err != nil {
		return translateErr(err)
	}
	return nil
}

const songColumns = `id, title, COALESCE(album, ''), is_outtake, times_played, rarity_level`

func scanSong(row interface{ Scan(...any) error }) (*setlist.Song, error) {
	var song setlist.Song
	var rarity sql.NullInt64
	if err := row.Scan(&song.ID, &song.Title, &song.Album, &song.IsOuttake, &song.TimesPlayed, &rarity); err != nil {
		return nil, err
	}
	if rarity.Valid {
		level := int(rarity.Int64)
		song.RarityLevel = &level
	}
	return &song, nil
}

// GetSong returns a song by id.
func (d *SqliteCatalog) GetSong(ctx context.Context, id string) (*setlist.Song, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+songColumns+` FROM songs WHERE id = ?`, id)
	song, err := scanSong(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: song %s", setlist.ErrNotFound, id)
	}
	return song, err
}

// GetSongByTitle returns a song by its exact title, or nil if absent.
func (d *SqliteCatalog) GetSongByTitle(ctx context.Context, title string) (*setlist.Song, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+songColumns+` FROM songs WHERE title = ?`, title)
	song, err := scanSong(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return song, err
}

// GetSongs returns all songs ordered by title.
func (d *SqliteCatalog) GetSongs(ctx context.Context) ([]*setlist.Song, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT `+songColumns+` FROM songs ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var songs []*setlist.Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	return songs, rows.Err()
}

// FindSongs returns songs matching the filter, ordered by title.
func (d *SqliteCatalog) FindSongs(ctx context.Context, filter setlist.SongFilter) ([]*setlist.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE 1=1`
	var args []any
	if len(filter.Albums) > 0 {
		query += ` AND album IN (` + placeholders(len(filter.Albums)) + `)`
		for _, album := range filter.Albums {
			args = append(args, album)
		}
	}
	if filter.IsOuttake != nil {
		query += ` AND is_outtake = ?`
		args = append(args, *filter.IsOuttake)
	}
	if filter.TitleContains != "" {
		query += ` AND LOWER(title) LIKE '%' || LOWER(?) || '%'`
		args = append(args, filter.TitleContains)
	}
	query += ` ORDER BY title`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var songs []*setlist.Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	return songs, rows.Err()
}

// DeleteSong deletes a song; its performances go with it.
func (d *SqliteCatalog) DeleteSong(ctx context.Context, id string) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM songs WHERE id = ?`, id)
	if err != nil {
		return translateErr(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: song %s", setlist.ErrNotFound, id)
	}
	return nil
}

// AddShow adds a show to the catalog.
func (d *SqliteCatalog) AddShow(ctx context.Context, show *setlist.Show) error {
	if err := show.Validate(); err != nil {
		slog.Error("AddShow: validation failed", "error", err, "showID", show.ID)
		return err
	}

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO shows (id, date, tour, venue, city, state_name, state_code, country_name, country_code, notes, song_count)
		VALUES (?, ?, NULLIF(?, ''), ?, NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), ?)
	`, show.ID, show.Date.Format(setlist.DateLayout), show.Tour, show.Venue, show.City,
		show.StateName, show.StateCode, show.CountryName, show.CountryCode, show.Notes, show.SongCount)
	if err != nil {
		return translateErr(err)
	}
	return nil
}

const showColumns = `id, date, COALESCE(tour, ''), venue, COALESCE(city, ''), COALESCE(state_name, ''),
	COALESCE(state_code, ''), COALESCE(country_name, ''), COALESCE(country_code, ''), COALESCE(notes, ''), song_count`

func scanShow(row interface{ Scan(...any) error }) (*setlist.Show, error) {
	var show setlist.Show
	var date string
	if err := row.Scan(&show.ID, &date, &show.Tour, &show.Venue, &show.City, &show.StateName,
		&show.StateCode, &show.CountryName, &show.CountryCode, &show.Notes, &show.SongCount); err != nil {
		return nil, err
	}
	parsed, err := time.Parse(setlist.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("bad date %q for show %s: %w", date, show.ID, err)
	}
	show.Date = parsed
	return &show, nil
}

// GetShow returns a show by id.
func (d *SqliteCatalog) GetShow(ctx context.Context, id string) (*setlist.Show, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+showColumns+` FROM shows WHERE id = ?`, id)
	show, err := scanShow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: show %s", setlist.ErrNotFound, id)
	}
	return show, err
}

// GetShows returns all shows ordered by date.
func (d *SqliteCatalog) GetShows(ctx context.Context) ([]*setlist.Show, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT `+showColumns+` FROM shows ORDER BY date, venue`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shows []*setlist.Show
	for rows.Next() {
		show, err := scanShow(rows)
		if err != nil {
			return nil, err
		}
		shows = append(shows, show)
	}
	return shows, rows.Err()
}

// DeleteShow deletes a show; its performances go with it.
func (d *SqliteCatalog) DeleteShow(ctx context.Context, id string) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM shows WHERE id = ?`, id)
	if err != nil {
		return translateErr(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: show %s", setlist.ErrNotFound, id)
	}
	return nil
}

// AddPerformance records one song at one show at one position.
func (d *SqliteCatalog) AddPerformance(ctx context.Context, performance *setlist.Performance) error {
	if err := performance.Validate(); err != nil {
		slog.Error("AddPerformance: validation failed", "error", err, "showID", performance.ShowID, "songID", performance.SongID)
		return err
	}

	result, err := d.db.ExecContext(ctx, `
		INSERT INTO performances (show_id, song_id, position, notes)
		VALUES (?, ?, ?, NULLIF(?, ''))
	`, performance.ShowID, performance.SongID, performance.Position, performance.Notes)
	if err != nil {
		return translateErr(err)
	}
	performance.ID, _ = result.LastInsertId()
	return nil
}

// GetSetlist returns the performances of a show ordered by position.
func (d *SqliteCatalog) GetSetlist(ctx context.Context, showID string) ([]*setlist.Performance, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, show_id, song_id, position, COALESCE(notes, '')
		FROM performances WHERE show_id = ? ORDER BY position
	`, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var performances []*setlist.Performance
	for rows.Next() {
		var p setlist.Performance
		if err := rows.Scan(&p.ID, &p.ShowID, &p.SongID, &p.Position, &p.Notes); err != nil {
			return nil, err
		}
		performances = append(performances, &p)
	}
	return performances, rows.Err()
}

// showFilterClauses builds the WHERE fragment for a validated ShowFilter
// against the aliased shows table. Shared by ResolveShows and PlayDates so
// both read the same predicate semantics.
func showFilterClauses(filter setlist.ShowFilter, alias string) (string, []any) {
	var clauses []string
	var args []any
	col := func(name string) string { return alias + "." + name }

	if filter.DateFrom != "" {
		clauses = append(clauses, col("date")+` >= ?`)
		args = append(args, filter.DateFrom)
	}
	if filter.DateTo != "" {
		clauses = append(clauses, col("date")+` <= ?`)
		args = append(args, filter.DateTo)
	}
	if filter.City != "" {
		clauses = append(clauses, `LOWER(`+col("city")+`) = LOWER(?)`)
		args = append(args, filter.City)
	}
	if filter.State != "" {
		clauses = append(clauses, `(LOWER(`+col("state_name")+`) = LOWER(?) OR LOWER(`+col("state_code")+`) = LOWER(?))`)
		args = append(args, filter.State, filter.State)
	}
	if filter.Country != "" {
		clauses = append(clauses, `(LOWER(`+col("country_name")+`) = LOWER(?) OR LOWER(`+col("country_code")+`) = LOWER(?))`)
		args = append(args, filter.Country, filter.Country)
	}
	if filter.TourContains != "" {
		clauses = append(clauses, `LOWER(`+col("tour")+`) LIKE '%' || LOWER(?) || '%'`)
		args = append(args, filter.TourContains)
	}
	if len(filter.ExcludeTours) > 0 {
		clauses = append(clauses, `(`+col("tour")+` IS NULL OR `+col("tour")+` NOT IN (`+placeholders(len(filter.ExcludeTours))+`))`)
		for _, tour := range filter.ExcludeTours {
			args = append(args, tour)
		}
	}
	if filter.MinSongCount > 0 {
		clauses = append(clauses, col("song_count")+` >= ?`)
		args = append(args, filter.MinSongCount)
	}
	if filter.MaxSongCount > 0 {
		clauses = append(clauses, col("song_count")+` <= ?`)
		args = append(args, filter.MaxSongCount)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " AND " + strings.Join(clauses, " AND "), args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// ResolveShows resolves a filter to the set of matching show ids.
func (d *SqliteCatalog) ResolveShows(ctx context.Context, filter setlist.ShowFilter) ([]string, error) {
	where, args := showFilterClauses(filter, "s")
	rows, err := d.db.QueryContext(ctx, `SELECT s.id FROM shows s WHERE 1=1`+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GlobalPlayCounts returns a play count for every song, zero included.
func (d *SqliteCatalog) GlobalPlayCounts(ctx context.Context) (map[string]int, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT s.id, COUNT(p.id)
		FROM songs s
		LEFT JOIN performances p ON p.song_id = s.id
		GROUP BY s.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCounts(rows)
}

// ScopedPlayCounts counts performances per song within the given shows.
// Songs with no performance in the scope produce no entry.
func (d *SqliteCatalog) ScopedPlayCounts(ctx context.Context, showIDs []string) (map[string]int, error) {
	if len(showIDs) == 0 {
		return map[string]int{}, nil
	}

	args := make([]any, len(showIDs))
	for i, id := range showIDs {
		args[i] = id
	}
	rows, err := d.db.QueryContext(ctx, `
		SELECT song_id, COUNT(*)
		FROM performances
		WHERE show_id IN (`+placeholders(len(showIDs))+`)
		GROUP BY song_id
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCounts(rows)
}

func scanCounts(rows *sql.Rows) (map[string]int, error) {
	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, err
		}
		counts[id] = count
	}
	return counts, rows.Err()
}

// PlayDates returns, per song, the dates of matching shows it was played
// at. A reprise within one show contributes a single date.
func (d *SqliteCatalog) PlayDates(ctx context.Context, songIDs []string, filter setlist.ShowFilter) (map[string][]setlist.PlayDate, error) {
	if len(songIDs) == 0 {
		return map[string][]setlist.PlayDate{}, nil
	}

	where, filterArgs := showFilterClauses(filter, "sh")
	args := make([]any, 0, len(songIDs)+len(filterArgs))
	for _, id := range songIDs {
		args = append(args, id)
	}
	args = append(args, filterArgs...)

	rows, err := d.db.QueryContext(ctx, `
		SELECT DISTINCT p.song_id, sh.id, sh.date
		FROM performances p
		JOIN shows sh ON sh.id = p.show_id
		WHERE p.song_id IN (`+placeholders(len(songIDs))+`)`+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dates := make(map[string][]setlist.PlayDate)
	for rows.Next() {
		var songID, showID, date string
		if err := rows.Scan(&songID, &showID, &date); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(setlist.DateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("bad date %q for show %s: %w", date, showID, err)
		}
		dates[songID] = append(dates[songID], setlist.PlayDate{ShowID: showID, Date: parsed})
	}
	return dates, rows.Err()
}

// SavePlayCounts persists times_played for every song in one transaction.
// Songs absent from the map are reset to zero.
func (d *SqliteCatalog) SavePlayCounts(ctx context.Context, counts map[string]int) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE songs SET times_played = 0`); err != nil {
		return err
	}
	for id, count := range counts {
		if count == 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, `UPDATE songs SET times_played = ? WHERE id = ?`, count, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SaveRarityLevels persists rarity_level in one transaction. Songs absent
// from the map are reset to NULL, never zero.
func (d *SqliteCatalog) SaveRarityLevels(ctx context.Context, levels map[string]int) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE songs SET rarity_level = NULL`); err != nil {
		return err
	}
	for id, level := range levels {
		if _, err := tx.ExecContext(ctx, `UPDATE songs SET rarity_level = ? WHERE id = ?`, level, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// UpdateShowSongCounts recomputes shows.song_count from the performances
// table in one transaction.
func (d *SqliteCatalog) UpdateShowSongCounts(ctx context.Context) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE shows SET song_count = (
			SELECT COUNT(*) FROM performances p WHERE p.show_id = shows.id
		)
	`); err != nil {
		return err
	}
	return tx.Commit()
}

// CountSongs returns the number of songs in the catalog.
func (d *SqliteCatalog) CountSongs(ctx context.Context) (int, error) {
	return d.count(ctx, `SELECT COUNT(*) FROM songs`)
}

// CountShows returns the number of shows in the catalog.
func (d *SqliteCatalog) CountShows(ctx context.Context) (int, error) {
	return d.count(ctx, `SELECT COUNT(*) FROM shows`)
}

// CountPerformances returns the number of performances in the catalog.
func (d *SqliteCatalog) CountPerformances(ctx context.Context) (int, error) {
	return d.count(ctx, `SELECT COUNT(*) FROM performances`)
}

func (d *SqliteCatalog) count(ctx context.Context, query string) (int, error) {
	var count int
	if err := d.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Clear removes all rows from the three tables in one transaction.
func (d *SqliteCatalog) Clear(ctx context.Context) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"performances", "shows", "songs"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Close closes the underlying database handle.
func (d *SqliteCatalog) Close() error {
	return d.db.Close()
}
