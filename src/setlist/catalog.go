package setlist

import (
	"context"
	"time"
)

// PlayDate is one qualifying play of a song: the date of the show it was
// played at, plus the show id as a deterministic tie-break key for shows
// sharing a date.
type PlayDate struct {
	ShowID string
	Date   time.Time
}

// Catalog is the repository interface for the setlist domain. It is the
// sole writer of raw data; the stats passes write only the derived fields
// (songs.times_played, songs.rarity_level, shows.song_count).
type Catalog interface {
	// Song methods
	AddSong(ctx context.Context, song *Song) error
	GetSong(ctx context.Context, id string) (*Song, error)
	GetSongByTitle(ctx context.Context, title string) (*Song, error)
	GetSongs(ctx context.Context) ([]*Song, error)
	FindSongs(ctx context.Context, filter SongFilter) ([]*Song, error)
	DeleteSong(ctx context.Context, id string) error

	// Show methods
	AddShow(ctx context.Context, show *Show) error
	GetShow(ctx context.Context, id string) (*Show, error)
	GetShows(ctx context.Context) ([]*Show, error)
	DeleteShow(ctx context.Context, id string) error

	// Performance methods
	AddPerformance(ctx context.Context, performance *Performance) error
	GetSetlist(ctx context.Context, showID string) ([]*Performance, error)

	// ResolveShows resolves a filter to the set of matching show ids.
	// Pure read; an empty set is a valid result.
	ResolveShows(ctx context.Context, filter ShowFilter) ([]string, error)

	// GlobalPlayCounts returns a play count for every song in the
	// catalog, including songs never played (count 0).
	GlobalPlayCounts(ctx context.Context) (map[string]int, error)

	// ScopedPlayCounts counts performances per song restricted to the
	// given shows. Songs with no performance in the scope are absent.
	ScopedPlayCounts(ctx context.Context, showIDs []string) (map[string]int, error)

	// PlayDates returns, per song id, the qualifying play dates of the
	// given songs at shows matching the filter.
	PlayDates(ctx context.Context, songIDs []string, filter ShowFilter) (map[string][]PlayDate, error)

	// SavePlayCounts persists times_played for every listed song in one
	// transaction.
	SavePlayCounts(ctx context.Context, counts map[string]int) error

	// SaveRarityLevels persists rarity_level in one transaction: listed
	// songs get their score, every other song is reset to NULL.
	SaveRarityLevels(ctx context.Context, levels map[string]int) error

	// UpdateShowSongCounts recomputes shows.song_count from the
	// performances table in one transaction.
	UpdateShowSongCounts(ctx context.Context) error

	// Counts for metrics
	CountSongs(ctx context.Context) (int, error)
	CountShows(ctx context.Context) (int, error)
	CountPerformances(ctx context.Context) (int, error)

	// Clear removes all rows from the three tables. Used by re-ingestion.
	Clear(ctx context.Context) error
}
