package setlist

import (
	"fmt"
	"time"
)

// ShowFilter is a composable show predicate: all set fields must match
// (conjunction). Zero values mean "no constraint". Resolving a filter is a
// pure read; an empty result is a valid outcome, not an error.
type ShowFilter struct {
	DateFrom     string   `json:"date_from,omitempty"` // inclusive, YYYY-MM-DD
	DateTo       string   `json:"date_to,omitempty"`   // inclusive, YYYY-MM-DD
	City         string   `json:"city,omitempty"`
	State        string   `json:"state,omitempty"` // matches state name or code
	Country      string   `json:"country,omitempty"`
	TourContains string   `json:"tour_contains,omitempty"`
	ExcludeTours []string `json:"exclude_tours,omitempty"`
	MinSongCount int      `json:"min_song_count,omitempty"`
	MaxSongCount int      `json:"max_song_count,omitempty"` // 0 means no upper bound
}

// Validate checks the filter before it reaches the query layer. All
// failures wrap ErrInvalidFilter.
func (f *ShowFilter) Validate() error {
	var from, to time.Time
	var err error
	if f.DateFrom != "" {
		if from, err = time.Parse(DateLayout, f.DateFrom); err != nil {
			return fmt.Errorf("%w: date_from %q is not YYYY-MM-DD", ErrInvalidFilter, f.DateFrom)
		}
	}
	if f.DateTo != "" {
		if to, err = time.Parse(DateLayout, f.DateTo); err != nil {
			return fmt.Errorf("%w: date_to %q is not YYYY-MM-DD", ErrInvalidFilter, f.DateTo)
		}
	}
	if f.DateFrom != "" && f.DateTo != "" && to.Before(from) {
		return fmt.Errorf("%w: date_to %s precedes date_from %s", ErrInvalidFilter, f.DateTo, f.DateFrom)
	}
	if f.MinSongCount < 0 {
		return fmt.Errorf("%w: min_song_count cannot be negative, got %d", ErrInvalidFilter, f.MinSongCount)
	}
	if f.MaxSongCount < 0 {
		return fmt.Errorf("%w: max_song_count cannot be negative, got %d", ErrInvalidFilter, f.MaxSongCount)
	}
	if f.MaxSongCount > 0 && f.MaxSongCount < f.MinSongCount {
		return fmt.Errorf("%w: max_song_count %d below min_song_count %d", ErrInvalidFilter, f.MaxSongCount, f.MinSongCount)
	}
	for _, tour := range f.ExcludeTours {
		if tour == "" {
			return fmt.Errorf("%w: exclude_tours contains an empty entry", ErrInvalidFilter)
		}
	}
	return nil
}

// SongFilter restricts the song side of a ranked-recency query.
// Zero values mean "no constraint".
type SongFilter struct {
	Albums        []string `json:"albums,omitempty"`
	IsOuttake     *bool    `json:"is_outtake,omitempty"`
	TitleContains string   `json:"title_contains,omitempty"`
}

// Validate checks the filter before it reaches the query layer.
func (f *SongFilter) Validate() error {
	for _, album := range f.Albums {
		if album == "" {
			return fmt.Errorf("%w: albums contains an empty entry", ErrInvalidFilter)
		}
	}
	return nil
}
