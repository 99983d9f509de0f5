package setlist

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical date format for show dates.
const DateLayout = "2006-01-02"

// Show is a single concert. A venue hosts at most one show per date, so
// (Date, Venue) is unique. SongCount is a derived field maintained by the
// stats recomputation passes.
type Show struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	Tour        string    `json:"tour,omitempty"`
	Venue       string    `json:"venue"`
	City        string    `json:"city,omitempty"`
	StateName   string    `json:"state_name,omitempty"`
	StateCode   string    `json:"state_code,omitempty"`
	CountryName string    `json:"country_name,omitempty"`
	CountryCode string    `json:"country_code,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	SongCount   int       `json:"song_count"`
}

// Validate validates the show fields.
func (s *Show) Validate() error {
	if s.Date.IsZero() {
		return fmt.Errorf("show date cannot be empty")
	}
	if strings.TrimSpace(s.Venue) == "" {
		return fmt.Errorf("show venue cannot be empty")
	}
	if len(s.Venue) > 500 {
		return fmt.Errorf("venue cannot exceed 500 characters, got %d: venue -> %s", len(s.Venue), s.Venue)
	}
	return nil
}
