package setlist

import "fmt"

// Performance is one song played at one show at one setlist position.
// (ShowID, SongID, Position) is unique: a song cannot occupy the same slot
// twice, but it can appear at two different positions in one show (a
// reprise). Deleting the show or the song deletes its performances.
type Performance struct {
	ID       int64  `json:"id"`
	ShowID   string `json:"show_id"`
	SongID   string `json:"song_id"`
	Position int    `json:"position"`
	Notes    string `json:"notes,omitempty"`
}

// Validate validates the performance fields.
func (p *Performance) Validate() error {
	if p.ShowID == "" {
		return fmt.Errorf("performance show id cannot be empty")
	}
	if p.SongID == "" {
		return fmt.Errorf("performance song id cannot be empty")
	}
	if p.Position < 0 {
		return fmt.Errorf("performance position cannot be negative, got %d", p.Position)
	}
	return nil
}
