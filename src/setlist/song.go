package setlist

import (
	"fmt"
	"strings"
)

// Song is a single distinct song in the catalog. Title is unique after
// normalization. Album is empty for covers and songs of unknown origin.
// TimesPlayed and RarityLevel are derived fields maintained exclusively by
// the stats recomputation passes; RarityLevel is nil for songs never
// played (nil and 0 are distinct: 0 means played but least common).
type Song struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Album       string `json:"album,omitempty"`
	IsOuttake   bool   `json:"is_outtake"`
	TimesPlayed int    `json:"times_played"`
	RarityLevel *int   `json:"rarity_level"`
}

// Validate validates the song fields.
func (s *Song) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("song title cannot be empty")
	}
	if len(s.Title) > 500 {
		return fmt.Errorf("song title cannot exceed 500 characters, got %d: title -> %s", len(s.Title), s.Title)
	}
	if len(s.Album) > 500 {
		return fmt.Errorf("album cannot exceed 500 characters, got %d: album -> %s", len(s.Album), s.Album)
	}
	return nil
}
