package catalog

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/thunderoad/setlistd/src/setlist"
)

// Service is the domain service for the catalog feature. It owns the raw
// data (songs, shows, performances); derived statistics belong to the
// stats feature.
type Service struct {
	catalog setlist.Catalog
}

// NewService creates a new catalog service.
func NewService(catalog setlist.Catalog) *Service {
	return &Service{catalog: catalog}
}

// AddSong validates and stores a new song. A missing ID gets a fresh
// uuid; the title is normalized to its display form before storage.
func (s *Service) AddSong(ctx context.Context, song *setlist.Song) error {
	slog.Debug("AddSong service called", "title", song.Title)
	if song.ID == "" {
		song.ID = uuid.New().String()
	}
	song.Title = setlist.DisplayTitle(song.Title)
	if err := song.Validate(); err != nil {
		return err
	}
	if err := s.catalog.AddSong(ctx, song); err != nil {
		slog.Error("AddSong failed", "title", song.Title, "error", err)
		return err
	}
	slog.Debug("AddSong completed", "id", song.ID, "title", song.Title)
	return nil
}

// GetSong returns a single song.
func (s *Service) GetSong(ctx context.Context, id string) (*setlist.Song, error) {
	slog.Debug("GetSong service called", "id", id)
	song, err := s.catalog.GetSong(ctx, id)
	if err != nil {
		slog.Error("GetSong failed", "id", id, "error", err)
		return nil, err
	}
	return song, nil
}

// GetSongs returns all songs in the catalog.
func (s *Service) GetSongs(ctx context.Context) ([]*setlist.Song, error) {
	slog.Debug("GetSongs service called")
	songs, err := s.catalog.GetSongs(ctx)
	if err != nil {
		slog.Error("GetSongs failed", "error", err)
		return nil, err
	}
	slog.Debug("GetSongs completed", "count", len(songs))
	return songs, nil
}

// FindSongs returns the songs matching a filter.
func (s *Service) FindSongs(ctx context.Context, filter setlist.SongFilter) ([]*setlist.Song, error) {
	slog.Debug("FindSongs service called")
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	songs, err := s.catalog.FindSongs(ctx, filter)
	if err != nil {
		slog.Error("FindSongs failed", "error", err)
		return nil, err
	}
	slog.Debug("FindSongs completed", "count", len(songs))
	return songs, nil
}

// DeleteSong deletes a song and, via cascade, its performances.
func (s *Service) DeleteSong(ctx context.Context, id string) error {
	slog.Debug("DeleteSong service called", "id", id)
	if err := s.catalog.DeleteSong(ctx, id); err != nil {
		slog.Error("DeleteSong failed", "id", id, "error", err)
		return err
	}
	slog.Debug("DeleteSong completed", "id", id)
	return nil
}

// AddShow validates and stores a new show.
func (s *Service) AddShow(ctx context.Context, show *setlist.Show) error {
	slog.Debug("AddShow service called", "venue", show.Venue)
	if show.ID == "" {
		show.ID = uuid.New().String()
	}
	if err := show.Validate(); err != nil {
		return err
	}
	if err := s.catalog.AddShow(ctx, show); err != nil {
		slog.Error("AddShow failed", "venue", show.Venue, "error", err)
		return err
	}
	slog.Debug("AddShow completed", "id", show.ID)
	return nil
}

// GetShow returns a single show.
func (s *Service) GetShow(ctx context.Context, id string) (*setlist.Show, error) {
	slog.Debug("GetShow service called", "id", id)
	show, err := s.catalog.GetShow(ctx, id)
	if err != nil {
		slog.Error("GetShow failed", "id", id, "error", err)
		return nil, err
	}
	return show, nil
}

// GetShows returns all shows in the catalog.
func (s *Service) GetShows(ctx context.Context) ([]*setlist.Show, error) {
	slog.Debug("GetShows service called")
	shows, err := s.catalog.GetShows(ctx)
	if err != nil {
		slog.Error("GetShows failed", "error", err)
		return nil, err
	}
	slog.Debug("GetShows completed", "count", len(shows))
	return shows, nil
}

// DeleteShow deletes a show and, via cascade, its performances.
func (s *Service) DeleteShow(ctx context.Context, id string) error {
	slog.Debug("DeleteShow service called", "id", id)
	if err := s.catalog.DeleteShow(ctx, id); err != nil {
		slog.Error("DeleteShow failed", "id", id, "error", err)
		return err
	}
	slog.Debug("DeleteShow completed", "id", id)
	return nil
}

// RecordPerformance validates and stores one setlist entry. Both the
// show and the song must already exist; the store reports a missing
// reference as setlist.ErrReferenceNotFound.
func (s *Service) RecordPerformance(ctx context.Context, performance *setlist.Performance) error {
	slog.Debug("RecordPerformance service called", "show", performance.ShowID, "song", performance.SongID, "position", performance.Position)
	if err := performance.Validate(); err != nil {
		return err
	}
	if err := s.catalog.AddPerformance(ctx, performance); err != nil {
		slog.Error("RecordPerformance failed", "show", performance.ShowID, "song", performance.SongID, "error", err)
		return err
	}
	return nil
}

// GetSetlist returns the performances of a show in position order.
func (s *Service) GetSetlist(ctx context.Context, showID string) ([]*setlist.Performance, error) {
	slog.Debug("GetSetlist service called", "show", showID)
	performances, err := s.catalog.GetSetlist(ctx, showID)
	if err != nil {
		slog.Error("GetSetlist failed", "show", showID, "error", err)
		return nil, err
	}
	slog.Debug("GetSetlist completed", "show", showID, "count", len(performances))
	return performances, nil
}
