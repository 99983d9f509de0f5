package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/thunderoad/setlistd/src/setlist"
)

// MockCatalog is a mock implementation of setlist.Catalog
type MockCatalog struct {
	setlist.Catalog // Embed interface to avoid implementing all methods, will panic if unused methods called
	addedSong       *setlist.Song
	addedShow       *setlist.Show
	addedEntry      *setlist.Performance
	addErr          error
}

func (m *MockCatalog) AddSong(ctx context.Context, song *setlist.Song) error {
	m.addedSong = song
	return m.addErr
}

func (m *MockCatalog) AddShow(ctx context.Context, show *setlist.Show) error {
	m.addedShow = show
	return m.addErr
}

func (m *MockCatalog) AddPerformance(ctx context.Context, performance *setlist.Performance) error {
	m.addedEntry = performance
	return m.addErr
}

func TestAddSong_AssignsIDAndNormalizesTitle(t *testing.T) {
	mock := &MockCatalog{}
	service := NewService(mock)

	song := &setlist.Song{Title: "darkness  on the edge of town"}
	if err := service.AddSong(context.Background(), song); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mock.addedSong == nil {
		t.Fatal("song never reached the catalog")
	}
	if mock.addedSong.ID == "" {
		t.Error("expected a generated id")
	}
	if mock.addedSong.Title != "Darkness On The Edge Of Town" {
		t.Errorf("title not normalized: %q", mock.addedSong.Title)
	}
}

func TestAddSong_KeepsCallerID(t *testing.T) {
	mock := &MockCatalog{}
	service := NewService(mock)

	song := &setlist.Song{ID: "caller-id", Title: "Badlands"}
	if err := service.AddSong(context.Background(), song); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mock.addedSong.ID != "caller-id" {
		t.Errorf("id overwritten: %q", mock.addedSong.ID)
	}
}

func TestAddSong_RejectsEmptyTitle(t *testing.T) {
	mock := &MockCatalog{}
	service := NewService(mock)

	if err := service.AddSong(context.Background(), &setlist.Song{}); err == nil {
		t.Fatal("expected a validation error")
	}
	if mock.addedSong != nil {
		t.Error("invalid song must not reach the catalog")
	}
}

func TestAddSong_PropagatesConstraintViolation(t *testing.T) {
	mock := &MockCatalog{addErr: setlist.ErrConstraintViolation}
	service := NewService(mock)

	err := service.AddSong(context.Background(), &setlist.Song{Title: "Badlands"})
	if !errors.Is(err, setlist.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
}

func TestAddShow_RejectsZeroDate(t *testing.T) {
	mock := &MockCatalog{}
	service := NewService(mock)

	if err := service.AddShow(context.Background(), &setlist.Show{Venue: "Madison Square Garden"}); err == nil {
		t.Fatal("expected a validation error")
	}
	if mock.addedShow != nil {
		t.Error("invalid show must not reach the catalog")
	}
}

func TestRecordPerformance_RejectsNegativePosition(t *testing.T) {
	mock := &MockCatalog{}
	service := NewService(mock)

	entry := &setlist.Performance{ShowID: "s", SongID: "g", Position: -1}
	if err := service.RecordPerformance(context.Background(), entry); err == nil {
		t.Fatal("expected a validation error")
	}
	if mock.addedEntry != nil {
		t.Error("invalid entry must not reach the catalog")
	}
}

func TestRecordPerformance_PropagatesMissingReference(t *testing.T) {
	mock := &MockCatalog{addErr: setlist.ErrReferenceNotFound}
	service := NewService(mock)

	entry := &setlist.Performance{ShowID: "missing", SongID: "g", Position: 1}
	err := service.RecordPerformance(context.Background(), entry)
	if !errors.Is(err, setlist.ErrReferenceNotFound) {
		t.Fatalf("expected ErrReferenceNotFound, got %v", err)
	}
}
