package importing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/thunderoad/setlistd/src/features/config"
	"github.com/thunderoad/setlistd/src/features/stats"
	"github.com/thunderoad/setlistd/src/setlist"
)

// MockCatalog is a mock implementation of setlist.Catalog
type MockCatalog struct {
	setlist.Catalog // Embed interface to avoid implementing all methods, will panic if unused methods called
	cleared         bool
	songs           []*setlist.Song
	shows           []*setlist.Show
	performances    []*setlist.Performance
}

func (m *MockCatalog) Clear(ctx context.Context) error {
	m.cleared = true
	m.songs = nil
	m.shows = nil
	m.performances = nil
	return nil
}

func (m *MockCatalog) AddSong(ctx context.Context, song *setlist.Song) error {
	m.songs = append(m.songs, song)
	return nil
}

func (m *MockCatalog) AddShow(ctx context.Context, show *setlist.Show) error {
	m.shows = append(m.shows, show)
	return nil
}

func (m *MockCatalog) AddPerformance(ctx context.Context, performance *setlist.Performance) error {
	m.performances = append(m.performances, performance)
	return nil
}

func newTestService(t *testing.T, dir string) (*Service, *MockCatalog) {
	t.Helper()
	mock := &MockCatalog{}
	manager := config.NewManager(&config.Config{
		Import: config.Import{Path: dir},
	})
	return NewService(mock, manager, stats.NewService(mock)), mock
}

func writeImportDir(t *testing.T, songs, shows, setlists string) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		songsFile:    songs,
		showsFile:    shows,
		setlistsFile: setlists,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return dir
}

const (
	songsHeader    = "song_id,title,album,is_outtake\n"
	showsHeader    = "show_id,date,tour,venue,city,state_name,state_code,country_name,country_code,show_notes\n"
	setlistsHeader = "setlist_entry_id,show_id,song_id,position,notes\n"
)

func TestImportDirectory_FullIngest(t *testing.T) {
	dir := writeImportDir(t,
		songsHeader+
			"1,badlands,Darkness on the Edge of Town,False\n"+
			"2,the promise,,True\n",
		showsHeader+
			"10,1978-07-07,Darkness Tour,The Roxy,West Hollywood,California,CA,United States,US,broadcast\n",
		setlistsHeader+
			"100,10,1,1,\n"+
			"101,10,2,2,tour premiere\n",
	)
	service, mock := newTestService(t, dir)

	result, err := service.ImportDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !mock.cleared {
		t.Error("catalog was not cleared before import")
	}
	if result.SongsAdded != 2 || result.ShowsAdded != 1 || result.PerformancesAdded != 2 {
		t.Errorf("unexpected result: %+v", result)
	}

	if mock.songs[0].Title != "Badlands" {
		t.Errorf("title not normalized: %q", mock.songs[0].Title)
	}
	if !mock.songs[1].IsOuttake {
		t.Error("is_outtake flag lost")
	}
	if got := mock.shows[0].Date.Format(setlist.DateLayout); got != "1978-07-07" {
		t.Errorf("show date = %s, want 1978-07-07", got)
	}

	// Source ids must be remapped, and the references rewired.
	if mock.songs[0].ID == "1" {
		t.Error("source song id carried through instead of being remapped")
	}
	if mock.performances[0].SongID != mock.songs[0].ID || mock.performances[0].ShowID != mock.shows[0].ID {
		t.Error("performance references not remapped to stored ids")
	}
	if mock.performances[1].Notes != "tour premiere" {
		t.Errorf("performance notes lost: %q", mock.performances[1].Notes)
	}
}

func TestImportDirectory_DuplicateTitlesCollapse(t *testing.T) {
	dir := writeImportDir(t,
		songsHeader+
			"1,Thunder Road,Born to Run,False\n"+
			"2,thunder road,,False\n",
		showsHeader+
			"10,1975-08-15,,The Bottom Line,New York,New York,NY,United States,US,\n",
		setlistsHeader+
			"100,10,2,1,\n",
	)
	service, mock := newTestService(t, dir)

	result, err := service.ImportDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.SongsAdded != 1 || result.SongsSkipped != 1 {
		t.Errorf("unexpected result: %+v", result)
	}

	// The duplicate's setlist entry lands on the surviving song.
	if len(mock.performances) != 1 {
		t.Fatalf("expected 1 performance, got %d", len(mock.performances))
	}
	if mock.performances[0].SongID != mock.songs[0].ID {
		t.Error("duplicate song reference not redirected to the stored song")
	}
}

func TestImportDirectory_DuplicateShowSlotSkipped(t *testing.T) {
	dir := writeImportDir(t,
		songsHeader+"1,Badlands,,False\n",
		showsHeader+
			"10,1980-11-27,The River Tour,Madison Square Garden,New York,New York,NY,United States,US,\n"+
			"11,1980-11-27,The River Tour,Madison Square Garden,New York,New York,NY,United States,US,\n",
		setlistsHeader+
			"100,10,1,1,\n"+
			"101,11,1,1,\n",
	)
	service, mock := newTestService(t, dir)

	result, err := service.ImportDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.ShowsAdded != 1 || result.ShowsSkipped != 1 {
		t.Errorf("unexpected result: %+v", result)
	}
	// The entry pointing at the dropped show goes with it.
	if result.PerformancesAdded != 1 || result.PerformancesSkipped != 1 {
		t.Errorf("unexpected performance counts: %+v", result)
	}
	if len(mock.shows) != 1 {
		t.Fatalf("expected 1 show, got %d", len(mock.shows))
	}
}

func TestImportDirectory_BadRowsSkippedNotFatal(t *testing.T) {
	dir := writeImportDir(t,
		songsHeader+
			"1,Badlands,,False\n"+
			"2,,,False\n",
		showsHeader+
			"10,not-a-date,,Somewhere,,,,,,\n"+
			"11,1984-07-01,Born in the U.S.A. Tour,Alpine Valley,East Troy,Wisconsin,WI,United States,US,\n",
		setlistsHeader+
			"100,11,1,first,\n"+
			"101,11,1,1,\n",
	)
	service, mock := newTestService(t, dir)

	result, err := service.ImportDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.SongsAdded != 1 || result.SongsSkipped != 1 {
		t.Errorf("unexpected song counts: %+v", result)
	}
	if result.ShowsAdded != 1 || result.ShowsSkipped != 1 {
		t.Errorf("unexpected show counts: %+v", result)
	}
	if result.PerformancesAdded != 1 || result.PerformancesSkipped != 1 {
		t.Errorf("unexpected performance counts: %+v", result)
	}
	if len(mock.performances) != 1 {
		t.Fatalf("expected 1 performance, got %d", len(mock.performances))
	}
}

func TestImportDirectory_MissingFileFails(t *testing.T) {
	dir := t.TempDir()
	service, _ := newTestService(t, dir)

	if _, err := service.ImportDirectory(context.Background(), dir); err == nil {
		t.Fatal("expected an error for a directory without CSV files")
	}
}
