package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/thunderoad/setlistd/src/setlist"
)

func newTestCatalog(t *testing.T) *SqliteCatalog {
	t.Helper()
	catalog, err := NewSqliteCatalog(":memory:")
	if err != nil {
		t.Fatalf("failed to create catalog: %v", err)
	}
	t.Cleanup(func() { catalog.Close() })
	return catalog
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	date, err := time.Parse(setlist.DateLayout, value)
	if err != nil {
		t.Fatalf("bad test date %q: %v", value, err)
	}
	return date
}

func addSong(t *testing.T, c *SqliteCatalog, title, album string) *setlist.Song {
	t.Helper()
	song := &setlist.Song{ID: uuid.New().String(), Title: title, Album: album}
	if err := c.AddSong(context.Background(), song); err != nil {
		t.Fatalf("AddSong(%s): %v", title, err)
	}
	return song
}

func addShow(t *testing.T, c *SqliteCatalog, date, venue, city, tour string) *setlist.Show {
	t.Helper()
	show := &setlist.Show{
		ID:    uuid.New().String(),
		Date:  mustDate(t, date),
		Venue: venue,
		City:  city,
		Tour:  tour,
	}
	if err := c.AddShow(context.Background(), show); err != nil {
		t.Fatalf("AddShow(%s %s): %v", date, venue, err)
	}
	return show
}

func addPerformance(t *testing.T, c *SqliteCatalog, showID, songID string, position int) {
	t.Helper()
	p := &setlist.Performance{ShowID: showID, SongID: songID, Position: position}
	if err := c.AddPerformance(context.Background(), p); err != nil {
		t.Fatalf("AddPerformance: %v", err)
	}
}

func TestAddSong_DuplicateTitleIsConstraintViolation(t *testing.T) {
	catalog := newTestCatalog(t)
	addSong(t, catalog, "Thunder Road", "Born to Run")

	dup := &setlist.Song{ID: uuid.New().String(), Title: "Thunder Road"}
	err := catalog.AddSong(context.Background(), dup)
	if !errors.Is(err, setlist.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
}

func TestAddShow_DuplicateDateVenueIsConstraintViolation(t *testing.T) {
	catalog := newTestCatalog(t)
	addShow(t, catalog, "1978-09-19", "Capitol Theatre", "Passaic", "Darkness Tour")

	dup := &setlist.Show{ID: uuid.New().String(), Date: mustDate(t, "1978-09-19"), Venue: "Capitol Theatre"}
	err := catalog.AddShow(context.Background(), dup)
	if !errors.Is(err, setlist.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
}

func TestAddPerformance_UnknownShowIsReferenceError(t *testing.T) {
	catalog := newTestCatalog(t)
	song := addSong(t, catalog, "Badlands", "Darkness on the Edge of Town")

	p := &setlist.Performance{ShowID: uuid.New().String(), SongID: song.ID, Position: 1}
	err := catalog.AddPerformance(context.Background(), p)
	if !errors.Is(err, setlist.ErrReferenceNotFound) {
		t.Fatalf("expected ErrReferenceNotFound, got %v", err)
	}
}

func TestAddPerformance_SameSlotTwiceIsConstraintViolation(t *testing.T) {
	catalog := newTestCatalog(t)
	song := addSong(t, catalog, "Badlands", "Darkness on the Edge of Town")
	show := addShow(t, catalog, "1978-09-19", "Capitol Theatre", "Passaic", "")

	addPerformance(t, catalog, show.ID, song.ID, 1)

	dup := &setlist.Performance{ShowID: show.ID, SongID: song.ID, Position: 1}
	err := catalog.AddPerformance(context.Background(), dup)
	if !errors.Is(err, setlist.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}

	// A reprise at a different position is fine.
	reprise := &setlist.Performance{ShowID: show.ID, SongID: song.ID, Position: 20}
	if err := catalog.AddPerformance(context.Background(), reprise); err != nil {
		t.Fatalf("expected reprise to be allowed, got %v", err)
	}
}

func TestDeleteShow_CascadesToPerformances(t *testing.T) {
	catalog := newTestCatalog(t)
	ctx := context.Background()
	song := addSong(t, catalog, "Jungleland", "Born to Run")
	show := addShow(t, catalog, "1975-08-15", "Bottom Line", "New York", "")
	addPerformance(t, catalog, show.ID, song.ID, 1)

	if err := catalog.DeleteShow(ctx, show.ID); err != nil {
		t.Fatalf("DeleteShow: %v", err)
	}

	count, err := catalog.CountPerformances(ctx)
	if err != nil {
		t.Fatalf("CountPerformances: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 performances after cascade, got %d", count)
	}
}

func TestDeleteSong_CascadesToPerformances(t *testing.T) {
	catalog := newTestCatalog(t)
	ctx := context.Background()
	song := addSong(t, catalog, "Jungleland", "Born to Run")
	show := addShow(t, catalog, "1975-08-15", "Bottom Line", "New York", "")
	addPerformance(t, catalog, show.ID, song.ID, 1)

	if err := catalog.DeleteSong(ctx, song.ID); err != nil {
		t.Fatalf("DeleteSong: %v", err)
	}

	count, err := catalog.CountPerformances(ctx)
	if err != nil {
		t.Fatalf("CountPerformances: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 performances after cascade, got %d", count)
	}
}

func TestResolveShows_Filters(t *testing.T) {
	catalog := newTestCatalog(t)
	ctx := context.Background()
	early := addShow(t, catalog, "1975-08-15", "Bottom Line", "New York", "Born to Run Tour")
	late := addShow(t, catalog, "1984-08-05", "Brendan Byrne Arena", "East Rutherford", "Born in the U.S.A. Tour")

	ids, err := catalog.ResolveShows(ctx, setlist.ShowFilter{DateFrom: "1980-01-01"})
	if err != nil {
		t.Fatalf("ResolveShows: %v", err)
	}
	if len(ids) != 1 || ids[0] != late.ID {
		t.Errorf("date filter: expected [%s], got %v", late.ID, ids)
	}

	ids, err = catalog.ResolveShows(ctx, setlist.ShowFilter{City: "new york"})
	if err != nil {
		t.Fatalf("ResolveShows: %v", err)
	}
	if len(ids) != 1 || ids[0] != early.ID {
		t.Errorf("city filter: expected [%s], got %v", early.ID, ids)
	}

	ids, err = catalog.ResolveShows(ctx, setlist.ShowFilter{ExcludeTours: []string{"Born to Run Tour"}})
	if err != nil {
		t.Fatalf("ResolveShows: %v", err)
	}
	if len(ids) != 1 || ids[0] != late.ID {
		t.Errorf("exclude filter: expected [%s], got %v", late.ID, ids)
	}

	ids, err = catalog.ResolveShows(ctx, setlist.ShowFilter{City: "Freehold"})
	if err != nil {
		t.Fatalf("ResolveShows: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected empty set, got %v", ids)
	}
}

func TestPlayCounts_GlobalIncludesZero_ScopedDoesNot(t *testing.T) {
	catalog := newTestCatalog(t)
	ctx := context.Background()
	played := addSong(t, catalog, "Badlands", "Darkness on the Edge of Town")
	never := addSong(t, catalog, "The Klansman", "")
	show := addShow(t, catalog, "1978-09-19", "Capitol Theatre", "Passaic", "")
	addPerformance(t, catalog, show.ID, played.ID, 1)

	global, err := catalog.GlobalPlayCounts(ctx)
	if err != nil {
		t.Fatalf("GlobalPlayCounts: %v", err)
	}
	if global[played.ID] != 1 {
		t.Errorf("expected count 1 for played song, got %d", global[played.ID])
	}
	if count, ok := global[never.ID]; !ok || count != 0 {
		t.Errorf("expected zero row for never-played song, got %d (present=%t)", count, ok)
	}

	scoped, err := catalog.ScopedPlayCounts(ctx, []string{show.ID})
	if err != nil {
		t.Fatalf("ScopedPlayCounts: %v", err)
	}
	if scoped[played.ID] != 1 {
		t.Errorf("expected scoped count 1, got %d", scoped[played.ID])
	}
	if _, ok := scoped[never.ID]; ok {
		t.Error("never-played song must be absent from scoped counts")
	}
}

func TestSaveRarityLevels_ResetsOthersToNull(t *testing.T) {
	catalog := newTestCatalog(t)
	ctx := context.Background()
	a := addSong(t, catalog, "Badlands", "")
	b := addSong(t, catalog, "The Klansman", "")

	if err := catalog.SaveRarityLevels(ctx, map[string]int{a.ID: 100, b.ID: 40}); err != nil {
		t.Fatalf("SaveRarityLevels: %v", err)
	}
	if err := catalog.SaveRarityLevels(ctx, map[string]int{a.ID: 100}); err != nil {
		t.Fatalf("SaveRarityLevels: %v", err)
	}

	got, err := catalog.GetSong(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetSong: %v", err)
	}
	if got.RarityLevel != nil {
		t.Errorf("expected nil rarity after reset, got %d", *got.RarityLevel)
	}
}

func TestUpdateShowSongCounts(t *testing.T) {
	catalog := newTestCatalog(t)
	ctx := context.Background()
	a := addSong(t, catalog, "Badlands", "")
	b := addSong(t, catalog, "The Promised Land", "")
	show := addShow(t, catalog, "1978-09-19", "Capitol Theatre", "Passaic", "")
	addPerformance(t, catalog, show.ID, a.ID, 1)
	addPerformance(t, catalog, show.ID, b.ID, 2)

	if err := catalog.UpdateShowSongCounts(ctx); err != nil {
		t.Fatalf("UpdateShowSongCounts: %v", err)
	}

	got, err := catalog.GetShow(ctx, show.ID)
	if err != nil {
		t.Fatalf("GetShow: %v", err)
	}
	if got.SongCount != 2 {
		t.Errorf("expected song_count 2, got %d", got.SongCount)
	}
}

func TestPlayDates_RespectsShowFilterAndDedupesReprises(t *testing.T) {
	catalog := newTestCatalog(t)
	ctx := context.Background()
	song := addSong(t, catalog, "Badlands", "")
	passaic := addShow(t, catalog, "1978-09-19", "Capitol Theatre", "Passaic", "")
	newYork := addShow(t, catalog, "1980-11-27", "Madison Square Garden", "New York", "")
	addPerformance(t, catalog, passaic.ID, song.ID, 1)
	addPerformance(t, catalog, passaic.ID, song.ID, 20) // reprise
	addPerformance(t, catalog, newYork.ID, song.ID, 3)

	dates, err := catalog.PlayDates(ctx, []string{song.ID}, setlist.ShowFilter{City: "Passaic"})
	if err != nil {
		t.Fatalf("PlayDates: %v", err)
	}
	if len(dates[song.ID]) != 1 {
		t.Fatalf("expected 1 play date, got %d", len(dates[song.ID]))
	}
	if got := dates[song.ID][0].Date.Format(setlist.DateLayout); got != "1978-09-19" {
		t.Errorf("expected 1978-09-19, got %s", got)
	}
}
