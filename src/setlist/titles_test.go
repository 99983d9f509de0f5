package setlist

import "testing"

func TestDisplayTitle(t *testing.T) {
	cases := map[string]string{
		"thunder road":            "Thunder Road",
		"  BADLANDS  ":            "Badlands",
		"rosalita (come out tonight)": "Rosalita (come Out Tonight)",
		"":                        "Unknown Title",
	}
	for raw, want := range cases {
		if got := DisplayTitle(raw); got != want {
			t.Errorf("DisplayTitle(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestTitleKey_MatchesAcrossSpellings(t *testing.T) {
	a := TitleKey("Thunder Road")
	b := TitleKey("  thunder   ROAD ")
	if a != b {
		t.Errorf("expected equal keys, got %q and %q", a, b)
	}
	if a != "thunder road" {
		t.Errorf("unexpected key %q", a)
	}
}

func TestTitleKey_FoldsUnicode(t *testing.T) {
	if got := TitleKey("Ain’t Got You"); got != "ain't got you" {
		t.Errorf("unexpected key %q", got)
	}
	if got := TitleKey("Café Society"); got != "cafe society" {
		t.Errorf("unexpected key %q", got)
	}
}
