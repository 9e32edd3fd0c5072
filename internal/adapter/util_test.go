package adapter

import (
	"testing"
	"time"
)

func TestParseItalianDate(t *testing.T) {
	now := time.Date(2025, time.June, 15, 14, 30, 0, 0, time.UTC)
	day := func(y int, m time.Month, d int) *time.Time {
		t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &t
	}

	cases := []struct {
		in   string
		want *time.Time
	}{
		{"oggi", day(2025, time.June, 15)},
		{"Pubblicato oggi", day(2025, time.June, 15)},
		{"ieri", day(2025, time.June, 14)},
		{"3 giorni fa", day(2025, time.June, 12)},
		{"2 settimane fa", day(2025, time.June, 1)},
		{"1 mese fa", day(2025, time.May, 16)},
		{"03 settembre 2025", day(2025, time.September, 3)},
		{"15 giugno 2025", day(2025, time.June, 15)},
		{"chissà quando", nil},
		{"", nil},
	}

	for _, tc := range cases {
		got := parseItalianDate(tc.in, now)
		switch {
		case tc.want == nil && got != nil:
			t.Errorf("parseItalianDate(%q) = %v, want nil", tc.in, got)
		case tc.want != nil && got == nil:
			t.Errorf("parseItalianDate(%q) = nil, want %v", tc.in, tc.want)
		case tc.want != nil && !got.Equal(*tc.want):
			t.Errorf("parseItalianDate(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestExtractText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"<p>Plain <b>bold</b> text</p>", "Plain bold text"},
		{"&lt;p&gt;Encoded markup&lt;/p&gt;", "Encoded markup"},
		{"  spaced \n\n out  ", "spaced out"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := extractText(tc.in); got != tc.want {
			t.Errorf("extractText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSnippet(t *testing.T) {
	if got := snippet("corto", 10); got != "corto" {
		t.Errorf("snippet should keep short strings intact, got %q", got)
	}
	long := "una descrizione piuttosto lunga con caratteri àccentati"
	if got := snippet(long, 10); len([]rune(got)) != 10 {
		t.Errorf("snippet should cut at 10 runes, got %d", len([]rune(got)))
	}
}

func TestJoinParts(t *testing.T) {
	if got := joinParts("Milan", "", "Italy"); got != "Milan, Italy" {
		t.Errorf("joinParts = %q", got)
	}
	if got := joinParts("", "", ""); got != "" {
		t.Errorf("joinParts of empties = %q", got)
	}
}
