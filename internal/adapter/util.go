package adapter

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// extractText converts an HTML or HTML-encoded string to plain text.
// It first unescapes HTML entities (handles Greenhouse's double-encoding;
// no-op on already-real HTML), strips all tags, then collapses whitespace.
func extractText(content string) string {
	unescaped := html.UnescapeString(content)
	plain := htmlTagRegex.ReplaceAllString(unescaped, "")
	return collapseSpace(plain)
}

// collapseSpace squeezes all runs of whitespace into single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// snippet truncates plain text to at most n runes.
func snippet(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

const snippetLen = 240

// joinParts joins the non-empty strings with ", ".
func joinParts(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

// containsRemote reports whether any of the fields mentions remote work.
func containsRemote(fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), "remote") {
			return true
		}
	}
	return false
}

// e.g. "3 giorni fa", "2 settimane fa", "1 mese fa"
var italianRelativeRegex = regexp.MustCompile(`(?i)(\d+)\s+(giorn\w*|settiman\w*|mes\w*)\s+fa`)

var italianMonths = map[string]time.Month{
	"gennaio": time.January, "febbraio": time.February, "marzo": time.March,
	"aprile": time.April, "maggio": time.May, "giugno": time.June,
	"luglio": time.July, "agosto": time.August, "settembre": time.September,
	"ottobre": time.October, "novembre": time.November, "dicembre": time.December,
}

var italianAbsoluteRegex = regexp.MustCompile(`(\d{1,2})\s+([a-zà]+)\s+(\d{4})`)

// parseItalianDate converts the relative date strings the Italian staffing
// sites render ("oggi", "ieri", "3 giorni fa", "03 settembre 2025") into an
// approximate timestamp. Months count as 30 days. Returns nil when the text
// is empty or unrecognized; the posting is kept either way.
func parseItalianDate(text string, now time.Time) *time.Time {
	if text == "" {
		return nil
	}
	t := strings.ToLower(strings.TrimSpace(text))
	day := now.UTC().Truncate(24 * time.Hour)

	if strings.Contains(t, "oggi") {
		return &day
	}
	if strings.Contains(t, "ieri") {
		d := day.AddDate(0, 0, -1)
		return &d
	}

	if m := italianRelativeRegex.FindStringSubmatch(t); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return nil
		}
		var d time.Time
		switch {
		case strings.HasPrefix(m[2], "giorn"):
			d = day.AddDate(0, 0, -n)
		case strings.HasPrefix(m[2], "settiman"):
			d = day.AddDate(0, 0, -7*n)
		case strings.HasPrefix(m[2], "mes"):
			d = day.AddDate(0, 0, -30*n)
		default:
			return nil
		}
		return &d
	}

	if m := italianAbsoluteRegex.FindStringSubmatch(t); m != nil {
		month, ok := italianMonths[m[2]]
		if !ok {
			return nil
		}
		dd, _ := strconv.Atoi(m[1])
		yyyy, _ := strconv.Atoi(m[3])
		d := time.Date(yyyy, month, dd, 0, 0, 0, 0, time.UTC)
		return &d
	}

	return nil
}
