package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/thatguy-hiparh/jobscout/internal/model"
)

//go:embed templates/report.html
var reportTemplate string

var tpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"date": func(t *time.Time) string {
		if t == nil {
			return "—"
		}
		return t.UTC().Format("2006-01-02")
	},
}).Parse(reportTemplate))

// Company is one row of the per-company poll summary.
type Company struct {
	Name    string
	Backend string
	Fetched int    // records returned by the adapter
	Dropped int    // invalid records removed before filtering
	Kept    int    // records surviving the relevance rules
	Failure string // empty when the poll succeeded, else the skip reason
}

// Input is everything the renderer needs. GeneratedAt is injected rather
// than read from the clock so identical inputs render identical bytes.
type Input struct {
	Title       string
	GeneratedAt time.Time
	Jobs        []model.Job // new postings only
	SeenCount   int         // postings already reported in earlier runs
	Collapsed   int         // intra-run duplicates removed
	Companies   []Company
	Degraded    bool // seen store was unavailable for part of the run
}

// Artifacts is the pair of rendered outputs: the static HTML document for
// publishing and the plain-text digest for delivery.
type Artifacts struct {
	HTML   []byte
	Digest string
}

// Render produces both artifacts. It sorts its own copies of the input
// slices, so permuting Jobs or Companies yields byte-identical output.
// An empty batch renders a valid "no new postings" document, not an error.
func Render(in Input) (Artifacts, error) {
	jobs := append([]model.Job(nil), in.Jobs...)
	sort.Slice(jobs, func(i, j int) bool {
		a, b := jobs[i], jobs[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Company != b.Company {
			return a.Company < b.Company
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ExternalID < b.ExternalID
	})

	companies := append([]Company(nil), in.Companies...)
	sort.Slice(companies, func(i, j int) bool {
		if companies[i].Name != companies[j].Name {
			return companies[i].Name < companies[j].Name
		}
		return companies[i].Backend < companies[j].Backend
	})

	polled, skipped := 0, 0
	for _, c := range companies {
		if c.Failure == "" {
			polled++
		} else {
			skipped++
		}
	}

	data := struct {
		Title       string
		GeneratedAt string
		Jobs        []model.Job
		SeenCount   int
		Collapsed   int
		Companies   []Company
		Polled      int
		Skipped     int
		Degraded    bool
	}{
		Title:       in.Title,
		GeneratedAt: in.GeneratedAt.UTC().Format(time.RFC3339),
		Jobs:        jobs,
		SeenCount:   in.SeenCount,
		Collapsed:   in.Collapsed,
		Companies:   companies,
		Polled:      polled,
		Skipped:     skipped,
		Degraded:    in.Degraded,
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return Artifacts{}, fmt.Errorf("render report: %w", err)
	}

	return Artifacts{
		HTML:   buf.Bytes(),
		Digest: digest(in.Title, data.GeneratedAt, jobs, companies, in.SeenCount, in.Collapsed, polled, skipped, in.Degraded),
	}, nil
}

func digest(title, generatedAt string, jobs []model.Job, companies []Company, seen, collapsed, polled, skipped int, degraded bool) string {
	var b strings.Builder

	b.WriteString(title)
	b.WriteByte('\n')
	fmt.Fprintf(&b, "Generated %s\n\n", generatedAt)

	fmt.Fprintf(&b, "New postings: %d", len(jobs))
	if seen > 0 {
		fmt.Fprintf(&b, " (seen before: %d)", seen)
	}
	if collapsed > 0 {
		fmt.Fprintf(&b, " (duplicates collapsed: %d)", collapsed)
	}
	b.WriteByte('\n')
	fmt.Fprintf(&b, "Companies polled: %d/%d\n", polled, len(companies))

	if skipped > 0 {
		b.WriteString("Skipped:\n")
		for _, c := range companies {
			if c.Failure != "" {
				fmt.Fprintf(&b, "  - %s (%s): %s\n", c.Name, c.Backend, c.Failure)
			}
		}
	}
	if degraded {
		b.WriteString("WARNING: seen store unavailable; some postings may repeat.\n")
	}

	if len(jobs) == 0 {
		b.WriteString("\nNo new postings today.\n")
		return b.String()
	}

	for _, j := range jobs {
		b.WriteByte('\n')
		fmt.Fprintf(&b, "* %s\n", j.Title)
		where := j.Location
		if where == "" && j.Remote {
			where = "Remote"
		}
		if where != "" {
			fmt.Fprintf(&b, "  %s — %s\n", j.CompanyName, where)
		} else {
			fmt.Fprintf(&b, "  %s\n", j.CompanyName)
		}
		fmt.Fprintf(&b, "  %s\n", j.URL)
	}

	return b.String()
}
