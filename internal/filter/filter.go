package filter

import (
	"fmt"
	"strings"

	"github.com/thatguy-hiparh/jobscout/internal/config"
	"github.com/thatguy-hiparh/jobscout/internal/model"
)

// RuleSet holds the relevance rules for one run. Matching is
// case-insensitive substring; the zero value accepts everything.
// Precedence: exclude beats include, location rules run after keyword
// rules, and RSS-sourced postings get an extra exclude pass.
type RuleSet struct {
	Include        []string
	Exclude        []string
	LocationsAllow []string
	LocationsDeny  []string
	AllowUnlocated bool
	RSSExclude     []string
}

// Verdict explains how a posting fared against the rules. Reason is empty
// when the posting is accepted.
type Verdict struct {
	Accepted    bool
	Reason      string
	IncludeHits []string
	Score       int
}

// NewRuleSet builds a validated RuleSet from the loaded rules config.
func NewRuleSet(rc config.RulesConfig) (RuleSet, error) {
	rs := RuleSet{
		Include:        rc.Include,
		Exclude:        rc.Exclude,
		LocationsAllow: rc.LocationsAllow,
		LocationsDeny:  rc.LocationsDeny,
		AllowUnlocated: rc.AllowUnlocated,
		RSSExclude:     rc.RSSExclude,
	}
	if err := rs.Validate(); err != nil {
		return RuleSet{}, err
	}
	return rs, nil
}

// Validate rejects rule lists containing blank terms, which would
// otherwise match every posting.
func (r RuleSet) Validate() error {
	lists := []struct {
		name  string
		terms []string
	}{
		{"include", r.Include},
		{"exclude", r.Exclude},
		{"locations_allow", r.LocationsAllow},
		{"locations_deny", r.LocationsDeny},
		{"rss_exclude", r.RSSExclude},
	}
	for _, l := range lists {
		for i, term := range l.terms {
			if strings.TrimSpace(term) == "" {
				return fmt.Errorf("rules.%s[%d]: blank term", l.name, i)
			}
		}
	}
	return nil
}

// Match reports whether the posting passes every rule.
func (r RuleSet) Match(job model.Job) bool {
	return r.Explain(job).Accepted
}

// Score returns the number of distinct include terms that hit the
// posting, regardless of whether it is accepted. Zero when the include
// list is empty.
func (r RuleSet) Score(job model.Job) int {
	return len(r.includeHits(job))
}

// Explain runs the full rule chain and reports the first rule that
// rejected the posting, plus the include hits and score either way.
func (r RuleSet) Explain(job model.Job) Verdict {
	hits := r.includeHits(job)
	v := Verdict{IncludeHits: hits, Score: len(hits)}

	text := keywordBlob(job)
	for _, term := range r.Exclude {
		if strings.Contains(text, strings.ToLower(term)) {
			v.Reason = fmt.Sprintf("exclude term %q", term)
			return v
		}
	}

	if len(r.Include) > 0 && len(hits) == 0 {
		v.Reason = "no include term matched"
		return v
	}

	loc := locationBlob(job)
	for _, term := range r.LocationsDeny {
		if strings.Contains(loc, strings.ToLower(term)) {
			v.Reason = fmt.Sprintf("location denied by %q", term)
			return v
		}
	}
	if job.Location == "" && job.Country == "" && !job.Remote {
		if !r.AllowUnlocated {
			v.Reason = "no location and unlocated postings are off"
			return v
		}
	} else if len(r.LocationsAllow) > 0 {
		allowed := false
		for _, term := range r.LocationsAllow {
			if strings.Contains(loc, strings.ToLower(term)) {
				allowed = true
				break
			}
		}
		if !allowed {
			v.Reason = "location not in allow list"
			return v
		}
	}

	if job.Source == "rss" {
		blob := rssBlob(job)
		for _, term := range r.RSSExclude {
			if strings.Contains(blob, strings.ToLower(term)) {
				v.Reason = fmt.Sprintf("rss exclude term %q", term)
				return v
			}
		}
	}

	v.Accepted = true
	return v
}

func (r RuleSet) includeHits(job model.Job) []string {
	if len(r.Include) == 0 {
		return nil
	}
	text := keywordBlob(job)
	var hits []string
	for _, term := range r.Include {
		if strings.Contains(text, strings.ToLower(term)) {
			hits = append(hits, term)
		}
	}
	return hits
}

func keywordBlob(job model.Job) string {
	return strings.ToLower(job.Title + "\n" + job.Description + "\n" + job.Location)
}

// locationBlob includes title, department and company so deny terms catch
// region-scoped roles that only mention the region in the title. A remote
// posting contributes the literal word "remote" so allow lists can opt in.
func locationBlob(job model.Job) string {
	blob := job.Location + "\n" + job.Country + "\n" + job.Title + "\n" + job.Department + "\n" + job.CompanyName
	if job.Remote {
		blob += "\nremote"
	}
	return strings.ToLower(blob)
}

func rssBlob(job model.Job) string {
	return strings.ToLower(job.Title + "\n" + job.Description + "\n" + job.URL)
}
