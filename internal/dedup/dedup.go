package dedup

import (
	"log/slog"
	"time"

	"github.com/thatguy-hiparh/jobscout/internal/model"
)

// Result is the outcome of one dedup pass.
type Result struct {
	New       []model.Job // postings never reported before
	Seen      []model.Job // postings already reported in an earlier run
	Collapsed int         // intra-run duplicates dropped
	Degraded  bool        // the store misbehaved; some Seen checks fell back to "not seen"
}

type runKey struct {
	source, company, id string
}

// Run collapses duplicates within the batch, then classifies the survivors
// against the seen store. The first record per (source, company, external id)
// wins, so callers must hand in a deterministically ordered batch. Store
// read errors degrade to "not seen": re-reporting a posting beats silently
// dropping one. Every surviving record is upserted so the next run knows it.
func Run(jobs []model.Job, seen model.SeenStore, now time.Time, logger *slog.Logger) Result {
	var res Result

	unique := make([]model.Job, 0, len(jobs))
	inRun := make(map[runKey]struct{}, len(jobs))
	for _, j := range jobs {
		k := runKey{j.Source, j.Company, j.ExternalID}
		if _, dup := inRun[k]; dup {
			res.Collapsed++
			continue
		}
		inRun[k] = struct{}{}
		unique = append(unique, j)
	}

	for _, j := range unique {
		contained, err := seen.Contains(j.SeenKey())
		if err != nil {
			logger.Warn("seen lookup failed, treating as new",
				"company", j.Company, "title", j.Title, "error", err)
			res.Degraded = true
			contained = false
		}
		if contained {
			res.Seen = append(res.Seen, j)
		} else {
			res.New = append(res.New, j)
		}
	}

	for _, j := range unique {
		if err := seen.Upsert(j.SeenKey(), now); err != nil {
			logger.Warn("seen upsert failed",
				"company", j.Company, "title", j.Title, "error", err)
			res.Degraded = true
		}
	}

	return res
}
