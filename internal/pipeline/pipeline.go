// Package pipeline runs one aggregation pass: fetch every enabled
// target, filter for relevance, drop what earlier runs already
// reported, and render the report artifacts.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/thatguy-hiparh/jobscout/internal/adapter"
	"github.com/thatguy-hiparh/jobscout/internal/config"
	"github.com/thatguy-hiparh/jobscout/internal/dedup"
	"github.com/thatguy-hiparh/jobscout/internal/filter"
	"github.com/thatguy-hiparh/jobscout/internal/model"
	"github.com/thatguy-hiparh/jobscout/internal/ratelimit"
	"github.com/thatguy-hiparh/jobscout/internal/report"
	"github.com/thatguy-hiparh/jobscout/internal/retry"
)

// Stage names the pipeline phases in execution order.
type Stage string

const (
	StageInit      Stage = "init"
	StageFetching  Stage = "fetching"
	StageFiltering Stage = "filtering"
	StageDeduping  Stage = "deduping"
	StageRendering Stage = "rendering"
	StageDone      Stage = "done"
	StageErrored   Stage = "errored"
)

// PartialFailure records one target whose fetch failed. The run keeps
// going as long as at least one target succeeds.
type PartialFailure struct {
	Target  string
	Backend string
	Reason  model.FetchReason
	Err     error
}

// Result is everything one run produced, including the rendered
// artifacts and the per-target accounting that feeds them. It is
// populated as far as the run got, so callers can report partial
// progress when Stage is StageErrored.
type Result struct {
	RunID     string
	Stage     Stage
	StartedAt time.Time
	Duration  time.Duration

	Companies []report.Company
	Failures  []PartialFailure

	NewJobs   []model.Job
	SeenCount int
	Collapsed int
	Dropped   int
	Degraded  bool

	Artifacts report.Artifacts
}

// Resolver yields the fetcher for a backend name. *adapter.Registry
// satisfies it.
type Resolver interface {
	Resolve(name string) (adapter.Fetcher, error)
}

// Options wires a Pipeline. All fields except Now are required.
type Options struct {
	Resolver   Resolver
	Rules      filter.RuleSet
	Store      model.SeenStore
	Limiter    *ratelimit.Limiter
	Fetch      config.FetchConfig
	Title      string
	SkipFilter bool
	Logger     *slog.Logger
	Now        func() time.Time
}

// Pipeline runs the fetch, filter, dedup and render stages for a set
// of targets.
type Pipeline struct {
	resolver   Resolver
	rules      filter.RuleSet
	store      model.SeenStore
	limiter    *ratelimit.Limiter
	fetch      config.FetchConfig
	title      string
	skipFilter bool
	logger     *slog.Logger
	now        func() time.Time
}

// New builds a Pipeline from opts.
func New(opts Options) *Pipeline {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		resolver:   opts.Resolver,
		rules:      opts.Rules,
		store:      opts.Store,
		limiter:    opts.Limiter,
		fetch:      opts.Fetch,
		title:      opts.Title,
		skipFilter: opts.SkipFilter,
		logger:     opts.Logger,
		now:        now,
	}
}

// Run executes one full pass over targets. The run fails only when no
// target could be fetched or the report could not be rendered; single
// target failures are recorded and the run continues.
func (p *Pipeline) Run(ctx context.Context, targets []config.Target) (*Result, error) {
	res := &Result{
		RunID:     uuid.NewString(),
		Stage:     StageInit,
		StartedAt: p.now(),
	}

	var enabled []config.Target
	for _, t := range targets {
		if t.Enabled {
			enabled = append(enabled, t)
		}
	}
	if len(enabled) == 0 {
		res.Stage = StageErrored
		return res, fmt.Errorf("no enabled targets")
	}

	p.logger.Info("run started", "run_id", res.RunID, "targets", len(enabled))

	res.Stage = StageFetching
	merged, companies, failures := p.fetchStage(ctx, enabled, res.StartedAt)
	res.Companies = companies
	res.Failures = failures
	for i := range companies {
		res.Dropped += companies[i].Dropped
	}
	if len(failures) == len(enabled) {
		res.Stage = StageErrored
		res.Duration = p.now().Sub(res.StartedAt)
		return res, fmt.Errorf("all %d targets failed", len(enabled))
	}

	res.Stage = StageFiltering
	kept := p.filterStage(merged, companies)

	res.Stage = StageDeduping
	d := dedup.Run(kept, p.store, res.StartedAt, p.logger)
	res.NewJobs = d.New
	res.SeenCount = len(d.Seen)
	res.Collapsed = d.Collapsed
	res.Degraded = d.Degraded

	res.Stage = StageRendering
	artifacts, err := report.Render(report.Input{
		Title:       p.title,
		GeneratedAt: p.now(),
		Jobs:        res.NewJobs,
		SeenCount:   res.SeenCount,
		Collapsed:   res.Collapsed,
		Companies:   res.Companies,
		Degraded:    res.Degraded,
	})
	if err != nil {
		res.Stage = StageErrored
		res.Duration = p.now().Sub(res.StartedAt)
		return res, fmt.Errorf("render report: %w", err)
	}
	res.Artifacts = artifacts

	res.Stage = StageDone
	res.Duration = p.now().Sub(res.StartedAt)
	p.logger.Info("run finished",
		"run_id", res.RunID,
		"new", len(res.NewJobs),
		"seen", res.SeenCount,
		"collapsed", res.Collapsed,
		"dropped", res.Dropped,
		"failed_targets", len(res.Failures),
		"duration", res.Duration,
	)
	return res, nil
}

type fetchOutcome struct {
	idx  int
	jobs []model.Job
	err  error
}

// fetchStage polls every target through a bounded worker pool, all under
// one stage-wide budget. Each outcome lands in the summary row for its
// target; the merged batch comes back sorted so downstream stages see a
// stable order no matter how the pool scheduled the work.
func (p *Pipeline) fetchStage(ctx context.Context, targets []config.Target, fetchedAt time.Time) ([]model.Job, []report.Company, []PartialFailure) {
	budgetCtx, cancel := context.WithTimeout(ctx, p.fetch.Budget)
	defer cancel()

	companies := make([]report.Company, len(targets))
	for i, t := range targets {
		companies[i] = report.Company{Name: t.Name, Backend: backendKey(t.ATS)}
	}

	type work struct {
		idx     int
		target  config.Target
		fetcher adapter.Fetcher
	}
	var (
		queue    []work
		failures []PartialFailure
	)
	for i, t := range targets {
		f, err := p.resolver.Resolve(t.ATS)
		if err != nil {
			p.logger.Warn("skipping target", "target", t.Name, "ats", t.ATS, "error", err)
			companies[i].Failure = failureLabel(model.ReasonUnknownBackend, err)
			failures = append(failures, PartialFailure{
				Target:  t.Name,
				Backend: companies[i].Backend,
				Reason:  model.ReasonUnknownBackend,
				Err:     err,
			})
			continue
		}
		queue = append(queue, work{idx: i, target: t, fetcher: f})
	}

	outcomes := make(chan fetchOutcome, len(queue))
	var g errgroup.Group
	g.SetLimit(p.fetch.Concurrency)
	for _, w := range queue {
		g.Go(func() error {
			jobs, err := p.fetchOne(budgetCtx, w.fetcher, w.target)
			outcomes <- fetchOutcome{idx: w.idx, jobs: jobs, err: err}
			return nil
		})
	}
	// Workers never return errors; failures travel in the outcome.
	_ = g.Wait()
	close(outcomes)

	var merged []model.Job
	for out := range outcomes {
		t := targets[out.idx]
		c := &companies[out.idx]
		if out.err != nil {
			reason := model.ClassifyFetchReason(out.err)
			p.logger.Warn("target fetch failed",
				"target", t.Name, "ats", c.Backend, "reason", string(reason), "error", out.err)
			c.Failure = failureLabel(reason, out.err)
			failures = append(failures, PartialFailure{
				Target:  t.Name,
				Backend: c.Backend,
				Reason:  reason,
				Err:     out.err,
			})
			continue
		}
		clean := normalize(out.jobs, fetchedAt)
		c.Fetched = len(out.jobs)
		c.Dropped = len(out.jobs) - len(clean)
		merged = append(merged, clean...)
		p.logger.Debug("target fetched",
			"target", t.Name, "ats", c.Backend, "jobs", len(out.jobs), "dropped", c.Dropped)
	}

	sort.Slice(failures, func(i, j int) bool { return failures[i].Target < failures[j].Target })
	sortJobs(merged)
	return merged, companies, failures
}

// fetchOne waits out the backend's rate bucket, then fetches with
// retries under the per-target deadline. The bucket wait runs against
// the stage budget so a slow bucket does not eat the target's own time.
func (p *Pipeline) fetchOne(ctx context.Context, f adapter.Fetcher, t config.Target) ([]model.Job, error) {
	if err := p.limiter.Wait(ctx, backendKey(t.ATS)); err != nil {
		return nil, err
	}

	tctx, cancel := context.WithTimeout(ctx, p.fetch.TargetTimeout)
	defer cancel()
	return retry.Wrap(f, p.fetch.Retries, p.fetch.RetryBaseDelay, p.logger).Fetch(tctx, t)
}

// filterStage applies the relevance rules and fills in the per-company
// kept counts. With the filter skipped everything survives.
func (p *Pipeline) filterStage(jobs []model.Job, companies []report.Company) []model.Job {
	if p.skipFilter {
		p.logger.Info("relevance filter disabled, keeping all postings", "jobs", len(jobs))
		for i := range companies {
			if companies[i].Failure == "" {
				companies[i].Kept = companies[i].Fetched - companies[i].Dropped
			}
		}
		return jobs
	}

	// Rows are keyed by display name plus backend so two boards for the
	// same company keep separate counts.
	type rowKey struct{ name, backend string }
	keptBy := make(map[rowKey]int, len(companies))
	kept := make([]model.Job, 0, len(jobs))
	for _, j := range jobs {
		if !p.rules.Match(j) {
			continue
		}
		kept = append(kept, j)
		keptBy[rowKey{j.CompanyName, j.Source}]++
	}
	for i := range companies {
		companies[i].Kept = keptBy[rowKey{companies[i].Name, companies[i].Backend}]
	}
	p.logger.Info("filtered postings", "in", len(jobs), "kept", len(kept))
	return kept
}

// normalize trims whitespace, stamps FetchedAt, and drops postings
// missing the fields the rest of the pipeline depends on.
func normalize(jobs []model.Job, fetchedAt time.Time) []model.Job {
	clean := make([]model.Job, 0, len(jobs))
	for _, j := range jobs {
		j.Company = strings.TrimSpace(j.Company)
		j.CompanyName = strings.TrimSpace(j.CompanyName)
		j.ExternalID = strings.TrimSpace(j.ExternalID)
		j.Title = strings.TrimSpace(j.Title)
		j.Location = strings.TrimSpace(j.Location)
		j.URL = strings.TrimSpace(j.URL)
		j.FetchedAt = fetchedAt
		if !j.Valid() {
			continue
		}
		clean = append(clean, j)
	}
	return clean
}

// sortJobs orders a merged batch by source, company, external id and
// title, so identical inputs produce identical downstream batches.
func sortJobs(jobs []model.Job) {
	sort.Slice(jobs, func(i, j int) bool {
		a, b := jobs[i], jobs[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Company != b.Company {
			return a.Company < b.Company
		}
		if a.ExternalID != b.ExternalID {
			return a.ExternalID < b.ExternalID
		}
		return a.Title < b.Title
	})
}

func failureLabel(reason model.FetchReason, err error) string {
	return fmt.Sprintf("%s: %v", reason, err)
}

// backendKey canonicalizes a configured ats name to the adapter's own
// spelling, so summary rows and rate buckets line up across alias
// spellings like workday_gql.
func backendKey(ats string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(ats)), "_", "-")
}
