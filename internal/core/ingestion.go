package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/baxromumarov/pharma-pricer/internal/model"
	"github.com/baxromumarov/pharma-pricer/internal/observability"
	"github.com/baxromumarov/pharma-pricer/internal/scraper"
)

// Sink receives the records of one run in order.
type Sink interface {
	Reset(ctx context.Context) error
	Append(ctx context.Context, rec model.OutputRecord) error
}

type Dispatcher interface {
	Dispatch(ctx context.Context, p scraper.Profile, q model.ProductQuery) (scraper.Outcome, error)
}

type RunSummary struct {
	Total       int           `json:"total"`
	Available   int           `json:"available"`
	Unavailable int           `json:"unavailable"`
	Mismatched  int           `json:"mismatched"`
	NotFound    int           `json:"not_found"`
	Elapsed     time.Duration `json:"elapsed"`
}

func (s *RunSummary) add(v Verdict) {
	s.Total++
	switch v {
	case VerdictAvailable:
		s.Available++
	case VerdictUnavailable:
		s.Unavailable++
	case VerdictMismatch:
		s.Mismatched++
	case VerdictNotFound:
		s.NotFound++
	}
}

// Runner walks the catalog against every site, one pair at a time, and
// writes one record per pair.
type Runner struct {
	dispatcher Dispatcher
	builder    *Builder
	sink       Sink
	logger     *slog.Logger
}

func NewRunner(dispatcher Dispatcher, builder *Builder, sink Sink, logger *slog.Logger) *Runner {
	if builder == nil {
		builder = NewBuilder(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{dispatcher: dispatcher, builder: builder, sink: sink, logger: logger}
}

// Run resets the sink and processes queries (outer) against sites (inner).
// It stops at the first fatal error; records already appended are kept.
func (r *Runner) Run(ctx context.Context, queries []model.ProductQuery, sites []string) (RunSummary, error) {
	start := time.Now()
	var summary RunSummary

	profiles, unknown := scraper.Lookup(sites)
	if len(unknown) > 0 {
		return summary, fmt.Errorf("unknown sites: %s", strings.Join(unknown, ", "))
	}

	if err := r.sink.Reset(ctx); err != nil {
		observability.IncError(observability.ClassifyError(err), "sink")
		return summary, fmt.Errorf("reset sink: %w", err)
	}

	r.logger.Info("run: starting", "products", len(queries), "sites", len(profiles))
	for i, q := range queries {
		r.logger.Info("run: product", "index", i+1, "of", len(queries), "ean", q.EAN, "keyword", q.Keyword)
		for _, p := range profiles {
			if err := ctx.Err(); err != nil {
				summary.Elapsed = time.Since(start)
				return summary, err
			}
			v, err := r.runPair(ctx, p, q)
			if err != nil {
				summary.Elapsed = time.Since(start)
				return summary, err
			}
			summary.add(v)
		}
	}

	summary.Elapsed = time.Since(start)
	r.logger.Info("run: finished",
		"total", summary.Total,
		"available", summary.Available,
		"mismatched", summary.Mismatched,
		"not_found", summary.NotFound,
		"elapsed", summary.Elapsed.String(),
	)
	return summary, nil
}

func (r *Runner) runPair(ctx context.Context, p scraper.Profile, q model.ProductQuery) (Verdict, error) {
	pairStart := time.Now()
	observability.IncPairDispatched(p.ID)

	out, err := r.dispatcher.Dispatch(ctx, p, q)
	if err != nil {
		observability.IncError(observability.ClassifyError(err), "dispatcher")
		return "", err
	}
	if out.TimedOut {
		observability.IncError(observability.ErrorTimeout, p.ID)
	}
	if out.Snapshot != "" {
		observability.IncSnapshot(p.ID)
	}

	rec, v := r.builder.build(p.ID, out, q)
	if v == VerdictMismatch {
		observability.IncError(observability.ErrorMismatch, p.ID)
	}
	if err := r.sink.Append(ctx, rec); err != nil {
		observability.IncError(observability.ClassifyError(err), "sink")
		return "", fmt.Errorf("append %s %s: %w", p.ID, q.EAN, err)
	}
	observability.IncRecordWritten(p.ID)
	observability.IncOutcome(p.ID, string(v))
	observability.ObservePairDuration(p.ID, time.Since(pairStart).Seconds())

	r.logger.Info("run: record written",
		"site", p.ID,
		"ean", q.EAN,
		"state", string(v),
		"name", rec.ProductName,
		"sale_price", rec.SalePrice,
		"list_price", rec.ListPrice,
	)
	return v, nil
}
