package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/baxromumarov/pharma-pricer/internal/model"
	"github.com/baxromumarov/pharma-pricer/internal/page"
	"github.com/baxromumarov/pharma-pricer/internal/textutil"
	"github.com/baxromumarov/pharma-pricer/internal/urlutil"
)

// State is where a (product, site) pair ended up in the dispatcher.
type State int

const (
	StateNotFound State = iota
	StateExtracted
)

func (s State) String() string {
	if s == StateExtracted {
		return "extracted"
	}
	return "not_found"
}

// Outcome is the result of one dispatch.
type Outcome struct {
	State      State
	Extraction RawExtraction
	// TimedOut is set when a wait exceeded its deadline.
	TimedOut bool
	Snapshot string
}

type Timeouts struct {
	PageReady  time.Duration
	Element    time.Duration
	Settle     time.Duration
	PopupPause time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		PageReady:  15 * time.Second,
		Element:    20 * time.Second,
		Settle:     5 * time.Second,
		PopupPause: time.Second,
	}
}

var readyLocator = page.Tag("body")

// Dispatcher drives the shared session through one site search at a time.
type Dispatcher struct {
	session  page.Session
	timeouts Timeouts
	logger   *slog.Logger
}

func NewDispatcher(session page.Session, timeouts Timeouts, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{session: session, timeouts: timeouts, logger: logger}
}

// Dispatch searches p for q and extracts the product fields. Timeouts end
// in a NotFound outcome with a snapshot; any other error is returned and
// should stop the run.
func (d *Dispatcher) Dispatch(ctx context.Context, p Profile, q model.ProductQuery) (Outcome, error) {
	log := d.logger.With("site", p.ID, "ean", q.EAN, "keyword", q.Keyword)
	target := urlutil.SearchURL(p.SearchURL, q.EAN)
	if !urlutil.IsHTTP(target) {
		return Outcome{}, fmt.Errorf("dispatch %s: bad search url %q", p.ID, target)
	}

	log.Info("dispatch: navigating", "url", target, "strategy", p.Strategy.String())
	if err := d.session.Navigate(ctx, target); err != nil {
		return d.fail(ctx, log, p, q, err)
	}
	if _, err := d.session.WaitFor(ctx, readyLocator, page.Present, d.timeouts.PageReady); err != nil {
		return d.fail(ctx, log, p, q, err)
	}
	if err := sleepWithContext(ctx, d.timeouts.Settle); err != nil {
		return Outcome{}, err
	}
	if err := d.dismissPopup(ctx, log, p); err != nil {
		return Outcome{}, err
	}

	var (
		ext *RawExtraction
		err error
	)
	switch p.Strategy {
	case DirectPage:
		ext, err = d.directPage(ctx, p)
	case ListFirst:
		ext, err = d.listFirst(ctx, p)
	case ListFilteredByKeyword:
		ext, err = d.listFiltered(ctx, log, p, q)
	default:
		return Outcome{}, fmt.Errorf("dispatch %s: unknown strategy %d", p.ID, p.Strategy)
	}
	if err != nil {
		return d.fail(ctx, log, p, q, err)
	}
	if ext == nil {
		log.Info("dispatch: product not found")
		return Outcome{State: StateNotFound}, nil
	}
	log.Info("dispatch: extracted", "name", ext.Name.String)
	return Outcome{State: StateExtracted, Extraction: *ext}, nil
}

func (d *Dispatcher) directPage(ctx context.Context, p Profile) (*RawExtraction, error) {
	if _, err := d.session.WaitFor(ctx, p.Locators.Name, page.Present, d.timeouts.Element); err != nil {
		return nil, err
	}
	ext := p.Extract(ctx, d.session, p.Locators)
	return &ext, nil
}

func (d *Dispatcher) listFirst(ctx context.Context, p Profile) (*RawExtraction, error) {
	var (
		item page.Element
		err  error
	)
	if p.WaitForName {
		if _, err = d.session.WaitFor(ctx, p.Locators.Name, page.Present, d.timeouts.Element); err != nil {
			return nil, err
		}
		item, err = d.session.Find(ctx, p.Container)
		if errors.Is(err, page.ErrNotFound) {
			return nil, nil
		}
	} else {
		item, err = d.session.WaitFor(ctx, p.Container, page.Present, d.timeouts.Element)
		if err != nil && page.IsTimeout(err) && !p.FallbackContainer.IsZero() {
			d.logger.Info("dispatch: primary container missing, trying fallback", "site", p.ID)
			item, err = d.session.WaitFor(ctx, p.FallbackContainer, page.Present, d.timeouts.Element)
		}
	}
	if err != nil {
		return nil, err
	}
	ext := p.Extract(ctx, item, p.Locators)
	return &ext, nil
}

func (d *Dispatcher) listFiltered(ctx context.Context, log *slog.Logger, p Profile, q model.ProductQuery) (*RawExtraction, error) {
	items, err := d.session.WaitForAll(ctx, p.Container, d.timeouts.Element)
	if err != nil {
		return nil, err
	}
	log.Info("dispatch: scanning results", "count", len(items))
	for _, item := range items {
		name := lookup(ctx, item, p.Locators.Name)
		if !textutil.Matches(name.String, q.Keyword) {
			log.Debug("dispatch: result does not match keyword", "name", name.String)
			continue
		}
		ext := p.Extract(ctx, item, p.Locators)
		return &ext, nil
	}
	return nil, nil
}

// dismissPopup closes a site's known overlay, falling back to the ESC key.
// Nothing here is allowed to fail the dispatch except cancellation.
func (d *Dispatcher) dismissPopup(ctx context.Context, log *slog.Logger, p Profile) error {
	if pp := p.Popup; pp != nil {
		el, err := d.session.WaitFor(ctx, pp.Locator, pp.Condition, pp.Timeout)
		if err == nil {
			err = d.session.Click(ctx, el, pp.Click)
		}
		if err == nil {
			log.Info("dispatch: popup closed")
			return sleepWithContext(ctx, d.timeouts.PopupPause)
		}
		log.Debug("dispatch: popup not dismissed", "error", err)
	}
	if err := d.session.PressKey(ctx, page.KeyEscape); err != nil {
		log.Debug("dispatch: escape key failed", "error", err)
		return ctx.Err()
	}
	return sleepWithContext(ctx, d.timeouts.PopupPause)
}

func (d *Dispatcher) fail(ctx context.Context, log *slog.Logger, p Profile, q model.ProductQuery, err error) (Outcome, error) {
	if !page.IsTimeout(err) || ctx.Err() != nil {
		return Outcome{}, fmt.Errorf("dispatch %s %s: %w", p.ID, q.EAN, err)
	}
	out := Outcome{State: StateNotFound, TimedOut: true}
	path, snapErr := d.session.Snapshot(ctx, fmt.Sprintf("%s_%s_error", p.ID, q.EAN))
	if snapErr != nil {
		log.Warn("dispatch: snapshot failed", "error", snapErr)
	} else {
		out.Snapshot = path
	}
	log.Warn("dispatch: timed out, recording as not available", "error", err, "snapshot", path)
	return out, nil
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
