// Package browser implements page.Session on a Chrome tab driven by Rod.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/baxromumarov/pharma-pricer/internal/page"
)

type Config struct {
	// RemoteURL is the DevTools WebSocket URL of a running Chrome.
	// Empty launches a local one.
	RemoteURL string

	Headless        bool
	UserAgent       string
	Width, Height   int
	PageLoadTimeout time.Duration
	SnapshotDir     string

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Width <= 0 {
		c.Width = 1920
	}
	if c.Height <= 0 {
		c.Height = 1080
	}
	if c.PageLoadTimeout <= 0 {
		c.PageLoadTimeout = 40 * time.Second
	}
	if c.SnapshotDir == "" {
		c.SnapshotDir = "."
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

type Session struct {
	cfg     Config
	browser *rod.Browser
	lnch    *launcher.Launcher
	page    *rod.Page

	closeOnce sync.Once
	closeErr  error
}

// Open launches (or connects to) Chrome and opens one stealth tab that
// is reused for the whole run.
func Open(ctx context.Context, cfg Config) (*Session, error) {
	cfg.defaults()
	log := cfg.Logger
	s := &Session{cfg: cfg}

	wsURL := cfg.RemoteURL
	if wsURL == "" {
		l := launcher.New().
			Headless(cfg.Headless).
			NoSandbox(true).
			Set("disable-gpu").
			Set("disable-blink-features", "AutomationControlled").
			Set("disable-notifications").
			Set("window-size", fmt.Sprintf("%d,%d", cfg.Width, cfg.Height)).
			Set("log-level", "3")
		u, err := l.Context(ctx).Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		s.lnch = l
		log.Info("browser: launched local chrome", "headless", cfg.Headless)
	} else {
		log.Info("browser: connecting to remote", "url", wsURL)
	}

	b := rod.New().ControlURL(wsURL).Context(ctx)
	if err := b.Connect(); err != nil {
		s.cleanup()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	s.browser = b

	p, err := stealth.Page(b)
	if err != nil {
		s.cleanup()
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}
	s.page = p

	if cfg.UserAgent != "" {
		if err := p.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: cfg.UserAgent}); err != nil {
			log.Warn("browser: set user agent failed", "error", err)
		}
	}
	if err := p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{Width: cfg.Width, Height: cfg.Height}); err != nil {
		log.Warn("browser: set viewport failed", "error", err)
	}
	for _, perm := range []proto.BrowserPermissionType{proto.BrowserPermissionTypeNotifications, proto.BrowserPermissionTypeGeolocation} {
		err := proto.BrowserSetPermission{
			Permission: &proto.BrowserPermissionDescriptor{Name: string(perm)},
			Setting:    proto.BrowserPermissionSettingDenied,
		}.Call(b)
		if err != nil {
			log.Warn("browser: deny permission failed", "permission", string(perm), "error", err)
		}
	}

	return s, nil
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := withDeadline(ctx, s.cfg.PageLoadTimeout)
	defer cancel()
	if err := s.page.Context(navCtx).Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, mapErr(err))
	}

	// DOMContentLoaded is enough; sites keep rendering after it.
	stableCtx, cancelStable := withDeadline(ctx, s.cfg.PageLoadTimeout)
	defer cancelStable()
	if err := s.page.Context(stableCtx).WaitDOMStable(300*time.Millisecond, 0.5); err != nil {
		s.cfg.Logger.Debug("browser: dom not stable", "url", url, "error", err)
	}
	return nil
}

func (s *Session) Find(ctx context.Context, loc page.Locator) (page.Element, error) {
	return find(s.page.Context(ctx).Sleeper(rod.NotFoundSleeper), loc)
}

func (s *Session) FindAll(ctx context.Context, loc page.Locator) ([]page.Element, error) {
	return findAll(s.page.Context(ctx), loc)
}

func (s *Session) WaitFor(ctx context.Context, loc page.Locator, cond page.Condition, timeout time.Duration) (page.Element, error) {
	waitCtx, cancel := withDeadline(ctx, timeout)
	defer cancel()
	p := s.page.Context(waitCtx)
	var (
		el  *rod.Element
		err error
	)
	if sel, ok := loc.Selector(); ok {
		el, err = p.Element(sel)
	} else {
		el, err = p.ElementX(loc.Value)
	}
	if err != nil {
		return nil, fmt.Errorf("wait %s: %w", loc, mapErr(err))
	}
	if cond == page.Clickable {
		if err := el.WaitVisible(); err != nil {
			return nil, fmt.Errorf("wait clickable %s: %w", loc, mapErr(err))
		}
		if err := el.WaitEnabled(); err != nil {
			return nil, fmt.Errorf("wait clickable %s: %w", loc, mapErr(err))
		}
	}
	// Rebind to the caller's context; waitCtx dies with this call.
	return &element{el: el.Context(ctx)}, nil
}

// withDeadline bounds ctx by d. A non-positive d leaves ctx unbounded.
func withDeadline(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func (s *Session) WaitForAll(ctx context.Context, loc page.Locator, timeout time.Duration) ([]page.Element, error) {
	if _, err := s.WaitFor(ctx, loc, page.Present, timeout); err != nil {
		return nil, err
	}
	return s.FindAll(ctx, loc)
}

func (s *Session) Click(ctx context.Context, el page.Element, mode page.ClickMode) error {
	e, ok := el.(*element)
	if !ok {
		return errors.New("browser: foreign element")
	}
	re := e.el.Context(ctx)
	if mode == page.ScriptClick {
		_, err := re.Eval(`() => this.click()`)
		return err
	}
	return re.Click(proto.InputMouseButtonLeft, 1)
}

func (s *Session) PressKey(ctx context.Context, key page.Key) error {
	switch key {
	case page.KeyEscape:
		return s.page.Context(ctx).Keyboard.Type(input.Escape)
	}
	return fmt.Errorf("browser: unsupported key %d", key)
}

// Snapshot saves a full-page PNG screenshot.
func (s *Session) Snapshot(ctx context.Context, name string) (string, error) {
	img, err := s.page.Context(ctx).Screenshot(true, nil)
	if err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	if err := os.MkdirAll(s.cfg.SnapshotDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(s.cfg.SnapshotDir, name+".png")
	if err := os.WriteFile(path, img, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Close releases the tab, the browser and a locally launched Chrome. It
// is safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.cleanup()
	})
	return s.closeErr
}

func (s *Session) cleanup() error {
	var errs []error
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			errs = append(errs, err)
		}
		s.page = nil
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			errs = append(errs, err)
		}
		s.browser = nil
	}
	if s.lnch != nil {
		s.lnch.Cleanup()
		s.lnch = nil
	}
	return errors.Join(errs...)
}

type element struct {
	el *rod.Element
}

func (e *element) Text(ctx context.Context) (string, error) {
	t, err := e.el.Context(ctx).Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(t), nil
}

func (e *element) Find(ctx context.Context, loc page.Locator) (page.Element, error) {
	return find(e.el.Context(ctx).Sleeper(rod.NotFoundSleeper), loc)
}

func (e *element) FindAll(ctx context.Context, loc page.Locator) ([]page.Element, error) {
	return findAll(e.el.Context(ctx), loc)
}

// searcher is the lookup surface shared by *rod.Page and *rod.Element.
type searcher interface {
	Element(selector string) (*rod.Element, error)
	ElementX(xpath string) (*rod.Element, error)
	Elements(selector string) (rod.Elements, error)
	ElementsX(xpath string) (rod.Elements, error)
}

func find(s searcher, loc page.Locator) (page.Element, error) {
	var (
		el  *rod.Element
		err error
	)
	if sel, ok := loc.Selector(); ok {
		el, err = s.Element(sel)
	} else {
		el, err = s.ElementX(loc.Value)
	}
	if err != nil {
		var notFound *rod.ElementNotFoundError
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%s: %w", loc, page.ErrNotFound)
		}
		return nil, mapErr(err)
	}
	return &element{el: el}, nil
}

func findAll(s searcher, loc page.Locator) ([]page.Element, error) {
	var (
		els rod.Elements
		err error
	)
	if sel, ok := loc.Selector(); ok {
		els, err = s.Elements(sel)
	} else {
		els, err = s.ElementsX(loc.Value)
	}
	if err != nil {
		return nil, mapErr(err)
	}
	out := make([]page.Element, 0, len(els))
	for _, el := range els {
		out = append(out, &element{el: el})
	}
	return out, nil
}

func mapErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", page.ErrTimeout, err)
	}
	return err
}
