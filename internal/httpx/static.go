package httpx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/baxromumarov/pharma-pricer/internal/page"
)

// Loader returns the raw HTML behind a URL.
type Loader interface {
	Load(ctx context.Context, url string) ([]byte, error)
}

// MapLoader serves fixed documents keyed by URL.
type MapLoader map[string]string

func (m MapLoader) Load(_ context.Context, url string) ([]byte, error) {
	doc, ok := m[url]
	if !ok {
		return nil, &FetchError{Status: 404, Err: fmt.Errorf("no document for %s", url)}
	}
	return []byte(doc), nil
}

// StaticSession implements page.Session over server-rendered HTML. Nothing
// can appear after load, so a missing element fails its wait at once with
// page.ErrTimeout.
type StaticSession struct {
	loader      Loader
	snapshotDir string
	doc         *goquery.Document
	raw         []byte
	url         string
}

func NewStaticSession(loader Loader, snapshotDir string) *StaticSession {
	return &StaticSession{loader: loader, snapshotDir: snapshotDir}
}

func (s *StaticSession) Navigate(ctx context.Context, url string) error {
	s.doc, s.raw, s.url = nil, nil, ""
	body, err := s.loader.Load(ctx, url)
	var fe *FetchError
	switch {
	case err == nil:
	case errors.As(err, &fe) && fe.Status >= 400:
		// A browser would render the error page; do the same with an
		// empty document so later waits time out.
		body = nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("navigate %s: %w", url, page.ErrTimeout)
	default:
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("parse %s: %w", url, err)
	}
	s.doc, s.raw, s.url = doc, body, url
	return nil
}

func (s *StaticSession) root() (*goquery.Selection, error) {
	if s.doc == nil {
		return nil, errors.New("static session: no document loaded")
	}
	return s.doc.Selection, nil
}

func (s *StaticSession) Find(ctx context.Context, loc page.Locator) (page.Element, error) {
	root, err := s.root()
	if err != nil {
		return nil, err
	}
	return element{sel: root, doc: s.doc}.Find(ctx, loc)
}

func (s *StaticSession) FindAll(ctx context.Context, loc page.Locator) ([]page.Element, error) {
	root, err := s.root()
	if err != nil {
		return nil, err
	}
	return element{sel: root, doc: s.doc}.FindAll(ctx, loc)
}

func (s *StaticSession) WaitFor(ctx context.Context, loc page.Locator, _ page.Condition, _ time.Duration) (page.Element, error) {
	el, err := s.Find(ctx, loc)
	if errors.Is(err, page.ErrNotFound) {
		return nil, fmt.Errorf("wait %s: %w", loc, page.ErrTimeout)
	}
	return el, err
}

func (s *StaticSession) WaitForAll(ctx context.Context, loc page.Locator, _ time.Duration) ([]page.Element, error) {
	els, err := s.FindAll(ctx, loc)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, fmt.Errorf("wait all %s: %w", loc, page.ErrTimeout)
	}
	return els, nil
}

// Click is accepted and ignored; static documents have no behaviour.
func (s *StaticSession) Click(context.Context, page.Element, page.ClickMode) error {
	return nil
}

func (s *StaticSession) PressKey(context.Context, page.Key) error {
	return nil
}

// Snapshot writes the HTML source of the current document.
func (s *StaticSession) Snapshot(_ context.Context, name string) (string, error) {
	dir := s.snapshotDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name+".html")
	if err := os.WriteFile(path, s.raw, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (s *StaticSession) Close() error {
	s.doc, s.raw = nil, nil
	return nil
}

type element struct {
	sel *goquery.Selection
	doc *goquery.Document
}

func (e element) Text(context.Context) (string, error) {
	return strings.TrimSpace(e.sel.Text()), nil
}

func (e element) Find(ctx context.Context, loc page.Locator) (page.Element, error) {
	all, err := e.FindAll(ctx, loc)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%s: %w", loc, page.ErrNotFound)
	}
	return all[0], nil
}

func (e element) FindAll(_ context.Context, loc page.Locator) ([]page.Element, error) {
	var found *goquery.Selection
	if sel, ok := loc.Selector(); ok {
		found = e.sel.Find(sel)
	} else {
		nodes, err := queryXPath(e.sel.Nodes, loc.Value)
		if err != nil {
			return nil, fmt.Errorf("xpath %q: %w", loc.Value, err)
		}
		found = e.doc.Selection.FindNodes(nodes...)
	}
	out := make([]page.Element, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		out = append(out, element{sel: s, doc: e.doc})
	})
	return out, nil
}

func queryXPath(roots []*html.Node, expr string) ([]*html.Node, error) {
	var out []*html.Node
	seen := make(map[*html.Node]struct{})
	for _, root := range roots {
		nodes, err := htmlquery.QueryAll(root, expr)
		if err != nil {
			return nil, err
		}
		for _, n := range nodes {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	return out, nil
}
