// Package page defines the narrow contract the scrapers need from a
// page-fetching session: navigation, bounded waits, element lookup
// and a diagnostic snapshot.
package page

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("page: element not found")
	ErrTimeout  = errors.New("page: wait timed out")
)

// IsTimeout reports whether err means a deadline was exceeded.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}

type By int

const (
	ByCSS By = iota
	ByTag
	ByID
	ByXPath
)

func (b By) String() string {
	switch b {
	case ByCSS:
		return "css"
	case ByTag:
		return "tag"
	case ByID:
		return "id"
	case ByXPath:
		return "xpath"
	}
	return "unknown"
}

// Locator is a rule for finding an element in the current document.
type Locator struct {
	By    By
	Value string
}

func CSS(v string) Locator   { return Locator{By: ByCSS, Value: v} }
func Tag(v string) Locator   { return Locator{By: ByTag, Value: v} }
func ID(v string) Locator    { return Locator{By: ByID, Value: v} }
func XPath(v string) Locator { return Locator{By: ByXPath, Value: v} }

// Selector returns the CSS form of the locator. XPath locators have none.
func (l Locator) Selector() (string, bool) {
	switch l.By {
	case ByCSS, ByTag:
		return l.Value, true
	case ByID:
		return "#" + l.Value, true
	}
	return "", false
}

func (l Locator) String() string {
	return l.By.String() + "=" + l.Value
}

func (l Locator) IsZero() bool {
	return l.Value == ""
}

type Condition int

const (
	Present Condition = iota
	Clickable
)

type ClickMode int

const (
	NativeClick ClickMode = iota
	ScriptClick
)

type Key int

const (
	KeyEscape Key = iota
)

// Scope is anything elements can be searched under: a whole page or a
// single result item. Find returns ErrNotFound on a miss and never waits.
type Scope interface {
	Find(ctx context.Context, loc Locator) (Element, error)
	FindAll(ctx context.Context, loc Locator) ([]Element, error)
}

type Element interface {
	Scope
	// Text returns the rendered text content, trimmed.
	Text(ctx context.Context) (string, error)
}

// Session drives one browser tab (or equivalent) through a run. It is
// not safe for concurrent use.
type Session interface {
	Scope
	Navigate(ctx context.Context, url string) error
	WaitFor(ctx context.Context, loc Locator, cond Condition, timeout time.Duration) (Element, error)
	WaitForAll(ctx context.Context, loc Locator, timeout time.Duration) ([]Element, error)
	Click(ctx context.Context, el Element, mode ClickMode) error
	PressKey(ctx context.Context, key Key) error
	// Snapshot saves a diagnostic capture of the current page and
	// returns the path written.
	Snapshot(ctx context.Context, name string) (string, error)
	Close() error
}
