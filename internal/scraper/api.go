package scraper

import (
	"context"
	"strings"
	"time"

	"github.com/baxromumarov/pharma-pricer/internal/page"
)

// Text is an optional string field, shaped like sql.NullString.
type Text struct {
	String string
	Valid  bool
}

// Some trims s and wraps it; blank text counts as absent.
func Some(s string) Text {
	s = strings.TrimSpace(s)
	return Text{String: s, Valid: s != ""}
}

// Or returns t when present, otherwise alt.
func (t Text) Or(alt Text) Text {
	if t.Valid {
		return t
	}
	return alt
}

// RawExtraction is what a site extractor pulls out of one page or result
// item. It lives only for the duration of one dispatch.
type RawExtraction struct {
	Name        Text
	Brand       Text
	OnlinePrice Text
	ListPrice   Text
}

type Strategy int

const (
	// DirectPage sites redirect an EAN search to the product page.
	DirectPage Strategy = iota
	// ListFirst sites show a results list whose first card is the product.
	ListFirst
	// ListFilteredByKeyword sites list loosely related results; the first
	// card whose name matches the keyword is taken.
	ListFilteredByKeyword
)

func (s Strategy) String() string {
	switch s {
	case DirectPage:
		return "direct_page"
	case ListFirst:
		return "list_first"
	case ListFilteredByKeyword:
		return "list_filtered"
	}
	return "unknown"
}

// Locators names where each field lives. Sites only fill what they use.
type Locators struct {
	Name         page.Locator
	Brand        page.Locator
	OnlinePrice  page.Locator
	SalePrice    page.Locator
	ListPrice    page.Locator
	Manufacturer page.Locator

	// NameBlocks and PriceBlocks are scanned in order by sites without
	// dedicated name or price markup.
	NameBlocks  []page.Locator
	PriceBlocks []page.Locator
}

// Extractor maps a page or result item to a RawExtraction. A missing
// field degrades to an absent Text, never an error.
type Extractor func(ctx context.Context, scope page.Scope, loc Locators) RawExtraction

// Popup describes a modal overlay a site shows after load.
type Popup struct {
	Locator   page.Locator
	Condition page.Condition
	Click     page.ClickMode
	Timeout   time.Duration
}

// Profile is the static description of one supported site.
type Profile struct {
	ID        string
	SearchURL string
	Strategy  Strategy

	Container         page.Locator
	FallbackContainer page.Locator
	// WaitForName makes a ListFirst site wait for the name field before
	// taking the container, for cards that render their shell early.
	WaitForName bool

	Locators Locators
	Extract  Extractor
	Popup    *Popup
}

// lookup reads the text under loc, or reports it absent.
func lookup(ctx context.Context, scope page.Scope, loc page.Locator) Text {
	if scope == nil || loc.IsZero() {
		return Text{}
	}
	el, err := scope.Find(ctx, loc)
	if err != nil {
		return Text{}
	}
	txt, err := el.Text(ctx)
	if err != nil {
		return Text{}
	}
	return Some(txt)
}

// texts returns the non-empty texts of every element matched by locs, in
// locator order and then document order.
func texts(ctx context.Context, scope page.Scope, locs []page.Locator) []string {
	var out []string
	for _, loc := range locs {
		els, err := scope.FindAll(ctx, loc)
		if err != nil {
			continue
		}
		for _, el := range els {
			txt, err := el.Text(ctx)
			if err != nil {
				continue
			}
			if txt = strings.TrimSpace(txt); txt != "" {
				out = append(out, txt)
			}
		}
	}
	return out
}
