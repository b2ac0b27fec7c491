package scraper

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/baxromumarov/pharma-pricer/internal/page"
	"github.com/baxromumarov/pharma-pricer/internal/pricing"
	"github.com/baxromumarov/pharma-pricer/internal/textutil"
)

const (
	currencyMarker  = "$"
	listPriceMarker = "Normal"
	minNameRunes    = 10
	minPriceDigits  = 4
)

// brandFromName derives a brand from the first word of the name.
func brandFromName(name Text) Text {
	if !name.Valid {
		return Text{}
	}
	return Some(textutil.FirstToken(name.String))
}

// extractFarmatodo reads each field from its own element, no fallbacks.
func extractFarmatodo(ctx context.Context, item page.Scope, loc Locators) RawExtraction {
	return RawExtraction{
		Name:        lookup(ctx, item, loc.Name),
		Brand:       lookup(ctx, item, loc.Brand),
		OnlinePrice: lookup(ctx, item, loc.OnlinePrice),
		ListPrice:   lookup(ctx, item, loc.ListPrice),
	}
}

// extractLaRebaja has a brand element; a missing list price means no
// discount is shown.
func extractLaRebaja(ctx context.Context, doc page.Scope, loc Locators) RawExtraction {
	online := lookup(ctx, doc, loc.OnlinePrice)
	return RawExtraction{
		Name:        lookup(ctx, doc, loc.Name),
		Brand:       lookup(ctx, doc, loc.Brand),
		OnlinePrice: online,
		ListPrice:   lookup(ctx, doc, loc.ListPrice).Or(online),
	}
}

// extractDerivedBrand serves sites with no brand markup (Locatel,
// Colsubsidio, Pasteur).
func extractDerivedBrand(ctx context.Context, scope page.Scope, loc Locators) RawExtraction {
	name := lookup(ctx, scope, loc.Name)
	online := lookup(ctx, scope, loc.OnlinePrice)
	return RawExtraction{
		Name:        name,
		Brand:       brandFromName(name),
		OnlinePrice: online,
		ListPrice:   lookup(ctx, scope, loc.ListPrice).Or(online),
	}
}

// extractOlimpica swaps in whichever price is present for the missing one.
func extractOlimpica(ctx context.Context, doc page.Scope, loc Locators) RawExtraction {
	online := lookup(ctx, doc, loc.OnlinePrice)
	list := lookup(ctx, doc, loc.ListPrice)
	return RawExtraction{
		Name:        lookup(ctx, doc, loc.Name),
		Brand:       lookup(ctx, doc, loc.Brand),
		OnlinePrice: online.Or(list),
		ListPrice:   list.Or(online),
	}
}

// extractCafam tries the special price, then the sale price, then the
// plain card price for the online price.
func extractCafam(ctx context.Context, item page.Scope, loc Locators) RawExtraction {
	name := lookup(ctx, item, loc.Name)
	list := lookup(ctx, item, loc.ListPrice)
	online := lookup(ctx, item, loc.OnlinePrice).
		Or(lookup(ctx, item, loc.SalePrice)).
		Or(list)
	return RawExtraction{
		Name:        name,
		Brand:       brandFromName(name),
		OnlinePrice: online,
		ListPrice:   list.Or(online),
	}
}

// extractCruzVerde handles cards without field markup. The name is the
// longest text block that is not a price, minus the manufacturer line.
// Prices are text blocks with a currency marker and enough digits; the
// one labelled "Normal" is the list price.
func extractCruzVerde(ctx context.Context, item page.Scope, loc Locators) RawExtraction {
	var out RawExtraction

	var rawName string
	for _, txt := range texts(ctx, item, loc.NameBlocks) {
		if utf8.RuneCountInString(txt) <= minNameRunes || strings.Contains(txt, currencyMarker) {
			continue
		}
		if utf8.RuneCountInString(txt) > utf8.RuneCountInString(rawName) {
			rawName = txt
		}
	}
	if rawName != "" {
		if m := lookup(ctx, item, loc.Manufacturer); m.Valid {
			rawName = strings.ReplaceAll(rawName, m.String, "")
		}
		out.Name = Some(strings.ReplaceAll(rawName, "\n", " "))
		out.Brand = brandFromName(out.Name)
	}

	for _, txt := range texts(ctx, item, loc.PriceBlocks) {
		if !strings.Contains(txt, currencyMarker) || pricing.DigitCount(txt) < minPriceDigits {
			continue
		}
		switch {
		case strings.Contains(txt, listPriceMarker):
			out.ListPrice = Some(txt)
		case !out.OnlinePrice.Valid:
			out.OnlinePrice = Some(txt)
		}
	}
	return out
}
