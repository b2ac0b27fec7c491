package core

import (
	"time"

	"github.com/baxromumarov/pharma-pricer/internal/model"
	"github.com/baxromumarov/pharma-pricer/internal/pricing"
	"github.com/baxromumarov/pharma-pricer/internal/scraper"
	"github.com/baxromumarov/pharma-pricer/internal/textutil"
)

// Verdict labels how a record was decided.
type Verdict string

const (
	VerdictAvailable   Verdict = "available"
	VerdictUnavailable Verdict = "unavailable"
	VerdictMismatch    Verdict = "mismatch"
	VerdictNotFound    Verdict = "not_found"
)

// Builder turns dispatcher outcomes into output records.
type Builder struct {
	now func() time.Time
}

func NewBuilder(now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{now: now}
}

func (b *Builder) Build(site string, out scraper.Outcome, q model.ProductQuery) model.OutputRecord {
	rec, _ := b.build(site, out, q)
	return rec
}

func (b *Builder) build(site string, out scraper.Outcome, q model.ProductQuery) (model.OutputRecord, Verdict) {
	rec := model.OutputRecord{
		Site:         site,
		EAN:          q.EAN,
		Brand:        model.PlaceholderBrand,
		Availability: model.Unavailable,
		Date:         b.now().Format(model.DateLayout),
	}

	if out.State != scraper.StateExtracted {
		rec.ProductName = model.PlaceholderNotFound
		return rec, VerdictNotFound
	}
	ext := out.Extraction
	if !textutil.Matches(ext.Name.String, q.Keyword) {
		rec.ProductName = model.PlaceholderMismatch
		return rec, VerdictMismatch
	}
	rec.ProductName = ext.Name.String

	normalize := pricing.ForSite(site)
	sale := normalize(ext.OnlinePrice.String)
	list := normalize(ext.ListPrice.String)
	if sale > 0 && list == 0 {
		list = sale
	}
	if sale > list && list > 0 {
		sale, list = list, sale
	}
	if sale == 0 {
		return rec, VerdictUnavailable
	}

	rec.SalePrice, rec.ListPrice = sale, list
	rec.Availability = model.AvailableIf(sale)
	rec.Brand = ext.Brand.Or(scraper.Some(model.PlaceholderBrand)).String
	return rec, VerdictAvailable
}
