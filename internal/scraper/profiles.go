package scraper

import (
	"time"

	"github.com/baxromumarov/pharma-pricer/internal/page"
)

// Site identifiers.
const (
	CruzVerde   = "cruzverde_co"
	Farmatodo   = "farmatodo_co"
	LaRebaja    = "larebaja_co"
	Locatel     = "locatel_co"
	Colsubsidio = "colsubsidio_co"
	Cafam       = "cafam_co"
	Olimpica    = "olimpica_co"
	Pasteur     = "pasteur_co"
)

// Profiles returns the supported sites in their default query order.
// Every call builds a fresh table, so callers cannot mutate a shared one.
func Profiles() []Profile {
	return []Profile{
		{
			ID:        CruzVerde,
			SearchURL: "https://www.cruzverde.com.co/search?query={q}",
			Strategy:  ListFirst,
			Container: page.Tag("ml-card-product"),
			Locators: Locators{
				Manufacturer: page.CSS("div.italic"),
				NameBlocks:   []page.Locator{page.Tag("div"), page.Tag("p")},
				PriceBlocks:  []page.Locator{page.Tag("span"), page.Tag("p")},
			},
			Extract: extractCruzVerde,
			Popup: &Popup{
				Locator:   page.XPath("//button[contains(., 'Bogot')]"),
				Condition: page.Clickable,
				Click:     page.NativeClick,
				Timeout:   3 * time.Second,
			},
		},
		{
			ID:                Farmatodo,
			SearchURL:         "https://www.farmatodo.com.co/buscar?product={q}",
			Strategy:          ListFirst,
			Container:         page.CSS("div[data-testid='product-card']"),
			FallbackContainer: page.Tag("app-new-product-card"),
			Locators: Locators{
				Name:        page.CSS("p.text-title"),
				Brand:       page.CSS("p.text-brand"),
				OnlinePrice: page.CSS("span.price__text-price"),
				ListPrice:   page.CSS("span.price__text-offer-price"),
			},
			Extract: extractFarmatodo,
		},
		{
			ID:        LaRebaja,
			SearchURL: "https://www.larebajavirtual.com/{q}?_q={q}&map=ft",
			Strategy:  DirectPage,
			Locators: Locators{
				Name:        page.CSS("h3.vtex-product-summary-2-x-productNameContainer"),
				Brand:       page.CSS("span.vtex-store-components-3-x-productBrandName"),
				OnlinePrice: page.CSS("span.vtex-product-price-1-x-sellingPrice"),
				ListPrice:   page.CSS("span.vtex-product-price-1-x-listPrice"),
			},
			Extract: extractLaRebaja,
		},
		{
			ID:        Locatel,
			SearchURL: "https://www.locatelcolombia.com/{q}?_q={q}&map=ft",
			Strategy:  DirectPage,
			Locators: Locators{
				Name:        page.CSS("h2.vtex-product-summary-2-x-productNameContainer"),
				OnlinePrice: page.CSS("span.vtex-store-components-3-x-sellingPrice"),
				ListPrice:   page.CSS("div.vtex-store-components-3-x-listPrice"),
			},
			Extract: extractDerivedBrand,
		},
		{
			ID:        Colsubsidio,
			SearchURL: "https://www.drogueriascolsubsidio.com/{q}",
			Strategy:  ListFirst,
			Container: page.CSS("div.product-Vitrina-masVendidos"),
			Locators: Locators{
				Name:        page.CSS("p.dataproducto-nameProduct"),
				OnlinePrice: page.CSS("p.dataproducto-bestPrice"),
				ListPrice:   page.CSS("div.precioTachadoVitrina"),
			},
			Extract: extractDerivedBrand,
		},
		{
			ID:          Cafam,
			SearchURL:   "https://www.drogueriascafam.com.co/#2fce/fullscreen/m=and&q={q}",
			Strategy:    ListFirst,
			Container:   page.CSS("div.dfd-card"),
			WaitForName: true,
			Locators: Locators{
				Name:        page.CSS("div.dfd-card-title"),
				OnlinePrice: page.CSS("span.dfd-card-special-price"),
				SalePrice:   page.CSS("span.dfd-card-price--sale"),
				ListPrice:   page.CSS("span.dfd-card-price"),
			},
			Extract: extractCafam,
			Popup: &Popup{
				Locator:   page.ID("popupbasic-close"),
				Condition: page.Present,
				Click:     page.ScriptClick,
				Timeout:   10 * time.Second,
			},
		},
		{
			ID:        Olimpica,
			SearchURL: "https://www.olimpica.com/{q}?_q={q}&map=ft",
			Strategy:  DirectPage,
			Locators: Locators{
				Name:        page.CSS("h3.vtex-product-summary-2-x-productNameContainer"),
				Brand:       page.CSS("span.vtex-product-summary-2-x-productBrandName"),
				OnlinePrice: page.CSS("div.olimpica-dinamic-flags-0-x-listPrices"),
				ListPrice:   page.CSS("span.vtex-product-price-1-x-sellingPrice--summary"),
			},
			Extract: extractOlimpica,
		},
		{
			ID:        Pasteur,
			SearchURL: "https://www.farmaciaspasteur.com.co/{q}?_q={q}&map=ft",
			Strategy:  ListFilteredByKeyword,
			Container: page.CSS("section.vtex-product-summary-2-x-container"),
			Locators: Locators{
				Name:        page.CSS("h4.vtex-product-summary-2-x-productNameContainer"),
				OnlinePrice: page.CSS("span.vtex-product-price-1-x-sellingPriceValue"),
				ListPrice:   page.CSS("span.vtex-product-price-1-x-listPriceValue"),
			},
			Extract: extractDerivedBrand,
		},
	}
}

// SiteIDs lists the identifiers of Profiles in order.
func SiteIDs() []string {
	ps := Profiles()
	ids := make([]string, 0, len(ps))
	for _, p := range ps {
		ids = append(ids, p.ID)
	}
	return ids
}

// Lookup resolves site identifiers to profiles, preserving the given order.
// Unknown identifiers are returned separately.
func Lookup(ids []string) (profiles []Profile, unknown []string) {
	byID := make(map[string]Profile)
	for _, p := range Profiles() {
		byID[p.ID] = p
	}
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		profiles = append(profiles, p)
	}
	return profiles, unknown
}
