package scraper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/baxromumarov/pharma-pricer/internal/httpx"
	"github.com/baxromumarov/pharma-pricer/internal/page"
)

// loadScope parses doc into a static session and returns the first element
// matched by container, or the whole page when container is zero.
func loadScope(t *testing.T, doc string, container page.Locator) page.Scope {
	t.Helper()
	ctx := context.Background()
	s := httpx.NewStaticSession(httpx.MapLoader{"fixture": doc}, t.TempDir())
	require.NoError(t, s.Navigate(ctx, "fixture"))
	if container.IsZero() {
		return s
	}
	el, err := s.Find(ctx, container)
	require.NoError(t, err)
	return el
}

func profile(t *testing.T, id string) Profile {
	t.Helper()
	ps, unknown := Lookup([]string{id})
	require.Empty(t, unknown)
	return ps[0]
}

func extract(t *testing.T, id, doc string) RawExtraction {
	t.Helper()
	p := profile(t, id)
	container := p.Container
	if p.Strategy == DirectPage {
		container = page.Locator{}
	}
	return p.Extract(context.Background(), loadScope(t, doc, container), p.Locators)
}

func some(s string) Text { return Text{String: s, Valid: true} }

func TestExtractCruzVerde(t *testing.T) {
	doc := `<html><body>
<ml-card-product>
  <div class="card">
    <div class="italic">PROCTER &amp; GAMBLE</div>
    <p>Vick VapoRub Ungüento x 50 g</p>
    <span>$ 18.900</span>
    <span>Precio Normal $ 21.000</span>
    <span>$ 90</span>
  </div>
</ml-card-product>
</body></html>`

	got := extract(t, CruzVerde, doc)
	require.Equal(t, RawExtraction{
		Name:        some("Vick VapoRub Ungüento x 50 g"),
		Brand:       some("Vick"),
		OnlinePrice: some("$ 18.900"),
		ListPrice:   some("Precio Normal $ 21.000"),
	}, got)
}

func TestExtractCruzVerdeStripsManufacturer(t *testing.T) {
	doc := `<html><body>
<ml-card-product>
  <div class="info">
    <div class="italic">GENOMMA LAB</div>
    <p>Cebión Vitamina C x 100 tabletas</p>
  </div>
  <div class="prices"><p>$ 32.500</p></div>
</ml-card-product>
</body></html>`

	got := extract(t, CruzVerde, doc)
	require.Equal(t, some("Cebión Vitamina C x 100 tabletas"), got.Name)
	require.Equal(t, some("Cebión"), got.Brand)
	require.Equal(t, some("$ 32.500"), got.OnlinePrice)
	require.False(t, got.ListPrice.Valid)
}

func TestExtractCruzVerdeEmptyCard(t *testing.T) {
	got := extract(t, CruzVerde, `<html><body><ml-card-product><p>short</p></ml-card-product></body></html>`)
	require.Equal(t, RawExtraction{}, got)
}

func TestExtractFarmatodo(t *testing.T) {
	doc := `<html><body>
<div data-testid="product-card">
  <p class="text-brand">NEUROBION</p>
  <p class="text-title">Neurobion 5000 x 30 tabletas</p>
  <span class="price__text-price">$ 45.000</span>
</div>
</body></html>`

	got := extract(t, Farmatodo, doc)
	require.Equal(t, some("NEUROBION"), got.Brand)
	require.Equal(t, some("Neurobion 5000 x 30 tabletas"), got.Name)
	require.Equal(t, some("$ 45.000"), got.OnlinePrice)
	require.False(t, got.ListPrice.Valid, "farmatodo has no list price fallback")
}

func TestExtractLaRebajaListFallsBackToOnline(t *testing.T) {
	doc := `<html><body>
<h3 class="vtex-product-summary-2-x-productNameContainer">Metamucil Fibra Natural 30 sobres</h3>
<span class="vtex-store-components-3-x-productBrandName">METAMUCIL</span>
<span class="vtex-product-price-1-x-sellingPrice">$ 52.300</span>
</body></html>`

	got := extract(t, LaRebaja, doc)
	require.Equal(t, some("METAMUCIL"), got.Brand)
	require.Equal(t, some("$ 52.300"), got.OnlinePrice)
	require.Equal(t, some("$ 52.300"), got.ListPrice)
}

func TestExtractLocatelDerivesBrand(t *testing.T) {
	doc := `<html><body>
<h2 class="vtex-product-summary-2-x-productNameContainer">Nasivin Pediátrico 0.025% gotas</h2>
<span class="vtex-store-components-3-x-sellingPrice">$ 19.990</span>
<div class="vtex-store-components-3-x-listPrice">$ 24.990</div>
</body></html>`

	got := extract(t, Locatel, doc)
	require.Equal(t, some("Nasivin"), got.Brand)
	require.Equal(t, some("$ 19.990"), got.OnlinePrice)
	require.Equal(t, some("$ 24.990"), got.ListPrice)
}

func TestExtractColsubsidio(t *testing.T) {
	doc := `<html><body>
<div class="product-Vitrina-masVendidos">
  <p class="dataproducto-nameProduct">Anemidox Ferro x 30 cápsulas</p>
  <p class="dataproducto-bestPrice">$ 61.200</p>
</div>
</body></html>`

	got := extract(t, Colsubsidio, doc)
	require.Equal(t, some("Anemidox"), got.Brand)
	require.Equal(t, got.OnlinePrice, got.ListPrice)
}

func TestExtractCafamPriceChain(t *testing.T) {
	tests := []struct {
		name       string
		prices     string
		wantOnline Text
		wantList   Text
	}{
		{
			name:       "special price",
			prices:     `<span class="dfd-card-special-price">$ 9.900,00</span><span class="dfd-card-price">$ 12.000,00</span>`,
			wantOnline: some("$ 9.900,00"),
			wantList:   some("$ 12.000,00"),
		},
		{
			name:       "sale price",
			prices:     `<span class="dfd-card-price--sale">$ 10.500,00</span>`,
			wantOnline: some("$ 10.500,00"),
			wantList:   some("$ 10.500,00"),
		},
		{
			name:       "only card price",
			prices:     `<span class="dfd-card-price">$ 12.000,00</span>`,
			wantOnline: some("$ 12.000,00"),
			wantList:   some("$ 12.000,00"),
		},
		{
			name:   "no price",
			prices: ``,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `<html><body><div class="dfd-card"><div class="dfd-card-title">Vivera Luteína x 30</div>` + tt.prices + `</div></body></html>`
			got := extract(t, Cafam, doc)
			require.Equal(t, some("Vivera"), got.Brand)
			require.Equal(t, tt.wantOnline, got.OnlinePrice)
			require.Equal(t, tt.wantList, got.ListPrice)
		})
	}
}

func TestExtractOlimpicaMutualFallback(t *testing.T) {
	doc := `<html><body>
<h3 class="vtex-product-summary-2-x-productNameContainer">Vick Vaporub 12 g</h3>
<span class="vtex-product-price-1-x-sellingPrice--summary">$ 7.400</span>
</body></html>`

	got := extract(t, Olimpica, doc)
	require.False(t, got.Brand.Valid)
	require.Equal(t, some("$ 7.400"), got.OnlinePrice)
	require.Equal(t, some("$ 7.400"), got.ListPrice)
}

func TestExtractToleratesMissingFields(t *testing.T) {
	for _, p := range Profiles() {
		t.Run(p.ID, func(t *testing.T) {
			got := p.Extract(context.Background(), loadScope(t, `<html><body></body></html>`, page.Locator{}), p.Locators)
			require.Equal(t, RawExtraction{}, got)
		})
	}
}

func TestTextOr(t *testing.T) {
	require.Equal(t, some("a"), Some(" a ").Or(some("b")))
	require.Equal(t, some("b"), Some("   ").Or(some("b")))
	require.False(t, Text{}.Or(Text{}).Valid)
}
