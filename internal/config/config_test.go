package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/baxromumarov/pharma-pricer/internal/model"
	"github.com/baxromumarov/pharma-pricer/internal/scraper"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PRICER_OUTPUT", "PRICER_SESSION_MODE", "PRICER_HEADLESS", "PRICER_REMOTE_URL", "DATABASE_DRIVER", "DATABASE_URL", "PORT"} {
		t.Setenv(k, "")
	}
	// .env is looked up in the working directory.
	t.Chdir(t.TempDir())
}

func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.Len(t, cfg.Catalog, 52)
	require.Equal(t, scraper.SiteIDs(), cfg.Sites)
	require.Equal(t, DefaultOutput, cfg.Output)
	require.Equal(t, scraper.DefaultTimeouts(), cfg.Timeouts.Scraper())
	require.Equal(t, model.ProductQuery{EAN: "7702418006430", Keyword: "anemidox"}, cfg.Catalog[0])
	require.Equal(t, model.ProductQuery{EAN: "4054839015915", Keyword: "vivera"}, cfg.Catalog[51])
}

func TestLoadFileAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "pricer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
catalog:
  - ean: "7500435170857"
    keyword: vick
sites: [olimpica_co, pasteur_co]
session:
  mode: static
timeouts:
  element: 3s
`), 0o644))
	t.Setenv("PRICER_OUTPUT", "out.csv")
	t.Setenv("PRICER_HEADLESS", "true")
	t.Setenv("DATABASE_URL", "file:prices.db")
	t.Setenv("DATABASE_DRIVER", "sqlite")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.Equal(t, []model.ProductQuery{{EAN: "7500435170857", Keyword: "vick"}}, cfg.Catalog)
	require.Equal(t, []string{scraper.Olimpica, scraper.Pasteur}, cfg.Sites)
	require.Equal(t, ModeStatic, cfg.Session.Mode)
	require.True(t, cfg.Session.Headless)
	require.Equal(t, 3*time.Second, cfg.Timeouts.Element)
	require.Equal(t, 15*time.Second, cfg.Timeouts.PageReady)
	require.Equal(t, "out.csv", cfg.Output)
	require.Equal(t, StoreConfig{Driver: "sqlite", DSN: "file:prices.db"}, cfg.Store)
}

func TestLoadRejectsBadHeadless(t *testing.T) {
	clearEnv(t)
	t.Setenv("PRICER_HEADLESS", "maybe")
	_, err := Load("")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Catalog = []model.ProductQuery{
		{EAN: "1", Keyword: "vick"},
		{EAN: "1", Keyword: "vick"},
		{EAN: "2"},
	}
	cfg.Sites = []string{"cafam_co", "walmart_co"}
	cfg.Session.Mode = "headless"

	err := cfg.Validate()
	require.ErrorContains(t, err, "duplicate ean 1")
	require.ErrorContains(t, err, "empty keyword")
	require.ErrorContains(t, err, "walmart_co")
	require.ErrorContains(t, err, "session mode")

	empty := Default()
	empty.Catalog = nil
	require.ErrorContains(t, empty.Validate(), "catalog is empty")
}

func TestDefaultCatalogIsFresh(t *testing.T) {
	a := DefaultCatalog()
	a[0].Keyword = "changed"
	require.Equal(t, "anemidox", DefaultCatalog()[0].Keyword)
}
