package config

import "github.com/baxromumarov/pharma-pricer/internal/model"

// DefaultCatalog is the product list searched when no config file names
// one. Every call returns a fresh slice.
func DefaultCatalog() []model.ProductQuery {
	entries := []struct {
		keyword string
		eans    []string
	}{
		{"anemidox", []string{"7702418006430", "7500435174527", "7702418002708", "7702418002715"}},
		{"bion 3", []string{"4054839106644", "4054839084621", "7500435227018"}},
		{"cebion", []string{
			"7702418000100", "7702418000117", "7702418001640", "7702418001657",
			"7702418000742", "7702418000810", "7702418000834", "7702418000926",
			"7702418004795", "7702418006140", "7500435197397", "7702418004528",
			"7500435249232", "7702418005754", "7500435249249", "7702418004672",
			"7702418004696", "7702418004702",
		}},
		{"metamucil", []string{"7506339350890", "7506339350906", "7500435131377"}},
		{"nasivin", []string{"7702418006478", "7702418006485", "7702418006492"}},
		{"nenedent", []string{"7702418000414"}},
		{"neurobion", []string{"7501298217536", "7702418006089", "7702418004351", "7702418006249"}},
		{"vick", []string{
			"75916565", "7500435170857", "7500435107013", "7500435181068",
			"7500435151184", "7500435159012", "7501001153182", "7501001280031",
			"7500435204576", "7500435204583", "7500435225465", "7500435246408",
			"7500435246415", "7500435246453", "7500435243292",
		}},
		{"vivera", []string{"4054839015915"}},
	}

	var out []model.ProductQuery
	for _, e := range entries {
		for _, ean := range e.eans {
			out = append(out, model.ProductQuery{EAN: ean, Keyword: e.keyword})
		}
	}
	return out
}
