package api

import (
	"net/http"
	"strconv"

	"github.com/baxromumarov/pharma-pricer/internal/model"
	"github.com/baxromumarov/pharma-pricer/internal/observability"
	"github.com/baxromumarov/pharma-pricer/internal/store"
)

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r, 50)
	filter := store.RecordFilter{
		Site: r.URL.Query().Get("site"),
		EAN:  r.URL.Query().Get("ean"),
	}

	records, total, err := s.store.ListRecords(r.Context(), filter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch records: "+err.Error())
		return
	}
	if records == nil {
		records = []model.OutputRecord{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items":  records,
		"limit":  limit,
		"offset": offset,
		"total":  total,
	})
}

func (s *Server) handleSites(w http.ResponseWriter, r *http.Request) {
	sites, err := s.store.SiteSummaries(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to summarise sites: "+err.Error())
		return
	}
	if sites == nil {
		sites = []store.SiteSummary{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"items": sites})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, observability.Snapshot())
}

func parsePagination(r *http.Request, defaultLimit int) (int, int) {
	q := r.URL.Query()
	limit := defaultLimit
	offset := 0

	if v := q.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}

	if v := q.Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	if limit <= 0 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
