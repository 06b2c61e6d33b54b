package transport

import (
	"encoding/json"
	"net/http"
	"net/netip"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/haukened/ipmon/internal/ipmon/domain"
	"github.com/haukened/ipmon/internal/ipmon/services/history"
	"github.com/haukened/ipmon/internal/ipmon/services/prefixes"
	"github.com/haukened/ipmon/internal/ipmon/services/rules"
)

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// LookupMatch is one prefix relevant to a lookup query.
type LookupMatch struct {
	Prefix    string `json:"prefix"`
	Current   bool   `json:"current"`
	FirstSeen string `json:"first_seen,omitempty"`
	LastSeen  string `json:"last_seen,omitempty"`
}

// LookupResponse is the body of GET /lookup.
type LookupResponse struct {
	Query    string        `json:"query"`
	Snapshot string        `json:"snapshot,omitempty"`
	Matches  []LookupMatch `json:"matches"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Code: status, Message: message})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// currentSet extracts the prefixes of the newest snapshot. A nil snapshot
// means nothing is stored yet.
func (s *HTTPServer) currentSet(r *http.Request) (*domain.Snapshot, domain.PrefixSet, error) {
	snap, err := s.snaps.Latest(r.Context())
	if err != nil || snap == nil {
		return nil, domain.NewPrefixSet(), err
	}
	set, err := prefixes.Extract(*snap)
	if err != nil {
		s.logger.Warn(map[string]any{"date": snap.Date, "error": err.Error()}, "skipped malformed snapshot entries")
	}
	return snap, set, nil
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := domain.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, set, err := s.currentSet(r)
	if err != nil {
		s.logger.Error(map[string]any{"error": err.Error()}, "failed to load latest snapshot")
		respondError(w, http.StatusInternalServerError, "failed to load latest snapshot")
		return
	}
	if snap == nil {
		respondError(w, http.StatusNotFound, "no snapshot available")
		return
	}

	doc, err := rules.Project(format, rules.InputFromSet(set, s.clock.Now()))
	if err != nil {
		s.logger.Error(map[string]any{"format": format.String(), "error": err.Error()}, "failed to render rules")
		respondError(w, http.StatusInternalServerError, "failed to render rules")
		return
	}
	for _, skipped := range doc.Skipped {
		s.logger.Warn(map[string]any{"format": format.String(), "error": skipped.Error()}, "prefix skipped")
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.FileName()+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc.Content))
}

func (s *HTTPServer) handleMetrics(w http.ResponseWriter, r *http.Request) {
	series, err := s.metrics.Run(r.Context(), s.window, s.useCache)
	if err != nil {
		s.logger.Error(map[string]any{"error": err.Error()}, "failed to compute metrics")
		respondError(w, http.StatusInternalServerError, "failed to compute metrics")
		return
	}
	body, err := history.RenderJSON(series, s.clock.Now(), s.version)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to encode metrics")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// handleLookup accepts either a CIDR prefix or a single address in q. A
// prefix reports its own sighting; an address reports every current prefix
// containing it.
func (s *HTTPServer) handleLookup(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		respondError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	snap, set, err := s.currentSet(r)
	if err != nil {
		s.logger.Error(map[string]any{"error": err.Error()}, "failed to load latest snapshot")
		respondError(w, http.StatusInternalServerError, "failed to load latest snapshot")
		return
	}

	resp := LookupResponse{Query: q, Matches: []LookupMatch{}}
	if snap != nil {
		resp.Snapshot = snap.Date
	}

	if strings.Contains(q, "/") {
		if _, err := netip.ParsePrefix(q); err != nil {
			respondError(w, http.StatusBadRequest, "invalid prefix: "+q)
			return
		}
		if m, ok := s.match(q, set.Contains(q)); ok {
			resp.Matches = append(resp.Matches, m)
		}
		respondJSON(w, http.StatusOK, resp)
		return
	}

	found, err := prefixes.Containing(set, q)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	for _, p := range found {
		m, _ := s.match(p, true)
		resp.Matches = append(resp.Matches, m)
	}
	respondJSON(w, http.StatusOK, resp)
}

// match combines current membership with the indexed sighting. It reports
// false when the prefix is neither current nor indexed.
func (s *HTTPServer) match(prefix string, current bool) (LookupMatch, bool) {
	m := LookupMatch{Prefix: prefix, Current: current}
	indexed := false
	if s.index != nil {
		if sighting, ok := s.index.Lookup(prefix); ok {
			m.FirstSeen = sighting.FirstSeen
			m.LastSeen = sighting.LastSeen
			indexed = true
		}
	}
	return m, current || indexed
}
