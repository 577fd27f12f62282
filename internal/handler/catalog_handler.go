package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"civitas/internal/domain"
	"civitas/internal/filter"
	"civitas/internal/service"
)

// CatalogHandler serves the browsable bill and legislator collections.
// Each request builds a fresh filter engine from its query parameters, so
// concurrent requests never share filter state.
type CatalogHandler struct {
	service *service.CivicService
}

func NewCatalogHandler(svc *service.CivicService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

var billComparators = map[string]filter.Comparator[domain.Bill]{
	"title":      func(a, b domain.Bill) bool { return a.Title < b.Title },
	"updated":    func(a, b domain.Bill) bool { return a.LastUpdated.Before(b.LastUpdated) },
	"popularity": func(a, b domain.Bill) bool { return a.YesVotes+a.NoVotes < b.YesVotes+b.NoVotes },
}

var legislatorComparators = map[string]filter.Comparator[domain.Legislator]{
	"name":  func(a, b domain.Legislator) bool { return a.Name < b.Name },
	"party": func(a, b domain.Legislator) bool { return a.Party < b.Party },
	"state": func(a, b domain.Legislator) bool { return a.State < b.State },
}

// ListBills handles GET /api/v1/bills.
// Supported query params: tags, sessions, bodies (comma-separated values),
// q (search text), sort (title|updated|popularity), order=desc.
func (h *CatalogHandler) ListBills(w http.ResponseWriter, r *http.Request) {
	eng := filter.New("title", billComparators)
	eng.SetCollection(h.service.Bills())
	applyQuery(eng, r.URL.Query(), []string{"tags", "sessions", "bodies"})

	bills := eng.Filter(filter.MatchAll[domain.Bill])
	for i := range bills {
		h.overlayUserVote(r, &bills[i])
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"bills": bills,
	})
}

// GetBill handles GET /api/v1/bills/{billID}.
func (h *CatalogHandler) GetBill(w http.ResponseWriter, r *http.Request) {
	billID, err := uuid.Parse(chi.URLParam(r, "billID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "Invalid bill id")
		return
	}

	bill, err := h.service.Bill(billID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	h.overlayUserVote(r, &bill)
	respondJSON(w, http.StatusOK, bill)
}

// overlayUserVote replaces the bill's user_vote field with the requester's
// own live vote. The stored field reflects whichever user wrote last, so
// serving it as-is would leak one user's vote into another's view.
func (h *CatalogHandler) overlayUserVote(r *http.Request, b *domain.Bill) {
	b.UserVote = nil
	userID, ok := getUserID(r)
	if !ok {
		return
	}
	if v, ok := h.service.UserVoteOn(userID, b.ID); ok {
		b.UserVote = &v
	}
}

// ListLegislators handles GET /api/v1/legislators.
// Supported query params: parties, states, chambers, q, sort (name|party|
// state), order=desc.
func (h *CatalogHandler) ListLegislators(w http.ResponseWriter, r *http.Request) {
	eng := filter.New("name", legislatorComparators)
	eng.SetCollection(h.service.Legislators())
	applyQuery(eng, r.URL.Query(), []string{"parties", "states", "chambers"})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"legislators": eng.Filter(filter.MatchAll[domain.Legislator]),
	})
}

// GetLegislator handles GET /api/v1/legislators/{legislatorID}.
func (h *CatalogHandler) GetLegislator(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "legislatorID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "Invalid legislator id")
		return
	}

	leg, err := h.service.Legislator(id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, leg)
}

// applyQuery translates query params into filter engine state. Filter keys
// not listed in keys are ignored rather than rejected.
func applyQuery[T domain.Filterable](eng *filter.Engine[T], q url.Values, keys []string) {
	for _, key := range keys {
		for _, raw := range q[key] {
			for _, v := range strings.Split(raw, ",") {
				if v = strings.TrimSpace(v); v != "" {
					eng.AddFilter(v, key)
				}
			}
		}
	}
	eng.SetSearchText(q.Get("q"))
	if s := q.Get("sort"); s != "" {
		eng.SortBy(s)
	}
	if q.Get("order") == "desc" {
		eng.ToggleOrder()
	}
}
