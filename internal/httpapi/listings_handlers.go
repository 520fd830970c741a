package httpapi

import (
	"net/http"
	"strconv"

	"jobscout-engine/internal/store"
)

type ListingsHandler struct {
	DB *store.DB
}

func (h ListingsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.DB == nil {
		WriteError(w, r, http.StatusServiceUnavailable, "no_store", "persistence is not enabled")
		return
	}

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	listings, err := h.DB.ListListings(r.Context(), store.ListOpts{
		Sort:   q.Get("sort"),
		Order:  q.Get("order"),
		Source: q.Get("source"),
		Limit:  limit,
	})
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	writeJSON(w, listings)
}
