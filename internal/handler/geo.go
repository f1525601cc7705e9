package handler

import "net/http"

func (h *Handler) Countries(w http.ResponseWriter, r *http.Request) {
	countries, err := h.svc.Countries(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "", countries)
}

func (h *Handler) Cities(w http.ResponseWriter, r *http.Request) {
	countryID, err := pathID(r, "countryId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	cities, err := h.svc.Cities(r.Context(), countryID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "", cities)
}

func (h *Handler) Neighborhoods(w http.ResponseWriter, r *http.Request) {
	cityID, err := pathID(r, "cityId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	neighborhoods, err := h.svc.Neighborhoods(r.Context(), cityID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "", neighborhoods)
}
