package handler

import (
	"net/http"

	"github.com/Dan9191/finance-tracker/internal/service"
)

// ListCategories returns the defaults and the user's own categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.ListCategories(r.Context(), currentUser(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "", map[string]any{"categories": categories})
}

func (h *Handler) categoryInput(r *http.Request) (service.CategoryInput, error) {
	var req categoryRequest
	if err := h.decode(r, &req); err != nil {
		return service.CategoryInput{}, err
	}
	return service.CategoryInput{Name: req.Name, Color: req.Color, Icon: req.Icon, Type: req.Type}, nil
}

// CreateCategory adds a user category
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	in, err := h.categoryInput(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.svc.CreateCategory(r.Context(), currentUser(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusCreated, "category created successfully", map[string]any{"category": c})
}

// UpdateCategory rewrites a user category
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	in, err := h.categoryInput(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.svc.UpdateCategory(r.Context(), currentUser(r), id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "category updated successfully", map[string]any{"category": c})
}

// DeleteCategory removes a user category
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.DeleteCategory(r.Context(), currentUser(r), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "category deleted successfully", nil)
}
