package handler

import (
	"net/http"
	"strconv"

	"github.com/Dan9191/finance-tracker/internal/models"
	"github.com/Dan9191/finance-tracker/internal/repository"
	"github.com/Dan9191/finance-tracker/internal/service"
)

// parseFilter reads category, type and the optional date range from the query
func parseFilter(r *http.Request) (models.TransactionFilter, error) {
	q := r.URL.Query()
	f := models.TransactionFilter{Category: q.Get("category"), Type: q.Get("type")}

	var problems []string
	if f.Type != "" && !models.ValidType(f.Type) {
		problems = append(problems, "type must be one of: income, expense")
	}
	start, end := q.Get("startDate"), q.Get("endDate")
	if start != "" && end != "" {
		from, err := models.ParseDate(start)
		if err != nil {
			problems = append(problems, "startDate must be a date in YYYY-MM-DD format")
		}
		to, err := models.ParseDate(end)
		if err != nil {
			problems = append(problems, "endDate must be a date in YYYY-MM-DD format")
		}
		f.StartDate, f.EndDate = &from.Time, &to.Time
	}
	if len(problems) > 0 {
		return f, &service.ValidationError{Fields: problems}
	}
	return f, nil
}

// ListTransactions returns one page of the user's transactions
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	// malformed paging falls back to the defaults
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.svc.ListTransactions(r.Context(), currentUser(r), f, page, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "", result)
}

// parsePeriod reads the optional month and year of the stats endpoint
func parsePeriod(r *http.Request) (repository.Period, error) {
	month, err := queryInt(r, "month")
	if err != nil {
		return repository.Period{}, err
	}
	year, err := queryInt(r, "year")
	if err != nil {
		return repository.Period{}, err
	}
	if month != 0 && (month < 1 || month > 12) {
		return repository.Period{}, &service.ValidationError{Fields: []string{"month must be between 1 and 12"}}
	}
	return repository.Period{Year: year, Month: month}, nil
}

// Stats returns totals and the expense breakdown per category
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	p, err := parsePeriod(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	stats, err := h.svc.Stats(r.Context(), currentUser(r), p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "", stats)
}

// GetTransaction returns one transaction
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	t, err := h.svc.GetTransaction(r.Context(), currentUser(r), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "", map[string]any{"transaction": t})
}

func (h *Handler) transactionInput(r *http.Request) (service.TransactionInput, error) {
	var req transactionRequest
	if err := h.decode(r, &req); err != nil {
		return service.TransactionInput{}, err
	}
	return service.TransactionInput{
		Amount:      req.Amount,
		Type:        req.Type,
		Category:    req.Category,
		Description: req.Description,
		Date:        req.Date,
	}, nil
}

// CreateTransaction records a transaction
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	in, err := h.transactionInput(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	t, err := h.svc.CreateTransaction(r.Context(), currentUser(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusCreated, "transaction created successfully", map[string]any{"transaction": t})
}

// UpdateTransaction rewrites a transaction
func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	in, err := h.transactionInput(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	t, err := h.svc.UpdateTransaction(r.Context(), currentUser(r), id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "transaction updated successfully", map[string]any{"transaction": t})
}

// DeleteTransaction removes a transaction
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.DeleteTransaction(r.Context(), currentUser(r), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "transaction deleted successfully", nil)
}
