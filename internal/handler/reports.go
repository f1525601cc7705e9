package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Dan9191/finance-tracker/internal/report"
	"github.com/Dan9191/finance-tracker/internal/service"
)

// monthYear reads the optional month and year; zero means current
func monthYear(r *http.Request) (int, int, error) {
	month, err := queryInt(r, "month")
	if err != nil {
		return 0, 0, err
	}
	year, err := queryInt(r, "year")
	if err != nil {
		return 0, 0, err
	}
	return year, month, nil
}

// MonthlyReport returns the aggregated month
func (h *Handler) MonthlyReport(w http.ResponseWriter, r *http.Request) {
	year, month, err := monthYear(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	summary, err := h.svc.MonthlyReport(r.Context(), currentUser(r), year, month)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "", summary)
}

// MonthlyChart returns the month's expenses as a PNG pie chart
func (h *Handler) MonthlyChart(w http.ResponseWriter, r *http.Request) {
	year, month, err := monthYear(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	png, err := h.svc.MonthlyChart(r.Context(), currentUser(r), year, month)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// YearlyReport returns the twelve month breakdown of a year
func (h *Handler) YearlyReport(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	yearly, err := h.svc.YearlyReport(r.Context(), currentUser(r), year)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "", yearly)
}

// ExportExcel downloads the filtered transactions as a workbook
func (h *Handler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	export, err := h.svc.ExportTransactions(r.Context(), currentUser(r), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeAttachment(w, export)
}

// ExportLedger downloads every transaction with sized columns
func (h *Handler) ExportLedger(w http.ResponseWriter, r *http.Request) {
	export, err := h.svc.ExportLedger(r.Context(), currentUser(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeAttachment(w, export)
}

func writeAttachment(w http.ResponseWriter, export *service.Export) {
	w.Header().Set("Content-Type", report.XLSXContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Content)))
	w.WriteHeader(http.StatusOK)
	w.Write(export.Content)
}
