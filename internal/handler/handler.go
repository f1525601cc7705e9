package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Dan9191/finance-tracker/internal/config"
	"github.com/Dan9191/finance-tracker/internal/middleware"
	"github.com/Dan9191/finance-tracker/internal/models"
	"github.com/Dan9191/finance-tracker/internal/repository"
	"github.com/Dan9191/finance-tracker/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// FinanceService is the business logic behind the HTTP API
type FinanceService interface {
	Register(ctx context.Context, name, email, password string) (*service.Session, error)
	Login(ctx context.Context, email, password string) (*service.Session, error)
	Profile(ctx context.Context, userID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, raw map[string]json.RawMessage) (*models.User, error)
	SetProfilePicture(ctx context.Context, userID int64, url string) error

	ListTransactions(ctx context.Context, userID int64, f models.TransactionFilter, page, limit int) (*service.TransactionPage, error)
	GetTransaction(ctx context.Context, userID, id int64) (*models.Transaction, error)
	CreateTransaction(ctx context.Context, userID int64, in service.TransactionInput) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, id int64, in service.TransactionInput) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id int64) error
	Stats(ctx context.Context, userID int64, p repository.Period) (*models.TransactionStats, error)

	ListCategories(ctx context.Context, userID int64) ([]models.Category, error)
	CreateCategory(ctx context.Context, userID int64, in service.CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, userID, id int64, in service.CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, userID, id int64) error

	MonthlyReport(ctx context.Context, userID int64, year, month int) (*models.MonthlySummary, error)
	MonthlyChart(ctx context.Context, userID int64, year, month int) ([]byte, error)
	YearlyReport(ctx context.Context, userID int64, year int) (*models.YearlyReport, error)
	ExportTransactions(ctx context.Context, userID int64, f models.TransactionFilter) (*service.Export, error)
	ExportLedger(ctx context.Context, userID int64) (*service.Export, error)

	Countries(ctx context.Context) ([]models.Country, error)
	Cities(ctx context.Context, countryID int64) ([]models.City, error)
	Neighborhoods(ctx context.Context, cityID int64) ([]models.Neighborhood, error)
}

// Pinger checks that the database answers
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the JSON API
type Handler struct {
	svc       FinanceService
	db        Pinger
	log       *logrus.Logger
	validate  *validator.Validate
	uploadDir string
	maxUpload int64
	started   time.Time
	now       func() time.Time
}

// NewHandler creates the API handlers
func NewHandler(svc FinanceService, log *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		svc:       svc,
		log:       log,
		validate:  newValidator(),
		uploadDir: cfg.UploadDir,
		maxUpload: cfg.MaxUploadBytes,
		started:   time.Now(),
		now:       time.Now,
	}
}

// WithDatabase makes the health check report an unreachable database
func (h *Handler) WithDatabase(db Pinger) *Handler {
	h.db = db
	return h
}

// response is the envelope of every JSON answer
type response struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Data    any      `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) ok(w http.ResponseWriter, status int, message string, data any) {
	h.writeJSON(w, status, response{Success: true, Message: message, Data: data})
}

func (h *Handler) fail(w http.ResponseWriter, status int, message string, errs ...string) {
	h.writeJSON(w, status, response{Success: false, Message: message, Errors: errs})
}

// writeError maps service errors to HTTP statuses
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		h.fail(w, http.StatusBadRequest, "invalid input data", verr.Fields...)
	case errors.Is(err, service.ErrDuplicateEmail):
		h.fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		h.fail(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbidden):
		h.fail(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrNotFound):
		h.fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		h.fail(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrUnavailable):
		h.log.WithField("path", r.URL.Path).Warnf("Database unavailable: %v", err)
		h.fail(w, http.StatusServiceUnavailable, "service temporarily unavailable")
	default:
		h.log.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Errorf("Request failed: %v", err)
		h.fail(w, http.StatusInternalServerError, "internal server error")
	}
}

// decode reads a JSON body into dst and validates its tags
func (h *Handler) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &service.ValidationError{Fields: []string{"request body is too large"}}
		}
		return &service.ValidationError{Fields: []string{"request body must be valid JSON"}}
	}
	if err := h.validate.Struct(dst); err != nil {
		return &service.ValidationError{Fields: fieldErrors(err)}
	}
	return nil
}

// currentUser returns the id stored by the auth middleware
func currentUser(r *http.Request) int64 {
	id, _ := middleware.UserID(r.Context())
	return id
}

// pathID parses a numeric route variable
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id < 1 {
		return 0, &service.ValidationError{Fields: []string{name + " must be a positive integer"}}
	}
	return id, nil
}

// queryInt parses an optional integer query parameter; absent yields 0
func queryInt(r *http.Request, name string) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &service.ValidationError{Fields: []string{name + " must be an integer"}}
	}
	return n, nil
}

// Health reports liveness and uptime
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	status, code := "OK", http.StatusOK
	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			h.log.Warnf("Health check: %v", err)
			status, code = "UNAVAILABLE", http.StatusServiceUnavailable
		}
	}
	h.writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": now.UTC().Format(time.RFC3339),
		"uptime":    now.Sub(h.started).Seconds(),
	})
}

// NotFound answers unknown routes
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.fail(w, http.StatusNotFound, "route not found")
}

// MethodNotAllowed answers known routes called with the wrong method
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.fail(w, http.StatusMethodNotAllowed, "method not allowed")
}
