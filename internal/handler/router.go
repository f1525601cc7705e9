package handler

import (
	"net/http"

	"github.com/Dan9191/finance-tracker/internal/config"
	"github.com/Dan9191/finance-tracker/internal/middleware"
	"github.com/gorilla/mux"
)

// NewRouter wires every route and the middleware chain
func NewRouter(h *Handler, cfg *config.Config, tokens middleware.TokenParser, limiter *middleware.RateLimiter) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(h.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(h.MethodNotAllowed)

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	api := r.PathPrefix("/api").Subrouter()
	if limiter != nil {
		api.Use(limiter.Middleware)
	}

	// Public routes
	api.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	api.HandleFunc("/geo/countries", h.Countries).Methods(http.MethodGet)
	api.HandleFunc("/geo/cities/{countryId:[0-9]+}", h.Cities).Methods(http.MethodGet)
	api.HandleFunc("/geo/neighborhoods/{cityId:[0-9]+}", h.Neighborhoods).Methods(http.MethodGet)

	// Protected routes
	authRouter := api.NewRoute().Subrouter()
	authRouter.Use(middleware.AuthMiddleware(tokens, h.log))

	authRouter.HandleFunc("/auth/profile", h.Profile).Methods(http.MethodGet)
	authRouter.HandleFunc("/auth/profile", h.UpdateProfile).Methods(http.MethodPut)
	authRouter.HandleFunc("/auth/profile/upload", h.UploadProfilePicture).Methods(http.MethodPost)

	authRouter.HandleFunc("/transactions", h.ListTransactions).Methods(http.MethodGet)
	authRouter.HandleFunc("/transactions", h.CreateTransaction).Methods(http.MethodPost)
	authRouter.HandleFunc("/transactions/stats", h.Stats).Methods(http.MethodGet)
	authRouter.HandleFunc("/transactions/{id:[0-9]+}", h.GetTransaction).Methods(http.MethodGet)
	authRouter.HandleFunc("/transactions/{id:[0-9]+}", h.UpdateTransaction).Methods(http.MethodPut)
	authRouter.HandleFunc("/transactions/{id:[0-9]+}", h.DeleteTransaction).Methods(http.MethodDelete)

	authRouter.HandleFunc("/categories", h.ListCategories).Methods(http.MethodGet)
	authRouter.HandleFunc("/categories", h.CreateCategory).Methods(http.MethodPost)
	authRouter.HandleFunc("/categories/{id:[0-9]+}", h.UpdateCategory).Methods(http.MethodPut)
	authRouter.HandleFunc("/categories/{id:[0-9]+}", h.DeleteCategory).Methods(http.MethodDelete)

	authRouter.HandleFunc("/reports/monthly", h.MonthlyReport).Methods(http.MethodGet)
	authRouter.HandleFunc("/reports/monthly/chart", h.MonthlyChart).Methods(http.MethodGet)
	authRouter.HandleFunc("/reports/yearly", h.YearlyReport).Methods(http.MethodGet)
	authRouter.HandleFunc("/reports/export/excel", h.ExportExcel).Methods(http.MethodGet)
	authRouter.HandleFunc("/reports/transactions.xlsx", h.ExportLedger).Methods(http.MethodGet)

	var handler http.Handler = r
	handler = middleware.MaxBody(cfg.MaxBodyBytes)(handler)
	handler = middleware.Recoverer(h.log)(handler)
	handler = middleware.CORS(cfg.CORSOrigins)(handler)
	handler = middleware.RequestLogger(h.log)(handler)
	return handler
}
