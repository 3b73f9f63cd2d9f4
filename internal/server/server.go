package server

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/cloudbasha/elmvoice/internal/common"
	"github.com/cloudbasha/elmvoice/internal/export"
	"github.com/cloudbasha/elmvoice/internal/mailer"
	"github.com/cloudbasha/elmvoice/internal/pipeline"
	"github.com/cloudbasha/elmvoice/internal/repository"
)

// Server wires the HTTP surface over the processing pipeline and repositories.
type Server struct {
	cfg       *common.Config
	logger    *slog.Logger
	processor *pipeline.Processor
	invoices  repository.InvoiceRepository
	users     repository.UserRepository
	exporter  *export.Service
	mail      mailer.Sender
	jwt       *JWTManager
}

func New(
	cfg *common.Config,
	logger *slog.Logger,
	processor *pipeline.Processor,
	invoices repository.InvoiceRepository,
	users repository.UserRepository,
	exporter *export.Service,
	mail mailer.Sender,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:       cfg,
		logger:    logger,
		processor: processor,
		invoices:  invoices,
		users:     users,
		exporter:  exporter,
		mail:      mail,
		jwt:       NewJWTManager(cfg.JWT),
	}
}

// Handler builds the full route table with CORS, logging and metrics applied.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.Use(loggingMiddleware(s.logger))
	r.Use(metricsMiddleware)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/process-image", s.handleProcessImage).Methods(http.MethodPost)

	api.HandleFunc("/invoices", s.handleListInvoices).Methods(http.MethodGet)
	api.HandleFunc("/invoices", s.handleCreateInvoice).Methods(http.MethodPost)
	api.HandleFunc("/invoices/export", s.handleExportInvoices).Methods(http.MethodGet)
	api.HandleFunc("/invoices/{id}", s.handleGetInvoice).Methods(http.MethodGet)
	api.HandleFunc("/invoices/{id}", s.handleUpdateInvoice).Methods(http.MethodPut)
	api.HandleFunc("/invoices/{id}", s.handleDeleteInvoice).Methods(http.MethodDelete)
	api.HandleFunc("/invoices/{id}/send", s.handleSendInvoice).Methods(http.MethodPost)
	api.HandleFunc("/invoices/{id}/pdf", s.handleInvoicePDF).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/summary", s.handleDashboardSummary).Methods(http.MethodGet)

	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/signup", s.handleSignup).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)
	api.HandleFunc("/auth/switch/{id}", s.handleSwitchUser).Methods(http.MethodPost)

	// The account directory is admin surface; it sits behind the demo token.
	directory := api.PathPrefix("/users").Subrouter()
	directory.Use(mux.MiddlewareFunc(s.authMiddleware))
	directory.HandleFunc("", s.handleListUsers).Methods(http.MethodGet)
	directory.HandleFunc("", s.handleAddUser).Methods(http.MethodPost)
	directory.HandleFunc("/{id}", s.handleUpdateUser).Methods(http.MethodPut)
	directory.HandleFunc("/{id}", s.handleDeleteUser).Methods(http.MethodDelete)

	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.Server.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})
	return c.Handler(r)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
