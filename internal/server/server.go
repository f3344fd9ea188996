package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"

	"bank-ledger/internal/audit"
	"bank-ledger/internal/config"
	"bank-ledger/internal/handler"
	"bank-ledger/internal/repository"
	"bank-ledger/internal/service"
)

// Server wires the storage backend, the ledger service and the HTTP surface
// together.
type Server struct {
	router      *mux.Router
	server      *http.Server
	db          *sql.DB
	bankService *service.BankService
	logger      *slog.Logger
	port        string
}

func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	var (
		repo repository.BankRepository
		db   *sql.DB
	)
	serializer := repository.NewTextBankSerializer(logger)

	switch cfg.Storage {
	case config.StoragePostgres:
		var err error
		db, err = sql.Open("postgres", cfg.GetDBConnectionString())
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("connected to database", "host", cfg.Database.Host)

		pgRepo := repository.NewPostgresBankRepository(db, logger)
		if err := pgRepo.Migrate(); err != nil {
			db.Close()
			return nil, err
		}
		repo = pgRepo
	case config.StorageMemory:
		repo = repository.NewInMemoryBankRepository(serializer)
	case config.StorageFile:
		repo = repository.NewFileBankRepository(cfg.DataFile, serializer, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}

	bankService, err := service.NewBankService(repo, logger, audit.NewAuditor(logger))
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, err
	}

	accountHandler := handler.NewAccountHandler(bankService)
	transferHandler := handler.NewTransferHandler(bankService)

	router := mux.NewRouter()
	router.Use(loggingMiddleware(logger))

	router.HandleFunc("/accounts", accountHandler.CreateAccount).Methods("POST")
	router.HandleFunc("/accounts", accountHandler.ListAccounts).Methods("GET")
	router.HandleFunc("/accounts/{account_id}", accountHandler.GetAccount).Methods("GET")
	router.HandleFunc("/accounts/{account_id}/deposits", accountHandler.Deposit).Methods("POST")
	router.HandleFunc("/accounts/{account_id}/withdrawals", accountHandler.Withdraw).Methods("POST")
	router.HandleFunc("/accounts/{account_id}/interest", accountHandler.ApplyInterest).Methods("POST")
	router.HandleFunc("/accounts/{account_id}/fee-policy", accountHandler.SetFeePolicy).Methods("PUT")
	router.HandleFunc("/accounts/{account_id}/transactions", accountHandler.ListTransactions).Methods("GET")
	router.HandleFunc("/transfers", transferHandler.Transfer).Methods("POST")

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.Ping(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy", "error": "database unavailable"})
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}).Methods("GET")

	return &Server{
		router:      router,
		db:          db,
		bankService: bankService,
		logger:      logger,
	}, nil
}

// loggingMiddleware adds request logging
func loggingMiddleware(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r)

			logger.Info("request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.statusCode,
				"duration", time.Since(start),
			)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Start listens on the given port ("0" picks a free one) and serves in the
// background.
func (s *Server) Start(port string) (string, error) {
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return "", err
	}
	addr := listener.Addr().(*net.TCPAddr)
	s.port = strconv.Itoa(addr.Port)

	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting server", "port", s.port)
	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("server failed", "error", err)
		}
	}()

	return s.port, nil
}

// Stop persists the registry one last time and shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("shutting down server")

	if err := s.bankService.Persist(); err != nil {
		s.logger.Error("final persist failed", "error", err)
	}
	if s.db != nil {
		s.db.Close()
	}
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) GetPort() string {
	return s.port
}

func (s *Server) GetBaseURL() string {
	return "http://localhost:" + s.port
}

// GetRouter returns the router for testing purposes
func (s *Server) GetRouter() *mux.Router {
	return s.router
}
