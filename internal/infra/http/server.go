package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bizledger/internal/service"
)

type Server struct {
	srv *http.Server
	log *slog.Logger
	svc *service.Service
}

func New(addr string, exposeMetrics bool, log *slog.Logger, svc *service.Service) *Server {
	s := &Server{log: log, svc: svc}

	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if exposeMetrics {
		mux.Handle("/metrics", promhttp.Handler())
	}

	mux.HandleFunc("POST /api/users", s.instrument("register_user", s.handleRegisterUser))
	mux.HandleFunc("GET /api/me", s.instrument("me", s.handleMe))

	mux.HandleFunc("POST /api/businesses", s.instrument("create_business", s.handleCreateBusiness))
	mux.HandleFunc("GET /api/businesses", s.instrument("list_businesses", s.handleListBusinesses))
	mux.HandleFunc("GET /api/businesses/{id}/dashboard", s.instrument("dashboard", s.handleDashboard))
	mux.HandleFunc("POST /api/businesses/{id}/members", s.instrument("add_member", s.handleAddMember))
	mux.HandleFunc("GET /api/businesses/{id}/members", s.instrument("list_members", s.handleListMembers))
	mux.HandleFunc("DELETE /api/businesses/{id}/members/{userID}", s.instrument("remove_member", s.handleRemoveMember))

	mux.HandleFunc("POST /api/transactions", s.instrument("create_transaction", s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions", s.instrument("list_transactions", s.handleListTransactions))
	mux.HandleFunc("PUT /api/transactions/{id}", s.instrument("update_transaction", s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.instrument("delete_transaction", s.handleDeleteTransaction))
	mux.HandleFunc("POST /api/transactions/{id}/document", s.instrument("attach_document", s.handleAttachDocument))

	mux.HandleFunc("POST /api/inventory", s.instrument("create_inventory", s.handleCreateInventory))
	mux.HandleFunc("GET /api/inventory", s.instrument("list_inventory", s.handleListInventory))
	mux.HandleFunc("GET /api/inventory/low_stock", s.instrument("low_stock", s.handleLowStock))
	mux.HandleFunc("GET /api/staff/today", s.instrument("stats_today", s.handleStatsToday))

	mux.HandleFunc("GET /api/reports/summary/{businessID}", s.instrument("summary", s.handleSummary))
	mux.HandleFunc("GET /api/reports/{period}/{businessID}", s.instrument("period_report", s.handlePeriodReport))
	mux.HandleFunc("GET /api/analytics/{granularity}/{businessID}", s.instrument("time_series", s.handleTimeSeries))
	mux.HandleFunc("GET /api/categories/{businessID}", s.instrument("category_breakdown", s.handleCategoryBreakdown))
	mux.HandleFunc("GET /api/top-items/{businessID}", s.instrument("top_items", s.handleTopItems))
	mux.HandleFunc("GET /api/predict-profit/{businessID}", s.instrument("predict_profit", s.handlePredictProfit))
	mux.HandleFunc("GET /api/export/transactions/{businessID}", s.instrument("export_transactions", s.handleExport))

	s.srv = &http.Server{Addr: addr, Handler: mux}
	return s
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
