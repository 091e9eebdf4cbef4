package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"bizledger/internal/domain/reports"
	"bizledger/internal/domain/transactions"
	"bizledger/internal/service"
)

/* Пользователи */

func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.badRequest(w, "invalid request payload")
		return
	}
	u, err := s.svc.RegisterUser(r.Context(), in.Username)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		s.unauthorized(w)
		return
	}
	u, err := s.svc.GetUser(r.Context(), actor)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, u)
}

/* Бизнесы и участники */

func (s *Server) handleCreateBusiness(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		s.unauthorized(w)
		return
	}
	var in struct {
		Name     string `json:"name"`
		Industry string `json:"industry"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.badRequest(w, "invalid request payload")
		return
	}
	b, err := s.svc.CreateBusiness(r.Context(), actor, in.Name, in.Industry)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleListBusinesses(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		s.unauthorized(w)
		return
	}
	bs, err := s.svc.ListBusinesses(r.Context(), actor)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, bs)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		s.unauthorized(w)
		return
	}
	bizID, ok := pathID(r, "id")
	if !ok {
		s.badRequest(w, "invalid business id")
		return
	}
	d, err := s.svc.Dashboard(r.Context(), actor, bizID)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		s.unauthorized(w)
		return
	}
	bizID, ok := pathID(r, "id")
	if !ok {
		s.badRequest(w, "invalid business id")
		return
	}
	var in struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.badRequest(w, "invalid request payload")
		return
	}
	m, err := s.svc.AddMember(r.Context(), actor, bizID, in.Username, in.Role)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		s.unauthorized(w)
		return
	}
	bizID, ok := pathID(r, "id")
	if !ok {
		s.badRequest(w, "invalid business id")
		return
	}
	ms, err := s.svc.ListMembers(r.Context(), actor, bizID)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ms)
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		s.unauthorized(w)
		return
	}
	bizID, ok1 := pathID(r, "id")
	userID, ok2 := pathID(r, "userID")
	if !ok1 || !ok2 {
		s.badRequest(w, "invalid path")
		return
	}
	if err := s.svc.RemoveMember(r.Context(), actor, bizID, userID); err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

/* Движения */

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		s.unauthorized(w)
		return
	}
	var in struct {
		BusinessID   int64            `json:"business_id"`
		Kind         string           `json:"kind"`
		Amount       *decimal.Decimal `json:"amount"`
		Category     string           `json:"category"`
		InventoryID  *int64           `json:"inventory_id"`
		UsedQuantity int64            `json:"used_quantity"`
		Source       string           `json:"source"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.badRequest(w, "invalid request payload")
		return
	}
	// отсутствие amount и нулевой amount — разные вещи
	if in.Amount == nil {
		s.badRequest(w, "amount is required")
		return
	}
	t, err := s.svc.CreateTransaction(r.Context(), actor, service.CreateTransactionInput{
		BusinessID:   in.BusinessID,
		Kind:         in.Kind,
		Amount:       *in.Amount,
		Category:     in.Category,
		InventoryID:  in.InventoryID,
		UsedQuantity: in.UsedQuantity,
		Source:       in.Source,
	})
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		s.unauthorized(w)
		return
	}
	bizID, ok := queryID(r, "business_id")
	if !ok {
		s.badRequest(w, "business_id is required")
		return
	}
	txs, err := s.svc.ListTransactions(r.Context(), actor, bizID)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		s.unauthorized(w)
		return
	}
	txID, ok := pathID(r, "id")
	if !ok {
		s.badRequest(w, "invalid transaction id")
		return
	}
	var in struct {
		Kind         *string          `json:"kind"`
		Amount       *decimal.Decimal `json:"amount"`
		Category     *string          `json:"category"`
		InventoryID  *int64           `json:"inventory_id"`
		ClearLink    bool             `json:"clear_inventory_link"`
		UsedQuantity *int64           `json:"used_quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.badRequest(w, "invalid request payload")
		return
	}

	var p transactions.UpdateParams
	if in.Kind != nil {
		k := transactions.Kind(*in.Kind)
		p.Kind = &k
	}
	p.Amount = in.Amount
	p.Category = in.Category
	p.UsedQuantity = in.UsedQuantity
	if in.ClearLink {
		var none *int64
		p.InventoryID = &none
	} else if in.InventoryID != nil {
		p.InventoryID = &in.InventoryID
	}

	t, err := s.svc.UpdateTransaction(r.Context(), actor, txID, p)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		s.unauthorized(w)
		return
	}
	txID, ok := pathID(r, "id")
	if !ok {
		s.badRequest(w, "invalid transaction id")
		return
	}
	if err := s.svc.DeleteTransaction(r.Context(), actor, txID); err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleAttachDocument(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		s.unauthorized(w)
		return
	}
	txID, ok := pathID(r, "id")
	if !ok {
		s.badRequest(w, "invalid transaction id")
		return
	}
	var in struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.badRequest(w, "invalid request payload")
		return
	}
	t, err := s.svc.AttachDocument(r.Context(), actor, txID, in.URL)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, t)
}

/* Склад */

func (s *Server) handleCreateInventory(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		s.unauthorized(w)
		return
	}
	var in struct {
		BusinessID int64           `json:"business_id"`
		ItemName   string          `json:"item_name"`
		Category   string          `json:"category"`
		Quantity   int64           `json:"quantity"`
		UnitCost   decimal.Decimal `json:"unit_cost"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.badRequest(w, "invalid request payload")
		return
	}
	item, err := s.svc.CreateInventoryItem(r.Context(), actor, in.BusinessID, in.ItemName, in.Category, in.Quantity, in.UnitCost)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleListInventory(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		s.unauthorized(w)
		return
	}
	bizID, ok := queryID(r, "business_id")
	if !ok {
		s.badRequest(w, "business_id is required")
		return
	}
	items, err := s.svc.ListInventory(r.Context(), actor, bizID)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleLowStock(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		s.unauthorized(w)
		return
	}
	bizID, ok := queryID(r, "business_id")
	if !ok {
		s.badRequest(w, "business_id is required")
		return
	}
	var threshold int64
	if v := r.URL.Query().Get("threshold"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			s.badRequest(w, "threshold must be a positive integer")
			return
		}
		threshold = n
	}
	items, err := s.svc.LowStock(r.Context(), actor, bizID, threshold)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleStatsToday(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		s.unauthorized(w)
		return
	}
	bizID, ok := queryID(r, "business_id")
	if !ok {
		s.badRequest(w, "business_id is required")
		return
	}
	st, err := s.svc.StatsToday(r.Context(), actor, bizID)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, st)
}

/* Отчёты и аналитика */

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		s.unauthorized(w)
		return
	}
	bizID, ok := pathID(r, "businessID")
	if !ok {
		s.badRequest(w, "invalid business id")
		return
	}
	v, err := s.svc.Summary(r.Context(), actor, bizID)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, v)
}

func (s *Server) handlePeriodReport(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		s.unauthorized(w)
		return
	}
	bizID, ok := pathID(r, "businessID")
	if !ok {
		s.badRequest(w, "invalid business id")
		return
	}
	var period reports.Period
	switch r.PathValue("period") {
	case "weekly":
		period = reports.PeriodWeek
	case "monthly":
		period = reports.PeriodMonth
	default:
		s.badRequest(w, "period must be weekly or monthly")
		return
	}
	v, err := s.svc.PeriodReport(r.Context(), actor, bizID, period)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleTimeSeries(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		s.unauthorized(w)
		return
	}
	bizID, ok := pathID(r, "businessID")
	if !ok {
		s.badRequest(w, "invalid business id")
		return
	}
	buckets, err := s.svc.TimeSeries(r.Context(), actor, bizID, service.Granularity(r.PathValue("granularity")))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, buckets)
}

func (s *Server) handleCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		s.unauthorized(w)
		return
	}
	bizID, ok := pathID(r, "businessID")
	if !ok {
		s.badRequest(w, "invalid business id")
		return
	}
	b, err := s.svc.CategoryBreakdown(r.Context(), actor, bizID)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleTopItems(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		s.unauthorized(w)
		return
	}
	bizID, ok := pathID(r, "businessID")
	if !ok {
		s.badRequest(w, "invalid business id")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := s.svc.TopItems(r.Context(), actor, bizID, limit)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, items)
}

func (s *Server) handlePredictProfit(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		s.unauthorized(w)
		return
	}
	bizID, ok := pathID(r, "businessID")
	if !ok {
		s.badRequest(w, "invalid business id")
		return
	}
	est, err := s.svc.PredictProfit(r.Context(), actor, bizID)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, struct {
		BusinessID      int64           `json:"business_id"`
		PredictedMonth  string          `json:"predicted_month"`
		PredictedProfit decimal.Decimal `json:"predicted_profit"`
		MonthsOfHistory int             `json:"months_of_history"`
	}{bizID, est.Month.Format("2006-01"), est.Profit, est.Months})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		s.unauthorized(w)
		return
	}
	bizID, ok := pathID(r, "businessID")
	if !ok {
		s.badRequest(w, "invalid business id")
		return
	}
	data, err := s.svc.ExportTransactions(r.Context(), actor, bizID)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
