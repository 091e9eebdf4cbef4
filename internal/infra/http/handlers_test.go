package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bizledger/internal/service"
)

func newTestServer() *Server {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	// зависимости не трогаются: валидация на границе отрабатывает раньше
	svc := service.New(log, nil, nil, nil, nil, nil, nil, 5)
	return New(":0", false, log, svc)
}

func do(srv *Server, method, path, userID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	srv.srv.Handler.ServeHTTP(rec, req)
	return rec
}

// Отсутствующий amount и нулевой amount — разные вещи: без поля запрос
// отклоняется, до ядра не доходит.
func TestCreateTransactionRequiresAmount(t *testing.T) {
	srv := newTestServer()

	rec := do(srv, http.MethodPost, "/api/transactions", "1",
		`{"business_id":1,"kind":"income"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want 400: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "amount is required") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestCreateTransactionRequiresIdentity(t *testing.T) {
	srv := newTestServer()

	rec := do(srv, http.MethodPost, "/api/transactions", "",
		`{"business_id":1,"kind":"income","amount":"10"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d want 401: %s", rec.Code, rec.Body.String())
	}
}
