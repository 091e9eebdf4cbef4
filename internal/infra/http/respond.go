package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"bizledger/internal/apperr"
	"bizledger/internal/infra/metrics"
)

// instrument снимает метрику по операции и коду ответа.
func (s *Server) instrument(op string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		h(sw, r)
		metrics.RequestsTotal.WithLabelValues(op, strconv.Itoa(sw.status)).Inc()
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// actorID — идентификатор аутентифицированного пользователя от внешнего
// identity-провайдера (шлюз кладёт его в X-User-ID). Само ядро
// аутентификацию не выполняет.
func actorID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
	return id, err == nil && id > 0
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil && id > 0
}

func queryID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			s.log.Error("encode response", "err", err)
		}
	}
}

type errBody struct {
	Error string `json:"error"`
}

// writeErr — маппинг таксономии ошибок ядра в статус-коды.
// Ошибки валидации и бизнес-правил доходят сюда без подмены.
func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	var code int
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, apperr.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, apperr.ErrInvalidTransactionKind),
		errors.Is(err, apperr.ErrInvalidInput),
		errors.Is(err, apperr.ErrDuplicateMembership),
		errors.Is(err, apperr.ErrDuplicateItemName):
		code = http.StatusBadRequest
	case errors.Is(err, apperr.ErrInsufficientStock),
		errors.Is(err, apperr.ErrStockReversalConflict):
		code = http.StatusConflict
	case errors.Is(err, apperr.ErrDependencyUnavailable):
		code = http.StatusServiceUnavailable
	default:
		s.log.Error("internal error", "path", r.URL.Path, "err", err)
		s.writeJSON(w, http.StatusInternalServerError, errBody{Error: "internal server error"})
		return
	}
	s.writeJSON(w, code, errBody{Error: err.Error()})
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	s.writeJSON(w, http.StatusBadRequest, errBody{Error: msg})
}

func (s *Server) unauthorized(w http.ResponseWriter) {
	s.writeJSON(w, http.StatusUnauthorized, errBody{Error: "missing or invalid X-User-ID"})
}
