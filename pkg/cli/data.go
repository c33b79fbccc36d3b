package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/mchmarny/attrition/pkg/attrition"
)

const maxRequestBytes = 1 << 20

type errorResponse struct {
	Error     string                 `json:"error"`
	Fields    []attrition.FieldError `json:"fields,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

type healthResponse struct {
	Status    string  `json:"status"`
	Version   string  `json:"version"`
	Model     string  `json:"model,omitempty"`
	Available bool    `json:"model_available"`
	Threshold float64 `json:"threshold"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	res := &errorResponse{
		Error:     err.Error(),
		RequestID: middleware.GetReqID(r.Context()),
	}
	var ve *attrition.ValidationError
	if errors.As(err, &ve) {
		res.Fields = ve.Fields
	}
	writeJSON(w, status, res)
}

// predictErrorStatus maps prediction failures to HTTP status codes.
func predictErrorStatus(err error) int {
	switch {
	case errors.Is(err, attrition.ErrModelUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, attrition.ErrInvalidInput), errors.Is(err, attrition.ErrDivisionByZero):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func queryParamInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		return def
	}
	return i
}

func healthAPIHandler(cfg *appConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := &healthResponse{
			Status:    "ok",
			Version:   version,
			Available: cfg.Predictor.Available(),
			Threshold: cfg.Predictor.Threshold(),
		}
		if cfg.Pipeline != nil {
			res.Model = cfg.Pipeline.String()
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func leaderboardsAPIHandler(cfg *appConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := queryParamInt(r, "limit", cfg.Config.LeaderboardLimit)

		b, err := loadBoard(r.Context(), cfg.Store, limit)
		if err != nil {
			slog.Error("failed to load leaderboards", "error", err)
			writeError(w, r, http.StatusInternalServerError, errors.New("failed to load leaderboards"))
			return
		}
		if b.Summary.Empty() {
			writeError(w, r, http.StatusNotFound, errors.New("no dataset imported"))
			return
		}

		writeJSON(w, http.StatusOK, b)
	}
}

func rolesAPIHandler(cfg *appConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, cfg.formRoles(r.Context()))
	}
}

func predictAPIHandler(cfg *appConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
		if err != nil {
			writeError(w, r, http.StatusBadRequest, errors.New("reading request body: "+err.Error()))
			return
		}

		var doc map[string]json.RawMessage
		if err := json.Unmarshal(body, &doc); err != nil {
			writeError(w, r, http.StatusBadRequest, errors.New("invalid employee JSON: "+err.Error()))
			return
		}
		if err := attrition.RequireKeys(doc); err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}

		var e attrition.Employee
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&e); err != nil {
			writeError(w, r, http.StatusBadRequest, errors.New("invalid employee JSON: "+err.Error()))
			return
		}

		res, err := cfg.predict(r.Context(), e)
		if err != nil {
			status := predictErrorStatus(err)
			if status == http.StatusInternalServerError {
				slog.Error("prediction failed", "error", err)
			}
			writeError(w, r, status, err)
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}
