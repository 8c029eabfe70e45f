// handlers.go
package loadstate

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// HTTPHandler exposes the tracker over HTTP: mutations drive the in-memory
// tracker (the service ships them to Redis), reads serve either the live
// tracker or the persisted records.
type HTTPHandler struct {
	Service *Service
	Logger  *zap.Logger
}

func NewHTTPHandler(service *Service, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{
		Service: service,
		Logger:  logger,
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// SetLoading handles POST /operations/loading?name=...&loading=true|false.
func (h *HTTPHandler) SetLoading(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, ErrMissingOperationName.Error(), http.StatusBadRequest)
		return
	}

	loading, err := strconv.ParseBool(r.URL.Query().Get("loading"))
	if err != nil {
		http.Error(w, ErrInvalidLoadingFlag.Error(), http.StatusBadRequest)
		return
	}

	h.Service.Tracker.SetLoading(name, loading)
	w.WriteHeader(http.StatusNoContent)
}

// SetError handles POST /operations/error?name=... with body
// {"error": "..."}. An empty error string clears the recorded error.
func (h *HTTPHandler) SetError(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, ErrMissingOperationName.Error(), http.StatusBadRequest)
		return
	}

	var body errorBody
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	if body.Error == "" {
		h.Service.Tracker.SetError(name, nil)
	} else {
		h.Service.Tracker.SetError(name, errors.New(body.Error))
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetSuccess handles POST /operations/success?name=...; an optional
// success=false query parameter lowers the flag instead.
func (h *HTTPHandler) SetSuccess(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, ErrMissingOperationName.Error(), http.StatusBadRequest)
		return
	}

	success := true
	if raw := r.URL.Query().Get("success"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			http.Error(w, ErrInvalidLoadingFlag.Error(), http.StatusBadRequest)
			return
		}
		success = parsed
	}

	h.Service.Tracker.SetSuccess(name, success)
	w.WriteHeader(http.StatusNoContent)
}

// ClearState handles POST /operations/clear?name=... The cleared snapshot
// flows through the normal persistence pipeline so clients see an idle
// record, not a missing one.
func (h *HTTPHandler) ClearState(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, ErrMissingOperationName.Error(), http.StatusBadRequest)
		return
	}

	h.Service.Tracker.ClearState(name)
	w.WriteHeader(http.StatusNoContent)
}

// ForgetStatus handles DELETE /operations/status?name=..., removing the
// persisted record for a name no longer in use.
func (h *HTTPHandler) ForgetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, ErrMissingOperationName.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Service.Store.DeleteStatus(ctx, name); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ClearAllStates handles POST /operations/clear-all.
func (h *HTTPHandler) ClearAllStates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	h.Service.Tracker.ClearAllStates()
	if err := h.Service.Store.DeleteAll(ctx); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetStatus handles GET /operations/status?name=... from the persisted
// records.
func (h *HTTPHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, ErrMissingOperationName.Error(), http.StatusBadRequest)
		return
	}

	rec, err := h.Service.Store.GetStatus(ctx, name)
	if err != nil {
		if errors.Is(err, ErrOperationNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
		} else {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

// ListStatuses handles GET /operations.
func (h *HTTPHandler) ListStatuses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	records, err := h.Service.Store.ListStatuses(ctx)
	if err != nil {
		http.Error(w, "Failed to retrieve statuses", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []StatusRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// RecentUpdates handles GET /operations/recent?limit=...
func (h *HTTPHandler) RecentUpdates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var limit int64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	records, err := h.Service.Store.RecentUpdates(ctx, limit)
	if err != nil {
		http.Error(w, "Failed to retrieve recent updates", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []StatusRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// AggregateLoading handles GET /loading, the "is anything in flight" flag
// derived from the live tracker.
func (h *HTTPHandler) AggregateLoading(w http.ResponseWriter, r *http.Request) {
	resp := struct {
		Loading bool `json:"loading"`
	}{Loading: h.Service.Tracker.IsLoading()}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
