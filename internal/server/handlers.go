package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"trade-journal-go/internal/attachments"
	"trade-journal-go/internal/auth"
	"trade-journal-go/internal/economics"
	"trade-journal-go/internal/export"
	"trade-journal-go/internal/journal"
	"trade-journal-go/internal/models"
)

// Handler holds dependencies for the API endpoints.
type Handler struct {
	logger      *zap.Logger
	store       *journal.Store
	auth        *auth.Service
	attachments *attachments.Store
	schedule    economics.ChargeSchedule
	metrics     *Metrics
}

// NewHandler creates a new Handler.
func NewHandler(logger *zap.Logger, store *journal.Store, authSvc *auth.Service, attStore *attachments.Store, schedule economics.ChargeSchedule, metrics *Metrics) *Handler {
	return &Handler{
		logger:      logger,
		store:       store,
		auth:        authSvc,
		attachments: attStore,
		schedule:    schedule,
		metrics:     metrics,
	}
}

// derivedFields are the JSON keys a raw patch is never allowed to carry;
// these values only exist as recomputation output.
var derivedFields = []string{
	"charges", "gross_pnl", "net_pnl",
	"brokerage", "transaction_tax", "exchange_fee", "government_tax", "stamp_duty", "total",
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg, field string) {
	writeJSON(w, status, errorResponse{Error: msg, Field: field})
}

// respondError maps journal/auth/economics failures to HTTP statuses.
// Everything here is a recoverable request failure, never a crash.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var ve *journal.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSONError(w, http.StatusBadRequest, ve.Error(), ve.Field)
	case errors.Is(err, journal.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, err.Error(), "")
	case errors.Is(err, journal.ErrDerivedField):
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error(), "")
	case errors.Is(err, journal.ErrPsychologyBlocked):
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error(), "psychology_state")
	case errors.Is(err, economics.ErrZeroRisk), errors.Is(err, economics.ErrStopWrongSide):
		writeJSONError(w, http.StatusBadRequest, err.Error(), "stop_loss")
	case errors.Is(err, economics.ErrUnknownDirection):
		writeJSONError(w, http.StatusBadRequest, err.Error(), "direction")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeJSONError(w, http.StatusUnauthorized, err.Error(), "")
	case errors.Is(err, auth.ErrUsernameTaken):
		writeJSONError(w, http.StatusConflict, err.Error(), "username")
	case errors.Is(err, auth.ErrRateLimited):
		writeJSONError(w, http.StatusTooManyRequests, err.Error(), "")
	case errors.Is(err, attachments.ErrUnknownKind):
		writeJSONError(w, http.StatusBadRequest, err.Error(), "kind")
	default:
		h.logger.Error("Request failed", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "internal error", "")
	}
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleRegister creates a new journal owner.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body", "")
		return
	}

	user, err := h.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"owner_id": user.ID,
		"username": user.Username,
	})
}

// HandleLogin resolves a credential pair to a bearer token.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body", "")
		return
	}

	token, ownerID, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":    token,
		"owner_id": ownerID,
	})
}

// HandleLogout invalidates the caller's bearer token.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		h.auth.Logout(token)
	}
	w.WriteHeader(http.StatusNoContent)
}

type previewRequest struct {
	Capital     float64             `json:"capital"`
	RiskPercent float64             `json:"risk_percent"`
	EntryPrice  float64             `json:"entry_price"`
	StopLoss    float64             `json:"stop_loss"`
	TargetPrice float64             `json:"target_price"`
	Direction   economics.Direction `json:"direction"`
}

type previewResponse struct {
	Quantity     int64   `json:"quantity"`
	RiskAmount   float64 `json:"risk_amount"`
	RewardToRisk float64 `json:"reward_to_risk,omitempty"`
}

// HandlePreview runs the sizing calculator without touching the store, so
// the form can show the recommended size and reward:risk before submit.
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body", "")
		return
	}

	qty, err := economics.PositionSize(req.Capital, req.RiskPercent, req.EntryPrice, req.StopLoss, req.Direction)
	if err != nil {
		h.respondError(w, err)
		return
	}

	resp := previewResponse{
		Quantity:   qty,
		RiskAmount: req.Capital * req.RiskPercent / 100,
	}
	if req.TargetPrice > 0 {
		// The stop already validated, the ratio cannot fail here.
		resp.RewardToRisk, _ = economics.RewardToRisk(req.EntryPrice, req.TargetPrice, req.StopLoss, req.Direction)
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleCreateTrade logs a new trade for the authenticated owner.
func (h *Handler) HandleCreateTrade(w http.ResponseWriter, r *http.Request) {
	var input journal.TradeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body", "")
		return
	}

	trade, err := h.store.Create(r.Context(), ownerFromContext(r.Context()), input)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.metrics.tradesCreated.Inc()
	writeJSON(w, http.StatusCreated, trade)
}

// HandleListTrades returns the owner's trades, optionally filtered by
// date range (inclusive), symbol substring and status.
func (h *Handler) HandleListTrades(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	trades, err := h.store.Query(r.Context(), ownerFromContext(r.Context()), filter)
	if err != nil {
		h.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, trades)
}

// HandleGetTrade returns a single trade with its attachment rows.
func (h *Handler) HandleGetTrade(w http.ResponseWriter, r *http.Request) {
	id, err := tradeID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	trade, err := h.store.Get(r.Context(), ownerFromContext(r.Context()), id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	atts, err := h.attachments.ForTrade(r.Context(), trade.ID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	trade.Attachments = atts

	writeJSON(w, http.StatusOK, trade)
}

// HandleUpdateTrade applies a patch. Raw bodies naming derived fields are
// rejected outright; the typed patch cannot express them.
func (h *Handler) HandleUpdateTrade(w http.ResponseWriter, r *http.Request) {
	id, err := tradeID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body", "")
		return
	}
	for _, field := range derivedFields {
		if _, present := raw[field]; present {
			h.respondError(w, fmt.Errorf("%w: %s", journal.ErrDerivedField, field))
			return
		}
	}

	body, _ := json.Marshal(raw)
	var patch journal.TradePatch
	if err := json.Unmarshal(body, &patch); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body", "")
		return
	}

	trade, err := h.store.Update(r.Context(), ownerFromContext(r.Context()), id, patch)
	if err != nil {
		h.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, trade)
}

type closeRequest struct {
	ExitPrice float64 `json:"exit_price"`
}

// HandleCloseTrade closes a trade at the given exit price.
func (h *Handler) HandleCloseTrade(w http.ResponseWriter, r *http.Request) {
	id, err := tradeID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	var req closeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body", "")
		return
	}

	trade, err := h.store.Close(r.Context(), ownerFromContext(r.Context()), id, req.ExitPrice)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.metrics.tradesClosed.Inc()
	writeJSON(w, http.StatusOK, trade)
}

// HandleDeleteTrade permanently removes a trade and its attachments.
func (h *Handler) HandleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	id, err := tradeID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	owner := ownerFromContext(r.Context())
	if _, err := h.store.Get(r.Context(), owner, id); err != nil {
		h.respondError(w, err)
		return
	}
	if err := h.attachments.DeleteForTrade(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	if err := h.store.Delete(r.Context(), owner, id); err != nil {
		h.respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleStats returns the owner's aggregate statistics.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Aggregate(r.Context(), ownerFromContext(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// HandleExportCSV streams the owner's filtered trades as a CSV download.
func (h *Handler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	trades, err := h.store.Query(r.Context(), ownerFromContext(r.Context()), filter)
	if err != nil {
		h.respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="trades.csv"`)
	if err := export.WriteCSV(w, trades); err != nil {
		h.logger.Error("CSV export failed mid-stream", zap.Error(err))
	}
}

// HandleUploadAttachment stores an entry or exit screenshot for a trade.
func (h *Handler) HandleUploadAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := tradeID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	// Ownership check before touching the blob store.
	trade, err := h.store.Get(r.Context(), ownerFromContext(r.Context()), id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	kind := r.URL.Query().Get("kind")
	att, err := h.attachments.Save(r.Context(), trade.ID, kind, r.Body)
	if err != nil {
		h.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, att)
}

func tradeID(r *http.Request) (uint, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, &journal.ValidationError{Field: "id", Reason: "must be a positive integer"}
	}
	return uint(id), nil
}

// filterFromQuery parses ?from=YYYY-MM-DD&to=YYYY-MM-DD&symbol=&status=.
// The to date is widened to the end of its day so the range stays
// inclusive.
func filterFromQuery(r *http.Request) (journal.QueryFilter, error) {
	var filter journal.QueryFilter
	q := r.URL.Query()

	if raw := q.Get("from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, &journal.ValidationError{Field: "from", Reason: "must be YYYY-MM-DD"}
		}
		filter.From = &from
	}
	if raw := q.Get("to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, &journal.ValidationError{Field: "to", Reason: "must be YYYY-MM-DD"}
		}
		end := to.Add(24*time.Hour - time.Nanosecond)
		filter.To = &end
	}
	filter.Symbol = q.Get("symbol")
	filter.Status = models.Status(q.Get("status"))

	return filter, nil
}
