package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"guestflow-backend/internal/logger"
	"guestflow-backend/internal/service"
	"guestflow-backend/internal/utils"
)

// WebhookSecretHeader carries the shared secret configured with the inventory provider.
const WebhookSecretHeader = "X-TBO-Webhook-Secret"

// InventoryUpdate is the provider's notice that a block changed size.
type InventoryUpdate struct {
	PoolID    string `json:"pool_id" validate:"required"`
	Blocked   *int   `json:"blocked" validate:"required,min=0"`
	Reference string `json:"reference" validate:"max=128"`
}

type Handler struct {
	inventory     service.InventoryService
	validate      *validator.Validate
	webhookSecret string
}

func NewHandler(inventory service.InventoryService, validate *validator.Validate, webhookSecret string) *Handler {
	return &Handler{inventory: inventory, validate: validate, webhookSecret: webhookSecret}
}

// NewRouter registers the ops endpoints served next to the gRPC API.
func NewRouter(h *Handler) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/integrations/tbo/inventory", h.InventoryWebhook).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/pools/{poolID}/rate", h.PoolRate).Methods(http.MethodGet)
	return router
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Envelope{Message: "ok"})
}

// InventoryWebhook applies the provider's blocked count to the pool. An
// empty configured secret disables the endpoint.
func (h *Handler) InventoryWebhook(w http.ResponseWriter, r *http.Request) {
	if h.webhookSecret == "" {
		writeJSON(w, http.StatusNotFound, Envelope{Message: "webhook disabled"})
		return
	}
	got := r.Header.Get(WebhookSecretHeader)
	if subtle.ConstantTimeCompare([]byte(got), []byte(h.webhookSecret)) != 1 {
		writeJSON(w, http.StatusUnauthorized, Envelope{Message: "invalid webhook secret"})
		return
	}

	var req InventoryUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, Envelope{Message: err.Error()})
		return
	}
	if err := h.validateStruct(r.Context(), req); err != nil {
		writeJSON(w, http.StatusBadRequest, Envelope{Message: err.Error()})
		return
	}

	logger.Info("Inventory update received", "poolID", req.PoolID, "blocked", *req.Blocked, "reference", req.Reference)
	pool, err := h.inventory.AdjustBlocked(r.Context(), req.PoolID, *req.Blocked)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Data: pool})
}

// PoolRate shows a guest the negotiated rate against the estimated retail price.
func (h *Handler) PoolRate(w http.ResponseWriter, r *http.Request) {
	poolID := mux.Vars(r)["poolID"]
	units := 1
	if v := r.URL.Query().Get("units"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, Envelope{Message: "units must be a positive integer"})
			return
		}
		units = n
	}

	pool, err := h.inventory.GetPool(r.Context(), poolID)
	if err != nil {
		writeError(w, err)
		return
	}
	quote, err := utils.QuotePool(pool, units)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Data: quote})
}

func (h *Handler) validateStruct(ctx context.Context, payload any) error {
	err := h.validate.StructCtx(ctx, payload)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		msgs[i] = fmt.Sprintf("invalid '%s' (%s)", fe.Field(), fe.Tag())
	}
	return fmt.Errorf("%s", strings.Join(msgs, ", "))
}
