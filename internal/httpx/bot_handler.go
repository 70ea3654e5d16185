package httpx

import (
	"context"
	"io"
	"net/http"

	"github.com/flow1h/flow1h-api/internal/bot"
	"github.com/flow1h/flow1h-api/internal/whatsapp"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// WebhookPipeline is implemented by *bot.Pipeline.
type WebhookPipeline interface {
	Handle(ctx context.Context, env *whatsapp.Envelope) bot.Outcome
}

type BotHandler struct {
	Store       bot.Store
	Pipeline    WebhookPipeline
	VerifyToken string
	Log         *zap.Logger
}

type upsertBotReq struct {
	BusinessID    string `json:"business_id" validate:"required"`
	Provider      string `json:"provider"`
	PhoneNumberID string `json:"phone_number_id" validate:"required"`
	WabaID        string `json:"waba_id"`
	AccessToken   string `json:"access_token" validate:"required"`
	VerifyToken   string `json:"verify_token"`
	BotType       string `json:"bot_type" validate:"omitempty,oneof=orders appointments catalog"`

	GreetingMessage         *string `json:"greeting_message"`
	AskOrderMessage         *string `json:"ask_order_message"`
	AskAddressMessage       *string `json:"ask_address_message"`
	AskPaymentMethodMessage *string `json:"ask_payment_method_message"`
	ClosingMessage          *string `json:"closing_message"`
}

func (h *BotHandler) Register(r chi.Router) {
	r.Route("/whatsapp-bot", func(r chi.Router) {
		r.Get("/webhook", h.verifyWebhook)
		r.Post("/webhook", h.receiveWebhook)
		r.Get("/by-business/{business_id}", h.byBusiness)
		r.Post("/", h.upsert)
		r.Patch("/texts/{business_id}", h.updateTexts)
	})
}

func (h *BotHandler) byBusiness(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.ByBusiness(r.Context(), chi.URLParam(r, "business_id"))
	if err != nil {
		writeError(w, upstream("error loading bot config", err))
		return
	}
	if c == nil {
		writeError(w, notFound("no bot configured for this business"))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *BotHandler) upsert(w http.ResponseWriter, r *http.Request) {
	var req upsertBotReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	c, err := h.Store.Upsert(r.Context(), bot.Draft{
		BusinessID:    req.BusinessID,
		Provider:      req.Provider,
		PhoneNumberID: req.PhoneNumberID,
		WabaID:        req.WabaID,
		AccessToken:   req.AccessToken,
		VerifyToken:   req.VerifyToken,
		BotType:       req.BotType,
		Texts: bot.Texts{
			GreetingMessage:         req.GreetingMessage,
			AskOrderMessage:         req.AskOrderMessage,
			AskAddressMessage:       req.AskAddressMessage,
			AskPaymentMethodMessage: req.AskPaymentMethodMessage,
			ClosingMessage:          req.ClosingMessage,
		},
	})
	if err != nil {
		writeError(w, upstream("error saving bot config", err))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *BotHandler) updateTexts(w http.ResponseWriter, r *http.Request) {
	var t bot.Texts
	if err := decodeJSON(r, &t); err != nil {
		writeError(w, err)
		return
	}
	if len(t.Values()) == 0 {
		writeError(w, badRequest("no texts to update"))
		return
	}
	c, err := h.Store.UpdateTexts(r.Context(), chi.URLParam(r, "business_id"), t)
	if err != nil {
		writeError(w, upstream("error updating bot texts", err))
		return
	}
	if c == nil {
		writeError(w, notFound("no bot configured for this business"))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *BotHandler) verifyWebhook(w http.ResponseWriter, r *http.Request) {
	challenge, ok := whatsapp.VerifyChallenge(r.URL.Query(), h.VerifyToken)
	if !ok {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(challenge))
}

// maxWebhookBody caps a single provider delivery.
const maxWebhookBody = 1 << 20

// receiveWebhook always answers 200 so the provider does not redeliver.
func (h *BotHandler) receiveWebhook(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		h.Log.Warn("read webhook body", zap.Error(err))
		writeJSON(w, http.StatusOK, map[string]bot.Outcome{"status": bot.OutcomeInvalidPayload})
		return
	}
	env, err := whatsapp.Decode(raw)
	if err != nil {
		h.Log.Warn("webhook body is not json", zap.Int("bytes", len(raw)))
		writeJSON(w, http.StatusOK, map[string]bot.Outcome{"status": bot.OutcomeInvalidPayload})
		return
	}
	outcome := h.Pipeline.Handle(r.Context(), env)
	writeJSON(w, http.StatusOK, map[string]bot.Outcome{"status": outcome})
}
