package httpx

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/flow1h/flow1h-api/internal/bot"
	"github.com/flow1h/flow1h-api/internal/whatsapp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBotStore struct {
	byBusiness map[string]*bot.Config
	upserted   []bot.Draft
	texts      bot.Texts
}

func (f *fakeBotStore) ByBusiness(_ context.Context, id string) (*bot.Config, error) {
	return f.byBusiness[id], nil
}

func (f *fakeBotStore) Upsert(_ context.Context, d bot.Draft) (*bot.Config, error) {
	f.upserted = append(f.upserted, d)
	return &bot.Config{BusinessID: d.BusinessID, PhoneNumberID: d.PhoneNumberID, Provider: bot.DefaultProvider, BotType: bot.DefaultBotType}, nil
}

func (f *fakeBotStore) UpdateTexts(_ context.Context, id string, t bot.Texts) (*bot.Config, error) {
	c, ok := f.byBusiness[id]
	if !ok {
		return nil, nil
	}
	f.texts = t
	c.GreetingMessage = t.GreetingMessage
	return c, nil
}

func (f *fakeBotStore) FindByPhoneNumberID(context.Context, string) ([]bot.Config, error) {
	return nil, nil
}

type fakePipeline struct {
	outcome bot.Outcome
	calls   int
}

func (f *fakePipeline) Handle(context.Context, *whatsapp.Envelope) bot.Outcome {
	f.calls++
	return f.outcome
}

func newBotServer(t *testing.T) (*fakeBotStore, *fakePipeline, string) {
	store := &fakeBotStore{byBusiness: map[string]*bot.Config{
		"biz-1": {BusinessID: "biz-1", PhoneNumberID: "PNID-1"},
	}}
	p := &fakePipeline{outcome: bot.OutcomeOK}
	h := &BotHandler{Store: store, Pipeline: p, VerifyToken: "s3cret", Log: zap.NewNop()}
	return store, p, serve(t, h).URL
}

func TestWebhookVerification(t *testing.T) {
	_, p, url := newBotServer(t)

	resp, err := http.Get(url + "/whatsapp-bot/webhook?hub.mode=subscribe&hub.verify_token=s3cret&hub.challenge=1158201444")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1158201444", string(body))
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain"))

	for _, q := range []string{
		"hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=1",
		"hub.mode=unsubscribe&hub.verify_token=s3cret&hub.challenge=1",
		"hub.mode=subscribe&hub.verify_token=s3cret",
		"",
	} {
		resp, err := http.Get(url + "/whatsapp-bot/webhook?" + q)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, q)
		assert.NotContains(t, string(body), "1", q)
	}
	assert.Zero(t, p.calls)
}

func TestWebhookDeliveryAlwaysAcknowledged(t *testing.T) {
	_, p, url := newBotServer(t)

	resp, out := doJSON(t, http.MethodPost, url+"/whatsapp-bot/webhook", `{"entry":[]}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", out["status"])
	assert.Equal(t, 1, p.calls)

	p.outcome = bot.OutcomeNoBotConfig
	resp, out = doJSON(t, http.MethodPost, url+"/whatsapp-bot/webhook", `{}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no_bot_config", out["status"])

	resp, out = doJSON(t, http.MethodPost, url+"/whatsapp-bot/webhook", `not json`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "invalid_payload", out["status"])
	assert.Equal(t, 2, p.calls)
}

func TestWebhookOversizedBody(t *testing.T) {
	_, p, url := newBotServer(t)

	body := `{"entry":[],"pad":"` + strings.Repeat("x", maxWebhookBody) + `"}`
	resp, out := doJSON(t, http.MethodPost, url+"/whatsapp-bot/webhook", body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "invalid_payload", out["status"])
	assert.Zero(t, p.calls)
}

func TestBotConfigByBusiness(t *testing.T) {
	_, _, url := newBotServer(t)

	resp, out := doJSON(t, http.MethodGet, url+"/whatsapp-bot/by-business/biz-1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "PNID-1", out["phone_number_id"])

	resp, _ = doJSON(t, http.MethodGet, url+"/whatsapp-bot/by-business/biz-9", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBotConfigUpsert(t *testing.T) {
	store, _, url := newBotServer(t)

	resp, out := doJSON(t, http.MethodPost, url+"/whatsapp-bot/",
		`{"business_id":"biz-2","phone_number_id":"PNID-2","access_token":"tok","greeting_message":"Hola"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "whatsapp_cloud", out["provider"])
	require.Len(t, store.upserted, 1)
	require.NotNil(t, store.upserted[0].GreetingMessage)
	assert.Equal(t, "Hola", *store.upserted[0].GreetingMessage)
	assert.Nil(t, store.upserted[0].ClosingMessage)

	resp, out = doJSON(t, http.MethodPost, url+"/whatsapp-bot",
		`{"business_id":"biz-2","phone_number_id":"PNID-2","access_token":"tok","bot_type":"support"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "bot_type must be one of: orders, appointments, catalog", out["error"])
}

func TestBotTextsPatch(t *testing.T) {
	store, _, url := newBotServer(t)

	resp, out := doJSON(t, http.MethodPatch, url+"/whatsapp-bot/texts/biz-1", `{"greeting_message":"Buenas"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Buenas", out["greeting_message"])
	assert.Nil(t, store.texts.AskOrderMessage)

	resp, out = doJSON(t, http.MethodPatch, url+"/whatsapp-bot/texts/biz-1", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "no texts to update", out["error"])

	resp, _ = doJSON(t, http.MethodPatch, url+"/whatsapp-bot/texts/biz-9", `{"closing_message":"Bye"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
