package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type TextMessage struct {
	PhoneNumberID string
	AccessToken   string
	To            string
	Body          string
}

// Delivery is the outcome of one send. It is informational only: senders
// log it and move on.
type Delivery struct {
	OK         bool
	StatusCode int
	Detail     string
}

// Client posts messages to the Graph API. Nothing is retried.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Log     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		Log:     log,
	}
}

type sendRequest struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             Text   `json:"text"`
}

func (c *Client) SendText(ctx context.Context, m TextMessage) Delivery {
	body, err := json.Marshal(sendRequest{
		MessagingProduct: "whatsapp",
		To:               m.To,
		Type:             "text",
		Text:             Text{Body: m.Body},
	})
	if err != nil {
		return c.failed(m, 0, err.Error())
	}

	url := c.BaseURL + "/" + m.PhoneNumberID + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return c.failed(m, 0, err.Error())
	}
	req.Header.Set("Authorization", "Bearer "+m.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return c.failed(m, 0, err.Error())
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.failed(m, resp.StatusCode, string(raw))
	}
	return Delivery{OK: true, StatusCode: resp.StatusCode}
}

func (c *Client) failed(m TextMessage, status int, detail string) Delivery {
	c.Log.Warn("whatsapp send failed",
		zap.String("phone_number_id", m.PhoneNumberID),
		zap.String("to", m.To),
		zap.Int("status", status),
		zap.String("body", detail),
	)
	return Delivery{StatusCode: status, Detail: detail}
}
