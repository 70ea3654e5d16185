package backend

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/flow1h/flow1h-api/internal/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Client is the process-wide handle to the managed backend. Build it once
// in main and hand the pieces to whoever needs them.
type Client struct {
	DB      *pgxpool.Pool
	Auth    *AuthClient
	Storage *StorageClient
}

type Options struct {
	URL         string
	ServiceRole string
	PostgresDSN string
	HTTPClient  *http.Client
}

func New(ctx context.Context, opt Options) (*Client, error) {
	db, err := postgres.Connect(ctx, opt.PostgresDSN)
	if err != nil {
		return nil, err
	}
	c := NewREST(opt)
	c.DB = db
	return c, nil
}

// NewREST builds the auth and storage subsystems only.
func NewREST(opt Options) *Client {
	hc := opt.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	rest := &restClient{
		baseURL:    strings.TrimRight(opt.URL, "/"),
		serviceKey: opt.ServiceRole,
		http:       hc,
	}
	return &Client{
		Auth:    &AuthClient{rest: rest},
		Storage: &StorageClient{rest: rest},
	}
}

func (c *Client) Close() {
	if c.DB != nil {
		c.DB.Close()
	}
}
