package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/flow1h/flow1h-api/internal/appointments"
	"github.com/flow1h/flow1h-api/internal/backend"
	"github.com/flow1h/flow1h-api/internal/business"
	"github.com/flow1h/flow1h-api/internal/catalog"
	"github.com/flow1h/flow1h-api/internal/orders"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordedEvent struct {
	Type          string
	CorrelationID string
	Payload       any
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakeEmitter) Emit(_ context.Context, eventType, correlationID string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{eventType, correlationID, payload})
}

func (f *fakeEmitter) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

// fakeOrders keeps orders in memory and echoes drafts back the way the
// database would.
type fakeOrders struct {
	byID      map[string]*orders.Order
	items     []orders.ItemDraft
	createErr error
	confirmed struct {
		id, url string
		at      time.Time
	}
}

func newFakeOrders() *fakeOrders { return &fakeOrders{byID: map[string]*orders.Order{}} }

func (f *fakeOrders) Create(_ context.Context, d orders.Draft, items []orders.ItemDraft) (*orders.Order, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.items = items
	o := &orders.Order{
		ID:                 "11111111-2222-3333-4444-555555555555",
		BusinessID:         d.BusinessID,
		CustomerName:       d.CustomerName,
		CustomerPhone:      d.CustomerPhone,
		DeliveryAddress:    d.DeliveryAddress,
		DeliveryReferences: d.DeliveryReferences,
		AmountTotal:        d.AmountTotal,
		PaymentMethod:      d.PaymentMethod,
		AmountPaid:         d.AmountPaid,
		ChangeAmount:       d.ChangeAmount,
		Status:             d.Status,
		CreatedAt:          time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	f.byID[o.ID] = o
	return o, nil
}

func (f *fakeOrders) ListByBusiness(_ context.Context, businessID string, status orders.Status) ([]orders.Order, error) {
	out := []orders.Order{}
	for _, o := range f.byID {
		if o.BusinessID == businessID && (status == "" || o.Status == status) {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrders) Get(_ context.Context, id string) (*orders.Order, error) {
	return f.byID[id], nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id string, s orders.Status) (*orders.Order, error) {
	o, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	o.Status = s
	return o, nil
}

func (f *fakeOrders) ConfirmPayment(_ context.Context, id, url string, at time.Time) (*orders.Order, error) {
	o, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	f.confirmed.id, f.confirmed.url, f.confirmed.at = id, url, at
	o.TransferReceiptURL = &url
	o.Status = orders.StatusPaymentConfirmed
	o.PaymentConfirmedAt = &at
	return o, nil
}

type fakeStorage struct {
	bucket, key, contentType string
	body                     []byte
	err                      error
}

func (f *fakeStorage) Upload(_ context.Context, bucket, key, contentType string, body io.Reader) error {
	if f.err != nil {
		return f.err
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.bucket, f.key, f.contentType, f.body = bucket, key, contentType, b
	return nil
}

func (f *fakeStorage) PublicURL(bucket, key string) string {
	return "https://backend.test/storage/v1/object/public/" + bucket + "/" + key
}

type fakeAppointments struct {
	created []appointments.Draft
	filter  appointments.Filter
	byID    map[string]*appointments.Appointment
}

func (f *fakeAppointments) Create(_ context.Context, d appointments.Draft) (*appointments.Appointment, error) {
	f.created = append(f.created, d)
	return &appointments.Appointment{
		ID: "appt-1", BusinessID: d.BusinessID, CustomerName: d.CustomerName, CustomerPhone: d.CustomerPhone,
		ServiceID: d.ServiceID, EmployeeID: d.EmployeeID, Datetime: d.Datetime, Status: appointments.StatusPending,
	}, nil
}

func (f *fakeAppointments) List(_ context.Context, _ string, flt appointments.Filter) ([]appointments.Appointment, error) {
	f.filter = flt
	return []appointments.Appointment{}, nil
}

func (f *fakeAppointments) UpdateStatus(_ context.Context, id string, s appointments.Status) (*appointments.Appointment, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	a.Status = s
	return a, nil
}

type fakeCatalog struct {
	itemDraft  catalog.ItemDraft
	orderDraft catalog.OrderDraft
	orders     map[string]*catalog.Order
}

func (f *fakeCatalog) CreateItem(_ context.Context, d catalog.ItemDraft) (*catalog.Item, error) {
	f.itemDraft = d
	return &catalog.Item{ID: "item-1", BusinessID: d.BusinessID, Name: d.Name, Price: d.Price, Stock: d.Stock}, nil
}

func (f *fakeCatalog) ListItems(context.Context, string) ([]catalog.Item, error) {
	return []catalog.Item{}, nil
}

func (f *fakeCatalog) CreateOrder(_ context.Context, d catalog.OrderDraft) (*catalog.Order, error) {
	f.orderDraft = d
	o := &catalog.Order{ID: "corder-1", BusinessID: d.BusinessID, CustomerName: d.CustomerName,
		CustomerPhone: d.CustomerPhone, Status: catalog.OrderPending, Total: d.Total}
	return o, nil
}

func (f *fakeCatalog) ListOrders(context.Context, string, catalog.OrderStatus) ([]catalog.Order, error) {
	return []catalog.Order{}, nil
}

func (f *fakeCatalog) SetOrderStatus(_ context.Context, id string, s catalog.OrderStatus) (*catalog.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, nil
	}
	o.Status = s
	return o, nil
}

type fakeStock struct{ released []string }

func (f *fakeStock) ReleaseAll(_ context.Context, orderID string) error {
	f.released = append(f.released, orderID)
	return nil
}

type fakeAuth struct {
	user       *backend.User
	session    *backend.Session
	err        error
	gotPass    string
	gotConfirm bool
}

func (f *fakeAuth) CreateUser(_ context.Context, _, password string, emailConfirm bool) (*backend.User, error) {
	f.gotPass, f.gotConfirm = password, emailConfirm
	return f.user, f.err
}

func (f *fakeAuth) SignInWithPassword(context.Context, string, string) (*backend.Session, error) {
	return f.session, f.err
}

type fakeBusinesses struct {
	created []business.Draft
	byOwner map[string]*business.Business
}

func (f *fakeBusinesses) Create(_ context.Context, d business.Draft) (*business.Business, error) {
	f.created = append(f.created, d)
	return &business.Business{ID: "biz-1", OwnerUserID: d.OwnerUserID, Name: d.Name, Type: d.Type}, nil
}

func (f *fakeBusinesses) ByOwner(_ context.Context, owner string) (*business.Business, error) {
	return f.byOwner[owner], nil
}

func serve(t *testing.T, h Registrar) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewRouter(zap.NewNop(), h))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

func doList(t *testing.T, url string) (*http.Response, []any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out []any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}
