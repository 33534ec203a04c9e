package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enhancv/go-subscriptions/pkg/billing"
	"github.com/enhancv/go-subscriptions/pkg/customer"
	"github.com/enhancv/go-subscriptions/pkg/observability"
	"github.com/enhancv/go-subscriptions/pkg/processor"
	"github.com/enhancv/go-subscriptions/pkg/storage"
)

// mockCustomerStore implements storage.CustomerStore in memory.
type mockCustomerStore struct {
	customers map[string]*customer.Customer
	putFunc   func(ctx context.Context, c *customer.Customer) error
}

func newMockCustomerStore() *mockCustomerStore {
	return &mockCustomerStore{customers: make(map[string]*customer.Customer)}
}

func (m *mockCustomerStore) Get(ctx context.Context, entityID string) (*customer.Customer, error) {
	c, ok := m.customers[entityID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return c, nil
}

func (m *mockCustomerStore) Put(ctx context.Context, c *customer.Customer) error {
	if m.putFunc != nil {
		return m.putFunc(ctx, c)
	}
	m.customers[c.EntityID] = c
	return nil
}

func (m *mockCustomerStore) Delete(ctx context.Context, entityID string) error {
	if _, ok := m.customers[entityID]; !ok {
		return storage.ErrNotFound
	}
	delete(m.customers, entityID)
	return nil
}

func (m *mockCustomerStore) List(ctx context.Context, limit, offset int) ([]string, int64, error) {
	ids := make([]string, 0, len(m.customers))
	for id := range m.customers {
		ids = append(ids, id)
	}
	return ids, int64(len(ids)), nil
}

// mockCouponStore implements storage.CouponStore in memory.
type mockCouponStore struct {
	coupons map[string]*billing.Coupon
}

func newMockCouponStore() *mockCouponStore {
	return &mockCouponStore{coupons: make(map[string]*billing.Coupon)}
}

func (m *mockCouponStore) Get(ctx context.Context, id string) (*billing.Coupon, error) {
	c, ok := m.coupons[id]
	if !ok {
		return nil, billing.ErrCouponNotFound
	}
	return c, nil
}

func (m *mockCouponStore) IncrementUsage(ctx context.Context, id string) error {
	c, ok := m.coupons[id]
	if !ok {
		return billing.ErrCouponNotFound
	}
	c.UsedCount++
	return nil
}

func (m *mockCouponStore) Put(ctx context.Context, c *billing.Coupon) error {
	m.coupons[c.ID] = c
	return nil
}

func (m *mockCouponStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.coupons[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.coupons, id)
	return nil
}

func (m *mockCouponStore) List(ctx context.Context) ([]*billing.Coupon, error) {
	coupons := make([]*billing.Coupon, 0, len(m.coupons))
	for _, c := range m.coupons {
		coupons = append(coupons, c)
	}
	return coupons, nil
}

func (m *mockCouponStore) SweepExpired(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

// failingGateway fails every remote operation.
type failingGateway struct{ err error }

func (g *failingGateway) Load(ctx context.Context, c *customer.Customer) (*customer.Customer, error) {
	return nil, g.err
}

func (g *failingGateway) Save(ctx context.Context, c *customer.Customer) (*customer.Customer, error) {
	return nil, g.err
}

func (g *failingGateway) CancelSubscription(ctx context.Context, c *customer.Customer, subscriptionID string) (*customer.Customer, error) {
	return nil, g.err
}

func (g *failingGateway) RefundTransaction(ctx context.Context, c *customer.Customer, transactionID string, amount decimal.Decimal) (*customer.Customer, error) {
	return nil, g.err
}

type testEnv struct {
	server  *Server
	store   *mockCustomerStore
	coupons *mockCouponStore
}

func newTestServer(t *testing.T, gateway processor.Gateway) *testEnv {
	t.Helper()

	registry := customer.NewRegistry()
	store := newMockCustomerStore()
	coupons := newMockCouponStore()
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)

	if gateway == nil {
		gateway = processor.NewLocalGateway(registry)
	}
	sync, err := processor.NewSync(processor.SyncConfig{
		Gateway:  gateway,
		Store:    store,
		Registry: registry,
		Coupons:  coupons,
		Logger:   logger,
	})
	require.NoError(t, err)

	catalog := billing.NewCatalog(
		customer.Plan{ID: "basic", Name: "Basic", Level: 1, Price: decimal.NewFromFloat(9.99)},
		customer.Plan{ID: "pro", Name: "Pro", Level: 2, Price: decimal.NewFromFloat(19.99)},
	)

	server, err := NewServer(Config{
		Store:         store,
		Coupons:       coupons,
		Catalog:       catalog,
		Factory:       billing.NewFactory(coupons),
		Sync:          sync,
		Registry:      registry,
		ServiceLogger: logger,
	})
	require.NoError(t, err)

	return &testEnv{server: server, store: store, coupons: coupons}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeCustomer(t *testing.T, rec *httptest.ResponseRecorder) *customer.Customer {
	t.Helper()
	c, err := customer.NewRegistry().DecodeCustomer(rec.Body.Bytes())
	require.NoError(t, err)
	return c
}

func TestNewServerValidation(t *testing.T) {
	_, err := NewServer(Config{})
	assert.Error(t, err)
}

func TestCreateCustomer(t *testing.T) {
	env := newTestServer(t, nil)

	rec := env.do(t, "POST", "/api/v1/customers", map[string]string{
		"name":  "Jane Doe",
		"email": "jane@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decodeCustomer(t, rec)
	assert.NotEmpty(t, created.EntityID)
	assert.Equal(t, "Jane Doe", created.Name)
	assert.Contains(t, env.store.customers, created.EntityID)
}

func TestCreateCustomerValidation(t *testing.T) {
	env := newTestServer(t, nil)

	rec := env.do(t, "POST", "/api/v1/customers", map[string]string{
		"name":  "Jane Doe",
		"email": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.store.customers)
}

func TestGetCustomerNotFound(t *testing.T) {
	env := newTestServer(t, nil)

	rec := env.do(t, "GET", "/api/v1/customers/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateCustomer(t *testing.T) {
	env := newTestServer(t, nil)
	c := customer.New("Jane Doe", "jane@example.com")
	env.store.customers[c.EntityID] = c

	rec := env.do(t, "PUT", "/api/v1/customers/"+c.EntityID, map[string]string{
		"email": "new@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	updated := decodeCustomer(t, rec)
	assert.Equal(t, "new@example.com", updated.Email)
	assert.Equal(t, "Jane Doe", updated.Name)
}

func TestUpdateCustomerDanglingReference(t *testing.T) {
	env := newTestServer(t, nil)
	c := customer.New("Jane Doe", "jane@example.com")
	env.store.customers[c.EntityID] = c

	rec := env.do(t, "PUT", "/api/v1/customers/"+c.EntityID, map[string]string{
		"defaultPaymentMethodId": "missing",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDeleteCustomer(t *testing.T) {
	env := newTestServer(t, nil)
	c := customer.New("Jane Doe", "jane@example.com")
	env.store.customers[c.EntityID] = c

	rec := env.do(t, "DELETE", "/api/v1/customers/"+c.EntityID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, env.store.customers)

	rec = env.do(t, "DELETE", "/api/v1/customers/"+c.EntityID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListCustomers(t *testing.T) {
	env := newTestServer(t, nil)
	c := customer.New("Jane Doe", "jane@example.com")
	env.store.customers[c.EntityID] = c

	rec := env.do(t, "GET", "/api/v1/customers", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Customers []string `json:"customers"`
		Total     int64    `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Total)
	assert.Equal(t, []string{c.EntityID}, resp.Customers)
}

func TestSyncCustomer(t *testing.T) {
	env := newTestServer(t, nil)
	c := customer.New("Jane Doe", "jane@example.com")
	env.store.customers[c.EntityID] = c

	rec := env.do(t, "POST", "/api/v1/customers/"+c.EntityID+"/sync", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	synced := decodeCustomer(t, rec)
	assert.NotEmpty(t, synced.Processor.ID)
	assert.Equal(t, customer.StateSaved, synced.Processor.State)
}

func TestSyncCustomerGatewayFailure(t *testing.T) {
	env := newTestServer(t, &failingGateway{err: errors.New("gateway down")})
	c := customer.New("Jane Doe", "jane@example.com")
	env.store.customers[c.EntityID] = c

	rec := env.do(t, "POST", "/api/v1/customers/"+c.EntityID+"/sync", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestLoadCustomer(t *testing.T) {
	env := newTestServer(t, nil)
	c := customer.New("Jane Doe", "jane@example.com")
	env.store.customers[c.EntityID] = c

	rec := env.do(t, "POST", "/api/v1/customers/"+c.EntityID+"/load", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// A customer the gateway does not know stays local-only.
	loaded := decodeCustomer(t, rec)
	assert.Empty(t, loaded.Processor.ID)
}

func TestAddSubscription(t *testing.T) {
	env := newTestServer(t, nil)
	c := customer.New("Jane Doe", "jane@example.com")
	c.PaymentMethods = []customer.PaymentMethod{
		&customer.CreditCard{PaymentMethodBase: customer.PaymentMethodBase{EntityID: "pm-1"}},
	}
	c.DefaultPaymentMethodID = "pm-1"
	env.store.customers[c.EntityID] = c

	rec := env.do(t, "POST", "/api/v1/customers/"+c.EntityID+"/subscriptions", map[string]string{
		"planId": "pro",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	synced := decodeCustomer(t, rec)
	require.Len(t, synced.Subscriptions, 1)
	sub := synced.Subscriptions[0]
	assert.Equal(t, "pro", sub.Plan.ID)
	assert.Equal(t, "pm-1", sub.PaymentMethodID)
	assert.Equal(t, customer.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, customer.StateSaved, sub.Processor.State)
}

func TestAddSubscriptionUnknownPlan(t *testing.T) {
	env := newTestServer(t, nil)
	c := customer.New("Jane Doe", "jane@example.com")
	env.store.customers[c.EntityID] = c

	rec := env.do(t, "POST", "/api/v1/customers/"+c.EntityID+"/subscriptions", map[string]string{
		"planId": "enterprise",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddSubscriptionUnknownPaymentMethod(t *testing.T) {
	env := newTestServer(t, nil)
	c := customer.New("Jane Doe", "jane@example.com")
	env.store.customers[c.EntityID] = c

	rec := env.do(t, "POST", "/api/v1/customers/"+c.EntityID+"/subscriptions", map[string]string{
		"planId":          "pro",
		"paymentMethodId": "missing",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAddSubscriptionWithCoupon(t *testing.T) {
	env := newTestServer(t, nil)
	env.coupons.coupons["spring"] = &billing.Coupon{
		ID:           "spring",
		Name:         "Spring Sale",
		AmountOff:    decimal.NewFromInt(5),
		UsedCountMax: 100,
	}
	c := customer.New("Jane Doe", "jane@example.com")
	env.store.customers[c.EntityID] = c

	rec := env.do(t, "POST", "/api/v1/customers/"+c.EntityID+"/subscriptions", map[string]string{
		"planId":   "pro",
		"couponId": "spring",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	synced := decodeCustomer(t, rec)
	require.Len(t, synced.Subscriptions, 1)
	require.Len(t, synced.Subscriptions[0].Discounts, 1)

	// The confirmed redemption is counted against the campaign budget.
	assert.Equal(t, 1, env.coupons.coupons["spring"].UsedCount)
}

func TestAddSubscriptionUnknownCoupon(t *testing.T) {
	env := newTestServer(t, nil)
	c := customer.New("Jane Doe", "jane@example.com")
	env.store.customers[c.EntityID] = c

	rec := env.do(t, "POST", "/api/v1/customers/"+c.EntityID+"/subscriptions", map[string]string{
		"planId":   "pro",
		"couponId": "missing",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelSubscription(t *testing.T) {
	env := newTestServer(t, nil)
	c := customer.New("Jane Doe", "jane@example.com")
	c.Subscriptions = []*customer.Subscription{
		{SubscriptionData: customer.SubscriptionData{
			EntityID: "sub-1",
			Status:   customer.SubscriptionStatusActive,
		}},
	}
	env.store.customers[c.EntityID] = c

	rec := env.do(t, "POST", "/api/v1/customers/"+c.EntityID+"/subscriptions/sub-1/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	canceled := decodeCustomer(t, rec)
	assert.Equal(t, customer.SubscriptionStatusCanceled, canceled.SubscriptionByID("sub-1").Status)
}

func TestCancelSubscriptionUnknown(t *testing.T) {
	env := newTestServer(t, nil)
	c := customer.New("Jane Doe", "jane@example.com")
	env.store.customers[c.EntityID] = c

	rec := env.do(t, "POST", "/api/v1/customers/"+c.EntityID+"/subscriptions/missing/cancel", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRefundTransaction(t *testing.T) {
	env := newTestServer(t, nil)
	c := customer.New("Jane Doe", "jane@example.com")
	c.Transactions = []customer.Transaction{
		&customer.CreditCardTransaction{TransactionBase: customer.TransactionBase{
			EntityID: "tx-1",
			Amount:   decimal.NewFromInt(20),
		}},
	}
	env.store.customers[c.EntityID] = c

	rec := env.do(t, "POST", "/api/v1/customers/"+c.EntityID+"/transactions/tx-1/refund", map[string]string{
		"amount": "5",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	refunded := decodeCustomer(t, rec)
	tx := refunded.TransactionByID("tx-1")
	assert.True(t, tx.Base().RefundedAmount.Equal(decimal.NewFromInt(5)))
}

func TestRefundTransactionNegativeAmount(t *testing.T) {
	env := newTestServer(t, nil)
	c := customer.New("Jane Doe", "jane@example.com")
	env.store.customers[c.EntityID] = c

	rec := env.do(t, "POST", "/api/v1/customers/"+c.EntityID+"/transactions/tx-1/refund", map[string]string{
		"amount": "-5",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPlans(t *testing.T) {
	env := newTestServer(t, nil)

	rec := env.do(t, "GET", "/api/v1/plans", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var plans []customer.Plan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plans))
	require.Len(t, plans, 2)
	assert.Equal(t, "basic", plans[0].ID)
	assert.Equal(t, "pro", plans[1].ID)
}

func TestCouponLifecycle(t *testing.T) {
	env := newTestServer(t, nil)

	rec := env.do(t, "POST", "/api/v1/coupons", map[string]interface{}{
		"id":           "spring",
		"name":         "Spring Sale",
		"amountOff":    "5",
		"usedCountMax": 100,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, "GET", "/api/v1/coupons/spring", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, "GET", "/api/v1/coupons", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, "DELETE", "/api/v1/coupons/spring", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, "GET", "/api/v1/coupons/spring", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateCouponValidation(t *testing.T) {
	env := newTestServer(t, nil)

	rec := env.do(t, "POST", "/api/v1/coupons", map[string]interface{}{
		"name": "No ID",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, "POST", "/api/v1/coupons", map[string]interface{}{
		"id":   "zero-budget",
		"name": "Zero",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContentTypeEnforced(t *testing.T) {
	env := newTestServer(t, nil)

	req := httptest.NewRequest("POST", "/api/v1/customers", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
