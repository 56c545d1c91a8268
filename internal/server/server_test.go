package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentbook-dev/rentbook/internal/auditlog"
	"github.com/rentbook-dev/rentbook/internal/identity"
	"github.com/rentbook-dev/rentbook/internal/ledger"
	"github.com/rentbook-dev/rentbook/internal/model"
	"github.com/rentbook-dev/rentbook/internal/store"
)

var secret = []byte("test-secret")

var now = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

type harness struct {
	t       *testing.T
	handler http.Handler
	issuer  *identity.Issuer
}

func newHarness(t *testing.T, mutate ...func(*Options)) *harness {
	t.Helper()
	logger, _ := test.NewNullLogger()
	opts := Options{
		Backend:    store.NewMemory(),
		Resolver:   identity.NewJWTResolver(secret),
		Log:        logger,
		Classifier: ledger.Classifier{GraceDay: 10, Location: time.UTC},
		Now:        func() time.Time { return now },
	}
	for _, m := range mutate {
		m(&opts)
	}
	return &harness{
		t:       t,
		handler: New(opts).Handler(),
		issuer:  identity.NewIssuer(secret, time.Hour),
	}
}

func (h *harness) token(user, account string, role identity.Role) string {
	h.t.Helper()
	tok, err := h.issuer.Issue(user, account, role)
	require.NoError(h.t, err)
	return tok
}

func (h *harness) do(method, path, token string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(h.t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

// seed creates an owner at 10%, a tenant paying 50000, one October receipt
// and one 5000 expense.
func seed(t *testing.T, h *harness, tok string) (model.Owner, model.Tenant, model.Receipt) {
	t.Helper()
	rec := h.do(http.MethodPost, "/v1/owners", tok, map[string]any{
		"firstName": "Moussa", "lastName": "Ndiaye", "address": "12 rue Carnot, Dakar", "commissionRate": "10",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	owner := decodeBody[model.Owner](t, rec)

	rec = h.do(http.MethodPost, "/v1/tenants", tok, map[string]any{
		"ownerId": owner.ID, "firstName": "Awa", "lastName": "Diop", "unitName": "Appartement A1", "rentAmount": "50000",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tenant := decodeBody[model.Tenant](t, rec)

	rec = h.do(http.MethodPost, "/v1/receipts", tok, map[string]any{
		"tenantId": tenant.ID, "amount": "50000", "paymentDate": "2026-10-03T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	receipt := decodeBody[model.Receipt](t, rec)

	rec = h.do(http.MethodPost, "/v1/expenses", tok, map[string]any{
		"ownerId": owner.ID, "description": "Plomberie", "amount": "5000", "date": "2026-10-05T00:00:00Z", "category": "repair",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return owner, tenant, receipt
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthentication(t *testing.T) {
	h := newHarness(t)
	other, err := identity.NewIssuer([]byte("other"), time.Hour).Issue("u", "acct-1", identity.RoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		code  string
	}{
		{"missing", "", "UNAUTHENTICATED"},
		{"garbage", "not-a-jwt", "INVALID_TOKEN"},
		{"wrong secret", other, "INVALID_TOKEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.do(http.MethodGet, "/v1/owners", tt.token, nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.code, decodeBody[errorBody](t, rec).Code)
		})
	}
}

func TestRequireRole_NeverAllowsWithoutResolvedSession(t *testing.T) {
	called := false
	h := requireRole(identity.RoleClient)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called)

	req = req.WithContext(identity.WithSession(context.Background(), identity.Session{State: identity.StateResolving, Role: identity.RoleAdmin}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called)

	// A gate still resolving when the request ends is refused.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req = req.WithContext(identity.WithGate(ctx, identity.NewGate()))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called)
}

func TestRequireRole_WaitsForGate(t *testing.T) {
	var got identity.Session
	h := requireRole(identity.RoleClient)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = identity.FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	gate := identity.NewGate()
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(identity.WithGate(context.Background(), gate))
	go gate.Set(identity.Session{State: identity.StateResolved, UserID: "u-1", AccountID: "acct-1", Role: identity.RoleClient})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "acct-1", got.AccountID)
}

func TestRentalFlowAndSettlement(t *testing.T) {
	h := newHarness(t)
	tok := h.token("user-1", "acct-1", identity.RoleClient)
	owner, _, receipt := seed(t, h, tok)
	assert.Equal(t, "Q-2026-10-001", receipt.ReceiptNumber)
	assert.Equal(t, "Awa Diop", receipt.TenantName)

	rec := h.do(http.MethodGet, "/v1/ledger/settlement?owner="+owner.ID, tok, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	s := decodeBody[ledger.Settlement](t, rec)
	assert.True(t, s.Gross.Equal(dec("50000")), s.Gross.String())
	assert.True(t, s.Expenses.Equal(dec("5000")))
	assert.True(t, s.Commission.Equal(dec("5000")))
	assert.True(t, s.Net.Equal(dec("40000")))

	rec = h.do(http.MethodGet, "/v1/ledger/settlements?period=all", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decodeBody[[]ledger.Settlement](t, rec)
	require.Len(t, all, 1)
	assert.Equal(t, "Moussa Ndiaye", all[0].OwnerName)

	rec = h.do(http.MethodGet, "/v1/ledger/status", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decodeBody[statusResponse](t, rec)
	assert.Equal(t, 1, status.Counts.Paid)
	assert.Equal(t, 0, status.Counts.Late)
	assert.NotNil(t, status.Late)
}

func TestLedger_ArrearsAndPeriod(t *testing.T) {
	h := newHarness(t)
	tok := h.token("user-1", "acct-1", identity.RoleClient)
	owner, tenant, _ := seed(t, h, tok)

	rec := h.do(http.MethodPost, "/v1/tenants", tok, map[string]any{
		"ownerId": owner.ID, "lastName": "Fall", "rentAmount": "75000",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = h.do(http.MethodPost, "/v1/arrears", tok, map[string]any{
		"tenantId": tenant.ID, "amount": "15000", "month": "2026-09",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Impayé manuel", decodeBody[model.Arrear](t, rec).Description)

	rec = h.do(http.MethodGet, "/v1/ledger/arrears", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	v := decodeBody[ledger.ArrearsView](t, rec)
	require.Len(t, v.Late, 1, "day 15 is past the grace day")
	assert.Equal(t, "Fall", v.Late[0].TenantName)
	require.Len(t, v.Manual, 1)
	assert.True(t, v.ManualTotal.Equal(dec("15000")))

	rec = h.do(http.MethodGet, "/v1/ledger/settlement?period=year", tok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(http.MethodGet, "/v1/ledger/settlement?owner=ghost", tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	h := newHarness(t)
	tok := h.token("user-1", "acct-1", identity.RoleClient)
	owner, tenant, _ := seed(t, h, tok)

	rec := h.do(http.MethodPost, "/v1/tenants", tok, map[string]any{"ownerId": owner.ID, "rentAmount": "-1"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody[errorBody](t, rec)
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	var fields []string
	for _, f := range body.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"lastName", "rentAmount"}, fields)

	rec = h.do(http.MethodDelete, "/v1/owners/"+owner.ID, tok, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "owner with tenants cannot be deleted")

	rec = h.do(http.MethodPost, "/v1/tenants/ghost/terminate", tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(http.MethodPost, "/v1/owners", tok, "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(http.MethodPost, "/v1/tenants/"+tenant.ID+"/terminate", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.TenantTerminated, decodeBody[model.Tenant](t, rec).Status)

	rec = h.do(http.MethodPost, "/v1/tenants/"+tenant.ID+"/terminate", tok, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "termination is one-way")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{model.ValidationError{Field: "amount", Message: "bad"}, http.StatusUnprocessableEntity},
		{fmt.Errorf("x: %w", store.ErrPermission), http.StatusForbidden},
		{fmt.Errorf("x: %w", store.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("x: %w", store.ErrUnavailable), http.StatusServiceUnavailable},
		{context.Canceled, http.StatusServiceUnavailable},
		{store.ErrInvalid, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		got, _ := statusFor(tt.err)
		assert.Equal(t, tt.want, got, "%v", tt.err)
	}
}

func TestUpdateTenant_KeepsReceiptSnapshot(t *testing.T) {
	h := newHarness(t)
	tok := h.token("user-1", "acct-1", identity.RoleClient)
	_, tenant, _ := seed(t, h, tok)

	rec := h.do(http.MethodPatch, "/v1/tenants/"+tenant.ID, tok, map[string]any{"lastName": "Sow"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Sow", decodeBody[model.Tenant](t, rec).LastName)

	rec = h.do(http.MethodGet, "/v1/receipts", tok, nil)
	receipts := decodeBody[[]model.Receipt](t, rec)
	require.Len(t, receipts, 1)
	assert.Equal(t, "Awa Diop", receipts[0].TenantName)
}

func TestAccountIsolation(t *testing.T) {
	h := newHarness(t)
	seed(t, h, h.token("user-1", "acct-1", identity.RoleClient))

	rec := h.do(http.MethodGet, "/v1/owners", h.token("user-2", "acct-2", identity.RoleClient), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestAdminAgencies(t *testing.T) {
	h := newHarness(t)
	client := h.token("user-1", "acct-1", identity.RoleClient)

	rec := h.do(http.MethodGet, "/v1/agency", client, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(http.MethodPut, "/v1/agency", client, map[string]any{"name": "Immo Dakar", "commissionRate": "8"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(http.MethodGet, "/v1/admin/agencies", client, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(http.MethodGet, "/v1/admin/agencies", h.token("root", "acct-admin", identity.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[[]accountAgency](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, "acct-1", got[0].AccountID)
	require.NotNil(t, got[0].Agency)
	assert.Equal(t, "Immo Dakar", got[0].Agency.Name)
}

func TestFleetRoutes(t *testing.T) {
	h := newHarness(t)
	tok := h.token("user-1", "acct-1", identity.RoleClient)

	rec := h.do(http.MethodPut, "/v1/agency", tok, map[string]any{"name": "Auto Dakar"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(http.MethodPost, "/v1/vehicles", tok, map[string]any{
		"brand": "Toyota", "model": "Corolla", "registration": "dk-1234-ab", "year": 2020, "dailyRate": "25000", "salePrice": "9000000",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	vehicle := decodeBody[model.Vehicle](t, rec)
	assert.Equal(t, "DK-1234-AB", vehicle.Registration)

	rec = h.do(http.MethodPost, "/v1/sale-contracts", tok, map[string]any{
		"vehicleId": vehicle.ID, "buyerName": "Mame Diarra", "buyerPhone": "77 000 00 00", "salePrice": "9000000", "deposit": "2000000",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sale := decodeBody[model.SaleContract](t, rec)
	assert.Equal(t, "Auto Dakar", sale.SellerName, "the agency sells by default")
	assert.True(t, sale.Balance.Equal(dec("7000000")))

	rec = h.do(http.MethodGet, "/v1/documents/sale-contracts/"+sale.ID, tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))

	rec = h.do(http.MethodDelete, "/v1/sale-contracts/"+sale.ID, tok, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDocuments(t *testing.T) {
	h := newHarness(t)
	tok := h.token("user-1", "acct-1", identity.RoleClient)
	owner, tenant, receipt := seed(t, h, tok)

	tests := []struct {
		path string
		file string
	}{
		{"/v1/documents/receipts/" + receipt.ID, "Quittance_Diop_Awa.pdf"},
		{"/v1/documents/leases/" + tenant.ID, "Bail_Diop_Awa.pdf"},
		{"/v1/documents/deposits/" + tenant.ID, "Caution_Diop_Awa.pdf"},
		{"/v1/documents/settlement?owner=" + owner.ID, "Bilan_Ndiaye_Moussa.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			rec := h.do(http.MethodGet, tt.path, tok, nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Header().Get("Content-Disposition"), tt.file)
			assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))
		})
	}

	rec := h.do(http.MethodGet, "/v1/documents/receipts/ghost", tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuditLog(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(t, func(o *Options) { o.AuditDir = dir })
	tok := h.token("user-1", "acct-1", identity.RoleClient)

	rec := h.do(http.MethodPost, "/v1/owners", tok, map[string]any{"lastName": "Ndiaye"})
	require.Equal(t, http.StatusCreated, rec.Code)

	entries, err := auditlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "user-1", entries[0].Actor)
	assert.Equal(t, "acct-1", entries[0].Account)
	assert.Equal(t, "owners", entries[0].Collection)
}

func TestCORS(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.AllowedOrigins = []string{"https://app.example.sn"} })

	req := httptest.NewRequest(http.MethodOptions, "/v1/owners", nil)
	req.Header.Set("Origin", "https://app.example.sn")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.sn", rec.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
