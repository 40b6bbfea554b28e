package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sangkips/beautypos-api/internal/application/service"
	"github.com/sangkips/beautypos-api/internal/config"
	"github.com/sangkips/beautypos-api/internal/infrastructure/cache"
	"github.com/sangkips/beautypos-api/internal/infrastructure/database"
	"github.com/sangkips/beautypos-api/internal/infrastructure/database/dbtest"
	"github.com/sangkips/beautypos-api/internal/infrastructure/repository"
	"github.com/sangkips/beautypos-api/internal/presentation/http/handler"
	"github.com/sangkips/beautypos-api/internal/presentation/http/routes"
	"github.com/sangkips/beautypos-api/pkg/printer"
	"github.com/sangkips/beautypos-api/pkg/utils"
)

const (
	adminEmail    = "admin@shop.test"
	adminPassword = "admin-password"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

type invoiceBody struct {
	ID            string          `json:"id"`
	InvoiceNumber string          `json:"invoiceNumber"`
	Status        string          `json:"status"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
	Total         decimal.Decimal `json:"total"`
	Lines         []struct {
		Name     string          `json:"name"`
		Quantity int             `json:"quantity"`
		Duration *int            `json:"duration"`
		Total    decimal.Decimal `json:"total"`
	} `json:"lines"`
}

type testAPI struct {
	t      *testing.T
	router *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.New(t)
	require.NoError(t, database.Bootstrap(context.Background(), db, config.BootstrapConfig{
		AdminEmail:    adminEmail,
		AdminPassword: adminPassword,
	}))

	cfg := &config.Config{
		App:  config.AppConfig{Name: "beautypos-api", Env: "test"},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
	jwtManager := utils.NewJWTManager("test-secret", "beautypos-api", time.Hour)

	tx := repository.NewTransactor(db)
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	clientRepo := repository.NewClientRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)

	stats := service.NewStatsService(repository.NewStatsRepository(db), clientRepo, productRepo, cache.NewMemory(), time.Minute, 10)
	invoices := service.NewInvoiceService(tx, invoiceRepo, clientRepo, productRepo, serviceRepo, settingsRepo, movementRepo, stats)

	router := routes.Setup(&routes.Handlers{
		Auth:     handler.NewAuthHandler(service.NewAuthService(userRepo, jwtManager)),
		User:     handler.NewUserHandler(service.NewUserService(userRepo)),
		Category: handler.NewCategoryHandler(service.NewCategoryService(categoryRepo)),
		Product:  handler.NewProductHandler(service.NewProductService(tx, productRepo, categoryRepo, movementRepo, stats)),
		Service:  handler.NewServiceHandler(service.NewServiceCatalog(serviceRepo)),
		Client:   handler.NewClientHandler(service.NewClientService(clientRepo, invoiceRepo, stats)),
		Settings: handler.NewSettingsHandler(service.NewSettingsService(settingsRepo)),
		Invoice:  handler.NewInvoiceHandler(invoices, service.NewExportService(invoices)),
		Stats:    handler.NewStatsHandler(stats),
		Printer:  handler.NewPrinterHandler(service.NewPrinterService(printer.NewNullPrinter(), printer.Width58mm, invoiceRepo, settingsRepo)),
	}, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: repository.NewIdempotencyRepository(db),
		UserRepo:        userRepo,
	})

	return &testAPI{t: t, router: router}
}

func (a *testAPI) do(method, path, token string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// call performs the request, checks the status and decodes data into out.
func (a *testAPI) call(method, path, token string, body interface{}, wantStatus int, out interface{}) envelope {
	a.t.Helper()
	w := a.do(method, path, token, body)
	require.Equalf(a.t, wantStatus, w.Code, "%s %s: %s", method, path, w.Body.String())

	var env envelope
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env))
	if out != nil {
		require.NoError(a.t, json.Unmarshal(env.Data, out))
	}
	return env
}

func (a *testAPI) login(email, password string) string {
	a.t.Helper()
	var out struct {
		AccessToken string `json:"accessToken"`
		TokenType   string `json:"tokenType"`
	}
	a.call(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": password}, http.StatusOK, &out)
	require.Equal(a.t, "Bearer", out.TokenType)
	return out.AccessToken
}

type idBody struct {
	ID string `json:"id"`
}

// shop logs in the admin, creates a seller and a small catalog.
type shop struct {
	admin, seller string
	serum, spa    string
	client        string
}

func newShop(a *testAPI) shop {
	var s shop
	s.admin = a.login(adminEmail, adminPassword)

	a.call(http.MethodPost, "/api/v1/users", s.admin, gin.H{
		"email": "seller@shop.test", "password": "seller-password",
		"firstName": "Sam", "lastName": "Staff", "role": "SELLER",
	}, http.StatusCreated, nil)
	s.seller = a.login("seller@shop.test", "seller-password")

	var p idBody
	a.call(http.MethodPost, "/api/v1/products", s.admin, gin.H{
		"name": "Serum", "sellingPrice": "35.99", "purchasePrice": "12", "stock": 4, "alertThreshold": 2,
	}, http.StatusCreated, &p)
	s.serum = p.ID

	var svc idBody
	a.call(http.MethodPost, "/api/v1/services", s.admin, gin.H{
		"name": "Massage", "billingType": "PER_HOUR", "unitPrice": "60", "minDuration": 30,
	}, http.StatusCreated, &svc)
	s.spa = svc.ID

	var c idBody
	a.call(http.MethodPost, "/api/v1/clients", s.seller, gin.H{
		"firstName": "Marie", "lastName": "Dupont", "phone": "0600000000",
	}, http.StatusCreated, &c)
	s.client = c.ID
	return s
}

func TestHealth(t *testing.T) {
	a := newTestAPI(t)
	w := a.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "beautypos-api")
}

func TestLogin_InvalidCredentials(t *testing.T) {
	a := newTestAPI(t)
	env := a.call(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": adminEmail, "password": "wrong-password"}, http.StatusUnauthorized, nil)
	assert.False(t, env.Success)

	a.call(http.MethodGet, "/api/v1/auth/me", "", nil, http.StatusUnauthorized, nil)
}

func TestInvoiceFlow(t *testing.T) {
	a := newTestAPI(t)
	s := newShop(a)

	var inv invoiceBody
	a.call(http.MethodPost, "/api/v1/invoices", s.seller, gin.H{
		"clientId": s.client,
		"items": []gin.H{
			{"productId": s.serum, "quantity": 3},
			{"serviceId": s.spa, "duration": 90},
		},
	}, http.StatusCreated, &inv)

	assert.Equal(t, "INV-00001", inv.InvoiceNumber)
	assert.Equal(t, "DRAFT", inv.Status)
	require.Len(t, inv.Lines, 2)
	assert.True(t, decimal.RequireFromString("197.97").Equal(inv.Subtotal), inv.Subtotal.String())
	assert.True(t, decimal.RequireFromString("39.594").Equal(inv.TaxAmount), inv.TaxAmount.String())
	assert.True(t, decimal.RequireFromString("237.564").Equal(inv.Total), inv.Total.String())

	var validated invoiceBody
	a.call(http.MethodPost, "/api/v1/invoices/"+inv.ID+"/validate", s.seller, nil, http.StatusOK, &validated)
	assert.Equal(t, "VALIDATED", validated.Status)

	env := a.call(http.MethodPost, "/api/v1/invoices/"+inv.ID+"/validate", s.seller, nil, http.StatusConflict, nil)
	assert.Equal(t, "INVALID_STATE", env.Code)

	var product struct {
		Stock int `json:"stock"`
	}
	a.call(http.MethodGet, "/api/v1/products/"+s.serum, s.admin, nil, http.StatusOK, &product)
	assert.Equal(t, 1, product.Stock)

	var movements struct {
		Items []struct {
			Type     string `json:"type"`
			Quantity int    `json:"quantity"`
			Reason   string `json:"reason"`
		} `json:"items"`
	}
	a.call(http.MethodGet, "/api/v1/products/"+s.serum+"/movements", s.admin, nil, http.StatusOK, &movements)
	require.Len(t, movements.Items, 2)
	assert.Equal(t, "OUT", movements.Items[0].Type)
	assert.Equal(t, "INV-00001", movements.Items[0].Reason)

	var receipt struct {
		Preview string `json:"preview"`
	}
	a.call(http.MethodGet, "/api/v1/invoices/"+inv.ID+"/receipt", s.seller, nil, http.StatusOK, &receipt)
	assert.Contains(t, receipt.Preview, "INV-00001")
	assert.Contains(t, receipt.Preview, "TOTAL:")

	var dash struct {
		InvoiceCount int64           `json:"invoiceCount"`
		Revenue      decimal.Decimal `json:"revenue"`
	}
	a.call(http.MethodGet, "/api/v1/stats/dashboard?period=month", s.admin, nil, http.StatusOK, &dash)
	assert.EqualValues(t, 1, dash.InvoiceCount)
	assert.True(t, decimal.RequireFromString("237.564").Equal(dash.Revenue), dash.Revenue.String())
}

func TestInvoice_InsufficientStock(t *testing.T) {
	a := newTestAPI(t)
	s := newShop(a)

	var first, second invoiceBody
	a.call(http.MethodPost, "/api/v1/invoices", s.seller, gin.H{
		"clientId": s.client, "items": []gin.H{{"productId": s.serum, "quantity": 3}},
	}, http.StatusCreated, &first)
	a.call(http.MethodPost, "/api/v1/invoices", s.admin, gin.H{
		"clientId": s.client, "items": []gin.H{{"productId": s.serum, "quantity": 3}},
	}, http.StatusCreated, &second)
	assert.Equal(t, "INV-00002", second.InvoiceNumber)

	a.call(http.MethodPost, "/api/v1/invoices/"+first.ID+"/validate", s.seller, nil, http.StatusOK, nil)
	env := a.call(http.MethodPost, "/api/v1/invoices/"+second.ID+"/validate", s.admin, nil, http.StatusConflict, nil)
	assert.Equal(t, "INSUFFICIENT_STOCK", env.Code)

	var still invoiceBody
	a.call(http.MethodGet, "/api/v1/invoices/"+second.ID, s.admin, nil, http.StatusOK, &still)
	assert.Equal(t, "DRAFT", still.Status)
}

func TestInvoice_RequestValidation(t *testing.T) {
	a := newTestAPI(t)
	s := newShop(a)

	tests := []struct {
		name  string
		body  gin.H
		field string
	}{
		{"missing client", gin.H{"items": []gin.H{{"productId": s.serum, "quantity": 1}}}, "clientId"},
		{"no items", gin.H{"clientId": s.client, "items": []gin.H{}}, "items"},
		{"zero quantity", gin.H{"clientId": s.client, "items": []gin.H{{"productId": s.serum, "quantity": 0}}}, "items[0].quantity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := a.call(http.MethodPost, "/api/v1/invoices", s.seller, tt.body, http.StatusBadRequest, nil)
			assert.Equal(t, "VALIDATION_ERROR", env.Code)
			var fields []struct {
				Field string `json:"field"`
			}
			require.NoError(t, json.Unmarshal(env.Errors, &fields))
			require.NotEmpty(t, fields)
			assert.Equal(t, tt.field, fields[0].Field)
		})
	}

	env := a.call(http.MethodGet, "/api/v1/invoices?status=PAID", s.seller, nil, http.StatusBadRequest, nil)
	assert.Contains(t, string(env.Errors), `"field":"status"`)

	env = a.call(http.MethodPost, "/api/v1/invoices", s.seller, gin.H{
		"clientId": s.client, "items": []gin.H{{"serviceId": s.spa, "duration": 10}},
	}, http.StatusBadRequest, nil)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)

	a.call(http.MethodGet, "/api/v1/invoices/not-a-uuid", s.seller, nil, http.StatusBadRequest, nil)
	a.call(http.MethodGet, "/api/v1/invoices?startDate=yesterday", s.seller, nil, http.StatusBadRequest, nil)
}

func TestInvoice_CreateFromRawCamelCaseBody(t *testing.T) {
	a := newTestAPI(t)
	s := newShop(a)

	raw := json.RawMessage(`{"clientId":"` + s.client + `","items":[{"productId":"` + s.serum + `","quantity":3}],"taxRate":10,"notes":"gift wrap"}`)
	w := a.do(http.MethodPost, "/api/v1/invoices", s.seller, raw)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var env struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	for _, key := range []string{"invoiceNumber", "clientId", "taxRate", "taxAmount", "validatedAt"} {
		assert.Contains(t, env.Data, key)
	}
	assert.NotContains(t, env.Data, "tax_amount")
	assert.JSONEq(t, "10.797", string(env.Data["taxAmount"]))
	assert.JSONEq(t, "118.767", string(env.Data["total"]))
	assert.JSONEq(t, "null", string(env.Data["validatedAt"]))
}

func TestInvoice_Idempotent(t *testing.T) {
	a := newTestAPI(t)
	s := newShop(a)
	body := gin.H{"clientId": s.client, "items": []gin.H{{"productId": s.serum, "quantity": 1}}}

	first := a.do(http.MethodPost, "/api/v1/invoices", s.seller, body, "Idempotency-Key", "till-1-sale-7")
	require.Equal(t, http.StatusCreated, first.Code)
	replay := a.do(http.MethodPost, "/api/v1/invoices", s.seller, body, "Idempotency-Key", "till-1-sale-7")
	require.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get("X-Idempotency-Replayed"))

	var list struct {
		Items []invoiceBody `json:"items"`
	}
	a.call(http.MethodGet, "/api/v1/invoices", s.admin, nil, http.StatusOK, &list)
	assert.Len(t, list.Items, 1)
}

func TestRoleScoping(t *testing.T) {
	a := newTestAPI(t)
	s := newShop(a)

	var adminInvoice invoiceBody
	a.call(http.MethodPost, "/api/v1/invoices", s.admin, gin.H{
		"clientId": s.client, "items": []gin.H{{"productId": s.serum, "quantity": 1}},
	}, http.StatusCreated, &adminInvoice)

	env := a.call(http.MethodPost, "/api/v1/invoices/"+adminInvoice.ID+"/validate", s.seller, nil, http.StatusForbidden, nil)
	assert.Equal(t, "FORBIDDEN", env.Code)
	a.call(http.MethodGet, "/api/v1/invoices/"+adminInvoice.ID, s.seller, nil, http.StatusForbidden, nil)

	var list struct {
		Items []invoiceBody `json:"items"`
	}
	a.call(http.MethodGet, "/api/v1/invoices", s.seller, nil, http.StatusOK, &list)
	assert.Empty(t, list.Items)

	// admin-only surfaces
	a.call(http.MethodGet, "/api/v1/users", s.seller, nil, http.StatusForbidden, nil)
	a.call(http.MethodPost, "/api/v1/products", s.seller, gin.H{"name": "X", "sellingPrice": "1"}, http.StatusForbidden, nil)
	a.call(http.MethodPatch, "/api/v1/settings", s.seller, gin.H{"invoicePrefix": "S-"}, http.StatusForbidden, nil)

	// sellers do not see purchase prices
	w := a.do(http.MethodGet, "/api/v1/products/"+s.serum, s.seller, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "purchasePrice")

	w = a.do(http.MethodGet, "/api/v1/products/"+s.serum, s.admin, nil)
	assert.Contains(t, w.Body.String(), "purchasePrice")
}

func TestStaffAccess_RevokedWithoutNewToken(t *testing.T) {
	a := newTestAPI(t)
	s := newShop(a)

	staff := func(email string, role string) (id, token string) {
		var u idBody
		a.call(http.MethodPost, "/api/v1/users", s.admin, gin.H{
			"email": email, "password": "staff-password",
			"firstName": "Kim", "lastName": "Staff", "role": role,
		}, http.StatusCreated, &u)
		return u.ID, a.login(email, "staff-password")
	}

	disabledID, disabled := staff("disabled@shop.test", "SELLER")
	deletedID, deleted := staff("deleted@shop.test", "SELLER")
	demotedID, demoted := staff("deputy@shop.test", "ADMIN")

	a.call(http.MethodGet, "/api/v1/clients", disabled, nil, http.StatusOK, nil)
	a.call(http.MethodGet, "/api/v1/clients", deleted, nil, http.StatusOK, nil)
	a.call(http.MethodGet, "/api/v1/users", demoted, nil, http.StatusOK, nil)

	a.call(http.MethodPut, "/api/v1/users/"+disabledID, s.admin, gin.H{"isActive": false}, http.StatusOK, nil)
	a.call(http.MethodDelete, "/api/v1/users/"+deletedID, s.admin, nil, http.StatusOK, nil)
	a.call(http.MethodPut, "/api/v1/users/"+demotedID, s.admin, gin.H{"role": "SELLER"}, http.StatusOK, nil)

	env := a.call(http.MethodGet, "/api/v1/clients", disabled, nil, http.StatusUnauthorized, nil)
	assert.Equal(t, "Account is disabled or no longer exists", env.Message)
	a.call(http.MethodGet, "/api/v1/clients", deleted, nil, http.StatusUnauthorized, nil)

	a.call(http.MethodGet, "/api/v1/users", demoted, nil, http.StatusForbidden, nil)
	a.call(http.MethodGet, "/api/v1/clients", demoted, nil, http.StatusOK, nil)
}

func TestSettings_PrefixUsedForNextInvoice(t *testing.T) {
	a := newTestAPI(t)
	s := newShop(a)

	var settings struct {
		InvoicePrefix  string          `json:"invoicePrefix"`
		DefaultTaxRate decimal.Decimal `json:"defaultTaxRate"`
	}
	a.call(http.MethodPatch, "/api/v1/settings", s.admin, gin.H{"invoicePrefix": "BS-", "defaultTaxRate": "10"}, http.StatusOK, &settings)
	assert.Equal(t, "BS-", settings.InvoicePrefix)

	var inv invoiceBody
	a.call(http.MethodPost, "/api/v1/invoices", s.seller, gin.H{
		"clientId": s.client, "items": []gin.H{{"productId": s.serum, "quantity": 1}},
	}, http.StatusCreated, &inv)
	assert.Equal(t, "BS-00001", inv.InvoiceNumber)
	assert.True(t, decimal.RequireFromString("3.599").Equal(inv.TaxAmount), inv.TaxAmount.String())
}

func TestInvoice_Export(t *testing.T) {
	a := newTestAPI(t)
	s := newShop(a)

	a.call(http.MethodPost, "/api/v1/invoices", s.seller, gin.H{
		"clientId": s.client, "items": []gin.H{{"productId": s.serum, "quantity": 2}},
	}, http.StatusCreated, nil)

	w := a.do(http.MethodGet, "/api/v1/invoices/export?status=DRAFT", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Invoices")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "INV-00001", rows[1][0])
}
