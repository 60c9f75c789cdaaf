package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/invoice-wemaad/auth"
	"github.com/diewo77/invoice-wemaad/internal/config"
	"github.com/diewo77/invoice-wemaad/internal/db"
	"github.com/diewo77/invoice-wemaad/internal/mailer"
	"github.com/diewo77/invoice-wemaad/internal/models"
	"github.com/diewo77/invoice-wemaad/internal/pdf"
)

type inbox struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (i *inbox) Send(_ context.Context, msg mailer.Message) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.sent = append(i.sent, msg)
	return nil
}

func (i *inbox) last() mailer.Message {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.sent[len(i.sent)-1]
}

type testApp struct {
	*App
	conn  *gorm.DB
	inbox *inbox
	mail  *mailer.Dispatcher
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	auth.SetSecret("app-test-secret")
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(conn))

	cfg := config.Load()
	cfg.App.BaseURL = "https://app.test"
	cfg.Mail.ContactTo = "hello@wemaad.com"

	log := zap.NewNop()
	box := &inbox{}
	mail := mailer.New(box, log)
	app := NewApp(Deps{DB: conn, Config: cfg, Log: log, Mail: mail, Renderer: pdf.NewRenderer(nil, log)})
	return &testApp{App: app, conn: conn, inbox: box, mail: mail}
}

func (a *testApp) do(t *testing.T, method, target string, cookie *http.Cookie, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	a.ServeHTTP(w, req)
	return w
}

var linkPattern = regexp.MustCompile(`/auth/verify\?token=([A-Za-z0-9._%-]+)`)

func (a *testApp) signIn(t *testing.T, email string) *http.Cookie {
	t.Helper()
	w := a.do(t, http.MethodPost, "/login", nil, map[string]string{"email": email})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	m := linkPattern.FindStringSubmatch(a.inbox.last().HTML)
	require.Len(t, m, 2)
	token, err := url.QueryUnescape(m[1])
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/verify?token="+url.QueryEscape(token), nil)
	w = httptest.NewRecorder()
	a.ServeHTTP(w, req)
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	for _, c := range w.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func TestHealth(t *testing.T) {
	a := newTestApp(t)
	for _, path := range []string{"/health", "/healthz"} {
		w := a.do(t, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	}
}

func TestUnknownRoute(t *testing.T) {
	a := newTestApp(t)
	w := a.do(t, http.MethodGet, "/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProtectedRouteWithoutSession(t *testing.T) {
	a := newTestApp(t)
	w := a.do(t, http.MethodPost, "/invoices", nil, map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"status":"error","error":{"":["User not found"]}}`, w.Body.String())
}

func TestInvoiceLifecycle(t *testing.T) {
	a := newTestApp(t)
	session := a.signIn(t, "owner@wemaad.test")

	w := a.do(t, http.MethodPost, "/onboarding", session, map[string]any{
		"firstName": "Jane", "lastName": "Doe", "address": "1 Main St",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(t, http.MethodPost, "/clients", session, map[string]any{
		"name": "Nile Traders",
		"addresses": []map[string]any{
			{"type": "BILLING", "street": "1 Nile St", "city": "Cairo", "country": "Egypt", "zipCode": "11511", "isDefault": true},
		},
		"contactPersons": []map[string]any{
			{"firstName": "Amira", "lastName": "Saleh", "email": "amira@nile.test", "isPrimary": true},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var client models.Client
	require.NoError(t, a.conn.First(&client).Error)

	w = a.do(t, http.MethodPost, "/invoices", session, map[string]any{
		"invoiceName":            "Website",
		"currency":               "EGP",
		"date":                   "2024-01-01",
		"dueDate":                15,
		"clientId":               client.ID,
		"fromName":               "Jane Doe",
		"fromEmail":              "jane@wemaad.test",
		"fromAddress":            "1 Main St",
		"invoiceItemDescription": "Design",
		"invoiceItemQuantity":    2,
		"invoiceItemRate":        500,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	a.mail.Wait()

	notice := a.inbox.last()
	assert.Equal(t, "amira@nile.test", notice.To)
	assert.Equal(t, "New Invoice - InvoiceWeMaAd", notice.Subject)
	assert.Contains(t, notice.HTML, "EGP 1,000.00")

	var inv models.Invoice
	require.NoError(t, a.conn.First(&inv).Error)
	id := strconv.Itoa(int(inv.ID))

	w = a.do(t, http.MethodPost, "/invoices/"+id+"/paid", session, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(t, http.MethodGet, "/dashboard", session, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"paid_total":1000`)

	w = a.do(t, http.MethodGet, "/api/invoice/"+inv.PublicID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))

	other := a.signIn(t, "intruder@wemaad.test")
	w = a.do(t, http.MethodGet, "/invoices/"+id, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = a.do(t, http.MethodGet, "/invoices/"+id+"/pdf", other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLanguageQuerySetsCookie(t *testing.T) {
	a := newTestApp(t)
	w := a.do(t, http.MethodGet, "/?lang=fr", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"lang":"fr"`)

	var found bool
	for _, c := range w.Result().Cookies() {
		if c.Name == "lang" && strings.EqualFold(c.Value, "fr") {
			found = true
		}
	}
	assert.True(t, found)
}
