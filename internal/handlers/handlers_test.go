package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/invoice-wemaad/auth"
	"github.com/diewo77/invoice-wemaad/httpx"
	"github.com/diewo77/invoice-wemaad/internal/mailer"
	"github.com/diewo77/invoice-wemaad/internal/models"
	"github.com/diewo77/invoice-wemaad/internal/pdf"
	"github.com/diewo77/invoice-wemaad/internal/services"
)

const testBaseURL = "https://app.test"

type recordingTransport struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (r *recordingTransport) Send(_ context.Context, msg mailer.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recordingTransport) messages() []mailer.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mailer.Message(nil), r.sent...)
}

type harness struct {
	db        *gorm.DB
	transport *recordingTransport
	mail      *mailer.Dispatcher
	logs      *observer.ObservedLogs

	invoices  *InvoiceHandler
	clients   *ClientHandler
	profiles  *ProfileHandler
	auth      *AuthHandler
	contact   *ContactHandler
	documents *DocumentHandler
	dashboard *DashboardHandler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open db")
	require.NoError(t, db.AutoMigrate(models.All()...), "migrate")

	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)
	tr := &recordingTransport{}
	mail := mailer.New(tr, log)

	invoiceSvc := services.NewInvoiceService(db)
	profileSvc := services.NewProfileService(db)
	return &harness{
		db:        db,
		transport: tr,
		mail:      mail,
		logs:      logs,
		invoices:  NewInvoiceHandler(invoiceSvc, mail, log, testBaseURL),
		clients:   NewClientHandler(services.NewClientService(db), log),
		profiles:  NewProfileHandler(profileSvc, log),
		auth:      NewAuthHandler(services.NewAccountService(db), mail, log, testBaseURL),
		contact:   NewContactHandler(mail, log, "hello@wemaad.com"),
		documents: NewDocumentHandler(invoiceSvc, pdf.NewRenderer(nil, log), log),
		dashboard: NewDashboardHandler(invoiceSvc, profileSvc, log),
	}
}

func (h *harness) user(t *testing.T, email string) models.User {
	t.Helper()
	u := models.User{Email: email, FirstName: "Test", LastName: "User", Onboarded: true}
	require.NoError(t, h.db.Create(&u).Error)
	return u
}

func (h *harness) client(t *testing.T, userID uint, withPrimary bool) models.Client {
	t.Helper()
	c := models.Client{
		UserID: userID,
		Name:   "Nile Traders",
		Addresses: []models.Address{
			{Type: models.AddressBilling, Street: "1 Nile St", City: "Cairo", Country: "Egypt", ZipCode: "11511", IsDefault: true},
		},
		ContactPersons: []models.ContactPerson{
			{FirstName: "Amira", LastName: "Saleh", Email: "amira@nile.test", IsPrimary: withPrimary},
		},
	}
	require.NoError(t, h.db.Create(&c).Error)
	return c
}

// jsonRequest builds an authenticated (userID > 0) JSON request.
func jsonRequest(method, target string, userID uint, body any) *http.Request {
	var payload string
	if body != nil {
		b, _ := json.Marshal(body)
		payload = string(b)
	}
	req := httptest.NewRequest(method, target, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if userID > 0 {
		req = req.WithContext(auth.WithUserID(req.Context(), userID))
	}
	return req
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) httpx.ActionResult {
	t.Helper()
	var res httpx.ActionResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res), w.Body.String())
	return res
}

var errTransport = errors.New("smtp unavailable")
