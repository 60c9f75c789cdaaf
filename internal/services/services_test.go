package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/invoice-wemaad/auth"
	"github.com/diewo77/invoice-wemaad/internal/models"
	"github.com/diewo77/invoice-wemaad/validation"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open db")
	require.NoError(t, db.AutoMigrate(models.All()...), "migrate")
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	u := models.User{Email: email, FirstName: "Test", LastName: "User"}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func sampleClient() validation.ClientInput {
	return validation.ClientInput{
		Name:  "Nile Traders",
		Email: "billing@nile.test",
		Tags:  []string{"vip", "egypt"},
		Addresses: []validation.AddressInput{
			{Type: "BILLING", Street: "1 Nile St", City: "Cairo", Country: "Egypt", ZipCode: "11511", IsDefault: true},
		},
		ContactPersons: []validation.ContactPersonInput{
			{FirstName: "Amira", LastName: "Saleh", Email: "amira@nile.test", IsPrimary: true},
		},
		CustomFields: []validation.CustomFieldInput{{Key: "po", Value: "PO-7"}},
	}
}

func sampleInvoice(clientID uint) validation.InvoiceInput {
	return validation.InvoiceInput{
		InvoiceName:            "Website",
		Currency:               "USD",
		Status:                 "PENDING",
		Date:                   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		DueDate:                30,
		ClientID:               clientID,
		FromName:               "Jane Doe",
		FromEmail:              "jane@wemaad.test",
		FromAddress:            "Somewhere 1",
		InvoiceItemDescription: "Design work",
		InvoiceItemQuantity:    3,
		InvoiceItemRate:        150.5,
	}
}

func TestInvoiceService_CreateComputesTotalAndNumbers(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "a@test")
	client, err := NewClientService(db).Create(ctx, u.ID, sampleClient())
	require.NoError(t, err)

	svc := NewInvoiceService(db)
	first, err := svc.Create(ctx, u.ID, sampleInvoice(client.ID))
	require.NoError(t, err)
	assert.Equal(t, 451.5, first.Total)
	assert.Equal(t, 1, first.InvoiceNumber)
	assert.NotEmpty(t, first.PublicID)
	assert.Nil(t, first.PaidAt)

	in := sampleInvoice(client.ID)
	in.InvoiceNumber = 41
	_, err = svc.Create(ctx, u.ID, in)
	require.NoError(t, err)

	next, err := svc.Create(ctx, u.ID, sampleInvoice(client.ID))
	require.NoError(t, err)
	assert.Equal(t, 42, next.InvoiceNumber)
}

func TestInvoiceService_CreateRejectsForeignClient(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice@test")
	bob := seedUser(t, db, "bob@test")
	bobClient, err := NewClientService(db).Create(ctx, bob.ID, sampleClient())
	require.NoError(t, err)

	_, err = NewInvoiceService(db).Create(ctx, alice.ID, sampleInvoice(bobClient.ID))
	require.ErrorIs(t, err, ErrClientNotFound)

	var count int64
	require.NoError(t, db.Model(&models.Invoice{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestInvoiceService_OwnerIsolation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice@test")
	bob := seedUser(t, db, "bob@test")
	clients := NewClientService(db)
	svc := NewInvoiceService(db)

	aliceClient, err := clients.Create(ctx, alice.ID, sampleClient())
	require.NoError(t, err)
	inv, err := svc.Create(ctx, alice.ID, sampleInvoice(aliceClient.ID))
	require.NoError(t, err)

	_, err = svc.Get(ctx, bob.ID, inv.ID)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
	_, err = svc.MarkPaid(ctx, bob.ID, inv.ID)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, bob.ID, inv.ID), ErrInvoiceNotFound)
	_, err = clients.Get(ctx, bob.ID, aliceClient.ID)
	assert.ErrorIs(t, err, ErrClientNotFound)
	assert.ErrorIs(t, clients.Delete(ctx, bob.ID, aliceClient.ID), ErrClientNotFound)

	list, err := svc.List(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	got, err := svc.Get(ctx, alice.ID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPending, got.Status)
	assert.True(t, errors.Is(ErrInvoiceNotFound, ErrNotFound))
}

func TestInvoiceService_MarkPaidIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "a@test")
	client, err := NewClientService(db).Create(ctx, u.ID, sampleClient())
	require.NoError(t, err)

	svc := NewInvoiceService(db)
	paidAt := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return paidAt }
	inv, err := svc.Create(ctx, u.ID, sampleInvoice(client.ID))
	require.NoError(t, err)

	first, err := svc.MarkPaid(ctx, u.ID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPaid, first.Status)
	require.NotNil(t, first.PaidAt)

	svc.now = func() time.Time { return paidAt.Add(48 * time.Hour) }
	second, err := svc.MarkPaid(ctx, u.ID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPaid, second.Status)
	require.NotNil(t, second.PaidAt)
	assert.True(t, second.PaidAt.Equal(paidAt), "paid_at moved to %v", second.PaidAt)
}

func TestInvoiceService_UpdateKeepsStatus(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "a@test")
	client, err := NewClientService(db).Create(ctx, u.ID, sampleClient())
	require.NoError(t, err)
	svc := NewInvoiceService(db)
	inv, err := svc.Create(ctx, u.ID, sampleInvoice(client.ID))
	require.NoError(t, err)
	_, err = svc.MarkPaid(ctx, u.ID, inv.ID)
	require.NoError(t, err)

	in := sampleInvoice(client.ID)
	in.Status = "PENDING"
	in.InvoiceItemQuantity = 2
	in.InvoiceItemRate = 10
	updated, err := svc.Update(ctx, u.ID, inv.ID, in)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPaid, updated.Status)
	assert.Equal(t, 20.0, updated.Total)
	assert.Equal(t, inv.InvoiceNumber, updated.InvoiceNumber)
}

func TestInvoiceService_RecipientAndDocument(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "a@test")
	clients := NewClientService(db)
	svc := NewInvoiceService(db)

	withContact, err := clients.Create(ctx, u.ID, sampleClient())
	require.NoError(t, err)
	inv, err := svc.Create(ctx, u.ID, sampleInvoice(withContact.ID))
	require.NoError(t, err)

	got, contact, err := svc.Recipient(ctx, u.ID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "amira@nile.test", contact.Email)
	require.NotNil(t, got.User)
	assert.Equal(t, "a@test", got.User.Email)

	doc, err := svc.ByPublicID(ctx, inv.PublicID)
	require.NoError(t, err)
	require.NotNil(t, doc.Client)
	require.NotNil(t, doc.Client.DefaultAddress())
	assert.Equal(t, "Cairo", doc.Client.DefaultAddress().City)

	noContactIn := sampleClient()
	noContactIn.ContactPersons[0].IsPrimary = false
	noContact, err := clients.Create(ctx, u.ID, noContactIn)
	require.NoError(t, err)
	inv2, err := svc.Create(ctx, u.ID, sampleInvoice(noContact.ID))
	require.NoError(t, err)
	_, _, err = svc.Recipient(ctx, u.ID, inv2.ID)
	assert.ErrorIs(t, err, ErrNoPrimaryContact)

	_, err = svc.ByPublicID(ctx, "missing")
	assert.ErrorIs(t, err, ErrInvoiceNotFound)

	other := seedUser(t, db, "b@test")
	_, err = svc.ForDocument(ctx, other.ID, inv.ID)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
	_, _, err = svc.Recipient(ctx, other.ID, inv.ID)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
	_, err = svc.ForDocument(ctx, 0, inv.ID)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestInvoiceService_Summary(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "a@test")
	client, err := NewClientService(db).Create(ctx, u.ID, sampleClient())
	require.NoError(t, err)
	svc := NewInvoiceService(db)
	a, err := svc.Create(ctx, u.ID, sampleInvoice(client.ID))
	require.NoError(t, err)
	_, err = svc.Create(ctx, u.ID, sampleInvoice(client.ID))
	require.NoError(t, err)
	_, err = svc.MarkPaid(ctx, u.ID, a.ID)
	require.NoError(t, err)

	sum, err := svc.Summary(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, Summary{Invoices: 2, Clients: 1, PaidTotal: 451.5, PendingTotal: 451.5}, sum)
}

func TestInvoiceService_RecentAndRevenueSeries(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "a@test")
	other := seedUser(t, db, "b@test")
	clients := NewClientService(db)
	svc := NewInvoiceService(db)
	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	mine, err := clients.Create(ctx, u.ID, sampleClient())
	require.NoError(t, err)
	theirs, err := clients.Create(ctx, other.ID, sampleClient())
	require.NoError(t, err)

	create := func(userID, clientID uint, paid bool, createdAt time.Time) *models.Invoice {
		t.Helper()
		in := sampleInvoice(clientID)
		if paid {
			in.Status = "PAID"
		}
		inv, err := svc.Create(ctx, userID, in)
		require.NoError(t, err)
		require.NoError(t, db.Model(inv).Update("created_at", createdAt).Error)
		return inv
	}
	for i := 0; i < 8; i++ {
		create(u.ID, mine.ID, false, now.Add(-time.Duration(60-i)*24*time.Hour))
	}
	create(u.ID, mine.ID, true, now.Add(-2*24*time.Hour))
	create(u.ID, mine.ID, true, now.Add(-2*24*time.Hour+time.Hour))
	create(u.ID, mine.ID, true, now.Add(-10*24*time.Hour))
	create(u.ID, mine.ID, true, now.Add(-45*24*time.Hour))
	create(other.ID, theirs.ID, true, now.Add(-24*time.Hour))

	recent, err := svc.Recent(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, recent, RecentLimit)
	for i, inv := range recent {
		assert.Equal(t, u.ID, inv.UserID)
		if i > 0 {
			assert.False(t, inv.CreatedAt.After(recent[i-1].CreatedAt))
		}
	}
	assert.Equal(t, now.Add(-2*24*time.Hour+time.Hour).Unix(), recent[0].CreatedAt.Unix())

	series, err := svc.RevenueSeries(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []RevenuePoint{
		{Date: "2024-03-21", Amount: 451.5},
		{Date: "2024-03-29", Amount: 903},
	}, series)

	none, err := svc.RevenueSeries(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestClientService_UpdateReplacesCollections(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "a@test")
	svc := NewClientService(db)
	created, err := svc.Create(ctx, u.ID, sampleClient())
	require.NoError(t, err)

	in := sampleClient()
	in.Name = "Nile Traders LLC"
	in.Tags = []string{"archived"}
	in.Addresses = []validation.AddressInput{
		{Type: "SHIPPING", Street: "9 Port Rd", City: "Alexandria", Country: "Egypt", ZipCode: "21500"},
		{Type: "BILLING", Street: "2 Tahrir Sq", City: "Cairo", Country: "Egypt", ZipCode: "11512", IsDefault: true},
	}
	in.ContactPersons = nil
	in.CustomFields = []validation.CustomFieldInput{{Key: "vat", Value: "EG-1"}}

	got, err := svc.Update(ctx, u.ID, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Nile Traders LLC", got.Name)
	assert.Equal(t, "archived", got.Tags)
	assert.Empty(t, got.ContactPersons)

	ignore := cmpopts.IgnoreFields(models.Address{}, "ID", "ClientID")
	want := []models.Address{
		{Type: models.AddressShipping, Street: "9 Port Rd", City: "Alexandria", Country: "Egypt", ZipCode: "21500"},
		{Type: models.AddressBilling, Street: "2 Tahrir Sq", City: "Cairo", Country: "Egypt", ZipCode: "11512", IsDefault: true},
	}
	if diff := cmp.Diff(want, got.Addresses, ignore); diff != "" {
		t.Errorf("addresses mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, got.CustomFields, 1)
	assert.Equal(t, "vat", got.CustomFields[0].Key)

	var stale int64
	require.NoError(t, db.Model(&models.ContactPerson{}).Where("client_id = ?", created.ID).Count(&stale).Error)
	assert.Zero(t, stale)
}

func TestClientService_UpdateRollsBackOnChildInsertFailure(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "a@test")
	svc := NewClientService(db)
	created, err := svc.Create(ctx, u.ID, sampleClient())
	require.NoError(t, err)

	errInsert := errors.New("contact insert failed")
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:fail_contacts", func(tx *gorm.DB) {
		if tx.Statement.Table == "contact_people" {
			_ = tx.AddError(errInsert)
		}
	}))

	in := sampleClient()
	in.Name = "Renamed"
	in.Addresses = []validation.AddressInput{
		{Type: "SHIPPING", Street: "9 Port Rd", City: "Alexandria", Country: "Egypt", ZipCode: "21500"},
	}
	in.ContactPersons = []validation.ContactPersonInput{
		{FirstName: "New", LastName: "Person", Email: "new@nile.test", IsPrimary: true},
	}
	_, err = svc.Update(ctx, u.ID, created.ID, in)
	require.ErrorIs(t, err, errInsert)

	got, err := svc.Get(ctx, u.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nile Traders", got.Name)
	require.Len(t, got.Addresses, 1)
	assert.Equal(t, "1 Nile St", got.Addresses[0].Street)
	require.Len(t, got.ContactPersons, 1)
	assert.Equal(t, "Amira", got.ContactPersons[0].FirstName)
	require.Len(t, got.CustomFields, 1)
	assert.Equal(t, "po", got.CustomFields[0].Key)
}

func TestClientService_DeleteDetachesInvoices(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "a@test")
	clients := NewClientService(db)
	invoices := NewInvoiceService(db)
	c, err := clients.Create(ctx, u.ID, sampleClient())
	require.NoError(t, err)
	inv, err := invoices.Create(ctx, u.ID, sampleInvoice(c.ID))
	require.NoError(t, err)

	require.NoError(t, clients.Delete(ctx, u.ID, c.ID))

	got, err := invoices.Get(ctx, u.ID, inv.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ClientID)
	assert.Nil(t, got.Client)

	var addresses int64
	require.NoError(t, db.Model(&models.Address{}).Count(&addresses).Error)
	assert.Zero(t, addresses)
}

func TestProfileService_OnboardAndUpdate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	u := models.User{Email: "new@test"}
	require.NoError(t, db.Create(&u).Error)
	svc := NewProfileService(db)

	got, err := svc.Onboard(ctx, u.ID, validation.Onboarding{FirstName: "Jane", LastName: "Doe", Address: "1 Main St", CompanyName: "ignored"})
	require.NoError(t, err)
	assert.True(t, got.Onboarded)
	assert.Equal(t, "Jane Doe", got.Name)
	assert.Empty(t, got.CompanyName)

	got, err = svc.Update(ctx, u.ID, validation.Onboarding{FirstName: "Jane", LastName: "Doe", Address: "1 Main St", CompanyName: "WeMaAd", BankIBAN: "EG00"})
	require.NoError(t, err)
	assert.Equal(t, "WeMaAd", got.CompanyName)
	assert.True(t, got.HasBankDetails())

	_, err = svc.Update(ctx, 999, validation.Onboarding{FirstName: "x"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAccountService_MagicLinkIsSingleUse(t *testing.T) {
	auth.SetSecret("test-secret")
	t.Cleanup(func() { auth.SetSecret("") })
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewAccountService(db)

	link, err := svc.IssueMagicLink(ctx, "  Jane@Example.com ")
	require.NoError(t, err)

	user, err := svc.ConsumeMagicLink(ctx, link.Token)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.NotZero(t, user.ID)

	_, err = svc.ConsumeMagicLink(ctx, link.Token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	again, err := svc.IssueMagicLink(ctx, "jane@example.com")
	require.NoError(t, err)
	same, err := svc.ConsumeMagicLink(ctx, again.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, same.ID)

	ok, err := svc.UserExists(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = svc.UserExists(ctx, user.ID+100)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAccountService_RejectsExpiredLink(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewAccountService(db)
	svc.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }

	link, err := svc.IssueMagicLink(ctx, "old@example.com")
	require.NoError(t, err)
	svc.now = time.Now
	_, err = svc.ConsumeMagicLink(ctx, link.Token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAccountService_StoresOnlyTokenHash(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewAccountService(db)

	link, err := svc.IssueMagicLink(ctx, "hash@example.com")
	require.NoError(t, err)

	var row models.VerificationToken
	require.NoError(t, db.Where("jti = ?", link.ID).First(&row).Error)
	assert.NotContains(t, link.Token, row.TokenHash)
	assert.NotEqual(t, tokenSignature(link.Token), row.TokenHash)

	other, err := svc.IssueMagicLink(ctx, "hash@example.com")
	require.NoError(t, err)
	var otherRow models.VerificationToken
	require.NoError(t, db.Where("jti = ?", other.ID).First(&otherRow).Error)
	require.NoError(t, db.Model(&row).Update("token_hash", otherRow.TokenHash).Error)

	_, err = svc.ConsumeMagicLink(ctx, link.Token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestNextStatus(t *testing.T) {
	ctx := context.Background()
	got, err := nextStatus(ctx, models.InvoiceStatusPending, triggerMarkPaid)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPaid, got)

	got, err = nextStatus(ctx, models.InvoiceStatusPaid, triggerMarkPaid)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPaid, got)
}
