package transfers

import (
	"context"
	"testing"
	"time"

	"propshare-backend/internal/domain"
	"propshare-backend/internal/pkg/apperr"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTransferTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{}, &domain.Property{}, &domain.Holding{},
		&domain.TransferRequest{}, &domain.TransferEvent{},
	))
	return &Service{DB: db}, db
}

func seedUser(t *testing.T, db *gorm.DB, role string) *domain.User {
	u := &domain.User{
		Fullname:     "Test User",
		Email:        uuid.New().String() + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedHolding(t *testing.T, db *gorm.DB, owner uuid.UUID) *domain.Holding {
	p := &domain.Property{
		Title:      "Dockside Lofts",
		Address:    "1 Harbour Way",
		City:       "Lisbon",
		Country:    "PT",
		TotalValue: decimal.NewFromInt(2_000_000),
		Status:     domain.PropertyListed,
	}
	require.NoError(t, db.Create(p).Error)
	h := &domain.Holding{
		UserID:       owner,
		PropertyID:   p.PropertyID,
		Amount:       decimal.NewFromInt(50_000),
		PurchaseDate: time.Now().AddDate(-1, 0, 0),
		Status:       domain.HoldingActive,
	}
	require.NoError(t, db.Create(h).Error)
	return h
}

func price(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestCreate_Succeeds(t *testing.T) {
	svc, db := setupTransferTest(t)
	seller := seedUser(t, db, "investor")
	buyer := seedUser(t, db, "investor")
	holding := seedHolding(t, db, seller.UserID)

	req, err := svc.Create(context.Background(), CreateInput{
		SellerID: seller.UserID, BuyerID: buyer.UserID,
		HoldingID: holding.HoldingID, SalePrice: price(50000),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TransferPending, req.Status)
	assert.Equal(t, domain.BuyerResponsePending, req.BuyerResponse)
	require.NotNil(t, req.ActiveHoldingID)
	assert.Equal(t, holding.HoldingID, *req.ActiveHoldingID)

	var events []domain.TransferEvent
	require.NoError(t, db.Where("request_id = ?", req.RequestID).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventCreated, events[0].EventType)
}

func TestCreate_RejectsNonPositivePrice(t *testing.T) {
	svc, db := setupTransferTest(t)
	seller := seedUser(t, db, "investor")
	buyer := seedUser(t, db, "investor")
	holding := seedHolding(t, db, seller.UserID)

	for _, p := range []decimal.Decimal{decimal.Zero, price(-100)} {
		_, err := svc.Create(context.Background(), CreateInput{
			SellerID: seller.UserID, BuyerID: buyer.UserID,
			HoldingID: holding.HoldingID, SalePrice: p,
		})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	}
}

func TestCreate_RejectsSelfBuyer(t *testing.T) {
	svc, db := setupTransferTest(t)
	seller := seedUser(t, db, "investor")
	holding := seedHolding(t, db, seller.UserID)

	_, err := svc.Create(context.Background(), CreateInput{
		SellerID: seller.UserID, BuyerID: seller.UserID,
		HoldingID: holding.HoldingID, SalePrice: price(50000),
	})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCreate_RejectsNonOwner(t *testing.T) {
	svc, db := setupTransferTest(t)
	seller := seedUser(t, db, "investor")
	buyer := seedUser(t, db, "investor")
	other := seedUser(t, db, "investor")
	holding := seedHolding(t, db, other.UserID)

	_, err := svc.Create(context.Background(), CreateInput{
		SellerID: seller.UserID, BuyerID: buyer.UserID,
		HoldingID: holding.HoldingID, SalePrice: price(50000),
	})
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
}

func TestCreate_SecondActiveRequestConflicts(t *testing.T) {
	svc, db := setupTransferTest(t)
	seller := seedUser(t, db, "investor")
	buyer := seedUser(t, db, "investor")
	buyer2 := seedUser(t, db, "investor")
	holding := seedHolding(t, db, seller.UserID)

	_, err := svc.Create(context.Background(), CreateInput{
		SellerID: seller.UserID, BuyerID: buyer.UserID,
		HoldingID: holding.HoldingID, SalePrice: price(50000),
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateInput{
		SellerID: seller.UserID, BuyerID: buyer2.UserID,
		HoldingID: holding.HoldingID, SalePrice: price(60000),
	})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestBuyerRespond_OnlyNamedBuyer(t *testing.T) {
	svc, db := setupTransferTest(t)
	seller := seedUser(t, db, "investor")
	buyer := seedUser(t, db, "investor")
	intruder := seedUser(t, db, "investor")
	holding := seedHolding(t, db, seller.UserID)

	req, err := svc.Create(context.Background(), CreateInput{
		SellerID: seller.UserID, BuyerID: buyer.UserID,
		HoldingID: holding.HoldingID, SalePrice: price(50000),
	})
	require.NoError(t, err)

	_, err = svc.BuyerRespond(context.Background(), req.RequestID, intruder.UserID, domain.BuyerResponseAccepted)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
}

func TestBuyerRespond_AcceptedMovesToAdminPending(t *testing.T) {
	svc, db := setupTransferTest(t)
	seller := seedUser(t, db, "investor")
	buyer := seedUser(t, db, "investor")
	holding := seedHolding(t, db, seller.UserID)

	req, err := svc.Create(context.Background(), CreateInput{
		SellerID: seller.UserID, BuyerID: buyer.UserID,
		HoldingID: holding.HoldingID, SalePrice: price(50000),
	})
	require.NoError(t, err)

	updated, err := svc.BuyerRespond(context.Background(), req.RequestID, buyer.UserID, domain.BuyerResponseAccepted)
	require.NoError(t, err)
	assert.Equal(t, domain.TransferAdminPending, updated.Status)
	assert.Equal(t, domain.BuyerResponseAccepted, updated.BuyerResponse)
	assert.NotNil(t, updated.BuyerRespondedAt)

	// a second response hits a closed window
	_, err = svc.BuyerRespond(context.Background(), req.RequestID, buyer.UserID, domain.BuyerResponseDeclined)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
}

func TestBuyerRespond_DeclinedIsTerminalAndFreesHolding(t *testing.T) {
	svc, db := setupTransferTest(t)
	seller := seedUser(t, db, "investor")
	buyer := seedUser(t, db, "investor")
	buyer2 := seedUser(t, db, "investor")
	holding := seedHolding(t, db, seller.UserID)

	req, err := svc.Create(context.Background(), CreateInput{
		SellerID: seller.UserID, BuyerID: buyer.UserID,
		HoldingID: holding.HoldingID, SalePrice: price(50000),
	})
	require.NoError(t, err)

	updated, err := svc.BuyerRespond(context.Background(), req.RequestID, buyer.UserID, domain.BuyerResponseDeclined)
	require.NoError(t, err)
	assert.Equal(t, domain.TransferRejected, updated.Status)
	assert.Nil(t, updated.ActiveHoldingID)

	// terminal request no longer blocks a new one for the same holding
	_, err = svc.Create(context.Background(), CreateInput{
		SellerID: seller.UserID, BuyerID: buyer2.UserID,
		HoldingID: holding.HoldingID, SalePrice: price(55000),
	})
	assert.NoError(t, err)
}

func TestAdminApprove_FullPathReassignsHolding(t *testing.T) {
	svc, db := setupTransferTest(t)
	seller := seedUser(t, db, "investor")
	buyer := seedUser(t, db, "investor")
	admin := seedUser(t, db, "admin")
	holding := seedHolding(t, db, seller.UserID)
	untouched := seedHolding(t, db, seller.UserID)

	req, err := svc.Create(context.Background(), CreateInput{
		SellerID: seller.UserID, BuyerID: buyer.UserID,
		HoldingID: holding.HoldingID, SalePrice: price(50000),
	})
	require.NoError(t, err)
	_, err = svc.BuyerRespond(context.Background(), req.RequestID, buyer.UserID, domain.BuyerResponseAccepted)
	require.NoError(t, err)

	notes := "verified funds"
	approved, err := svc.AdminApprove(context.Background(), req.RequestID, admin.UserID, &notes)
	require.NoError(t, err)
	assert.Equal(t, domain.TransferCompleted, approved.Status)
	assert.Nil(t, approved.ActiveHoldingID)
	assert.NotNil(t, approved.AdminRespondedAt)
	require.NotNil(t, approved.AdminNotes)
	assert.Equal(t, notes, *approved.AdminNotes)

	var h domain.Holding
	require.NoError(t, db.Where("holding_id = ?", holding.HoldingID).First(&h).Error)
	assert.Equal(t, buyer.UserID, h.UserID)
	assert.Equal(t, domain.HoldingTransferred, h.Status)

	// no other holding mutated
	var other domain.Holding
	require.NoError(t, db.Where("holding_id = ?", untouched.HoldingID).First(&other).Error)
	assert.Equal(t, seller.UserID, other.UserID)
	assert.Equal(t, domain.HoldingActive, other.Status)
}

func TestAdminApprove_FailsOutsideAdminPending(t *testing.T) {
	svc, db := setupTransferTest(t)
	seller := seedUser(t, db, "investor")
	buyer := seedUser(t, db, "investor")
	admin := seedUser(t, db, "admin")
	holding := seedHolding(t, db, seller.UserID)

	req, err := svc.Create(context.Background(), CreateInput{
		SellerID: seller.UserID, BuyerID: buyer.UserID,
		HoldingID: holding.HoldingID, SalePrice: price(50000),
	})
	require.NoError(t, err)

	// still pending: buyer has not accepted
	_, err = svc.AdminApprove(context.Background(), req.RequestID, admin.UserID, nil)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	// state unchanged
	var unchanged domain.TransferRequest
	require.NoError(t, db.Where("request_id = ?", req.RequestID).First(&unchanged).Error)
	assert.Equal(t, domain.TransferPending, unchanged.Status)
	var h domain.Holding
	require.NoError(t, db.Where("holding_id = ?", holding.HoldingID).First(&h).Error)
	assert.Equal(t, seller.UserID, h.UserID)
}

func TestAdminApprove_SecondApproveFails(t *testing.T) {
	svc, db := setupTransferTest(t)
	seller := seedUser(t, db, "investor")
	buyer := seedUser(t, db, "investor")
	admin := seedUser(t, db, "admin")
	holding := seedHolding(t, db, seller.UserID)

	req, err := svc.Create(context.Background(), CreateInput{
		SellerID: seller.UserID, BuyerID: buyer.UserID,
		HoldingID: holding.HoldingID, SalePrice: price(50000),
	})
	require.NoError(t, err)
	_, err = svc.BuyerRespond(context.Background(), req.RequestID, buyer.UserID, domain.BuyerResponseAccepted)
	require.NoError(t, err)
	_, err = svc.AdminApprove(context.Background(), req.RequestID, admin.UserID, nil)
	require.NoError(t, err)

	_, err = svc.AdminApprove(context.Background(), req.RequestID, admin.UserID, nil)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	// ownership unchanged after the failed second approval
	var h domain.Holding
	require.NoError(t, db.Where("holding_id = ?", holding.HoldingID).First(&h).Error)
	assert.Equal(t, buyer.UserID, h.UserID)
}

func TestAdminReject_TerminalAndHoldingUntouched(t *testing.T) {
	svc, db := setupTransferTest(t)
	seller := seedUser(t, db, "investor")
	buyer := seedUser(t, db, "investor")
	admin := seedUser(t, db, "admin")
	holding := seedHolding(t, db, seller.UserID)

	req, err := svc.Create(context.Background(), CreateInput{
		SellerID: seller.UserID, BuyerID: buyer.UserID,
		HoldingID: holding.HoldingID, SalePrice: price(50000),
	})
	require.NoError(t, err)
	_, err = svc.BuyerRespond(context.Background(), req.RequestID, buyer.UserID, domain.BuyerResponseAccepted)
	require.NoError(t, err)

	rejected, err := svc.AdminReject(context.Background(), req.RequestID, admin.UserID, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.TransferAdminRejected, rejected.Status)
	assert.Nil(t, rejected.ActiveHoldingID)

	var h domain.Holding
	require.NoError(t, db.Where("holding_id = ?", holding.HoldingID).First(&h).Error)
	assert.Equal(t, seller.UserID, h.UserID)
	assert.Equal(t, domain.HoldingActive, h.Status)
}

func TestCancel_SellerOnlyAndNonTerminal(t *testing.T) {
	svc, db := setupTransferTest(t)
	seller := seedUser(t, db, "investor")
	buyer := seedUser(t, db, "investor")
	holding := seedHolding(t, db, seller.UserID)

	req, err := svc.Create(context.Background(), CreateInput{
		SellerID: seller.UserID, BuyerID: buyer.UserID,
		HoldingID: holding.HoldingID, SalePrice: price(50000),
	})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), req.RequestID, buyer.UserID)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))

	cancelled, err := svc.Cancel(context.Background(), req.RequestID, seller.UserID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransferCancelled, cancelled.Status)

	_, err = svc.Cancel(context.Background(), req.RequestID, seller.UserID)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
}

func TestList_FiltersAndOrders(t *testing.T) {
	svc, db := setupTransferTest(t)
	seller := seedUser(t, db, "investor")
	buyer := seedUser(t, db, "investor")
	h1 := seedHolding(t, db, seller.UserID)
	h2 := seedHolding(t, db, seller.UserID)

	r1, err := svc.Create(context.Background(), CreateInput{
		SellerID: seller.UserID, BuyerID: buyer.UserID,
		HoldingID: h1.HoldingID, SalePrice: price(50000),
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateInput{
		SellerID: seller.UserID, BuyerID: buyer.UserID,
		HoldingID: h2.HoldingID, SalePrice: price(60000),
	})
	require.NoError(t, err)
	_, err = svc.BuyerRespond(context.Background(), r1.RequestID, buyer.UserID, domain.BuyerResponseAccepted)
	require.NoError(t, err)

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := svc.List(context.Background(), domain.TransferAdminPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, r1.RequestID, pending[0].RequestID)

	_, err = svc.List(context.Background(), "bogus")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	received, err := svc.ListReceived(context.Background(), buyer.UserID)
	require.NoError(t, err)
	assert.Len(t, received, 2)

	sent, err := svc.ListSent(context.Background(), seller.UserID)
	require.NoError(t, err)
	assert.Len(t, sent, 2)
}

func TestListEvents_JournalCoversLifecycle(t *testing.T) {
	svc, db := setupTransferTest(t)
	seller := seedUser(t, db, "investor")
	buyer := seedUser(t, db, "investor")
	admin := seedUser(t, db, "admin")
	holding := seedHolding(t, db, seller.UserID)

	req, err := svc.Create(context.Background(), CreateInput{
		SellerID: seller.UserID, BuyerID: buyer.UserID,
		HoldingID: holding.HoldingID, SalePrice: price(50000),
	})
	require.NoError(t, err)
	_, err = svc.BuyerRespond(context.Background(), req.RequestID, buyer.UserID, domain.BuyerResponseAccepted)
	require.NoError(t, err)
	_, err = svc.AdminApprove(context.Background(), req.RequestID, admin.UserID, nil)
	require.NoError(t, err)

	events, err := svc.ListEvents(context.Background(), req.RequestID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, domain.EventCreated, events[0].EventType)
	assert.Equal(t, domain.EventBuyerAccepted, events[1].EventType)
	assert.Equal(t, domain.EventAdminApproved, events[2].EventType)
}

func TestCreate_UniqueIndexRejectsDuplicateActiveRow(t *testing.T) {
	_, db := setupTransferTest(t)
	seller := seedUser(t, db, "investor")
	buyer := seedUser(t, db, "investor")
	holding := seedHolding(t, db, seller.UserID)

	// two rows carrying the same active holding, written below the service
	// layer so the pre-check cannot intervene
	first := &domain.TransferRequest{
		HoldingID: holding.HoldingID, PropertyID: holding.PropertyID,
		SellerID: seller.UserID, BuyerID: buyer.UserID,
		SalePrice: price(50000), Status: domain.TransferPending,
		BuyerResponse: domain.BuyerResponsePending, ActiveHoldingID: &holding.HoldingID,
	}
	require.NoError(t, db.Create(first).Error)

	second := &domain.TransferRequest{
		HoldingID: holding.HoldingID, PropertyID: holding.PropertyID,
		SellerID: seller.UserID, BuyerID: buyer.UserID,
		SalePrice: price(60000), Status: domain.TransferPending,
		BuyerResponse: domain.BuyerResponsePending, ActiveHoldingID: &holding.HoldingID,
	}
	assert.ErrorIs(t, db.Create(second).Error, gorm.ErrDuplicatedKey)
}

func TestCreate_ConcurrentDuplicatesOneWins(t *testing.T) {
	svc, db := setupTransferTest(t)
	seller := seedUser(t, db, "investor")
	buyer := seedUser(t, db, "investor")
	holding := seedHolding(t, db, seller.UserID)

	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := svc.Create(context.Background(), CreateInput{
				SellerID: seller.UserID, BuyerID: buyer.UserID,
				HoldingID: holding.HoldingID, SalePrice: price(50000),
			})
			results <- err
		}()
	}

	var ok, conflict int
	for i := 0; i < 2; i++ {
		err := <-results
		if err == nil {
			ok++
			continue
		}
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
		conflict++
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflict)

	// exactly one request survived as the holding's active one
	var active int64
	require.NoError(t, db.Model(&domain.TransferRequest{}).
		Where("active_holding_id = ?", holding.HoldingID).
		Count(&active).Error)
	assert.Equal(t, int64(1), active)
}
