package orders

import (
	"context"
	"errors"
	"sync"
	"testing"

	"quickbites-api/models"
	"quickbites-api/statemachine"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Order{},
		&models.OrderItem{},
		&models.OrderItemCustomization{},
	))
	return db
}

type captureNotifier struct {
	mu        sync.Mutex
	events    []StatusEvent
	newOrders []NewOrderSummary
}

func (n *captureNotifier) PublishStatusChange(e StatusEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *captureNotifier) PublishNewOrder(_ uint, s NewOrderSummary) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.newOrders = append(n.newOrders, s)
}

func placeTestOrder(t *testing.T, svc *Service) *models.Order {
	t.Helper()
	order, err := svc.Place(context.Background(), PlaceInput{
		CustomerID:   1,
		RestaurantID: 1,
		Items: []models.OrderItem{
			{MenuItemID: 10, Name: "Burger", Price: 100, Quantity: 2},
			{MenuItemID: 11, Name: "Fries", Price: 50, Quantity: 1,
				Customizations: []models.OrderItemCustomization{{Name: "Extra cheese", Price: 10}}},
		},
		DeliveryFee:    20,
		CouponDiscount: 15,
		PaymentMethod:  models.PaymentCashOnDelivery,
		Delivery:       models.Delivery{StreetAddress: "12 MG Road", City: "Bengaluru"},
	})
	require.NoError(t, err)
	return order
}

func TestPlaceComputesPricingServerSide(t *testing.T) {
	notifier := &captureNotifier{}
	svc := NewService(newTestDB(t), notifier, 0.05)

	order := placeTestOrder(t, svc)

	assert.Equal(t, models.StatusPending, order.Status)
	assert.NotEmpty(t, order.OrderNumber)
	assert.False(t, order.PlacedAt.IsZero())
	assert.Equal(t, float64(260), order.Pricing.Subtotal)
	assert.Equal(t, float64(13), order.Pricing.Taxes)
	assert.Equal(t, float64(278), order.Pricing.TotalAmount)
	assert.Equal(t, models.PaymentPending, order.Payment.Status)

	require.Len(t, notifier.newOrders, 1)
	assert.Equal(t, order.OrderNumber, notifier.newOrders[0].OrderNumber)
	assert.Equal(t, 2, notifier.newOrders[0].ItemCount)
}

func TestPlaceValidation(t *testing.T) {
	svc := NewService(newTestDB(t), nil, 0.05)
	ctx := context.Background()

	_, err := svc.Place(ctx, PlaceInput{CustomerID: 1, RestaurantID: 1})
	assert.ErrorContains(t, err, "at least one item")

	_, err = svc.Place(ctx, PlaceInput{
		CustomerID: 1, RestaurantID: 1,
		Items: []models.OrderItem{{MenuItemID: 10, Price: 100, Quantity: 0}},
	})
	assert.ErrorContains(t, err, "quantity")

	longInstructions := make([]byte, 201)
	for i := range longInstructions {
		longInstructions[i] = 'x'
	}
	_, err = svc.Place(ctx, PlaceInput{
		CustomerID: 1, RestaurantID: 1,
		Items:    []models.OrderItem{{MenuItemID: 10, Price: 100, Quantity: 1}},
		Delivery: models.Delivery{Instructions: string(longInstructions)},
	})
	assert.ErrorContains(t, err, "instructions")
}

func TestPlaceClampsEstimatedTime(t *testing.T) {
	svc := NewService(newTestDB(t), nil, 0.05)

	order, err := svc.Place(context.Background(), PlaceInput{
		CustomerID: 1, RestaurantID: 1,
		Items:    []models.OrderItem{{MenuItemID: 10, Price: 100, Quantity: 1}},
		Delivery: models.Delivery{EstimatedTime: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, order.Delivery.EstimatedTime)
}

func TestTransitionStampsTimestampOnce(t *testing.T) {
	notifier := &captureNotifier{}
	svc := NewService(newTestDB(t), notifier, 0.05)
	ctx := context.Background()

	order := placeTestOrder(t, svc)

	updated, err := svc.Transition(ctx, order.ID, models.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, updated.Status)
	require.NotNil(t, updated.ConfirmedAt)
	firstStamp := *updated.ConfirmedAt

	// Re-entering the current status is a no-op and must not re-stamp.
	again, err := svc.Transition(ctx, order.ID, models.StatusConfirmed)
	require.NoError(t, err)
	require.NotNil(t, again.ConfirmedAt)
	assert.Equal(t, firstStamp, *again.ConfirmedAt)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, models.StatusConfirmed, notifier.events[0].Status)
}

func TestTransitionRejectsJumpAndLeavesOrderUntouched(t *testing.T) {
	svc := NewService(newTestDB(t), nil, 0.05)
	ctx := context.Background()

	order := placeTestOrder(t, svc)

	_, err := svc.Transition(ctx, order.ID, models.StatusDelivered)
	assert.ErrorIs(t, err, statemachine.ErrInvalidTransition)

	current, err := svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, current.Status)
	assert.Nil(t, current.DeliveredAt)
}

func TestTransitionNotFound(t *testing.T) {
	svc := NewService(newTestDB(t), nil, 0.05)

	_, err := svc.Transition(context.Background(), 9999, models.StatusConfirmed)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCancelFromMidFlight(t *testing.T) {
	svc := NewService(newTestDB(t), nil, 0.05)
	ctx := context.Background()

	order := placeTestOrder(t, svc)
	for _, next := range []models.OrderStatus{models.StatusConfirmed, models.StatusPreparing} {
		_, err := svc.Transition(ctx, order.ID, next)
		require.NoError(t, err)
	}

	cancelled, err := svc.Transition(ctx, order.ID, models.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	assert.NotNil(t, cancelled.PreparingAt, "earlier stamps survive cancellation")

	_, err = svc.Transition(ctx, order.ID, models.StatusReadyForPickup)
	assert.ErrorIs(t, err, statemachine.ErrInvalidTransition)
}

func TestAssignPartnerClaimIsExclusive(t *testing.T) {
	svc := NewService(newTestDB(t), nil, 0.05)
	ctx := context.Background()

	order := placeTestOrder(t, svc)
	for _, next := range []models.OrderStatus{
		models.StatusConfirmed, models.StatusPreparing, models.StatusReadyForPickup,
	} {
		_, err := svc.Transition(ctx, order.ID, next)
		require.NoError(t, err)
	}

	claimed, err := svc.AssignPartner(ctx, order.ID, 42)
	require.NoError(t, err)
	require.NotNil(t, claimed.DeliveryPartnerID)
	assert.Equal(t, uint(42), *claimed.DeliveryPartnerID)

	_, err = svc.AssignPartner(ctx, order.ID, 43)
	assert.ErrorIs(t, err, ErrPartnerTaken)

	current, err := svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(42), *current.DeliveryPartnerID)
}

func TestConcurrentTransitionsNeverCorrupt(t *testing.T) {
	svc := NewService(newTestDB(t), nil, 0.05)
	ctx := context.Background()

	order := placeTestOrder(t, svc)
	_, err := svc.Transition(ctx, order.ID, models.StatusConfirmed)
	require.NoError(t, err)

	// Restaurant advances while the customer cancels. Whatever interleaving
	// happens, the order must land in a valid state with consistent stamps.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = svc.Transition(ctx, order.ID, models.StatusPreparing)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = svc.Transition(ctx, order.ID, models.StatusCancelled)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			assert.True(t,
				errors.Is(err, ErrConflict) || errors.Is(err, statemachine.ErrInvalidTransition),
				"unexpected error: %v", err)
		}
	}

	final, err := svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Contains(t,
		[]models.OrderStatus{models.StatusPreparing, models.StatusCancelled},
		final.Status)
	if final.Status == models.StatusCancelled {
		assert.NotNil(t, final.CancelledAt)
	}
}

func TestSetPaymentStatus(t *testing.T) {
	svc := NewService(newTestDB(t), nil, 0.05)
	ctx := context.Background()

	order := placeTestOrder(t, svc)

	require.NoError(t, svc.SetPaymentStatus(ctx, order.ID, models.PaymentPaid, "rp_order_1", "rp_pay_1"))

	current, err := svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, current.Payment.Status)
	assert.Equal(t, "rp_order_1", current.Payment.ExternalID)
	assert.Equal(t, "rp_pay_1", current.Payment.ExternalPaymentID)

	assert.ErrorIs(t, svc.SetPaymentStatus(ctx, 9999, models.PaymentPaid, "", ""), ErrOrderNotFound)
}
