package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quickbites-api/models"
	"quickbites-api/statemachine"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrConflict means another writer changed the order's status between
	// our read and our conditional update. The caller lost the race and
	// should re-read.
	ErrConflict = errors.New("order status conflict")
	// ErrPartnerTaken means the order already has a delivery partner.
	ErrPartnerTaken = errors.New("order already assigned to a delivery partner")
)

const (
	minEstimatedMinutes = 5
	maxInstructionsLen  = 200
)

// StatusEvent is what the notifier receives after a successful transition.
type StatusEvent struct {
	OrderID      uint
	OrderNumber  string
	CustomerID   uint
	RestaurantID uint
	Status       models.OrderStatus
	Timestamp    time.Time
}

// NewOrderSummary is the payload pushed to a restaurant when an order lands.
type NewOrderSummary struct {
	OrderID     uint
	OrderNumber string
	ItemCount   int
	TotalAmount float64
}

// Notifier receives lifecycle events for fan-out. Implementations must not
// block; the state mutation has already committed by the time they run and
// their failures are invisible to it.
type Notifier interface {
	PublishStatusChange(event StatusEvent)
	PublishNewOrder(restaurantID uint, summary NewOrderSummary)
}

// NoopNotifier drops every event. Used in tests and tooling.
type NoopNotifier struct{}

func (NoopNotifier) PublishStatusChange(StatusEvent)       {}
func (NoopNotifier) PublishNewOrder(uint, NewOrderSummary) {}

// Service owns order creation and the status transition operation. Orders are
// independent aggregates: serialization is per-order, through a conditional
// update on the current status.
type Service struct {
	db       *gorm.DB
	notifier Notifier
	taxRate  float64
}

func NewService(db *gorm.DB, notifier Notifier, taxRate float64) *Service {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	if taxRate == 0 {
		taxRate = DefaultTaxRate
	}
	return &Service{db: db, notifier: notifier, taxRate: taxRate}
}

// PlaceInput carries everything needed to create an order. Items must hold
// snapshot prices already validated against the menu by the caller.
type PlaceInput struct {
	CustomerID     uint
	RestaurantID   uint
	Items          []models.OrderItem
	DeliveryFee    float64
	CouponDiscount float64
	PaymentMethod  models.PaymentMethod
	Delivery       models.Delivery
	Notes          string
}

// Place validates the input, derives pricing server-side, generates the order
// number and persists the order in pending. The restaurant is notified
// fire-and-forget.
func (s *Service) Place(ctx context.Context, in PlaceInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, errors.New("order must contain at least one item")
	}
	for _, item := range in.Items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("item %d: quantity must be at least 1", item.MenuItemID)
		}
		if item.Price < 0 {
			return nil, fmt.Errorf("item %d: price cannot be negative", item.MenuItemID)
		}
		for _, custom := range item.Customizations {
			if custom.Price < 0 {
				return nil, fmt.Errorf("item %d: customization price cannot be negative", item.MenuItemID)
			}
		}
	}
	if in.DeliveryFee < 0 || in.CouponDiscount < 0 {
		return nil, errors.New("delivery fee and coupon discount cannot be negative")
	}
	if len(in.Delivery.Instructions) > maxInstructionsLen {
		return nil, fmt.Errorf("delivery instructions cannot exceed %d characters", maxInstructionsLen)
	}
	if in.Delivery.EstimatedTime < minEstimatedMinutes {
		in.Delivery.EstimatedTime = minEstimatedMinutes
	}

	totals := ComputeTotals(in.Items, in.DeliveryFee, in.CouponDiscount, s.taxRate)

	order := &models.Order{
		OrderNumber:  NewOrderNumber(),
		CustomerID:   in.CustomerID,
		RestaurantID: in.RestaurantID,
		Status:       models.StatusPending,
		Items:        in.Items,
		Pricing: models.Pricing{
			Subtotal:       totals.Subtotal,
			DeliveryFee:    in.DeliveryFee,
			Taxes:          totals.Taxes,
			CouponDiscount: in.CouponDiscount,
			TotalAmount:    totals.Total,
		},
		Payment:  models.Payment{Method: in.PaymentMethod, Status: models.PaymentPending},
		Delivery: in.Delivery,
		Notes:    in.Notes,
		PlacedAt: time.Now(),
	}

	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}

	s.notifier.PublishNewOrder(in.RestaurantID, NewOrderSummary{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		ItemCount:   len(order.Items),
		TotalAmount: order.Pricing.TotalAmount,
	})

	return order, nil
}

// Get loads an order with its items.
func (s *Service) Get(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Preload("Items.Customizations").First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Transition moves an order to a new status. The write is a compare-and-set
// on the status read before validation: if a concurrent writer changed it in
// between, zero rows match and the caller observes ErrConflict instead of a
// lost update. Status and timestamp land in one UPDATE, never half-applied.
// Re-entering the current status is a successful no-op.
func (s *Service) Transition(ctx context.Context, orderID uint, to models.OrderStatus) (*models.Order, error) {
	return s.transition(ctx, orderID, to, nil)
}

// AssignPartner transitions ready_for_pickup → out_for_delivery while
// claiming the order for a delivery partner. The claim is part of the same
// conditional update, so two partners racing for one order cannot both win.
func (s *Service) AssignPartner(ctx context.Context, orderID, partnerID uint) (*models.Order, error) {
	order, err := s.transition(ctx, orderID, models.StatusOutForDelivery, map[string]any{
		"delivery_partner_id": partnerID,
	})
	if errors.Is(err, ErrConflict) {
		// Distinguish "status moved" from "another partner claimed it".
		if current, getErr := s.Get(ctx, orderID); getErr == nil &&
			current.Status == models.StatusOutForDelivery && current.DeliveryPartnerID != nil {
			return nil, ErrPartnerTaken
		}
	}
	return order, err
}

func (s *Service) transition(ctx context.Context, orderID uint, to models.OrderStatus, extra map[string]any) (*models.Order, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// The same-status no-op only applies to plain transitions. A partner
	// claim must still hit the conditional UPDATE, or accepting an order
	// that is already out_for_delivery would report success without
	// claiming anything.
	if order.Status == to && len(extra) == 0 {
		return order, nil
	}
	if err := statemachine.CanTransition(order.Status, to); err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]any{"status": to}
	if col, ok := statemachine.TimestampColumn(to); ok {
		// COALESCE keeps an already-stamped timestamp untouched.
		updates[col] = gorm.Expr("COALESCE("+col+", ?)", now)
	}
	for col, val := range extra {
		updates[col] = val
	}

	query := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, order.Status)
	if _, ok := extra["delivery_partner_id"]; ok {
		query = query.Where("delivery_partner_id IS NULL")
	}

	res := query.Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrConflict
	}

	updated, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.notifier.PublishStatusChange(StatusEvent{
		OrderID:      updated.ID,
		OrderNumber:  updated.OrderNumber,
		CustomerID:   updated.CustomerID,
		RestaurantID: updated.RestaurantID,
		Status:       updated.Status,
		Timestamp:    now,
	})

	return updated, nil
}

// SetPaymentStatus records the outcome reported by the payment collaborator.
func (s *Service) SetPaymentStatus(ctx context.Context, orderID uint, status models.PaymentStatus, externalID, externalPaymentID string) error {
	updates := map[string]any{"payment_status": status}
	if externalID != "" {
		updates["payment_external_id"] = externalID
	}
	if externalPaymentID != "" {
		updates["payment_external_payment_id"] = externalPaymentID
	}

	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	log.Info().Uint("order_id", orderID).Str("payment_status", string(status)).Msg("payment status updated")
	return nil
}
