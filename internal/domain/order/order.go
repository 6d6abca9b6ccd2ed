package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marketsync/backend/internal/domain/platform"
	"github.com/marketsync/backend/internal/domain/shared"
)

// Status represents the order lifecycle state
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if a transition to the target status is allowed
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusConfirmed || target == StatusCancelled
	case StatusConfirmed:
		return target == StatusShipped || target == StatusCancelled
	case StatusShipped:
		return target == StatusDelivered
	case StatusDelivered, StatusCancelled:
		return false
	}
	return false
}

// IsTerminal reports whether no further transitions are possible
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// PaymentStatus represents the payment state reported by the platform
type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "pending"
	PaymentPaid          PaymentStatus = "paid"
	PaymentRefunded      PaymentStatus = "refunded"
	PaymentPartialRefund PaymentStatus = "partial_refund"
)

// IsValid checks if the payment status is valid
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentRefunded, PaymentPartialRefund:
		return true
	}
	return false
}

// ShippingAddress is the delivery address captured from the platform
type ShippingAddress struct {
	Recipient  string `json:"recipient"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// Item is one order line
type Item struct {
	shared.BaseEntity

	OrderID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID      *uuid.UUID `gorm:"type:uuid;index"`
	PlatformItemID string     `gorm:"type:varchar(100)"`
	SKU            string     `gorm:"type:varchar(100);not null;index"`
	Name           string     `gorm:"type:varchar(300);not null"`
	VariantName    string     `gorm:"type:varchar(200)"`
	Quantity       int64      `gorm:"not null"`
	// ReservedQuantity is the stock actually held for this line at ingest.
	// Zero when the SKU was untracked or the reservation attempt failed.
	ReservedQuantity int64           `gorm:"not null;default:0"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// TableName returns the database table name
func (Item) TableName() string {
	return "order_items"
}

// Note is a free-form annotation on an order
type Note struct {
	shared.BaseEntity

	OrderID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	AuthorID *uuid.UUID `gorm:"type:uuid"`
	Text     string     `gorm:"type:text;not null"`
}

// TableName returns the database table name
func (Note) TableName() string {
	return "order_notes"
}

// Order is the aggregate root for a marketplace order.
//
// Orders are ingested from platforms, never created locally. The pair
// (org, platform, platform_order_id) is the idempotency key: re-ingesting
// the same platform order refreshes mutable fields instead of duplicating.
type Order struct {
	shared.OrgAggregateRoot

	Platform        platform.Type `gorm:"type:varchar(20);not null;uniqueIndex:idx_order_org_platform_ref,where:deleted_at IS NULL;index:idx_order_org_platform"`
	PlatformOrderID string        `gorm:"type:varchar(100);not null;uniqueIndex:idx_order_org_platform_ref,where:deleted_at IS NULL"`
	OrderNumber     string        `gorm:"type:varchar(100);not null;index"`

	CustomerName  string `gorm:"type:varchar(200)"`
	CustomerEmail string `gorm:"type:varchar(200)"`
	CustomerPhone string `gorm:"type:varchar(50)"`

	ShippingAddress ShippingAddress `gorm:"serializer:json"`

	Currency    string          `gorm:"type:varchar(10);not null;default:'TWD'"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ShippingFee decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Discount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total       decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Status        Status        `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;default:'pending';index"`

	Items []Item `gorm:"foreignKey:OrderID"`
	Notes []Note `gorm:"foreignKey:OrderID"`

	TrackingNumber string `gorm:"type:varchar(100)"`
	Carrier        string `gorm:"type:varchar(100)"`
	CancelReason   string `gorm:"type:varchar(500)"`

	OrderedAt   time.Time `gorm:"not null;index"`
	ConfirmedAt *time.Time
	ShippedAt   *time.Time
	DeliveredAt *time.Time
	CancelledAt *time.Time
}

// TableName returns the database table name
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a pending order from an ingested platform payload
func NewOrder(orgID uuid.UUID, platformType platform.Type, platformOrderID, orderNumber string, orderedAt time.Time) (*Order, error) {
	if !platformType.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unsupported platform type")
	}
	if platformOrderID == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Platform order ID is required")
	}
	if orderNumber == "" {
		orderNumber = platformOrderID
	}
	if orderedAt.IsZero() {
		orderedAt = time.Now()
	}

	o := &Order{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Platform:         platformType,
		PlatformOrderID:  platformOrderID,
		OrderNumber:      orderNumber,
		Currency:         "TWD",
		Subtotal:         decimal.Zero,
		ShippingFee:      decimal.Zero,
		Discount:         decimal.Zero,
		Total:            decimal.Zero,
		Status:           StatusPending,
		PaymentStatus:    PaymentPending,
		OrderedAt:        orderedAt,
	}
	o.AddDomainEvent(NewOrderIngestedEvent(o))
	return o, nil
}

// AddItem appends an order line and refreshes totals
func (o *Order) AddItem(sku, name, variantName, platformItemID string, quantity int64, unitPrice decimal.Decimal, productID *uuid.UUID) error {
	if sku == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Item SKU is required")
	}
	if quantity <= 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Item quantity must be positive")
	}

	item := Item{
		BaseEntity:     shared.NewBaseEntity(),
		OrderID:        o.ID,
		ProductID:      productID,
		PlatformItemID: platformItemID,
		SKU:            sku,
		Name:           name,
		VariantName:    variantName,
		Quantity:       quantity,
		UnitPrice:      unitPrice,
		Subtotal:       unitPrice.Mul(decimal.NewFromInt(quantity)),
	}
	o.Items = append(o.Items, item)
	o.recalculateTotals()
	return nil
}

// SetAmounts applies the platform-reported money amounts
func (o *Order) SetAmounts(currency string, subtotal, shippingFee, discount, total decimal.Decimal) {
	if currency != "" {
		o.Currency = currency
	}
	o.Subtotal = subtotal
	o.ShippingFee = shippingFee
	o.Discount = discount
	if total.IsZero() {
		total = subtotal.Add(shippingFee).Sub(discount)
	}
	o.Total = total
	o.touch(nil)
}

// SetCustomer applies the platform-reported customer details
func (o *Order) SetCustomer(name, email, phone string, address ShippingAddress) {
	o.CustomerName = name
	o.CustomerEmail = email
	o.CustomerPhone = phone
	o.ShippingAddress = address
	o.touch(nil)
}

// SetPaymentStatus applies a platform payment state
func (o *Order) SetPaymentStatus(status PaymentStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("VALIDATION_ERROR", "Unknown payment status")
	}
	if o.PaymentStatus == status {
		return nil
	}
	o.PaymentStatus = status
	o.touch(nil)
	o.AddDomainEvent(NewPaymentStatusChangedEvent(o))
	return nil
}

// TransitionTo moves the order through the status state machine
func (o *Order) TransitionTo(target Status, actorID *uuid.UUID) error {
	if !target.IsValid() {
		return shared.NewDomainError("VALIDATION_ERROR", "Unknown order status")
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_TRANSITION",
			"Cannot transition order from "+o.Status.String()+" to "+target.String())
	}

	from := o.Status
	o.Status = target
	now := time.Now()
	switch target {
	case StatusConfirmed:
		o.ConfirmedAt = &now
	case StatusShipped:
		o.ShippedAt = &now
	case StatusDelivered:
		o.DeliveredAt = &now
	case StatusCancelled:
		o.CancelledAt = &now
	}
	o.touch(actorID)
	o.AddDomainEvent(NewStatusChangedEvent(o, from, target))
	return nil
}

// Confirm moves a pending order to confirmed
func (o *Order) Confirm(actorID *uuid.UUID) error {
	return o.TransitionTo(StatusConfirmed, actorID)
}

// Ship marks the order shipped with tracking details
func (o *Order) Ship(trackingNumber, carrier string, actorID *uuid.UUID) error {
	if err := o.TransitionTo(StatusShipped, actorID); err != nil {
		return err
	}
	o.TrackingNumber = trackingNumber
	o.Carrier = carrier
	return nil
}

// Deliver marks the order delivered
func (o *Order) Deliver(actorID *uuid.UUID) error {
	return o.TransitionTo(StatusDelivered, actorID)
}

// Cancel cancels the order with a reason. Stock held for its lines is
// released separately, driven by each line's recorded reserved quantity.
func (o *Order) Cancel(reason string, actorID *uuid.UUID) error {
	if err := o.TransitionTo(StatusCancelled, actorID); err != nil {
		return err
	}
	o.CancelReason = reason
	return nil
}

// RecordLineReservation records the stock actually held for one line.
// Called after the reservation succeeded against inventory.
func (o *Order) RecordLineReservation(i int, qty int64) {
	if i < 0 || i >= len(o.Items) || qty < 0 {
		return
	}
	o.Items[i].ReservedQuantity = qty
	o.touch(nil)
}

// ClearLineReservation zeroes one line's held quantity and returns what
// was held. Zero means the line had nothing to release.
func (o *Order) ClearLineReservation(i int) int64 {
	if i < 0 || i >= len(o.Items) {
		return 0
	}
	held := o.Items[i].ReservedQuantity
	if held == 0 {
		return 0
	}
	o.Items[i].ReservedQuantity = 0
	o.touch(nil)
	return held
}

// HasReservedStock reports whether any line still holds reserved stock
func (o *Order) HasReservedStock() bool {
	for i := range o.Items {
		if o.Items[i].ReservedQuantity > 0 {
			return true
		}
	}
	return false
}

// AddNote appends an annotation to the order
func (o *Order) AddNote(text string, authorID *uuid.UUID) (*Note, error) {
	if text == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Note text is required")
	}
	note := Note{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    o.ID,
		AuthorID:   authorID,
		Text:       text,
	}
	o.Notes = append(o.Notes, note)
	o.touch(authorID)
	return &o.Notes[len(o.Notes)-1], nil
}

// IsPaid reports whether the platform marked the order as paid
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentPaid
}

func (o *Order) recalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.Subtotal)
	}
	o.Subtotal = subtotal
	o.Total = subtotal.Add(o.ShippingFee).Sub(o.Discount)
	o.touch(nil)
}

func (o *Order) touch(actorID *uuid.UUID) {
	o.UpdatedAt = time.Now()
	if actorID != nil {
		o.SetUpdatedBy(*actorID)
	}
	o.IncrementVersion()
}
