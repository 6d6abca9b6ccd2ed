package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marketsync/backend/internal/domain/inventory"
	"github.com/marketsync/backend/internal/domain/order"
	"github.com/marketsync/backend/internal/domain/platform"
	"github.com/marketsync/backend/internal/domain/shared"
)

// statusRank orders the forward path of the state machine
var statusRank = map[order.Status]int{
	order.StatusPending:   0,
	order.StatusConfirmed: 1,
	order.StatusShipped:   2,
	order.StatusDelivered: 3,
}

var forwardPath = []order.Status{
	order.StatusPending,
	order.StatusConfirmed,
	order.StatusShipped,
	order.StatusDelivered,
}

// Ingest imports one platform order idempotently. The first ingest creates
// the order and reserves stock for its lines; later ingests of the same
// (platform, platform_order_id) refresh payment state, amounts and status
// without duplicating anything. Status never moves backwards.
func (s *Service) Ingest(ctx context.Context, orgID uuid.UUID, platformType platform.Type, remote platform.RemoteOrder, jobID *uuid.UUID) (*IngestResult, error) {
	existing, err := s.orderRepo.FindByPlatformRef(ctx, orgID, platformType, remote.PlatformOrderID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	s.recordListings(ctx, orgID, platformType, remote.Items)

	if existing != nil {
		return s.refreshExisting(ctx, existing, remote)
	}
	return s.ingestNew(ctx, orgID, platformType, remote, jobID)
}

// recordListings learns SKU to platform product mappings from order lines.
// Inventory pushes need these to address updates; the upsert is best effort
// and never blocks the import.
func (s *Service) recordListings(ctx context.Context, orgID uuid.UUID, platformType platform.Type, lines []platform.RemoteOrderItem) {
	for _, line := range lines {
		listing, err := platform.NewListing(orgID, platformType, line.SKU, line.PlatformItemID)
		if err != nil {
			continue
		}
		if err := s.listingRepo.Upsert(ctx, listing); err != nil {
			s.logger.Warn("failed to record platform listing",
				zap.String("org_id", orgID.String()),
				zap.String("platform", platformType.String()),
				zap.String("sku", line.SKU),
				zap.Error(err))
		}
	}
}

func (s *Service) ingestNew(ctx context.Context, orgID uuid.UUID, platformType platform.Type, remote platform.RemoteOrder, jobID *uuid.UUID) (*IngestResult, error) {
	o, err := order.NewOrder(orgID, platformType, remote.PlatformOrderID, remote.OrderNumber, remote.OrderedAt)
	if err != nil {
		return nil, err
	}

	for _, line := range remote.Items {
		productID := s.resolveProductID(ctx, orgID, line.SKU)
		if err := o.AddItem(line.SKU, line.Name, line.VariantName, line.PlatformItemID, line.Quantity, line.UnitPrice, productID); err != nil {
			return nil, err
		}
	}
	o.SetCustomer(remote.CustomerName, remote.CustomerEmail, remote.CustomerPhone, toShippingAddress(remote.ShippingAddress))
	o.SetAmounts(remote.Currency, remote.Subtotal, remote.ShippingFee, remote.Discount, remote.Total)
	if remote.PaymentStatus != "" {
		if err := o.SetPaymentStatus(order.PaymentStatus(remote.PaymentStatus)); err != nil {
			return nil, err
		}
	}

	target := normalizeStatus(remote.Status)
	if err := s.advanceToward(o, target, nil); err != nil {
		return nil, err
	}

	// Reserving before the save records each line's held quantity on the
	// order row itself.
	if o.Status == order.StatusPending || o.Status == order.StatusConfirmed {
		s.reserveLines(ctx, o)
	}

	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}

	if o.Status == order.StatusShipped || o.Status == order.StatusDelivered {
		s.recordSoldLines(ctx, o)
	}

	s.publishDomainEvents(ctx, o)
	return &IngestResult{Order: ToOrderResponse(o), Created: true}, nil
}

func (s *Service) refreshExisting(ctx context.Context, o *order.Order, remote platform.RemoteOrder) (*IngestResult, error) {
	changed := false

	if remote.PaymentStatus != "" && order.PaymentStatus(remote.PaymentStatus) != o.PaymentStatus {
		if err := o.SetPaymentStatus(order.PaymentStatus(remote.PaymentStatus)); err == nil {
			changed = true
		}
	}
	if !remote.Total.IsZero() && !remote.Total.Equal(o.Total) {
		o.SetAmounts(remote.Currency, remote.Subtotal, remote.ShippingFee, remote.Discount, remote.Total)
		changed = true
	}

	target := normalizeStatus(remote.Status)
	if target != o.Status && !o.Status.IsTerminal() {
		preShipment := statusRank[o.Status] < statusRank[order.StatusShipped]
		if err := s.advanceToward(o, target, nil); err == nil {
			changed = true
			switch {
			case target == order.StatusCancelled:
				s.releaseReservations(ctx, o, nil)
			case statusRank[target] >= statusRank[order.StatusShipped] && preShipment:
				s.consumeReservations(ctx, o, nil)
			}
		}
	}

	if changed {
		if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
			return nil, err
		}
	}
	s.publishDomainEvents(ctx, o)
	return &IngestResult{Order: ToOrderResponse(o), Created: false}, nil
}

// advanceToward walks the state machine forward until the target status is
// reached. Unknown or backward targets leave the order untouched.
func (s *Service) advanceToward(o *order.Order, target order.Status, actorID *uuid.UUID) error {
	if target == o.Status {
		return nil
	}
	if target == order.StatusCancelled {
		if o.Status.CanTransitionTo(order.StatusCancelled) {
			return o.Cancel("cancelled on platform", actorID)
		}
		return nil
	}
	targetRank, ok := statusRank[target]
	if !ok {
		return nil
	}
	for statusRank[o.Status] < targetRank {
		next := forwardPath[statusRank[o.Status]+1]
		if err := o.TransitionTo(next, actorID); err != nil {
			return err
		}
	}
	return nil
}

// reserveLines holds stock for each order line. Reservation is best effort
// per SKU: unknown SKUs and insufficient stock are logged and skipped so a
// single oversold line does not block the import. Each successful hold is
// recorded on its line so releases later give back exactly this amount.
func (s *Service) reserveLines(ctx context.Context, o *order.Order) {
	for i := range o.Items {
		line := &o.Items[i]
		item, err := s.itemRepo.FindBySKUForOrg(ctx, o.OrgID, line.SKU)
		if err != nil {
			continue
		}
		if err := item.Reserve(line.Quantity, nil); err != nil {
			s.logger.Warn("could not reserve stock for ingested order",
				zap.String("org_id", o.OrgID.String()),
				zap.String("sku", line.SKU),
				zap.Int64("quantity", line.Quantity),
				zap.Error(err))
			continue
		}
		if err := s.itemRepo.SaveWithLock(ctx, item); err != nil {
			s.logger.Warn("failed to save reservation",
				zap.String("org_id", o.OrgID.String()),
				zap.String("sku", line.SKU),
				zap.Error(err))
			continue
		}
		o.RecordLineReservation(i, line.Quantity)
	}
}

// recordSoldLines deducts stock for orders that arrive already shipped
func (s *Service) recordSoldLines(ctx context.Context, o *order.Order) {
	for _, line := range o.Items {
		item, err := s.itemRepo.FindBySKUForOrg(ctx, o.OrgID, line.SKU)
		if err != nil {
			continue
		}
		movement, err := item.Adjust(-line.Quantity, inventory.ChangeTypeSale, inventory.OrderRef(o.ID), "order "+o.OrderNumber+" imported as shipped", nil)
		if err != nil {
			continue
		}
		if err := s.itemRepo.SaveWithLock(ctx, item); err != nil {
			continue
		}
		_ = s.movementRepo.Append(ctx, movement)
	}
}

// resolveProductID links an order line to the tracked inventory item
func (s *Service) resolveProductID(ctx context.Context, orgID uuid.UUID, sku string) *uuid.UUID {
	item, err := s.itemRepo.FindBySKUForOrg(ctx, orgID, sku)
	if err != nil {
		return nil
	}
	return &item.ProductID
}

func normalizeStatus(raw string) order.Status {
	status := order.Status(raw)
	if status.IsValid() {
		return status
	}
	return order.StatusPending
}

func toShippingAddress(addr platform.RemoteAddress) order.ShippingAddress {
	return order.ShippingAddress{
		Recipient:  addr.Recipient,
		Address:    addr.Address,
		City:       addr.City,
		State:      addr.State,
		PostalCode: addr.PostalCode,
		Country:    addr.Country,
		Phone:      addr.Phone,
	}
}
