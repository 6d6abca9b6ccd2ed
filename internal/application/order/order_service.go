package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marketsync/backend/internal/domain/inventory"
	"github.com/marketsync/backend/internal/domain/order"
	"github.com/marketsync/backend/internal/domain/platform"
	"github.com/marketsync/backend/internal/domain/shared"
)

// Service handles order tracking operations
type Service struct {
	orderRepo      order.OrderRepository
	itemRepo       inventory.InventoryItemRepository
	movementRepo   inventory.StockMovementRepository
	connectionRepo platform.ConnectionRepository
	listingRepo    platform.ListingRepository
	clients        platform.ClientRegistry
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewService creates a new order Service
func NewService(
	orderRepo order.OrderRepository,
	itemRepo inventory.InventoryItemRepository,
	movementRepo inventory.StockMovementRepository,
	connectionRepo platform.ConnectionRepository,
	listingRepo platform.ListingRepository,
	clients platform.ClientRegistry,
	logger *zap.Logger,
) *Service {
	return &Service{
		orderRepo:      orderRepo,
		itemRepo:       itemRepo,
		movementRepo:   movementRepo,
		connectionRepo: connectionRepo,
		listingRepo:    listingRepo,
		clients:        clients,
		logger:         logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// List returns orders for an org
func (s *Service) List(ctx context.Context, orgID uuid.UUID, filter OrderListFilter) (*shared.Paginated[OrderResponse], error) {
	domainFilter := order.OrderFilter{
		Filter:        shared.DefaultFilter(),
		Platform:      filter.Platform,
		OrderedAfter:  filter.OrderedAfter,
		OrderedBefore: filter.OrderedBefore,
	}
	domainFilter.Search = filter.Search
	if filter.Status != "" {
		status := order.Status(filter.Status)
		domainFilter.Status = &status
	}
	if filter.PaymentStatus != "" {
		ps := order.PaymentStatus(filter.PaymentStatus)
		domainFilter.PaymentStatus = &ps
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	} else {
		domainFilter.OrderBy = "ordered_at"
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}

	orders, err := s.orderRepo.FindAllForOrg(ctx, orgID, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.orderRepo.CountForOrg(ctx, orgID, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, *ToOrderResponse(&orders[i]))
	}
	result := shared.NewPaginated(responses, total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// GetByID returns a single order with items and notes
func (s *Service) GetByID(ctx context.Context, orgID, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	return ToOrderResponse(o), nil
}

// UpdateStatus moves an order through the state machine. Cancelling an
// order releases the stock its lines actually hold; shipping consumes
// those holds and writes sale movements to the ledger.
func (s *Service) UpdateStatus(ctx context.Context, orgID, id uuid.UUID, req UpdateStatusRequest, actorID *uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	switch req.Status {
	case order.StatusConfirmed:
		err = o.Confirm(actorID)
	case order.StatusShipped:
		err = o.Ship(req.TrackingNumber, req.Carrier, actorID)
	case order.StatusDelivered:
		err = o.Deliver(actorID)
	case order.StatusCancelled:
		err = o.Cancel(req.CancelReason, actorID)
	default:
		err = shared.NewDomainError("VALIDATION_ERROR", "Unknown target status")
	}
	if err != nil {
		return nil, err
	}

	// Inventory side effects run before the order save so the cleared line
	// holds persist together with the status change.
	switch req.Status {
	case order.StatusCancelled:
		s.releaseReservations(ctx, o, actorID)
	case order.StatusShipped:
		s.consumeReservations(ctx, o, actorID)
	}

	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	if req.PushToPlatform {
		s.pushStatusToPlatform(ctx, o)
	}

	s.publishDomainEvents(ctx, o)
	return ToOrderResponse(o), nil
}

// AddNote appends a note to an order
func (s *Service) AddNote(ctx context.Context, orgID, id uuid.UUID, req AddNoteRequest, actorID *uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if _, err := o.AddNote(req.Text, actorID); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}
	return ToOrderResponse(o), nil
}

// Stats summarizes orders since an optional cutoff
func (s *Service) Stats(ctx context.Context, orgID uuid.UUID, since *time.Time) (*StatsResponse, error) {
	stats, err := s.orderRepo.StatsForOrg(ctx, orgID, since)
	if err != nil {
		return nil, err
	}
	return ToStatsResponse(stats), nil
}

// releaseReservations returns each line's recorded hold to available
// stock. Lines that never reserved are skipped, so cancelling one order
// can never give back stock another order is holding.
func (s *Service) releaseReservations(ctx context.Context, o *order.Order, actorID *uuid.UUID) {
	for i := range o.Items {
		line := &o.Items[i]
		if line.ReservedQuantity <= 0 {
			continue
		}
		item, err := s.itemRepo.FindBySKUForOrg(ctx, o.OrgID, line.SKU)
		if err != nil {
			continue
		}
		if err := item.Release(line.ReservedQuantity, actorID); err != nil {
			continue
		}
		if err := s.itemRepo.SaveWithLock(ctx, item); err != nil {
			s.logger.Warn("failed to release reservation",
				zap.String("org_id", o.OrgID.String()),
				zap.String("sku", line.SKU),
				zap.Error(err))
			continue
		}
		o.ClearLineReservation(i)
	}
}

// consumeReservations converts held stock into recorded sales: each line's
// recorded hold is dropped and total stock decreases by the shipped quantity.
func (s *Service) consumeReservations(ctx context.Context, o *order.Order, actorID *uuid.UUID) {
	for i := range o.Items {
		line := &o.Items[i]
		item, err := s.itemRepo.FindBySKUForOrg(ctx, o.OrgID, line.SKU)
		if err != nil {
			continue
		}
		if held := line.ReservedQuantity; held > 0 {
			if err := item.Release(held, actorID); err != nil {
				continue
			}
		}
		movement, err := item.Adjust(-line.Quantity, inventory.ChangeTypeSale, inventory.OrderRef(o.ID), "order "+o.OrderNumber+" shipped", actorID)
		if err != nil {
			s.logger.Warn("failed to deduct shipped stock",
				zap.String("org_id", o.OrgID.String()),
				zap.String("sku", line.SKU),
				zap.Error(err))
			continue
		}
		if err := s.itemRepo.SaveWithLock(ctx, item); err != nil {
			s.logger.Warn("failed to save shipped stock deduction",
				zap.String("org_id", o.OrgID.String()),
				zap.String("sku", line.SKU),
				zap.Error(err))
			continue
		}
		o.ClearLineReservation(i)
		_ = s.movementRepo.Append(ctx, movement)
	}
}

// pushStatusToPlatform mirrors a local status change back to the source
// platform. Failures are logged, never propagated: the local state is the
// source of truth for fulfilment.
func (s *Service) pushStatusToPlatform(ctx context.Context, o *order.Order) {
	conn, err := s.connectionRepo.FindByPlatformForOrg(ctx, o.OrgID, o.Platform)
	if err != nil || !conn.IsConnected {
		return
	}
	client, err := s.clients.Get(o.Platform)
	if err != nil {
		return
	}
	if err := client.UpdateOrderStatus(ctx, conn.Credentials, o.PlatformOrderID, o.Status.String()); err != nil {
		s.logger.Warn("failed to push order status to platform",
			zap.String("org_id", o.OrgID.String()),
			zap.String("platform", o.Platform.String()),
			zap.String("platform_order_id", o.PlatformOrderID),
			zap.Error(err))
	}
}

func (s *Service) publishDomainEvents(ctx context.Context, o *order.Order) {
	if s.eventPublisher == nil {
		o.ClearDomainEvents()
		return
	}
	events := o.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	o.ClearDomainEvents()
}
