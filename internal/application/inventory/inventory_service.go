package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/marketsync/backend/internal/domain/inventory"
	"github.com/marketsync/backend/internal/domain/shared"
)

// Service handles inventory ledger operations
type Service struct {
	itemRepo       inventory.InventoryItemRepository
	movementRepo   inventory.StockMovementRepository
	eventPublisher shared.EventPublisher
}

// NewService creates a new inventory Service
func NewService(itemRepo inventory.InventoryItemRepository, movementRepo inventory.StockMovementRepository) *Service {
	return &Service{
		itemRepo:     itemRepo,
		movementRepo: movementRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// List returns inventory items for an org
func (s *Service) List(ctx context.Context, orgID uuid.UUID, filter ItemListFilter) (*shared.Paginated[ItemResponse], error) {
	domainFilter := s.toDomainFilter(filter)

	items, err := s.itemRepo.FindAllForOrg(ctx, orgID, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.itemRepo.CountForOrg(ctx, orgID, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]ItemResponse, 0, len(items))
	for i := range items {
		responses = append(responses, *ToItemResponse(&items[i]))
	}
	result := shared.NewPaginated(responses, total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// GetByID returns a single inventory item
func (s *Service) GetByID(ctx context.Context, orgID, id uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	return ToItemResponse(item), nil
}

// GetByProduct returns every tracked SKU of a product
func (s *Service) GetByProduct(ctx context.Context, orgID, productID uuid.UUID) ([]ItemResponse, error) {
	items, err := s.itemRepo.FindByProductForOrg(ctx, orgID, productID)
	if err != nil {
		return nil, err
	}
	responses := make([]ItemResponse, 0, len(items))
	for i := range items {
		responses = append(responses, *ToItemResponse(&items[i]))
	}
	return responses, nil
}

// Create registers stock tracking for a SKU, optionally seeding stock
func (s *Service) Create(ctx context.Context, orgID uuid.UUID, req CreateItemRequest, actorID *uuid.UUID) (*ItemResponse, error) {
	if existing, err := s.itemRepo.FindBySKUForOrg(ctx, orgID, req.SKU); err == nil && existing != nil {
		return nil, shared.ErrAlreadyExists
	}

	item, err := inventory.NewInventoryItem(orgID, req.ProductID, req.SKU)
	if err != nil {
		return nil, err
	}
	item.VariantID = req.VariantID
	if req.ProductName != "" || req.Price != nil {
		price := item.Price
		if req.Price != nil {
			price = *req.Price
		}
		if err := item.SetListing(req.ProductName, price, actorID); err != nil {
			return nil, err
		}
	}
	if req.LowStockThreshold != nil {
		if err := item.SetLowStockThreshold(*req.LowStockThreshold, actorID); err != nil {
			return nil, err
		}
	}
	if req.WarehouseLocation != "" {
		item.SetWarehouseLocation(req.WarehouseLocation, actorID)
	}
	if actorID != nil {
		item.SetCreatedBy(*actorID)
	}

	var movement *inventory.StockMovement
	if req.InitialStock > 0 {
		movement, err = item.Adjust(req.InitialStock, inventory.ChangeTypeRestock, inventory.ManualRef(), "initial stock", actorID)
		if err != nil {
			return nil, err
		}
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	if movement != nil {
		if err := s.movementRepo.Append(ctx, movement); err != nil {
			return nil, err
		}
	}
	s.publishDomainEvents(ctx, item)
	return ToItemResponse(item), nil
}

// Adjust applies a signed stock delta and records the ledger entry
func (s *Service) Adjust(ctx context.Context, orgID, id uuid.UUID, req AdjustStockRequest, actorID *uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	movement, err := item.Adjust(req.Delta, inventory.ChangeType(req.ChangeType), inventory.ManualRef(), req.Reason, actorID)
	if err != nil {
		return nil, err
	}

	if err := s.itemRepo.SaveWithLock(ctx, item); err != nil {
		return nil, err
	}
	if err := s.movementRepo.Append(ctx, movement); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, item)
	return ToItemResponse(item), nil
}

// Reserve holds stock for an open order
func (s *Service) Reserve(ctx context.Context, orgID, id uuid.UUID, req ReserveStockRequest, actorID *uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if err := item.Reserve(req.Quantity, actorID); err != nil {
		return nil, err
	}
	if err := s.itemRepo.SaveWithLock(ctx, item); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, item)
	return ToItemResponse(item), nil
}

// Release returns reserved stock to the available pool
func (s *Service) Release(ctx context.Context, orgID, id uuid.UUID, req ReleaseStockRequest, actorID *uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if err := item.Release(req.Quantity, actorID); err != nil {
		return nil, err
	}
	if err := s.itemRepo.SaveWithLock(ctx, item); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, item)
	return ToItemResponse(item), nil
}

// UpdateListing changes the product name and price pushed to platforms
func (s *Service) UpdateListing(ctx context.Context, orgID, id uuid.UUID, req UpdateListingRequest, actorID *uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if err := item.SetListing(req.ProductName, req.Price, actorID); err != nil {
		return nil, err
	}
	if err := s.itemRepo.SaveWithLock(ctx, item); err != nil {
		return nil, err
	}
	return ToItemResponse(item), nil
}

// UpdateThreshold changes the low stock threshold
func (s *Service) UpdateThreshold(ctx context.Context, orgID, id uuid.UUID, req UpdateThresholdRequest, actorID *uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if err := item.SetLowStockThreshold(req.LowStockThreshold, actorID); err != nil {
		return nil, err
	}
	if err := s.itemRepo.SaveWithLock(ctx, item); err != nil {
		return nil, err
	}
	return ToItemResponse(item), nil
}

// UpdateLocation changes the warehouse location label
func (s *Service) UpdateLocation(ctx context.Context, orgID, id uuid.UUID, req UpdateLocationRequest, actorID *uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	item.SetWarehouseLocation(req.WarehouseLocation, actorID)
	if err := s.itemRepo.SaveWithLock(ctx, item); err != nil {
		return nil, err
	}
	return ToItemResponse(item), nil
}

// Movements returns the stock movement ledger
func (s *Service) Movements(ctx context.Context, orgID uuid.UUID, filter MovementListFilter) (*shared.Paginated[MovementResponse], error) {
	domainFilter := inventory.MovementFilter{
		Filter:          shared.DefaultFilter(),
		InventoryItemID: filter.InventoryItemID,
		ProductID:       filter.ProductID,
	}
	if filter.ChangeType != "" {
		ct := inventory.ChangeType(filter.ChangeType)
		domainFilter.ChangeType = &ct
	}
	if filter.ReferenceType != "" {
		rt := inventory.ReferenceType(filter.ReferenceType)
		domainFilter.ReferenceType = &rt
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.OrderBy = "recorded_at"

	movements, err := s.movementRepo.FindAllForOrg(ctx, orgID, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.movementRepo.CountForOrg(ctx, orgID, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]MovementResponse, 0, len(movements))
	for i := range movements {
		responses = append(responses, *ToMovementResponse(&movements[i]))
	}
	result := shared.NewPaginated(responses, total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// Stats summarizes the org's stock position
func (s *Service) Stats(ctx context.Context, orgID uuid.UUID) (*inventory.Stats, error) {
	return s.itemRepo.StatsForOrg(ctx, orgID)
}

func (s *Service) toDomainFilter(filter ItemListFilter) inventory.InventoryFilter {
	domainFilter := inventory.InventoryFilter{
		Filter:     shared.DefaultFilter(),
		ProductID:  filter.ProductID,
		SKU:        filter.SKU,
		LowStock:   filter.LowStock,
		OutOfStock: filter.OutOfStock,
	}
	domainFilter.Search = filter.Search
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	return domainFilter
}

func (s *Service) publishDomainEvents(ctx context.Context, item *inventory.InventoryItem) {
	if s.eventPublisher == nil {
		item.ClearDomainEvents()
		return
	}
	events := item.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	item.ClearDomainEvents()
}
