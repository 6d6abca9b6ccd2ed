package platform

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/marketsync/backend/internal/domain/platform"
	"github.com/marketsync/backend/internal/domain/shared"
	syncdomain "github.com/marketsync/backend/internal/domain/sync"
)

// ConnectionService handles platform connection operations
type ConnectionService struct {
	connectionRepo platform.ConnectionRepository
	clients        platform.ClientRegistry
	syncLogRepo    syncdomain.LogRepository
	eventPublisher shared.EventPublisher
}

// NewConnectionService creates a new ConnectionService
func NewConnectionService(
	connectionRepo platform.ConnectionRepository,
	clients platform.ClientRegistry,
	syncLogRepo syncdomain.LogRepository,
) *ConnectionService {
	return &ConnectionService{
		connectionRepo: connectionRepo,
		clients:        clients,
		syncLogRepo:    syncLogRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ConnectionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// List returns the org's platform connections
func (s *ConnectionService) List(ctx context.Context, orgID uuid.UUID, filter ConnectionListFilter) (*shared.Paginated[ConnectionResponse], error) {
	domainFilter := platform.ConnectionFilter{
		Filter:      shared.DefaultFilter(),
		Platform:    filter.Platform,
		IsConnected: filter.IsConnected,
	}
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

	conns, err := s.connectionRepo.FindAllForOrg(ctx, orgID, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.connectionRepo.CountForOrg(ctx, orgID, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]ConnectionResponse, 0, len(conns))
	for i := range conns {
		responses = append(responses, *ToConnectionResponse(&conns[i]))
	}
	result := shared.NewPaginated(responses, total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// GetByID returns a single connection
func (s *ConnectionService) GetByID(ctx context.Context, orgID, id uuid.UUID) (*ConnectionResponse, error) {
	conn, err := s.connectionRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	return ToConnectionResponse(conn), nil
}

// Connect validates credentials against the platform and stores the
// connection. Nothing is persisted when the connection test fails.
func (s *ConnectionService) Connect(ctx context.Context, orgID uuid.UUID, req ConnectRequest, actorID *uuid.UUID) (*ConnectionResponse, error) {
	client, err := s.clients.Get(req.Platform)
	if err != nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unsupported platform: "+req.Platform.String())
	}

	creds := platform.Credentials(req.Credentials)
	if err := client.TestConnection(ctx, creds); err != nil {
		s.appendLog(ctx, orgID, req.Platform, syncdomain.ActionTestConnection, false, err.Error())
		return nil, shared.NewDomainError("CONNECTION_TEST_FAILED",
			fmt.Sprintf("Connection test against %s failed: %v", req.Platform.DisplayName(), err))
	}
	s.appendLog(ctx, orgID, req.Platform, syncdomain.ActionTestConnection, true, "")

	settings := platform.DefaultSyncSettings()
	if req.Settings != nil {
		settings = *req.Settings
	}

	existing, err := s.connectionRepo.FindByPlatformForOrg(ctx, orgID, req.Platform)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	var conn *platform.Connection
	if existing != nil {
		if err := existing.Reconnect(req.ShopName, creds, actorID); err != nil {
			return nil, err
		}
		if err := s.connectionRepo.SaveWithLock(ctx, existing); err != nil {
			return nil, err
		}
		conn = existing
	} else {
		conn, err = platform.NewConnection(orgID, req.Platform, req.ShopName, creds, settings, actorID)
		if err != nil {
			return nil, err
		}
		if err := s.connectionRepo.Save(ctx, conn); err != nil {
			return nil, err
		}
	}

	s.publishDomainEvents(ctx, conn)
	return ToConnectionResponse(conn), nil
}

// UpdateSettings merges a partial settings update into the connection
func (s *ConnectionService) UpdateSettings(ctx context.Context, orgID, id uuid.UUID, req UpdateSettingsRequest, actorID *uuid.UUID) (*ConnectionResponse, error) {
	conn, err := s.connectionRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if err := conn.UpdateSettings(req.Patch(), actorID); err != nil {
		return nil, err
	}
	if err := s.connectionRepo.SaveWithLock(ctx, conn); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, conn)
	return ToConnectionResponse(conn), nil
}

// Disconnect clears stored credentials but keeps the connection row and
// its settings so reconnecting resumes the previous configuration.
func (s *ConnectionService) Disconnect(ctx context.Context, orgID, id uuid.UUID, actorID *uuid.UUID) (*ConnectionResponse, error) {
	conn, err := s.connectionRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	conn.Disconnect(actorID)
	if err := s.connectionRepo.SaveWithLock(ctx, conn); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, conn)
	return ToConnectionResponse(conn), nil
}

// Remove soft-deletes the connection
func (s *ConnectionService) Remove(ctx context.Context, orgID, id uuid.UUID) error {
	if _, err := s.connectionRepo.FindByIDForOrg(ctx, orgID, id); err != nil {
		return err
	}
	return s.connectionRepo.Delete(ctx, orgID, id)
}

// RefreshToken exchanges the connection's credentials for fresh ones
func (s *ConnectionService) RefreshToken(ctx context.Context, orgID, id uuid.UUID) (*ConnectionResponse, error) {
	conn, err := s.connectionRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if !conn.IsConnected {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Connection is disconnected")
	}

	client, err := s.clients.Get(conn.Platform)
	if err != nil {
		return nil, err
	}
	refresh, err := client.RefreshToken(ctx, conn.Credentials)
	if err != nil {
		s.appendLog(ctx, orgID, conn.Platform, syncdomain.ActionRefreshToken, false, err.Error())
		return nil, shared.NewDomainError("CONNECTION_TEST_FAILED",
			fmt.Sprintf("Token refresh against %s failed: %v", conn.Platform.DisplayName(), err))
	}
	if err := conn.RotateCredentials(refresh.Credentials, refresh.ExpiresAt); err != nil {
		return nil, err
	}
	if err := s.connectionRepo.SaveWithLock(ctx, conn); err != nil {
		return nil, err
	}
	s.appendLog(ctx, orgID, conn.Platform, syncdomain.ActionRefreshToken, true, "")
	s.publishDomainEvents(ctx, conn)
	return ToConnectionResponse(conn), nil
}

func (s *ConnectionService) appendLog(ctx context.Context, orgID uuid.UUID, platformType platform.Type, action syncdomain.Action, success bool, detail string) {
	if s.syncLogRepo == nil {
		return
	}
	// Audit logging must not fail the operation
	_ = s.syncLogRepo.Append(ctx, syncdomain.NewLog(orgID, nil, platformType, action, "", success, detail))
}

func (s *ConnectionService) publishDomainEvents(ctx context.Context, conn *platform.Connection) {
	if s.eventPublisher == nil {
		conn.ClearDomainEvents()
		return
	}
	events := conn.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	conn.ClearDomainEvents()
}
