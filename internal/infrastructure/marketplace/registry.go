package marketplace

import (
	"sort"

	"github.com/marketsync/backend/internal/domain/platform"
)

// Registry resolves marketplace clients by platform type
type Registry struct {
	clients map[platform.Type]platform.Client
}

// NewRegistry builds a registry with a client for every supported platform
func NewRegistry(cfg Config) *Registry {
	return &Registry{
		clients: map[platform.Type]platform.Client{
			platform.TypeShopee:   NewShopeeClient(cfg),
			platform.TypeRuten:    NewRutenClient(cfg),
			platform.TypeMomo:     NewRESTClient(platform.TypeMomo, cfg),
			platform.TypeShopline: NewRESTClient(platform.TypeShopline, cfg),
			platform.TypePchome:   NewRESTClient(platform.TypePchome, cfg),
			platform.TypeYahoo:    NewRESTClient(platform.TypeYahoo, cfg),
		},
	}
}

// NewRegistryWithClients builds a registry from explicit clients, used in tests
func NewRegistryWithClients(clients ...platform.Client) *Registry {
	m := make(map[platform.Type]platform.Client, len(clients))
	for _, c := range clients {
		m[c.Type()] = c
	}
	return &Registry{clients: m}
}

// Get returns the client for a platform
func (r *Registry) Get(platformType platform.Type) (platform.Client, error) {
	client, ok := r.clients[platformType]
	if !ok {
		return nil, platform.ErrPlatformNotSupported
	}
	return client, nil
}

// List returns all registered clients ordered by platform type
func (r *Registry) List() []platform.Client {
	clients := make([]platform.Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].Type() < clients[j].Type()
	})
	return clients
}

// Ensure Registry implements the ClientRegistry port
var _ platform.ClientRegistry = (*Registry)(nil)
