// Package endpoints holds the built-in pathops.Endpoint implementations and a
// registry that builds them from configuration.
package endpoints

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/brettbedarf/pathops"
	"github.com/brettbedarf/pathops/config"
	"github.com/brettbedarf/pathops/internal/util"
)

// Provider builds endpoints of one type from configuration.
type Provider interface {
	NewEndpoint(cfg config.EndpointConfig) (pathops.Endpoint, error)
}

// ProviderFunc adapts a plain function to a Provider.
type ProviderFunc func(cfg config.EndpointConfig) (pathops.Endpoint, error)

func (f ProviderFunc) NewEndpoint(cfg config.EndpointConfig) (pathops.Endpoint, error) {
	return f(cfg)
}

// Registry maps endpoint types to their providers. It is safe for concurrent use.
type Registry struct {
	providers *xsync.Map[string, Provider]
}

func NewRegistry() *Registry {
	return &Registry{providers: xsync.NewMap[string, Provider]()}
}

// Register ties a provider to an endpoint type. The first registration of a
// type wins; later ones are ignored.
func (r *Registry) Register(endpointType string, provider Provider) {
	if _, loaded := r.providers.LoadOrStore(endpointType, provider); loaded {
		logger := util.GetLogger("endpoints.registry")
		logger.Debug().Str("type", endpointType).Msg("Provider already registered")
	}
}

// GetProvider returns the provider registered for endpointType.
func (r *Registry) GetProvider(endpointType string) (Provider, error) {
	provider, ok := r.providers.Load(endpointType)
	if !ok {
		return nil, fmt.Errorf("no provider for endpoint type %q", endpointType)
	}
	return provider, nil
}

// NewEndpoint builds an endpoint from cfg using the provider registered for
// cfg.Type. An empty cfg.Name is replaced with a generated one.
func (r *Registry) NewEndpoint(cfg config.EndpointConfig) (pathops.Endpoint, error) {
	provider, err := r.GetProvider(cfg.Type)
	if err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = cfg.Type + "-" + uuid.NewString()
	}
	return provider.NewEndpoint(cfg)
}

var defaultRegistry = NewRegistry()

// Register adds a provider to the default registry.
func Register(endpointType string, provider Provider) {
	defaultRegistry.Register(endpointType, provider)
}

// New builds an endpoint from cfg using the default registry. Providers must
// be registered first, see [RegisterBuiltins].
func New(cfg config.EndpointConfig) (pathops.Endpoint, error) {
	return defaultRegistry.NewEndpoint(cfg)
}
