package di

import (
	"github.com/lariat-data/lariat-go/core/application/services"
	"github.com/lariat-data/lariat-go/core/config"
	"github.com/lariat-data/lariat-go/core/domain/interfaces"
	"github.com/lariat-data/lariat-go/core/infrastructure/sinks"
	transporthttp "github.com/lariat-data/lariat-go/core/infrastructure/transport/http"
)

// Container holds all dependencies
type Container struct {
	Config           *config.Config
	API              interfaces.APIClient
	IndicatorService interfaces.IndicatorService
	DatasetService   interfaces.DatasetService
	QueryService     interfaces.QueryService
	SinkManager      interfaces.SinkManager
}

// NewContainer wires the transport, services and sink manager for cfg. Sinks
// are not opened until they are first used.
func NewContainer(cfg *config.Config, opts ...transporthttp.ClientOption) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	api, err := transporthttp.NewClient(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return NewContainerWithAPI(cfg, api), nil
}

// NewContainerWithAPI wires the services over an existing API client
func NewContainerWithAPI(cfg *config.Config, api interfaces.APIClient) *Container {
	indicators := services.NewIndicatorService(api)
	return &Container{
		Config:           cfg,
		API:              api,
		IndicatorService: indicators,
		DatasetService:   services.NewDatasetService(api, indicators),
		QueryService:     services.NewQueryService(api),
		SinkManager:      sinks.NewManager(),
	}
}

// Close closes all resources
func (c *Container) Close() error {
	if c.SinkManager != nil {
		return c.SinkManager.CloseAll()
	}
	return nil
}
