// Package client is the entry point for applications using lariat-go.
//
// A Client holds the configuration for one API session and exposes the
// indicator catalog, dataset catalog and metric queries:
//
//	cfg, err := config.Load(config.WithCredentials(apiKey, appKey))
//	if err != nil {
//	    return err
//	}
//	c, err := client.New(cfg)
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	q, err := domain.NewQueryRequest(42, from, to, domain.WithGroupBy("country"))
//	if err != nil {
//	    return err
//	}
//	result, err := c.Query(ctx, q)
//	if err != nil {
//	    return err
//	}
//	return result.ToCSV("metrics.csv")
//
// Every call blocks until the API responds or ctx is done. Nothing is cached
// and failed calls are not retried.
package client

import (
	"context"
	"fmt"

	"github.com/lariat-data/lariat-go/core/config"
	"github.com/lariat-data/lariat-go/core/domain"
	"github.com/lariat-data/lariat-go/core/domain/interfaces"
	"github.com/lariat-data/lariat-go/core/infrastructure/di"
	transporthttp "github.com/lariat-data/lariat-go/core/infrastructure/transport/http"
	"github.com/lariat-data/lariat-go/core/shared/errors"
)

// Option customizes a Client
type Option func(*options)

type options struct {
	clientOpts []transporthttp.ClientOption
	api        interfaces.APIClient
}

// WithClientOptions passes options to the HTTP transport
func WithClientOptions(opts ...transporthttp.ClientOption) Option {
	return func(o *options) {
		o.clientOpts = append(o.clientOpts, opts...)
	}
}

// WithAPIClient replaces the HTTP transport entirely
func WithAPIClient(api interfaces.APIClient) Option {
	return func(o *options) {
		o.api = api
	}
}

// Client is a session against the public API
type Client struct {
	container *di.Container
}

// New creates a Client. The configuration is copied, so later changes to cfg
// have no effect on the client.
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.NewAppError(errors.ErrCodeConfigError, "configuration is required", nil)
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	cfg = cfg.Clone()
	if o.api != nil {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return &Client{container: di.NewContainerWithAPI(cfg, o.api)}, nil
	}

	container, err := di.NewContainer(cfg, o.clientOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{container: container}, nil
}

// Config returns a copy of the client's configuration
func (c *Client) Config() *config.Config {
	return c.container.Config.Clone()
}

// Indicators returns the indicator catalog
func (c *Client) Indicators() interfaces.IndicatorService {
	return c.container.IndicatorService
}

// Datasets returns the dataset catalog
func (c *Client) Datasets() interfaces.DatasetService {
	return c.container.DatasetService
}

// Query sends q in a single request and returns the materialized result
func (c *Client) Query(ctx context.Context, q domain.MetricsQuery) (*domain.QueryResult, error) {
	return c.container.QueryService.Query(ctx, q)
}

// Export writes result to the named sink from the configuration, opening
// the sink on first use. Open sinks are kept until Close.
func (c *Client) Export(ctx context.Context, result *domain.QueryResult, sinkName string) error {
	if result == nil {
		return errors.Validation("result is required")
	}
	sink, err := c.sink(ctx, sinkName)
	if err != nil {
		return err
	}
	return sink.Write(ctx, result.Table())
}

func (c *Client) sink(ctx context.Context, name string) (interfaces.Sink, error) {
	manager := c.container.SinkManager
	if sink, ok := manager.Get(name); ok {
		return sink, nil
	}
	cfg, err := c.container.Config.Sink(name)
	if err != nil {
		return nil, err
	}
	named := *cfg
	named.Name = name
	if err := manager.InitializeAll(ctx, []*config.SinkConfig{&named}); err != nil {
		return nil, err
	}
	sink, ok := manager.Get(name)
	if !ok {
		return nil, errors.NewAppError(errors.ErrCodeInternalError, fmt.Sprintf("sink '%s' did not open", name), nil)
	}
	return sink, nil
}

// Close releases any open sinks
func (c *Client) Close() error {
	return c.container.Close()
}
