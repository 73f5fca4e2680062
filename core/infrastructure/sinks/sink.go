package sinks

import (
	"context"
	"fmt"
	"time"

	"github.com/lariat-data/lariat-go/core/config"
	"github.com/lariat-data/lariat-go/core/domain"
	"github.com/lariat-data/lariat-go/core/domain/interfaces"
	"github.com/lariat-data/lariat-go/core/observability"
	"github.com/lariat-data/lariat-go/core/shared/errors"
)

// Default destination names used when a sink sets no option
const (
	DefaultTable      = "lariat_results"
	DefaultCollection = "lariat_results"
	DefaultRedisKey   = "lariat:results"
)

// Opener creates a sink from its configuration
type Opener func(ctx context.Context, cfg *config.SinkConfig) (interfaces.Sink, error)

// Open creates a sink based on the configured connector. The returned sink
// records write metrics and spans.
func Open(ctx context.Context, cfg *config.SinkConfig) (interfaces.Sink, error) {
	if cfg == nil {
		return nil, errors.NewAppError(errors.ErrCodeConfigError, "sink configuration is required", nil)
	}
	if cfg.ConnectionString == "" {
		return nil, errors.NewAppError(errors.ErrCodeConfigError, fmt.Sprintf("sink '%s' missing connection string", cfg.Name), nil)
	}

	var (
		sink interfaces.Sink
		err  error
	)
	switch cfg.Connector {
	case config.ConnectorCSV:
		sink, err = NewCSVSink(cfg.ConnectionString)
	case config.ConnectorJSON:
		sink, err = NewJSONSink(cfg.ConnectionString)
	case config.ConnectorPostgres:
		sink, err = NewPostgresSink(ctx, cfg.ConnectionString, cfg.Option("table", DefaultTable))
	case config.ConnectorMySQL:
		sink, err = NewMySQLSink(ctx, cfg.ConnectionString, cfg.Option("table", DefaultTable))
	case config.ConnectorMongoDB:
		sink, err = NewMongoDBSink(ctx, cfg.ConnectionString, cfg.Option("database", ""), cfg.Option("collection", DefaultCollection))
	case config.ConnectorRedis:
		sink, err = NewRedisSink(ctx, cfg.ConnectionString, cfg.Option("key", DefaultRedisKey))
	default:
		return nil, errors.NewAppError(errors.ErrCodeConfigError,
			fmt.Sprintf("unsupported connector '%s' for sink '%s'", cfg.Connector, cfg.Name), nil)
	}
	if err != nil {
		return nil, errors.WrapError(errors.ErrCodeIOError, fmt.Sprintf("failed to open sink '%s'", cfg.Name), err)
	}
	return &instrumented{name: cfg.Name, kind: cfg.Connector, sink: sink}, nil
}

// instrumented wraps a sink with tracing and write metrics
type instrumented struct {
	name string
	kind string
	sink interfaces.Sink
}

func (s *instrumented) Write(ctx context.Context, table *domain.Table) (err error) {
	if table == nil {
		return errors.Validation("table is required")
	}
	ctx, span := observability.StartSpan(ctx, "lariat.sink.write", map[string]any{
		observability.AttrSinkName: s.name,
		observability.AttrSinkKind: s.kind,
		observability.AttrRowCount: table.Len(),
	})
	start := time.Now()
	defer func() {
		observability.RecordSinkWrite(ctx, s.name, s.kind, table.Len(), err == nil, float64(time.Since(start).Milliseconds()))
		observability.EndSpan(span, err)
	}()

	if err = s.sink.Write(ctx, table); err != nil {
		return errors.WrapError(errors.ErrCodeIOError, fmt.Sprintf("sink '%s' write failed", s.name), err)
	}
	return nil
}

func (s *instrumented) Close() error {
	return s.sink.Close()
}
