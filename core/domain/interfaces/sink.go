package interfaces

import (
	"context"

	"github.com/lariat-data/lariat-go/core/config"
	"github.com/lariat-data/lariat-go/core/domain"
)

// Sink is a destination query results can be exported to
type Sink interface {
	// Write appends the table's rows to the destination
	Write(ctx context.Context, table *domain.Table) error

	// Close releases the sink's resources
	Close() error
}

// SinkManager defines the interface for managing sinks
type SinkManager interface {
	// InitializeAll opens all sinks in parallel from the given configurations
	InitializeAll(ctx context.Context, sinks []*config.SinkConfig) error

	// CloseAll closes all sinks in parallel
	CloseAll() error

	// Get returns a sink by name
	Get(name string) (Sink, bool)

	// Count returns the number of managed sinks
	Count() int
}
