package sinks

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/lariat-data/lariat-go/core/config"
	"github.com/lariat-data/lariat-go/core/domain/interfaces"
	"github.com/lariat-data/lariat-go/core/infrastructure/logging"
)

// Manager manages export sinks with parallel initialization and shutdown
type Manager struct {
	open  Opener
	sinks map[string]interfaces.Sink
	mu    sync.RWMutex
}

// NewManager creates a Manager that opens sinks with Open
func NewManager() *Manager {
	return NewManagerWithOpener(Open)
}

// NewManagerWithOpener creates a Manager with a custom sink factory
func NewManagerWithOpener(open Opener) *Manager {
	return &Manager{
		open:  open,
		sinks: make(map[string]interfaces.Sink),
	}
}

// InitializeAll opens the given sinks in parallel. Sinks already open under
// the same name are kept. If any sink fails to open, the sinks opened by this
// call are closed again; sinks opened earlier stay open.
func (m *Manager) InitializeAll(ctx context.Context, configs []*config.SinkConfig) error {
	if len(configs) == 0 {
		return nil
	}

	log := logging.New("sinks")
	g, gctx := errgroup.WithContext(ctx)

	var (
		openedMu sync.Mutex
		opened   = make(map[string]interfaces.Sink)
	)
	for _, cfg := range configs {
		if _, exists := m.Get(cfg.Name); exists {
			continue
		}
		g.Go(func() error {
			log.Debugf("Opening sink '%s' (%s)", cfg.Name, cfg.Connector)
			sink, err := m.open(gctx, cfg)
			if err != nil {
				log.Debugf("Sink '%s' failed to open: %v", cfg.Name, err)
				return err
			}

			openedMu.Lock()
			opened[cfg.Name] = sink
			openedMu.Unlock()

			log.Debugf("Sink '%s' ready", cfg.Name)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if closeErr := closeSinks(opened); closeErr != nil {
			log.Warnf("cleanup after failed initialization: %v", closeErr)
		}
		return err
	}

	m.mu.Lock()
	for name, sink := range opened {
		m.sinks[name] = sink
	}
	m.mu.Unlock()
	return nil
}

// CloseAll closes all sinks in parallel and returns every error joined
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	sinks := m.sinks
	m.sinks = make(map[string]interfaces.Sink)
	m.mu.Unlock()

	if len(sinks) == 0 {
		return nil
	}

	logging.New("sinks").Debugf("Closing %d sink(s)", len(sinks))
	return closeSinks(sinks)
}

func closeSinks(sinks map[string]interfaces.Sink) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for name, sink := range sinks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sink.Close(); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("sink '%s': %w", name, err))
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return stderrors.Join(errs...)
}

// Get returns a sink by name
func (m *Manager) Get(name string) (interfaces.Sink, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sink, ok := m.sinks[name]
	return sink, ok
}

// Names returns the names of the open sinks, sorted
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.sinks))
	for name := range m.sinks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of open sinks
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sinks)
}
