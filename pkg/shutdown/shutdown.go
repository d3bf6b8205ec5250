package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/lapwatch/lapwatch/pkg/logging"
)

// Manager coordinates graceful shutdown. Registered functions run in
// reverse order (LIFO) once a termination signal arrives.
type Manager struct {
	mu      sync.Mutex
	funcs   []func(context.Context) error
	timeout time.Duration
	done    chan struct{}
	once    sync.Once
	log     *logging.Logger
}

// New creates a shutdown manager. The timeout bounds the total time spent
// running shutdown functions.
func New(timeout time.Duration, log *logging.Logger) *Manager {
	return &Manager{
		timeout: timeout,
		done:    make(chan struct{}),
		log:     log,
	}
}

// Register adds a shutdown function. Functions run in reverse registration
// order.
func (m *Manager) Register(fn func(context.Context) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.funcs = append(m.funcs, fn)
}

// Wait blocks until SIGTERM or SIGINT is received.
func (m *Manager) Wait() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	m.log.Info("Received signal, initiating graceful shutdown", map[string]interface{}{
		"signal": sig.String(),
	})

	m.once.Do(func() {
		close(m.done)
	})
}

// Done returns a channel closed when shutdown has been initiated.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Shutdown runs all registered shutdown functions under the configured
// timeout.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	for i := len(m.funcs) - 1; i >= 0; i-- {
		if err := m.funcs[i](ctx); err != nil {
			m.log.Error("Shutdown function failed", map[string]interface{}{
				"index": i,
				"error": err.Error(),
			})
		}
	}
	m.log.Info("Graceful shutdown complete")
}

// StopHTTPServer adapts an http.Server into a shutdown function.
func StopHTTPServer(server interface{ Shutdown(context.Context) error }, name string, log *logging.Logger) func(context.Context) error {
	return func(ctx context.Context) error {
		log.Info("Stopping HTTP server", map[string]interface{}{"server": name})
		return server.Shutdown(ctx)
	}
}
