package network

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/pires/go-proxyproto"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/viridianmc/viridian/config"
	"github.com/viridianmc/viridian/status"
)

var connectionsRefused = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "viridian",
	Name:      "connections_refused_total",
	Help:      "The total number of connections refused by the rate limiter",
})

var (
	ErrAlreadyStarted = errors.New("network manager was already started")
	ErrNotRunning     = errors.New("network manager is not running")
)

// Handler is the request-processing side the transport calls into.
type Handler interface {
	BuildResponse(client status.Client) status.PingResponse
	BuildLegacyResponse(client status.Client) status.PingResponse
	HandleLogin(client status.Client, name string) string
}

type State byte

const (
	Stopped State = iota
	Starting
	Running
	Stopping
)

func (state State) String() string {
	var text string
	switch state {
	case Stopped:
		text = "Stopped"
	case Starting:
		text = "Starting"
	case Running:
		text = "Running"
	case Stopping:
		text = "Stopping"
	}
	return text
}

// ListenFunc opens the listener Start serves on; injectable so the
// binary can hand in a tableflip listener and tests an ephemeral port.
type ListenFunc func(addr string) (net.Listener, error)

func DefaultListen(addr string) (net.Listener, error) {
	return net.Listen("tcp", addr)
}

// Manager owns the listener and the per-connection protocol handling.
type Manager struct {
	addr                *net.TCPAddr
	handler             Handler
	listen              ListenFunc
	limiter             ConnectionLimiter
	log                 zerolog.Logger
	ioDeadline          time.Duration
	numberOfListeners   int
	acceptProxyProtocol bool

	mu       sync.Mutex
	state    State
	listener net.Listener
}

// NewManager resolves the configured bind address up front; an address
// that does not resolve aborts startup entirely.
func NewManager(handler Handler, cfg config.Config, listen ListenFunc, log zerolog.Logger) (*Manager, error) {
	addr, err := net.ResolveTCPAddr("tcp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("resolving bind address %q: %w", cfg.Address, err)
	}
	if listen == nil {
		listen = DefaultListen
	}
	listeners := cfg.NumberOfListeners
	if listeners < 1 {
		listeners = 1
	}
	var limiter ConnectionLimiter = AlwaysAllowConnection{}
	if cfg.ConnectionLimit > 0 {
		limiter = NewRateLimiter(cfg.ConnectionLimit, cfg.ConnectionCooldownDuration())
	}
	return &Manager{
		addr:                addr,
		handler:             handler,
		listen:              listen,
		limiter:             limiter,
		log:                 log,
		ioDeadline:          cfg.IODeadlineDuration(),
		numberOfListeners:   listeners,
		acceptProxyProtocol: cfg.AcceptProxyProtocol,
	}, nil
}

// Start binds the listener and runs the accept loops. A bind failure
// triggers a best-effort Stop before it is reported.
func (manager *Manager) Start() error {
	manager.mu.Lock()
	if manager.state != Stopped {
		manager.mu.Unlock()
		return ErrAlreadyStarted
	}
	manager.state = Starting
	manager.mu.Unlock()

	listener, err := manager.listen(manager.addr.String())
	if err != nil {
		manager.log.Error().Err(err).Msg("failed to bind listener")
		manager.mu.Lock()
		manager.state = Stopped
		manager.mu.Unlock()
		return err
	}

	if manager.acceptProxyProtocol {
		policyFunc := func(upstream net.Addr) (proxyproto.Policy, error) {
			return proxyproto.REQUIRE, nil
		}
		listener = &proxyproto.Listener{
			Listener: listener,
			Policy:   policyFunc,
		}
	}

	manager.mu.Lock()
	manager.listener = listener
	manager.state = Running
	manager.mu.Unlock()

	for i := 0; i < manager.numberOfListeners; i++ {
		go manager.serveListener(listener)
	}
	manager.log.Info().Str("addr", manager.addr.String()).Int("listeners", manager.numberOfListeners).Msg("network manager running")
	return nil
}

// Stop closes the listener. Invoking it while already stopped is a
// no-op that reports nothing to do.
func (manager *Manager) Stop() error {
	manager.mu.Lock()
	if manager.state == Stopped {
		manager.mu.Unlock()
		manager.log.Debug().Msg("network manager already stopped, nothing to do")
		return nil
	}
	manager.state = Stopping
	listener := manager.listener
	manager.listener = nil
	manager.mu.Unlock()

	var err error
	if listener != nil {
		err = listener.Close()
	}

	manager.mu.Lock()
	manager.state = Stopped
	manager.mu.Unlock()
	return err
}

func (manager *Manager) State() State {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	return manager.state
}

func (manager *Manager) serveListener(listener net.Listener) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				manager.log.Debug().Msg("listener was closed, stopping with accepting calls")
				break
			}
			manager.log.Info().Err(err).Msg("accept failed")
			continue
		}
		if !manager.limiter.Allow(conn.RemoteAddr()) {
			connectionsRefused.Inc()
			conn.Close()
			continue
		}
		go manager.handleConnection(conn)
	}
}
