package viridian

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/viridianmc/viridian/api"
	"github.com/viridianmc/viridian/config"
	"github.com/viridianmc/viridian/network"
	"github.com/viridianmc/viridian/status"
	"github.com/viridianmc/viridian/task"
)

var (
	requestsServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "viridian",
		Name:      "requests_total",
		Help:      "The total number of served requests by kind",
	}, []string{"kind"})
	faviconCacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "viridian",
		Name:      "favicon_cache_entries",
		Help:      "The current number of cached favicons",
	})
)

var ErrAlreadyStarted = errors.New("server was already started")

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

// FaviconPrecomputer is implemented by resolvers that can enumerate the
// favicon sources they may hand out, so the cache can be warmed at
// startup instead of on the first request.
type FaviconPrecomputer interface {
	FaviconSources() []status.FaviconSource
}

// Server is the explicit core object every component hangs off; there
// is no hidden process-wide state. It implements network.Handler and
// api.Reloader.
type Server struct {
	log        zerolog.Logger
	readConfig config.Reader
	resolver   status.Resolver
	tracker    status.Tracker

	assembler status.Assembler
	favicons  *status.FaviconCache
	samples   *status.SampleBuilder
	network   *network.Manager

	apiBind          string
	enablePrometheus bool

	mu             sync.Mutex
	state          State
	scheduler      *task.Scheduler
	adminAPI       api.API
	loginMessages  []string
	playerTracking bool
}

func NewServer(readConfig config.Reader, resolver status.Resolver, loader status.FaviconLoader, tracker status.Tracker, listen network.ListenFunc, log zerolog.Logger) (*Server, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}

	faviconPolicy, err := cachePolicyFromSpec(cfg.Caches.Favicon)
	if err != nil {
		return nil, err
	}
	samplePolicy, err := cachePolicyFromSpec(cfg.Caches.PlayerSample)
	if err != nil {
		return nil, err
	}

	favicons := status.NewFaviconCache(loader, faviconPolicy, log.With().Str("component", "favicon-cache").Logger())
	samples := status.NewSampleBuilder(nil, samplePolicy)

	server := &Server{
		log:        log,
		readConfig: readConfig,
		resolver:   resolver,
		tracker:    tracker,
		assembler:  status.NewAssembler(resolver, favicons, samples),
		favicons:   favicons,
		samples:    samples,
		scheduler:  task.NewScheduler(log.With().Str("component", "scheduler").Logger()),

		apiBind:          cfg.APIBind,
		enablePrometheus: cfg.EnablePrometheus,
	}
	server.ConfigChanged(cfg)

	manager, err := network.NewManager(server, cfg, listen, log.With().Str("component", "network").Logger())
	if err != nil {
		return nil, err
	}
	server.network = manager
	return server, nil
}

// cachePolicyFromSpec maps an empty spec to a nil policy, which
// disables the cache in question.
func cachePolicyFromSpec(spec string) (*status.CachePolicy, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}
	policy, err := status.ParseCachePolicy(spec)
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

// BuildResponse is the request-processing entry point for modern
// status queries.
func (server *Server) BuildResponse(client status.Client) status.PingResponse {
	requestsServed.WithLabelValues("status").Inc()
	return server.assembler.Build(client)
}

// BuildLegacyResponse serves old-protocol clients.
func (server *Server) BuildLegacyResponse(client status.Client) status.PingResponse {
	requestsServed.WithLabelValues("legacy").Inc()
	return server.assembler.BuildLegacy(client)
}

// HandleLogin picks the login message shown to a connecting player and,
// when tracking is enabled, notifies the tracker off the request path.
func (server *Server) HandleLogin(client status.Client, name string) string {
	requestsServed.WithLabelValues("login").Inc()

	server.mu.Lock()
	messages := server.loginMessages
	tracking := server.playerTracking
	scheduler := server.scheduler
	server.mu.Unlock()

	if tracking {
		addr := client.Addr
		scheduler.RunOnce(func() {
			server.tracker.NotifyConnect(addr, "", name)
		})
	}

	return status.SelectLoginMessage(messages, name)
}

func (server *Server) FaviconCache() *status.FaviconCache {
	return server.favicons
}

// ConfigChanged recomputes everything derived from the config.
func (server *Server) ConfigChanged(cfg config.Config) {
	messages := make([]string, len(cfg.Login.Messages))
	copy(messages, cfg.Login.Messages)

	server.mu.Lock()
	server.loginMessages = messages
	server.playerTracking = cfg.PlayerTracking
	server.mu.Unlock()
}

// ReloadFaviconCache rebuilds the favicon cache under the given policy,
// or disables it when the policy is nil.
func (server *Server) ReloadFaviconCache(policy *status.CachePolicy) {
	server.favicons.Reload(policy)
}

// ReloadConfig re-reads the configuration and applies it, rebuilding
// both caches under their (possibly changed) policies.
func (server *Server) ReloadConfig() error {
	cfg, err := server.readConfig()
	if err != nil {
		return err
	}
	faviconPolicy, err := cachePolicyFromSpec(cfg.Caches.Favicon)
	if err != nil {
		return err
	}
	samplePolicy, err := cachePolicyFromSpec(cfg.Caches.PlayerSample)
	if err != nil {
		return err
	}

	server.ConfigChanged(cfg)
	server.ReloadFaviconCache(faviconPolicy)
	server.samples.Reload(samplePolicy)
	server.log.Info().Msg("configuration reloaded")
	return nil
}

// Start brings the server from Stopped to Running. A transport start
// failure triggers a best-effort Stop before it is reported.
func (server *Server) Start() error {
	server.mu.Lock()
	if server.state != Stopped {
		server.mu.Unlock()
		return ErrAlreadyStarted
	}
	server.state = Starting
	// A Stop drains its scheduler for good, so every start gets a
	// fresh one.
	scheduler := task.NewScheduler(server.log.With().Str("component", "scheduler").Logger())
	server.scheduler = scheduler
	server.mu.Unlock()

	if err := server.network.Start(); err != nil {
		if stopErr := server.Stop(); stopErr != nil {
			server.log.Error().Err(stopErr).Msg("cleanup after failed start")
		}
		return err
	}

	if precomputer, ok := server.resolver.(FaviconPrecomputer); ok {
		sources := precomputer.FaviconSources()
		scheduler.RunOnce(func() {
			for _, source := range sources {
				server.favicons.Get(source)
			}
		})
	}
	scheduler.RunRepeating(server.upkeep, time.Minute)

	if server.apiBind != "" {
		adminAPI := api.NewAPI(server, server.apiBind, server.enablePrometheus)
		server.mu.Lock()
		server.adminAPI = adminAPI
		server.mu.Unlock()
		go func() {
			if err := adminAPI.Run(); err != nil {
				server.log.Debug().Err(err).Msg("admin api stopped")
			}
		}()
	}

	server.mu.Lock()
	server.state = Running
	server.mu.Unlock()
	server.log.Info().Msg("server started")
	return nil
}

// Stop tears the server down. Even when the transport refuses to stop,
// the remaining teardown still runs and all errors are aggregated.
// Stopping an already stopped server is a no-op.
func (server *Server) Stop() error {
	server.mu.Lock()
	if server.state == Stopped {
		server.mu.Unlock()
		server.log.Debug().Msg("server already stopped, nothing to do")
		return nil
	}
	server.state = Stopping
	adminAPI := server.adminAPI
	server.adminAPI = nil
	scheduler := server.scheduler
	server.mu.Unlock()

	errs := []error{server.network.Stop()}
	if adminAPI != nil {
		errs = append(errs, adminAPI.Close())
	}
	scheduler.Stop()

	server.mu.Lock()
	server.state = Stopped
	server.mu.Unlock()
	server.log.Info().Msg("server stopped")
	return errors.Join(errs...)
}

func (server *Server) State() State {
	server.mu.Lock()
	defer server.mu.Unlock()
	return server.state
}

// ProcessCommand handles one console command line. Tokens are split on
// whitespace with empty tokens dropped; quoting is not supported. It
// reports whether the server was stopped.
func (server *Server) ProcessCommand(line string) bool {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false
	}
	switch args[0] {
	case "stop":
		if err := server.Stop(); err != nil {
			server.log.Error().Err(err).Msg("errors during stop")
		}
		return true
	case "reload":
		if err := server.ReloadConfig(); err != nil {
			server.log.Error().Err(err).Msg("reload failed")
		}
	default:
		server.log.Info().Str("command", args[0]).Msg("unknown command")
	}
	return false
}

func (server *Server) upkeep() {
	faviconCacheEntries.Set(float64(server.favicons.Len()))
}
