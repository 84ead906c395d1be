// Package app wires the configuration into a running service: session
// manager, audit store, metrics sinks, optional MQTT feed and the HTTP API.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apiaudit "github.com/voyagent/tripmend/api/audit"
	apisession "github.com/voyagent/tripmend/api/session"
	"github.com/voyagent/tripmend/config"
	"github.com/voyagent/tripmend/core/audit"
	"github.com/voyagent/tripmend/core/classify"
	"github.com/voyagent/tripmend/core/events"
	"github.com/voyagent/tripmend/core/executor"
	coremetrics "github.com/voyagent/tripmend/core/metrics"
	coremon "github.com/voyagent/tripmend/core/monitoring"
	"github.com/voyagent/tripmend/core/repair"
	"github.com/voyagent/tripmend/core/replan"
	"github.com/voyagent/tripmend/core/session"
	"github.com/voyagent/tripmend/core/travel"
	"github.com/voyagent/tripmend/infra/logger"
	"github.com/voyagent/tripmend/infra/metrics"
	"github.com/voyagent/tripmend/infra/monitoring"
	"github.com/voyagent/tripmend/infra/mqtt"
	"github.com/voyagent/tripmend/internal/eventbus"
)

// pendingGaugeInterval is how often the pending-session gauge is refreshed.
const pendingGaugeInterval = 30 * time.Second

// Service holds the wired components of one tripmend instance.
type Service struct {
	Manager *session.Manager
	Store   audit.Store
	Bus     *eventbus.Bus
	Pending *eventbus.TypedBus[events.PendingEvent]

	feed    *mqtt.Feed
	monitor coremon.Monitor
	cfg     *config.Config
	log     logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.MetricsSink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	var store audit.Store = audit.NopStore{}
	if cfg.Audit.Backend == "jsonl" {
		s, err := audit.NewJSONLStore(cfg.Audit.Path)
		if err != nil {
			return nil, fmt.Errorf("audit store: %w", err)
		}
		store = s
	}

	monitor, err := monitoring.NewSentryMonitor(cfg.Sentry, logg)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}

	bus := eventbus.New()
	pendingBus := eventbus.NewTyped[events.PendingEvent]()
	estimator := travel.HaversineEstimator{}
	engine := repair.NewEngine(cfg.Repair, estimator, logger.New("repair"))
	replanner := replan.NewGreedyReplanner(estimator, logger.New("replan"))
	dispatcher := executor.NewDispatcher(engine, replanner, store, sink, bus, logger.New("executor"))

	gauge, _ := sink.(coremetrics.PendingGauge)
	manager := session.NewManager(session.Deps{
		Dispatcher:   dispatcher,
		Engine:       classify.NewDecisionEngine(logger.New("classify")),
		Orchestrator: classify.NewOrchestrator(logger.New("orchestrator")),
		Bus:          bus,
		Pending:      pendingBus,
		Log:          logg,
		Thresholds:   cfg.Engine.Thresholds(),
	}, gauge)

	svc := &Service{
		Manager: manager,
		Store:   store,
		Bus:     bus,
		Pending: pendingBus,
		monitor: monitor,
		cfg:     cfg,
		log:     logg,
	}

	if cfg.MQTT.Broker != "" {
		feed, err := mqtt.NewFeed(cfg.MQTT, manager, pendingBus)
		if err != nil {
			return nil, fmt.Errorf("mqtt feed: %w", err)
		}
		svc.feed = feed
	}
	return svc, nil
}

// Run starts the HTTP API and metric servers and blocks until the context
// is cancelled.
func (s *Service) Run(ctx context.Context) error {
	defer s.monitor.Recover()

	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	go s.refreshPendingGauge(ctx)

	mux := http.NewServeMux()
	mux.Handle("/api/audit/logs", apiaudit.NewLogHandler(s.Store, s.cfg.API.Token))
	mux.Handle("/api/", apisession.NewHandler(s.Manager, s.cfg.API.Token))
	srv := &http.Server{Addr: s.cfg.API.Addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api shutdown: %v", err)
		}
	}()

	s.log.Infof("tripmend listening on %s", s.cfg.API.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.monitor.CaptureException(err, map[string]string{"component": "api"})
		return err
	}
	return nil
}

func (s *Service) refreshPendingGauge(ctx context.Context) {
	ticker := time.NewTicker(pendingGaugeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Manager.PendingSessions()
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.feed != nil {
		s.feed.Disconnect()
	}
	s.Pending.Close()
	s.Bus.Close()
	s.monitor.Flush(2 * time.Second)
	return s.Store.Close()
}
