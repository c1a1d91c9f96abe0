package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/coocood/freecache"
	"github.com/getsentry/sentry-go"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/2beens/trainingapp/internal/catalog"
	"github.com/2beens/trainingapp/internal/config"
	"github.com/2beens/trainingapp/internal/middleware"
	"github.com/2beens/trainingapp/internal/sessions"
	"github.com/2beens/trainingapp/internal/telemetry/metrics"
	"github.com/2beens/trainingapp/internal/telemetry/tracing"
)

const responseCacheSize = 10 * 1024 * 1024

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server

	config          *config.Config
	catalog         *catalog.Catalog
	responseCache   *freecache.Cache
	sessionsService *sessions.Service

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	trainingCatalog, err := catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	log.Debugf("catalog loaded from [%s]: %d complexes", cfg.CatalogPath, trainingCatalog.Len())

	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("backend", "trainingapp", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "trainingapp-backend")
	if err != nil {
		return nil, err
	}

	sessionsRepo := sessions.NewRepo(cfg.HistoryPath)
	var csvMirror *sessions.CSVMirror
	if cfg.CSVMirrorEnabled {
		csvMirror = sessions.NewCSVMirror(cfg.CSVMirrorPath)
	}

	if count, err := sessionsRepo.Count(ctx); err != nil {
		log.Errorf("count stored sessions in [%s]: %s", cfg.HistoryPath, err)
	} else {
		metricsManager.GaugeHistorySize.Set(float64(count))
		log.Debugf("history [%s] holds %d sessions", cfg.HistoryPath, count)
	}

	return &Server{
		config:          cfg,
		catalog:         trainingCatalog,
		responseCache:   freecache.NewCache(responseCacheSize),
		sessionsService: sessions.NewService(sessionsRepo, csvMirror, metricsManager),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("trainingapp-router"))

	catalogHandler := catalog.NewHandler(s.catalog, s.responseCache)
	r.HandleFunc("/api/complexes", catalogHandler.HandleComplexes).Methods("GET", "OPTIONS").Name("list-complexes")

	sessionsHandler := sessions.NewHandler(s.sessionsService, s.responseCache)
	r.HandleFunc("/api/save-training", sessionsHandler.HandleSaveTraining).Methods("POST", "OPTIONS").Name("save-training")
	r.HandleFunc("/api/history", sessionsHandler.HandleHistory).Methods("GET", "OPTIONS").Name("list-history")

	// all the rest of the api - unhandled paths
	r.PathPrefix("/api/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Name("unknown")

	if s.config.PublicDir != "" {
		r.PathPrefix("/").
			Handler(http.FileServer(http.Dir(s.config.PublicDir))).
			Methods("GET", "HEAD", "OPTIONS").
			Name("static")
	}

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(middleware.DrainAndCloseRequest(middleware.DefaultMaxBodyBytes))

	return r, nil
}

func (s *Server) Serve(ctx context.Context, host string, port int) {
	router, err := s.routerSetup()
	if err != nil {
		log.Fatalf("failed to setup router: %s", err)
	}

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
