package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/2beens/trainingapp/internal"
	"github.com/2beens/trainingapp/internal/config"
	"github.com/2beens/trainingapp/internal/logging"
	"github.com/2beens/trainingapp/pkg"

	log "github.com/sirupsen/logrus"
)

func main() {
	fmt.Println("starting ...")

	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	log.Warnf("---->> running in [%s] environment", *env)

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	sentryDSN := os.Getenv("SENTRY_DSN")
	logging.Setup(logging.LoggerSetupParams{
		Component:        "service",
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    cfg.LogFormatJSON,
		LogMaxBackups:    cfg.LogMaxBackups,
		LogMaxAgeDays:    cfg.LogMaxAgeDays,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        sentryDSN,
		SentryServerName: "trainingapp-service",
	})

	log.Debugf("using port: %d", cfg.Port)
	log.Debugf("using server logs path: [%s]", cfg.LogsPath)

	versionInfo, err := tryGetLastCommitHash()
	if err != nil {
		log.Tracef("failed to get last commit hash / version info: %s", err)
	} else {
		log.Tracef("running version: %s", versionInfo)
	}

	if otelServiceName := os.Getenv("OTEL_SERVICE_NAME"); otelServiceName == "" {
		log.Warnln("OTEL_SERVICE_NAME env var not set")
	}

	honeycombEnabled := os.Getenv("HONEYCOMB_ENABLED") == "true"
	if honeycombEnabled {
		if honeycombApiKey := os.Getenv("HONEYCOMB_API_KEY"); honeycombApiKey == "" {
			log.Warnln("HONEYCOMB_API_KEY env var not set")
		}
	} else {
		log.Debugln("honeycomb tracing disabled")
	}

	// the public dir holds the catalog, the history log and the csv mirror
	publicDirExists, err := pkg.PathExists(cfg.PublicDir, true)
	if err != nil {
		log.Fatalf("check public dir: %s", err)
	}
	if !publicDirExists {
		if err := os.MkdirAll(cfg.PublicDir, 0o755); err != nil {
			log.Fatalf("create public dir [%s]: %s", cfg.PublicDir, err)
		}
		log.Printf("public dir created: %s", cfg.PublicDir)
	}

	catalogExists, err := pkg.PathExists(cfg.CatalogPath, false)
	if err != nil || !catalogExists {
		log.Fatalf("training catalog not found at [%s], err: %v", cfg.CatalogPath, err)
	}
	log.Debugf("training catalog: [%s]", cfg.CatalogPath)
	log.Debugf("training history: [%s]", cfg.HistoryPath)
	if cfg.CSVMirrorEnabled {
		log.Debugf("training history csv mirror: [%s]", cfg.CSVMirrorPath)
	} else {
		log.Debugln("training history csv mirror disabled")
	}

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())

	server, err := internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:                  cfg,
			HoneycombTracingEnabled: honeycombEnabled,
		},
	)
	if err != nil {
		log.Fatalf("new server: %s", err)
	}

	server.Serve(ctx, cfg.Host, cfg.Port)

	receivedSig := <-chOsInterrupt
	log.Warnf("signal [%s] received, killing everything ...", receivedSig)
	cancel()

	server.GracefulShutdown()
}

// tryGetLastCommitHash will try to get the last commit hash
// assumes that the built main executable is in project root
func tryGetLastCommitHash() (string, error) {
	cmd := exec.Command("/usr/bin/git", "rev-parse", "HEAD")
	stdout, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return pkg.BytesToString(stdout), nil
}
