// Package common holds the bootstrap shared by all job commands: logging,
// telemetry, connection checks, database pool, push transport and the
// optional dispatch sink.
package common

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // by design
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	otlpruntime "go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/racedayapp/notify-manager-go/log"
	"github.com/racedayapp/notify-manager-go/pkg/config"
	"github.com/racedayapp/notify-manager-go/pkg/db/postgres"
	"github.com/racedayapp/notify-manager-go/pkg/notify"
	"github.com/racedayapp/notify-manager-go/pkg/notify/fcm"
	"github.com/racedayapp/notify-manager-go/pkg/pubsub"
	"github.com/racedayapp/notify-manager-go/pkg/utils"
)

func ParseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// AddJobFlags registers the flags every job command understands.
func AddJobFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&config.LogLevel,
		"log-level",
		"info",
		"controls the log level (debug, info, warn, error, fatal)")
	cmd.Flags().StringVar(&config.SQLLogLevel,
		"sql-log-level",
		"debug",
		"controls the log level for sql methods")
	cmd.Flags().StringVar(&config.LogFormat,
		"log-format",
		"json",
		"controls the log output format")
	cmd.Flags().StringVar(&config.LogConfig,
		"log-config",
		"",
		"file containing logger configs")
	cmd.Flags().BoolVar(&config.EnableTelemetry,
		"enable-telemetry",
		false,
		"enables telemetry")
	cmd.Flags().StringVar(&config.TelemetryEndpoint,
		"telemetry-endpoint",
		"localhost:4317",
		"Endpoint that receives open telemetry data")
	cmd.Flags().IntVar(&config.ProfilingPort,
		"profiling-port",
		0,
		"port to use for providing profiling data")
	cmd.Flags().StringVar(&config.FCMCredentialsFile,
		"fcm-credentials",
		"",
		"path to the FCM service account file")
	cmd.Flags().StringVar(&config.NatsURL,
		"nats-url",
		"",
		"if set, dispatch summaries are published to this NATS server")
	cmd.Flags().BoolVar(&config.DryRun,
		"dry-run",
		false,
		"scan and diff only, nothing is sent or written")
}

// InitLogging sets up the default logger from the resolved config and
// returns it together with the sql logger.
func InitLogging() (logger, sqlLogger *log.Logger) {
	switch config.LogFormat {
	case "json":
		logger = log.New(
			os.Stderr,
			ParseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
		sqlLogger = log.New(
			os.Stderr,
			ParseLogLevel(config.SQLLogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	default:
		logger = log.DevLogger(
			os.Stderr,
			ParseLogLevel(config.LogLevel, log.DebugLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
		sqlLogger = log.DevLogger(
			os.Stderr,
			ParseLogLevel(config.SQLLogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	}
	log.ResetDefault(logger)
	if config.LogConfig != "" {
		if err := log.EnableFilterFile(config.LogConfig); err != nil {
			log.Warn("could not read logger config", log.ErrorField(err))
		}
	}
	return logger, sqlLogger
}

// Runtime bundles the long-lived resources of a job invocation.
type Runtime struct {
	Pool      *pgxpool.Pool
	Transport notify.Transport
	Sink      pubsub.Sink
	telemetry *config.Telemetry
}

// InitRuntime prepares logging, telemetry, the database pool, the push
// transport and the optional dispatch sink.
func InitRuntime(ctx context.Context) (*Runtime, error) {
	_, sqlLogger := InitLogging()

	if config.ProfilingPort > 0 {
		log.Info("Starting profiling server on port",
			log.Int("port", config.ProfilingPort))
		go func() {
			//nolint:gosec // by design
			err := http.ListenAndServe(
				fmt.Sprintf("localhost:%d", config.ProfilingPort),
				nil)
			if err != nil {
				log.Error("Profiling server stopped", log.ErrorField(err))
			}
		}()
	}

	waitForRequiredServices()

	ret := &Runtime{}
	pgTraceOption := postgres.WithTracer(sqlLogger, log.DebugLevel)
	if config.EnableTelemetry {
		log.Info("Enabling telemetry")
		var err error
		if ret.telemetry, err = config.SetupTelemetry(ctx); err == nil {
			pgTraceOption = postgres.WithOtlpTracer()
		} else {
			log.Warn("Could not setup telemetry", log.ErrorField(err))
		}
		err = otlpruntime.Start(
			otlpruntime.WithMinimumReadMemStatsInterval(time.Second))
		if err != nil {
			log.Warn("Could not start runtime metrics", log.ErrorField(err))
		}
	}

	ret.Pool = postgres.InitWithUrl(config.DB, pgTraceOption)

	transport, err := fcm.NewTransport(ctx, config.FCMCredentialsFile)
	if err != nil {
		ret.Shutdown()
		return nil, fmt.Errorf("initializing push transport: %w", err)
	}
	ret.Transport = transport

	if config.NatsURL != "" {
		sink, err := pubsub.NewNatsSink(config.NatsURL)
		if err != nil {
			// summaries are best effort, the job itself still runs
			log.Warn("could not connect dispatch sink", log.ErrorField(err))
		} else {
			ret.Sink = sink
		}
	}
	return ret, nil
}

func (r *Runtime) Shutdown() {
	if r.Sink != nil {
		r.Sink.Close()
	}
	if r.Pool != nil {
		r.Pool.Close()
	}
	if r.telemetry != nil {
		r.telemetry.Shutdown()
	}
}

// JobTimeout resolves the configured per-invocation budget.
func JobTimeout(defaultVal time.Duration) time.Duration {
	if config.JobTimeout == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(config.JobTimeout)
	if err != nil {
		log.Warn("Invalid job timeout, using default",
			log.String("value", config.JobTimeout),
			log.ErrorField(err))
		return defaultVal
	}
	return d
}

// SetupGoRoutinesDump prints all goroutine stacks on SIGQUIT.
func SetupGoRoutinesDump() {
	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGQUIT)
		buf := make([]byte, 1<<20)
		for {
			<-sigs
			stacklen := runtime.Stack(buf, true)
			fmt.Printf("=== received SIGQUIT ===\n*** goroutine dump...\n%s\n*** end\n",
				buf[:stacklen])
		}
	}()
}

func waitForRequiredServices() {
	timeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil {
		log.Warn("Invalid duration value. Setting default 60s", log.ErrorField(err))
		timeout = 60 * time.Second
	}

	wg := sync.WaitGroup{}
	checkTcp := func(addr string) {
		if err = utils.WaitForTCP(addr, timeout); err != nil {
			log.Fatal("required services not ready", log.ErrorField(err))
		}
		wg.Done()
	}

	if postgresAddr := utils.ExtractFromDBURL(config.DB); postgresAddr != "" {
		wg.Add(1)
		go checkTcp(postgresAddr)
	}
	log.Debug("Waiting for connection checks to return")
	wg.Wait()
	log.Debug("Required services are available")
}
