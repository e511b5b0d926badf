package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"TradePulse/internal/service/marketws"
	"TradePulse/internal/usecase"
	pkgch "TradePulse/pkg/clickhouse"
	"TradePulse/pkg/config"
	xhttp "TradePulse/pkg/http"
	pkgkafka "TradePulse/pkg/kafka"
	applogger "TradePulse/pkg/logger"
	"TradePulse/pkg/queue"
)

// App encapsulates the application lifecycle: market ingestion, the
// signal pipeline, delivery workers and the HTTP query surface.
type App struct {
	cfg      *config.Config
	log      *applogger.Logger
	pipeline *usecase.SignalPipeline
	handler  xhttp.Handler
	stream   *marketws.Client
	consumer *pkgkafka.Consumer
	samples  *usecase.KafkaSamplesHandler
	queue    *queue.RedisQueue
	chClient *pkgch.Client

	httpServer *xhttp.Server
	cancel     context.CancelFunc
}

// New creates a new App instance with all dependencies. stream,
// consumer, queue and chClient may be nil depending on configuration.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	pipeline *usecase.SignalPipeline,
	handler xhttp.Handler,
	stream *marketws.Client,
	consumer *pkgkafka.Consumer,
	samples *usecase.KafkaSamplesHandler,
	q *queue.RedisQueue,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		pipeline: pipeline,
		handler:  handler,
		stream:   stream,
		consumer: consumer,
		samples:  samples,
		queue:    q,
		chClient: chClient,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	if a.stream != nil {
		go a.stream.Run(ctx)
		a.log.Info("market stream started", applogger.Strings("pairs", a.cfg.Engine.Pairs))
	}

	if a.consumer != nil && a.samples != nil {
		a.consumer.RegisterHandler(a.samples)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.log.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.log.Info("kafka samples consumer started", applogger.String("topic", a.samples.Topic()))
	}

	if a.queue != nil {
		if err := a.queue.Start(); err != nil {
			a.log.Error("queue start error", applogger.Error(err))
			return err
		}
		a.queue.StartRetryProcessor()
		a.log.Info("notification queue started")
	}

	a.pipeline.Start(ctx)

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown stops the pipeline first so in-flight ticks complete, then
// drains ingestion and the HTTP surface.
func (a *App) shutdown(ctx context.Context) error {
	a.pipeline.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.cancel != nil {
		a.cancel()
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}
	if a.queue != nil {
		if err := a.queue.Stop(shutdownCtx); err != nil {
			a.log.Warn("queue stop error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
