package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adpilot/adpilot/internal/gateway"
	"github.com/adpilot/adpilot/internal/guidance"
	"github.com/adpilot/adpilot/internal/session"
	"github.com/adpilot/adpilot/internal/store"
	"github.com/adpilot/adpilot/pkg/config"
	"github.com/adpilot/adpilot/pkg/db"
	"github.com/adpilot/adpilot/pkg/logx"
	"github.com/adpilot/adpilot/pkg/rmq"
	"github.com/adpilot/adpilot/services/workflow-api/server"
)

func main() {
	logx.Init()
	defer logx.Sync()

	config.MustLoadAPI()
	cfg := config.API

	sqlDB, err := db.Open(cfg.DBDSN)
	if err != nil {
		logx.L().Fatalw("db_open_error", "error", err)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			logx.L().Warnw("db_close_error", "error", err)
		} else {
			logx.L().Infow("db_closed")
		}
	}()

	st := store.New(sqlDB)

	pub, err := rmq.NewPublisher(cfg.RMQURL, cfg.Queue)
	if err != nil {
		logx.L().Fatalw("rmq_init_error", "error", err)
	}
	defer func() {
		if err := pub.Close(); err != nil {
			logx.L().Warnw("rmq_publisher_close_error", "error", err)
		} else {
			logx.L().Infow("rmq_publisher_closed")
		}
	}()

	gw := gateway.NewClient(cfg.GatewayURL, cfg.RemoteTimeout)
	guide := guidance.NewClient(cfg.GuidanceURL, cfg.RemoteTimeout)
	sessions := session.NewRegistry(server.NewEngineFactory(gw, guide))

	h := server.NewHandlers(st, pub, gw, sessions)
	srv := server.NewHTTPServer(":"+cfg.Port, h, cfg.MaxUploadBytes)
	srv.MaxHeaderBytes = 1 << 20

	go func() {
		logx.L().Infow("api_listen_start", "addr", ":"+cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.L().Fatalw("http_server_error", "error", err)
		}
	}()

	sweep := time.NewTicker(10 * time.Minute)
	defer sweep.Stop()
	go func() {
		for range sweep.C {
			if n := sessions.PruneIdle(cfg.SessionIdleTTL); n > 0 {
				logx.L().Infow("sessions_pruned", "count", n)
			}
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	logx.L().Infow("signal_received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logx.L().Errorw("server_shutdown_error", "error", err)
	} else {
		logx.L().Infow("server_shutdown_success")
	}

	logx.L().Infow("workflow-api stopped gracefully")
}
