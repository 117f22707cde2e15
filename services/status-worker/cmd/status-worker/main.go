package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/adpilot/adpilot/internal/store"
	"github.com/adpilot/adpilot/pkg/config"
	"github.com/adpilot/adpilot/pkg/db"
	"github.com/adpilot/adpilot/pkg/logx"
	"github.com/adpilot/adpilot/pkg/rmq"
	"github.com/adpilot/adpilot/services/status-worker/worker"
)

func main() {
	logx.Init()
	defer logx.Sync()

	config.MustLoadWorker()
	cfg := config.Worker

	sqlDB, err := db.Open(cfg.DBDSN)
	if err != nil {
		log.Fatal("db open:", err)
	}
	defer sqlDB.Close()

	cons, err := rmq.NewConsumer(cfg.RMQURL, cfg.Queue)
	if err != nil {
		log.Fatal("rmq consumer:", err)
	}
	defer cons.Close()

	pub, err := rmq.NewPublisher(cfg.RMQURL, cfg.Queue)
	if err != nil {
		log.Fatal("rmq publisher:", err)
	}
	defer pub.Close()

	w := worker.New(store.New(sqlDB), cons, pub)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := w.Run(ctx); err != nil && err != context.Canceled {
		log.Fatal(err)
	}
}
