// Package worker reconciles publish events into the campaign record
// trail. Publishing sets ads to a paused state on the external platform,
// so the workflow cannot assume live delivery; the record row is updated
// here, from the event, rather than inline in the API.
package worker

import (
	"context"
	"database/sql"
	"encoding/json"
	"math"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/adpilot/adpilot/internal/campaign"
	"github.com/adpilot/adpilot/internal/store"
	"github.com/adpilot/adpilot/pkg/logx"
	"github.com/adpilot/adpilot/pkg/metrics"
	"github.com/adpilot/adpilot/pkg/rmq"
)

const maxRetries = 3

type Worker struct {
	Store *store.Store
	Cons  *rmq.Consumer
	Pub   *rmq.Publisher
}

func New(st *store.Store, cons *rmq.Consumer, pub *rmq.Publisher) *Worker {
	return &Worker{Store: st, Cons: cons, Pub: pub}
}

func (w *Worker) Run(ctx context.Context) error {
	msgs, err := w.Cons.Consume()
	if err != nil {
		return err
	}
	logx.L().Infow("worker_started", "queue", w.Cons.Queue)

	for {
		select {
		case <-ctx.Done():
			logx.L().Infow("worker_stopping")
			return ctx.Err()

		case d, ok := <-msgs:
			if !ok {
				logx.L().Warnw("consumer_channel_closed")
				return nil
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	start := time.Now()
	defer func() {
		metrics.WorkerProcessDuration.Observe(time.Since(start).Seconds())
	}()
	metrics.WorkerEventsConsumed.Inc()

	var ev campaign.PublishEvent
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		logx.L().Warnw("event_unmarshal_error", "error", err)
		_ = d.Ack(false)
		return
	}
	if ev.CampaignID == "" {
		logx.L().Warnw("event_missing_campaign_id")
		_ = d.Ack(false)
		return
	}
	fields := []any{
		"campaign_id", ev.CampaignID,
		"external_campaign_id", ev.ExternalCampaignID,
		"platform", ev.Platform,
	}

	applyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err := w.Store.WithTx(applyCtx, func(tx *sql.Tx) error {
		if err := w.Store.MarkCampaignPublished(applyCtx, tx, ev.CampaignID, ev.ExternalCampaignID, ev.PublishedAt); err != nil {
			return err
		}
		return w.Store.InsertPublishEvent(applyCtx, tx, ev.CampaignID, ev.ExternalCampaignID, string(ev.Platform), ev.PublishedAt)
	})
	cancel()

	if err != nil {
		logx.L().Errorw("event_apply_error", append(fields, "error", err)...)
		metrics.WorkerEventsFailed.Inc()

		retries := headerRetries(d.Headers)
		if retries < maxRetries {
			delay := backoffDelay(retries)
			metrics.WorkerEventRetries.Inc()
			logx.L().Infow("retry_requeue", append(fields, "retries", retries+1, "delay", delay.String())...)
			if err := w.requeueMessage(ctx, d, retries+1, delay); err != nil {
				logx.L().Errorw("retry_publish_error", append(fields, "retries", retries+1, "error", err)...)
				_ = d.Nack(false, true)
			}
		} else {
			logx.L().Warnw("drop_after_retries", append(fields, "retries", retries)...)
			_ = d.Ack(false)
		}
		return
	}

	metrics.WorkerEventsApplied.Inc()
	logx.L().Infow("event_applied", fields...)
	_ = d.Ack(false)
}

func (w *Worker) requeueMessage(ctx context.Context, d amqp.Delivery, retries int, delay time.Duration) error {
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	headers := copyHeaders(d.Headers)
	setHeaderRetries(&headers, retries)

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := w.Pub.PublishJSONWithHeaders(pubCtx, d.Body, headers); err != nil {
		return err
	}

	return d.Ack(false)
}

func headerRetries(h amqp.Table) int {
	if h == nil {
		return 0
	}
	if v, ok := h["x-retries"]; ok {
		switch t := v.(type) {
		case int32:
			return int(t)
		case int64:
			return int(t)
		case int:
			return t
		case uint8:
			return int(t)
		}
	}
	return 0
}

func setHeaderRetries(h *amqp.Table, n int) {
	if *h == nil {
		*h = amqp.Table{}
	}
	(*h)["x-retries"] = int32(n)
}

func backoffDelay(retries int) time.Duration {
	if retries <= 0 {
		return 0
	}
	sec := math.Pow(2, float64(retries-1))
	return time.Duration(sec) * time.Second
}

func copyHeaders(h amqp.Table) amqp.Table {
	if h == nil {
		return amqp.Table{}
	}
	dup := make(amqp.Table, len(h))
	for k, v := range h {
		dup[k] = v
	}
	return dup
}
