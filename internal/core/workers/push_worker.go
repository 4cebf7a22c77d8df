package workers

import (
	"context"
	"log"
	"time"

	"github.com/pursueapp/recap-engine/internal/core/domain"
)

// PushSender is the outbound transport for push notifications.
type PushSender interface {
	Push(ctx context.Context, req domain.PushRequest) error
}

// PushWorker drains a buffered queue of push requests in the background.
// Enqueue never blocks and send failures never leave the worker: the in-app
// notification rows are the durable record, the push is best-effort.
type PushWorker struct {
	sender PushSender
	jobs   chan domain.PushRequest
}

func NewPushWorker(sender PushSender) *PushWorker {
	return &PushWorker{
		sender: sender,
		jobs:   make(chan domain.PushRequest, 100),
	}
}

func (w *PushWorker) Start(ctx context.Context) {
	go func() {
		log.Println("Push Worker started in background...")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				log.Println("Push Worker shutting down...")
				return
			}
		}
	}()
}

func (w *PushWorker) Enqueue(req domain.PushRequest) {
	select {
	case w.jobs <- req:
	default:
		log.Printf("Push Worker queue full! Dropping push for %d recipients", len(req.UserIDs))
	}
}

func (w *PushWorker) processJob(ctx context.Context, req domain.PushRequest) {
	sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := w.sender.Push(sendCtx, req); err != nil {
		log.Printf("Push send failed for %d recipients: %v", len(req.UserIDs), err)
		return
	}
	log.Printf("Push sent to %d recipients: %s", len(req.UserIDs), req.Body)
}
