package workerpool

import (
	"codearena/internal/logger"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dispatcher hands one queued submission to the execution service.
type Dispatcher interface {
	Dispatch(ctx context.Context, submissionID int) error
}

// DispatchWorker consumes queued submission ids from a Redis Stream and
// dispatches them to the execution service.
type DispatchWorker struct {
	id         string
	quit       chan bool
	rdb        *redis.Client
	stream     string
	group      string
	dispatcher Dispatcher
}

func NewDispatchWorker(id string, rdb *redis.Client, stream, group string, dispatcher Dispatcher) *DispatchWorker {
	return &DispatchWorker{
		id:         id,
		quit:       make(chan bool),
		rdb:        rdb,
		stream:     stream,
		group:      group,
		dispatcher: dispatcher,
	}
}

// Start begins processing jobs from the stream
func (w *DispatchWorker) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-w.quit:
				return
			default:
				entries, err := w.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
					Group:    w.group,
					Consumer: w.id,
					Streams:  []string{w.stream, ">"},
					Count:    1,
					Block:    5 * time.Second,
				}).Result()

				if err != nil {
					if err != redis.Nil {
						logger.Log.Error("Redis operation failed",
							zap.String("worker_id", w.id),
							zap.Error(err))
					}
					continue
				}

				for _, stream := range entries {
					for _, msg := range stream.Messages {
						w.processJob(ctx, msg)
					}
				}
			}
		}
	}()
}

func (w *DispatchWorker) Stop() {
	logger.Log.Info("Closing worker",
		zap.String("worker_id", w.id))
	w.quit <- true
	close(w.quit)
}

func (w *DispatchWorker) processJob(ctx context.Context, msg redis.XMessage) {
	logger.Log.Info("Processing dispatch job",
		zap.String("worker_id", w.id),
		zap.String("job_id", msg.ID))

	if err := w.rdb.XAck(ctx, w.stream, w.group, msg.ID).Err(); err != nil {
		logger.Log.Error("Failed to acknowledge job",
			zap.String("worker_id", w.id),
			zap.Error(err))
	}

	submissionIDStr, ok := msg.Values["submission_id"].(string)
	if !ok {
		logger.Log.Error("Invalid submission ID in message",
			zap.String("worker_id", w.id),
			zap.Any("values", msg.Values))
		return
	}

	submissionID, err := strconv.Atoi(submissionIDStr)
	if err != nil {
		logger.Log.Error("Failed to parse submission ID",
			zap.String("worker_id", w.id),
			zap.String("submission_id", submissionIDStr),
			zap.Error(err))
		return
	}

	if err := w.dispatcher.Dispatch(ctx, submissionID); err != nil {
		logger.Log.Error("Dispatch failed",
			zap.String("worker_id", w.id),
			zap.Int("submission_id", submissionID),
			zap.Error(err))
		return
	}

	logger.Log.Info("Finished dispatch job",
		zap.String("worker_id", w.id),
		zap.String("job_id", msg.ID),
		zap.Int("submission_id", submissionID))
}

type DispatchWorkerPool struct {
	workers    []*DispatchWorker
	numWorkers int
	rdb        *redis.Client
	stream     string
	group      string
	dispatcher Dispatcher
}

func NewDispatchWorkerPool(numWorkers int, rdb *redis.Client, stream, group string, dispatcher Dispatcher) *DispatchWorkerPool {
	return &DispatchWorkerPool{
		workers:    make([]*DispatchWorker, numWorkers),
		numWorkers: numWorkers,
		rdb:        rdb,
		stream:     stream,
		group:      group,
		dispatcher: dispatcher,
	}
}

func (p *DispatchWorkerPool) Start(ctx context.Context) error {
	// Create consumer group if it doesn't exist
	_, err := p.rdb.XGroupCreateMkStream(ctx, p.stream, p.group, "$").Result()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	// Start workers
	for i := 0; i < p.numWorkers; i++ {
		worker := NewDispatchWorker(
			fmt.Sprintf("DispatchWorker-%d", i+1),
			p.rdb,
			p.stream,
			p.group,
			p.dispatcher,
		)

		worker.Start(ctx)
		p.workers[i] = worker

		logger.Log.Info("Starting dispatch worker",
			zap.String("worker_id", worker.id))
	}

	logger.Log.Info("Dispatch worker pool started",
		zap.Int("num_workers", p.numWorkers))

	return nil
}

// Stop terminates all workers in the pool
func (p *DispatchWorkerPool) Stop() {
	for _, worker := range p.workers {
		worker.Stop()
	}
}
