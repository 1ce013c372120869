package audit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GoNotify/notigate/internal/masking"
	"github.com/GoNotify/notigate/internal/model"
	"github.com/GoNotify/notigate/internal/pkg/logger"
	"github.com/GoNotify/notigate/internal/pkg/metrics"
)

// Sink receives finished audit records. Implemented by logclient.Client.
type Sink interface {
	CreateEntry(ctx context.Context, rec *model.AuditRecord) (*model.StoredAuditRecord, error)
}

type Options struct {
	QueueSize   int           // 缓冲队列长度, 默认 1000
	Workers     int           // 消费者数量, 默认 4
	SendTimeout time.Duration // 单条发送超时, 默认 5s
}

// Emitter builds and ships audit records in the background. Enqueueing never
// blocks; a full queue drops the record to protect the request path.
type Emitter struct {
	sink    Sink
	policy  *masking.Policy
	ch      chan RecordInput
	timeout time.Duration
	wg      sync.WaitGroup
	closed  atomic.Bool
	once    sync.Once
}

func NewEmitter(sink Sink, policy *masking.Policy, opts Options) *Emitter {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1000
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 5 * time.Second
	}

	e := &Emitter{
		sink:    sink,
		policy:  policy,
		ch:      make(chan RecordInput, opts.QueueSize),
		timeout: opts.SendTimeout,
	}

	// 启动消费者 goroutine
	for i := 0; i < opts.Workers; i++ {
		e.wg.Add(1)
		go e.process()
	}
	return e
}

// Emit queues a snapshot for background assembly and delivery, returning
// immediately. The input must not share memory with the live request.
func (e *Emitter) Emit(in RecordInput) {
	if e.closed.Load() {
		return
	}
	select {
	case e.ch <- in:
		metrics.AuditQueueDepth.Set(float64(len(e.ch)))
	default:
		// 队列满, 丢弃并告警, 绝不阻塞请求
		metrics.AuditRecordsTotal.WithLabelValues("dropped").Inc()
		logger.Warn("audit queue full, dropping record",
			"method", in.Method, "path", in.Path)
	}
}

func (e *Emitter) process() {
	defer e.wg.Done()
	for in := range e.ch {
		metrics.AuditQueueDepth.Set(float64(len(e.ch)))
		e.deliver(in)
	}
}

func (e *Emitter) deliver(in RecordInput) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("audit delivery panic", "panic", r)
		}
	}()

	rec := BuildRecord(in, e.policy)

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	if _, err := e.sink.CreateEntry(ctx, rec); err != nil {
		metrics.AuditRecordsTotal.WithLabelValues("failed").Inc()
		logger.Warn("audit delivery failed", "error", err,
			"method", rec.Method, "path", rec.Path, "status", rec.StatusCode)
		return
	}
	metrics.AuditRecordsTotal.WithLabelValues("sent").Inc()
}

// Close stops intake, drains the queue, and waits up to 2s for the workers.
// Records still in flight after that are abandoned; losing audit records on
// shutdown is accepted.
func (e *Emitter) Close() {
	e.once.Do(func() {
		e.closed.Store(true)
		close(e.ch)

		done := make(chan struct{})
		go func() {
			e.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			logger.Warn("audit emitter close timed out, abandoning in-flight records")
		}
	})
}
