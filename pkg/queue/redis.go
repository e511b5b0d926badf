package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"TradePulse/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// QueueMode selects which halves of the queue run.
type QueueMode int

const (
	ModeProducerConsumer QueueMode = iota
	ModeProducerOnly
	ModeConsumerOnly
)

// RedisQueue is a Redis-backed job queue: a list for pending messages, a
// sorted set for delayed retries, and a dead-letter list for messages that
// exhaust their retries.
type RedisQueue struct {
	log    *logger.Logger
	cfg    *QueueConfig
	client *redis.Client
	mode   QueueMode
	prefix string

	mu       sync.RWMutex
	handlers map[string]Job
	running  bool

	wg     sync.WaitGroup
	stop   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
}

var _ QueueService = (*RedisQueue)(nil)

// RedisQueueOption configures RedisQueue.
type RedisQueueOption func(*RedisQueue)

// WithKeyPrefix overrides the Redis key namespace.
func WithKeyPrefix(prefix string) RedisQueueOption {
	return func(q *RedisQueue) { q.prefix = prefix }
}

// NewRedisQueue creates a queue over an existing Redis client.
func NewRedisQueue(log *logger.Logger, cfg *QueueConfig, client *redis.Client, mode QueueMode, opts ...RedisQueueOption) *RedisQueue {
	if cfg == nil {
		cfg = &QueueConfig{}
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 10 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &RedisQueue{
		log:      log,
		cfg:      cfg,
		client:   client,
		mode:     mode,
		prefix:   "tradepulse:queue",
		handlers: make(map[string]Job),
		stop:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// RegisterJob binds a job to its message type. Ignored in producer-only mode.
func (q *RedisQueue) RegisterJob(job Job) {
	if q.mode == ModeProducerOnly {
		q.log.Warn("job registration skipped in producer-only mode",
			logger.String("job", job.Name()))
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if _, dup := q.handlers[job.Type()]; dup {
		q.log.Warn("duplicate job registration", logger.String("job", job.Name()))
		return
	}
	q.handlers[job.Type()] = job
	q.log.Info("queue job registered",
		logger.String("job", job.Name()),
		logger.String("type", job.Type()))
}

// Start pings Redis and launches the worker pool in consumer modes.
func (q *RedisQueue) Start() error {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return errors.New("queue already running")
	}
	q.running = true
	q.mu.Unlock()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := q.client.Ping(pingCtx).Err(); err != nil {
		q.mu.Lock()
		q.running = false
		q.mu.Unlock()
		return fmt.Errorf("queue redis ping: %w", err)
	}

	if q.mode == ModeProducerOnly {
		q.log.Info("queue publisher ready",
			logger.String("addr", q.client.Options().Addr))
		return nil
	}

	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	q.log.Info("queue workers started",
		logger.Int("workers", q.cfg.Workers),
		logger.String("addr", q.client.Options().Addr))
	return nil
}

// Stop cancels workers and waits for them within ctx.
func (q *RedisQueue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return nil
	}
	q.running = false
	q.cancel()
	if q.mode != ModeProducerOnly {
		close(q.stop)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.log.Info("queue stopped")
		return nil
	case <-ctx.Done():
		q.log.Warn("queue workers did not stop in time", logger.Error(ctx.Err()))
		return ctx.Err()
	}
}

// PublishMessage enqueues a message of the given type.
func (q *RedisQueue) PublishMessage(ctx context.Context, msgType string, payload interface{}) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if !q.running {
		return errors.New("queue not running")
	}
	if q.mode != ModeProducerOnly {
		if _, known := q.handlers[msgType]; !known {
			return fmt.Errorf("no job registered for type %q", msgType)
		}
	}

	data, err := json.Marshal(Message{
		ID:        uuid.NewString(),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("marshal queue message: %w", err)
	}
	if err := q.client.LPush(ctx, q.queueKey(), data).Err(); err != nil {
		return fmt.Errorf("queue lpush: %w", err)
	}
	return nil
}

func (q *RedisQueue) worker(id int) {
	defer q.wg.Done()
	q.log.Debug("queue worker up", logger.Int("worker_id", id))

	for {
		select {
		case <-q.stop:
			q.log.Debug("queue worker down", logger.Int("worker_id", id))
			return
		case <-q.ctx.Done():
			return
		default:
			q.processNext()
		}
	}
}

// processNext blocks up to one second for the next message so workers stay
// responsive to shutdown.
func (q *RedisQueue) processNext() {
	ctx, cancel := context.WithTimeout(q.ctx, time.Second)
	defer cancel()

	res, err := q.client.BRPop(ctx, time.Second, q.queueKey()).Result()
	switch {
	case errors.Is(err, redis.Nil),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return
	case err != nil:
		q.log.Error("queue brpop", logger.Error(err))
		time.Sleep(time.Second)
		return
	}
	if len(res) < 2 {
		return
	}

	var msg Message
	if err := json.Unmarshal([]byte(res[1]), &msg); err != nil {
		q.log.Error("unmarshal queue message", logger.Error(err))
		return
	}
	q.process(msg)
}

func (q *RedisQueue) process(msg Message) {
	q.mu.RLock()
	job, known := q.handlers[msg.Type]
	q.mu.RUnlock()
	if !known {
		q.log.Error("message with unknown type",
			logger.String("type", msg.Type),
			logger.String("id", msg.ID))
		return
	}

	err := job.Handle(q.ctx, normalizePayload(msg.Payload))
	switch {
	case err == nil:
		return
	case errors.Is(err, context.Canceled):
		q.log.Warn("message handling cancelled",
			logger.String("id", msg.ID),
			logger.String("job", job.Name()))
	default:
		q.handleFailure(msg, job, err)
	}
}

// normalizePayload turns a JSON-decoded map back into raw JSON so job
// handlers can unmarshal into their own types with ParsePayload.
func normalizePayload(payload interface{}) interface{} {
	m, ok := payload.(map[string]interface{})
	if !ok {
		return payload
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return payload
	}
	return json.RawMessage(raw)
}

func (q *RedisQueue) handleFailure(msg Message, job Job, err error) {
	q.log.Error("message handling failed",
		logger.String("id", msg.ID),
		logger.String("job", job.Name()),
		logger.Int("attempt", msg.Attempts+1),
		logger.Error(err))

	if msg.Attempts >= q.cfg.RetryLimit {
		q.log.Error("retries exhausted, moving to dead letter",
			logger.String("id", msg.ID),
			logger.String("job", job.Name()))
		q.deadLetter(msg)
		return
	}

	msg.Attempts++
	retryAt := time.Now().Add(q.cfg.RetryDelay)
	q.scheduleRetry(msg, retryAt)
	q.log.Info("retry scheduled",
		logger.String("id", msg.ID),
		logger.Int("attempt", msg.Attempts),
		logger.String("retry_at", retryAt.Format(time.RFC3339)))
}

func (q *RedisQueue) scheduleRetry(msg Message, retryAt time.Time) {
	data, err := json.Marshal(msg)
	if err != nil {
		q.log.Error("marshal retry message", logger.Error(err))
		return
	}
	err = q.client.ZAdd(context.Background(), q.retryKey(), redis.Z{
		Score:  float64(retryAt.Unix()),
		Member: data,
	}).Err()
	if err != nil {
		q.log.Error("schedule retry", logger.Error(err))
	}
}

func (q *RedisQueue) deadLetter(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		q.log.Error("marshal dead letter", logger.Error(err))
		return
	}
	if err := q.client.LPush(context.Background(), q.dlqKey(), data).Err(); err != nil {
		q.log.Error("push dead letter", logger.Error(err))
	}
}

// StartRetryProcessor launches the goroutine that moves due retries back
// onto the queue. No-op in producer-only mode.
func (q *RedisQueue) StartRetryProcessor() {
	if q.mode == ModeProducerOnly {
		return
	}
	q.wg.Add(1)
	go q.retryProcessor()
}

func (q *RedisQueue) retryProcessor() {
	defer q.wg.Done()

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-q.stop:
			return
		case <-q.ctx.Done():
			return
		case <-ticker.C:
			q.moveDueRetries()
		}
	}
}

func (q *RedisQueue) moveDueRetries() {
	max := strconv.FormatInt(time.Now().Unix(), 10)
	due, err := q.client.ZRangeByScoreWithScores(q.ctx, q.retryKey(), &redis.ZRangeBy{
		Min: "0",
		Max: max,
	}).Result()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			q.log.Error("fetch due retries", logger.Error(err))
		}
		return
	}

	for _, z := range due {
		select {
		case <-q.ctx.Done():
			return
		default:
		}

		data, _ := z.Member.(string)
		pipe := q.client.TxPipeline()
		pipe.ZRem(q.ctx, q.retryKey(), data)
		pipe.LPush(q.ctx, q.queueKey(), data)
		if _, err := pipe.Exec(q.ctx); err != nil && !errors.Is(err, context.Canceled) {
			q.log.Error("requeue retry", logger.Error(err))
		}
	}
}

func (q *RedisQueue) queueKey() string { return q.prefix + ":messages" }
func (q *RedisQueue) retryKey() string { return q.prefix + ":retry" }
func (q *RedisQueue) dlqKey() string   { return q.prefix + ":dlq" }
