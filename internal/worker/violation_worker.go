package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	BatchSize    = 50
	BatchTimeout = 2 * time.Second
	PollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)

// ViolationJob is one audit-trail entry queued by the violation endpoint.
// The session row keeps the authoritative lock state; this table is the
// flat, teacher-queryable history that survives session resets.
type ViolationJob struct {
	ExamID    string `json:"exam_id"`
	StudentID int    `json:"student_id"`
	Reason    string `json:"reason"`
	Count     int    `json:"count"`
	Locked    bool   `json:"locked"`
	Timestamp int64  `json:"timestamp"`
}

// EnqueueViolation pushes a job onto the persistence queue. Best-effort: a
// Redis failure here must not fail the violation request itself.
func EnqueueViolation(ctx context.Context, rdb *redis.Client, job ViolationJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.RPush(ctx, config.WorkerKey.PersistViolationsQueue, data).Err()
}

// ViolationWorker drains the violation queue into the violation_events table
// in batches.
type ViolationWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger

	// flush defaults to flushSafe; swappable for tests.
	flush   func(ctx context.Context, batch []*ViolationJob)
	backoff time.Duration
}

func NewViolationWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *ViolationWorker {
	w := &ViolationWorker{
		pool:    pool,
		rdb:     rdb,
		log:     log.With().Str("component", "violation_worker").Logger(),
		backoff: 3 * time.Second,
	}
	w.flush = w.flushSafe
	return w
}

func (w *ViolationWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ViolationWorker started")

	buffer := make([]*ViolationJob, 0, BatchSize)
	lastFlushTime := time.Now()

	for {
		if len(buffer) > 0 {
			if len(buffer) >= BatchSize || time.Since(lastFlushTime) >= BatchTimeout {
				w.flush(ctx, buffer)
				buffer = buffer[:0]
				lastFlushTime = time.Now()
			}
		}

		select {
		case <-ctx.Done():
			w.shutdown(buffer)
			return
		default:
		}

		result, err := w.rdb.BLPop(ctx, PollTimeout, config.WorkerKey.PersistViolationsQueue).Result()
		if err != nil {
			if err == redis.Nil {
				continue // Queue empty, loop back to check the flush timer
			}
			if w.stopAfterPollError(ctx, err, buffer) {
				return
			}
			continue
		}

		if len(result) < 2 {
			continue
		}

		var job ViolationJob
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			// Malformed JSON cannot be retried. Log and discard.
			w.log.Error().Err(err).Str("data", result[1]).Msg("Discarding malformed JSON")
			continue
		}

		buffer = append(buffer, &job)
	}
}

// stopAfterPollError decides what a failed BLPop means. A cancelled context
// is shutdown, and whatever the buffer holds still gets flushed; anything
// else is a Redis hiccup worth a backoff.
func (w *ViolationWorker) stopAfterPollError(ctx context.Context, err error, buffer []*ViolationJob) bool {
	if ctx.Err() != nil {
		w.shutdown(buffer)
		return true
	}
	w.log.Error().Err(err).Dur("backoff", w.backoff).Msg("Redis connection error, backing off")
	time.Sleep(w.backoff)
	return false
}

// flushSafe attempts bulk insert, then fallback insert, then requeue.
func (w *ViolationWorker) flushSafe(ctx context.Context, batch []*ViolationJob) {
	if err := w.bulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk insert failed, attempting row-by-row recovery")
		w.fallbackInsert(ctx, batch)
	}
}

func (w *ViolationWorker) bulkInsert(ctx context.Context, batch []*ViolationJob) error {
	rows := make([][]interface{}, 0, len(batch))
	for _, job := range batch {
		examID, err := uuid.Parse(job.ExamID)
		if err != nil {
			// Trigger the fallback path, which handles the bad UUID individually.
			return err
		}
		rows = append(rows, []interface{}{
			examID, job.StudentID, job.Reason, job.Count, job.Locked, time.Unix(job.Timestamp, 0),
		})
	}

	_, err := w.pool.CopyFrom(
		ctx,
		pgx.Identifier{"violation_events"},
		[]string{"exam_id", "student_id", "reason", "count", "locked", "recorded_at"},
		pgx.CopyFromRows(rows),
	)
	return err
}

func (w *ViolationWorker) fallbackInsert(ctx context.Context, batch []*ViolationJob) {
	requeueList := make([]*ViolationJob, 0)

	for _, job := range batch {
		examID, err := uuid.Parse(job.ExamID)
		if err != nil {
			w.log.Error().Str("exam_id", job.ExamID).Msg("Dropping violation event with invalid UUID")
			continue
		}

		_, err = w.pool.Exec(ctx,
			`INSERT INTO violation_events (exam_id, student_id, reason, count, locked, recorded_at)
             VALUES ($1, $2, $3, $4, $5, $6)`,
			examID, job.StudentID, job.Reason, job.Count, job.Locked, time.Unix(job.Timestamp, 0),
		)
		if err != nil {
			w.log.Error().Err(err).Int("student_id", job.StudentID).Msg("Insert failed, requeueing")
			requeueList = append(requeueList, job)
		}
	}

	if len(requeueList) > 0 {
		w.requeue(ctx, requeueList)
	}
}

func (w *ViolationWorker) requeue(ctx context.Context, items []*ViolationJob) {
	pipe := w.rdb.Pipeline()
	for _, job := range items {
		data, _ := json.Marshal(job)
		pipe.RPush(ctx, config.WorkerKey.PersistViolationsQueue, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Msg("CRITICAL: Failed to requeue items to Redis. Data loss occurred.")
		return
	}
	w.log.Info().Int("count", len(items)).Msg("Requeued failed items back to Redis")
	// Avoid thrashing if the DB is down hard.
	time.Sleep(2 * time.Second)
}

func (w *ViolationWorker) shutdown(buffer []*ViolationJob) {
	w.log.Info().Msg("Worker stopping, flushing remaining buffer...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(buffer) > 0 {
		w.flush(shutdownCtx, buffer)
	}
}
