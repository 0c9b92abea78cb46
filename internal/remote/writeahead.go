package remote

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/phytolab/orderport/pkg/common"
)

// Write-ahead queue for remote persistence. Every fire-and-forget mutation is
// appended here before the remote apply is attempted, so retry and partial
// failure are explicit state instead of silent best effort.

const (
	OpReplace = "replace"
	OpInsert  = "insert"
	OpUpdate  = "update"
)

const (
	StatePending = "pending"
	StateFailed  = "failed"
)

const maxAttempts = 10

type Entry struct {
	ID         int64  `json:"id"`
	Collection string `json:"collection"`
	Op         string `json:"op"`
	Payload    []byte `json:"payload"`
	State      string `json:"state"`
	Attempts   int    `json:"attempts"`
	LastError  string `json:"last_error,omitempty"`
	UpdatedAt  int64  `json:"updated_at"`
}

const queueBucket = "writeahead"

// Queue persists intended mutations in bbolt and applies them to the remote
// client from a single worker, preserving per-session mutation order.
type Queue struct {
	db     *bbolt.DB
	client Client
	pool   *ants.Pool
}

func NewQueue(workdir string, client Client) (*Queue, error) {
	if err := os.MkdirAll(workdir, 0o755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(filepath.Join(workdir, "writeahead.db"), 0o600, &bbolt.Options{
		Timeout: 3 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(queueBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	// one worker: replace-collection calls must land in submission order
	pool, err := ants.NewPool(1)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Queue{db: db, client: client, pool: pool}, nil
}

func entryKey(id int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}

func (q *Queue) put(e *Entry) error {
	e.UpdatedAt = time.Now().Unix()
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return q.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(queueBucket)).Put(entryKey(e.ID), data)
	})
}

func (q *Queue) delete(id int64) error {
	return q.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(queueBucket)).Delete(entryKey(id))
	})
}

// Enqueue appends an intended mutation and schedules its remote apply. The
// caller returns immediately; the local mutation is never rolled back on
// remote failure.
func (q *Queue) Enqueue(collection, op string, payload []byte) {
	e := &Entry{
		ID:         common.UUIDint64(),
		Collection: collection,
		Op:         op,
		Payload:    payload,
		State:      StatePending,
	}
	if err := q.put(e); err != nil {
		zap.L().Error("writeahead enqueue failed",
			zap.String("collection", collection), zap.String("op", op), zap.Error(err))
		return
	}
	id := e.ID
	if err := q.pool.Submit(func() { q.apply(id) }); err != nil {
		zap.L().Error("writeahead submit failed", zap.Int64("id", id), zap.Error(err))
	}
}

func (q *Queue) load(id int64) (*Entry, bool) {
	var e Entry
	found := false
	_ = q.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket([]byte(queueBucket)).Get(entryKey(id)); v != nil {
			if err := json.Unmarshal(v, &e); err == nil {
				found = true
			}
		}
		return nil
	})
	if !found {
		return nil, false
	}
	return &e, true
}

func (q *Queue) apply(id int64) {
	e, ok := q.load(id)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var err error
	switch e.Op {
	case OpReplace:
		err = q.client.ReplaceCollection(ctx, e.Collection, e.Payload)
	case OpInsert:
		err = q.client.InsertRecord(ctx, e.Collection, e.Payload)
	case OpUpdate:
		err = q.client.UpdateRecord(ctx, e.Collection, e.Payload)
	default:
		zap.L().Warn("writeahead unknown op", zap.String("op", e.Op))
		_ = q.delete(e.ID)
		return
	}

	if err == nil {
		// acknowledged, prune the entry
		_ = q.delete(e.ID)
		return
	}

	e.Attempts++
	e.State = StateFailed
	e.LastError = err.Error()
	if e.Attempts >= maxAttempts {
		zap.L().Error("writeahead entry dropped after max attempts",
			zap.String("collection", e.Collection), zap.String("op", e.Op),
			zap.Int("attempts", e.Attempts), zap.String("last_error", e.LastError))
		_ = q.delete(e.ID)
		return
	}
	zap.L().Warn("writeahead apply failed, will retry",
		zap.String("collection", e.Collection), zap.String("op", e.Op),
		zap.Int("attempts", e.Attempts), zap.Error(err))
	if err := q.put(e); err != nil {
		zap.L().Error("writeahead state update failed", zap.Int64("id", e.ID), zap.Error(err))
	}
}

// RetryFailed re-submits every failed entry, plus pending entries stranded by
// a previous process (their apply never ran). Called periodically by the
// scheduler; cheap no-op when the queue is empty.
func (q *Queue) RetryFailed() {
	stale := time.Now().Add(-time.Minute).Unix()
	var ids []int64
	_ = q.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(queueBucket)).ForEach(func(k, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return nil
			}
			if e.State == StateFailed || (e.State == StatePending && e.UpdatedAt < stale) {
				ids = append(ids, e.ID)
			}
			return nil
		})
	})
	for _, id := range ids {
		id := id
		_ = q.pool.Submit(func() { q.apply(id) })
	}
}

// Depth reports how many entries are awaiting acknowledgment.
func (q *Queue) Depth() int {
	count := 0
	_ = q.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket([]byte(queueBucket)).Stats().KeyN
		return nil
	})
	return count
}

// Close stops the worker and closes the queue file. Pending entries survive
// restarts and are retried on the next RetryFailed pass.
func (q *Queue) Close() error {
	q.pool.Release()
	return q.db.Close()
}
