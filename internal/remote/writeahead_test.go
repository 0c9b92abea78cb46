package remote

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient records applied operations and can be told to fail.
type fakeClient struct {
	mu       sync.Mutex
	failing  bool
	replaces []string
	inserts  []string
	updates  []string
}

func (f *fakeClient) Configured() bool { return true }

func (f *fakeClient) FetchCollection(ctx context.Context, name string) ([]byte, error) {
	return []byte("[]"), nil
}

func (f *fakeClient) ReplaceCollection(ctx context.Context, name string, records []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("remote down")
	}
	f.replaces = append(f.replaces, name)
	return nil
}

func (f *fakeClient) InsertRecord(ctx context.Context, name string, record []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("remote down")
	}
	f.inserts = append(f.inserts, name)
	return nil
}

func (f *fakeClient) UpdateRecord(ctx context.Context, name string, record []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("remote down")
	}
	f.updates = append(f.updates, name)
	return nil
}

func (f *fakeClient) Subscribe(channel string, onInsert, onUpdate func([]byte)) error {
	return nil
}

func (f *fakeClient) setFailing(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = v
}

func (f *fakeClient) replaceCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.replaces)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func TestQueueAppliesAndPrunes(t *testing.T) {
	client := &fakeClient{}
	queue, err := NewQueue(t.TempDir(), client)
	require.NoError(t, err)
	defer queue.Close()

	queue.Enqueue(CollectionProducts, OpReplace, []byte("[]"))
	queue.Enqueue(CollectionOrders, OpUpdate, []byte("{}"))

	waitFor(t, func() bool { return queue.Depth() == 0 })
	waitFor(t, func() bool { return client.replaceCount() == 1 })
}

func TestQueueKeepsFailedEntriesUntilRetry(t *testing.T) {
	client := &fakeClient{}
	client.setFailing(true)
	queue, err := NewQueue(t.TempDir(), client)
	require.NoError(t, err)
	defer queue.Close()

	queue.Enqueue(CollectionProducts, OpReplace, []byte("[]"))

	// the apply ran and failed; the entry stays queued
	waitFor(t, func() bool { return queue.Depth() == 1 })
	assert.Equal(t, 0, client.replaceCount())

	client.setFailing(false)
	queue.RetryFailed()

	waitFor(t, func() bool { return queue.Depth() == 0 })
	assert.Equal(t, 1, client.replaceCount())
}

func TestQueueSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	client := &fakeClient{}
	client.setFailing(true)

	queue, err := NewQueue(dir, client)
	require.NoError(t, err)
	queue.Enqueue(CollectionUsers, OpReplace, []byte("[]"))
	waitFor(t, func() bool { return queue.Depth() == 1 })
	require.NoError(t, queue.Close())

	client.setFailing(false)
	reopened, err := NewQueue(dir, client)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, 1, reopened.Depth())
	reopened.RetryFailed()
	waitFor(t, func() bool { return reopened.Depth() == 0 })
	assert.Equal(t, 1, client.replaceCount())
}
