package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReader struct {
	mu      sync.Mutex
	queue   []kafka.Message
	commits []kafka.Message
	want    int
	done    context.CancelFunc
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	f.mu.Lock()
	if len(f.queue) > 0 {
		m := f.queue[0]
		f.queue = f.queue[1:]
		f.mu.Unlock()
		return m, nil
	}
	f.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commits = append(f.commits, msgs...)
	if len(f.commits) == f.want {
		f.done()
	}
	return nil
}

func (f *fakeReader) Close() error { return nil }

func (f *fakeReader) committed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.commits))
	for _, m := range f.commits {
		out = append(out, fmt.Sprintf("%d/%d", m.Partition, m.Offset))
	}
	return out
}

func testConsumer(r reader, workers int) *Consumer {
	return &Consumer{r: r, workers: workers, backoff: time.Millisecond, maxBackoff: 4 * time.Millisecond, log: zap.NewNop()}
}

func TestConsumerRetriesBeforeCommittingLaterOffsets(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r := &fakeReader{
		queue: []kafka.Message{
			{Partition: 0, Offset: 10},
			{Partition: 0, Offset: 11},
			{Partition: 1, Offset: 7},
		},
		want: 3,
		done: cancel,
	}

	var mu sync.Mutex
	attempts := map[string]int{}
	var order []string
	h := func(_ context.Context, m kafka.Message) error {
		mu.Lock()
		defer mu.Unlock()
		id := fmt.Sprintf("%d/%d", m.Partition, m.Offset)
		attempts[id]++
		order = append(order, id)
		if id == "0/10" && attempts[id] < 3 {
			return errors.New("deadlock detected")
		}
		return nil
	}

	require.NoError(t, testConsumer(r, 2).Start(ctx, h))

	assert.Equal(t, 3, attempts["0/10"])
	assert.Equal(t, 1, attempts["0/11"])

	var p0 []string
	for _, id := range r.committed() {
		if id[0] == '0' {
			p0 = append(p0, id)
		}
	}
	assert.Equal(t, []string{"0/10", "0/11"}, p0)
	assert.ElementsMatch(t, []string{"0/10", "0/11", "1/7"}, r.committed())

	// the later offset was not handled until the failing one succeeded
	var p0order []string
	for _, id := range order {
		if id[0] == '0' {
			p0order = append(p0order, id)
		}
	}
	assert.Equal(t, []string{"0/10", "0/10", "0/10", "0/11"}, p0order)
}

func TestConsumerStopsRetryingWithoutCommitOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &fakeReader{queue: []kafka.Message{{Partition: 0, Offset: 1}}, want: -1, done: cancel}

	var calls int
	var mu sync.Mutex
	h := func(context.Context, kafka.Message) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 3 {
			cancel()
		}
		return errors.New("db down")
	}

	require.NoError(t, testConsumer(r, 1).Start(ctx, h))
	assert.Empty(t, r.committed())
	assert.GreaterOrEqual(t, calls, 3)
}
