package generation

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	t.Parallel()
	cid := uuid.New()
	req := Request{Text: "notes", Count: 10, Level: LevelEasy, Language: "English"}

	assert.Equal(t, Key(cid, req), Key(cid, req))
	assert.NotEqual(t, Key(cid, req), Key(uuid.New(), req))

	other := req
	other.Text = "different notes"
	assert.NotEqual(t, Key(cid, req), Key(cid, other))

	other = req
	other.Count = 11
	assert.NotEqual(t, Key(cid, req), Key(cid, other))

	other = req
	other.Level = LevelHard
	assert.NotEqual(t, Key(cid, req), Key(cid, other))
}

func TestGuardSharesInFlightCalls(t *testing.T) {
	t.Parallel()
	g := NewGuard[[]Pair]()
	var calls atomic.Int32
	release := make(chan struct{})

	fn := func() ([]Pair, error) {
		calls.Add(1)
		<-release
		return []Pair{{Term: "t", Definition: "definition"}}, nil
	}

	const callers = 5
	var (
		wg      sync.WaitGroup
		started sync.WaitGroup
		results = make([][]Pair, callers)
	)
	started.Add(callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			started.Done()
			pairs, _, err := g.Do(context.Background(), "same", fn)
			assert.NoError(t, err)
			results[i] = pairs
		}(i)
	}
	started.Wait()
	// Give every goroutine time to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Len(t, r, 1)
	}
}

func TestGuardReleasesKeyAfterReturn(t *testing.T) {
	t.Parallel()
	g := NewGuard[[]Pair]()
	var calls atomic.Int32
	fn := func() ([]Pair, error) {
		calls.Add(1)
		return nil, nil
	}

	_, _, err := g.Do(context.Background(), "k", fn)
	require.NoError(t, err)
	_, _, err = g.Do(context.Background(), "k", fn)
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
}

func TestGuardPropagatesErrors(t *testing.T) {
	t.Parallel()
	g := NewGuard[[]Pair]()
	boom := errors.New("upstream down")

	_, _, err := g.Do(context.Background(), "k", func() ([]Pair, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}

func TestGuardHonorsContext(t *testing.T) {
	t.Parallel()
	g := NewGuard[[]Pair]()
	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := g.Do(ctx, "k", func() ([]Pair, error) {
		<-release
		return nil, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
