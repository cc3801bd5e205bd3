package store_test

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/kumarlokesh/sysd/exercises/cow-trie/internal/store"
)

func TestStore(t *testing.T) {
	s := store.New[string]()

	t.Run("Get on empty store", func(t *testing.T) {
		_, ok := s.Get("missing")
		assert.False(t, ok)
		assert.Equal(t, uint64(0), s.Version())
		assert.Equal(t, 0, s.Len())
	})

	t.Run("Put and Get", func(t *testing.T) {
		s.Put("hello", "world")

		g, ok := s.Get("hello")
		require.True(t, ok)
		assert.Equal(t, "world", g.Value())
		assert.Equal(t, uint64(1), s.Version())
		assert.Equal(t, 1, s.Len())
	})

	t.Run("Empty key", func(t *testing.T) {
		s.Put("", "root")

		g, ok := s.Get("")
		require.True(t, ok)
		assert.Equal(t, "root", g.Value())

		g, ok = s.Get("hello")
		require.True(t, ok)
		assert.Equal(t, "world", g.Value())
	})

	t.Run("Remove", func(t *testing.T) {
		s.Remove("")
		_, ok := s.Get("")
		assert.False(t, ok)
		assert.Equal(t, uint64(3), s.Version())
	})

	t.Run("Remove absent key publishes nothing", func(t *testing.T) {
		before := s.Version()
		s.Remove("nope")
		assert.Equal(t, before, s.Version())
		assert.Equal(t, 1, s.Len())
	})
}

func TestStore_GuardOutlivesWrites(t *testing.T) {
	s := store.New[int]()
	s.Put("cat", 1)
	s.Put("cats", 3)

	g, ok := s.Get("cat")
	require.True(t, ok)

	s.Remove("cat")
	s.Put("cats", 30)
	s.Put("cat", 100)

	assert.Equal(t, 1, g.Value())
	old, ok := g.Snapshot().Get("cats")
	require.True(t, ok)
	assert.Equal(t, 3, old)

	g2, ok := s.Get("cat")
	require.True(t, ok)
	assert.Equal(t, 100, g2.Value())
}

func TestStore_SnapshotIsolation(t *testing.T) {
	s := store.New[string]()
	s.Put("a", "1")

	snap := s.Snapshot()
	s.Put("b", "2")
	s.Remove("a")

	v, ok := snap.Get("a")
	require.True(t, ok)
	assert.Equal(t, "1", v)
	_, ok = snap.Get("b")
	assert.False(t, ok)
	assert.Equal(t, 1, snap.Len())
}

func TestStore_ConcurrentWritersAndReaders(t *testing.T) {
	const writers = 8
	const keysPerWriter = 200

	s := store.New[int]()

	var g errgroup.Group
	for w := 0; w < writers; w++ {
		g.Go(func() error {
			for i := 0; i < keysPerWriter; i++ {
				s.Put(fmt.Sprintf("w%d/k%d", w, i), w*keysPerWriter+i)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, writers*keysPerWriter, s.Len())
	assert.Equal(t, uint64(writers*keysPerWriter), s.Version())

	var readers errgroup.Group
	for w := 0; w < writers; w++ {
		readers.Go(func() error {
			for i := 0; i < keysPerWriter; i++ {
				key := fmt.Sprintf("w%d/k%d", w, i)
				g, ok := s.Get(key)
				if !ok {
					return fmt.Errorf("key %s not found", key)
				}
				if want := w*keysPerWriter + i; g.Value() != want {
					return fmt.Errorf("key %s: got %d, want %d", key, g.Value(), want)
				}
			}
			return nil
		})
	}
	require.NoError(t, readers.Wait())
}

func TestStore_ReadersDuringWrites(t *testing.T) {
	s := store.New[int]()
	s.Put("stable", 7)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	errs := make(chan error, 4)

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				g, ok := s.Get("stable")
				if !ok || g.Value() != 7 {
					errs <- fmt.Errorf("stable key changed: %v %v", g.Value(), ok)
					return
				}
			}
		}()
	}

	for i := 0; i < 1000; i++ {
		key := fmt.Sprintf("churn-%d", i%50)
		s.Put(key, i)
		if i%3 == 0 {
			s.Remove(key)
		}
	}
	close(stop)
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestStore_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := store.NewMetrics(reg)
	s := store.New[string](store.WithMetrics(m))

	s.Put("a", "1")
	s.Put("b", "2")
	s.Remove("a")
	s.Remove("a")
	s.Get("b")
	s.Get("a")
	s.Get("a")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Operations.WithLabelValues("put", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("remove", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("remove", "noop")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("get", "hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Operations.WithLabelValues("get", "miss")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Version))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Keys))

	count, err := testutil.GatherAndCount(reg, "triestore_write_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStore_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	s := store.New[int](store.WithLogger(logger))

	s.Put("key", 1)

	out := buf.String()
	assert.Contains(t, out, `"component":"store"`)
	assert.Contains(t, out, `"op":"put"`)
	assert.Contains(t, out, `"version":1`)
	assert.Contains(t, out, `"message":"published version"`)
}
