package directory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"yuime-backend/internal/application/filter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu     sync.Mutex
	states map[string]filter.State
	err    error
}

func newMemStore() *memStore {
	return &memStore{states: map[string]filter.State{}}
}

func (m *memStore) Load(_ context.Context, scope, id string) (filter.State, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return filter.State{}, false, m.err
	}
	st, ok := m.states[scope+":"+id]
	return st, ok, nil
}

func (m *memStore) Save(_ context.Context, scope, id string, st filter.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[scope+":"+id] = st
	return m.err
}

func (m *memStore) Delete(_ context.Context, scope, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, scope+":"+id)
	return m.err
}

func (m *memStore) get(key string) (filter.State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[key]
	return st, ok
}

func testSchema() filter.Schema {
	return filter.NewSchema(filter.Facet{
		Dimension: "status",
		Values:    []string{"active", "inactive"},
	})
}

func TestRegistry_GetReturnsSameSession(t *testing.T) {
	r := &Registry{Scope: "staff", Schema: testSchema()}
	defer r.Close()

	a := r.Get(context.Background(), "s1")
	b := r.Get(context.Background(), "s1")
	c := r.Get(context.Background(), "s2")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_SavesAndRestoresSnapshot(t *testing.T) {
	store := newMemStore()
	r := &Registry{Scope: "staff", Schema: testSchema(), Store: store, QuietPeriod: 10 * time.Millisecond}

	s := r.Get(context.Background(), "s1")
	require.NoError(t, s.SetCategoricalFilter("status", "active"))
	s.UpdateSearchInput("山田")

	require.Eventually(t, func() bool {
		st, ok := store.get("staff:s1")
		return ok && st.Term == "山田"
	}, time.Second, 5*time.Millisecond)
	r.Close()

	restored := &Registry{Scope: "staff", Schema: testSchema(), Store: store}
	defer restored.Close()
	st := restored.Get(context.Background(), "s1").State()
	assert.Equal(t, "山田", st.Term)
	assert.Equal(t, "active", st.Selector("status"))
}

func TestRegistry_LoadErrorStartsEmpty(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("redis down")
	r := &Registry{Scope: "staff", Schema: testSchema(), Store: store}
	defer r.Close()

	st := r.Get(context.Background(), "s1").State()
	assert.True(t, st.IsZero())
}

func TestRegistry_EvictsLeastRecentlyUsed(t *testing.T) {
	r := &Registry{Scope: "staff", Schema: testSchema(), MaxSessions: 2}
	defer r.Close()

	first := r.Get(context.Background(), "s1")
	time.Sleep(time.Millisecond)
	r.Get(context.Background(), "s2")
	time.Sleep(time.Millisecond)
	r.Get(context.Background(), "s1")
	time.Sleep(time.Millisecond)
	r.Get(context.Background(), "s3")

	assert.Equal(t, 2, r.Len())
	assert.Same(t, first, r.Get(context.Background(), "s1"))
}

func TestRegistry_OnCommitFiresForTermChangesOnly(t *testing.T) {
	var mu sync.Mutex
	commits := 0
	r := &Registry{
		Scope:       "staff",
		Schema:      testSchema(),
		QuietPeriod: 10 * time.Millisecond,
		OnCommit: func(string) {
			mu.Lock()
			commits++
			mu.Unlock()
		},
	}
	defer r.Close()

	s := r.Get(context.Background(), "s1")
	require.NoError(t, s.SetCategoricalFilter("status", "inactive"))
	s.UpdateSearchInput("佐藤")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return commits == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "佐藤", s.State().Term)
}

func TestRegistry_RestartDuringQuietPeriodStillAppliesSearch(t *testing.T) {
	store := newMemStore()
	r := &Registry{Scope: "staff", Schema: testSchema(), Store: store, QuietPeriod: time.Hour}
	r.Get(context.Background(), "s1").UpdateSearchInput("山田")
	r.Close()

	saved, ok := store.get("staff:s1")
	require.True(t, ok)
	require.Equal(t, "山田", saved.RawSearch)
	require.Equal(t, "", saved.Term)

	restored := &Registry{Scope: "staff", Schema: testSchema(), Store: store, QuietPeriod: 10 * time.Millisecond}
	defer restored.Close()
	s := restored.Get(context.Background(), "s1")

	require.Eventually(t, func() bool {
		return s.State().Term == "山田" && !s.SearchPending()
	}, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		st, ok := store.get("staff:s1")
		return ok && st.Term == "山田"
	}, time.Second, 5*time.Millisecond)
}

func TestRegistry_ClearDeletesSnapshot(t *testing.T) {
	store := newMemStore()
	r := &Registry{Scope: "staff", Schema: testSchema(), Store: store}
	defer r.Close()

	s := r.Get(context.Background(), "s1")
	require.NoError(t, s.SetCategoricalFilter("status", "active"))
	_, ok := store.get("staff:s1")
	require.True(t, ok)

	s.ClearAllFilters()
	_, ok = store.get("staff:s1")
	assert.False(t, ok)
}

// blockingStore holds Load for one session ID until release is closed.
type blockingStore struct {
	*memStore
	slowID  string
	started chan struct{}
	release chan struct{}
}

func (b *blockingStore) Load(ctx context.Context, scope, id string) (filter.State, bool, error) {
	if id == b.slowID {
		close(b.started)
		<-b.release
	}
	return b.memStore.Load(ctx, scope, id)
}

func TestRegistry_SlowLoadDoesNotBlockLiveSessions(t *testing.T) {
	store := &blockingStore{
		memStore: newMemStore(),
		slowID:   "new-user",
		started:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	r := &Registry{Scope: "staff", Schema: testSchema(), Store: store}
	defer r.Close()
	warm := r.Get(context.Background(), "warm")

	slowDone := make(chan struct{})
	go func() {
		defer close(slowDone)
		r.Get(context.Background(), "new-user")
	}()
	<-store.started

	got := make(chan *filter.Session, 1)
	go func() { got <- r.Get(context.Background(), "warm") }()
	select {
	case s := <-got:
		assert.Same(t, warm, s)
	case <-time.After(time.Second):
		t.Fatal("Get for a live session waited on another session's load")
	}

	close(store.release)
	<-slowDone
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_ConcurrentFirstGetsShareOneSession(t *testing.T) {
	r := &Registry{Scope: "staff", Schema: testSchema(), Store: newMemStore()}
	defer r.Close()

	const n = 8
	sessions := make([]*filter.Session, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sessions[i] = r.Get(context.Background(), "s1")
		}()
	}
	wg.Wait()

	for _, s := range sessions[1:] {
		assert.Same(t, sessions[0], s)
	}
	assert.Equal(t, 1, r.Len())
}
