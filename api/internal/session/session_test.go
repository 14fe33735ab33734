package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"esl-toolkit/api/internal/gamify"
)

var rubric = gamify.Extraction{
	TotalPossiblePoints: 50,
	Criteria:            []gamify.Criterion{{Category: "Fluency", Points: 25}, {Category: "Accuracy", Points: 25}},
	Badge:               &gamify.Badge{Name: "Career Champion", Description: "Well done"},
}

// exerciseStore runs the behaviour every Store must share.
func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()

	id, st, err := s.Create(ctx, rubric)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Empty(t, st.Awarded)
	assert.False(t, st.Finalized)

	st, changed, err := s.Toggle(ctx, id, "Fluency")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"Fluency"}, st.Awarded)
	assert.Equal(t, 25, st.TotalAwarded)

	_, changed, err = s.Toggle(ctx, id, "Creativity")
	require.NoError(t, err)
	assert.False(t, changed)

	_, _, err = s.Toggle(ctx, id, "Accuracy")
	require.NoError(t, err)

	st, err = s.Finalize(ctx, id)
	require.NoError(t, err)
	assert.True(t, st.Finalized)
	assert.True(t, st.BadgeUnlocked)

	st, changed, err = s.Toggle(ctx, id, "Fluency")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, []string{"Fluency", "Accuracy"}, st.Awarded)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, st, got)

	require.NoError(t, s.Delete(ctx, id))
	_, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = s.Toggle(ctx, id, "Fluency")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Finalize(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, id), ErrNotFound)
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory(time.Hour))
}

func TestMemory_Expiry(t *testing.T) {
	s := NewMemory(time.Minute)
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	id, _, err := s.Create(context.Background(), rubric)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	now = now.Add(2 * time.Minute)
	_, err = s.Get(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, s.Len())
}

func TestMemory_ConcurrentToggles(t *testing.T) {
	s := NewMemory(time.Hour)
	id, _, err := s.Create(context.Background(), rubric)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = s.Toggle(context.Background(), id, "Fluency")
		}()
	}
	wg.Wait()
	st, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, st.Awarded)
}

// Runs only against a real server, e.g. REDIS_TEST_ADDR=localhost:6379.
func TestRedis(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(context.Background()).Err())

	s := NewRedis(rdb, time.Minute)
	exerciseStore(t, s)

	id, _, err := s.Create(context.Background(), rubric)
	require.NoError(t, err)
	ttl, err := rdb.TTL(context.Background(), redisKey(id)).Result()
	require.NoError(t, err)
	_, _, err = s.Toggle(context.Background(), id, "Fluency")
	require.NoError(t, err)
	ttl2, err := rdb.TTL(context.Background(), redisKey(id)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl2, time.Duration(0))
	assert.LessOrEqual(t, ttl2, ttl)
}

func TestRedisKey(t *testing.T) {
	assert.Equal(t, "esl:awards:abc", redisKey("abc"))
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingPublisher) Publish(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func TestObserved(t *testing.T) {
	pub := &recordingPublisher{}
	s := NewObserved(NewMemory(time.Hour), pub)
	ctx := context.Background()

	id, _, err := s.Create(ctx, rubric)
	require.NoError(t, err)
	_, _, _ = s.Toggle(ctx, id, "Fluency")
	_, _, _ = s.Toggle(ctx, id, "Unknown")
	_, _, _ = s.Toggle(ctx, id, "Accuracy")
	_, err = s.Finalize(ctx, id)
	require.NoError(t, err)
	_, err = s.Finalize(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, []string{EventToggled, EventToggled, EventFinalized, EventBadgeUnlocked}, pub.types())
	assert.Equal(t, "Career Champion", pub.events[3].BadgeName)
}

func TestHub(t *testing.T) {
	hub := NewHub(zap.NewNop())
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := hub.Register(r.URL.Query().Get("id"), conn)
		defer hub.Unregister(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?id=s1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Count("s1") == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(Event{Type: EventToggled, SessionID: "other"})
	hub.Publish(Event{Type: EventToggled, SessionID: "s1", Category: "Fluency"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Event
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, EventToggled, got.Type)
	assert.Equal(t, "Fluency", got.Category)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Count("s1") == 0 }, time.Second, 10*time.Millisecond)
}
