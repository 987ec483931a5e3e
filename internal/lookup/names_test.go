package lookup

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sojus/helpdesk/internal/testkit"
)

type countingNames struct {
	calls atomic.Int32
	names map[string]string
}

func (c *countingNames) Name(_ context.Context, kind, id string) (string, bool, error) {
	c.calls.Add(1)
	name, ok := c.names[kind+":"+id]
	return name, ok, nil
}

func TestDirectoryNamesDoesNotFailClosed(t *testing.T) {
	store := testkit.NewSQLiteStore(t)
	dir := testkit.SeedDirectory(t, store.DirectoryWriter())
	names := NewDirectoryNames(store.Repositories().Directory)
	ctx := context.Background()

	cases := []struct {
		kind, id, want string
	}{
		{KindCourt, dir.InactiveCourt.ID, dir.InactiveCourt.Name},
		{KindHardware, dir.RetiredAsset.ID, dir.RetiredAsset.InventoryTag},
		{KindUser, dir.DisabledTech.ID, dir.DisabledTech.FullName},
	}
	for _, tc := range cases {
		name, ok, err := names.Name(ctx, tc.kind, tc.id)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, tc.want, name)
	}

	_, ok, err := names.Name(ctx, KindUser, "u-404")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = names.Name(ctx, "team", "1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCachedNamesFallsBackWhenRedisIsDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	next := &countingNames{names: map[string]string{"user:u-1": "Ana Martínez"}}
	cached := NewCachedNames(client, next, time.Minute, zap.NewNop())

	name, ok, err := cached.Name(context.Background(), KindUser, "u-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Ana Martínez", name)

	_, ok, err = cached.Name(context.Background(), KindUser, "u-2")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int32(2), next.calls.Load())
}

// emptyCache answers every GET with a miss and accepts every write without a server.
type emptyCache struct{}

func (emptyCache) DialHook(next redis.DialHook) redis.DialHook { return next }

func (emptyCache) ProcessHook(redis.ProcessHook) redis.ProcessHook {
	return func(_ context.Context, cmd redis.Cmder) error {
		if cmd.Name() == "get" {
			return redis.Nil
		}
		return nil
	}
}

func (emptyCache) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

// slowNames blocks until released and honors cancellation of the context it is given.
type slowNames struct {
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (s *slowNames) Name(ctx context.Context, _, _ string) (string, bool, error) {
	if s.calls.Add(1) == 1 {
		close(s.started)
	}
	select {
	case <-s.release:
		return "Ana Martínez", true, nil
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}

func TestCachedNamesSharedLoadSurvivesCallerCancellation(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	client.AddHook(emptyCache{})
	t.Cleanup(func() { _ = client.Close() })

	next := &slowNames{started: make(chan struct{}), release: make(chan struct{})}
	cached := NewCachedNames(client, next, time.Minute, zap.NewNop())

	type result struct {
		name string
		err  error
	}
	first, second := make(chan result, 1), make(chan result, 1)

	firstCtx, cancel := context.WithCancel(context.Background())
	go func() {
		name, _, err := cached.Name(firstCtx, KindUser, "u-1")
		first <- result{name, err}
	}()
	<-next.started
	go func() {
		name, _, err := cached.Name(context.Background(), KindUser, "u-1")
		second <- result{name, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	time.Sleep(20 * time.Millisecond)
	close(next.release)

	for _, ch := range []chan result{first, second} {
		select {
		case got := <-ch:
			require.NoError(t, got.err)
			assert.Equal(t, "Ana Martínez", got.name)
		case <-time.After(2 * time.Second):
			t.Fatal("name lookup did not return")
		}
	}
}
