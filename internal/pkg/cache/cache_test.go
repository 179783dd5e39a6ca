package cache

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type surveyList struct {
	Titles []string `json:"titles"`
}

func newTestCache() (*Cache, *MemoryStore) {
	store := NewMemoryStore(time.Minute, time.Minute)
	return New(store, zerolog.Nop()), store
}

func TestKey(t *testing.T) {
	assert.Equal(t, "surveys:item:s1:u1", Key("surveys", "item", "s1", "u1"))
	assert.Equal(t, "surveys:list", Key("surveys", "list"))

	params := url.Values{}
	params.Set("status", "active")
	params.Set("page", "2")
	assert.Equal(t, "page=2&status=active", ParamsPart(params))
	assert.Equal(t, "-", ParamsPart(nil))
}

func TestMemoryStoreInvalidatePrefix(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute, time.Minute)

	require.NoError(t, store.Set(ctx, "surveys:list:a", []byte("1")))
	require.NoError(t, store.Set(ctx, "surveys:item:b", []byte("2")))
	require.NoError(t, store.Set(ctx, "responses:item:c", []byte("3")))

	removed, err := store.InvalidatePrefix(ctx, "surveys:")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, store.Len())

	_, ok, err := store.Get(ctx, "responses:item:c")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFetchCachesLoadedValue(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache()

	calls := 0
	load := func(context.Context) (surveyList, error) {
		calls++
		return surveyList{Titles: []string{"Water access"}}, nil
	}

	first, err := Fetch(ctx, c, "surveys:list:u1", load)
	require.NoError(t, err)
	second, err := Fetch(ctx, c, "surveys:list:u1", load)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestFetchDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	c, store := newTestCache()

	_, err := Fetch(ctx, c, "surveys:list:u1", func(context.Context) (surveyList, error) {
		return surveyList{}, errors.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestInvalidateForcesRefetch(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache()

	version := 0
	load := func(context.Context) (int, error) {
		version++
		return version, nil
	}

	v, err := Fetch(ctx, c, "surveys:item:s1:u1", load)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	require.NoError(t, c.Invalidate(ctx, "surveys"))

	v, err = Fetch(ctx, c, "surveys:item:s1:u1", load)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestStaleLoadIsReturnedButNotStored(t *testing.T) {
	ctx := context.Background()
	c, store := newTestCache()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan int)

	go func() {
		v, _ := Fetch(ctx, c, "surveys:list:u1", func(context.Context) (int, error) {
			close(started)
			<-release
			return 1, nil
		})
		done <- v
	}()

	<-started
	// a write lands while the first load is still in flight
	require.NoError(t, c.Invalidate(ctx, "surveys"))
	close(release)

	assert.Equal(t, 1, <-done)
	_, ok, err := store.Get(ctx, "surveys:list:u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewerLoadWins(t *testing.T) {
	ctx := context.Background()
	c, store := newTestCache()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		_, _ = Fetch(ctx, c, "surveys:list:u1", func(context.Context) (string, error) {
			close(started)
			<-release
			return "old", nil
		})
		close(done)
	}()

	<-started
	v, err := Fetch(ctx, c, "surveys:list:u1", func(context.Context) (string, error) {
		return "new", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "new", v)

	close(release)
	<-done

	data, ok, err := store.Get(ctx, "surveys:list:u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `"new"`, string(data))
}

func TestFetchLeavesNoInFlightLoadsBehind(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache()

	_, err := Fetch(ctx, c, "surveys:item:u1:missing", func(context.Context) (int, error) {
		return 0, errors.New("upstream returned status 404")
	})
	require.Error(t, err)

	_, err = Fetch(ctx, c, "surveys:item:u1:odd", func(context.Context) (chan int, error) {
		return make(chan int), nil
	})
	require.NoError(t, err)

	v, err := Fetch(ctx, c, "surveys:list:u1:search=well", func(ctx context.Context) (int, error) {
		// a write lands before the load returns
		require.NoError(t, c.Invalidate(ctx, "surveys"))
		return 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	_, err = Fetch(ctx, c, "surveys:list:u1:page=1", func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)

	assert.Equal(t, 0, c.seq.Outstanding())
}
