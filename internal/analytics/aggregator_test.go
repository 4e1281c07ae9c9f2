package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeFetcher 记录调用次数，可按次数注入失败
type fakeFetcher struct {
	mu      sync.Mutex
	calls   int
	failFor int
	err     error
	logs    []ActivityLog
}

func (f *fakeFetcher) FetchActivity(_ context.Context, _, _ time.Time) ([]ActivityLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failFor {
		return nil, f.err
	}
	return f.logs, nil
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type sleepRecorder struct{ delays []time.Duration }

func (s *sleepRecorder) Sleep(_ context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return nil
}

func newTestAggregator(f Fetcher, cache Cache) (*Aggregator, *fakeClock, *sleepRecorder) {
	clock := &fakeClock{now: baseNow}
	sleeper := &sleepRecorder{}
	a := NewAggregator(f, cache, Config{
		CacheTTL:       5 * time.Minute,
		MaxCachedDays:  30,
		RetryAttempts:  3,
		RetryBaseDelay: time.Second,
	}, zap.NewNop()).WithClock(clock.Now).WithSleep(sleeper.Sleep)
	return a, clock, sleeper
}

func TestAggregator_CachesShortPeriods(t *testing.T) {
	ctx := context.Background()
	f := &fakeFetcher{logs: []ActivityLog{question("u1", "s1", "oi", baseNow.Add(-time.Hour))}}
	a, _, _ := newTestAggregator(f, nil)
	a.Start()

	first, err := a.Metrics(ctx, "7dias")
	require.NoError(t, err)
	second, err := a.Metrics(ctx, "7dias")
	require.NoError(t, err)

	assert.Equal(t, 1, f.calls)
	assert.Same(t, first, second)
}

func TestAggregator_LongPeriodAlwaysFetches(t *testing.T) {
	ctx := context.Background()
	f := &fakeFetcher{}
	a, _, _ := newTestAggregator(f, nil)
	a.Start()

	_, err := a.Metrics(ctx, "1ano")
	require.NoError(t, err)
	_, err = a.Metrics(ctx, "1ano")
	require.NoError(t, err)

	assert.Equal(t, 2, f.calls)
}

func TestAggregator_CacheExpires(t *testing.T) {
	ctx := context.Background()
	f := &fakeFetcher{}
	a, clock, _ := newTestAggregator(f, nil)
	a.Start()

	_, err := a.Metrics(ctx, "30dias")
	require.NoError(t, err)
	clock.Advance(4 * time.Minute)
	_, err = a.Metrics(ctx, "30dias")
	require.NoError(t, err)
	assert.Equal(t, 1, f.calls)

	clock.Advance(2 * time.Minute)
	_, err = a.Metrics(ctx, "30dias")
	require.NoError(t, err)
	assert.Equal(t, 2, f.calls)
}

func TestAggregator_NoCacheBeforeStartOrAfterStop(t *testing.T) {
	ctx := context.Background()
	f := &fakeFetcher{}
	a, _, _ := newTestAggregator(f, nil)

	_, _ = a.Metrics(ctx, "7dias")
	_, _ = a.Metrics(ctx, "7dias")
	assert.Equal(t, 2, f.calls, "未启用时不应缓存")

	a.Start()
	_, _ = a.Metrics(ctx, "7dias")
	_, _ = a.Metrics(ctx, "7dias")
	assert.Equal(t, 3, f.calls)

	require.NoError(t, a.Stop(ctx))
	assert.False(t, a.Active())
	_, _ = a.Metrics(ctx, "7dias")
	assert.Equal(t, 4, f.calls)

	// 重新启用后旧缓存已被清空
	a.Start()
	_, _ = a.Metrics(ctx, "7dias")
	assert.Equal(t, 5, f.calls)
}

func TestAggregator_CacheSharedByViewers(t *testing.T) {
	ctx := context.Background()
	f := &fakeFetcher{}
	a, _, _ := newTestAggregator(f, nil)

	// 两个页面同时打开
	a.Start()
	a.Start()
	first, err := a.Metrics(ctx, "7dias")
	require.NoError(t, err)

	// 其中一个离开，缓存仍对另一个有效
	require.NoError(t, a.Stop(ctx))
	assert.True(t, a.Active())
	second, err := a.Metrics(ctx, "7dias")
	require.NoError(t, err)
	assert.Equal(t, 1, f.calls)
	assert.Same(t, first, second)

	require.NoError(t, a.Stop(ctx))
	assert.False(t, a.Active())
	_, _ = a.Metrics(ctx, "7dias")
	assert.Equal(t, 2, f.calls)

	// 多余的 Stop 不会使计数变为负数
	require.NoError(t, a.Stop(ctx))
	a.Start()
	assert.True(t, a.Active())
	require.NoError(t, a.Stop(ctx))
	assert.False(t, a.Active())
}

func TestAggregator_CloseIgnoresViewers(t *testing.T) {
	ctx := context.Background()
	a, _, _ := newTestAggregator(&fakeFetcher{}, nil)
	a.Start()
	a.Start()
	require.NoError(t, a.Close(ctx))
	assert.False(t, a.Active())
}

func TestAggregator_CacheKeyedByPeriod(t *testing.T) {
	ctx := context.Background()
	f := &fakeFetcher{}
	a, _, _ := newTestAggregator(f, nil)
	a.Start()

	_, _ = a.Metrics(ctx, "7dias")
	_, _ = a.Metrics(ctx, "1dia")
	_, _ = a.Metrics(ctx, "7dias")
	assert.Equal(t, 2, f.calls)
}

func TestAggregator_UnknownPeriod(t *testing.T) {
	f := &fakeFetcher{}
	a, _, _ := newTestAggregator(f, nil)

	_, err := a.Metrics(context.Background(), "semana")
	assert.ErrorIs(t, err, ErrUnknownPeriod)
	assert.Zero(t, f.calls)
}

func TestAggregator_RetriesWithBackoff(t *testing.T) {
	f := &fakeFetcher{failFor: 2, err: errors.New("timeout")}
	a, _, sleeper := newTestAggregator(f, nil)

	m, err := a.Metrics(context.Background(), "7dias")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 3, f.calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeper.delays)
}

func TestAggregator_GivesUpAfterMaxAttempts(t *testing.T) {
	boom := errors.New("conexão recusada")
	f := &fakeFetcher{failFor: 10, err: boom}
	a, _, sleeper := newTestAggregator(f, nil)
	a.Start()

	_, err := a.Metrics(context.Background(), "7dias")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, f.calls)
	assert.Len(t, sleeper.delays, 2)

	// 失败结果不进入缓存
	f.failFor = 0
	_, err = a.Metrics(context.Background(), "7dias")
	require.NoError(t, err)
	assert.Equal(t, 4, f.calls)
}

func TestAggregator_FreshBypassesCache(t *testing.T) {
	ctx := context.Background()
	f := &fakeFetcher{}
	a, _, _ := newTestAggregator(f, nil)
	a.Start()

	_, _ = a.Metrics(ctx, "1dia")
	m, err := a.Fresh(ctx, "1dia")
	require.NoError(t, err)
	assert.Equal(t, baseNow, m.GeneratedAt)
	assert.Equal(t, 2, f.calls)
}

func TestWithRetry_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := withRetry(ctx, 3, time.Millisecond, ContextSleep, nil, func(context.Context) error {
		calls++
		return errors.New("falhou")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
