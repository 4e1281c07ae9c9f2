package analytics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/admVeloHub/front-console-sub000/internal/metrics"
)

// Fetcher 拉取时间窗口内的活动日志
type Fetcher interface {
	FetchActivity(ctx context.Context, from, to time.Time) ([]ActivityLog, error)
}

// Config 聚合器配置
type Config struct {
	CacheTTL       time.Duration
	MaxCachedDays  int
	RetryAttempts  int
	RetryBaseDelay time.Duration
	FetchTimeout   time.Duration
	Aggregate      AggregateOptions
}

// Aggregator 带生命周期的活动日志聚合器
//
// 缓存只在 Start 与 Stop 之间生效；Stop 清空缓存。
// 超过 MaxCachedDays 的周期每次都重新拉取。
type Aggregator struct {
	fetcher Fetcher
	cache   Cache
	cfg     Config
	logger  *zap.Logger

	now   func() time.Time
	sleep SleepFunc

	mu         sync.Mutex
	active     bool
	viewers    int
	generation uint64
}

// NewAggregator 创建聚合器，cache 为 nil 时使用内存缓存
func NewAggregator(fetcher Fetcher, cache Cache, cfg Config, logger *zap.Logger) *Aggregator {
	if cache == nil {
		cache = NewMemoryCache()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.MaxCachedDays <= 0 {
		cfg.MaxCachedDays = 30
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = time.Second
	}
	return &Aggregator{
		fetcher: fetcher,
		cache:   cache,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
		sleep:   ContextSleep,
	}
}

// WithClock 注入时钟
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// WithSleep 注入重试等待
func (a *Aggregator) WithSleep(sleep SleepFunc) *Aggregator {
	a.sleep = sleep
	return a
}

// Start 登记一个查看者，首个查看者启用缓存
func (a *Aggregator) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.viewers++
	if a.active {
		return
	}
	a.active = true
	a.generation++
	a.logger.Info("缓存已启用")
}

// Stop 注销一个查看者，最后一个离开时停用并清空缓存
func (a *Aggregator) Stop(ctx context.Context) error {
	a.mu.Lock()
	if a.viewers > 0 {
		a.viewers--
	}
	if a.viewers > 0 {
		a.mu.Unlock()
		return nil
	}
	a.mu.Unlock()
	return a.Close(ctx)
}

// Close 无视查看者数量，直接停用并清空缓存
func (a *Aggregator) Close(ctx context.Context) error {
	a.mu.Lock()
	wasActive := a.active
	a.active = false
	a.viewers = 0
	a.generation++
	a.mu.Unlock()

	if err := a.cache.Clear(ctx); err != nil {
		return fmt.Errorf("falha ao limpar cache: %w", err)
	}
	if wasActive {
		a.logger.Info("缓存已停用")
	}
	return nil
}

// Active 缓存是否启用
func (a *Aggregator) Active() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

// Metrics 返回周期统计，可缓存时优先读缓存
func (a *Aggregator) Metrics(ctx context.Context, periodKey string) (*Metrics, error) {
	period, err := ParsePeriod(periodKey)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	active, gen := a.active, a.generation
	a.mu.Unlock()

	cacheable := active && period.Days <= a.cfg.MaxCachedDays
	if cacheable {
		entry, ok, err := a.cache.Get(ctx, period.Key)
		if err != nil {
			a.logger.Warn("读取缓存失败", zap.String("period", period.Key), zap.Error(err))
		}
		if ok && entry != nil && a.now().Sub(entry.StoredAt) < a.cfg.CacheTTL {
			metrics.AnalyticsCacheHitsTotal.WithLabelValues(period.Key).Inc()
			return entry.Metrics, nil
		}
	}
	metrics.AnalyticsCacheMissesTotal.WithLabelValues(period.Key).Inc()

	m, err := a.compute(ctx, period)
	if err != nil {
		return nil, err
	}

	if cacheable {
		a.mu.Lock()
		stillValid := a.active && a.generation == gen
		a.mu.Unlock()
		if stillValid {
			entry := &CacheEntry{Metrics: m, StoredAt: a.now()}
			if err := a.cache.Set(ctx, period.Key, entry, a.cfg.CacheTTL); err != nil {
				a.logger.Warn("写入缓存失败", zap.String("period", period.Key), zap.Error(err))
			}
		}
	}
	return m, nil
}

// Fresh 忽略缓存直接计算
func (a *Aggregator) Fresh(ctx context.Context, periodKey string) (*Metrics, error) {
	period, err := ParsePeriod(periodKey)
	if err != nil {
		return nil, err
	}
	return a.compute(ctx, period)
}

func (a *Aggregator) compute(ctx context.Context, period Period) (*Metrics, error) {
	now := a.now()
	from, to := period.Range(now)

	var entries []ActivityLog
	onRetry := func(attempt int, err error) {
		metrics.AnalyticsFetchRetriesTotal.Inc()
		a.logger.Warn("拉取活动日志失败，准备重试",
			zap.String("period", period.Key),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
	err := withRetry(ctx, a.cfg.RetryAttempts, a.cfg.RetryBaseDelay, a.sleep, onRetry, func(ctx context.Context) error {
		if a.cfg.FetchTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, a.cfg.FetchTimeout)
			defer cancel()
		}
		start := time.Now()
		logs, err := a.fetcher.FetchActivity(ctx, from, to)
		metrics.AnalyticsFetchDurationSeconds.Observe(time.Since(start).Seconds())
		if err != nil {
			return err
		}
		entries = logs
		return nil
	})
	if err != nil {
		a.logger.Error("拉取活动日志失败", zap.String("period", period.Key), zap.Error(err))
		return nil, fmt.Errorf("falha ao carregar atividades: %w", err)
	}

	m := Aggregate(entries, period, from, to, a.cfg.Aggregate)
	m.GeneratedAt = now
	return m, nil
}
