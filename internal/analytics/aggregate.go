package analytics

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// emailPattern 类邮箱子串，命中的条目视为噪声/敏感信息
var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

const trailingPunctuation = "?!.,;:…"

var questionKeys = []string{"question", "pergunta", "text"}

// AggregateOptions 汇总参数
type AggregateOptions struct {
	QuestionAction string
	TopQuestions   int
	RankingSize    int
	FeedSize       int
	Location       *time.Location
}

func (o AggregateOptions) withDefaults() AggregateOptions {
	if o.QuestionAction == "" {
		o.QuestionAction = "question_asked"
	}
	if o.TopQuestions <= 0 {
		o.TopQuestions = 10
	}
	if o.RankingSize <= 0 {
		o.RankingSize = 10
	}
	if o.FeedSize <= 0 {
		o.FeedSize = 10
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	return o
}

// NormalizeQuestion 小写、压缩空白并去掉结尾标点
func NormalizeQuestion(q string) string {
	q = strings.ToLower(strings.Join(strings.Fields(q), " "))
	q = strings.TrimRight(q, trailingPunctuation)
	return strings.TrimSpace(q)
}

// ContainsEmail 是否包含类邮箱子串
func ContainsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// QuestionText 从 details 中取问题文本
func QuestionText(e ActivityLog) string {
	for _, k := range questionKeys {
		if v, ok := e.Details[k].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// BucketStart 返回 t 所在桶的起点；周从周一开始
func BucketStart(t time.Time, g Granularity, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	switch g {
	case Week:
		offset := (int(t.Weekday()) + 6) % 7
		return time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
	case Month:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
}

func nextBucket(t time.Time, g Granularity) time.Time {
	switch g {
	case Week:
		return t.AddDate(0, 0, 7)
	case Month:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

func bucketLabel(t time.Time, g Granularity) string {
	if g == Month {
		return t.Format("01/2006")
	}
	return t.Format("02/01")
}

// Aggregate 在 [from, to] 窗口内汇总日志，窗口外的条目被忽略
func Aggregate(entries []ActivityLog, period Period, from, to time.Time, opts AggregateOptions) *Metrics {
	opts = opts.withDefaults()
	g := period.Granularity()

	m := &Metrics{
		Period:       period.Key,
		Granularity:  g,
		From:         from,
		To:           to,
		Series:       []SeriesPoint{},
		TopQuestions: []QuestionCount{},
		Ranking:      []RankingEntry{},
		Feed:         []FeedItem{},
	}

	// 预先生成全部桶，空桶计 0
	index := make(map[time.Time]int)
	for b := BucketStart(from, g, opts.Location); !b.After(to); b = nextBucket(b, g) {
		index[b] = len(m.Series)
		m.Series = append(m.Series, SeriesPoint{Bucket: b, Label: bucketLabel(b, g)})
	}

	type userStats struct {
		questions int
		sessions  map[string]struct{}
	}
	users := make(map[string]*userStats)
	allSessions := make(map[string]struct{})
	questions := make(map[string]*QuestionCount)
	var feed []FeedItem

	for _, e := range entries {
		if e.Timestamp.Before(from) || e.Timestamp.After(to) {
			continue
		}
		m.Totals.Entries++

		isQuestion := e.Action == opts.QuestionAction
		text := ""
		if isQuestion {
			m.Totals.Questions++
			text = QuestionText(e)
		}

		if i, ok := index[BucketStart(e.Timestamp, g, opts.Location)]; ok {
			m.Series[i].Total++
			if isQuestion {
				m.Series[i].Questions++
			}
		}

		if e.UserID != "" {
			us, ok := users[e.UserID]
			if !ok {
				us = &userStats{sessions: make(map[string]struct{})}
				users[e.UserID] = us
			}
			if isQuestion {
				us.questions++
			}
			if e.SessionID != "" {
				us.sessions[e.SessionID] = struct{}{}
			}
		}
		if e.SessionID != "" {
			allSessions[e.SessionID] = struct{}{}
		}

		if ContainsEmail(e.UserID) || ContainsEmail(text) {
			continue
		}

		if isQuestion {
			if key := NormalizeQuestion(text); key != "" {
				qc, ok := questions[key]
				if !ok {
					qc = &QuestionCount{Question: key, Example: text}
					questions[key] = qc
				}
				qc.Count++
			}
		}
		feed = append(feed, FeedItem{
			UserID:    e.UserID,
			Action:    e.Action,
			Question:  text,
			SessionID: e.SessionID,
			Timestamp: e.Timestamp,
		})
	}

	m.Totals.UniqueUsers = len(users)
	m.Totals.UniqueSessions = len(allSessions)

	// ── 高频问题：次数降序，同次数按文本 ──
	for _, qc := range questions {
		m.TopQuestions = append(m.TopQuestions, *qc)
	}
	sort.Slice(m.TopQuestions, func(i, j int) bool {
		a, b := m.TopQuestions[i], m.TopQuestions[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Question < b.Question
	})
	if len(m.TopQuestions) > opts.TopQuestions {
		m.TopQuestions = m.TopQuestions[:opts.TopQuestions]
	}

	// ── 排行：score = 提问数 + 0.5 × 会话数 ──
	for id, us := range users {
		m.Ranking = append(m.Ranking, RankingEntry{
			UserID:        id,
			QuestionCount: us.questions,
			SessionCount:  len(us.sessions),
			Score:         float64(us.questions) + 0.5*float64(len(us.sessions)),
		})
	}
	sort.Slice(m.Ranking, func(i, j int) bool {
		a, b := m.Ranking[i], m.Ranking[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.UserID < b.UserID
	})
	if len(m.Ranking) > opts.RankingSize {
		m.Ranking = m.Ranking[:opts.RankingSize]
	}

	// ── 最近动态 ──
	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].Timestamp.After(feed[j].Timestamp)
	})
	if len(feed) > opts.FeedSize {
		feed = feed[:opts.FeedSize]
	}
	if feed != nil {
		m.Feed = feed
	}

	return m
}
