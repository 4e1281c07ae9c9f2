package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseNow = time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC) // 周三

func question(user, session, text string, at time.Time) ActivityLog {
	return ActivityLog{
		UserID:    user,
		Action:    "question_asked",
		Details:   map[string]interface{}{"question": text},
		Timestamp: at,
		SessionID: session,
	}
}

func TestParsePeriod(t *testing.T) {
	tests := map[string]struct {
		days int
		g    Granularity
	}{
		"1dia":    {1, Day},
		"7dias":   {7, Day},
		"30dias":  {30, Day},
		"90dias":  {90, Week},
		"180dias": {180, Month},
		"1ano":    {365, Month},
	}
	for key, tc := range tests {
		t.Run(key, func(t *testing.T) {
			p, err := ParsePeriod(key)
			require.NoError(t, err)
			assert.Equal(t, tc.days, p.Days)
			assert.Equal(t, tc.g, p.Granularity())
		})
	}

	_, err := ParsePeriod("2semanas")
	assert.ErrorIs(t, err, ErrUnknownPeriod)
}

func TestNormalizeQuestion(t *testing.T) {
	assert.Equal(t, NormalizeQuestion("Como faço login?"), NormalizeQuestion("como faço login"))
	assert.Equal(t, "como faço login", NormalizeQuestion("  Como   faço LOGIN ?!… "))
	assert.Equal(t, "", NormalizeQuestion("???"))
}

func TestContainsEmail(t *testing.T) {
	assert.True(t, ContainsEmail("meu email é joao.silva@velotax.com.br"))
	assert.False(t, ContainsEmail("como usar o @bot"))
}

func TestBucketStart(t *testing.T) {
	sunday := time.Date(2024, 3, 17, 22, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC), BucketStart(sunday, Day, time.UTC))
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), BucketStart(sunday, Week, time.UTC))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), BucketStart(sunday, Month, time.UTC))

	monday := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, BucketStart(monday, Week, time.UTC))
}

func TestAggregate_QuestionsShareBucket(t *testing.T) {
	period, _ := ParsePeriod("7dias")
	from, to := period.Range(baseNow)

	entries := []ActivityLog{
		question("u1", "s1", "Como faço login?", baseNow.Add(-time.Hour)),
		question("u2", "s2", "como faço login", baseNow.Add(-2*time.Hour)),
		question("u3", "s3", "Qual o prazo da restituição?", baseNow.Add(-3*time.Hour)),
	}

	m := Aggregate(entries, period, from, to, AggregateOptions{})
	require.Len(t, m.TopQuestions, 2)
	assert.Equal(t, "como faço login", m.TopQuestions[0].Question)
	assert.Equal(t, 2, m.TopQuestions[0].Count)
	assert.Equal(t, "Como faço login?", m.TopQuestions[0].Example)
	assert.Equal(t, 3, m.Totals.Questions)
}

func TestAggregate_ExcludesEmails(t *testing.T) {
	period, _ := ParsePeriod("1dia")
	from, to := period.Range(baseNow)

	entries := []ActivityLog{
		question("u1", "s1", "meu email é ana@velotax.com.br", baseNow.Add(-time.Minute)),
		question("bruno@velotax.com.br", "s2", "como emitir DARF", baseNow.Add(-2*time.Minute)),
		question("u3", "s3", "como emitir DARF", baseNow.Add(-3*time.Minute)),
	}

	m := Aggregate(entries, period, from, to, AggregateOptions{})
	require.Len(t, m.TopQuestions, 1)
	assert.Equal(t, "como emitir darf", m.TopQuestions[0].Question)
	assert.Equal(t, 1, m.TopQuestions[0].Count)

	require.Len(t, m.Feed, 1)
	assert.Equal(t, "u3", m.Feed[0].UserID)
	// 总量仍包含被排除的条目
	assert.Equal(t, 3, m.Totals.Entries)
}

func TestAggregate_Ranking(t *testing.T) {
	period, _ := ParsePeriod("7dias")
	from, to := period.Range(baseNow)
	at := baseNow.Add(-time.Hour)

	entries := []ActivityLog{
		question("ana", "s1", "a", at),
		question("ana", "s1", "b", at),
		question("ana", "s2", "c", at),
		question("bruno", "s3", "a", at),
		question("bruno", "s4", "b", at),
		{UserID: "bruno", Action: "page_view", SessionID: "s5", Timestamp: at},
		{UserID: "carla", Action: "page_view", SessionID: "s6", Timestamp: at},
		question("davi", "s7", "x", at),
		question("davi", "s8", "y", at),
		question("davi", "s9", "z", at),
	}

	m := Aggregate(entries, period, from, to, AggregateOptions{RankingSize: 3})
	require.Len(t, m.Ranking, 3)

	// ana: 3 + 0.5×2 = 4；bruno: 2 + 0.5×3 = 3.5；davi: 3 + 0.5×3 = 4.5
	assert.Equal(t, "davi", m.Ranking[0].UserID)
	assert.Equal(t, 4.5, m.Ranking[0].Score)
	assert.Equal(t, "ana", m.Ranking[1].UserID)
	assert.Equal(t, 4.0, m.Ranking[1].Score)
	assert.Equal(t, 2, m.Ranking[1].SessionCount)
	assert.Equal(t, "bruno", m.Ranking[2].UserID)
	assert.Equal(t, 3.5, m.Ranking[2].Score)

	assert.Equal(t, 4, m.Totals.UniqueUsers)
	assert.Equal(t, 9, m.Totals.UniqueSessions)
}

func TestAggregate_RankingTieBreakByUserID(t *testing.T) {
	period, _ := ParsePeriod("1dia")
	from, to := period.Range(baseNow)
	at := baseNow.Add(-time.Minute)

	m := Aggregate([]ActivityLog{
		question("zeca", "s1", "a", at),
		question("amanda", "s2", "b", at),
	}, period, from, to, AggregateOptions{})

	require.Len(t, m.Ranking, 2)
	assert.Equal(t, "amanda", m.Ranking[0].UserID)
	assert.Equal(t, "zeca", m.Ranking[1].UserID)
}

func TestAggregate_SeriesAndFeed(t *testing.T) {
	period, _ := ParsePeriod("7dias")
	from, to := period.Range(baseNow)

	entries := []ActivityLog{
		question("u1", "s1", "a", baseNow.Add(-30*time.Minute)),
		{UserID: "u1", Action: "page_view", Timestamp: baseNow.Add(-10 * time.Minute)},
		question("u2", "s2", "b", baseNow.AddDate(0, 0, -2)),
		// 窗口外
		question("u3", "s3", "c", baseNow.AddDate(0, 0, -10)),
	}

	m := Aggregate(entries, period, from, to, AggregateOptions{FeedSize: 2})
	assert.Equal(t, Day, m.Granularity)
	// 03-06 至 03-13 共 8 个日桶
	require.Len(t, m.Series, 8)
	assert.Equal(t, time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), m.Series[0].Bucket)
	assert.Equal(t, "13/03", m.Series[7].Label)
	assert.Equal(t, 2, m.Series[7].Total)
	assert.Equal(t, 1, m.Series[7].Questions)
	assert.Equal(t, 1, m.Series[5].Total)
	assert.Equal(t, 3, m.Totals.Entries)

	require.Len(t, m.Feed, 2)
	assert.Equal(t, "page_view", m.Feed[0].Action)
	assert.Equal(t, "a", m.Feed[1].Question)
}

func TestAggregate_AlternativeQuestionKeys(t *testing.T) {
	period, _ := ParsePeriod("1dia")
	from, to := period.Range(baseNow)
	at := baseNow.Add(-time.Minute)

	m := Aggregate([]ActivityLog{
		{UserID: "u1", Action: "question_asked", Details: map[string]interface{}{"pergunta": "Onde vejo meu saldo?"}, Timestamp: at},
		{UserID: "u2", Action: "question_asked", Details: map[string]interface{}{"text": "onde vejo meu saldo"}, Timestamp: at},
	}, period, from, to, AggregateOptions{})

	require.Len(t, m.TopQuestions, 1)
	assert.Equal(t, 2, m.TopQuestions[0].Count)
}

func TestAggregate_EmptyIsNotNil(t *testing.T) {
	period, _ := ParsePeriod("1ano")
	from, to := period.Range(baseNow)

	m := Aggregate(nil, period, from, to, AggregateOptions{})
	assert.Equal(t, Month, m.Granularity)
	assert.NotNil(t, m.TopQuestions)
	assert.NotNil(t, m.Ranking)
	assert.NotNil(t, m.Feed)
	// 2023-03 至 2024-03 共 13 个月桶
	assert.Len(t, m.Series, 13)
}
