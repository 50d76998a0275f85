package aitime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testZone = time.FixedZone("UTC+8", 8*60*60)

// saturday is 2025-06-28 10:00 in the civil timezone.
var saturday = time.Date(2025, 6, 28, 10, 0, 0, 0, testZone)

func TestExtractor_Extract(t *testing.T) {
	extractor := NewExtractor(testZone, nil)

	tests := []struct {
		name      string
		text      string
		wantStart string // "2006-01-02 15:04"
		wantEnd   string
	}{
		{"tomorrow afternoon range", "我想明天下午2點到4點預訂音樂室，用途是練習", "2025-06-29 14:00", "2025-06-29 16:00"},
		{"day after tomorrow morning", "後天上午10點至12點", "2025-06-30 10:00", "2025-06-30 12:00"},
		{"three days ahead single", "大後天下午3點", "2025-07-01 15:00", "2025-07-01 17:00"},
		{"next monday", "下星期一上午9點至11點", "2025-06-30 09:00", "2025-06-30 11:00"},
		{"next weekday same as today", "下星期六晚上7點至9點", "2025-07-05 19:00", "2025-07-05 21:00"},
		{"this week friday already passed", "這週五晚上7點在禮堂舉辦活動", "2025-07-04 19:00", "2025-07-04 21:00"},
		{"this week sunday", "這個星期日下午2點", "2025-06-29 14:00", "2025-06-29 16:00"},
		{"weekday before arabic hour", "下星期三3點到5點借音樂室", "2025-07-02 15:00", "2025-07-02 17:00"},
		{"weekday before chinese hour", "下星期三三點到五點", "2025-07-02 15:00", "2025-07-02 17:00"},
		{"recurring weekday before hour", "逢星期五4點至6點借禮堂練習", "2025-06-28 16:00", "2025-06-28 18:00"},
		{"bare weekday before single hour", "星期六10點借101號室", "2025-06-28 10:00", "2025-06-28 12:00"},
		{"weekday before month day", "星期一7月7日上午9點", "2025-07-07 09:00", "2025-07-07 11:00"},
		{"full date", "2025年7月15日下午2點到5點", "2025-07-15 14:00", "2025-07-15 17:00"},
		{"chinese month day", "七月十五日上午十點", "2025-07-15 10:00", "2025-07-15 12:00"},
		{"hyphenated and digital", "2025-07-03 14:00-16:00", "2025-07-03 14:00", "2025-07-03 16:00"},
		{"day/month/year", "15/7/2025 下午3點至5點", "2025-07-15 15:00", "2025-07-15 17:00"},
		{"day/month", "3/7 下午2點", "2025-07-03 14:00", "2025-07-03 16:00"},
		{"year/month/day", "2025/07/20 上午9點至11點", "2025-07-20 09:00", "2025-07-20 11:00"},
		{"explicit cross midnight", "晚上10點至凌晨2點", "2025-06-28 22:00", "2025-06-29 02:00"},
		{"inherited cross midnight", "晚上10點至2點", "2025-06-28 22:00", "2025-06-29 02:00"},
		{"morning into afternoon", "明天上午11點至1點", "2025-06-29 11:00", "2025-06-29 13:00"},
		{"bare short range is afternoon", "三點至六點", "2025-06-28 15:00", "2025-06-28 18:00"},
		{"bare morning range", "明天9點至11點", "2025-06-29 09:00", "2025-06-29 11:00"},
		{"half past", "明天十點半到十二點", "2025-06-29 10:30", "2025-06-29 12:00"},
		{"minutes", "明天下午2點半至4點15分", "2025-06-29 14:30", "2025-06-29 16:15"},
		{"quarter", "明天下午三點一刻", "2025-06-29 15:15", "2025-06-29 17:15"},
		{"tonight", "今晚8點", "2025-06-28 20:00", "2025-06-28 22:00"},
		{"simplified", "明天下午2点到4点", "2025-06-29 14:00", "2025-06-29 16:00"},
		{"full width digital", "明天１４：００－１６：００", "2025-06-29 14:00", "2025-06-29 16:00"},
		{"noon", "明天中午12點至1點", "2025-06-29 12:00", "2025-06-29 13:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractor.Extract(tt.text, saturday)
			require.True(t, ok)
			assert.Equal(t, tt.wantStart, got.Start.Format("2006-01-02 15:04"))
			assert.Equal(t, tt.wantEnd, got.End.Format("2006-01-02 15:04"))
			assert.True(t, got.Valid())
		})
	}
}

func TestExtractor_NoTime(t *testing.T) {
	extractor := NewExtractor(testZone, nil)

	for _, text := range []string{"", "明天", "借音樂室", "下星期三用禮堂"} {
		got, ok := extractor.Extract(text, saturday)
		assert.False(t, ok, text)
		assert.True(t, got.IsZero(), text)
	}
}

func TestExtractor_NextWeekdayOnSameWeekday(t *testing.T) {
	extractor := NewExtractor(testZone, nil)
	monday := time.Date(2025, 6, 30, 9, 0, 0, 0, testZone)

	got, ok := extractor.Extract("下星期一下午2點", monday)
	require.True(t, ok)
	assert.Equal(t, "2025-07-07 14:00", got.Start.Format("2006-01-02 15:04"))
}

func TestExtractor_ThisWeekdayLaterInWeek(t *testing.T) {
	extractor := NewExtractor(testZone, nil)
	wednesday := time.Date(2025, 7, 2, 9, 0, 0, 0, testZone)

	got, ok := extractor.Extract("這週五晚上7點", wednesday)
	require.True(t, ok)
	assert.Equal(t, "2025-07-04 19:00", got.Start.Format("2006-01-02 15:04"))

	got, ok = extractor.Extract("本週一上午9點", wednesday)
	require.True(t, ok)
	assert.Equal(t, "2025-07-07 09:00", got.Start.Format("2006-01-02 15:04"))
}

func TestMatchTimeOfDay_RetriesLaterMatches(t *testing.T) {
	// The first bare single "廿五點" is not a legal clock; the second one is.
	span, shape, ok := matchTimeOfDay("廿五點或者3點")
	require.True(t, ok)
	assert.Equal(t, "bare-single", shape)
	assert.Equal(t, 15*60, span.startMin)
}

func TestExtractor_InvalidDateFallsThrough(t *testing.T) {
	extractor := NewExtractor(testZone, nil)

	result := extractor.ExtractDetailed("2月30日下午2點", saturday)
	require.True(t, result.Found)
	assert.Equal(t, DateFromNow, result.DateSource)
	assert.Equal(t, "2025-06-28 14:00", result.Range.Start.Format("2006-01-02 15:04"))
}

func TestExtractor_WeekdayMismatchKeepsDate(t *testing.T) {
	extractor := NewExtractor(testZone, nil)

	// 2025-07-15 is a Tuesday.
	result := extractor.ExtractDetailed("2025年7月15日星期三下午2點", saturday)
	require.True(t, result.Found)
	assert.Equal(t, DateFromAbsolute, result.DateSource)
	assert.Equal(t, "2025-07-15", result.Range.Start.Format("2006-01-02"))
}

func TestExtractor_AbsoluteDateBeatsRelative(t *testing.T) {
	extractor := NewExtractor(testZone, nil)

	result := extractor.ExtractDetailed("明天即7月3日下午2點", saturday)
	require.True(t, result.Found)
	assert.Equal(t, DateFromAbsolute, result.DateSource)
	assert.Equal(t, "2025-07-03", result.Range.Start.Format("2006-01-02"))
}

func TestExtractor_Idempotent(t *testing.T) {
	extractor := NewExtractor(testZone, nil)
	text := "逢星期三下午三點至六點借101號室開會"

	first, ok := extractor.Extract(text, saturday)
	require.True(t, ok)
	for i := 0; i < 5; i++ {
		again, ok := extractor.Extract(text, saturday)
		require.True(t, ok)
		assert.True(t, first.Start.Equal(again.Start))
		assert.True(t, first.End.Equal(again.End))
	}
	assert.Equal(t, 3*time.Hour, first.Duration())
}

func TestExtractor_ConvertsNowToCivilZone(t *testing.T) {
	extractor := NewExtractor(testZone, nil)

	// 2025-06-28 20:00 UTC is already 2025-06-29 04:00 in UTC+8.
	nowUTC := time.Date(2025, 6, 28, 20, 0, 0, 0, time.UTC)
	got, ok := extractor.Extract("明天下午2點", nowUTC)
	require.True(t, ok)
	assert.Equal(t, "2025-06-30 14:00", got.Start.Format("2006-01-02 15:04"))
	assert.Equal(t, testZone, got.Start.Location())
}

func TestDaysUntilNext(t *testing.T) {
	assert.Equal(t, 7, DaysUntilNext(time.Monday, time.Monday))
	assert.Equal(t, 1, DaysUntilNext(time.Sunday, time.Monday))
	assert.Equal(t, 4, DaysUntilNext(time.Saturday, time.Wednesday))
}
