package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hrygo/venuebook/internal/venue"
	"github.com/hrygo/venuebook/plugin/ai"
	"github.com/hrygo/venuebook/plugin/ai/cache"
	"github.com/hrygo/venuebook/plugin/ai/timeout"
)

// ErrNoSuggestion is returned when the collaborator reply cannot be used.
var ErrNoSuggestion = errors.New("no usable suggestion")

// suggestionLayouts are the local-time formats accepted from the collaborator.
var suggestionLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006/01/02 15:04",
}

const suggestionPrompt = `你是場地預訂助手。從用戶的句子中提取預訂資料，只回覆一個 JSON 物件：
{"venue": "場地名稱", "startTime": "YYYY-MM-DDTHH:mm:ss", "endTime": "YYYY-MM-DDTHH:mm:ss", "purpose": "用途", "confidence": 0.0-1.0}
時間使用本地時間，不要附加時區。無法確定的欄位留空字串。
現在時間：%s（%s）
可用場地：%s`

// LLMSuggester asks the LLM collaborator for a suggestion. Identical concurrent
// requests share one call and recent answers are cached.
type LLMSuggester struct {
	llm      ai.LLMService
	catalog  *venue.Catalog
	location *time.Location
	cache    *cache.LRUCache[*Suggestion]
	group    singleflight.Group
	logger   *slog.Logger
}

var _ Suggester = (*LLMSuggester)(nil)

// NewLLMSuggester creates a suggester anchored to the civil timezone.
func NewLLMSuggester(llm ai.LLMService, catalog *venue.Catalog, location *time.Location, logger *slog.Logger) *LLMSuggester {
	if logger == nil {
		logger = slog.Default()
	}
	if location == nil {
		location = time.FixedZone("UTC+8", 8*60*60)
	}
	return &LLMSuggester{
		llm:      llm,
		catalog:  catalog,
		location: location,
		cache:    cache.NewLRUCache[*Suggestion](timeout.SuggestionCacheSize, timeout.SuggestionCacheTTL),
		logger:   logger,
	}
}

// Suggest implements Suggester.
func (s *LLMSuggester) Suggest(ctx context.Context, text string, now time.Time) (*Suggestion, error) {
	now = now.In(s.location)
	// Relative words depend on now, so the minute is part of the key.
	key := now.Format("2006-01-02T15:04") + "|" + strings.TrimSpace(text)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		reply, err := s.llm.Chat(ctx, []ai.Message{
			ai.SystemPrompt(fmt.Sprintf(suggestionPrompt,
				now.Format("2006-01-02 15:04"), now.Weekday(), strings.Join(s.catalog.Names(), "、"))),
			ai.UserMessage(text),
		})
		if err != nil {
			return nil, err
		}
		suggestion, err := ParseSuggestion(reply, s.location)
		if err != nil {
			s.logger.Warn("discarding unparsable suggestion",
				"reply", truncate(reply, timeout.MaxTruncateLength),
				"error", err)
			return nil, err
		}
		s.cache.Set(key, suggestion, 0)
		return suggestion, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Suggestion), nil
}

type suggestionPayload struct {
	Venue      string   `json:"venue"`
	StartTime  string   `json:"startTime"`
	EndTime    string   `json:"endTime"`
	Purpose    string   `json:"purpose"`
	Confidence *float64 `json:"confidence"`
}

// ParseSuggestion decodes a collaborator reply. It tolerates markdown code
// fences and prose around the JSON object. Timestamps without an offset are
// read in loc; timestamps with one are converted into loc.
func ParseSuggestion(reply string, loc *time.Location) (*Suggestion, error) {
	body := extractJSONObject(reply)
	if body == "" {
		return nil, fmt.Errorf("%w: no JSON object in reply", ErrNoSuggestion)
	}

	var p suggestionPayload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSuggestion, err)
	}

	out := &Suggestion{
		Venue:      strings.TrimSpace(p.Venue),
		Purpose:    strings.TrimSpace(p.Purpose),
		Confidence: DefaultSuggestionConfidence,
	}
	if p.Confidence != nil {
		out.Confidence = clamp01(*p.Confidence)
	}
	if p.StartTime != "" {
		t, ok := parseSuggestionTime(p.StartTime, loc)
		if !ok {
			return nil, fmt.Errorf("%w: bad startTime %q", ErrNoSuggestion, p.StartTime)
		}
		out.Start = t
	}
	if p.EndTime != "" {
		if t, ok := parseSuggestionTime(p.EndTime, loc); ok {
			out.End = t
		}
	}
	if out.Venue == "" && out.Start.IsZero() {
		return nil, fmt.Errorf("%w: empty reply", ErrNoSuggestion)
	}
	return out, nil
}

func extractJSONObject(reply string) string {
	reply = strings.TrimSpace(reply)
	reply = strings.TrimPrefix(reply, "```json")
	reply = strings.TrimPrefix(reply, "```")
	reply = strings.TrimSuffix(reply, "```")

	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return ""
	}
	return reply[start : end+1]
}

func parseSuggestionTime(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(loc), true
	}
	for _, layout := range suggestionLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
