package schedule

import (
	"strings"

	"github.com/hrygo/venuebook/plugin/ai/aitime"
)

// PurposeCategory is a coarse booking purpose.
type PurposeCategory string

const (
	PurposeMeeting     PurposeCategory = "meeting"
	PurposeClass       PurposeCategory = "class"
	PurposeEvent       PurposeCategory = "event"
	PurposePractice    PurposeCategory = "practice"
	PurposeExam        PurposeCategory = "exam"
	PurposeStudy       PurposeCategory = "study"
	PurposeSport       PurposeCategory = "sport"
	PurposePerformance PurposeCategory = "performance"
	PurposeGeneral     PurposeCategory = "general"
)

// DefaultPurposeLabel is used when no keyword matches.
const DefaultPurposeLabel = "場地使用"

// Purpose is the classified purpose of a booking.
type Purpose struct {
	Category PurposeCategory `json:"category"`
	Label    string          `json:"label"`
}

// purposeKeywords is checked in order; the first category with a matching keyword wins.
var purposeKeywords = []struct {
	category PurposeCategory
	label    string
	keywords []string
}{
	{PurposeMeeting, "會議", []string{"開會", "會議", "meeting", "討論", "商討"}},
	{PurposeClass, "上課", []string{"上課", "授課", "教學", "課堂", "補課", "class", "lesson"}},
	{PurposeEvent, "活動", []string{"活動", "舉辦", "講座", "典禮", "聚會", "event"}},
	{PurposePractice, "練習", []string{"練習", "排練", "綵排", "彩排", "練琴", "practice"}},
	{PurposeExam, "考試", []string{"考試", "測驗", "默書", "exam", "test"}},
	{PurposeStudy, "自修", []string{"自修", "溫習", "讀書", "學習", "study"}},
	{PurposeSport, "運動", []string{"運動", "打波", "比賽", "體育", "訓練", "sport"}},
	{PurposePerformance, "表演", []string{"表演", "演出", "音樂會", "話劇", "performance"}},
}

// ExtractPurpose classifies the stated purpose of text.
func ExtractPurpose(text string) Purpose {
	text = strings.ToLower(aitime.Normalize(text))
	for _, p := range purposeKeywords {
		for _, kw := range p.keywords {
			if strings.Contains(text, kw) {
				return Purpose{Category: p.category, Label: p.label}
			}
		}
	}
	return Purpose{Category: PurposeGeneral, Label: DefaultPurposeLabel}
}
