package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPurpose(t *testing.T) {
	tests := []struct {
		input    string
		expected PurposeCategory
	}{
		{"明天下午2點借101號室開會", PurposeMeeting},
		{"用途是練習", PurposePractice},
		{"下週三上課用", PurposeClass},
		{"這週五晚上7點在禮堂舉辦活動", PurposeEvent},
		{"期中考試", PurposeExam},
		{"放學後自修", PurposeStudy},
		{"打波", PurposeSport},
		{"學校音樂會演出", PurposePerformance},
		{"Team meeting", PurposeMeeting},
		{"明天下午兩點", PurposeGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractPurpose(tt.input).Category)
		})
	}
}

func TestExtractPurpose_Default(t *testing.T) {
	p := ExtractPurpose("")
	assert.Equal(t, PurposeGeneral, p.Category)
	assert.Equal(t, DefaultPurposeLabel, p.Label)
}

func TestExtractPurpose_FirstCategoryWins(t *testing.T) {
	// meeting is listed before practice
	assert.Equal(t, PurposeMeeting, ExtractPurpose("開會前練習").Category)
}
