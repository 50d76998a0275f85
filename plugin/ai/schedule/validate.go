package schedule

// ConfidenceThreshold is the minimum confidence for an intent to be booked.
const ConfidenceThreshold = 0.5

// Missing field names reported by ValidateIntent.
const (
	MissingVenue      = "venue"
	MissingTime       = "time"
	MissingConfidence = "confidence"
)

// ExamplePhrases are shown to the user when a sentence cannot be booked.
var ExamplePhrases = []string{
	"我想在明天下午2點借101號室開會",
	"下週三上午10點使用音樂室練習",
	"這週五晚上7點在禮堂舉辦活動",
}

// Validation is the "can proceed" verdict for an intent.
type Validation struct {
	CanProceed bool     `json:"canProceed"`
	Missing    []string `json:"missing,omitempty"`
	Examples   []string `json:"examples,omitempty"`
}

// ValidateIntent reports whether the intent has everything needed to book.
func ValidateIntent(intent *Intent) Validation {
	var missing []string
	if intent == nil {
		return Validation{Missing: []string{MissingVenue, MissingTime}, Examples: ExamplePhrases}
	}
	if intent.Venue == nil {
		missing = append(missing, MissingVenue)
	}
	if !intent.HasTime() {
		missing = append(missing, MissingTime)
	}
	if len(missing) == 0 && intent.Confidence <= ConfidenceThreshold {
		missing = append(missing, MissingConfidence)
	}

	if len(missing) > 0 {
		return Validation{Missing: missing, Examples: ExamplePhrases}
	}
	return Validation{CanProceed: true}
}
