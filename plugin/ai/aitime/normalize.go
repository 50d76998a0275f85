package aitime

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// simplifiedVocabulary maps the Simplified spellings of the date/time vocabulary
// onto the Traditional forms every pattern in this package is written against.
var simplifiedVocabulary = strings.NewReplacer(
	"点", "點",
	"时", "時",
	"周", "週",
	"后", "後",
	"号", "號",
	"礼拜", "禮拜",
	"个", "個",
	"这", "這",
	"连", "連",
	"续", "續",
	"来", "來",
	"间", "間",
	"昼", "晝",
	"两", "兩",
)

// Normalize prepares user text for pattern matching: NFKC folds full-width digits
// and punctuation ("１４：００" -> "14:00"), Simplified vocabulary is mapped to
// Traditional, and surrounding whitespace is trimmed.
func Normalize(text string) string {
	text = norm.NFKC.String(text)
	text = simplifiedVocabulary.Replace(text)
	return strings.TrimSpace(text)
}
