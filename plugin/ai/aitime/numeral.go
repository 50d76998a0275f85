package aitime

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// numeralToken matches one numeral, either all Arabic digits or all Chinese
// characters. Mixed runs such as the "三3" of "星期三3點" never form a token.
const numeralToken = `(?:\d{1,2}|[零〇一二兩两三四五六七八九十廿卅]{1,3})`

// numeralTable maps the canonical spellings of 0..99 ("零", "十", "十五", "二十三") to values.
var numeralTable = buildNumeralTable(99)

// numeralVariants folds alternative spellings onto the canonical ones in numeralTable.
var numeralVariants = strings.NewReplacer(
	"兩", "二",
	"两", "二",
	"〇", "零",
	"廿", "二十",
	"卅", "三十",
)

func buildNumeralTable(max int) map[string]int {
	digits := []string{"零", "一", "二", "三", "四", "五", "六", "七", "八", "九"}
	table := make(map[string]int, max+1)
	for n := 0; n <= max; n++ {
		tens, ones := n/10, n%10
		var b strings.Builder
		switch {
		case tens == 0:
			b.WriteString(digits[ones])
		case tens == 1:
			b.WriteString("十")
		default:
			b.WriteString(digits[tens])
			b.WriteString("十")
		}
		if tens > 0 && ones > 0 {
			b.WriteString(digits[ones])
		}
		table[b.String()] = n
	}
	return table
}

// ToInt converts a numeral token ("三", "十五", "廿一", "14") to an integer.
// It returns 0 when the token is neither a known Chinese numeral nor an Arabic
// number, so callers must treat 0 as a failed parse wherever 0 is not legal.
func ToInt(token string) int {
	n, _ := ParseNumeral(token)
	return n
}

// ParseNumeral is ToInt with an explicit ok flag, for values where 0 is legal (minutes).
func ParseNumeral(token string) (int, bool) {
	token = strings.TrimSpace(norm.NFKC.String(token))
	if token == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(token); err == nil {
		return n, n >= 0
	}

	token = numeralVariants.Replace(token)
	if n, ok := numeralTable[token]; ok {
		return n, true
	}
	// "零五" as in "三點零五分"
	if trimmed := strings.TrimPrefix(token, "零"); trimmed != token && trimmed != "" {
		if n, ok := numeralTable[trimmed]; ok {
			return n, true
		}
	}
	return 0, false
}
