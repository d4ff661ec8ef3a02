package calendar

import (
	"unicode/utf8"

	"golang.org/x/text/width"
)

var kanjiDigits = map[rune]int{
	'〇': 0, '零': 0,
	'一': 1, '二': 2, '三': 3, '四': 4, '五': 5,
	'六': 6, '七': 7, '八': 8, '九': 9,
}

var smallUnits = map[rune]int{'十': 10, '百': 100, '千': 1000}

var largeUnits = map[rune]int{'万': 10000, '億': 100000000, '兆': 1000000000000}

// maxNumeral bounds every intermediate value so long digit runs fail instead of overflowing.
const maxNumeral = 10_000_000_000_000_000

// NormalizeDigits folds full-width characters to their ASCII forms.
func NormalizeDigits(s string) string {
	return width.Narrow.String(s)
}

// ParseKanjiNumeral parses kanji, Arabic or full-width numerals, including
// mixed forms like 二千十四, 二〇二〇 and 2千. "元" is the first year of an era.
func ParseKanjiNumeral(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	if s == "元" {
		return 1, true
	}

	total, section, pending := 0, 0, -1
	for _, r := range NormalizeDigits(s) {
		if d, ok := digitValue(r); ok {
			if pending < 0 {
				pending = d
			} else if pending > maxNumeral/10 {
				return 0, false
			} else {
				pending = pending*10 + d
			}
			continue
		}
		if unit, ok := smallUnits[r]; ok {
			if pending < 0 {
				pending = 1
			}
			if pending > maxNumeral/unit {
				return 0, false
			}
			section += pending * unit
			pending = -1
			continue
		}
		if unit, ok := largeUnits[r]; ok {
			if pending >= 0 {
				section += pending
			}
			if section == 0 {
				section = 1
			}
			if section > maxNumeral/unit {
				return 0, false
			}
			total += section * unit
			section, pending = 0, -1
			if total > maxNumeral {
				return 0, false
			}
			continue
		}
		return 0, false
	}
	if pending >= 0 {
		section += pending
	}
	if total+section > maxNumeral {
		return 0, false
	}
	return total + section, true
}

// isArabic reports whether s consists of ASCII or full-width digits only.
func isArabic(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range NormalizeDigits(s) {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func digitValue(r rune) (int, bool) {
	if r >= '0' && r <= '9' {
		return int(r - '0'), true
	}
	d, ok := kanjiDigits[r]
	return d, ok
}

func isArabicDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= '０' && r <= '９')
}

func runeCount(s string) int {
	return utf8.RuneCountInString(s)
}
