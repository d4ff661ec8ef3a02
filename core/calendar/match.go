package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// System names the notation a date was written in.
type System string

const (
	SystemGregorian System = "gregorian"
	SystemKanji     System = "kanji"
	SystemEra       System = "era"
	SystemFiscal    System = "fiscal"
	SystemRelative  System = "relative"
	SystemNumeric   System = "numeric"
	SystemBCE       System = "bce"
	SystemDecade    System = "decade"
)

// Precision is the granularity a date was stated with. Lower is finer.
type Precision int

const (
	PrecisionDay   Precision = 0
	PrecisionMonth Precision = 1
	PrecisionYear  Precision = 2
)

// SortKey orders dates chronologically; finer precision sorts first on equal dates.
type SortKey struct {
	Year      int
	Month     int
	Day       int
	Precision Precision
}

// MaxSortKey sorts after every parseable date.
var MaxSortKey = SortKey{Year: 9999, Month: 12, Day: 31, Precision: PrecisionYear}

// Compare returns -1, 0 or 1.
func (k SortKey) Compare(o SortKey) int {
	switch {
	case k.Year != o.Year:
		return sign(k.Year - o.Year)
	case k.Month != o.Month:
		return sign(k.Month - o.Month)
	case k.Day != o.Day:
		return sign(k.Day - o.Day)
	default:
		return sign(int(k.Precision) - int(o.Precision))
	}
}

// Match is a date expression found in a sentence.
type Match struct {
	Text      string
	Start     int // byte offset into the sentence
	End       int
	System    System
	Year      int
	Month     int
	Day       int
	Precision Precision
	Resolved  bool // false when no single calendar date can be derived
}

// ISO returns the YYYY-MM-DD form, negative years for BCE, or "" if unresolved.
func (m Match) ISO() string {
	if !m.Resolved {
		return ""
	}
	return formatISO(m.Year, m.Month, m.Day)
}

// Key is the aggregation key: the ISO date, or the raw text when unresolved.
func (m Match) Key() string {
	if m.Resolved {
		return m.ISO()
	}
	return m.Text
}

// SortKey returns the chronological sort key of the match.
func (m Match) SortKey() SortKey {
	return SortKey{Year: m.Year, Month: m.Month, Day: m.Day, Precision: m.Precision}
}

// Time returns the match as a UTC midnight time. ok is false when unresolved.
func (m Match) Time() (time.Time, bool) {
	if !m.Resolved {
		return time.Time{}, false
	}
	return time.Date(m.Year, time.Month(m.Month), m.Day, 0, 0, 0, 0, time.UTC), true
}

// Best returns the preferred match: resolved before unresolved, then the most
// precise, then the leftmost.
func Best(matches []Match) (Match, bool) {
	if len(matches) == 0 {
		return Match{}, false
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if m.Resolved != best.Resolved {
			if m.Resolved {
				best = m
			}
			continue
		}
		if m.Precision < best.Precision {
			best = m
		}
	}
	return best, true
}

// ParseISO parses a YYYY-MM-DD date as produced by Match.ISO, including negative years.
func ParseISO(iso string) (time.Time, bool) {
	negative := strings.HasPrefix(iso, "-")
	parts := strings.Split(strings.TrimPrefix(iso, "-"), "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	var values [3]int
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil || v < 0 {
			return time.Time{}, false
		}
		values[i] = v
	}
	year, month, day := values[0], values[1], values[2]
	if negative {
		year = -year
	}
	if month < 1 || month > 12 || day < 1 || day > daysIn(year, month) {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

func formatISO(year, month, day int) string {
	if year < 0 {
		return fmt.Sprintf("-%04d-%02d-%02d", -year, month, day)
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// clampDate forces month into 1..12 and day into 1..31, then falls back to
// the first of the month if the day does not exist.
func clampDate(year, month, day int) (int, int, int) {
	month = min(max(month, 1), 12)
	day = min(max(day, 1), 31)
	if day > daysIn(year, month) {
		day = 1
	}
	return year, month, day
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
