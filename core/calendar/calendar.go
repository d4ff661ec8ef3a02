// Package calendar finds and normalizes Japanese and Western date expressions.
package calendar

import (
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

const numeral = `[0-9０-９〇零一二三四五六七八九十百千万]+`

var eraOffsets = map[string]int{
	"令和": 2018,
	"平成": 1988,
	"昭和": 1925,
	"大正": 1911,
	"明治": 1867,
}

var periodDays = map[string]int{"上旬": 1, "中旬": 11, "下旬": 21}

// Trailing words that turn a small year count into a duration (創業100年目).
var durationSuffixes = []string{"間", "目", "ぶり", "以上", "余", "後", "来", "半", "経"}

var bestEffortYear = regexp.MustCompile(`[0-9０-９]{3,4}`)

type pattern struct {
	re    *regexp.Regexp
	build func(n *Normalizer, s string, loc []int) (Match, bool)
}

// Patterns in priority order. Spans claimed by an earlier pattern are skipped by later ones.
var patterns = []pattern{
	{
		re:    regexp.MustCompile(`(令和|平成|昭和|大正|明治)(` + numeral + `|元)年(?:(度)|(?:(` + numeral + `)月(?:(` + numeral + `)日|(上旬|中旬|下旬))?)?)`),
		build: buildEra,
	},
	{
		re:    regexp.MustCompile(`紀元前(` + numeral + `)年`),
		build: buildBCE,
	},
	{
		re:    regexp.MustCompile(`(` + numeral + `)年度`),
		build: buildFiscal,
	},
	{
		re:    regexp.MustCompile(`(` + numeral + `)(年|か月|ヶ月|ヵ月|カ月|ケ月|箇月|日)前`),
		build: buildRelative,
	},
	{
		re:    regexp.MustCompile(`(` + numeral + `)年代`),
		build: buildDecade,
	},
	{
		re:    regexp.MustCompile(`(` + numeral + `)年(?:(` + numeral + `)月(?:(` + numeral + `)日|(上旬|中旬|下旬))?)?`),
		build: buildGregorian,
	},
	{
		re:    regexp.MustCompile(`([0-9０-９]{4})[-/.／．－]([0-9０-９]{1,2})[-/.／．－]([0-9０-９]{1,2})`),
		build: buildNumeric,
	},
}

// Normalizer finds date expressions relative to a reference date.
type Normalizer struct {
	reference time.Time
}

// NewNormalizer creates a Normalizer. A zero reference means now.
func NewNormalizer(reference time.Time) *Normalizer {
	if reference.IsZero() {
		reference = time.Now()
	}
	return &Normalizer{reference: reference}
}

// Reference returns the anchor used for relative expressions.
func (n *Normalizer) Reference() time.Time {
	return n.reference
}

// FindAll returns the non-overlapping date expressions of sentence ordered by position.
func (n *Normalizer) FindAll(sentence string) []Match {
	var matches []Match
	for _, p := range patterns {
		for _, loc := range p.re.FindAllStringSubmatchIndex(sentence, -1) {
			if overlaps(matches, loc[0], loc[1]) {
				continue
			}
			m, ok := p.build(n, sentence, loc)
			if !ok {
				continue
			}
			m.Text = sentence[loc[0]:loc[1]]
			m.Start, m.End = loc[0], loc[1]
			matches = append(matches, m)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Start < matches[j].Start
	})
	return matches
}

// Result is the normalized form of a date span.
type Result struct {
	ISO       string
	Precision Precision
	Key       SortKey
}

// Normalize converts a date span. Spans without a recognizable date get an
// empty ISO and a best-effort sort key.
func (n *Normalizer) Normalize(span string) Result {
	if m, ok := Best(n.FindAll(span)); ok {
		return Result{ISO: m.ISO(), Precision: m.Precision, Key: m.SortKey()}
	}
	return Result{Precision: PrecisionYear, Key: BestEffortKey(span)}
}

// BestEffortKey derives a sort key from the first three or four digit run in s.
func BestEffortKey(s string) SortKey {
	if digits := bestEffortYear.FindString(s); digits != "" {
		if year, ok := ParseKanjiNumeral(digits); ok {
			return SortKey{Year: year, Month: 1, Day: 1, Precision: PrecisionYear}
		}
	}
	return MaxSortKey
}

func buildEra(_ *Normalizer, s string, loc []int) (Match, bool) {
	offset := eraOffsets[group(s, loc, 1)]
	n, ok := ParseKanjiNumeral(group(s, loc, 2))
	if !ok || n < 1 {
		return Match{}, false
	}
	year := offset + n

	if group(s, loc, 3) != "" {
		return fiscalMatch(SystemEra, year), true
	}

	y, m, d, p := completeDate(year, group(s, loc, 4), group(s, loc, 5), group(s, loc, 6))
	return Match{System: SystemEra, Year: y, Month: m, Day: d, Precision: p, Resolved: true}, true
}

func buildBCE(_ *Normalizer, s string, loc []int) (Match, bool) {
	n, ok := ParseKanjiNumeral(group(s, loc, 1))
	if !ok || n < 1 {
		return Match{}, false
	}
	return Match{System: SystemBCE, Year: -n, Month: 1, Day: 1, Precision: PrecisionYear, Resolved: true}, true
}

func buildFiscal(_ *Normalizer, s string, loc []int) (Match, bool) {
	year, ok := parseYear(group(s, loc, 1))
	if !ok || precededByDigit(s, loc[0]) {
		return Match{}, false
	}
	return fiscalMatch(SystemFiscal, year), true
}

func buildRelative(n *Normalizer, s string, loc []int) (Match, bool) {
	if followedBy(s, loc[1], "半", "後") {
		return Match{}, false
	}
	// 5月3日前 is a calendar day, not three days ago
	if prev, _ := utf8.DecodeLastRuneInString(s[:loc[0]]); prev == '月' || prev == '年' {
		return Match{}, false
	}

	count, ok := ParseKanjiNumeral(group(s, loc, 1))
	if !ok {
		return Match{}, false
	}

	ref := n.reference
	var year, month, day int
	var precision Precision
	switch group(s, loc, 2) {
	case "年":
		year, month, day = ref.Year()-count, int(ref.Month()), ref.Day()
		precision = PrecisionYear
	case "日":
		t := ref.AddDate(0, 0, -count)
		year, month, day = t.Year(), int(t.Month()), t.Day()
		precision = PrecisionDay
	default:
		months := ref.Year()*12 + int(ref.Month()) - 1 - count
		year, month, day = months/12, months%12+1, ref.Day()
		precision = PrecisionMonth
	}
	if year < 100 {
		return Match{}, false
	}
	if day > daysIn(year, month) {
		day = daysIn(year, month)
	}

	return Match{System: SystemRelative, Year: year, Month: month, Day: day, Precision: precision, Resolved: true}, true
}

func buildDecade(_ *Normalizer, s string, loc []int) (Match, bool) {
	year, ok := parseYear(group(s, loc, 1))
	if !ok || precededByDigit(s, loc[0]) {
		return Match{}, false
	}
	return Match{System: SystemDecade, Year: year, Month: 1, Day: 1, Precision: PrecisionYear}, true
}

func buildGregorian(_ *Normalizer, s string, loc []int) (Match, bool) {
	yearText := group(s, loc, 1)
	year, ok := parseYear(yearText)
	if !ok || precededByDigit(s, loc[0]) {
		return Match{}, false
	}

	monthText := group(s, loc, 2)
	if monthText == "" && year < 1000 && followedBy(s, loc[1], durationSuffixes...) {
		return Match{}, false
	}

	system := SystemGregorian
	if !isArabic(yearText) {
		system = SystemKanji
	}

	y, m, d, p := completeDate(year, monthText, group(s, loc, 3), group(s, loc, 4))
	return Match{System: system, Year: y, Month: m, Day: d, Precision: p, Resolved: true}, true
}

func buildNumeric(_ *Normalizer, s string, loc []int) (Match, bool) {
	if precededByDigit(s, loc[0]) {
		return Match{}, false
	}
	if next, _ := utf8.DecodeRuneInString(s[loc[1]:]); isArabicDigit(next) {
		return Match{}, false
	}

	year, ok := parseYear(group(s, loc, 1))
	if !ok {
		return Match{}, false
	}

	y, m, d, p := completeDate(year, group(s, loc, 2), group(s, loc, 3), "")
	return Match{System: SystemNumeric, Year: y, Month: m, Day: d, Precision: p, Resolved: true}, true
}

// parseYear accepts years from 100 to 9999. Kanji-only years need at least
// three characters so that 千年 or 百年 are not read as dates.
func parseYear(text string) (int, bool) {
	year, ok := ParseKanjiNumeral(text)
	if !ok || year < 100 || year > 9999 {
		return 0, false
	}
	if !isArabic(text) && runeCount(text) < 3 {
		return 0, false
	}
	return year, true
}

func completeDate(year int, monthText, dayText, period string) (int, int, int, Precision) {
	if monthText == "" {
		return year, 1, 1, PrecisionYear
	}
	month, ok := ParseKanjiNumeral(monthText)
	if !ok {
		return year, 1, 1, PrecisionYear
	}

	day, precision := 1, PrecisionMonth
	switch {
	case dayText != "":
		if d, ok := ParseKanjiNumeral(dayText); ok {
			day, precision = d, PrecisionDay
		}
	case period != "":
		day = periodDays[period]
	}

	y, m, d := clampDate(year, month, day)
	return y, m, d, precision
}

func fiscalMatch(system System, year int) Match {
	return Match{System: system, Year: year, Month: 4, Day: 1, Precision: PrecisionYear, Resolved: true}
}

func group(s string, loc []int, i int) string {
	if 2*i+1 >= len(loc) || loc[2*i] < 0 {
		return ""
	}
	return s[loc[2*i]:loc[2*i+1]]
}

func overlaps(matches []Match, start, end int) bool {
	for _, m := range matches {
		if start < m.End && m.Start < end {
			return true
		}
	}
	return false
}

func precededByDigit(s string, start int) bool {
	prev, _ := utf8.DecodeLastRuneInString(s[:start])
	return isArabicDigit(prev)
}

func followedBy(s string, end int, suffixes ...string) bool {
	rest := s[end:]
	for _, suffix := range suffixes {
		if strings.HasPrefix(rest, suffix) {
			return true
		}
	}
	return false
}
