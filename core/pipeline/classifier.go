package pipeline

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/siherrmann/timegrapher/core/lexicon"
)

const kanjiNumeralRunes = "〇零一二三四五六七八九十百千万億兆"

// Classifier detects people, locations and the category of a sentence with lexicon rules
type Classifier struct {
	lexicon *lexicon.Lexicon
}

// NewClassifier creates a classifier backed by lex. A nil lexicon uses the built-in tables.
func NewClassifier(lex *lexicon.Lexicon) *Classifier {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Classifier{lexicon: lex}
}

// Classify detects entities in sentence. People and locations keep the order
// they were found in and never share a name.
func (c *Classifier) Classify(sentence string, tokens []string) Classification {
	lower := strings.ToLower(sentence)
	locations := c.locations(sentence)
	people, explicit := c.people(tokens)

	cls := Classification{
		Category:       c.lexicon.Categorize(lower),
		KeywordHits:    c.lexicon.KeywordHits(lower),
		ExplicitPeople: explicit,
	}
	cls.People, cls.Locations = c.disambiguate(people, explicit, locations)
	return cls
}

// people returns person candidates in token order and which of them carried a person suffix
func (c *Classifier) people(tokens []string) ([]string, map[string]bool) {
	var people []string
	explicit := map[string]bool{}
	add := func(name string, isExplicit bool) {
		if utf8.RuneCountInString(name) < 2 {
			return
		}
		if _, seen := explicit[name]; !seen {
			people = append(people, name)
		}
		explicit[name] = explicit[name] || isExplicit
	}

	for i, token := range tokens {
		if strings.ContainsAny(token, "/／") {
			parts := strings.FieldsFunc(token, func(r rune) bool { return r == '/' || r == '／' })
			names := make([]string, 0, len(parts))
			for _, part := range parts {
				name, _, ok := c.personCandidate(part, "")
				if !ok {
					names = nil
					break
				}
				names = append(names, name)
			}
			for _, name := range names {
				add(name, false)
			}
			continue
		}

		next := ""
		if i+1 < len(tokens) {
			next = tokens[i+1]
		}
		if name, isExplicit, ok := c.personCandidate(token, next); ok {
			add(name, isExplicit)
		}
	}
	return people, explicit
}

// personCandidate applies the person rules to one token. next is the token that follows it.
func (c *Classifier) personCandidate(token string, next string) (string, bool, bool) {
	if name, ok := c.lexicon.PersonName(token); ok && (isScript(name, scriptHan) || isScript(name, scriptKatakana)) {
		return name, true, true
	}
	if next != "" && c.lexicon.IsHonorific(next) && (isScript(token, scriptHan) || isScript(token, scriptKatakana)) {
		return token, true, true
	}
	if c.lexicon.IsStopword(token) || c.lexicon.HasLocationSuffix(token) {
		return "", false, false
	}

	length := utf8.RuneCountInString(token)
	switch {
	case isScript(token, scriptHan) && length >= 2 && length <= 4:
		if c.lexicon.LooksLikeCommonNoun(token) || isNumeral(token) || c.containsKeyword(token) {
			return "", false, false
		}
		return token, false, true
	case isScript(token, scriptKatakana) && length >= 3:
		if c.containsKeyword(token) || c.isGazetteer(token) {
			return "", false, false
		}
		return token, false, true
	}
	return "", false, false
}

type span struct {
	start, end int // rune offsets
	name       string
}

// locations returns gazetteer names and administrative-suffix compounds found in
// sentence. Overlapping matches keep the longest span.
func (c *Classifier) locations(sentence string) []string {
	runes := []rune(sentence)
	var spans []span

	for _, place := range c.lexicon.Gazetteer() {
		placeRunes := []rune(place)
		for i := 0; i+len(placeRunes) <= len(runes); i++ {
			if string(runes[i:i+len(placeRunes)]) == place {
				spans = append(spans, span{start: i, end: i + len(placeRunes), name: place})
			}
		}
	}
	spans = append(spans, c.suffixCompounds(runes)...)

	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end-spans[i].start > spans[j].end-spans[j].start
	})

	var locations []string
	seen := map[string]bool{}
	coveredUntil := -1
	for _, s := range spans {
		if s.start < coveredUntil {
			continue
		}
		coveredUntil = s.end
		if !seen[s.name] && !c.lexicon.IsStopword(s.name) {
			seen[s.name] = true
			locations = append(locations, s.name)
		}
	}
	return locations
}

// suffixCompounds scans kanji and katakana runs for names ending in an
// administrative suffix. A suffix followed by another suffix extends the match (京都市).
func (c *Classifier) suffixCompounds(runes []rune) []span {
	var spans []span
	for start := 0; start < len(runes); {
		s := scriptOf(runes[start])
		if s != scriptHan && s != scriptKatakana {
			start++
			continue
		}
		end := start
		for end < len(runes) && (scriptOf(runes[end]) == scriptHan || scriptOf(runes[end]) == scriptKatakana) {
			end++
		}

		segment := start
		for i := start + 1; i < end; i++ {
			if i <= segment {
				continue
			}
			n := c.lexicon.LocationSuffixAt(runes[:end], i)
			if n == 0 {
				continue
			}
			stop := i + n
			if stop < end && (c.lexicon.BlocksSuffix(runes[stop]) || c.lexicon.LocationSuffixAt(runes[:end], stop) > 0) {
				continue
			}
			name := string(runes[segment:stop])
			if !c.lexicon.IsSuffixWord(name) {
				spans = append(spans, span{start: segment, end: stop, name: name})
			}
			segment = stop
			i = stop - 1
		}
		start = end
	}
	return spans
}

// disambiguate removes names detected as both person and location. An explicit
// person suffix wins unless the name also ends in a location suffix.
func (c *Classifier) disambiguate(people []string, explicit map[string]bool, locations []string) ([]string, []string) {
	isLocation := map[string]bool{}
	for _, l := range locations {
		isLocation[l] = true
	}

	var keptPeople []string
	for _, p := range people {
		switch {
		case !isLocation[p]:
			keptPeople = append(keptPeople, p)
		case explicit[p] && !c.lexicon.HasLocationSuffix(p):
			keptPeople = append(keptPeople, p)
			delete(isLocation, p)
		}
	}

	keptLocations := make([]string, 0, len(locations))
	for _, l := range locations {
		if isLocation[l] {
			keptLocations = append(keptLocations, l)
		}
	}
	return keptPeople, keptLocations
}

func (c *Classifier) containsKeyword(token string) bool {
	return c.lexicon.KeywordHits(strings.ToLower(token)) > 0
}

func (c *Classifier) isGazetteer(token string) bool {
	for _, place := range c.lexicon.Gazetteer() {
		if place == token {
			return true
		}
	}
	return false
}

func isNumeral(token string) bool {
	for _, r := range token {
		if !strings.ContainsRune(kanjiNumeralRunes, r) {
			return false
		}
	}
	return true
}
