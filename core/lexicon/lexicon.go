// Package lexicon holds the ordered heuristic tables used by the extraction
// pipeline. Tables are decoded from YAML once and never mutated afterwards.
package lexicon

import (
	_ "embed"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/siherrmann/timegrapher/helper"
	"github.com/siherrmann/timegrapher/model"
	"gopkg.in/yaml.v3"
)

//go:embed lexicon.yaml
var defaultTables []byte

// Category is a named keyword list.
type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Marker is a lexical cue for a relation type.
type Marker struct {
	Phrase string             `yaml:"phrase"`
	Type   model.RelationType `yaml:"type"`
	Score  float64            `yaml:"score"`
}

type affinityEntry struct {
	A     string  `yaml:"a"`
	B     string  `yaml:"b"`
	Score float64 `yaml:"score"`
}

type tables struct {
	Categories             []Category      `yaml:"categories"`
	PersonHonorifics       []string        `yaml:"person_honorifics"`
	PersonRoles            []string        `yaml:"person_roles"`
	Stopwords              []string        `yaml:"stopwords"`
	PersonNounEndings      []string        `yaml:"person_noun_endings"`
	PersonNounPrefixes     []string        `yaml:"person_noun_prefixes"`
	KatakanaStopwords      []string        `yaml:"katakana_stopwords"`
	LocationSuffixes       []string        `yaml:"location_suffixes"`
	LocationSuffixBlockers []string        `yaml:"location_suffix_blockers"`
	LocationSuffixWords    []string        `yaml:"location_suffix_words"`
	LocationGazetteer      []string        `yaml:"location_gazetteer"`
	LinkingPhrases         []string        `yaml:"linking_phrases"`
	LeadingConjunctions    []string        `yaml:"leading_conjunctions"`
	NoiseKeywords          []string        `yaml:"noise_keywords"`
	Markers                []Marker        `yaml:"markers"`
	Affinity               []affinityEntry `yaml:"affinity"`
}

// Lexicon answers lookups against the heuristic tables.
type Lexicon struct {
	categories       []Category
	honorifics       []string
	roles            []string
	stopwords        map[string]struct{}
	nounEndings      map[rune]struct{}
	nounPrefixes     map[rune]struct{}
	locationSuffixes []string
	suffixBlockers   map[rune]struct{}
	suffixWords      []string
	gazetteer        []string
	linking          []string
	conjunctions     []string
	noise            []string
	markers          []Marker
	affinity         map[[2]string]float64
}

var defaultLexicon = sync.OnceValue(func() *Lexicon {
	l, err := Load(defaultTables)
	if err != nil {
		log.Panicf("error loading default lexicon: %v", err)
	}
	return l
})

// Default returns the built-in tables, parsed on first use.
func Default() *Lexicon {
	return defaultLexicon()
}

// Load parses and validates a YAML table document.
func Load(data []byte) (*Lexicon, error) {
	var t tables
	err := yaml.Unmarshal(data, &t)
	if err != nil {
		return nil, helper.NewError("unmarshal lexicon", err)
	}

	err = t.validate()
	if err != nil {
		return nil, helper.NewError("validate lexicon", err)
	}

	l := &Lexicon{
		honorifics:     longestFirst(t.PersonHonorifics),
		roles:          longestFirst(t.PersonRoles),
		stopwords:      stringSet(t.Stopwords, t.KatakanaStopwords),
		nounEndings:    runeSet(t.PersonNounEndings),
		nounPrefixes:   runeSet(t.PersonNounPrefixes),
		suffixBlockers: runeSet(t.LocationSuffixBlockers),
		suffixWords:    append([]string(nil), t.LocationSuffixWords...),
		// longest first so 空港 wins over 港 and 北九州 over 九州
		locationSuffixes: longestFirst(t.LocationSuffixes),
		gazetteer:        longestFirst(t.LocationGazetteer),
		linking:          append([]string(nil), t.LinkingPhrases...),
		conjunctions:     longestFirst(t.LeadingConjunctions),
		noise:            append([]string(nil), t.NoiseKeywords...),
		markers:          append([]Marker(nil), t.Markers...),
		affinity:         make(map[[2]string]float64, len(t.Affinity)),
	}

	for _, c := range t.Categories {
		keywords := make([]string, len(c.Keywords))
		for i, k := range c.Keywords {
			keywords[i] = strings.ToLower(k)
		}
		l.categories = append(l.categories, Category{Name: c.Name, Keywords: keywords})
	}

	for _, a := range t.Affinity {
		l.affinity[pairKey(a.A, a.B)] = a.Score
	}

	return l, nil
}

func (t *tables) validate() error {
	if len(t.Categories) == 0 {
		return fmt.Errorf("no categories defined")
	}
	for _, c := range t.Categories {
		if c.Name == "" || c.Name == string(model.CategoryGeneral) {
			return fmt.Errorf("invalid category name %q", c.Name)
		}
	}
	for _, m := range t.Markers {
		if m.Phrase == "" {
			return fmt.Errorf("marker without phrase")
		}
		if !m.Type.Valid() {
			return fmt.Errorf("marker %q has unknown relation type %q", m.Phrase, m.Type)
		}
		if m.Score < 0 || m.Score > 1 {
			return fmt.Errorf("marker %q score %v out of range", m.Phrase, m.Score)
		}
	}
	for _, a := range t.Affinity {
		if a.Score < 0 || a.Score > 1 {
			return fmt.Errorf("affinity %s/%s score %v out of range", a.A, a.B, a.Score)
		}
	}
	for _, list := range [][]string{t.PersonNounEndings, t.PersonNounPrefixes, t.LocationSuffixBlockers} {
		for _, s := range list {
			if utf8.RuneCountInString(s) != 1 {
				return fmt.Errorf("entry %q must be a single character", s)
			}
		}
	}
	return nil
}

// Categorize returns the first category with a keyword contained in lower,
// or the general category.
func (l *Lexicon) Categorize(lower string) model.Category {
	for _, c := range l.categories {
		for _, k := range c.Keywords {
			if strings.Contains(lower, k) {
				return model.Category(c.Name)
			}
		}
	}
	return model.CategoryGeneral
}

// KeywordHits counts keyword occurrences of all categories in lower.
func (l *Lexicon) KeywordHits(lower string) int {
	hits := 0
	for _, c := range l.categories {
		for _, k := range c.Keywords {
			hits += strings.Count(lower, k)
		}
	}
	return hits
}

// PersonName strips a person suffix from token. Honorifics are removed,
// role titles are kept. ok is false when token carries no person suffix.
func (l *Lexicon) PersonName(token string) (name string, ok bool) {
	for _, h := range l.honorifics {
		if stem, found := strings.CutSuffix(token, h); found && stem != "" {
			return stem, true
		}
	}
	for _, r := range l.roles {
		if stem, found := strings.CutSuffix(token, r); found && stem != "" {
			return token, true
		}
	}
	return "", false
}

// IsHonorific reports whether token is exactly an honorific.
func (l *Lexicon) IsHonorific(token string) bool {
	for _, h := range l.honorifics {
		if token == h {
			return true
		}
	}
	return false
}

// IsStopword reports whether token is a common noun.
func (l *Lexicon) IsStopword(token string) bool {
	_, ok := l.stopwords[token]
	return ok
}

// LooksLikeCommonNoun reports whether token starts or ends with a character
// typical of common nouns.
func (l *Lexicon) LooksLikeCommonNoun(token string) bool {
	first, _ := utf8.DecodeRuneInString(token)
	last, _ := utf8.DecodeLastRuneInString(token)
	if _, ok := l.nounPrefixes[first]; ok {
		return true
	}
	_, ok := l.nounEndings[last]
	return ok
}

// HasLocationSuffix reports whether token ends with an administrative suffix
// and has at least one character before it.
func (l *Lexicon) HasLocationSuffix(token string) bool {
	for _, s := range l.locationSuffixes {
		if stem, found := strings.CutSuffix(token, s); found && stem != "" {
			return true
		}
	}
	return false
}

// LocationSuffixAt returns the rune length of the longest location suffix
// starting at runes[i], or 0.
func (l *Lexicon) LocationSuffixAt(runes []rune, i int) int {
	for _, s := range l.locationSuffixes {
		n := utf8.RuneCountInString(s)
		if i+n <= len(runes) && string(runes[i:i+n]) == s {
			return n
		}
	}
	return 0
}

// BlocksSuffix reports whether r following a suffix makes it part of a longer word.
func (l *Lexicon) BlocksSuffix(r rune) bool {
	_, ok := l.suffixBlockers[r]
	return ok
}

// IsSuffixWord reports whether name ends in a word that only looks like a
// location suffix compound, such as 鉄道.
func (l *Lexicon) IsSuffixWord(name string) bool {
	for _, w := range l.suffixWords {
		if strings.HasSuffix(name, w) {
			return true
		}
	}
	return false
}

// Gazetteer returns the known place names, longest first. The slice must not be modified.
func (l *Lexicon) Gazetteer() []string {
	return l.gazetteer
}

// IsLinking reports whether sentence contains a same-day linking phrase.
func (l *Lexicon) IsLinking(sentence string) bool {
	for _, p := range l.linking {
		if strings.Contains(sentence, p) {
			return true
		}
	}
	return false
}

// TrimConjunctions removes leading conjunctions and the separators after them.
func (l *Lexicon) TrimConjunctions(s string) string {
	for {
		trimmed := false
		s = strings.TrimLeft(s, " 　、，,")
		for _, c := range l.conjunctions {
			if rest, found := strings.CutPrefix(s, c); found {
				s = rest
				trimmed = true
				break
			}
		}
		if !trimmed {
			return s
		}
	}
}

// IsNoise reports whether s contains a citation noise keyword.
func (l *Lexicon) IsNoise(s string) bool {
	lower := strings.ToLower(s)
	for _, k := range l.noise {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// Markers returns the relation markers in priority order. The slice must not be modified.
func (l *Lexicon) Markers() []Marker {
	return l.markers
}

// Affinity returns the table similarity of two distinct categories.
func (l *Lexicon) Affinity(a, b model.Category) (float64, bool) {
	score, ok := l.affinity[pairKey(string(a), string(b))]
	return score, ok
}

func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

func longestFirst(values []string) []string {
	out := append([]string(nil), values...)
	sort.SliceStable(out, func(i, j int) bool {
		return utf8.RuneCountInString(out[i]) > utf8.RuneCountInString(out[j])
	})
	return out
}

func stringSet(lists ...[]string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, list := range lists {
		for _, s := range list {
			set[s] = struct{}{}
		}
	}
	return set
}

func runeSet(values []string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(values))
	for _, s := range values {
		r, _ := utf8.DecodeRuneInString(s)
		set[r] = struct{}{}
	}
	return set
}
