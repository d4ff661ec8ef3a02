package pipeline

import (
	"sort"
	"strings"
	"unicode"

	"github.com/siherrmann/timegrapher/core/calendar"
	"github.com/siherrmann/timegrapher/model"
)

const (
	datePunctuation = "年月日頃ごろ度にのはからまでとや前後時分"
	titleSeparators = "、，,:：・ 　"
	maxPeople       = 5
	maxLocations    = 5
)

// Particles that may follow a stripped leading date, longest first.
var leadingParticles = []string{"には", "にて", "から", "まで", "ごろ", "に", "は", "頃", "の"}

// extractionContext holds the memoization of one GenerateTimeline call.
// It is created when the call starts and dropped when it returns.
type extractionContext struct {
	pipeline        *Pipeline
	normalizer      *calendar.Normalizer
	titleMaxLength  int
	tokens          map[string][]string
	classifications map[string]Classification
}

func (p *Pipeline) newExtractionContext(cfg model.ExtractionConfig) *extractionContext {
	reference := p.Now()
	if cfg.ReferenceDate != nil {
		reference = *cfg.ReferenceDate
	}
	return &extractionContext{
		pipeline:        p,
		normalizer:      calendar.NewNormalizer(reference),
		titleMaxLength:  cfg.TitleMaxLength,
		tokens:          map[string][]string{},
		classifications: map[string]Classification{},
	}
}

// classify runs the classifier on sentence with its date spans blanked out,
// so era names and date words never become entities.
func (c *extractionContext) classify(sentence string, matches []calendar.Match) Classification {
	if cls, ok := c.classifications[sentence]; ok {
		return cls
	}
	content := maskSpans(sentence, matches)
	tokens, ok := c.tokens[content]
	if !ok {
		tokens = c.pipeline.Tokenizer(content)
		c.tokens[content] = tokens
	}
	cls := c.pipeline.Classifier(content, tokens)
	if cls.Category == "" {
		cls.Category = model.CategoryGeneral
	}
	c.classifications[sentence] = cls
	return cls
}

// observation is one sentence that takes part in event formation.
type observation struct {
	sentence   string
	followUp   bool
	match      calendar.Match // best date of a dated sentence
	matches    []calendar.Match
	cls        Classification
	importance float64
}

// scan turns sentences into observations in document order. Sentences without
// a date and without a linking phrase are dropped, as are sentences that
// contain nothing but their date.
func (c *extractionContext) scan(sentences []string) []observation {
	lex := c.pipeline.lexicon
	var observations []observation
	for _, sentence := range sentences {
		matches := c.normalizer.FindAll(sentence)
		if len(matches) == 0 {
			if lex.IsLinking(sentence) {
				observations = append(observations, observation{
					sentence: sentence,
					followUp: true,
					cls:      c.classify(sentence, nil),
				})
			}
			continue
		}

		if !c.hasContent(sentence, matches) {
			continue
		}

		best, _ := calendar.Best(matches)
		cls := c.classify(sentence, matches)
		observations = append(observations, observation{
			sentence:   sentence,
			match:      best,
			matches:    matches,
			cls:        cls,
			importance: sentenceImportance(sentence, cls),
		})
	}
	return observations
}

// hasContent reports whether sentence says more than its dates.
func (c *extractionContext) hasContent(sentence string, matches []calendar.Match) bool {
	rest := c.pipeline.lexicon.TrimConjunctions(removeSpans(sentence, matches))
	for _, r := range rest {
		if unicode.IsDigit(r) || unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) {
			continue
		}
		if strings.ContainsRune(datePunctuation, r) || strings.ContainsRune(kanjiNumeralRunes, r) {
			continue
		}
		return true
	}
	return false
}

// bucket collects the sentences of one date key.
type bucket struct {
	order       int
	match       calendar.Match // date of the headline sentence
	finest      calendar.Match // finest date seen, used for ordering
	title       observation
	importance  float64
	sentences   []string
	people      []string
	locations   []string
	categories  []model.Category
	seenPhrases map[string]bool
}

func newBucket(order int) *bucket {
	return &bucket{order: order, importance: -1, seenPhrases: map[string]bool{}}
}

// add merges the sentence and entities of o into the bucket. Only dated
// observations may replace the headline, and only with a strictly higher importance.
func (b *bucket) add(o observation) {
	if !b.seenPhrases[o.sentence] {
		b.seenPhrases[o.sentence] = true
		b.sentences = append(b.sentences, o.sentence)
	}
	b.categories = append(b.categories, o.cls.Category)
	if !o.followUp && (b.importance < 0 || o.match.Precision < b.finest.Precision) {
		b.finest = o.match
	}

	for _, p := range o.cls.People {
		if !contains(b.locations, p) {
			b.people = appendDistinct(b.people, p, maxPeople)
		}
	}
	for _, l := range o.cls.Locations {
		if !contains(b.people, l) {
			b.locations = appendDistinct(b.locations, l, maxLocations)
		}
	}

	if !o.followUp && o.importance > b.importance {
		b.importance = o.importance
		b.title = o
		b.match = o.match
	}
}

// foldObservations groups observations into buckets keyed by date. A follow-up
// joins the bucket of the last dated observation and is dropped if there is none.
func foldObservations(observations []observation) []*bucket {
	var buckets []*bucket
	byKey := map[string]*bucket{}
	var active *bucket
	for _, o := range observations {
		if o.followUp {
			if active != nil {
				active.add(o)
			}
			continue
		}

		key := bucketKey(o.match)
		b, ok := byKey[key]
		if !ok {
			b = newBucket(len(buckets))
			byKey[key] = b
			buckets = append(buckets, b)
		}
		b.add(o)
		active = b
	}
	return buckets
}

// bucketKey is the ISO date of a match, or its raw text when unresolved.
func bucketKey(m calendar.Match) string {
	return m.Key()
}

// extractedItem is an item together with the precision of its date.
type extractedItem struct {
	item      *model.TimelineItem
	precision calendar.Precision
	sortKey   calendar.SortKey
}

// GenerateTimeline extracts the dated events of text in chronological order.
// Empty or undated text gives an empty list.
func (p *Pipeline) GenerateTimeline(text string, cfg model.ExtractionConfig) []*model.TimelineItem {
	extracted := p.extract(text, cfg)
	items := make([]*model.TimelineItem, 0, len(extracted))
	for _, e := range extracted {
		items = append(items, e.item)
	}
	return items
}

func (p *Pipeline) extract(text string, cfg model.ExtractionConfig) []extractedItem {
	cfg = cfg.Normalize()
	if strings.TrimSpace(text) == "" {
		return nil
	}

	ctx := p.newExtractionContext(cfg)
	sentences := p.Preprocessor(text)
	observations := ctx.scan(sentences)
	buckets := foldObservations(observations)

	sort.SliceStable(buckets, func(i, j int) bool {
		a, b := buckets[i], buckets[j]
		if c := a.finest.SortKey().Compare(b.finest.SortKey()); c != 0 {
			return c < 0
		}
		if a.importance != b.importance {
			return a.importance > b.importance
		}
		return a.order < b.order
	})
	if len(buckets) > cfg.MaxEvents {
		buckets = buckets[:cfg.MaxEvents]
	}

	extracted := make([]extractedItem, 0, len(buckets))
	for _, b := range buckets {
		extracted = append(extracted, extractedItem{
			item:      ctx.item(b),
			precision: b.finest.Precision,
			sortKey:   b.finest.SortKey(),
		})
	}

	p.log.Debug("generated timeline",
		"sentences", len(sentences),
		"observations", len(observations),
		"buckets", len(buckets),
	)
	return extracted
}

// item converts a finished bucket into a timeline item.
func (c *extractionContext) item(b *bucket) *model.TimelineItem {
	item := &model.TimelineItem{
		ID:          c.pipeline.NewID(),
		DateText:    b.match.Text,
		Title:       c.title(b.title),
		Description: strings.Join(b.sentences, "\n"),
		People:      append([]string{}, b.people...),
		Locations:   append([]string{}, b.locations...),
		Category:    dominantCategory(b.categories),
		Importance:  b.importance,
	}
	if iso := b.match.ISO(); iso != "" {
		item.DateISO = &iso
	}
	item.Confidence = itemConfidence(
		item.Importance,
		item.DateISO != nil,
		len(item.People)+len(item.Locations),
		len(b.sentences),
		distinctCategories(b.categories),
	)
	return item
}

// title builds a headline from the sentence o: a leading date, particles and
// date-only parentheticals are removed and the result is cut at the first
// sentence end and at the maximum title length.
func (c *extractionContext) title(o observation) string {
	title := o.sentence
	if o.match.Start == 0 || strings.TrimSpace(o.sentence[:o.match.Start]) == "" {
		title = title[o.match.End:]
	}
	title = parenPattern.ReplaceAllStringFunc(title, func(paren string) string {
		if c.isDateOnly(paren) {
			return ""
		}
		return paren
	})
	title = trimTitleStart(title)
	title = c.pipeline.lexicon.TrimConjunctions(title)
	title = trimTitleStart(title)

	if i := strings.IndexAny(title, sentenceEnders); i >= 0 {
		title = title[:i]
	}
	title = strings.TrimSpace(capTitle(title, c.titleMaxLength))
	if title == "" {
		return o.match.Text
	}
	return title
}

func trimTitleStart(title string) string {
	title = strings.TrimLeft(title, titleSeparators)
	for _, particle := range leadingParticles {
		if rest, found := strings.CutPrefix(title, particle); found {
			title = rest
			break
		}
	}
	return strings.TrimLeft(title, titleSeparators)
}

// capTitle shortens title to at most maxLength runes, preferring a clause boundary.
func capTitle(title string, maxLength int) string {
	runes := []rune(title)
	if len(runes) <= maxLength {
		return title
	}
	for i := maxLength - 1; i >= maxLength/2; i-- {
		if runes[i] == '、' {
			return string(runes[:i])
		}
	}
	return string(runes[:maxLength-1]) + "…"
}

// removeSpans cuts the date matches out of sentence.
func removeSpans(sentence string, matches []calendar.Match) string {
	var sb strings.Builder
	last := 0
	for _, m := range matches {
		sb.WriteString(sentence[last:m.Start])
		last = m.End
	}
	sb.WriteString(sentence[last:])
	return sb.String()
}

// maskSpans replaces the date matches in sentence with spaces so the
// surrounding words stay separate tokens.
func maskSpans(sentence string, matches []calendar.Match) string {
	if len(matches) == 0 {
		return sentence
	}
	var sb strings.Builder
	last := 0
	for _, m := range matches {
		sb.WriteString(sentence[last:m.Start])
		sb.WriteByte(' ')
		last = m.End
	}
	sb.WriteString(sentence[last:])
	return sb.String()
}

// dominantCategory returns the most frequent specific category, the first seen on ties.
func dominantCategory(categories []model.Category) model.Category {
	counts := map[model.Category]int{}
	best := model.CategoryGeneral
	for _, c := range categories {
		if c == model.CategoryGeneral {
			continue
		}
		counts[c]++
		if best == model.CategoryGeneral || counts[c] > counts[best] {
			best = c
		}
	}
	return best
}

func distinctCategories(categories []model.Category) int {
	seen := map[model.Category]bool{}
	for _, c := range categories {
		seen[c] = true
	}
	return len(seen)
}

func appendDistinct(values []string, value string, limit int) []string {
	if len(values) >= limit || contains(values, value) {
		return values
	}
	return append(values, value)
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

// isDateOnly reports whether text consists of dates and date particles only.
func (c *extractionContext) isDateOnly(text string) bool {
	matches := c.normalizer.FindAll(text)
	return len(matches) > 0 && !c.hasContent(text, matches)
}
