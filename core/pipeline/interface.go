package pipeline

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/timegrapher/core/lexicon"
	"github.com/siherrmann/timegrapher/model"
)

// PreprocessFunc cleans raw text and splits it into sentences
type PreprocessFunc func(text string) []string

// TokenizeFunc splits a sentence into candidate tokens for entity detection
type TokenizeFunc func(sentence string) []string

// ClassifyFunc extracts people, locations and a category from a sentence and its tokens
type ClassifyFunc func(sentence string, tokens []string) Classification

// RelationInferFunc proposes directed edges between items that are at most window positions apart
// Edges weaker than threshold are discarded
type RelationInferFunc func(items []*model.TimelineItem, window int, threshold float64) []*model.TimelineEdge

// IDFunc generates identifiers for items and DAGs
type IDFunc func() string

// Classification is the entity and category information of one sentence
type Classification struct {
	People      []string
	Locations   []string
	Category    model.Category
	KeywordHits int
	// People detected through an explicit honorific or role suffix
	ExplicitPeople map[string]bool
}

// Pipeline combines the extraction stages. Every stage can be replaced.
// A Pipeline keeps no state between calls and may be shared by goroutines
// as long as its stages are safe for concurrent use.
type Pipeline struct {
	Preprocessor     PreprocessFunc
	Tokenizer        TokenizeFunc
	Classifier       ClassifyFunc
	RelationInferrer RelationInferFunc
	NewID            IDFunc
	Now              func() time.Time
	lexicon          *lexicon.Lexicon
	log              *slog.Logger
}

// NewPipeline creates a pipeline with the default stages backed by lex.
// A nil lexicon uses the built-in tables.
func NewPipeline(lex *lexicon.Lexicon) *Pipeline {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Pipeline{
		Preprocessor:     NewPreprocessor(lex),
		Tokenizer:        ScriptTokenizer(),
		Classifier:       NewClassifier(lex).Classify,
		RelationInferrer: NewRelationInferrer(lex).Infer,
		NewID:            uuid.NewString,
		Now:              time.Now,
		lexicon:          lex,
		log:              slog.New(slog.DiscardHandler),
	}
}

// DefaultPipeline creates a pipeline with the built-in tables.
func DefaultPipeline() *Pipeline {
	return NewPipeline(nil)
}

// Lexicon returns the tables the pipeline was built with.
func (p *Pipeline) Lexicon() *lexicon.Lexicon {
	return p.lexicon
}

// SetTokenizer sets the tokenization function
func (p *Pipeline) SetTokenizer(tokenizer TokenizeFunc) {
	p.Tokenizer = tokenizer
}

// SetClassifier sets the entity and category classification function
func (p *Pipeline) SetClassifier(classifier ClassifyFunc) {
	p.Classifier = classifier
}

// SetRelationInferrer sets the relation inference function
func (p *Pipeline) SetRelationInferrer(inferrer RelationInferFunc) {
	p.RelationInferrer = inferrer
}

// SetIDFunc sets the identifier generator, e.g. a deterministic one for tests
func (p *Pipeline) SetIDFunc(newID IDFunc) {
	p.NewID = newID
}

// SetClock sets the clock used for generated_at timestamps and as default reference date
func (p *Pipeline) SetClock(now func() time.Time) {
	p.Now = now
}

// SetLogger sets the logger for debug output
func (p *Pipeline) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p.log = logger
}
