package model

import "time"

// ExtractionConfig configures timeline generation.
type ExtractionConfig struct {
	MaxEvents      int        `json:"max_events"`
	ReferenceDate  *time.Time `json:"reference_date,omitempty"` // Anchor for relative dates, now if nil
	TitleMaxLength int        `json:"title_max_length"`
}

// DefaultExtractionConfig returns the default timeline generation settings
func DefaultExtractionConfig() ExtractionConfig {
	return ExtractionConfig{
		MaxEvents:      150,
		TitleMaxLength: 80,
	}
}

// DAGConfig configures relationship graph generation.
type DAGConfig struct {
	Title             string           `json:"title,omitempty"`
	RelationThreshold float64          `json:"relation_threshold"`
	LookaheadWindow   int              `json:"lookahead_window"`
	MaxPathDepth      int              `json:"max_path_depth"`
	Extraction        ExtractionConfig `json:"extraction"`
}

const (
	MaxDAGEvents  = 5000
	MaxDAGTextLen = 200000
)

// DefaultDAGConfig returns the default relationship graph settings
func DefaultDAGConfig() DAGConfig {
	extraction := DefaultExtractionConfig()
	extraction.MaxEvents = 500
	return DAGConfig{
		RelationThreshold: 0.5,
		LookaheadWindow:   3,
		MaxPathDepth:      10,
		Extraction:        extraction,
	}
}

// Normalize clamps out-of-range settings to their defaults or limits.
func (c DAGConfig) Normalize() DAGConfig {
	defaults := DefaultDAGConfig()
	if c.RelationThreshold < 0 || c.RelationThreshold > 1 {
		c.RelationThreshold = defaults.RelationThreshold
	}
	if c.LookaheadWindow <= 0 {
		c.LookaheadWindow = defaults.LookaheadWindow
	}
	if c.MaxPathDepth <= 0 {
		c.MaxPathDepth = defaults.MaxPathDepth
	}
	c.Extraction = c.Extraction.Normalize()
	if c.Extraction.MaxEvents > MaxDAGEvents {
		c.Extraction.MaxEvents = MaxDAGEvents
	}
	return c
}

// Normalize replaces non-positive limits with their defaults.
func (c ExtractionConfig) Normalize() ExtractionConfig {
	defaults := DefaultExtractionConfig()
	if c.MaxEvents <= 0 {
		c.MaxEvents = defaults.MaxEvents
	}
	if c.TitleMaxLength <= 0 {
		c.TitleMaxLength = defaults.TitleMaxLength
	}
	return c
}
