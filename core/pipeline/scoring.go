package pipeline

import (
	"math"
	"unicode"
	"unicode/utf8"
)

const (
	baseImportance       = 0.3
	keywordWeight        = 0.2
	lengthWeight         = 0.4
	lengthSaturation     = 120.0
	maxEntityBonus       = 0.25
	personBonus          = 0.1
	locationBonus        = 0.05
	digitBonus           = 0.05
	maxEntityConfidence  = 0.15
	entityConfidence     = 0.05
	resolvedConfidence   = 0.1
	mergedConfidence     = 0.05
	categoriesConfidence = 0.05
)

// sentenceImportance scores how salient one sentence is for the headline of its event.
func sentenceImportance(sentence string, cls Classification) float64 {
	length := float64(utf8.RuneCountInString(sentence))
	entities := math.Min(maxEntityBonus, personBonus*float64(len(cls.People))+locationBonus*float64(len(cls.Locations)))

	score := baseImportance +
		keywordWeight*float64(cls.KeywordHits) +
		lengthWeight*math.Min(length/lengthSaturation, 1) +
		entities
	if containsDigit(sentence) {
		score += digitBonus
	}
	return round(clip(score), 2)
}

// itemConfidence scores an aggregated item once all its sentences are known.
func itemConfidence(importance float64, resolved bool, entities int, sentences int, categories int) float64 {
	score := clamp(baseImportance+0.5*importance, 0.2, 0.8)
	if resolved {
		score += resolvedConfidence
	}
	score += math.Min(maxEntityConfidence, entityConfidence*float64(entities))
	if sentences > 1 {
		score += mergedConfidence
	}
	if categories > 1 {
		score += categoriesConfidence
	}
	return round(clip(score), 2)
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func clip(v float64) float64 {
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
