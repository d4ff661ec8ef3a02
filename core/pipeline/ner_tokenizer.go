package pipeline

import (
	"fmt"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/siherrmann/timegrapher/helper"
)

// DefaultNERModel is the token classification model used when no model name is given
const DefaultNERModel = "KnightsAnalytics/distilbert-NER"

// NERTokenizer creates a tokenizer that puts the person and location names a NER
// model finds in front of the script-run tokens of the sentence.
// If the model fails on a sentence only the script-run tokens are returned.
func NERTokenizer(modelName string) (TokenizeFunc, error) {
	if modelName == "" {
		modelName = DefaultNERModel
	}

	// Prepare model (download if needed)
	modelPath, err := helper.PrepareModel(modelName, "model.onnx")
	if err != nil {
		return nil, err
	}

	// Initialize hugot session with Go backend
	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.TokenClassificationConfig{
		ModelPath: modelPath,
		Name:      "ner-tokenizer",
		Options: []hugot.TokenClassificationOption{
			pipelines.WithSimpleAggregation(),
			pipelines.WithIgnoreLabels([]string{"O"}), // Ignore non-entity tokens
		},
	}
	nerPipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create NER pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create NER pipeline: %w", err)
	}

	scriptTokens := ScriptTokenizer()
	return func(sentence string) []string {
		tokens := scriptTokens(sentence)

		result, err := nerPipeline.RunPipeline([]string{sentence})
		if err != nil || len(result.Entities) == 0 {
			return tokens
		}

		var names []string
		for _, entity := range result.Entities[0] {
			word := strings.TrimSpace(strings.ReplaceAll(entity.Word, "##", ""))
			if word == "" || !isNameLabel(normalizeEntityType(entity.Entity)) {
				continue
			}
			if !contains(names, word) && !contains(tokens, word) {
				names = append(names, word)
			}
		}
		return append(names, tokens...)
	}, nil
}

func isNameLabel(label string) bool {
	switch label {
	case "PER", "PERSON", "LOC", "LOCATION":
		return true
	}
	return false
}

// normalizeEntityType removes B- and I- prefixes from NER labels
func normalizeEntityType(label string) string {
	// Remove BIO tagging prefixes (B- for beginning, I- for inside)
	if strings.HasPrefix(label, "B-") || strings.HasPrefix(label, "I-") {
		return label[2:]
	}
	return label
}
