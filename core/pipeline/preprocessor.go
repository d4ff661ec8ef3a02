package pipeline

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/siherrmann/timegrapher/core/lexicon"
	"golang.org/x/text/unicode/norm"
)

var (
	refTagPattern     = regexp.MustCompile(`(?is)<ref[^>]*/>|<ref[^>]*>.*?</ref>`)
	templatePattern   = regexp.MustCompile(`\{\{[^{}]*\}\}`)
	htmlTagPattern    = regexp.MustCompile(`</?[a-zA-Z][^<>]*>`)
	citationPattern   = regexp.MustCompile(`\[[0-9０-９]+\]|［[0-9０-９]+］|\[注\s*[0-9０-９]+\]`)
	footnotePattern   = regexp.MustCompile(`（[0-9０-９]{1,3}）|\([0-9]{1,3}\)`)
	parenPattern      = regexp.MustCompile(`（[^（）]*）|\([^()]*\)`)
	codePattern       = regexp.MustCompile(`(?i)(?:ISBN|ISSN)[-:：\s]*[0-9X][0-9X\-－ ]{7,}[0-9X]`)
	wikiLinkPattern   = regexp.MustCompile(`\[\[(?:[^\[\]|]*\|)?([^\[\]|]*)\]\]`)
	bareLinkPattern   = regexp.MustCompile(`^\[\[[^\[\]]*\]\]$`)
	headingPattern    = regexp.MustCompile(`^=+[^=]+=+$`)
	horizontalSpaces  = regexp.MustCompile(`[ \t\x{3000}]+`)
	metaLinePrefixes  = []string{"出典", "脚注", "参考文献", "関連項目", "外部リンク", "注釈", "Category:", "カテゴリ:", "カテゴリ："}
	bulletRunes       = "・-*●■▲•◆○◇□◎"
	sentenceEnders    = "。！？!?"
	closingBrackets   = "」』）)】〕"
)

// Preprocess cleans text and splits it into sentences using the built-in noise keywords
func Preprocess(text string) []string {
	return SplitSentences(NormalizeText(text))
}

// NewPreprocessor creates a preprocessor that drops parentheticals flagged by lex
func NewPreprocessor(lex *lexicon.Lexicon) PreprocessFunc {
	return func(text string) []string {
		return SplitSentences(normalizeText(text, lex))
	}
}

// NormalizeText removes markup and citation noise and puts every sentence on its own line.
// Applying it twice gives the same result as applying it once.
func NormalizeText(text string) string {
	return normalizeText(text, lexicon.Default())
}

// normalizeText cleans until a fixpoint. Every pass that changes the text
// removes markup or escapes, so the loop ends.
func normalizeText(text string, lex *lexicon.Lexicon) string {
	current := text
	for {
		next := cleanOnce(current, lex)
		if next == current {
			return current
		}
		current = next
	}
}

// SplitSentences splits text after sentence-ending punctuation and at line breaks.
// Sentences keep their final punctuation.
func SplitSentences(text string) []string {
	var sentences []string
	for _, line := range strings.Split(breakSentences(text), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			sentences = append(sentences, line)
		}
	}
	return sentences
}

func cleanOnce(text string, lex *lexicon.Lexicon) string {
	text = strings.ToValidUTF8(unescapeAll(text), "")
	text = norm.NFC.String(text)
	text = strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(text)

	text = refTagPattern.ReplaceAllString(text, "")
	for templatePattern.MatchString(text) {
		text = templatePattern.ReplaceAllString(text, "")
	}
	text = htmlTagPattern.ReplaceAllString(text, "")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(horizontalSpaces.ReplaceAllString(line, " "))
		if isMetaLine(line) {
			continue
		}

		line = wikiLinkPattern.ReplaceAllString(line, "$1")
		line = citationPattern.ReplaceAllString(line, "")
		line = footnotePattern.ReplaceAllString(line, "")
		line = codePattern.ReplaceAllString(line, "")
		line = parenPattern.ReplaceAllStringFunc(line, func(p string) string {
			if lex.IsNoise(p) {
				return ""
			}
			return p
		})
		line = stripBullets(line)
		line = strings.TrimSpace(horizontalSpaces.ReplaceAllString(line, " "))
		if line != "" {
			lines = append(lines, line)
		}
	}

	return strings.Join(SplitSentences(strings.Join(lines, "\n")), "\n")
}

func unescapeAll(text string) string {
	for {
		next := html.UnescapeString(text)
		if next == text {
			return text
		}
		text = next
	}
}

func isMetaLine(line string) bool {
	if line == "" {
		return true
	}
	if headingPattern.MatchString(line) || bareLinkPattern.MatchString(line) {
		return true
	}
	for _, prefix := range metaLinePrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

func stripBullets(line string) string {
	for {
		trimmed := strings.TrimLeft(line, bulletRunes)
		trimmed = strings.TrimLeft(trimmed, " ")
		if trimmed == line {
			return line
		}
		line = trimmed
	}
}

// breakSentences inserts a line break after every sentence ender that is not
// followed by a closing bracket or another ender, and after ". ".
func breakSentences(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/16)
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		b.WriteString(text[i : i+size])
		i += size
		next, _ := utf8.DecodeRuneInString(text[i:])
		switch {
		case strings.ContainsRune(sentenceEnders, r):
			if next == utf8.RuneError || strings.ContainsRune(closingBrackets, next) || strings.ContainsRune(sentenceEnders, next) {
				continue
			}
			b.WriteByte('\n')
		case r == '.' && next == ' ':
			b.WriteByte('\n')
		}
	}
	return b.String()
}
