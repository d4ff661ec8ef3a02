package pipeline

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type script int

const (
	scriptNone script = iota
	scriptHan
	scriptKatakana
	scriptHiragana
	scriptLatin
)

// ScriptTokenizer creates a tokenizer that splits a sentence into runs of the
// same script. Kanji, katakana, hiragana and Latin/digit runs become separate
// tokens, punctuation separates tokens. Runs of the same script joined by a
// slash stay one token (山田/佐藤).
func ScriptTokenizer() TokenizeFunc {
	return func(sentence string) []string {
		var tokens []string
		var current strings.Builder
		currentScript := scriptNone

		flush := func() {
			if current.Len() > 0 {
				tokens = append(tokens, strings.TrimRight(current.String(), "・"))
				current.Reset()
			}
			currentScript = scriptNone
		}

		for i := 0; i < len(sentence); {
			r, size := utf8.DecodeRuneInString(sentence[i:])
			i += size
			s := scriptOf(r)

			if (r == '/' || r == '／') && currentScript != scriptNone {
				next, _ := utf8.DecodeRuneInString(sentence[i:])
				if scriptOf(next) == currentScript {
					current.WriteRune(r)
					continue
				}
			}

			// the middle dot joins katakana words (ドナルド・トランプ)
			if r == '・' && currentScript == scriptKatakana {
				current.WriteRune(r)
				continue
			}

			if s != currentScript {
				flush()
			}
			if s == scriptNone {
				continue
			}
			current.WriteRune(r)
			currentScript = s
		}
		flush()

		return tokens
	}
}

func scriptOf(r rune) script {
	switch {
	case unicode.Is(unicode.Han, r) || r == '々' || r == '〆' || r == 'ヶ':
		return scriptHan
	case unicode.Is(unicode.Katakana, r) || r == 'ー':
		return scriptKatakana
	case unicode.Is(unicode.Hiragana, r):
		return scriptHiragana
	case unicode.IsLetter(r) || unicode.IsDigit(r):
		return scriptLatin
	}
	return scriptNone
}

func isScript(token string, want script) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if scriptOf(r) != want {
			return false
		}
	}
	return true
}
