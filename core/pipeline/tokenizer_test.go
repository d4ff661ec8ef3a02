package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScriptTokenizer(t *testing.T) {
	tokenize := ScriptTokenizer()

	cases := []struct {
		name     string
		sentence string
		expected []string
	}{
		{"Script runs", "田中太郎氏が東京都を訪問した。", []string{"田中太郎氏", "が", "東京都", "を", "訪問", "した"}},
		{"Digits and Latin", "2020年にAIが", []string{"2020", "年", "に", "AI", "が"}},
		{"Katakana middle dot", "ドナルド・トランプ大統領", []string{"ドナルド・トランプ", "大統領"}},
		{"Trailing middle dot", "アメリカ・", []string{"アメリカ"}},
		{"Slash compound", "山田/佐藤の両氏", []string{"山田/佐藤", "の", "両氏"}},
		{"Slash between scripts splits", "山田/さとう", []string{"山田", "さとう"}},
		{"Iteration marks", "霞ヶ関と佐々木", []string{"霞ヶ関", "と", "佐々木"}},
		{"Empty", "", nil},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.expected, tokenize(c.sentence))
		})
	}
}
