package lexicon

import (
	"testing"

	"github.com/siherrmann/timegrapher/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	t.Run("Embedded tables load", func(t *testing.T) {
		l := Default()
		require.NotNil(t, l, "Expected default lexicon to load")
		assert.NotEmpty(t, l.Markers(), "Expected markers to be defined")
		assert.NotEmpty(t, l.Gazetteer(), "Expected gazetteer to be defined")
	})

	t.Run("Default is shared", func(t *testing.T) {
		assert.Same(t, Default(), Default(), "Expected the same parsed lexicon on every call")
	})
}

func TestLoad(t *testing.T) {
	t.Run("Invalid YAML fails", func(t *testing.T) {
		l, err := Load([]byte("categories: [\n"))
		assert.Error(t, err)
		assert.Nil(t, l)
	})

	t.Run("Unknown marker type fails", func(t *testing.T) {
		data := []byte(`
categories:
  - {name: sports, keywords: [優勝]}
markers:
  - {phrase: だから, type: because, score: 0.9}
`)
		_, err := Load(data)
		assert.ErrorContains(t, err, "unknown relation type")
	})

	t.Run("Reserved category name fails", func(t *testing.T) {
		_, err := Load([]byte(`categories: [{name: general, keywords: [a]}]`))
		assert.Error(t, err)
	})

	t.Run("Minimal tables load", func(t *testing.T) {
		data := []byte(`
categories:
  - {name: sports, keywords: [優勝, W杯]}
markers:
  - {phrase: その結果, type: causal, score: 0.95}
affinity:
  - {a: sports, b: culture, score: 0.4}
`)
		l, err := Load(data)
		require.NoError(t, err)
		assert.Equal(t, model.Category("sports"), l.Categorize("w杯で優勝"), "Expected keywords to be matched lowercased")
		score, ok := l.Affinity("culture", "sports")
		assert.True(t, ok)
		assert.Equal(t, 0.4, score, "Expected affinity to be symmetric")
	})
}

func TestCategorize(t *testing.T) {
	l := Default()

	cases := []struct {
		sentence string
		expected model.Category
	}{
		{"2021年2月13日、福島県沖で震度6強の地震が発生し、住民が避難した。", "disaster"},
		{"侍ジャパンがw杯で優勝し、日本中が歓喜に沸いた。", "sports"},
		{"東京都で佐藤花子氏が新しい教育プログラムを発表し、文部科学省も支援を表明した。", "education"},
		{"株価が急落した。", "economy"},
		{"晴れた。", model.CategoryGeneral},
	}

	for _, c := range cases {
		t.Run("Categorize "+string(c.expected), func(t *testing.T) {
			assert.Equal(t, c.expected, l.Categorize(c.sentence))
		})
	}
}

func TestPersonName(t *testing.T) {
	l := Default()

	t.Run("Honorific is stripped", func(t *testing.T) {
		name, ok := l.PersonName("田中太郎氏")
		assert.True(t, ok)
		assert.Equal(t, "田中太郎", name)
	})

	t.Run("Role is kept", func(t *testing.T) {
		name, ok := l.PersonName("岸田首相")
		assert.True(t, ok)
		assert.Equal(t, "岸田首相", name)
	})

	t.Run("Bare suffix is not a person", func(t *testing.T) {
		_, ok := l.PersonName("氏")
		assert.False(t, ok)
	})

	t.Run("Hiragana honorific token", func(t *testing.T) {
		assert.True(t, l.IsHonorific("さん"))
		assert.False(t, l.IsHonorific("された"))
	})
}

func TestLocationLookups(t *testing.T) {
	l := Default()

	t.Run("Administrative suffix", func(t *testing.T) {
		assert.True(t, l.HasLocationSuffix("福島県"))
		assert.True(t, l.HasLocationSuffix("羽田空港"))
		assert.False(t, l.HasLocationSuffix("県"), "Expected a bare suffix to be rejected")
		assert.True(t, l.HasLocationSuffix("北見道"))
		assert.True(t, l.IsSuffixWord("鉄道"))
		assert.True(t, l.IsSuffixWord("高速鉄道"))
		assert.False(t, l.IsSuffixWord("東海道"))
	})

	t.Run("Longest suffix at position", func(t *testing.T) {
		runes := []rune("羽田空港")
		assert.Equal(t, 2, l.LocationSuffixAt(runes, 2))
		assert.Equal(t, 0, l.LocationSuffixAt(runes, 0))
	})

	t.Run("Suffix blockers", func(t *testing.T) {
		assert.True(t, l.BlocksSuffix('場'))
		assert.False(t, l.BlocksSuffix('で'))
	})

	t.Run("Gazetteer is longest first", func(t *testing.T) {
		gazetteer := l.Gazetteer()
		require.NotEmpty(t, gazetteer)
		assert.GreaterOrEqual(t, len([]rune(gazetteer[0])), len([]rune(gazetteer[len(gazetteer)-1])))
	})
}

func TestTrimConjunctions(t *testing.T) {
	l := Default()

	assert.Equal(t, "売上が急増した。", l.TrimConjunctions("その結果、売上が急増した。"))
	assert.Equal(t, "増産体制", l.TrimConjunctions("さらに、また増産体制"))
	assert.Equal(t, "東京で", l.TrimConjunctions("東京で"))
}

func TestMiscLookups(t *testing.T) {
	l := Default()

	t.Run("Linking phrases", func(t *testing.T) {
		assert.True(t, l.IsLinking("同日、記者会見が行われた。"))
		assert.False(t, l.IsLinking("記者会見が行われた。"))
	})

	t.Run("Noise keywords", func(t *testing.T) {
		assert.True(t, l.IsNoise("（要出典）"))
		assert.True(t, l.IsNoise("(Citation needed)"))
		assert.False(t, l.IsNoise("（渋谷区）"))
	})

	t.Run("Common noun shape", func(t *testing.T) {
		assert.True(t, l.LooksLikeCommonNoun("説明文"))
		assert.True(t, l.LooksLikeCommonNoun("新店舗"))
		assert.False(t, l.LooksLikeCommonNoun("田中太郎"))
	})

	t.Run("Keyword hits count occurrences", func(t *testing.T) {
		assert.Equal(t, 2, l.KeywordHits("地震と津波"))
		assert.Equal(t, 0, l.KeywordHits("晴れた"))
	})
}
