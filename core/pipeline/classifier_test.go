package pipeline

import (
	"testing"

	"github.com/siherrmann/timegrapher/model"
	"github.com/stretchr/testify/assert"
)

func classify(sentence string) Classification {
	return NewClassifier(nil).Classify(sentence, ScriptTokenizer()(sentence))
}

func TestClassifyPeople(t *testing.T) {
	t.Run("Honorific suffix is stripped", func(t *testing.T) {
		cls := classify("田中太郎氏が東京都を訪問した。")

		assert.Contains(t, cls.People, "田中太郎")
		assert.True(t, cls.ExplicitPeople["田中太郎"])
		assert.Equal(t, []string{"東京都"}, cls.Locations)
	})

	t.Run("Role suffix is kept", func(t *testing.T) {
		cls := classify("佐藤首相が会見した。")

		assert.Contains(t, cls.People, "佐藤首相")
	})

	t.Run("Separate honorific token", func(t *testing.T) {
		cls := classify("山田さん、大阪に来た。")

		assert.Contains(t, cls.People, "山田")
		assert.True(t, cls.ExplicitPeople["山田"])
		assert.Equal(t, []string{"大阪"}, cls.Locations)
	})

	t.Run("Katakana name", func(t *testing.T) {
		cls := classify("トランプ大統領が来日した。")

		assert.Contains(t, cls.People, "トランプ")
		assert.False(t, cls.ExplicitPeople["トランプ"])
	})

	t.Run("Slash compound", func(t *testing.T) {
		cls := classify("山田/佐藤の両名が出席した。")

		assert.Contains(t, cls.People, "山田")
		assert.Contains(t, cls.People, "佐藤")
	})

	t.Run("Common nouns are not people", func(t *testing.T) {
		cls := classify("国際会議が開催され、新製品が発表された。")

		assert.NotContains(t, cls.People, "国際会議")
		assert.NotContains(t, cls.People, "開催")
		assert.NotContains(t, cls.People, "新製品")
		assert.NotContains(t, cls.People, "発表")
	})

	t.Run("Katakana stopwords and keywords are not people", func(t *testing.T) {
		cls := classify("オリンピックでロボットが話題になった。")

		assert.NotContains(t, cls.People, "オリンピック")
		assert.NotContains(t, cls.People, "ロボット")
	})

	t.Run("Kanji numerals are not people", func(t *testing.T) {
		cls := classify("参加者は二千。")

		assert.NotContains(t, cls.People, "二千")
	})
}

func TestClassifyLocations(t *testing.T) {
	t.Run("Gazetteer match", func(t *testing.T) {
		cls := classify("2020年5月1日、東京で国際会議が開催された。")

		assert.Equal(t, []string{"東京"}, cls.Locations)
		assert.Empty(t, cls.People, "Expected 東京 to be dropped from people")
	})

	t.Run("Suffix extends a compound", func(t *testing.T) {
		cls := classify("京都市で祭りが開かれた。")

		assert.Equal(t, []string{"京都市"}, cls.Locations)
	})

	t.Run("Blocked suffix", func(t *testing.T) {
		cls := classify("横浜市場が賑わった。")

		assert.Equal(t, []string{"横浜"}, cls.Locations)
	})

	t.Run("Administrative suffix 道", func(t *testing.T) {
		cls := classify("2020年5月1日、北見道で大雪が降った。")

		assert.Equal(t, []string{"北見道"}, cls.Locations)
		assert.Empty(t, cls.People)
	})

	t.Run("Words ending in 道 are not places", func(t *testing.T) {
		for _, sentence := range []string{"鉄道が開通した。", "報道された。", "国道で柔道の大会があった。"} {
			cls := classify(sentence)
			assert.Empty(t, cls.Locations, sentence)
			assert.Empty(t, cls.People, sentence)
		}
	})

	t.Run("Several places in sentence order", func(t *testing.T) {
		cls := classify("大阪府から成田空港を経由してパリへ向かった。")

		assert.Equal(t, []string{"大阪府", "成田空港", "パリ"}, cls.Locations)
	})

	t.Run("Explicit person wins over gazetteer", func(t *testing.T) {
		cls := classify("福岡さん、記者会見に出席。")

		assert.Contains(t, cls.People, "福岡")
		assert.NotContains(t, cls.Locations, "福岡")
	})

	t.Run("Stopwords are not locations", func(t *testing.T) {
		cls := classify("大都市で人口が増えた。")

		assert.Empty(t, cls.Locations)
	})
}

func TestClassifyCategory(t *testing.T) {
	cases := []struct {
		sentence string
		expected model.Category
		hits     int
	}{
		{"東北地方で大地震が発生し、津波が押し寄せた。", "disaster", 2},
		{"日本代表がワールドカップで優勝した。", "sports", 3},
		{"京都市で祭りが開かれた。", "culture", 1},
		{"今日は晴れだった。", model.CategoryGeneral, 0},
	}

	for _, c := range cases {
		t.Run("Category "+string(c.expected), func(t *testing.T) {
			cls := classify(c.sentence)

			assert.Equal(t, c.expected, cls.Category)
			assert.Equal(t, c.hits, cls.KeywordHits)
		})
	}
}

func TestClassifyDisjoint(t *testing.T) {
	sentences := []string{
		"福岡さん、福岡で講演した。",
		"田中氏と京都市長が京都を訪れた。",
		"アメリカのワシントンで首脳会談が行われた。",
	}

	for _, sentence := range sentences {
		cls := classify(sentence)
		for _, p := range cls.People {
			assert.NotContains(t, cls.Locations, p, sentence)
		}
	}
}
