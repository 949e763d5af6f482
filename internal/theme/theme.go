// Package theme is the built-in source of round prompts.
package theme

import "math/rand/v2"

// Themes are scaled from 1 (least) to 100 (most); the hint in parentheses
// is stripped by the client when displayed as a title.
var Themes = []string{
	"人気の食べ物（1:不人気 100:大人気）",
	"強そうな動物（1:弱い 100:強い）",
	"大きいもの（1:小さい 100:大きい）",
	"怖いもの（1:怖くない 100:とても怖い）",
	"嬉しいプレゼント（1:いらない 100:最高）",
	"重いもの（1:軽い 100:重い）",
	"高いもの（1:安い 100:高価）",
	"行きたい旅行先（1:行きたくない 100:絶対行きたい）",
	"便利な道具（1:不便 100:超便利）",
	"かっこいい職業（1:地味 100:憧れ）",
	"モテる趣味（1:モテない 100:モテる）",
	"辛い食べ物（1:甘い 100:激辛）",
	"朝ごはんに食べたいもの（1:食べたくない 100:毎日食べたい）",
	"子供に人気のもの（1:不人気 100:大人気）",
	"無人島に持っていきたいもの（1:不要 100:必需品）",
	"長生きしそうな生き物（1:短命 100:長寿）",
	"速い乗り物（1:遅い 100:速い）",
	"うるさいもの（1:静か 100:うるさい）",
	"言われて嬉しい言葉（1:嬉しくない 100:最高に嬉しい）",
	"ゾンビと戦うときの武器（1:役に立たない 100:最強）",
	"冬に欲しいもの（1:いらない 100:欲しい）",
	"映画のジャンルの人気（1:不人気 100:大人気）",
	"学校の科目の好き嫌い（1:嫌い 100:好き）",
	"コンビニで買いたいもの（1:買わない 100:必ず買う）",
	"ドキドキするシチュエーション（1:平常心 100:心臓バクバク）",
}

// Source picks prompts from a fixed list.
type Source struct {
	themes []string
	rand   *rand.Rand
}

// NewSource returns a Source over the given list, or Themes when list is empty.
func NewSource(list []string, r *rand.Rand) *Source {
	if len(list) == 0 {
		list = Themes
	}
	return &Source{themes: list, rand: r}
}

func (s *Source) PickRandom() string {
	if s.rand != nil {
		return s.themes[s.rand.IntN(len(s.themes))]
	}
	return s.themes[rand.IntN(len(s.themes))]
}

func (s *Source) Len() int { return len(s.themes) }
