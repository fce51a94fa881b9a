package valence

// The scoring lexicon is a heuristic word list, not a trained model.
// Words are grouped into weight bands; negative bands carry a negative
// weight but contribute their magnitude to the normalization denominator.
type band struct {
	words  []string
	weight float64
}

var positiveBands = []band{
	{words: []string{"希望", "安堵", "友情", "微笑", "暖かい", "平和", "穏やか"}, weight: 0.3},
	{words: []string{"勝利", "再会", "発見", "成功", "達成", "幸福", "満足", "喜び"}, weight: 0.6},
	{words: []string{"歓喜", "奇跡", "救済", "愛の成就", "至福", "恍惚", "栄光", "解放"}, weight: 1.0},
}

var negativeBands = []band{
	{words: []string{"不安", "疑念", "孤独", "寂しさ", "曇り", "不快", "困惑"}, weight: -0.3},
	{words: []string{"敗北", "裏切り", "喪失", "悲しみ", "怒り", "失望", "恐怖"}, weight: -0.6},
	{words: []string{"絶望", "死", "破滅", "全てを失う", "地獄", "阿鼻叫喚", "破綻", "滅亡"}, weight: -1.0},
}

// Context modifiers change the strength of an already-scored sentence.
var (
	intensifiers = []string{"非常に", "とても", "極めて", "完全に", "絶対に", "まったく"}
	diminishers  = []string{"少し", "やや", "若干", "わずかに", "ほんの", "軽く"}
	negators     = []string{"ない", "ぬ", "ず", "まい", "決して", "全く"}
)

const diminisherMultiplier = 0.5
