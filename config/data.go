package config

// ConfigData stores predefined color themes and character sets.
type ConfigData struct {
	ColorThemes map[string]string // Theme name to hex color
	CharSets    map[string]string
}

// DefaultConfigData is the built-in catalog shown by -list.
var DefaultConfigData = ConfigData{
	ColorThemes: map[string]string{
		"green":  "#00ff00",
		"amber":  "#ffbf00",
		"red":    "#ff0000",
		"orange": "#ffa500",
		"blue":   "#0096ff",
		"purple": "#8000ff",
		"cyan":   "#00ffff",
		"pink":   "#ff1493",
		"white":  "#ffffff",
	},
	CharSets: map[string]string{
		"matrix":   "ｱｲｳｴｵｶｷｸｹｺｻｼｽｾｿﾀﾁﾂﾃﾄﾅﾆﾇﾈﾉﾊﾋﾌﾍﾎﾏﾐﾑﾒﾓﾔﾕﾖﾗﾘﾙﾚﾛﾜﾝ0123456789",
		"greek":    "αβγδεζηθικλμνξοπρστυφχψωΑΒΓΔΕΖΗΘΙΚΛΜΝΞΟΠΡΣΤΥΦΧΨΩ",
		"cyrillic": "абвгдежзийклмнопрстуфхцчшщъыьэюяАБВГДЕЖЗИЙКЛМНОПРСТУФХЦЧШЩЪЫЬЭЮЯ",
		"binary":   "01",
		"hex":      "0123456789ABCDEF",
		"symbols":  "!@#$%^&*()_+-=[]{}|;':\",./<>?",
		"dna":      "ATCG",
		"arrows":   "←↑→↓↖↗↘↙",
		"math":     "∀∁∂∃∄∅∆∇∈∉∊∋∌∍∎∏∐∑−∓∔∕∖∗∘∙√∛∜∝∞∟∠∡∢∣∤∥∦∧∨∩∪",
		"braille":  "⠁⠂⠃⠄⠅⠆⠇⠈⠉⠊⠋⠌⠍⠎⠏⠐⠑⠒⠓⠔⠕⠖⠗⠘⠙⠚⠛⠜⠝⠞⠟",
		"ascii":    "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789",
		"minimal":  ".*+",
	},
}
