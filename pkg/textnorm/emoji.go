package textnorm

import (
	"unicode"

	"github.com/rivo/uniseg"
)

// Emojis returns the emoji in text in order of appearance, one entry per
// grapheme cluster. Skin-tone modifiers, ZWJ sequences and flags stay intact.
func Emojis(text string) []string {
	out := make([]string, 0)
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		if isEmojiCluster(gr.Runes()) {
			out = append(out, gr.Str())
		}
	}
	return out
}

func isEmojiCluster(runes []rune) bool {
	if len(runes) == 0 {
		return false
	}
	if isPictographic(runes[0]) {
		return true
	}
	// Text-default symbols (digits, ©, ♥) count only with an emoji
	// presentation selector or a keycap.
	for _, r := range runes[1:] {
		if r == 0xFE0F || r == 0x20E3 {
			return true
		}
	}
	return false
}

func isPictographic(r rune) bool {
	return unicode.Is(pictographs, r)
}

// pictographs are the code points that start an emoji on their own. The
// supplementary blocks only list their emoji; the enclosed alphanumerics,
// playing cards and chess symbols around them are plain text. Gender signs
// are left out because they only appear inside sequences.
var pictographs = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x231a, Hi: 0x23ff, Stride: 1},
		{Lo: 0x2600, Hi: 0x263f, Stride: 1},
		{Lo: 0x2643, Hi: 0x27bf, Stride: 1},
		{Lo: 0x2b1b, Hi: 0x2b1c, Stride: 1},
		{Lo: 0x2b50, Hi: 0x2b55, Stride: 5},
		{Lo: 0x3030, Hi: 0x303d, Stride: 13},
		{Lo: 0x3297, Hi: 0x3299, Stride: 2},
	},
	R32: []unicode.Range32{
		{Lo: 0x1f004, Hi: 0x1f004, Stride: 1},
		{Lo: 0x1f0cf, Hi: 0x1f0cf, Stride: 1},
		{Lo: 0x1f170, Hi: 0x1f171, Stride: 1},
		{Lo: 0x1f17e, Hi: 0x1f17f, Stride: 1},
		{Lo: 0x1f18e, Hi: 0x1f18e, Stride: 1},
		{Lo: 0x1f191, Hi: 0x1f19a, Stride: 1},
		{Lo: 0x1f1e6, Hi: 0x1f1ff, Stride: 1}, // regional indicators
		{Lo: 0x1f201, Hi: 0x1f202, Stride: 1},
		{Lo: 0x1f21a, Hi: 0x1f21a, Stride: 1},
		{Lo: 0x1f22f, Hi: 0x1f22f, Stride: 1},
		{Lo: 0x1f232, Hi: 0x1f23a, Stride: 1},
		{Lo: 0x1f250, Hi: 0x1f251, Stride: 1},
		{Lo: 0x1f300, Hi: 0x1f64f, Stride: 1},
		{Lo: 0x1f680, Hi: 0x1f6ff, Stride: 1},
		{Lo: 0x1f7e0, Hi: 0x1f7eb, Stride: 1},
		{Lo: 0x1f7f0, Hi: 0x1f7f0, Stride: 1},
		{Lo: 0x1f90c, Hi: 0x1f9ff, Stride: 1},
		{Lo: 0x1fa70, Hi: 0x1faff, Stride: 1},
	},
}
