package loader

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mozillazg/go-pinyin"
)

// chineseShare is the fraction of non-space characters that must be CJK
// ideographs before a value is transliterated.
const chineseShare = 0.7

var pinyinArgs = pinyin.NewArgs()

func isHan(r rune) bool {
	return r >= 0x4e00 && r <= 0x9fff
}

// IsMostlyChinese reports whether more than 70% of the non-space characters
// of s are CJK unified ideographs.
func IsMostlyChinese(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	han := 0
	for _, r := range s {
		if isHan(r) {
			han++
		}
	}
	total := utf8.RuneCountInString(strings.ReplaceAll(s, " ", ""))
	return float64(han)/float64(max(1, total)) > chineseShare
}

// Transliterate renders s as space-separated capitalized pinyin syllables.
// Runs of other characters are kept as words of their own.
func Transliterate(s string) string {
	var (
		words []string
		han   []rune
		other []rune
	)
	flushHan := func() {
		if len(han) == 0 {
			return
		}
		for _, syllable := range pinyin.LazyPinyin(string(han), pinyinArgs) {
			words = append(words, capitalize(syllable))
		}
		han = han[:0]
	}
	flushOther := func() {
		if len(other) == 0 {
			return
		}
		words = append(words, string(other))
		other = other[:0]
	}

	for _, r := range s {
		switch {
		case isHan(r):
			flushOther()
			han = append(han, r)
		case unicode.IsSpace(r):
			flushHan()
			flushOther()
		default:
			flushHan()
			other = append(other, r)
		}
	}
	flushHan()
	flushOther()
	return strings.Join(words, " ")
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
