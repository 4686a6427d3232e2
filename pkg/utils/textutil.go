package utils

import (
	"strings"
	"unicode"
)

// Tokenize 把文本切分为小写词元
// 把 + # . 当作词内字符，保证 c++ / c# / node.js 这类技术词不被拆散；
// 词元两端的裸点号会被修剪，句末的 "go." 仍归一化为 "go"。
func Tokenize(text string) []string {
	isWordChar := func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.'
	}

	var tokens []string
	var sb strings.Builder
	flush := func() {
		if sb.Len() == 0 {
			return
		}
		tok := strings.Trim(sb.String(), ".")
		sb.Reset()
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}

	for _, r := range strings.ToLower(text) {
		if isWordChar(r) {
			sb.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// TokenSet 返回词元去重后的集合
func TokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range Tokenize(text) {
		set[tok] = true
	}
	return set
}
