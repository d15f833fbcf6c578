package sanitizer

import (
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

func trimAndLower(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return s
}

func upper(s string) string {
	return strings.ToUpper(s)
}

func mapRunes(table map[rune]rune) Strategy {
	return func(s string) string {
		if len(table) == 0 {
			return s
		}
		return strings.Map(func(r rune) rune {
			if to, ok := table[r]; ok {
				return to
			}
			return r
		}, s)
	}
}

func dropRunes(runes []rune) Strategy {
	drop := make(map[rune]struct{}, len(runes))
	for _, r := range runes {
		drop[r] = struct{}{}
	}
	return func(s string) string {
		if len(drop) == 0 {
			return s
		}
		return strings.Map(func(r rune) rune {
			if _, ok := drop[r]; ok {
				return -1
			}
			return r
		}, s)
	}
}

func removeWords(words []string) Strategy {
	return func(s string) string {
		for _, w := range words {
			s = strings.ReplaceAll(s, w, " ")
		}
		return s
	}
}
