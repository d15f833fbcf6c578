package sanitizer

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"dentabook/pkg/locale"
)

var ErrInvalidTime = errors.New("invalid time format")

var reClock = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*(am|pm)?$`)

var timePipeline = NewTimePipeline(locale.Supported...)

// NewTimePipeline builds the text passes that reduce a raw time to
// "H[:MM] [am|pm]" using the digit, marker and separator tables of the given
// locales. Order matters: markers are rewritten before separators so the dots
// in "p.m." are not read as an hour separator.
func NewTimePipeline(locales ...locale.Locale) Pipeline {
	var (
		digits     = map[rune]rune{}
		separators = map[rune]rune{}
		markers    []locale.Marker
		fillers    []string
		diacritics []rune
	)
	for _, l := range locales {
		for k, v := range l.Digits {
			digits[k] = v
		}
		for k, v := range l.Separators {
			separators[k] = v
		}
		markers = append(markers, l.MarkersByLength()...)
		fillers = append(fillers, l.Fillers...)
		diacritics = append(diacritics, l.Diacritics...)
	}
	sort.SliceStable(markers, func(i, j int) bool {
		return utf8.RuneCountInString(markers[i].Text) > utf8.RuneCountInString(markers[j].Text)
	})

	return Pipeline{
		trimAndLower,
		dropRunes(diacritics),
		mapRunes(digits),
		removeWords(fillers),
		replaceMarkers(markers),
		mapRunes(separators),
		TrimAndNormalize,
	}
}

func replaceMarkers(markers []locale.Marker) Strategy {
	return func(s string) string {
		for _, m := range markers {
			s = strings.ReplaceAll(s, m.Text, " "+m.Meridiem+" ")
		}
		return s
	}
}

// NormalizeTime converts a human-written clock time to canonical 24-hour
// "HH:MM". "14:00", "2pm", "2:00 PM" and "٢ مساءً" all yield "14:00".
func NormalizeTime(raw string) (string, error) {
	s := timePipeline.Apply(raw)

	m := reClock.FindStringSubmatch(s)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, raw)
	}

	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	if minute > 59 {
		return "", fmt.Errorf("%w: minute out of range in %q", ErrInvalidTime, raw)
	}

	switch m[3] {
	case locale.AM, locale.PM:
		if hour < 1 || hour > 12 {
			return "", fmt.Errorf("%w: hour out of range for 12-hour clock in %q", ErrInvalidTime, raw)
		}
		if hour == 12 {
			hour = 0
		}
		if m[3] == locale.PM {
			hour += 12
		}
	default:
		if hour > 23 {
			return "", fmt.Errorf("%w: hour out of range in %q", ErrInvalidTime, raw)
		}
	}

	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}
