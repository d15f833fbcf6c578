package locale

import (
	"sort"
	"unicode/utf8"
)

const (
	AM = "am"
	PM = "pm"
)

// Marker maps a written period-of-day marker to its meridiem.
type Marker struct {
	Text     string
	Meridiem string
}

// Locale holds the data tables needed to read times written in one script.
// Adding a locale means adding a table here; the parsing code does not change.
type Locale struct {
	Code       string
	Name       string
	Digits     map[rune]rune
	Markers    []Marker
	Separators map[rune]rune
	Fillers    []string
	Diacritics []rune
}

var (
	Latin = Locale{
		Code: "en",
		Name: "Latin",
		Markers: []Marker{
			{Text: "a.m.", Meridiem: AM},
			{Text: "p.m.", Meridiem: PM},
			{Text: "a.m", Meridiem: AM},
			{Text: "p.m", Meridiem: PM},
		},
		Separators: map[rune]rune{
			'.': ':',
			'h': ':',
		},
		Fillers: []string{"o'clock", "at "},
	}

	Arabic = Locale{
		Code: "ar",
		Name: "Arabic",
		Digits: map[rune]rune{
			// Arabic-Indic
			'٠': '0', '١': '1', '٢': '2', '٣': '3', '٤': '4',
			'٥': '5', '٦': '6', '٧': '7', '٨': '8', '٩': '9',
			// Extended Arabic-Indic
			'۰': '0', '۱': '1', '۲': '2', '۳': '3', '۴': '4',
			'۵': '5', '۶': '6', '۷': '7', '۸': '8', '۹': '9',
		},
		Markers: []Marker{
			{Text: "صباحا", Meridiem: AM},
			{Text: "الصباح", Meridiem: AM},
			{Text: "ص", Meridiem: AM},
			{Text: "مساء", Meridiem: PM},
			{Text: "المساء", Meridiem: PM},
			{Text: "ظهرا", Meridiem: PM},
			{Text: "الظهر", Meridiem: PM},
			{Text: "عصرا", Meridiem: PM},
			{Text: "م", Meridiem: PM},
		},
		Separators: map[rune]rune{
			'٫': ':',
			'،': ':',
		},
		Fillers: []string{"الساعة", "الساعه", "في "},
		// fathatan through sukun, plus tatweel
		Diacritics: []rune{'ً', 'ٌ', 'ٍ', 'َ', 'ُ', 'ِ', 'ّ', 'ْ', 'ـ'},
	}

	Supported = []Locale{Latin, Arabic}
)

// MarkersByLength returns the markers longest first so that a marker is never
// consumed by a shorter marker it contains.
func (l Locale) MarkersByLength() []Marker {
	out := make([]Marker, len(l.Markers))
	copy(out, l.Markers)
	sort.SliceStable(out, func(i, j int) bool {
		return utf8.RuneCountInString(out[i].Text) > utf8.RuneCountInString(out[j].Text)
	})
	return out
}
