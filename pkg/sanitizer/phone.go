package sanitizer

import (
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"

	"dentabook/pkg/locale"
)

var DefaultPhoneRegions = []string{"JO"}

// PhoneNormalizer returns a strategy that formats a phone number as E.164,
// trying each region in order for numbers written without a country code.
// Numbers no region can parse are reduced to their digits so they still work
// as a stable identity.
func PhoneNormalizer(regions []string) Strategy {
	if len(regions) == 0 {
		regions = DefaultPhoneRegions
	}
	pre := Pipeline{
		strings.TrimSpace,
		mapRunes(locale.Arabic.Digits),
	}
	return func(phone string) string {
		phone = pre.Apply(phone)
		if phone == "" {
			return ""
		}

		for _, region := range regions {
			parsedNumber, err := phonenumbers.Parse(phone, region)
			if err == nil {
				return phonenumbers.Format(parsedNumber, phonenumbers.E164)
			}
		}
		return digitsOnly(phone)
	}
}

func NormalizePhone(phone string) string {
	return PhoneNormalizer(DefaultPhoneRegions)(phone)
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			return r
		}
		return -1
	}, s)
}
