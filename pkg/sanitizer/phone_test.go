package sanitizer

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "local jordanian mobile",
			input: "0791234567",
			want:  "+962791234567",
		},
		{
			name:  "international format with spaces",
			input: "+962 79 123 4567",
			want:  "+962791234567",
		},
		{
			name:  "with dashes",
			input: "079-123-4567",
			want:  "+962791234567",
		},
		{
			name:  "arabic-indic digits",
			input: "٠٧٩١٢٣٤٥٦٧",
			want:  "+962791234567",
		},
		{
			name:  "foreign number keeps its country code",
			input: "+1 (212) 555-1234",
			want:  "+12125551234",
		},
		{
			name:  "leading and trailing spaces",
			input: "  +962791234567  ",
			want:  "+962791234567",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhone(tt.input)
			if got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPhoneNormalizer_RegionOrder(t *testing.T) {
	normalize := PhoneNormalizer([]string{"IL", "JO"})

	got := normalize("0541234567")
	if got != "+972541234567" {
		t.Errorf("got %q, want +972541234567", got)
	}
}

func TestNormalizePhone_SameIdentity(t *testing.T) {
	variants := []string{"0791234567", "+962791234567", "+962 (79) 123-4567", "٠٧٩١٢٣٤٥٦٧"}

	want := NormalizePhone(variants[0])
	for _, v := range variants[1:] {
		if got := NormalizePhone(v); got != want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", v, got, want)
		}
	}
}
