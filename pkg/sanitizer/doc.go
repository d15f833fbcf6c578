// Package sanitizer normalizes raw appointment input before validation.
//
// Every normalizer is built as a Pipeline of small string strategies, so the
// same steps compose differently for names, phones, and clock times.
//
// Normalization includes:
//   - Times: Latin or Arabic-Indic digits, Arabic or Latin meridiem markers, to canonical "HH:MM"
//   - Phone numbers: E.164 using the configured regions, digits-only when unparseable
//   - Strings: Collapse whitespace, trim leading/trailing spaces
//   - Slices: Remove duplicates and empty values after normalization
//
// String normalizers never fail. NormalizeTime is the one function that
// reports an error, because an unreadable time cannot be scheduled.
package sanitizer
