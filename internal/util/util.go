package util

import (
	"unicode/utf16"
	"unicode/utf8"
)

// ToPtr returns a pointer to the value.
func ToPtr[T any](v T) *T {
	return &v
}

// FromPtr returns the value from a pointer. It returns the zero value of type T
// if the pointer is nil.
func FromPtr[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// UTF16OffsetToUTF8 converts a UTF-16 offset to a UTF-8 offset in the given
// string. Offsets past the end are clamped to len(s).
func UTF16OffsetToUTF8(s string, utf16Offset int) int {
	if utf16Offset <= 0 {
		return 0
	}

	var utf16Units, utf8Bytes int
	for _, r := range s {
		if utf16Units >= utf16Offset {
			break
		}
		utf16Units += utf16.RuneLen(r)
		utf8Bytes += utf8.RuneLen(r)
	}
	return utf8Bytes
}
