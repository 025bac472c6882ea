package server

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tarot-shogun/taikou5dxls/internal/util"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// positionOffset converts an LSP position (line, character) to a byte offset
// in content. Lines past the end map to len(content), and characters past the
// end of a line map to the end of that line.
func positionOffset(content []byte, position protocol.Position) int {
	lineOffset := 0
	for range position.Line {
		i := bytes.IndexByte(content[lineOffset:], '\n')
		if i < 0 {
			return len(content)
		}
		lineOffset += i + 1
	}

	lineContent := content[lineOffset:]
	if i := bytes.IndexByte(lineContent, '\n'); i >= 0 {
		lineContent = lineContent[:i]
	}
	return lineOffset + util.UTF16OffsetToUTF8(string(lineContent), int(position.Character))
}

// wordBefore returns the trailing run of letters, digits and underscores of
// prefix.
func wordBefore(prefix string) string {
	i := strings.LastIndexFunc(prefix, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	if i < 0 {
		return prefix
	}
	_, size := utf8.DecodeRuneInString(prefix[i:])
	return prefix[i+size:]
}
