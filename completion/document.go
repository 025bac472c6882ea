package completion

import (
	"strings"

	"github.com/tarot-shogun/taikou5dxls/internal/util"
)

// Position is a zero-based line and UTF-16 character offset, as in LSP.
type Position struct {
	Line      uint32
	Character uint32
}

// Document is a snapshot of an open document.
type Document struct {
	URI        string
	LanguageID string
	Version    int32
	Text       string
}

// Line returns the content of line n without its line terminator. It returns
// false if the document has fewer lines.
func (d *Document) Line(n uint32) (string, bool) {
	text := d.Text
	for range n {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			return "", false
		}
		text = text[i+1:]
	}
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSuffix(text, "\r"), true
}

// LinePrefix returns the text of the cursor line before pos.
func (d *Document) LinePrefix(pos Position) string {
	line, ok := d.Line(pos.Line)
	if !ok {
		return ""
	}
	return line[:util.UTF16OffsetToUTF8(line, int(pos.Character))]
}
