package host

import (
	"net/url"
	"path"

	"github.com/gobwas/glob"
)

// DocumentInfo identifies an open document as the host sees it.
type DocumentInfo struct {
	URI        string
	LanguageID string
}

// DocumentSelector decides which documents a provider applies to. Every
// non-empty field must match.
type DocumentSelector struct {
	// Language is a language identifier such as "taikou5dx".
	Language string

	// Scheme is a URI scheme such as "file" or "untitled".
	Scheme string

	// Pattern is a glob applied to the URI path, or to its base name when the
	// full path does not match. "*" and "?" stop at "/", "**" crosses it, and
	// "{a,b}" and "[...]" are supported.
	Pattern string
}

// IsEmpty reports whether the selector has no criteria at all.
func (s DocumentSelector) IsEmpty() bool {
	return s.Language == "" && s.Scheme == "" && s.Pattern == ""
}

// Match reports whether doc is selected.
func (s DocumentSelector) Match(doc DocumentInfo) bool {
	if s.IsEmpty() {
		return false
	}
	if s.Language != "" && s.Language != doc.LanguageID {
		return false
	}
	if s.Scheme == "" && s.Pattern == "" {
		return true
	}

	u, err := url.Parse(doc.URI)
	if err != nil {
		return false
	}
	if s.Scheme != "" && s.Scheme != u.Scheme {
		return false
	}
	if s.Pattern != "" {
		g, err := glob.Compile(s.Pattern, '/')
		if err != nil {
			return false
		}
		// The base name lets "*.t5dx" select files in any directory.
		if !g.Match(u.Path) && !g.Match(path.Base(u.Path)) {
			return false
		}
	}
	return true
}
