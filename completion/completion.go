// Package completion defines the completion provider capability and the six
// providers of the taikou5dx language.
//
// Providers are stateless: each call is a pure function of the document, the
// cursor position and the completion data catalog. A provider stops early and
// returns what it has collected so far, with a nil error, once its context is
// cancelled.
package completion

import (
	"context"

	"github.com/tarot-shogun/taikou5dxls/i18n"
)

// Provider produces completion candidates for a cursor position.
type Provider interface {
	ProvideCompletionItems(ctx context.Context, doc *Document, pos Position, cc Context) ([]Item, error)
}

// TriggerKind tells how completion was triggered. Values match LSP.
type TriggerKind int

const (
	// TriggerInvoked is typing an identifier or an explicit request.
	TriggerInvoked TriggerKind = 1

	// TriggerCharacter is typing one of the provider's trigger characters.
	TriggerCharacter TriggerKind = 2

	// TriggerForIncompleteCompletions is a re-trigger of an incomplete list.
	TriggerForIncompleteCompletions TriggerKind = 3
)

// Context describes the completion request.
type Context struct {
	TriggerKind      TriggerKind
	TriggerCharacter string

	// Language selects the language of details and documentation.
	Language i18n.Language
}

// ItemKind is the category tag of an item. Values match LSP.
type ItemKind int

const (
	KindText       ItemKind = 1
	KindFunction   ItemKind = 3
	KindUnit       ItemKind = 11
	KindKeyword    ItemKind = 14
	KindSnippet    ItemKind = 15
	KindEnumMember ItemKind = 20
	KindOperator   ItemKind = 24
)

// Item is a completion candidate.
type Item struct {
	Label         string
	Kind          ItemKind
	Detail        string
	Documentation string

	// InsertText defaults to Label when empty.
	InsertText string

	// Snippet reports whether InsertText uses snippet syntax.
	Snippet bool

	SortText   string
	FilterText string
}
