package server

import (
	"errors"
	"fmt"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/tarot-shogun/taikou5dxls/completion"
	"github.com/tarot-shogun/taikou5dxls/internal/util"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// preselectThreshold is the minimum Jaro-Winkler similarity between the typed
// word and a label for the label to be preselected.
const preselectThreshold = 0.7

// See https://microsoft.github.io/language-server-protocol/specifications/specification-3-16#textDocument_completion
func (s *Server) textDocumentCompletion(c *glsp.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error) {
	uri := params.TextDocument.URI
	info, ok := s.workspace.DocumentInfo(uri)
	if !ok {
		return nil, errors.New(s.translate(fmt.Sprintf("document %s is not open", uri)))
	}
	doc, err := s.workspace.Document(uri)
	if err != nil {
		return nil, err
	}

	cc := completion.Context{
		TriggerKind: completion.TriggerInvoked,
		Language:    s.currentLanguage(),
	}
	if params.Context != nil {
		cc.TriggerKind = completion.TriggerKind(params.Context.TriggerKind)
		cc.TriggerCharacter = util.FromPtr(params.Context.TriggerCharacter)
	}
	var triggerCharacter string
	if cc.TriggerKind == completion.TriggerCharacter {
		triggerCharacter = cc.TriggerCharacter
	}

	pos := completion.Position{
		Line:      params.Position.Line,
		Character: params.Position.Character,
	}
	ctx := s.requestContext()

	var items []completion.Item
	for _, reg := range s.registry.CompletionProviders(info, triggerCharacter) {
		if ctx.Err() != nil {
			break
		}
		provided, err := reg.Provider.ProvideCompletionItems(ctx, doc, pos, cc)
		if err != nil {
			message := fmt.Sprintf("completion provider %T failed: %v", reg.Provider, err)
			log.Warning(message)
			s.logMessage(c, protocol.MessageTypeWarning, message)
			continue
		}
		items = append(items, provided...)
	}

	list := &protocol.CompletionList{
		Items: make([]protocol.CompletionItem, 0, len(items)),
	}
	for _, item := range items {
		list.Items = append(list.Items, toCompletionItem(item))
	}
	if s.opts.Preselect {
		preselect(list.Items, wordBefore(doc.LinePrefix(pos)))
	}
	return list, nil
}

// toCompletionItem converts a provider item to its protocol form.
func toCompletionItem(item completion.Item) protocol.CompletionItem {
	kind := protocol.CompletionItemKind(item.Kind)
	result := protocol.CompletionItem{
		Label: item.Label,
		Kind:  &kind,
	}
	if item.Detail != "" {
		result.Detail = util.ToPtr(item.Detail)
	}
	if item.Documentation != "" {
		result.Documentation = protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: item.Documentation,
		}
	}
	if item.InsertText != "" {
		result.InsertText = util.ToPtr(item.InsertText)
	}
	format := protocol.InsertTextFormatPlainText
	if item.Snippet {
		format = protocol.InsertTextFormatSnippet
	}
	result.InsertTextFormat = &format
	if item.SortText != "" {
		result.SortText = util.ToPtr(item.SortText)
	}
	if item.FilterText != "" {
		result.FilterText = util.ToPtr(item.FilterText)
	}
	return result
}

// preselect marks the first item whose label is most similar to word. Nothing
// is marked when word is empty or no label reaches preselectThreshold.
func preselect(items []protocol.CompletionItem, word string) {
	if word == "" {
		return
	}
	metric := metrics.NewJaroWinkler()
	metric.CaseSensitive = false

	best, bestScore := -1, preselectThreshold
	for i, item := range items {
		score := strutil.Similarity(word, item.Label, metric)
		if score > bestScore || (best < 0 && score == bestScore) {
			best, bestScore = i, score
		}
	}
	if best >= 0 {
		items[best].Preselect = util.ToPtr(true)
	}
}
