package server

import (
	"bytes"
	"fmt"

	"github.com/tarot-shogun/taikou5dxls/internal/workspace"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// didOpen handles the textDocument/didOpen notification from the LSP client.
// It puts the document into the workspace.
func (s *Server) didOpen(params *protocol.DidOpenTextDocumentParams) error {
	s.workspace.PutFile(params.TextDocument.URI, &workspace.File{
		Content:    []byte(params.TextDocument.Text),
		LanguageID: params.TextDocument.LanguageID,
		Version:    params.TextDocument.Version,
	})
	return nil
}

// didChange handles the textDocument/didChange notification from the LSP
// client. It applies the content changes to the open document.
func (s *Server) didChange(params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	file, ok := s.workspace.File(uri)
	if !ok {
		return fmt.Errorf("document %s is not open", uri)
	}
	if params.TextDocument.Version <= file.Version {
		// Stale notification.
		return nil
	}

	content, err := changedText(file.Content, params.ContentChanges)
	if err != nil {
		return err
	}
	s.workspace.PutFile(uri, &workspace.File{
		Content:    content,
		LanguageID: file.LanguageID,
		Version:    params.TextDocument.Version,
	})
	return nil
}

// didSave handles the textDocument/didSave notification from the LSP client.
// If the notification includes the document text, the document is replaced.
// Save notifications carry no version, so the current one is kept.
func (s *Server) didSave(params *protocol.DidSaveTextDocumentParams) error {
	if params.Text == nil {
		return nil
	}
	uri := params.TextDocument.URI
	file, ok := s.workspace.File(uri)
	if !ok {
		return fmt.Errorf("document %s is not open", uri)
	}
	s.workspace.PutFile(uri, &workspace.File{
		Content:    []byte(*params.Text),
		LanguageID: file.LanguageID,
		Version:    file.Version,
	})
	return nil
}

// didClose handles the textDocument/didClose notification from the LSP
// client. Closing a document that is not open is not an error.
func (s *Server) didClose(params *protocol.DidCloseTextDocumentParams) error {
	_ = s.workspace.DeleteFile(params.TextDocument.URI)
	return nil
}

// changedText processes document content changes from the client.
// It supports two modes of operation:
//  1. Full replacement: a change without a range replaces the entire content.
//  2. Incremental updates: a ranged change replaces a portion of the content.
//
// Changes are applied in order.
func changedText(content []byte, changes []any) ([]byte, error) {
	if len(changes) == 0 {
		return nil, fmt.Errorf("no content changes provided")
	}

	for _, change := range changes {
		switch change := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			content = []byte(change.Text)
		case protocol.TextDocumentContentChangeEvent:
			if change.Range == nil {
				content = []byte(change.Text)
				continue
			}
			var err error
			content, err = applyIncrementalChange(content, change)
			if err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("unexpected content change type %T", change)
		}
	}
	return content, nil
}

// applyIncrementalChange replaces the range of change in content with its
// text.
func applyIncrementalChange(content []byte, change protocol.TextDocumentContentChangeEvent) ([]byte, error) {
	start := positionOffset(content, change.Range.Start)
	end := positionOffset(content, change.Range.End)
	if end < start {
		return nil, fmt.Errorf("invalid range for content change")
	}

	var buf bytes.Buffer
	buf.Grow(start + len(change.Text) + len(content) - end)
	buf.Write(content[:start])
	buf.WriteString(change.Text)
	buf.Write(content[end:])
	return buf.Bytes(), nil
}
