package server

import (
	"context"

	"github.com/tarot-shogun/taikou5dxls/extension"
	"github.com/tarot-shogun/taikou5dxls/i18n"
	"github.com/tarot-shogun/taikou5dxls/internal/util"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// initialize handles the initialize request. It sets the message language
// from the client locale and activates the completion providers.
//
// A repeated initialize replaces the previous activation, so the registry
// never holds more than one set of providers.
func (s *Server) initialize(params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	if err := extension.Deactivate(s.extension); err != nil {
		log.Warningf("failed to release previous activation: %v", err)
	}
	if err := extension.Activate(s.extension, s.registry); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.language = i18n.LanguageFromLocale(util.FromPtr(params.Locale))
	s.initialized = true
	if s.ctx.Err() != nil {
		s.ctx, s.cancel = context.WithCancel(context.Background())
	}
	s.mu.Unlock()

	if params.ClientInfo != nil {
		log.Infof("initialized by %s %s", params.ClientInfo.Name, util.FromPtr(params.ClientInfo.Version))
	}

	syncKind := protocol.TextDocumentSyncKindIncremental
	capabilities := protocol.ServerCapabilities{
		TextDocumentSync: protocol.TextDocumentSyncOptions{
			OpenClose: util.ToPtr(true),
			Change:    &syncKind,
			Save:      protocol.SaveOptions{IncludeText: util.ToPtr(true)},
		},
		CompletionProvider: &protocol.CompletionOptions{
			TriggerCharacters: s.registry.TriggerCharacters(),
			ResolveProvider:   util.ToPtr(true),
		},
	}

	result := &protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name: s.opts.Name,
		},
	}
	if s.opts.Version != "" {
		result.ServerInfo.Version = util.ToPtr(s.opts.Version)
	}
	return result, nil
}

// shutdown handles the shutdown request. It deactivates the completion
// providers and drops every open document.
func (s *Server) shutdown() error {
	s.mu.Lock()
	s.initialized = false
	s.notify = nil
	s.cancel()
	s.mu.Unlock()

	if n := s.workspace.Len(); n > 0 {
		log.Infof("dropping %d open documents", n)
	}
	s.workspace.Clear()
	return extension.Deactivate(s.extension)
}

// requestContext returns the context completion requests run with. It is
// cancelled on shutdown.
func (s *Server) requestContext() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctx
}
