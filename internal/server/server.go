package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/tarot-shogun/taikou5dxls/host"
	"github.com/tarot-shogun/taikou5dxls/i18n"
	"github.com/tarot-shogun/taikou5dxls/internal/workspace"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

var log = commonlog.GetLogger("taikou5dxls.server")

// ErrNotInitialized is returned for requests that arrive before initialize
// or after shutdown.
var ErrNotInitialized = errors.New("server not initialized")

// Options configures a [Server].
type Options struct {
	// Name and Version are reported to the client in the initialize result.
	Name    string
	Version string

	// Preselect marks the candidate most similar to the typed word as
	// preselected.
	Preselect bool
}

// Server is the taikou5dx language server. It implements [glsp.Handler].
type Server struct {
	opts      Options
	registry  *host.Registry
	extension *host.ExtensionContext
	workspace *workspace.Workspace

	mu          sync.RWMutex
	language    i18n.Language
	initialized bool
	notify      glsp.NotifyFunc
	ctx         context.Context
	cancel      context.CancelFunc
}

// New creates a new Server instance.
func New(opts Options) *Server {
	if opts.Name == "" {
		opts.Name = "taikou5dxls"
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		opts:      opts,
		registry:  host.NewRegistry(),
		extension: host.NewExtensionContext(),
		workspace: workspace.New(),
		language:  i18n.LanguageEN,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Registry returns the completion provider registry the server hosts.
func (s *Server) Registry() *host.Registry {
	return s.registry
}

// Handle implements [glsp.Handler].
func (s *Server) Handle(c *glsp.Context) (result any, validMethod bool, validParams bool, err error) {
	switch c.Method {
	case protocol.MethodInitialize, protocol.MethodExit:
	default:
		if !s.isInitialized() {
			return nil, true, true, ErrNotInitialized
		}
	}

	switch c.Method {
	case protocol.MethodInitialize:
		var params protocol.InitializeParams
		if err := UnmarshalJSON(c.Params, &params); err != nil {
			return nil, true, false, err
		}
		result, err = s.initialize(&params)
		if err == nil {
			s.mu.Lock()
			s.notify = c.Notify
			s.mu.Unlock()
		}
		return result, true, true, err
	case protocol.MethodInitialized:
		return nil, true, true, nil // Protocol conformance only.
	case protocol.MethodShutdown:
		return nil, true, true, s.shutdown()
	case protocol.MethodExit:
		return nil, true, true, nil // Protocol conformance only.
	case protocol.MethodSetTrace:
		var params protocol.SetTraceParams
		if err := UnmarshalJSON(c.Params, &params); err != nil {
			return nil, true, false, err
		}
		protocol.SetTraceValue(params.Value)
		return nil, true, true, nil
	case protocol.MethodCancelRequest:
		return nil, true, true, nil // Requests complete synchronously.
	case protocol.MethodTextDocumentDidOpen:
		var params protocol.DidOpenTextDocumentParams
		if err := UnmarshalJSON(c.Params, &params); err != nil {
			return nil, true, false, err
		}
		return nil, true, true, s.didOpen(&params)
	case protocol.MethodTextDocumentDidChange:
		var params protocol.DidChangeTextDocumentParams
		if err := UnmarshalJSON(c.Params, &params); err != nil {
			return nil, true, false, err
		}
		return nil, true, true, s.didChange(&params)
	case protocol.MethodTextDocumentDidSave:
		var params protocol.DidSaveTextDocumentParams
		if err := UnmarshalJSON(c.Params, &params); err != nil {
			return nil, true, false, err
		}
		return nil, true, true, s.didSave(&params)
	case protocol.MethodTextDocumentDidClose:
		var params protocol.DidCloseTextDocumentParams
		if err := UnmarshalJSON(c.Params, &params); err != nil {
			return nil, true, false, err
		}
		return nil, true, true, s.didClose(&params)
	case protocol.MethodTextDocumentCompletion:
		var params protocol.CompletionParams
		if err := UnmarshalJSON(c.Params, &params); err != nil {
			return nil, true, false, err
		}
		result, err = s.textDocumentCompletion(c, &params)
		return result, true, true, err
	case protocol.MethodCompletionItemResolve:
		var params protocol.CompletionItem
		if err := UnmarshalJSON(c.Params, &params); err != nil {
			return nil, true, false, err
		}
		return &params, true, true, nil
	}
	return nil, false, false, nil
}

// UnmarshalJSON unmarshals msg into the variable pointed to by v. If msg is
// empty or "null", v is left unchanged.
func UnmarshalJSON(msg json.RawMessage, v any) error {
	if len(msg) == 0 || bytes.Equal(msg, []byte("null")) {
		return nil
	}
	return json.Unmarshal(msg, v)
}

func (s *Server) isInitialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// currentLanguage returns the language of user-visible messages.
func (s *Server) currentLanguage() i18n.Language {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.language
}

// translate translates a server message to the client language.
func (s *Server) translate(message string) string {
	return i18n.Translate(message, s.currentLanguage())
}

// logMessage sends a window/logMessage notification when c can notify.
func (s *Server) logMessage(c *glsp.Context, typ protocol.MessageType, message string) {
	if c == nil || c.Notify == nil {
		return
	}
	c.Notify(protocol.ServerWindowLogMessage, &protocol.LogMessageParams{
		Type:    typ,
		Message: s.translate(message),
	})
}

// CatalogReloaded reports the result of reloading the custom catalog at path
// to the connected client.
func (s *Server) CatalogReloaded(path string, err error) {
	s.mu.RLock()
	notify := s.notify
	s.mu.RUnlock()
	if notify == nil {
		return
	}

	params := &protocol.ShowMessageParams{
		Type:    protocol.MessageTypeInfo,
		Message: s.translate(fmt.Sprintf("reloaded custom catalog %s", path)),
	}
	if err != nil {
		params.Type = protocol.MessageTypeError
		params.Message = s.translate(err.Error())
	}
	notify(protocol.ServerWindowShowMessage, params)
}
