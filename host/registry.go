// Package host models the editor side of provider registration: a registry
// of completion providers keyed by document selector, and the disposables
// that remove entries from it.
package host

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"unicode/utf8"

	"github.com/tarot-shogun/taikou5dxls/completion"
)

var (
	// ErrNilProvider is returned when registering a nil provider.
	ErrNilProvider = errors.New("provider cannot be nil")

	// ErrEmptySelector is returned when registering with a selector that
	// has no criteria.
	ErrEmptySelector = errors.New("document selector has no criteria")

	// ErrInvalidTriggerCharacter is returned for trigger characters that are
	// not exactly one character long.
	ErrInvalidTriggerCharacter = errors.New("trigger character must be a single character")
)

// RegistrationID uniquely identifies a registration within a [Registry].
type RegistrationID uint64

// Registration is one entry of the provider registry.
type Registration struct {
	ID                RegistrationID
	Selector          DocumentSelector
	Provider          completion.Provider
	TriggerCharacters []string
}

// HasTriggerCharacter reports whether ch was declared for the registration.
func (r Registration) HasTriggerCharacter(ch string) bool {
	return slices.Contains(r.TriggerCharacters, ch)
}

// Registry holds completion provider registrations in insertion order.
type Registry struct {
	mu     sync.RWMutex
	nextID RegistrationID
	order  []Registration
}

// NewRegistry creates an empty [Registry].
func NewRegistry() *Registry {
	return &Registry{}
}

// RegisterCompletionItemProvider registers provider for documents matched by
// selector. When triggerCharacters are given, typing any of them also invokes
// the provider. The returned [Disposable] removes exactly this registration.
//
// The same provider may be registered more than once; each call creates a new
// registration.
func (r *Registry) RegisterCompletionItemProvider(selector DocumentSelector, provider completion.Provider, triggerCharacters ...string) (Disposable, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	if selector.IsEmpty() {
		return nil, ErrEmptySelector
	}
	for _, ch := range triggerCharacters {
		if utf8.RuneCountInString(ch) != 1 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTriggerCharacter, ch)
		}
	}

	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.order = append(r.order, Registration{
		ID:                id,
		Selector:          selector,
		Provider:          provider,
		TriggerCharacters: slices.Clone(triggerCharacters),
	})
	r.mu.Unlock()

	return DisposableFunc(func() error {
		r.unregister(id)
		return nil
	}), nil
}

// unregister removes the registration with the given ID, if present.
func (r *Registry) unregister(id RegistrationID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = slices.DeleteFunc(r.order, func(reg Registration) bool {
		return reg.ID == id
	})
}

// CompletionProviders returns the registrations whose selector matches doc, in
// registration order. A non-empty triggerCharacter further restricts the
// result to registrations that declared it.
func (r *Registry) CompletionProviders(doc DocumentInfo, triggerCharacter string) []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Registration
	for _, reg := range r.order {
		if !reg.Selector.Match(doc) {
			continue
		}
		if triggerCharacter != "" && !reg.HasTriggerCharacter(triggerCharacter) {
			continue
		}
		result = append(result, reg)
	}
	return result
}

// TriggerCharacters returns the sorted union of all declared trigger
// characters.
func (r *Registry) TriggerCharacters() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var chars []string
	for _, reg := range r.order {
		chars = append(chars, reg.TriggerCharacters...)
	}
	slices.Sort(chars)
	return slices.Compact(chars)
}

// Registrations returns all registrations in registration order.
func (r *Registry) Registrations() []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Len returns the number of live registrations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
