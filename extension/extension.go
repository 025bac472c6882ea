// Package extension wires the taikou5dx completion providers into a host
// provider registry.
package extension

import (
	"github.com/tarot-shogun/taikou5dxls/completion"
	"github.com/tarot-shogun/taikou5dxls/host"
)

// LanguageID is the language identifier of taikou5dx event scripts.
const LanguageID = "taikou5dx"

// Selector selects taikou5dx documents. Every provider is registered with it.
var Selector = host.DocumentSelector{Language: LanguageID}

// Activate registers the six completion providers with reg and hands the
// resulting disposables to ec. Registry errors are returned as they are.
//
// Activate does not look at what ec already owns: activating twice on the
// same context registers every provider twice.
func Activate(ec *host.ExtensionContext, reg *host.Registry) error {
	registrations := []struct {
		provider completion.Provider
		triggers []string
	}{
		{provider: new(completion.SnippetFunctionProvider)},
		{provider: new(completion.FirstSnippetProvider)},
		{provider: new(completion.OperatorProvider)},
		{provider: new(completion.AttributeTypeProvider), triggers: []string{":"}},
		{provider: new(completion.TriggerTypeProvider), triggers: []string{":"}},
		{provider: new(completion.ClassTypeProvider), triggers: []string{":"}},
	}
	for _, r := range registrations {
		d, err := reg.RegisterCompletionItemProvider(Selector, r.provider, r.triggers...)
		if err != nil {
			return err
		}
		ec.Push(d)
	}
	return nil
}

// Deactivate releases everything ec owns.
func Deactivate(ec *host.ExtensionContext) error {
	return ec.Dispose()
}
