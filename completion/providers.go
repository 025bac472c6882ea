package completion

import (
	"context"
	"fmt"
	"slices"

	"github.com/tarot-shogun/taikou5dxls/internal/catalog"
)

// SnippetFunctionProvider offers script functions as call snippets on
// statement lines, and the valid values of a function parameter inside its
// argument list.
type SnippetFunctionProvider struct{}

// ProvideCompletionItems implements [Provider].
func (SnippetFunctionProvider) ProvideCompletionItems(ctx context.Context, doc *Document, pos Position, cc Context) ([]Item, error) {
	prefix := doc.LinePrefix(pos)
	if name, argIndex, arg, ok := enclosingCall(prefix); ok {
		if !isWord(arg) {
			return nil, nil
		}
		return argumentItems(ctx, name, argIndex, cc)
	}

	indent, word := splitIndent(prefix)
	if indent == "" || !isWord(word) {
		return nil, nil
	}
	cat, err := catalog.Default()
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(cat.Functions))
	for _, f := range cat.Functions {
		if ctx.Err() != nil {
			return items, nil
		}
		items = append(items, Item{
			Label:         f.Name,
			Kind:          KindFunction,
			Detail:        f.Signature(),
			Documentation: f.Description.In(cc.Language),
			InsertText:    f.Snippet(),
			Snippet:       true,
		})
	}
	return items, nil
}

// argumentItems returns the catalog entries accepted by parameter argIndex
// of the named function.
func argumentItems(ctx context.Context, name string, argIndex int, cc Context) ([]Item, error) {
	cat, err := catalog.Default()
	if err != nil {
		return nil, err
	}
	f, ok := cat.Function(name)
	if !ok || argIndex >= len(f.Params) || f.Params[argIndex].Category == "" {
		return nil, nil
	}
	category, ok := cat.Category(f.Params[argIndex].Category)
	if !ok {
		return nil, nil
	}

	detail := category.Title.In(cc.Language)
	items := make([]Item, 0, len(category.Entries))
	for _, e := range category.Entries {
		if ctx.Err() != nil {
			return items, nil
		}
		items = append(items, Item{
			Label:    e.Name,
			Kind:     KindUnit,
			Detail:   detail,
			SortText: e.SortText(),
		})
	}
	return items, nil
}

// FirstSnippetProvider offers the event templates on top-level lines.
type FirstSnippetProvider struct{}

// ProvideCompletionItems implements [Provider].
func (FirstSnippetProvider) ProvideCompletionItems(ctx context.Context, doc *Document, pos Position, cc Context) ([]Item, error) {
	indent, word := splitIndent(doc.LinePrefix(pos))
	if indent != "" || !isWord(word) {
		return nil, nil
	}
	cat, err := catalog.Default()
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(cat.EventSnippets))
	for _, s := range cat.EventSnippets {
		if ctx.Err() != nil {
			return items, nil
		}
		items = append(items, Item{
			Label:         s.Name,
			Kind:          KindSnippet,
			Detail:        s.Description.In(cc.Language),
			Documentation: fmt.Sprintf("```taikou5dx\n%s\n```", s.Body),
			InsertText:    s.Body,
			Snippet:       true,
		})
	}
	return items, nil
}

// OperatorProvider offers comparison and logical operators after an operand
// in the condition of if, elif and while.
type OperatorProvider struct{}

// ProvideCompletionItems implements [Provider].
func (OperatorProvider) ProvideCompletionItems(ctx context.Context, doc *Document, pos Position, cc Context) ([]Item, error) {
	cat, err := catalog.Default()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(cat.Operators))
	for _, op := range cat.Operators {
		names = append(names, op.Name)
	}
	if !conditionReady(doc.LinePrefix(pos), names) {
		return nil, nil
	}

	items := make([]Item, 0, len(cat.Operators))
	for i, op := range cat.Operators {
		if ctx.Err() != nil {
			return items, nil
		}
		items = append(items, Item{
			Label:      op.Name,
			Kind:       KindOperator,
			Detail:     op.Description.In(cc.Language),
			InsertText: op.Name + " ",
			SortText:   fmt.Sprintf("%04d", i),
		})
	}
	return items, nil
}

// AttributeTypeProvider offers attribute types after "attribute:".
type AttributeTypeProvider struct{}

// ProvideCompletionItems implements [Provider].
func (AttributeTypeProvider) ProvideCompletionItems(ctx context.Context, doc *Document, pos Position, cc Context) ([]Item, error) {
	return fieldValueItems(ctx, doc, pos, cc, []string{"attribute", "属性"}, func(c *catalog.Catalog) []catalog.Keyword {
		return c.AttributeTypes
	})
}

// TriggerTypeProvider offers trigger types after "trigger:".
type TriggerTypeProvider struct{}

// ProvideCompletionItems implements [Provider].
func (TriggerTypeProvider) ProvideCompletionItems(ctx context.Context, doc *Document, pos Position, cc Context) ([]Item, error) {
	return fieldValueItems(ctx, doc, pos, cc, []string{"trigger", "発生条件"}, func(c *catalog.Catalog) []catalog.Keyword {
		return c.TriggerTypes
	})
}

// ClassTypeProvider offers class types after "class:".
type ClassTypeProvider struct{}

// ProvideCompletionItems implements [Provider].
func (ClassTypeProvider) ProvideCompletionItems(ctx context.Context, doc *Document, pos Position, cc Context) ([]Item, error) {
	return fieldValueItems(ctx, doc, pos, cc, []string{"class", "分類"}, func(c *catalog.Catalog) []catalog.Keyword {
		return c.ClassTypes
	})
}

// fieldValueItems returns the keywords of a header field when the cursor is
// on the value of one of keys.
func fieldValueItems(ctx context.Context, doc *Document, pos Position, cc Context, keys []string, values func(*catalog.Catalog) []catalog.Keyword) ([]Item, error) {
	key, ok := fieldValue(doc.LinePrefix(pos))
	if !ok || !slices.Contains(keys, key) {
		return nil, nil
	}
	cat, err := catalog.Default()
	if err != nil {
		return nil, err
	}

	keywords := values(cat)
	items := make([]Item, 0, len(keywords))
	for i, kw := range keywords {
		if ctx.Err() != nil {
			return items, nil
		}
		items = append(items, Item{
			Label:    kw.Name,
			Kind:     KindEnumMember,
			Detail:   kw.Description.In(cc.Language),
			SortText: fmt.Sprintf("%04d", i),
		})
	}
	return items, nil
}

var (
	_ Provider = SnippetFunctionProvider{}
	_ Provider = FirstSnippetProvider{}
	_ Provider = OperatorProvider{}
	_ Provider = AttributeTypeProvider{}
	_ Provider = TriggerTypeProvider{}
	_ Provider = ClassTypeProvider{}
)
