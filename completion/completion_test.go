package completion

import (
	"context"
	"strings"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tarot-shogun/taikou5dxls/i18n"
)

// newDocumentAt returns a document for src with the cursor at the "|" marker.
func newDocumentAt(t *testing.T, src string) (*Document, Position) {
	t.Helper()

	i := strings.Index(src, "|")
	require.GreaterOrEqual(t, i, 0, "missing cursor marker")
	before := src[:i]
	line := strings.Count(before, "\n")
	lineStart := strings.LastIndexByte(before, '\n') + 1
	character := len(utf16.Encode([]rune(before[lineStart:])))

	return &Document{
		URI:        "file:///event.t5dx",
		LanguageID: "taikou5dx",
		Version:    1,
		Text:       src[:i] + src[i+1:],
	}, Position{Line: uint32(line), Character: uint32(character)}
}

func provide(t *testing.T, p Provider, src string) []Item {
	t.Helper()

	doc, pos := newDocumentAt(t, src)
	items, err := p.ProvideCompletionItems(context.Background(), doc, pos, Context{TriggerKind: TriggerInvoked})
	require.NoError(t, err)
	return items
}

func labels(items []Item) []string {
	result := make([]string, 0, len(items))
	for _, item := range items {
		result = append(result, item.Label)
	}
	return result
}

func TestDocumentLinePrefix(t *testing.T) {
	doc := &Document{Text: "event 墨俣築城\r\n\tattribute: 一度のみ\n\tmessage(😀, x)\n"}

	t.Run("FirstLine", func(t *testing.T) {
		assert.Equal(t, "event 墨俣", doc.LinePrefix(Position{Line: 0, Character: 8}))
	})

	t.Run("CRLFIsTrimmed", func(t *testing.T) {
		line, ok := doc.Line(0)
		require.True(t, ok)
		assert.Equal(t, "event 墨俣築城", line)
		assert.Equal(t, "event 墨俣築城", doc.LinePrefix(Position{Line: 0, Character: 100}))
	})

	t.Run("SurrogatePair", func(t *testing.T) {
		assert.Equal(t, "\tmessage(😀", doc.LinePrefix(Position{Line: 2, Character: 11}))
	})

	t.Run("LastEmptyLine", func(t *testing.T) {
		assert.Equal(t, "", doc.LinePrefix(Position{Line: 3, Character: 0}))
	})

	t.Run("LineOutOfRange", func(t *testing.T) {
		_, ok := doc.Line(10)
		assert.False(t, ok)
		assert.Equal(t, "", doc.LinePrefix(Position{Line: 10, Character: 2}))
	})
}

func TestEnclosingCall(t *testing.T) {
	for _, tt := range []struct {
		name     string
		prefix   string
		fn       string
		argIndex int
		arg      string
		ok       bool
	}{
		{name: "FirstArg", prefix: "\tbgm(", fn: "bgm", argIndex: 0, ok: true},
		{name: "FirstArgPartial", prefix: "\tbgm(メイ", fn: "bgm", argIndex: 0, arg: "メイ", ok: true},
		{name: "SecondArg", prefix: "\tmove(織田信長, ", fn: "move", argIndex: 1, ok: true},
		{name: "CommaInString", prefix: `	message(織田信長, "a, b", `, fn: "message", argIndex: 2, ok: true},
		{name: "InsideString", prefix: `	message(織田信長, "こん`},
		{name: "InsideBracketString", prefix: "\tmessage(織田信長, 「こん"},
		{name: "ClosedCall", prefix: "\tbgm(合戦)"},
		{name: "NoCall", prefix: "\tbgm"},
		{name: "AnonymousParen", prefix: "\tif (金銭"},
		{name: "Nested", prefix: "\tmessage(織田信長, leave(", fn: "leave", argIndex: 0, ok: true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			fn, argIndex, arg, ok := enclosingCall(tt.prefix)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.fn, fn)
			assert.Equal(t, tt.argIndex, argIndex)
			assert.Equal(t, tt.arg, arg)
		})
	}
}

func TestSnippetFunctionProvider(t *testing.T) {
	p := SnippetFunctionProvider{}

	t.Run("StatementLine", func(t *testing.T) {
		items := provide(t, p, "event a\n\tme|\nend")
		require.NotEmpty(t, items)
		assert.Contains(t, labels(items), "message")
		assert.Contains(t, labels(items), "army_order")

		for _, item := range items {
			assert.Equal(t, KindFunction, item.Kind)
			assert.True(t, item.Snippet)
		}
		assert.Contains(t, items, Item{
			Label:         "move",
			Kind:          KindFunction,
			Detail:        "move(person person, city city)",
			Documentation: "Move a person to a city.",
			InsertText:    "move(${1:person}, ${2:city})",
			Snippet:       true,
		})
	})

	t.Run("TopLevelLine", func(t *testing.T) {
		assert.Empty(t, provide(t, p, "me|"))
	})

	t.Run("AfterFieldColon", func(t *testing.T) {
		assert.Empty(t, provide(t, p, "\tattribute: |"))
	})

	t.Run("ArgumentValues", func(t *testing.T) {
		items := provide(t, p, "\tbgm(|")
		assert.Equal(t, []string{"メイン大名", "合戦", "茶会"}, labels(items))
		assert.Equal(t, Item{
			Label:    "メイン大名",
			Kind:     KindUnit,
			Detail:   "Music",
			SortText: "0000",
		}, items[0])
	})

	t.Run("SecondArgumentValues", func(t *testing.T) {
		items := provide(t, p, "\tmove(織田信長, 堺|")
		assert.Contains(t, labels(items), "宇須岸")
		assert.NotContains(t, labels(items), "織田信長")
	})

	t.Run("FreeFormArgument", func(t *testing.T) {
		assert.Empty(t, provide(t, p, "\tmessage(織田信長, |"))
	})

	t.Run("InsideString", func(t *testing.T) {
		assert.Empty(t, provide(t, p, "\tmessage(織田信長, \"こん|"))
	})

	t.Run("UnknownFunction", func(t *testing.T) {
		assert.Empty(t, provide(t, p, "\tnope(|"))
	})

	t.Run("JapaneseDocumentation", func(t *testing.T) {
		doc, pos := newDocumentAt(t, "\tmo|")
		items, err := p.ProvideCompletionItems(context.Background(), doc, pos, Context{Language: i18n.LanguageJA})
		require.NoError(t, err)
		for _, item := range items {
			if item.Label == "move" {
				assert.Equal(t, "人物を町へ移動させる。", item.Documentation)
				return
			}
		}
		t.Fatal("move not offered")
	})
}

func TestFirstSnippetProvider(t *testing.T) {
	p := FirstSnippetProvider{}

	t.Run("EmptyDocument", func(t *testing.T) {
		items := provide(t, p, "|")
		assert.Equal(t, []string{"event", "event_minimal"}, labels(items))
		for _, item := range items {
			assert.Equal(t, KindSnippet, item.Kind)
			assert.True(t, item.Snippet)
			assert.True(t, strings.HasPrefix(item.InsertText, "event ${1:イベント名}"))
			assert.True(t, strings.HasSuffix(item.InsertText, "end"))
		}
	})

	t.Run("TopLevelWord", func(t *testing.T) {
		assert.Len(t, provide(t, p, "end\n\nev|"), 2)
	})

	t.Run("IndentedLine", func(t *testing.T) {
		assert.Empty(t, provide(t, p, "event a\n\t|"))
	})

	t.Run("AfterWord", func(t *testing.T) {
		assert.Empty(t, provide(t, p, "event |"))
	})
}

func TestOperatorProvider(t *testing.T) {
	p := OperatorProvider{}

	t.Run("AfterOperand", func(t *testing.T) {
		items := provide(t, p, "\tif 金銭 |")
		assert.Equal(t, []string{"==", "!=", "<", "<=", ">", ">=", "&&", "||", "!"}, labels(items))
		assert.Equal(t, ">= ", items[5].InsertText)
		assert.Equal(t, KindOperator, items[5].Kind)
		assert.Equal(t, "0005", items[5].SortText)
	})

	t.Run("Elif", func(t *testing.T) {
		assert.NotEmpty(t, provide(t, p, "\telif 名声 >= 100 |"))
	})

	t.Run("FullwidthSpace", func(t *testing.T) {
		assert.NotEmpty(t, provide(t, p, "\tif　金銭　|"))
	})

	t.Run("AfterOperator", func(t *testing.T) {
		assert.Empty(t, provide(t, p, "\tif 金銭 >= |"))
	})

	t.Run("NoOperandYet", func(t *testing.T) {
		assert.Empty(t, provide(t, p, "\tif |"))
	})

	t.Run("OperandNotFinished", func(t *testing.T) {
		assert.Empty(t, provide(t, p, "\tif 金銭|"))
	})

	t.Run("NotACondition", func(t *testing.T) {
		assert.Empty(t, provide(t, p, "\tmessage(織田信長, 金銭 |"))
	})
}

func TestFieldValueProviders(t *testing.T) {
	for _, tt := range []struct {
		name   string
		p      Provider
		src    string
		labels []string
	}{
		{
			name:   "Attribute",
			p:      AttributeTypeProvider{},
			src:    "\tattribute: |",
			labels: []string{"一度のみ", "繰り返し", "強制", "任意", "非表示"},
		},
		{
			name:   "AttributeJapaneseKey",
			p:      AttributeTypeProvider{},
			src:    "\t属性:繰|",
			labels: []string{"一度のみ", "繰り返し", "強制", "任意", "非表示"},
		},
		{
			name:   "AttributeFullwidth",
			p:      AttributeTypeProvider{},
			src:    "\tａｔｔｒｉｂｕｔｅ：|",
			labels: []string{"一度のみ", "繰り返し", "強制", "任意", "非表示"},
		},
		{
			name:   "Trigger",
			p:      TriggerTypeProvider{},
			src:    "\ttrigger: |",
			labels: []string{"日付", "季節", "拠点入場", "人物面会", "身分到達", "依頼達成", "合戦勝利", "合戦敗北", "イベント終了"},
		},
		{
			name:   "TriggerJapaneseKey",
			p:      TriggerTypeProvider{},
			src:    "\t発生条件：日|",
			labels: []string{"日付", "季節", "拠点入場", "人物面会", "身分到達", "依頼達成", "合戦勝利", "合戦敗北", "イベント終了"},
		},
		{
			name:   "Class",
			p:      ClassTypeProvider{},
			src:    "\tclass:|",
			labels: []string{"主人公", "人物固有", "汎用", "汎用ライバル", "歴史", "勢力"},
		},
		{name: "AttributeOnTriggerLine", p: AttributeTypeProvider{}, src: "\ttrigger: |"},
		{name: "TriggerOnClassLine", p: TriggerTypeProvider{}, src: "\tclass: |"},
		{name: "ClassOnAttributeLine", p: ClassTypeProvider{}, src: "\tattribute: |"},
		{name: "ValueFinished", p: ClassTypeProvider{}, src: "\tclass: 汎用 |"},
		{name: "BeforeColon", p: ClassTypeProvider{}, src: "\tclass|"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			items := provide(t, tt.p, tt.src)
			if tt.labels == nil {
				assert.Empty(t, items)
				return
			}
			assert.Equal(t, tt.labels, labels(items))
			for _, item := range items {
				assert.Equal(t, KindEnumMember, item.Kind)
				assert.NotEmpty(t, item.Detail)
			}
		})
	}
}

func TestProvidersHonorCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, tt := range []struct {
		name string
		p    Provider
		src  string
	}{
		{name: "SnippetFunction", p: SnippetFunctionProvider{}, src: "\t|"},
		{name: "SnippetFunctionArgument", p: SnippetFunctionProvider{}, src: "\tappear(|"},
		{name: "FirstSnippet", p: FirstSnippetProvider{}, src: "|"},
		{name: "Operator", p: OperatorProvider{}, src: "\tif a |"},
		{name: "AttributeType", p: AttributeTypeProvider{}, src: "\tattribute: |"},
		{name: "TriggerType", p: TriggerTypeProvider{}, src: "\ttrigger: |"},
		{name: "ClassType", p: ClassTypeProvider{}, src: "\tclass: |"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			doc, pos := newDocumentAt(t, tt.src)
			items, err := tt.p.ProvideCompletionItems(ctx, doc, pos, Context{})
			require.NoError(t, err)
			assert.Empty(t, items)
		})
	}
}
