package main

import (
	"fmt"
	"strings"

	"github.com/tarot-shogun/taikou5dxls/internal/catalog"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// source locates the list of one catalog category on the manual page.
type source struct {
	Category string

	// Identifier is a text the wanted table contains.
	Identifier string

	// Exact requires a row of the table to read exactly Identifier instead of
	// the table text merely containing it.
	Exact bool

	// Occurrence selects the nth matching table, starting at 1.
	Occurrence int
}

// sources lists the categories in catalog order.
var sources = []source{
	{Category: "person", Identifier: "人物Ａ"},
	{Category: "hub", Identifier: "城Ａ"},
	{Category: "city", Identifier: "宇須岸", Exact: true},
	{Category: "castle", Identifier: "勝山", Exact: true},
	{Category: "village", Identifier: "黒脛巾", Exact: true},
	{Category: "sea_fort", Identifier: "十三湊", Exact: true},
	{Category: "power", Identifier: "勢力Ａ", Exact: true},
	{Category: "lords", Identifier: "大名家Ａ", Exact: true, Occurrence: 2},
	{Category: "merchant", Identifier: "商家Ａ", Exact: true, Occurrence: 2},
	{Category: "ninja", Identifier: "黒脛巾衆", Exact: true, Occurrence: 2},
	{Category: "pirate", Identifier: "安東水軍", Exact: true, Occurrence: 2},
	{Category: "army", Identifier: "主人公軍団", Exact: true},
	{Category: "item", Identifier: "松風", Exact: true},
	{Category: "region", Identifier: "東北", Exact: true},
	{Category: "country", Identifier: "蝦夷", Exact: true},
	{Category: "store_name", Identifier: "鐙", Exact: true},
	{Category: "school", Identifier: "主人公流派"},
	{Category: "position", Identifier: "主人公身分"},
	{Category: "kanshoku", Identifier: "佐渡守"},
	{Category: "kani", Identifier: "主人公官位"},
	{Category: "koueki_area", Identifier: "北みちのく"},
	{Category: "weather", Identifier: "晴れ"},
	{Category: "image_effect", Identifier: "フェードアウト"},
	{Category: "army_target", Identifier: "軍団", Exact: true},
	{Category: "army_plan", Identifier: "拠点攻撃"},
	{Category: "personal_category", Identifier: "汎用ライバル"},
	{Category: "scene", Identifier: "城主の間"},
	{Category: "field_background", Identifier: "陸道"},
	{Category: "event_still", Identifier: "墨俣築城"},
	{Category: "bgm", Identifier: "メイン大名"},
	{Category: "se", Identifier: "キャンセル音"},
}

// extract returns the entries of src found in doc.
func extract(doc *html.Node, src source) ([]catalog.Entry, error) {
	table := findTable(doc, src)
	if table == nil {
		return nil, fmt.Errorf("cannot find table for %s (%s)", src.Category, src.Identifier)
	}
	entries := tableEntries(table)
	if len(entries) == 0 {
		return nil, fmt.Errorf("table for %s (%s) has no entries", src.Category, src.Identifier)
	}
	return entries, nil
}

// findTable returns the table of class MsoNormalTable matching src, or nil.
func findTable(doc *html.Node, src source) *html.Node {
	occurrence := max(src.Occurrence, 1)
	var found *html.Node
	walk(doc, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if !isElement(n, atom.Table, "MsoNormalTable") {
			return true
		}
		if tableMatches(n, src) {
			occurrence--
			if occurrence == 0 {
				found = n
			}
		}
		return false
	})
	return found
}

func tableMatches(table *html.Node, src source) bool {
	if !src.Exact {
		return strings.Contains(textContent(table), src.Identifier)
	}
	for _, row := range rowTexts(table) {
		if row == src.Identifier {
			return true
		}
	}
	return false
}

// tableEntries numbers the row texts of table from 0.
func tableEntries(table *html.Node) []catalog.Entry {
	rows := rowTexts(table)
	entries := make([]catalog.Entry, 0, len(rows))
	for i, name := range rows {
		entries = append(entries, catalog.Entry{ID: i, Name: name})
	}
	return entries
}

// rowTexts returns the text of the first MsoNormal paragraph of every row
// that has one.
func rowTexts(table *html.Node) []string {
	var texts []string
	walk(table, func(n *html.Node) bool {
		if n != table && isElement(n, atom.Table, "") {
			return false // Nested tables are listed on their own.
		}
		if n.Type != html.ElementNode || n.DataAtom != atom.Tr {
			return true
		}
		var p *html.Node
		walk(n, func(c *html.Node) bool {
			if p != nil {
				return false
			}
			if isElement(c, atom.P, "MsoNormal") {
				p = c
				return false
			}
			return true
		})
		if p != nil {
			if text := normalizeSpace(textContent(p)); text != "" {
				texts = append(texts, text)
			}
		}
		return false
	})
	return texts
}

// walk visits n and its descendants in document order. Children of a node
// are skipped when fn returns false for it.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

// isElement reports whether n is an element a with class class. An empty
// class matches any element a.
func isElement(n *html.Node, a atom.Atom, class string) bool {
	if n.Type != html.ElementNode || n.DataAtom != a {
		return false
	}
	if class == "" {
		return true
	}
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			for _, c := range strings.Fields(attr.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

// textContent concatenates the text nodes under n.
func textContent(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return sb.String()
}

// normalizeSpace trims s and collapses runs of white space, which word
// processors insert when wrapping long lines.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
