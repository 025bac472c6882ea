// Command catalogen regenerates the categories section of the completion
// catalog from the game manual's list page.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/tarot-shogun/taikou5dxls/internal/catalog"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

const defaultURL = "https://www.gamecity.ne.jp/manual/KSjyrFfh/Taiko5DXEV_TC/contents/list.html"

var log = commonlog.GetLogger("catalogen")

func main() {
	var (
		url     = flag.String("url", defaultURL, "list page of the game manual")
		in      = flag.String("in", "", "read the list page from this file instead of fetching it")
		out     = flag.String("out", "catalog.yaml", "catalog file to update")
		timeout = flag.Duration("timeout", 30*time.Second, "fetch timeout")
	)
	flag.Parse()
	commonlog.Configure(1, nil)

	if err := run(*url, *in, *out, *timeout); err != nil {
		fmt.Fprintf(os.Stderr, "catalogen: %v\n", err)
		os.Exit(1)
	}
}

func run(url, in, out string, timeout time.Duration) error {
	var (
		doc *html.Node
		err error
	)
	if in != "" {
		doc, err = parseFile(in)
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		doc, err = fetch(ctx, url)
	}
	if err != nil {
		return err
	}

	order, entries, err := collect(doc, sources)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}
	merged, err := mergeCategories(data, order, entries)
	if err != nil {
		return err
	}
	return os.WriteFile(out, merged, 0o644)
}

// collect extracts the entries of every source. A source whose table cannot
// be found is skipped with a warning so the catalog keeps its current entries
// for that category.
func collect(doc *html.Node, srcs []source) (order []string, entries map[string][]catalog.Entry, err error) {
	entries = make(map[string][]catalog.Entry, len(srcs))
	for _, src := range srcs {
		list, err := extract(doc, src)
		if err != nil {
			log.Warningf("%v; keeping current entries", err)
			continue
		}
		order = append(order, src.Category)
		entries[src.Category] = list
		log.Infof("%s: %d entries", src.Category, len(list))
	}
	if len(order) == 0 {
		return nil, nil, errors.New("no category table found")
	}
	return order, entries, nil
}

// fetch downloads and parses the page at url, decoding it from the charset
// the server declares or the page itself names.
func fetch(ctx context.Context, url string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: %s", url, resp.Status)
	}
	return parse(resp.Body, resp.Header.Get("Content-Type"))
}

func parseFile(name string) (*html.Node, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parse(f, "")
}

func parse(r io.Reader, contentType string) (*html.Node, error) {
	r, err := charset.NewReader(r, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to detect charset: %w", err)
	}
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return doc, nil
}
