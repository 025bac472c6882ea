package catalog

import (
	_ "embed"
	"fmt"
	"slices"
	"sync"

	"github.com/qiniu/x/errors"
	"github.com/tarot-shogun/taikou5dxls/i18n"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"
)

//go:generate go run github.com/tarot-shogun/taikou5dxls/cmd/catalogen -out catalog.yaml

var (
	//go:embed catalog.yaml
	catalogYAML []byte

	// customCatalogYAML holds the user-provided catalog which has higher
	// priority than the embedded one.
	customCatalogYAML []byte

	mu         sync.RWMutex
	cached     *Catalog
	generation int
	sfg        singleflight.Group
)

// Entry is one data value of a category, e.g. a person or a castle.
type Entry struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
}

// SortText returns the zero-padded id used to keep the game's own ordering.
func (e Entry) SortText() string {
	return fmt.Sprintf("%04d", e.ID)
}

// Category is a named list of entries.
type Category struct {
	Title   i18n.Text `yaml:"title"`
	Entries []Entry   `yaml:"entries"`
}

// Param is a parameter of a script function.
type Param struct {
	Name string `yaml:"name"`

	// Category names the category whose entries are valid arguments. Empty
	// for free-form parameters.
	Category string `yaml:"category,omitempty"`
}

// Function is a script function offered as a snippet.
type Function struct {
	Name        string    `yaml:"name"`
	Description i18n.Text `yaml:"description"`
	Params      []Param   `yaml:"params,omitempty"`
}

// Snippet returns the snippet body for the function call, with one
// placeholder per parameter.
func (f Function) Snippet() string {
	s := f.Name + "("
	for i, p := range f.Params {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("${%d:%s}", i+1, p.Name)
	}
	return s + ")"
}

// Signature returns the function signature for display.
func (f Function) Signature() string {
	s := f.Name + "("
	for i, p := range f.Params {
		if i > 0 {
			s += ", "
		}
		s += p.Name
		if p.Category != "" {
			s += " " + p.Category
		}
	}
	return s + ")"
}

// Keyword is a fixed word with a description, used for attribute, trigger
// and class types as well as operators.
type Keyword struct {
	Name        string    `yaml:"name"`
	Description i18n.Text `yaml:"description"`
}

// EventSnippet is a top-level event template.
type EventSnippet struct {
	Name        string    `yaml:"name"`
	Description i18n.Text `yaml:"description"`
	Body        string    `yaml:"body"`
}

// Catalog is the complete completion data for the language.
type Catalog struct {
	Categories     map[string]*Category `yaml:"categories"`
	Functions      []Function           `yaml:"functions"`
	AttributeTypes []Keyword            `yaml:"attribute_types"`
	TriggerTypes   []Keyword            `yaml:"trigger_types"`
	ClassTypes     []Keyword            `yaml:"class_types"`
	EventSnippets  []EventSnippet       `yaml:"event_snippets"`
	Operators      []Keyword            `yaml:"operators"`
}

// Category returns the named category.
func (c *Catalog) Category(name string) (*Category, bool) {
	cat, ok := c.Categories[name]
	return cat, ok
}

// CategoryNames returns the category names in sorted order.
func (c *Catalog) CategoryNames() []string {
	names := make([]string, 0, len(c.Categories))
	for name := range c.Categories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Function returns the named function.
func (c *Catalog) Function(name string) (Function, bool) {
	i := slices.IndexFunc(c.Functions, func(f Function) bool { return f.Name == name })
	if i < 0 {
		return Function{}, false
	}
	return c.Functions[i], true
}

// Parse decodes and validates a catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// validate checks entry ids are unique per category and that function
// parameters refer to known categories.
func (c *Catalog) validate() error {
	var errs errors.List
	for _, name := range c.CategoryNames() {
		cat := c.Categories[name]
		if cat == nil {
			errs.Add(fmt.Errorf("category %s is empty", name))
			continue
		}
		seen := make(map[int]struct{}, len(cat.Entries))
		for _, e := range cat.Entries {
			if _, ok := seen[e.ID]; ok {
				errs.Add(fmt.Errorf("duplicate entry id %d in category %s", e.ID, name))
				continue
			}
			seen[e.ID] = struct{}{}
		}
	}
	for _, f := range c.Functions {
		for _, p := range f.Params {
			if p.Category == "" {
				continue
			}
			if _, ok := c.Categories[p.Category]; !ok {
				errs.Add(fmt.Errorf("function %s references unknown category %s", f.Name, p.Category))
			}
		}
	}
	return errs.ToError()
}

// SetCustom sets the user-provided catalog. It is validated before it
// replaces the current one; pass nil to go back to the embedded catalog.
func SetCustom(data []byte) error {
	if len(data) > 0 {
		if _, err := Parse(data); err != nil {
			return err
		}
	}

	mu.Lock()
	defer mu.Unlock()
	customCatalogYAML = slices.Clone(data)
	cached = nil
	generation++
	sfg.Forget("catalog")
	return nil
}

// Default returns the active catalog: the custom one if set, otherwise the
// embedded one. The result is cached until [SetCustom] is called.
func Default() (*Catalog, error) {
	mu.RLock()
	c := cached
	mu.RUnlock()
	if c != nil {
		return c, nil
	}

	v, err, _ := sfg.Do("catalog", func() (any, error) {
		mu.RLock()
		data, gen := customCatalogYAML, generation
		mu.RUnlock()
		if len(data) == 0 {
			data = catalogYAML
		}
		c, err := Parse(data)
		if err != nil {
			return nil, err
		}

		mu.Lock()
		if gen == generation {
			cached = c
		}
		mu.Unlock()
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Catalog), nil
}

// MustDefault is like [Default] but panics on error. The embedded catalog is
// validated by tests, so this only fails for a broken custom catalog, which
// [SetCustom] rejects.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}
