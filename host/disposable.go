package host

import (
	"slices"
	"sync"

	"github.com/qiniu/x/errors"
)

// Disposable is a handle to an acquired registration that must be released
// explicitly.
type Disposable interface {
	// Dispose releases the resource. Calling it more than once is a no-op.
	Dispose() error
}

// DisposableFunc adapts a function to [Disposable]. The function runs at most
// once.
func DisposableFunc(fn func() error) Disposable {
	return &funcDisposable{fn: fn}
}

type funcDisposable struct {
	once sync.Once
	fn   func() error
}

func (d *funcDisposable) Dispose() (err error) {
	d.once.Do(func() {
		if d.fn != nil {
			err = d.fn()
		}
	})
	return
}

// ExtensionContext owns the subscriptions of one extension activation and
// releases them together on deactivation.
type ExtensionContext struct {
	mu            sync.Mutex
	subscriptions []Disposable
}

// NewExtensionContext creates an empty [ExtensionContext].
func NewExtensionContext() *ExtensionContext {
	return &ExtensionContext{}
}

// Push transfers ownership of ds to the context.
func (c *ExtensionContext) Push(ds ...Disposable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscriptions = append(c.subscriptions, ds...)
}

// Len returns the number of owned subscriptions.
func (c *ExtensionContext) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subscriptions)
}

// Subscriptions returns a copy of the owned subscriptions in push order.
func (c *ExtensionContext) Subscriptions() []Disposable {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.subscriptions)
}

// Dispose releases every owned subscription in reverse push order and empties
// the context. All subscriptions are released even if some fail; the failures
// are returned together.
func (c *ExtensionContext) Dispose() error {
	c.mu.Lock()
	subs := c.subscriptions
	c.subscriptions = nil
	c.mu.Unlock()

	var errs errors.List
	for _, d := range slices.Backward(subs) {
		if d == nil {
			continue
		}
		if err := d.Dispose(); err != nil {
			errs.Add(err)
		}
	}
	return errs.ToError()
}
