package render

import (
	"strconv"
	"sync"

	"github.com/vango-dev/slate/internal/errors"
)

// Owner is the scope of one component activation. It generates ids and
// holds context values. Owners are passed explicitly through rendering; an
// Owner never outlives the render that created its Root.
type Owner struct {
	parent *Owner
	root   *Root
	prefix string

	mu     sync.Mutex
	index  int
	values map[uint64]any
}

func newOwner(parent *Owner, root *Root, prefix string) *Owner {
	return &Owner{parent: parent, root: root, prefix: prefix}
}

// Parent returns the owner of the enclosing activation, or nil at the root.
func (o *Owner) Parent() *Owner {
	if o == nil {
		return nil
	}
	return o.parent
}

// Root returns the render root o belongs to.
func (o *Owner) Root() *Root {
	if o == nil {
		return nil
	}
	return o.root
}

// CreateID returns the next id of o: "prefix-index", or "index" when o has
// no prefix. It fails outside of a render.
func (o *Owner) CreateID() (string, error) {
	if o == nil {
		return "", errors.New(errors.CodeOutsideRender)
	}
	o.mu.Lock()
	i := o.index
	o.index++
	o.mu.Unlock()

	if o.prefix == "" {
		return strconv.Itoa(i), nil
	}
	return o.prefix + "-" + strconv.Itoa(i), nil
}

// activate creates the owner of a child component activation. Its prefix is
// a fresh id of o.
func (o *Owner) activate() (*Owner, error) {
	if o == nil {
		return newOwner(nil, nil, ""), nil
	}
	prefix, err := o.CreateID()
	if err != nil {
		return nil, err
	}
	return newOwner(o, o.root, prefix), nil
}

func (o *Owner) set(id uint64, v any) {
	if o == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.values == nil {
		o.values = make(map[uint64]any)
	}
	o.values[id] = v
}

// lookup walks from o to the root-most owner and returns the nearest bound
// value.
func (o *Owner) lookup(id uint64) (any, bool) {
	for cur := o; cur != nil; cur = cur.parent {
		cur.mu.Lock()
		v, ok := cur.values[id]
		cur.mu.Unlock()
		if ok {
			return v, true
		}
	}
	return nil, false
}

// IsOutsideRender reports whether err was raised by an owner operation used
// outside of a render.
func IsOutsideRender(err error) bool {
	return errors.HasCode(err, errors.CodeOutsideRender)
}
