// Package registry keeps the set of transaction schemas registered on an
// engine and the composite "transactions" and "block" schemas derived from it.
package registry

import (
	"github.com/pkg/errors"
)

const (
	BlockKey        = "block"
	TransactionsKey = "transactions"

	SignedSuffix = "Signed"
	StrictSuffix = "Strict"
)

// Engine is the part of a schema engine the registry mutates.
type Engine interface {
	AddSchema(schema any, key string) error
	RemoveSchema(key string) bool
}

// Definition describes one transaction type. Base, Signed and Strict are
// registered under ID, ID+"Signed" and ID+"Strict".
type Definition struct {
	ID     string
	Base   map[string]any
	Signed map[string]any
	Strict map[string]any
}

// Keys returns the engine keys of the three variants.
func (d Definition) Keys() (base, signed, strict string) {
	return d.ID, d.ID + SignedSuffix, d.ID + StrictSuffix
}

// Registry maps transaction type ids to their definitions, in registration
// order. Every mutation rebuilds "transactions" and re-adds "block" on the
// engine it is given.
type Registry struct {
	defs  map[string]Definition
	order []string
	block map[string]any
}

// New returns an empty Registry that publishes block as the "block" schema.
func New(block map[string]any) *Registry {
	return &Registry{
		defs:  make(map[string]Definition),
		block: block,
	}
}

// Register adds def to the registry and to e. An existing definition with
// the same id, or any definition when forceReplace is set, is deregistered
// first so the composite never carries a duplicate branch.
func (r *Registry) Register(e Engine, def Definition, forceReplace bool) error {
	if err := checkDefinition(def); err != nil {
		return err
	}
	prev, had := r.defs[def.ID]
	pos := -1
	if had || forceReplace {
		pos = r.remove(e, def.ID)
	}

	if err := addVariants(e, def); err != nil {
		if had {
			// Put the previous definition back where it was.
			if rerr := addVariants(e, prev); rerr == nil {
				r.insert(prev, pos)
			}
		}
		if rerr := r.Rebuild(e); rerr != nil {
			return errors.Wrapf(rerr, "restoring composite after failed registration of %q", def.ID)
		}
		return errors.Wrapf(err, "registering transaction schema %q", def.ID)
	}
	r.insert(def, -1)
	return r.Rebuild(e)
}

// Deregister removes id's variants from e and rebuilds the composite.
func (r *Registry) Deregister(e Engine, id string) error {
	r.remove(e, id)
	return r.Rebuild(e)
}

// Apply replays every registered definition, the composite and the block
// schema onto e, replacing whatever e held under those keys.
func (r *Registry) Apply(e Engine) error {
	for _, id := range r.order {
		def := r.defs[id]
		removeVariants(e, def.ID)
		if err := addVariants(e, def); err != nil {
			return errors.Wrapf(err, "applying transaction schema %q", id)
		}
	}
	return r.Rebuild(e)
}

// Rebuild republishes "transactions" from the current contents and then
// re-adds "block", which references it.
func (r *Registry) Rebuild(e Engine) error {
	e.RemoveSchema(TransactionsKey)
	if err := e.AddSchema(r.Composite(), TransactionsKey); err != nil {
		return errors.Wrap(err, "publishing composite transactions schema")
	}
	e.RemoveSchema(BlockKey)
	if err := e.AddSchema(r.block, BlockKey); err != nil {
		return errors.Wrap(err, "publishing block schema")
	}
	return nil
}

// Composite returns the array schema accepting any registered signed
// transaction variant. With nothing registered it accepts only the empty
// array.
func (r *Registry) Composite() map[string]any {
	items := map[string]any{"not": map[string]any{}}
	if len(r.order) > 0 {
		refs := make([]any, 0, len(r.order))
		for _, id := range r.order {
			refs = append(refs, map[string]any{"$ref": id + SignedSuffix})
		}
		items = map[string]any{"anyOf": refs}
	}
	return map[string]any{
		"$id":             TransactionsKey,
		"type":            "array",
		"additionalItems": false,
		"items":           items,
	}
}

// Lookup returns the definition registered under id.
func (r *Registry) Lookup(id string) (Definition, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// IDs returns the registered ids in iteration order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int { return len(r.order) }

// remove drops id from e and from the registry and returns its former
// position in the iteration order, or -1.
func (r *Registry) remove(e Engine, id string) int {
	removeVariants(e, id)
	if _, ok := r.defs[id]; !ok {
		return -1
	}
	delete(r.defs, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return i
		}
	}
	return -1
}

func (r *Registry) insert(def Definition, pos int) {
	r.defs[def.ID] = def
	if pos < 0 || pos > len(r.order) {
		r.order = append(r.order, def.ID)
		return
	}
	r.order = append(r.order, "")
	copy(r.order[pos+1:], r.order[pos:])
	r.order[pos] = def.ID
}

func removeVariants(e Engine, id string) {
	e.RemoveSchema(id)
	e.RemoveSchema(id + SignedSuffix)
	e.RemoveSchema(id + StrictSuffix)
}

// addVariants adds all three variants or none of them.
func addVariants(e Engine, def Definition) error {
	base, signed, strict := def.Keys()
	variants := []struct {
		key string
		doc map[string]any
	}{{base, def.Base}, {signed, def.Signed}, {strict, def.Strict}}
	for i, v := range variants {
		if err := e.AddSchema(v.doc, v.key); err != nil {
			for _, added := range variants[:i] {
				e.RemoveSchema(added.key)
			}
			return err
		}
	}
	return nil
}

func checkDefinition(def Definition) error {
	switch def.ID {
	case "":
		return errors.New("transaction schema needs an id")
	case BlockKey, TransactionsKey:
		return errors.Errorf("transaction schema id %q is reserved", def.ID)
	}
	if def.Base == nil || def.Signed == nil || def.Strict == nil {
		return errors.Errorf("transaction schema %q needs base, signed and strict variants", def.ID)
	}
	return nil
}
