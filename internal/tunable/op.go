package tunable

import (
	"fmt"
	"reflect"
	"sync"
)

// Op is an autotuned operation: an ordered registry of candidates plus
// cache-assisted dispatch. Register every candidate before the first Invoke;
// the registry is read-only afterwards, so concurrent dispatch needs no
// locking.
type Op struct {
	ctx  *Context
	name string

	names []string
	ops   map[string]Candidate

	sigOnce sync.Once
	sig     string
}

// NewOp creates an autotuned operation bound to a tuning context. The name
// becomes the stem of the operation signature.
func NewOp(ctx *Context, name string) *Op {
	return &Op{
		ctx:  ctx,
		name: name,
		ops:  make(map[string]Candidate),
	}
}

// Register appends a candidate under a unique name. The first registered
// candidate is the reference/default implementation.
func (o *Op) Register(name string, c Candidate) error {
	if name == "" {
		return fmt.Errorf("tunable: empty candidate name for op %q", o.name)
	}
	if c == nil {
		return fmt.Errorf("tunable: nil candidate %q for op %q", name, o.name)
	}
	if _, ok := o.ops[name]; ok {
		return fmt.Errorf("tunable: duplicate candidate %q for op %q", name, o.name)
	}
	o.names = append(o.names, name)
	o.ops[name] = c
	return nil
}

// MustRegister is Register for wiring done at construction time.
func (o *Op) MustRegister(name string, c Candidate) {
	if err := o.Register(name, c); err != nil {
		panic(err)
	}
}

// Candidates returns the registered candidate names in registration order.
func (o *Op) Candidates() []string {
	out := make([]string, len(o.names))
	copy(out, o.names)
	return out
}

// Signature returns the operation's type identity for cache keying. It is
// computed on first use and memoized; concurrent first readers block on the
// single computation and then observe the same value.
func (o *Op) Signature() string {
	o.sigOnce.Do(func() {
		o.sig = o.createSignature()
	})
	return o.sig
}

func (o *Op) createSignature() string {
	if len(o.names) == 0 {
		return o.name
	}
	// The default candidate's concrete type stands in for the operation's
	// template identity.
	t := reflect.TypeOf(o.ops[o.names[0]])
	return fmt.Sprintf("%s[%s]", o.name, t.String())
}

// Invoke dispatches the parameters to the chosen candidate. With tuning
// enabled it consults the results cache and, on a miss, runs the search and
// stores the outcome; with the subsystem disabled it always uses the default
// candidate. The chosen candidate's error is returned as-is.
func (o *Op) Invoke(p Params) error {
	result := Null()
	cfg := o.ctx.Config()
	if cfg.Enable {
		opSig := o.Signature()
		paramsSig := p.Signature()
		if o.ctx.cache != nil {
			result = o.ctx.cache.Lookup(opSig, paramsSig)
		}
		if result.IsNull() && cfg.Tuning {
			result = o.findFastest(p, cfg)
			if o.ctx.cache != nil {
				o.ctx.cache.Add(opSig, paramsSig, result)
			}
		}
	} else {
		result = Default()
	}
	if result.IsNull() {
		o.ctx.log.Info("no tuning result, using default", "op", o.Signature(), "params", p.Signature())
		result = Default()
	}
	return o.resolve(result, p).Call(p)
}

// resolve maps a result entry to a registered candidate. A result naming an
// unregistered candidate is a registration-consistency bug, not a recoverable
// condition.
func (o *Op) resolve(result ResultEntry, p Params) Candidate {
	if len(o.names) == 0 {
		panic(fmt.Sprintf("tunable: op %q has no registered candidates", o.name))
	}
	name := result.Name
	if result.Kind == ResultDefault {
		name = o.names[0]
	}
	c, ok := o.ops[name]
	if !ok {
		panic(fmt.Sprintf("tunable: selected candidate %q is not registered for op %s (params %s)",
			name, o.Signature(), p.Signature()))
	}
	return c
}
