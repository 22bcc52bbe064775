// Package transform is the generic memoized graph-transformation framework
// shared by the reduction, beta-substitution and expand-and-typecheck
// algorithms.
//
// A Definition maps node kinds to handlers. A Run applies a definition to
// nodes, dispatching each node to the handler registered for its most
// specific kind and memoizing the result per node.
package transform

import (
	"github.com/funvibe/sysmel/internal/asg"
	"github.com/funvibe/sysmel/internal/diagnostics"
	"go.uber.org/zap"
)

// Handler transforms one node on behalf of algorithm instance A.
type Handler[A any] func(algorithm A, node *asg.Node) *asg.Node

// Predicate restricts a handler to some nodes of its kind.
type Predicate func(node *asg.Node) bool

type rule[A any] struct {
	when  Predicate
	apply Handler[A]
}

// Definition is the handler table of one algorithm, built once.
type Definition[A any] struct {
	Name  string
	rules map[*asg.Kind][]rule[A]
}

func NewDefinition[A any](name string) *Definition[A] {
	return &Definition[A]{Name: name, rules: make(map[*asg.Kind][]rule[A])}
}

// On registers handler for kind and all its descendants without a more specific handler.
func (d *Definition[A]) On(kind *asg.Kind, handler Handler[A]) *Definition[A] {
	return d.OnWhen(kind, nil, handler)
}

// OnWhen registers a handler that is only used when predicate holds.
// Rules of one kind are tried in registration order.
func (d *Definition[A]) OnWhen(kind *asg.Kind, predicate Predicate, handler Handler[A]) *Definition[A] {
	d.rules[kind] = append(d.rules[kind], rule[A]{when: predicate, apply: handler})
	return d
}

// HandlerFor walks the kind hierarchy of node from most to least specific.
func (d *Definition[A]) HandlerFor(node *asg.Node) (Handler[A], bool) {
	for kind := node.Kind(); kind != nil; kind = kind.Parent {
		for _, r := range d.rules[kind] {
			if r.when == nil || r.when(node) {
				return r.apply, true
			}
		}
	}
	return nil, false
}

type entryState int

const (
	inProgress entryState = iota + 1
	finished
)

type entry struct {
	state entryState
	value *asg.Node
}

// Memo holds the per-node results of one algorithm instance.
type Memo struct {
	entries map[*asg.Node]*entry
	waiting map[*asg.Node][]*asg.Node
}

func NewMemo() *Memo {
	return &Memo{
		entries: make(map[*asg.Node]*entry),
		waiting: make(map[*asg.Node][]*asg.Node),
	}
}

// Lookup returns the finished value of node, if any.
func (m *Memo) Lookup(node *asg.Node) (*asg.Node, bool) {
	e, ok := m.entries[node]
	if !ok || e.state != finished {
		return nil, false
	}
	return e.value, true
}

// Len returns the number of nodes visited so far.
func (m *Memo) Len() int { return len(m.entries) }

// Run binds a definition to an algorithm instance and its memo.
type Run[A any] struct {
	Definition *Definition[A]
	Algorithm  A
	Memo       *Memo
	Logger     *zap.Logger
	// PostProcess is applied to every handler result before it is memoized.
	PostProcess func(result *asg.Node) *asg.Node
}

func NewRun[A any](definition *Definition[A], algorithm A, logger *zap.Logger) *Run[A] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Run[A]{Definition: definition, Algorithm: algorithm, Memo: NewMemo(), Logger: logger}
}

// Transform returns the memoized result of node, computing it on first use.
func (r *Run[A]) Transform(node *asg.Node) *asg.Node {
	if node == nil {
		return nil
	}
	if e, ok := r.Memo.entries[node]; ok {
		if e.state == inProgress {
			r.Logger.Error("circular dependency", zap.String("algorithm", r.Definition.Name), zap.Stringer("node", node))
			diagnostics.Fatalf("%s: circular dependency while transforming %s at %s",
				r.Definition.Name, node, node.Derivation().SourcePosition())
		}
		return e.value
	}

	r.Memo.entries[node] = &entry{state: inProgress}
	handler, ok := r.Definition.HandlerFor(node)
	if !ok {
		diagnostics.Fatalf("%s: no handler for node kind %s", r.Definition.Name, node.Kind())
	}
	result := handler(r.Algorithm, node)
	if r.PostProcess != nil && result != nil {
		result = r.PostProcess(result)
	}
	r.finish(node, result)
	return r.Memo.entries[node].value
}

// Delegate transforms to on behalf of from: the value to finishes with also
// finishes from.
func (r *Run[A]) Delegate(from, to *asg.Node) *asg.Node {
	if e, ok := r.Memo.entries[to]; ok && e.state == finished {
		return e.value
	}
	r.Memo.waiting[to] = append(r.Memo.waiting[to], from)
	return r.Transform(to)
}

func (r *Run[A]) finish(node, value *asg.Node) {
	e := r.Memo.entries[node]
	if e == nil {
		e = &entry{}
		r.Memo.entries[node] = e
	}
	if e.state == finished {
		if e.value != value {
			diagnostics.Fatalf("%s: expansion of %s finished twice with different values (%s, %s)",
				r.Definition.Name, node, e.value, value)
		}
		return
	}
	e.state, e.value = finished, value

	waiting := r.Memo.waiting[node]
	delete(r.Memo.waiting, node)
	for _, delegator := range waiting {
		r.finish(delegator, value)
	}
}
