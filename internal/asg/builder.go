package asg

import "go.uber.org/zap"

// UnifiedValue is the result of interning a candidate node.
type UnifiedValue struct {
	Node       *Node
	Derivation Derivation // UnificationDerivation on a hit, the node's own derivation otherwise
}

// Builder constructs nodes, interning pure-data nodes and chaining
// sequencing nodes after the current predecessor.
//
// Builders nest one per diverging control region; a child consults its
// parent's intern table before inserting into its own.
type Builder struct {
	parent             *Builder
	graph              *graphState
	table              map[uint64][]*Node
	currentPredecessor *Node
}

type graphState struct {
	nextID uint32
	logger *zap.Logger
}

// NewBuilder creates a root builder.
func NewBuilder(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		graph: &graphState{logger: logger},
		table: make(map[uint64][]*Node),
	}
}

// NewChild creates a builder for a diverging control region. The child starts
// without a current predecessor.
func (b *Builder) NewChild() *Builder {
	return &Builder{
		parent: b,
		graph:  b.graph,
		table:  make(map[uint64][]*Node),
	}
}

func (b *Builder) Parent() *Builder { return b.parent }

// Root returns the outermost builder of the chain.
func (b *Builder) Root() *Builder {
	root := b
	for root.parent != nil {
		root = root.parent
	}
	return root
}

func (b *Builder) CurrentPredecessor() *Node { return b.currentPredecessor }

// SetCurrentPredecessor resets the control cursor, e.g. to nil when starting a
// fresh control region.
func (b *Builder) SetCurrentPredecessor(node *Node) { b.currentPredecessor = node }

func (b *Builder) Logger() *zap.Logger { return b.graph.logger }

func (b *Builder) newNode(kind *Kind, derivation Derivation, positional []interface{}, named map[string]interface{}) *Node {
	node := newNode(kind, derivation, positional, named)
	b.graph.nextID++
	node.id = b.graph.nextID
	return node
}

// Build constructs a node from positional values and routes it through
// unification and control threading.
func (b *Builder) Build(kind *Kind, derivation Derivation, values ...interface{}) *Node {
	return b.BuildValue(kind, derivation, values...).Node
}

// BuildNamed constructs a node from named values.
func (b *Builder) BuildNamed(kind *Kind, derivation Derivation, values map[string]interface{}) *Node {
	return b.finish(b.newNode(kind, derivation, nil, values)).Node
}

// BuildValue is Build returning the unification outcome.
func (b *Builder) BuildValue(kind *Kind, derivation Derivation, values ...interface{}) UnifiedValue {
	return b.finish(b.newNode(kind, derivation, values, nil))
}

// ForSyntaxExpansionBuild builds a node derived from a syntax expansion of source.
func (b *Builder) ForSyntaxExpansionBuild(algorithm string, source *Node, kind *Kind, values ...interface{}) *Node {
	return b.Build(kind, ExpandedFrom(algorithm, SyntaxExpansion, source), values...)
}

// Rebuild constructs a node with explicitly given values for every slot.
// Pure-data nodes are interned, but sequencing predecessors are taken as given
// and the control cursor is left untouched.
func (b *Builder) Rebuild(kind *Kind, derivation Derivation, values []interface{}) *Node {
	node := b.newNode(kind, derivation, values, nil)
	if node.IsPureDataNode() {
		return b.Unify(node).Node
	}
	return node
}

func (b *Builder) finish(node *Node) UnifiedValue {
	if node.IsPureDataNode() {
		if node.kind.Has(FlagMaybePure) {
			// Interned applications do not take part in control ordering.
			node.values[node.kind.mustSlotIndex("predecessor")] = (*Node)(nil)
		}
		return b.Unify(node)
	}
	if node.IsSequencingNode() {
		if index, ok := node.kind.SlotIndex("predecessor"); ok && node.values[index] == (*Node)(nil) {
			node.values[index] = b.currentPredecessor
		}
		b.currentPredecessor = node
	}
	return UnifiedValue{Node: node, Derivation: node.derivation}
}

// Unify interns node, returning the existing structurally equal node if any.
func (b *Builder) Unify(node *Node) UnifiedValue {
	if existing := b.lookup(node); existing != nil {
		return UnifiedValue{
			Node:       existing,
			Derivation: &UnificationDerivation{Original: node, Unified: existing},
		}
	}
	hash := node.UnificationHash()
	b.table[hash] = append(b.table[hash], node)
	return UnifiedValue{Node: node, Derivation: node.derivation}
}

func (b *Builder) lookup(node *Node) *Node {
	hash := node.UnificationHash()
	for builder := b; builder != nil; builder = builder.parent {
		for _, candidate := range builder.table[hash] {
			if candidate.UnificationEquals(node) {
				return candidate
			}
		}
	}
	return nil
}
