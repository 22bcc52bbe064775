package asg

import "github.com/funvibe/sysmel/internal/token"

// Derivation records why a node exists and how to recover its source position.
type Derivation interface {
	SourcePosition() token.Position
}

// SourceCodeDerivation marks a node parsed directly from source.
type SourceCodeDerivation struct {
	Position token.Position
}

func (d *SourceCodeDerivation) SourcePosition() token.Position { return d.Position }

// FromSource wraps a concrete source position.
func FromSource(position token.Position) Derivation {
	return &SourceCodeDerivation{Position: position}
}

// ExpansionKind distinguishes the rewrites that may produce a node.
type ExpansionKind int

const (
	SyntaxExpansion ExpansionKind = iota
	CoercionExpansion
	MacroExpansion
	ReductionExpansion
)

func (k ExpansionKind) String() string {
	switch k {
	case CoercionExpansion:
		return "coercion"
	case MacroExpansion:
		return "macro"
	case ReductionExpansion:
		return "reduction"
	default:
		return "syntax"
	}
}

// ExpansionDerivation marks a node produced by an algorithm while rewriting Source.
type ExpansionDerivation struct {
	Algorithm string
	Kind      ExpansionKind
	Source    *Node
	Macro     *Node // The macro value, for macro expansions
}

// SourcePosition resolves lazily to the position of the triggering node.
func (d *ExpansionDerivation) SourcePosition() token.Position {
	if d.Source == nil {
		return token.EmptyPosition
	}
	return d.Source.Derivation().SourcePosition()
}

func ExpandedFrom(algorithm string, kind ExpansionKind, source *Node) Derivation {
	return &ExpansionDerivation{Algorithm: algorithm, Kind: kind, Source: source}
}

func MacroExpandedFrom(algorithm string, source, macro *Node) Derivation {
	return &ExpansionDerivation{Algorithm: algorithm, Kind: MacroExpansion, Source: source, Macro: macro}
}

// UnificationDerivation records that Original was replaced by the interned Unified node.
type UnificationDerivation struct {
	Original *Node
	Unified  *Node
}

func (d *UnificationDerivation) SourcePosition() token.Position {
	return d.Original.Derivation().SourcePosition()
}

type noDerivation struct{}

func (noDerivation) SourcePosition() token.Position { return token.EmptyPosition }

// NoDerivation is used for built-in nodes that have no source.
var NoDerivation Derivation = noDerivation{}
