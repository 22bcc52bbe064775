// Package asg implements the Abstract Semantic Graph: the node model, the
// per-kind attribute descriptors, derivations, and the unification builder.
//
// Every node kind declares an ordered list of construction slots. The
// descriptor table derived from those slots drives construction, structural
// hashing and equality, dependency enumeration and printing for all kinds,
// so no kind needs hand-written boilerplate for any of these.
package asg

import (
	"math/big"

	"github.com/funvibe/sysmel/internal/diagnostics"
)

// SlotRole classifies a construction slot.
type SlotRole int

const (
	RoleData                  SlotRole = iota // Plain value: integer, string, flag
	RoleDataInput                             // Edge to a data-producing node
	RoleTypeInput                             // Edge to a type-producing node
	RoleSequencingPredecessor                 // Edge to the preceding control node
	RoleSequencingDestination                 // Edge to a control node this node transfers to
	RoleSyntacticPredecessor                  // Lexically preceding sibling syntax node
	RoleOpaque                                // Carried through rebuilds, never compared or printed
)

func (r SlotRole) String() string {
	switch r {
	case RoleData:
		return "data"
	case RoleDataInput:
		return "data-input"
	case RoleTypeInput:
		return "type-input"
	case RoleSequencingPredecessor:
		return "sequencing-predecessor"
	case RoleSequencingDestination:
		return "sequencing-destination"
	case RoleSyntacticPredecessor:
		return "syntactic-predecessor"
	default:
		return "opaque"
	}
}

// IsEdge reports whether slots with this role hold nodes.
func (r SlotRole) IsEdge() bool {
	return r != RoleData && r != RoleOpaque
}

// participatesInUnification reports whether the slot is part of a node's identity.
func (r SlotRole) participatesInUnification() bool {
	return r != RoleSyntacticPredecessor && r != RoleOpaque
}

// ValueType is the Go representation of a data slot.
type ValueType int

const (
	ValueNone ValueType = iota
	ValueInt
	ValueBigInt
	ValueFloat
	ValueString
	ValueBool
)

// Slot is one declared construction attribute of a kind.
type Slot struct {
	Name      string
	Role      SlotRole
	Many      bool // Holds an ordered []*Node instead of a single *Node
	ValueType ValueType
}

func Data(name string, valueType ValueType) Slot {
	return Slot{Name: name, Role: RoleData, ValueType: valueType}
}
func DataInput(name string) Slot  { return Slot{Name: name, Role: RoleDataInput} }
func DataInputs(name string) Slot { return Slot{Name: name, Role: RoleDataInput, Many: true} }
func TypeInput(name string) Slot  { return Slot{Name: name, Role: RoleTypeInput} }
func TypeInputs(name string) Slot { return Slot{Name: name, Role: RoleTypeInput, Many: true} }
func SequencingPredecessor(name string) Slot {
	return Slot{Name: name, Role: RoleSequencingPredecessor}
}
func SequencingPredecessors(name string) Slot {
	return Slot{Name: name, Role: RoleSequencingPredecessor, Many: true}
}
func SequencingDestination(name string) Slot {
	return Slot{Name: name, Role: RoleSequencingDestination}
}
func SyntacticPredecessorSlot() Slot {
	return Slot{Name: "syntacticPredecessor", Role: RoleSyntacticPredecessor}
}
func Opaque(name string) Slot { return Slot{Name: name, Role: RoleOpaque} }

// zeroValue is the value an unset slot holds.
func (s Slot) zeroValue() interface{} {
	if s.Role.IsEdge() {
		if s.Many {
			return []*Node(nil)
		}
		return (*Node)(nil)
	}
	switch s.ValueType {
	case ValueInt:
		return int64(0)
	case ValueBigInt:
		return new(big.Int)
	case ValueFloat:
		return float64(0)
	case ValueString:
		return ""
	case ValueBool:
		return false
	default:
		return nil
	}
}

// KindFlags describe the behavior class of a kind.
type KindFlags uint32

const (
	FlagAbstract KindFlags = 1 << iota
	FlagSyntax
	FlagTypechecked
	FlagType
	FlagLiteral
	FlagPureData        // Interned by the builder
	FlagSequencing      // Chained by the builder through its predecessor slot
	FlagMaybePure       // Sequencing kind that is interned instead when IsPureDataNode holds
	FlagBetaReplaceable // Leaf that beta substitution may replace
)

// Kind is the static descriptor of a node kind.
type Kind struct {
	Name   string
	Parent *Kind
	Flags  KindFlags
	Slots  []Slot // Inherited slots first, in declaration order

	slotIndex map[string]int
}

var kindsByName = map[string]*Kind{}

func defineKind(name string, parent *Kind, flags KindFlags, slots ...Slot) *Kind {
	if _, exists := kindsByName[name]; exists {
		diagnostics.Fatalf("node kind %s defined twice", name)
	}
	kind := &Kind{Name: name, Parent: parent, Flags: flags, slotIndex: map[string]int{}}
	if parent != nil {
		kind.Slots = append(kind.Slots, parent.Slots...)
		kind.Flags |= parent.Flags &^ FlagAbstract
	}
	kind.Slots = append(kind.Slots, slots...)
	for i, slot := range kind.Slots {
		if _, exists := kind.slotIndex[slot.Name]; exists {
			diagnostics.Fatalf("node kind %s declares slot %s twice", name, slot.Name)
		}
		kind.slotIndex[slot.Name] = i
	}
	kindsByName[name] = kind
	return kind
}

// KindNamed looks up a kind descriptor by name.
func KindNamed(name string) (*Kind, bool) {
	kind, ok := kindsByName[name]
	return kind, ok
}

// Kinds returns all registered kinds.
func Kinds() []*Kind {
	result := make([]*Kind, 0, len(kindsByName))
	for _, kind := range kindsByName {
		result = append(result, kind)
	}
	return result
}

func (k *Kind) String() string { return k.Name }

func (k *Kind) Has(flags KindFlags) bool { return k.Flags&flags == flags }

func (k *Kind) IsAbstract() bool        { return k.Flags&FlagAbstract != 0 }
func (k *Kind) IsSyntax() bool          { return k.Has(FlagSyntax) }
func (k *Kind) IsType() bool            { return k.Has(FlagType) }
func (k *Kind) IsLiteral() bool         { return k.Has(FlagLiteral) }
func (k *Kind) IsSequencing() bool      { return k.Has(FlagSequencing) }
func (k *Kind) IsBetaReplaceable() bool { return k.Has(FlagBetaReplaceable) }

// IsA reports whether k is other or inherits from it.
func (k *Kind) IsA(other *Kind) bool {
	for current := k; current != nil; current = current.Parent {
		if current == other {
			return true
		}
	}
	return false
}

// SlotIndex returns the position of the named slot.
func (k *Kind) SlotIndex(name string) (int, bool) {
	index, ok := k.slotIndex[name]
	return index, ok
}

func (k *Kind) mustSlotIndex(name string) int {
	index, ok := k.slotIndex[name]
	if !ok {
		diagnostics.Fatalf("node kind %s has no attribute named %s", k.Name, name)
	}
	return index
}

// PredecessorCount returns how many sequencing predecessors nodes of this kind
// declare: -1 when the kind has a list-valued predecessor slot.
func (k *Kind) PredecessorCount() int {
	count := 0
	for _, slot := range k.Slots {
		if slot.Role != RoleSequencingPredecessor {
			continue
		}
		if slot.Many {
			return -1
		}
		count++
	}
	return count
}
