package asg

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring"
	"github.com/cespare/xxhash/v2"
	"github.com/funvibe/sysmel/internal/diagnostics"
)

// Node is a vertex of the semantic graph. Nodes are immutable once built;
// rewriting always produces a new node.
type Node struct {
	id         uint32
	kind       *Kind
	derivation Derivation
	values     []interface{}

	hash      uint64
	hashReady bool
	betaDeps  *roaring.Bitmap
}

// newNode fills the slots of kind from positional values followed by named values.
func newNode(kind *Kind, derivation Derivation, positional []interface{}, named map[string]interface{}) *Node {
	if kind.IsAbstract() {
		diagnostics.Fatalf("cannot construct a node of abstract kind %s", kind.Name)
	}
	if len(positional) > len(kind.Slots) {
		diagnostics.Fatalf("too many attributes for %s: %d given, %d declared", kind.Name, len(positional), len(kind.Slots))
	}
	if derivation == nil {
		derivation = NoDerivation
	}

	values := make([]interface{}, len(kind.Slots))
	for i, slot := range kind.Slots {
		values[i] = slot.zeroValue()
	}
	for i, value := range positional {
		values[i] = normalizeValue(kind, kind.Slots[i], value)
	}
	for name, value := range named {
		index := kind.mustSlotIndex(name)
		values[index] = normalizeValue(kind, kind.Slots[index], value)
	}
	return &Node{kind: kind, derivation: derivation, values: values}
}

// normalizeValue coerces convenient Go values into the canonical slot representation.
func normalizeValue(kind *Kind, slot Slot, value interface{}) interface{} {
	if slot.Role == RoleOpaque {
		return value
	}
	if slot.Role.IsEdge() {
		if slot.Many {
			switch v := value.(type) {
			case nil:
				return []*Node(nil)
			case []*Node:
				return v
			}
		} else {
			switch v := value.(type) {
			case nil:
				return (*Node)(nil)
			case *Node:
				return v
			}
		}
		diagnostics.Fatalf("attribute %s.%s expects nodes, got %T", kind.Name, slot.Name, value)
	}

	switch slot.ValueType {
	case ValueInt:
		switch v := value.(type) {
		case int:
			return int64(v)
		case int64:
			return v
		case int32:
			return int64(v)
		}
	case ValueBigInt:
		switch v := value.(type) {
		case *big.Int:
			return v
		case int:
			return big.NewInt(int64(v))
		case int64:
			return big.NewInt(v)
		}
	case ValueFloat:
		switch v := value.(type) {
		case float64:
			return v
		case float32:
			return float64(v)
		}
	case ValueString:
		if v, ok := value.(string); ok {
			return v
		}
	case ValueBool:
		if v, ok := value.(bool); ok {
			return v
		}
	}
	diagnostics.Fatalf("attribute %s.%s cannot hold %T", kind.Name, slot.Name, value)
	return nil
}

func (n *Node) ID() uint32             { return n.id }
func (n *Node) Kind() *Kind            { return n.kind }
func (n *Node) Derivation() Derivation { return n.derivation }
func (n *Node) IsA(kind *Kind) bool    { return n != nil && n.kind.IsA(kind) }

// Values returns a copy of the construction attribute values in slot order.
func (n *Node) Values() []interface{} {
	result := make([]interface{}, len(n.values))
	copy(result, n.values)
	return result
}

// Value returns the raw value of the named slot.
func (n *Node) Value(name string) interface{} {
	return n.values[n.kind.mustSlotIndex(name)]
}

// Has reports whether the kind declares the named slot.
func (n *Node) Has(name string) bool {
	_, ok := n.kind.slotIndex[name]
	return ok
}

func (n *Node) Node(name string) *Node {
	value, _ := n.Value(name).(*Node)
	return value
}

func (n *Node) Nodes(name string) []*Node {
	value, _ := n.Value(name).([]*Node)
	return value
}

func (n *Node) Int(name string) int64 {
	value, _ := n.Value(name).(int64)
	return value
}

func (n *Node) BigInt(name string) *big.Int {
	value, _ := n.Value(name).(*big.Int)
	return value
}

func (n *Node) Float(name string) float64 {
	value, _ := n.Value(name).(float64)
	return value
}

func (n *Node) Str(name string) string {
	value, _ := n.Value(name).(string)
	return value
}

func (n *Node) Bool(name string) bool {
	value, _ := n.Value(name).(bool)
	return value
}

// Type returns the type-input of a typed value, or nil for kinds without one.
func (n *Node) Type() *Node {
	if n == nil {
		return nil
	}
	index, ok := n.kind.slotIndex["type"]
	if !ok {
		return nil
	}
	value, _ := n.values[index].(*Node)
	return value
}

// Predecessor returns the single sequencing predecessor, if the kind has one.
func (n *Node) Predecessor() *Node {
	index, ok := n.kind.slotIndex["predecessor"]
	if !ok {
		return nil
	}
	value, _ := n.values[index].(*Node)
	return value
}

// IsPureDataNode reports whether the node has no control effect and can be interned.
func (n *Node) IsPureDataNode() bool {
	switch {
	case n.kind.Has(FlagMaybePure):
		return n.hasPureFunctional()
	case n.kind.IsSequencing():
		return false
	default:
		return n.kind.Has(FlagPureData)
	}
}

// IsSequencingNode reports whether the builder threads this node into the control chain.
func (n *Node) IsSequencingNode() bool {
	return n.kind.IsSequencing() && !n.IsPureDataNode()
}

func (n *Node) hasPureFunctional() bool {
	functional := n.Node("functional")
	return functional != nil && functional.IsA(LiteralPrimitiveFunction) && functional.Bool("isPure")
}

// IsPureCompileTimePrimitive reports whether the node is a primitive function
// that may be evaluated during compilation.
func (n *Node) IsPureCompileTimePrimitive() bool {
	return n != nil && n.IsA(LiteralPrimitiveFunction) && n.Bool("isPure") && n.Bool("isCompileTime")
}

// IsMacroPrimitive reports whether the node is a primitive macro.
func (n *Node) IsMacroPrimitive() bool {
	return n != nil && n.IsA(LiteralPrimitiveFunction) && n.Bool("isMacro")
}

// UnificationHash is the structural hash of the node, computed once.
// Nodes that are not interned hash by identity.
func (n *Node) UnificationHash() uint64 {
	if n.hashReady {
		return n.hash
	}
	digest := xxhash.New()
	if !n.IsPureDataNode() {
		digest.WriteString("#")
		digest.WriteString(strconv.FormatUint(uint64(n.id), 10))
		n.hash, n.hashReady = digest.Sum64(), true
		return n.hash
	}

	var scratch [8]byte
	writeUint := func(v uint64) {
		for i := 0; i < 8; i++ {
			scratch[i] = byte(v >> (8 * i))
		}
		digest.Write(scratch[:])
	}
	digest.WriteString(n.kind.Name)
	for i, slot := range n.kind.Slots {
		if !slot.Role.participatesInUnification() {
			continue
		}
		switch value := n.values[i].(type) {
		case *Node:
			if value == nil {
				writeUint(0)
			} else {
				writeUint(value.UnificationHash())
			}
		case []*Node:
			writeUint(uint64(len(value)))
			for _, element := range value {
				if element == nil {
					writeUint(0)
				} else {
					writeUint(element.UnificationHash())
				}
			}
		case int64:
			writeUint(uint64(value))
		case *big.Int:
			digest.WriteString(value.String())
		case float64:
			writeUint(math.Float64bits(value))
		case string:
			writeUint(uint64(len(value)))
			digest.WriteString(value)
		case bool:
			if value {
				writeUint(1)
			} else {
				writeUint(2)
			}
		}
	}
	n.hash, n.hashReady = digest.Sum64(), true
	return n.hash
}

// UnificationEquals compares two nodes structurally. Interned kinds compare
// by kind and attribute values; all other nodes compare by identity.
func (n *Node) UnificationEquals(other *Node) bool {
	if n == other {
		return true
	}
	if n == nil || other == nil || n.kind != other.kind {
		return false
	}
	if !n.IsPureDataNode() || !other.IsPureDataNode() {
		return false
	}
	if n.UnificationHash() != other.UnificationHash() {
		return false
	}
	for i, slot := range n.kind.Slots {
		if !slot.Role.participatesInUnification() {
			continue
		}
		if !valuesEqual(n.values[i], other.values[i]) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b interface{}) bool {
	switch av := a.(type) {
	case *Node:
		bv, _ := b.(*Node)
		return av.UnificationEquals(bv)
	case []*Node:
		bv, _ := b.([]*Node)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !av[i].UnificationEquals(bv[i]) {
				return false
			}
		}
		return true
	case *big.Int:
		bv, ok := b.(*big.Int)
		return ok && av.Cmp(bv) == 0
	default:
		return a == b
	}
}

// BetaReplaceableDependencies is the transitive set of argument and captured
// value node ids this node depends on. It is computed once per node.
func (n *Node) BetaReplaceableDependencies() *roaring.Bitmap {
	if n.betaDeps != nil {
		return n.betaDeps
	}
	set := roaring.NewBitmap()
	if n.kind.IsBetaReplaceable() {
		set.Add(n.id)
	}
	for i, slot := range n.kind.Slots {
		if !slot.Role.IsEdge() || slot.Role == RoleSyntacticPredecessor {
			continue
		}
		switch value := n.values[i].(type) {
		case *Node:
			if value != nil {
				set.Or(value.BetaReplaceableDependencies())
			}
		case []*Node:
			for _, element := range value {
				if element != nil {
					set.Or(element.BetaReplaceableDependencies())
				}
			}
		}
	}
	n.betaDeps = set
	return set
}

// PrintedDataAttributes renders the plain data attributes as "name: value" pairs.
func (n *Node) PrintedDataAttributes() []string {
	var result []string
	for i, slot := range n.kind.Slots {
		if slot.Role != RoleData {
			continue
		}
		result = append(result, slot.Name+": "+formatValue(n.values[i]))
	}
	return result
}

func formatValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strconv.Quote(v)
	case *big.Int:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	attributes := n.PrintedDataAttributes()
	if len(attributes) == 0 {
		return fmt.Sprintf("%s#%d", n.kind.Name, n.id)
	}
	return fmt.Sprintf("%s#%d(%s)", n.kind.Name, n.id, strings.Join(attributes, ", "))
}

// PrettyString is a compact, id-free description used in diagnostics.
func (n *Node) PrettyString() string {
	if n == nil {
		return "<nil>"
	}
	switch {
	case n.IsA(BaseType):
		return n.Str("name")
	case n.IsA(TypeUniverse):
		if n.Int("index") == 0 {
			return "Type"
		}
		return fmt.Sprintf("Type@%d", n.Int("index"))
	case n.IsA(ProductType):
		return "(" + joinPretty(n.Nodes("elements"), ", ") + ")"
	case n.IsA(SumType):
		return "(" + joinPretty(n.Nodes("variants"), " | ") + ")"
	case n.IsA(FunctionType), n.IsA(MacroFunctionType):
		return "(" + joinPretty(n.Nodes("arguments"), ", ") + ") => " + n.Node("resultType").PrettyString()
	case n.IsA(PiType):
		return "(" + joinPretty(n.Nodes("arguments"), ", ") + ") => " + n.Node("resultType").PrettyString()
	case n.IsA(SigmaType):
		return "(" + joinPretty(n.Nodes("arguments"), ", ") + ") ** " + n.Node("resultType").PrettyString()
	case n.IsA(Argument), n.IsA(CapturedValue):
		return n.Str("name") + ": " + n.Type().PrettyString()
	case n.IsA(LiteralInteger):
		return n.BigInt("value").String()
	case n.IsA(LiteralSymbol), n.IsA(SyntaxIdentifier), n.IsA(SyntaxLiteralSymbol):
		return n.Str("value")
	}
	return n.kind.Name
}

func joinPretty(nodes []*Node, separator string) string {
	parts := make([]string, len(nodes))
	for i, node := range nodes {
		parts[i] = node.PrettyString()
	}
	return strings.Join(parts, separator)
}
