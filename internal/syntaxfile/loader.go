// Package syntaxfile loads syntax graphs written as YAML documents. It stands
// in for the parser: every mapping is one syntax node whose keys name the
// slots of its kind.
//
//	kind: SyntaxMessageSend
//	receiver: {integer: 1}
//	selector: {symbol: +}
//	arguments:
//	  - {integer: 2}
//
// The kind name may omit the "Syntax" prefix. Mappings with a single shorthand
// key (identifier, integer, float, character, string, symbol) denote the
// corresponding literal or identifier. A list in place of a node is a
// SyntaxSequence of its elements.
package syntaxfile

import (
	"math/big"
	"os"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/funvibe/sysmel/internal/asg"
	"github.com/funvibe/sysmel/internal/diagnostics"
	"github.com/funvibe/sysmel/internal/token"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const kindKey = "kind"

var shorthands = map[string]*asg.Kind{
	"identifier": asg.SyntaxIdentifier,
	"integer":    asg.SyntaxLiteralInteger,
	"float":      asg.SyntaxLiteralFloat,
	"character":  asg.SyntaxLiteralCharacter,
	"string":     asg.SyntaxLiteralString,
	"symbol":     asg.SyntaxLiteralSymbol,
}

// Loader converts YAML documents into syntax nodes. Nodes are built in
// document order and each one records the previously built node as its
// syntactic predecessor.
type Loader struct {
	builder     *asg.Builder
	source      *token.SourceCode
	predecessor *asg.Node
	errors      diagnostics.List
}

func NewLoader(builder *asg.Builder, source *token.SourceCode) *Loader {
	return &Loader{builder: builder, source: source}
}

// LoadFile reads and loads the syntax graph stored at path.
func LoadFile(builder *asg.Builder, path string) (*asg.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading syntax file %s", path)
	}
	return NewLoader(builder, token.NewSourceCode(path)).Load(data)
}

// Load parses data and returns the root syntax node. Every malformed node is
// reported; the returned error combines all of them.
func (l *Loader) Load(data []byte) (*asg.Node, error) {
	var document yaml.Node
	if err := yaml.Unmarshal(data, &document); err != nil {
		l.errors.Add(diagnostics.NewError(diagnostics.ErrS001, token.At(l.source, 1, 1), err.Error()))
		return nil, l.errors.Err()
	}
	if document.Kind != yaml.DocumentNode || len(document.Content) == 0 {
		l.errors.Add(diagnostics.NewError(diagnostics.ErrS001, token.At(l.source, 1, 1), "empty syntax document"))
		return nil, l.errors.Err()
	}
	return l.loadNode(document.Content[0]), l.errors.Err()
}

// loadSequence treats a list as the elements of a sequence.
func (l *Loader) loadSequence(node *yaml.Node) *asg.Node {
	elements := make([]*asg.Node, 0, len(node.Content))
	for _, element := range node.Content {
		if loaded := l.loadNode(element); loaded != nil {
			elements = append(elements, loaded)
		}
	}
	result := l.builder.Build(asg.SyntaxSequence, asg.FromSource(l.positionOf(node)), l.predecessor, elements)
	l.predecessor = result
	return result
}

// Diagnostics returns the loading errors, ordered by position.
func (l *Loader) Diagnostics() []*diagnostics.DiagnosticError {
	return l.errors.Sorted()
}

func (l *Loader) positionOf(node *yaml.Node) token.Position {
	return token.At(l.source, node.Line, node.Column)
}

func (l *Loader) fail(node *yaml.Node, code diagnostics.ErrorCode, format string, args ...interface{}) {
	l.errors.Add(diagnostics.NewErrorf(code, l.positionOf(node), format, args...))
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}

// loadNode converts one mapping into a syntax node, or nil after reporting.
func (l *Loader) loadNode(node *yaml.Node) *asg.Node {
	node = resolveAlias(node)
	switch {
	case node.Kind == yaml.ScalarNode && node.Tag == "!!null":
		return nil
	case node.Kind == yaml.SequenceNode:
		return l.loadSequence(node)
	case node.Kind != yaml.MappingNode:
		l.fail(node, diagnostics.ErrS001, "expected a mapping describing a syntax node")
		return nil
	}

	fields := make(map[string]*yaml.Node, len(node.Content)/2)
	var keys []string
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		fields[key] = node.Content[i+1]
		keys = append(keys, key)
	}

	kind, ok := l.kindOf(node, fields)
	if !ok {
		return nil
	}

	values := make(map[string]interface{}, len(fields))
	for _, key := range keys {
		if key == kindKey {
			continue
		}
		slotName := key
		if _, isShorthand := shorthands[key]; isShorthand && len(fields) == 1 {
			slotName = "value"
		}
		index, ok := kind.SlotIndex(slotName)
		if !ok || kind.Slots[index].Role == asg.RoleSyntacticPredecessor {
			l.fail(fields[key], diagnostics.ErrS003, "%s has no attribute %s", kind.Name, key)
			continue
		}
		if value, ok := l.loadValue(kind, kind.Slots[index], fields[key]); ok {
			values[slotName] = value
		}
	}

	values["syntacticPredecessor"] = l.predecessor
	result := l.builder.BuildNamed(kind, asg.FromSource(l.positionOf(node)), values)
	l.predecessor = result
	return result
}

func (l *Loader) kindOf(node *yaml.Node, fields map[string]*yaml.Node) (*asg.Kind, bool) {
	if len(fields) == 1 {
		for key := range fields {
			if kind, ok := shorthands[key]; ok {
				return kind, true
			}
		}
	}
	kindNode, ok := fields[kindKey]
	if !ok {
		l.fail(node, diagnostics.ErrS002, "syntax node without a kind")
		return nil, false
	}
	kind := syntaxKindNamed(kindNode.Value)
	if kind == nil {
		l.fail(kindNode, diagnostics.ErrS002, "unknown syntax node kind %s", kindNode.Value)
		return nil, false
	}
	return kind, true
}

func syntaxKindNamed(name string) *asg.Kind {
	for _, candidate := range []string{name, "Syntax" + name} {
		if kind, ok := asg.KindNamed(candidate); ok && kind.IsSyntax() && !kind.IsAbstract() {
			return kind
		}
	}
	return nil
}

// SyntaxKindNames lists the kinds a document may use, sorted.
func SyntaxKindNames() []string {
	var names []string
	for _, kind := range asg.Kinds() {
		if kind.IsSyntax() && !kind.IsAbstract() {
			names = append(names, kind.Name)
		}
	}
	sort.Strings(names)
	return names
}

func (l *Loader) loadValue(kind *asg.Kind, slot asg.Slot, node *yaml.Node) (interface{}, bool) {
	node = resolveAlias(node)
	if slot.Role.IsEdge() {
		if !slot.Many {
			return l.loadNode(node), true
		}
		if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
			return []*asg.Node(nil), true
		}
		if node.Kind != yaml.SequenceNode {
			l.fail(node, diagnostics.ErrS003, "%s.%s expects a list of nodes", kind.Name, slot.Name)
			return nil, false
		}
		elements := make([]*asg.Node, 0, len(node.Content))
		for _, element := range node.Content {
			if loaded := l.loadNode(element); loaded != nil {
				elements = append(elements, loaded)
			}
		}
		return elements, true
	}

	if node.Kind != yaml.ScalarNode {
		l.fail(node, diagnostics.ErrS003, "%s.%s expects a scalar", kind.Name, slot.Name)
		return nil, false
	}
	switch slot.ValueType {
	case asg.ValueBigInt:
		value, ok := new(big.Int).SetString(node.Value, 0)
		if !ok {
			l.fail(node, diagnostics.ErrS003, "%s.%s: invalid integer %q", kind.Name, slot.Name, node.Value)
			return nil, false
		}
		return value, true
	case asg.ValueInt:
		// Quoted single characters denote their code point.
		if r, size := utf8.DecodeRuneInString(node.Value); node.Tag == "!!str" && r != utf8.RuneError && size == len(node.Value) {
			return int64(r), true
		}
		if value, err := strconv.ParseInt(node.Value, 0, 64); err == nil {
			return value, true
		}
		l.fail(node, diagnostics.ErrS003, "%s.%s: invalid integer or character %q", kind.Name, slot.Name, node.Value)
		return nil, false
	case asg.ValueFloat:
		value, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			l.fail(node, diagnostics.ErrS003, "%s.%s: invalid float %q", kind.Name, slot.Name, node.Value)
			return nil, false
		}
		return value, true
	case asg.ValueBool:
		var value bool
		if err := node.Decode(&value); err != nil {
			l.fail(node, diagnostics.ErrS003, "%s.%s: invalid boolean %q", kind.Name, slot.Name, node.Value)
			return nil, false
		}
		return value, true
	}
	return node.Value, true
}

// Load loads data with a fresh loader.
func Load(builder *asg.Builder, source *token.SourceCode, data []byte) (*asg.Node, error) {
	return NewLoader(builder, source).Load(data)
}
