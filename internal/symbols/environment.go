// Package symbols implements the lexical environments of the expand-and-typecheck
// algorithm. Environments form an immutable, persistent chain: adding a binding
// always produces a child environment and never mutates the parent.
package symbols

import "github.com/funvibe/sysmel/internal/asg"

type ScopeType int

const (
	ScopeTopLevel ScopeType = iota // Built-in types and primitive functions of a target
	ScopeScript                    // One top-level script
	ScopeLexical                   // A block
	ScopeFunction                  // Arguments and captures of a function
	ScopeBinding                   // A single added binding
)

// Binding associates a name with a value node.
type Binding struct {
	Name  string
	Value *asg.Node
	// Owner is the function whose analysis introduced the binding; nil for
	// top-level and script bindings.
	Owner *FunctionState
	// Captured is the enclosing-scope binding this one captures, if any.
	Captured *Binding
	// scope identifies the environment link that defined the binding. Only
	// bindings of the same scope form an overload set.
	scope interface{}
}

// IsCapture reports whether the binding was synthesized by automatic capture.
func (b *Binding) IsCapture() bool { return b.Captured != nil }

// OverloadSet returns the leading bindings of a lookup result that were
// defined by the same scope as the nearest one. Anything past them is shadowed.
func OverloadSet(bindings []*Binding) []*Binding {
	if len(bindings) == 0 {
		return nil
	}
	count := 1
	for count < len(bindings) && bindings[count].scope == bindings[0].scope {
		count++
	}
	return bindings[:count]
}

// Environment is one link of the lexical scope chain.
type Environment interface {
	Scope() ScopeType
	Parent() Environment
	// LookSymbolBindingListRecursively returns all visible bindings of name,
	// nearest first.
	LookSymbolBindingListRecursively(name string) []*Binding
	TopLevelTargetEnvironment() *TopLevelEnvironment
	// FunctionState returns the state of the nearest enclosing function, or nil.
	FunctionState() *FunctionState
}

// ChildWithSymbolBinding returns a new environment that adds one binding on top of env.
func ChildWithSymbolBinding(env Environment, name string, value *asg.Node) Environment {
	child := &bindingEnvironment{parent: env}
	child.binding = &Binding{Name: name, Value: value, Owner: env.FunctionState(), scope: child}
	return child
}

// bindingEnvironment is the persistent-chain link created by ChildWithSymbolBinding.
type bindingEnvironment struct {
	parent  Environment
	binding *Binding
}

func (e *bindingEnvironment) Scope() ScopeType    { return ScopeBinding }
func (e *bindingEnvironment) Parent() Environment { return e.parent }
func (e *bindingEnvironment) TopLevelTargetEnvironment() *TopLevelEnvironment {
	return e.parent.TopLevelTargetEnvironment()
}
func (e *bindingEnvironment) FunctionState() *FunctionState { return e.parent.FunctionState() }

func (e *bindingEnvironment) LookSymbolBindingListRecursively(name string) []*Binding {
	outer := e.parent.LookSymbolBindingListRecursively(name)
	if e.binding.Name != name {
		return outer
	}
	return append([]*Binding{e.binding}, outer...)
}

// LexicalEnvironment opens a block scope.
type LexicalEnvironment struct {
	parent Environment
}

func NewLexicalEnvironment(parent Environment) *LexicalEnvironment {
	return &LexicalEnvironment{parent: parent}
}

func (e *LexicalEnvironment) Scope() ScopeType    { return ScopeLexical }
func (e *LexicalEnvironment) Parent() Environment { return e.parent }
func (e *LexicalEnvironment) TopLevelTargetEnvironment() *TopLevelEnvironment {
	return e.parent.TopLevelTargetEnvironment()
}
func (e *LexicalEnvironment) FunctionState() *FunctionState { return e.parent.FunctionState() }
func (e *LexicalEnvironment) LookSymbolBindingListRecursively(name string) []*Binding {
	return e.parent.LookSymbolBindingListRecursively(name)
}

// ScriptEnvironment adds the bindings describing the script being compiled.
type ScriptEnvironment struct {
	parent          Environment
	ScriptName      string
	ScriptDirectory string
	bindings        map[string]*Binding
}

func NewScriptEnvironment(parent Environment, scriptName, scriptDirectory string) *ScriptEnvironment {
	return &ScriptEnvironment{
		parent:          parent,
		ScriptName:      scriptName,
		ScriptDirectory: scriptDirectory,
		bindings:        make(map[string]*Binding),
	}
}

// bind is used while the script environment is being set up, before it is shared.
func (e *ScriptEnvironment) bind(name string, value *asg.Node) {
	e.bindings[name] = &Binding{Name: name, Value: value, scope: e}
}

func (e *ScriptEnvironment) Scope() ScopeType    { return ScopeScript }
func (e *ScriptEnvironment) Parent() Environment { return e.parent }
func (e *ScriptEnvironment) TopLevelTargetEnvironment() *TopLevelEnvironment {
	return e.parent.TopLevelTargetEnvironment()
}
func (e *ScriptEnvironment) FunctionState() *FunctionState { return nil }
func (e *ScriptEnvironment) LookSymbolBindingListRecursively(name string) []*Binding {
	outer := e.parent.LookSymbolBindingListRecursively(name)
	if binding, ok := e.bindings[name]; ok {
		return append([]*Binding{binding}, outer...)
	}
	return outer
}
