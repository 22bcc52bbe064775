package symbols

import "github.com/funvibe/sysmel/internal/asg"

// FunctionState is shared by every environment link of one function analysis.
// It records the arguments and the captures synthesized for the function.
type FunctionState struct {
	Level     int64 // Function nesting depth, 0 for the outermost function
	builder   *asg.Builder
	arguments []*asg.Node
	captures  []*Capture
	byBinding map[*Binding]*Capture
}

// Capture pairs a captured enclosing-scope binding with its in-function placeholder.
type Capture struct {
	Original    *Binding
	Placeholder *asg.Node // CapturedValue node
	Binding     *Binding
}

func (s *FunctionState) Arguments() []*asg.Node {
	result := make([]*asg.Node, len(s.arguments))
	copy(result, s.arguments)
	return result
}

// Captures returns the captures in creation order.
func (s *FunctionState) Captures() []*Capture {
	result := make([]*Capture, len(s.captures))
	copy(result, s.captures)
	return result
}

// FunctionalAnalysisEnvironment is the scope of one function's arguments. Looking
// up a binding owned by an enclosing function yields a capture binding.
type FunctionalAnalysisEnvironment struct {
	parent    Environment
	state     *FunctionState
	arguments map[string]*Binding
	order     []string
}

// NewFunctionalAnalysisEnvironment opens a function scope. Placeholders for
// captured values are interned through builder.
func NewFunctionalAnalysisEnvironment(parent Environment, builder *asg.Builder) *FunctionalAnalysisEnvironment {
	level := int64(0)
	if outer := parent.FunctionState(); outer != nil {
		level = outer.Level + 1
	}
	return &FunctionalAnalysisEnvironment{
		parent: parent,
		state: &FunctionState{
			Level:     level,
			builder:   builder,
			byBinding: make(map[*Binding]*Capture),
		},
		arguments: make(map[string]*Binding),
	}
}

func (e *FunctionalAnalysisEnvironment) Scope() ScopeType    { return ScopeFunction }
func (e *FunctionalAnalysisEnvironment) Parent() Environment { return e.parent }
func (e *FunctionalAnalysisEnvironment) TopLevelTargetEnvironment() *TopLevelEnvironment {
	return e.parent.TopLevelTargetEnvironment()
}
func (e *FunctionalAnalysisEnvironment) FunctionState() *FunctionState { return e.state }

// Level is the nesting depth used for the argument nodes of this function.
func (e *FunctionalAnalysisEnvironment) Level() int64 { return e.state.Level }

// AddArgumentBinding returns a new environment of the same function that also
// binds argument under name. Anonymous arguments are recorded but not bound.
func (e *FunctionalAnalysisEnvironment) AddArgumentBinding(name string, argument *asg.Node) *FunctionalAnalysisEnvironment {
	e.state.arguments = append(e.state.arguments, argument)
	child := &FunctionalAnalysisEnvironment{
		parent:    e.parent,
		state:     e.state,
		arguments: make(map[string]*Binding, len(e.arguments)+1),
		order:     append(append([]string(nil), e.order...), name),
	}
	for argumentName, binding := range e.arguments {
		child.arguments[argumentName] = binding
	}
	if name != "" {
		child.arguments[name] = &Binding{Name: name, Value: argument, Owner: e.state, scope: e.state}
	}
	return child
}

func (e *FunctionalAnalysisEnvironment) LookSymbolBindingListRecursively(name string) []*Binding {
	var result []*Binding
	if binding, ok := e.arguments[name]; ok {
		result = append(result, binding)
	}
	for _, binding := range e.parent.LookSymbolBindingListRecursively(name) {
		if e.needsCapture(binding) {
			binding = e.captureBinding(binding)
		}
		result = append(result, binding)
	}
	return result
}

func (e *FunctionalAnalysisEnvironment) needsCapture(binding *Binding) bool {
	if binding.Owner == nil || binding.Owner == e.state {
		return false
	}
	return !IsCompileTimeConstant(binding.Value)
}

// captureBinding returns the capture binding of original, creating it once.
func (e *FunctionalAnalysisEnvironment) captureBinding(original *Binding) *Binding {
	if capture, ok := e.state.byBinding[original]; ok {
		return capture.Binding
	}
	value := original.Value
	valueType := value.Type()
	if value.Kind().IsType() {
		valueType = e.TopLevelTargetEnvironment().TypeUniverseWithIndex(0)
	}
	placeholder := e.state.builder.Build(asg.CapturedValue, asg.NoDerivation,
		valueType, int64(len(e.state.captures)), e.state.Level, original.Name)
	capture := &Capture{
		Original:    original,
		Placeholder: placeholder,
		Binding:     &Binding{Name: original.Name, Value: placeholder, Owner: e.state, Captured: original, scope: original.scope},
	}
	e.state.captures = append(e.state.captures, capture)
	e.state.byBinding[original] = capture
	return capture.Binding
}

// IsCompileTimeConstant reports whether value can be referenced from any
// function without capturing it.
func IsCompileTimeConstant(value *asg.Node) bool {
	if value == nil {
		return true
	}
	return value.IsPureDataNode() && value.BetaReplaceableDependencies().IsEmpty()
}
