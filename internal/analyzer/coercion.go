package analyzer

import (
	"fmt"

	"github.com/funvibe/sysmel/internal/asg"
	"github.com/funvibe/sysmel/internal/diagnostics"
	"github.com/funvibe/sysmel/internal/evaluator"
)

type coercionRule int

const (
	coercionImpossible coercionRule = iota
	coercionIdentity
	coercionInjectSum
	coercionLiteral
	coercionUniverse
)

// coercionRuleFor decides how a value of valueType becomes a targetType.
func (a *Analyzer) coercionRuleFor(value, valueType, targetType *asg.Node) coercionRule {
	switch {
	case targetType == nil || valueType == nil:
		return coercionIdentity
	case value != nil && value.IsA(asg.Error), valueType.IsA(asg.BottomType):
		return coercionIdentity
	case valueType.UnificationEquals(targetType):
		return coercionIdentity
	case targetType.IsA(asg.TypeUniverse) && valueType.IsA(asg.TypeUniverse) &&
		valueType.Int("index") <= targetType.Int("index"):
		return coercionUniverse
	case targetType.IsA(asg.SumType) && sumVariantIndex(targetType, valueType) >= 0:
		return coercionInjectSum
	case value != nil && value.IsA(asg.LiteralInteger) && isNumericType(targetType):
		return coercionLiteral
	}
	return coercionImpossible
}

func isNumericType(typ *asg.Node) bool {
	return typ.IsA(asg.PrimitiveIntegerType) || typ.IsA(asg.PrimitiveCharacterType) || typ.IsA(asg.PrimitiveFloatType)
}

func sumVariantIndex(sum, variant *asg.Node) int {
	for i, candidate := range sum.Nodes("variants") {
		if candidate.UnificationEquals(variant) {
			return i
		}
	}
	return -1
}

// canCoerce reports whether value converts to targetType without errors.
func (a *Analyzer) canCoerce(value, targetType *asg.Node) bool {
	return a.coercionRuleFor(value, a.typeOf(value), targetType) != coercionImpossible
}

// coerce converts value to targetType, reporting a type mismatch at source
// when no conversion exists.
func (a *Analyzer) coerce(value, targetType, source *asg.Node) *asg.Node {
	valueType := a.typeOf(value)
	derivation := asg.ExpandedFrom(algorithmName, asg.CoercionExpansion, value)
	switch a.coercionRuleFor(value, valueType, targetType) {
	case coercionIdentity, coercionUniverse:
		return value
	case coercionInjectSum:
		return a.builder.Build(asg.InjectSum, derivation, targetType, sumVariantIndex(targetType, valueType), value)
	case coercionLiteral:
		return evaluator.NumericLiteral(a.builder, derivation, targetType, value.BigInt("value"))
	}
	return a.makeError(source, diagnostics.ErrA002,
		fmt.Sprintf("type mismatch: expected %s, got %s", targetType.PrettyString(), valueType.PrettyString()), value)
}
