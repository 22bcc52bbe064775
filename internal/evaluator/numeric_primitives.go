package evaluator

import (
	"math"
	"math/big"

	"github.com/funvibe/sysmel/internal/asg"
)

// NumericTypes groups the built-in types the numeric primitive menu is generated for.
type NumericTypes struct {
	Integers   []*asg.Node // Integer and the sized PrimitiveIntegerTypes
	Characters []*asg.Node
	Floats     []*asg.Node
	Boolean    *asg.Node
}

func (t NumericTypes) all() []*asg.Node {
	result := append([]*asg.Node{}, t.Integers...)
	result = append(result, t.Characters...)
	return append(result, t.Floats...)
}

type integerOperation func(x, y *big.Int) *big.Int
type floatOperation func(x, y float64) float64

var integerArithmetic = map[string]integerOperation{
	"+": func(x, y *big.Int) *big.Int { return new(big.Int).Add(x, y) },
	"-": func(x, y *big.Int) *big.Int { return new(big.Int).Sub(x, y) },
	"*": func(x, y *big.Int) *big.Int { return new(big.Int).Mul(x, y) },
	"/": func(x, y *big.Int) *big.Int {
		if y.Sign() == 0 {
			return nil
		}
		return new(big.Int).Quo(x, y)
	},
	"//": floorDivide,
	"%": func(x, y *big.Int) *big.Int {
		if y.Sign() == 0 {
			return nil
		}
		return new(big.Int).Rem(x, y)
	},
	"&": func(x, y *big.Int) *big.Int { return new(big.Int).And(x, y) },
	"|": func(x, y *big.Int) *big.Int { return new(big.Int).Or(x, y) },
	"^": func(x, y *big.Int) *big.Int { return new(big.Int).Xor(x, y) },
	"<<": func(x, y *big.Int) *big.Int {
		if y.Sign() < 0 || !y.IsInt64() || y.Int64() > 4096 {
			return nil
		}
		return new(big.Int).Lsh(x, uint(y.Int64()))
	},
	">>": func(x, y *big.Int) *big.Int {
		if y.Sign() < 0 || !y.IsInt64() {
			return nil
		}
		return new(big.Int).Rsh(x, uint(y.Int64()))
	},
}

var floatArithmetic = map[string]floatOperation{
	"+": func(x, y float64) float64 { return x + y },
	"-": func(x, y float64) float64 { return x - y },
	"*": func(x, y float64) float64 { return x * y },
	"/": func(x, y float64) float64 { return x / y },
}

var comparisons = map[string]func(order int) bool{
	"=":  func(order int) bool { return order == 0 },
	"~=": func(order int) bool { return order != 0 },
	"<":  func(order int) bool { return order < 0 },
	"<=": func(order int) bool { return order <= 0 },
	">":  func(order int) bool { return order > 0 },
	">=": func(order int) bool { return order >= 0 },
}

// arithmeticOrder and comparisonOrder keep the generated menu deterministic.
var (
	arithmeticOrder = []string{"+", "-", "*", "/", "//", "%", "&", "|", "^", "<<", ">>"}
	comparisonOrder = []string{"=", "~=", "<", "<=", ">", ">="}
)

func floorDivide(x, y *big.Int) *big.Int {
	if y.Sign() == 0 {
		return nil
	}
	quotient, remainder := new(big.Int).QuoRem(x, y, new(big.Int))
	if remainder.Sign() != 0 && remainder.Sign() != y.Sign() {
		quotient.Sub(quotient, big.NewInt(1))
	}
	return quotient
}

// NumericPrimitives generates the arithmetic, comparison and conversion menu.
func NumericPrimitives(types NumericTypes) []PrimitiveDefinition {
	var result []PrimitiveDefinition
	pure := func(name string, arguments []*asg.Node, resultType *asg.Node, fold FoldFunc) PrimitiveDefinition {
		return PrimitiveDefinition{
			Name:           name,
			ArgumentTypes:  arguments,
			ResultType:     resultType,
			IsPure:         true,
			IsCompileTime:  true,
			Implementation: &Implementation{Fold: fold},
		}
	}

	for _, typ := range append(append([]*asg.Node{}, types.Integers...), types.Characters...) {
		for _, name := range arithmeticOrder {
			result = append(result, pure(name, []*asg.Node{typ, typ}, typ, foldIntegerBinary(integerArithmetic[name])))
		}
		result = append(result, pure("negated", []*asg.Node{typ}, typ, foldIntegerNegated))
	}
	for _, typ := range types.Floats {
		for _, name := range []string{"+", "-", "*", "/"} {
			result = append(result, pure(name, []*asg.Node{typ, typ}, typ, foldFloatBinary(floatArithmetic[name])))
		}
		result = append(result, pure("negated", []*asg.Node{typ}, typ, foldFloatNegated))
	}
	for _, typ := range types.all() {
		for _, name := range comparisonOrder {
			result = append(result, pure(name, []*asg.Node{typ, typ}, types.Boolean, foldComparison(comparisons[name])))
		}
	}
	for _, source := range types.all() {
		for _, target := range types.all() {
			name := "as" + target.Str("name")
			result = append(result, pure(name, []*asg.Node{source}, target, foldConversion))
		}
	}
	return result
}

func integerOperand(node *asg.Node) (*big.Int, bool) {
	switch {
	case node.IsA(asg.LiteralInteger):
		return node.BigInt("value"), true
	case node.IsA(asg.LiteralCharacter):
		return big.NewInt(node.Int("value")), true
	}
	return nil, false
}

func floatOperand(node *asg.Node) (float64, bool) {
	switch {
	case node.IsA(asg.LiteralFloat):
		return node.Float("value"), true
	case node.IsA(asg.LiteralInteger):
		value, _ := new(big.Float).SetInt(node.BigInt("value")).Float64()
		return value, true
	case node.IsA(asg.LiteralCharacter):
		return float64(node.Int("value")), true
	}
	return 0, false
}

// WrapInteger truncates value to the width of a sized integer type.
func WrapInteger(value *big.Int, typ *asg.Node) *big.Int {
	if !typ.IsA(asg.PrimitiveIntegerType) && !typ.IsA(asg.PrimitiveCharacterType) {
		return value
	}
	bits := uint(typ.Int("size") * 8)
	if bits == 0 {
		return value
	}
	modulus := new(big.Int).Lsh(big.NewInt(1), bits)
	wrapped := new(big.Int).Mod(value, modulus)
	if typ.IsA(asg.PrimitiveIntegerType) && typ.Bool("isSigned") {
		half := new(big.Int).Rsh(modulus, 1)
		if wrapped.Cmp(half) >= 0 {
			wrapped.Sub(wrapped, modulus)
		}
	}
	return wrapped
}

// NumericLiteral builds a literal of typ holding value.
func NumericLiteral(builder *asg.Builder, derivation asg.Derivation, typ *asg.Node, value *big.Int) *asg.Node {
	value = WrapInteger(value, typ)
	switch {
	case typ.IsA(asg.PrimitiveFloatType):
		floatValue, _ := new(big.Float).SetInt(value).Float64()
		return FloatLiteral(builder, derivation, typ, floatValue)
	case typ.IsA(asg.PrimitiveCharacterType):
		return builder.Build(asg.LiteralCharacter, derivation, typ, value.Int64())
	default:
		return builder.Build(asg.LiteralInteger, derivation, typ, value)
	}
}

// FloatLiteral builds a float literal, rounding to single precision for 32-bit types.
func FloatLiteral(builder *asg.Builder, derivation asg.Derivation, typ *asg.Node, value float64) *asg.Node {
	if typ.Int("size") == 4 {
		value = float64(float32(value))
	}
	return builder.Build(asg.LiteralFloat, derivation, typ, value)
}

func foldIntegerBinary(operation integerOperation) FoldFunc {
	return func(builder *asg.Builder, derivation asg.Derivation, resultType *asg.Node, arguments []*asg.Node) *asg.Node {
		x, okX := integerOperand(arguments[0])
		y, okY := integerOperand(arguments[1])
		if !okX || !okY {
			return nil
		}
		value := operation(x, y)
		if value == nil {
			return nil
		}
		return NumericLiteral(builder, derivation, resultType, value)
	}
}

func foldIntegerNegated(builder *asg.Builder, derivation asg.Derivation, resultType *asg.Node, arguments []*asg.Node) *asg.Node {
	x, ok := integerOperand(arguments[0])
	if !ok {
		return nil
	}
	return NumericLiteral(builder, derivation, resultType, new(big.Int).Neg(x))
}

func foldFloatBinary(operation floatOperation) FoldFunc {
	return func(builder *asg.Builder, derivation asg.Derivation, resultType *asg.Node, arguments []*asg.Node) *asg.Node {
		x, okX := floatOperand(arguments[0])
		y, okY := floatOperand(arguments[1])
		if !okX || !okY {
			return nil
		}
		return FloatLiteral(builder, derivation, resultType, operation(x, y))
	}
}

func foldFloatNegated(builder *asg.Builder, derivation asg.Derivation, resultType *asg.Node, arguments []*asg.Node) *asg.Node {
	x, ok := floatOperand(arguments[0])
	if !ok {
		return nil
	}
	return FloatLiteral(builder, derivation, resultType, -x)
}

func foldComparison(predicate func(order int) bool) FoldFunc {
	return func(builder *asg.Builder, derivation asg.Derivation, resultType *asg.Node, arguments []*asg.Node) *asg.Node {
		var order int
		if x, ok := integerOperand(arguments[0]); ok {
			y, ok := integerOperand(arguments[1])
			if !ok {
				return nil
			}
			order = x.Cmp(y)
		} else {
			x, okX := floatOperand(arguments[0])
			y, okY := floatOperand(arguments[1])
			if !okX || !okY || math.IsNaN(x) || math.IsNaN(y) {
				return nil
			}
			switch {
			case x < y:
				order = -1
			case x > y:
				order = 1
			}
		}
		return BooleanLiteral(builder, derivation, resultType, predicate(order))
	}
}

func foldConversion(builder *asg.Builder, derivation asg.Derivation, resultType *asg.Node, arguments []*asg.Node) *asg.Node {
	if resultType.IsA(asg.PrimitiveFloatType) {
		value, ok := floatOperand(arguments[0])
		if !ok {
			return nil
		}
		return FloatLiteral(builder, derivation, resultType, value)
	}
	if value, ok := integerOperand(arguments[0]); ok {
		return NumericLiteral(builder, derivation, resultType, value)
	}
	value, ok := floatOperand(arguments[0])
	if !ok || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil
	}
	integer, _ := big.NewFloat(math.Trunc(value)).Int(nil)
	return NumericLiteral(builder, derivation, resultType, integer)
}

// BooleanLiteral builds an injection of False or True into the Boolean sum type.
func BooleanLiteral(builder *asg.Builder, derivation asg.Derivation, booleanType *asg.Node, value bool) *asg.Node {
	index := 0
	if value {
		index = 1
	}
	variant := booleanType.Nodes("variants")[index]
	unit := builder.Build(asg.LiteralUnit, derivation, variant)
	return builder.Build(asg.InjectSum, derivation, booleanType, index, unit)
}
