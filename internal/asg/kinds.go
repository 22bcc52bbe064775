package asg

// Abstract roots of the kind hierarchy.
var (
	KindNode          = defineKind("Node", nil, FlagAbstract)
	KindSyntax        = defineKind("SyntaxNode", KindNode, FlagAbstract|FlagSyntax, SyntacticPredecessorSlot())
	KindTypechecked   = defineKind("TypecheckedNode", KindNode, FlagAbstract|FlagTypechecked)
	KindTypedValue    = defineKind("TypedValueNode", KindTypechecked, FlagAbstract, TypeInput("type"))
	KindTypeNode      = defineKind("TypeNode", KindTypechecked, FlagAbstract|FlagType|FlagPureData)
	KindSequencingOps = defineKind("SequencingNode", KindTypechecked, FlagAbstract|FlagSequencing)
)

// Syntax kinds, produced by the front end and by macro expansion.
var (
	SyntaxLiteralInteger   = defineKind("SyntaxLiteralInteger", KindSyntax, 0, Data("value", ValueBigInt))
	SyntaxLiteralFloat     = defineKind("SyntaxLiteralFloat", KindSyntax, 0, Data("value", ValueFloat))
	SyntaxLiteralCharacter = defineKind("SyntaxLiteralCharacter", KindSyntax, 0, Data("value", ValueInt))
	SyntaxLiteralString    = defineKind("SyntaxLiteralString", KindSyntax, 0, Data("value", ValueString))
	SyntaxLiteralSymbol    = defineKind("SyntaxLiteralSymbol", KindSyntax, 0, Data("value", ValueString))
	SyntaxIdentifier       = defineKind("SyntaxIdentifier", KindSyntax, 0, Data("value", ValueString))
	SyntaxError            = defineKind("SyntaxError", KindSyntax, 0,
		Data("message", ValueString), DataInputs("innerNodes"))
	SyntaxApplication = defineKind("SyntaxApplication", KindSyntax, 0,
		DataInput("functional"), DataInputs("arguments"), Data("kind", ValueString))
	SyntaxMessageSend = defineKind("SyntaxMessageSend", KindSyntax, 0,
		DataInput("receiver"), DataInput("selector"), DataInputs("arguments"))
	SyntaxAssignment  = defineKind("SyntaxAssignment", KindSyntax, 0, DataInput("store"), DataInput("value"))
	SyntaxBindableName = defineKind("SyntaxBindableName", KindSyntax, 0,
		DataInput("typeExpression"), DataInput("nameExpression"),
		Data("isImplicit", ValueBool), Data("isExistential", ValueBool), Data("isVariadic", ValueBool),
		Data("isMutable", ValueBool), Data("hasPostTypeExpression", ValueBool))
	SyntaxBindPattern = defineKind("SyntaxBindPattern", KindSyntax, 0,
		DataInput("pattern"), DataInput("value"), Data("allowsRebind", ValueBool))
	SyntaxBindingDefinition = defineKind("SyntaxBindingDefinition", KindSyntax, 0,
		DataInput("typeExpression"), DataInput("nameExpression"), DataInput("valueExpression"),
		Data("isMutable", ValueBool), Data("isPublic", ValueBool))
	SyntaxArgument = defineKind("SyntaxArgument", KindSyntax, 0,
		Data("isImplicit", ValueBool), Data("isExistential", ValueBool), Data("isVariadic", ValueBool),
		DataInput("typeExpression"), DataInput("nameExpression"))
	SyntaxFunctionalDependentType = defineKind("SyntaxFunctionalDependentType", KindSyntax, 0,
		DataInput("argumentPattern"), DataInput("resultType"))
	SyntaxPi = defineKind("SyntaxPi", KindSyntax, 0,
		DataInputs("arguments"), Data("isVariadic", ValueBool), DataInput("resultType"))
	SyntaxSigma = defineKind("SyntaxSigma", KindSyntax, 0,
		DataInputs("arguments"), DataInput("resultType"))
	SyntaxLambda = defineKind("SyntaxLambda", KindSyntax, 0,
		DataInputs("arguments"), Data("isVariadic", ValueBool), DataInput("resultType"), DataInput("body"))
	SyntaxSequence     = defineKind("SyntaxSequence", KindSyntax, 0, DataInputs("elements"))
	SyntaxTuple        = defineKind("SyntaxTuple", KindSyntax, 0, DataInputs("elements"))
	SyntaxLexicalBlock = defineKind("SyntaxLexicalBlock", KindSyntax, 0, DataInput("body"))
	SyntaxIfThenElse   = defineKind("SyntaxIfThenElse", KindSyntax, 0,
		DataInput("condition"), DataInput("trueExpression"), DataInput("falseExpression"))
)

// Typed values.
var (
	KindLiteral              = defineKind("Literal", KindTypedValue, FlagAbstract|FlagLiteral|FlagPureData)
	LiteralInteger           = defineKind("LiteralInteger", KindLiteral, 0, Data("value", ValueBigInt))
	LiteralFloat             = defineKind("LiteralFloat", KindLiteral, 0, Data("value", ValueFloat))
	LiteralCharacter         = defineKind("LiteralCharacter", KindLiteral, 0, Data("value", ValueInt))
	LiteralString            = defineKind("LiteralString", KindLiteral, 0, Data("value", ValueString))
	LiteralSymbol            = defineKind("LiteralSymbol", KindLiteral, 0, Data("value", ValueString))
	LiteralUnit              = defineKind("LiteralUnit", KindLiteral, 0)
	LiteralPrimitiveFunction = defineKind("LiteralPrimitiveFunction", KindLiteral, 0,
		Data("name", ValueString), Data("isPure", ValueBool), Data("isCompileTime", ValueBool),
		Data("isMacro", ValueBool), Opaque("implementation"))

	Argument = defineKind("Argument", KindTypedValue, FlagPureData|FlagBetaReplaceable,
		Data("index", ValueInt), Data("level", ValueInt), Data("name", ValueString),
		Data("isImplicit", ValueBool), Data("isExistential", ValueBool), Data("isVariadic", ValueBool))
	CapturedValue = defineKind("CapturedValue", KindTypedValue, FlagPureData|FlagBetaReplaceable,
		Data("index", ValueInt), Data("level", ValueInt), Data("name", ValueString))

	Tuple     = defineKind("Tuple", KindTypedValue, FlagPureData, DataInputs("elements"))
	InjectSum = defineKind("InjectSum", KindTypedValue, FlagPureData, Data("index", ValueInt), DataInput("value"))
	Lambda    = defineKind("Lambda", KindTypedValue, FlagPureData,
		DataInputs("arguments"), DataInputs("captures"), DataInputs("capturedValues"),
		SequencingDestination("entryPoint"), DataInput("result"), SequencingPredecessor("exitPoint"))
	Error = defineKind("Error", KindTypedValue, 0,
		Data("message", ValueString), DataInputs("innerNodes"))
	TopLevelScript = defineKind("TopLevelScript", KindTypedValue, 0,
		SequencingDestination("entryPoint"), DataInput("result"), SequencingPredecessor("exitPoint"))

	Application = defineKind("Application", KindTypedValue, FlagSequencing|FlagMaybePure,
		DataInput("functional"), DataInputs("arguments"), SequencingPredecessor("predecessor"))
	Phi = defineKind("Phi", KindTypedValue, FlagSequencing,
		DataInputs("values"), SequencingPredecessor("predecessor"))
	PhiValue = defineKind("PhiValue", KindTypedValue, FlagSequencing,
		DataInput("value"), SequencingPredecessor("predecessor"))
)

// Types.
var (
	BaseType               = defineKind("BaseType", KindTypeNode, 0, Data("name", ValueString), Data("size", ValueInt), Data("alignment", ValueInt))
	PrimitiveIntegerType   = defineKind("PrimitiveIntegerType", BaseType, 0, Data("isSigned", ValueBool))
	PrimitiveCharacterType = defineKind("PrimitiveCharacterType", BaseType, 0)
	PrimitiveFloatType     = defineKind("PrimitiveFloatType", BaseType, 0)
	UnitType               = defineKind("UnitType", BaseType, 0)
	BottomType             = defineKind("BottomType", BaseType, 0)
	ProductType            = defineKind("ProductType", KindTypeNode, 0, TypeInputs("elements"))
	SumType                = defineKind("SumType", KindTypeNode, 0, TypeInputs("variants"))
	PiType                 = defineKind("PiType", KindTypeNode, 0,
		DataInputs("arguments"), Data("isVariadic", ValueBool), TypeInput("resultType"))
	SigmaType = defineKind("SigmaType", KindTypeNode, 0,
		DataInputs("arguments"), TypeInput("resultType"))
	FunctionType = defineKind("FunctionType", KindTypeNode, 0,
		TypeInputs("arguments"), Data("isVariadic", ValueBool), TypeInput("resultType"))
	MacroFunctionType = defineKind("MacroFunctionType", KindTypeNode, 0,
		TypeInputs("arguments"), Data("isVariadic", ValueBool), TypeInput("resultType"))
	TypeUniverse = defineKind("TypeUniverse", KindTypeNode, 0, Data("index", ValueInt))
)

// Control-flow sequencing.
var (
	SequenceEntry     = defineKind("SequenceEntry", KindSequencingOps, 0)
	ConditionalBranch = defineKind("ConditionalBranch", KindSequencingOps, 0,
		DataInput("condition"), SequencingDestination("trueDestination"), SequencingDestination("falseDestination"),
		SequencingPredecessor("predecessor"))
	SequenceConvergence = defineKind("SequenceConvergence", KindSequencingOps, 0,
		DataInput("divergence"), SequencingPredecessors("predecessors"))
)
