package config

const SyntaxFileExt = ".yaml"

// SyntaxFileExtensions are all recognized syntax graph document extensions
var SyntaxFileExtensions = []string{".yaml", ".yml", ".sysmel-asg"}

// Built-in type names
const (
	IntegerTypeName   = "Integer"
	VoidTypeName      = "Void"
	AbortTypeName     = "Abort"
	FalseTypeName     = "False"
	TrueTypeName      = "True"
	BooleanTypeName   = "Boolean"
	SymbolTypeName    = "Symbol"
	StringTypeName    = "String"
	SizeTypeName      = "Size"
	UIntPtrTypeName   = "UIntPointer"
	IntPtrTypeName    = "IntPointer"
	TypeUniverseName  = "Type"
	ASTNodeTypeName   = "ASTNode"
	Float32TypeName   = "Float32"
	Float64TypeName   = "Float64"
	Char32TypeName    = "Char32"
	DefaultFloatType  = Float64TypeName
	DefaultCharType   = Char32TypeName
	FalseLiteralName  = "false"
	TrueLiteralName   = "true"
	VoidLiteralName   = "void"
)

// Built-in macro selectors
const (
	IfThenSelector     = "if:then:"
	IfThenElseSelector = "if:then:else:"
	AssignSelector     = ":="
	ApplySelector      = "()"
)

// Script environment bindings
const (
	SourceFileBinding      = "__SourceFile__"
	SourceDirectoryBinding = "__SourceDirectory__"
	ScriptNameBinding      = "__ScriptName__"
)

// HasSyntaxFileExt reports whether path carries a syntax document extension.
func HasSyntaxFileExt(path string) bool {
	for _, ext := range SyntaxFileExtensions {
		if len(path) > len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}
