// Package token describes where in the source code a graph node came from.
package token

import (
	"fmt"
	"path/filepath"
)

// SourceCode identifies one source file (or in-memory script) of a compilation.
type SourceCode struct {
	Name      string // File name, or a descriptive name for in-memory code
	Directory string // Directory used to resolve relative imports
	Language  string
}

// NewSourceCode creates a source code descriptor from a file path.
func NewSourceCode(path string) *SourceCode {
	return &SourceCode{
		Name:      filepath.Base(path),
		Directory: filepath.Dir(path),
		Language:  "sysmel",
	}
}

// Position is a span inside a source code.
// The zero value is the empty position.
type Position struct {
	SourceCode  *SourceCode
	StartIndex  int
	EndIndex    int
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int
}

// EmptyPosition is returned by derivations that cannot name a source location.
var EmptyPosition = Position{}

// IsEmpty reports whether the position points nowhere.
func (p Position) IsEmpty() bool {
	return p.SourceCode == nil && p.StartLine == 0 && p.StartColumn == 0
}

// At returns a single-character position at line:column.
func At(source *SourceCode, line, column int) Position {
	return Position{
		SourceCode:  source,
		StartLine:   line,
		StartColumn: column,
		EndLine:     line,
		EndColumn:   column + 1,
	}
}

func (p Position) String() string {
	if p.IsEmpty() {
		return "<no position>"
	}
	name := "<unknown>"
	if p.SourceCode != nil {
		name = p.SourceCode.Name
	}
	return fmt.Sprintf("%s:%d:%d", name, p.StartLine, p.StartColumn)
}
