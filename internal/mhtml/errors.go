package mhtml

import "fmt"

// StructuralError reports a fatal defect in the MHTML structure: a missing or
// invalid header, a missing boundary, an orphaned header continuation line,
// an unexpected end of input, or the absence of a text/html index part.
// Structural errors abort the whole parse; there is no partial result.
type StructuralError struct {
	Line int
	Msg  string
}

func (e *StructuralError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("mhtml: %s (line %d)", e.Msg, e.Line)
	}
	return "mhtml: " + e.Msg
}

func structuralErrorf(line int, format string, args ...interface{}) error {
	return &StructuralError{Line: line, Msg: fmt.Sprintf(format, args...)}
}
