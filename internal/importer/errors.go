package importer

import (
	"fmt"
	"strings"
)

// EmptyInputError is returned when the input has fewer than two non-empty
// lines (a header and at least one data row are required).
type EmptyInputError struct {
	Lines   int
	Preview string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("input has %d non-empty line(s), need a header and at least one row; preview: %q", e.Lines, e.Preview)
}

// SchemaRecognitionError is returned when a required column could not be
// found. Headers holds what was detected so the user can fix the file.
type SchemaRecognitionError struct {
	Headers []string
	Missing []Field
}

func (e *SchemaRecognitionError) Error() string {
	missing := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		missing[i] = string(f)
	}
	return fmt.Sprintf("required column(s) %s not found; detected headers: %s",
		strings.Join(missing, ", "), strings.Join(e.Headers, " | "))
}

// NoValidRowsError is returned when every data row was skipped.
type NoValidRowsError struct {
	DataRows int
}

func (e *NoValidRowsError) Error() string {
	return fmt.Sprintf("no valid holding rows among %d data row(s)", e.DataRows)
}

// WarningCode categorizes non-fatal parse issues.
type WarningCode string

const (
	// WarnNumericParse: a numeric cell could not be parsed and was defaulted.
	WarnNumericParse WarningCode = "NUMERIC_PARSE"
	// WarnNegative: a numeric cell was negative and was defaulted.
	WarnNegative WarningCode = "NEGATIVE_VALUE"
)

// Warning is a per-cell issue. The row is still imported.
type Warning struct {
	Code    WarningCode
	Row     int // 1-based among non-empty lines, the header is row 1
	Field   Field
	Value   string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("row %d %s=%q: %s", w.Row, w.Field, w.Value, w.Message)
}
