package importer

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Delimiters lists the candidate field separators in priority order.
var Delimiters = []rune{'\t', ',', ';'}

var lineBreak = regexp.MustCompile(`\r?\n`)

// Detection is the result of delimiter detection.
type Detection struct {
	Delimiter rune
	Headers   []string
	Lines     []string // non-empty lines, header first
}

// DelimiterName returns a printable name for d.
func DelimiterName(d rune) string {
	if d == '\t' {
		return "TAB"
	}
	return string(d)
}

// SplitLines splits text on line breaks and drops blank lines.
func SplitLines(text string) []string {
	var lines []string
	for _, l := range lineBreak.Split(text, -1) {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// DetectDelimiter picks the candidate that splits the header line into the
// most columns. Ties keep the earlier candidate. The header is then
// tokenized like a data row so quoted cells line up with the data.
func DetectDelimiter(text string) (*Detection, error) {
	lines := SplitLines(strings.TrimPrefix(text, "\ufeff"))
	if len(lines) < 2 {
		return nil, &EmptyInputError{Lines: len(lines), Preview: preview(text, 50)}
	}

	best := Delimiters[0]
	maxCols := 0
	for _, d := range Delimiters {
		if n := len(strings.Split(lines[0], string(d))); n > maxCols {
			maxCols = n
			best = d
		}
	}

	return &Detection{
		Delimiter: best,
		Headers:   SplitRow(lines[0], best),
		Lines:     lines,
	}, nil
}

func cleanCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = cleanCell(c)
	}
	return out
}

func cleanCell(c string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.TrimSpace(c), `"`, ""))
}

func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
