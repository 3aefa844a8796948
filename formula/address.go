package formula

import (
	"strconv"
	"strings"
)

// MaxColumn is XFD, the last column spreadsheet applications conventionally
// support (base-26 letters, 3-letter ceiling).
const MaxColumn = 16383

// CellAddress identifies a single cell or one endpoint of a range. Column and
// row are zero-based internally; the textual form is 1-based for rows and
// base-26 letter-encoded (A=0 .. XFD=16383) for columns.
type CellAddress struct {
	Column          int
	Row             int
	ColumnAbsolute  bool
	RowAbsolute     bool
	SheetName       string // empty when the formula did not qualify the reference
	ColumnOnly      bool   // true for endpoint forms like "A" in "A:A"
	RowOnly         bool   // true for endpoint forms like "1" in "1:1"
}

// ColumnToLetters converts a zero-based column index to its base-26 letter
// form (0 -> "A", 25 -> "Z", 26 -> "AA", ...).
func ColumnToLetters(col int) string {
	col++ // switch to 1-based for the repeated-modulo algorithm
	var letters []byte
	for col > 0 {
		col--
		letters = append([]byte{byte('A' + col%26)}, letters...)
		col /= 26
	}
	return string(letters)
}

// LettersToColumn converts a base-26 column letter run (case-insensitive) to
// a zero-based column index. Returns false if s is not composed entirely of
// ASCII letters or is empty.
func LettersToColumn(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	col := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
			c -= 'a' - 'A'
		case c >= 'A' && c <= 'Z':
			// already upper
		default:
			return 0, false
		}
		col = col*26 + int(c-'A'+1)
	}
	return col - 1, true
}

// splitSheetPrefix peels off an optional "Sheet!" or "'Sheet Name'!" prefix.
func splitSheetPrefix(s string) (sheet string, rest string) {
	if len(s) > 0 && s[0] == '\'' {
		end := strings.Index(s[1:], "'")
		if end >= 0 {
			end += 1
			if end+1 < len(s) && s[end+1] == '!' {
				return s[1:end], s[end+2:]
			}
		}
	}
	idx := strings.Index(s, "!")
	if idx < 0 {
		return "", s
	}
	return s[:idx], s[idx+1:]
}

// QuoteSheetName wraps a sheet name in single quotes if it contains anything
// besides letters, digits, and underscores.
func QuoteSheetName(name string) string {
	plain := true
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_') {
			plain = false
			break
		}
	}
	if plain && name != "" {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// ParseAddress parses a single-cell reference such as "A1", "$B$2", or
// "Sheet1!C3" into a CellAddress. It does not accept ranges or column/row-only
// forms (use ParseRangeEndpoint for those).
func ParseAddress(text string) (CellAddress, error) {
	sheet, rest := splitSheetPrefix(text)
	addr, err := parseSingleCell(rest)
	if err != nil {
		return CellAddress{}, err
	}
	addr.SheetName = sheet
	return addr, nil
}

// ParseRangeEndpoint parses one endpoint of a range, which may be a full
// cell reference, a bare column ("A", "$A"), or a bare row ("1", "$1").
func ParseRangeEndpoint(text string) (CellAddress, error) {
	sheet, rest := splitSheetPrefix(text)
	addr, err := parseEndpoint(rest)
	if err != nil {
		return CellAddress{}, err
	}
	addr.SheetName = sheet
	return addr, nil
}

func parseSingleCell(s string) (CellAddress, error) {
	addr, err := parseEndpoint(s)
	if err != nil {
		return CellAddress{}, err
	}
	if addr.ColumnOnly || addr.RowOnly {
		return CellAddress{}, &ParseError{Message: "expected a full cell reference: " + s}
	}
	return addr, nil
}

// parseEndpoint accepts "$?COL$?ROW", "$?COL", or "$?ROW" (sheet prefix
// already stripped).
func parseEndpoint(s string) (CellAddress, error) {
	if s == "" {
		return CellAddress{}, &ParseError{Message: "empty cell reference"}
	}

	i := 0
	var addr CellAddress

	if i < len(s) && s[i] == '$' {
		addr.ColumnAbsolute = true
		i++
	}

	letterStart := i
	for i < len(s) && isASCIILetter(s[i]) {
		i++
	}
	letters := s[letterStart:i]

	if letters == "" {
		// must be a row-only reference: $?DIGITS
		if addr.ColumnAbsolute {
			// the '$' belonged to the row in "$1"
			addr.ColumnAbsolute = false
			addr.RowAbsolute = true
		}
		digits := s[i:]
		row, err := parseRowDigits(digits)
		if err != nil {
			return CellAddress{}, err
		}
		addr.Row = row
		addr.RowOnly = true
		return addr, nil
	}

	col, ok := LettersToColumn(letters)
	if !ok || col > MaxColumn {
		return CellAddress{}, &ParseError{Message: "invalid column: " + letters}
	}
	addr.Column = col

	if i < len(s) && s[i] == '$' {
		addr.RowAbsolute = true
		i++
	}

	if i == len(s) {
		addr.ColumnOnly = true
		return addr, nil
	}

	row, err := parseRowDigits(s[i:])
	if err != nil {
		return CellAddress{}, err
	}
	addr.Row = row
	return addr, nil
}

func parseRowDigits(digits string) (int, error) {
	if digits == "" {
		return 0, &ParseError{Message: "missing row number"}
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, &ParseError{Message: "invalid row number: " + digits}
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return 0, &ParseError{Message: "invalid row number: " + digits}
	}
	return n - 1, nil
}

func isASCIILetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// String renders the address back to A1-style text, restoring sheet
// quoting and absolute markers.
func (a CellAddress) String() string {
	var b strings.Builder
	if a.SheetName != "" {
		b.WriteString(QuoteSheetName(a.SheetName))
		b.WriteByte('!')
	}
	if !a.RowOnly {
		if a.ColumnAbsolute {
			b.WriteByte('$')
		}
		b.WriteString(ColumnToLetters(a.Column))
	}
	if !a.ColumnOnly {
		if a.RowAbsolute {
			b.WriteByte('$')
		}
		b.WriteString(strconv.Itoa(a.Row + 1))
	}
	return b.String()
}
