package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenize(t *testing.T, input string) []Token {
	t.Helper()
	toks, err := NewLexer(input).Tokenize()
	require.NoError(t, err)
	return toks
}

func TestLexerLeadingEqualsConsumedFromPosition(t *testing.T) {
	toks := tokenize(t, "=A1")
	require.Len(t, toks, 2)
	assert.Equal(t, TokenCellAddress, toks[0].Kind)
	assert.Equal(t, 1, toks[0].Pos)
}

func TestLexerNumberForms(t *testing.T) {
	cases := map[string]string{
		"1":       "1",
		"1.5":     "1.5",
		"1e10":    "1e10",
		"1e+10":   "1e+10",
		"1.5e-3":  "1.5e-3",
		".5":      ".5",
		"50%":     "50%",
	}
	for input, want := range cases {
		t.Run(input, func(t *testing.T) {
			toks := tokenize(t, input)
			require.GreaterOrEqual(t, len(toks), 1)
			assert.Equal(t, TokenNumber, toks[0].Kind)
			assert.Equal(t, want, toks[0].Value)
		})
	}
}

func TestLexerPercentNotAbsorbedBeforeDigit(t *testing.T) {
	// "5%3" is modulo, not a percent literal followed by a number.
	toks := tokenize(t, "5%3")
	require.Len(t, toks, 4)
	assert.Equal(t, TokenNumber, toks[0].Kind)
	assert.Equal(t, "5", toks[0].Value)
	assert.Equal(t, TokenOperator, toks[1].Kind)
	assert.Equal(t, "%", toks[1].Value)
}

func TestLexerStringEscapedQuote(t *testing.T) {
	toks := tokenize(t, `"say ""hi"""`)
	require.Len(t, toks, 2)
	assert.Equal(t, TokenString, toks[0].Kind)
	assert.Equal(t, `say "hi"`, toks[0].Value)
}

func TestLexerUnterminatedString(t *testing.T) {
	_, err := NewLexer(`"unterminated`).Tokenize()
	assert.Error(t, err)
}

func TestLexerFunctionVsCellAddress(t *testing.T) {
	toks := tokenize(t, "SUM(A1)")
	require.Len(t, toks, 5)
	assert.Equal(t, TokenFunction, toks[0].Kind)
	assert.Equal(t, "SUM", toks[0].Value)
	assert.Equal(t, TokenCellAddress, toks[2].Kind)
}

func TestLexerBooleanLiterals(t *testing.T) {
	toks := tokenize(t, "TRUE")
	require.Len(t, toks, 2)
	assert.Equal(t, TokenBoolean, toks[0].Kind)
	assert.Equal(t, "TRUE", toks[0].Value)
}

func TestLexerQuotedSheetReference(t *testing.T) {
	toks := tokenize(t, "'My Sheet'!A1")
	require.Len(t, toks, 2)
	assert.Equal(t, TokenCellAddress, toks[0].Kind)
	assert.Equal(t, "'My Sheet'!A1", toks[0].Value)
}

func TestLexerTwoCharOperators(t *testing.T) {
	for _, op := range []string{"<=", ">=", "<>", "=="} {
		t.Run(op, func(t *testing.T) {
			toks := tokenize(t, "1"+op+"2")
			require.Len(t, toks, 4)
			assert.Equal(t, TokenOperator, toks[1].Kind)
			assert.Equal(t, op, toks[1].Value)
		})
	}
}

func TestLexerErrorLiterals(t *testing.T) {
	for _, lit := range []string{"#VALUE!", "#REF!", "#NAME?", "#DIV/0!", "#NULL!", "#N/A", "#NUM!", "#ERROR!"} {
		t.Run(lit, func(t *testing.T) {
			toks := tokenize(t, lit)
			require.GreaterOrEqual(t, len(toks), 1)
			assert.Equal(t, TokenErrorLiteral, toks[0].Kind)
			assert.Equal(t, lit, toks[0].Value)
		})
	}
}

func TestLexerUnknownErrorLiteral(t *testing.T) {
	_, err := NewLexer("#BOGUS!").Tokenize()
	assert.Error(t, err)
}

func TestLexerArrayLiteralPunctuation(t *testing.T) {
	toks := tokenize(t, "{1,2;3,4}")
	kinds := make([]TokenKind, 0, len(toks))
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	assert.Contains(t, kinds, TokenLeftBrace)
	assert.Contains(t, kinds, TokenRightBrace)
	assert.Contains(t, kinds, TokenSemicolon)
}

func TestLexerUnexpectedCharacter(t *testing.T) {
	_, err := NewLexer("1 ~ 2").Tokenize()
	assert.Error(t, err)
}
