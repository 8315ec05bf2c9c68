package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Token
	}{
		{
			name:  "identifiers and symbols",
			input: "SELECT * FROM users",
			want: []Token{
				{TokenIdentifier, "SELECT"},
				{TokenSymbol, "*"},
				{TokenIdentifier, "FROM"},
				{TokenIdentifier, "users"},
				{TokenEnd, ""},
			},
		},
		{
			name:  "qualified column",
			input: "u.name",
			want: []Token{
				{TokenIdentifier, "u"},
				{TokenSymbol, "."},
				{TokenIdentifier, "name"},
				{TokenEnd, ""},
			},
		},
		{
			name:  "number run",
			input: "id = 42",
			want: []Token{
				{TokenIdentifier, "id"},
				{TokenSymbol, "="},
				{TokenNumber, "42"},
				{TokenEnd, ""},
			},
		},
		{
			name:  "multi character operators win over single",
			input: "a <= b <> c >= d < e > f",
			want: []Token{
				{TokenIdentifier, "a"},
				{TokenSymbol, "<="},
				{TokenIdentifier, "b"},
				{TokenSymbol, "<>"},
				{TokenIdentifier, "c"},
				{TokenSymbol, ">="},
				{TokenIdentifier, "d"},
				{TokenSymbol, "<"},
				{TokenIdentifier, "e"},
				{TokenSymbol, ">"},
				{TokenIdentifier, "f"},
				{TokenEnd, ""},
			},
		},
		{
			name:  "string literal",
			input: "name = 'Alice'",
			want: []Token{
				{TokenIdentifier, "name"},
				{TokenSymbol, "="},
				{TokenString, "Alice"},
				{TokenEnd, ""},
			},
		},
		{
			name:  "doubled quote unescapes",
			input: "'O''Brien'",
			want: []Token{
				{TokenString, "O'Brien"},
				{TokenEnd, ""},
			},
		},
		{
			name:  "empty string literal",
			input: "''",
			want: []Token{
				{TokenString, ""},
				{TokenEnd, ""},
			},
		},
		{
			name:  "identifier case and underscores preserved",
			input: "Select user_id FROM Users_2",
			want: []Token{
				{TokenIdentifier, "Select"},
				{TokenIdentifier, "user_id"},
				{TokenIdentifier, "FROM"},
				{TokenIdentifier, "Users_2"},
				{TokenEnd, ""},
			},
		},
		{
			name:  "minus is its own token",
			input: "-7",
			want: []Token{
				{TokenSymbol, "-"},
				{TokenNumber, "7"},
				{TokenEnd, ""},
			},
		},
		{
			name:  "whitespace variants",
			input: "a\t=\n1",
			want: []Token{
				{TokenIdentifier, "a"},
				{TokenSymbol, "="},
				{TokenNumber, "1"},
				{TokenEnd, ""},
			},
		},
		{
			name:  "empty input",
			input: "",
			want:  []Token{{TokenEnd, ""}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tokenize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"unterminated string", "'abc", "Unterminated string literal"},
		{"unterminated after escape", "'a''", "Unterminated string literal"},
		{"unknown character", "a @ b", `Unexpected character: "@"`},
		{"unknown character hash", "#", `Unexpected character: "#"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			require.Error(t, err)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
