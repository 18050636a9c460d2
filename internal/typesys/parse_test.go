package typesys

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseString_Grammar(t *testing.T) {
	table, errs := Resolve(map[string]*Decl{"handle": {Alias: true}})
	require.Empty(t, errs)

	cases := []struct {
		in   string
		want string
	}{
		{"integer", "integer"},
		{" string ", "string"},
		{"list<number>", "list<number>"},
		{"mapping<string, integer>", "mapping<string,integer>"},
		{"tuple<string, number, boolean>", "(string, number, boolean)"},
		{"integer|string", "integer|string"},
		{"list<integer|string>", "list<integer|string>"},
		{"mapping<string, list<handle>>", "mapping<string,list<handle>>"},
	}
	for _, tc := range cases {
		typ, err := table.ResolveString(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, typ.String(), "input %q", tc.in)
	}
}

func TestParseString_Errors(t *testing.T) {
	cases := []string{
		"",
		"list<>",
		"list<a,b>",
		"mapping<string>",
		"tuple<>",
		"set<string>",
		"list<string",
		"we|rd<",
	}
	for _, in := range cases {
		_, err := ParseString(in)
		assert.Error(t, err, "input %q should not parse", in)
	}
}

func TestParseString_DepthLimit(t *testing.T) {
	deep := strings.Repeat("list<", 20) + "string" + strings.Repeat(">", 20)
	_, err := ParseString(deep)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nesting too deep")
}

func TestResolveString_UnknownName(t *testing.T) {
	table, errs := Resolve(nil)
	require.Empty(t, errs)

	_, err := table.ResolveString("list<mystery>")
	var unknownErr *UnknownTypeError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "mystery", unknownErr.Name)
}
