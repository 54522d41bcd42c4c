package service

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFreeTextRemovesDigitsAndUnits(t *testing.T) {
	out := SanitizeFreeText("2) Mix 1/2 cup flour at 350°F for 10 minutes")
	assert.Equal(t, "Mix flour at for", out)
}

func TestSanitizeFreeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain prose untouched", "Stir the sauce until it thickens.", "Stir the sauce until it thickens."},
		{"decimals", "Add 1.5 tbsp of oil", "Add of oil"},
		{"fractions", "Use 3/4 of the dough", "Use of the dough"},
		{"celsius", "Bake at 180 degrees celsius until golden", "Bake at until golden"},
		{"bare degree sign", "Roast at 220° until crisp", "Roast at until crisp"},
		{"hours and grams", "Rest 2 hours then add 50 g of butter", "Rest then add of butter"},
		{"whitespace collapse", "Simmer    gently,  then   serve", "Simmer gently, then serve"},
		{"unit words only when whole words", "A cupful of gratitude", "A cupful of gratitude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFreeText(tt.in))
		})
	}
}

func TestSanitizeFreeTextStripsListNumbering(t *testing.T) {
	in := "1. Chop the onions\n2) Saute them gently\n- Finish with parsley"
	out := SanitizeFreeText(in)
	assert.Equal(t, "Chop the onions Saute them gently Finish with parsley", out)
}

func TestSanitizeFreeTextNeverLeaksDigits(t *testing.T) {
	inputs := []string{
		"Mix 12 eggs with 350 ml milk and bake for 45 minutes at 220°C",
		"3 1/2 cups, 0.25 l, 100g: everything must go",
		"Step 1: do the thing. Step 2: do it 10 more times.",
	}
	digit := regexp.MustCompile(`\d`)
	for _, in := range inputs {
		out := SanitizeFreeText(in)
		assert.NotRegexp(t, digit, out, "input %q", in)
	}
}
