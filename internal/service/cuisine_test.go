package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/snapdish/backend/internal/model"
)

func TestPickCuisineDeterministic(t *testing.T) {
	for _, id := range []string{"scan-a", "scan-b", "0f2c1d"} {
		first := PickCuisine(id, cuisineStyles)
		second := PickCuisine(id, cuisineStyles)
		assert.Equal(t, first, second, "id %q", id)
	}
}

func TestPickCuisineReturnsListedOption(t *testing.T) {
	options := []string{"Italian", "Thai", "Mexican"}
	for i := 0; i < 100; i++ {
		picked := PickCuisine(fmt.Sprintf("scan-%d", i), options)
		assert.Contains(t, options, picked)
	}

	// Empty identifier falls back to a random but still listed option.
	assert.Contains(t, options, PickCuisine("", options))
	assert.Equal(t, "", PickCuisine("scan-a", nil))
}

func TestPickCuisineRoughlyUniform(t *testing.T) {
	counts := make(map[string]int)
	const samples = 2000
	for i := 0; i < samples; i++ {
		counts[PickCuisine(fmt.Sprintf("scan-%d", i), cuisineStyles)]++
	}

	// Every option gets hit, and none dominates.
	assert.Len(t, counts, len(cuisineStyles))
	for cuisine, n := range counts {
		assert.Greater(t, n, samples/len(cuisineStyles)/3, "cuisine %s starved", cuisine)
		assert.Less(t, n, samples*3/len(cuisineStyles), "cuisine %s dominates", cuisine)
	}
}

func TestHasMeatSignal(t *testing.T) {
	tests := []struct {
		name  string
		prefs model.Preferences
		want  bool
	}{
		{"empty", model.Preferences{}, false},
		{"vegetables only", model.Preferences{ExtraIngredientsText: "tomatoes, basil, mozzarella"}, false},
		{"chicken in extras", model.Preferences{ExtraIngredientsText: "some leftover Chicken thighs"}, true},
		{"seafood in goals", model.Preferences{NutritionGoals: model.StringArray{"more salmon"}}, true},
		{"meat in meal type", model.Preferences{MealType: "steak night"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasMeatSignal(tt.prefs))
		})
	}
}
