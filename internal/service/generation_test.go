package service

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapdish/backend/internal/model"
)

// fakeVision implements VisionAPI without network access.
type fakeVision struct {
	response    string
	uploadErr   error
	generateErr error

	lastPrompt string
	lastSchema map[string]interface{}
}

func (f *fakeVision) UploadImage(ctx context.Context, path, mimeType string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return "files/fake-upload", nil
}

func (f *fakeVision) GenerateJSON(ctx context.Context, prompt, fileURI, mimeType string, schema map[string]interface{}) (string, error) {
	f.lastPrompt = prompt
	f.lastSchema = schema
	if f.generateErr != nil {
		return "", f.generateErr
	}
	return f.response, nil
}

func testScan() *model.Scan {
	return &model.Scan{
		ID:       "scan-1",
		DeviceID: "device-1",
		Preferences: model.Preferences{
			MealType:             "dinner",
			ExtraIngredientsText: "leftover chicken",
		},
	}
}

func TestGenerateFreeRecipe(t *testing.T) {
	fake := &fakeVision{response: `{"title":"Rustic Skillet","ingredients":["chicken","peppers"],"recipe":"Sear the chicken, then soften the peppers and let everything mingle."}`}
	gen := NewRecipeGenerator(fake)

	result, err := gen.Generate(context.Background(), testScan(), false, "unused.jpg")
	require.NoError(t, err)
	require.NotNil(t, result.Free)
	assert.Nil(t, result.Premium)
	assert.Equal(t, "Rustic Skillet", result.Free.Title)
	assert.Equal(t, []string{"chicken", "peppers"}, result.Free.Ingredients)

	assert.Equal(t, "free_recipe", fake.lastSchema["title"])
	assert.Contains(t, fake.lastPrompt, "professional chef")
	assert.Contains(t, fake.lastPrompt, "leftover chicken")
	assert.Contains(t, fake.lastPrompt, "centerpiece")
}

func TestGenerateFreeRecipeSanitizesProse(t *testing.T) {
	fake := &fakeVision{response: `{"title":"Omelette","ingredients":["eggs"],"recipe":"1. Whisk 3 eggs\n2. Cook for 5 minutes at 180 degrees"}`}
	gen := NewRecipeGenerator(fake)

	result, err := gen.Generate(context.Background(), testScan(), false, "unused.jpg")
	require.NoError(t, err)
	assert.NotRegexp(t, regexp.MustCompile(`\d`), result.Free.Recipe)
	assert.NotContains(t, result.Free.Recipe, "minutes")
}

func TestGenerateToleratesCodeFence(t *testing.T) {
	fake := &fakeVision{response: "```json\n{\"title\":\"Salad\",\"ingredients\":[\"greens\"],\"recipe\":\"Toss everything together.\"}\n```"}
	gen := NewRecipeGenerator(fake)

	result, err := gen.Generate(context.Background(), testScan(), false, "unused.jpg")
	require.NoError(t, err)
	assert.Equal(t, "Salad", result.Free.Title)
}

func TestGenerateNoFoodDetected(t *testing.T) {
	// Short-circuits before structural validation on both tiers.
	for _, premium := range []bool{false, true} {
		fake := &fakeVision{response: `{"noFoodDetected":true,"title":"","ingredients":[],"recipe":""}`}
		gen := NewRecipeGenerator(fake)

		_, err := gen.Generate(context.Background(), testScan(), premium, "unused.jpg")
		assert.ErrorIs(t, err, ErrNoFoodDetected, "premium=%v", premium)
	}
}

func TestGenerateBadOutput(t *testing.T) {
	tests := []struct {
		name     string
		premium  bool
		response string
	}{
		{"not json", false, "the model rambled instead"},
		{"missing recipe field", false, `{"title":"X","ingredients":["a"]}`},
		{"mistyped ingredients", false, `{"title":"X","ingredients":"not a list","recipe":"Fine prose."}`},
		{"empty prose after sanitize", false, `{"title":"X","ingredients":["a"],"recipe":"350 10 1/2"}`},
		{"empty ingredient names", false, `{"title":"X","ingredients":["  "],"recipe":"Fine prose."}`},
		{"premium missing macros", true, `{"title":"X","ingredients":[{"item":"a","amount":"1 cup"}],"steps":["s"],"servings":2,"timeMinutes":30}`},
		{"premium zero servings", true, `{"title":"X","ingredients":[{"item":"a","amount":"1 cup"}],"steps":["s"],"servings":0,"timeMinutes":30,"macros":{"calories":1,"proteinGrams":1,"carbsGrams":1,"fatGrams":1}}`},
		{"premium mistyped steps", true, `{"title":"X","ingredients":[{"item":"a","amount":"1 cup"}],"steps":"do it","servings":2,"timeMinutes":30,"macros":{"calories":1,"proteinGrams":1,"carbsGrams":1,"fatGrams":1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := NewRecipeGenerator(&fakeVision{response: tt.response})
			_, err := gen.Generate(context.Background(), testScan(), tt.premium, "unused.jpg")
			assert.ErrorIs(t, err, ErrBadAIOutput)
		})
	}
}

func TestGeneratePremiumRecipe(t *testing.T) {
	fake := &fakeVision{response: `{
		"title": "Chicken Cacciatore",
		"ingredients": [{"item":"chicken thighs","amount":"600 g"},{"item":"crushed tomatoes","amount":"400 g"}],
		"steps": ["Brown the chicken for 6 minutes.", "Simmer in tomatoes for 25 minutes."],
		"servings": 4,
		"timeMinutes": 45,
		"macros": {"calories": 520, "proteinGrams": 42, "carbsGrams": 18, "fatGrams": 28}
	}`}
	gen := NewRecipeGenerator(fake)

	result, err := gen.Generate(context.Background(), testScan(), true, "unused.jpg")
	require.NoError(t, err)
	require.NotNil(t, result.Premium)
	assert.Nil(t, result.Free)
	assert.Equal(t, "Chicken Cacciatore", result.Premium.Title)
	assert.Len(t, result.Premium.Ingredients, 2)
	assert.Equal(t, float64(4), result.Premium.Servings)
	assert.Equal(t, float64(520), result.Premium.Macros.Calories)

	assert.Equal(t, "premium_recipe", fake.lastSchema["title"])
}

func TestGenerateUploadFailureIsNotClassified(t *testing.T) {
	gen := NewRecipeGenerator(&fakeVision{uploadErr: errors.New("connection refused")})

	_, err := gen.Generate(context.Background(), testScan(), false, "unused.jpg")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBadAIOutput)
	assert.NotErrorIs(t, err, ErrNoFoodDetected)
}

func TestGenerateCuisineStableAcrossRetries(t *testing.T) {
	fake := &fakeVision{response: `{"title":"A","ingredients":["a"],"recipe":"Fine prose."}`}
	gen := NewRecipeGenerator(fake)
	scan := testScan()

	_, err := gen.Generate(context.Background(), scan, false, "unused.jpg")
	require.NoError(t, err)
	first := fake.lastPrompt

	_, err = gen.Generate(context.Background(), scan, false, "unused.jpg")
	require.NoError(t, err)
	assert.Equal(t, first, fake.lastPrompt)
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripCodeFence(tt.in))
	}
}
