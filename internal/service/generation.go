package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/snapdish/backend/internal/model"
)

var (
	// ErrNoFoodDetected means the model signaled, with high confidence, that
	// the photo contains no food. Terminal for this image.
	ErrNoFoodDetected = errors.New("no food detected in image")

	// ErrBadAIOutput means the generation service returned text that does not
	// satisfy the requested schema. Not retried by this layer.
	ErrBadAIOutput = errors.New("generation service returned unusable output")
)

// VisionAPI is the narrow contract the orchestrator needs from the external
// generation service.
type VisionAPI interface {
	UploadImage(ctx context.Context, path, mimeType string) (string, error)
	GenerateJSON(ctx context.Context, prompt, fileURI, mimeType string, schema map[string]interface{}) (string, error)
}

// RecipeGenerator turns a scan plus an entitlement tier into a validated
// GenerationResult.
type RecipeGenerator struct {
	vision VisionAPI
}

// NewRecipeGenerator creates a RecipeGenerator over the given service client.
func NewRecipeGenerator(vision VisionAPI) *RecipeGenerator {
	return &RecipeGenerator{vision: vision}
}

const imageMimeType = "image/jpeg"

// Generate uploads the scan's photo, requests a tier-constrained recipe and
// validates the result. NO_FOOD_DETECTED takes precedence over structural
// validation; all parse and shape failures classify as ErrBadAIOutput.
func (g *RecipeGenerator) Generate(ctx context.Context, scan *model.Scan, premium bool, imagePath string) (*model.GenerationResult, error) {
	cuisine := PickCuisine(scan.ID, cuisineStyles)
	meatSignal := HasMeatSignal(scan.Preferences)
	prompt := buildPrompt(scan, premium, cuisine, meatSignal)

	fileURI, err := g.vision.UploadImage(ctx, imagePath, imageMimeType)
	if err != nil {
		return nil, fmt.Errorf("image upload failed: %w", err)
	}

	schema := freeRecipeSchema()
	if premium {
		schema = premiumRecipeSchema()
	}

	raw, err := g.vision.GenerateJSON(ctx, prompt, fileURI, imageMimeType, schema)
	if err != nil {
		return nil, fmt.Errorf("generation call failed: %w", err)
	}

	text := stripCodeFence(raw)
	if premium {
		recipe, err := parsePremiumRecipe(text)
		if err != nil {
			return nil, err
		}
		return &model.GenerationResult{Premium: recipe}, nil
	}

	recipe, err := parseFreeRecipe(text)
	if err != nil {
		return nil, err
	}
	return &model.GenerationResult{Free: recipe}, nil
}

// stripCodeFence tolerates a markdown code fence wrapped around the JSON.
func stripCodeFence(s string) string {
	t := strings.TrimSpace(s)
	if strings.HasPrefix(t, "```") {
		if i := strings.IndexByte(t, '\n'); i >= 0 {
			t = t[i+1:]
		} else {
			t = strings.TrimPrefix(t, "```")
		}
	}
	t = strings.TrimSpace(t)
	t = strings.TrimSuffix(t, "```")
	return strings.TrimSpace(t)
}

// parseFreeRecipe validates and sanitizes a free-tier response. Pointer
// fields distinguish absent from empty; a mistyped field fails the unmarshal
// and classifies as bad output.
func parseFreeRecipe(text string) (*model.FreeRecipe, error) {
	var payload struct {
		NoFoodDetected *bool     `json:"noFoodDetected"`
		Title          *string   `json:"title"`
		Ingredients    *[]string `json:"ingredients"`
		Recipe         *string   `json:"recipe"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadAIOutput, err)
	}

	if payload.NoFoodDetected != nil && *payload.NoFoodDetected {
		return nil, ErrNoFoodDetected
	}
	if payload.Title == nil || payload.Ingredients == nil || payload.Recipe == nil {
		return nil, fmt.Errorf("%w: missing required free-tier field", ErrBadAIOutput)
	}

	title := strings.TrimSpace(*payload.Title)
	prose := SanitizeFreeText(*payload.Recipe)

	ingredients := make([]string, 0, len(*payload.Ingredients))
	for _, ing := range *payload.Ingredients {
		if trimmed := strings.TrimSpace(ing); trimmed != "" {
			ingredients = append(ingredients, trimmed)
		}
	}

	if title == "" || len(ingredients) == 0 || prose == "" {
		return nil, fmt.Errorf("%w: empty free-tier recipe after sanitization", ErrBadAIOutput)
	}

	return &model.FreeRecipe{
		Title:       title,
		Ingredients: ingredients,
		Recipe:      prose,
	}, nil
}

// parsePremiumRecipe validates a premium-tier response against the structured
// schema expectations.
func parsePremiumRecipe(text string) (*model.PremiumRecipe, error) {
	var payload struct {
		NoFoodDetected *bool                      `json:"noFoodDetected"`
		Title          *string                    `json:"title"`
		Ingredients    *[]model.PremiumIngredient `json:"ingredients"`
		Steps          *[]string                  `json:"steps"`
		Servings       *float64                   `json:"servings"`
		TimeMinutes    *float64                   `json:"timeMinutes"`
		Macros         *model.Macros              `json:"macros"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadAIOutput, err)
	}

	if payload.NoFoodDetected != nil && *payload.NoFoodDetected {
		return nil, ErrNoFoodDetected
	}
	if payload.Title == nil || payload.Ingredients == nil || payload.Steps == nil ||
		payload.Servings == nil || payload.TimeMinutes == nil || payload.Macros == nil {
		return nil, fmt.Errorf("%w: missing required premium-tier field", ErrBadAIOutput)
	}

	title := strings.TrimSpace(*payload.Title)
	if title == "" || len(*payload.Ingredients) == 0 || len(*payload.Steps) == 0 ||
		*payload.Servings <= 0 || *payload.TimeMinutes <= 0 {
		return nil, fmt.Errorf("%w: incomplete premium-tier recipe", ErrBadAIOutput)
	}
	for _, ing := range *payload.Ingredients {
		if strings.TrimSpace(ing.Item) == "" {
			return nil, fmt.Errorf("%w: unnamed premium ingredient", ErrBadAIOutput)
		}
	}

	return &model.PremiumRecipe{
		Title:       title,
		Ingredients: *payload.Ingredients,
		Steps:       *payload.Steps,
		Servings:    *payload.Servings,
		TimeMinutes: *payload.TimeMinutes,
		Macros:      *payload.Macros,
	}, nil
}
