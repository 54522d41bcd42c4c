package service

import (
	"fmt"
	"strings"

	"github.com/snapdish/backend/internal/model"
)

// Persona and rule directives shared by both tiers. The not-food rule is
// deliberately narrow: the model must be very confident before signaling that
// no food is present.
const personaDirectives = `You are a professional chef with 20 years of restaurant experience.
Build flavor in layers: aromatics first, then body, then brightness at the end.
Work only from what is visible in the photo plus the listed extra ingredients.
Only set "noFoodDetected" to true if you are VERY confident the image contains no food or ingredients at all. If there is any plausible food item, generate a recipe instead.`

const freeTierRules = `Write for a home cook. The "recipe" field must be exactly one paragraph of flowing prose.
Do not use any digits, quantities, temperatures or units of measure anywhere in the paragraph.
The "ingredients" field is a flat list of ingredient names only, without amounts.`

const premiumTierRules = `Write a fully structured recipe. Every step should carry its own timing where relevant.
Every ingredient must have a concrete amount. Estimate servings, total time in minutes and nutritional macros for the whole dish.`

// buildPreferenceBlock renders the scan's stored preferences for the prompt.
func buildPreferenceBlock(prefs model.Preferences) string {
	var lines []string
	if prefs.MealType != "" {
		lines = append(lines, "Meal type: "+prefs.MealType)
	}
	if prefs.ExtraIngredientsText != "" {
		lines = append(lines, "Extra ingredients on hand: "+prefs.ExtraIngredientsText)
	}
	if len(prefs.NutritionGoals) > 0 {
		lines = append(lines, "Nutrition goals: "+strings.Join(prefs.NutritionGoals, ", "))
	}
	if prefs.TimeLimit != "" {
		lines = append(lines, "Time limit: "+prefs.TimeLimit)
	}
	if prefs.Difficulty != "" {
		lines = append(lines, "Preferred difficulty: "+prefs.Difficulty)
	}
	if len(prefs.Equipment) > 0 {
		lines = append(lines, "Available equipment: "+strings.Join(prefs.Equipment, ", "))
	}
	if len(lines) == 0 {
		return "No stated preferences."
	}
	return strings.Join(lines, "\n")
}

// buildPrompt assembles the tier-specific generation prompt for a scan.
func buildPrompt(scan *model.Scan, premium bool, cuisine string, meatSignal bool) string {
	var sb strings.Builder
	sb.WriteString(personaDirectives)
	sb.WriteString("\n\n")

	if premium {
		sb.WriteString(premiumTierRules)
	} else {
		sb.WriteString(freeTierRules)
	}
	sb.WriteString("\n\n")

	if cuisine != "" {
		fmt.Fprintf(&sb, "Lean the recipe toward %s flavors where the ingredients allow.\n", cuisine)
	}
	if meatSignal {
		sb.WriteString("The cook has meat or seafood available; treat it as the centerpiece of the dish.\n")
	}

	sb.WriteString("\nUser preferences:\n")
	sb.WriteString(buildPreferenceBlock(scan.Preferences))
	sb.WriteString("\n\nAnalyze the attached photo and respond with a single JSON object matching the response schema.")
	return sb.String()
}

// freeRecipeSchema is the closed response schema for the free tier.
func freeRecipeSchema() map[string]interface{} {
	return map[string]interface{}{
		"title": "free_recipe",
		"type":  "object",
		"properties": map[string]interface{}{
			"noFoodDetected": map[string]interface{}{"type": "boolean"},
			"title":          map[string]interface{}{"type": "string"},
			"ingredients": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
			"recipe": map[string]interface{}{"type": "string"},
		},
		"required":             []string{"title", "ingredients", "recipe"},
		"additionalProperties": false,
	}
}

// premiumRecipeSchema is the closed response schema for the premium tier.
func premiumRecipeSchema() map[string]interface{} {
	return map[string]interface{}{
		"title": "premium_recipe",
		"type":  "object",
		"properties": map[string]interface{}{
			"noFoodDetected": map[string]interface{}{"type": "boolean"},
			"title":          map[string]interface{}{"type": "string"},
			"ingredients": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"item":   map[string]interface{}{"type": "string"},
						"amount": map[string]interface{}{"type": "string"},
					},
					"required":             []string{"item", "amount"},
					"additionalProperties": false,
				},
			},
			"steps": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
			"servings":    map[string]interface{}{"type": "number"},
			"timeMinutes": map[string]interface{}{"type": "number"},
			"macros": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"calories":     map[string]interface{}{"type": "number"},
					"proteinGrams": map[string]interface{}{"type": "number"},
					"carbsGrams":   map[string]interface{}{"type": "number"},
					"fatGrams":     map[string]interface{}{"type": "number"},
				},
				"required":             []string{"calories", "proteinGrams", "carbsGrams", "fatGrams"},
				"additionalProperties": false,
			},
		},
		"required":             []string{"title", "ingredients", "steps", "servings", "timeMinutes", "macros"},
		"additionalProperties": false,
	}
}
