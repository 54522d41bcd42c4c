package model

// FreeRecipe is the free-tier generation result: a flat ingredient name list
// and a single paragraph of prose with no numbers or measurements.
type FreeRecipe struct {
	Title       string   `json:"title"`
	Ingredients []string `json:"ingredients"`
	Recipe      string   `json:"recipe"`
}

// PremiumIngredient is a quantified ingredient line.
type PremiumIngredient struct {
	Item   string `json:"item"`
	Amount string `json:"amount"`
}

// Macros represents estimated nutritional macros for a premium recipe.
type Macros struct {
	Calories     float64 `json:"calories"`
	ProteinGrams float64 `json:"proteinGrams"`
	CarbsGrams   float64 `json:"carbsGrams"`
	FatGrams     float64 `json:"fatGrams"`
}

// PremiumRecipe is the fully structured premium-tier generation result.
type PremiumRecipe struct {
	Title       string              `json:"title"`
	Ingredients []PremiumIngredient `json:"ingredients"`
	Steps       []string            `json:"steps"`
	Servings    float64             `json:"servings"`
	TimeMinutes float64             `json:"timeMinutes"`
	Macros      Macros              `json:"macros"`
}

// GenerationResult carries exactly one tier's recipe. Failure outcomes are
// reported as errors by the generator, not through this struct.
type GenerationResult struct {
	Free    *FreeRecipe    `json:"free,omitempty"`
	Premium *PremiumRecipe `json:"premium,omitempty"`
}
