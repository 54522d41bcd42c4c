package api

// Machine-readable error codes surfaced to clients so they can self-schedule
// retries without parsing messages.
const (
	CodeFreeLimitReached  = "FREE_LIMIT_REACHED"
	CodeTooManyRequests   = "TOO_MANY_REQUESTS"
	CodeNoFoodDetected    = "NO_FOOD_DETECTED"
	CodeScanNotFound      = "SCAN_NOT_FOUND"
	CodeScanForbidden     = "SCAN_FORBIDDEN"
	CodeRegenLimitReached = "REGEN_LIMIT_REACHED"
	CodeAIBadOutput       = "AI_BAD_OUTPUT"
)

// AnalyzeRequest is the body of POST /analyze.
type AnalyzeRequest struct {
	DeviceID             string   `json:"deviceId" binding:"required"`
	ImageBase64          string   `json:"imageBase64" binding:"required"`
	MealType             string   `json:"mealType"`
	ExtraIngredientsText string   `json:"extraIngredientsText"`
	NutritionGoals       []string `json:"nutritionGoals"`
	TimeLimit            string   `json:"timeLimit"`
	Difficulty           string   `json:"difficulty"`
	Equipment            []string `json:"equipment"`
}

// RecipeResponse is the success payload of analyze and regenerate. Recipe
// holds the tier-shaped recipe object.
type RecipeResponse struct {
	ScanID     string      `json:"scanId"`
	IsPremium  bool        `json:"isPremium"`
	RegenCount int         `json:"regenCount"`
	Recipe     interface{} `json:"recipe"`
}
