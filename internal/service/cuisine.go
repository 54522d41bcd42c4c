package service

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand"
	"strings"

	"github.com/snapdish/backend/internal/model"
)

// cuisineStyles is the fixed list a scan's cuisine direction is drawn from.
var cuisineStyles = []string{
	"Italian",
	"French",
	"Japanese",
	"Thai",
	"Indian",
	"Mexican",
	"Mediterranean",
	"Korean",
	"Middle Eastern",
	"American",
}

// meatKeywords drive the meat/seafood prompt emphasis. Matching is
// case-insensitive substring over the free-text preference fields.
var meatKeywords = []string{
	"chicken", "beef", "pork", "lamb", "turkey", "duck", "bacon", "sausage",
	"steak", "meat", "fish", "salmon", "tuna", "shrimp", "prawn", "crab",
	"lobster", "seafood",
}

// PickCuisine derives a cuisine deterministically from the scan identifier:
// the first four bytes of the SHA-256 digest reduced modulo the option list.
// Regenerating the same scan therefore tends to stay thematically consistent.
// With no identifier the choice is uniformly random.
func PickCuisine(scanID string, options []string) string {
	if len(options) == 0 {
		return ""
	}
	if scanID == "" {
		return options[rand.Intn(len(options))]
	}

	digest := sha256.Sum256([]byte(scanID))
	n := binary.BigEndian.Uint32(digest[:4])
	return options[int(n%uint32(len(options)))]
}

// HasMeatSignal reports whether any meat or seafood keyword appears in the
// scan's free-text preferences. The signal only adjusts prompt emphasis; it
// never changes the response schema.
func HasMeatSignal(prefs model.Preferences) bool {
	var sb strings.Builder
	sb.WriteString(prefs.ExtraIngredientsText)
	sb.WriteString(" ")
	sb.WriteString(prefs.MealType)
	sb.WriteString(" ")
	sb.WriteString(strings.Join(prefs.NutritionGoals, " "))

	haystack := strings.ToLower(sb.String())
	for _, kw := range meatKeywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}
