// Package recipe contains the core recipe model. A Recipe is only ever
// produced by parsing a provider response, so the model is deliberately
// tolerant: beyond structural JSON shape nothing is validated, and
// downstream code copes with missing optional fields.
package recipe

import (
	"fmt"
	"strings"
)

// Category is the closed set of dish categories the provider is asked
// to choose from.
type Category string

const (
	CategoryMeat      Category = "肉料理"
	CategoryFish      Category = "魚料理"
	CategoryVegetable Category = "野菜料理"
	CategoryNoodle    Category = "麺類"
	CategoryRice      Category = "ご飯もの"
	CategorySoup      Category = "スープ"
	CategoryOther     Category = "その他"
)

// Categories lists every category in presentation order.
func Categories() []Category {
	return []Category{
		CategoryMeat,
		CategoryFish,
		CategoryVegetable,
		CategoryNoodle,
		CategoryRice,
		CategorySoup,
		CategoryOther,
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Difficulty is the three-level difficulty label used in prompts and
// returned by the provider.
type Difficulty string

const (
	DifficultyEasy      Difficulty = "簡単"
	DifficultyNormal    Difficulty = "普通"
	DifficultyElaborate Difficulty = "本格的"
)

// Ingredient pairs a name with a free-text amount ("大さじ1", "2個").
// Amounts are never parsed into quantities.
type Ingredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// Recipe is the structured reply of a recipe consultation.
// Field names mirror the JSON contract in the system prompt.
type Recipe struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	CookingTime string       `json:"cookingTime"`
	Difficulty  Difficulty   `json:"difficulty"`
	Servings    int          `json:"servings"`
	Category    Category     `json:"category"`
	Ingredients []Ingredient `json:"ingredients"`
	Steps       []string     `json:"steps"`
	Tips        string       `json:"tips,omitempty"`
}

// IngredientSummary renders the ingredient list as "名前(分量)" joined
// with 、 for use in nutrition-estimation and chat prompts.
func (r *Recipe) IngredientSummary() string {
	parts := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		parts = append(parts, fmt.Sprintf("%s(%s)", ing.Name, ing.Amount))
	}
	return strings.Join(parts, "、")
}

// NumberedSteps renders the steps as "1. ..." lines for prompt context.
func (r *Recipe) NumberedSteps() string {
	var b strings.Builder
	for i, step := range r.Steps {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s", i+1, step)
	}
	return b.String()
}
