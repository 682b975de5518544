// Package pantry holds the persisted collection records: the meal
// history, favorites, and the shopping list. Records are append-mostly
// logs; JSON tags define the on-disk shape, which carries no schema
// version field.
package pantry

import (
	"github.com/daidai-0318/nanimeshi-web/internal/domain/nutrition"
)

// ID is a locally generated identity: wall-clock milliseconds plus a
// per-collection session counter. Unique within a session; across
// restarts uniqueness relies on wall-clock separation.
type ID int64

// Meal is one consumed dish. Immutable after insert except for the
// later PFC attachment; there is no delete operation.
type Meal struct {
	ID         ID     `json:"id"`
	RecipeName string `json:"recipe_name"`
	Category   string `json:"category"`
	// Ingredients is a serialized JSON blob of the recipe's ingredient
	// list, kept as free-form text rather than a structured join.
	Ingredients string         `json:"ingredients"`
	CookedAt    string         `json:"cooked_at"`
	PFC         *nutrition.PFC `json:"pfc,omitempty"`
	IsManual    bool           `json:"is_manual,omitempty"`
}

// Favorite is a bookmarked recipe, stored as a full serialized Recipe
// blob so it can be reopened without another provider call.
type Favorite struct {
	ID         ID     `json:"id"`
	RecipeName string `json:"recipe_name"`
	RecipeData string `json:"recipe_data"`
	CreatedAt  string `json:"created_at"`
}

// ShoppingItem is one row of the shopping list. Amount is free text;
// merged inserts append with " + " rather than doing arithmetic.
type ShoppingItem struct {
	ID         ID     `json:"id"`
	Name       string `json:"name"`
	Amount     string `json:"amount"`
	Checked    bool   `json:"checked"`
	RecipeName string `json:"recipe_name,omitempty"`
}
