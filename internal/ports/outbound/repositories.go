// Package outbound defines the interfaces for outbound ports
// (secondary/driven adapters): local persistence and the LLM provider.
package outbound

import (
	"context"

	"github.com/daidai-0318/nanimeshi-web/internal/domain/credential"
	"github.com/daidai-0318/nanimeshi-web/internal/domain/nutrition"
	"github.com/daidai-0318/nanimeshi-web/internal/domain/pantry"
	"github.com/daidai-0318/nanimeshi-web/internal/domain/recipe"
)

// KVStore is the persistence port for the structured store. One logical
// key maps to one serialized collection (or scalar); every Set rewrites
// the value wholesale. Implementations exist for files, memory, Redis,
// and a SQLite kv table, so the backing medium can be swapped without
// touching store logic.
type KVStore interface {
	// Get returns the stored bytes for key; the bool is false when the
	// key has never been written (or was deleted).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// CredentialRepository holds the single provider API credential.
type CredentialRepository interface {
	Get(ctx context.Context) (credential.Credential, bool, error)
	// Set stores the credential after a format-only check; no network
	// validation happens here.
	Set(ctx context.Context, cred credential.Credential) error
	Remove(ctx context.Context) error
	// Has is the pure presence check used as the application gate.
	Has(ctx context.Context) bool
}

// MealInput carries the fields the caller supplies for a new meal;
// identity and cooked-at stamp are assigned by the repository.
type MealInput struct {
	RecipeName  string
	Category    string
	Ingredients string
	PFC         *nutrition.PFC
	IsManual    bool
}

// MealRepository is the consumption-history log. Meals are never
// deleted; the only post-insert mutation is AttachPFC.
type MealRepository interface {
	Add(ctx context.Context, input MealInput) (pantry.ID, error)
	AttachPFC(ctx context.Context, id pantry.ID, pfc nutrition.PFC) error
	List(ctx context.Context, limit int) ([]pantry.Meal, error)
}

// FavoriteRepository stores bookmarked recipes.
type FavoriteRepository interface {
	Add(ctx context.Context, recipeName, recipeData string) (pantry.ID, error)
	List(ctx context.Context) ([]pantry.Favorite, error)
	Remove(ctx context.Context, id pantry.ID) error
}

// ShoppingListRepository stores the shopping list with merge-on-insert
// semantics for unchecked rows.
type ShoppingListRepository interface {
	AddIngredients(ctx context.Context, ingredients []recipe.Ingredient, recipeName string) error
	List(ctx context.Context) ([]pantry.ShoppingItem, error)
	Toggle(ctx context.Context, id pantry.ID) error
	Remove(ctx context.Context, id pantry.ID) error
	Clear(ctx context.Context) error
}

// PreferenceRepository stores scalar user preferences (currently only
// the theme).
type PreferenceRepository interface {
	Theme(ctx context.Context) (string, error)
	SetTheme(ctx context.Context, theme string) error
}
