// Package inbound defines the interfaces for inbound ports (primary/
// driving adapters). The HTTP surface depends on these rather than on
// the application structs directly.
package inbound

import (
	"context"

	"github.com/daidai-0318/nanimeshi-web/internal/domain/nutrition"
	"github.com/daidai-0318/nanimeshi-web/internal/domain/pantry"
	"github.com/daidai-0318/nanimeshi-web/internal/domain/recipe"
	"github.com/daidai-0318/nanimeshi-web/internal/ports/outbound"
)

// ConsultService drives recipe consultations and follow-up chat.
type ConsultService interface {
	Consult(ctx context.Context, params outbound.ConsultationParams) (*recipe.Recipe, error)
	Chat(ctx context.Context, rec *recipe.Recipe, transcript []outbound.ChatMessage, userMessage string) (string, error)
}

// ManualMealInput is a user-entered meal with no originating recipe.
type ManualMealInput struct {
	RecipeName  string
	Category    recipe.Category
	Ingredients []string
	Seasoning   string
}

// WeeklyReport summarizes the last seven days of meals.
type WeeklyReport struct {
	CategoryCounts map[string]int `json:"category_counts"`
	TotalMeals     int            `json:"total_meals"`
	BalanceComment string         `json:"balance_comment"`
	// AveragePFC is the per-day average over meals that carry an
	// estimate; nil when no meal in the window has one.
	AveragePFC *nutrition.PFC `json:"average_pfc,omitempty"`
	RatedMeals int            `json:"rated_meals"`
	PFCComment string         `json:"pfc_comment,omitempty"`
}

// MealService drives meal logging and history.
type MealService interface {
	// LogCookedMeal records a cooked recipe and returns as soon as the
	// meal is persisted; PFC enrichment runs afterwards and its failure
	// never surfaces.
	LogCookedMeal(ctx context.Context, rec *recipe.Recipe) (pantry.ID, error)

	// LogManualMeal records a hand-entered meal, attempting a
	// synchronous best-effort estimate first.
	LogManualMeal(ctx context.Context, input ManualMealInput) (pantry.ID, *nutrition.PFC, error)

	History(ctx context.Context, limit int) ([]pantry.Meal, error)
	WeeklyReport(ctx context.Context) (*WeeklyReport, error)
}
