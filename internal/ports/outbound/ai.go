package outbound

import (
	"context"

	"github.com/daidai-0318/nanimeshi-web/internal/domain/nutrition"
	"github.com/daidai-0318/nanimeshi-web/internal/domain/recipe"
)

// Mode selects how a consultation is framed to the provider.
type Mode string

const (
	// ModeConsult is the interactive flow: the user supplies
	// ingredients, mood, time, and servings.
	ModeConsult Mode = "consult"
	// ModeRandom asks for any single recipe suggestion.
	ModeRandom Mode = "random"
	// ModeLazy restricts suggestions to no-knife, five-minute,
	// microwave-preferred recipes.
	ModeLazy Mode = "lazy"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeConsult, ModeRandom, ModeLazy:
		return true
	}
	return false
}

// ConsultationParams are the inputs of one recipe request. Only Mode is
// required; absent optional fields are simply left out of the prompt.
type ConsultationParams struct {
	Mode        Mode
	Ingredients []string
	Mood        string
	CookingTime string
	Servings    int
	// RecentMeals biases the suggestion away from recently eaten
	// dishes.
	RecentMeals []string
}

// EstimateParams are the inputs of one nutrition estimation.
type EstimateParams struct {
	RecipeName  string
	Category    string
	Ingredients string
	Servings    int
}

// Chat roles on the provider wire.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of a follow-up conversation transcript.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AIService is the provider port. All three calls surface the same
// error taxonomy (credential-invalid, rate-limited, api-error,
// content-missing, parse-failure) and never retry internally.
type AIService interface {
	// RequestRecipe issues a recipe consultation and parses the reply
	// into a typed Recipe.
	RequestRecipe(ctx context.Context, params ConsultationParams) (*recipe.Recipe, error)

	// EstimatePFC issues a nutrition estimation for a recipe or manual
	// entry. Fields are coerced to non-negative integers; missing
	// fields default to zero.
	EstimatePFC(ctx context.Context, params EstimateParams) (nutrition.PFC, error)

	// ChatAboutRecipe sends system + transcript + the new user turn and
	// returns the trimmed assistant reply. The client is stateless;
	// transcript continuity is caller-maintained.
	ChatAboutRecipe(ctx context.Context, rec *recipe.Recipe, transcript []ChatMessage, userMessage string) (string, error)
}
