// Package consult provides the application layer for recipe
// consultations and follow-up chat about a suggested recipe.
package consult

import (
	"context"

	"go.uber.org/zap"

	"github.com/daidai-0318/nanimeshi-web/internal/domain/recipe"
	"github.com/daidai-0318/nanimeshi-web/internal/ports/inbound"
	"github.com/daidai-0318/nanimeshi-web/internal/ports/outbound"
	"github.com/daidai-0318/nanimeshi-web/pkg/errors"
)

// recentMealBias is how many of the latest meals are fed back into the
// prompt so suggestions avoid repeating recent dishes.
const recentMealBias = 7

// ConsultService implements the consultation use cases.
type ConsultService struct {
	aiService outbound.AIService
	mealRepo  outbound.MealRepository
	logger    *zap.Logger
}

// NewConsultService creates a new consultation service.
func NewConsultService(
	aiService outbound.AIService,
	mealRepo outbound.MealRepository,
	logger *zap.Logger,
) inbound.ConsultService {
	return &ConsultService{
		aiService: aiService,
		mealRepo:  mealRepo,
		logger:    logger.Named("consult-service"),
	}
}

// Consult requests one recipe suggestion. The latest meal names are
// folded into the prompt; a history read failure only loses the bias,
// never the consultation.
func (s *ConsultService) Consult(ctx context.Context, params outbound.ConsultationParams) (*recipe.Recipe, error) {
	if !params.Mode.Valid() {
		return nil, errors.NewBadRequestError("unknown consultation mode")
	}

	if len(params.RecentMeals) == 0 {
		recent, err := s.mealRepo.List(ctx, recentMealBias)
		if err != nil {
			s.logger.Warn("Failed to load recent meals for prompt bias", zap.Error(err))
		} else {
			names := make([]string, 0, len(recent))
			for _, m := range recent {
				names = append(names, m.RecipeName)
			}
			params.RecentMeals = names
		}
	}

	rec, err := s.aiService.RequestRecipe(ctx, params)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Recipe suggested",
		zap.String("mode", string(params.Mode)),
		zap.String("name", rec.Name),
		zap.String("category", string(rec.Category)),
	)
	return rec, nil
}

// Chat answers a follow-up question about a previously suggested
// recipe. The transcript is caller-maintained; nothing is stored here.
func (s *ConsultService) Chat(ctx context.Context, rec *recipe.Recipe, transcript []outbound.ChatMessage, userMessage string) (string, error) {
	if rec == nil || rec.Name == "" {
		return "", errors.NewBadRequestError("chat requires a recipe context")
	}
	if userMessage == "" {
		return "", errors.NewBadRequestError("chat requires a message")
	}

	return s.aiService.ChatAboutRecipe(ctx, rec, transcript, userMessage)
}
