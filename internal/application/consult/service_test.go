package consult_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/daidai-0318/nanimeshi-web/internal/application/consult"
	"github.com/daidai-0318/nanimeshi-web/internal/domain/nutrition"
	"github.com/daidai-0318/nanimeshi-web/internal/domain/recipe"
	"github.com/daidai-0318/nanimeshi-web/internal/infrastructure/persistence/localstore"
	"github.com/daidai-0318/nanimeshi-web/internal/infrastructure/persistence/memory"
	"github.com/daidai-0318/nanimeshi-web/internal/ports/inbound"
	"github.com/daidai-0318/nanimeshi-web/internal/ports/outbound"
	"github.com/daidai-0318/nanimeshi-web/pkg/errors"
)

// stubAI scripts the provider port and records the params it saw.
type stubAI struct {
	recipe    *recipe.Recipe
	recipeErr error
	chatReply string

	lastConsult outbound.ConsultationParams
}

func (a *stubAI) RequestRecipe(ctx context.Context, params outbound.ConsultationParams) (*recipe.Recipe, error) {
	a.lastConsult = params
	if a.recipeErr != nil {
		return nil, a.recipeErr
	}
	return a.recipe, nil
}

func (a *stubAI) EstimatePFC(ctx context.Context, params outbound.EstimateParams) (nutrition.PFC, error) {
	return nutrition.PFC{}, errors.NewContentMissingError()
}

func (a *stubAI) ChatAboutRecipe(ctx context.Context, rec *recipe.Recipe, transcript []outbound.ChatMessage, userMessage string) (string, error) {
	return a.chatReply, nil
}

type ConsultServiceTestSuite struct {
	suite.Suite
	mealRepo *localstore.MealStore
	ai       *stubAI
	service  inbound.ConsultService
}

func TestConsultServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ConsultServiceTestSuite))
}

func (s *ConsultServiceTestSuite) SetupTest() {
	logger := zap.NewNop()
	s.mealRepo = localstore.NewMealStore(memory.NewKVStore(), logger)
	s.ai = &stubAI{
		recipe: &recipe.Recipe{
			Name:     "豚の生姜焼き",
			Category: recipe.CategoryMeat,
			Servings: 2,
		},
		chatReply: "玉ねぎを加えても美味しいですよ。",
	}
	s.service = consult.NewConsultService(s.ai, s.mealRepo, logger)
}

func (s *ConsultServiceTestSuite) TestConsultBiasesAgainstRecentMeals() {
	ctx := context.Background()
	for _, name := range []string{"カレーライス", "親子丼", "焼きそば"} {
		_, err := s.mealRepo.Add(ctx, outbound.MealInput{RecipeName: name, Category: "その他"})
		s.Require().NoError(err)
	}

	rec, err := s.service.Consult(ctx, outbound.ConsultationParams{Mode: outbound.ModeConsult})
	s.Require().NoError(err)
	s.Equal("豚の生姜焼き", rec.Name)

	// Newest first, same order the history lists them.
	s.Equal([]string{"焼きそば", "親子丼", "カレーライス"}, s.ai.lastConsult.RecentMeals)
}

func (s *ConsultServiceTestSuite) TestConsultKeepsCallerSuppliedBias() {
	ctx := context.Background()
	_, err := s.mealRepo.Add(ctx, outbound.MealInput{RecipeName: "カレーライス", Category: "その他"})
	s.Require().NoError(err)

	_, err = s.service.Consult(ctx, outbound.ConsultationParams{
		Mode:        outbound.ModeRandom,
		RecentMeals: []string{"グラタン"},
	})
	s.Require().NoError(err)
	s.Equal([]string{"グラタン"}, s.ai.lastConsult.RecentMeals)
}

func (s *ConsultServiceTestSuite) TestConsultRejectsUnknownMode() {
	_, err := s.service.Consult(context.Background(), outbound.ConsultationParams{Mode: "yolo"})
	s.True(errors.Is(err, errors.CodeBadRequest))
}

func (s *ConsultServiceTestSuite) TestConsultPropagatesProviderError() {
	s.ai.recipeErr = errors.NewRateLimitedError()

	_, err := s.service.Consult(context.Background(), outbound.ConsultationParams{Mode: outbound.ModeRandom})
	s.True(errors.Is(err, errors.CodeRateLimited))
}

func (s *ConsultServiceTestSuite) TestChatRequiresContext() {
	_, err := s.service.Chat(context.Background(), nil, nil, "おいしい？")
	s.True(errors.Is(err, errors.CodeBadRequest))

	_, err = s.service.Chat(context.Background(), s.ai.recipe, nil, "")
	s.True(errors.Is(err, errors.CodeBadRequest))

	reply, err := s.service.Chat(context.Background(), s.ai.recipe, nil, "アレンジできますか？")
	s.Require().NoError(err)
	s.Equal("玉ねぎを加えても美味しいですよ。", reply)
}
