// Package meal provides the application layer for meal logging,
// history, and the weekly summary.
package meal

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/daidai-0318/nanimeshi-web/internal/domain/nutrition"
	"github.com/daidai-0318/nanimeshi-web/internal/domain/pantry"
	"github.com/daidai-0318/nanimeshi-web/internal/domain/recipe"
	"github.com/daidai-0318/nanimeshi-web/internal/ports/inbound"
	"github.com/daidai-0318/nanimeshi-web/internal/ports/outbound"
	"github.com/daidai-0318/nanimeshi-web/pkg/errors"
)

const (
	// reportWindow is the look-back of the weekly summary.
	reportWindow = 7 * 24 * time.Hour

	// reportScanLimit bounds how much history one report reads.
	reportScanLimit = 200

	// enrichTimeout bounds the detached PFC-estimation call that runs
	// after a cooked meal is saved.
	enrichTimeout = 30 * time.Second
)

// MealService implements the meal logging use cases.
type MealService struct {
	mealRepo  outbound.MealRepository
	aiService outbound.AIService
	logger    *zap.Logger

	// enrichments tracks in-flight background estimations so shutdown
	// and tests can wait for them.
	enrichments sync.WaitGroup
}

// NewMealService creates a new meal service.
func NewMealService(
	mealRepo outbound.MealRepository,
	aiService outbound.AIService,
	logger *zap.Logger,
) *MealService {
	return &MealService{
		mealRepo:  mealRepo,
		aiService: aiService,
		logger:    logger.Named("meal-service"),
	}
}

var _ inbound.MealService = (*MealService)(nil)

// LogCookedMeal records a cooked recipe. The meal is persisted first
// and the call returns immediately; nutrition estimation runs in the
// background and attaches its result if it succeeds. An estimation
// failure leaves the meal without a PFC, which is valid.
func (s *MealService) LogCookedMeal(ctx context.Context, rec *recipe.Recipe) (pantry.ID, error) {
	if rec == nil || rec.Name == "" {
		return 0, errors.NewBadRequestError("meal requires a recipe")
	}

	blob, err := json.Marshal(rec.Ingredients)
	if err != nil {
		return 0, errors.Wrap(err, "failed to serialize ingredients")
	}

	id, err := s.mealRepo.Add(ctx, outbound.MealInput{
		RecipeName:  rec.Name,
		Category:    string(rec.Category),
		Ingredients: string(blob),
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Cooked meal logged",
		zap.Int64("meal_id", int64(id)),
		zap.String("recipe_name", rec.Name),
	)

	params := outbound.EstimateParams{
		RecipeName:  rec.Name,
		Category:    string(rec.Category),
		Ingredients: rec.IngredientSummary(),
		Servings:    rec.Servings,
	}

	s.enrichments.Add(1)
	go func() {
		defer s.enrichments.Done()
		s.enrich(context.WithoutCancel(ctx), id, params)
	}()

	return id, nil
}

// enrich runs one detached estimation and attaches the result.
func (s *MealService) enrich(ctx context.Context, id pantry.ID, params outbound.EstimateParams) {
	ctx, cancel := context.WithTimeout(ctx, enrichTimeout)
	defer cancel()

	pfc, err := s.aiService.EstimatePFC(ctx, params)
	if err != nil {
		s.logger.Warn("PFC enrichment failed",
			zap.Int64("meal_id", int64(id)),
			zap.Error(err),
		)
		return
	}

	if err := s.mealRepo.AttachPFC(ctx, id, pfc); err != nil {
		s.logger.Warn("Failed to attach PFC estimate",
			zap.Int64("meal_id", int64(id)),
			zap.Error(err),
		)
	}
}

// WaitForEnrichment blocks until background estimations finish. Wired
// into shutdown so a just-logged meal gets its estimate before exit.
func (s *MealService) WaitForEnrichment() {
	s.enrichments.Wait()
}

// LogManualMeal records a hand-entered meal. A best-effort estimate is
// attempted synchronously first so the caller sees the result; if it
// fails for any reason the meal is saved without one.
func (s *MealService) LogManualMeal(ctx context.Context, input inbound.ManualMealInput) (pantry.ID, *nutrition.PFC, error) {
	name := strings.TrimSpace(input.RecipeName)
	if name == "" {
		return 0, nil, errors.NewBadRequestError("meal requires a name")
	}
	if !input.Category.Valid() {
		return 0, nil, errors.NewBadRequestError("unknown category")
	}

	described := input.Ingredients
	if input.Seasoning != "" {
		described = append(described[:len(described):len(described)], input.Seasoning)
	}

	var pfc *nutrition.PFC
	estimated, err := s.aiService.EstimatePFC(ctx, outbound.EstimateParams{
		RecipeName:  name,
		Category:    string(input.Category),
		Ingredients: strings.Join(described, "、"),
	})
	if err != nil {
		s.logger.Warn("Manual meal estimate failed", zap.Error(err))
	} else {
		pfc = &estimated
	}

	ingredients := make([]recipe.Ingredient, 0, len(input.Ingredients))
	for _, ing := range input.Ingredients {
		ingredients = append(ingredients, recipe.Ingredient{Name: ing})
	}
	blob, err := json.Marshal(ingredients)
	if err != nil {
		return 0, nil, errors.Wrap(err, "failed to serialize ingredients")
	}

	id, err := s.mealRepo.Add(ctx, outbound.MealInput{
		RecipeName:  name,
		Category:    string(input.Category),
		Ingredients: string(blob),
		PFC:         pfc,
		IsManual:    true,
	})
	if err != nil {
		return 0, nil, err
	}

	s.logger.Info("Manual meal logged",
		zap.Int64("meal_id", int64(id)),
		zap.String("recipe_name", name),
		zap.Bool("estimated", pfc != nil),
	)
	return id, pfc, nil
}

// History returns the newest meals, all of them when limit is zero.
func (s *MealService) History(ctx context.Context, limit int) ([]pantry.Meal, error) {
	return s.mealRepo.List(ctx, limit)
}

// Category buckets of the weekly summary. Everything outside the three
// highlighted categories lands in "その他".
const bucketOther = "その他"

var reportBuckets = []string{
	string(recipe.CategoryMeat),
	string(recipe.CategoryFish),
	string(recipe.CategoryVegetable),
	bucketOther,
}

// WeeklyReport summarizes the last seven days: category balance, a
// one-line comment, and the per-day PFC average over rated meals.
func (s *MealService) WeeklyReport(ctx context.Context) (*inbound.WeeklyReport, error) {
	meals, err := s.mealRepo.List(ctx, reportScanLimit)
	if err != nil {
		return nil, err
	}

	since := time.Now().Add(-reportWindow)
	counts := make(map[string]int, len(reportBuckets))
	for _, bucket := range reportBuckets {
		counts[bucket] = 0
	}

	var recent []pantry.Meal
	for _, m := range meals {
		cookedAt, err := time.Parse(time.RFC3339, m.CookedAt)
		if err != nil || cookedAt.Before(since) {
			continue
		}
		recent = append(recent, m)

		switch m.Category {
		case string(recipe.CategoryMeat), string(recipe.CategoryFish), string(recipe.CategoryVegetable):
			counts[m.Category]++
		default:
			counts[bucketOther]++
		}
	}

	report := &inbound.WeeklyReport{
		CategoryCounts: counts,
		TotalMeals:     len(recent),
		BalanceComment: balanceComment(counts, len(recent)),
	}

	var totals nutrition.PFC
	for _, m := range recent {
		if m.PFC == nil {
			continue
		}
		totals = totals.Add(*m.PFC)
		report.RatedMeals++
	}
	if report.RatedMeals > 0 {
		days := float64(reportWindow / (24 * time.Hour))
		avg := nutrition.PFC{
			Protein:  int(math.Round(float64(totals.Protein) / days)),
			Fat:      int(math.Round(float64(totals.Fat) / days)),
			Carbs:    int(math.Round(float64(totals.Carbs) / days)),
			Calories: int(math.Round(float64(totals.Calories) / days)),
		}
		report.AveragePFC = &avg
		report.PFCComment = pfcComment(avg)
	}

	return report, nil
}

// balanceComment picks the one-line nudge shown with the category bars.
func balanceComment(counts map[string]int, total int) string {
	meat := counts[string(recipe.CategoryMeat)]
	fish := counts[string(recipe.CategoryFish)]
	veg := counts[string(recipe.CategoryVegetable)]

	switch {
	case meat > fish+veg:
		return "🐟 最近お肉が多めです。今日は魚料理はいかが？"
	case veg == 0 && total > 2:
		return "🥬 野菜料理が少なめです。今日はサラダやスープはいかが？"
	case fish == 0 && total > 2:
		return "🐟 魚料理がまだないですね。今日は魚にしてみませんか？"
	default:
		return "✨ バランスよく食べていますね！"
	}
}

// pfcComment nudges on the macro ratio of the per-day average.
func pfcComment(avg nutrition.PFC) string {
	total := avg.MacroTotal()
	if total == 0 {
		return ""
	}

	pRatio := float64(avg.Protein) / float64(total)
	fRatio := float64(avg.Fat) / float64(total)
	cRatio := float64(avg.Carbs) / float64(total)

	switch {
	case pRatio > 0.35:
		return "💪 タンパク質が多めです。バランスに気をつけましょう"
	case fRatio > 0.35:
		return "🧈 脂質が多めです。あっさりした料理も取り入れてみましょう"
	case cRatio > 0.70:
		return "🍚 炭水化物が多めです。おかずを増やしてみましょう"
	case pRatio < 0.10:
		return "🥚 タンパク質が少なめです。肉・魚・卵を意識してみましょう"
	default:
		return "✨ PFCバランスが良好です！"
	}
}
