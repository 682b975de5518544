package localstore

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/daidai-0318/nanimeshi-web/internal/domain/nutrition"
	"github.com/daidai-0318/nanimeshi-web/internal/domain/pantry"
	"github.com/daidai-0318/nanimeshi-web/internal/ports/outbound"
	"github.com/daidai-0318/nanimeshi-web/pkg/errors"
)

// MealStore is the consumption-history log. Meals are head-inserted and
// never deleted; the only post-insert mutation is AttachPFC.
type MealStore struct {
	kv     outbound.KVStore
	ids    idGenerator
	mutex  sync.Mutex
	logger *zap.Logger
}

// NewMealStore creates a meal store over kv.
func NewMealStore(kv outbound.KVStore, logger *zap.Logger) *MealStore {
	return &MealStore{
		kv:     kv,
		logger: logger.Named("meal-store"),
	}
}

var _ outbound.MealRepository = (*MealStore)(nil)

func (s *MealStore) load(ctx context.Context) ([]pantry.Meal, error) {
	data, ok, err := s.kv.Get(ctx, keyMeals)
	if err != nil {
		return nil, errors.NewStorageError("read meals", err)
	}
	if !ok {
		return nil, nil
	}

	var meals []pantry.Meal
	if err := json.Unmarshal(data, &meals); err != nil {
		// Corrupt stored JSON has no recovery path; it surfaces as a
		// load error.
		return nil, errors.NewStorageError("decode meals", err)
	}
	return meals, nil
}

func (s *MealStore) save(ctx context.Context, meals []pantry.Meal) error {
	data, err := json.Marshal(meals)
	if err != nil {
		return errors.NewStorageError("encode meals", err)
	}
	if err := s.kv.Set(ctx, keyMeals, data); err != nil {
		return errors.NewStorageError("write meals", err)
	}
	return nil
}

// Add assigns an identity, stamps the cooked-at time, head-inserts, and
// persists the full collection.
func (s *MealStore) Add(ctx context.Context, input outbound.MealInput) (pantry.ID, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	meals, err := s.load(ctx)
	if err != nil {
		return 0, err
	}

	id := s.ids.next()
	meal := pantry.Meal{
		ID:          id,
		RecipeName:  input.RecipeName,
		Category:    input.Category,
		Ingredients: input.Ingredients,
		CookedAt:    time.Now().Format(time.RFC3339),
		PFC:         input.PFC,
		IsManual:    input.IsManual,
	}

	meals = append([]pantry.Meal{meal}, meals...)
	if err := s.save(ctx, meals); err != nil {
		return 0, err
	}

	s.logger.Debug("meal recorded",
		zap.Int64("id", int64(id)),
		zap.String("recipe", input.RecipeName),
		zap.Bool("manual", input.IsManual),
	)
	return id, nil
}

// AttachPFC sets the nutrition estimate on an existing meal. An unknown
// id is a silent no-op: enrichment is best-effort and the meal may have
// been written by an older session.
func (s *MealStore) AttachPFC(ctx context.Context, id pantry.ID, pfc nutrition.PFC) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	meals, err := s.load(ctx)
	if err != nil {
		return err
	}

	for i := range meals {
		if meals[i].ID == id {
			meals[i].PFC = &pfc
			return s.save(ctx, meals)
		}
	}
	return nil
}

// List returns meals newest first, up to limit (0 means all).
func (s *MealStore) List(ctx context.Context, limit int) ([]pantry.Meal, error) {
	meals, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(meals) > limit {
		meals = meals[:limit]
	}
	return meals, nil
}
