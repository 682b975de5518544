package localstore

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/daidai-0318/nanimeshi-web/internal/domain/pantry"
	"github.com/daidai-0318/nanimeshi-web/internal/domain/recipe"
	"github.com/daidai-0318/nanimeshi-web/internal/ports/outbound"
	"github.com/daidai-0318/nanimeshi-web/pkg/errors"
)

// ShoppingStore stores the shopping list. Inserts merge into existing
// unchecked rows by exact ingredient name instead of duplicating them.
type ShoppingStore struct {
	kv     outbound.KVStore
	ids    idGenerator
	mutex  sync.Mutex
	logger *zap.Logger
}

// NewShoppingStore creates a shopping-list store over kv.
func NewShoppingStore(kv outbound.KVStore, logger *zap.Logger) *ShoppingStore {
	return &ShoppingStore{
		kv:     kv,
		logger: logger.Named("shopping-store"),
	}
}

var _ outbound.ShoppingListRepository = (*ShoppingStore)(nil)

func (s *ShoppingStore) load(ctx context.Context) ([]pantry.ShoppingItem, error) {
	data, ok, err := s.kv.Get(ctx, keyShopping)
	if err != nil {
		return nil, errors.NewStorageError("read shopping list", err)
	}
	if !ok {
		return nil, nil
	}

	var items []pantry.ShoppingItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.NewStorageError("decode shopping list", err)
	}
	return items, nil
}

func (s *ShoppingStore) save(ctx context.Context, items []pantry.ShoppingItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return errors.NewStorageError("encode shopping list", err)
	}
	if err := s.kv.Set(ctx, keyShopping, data); err != nil {
		return errors.NewStorageError("write shopping list", err)
	}
	return nil
}

// AddIngredients bulk-inserts a recipe's ingredient list. For each
// incoming ingredient, in list order, an exact name match among
// *unchecked* rows merges amounts (free-text append with " + ", skipped
// when the incoming amount is empty or already a substring of the
// existing text); otherwise a new unchecked row is appended. Within one
// batch, later duplicates merge into the row the batch itself created.
// Checked rows are never merge targets.
func (s *ShoppingStore) AddIngredients(ctx context.Context, ingredients []recipe.Ingredient, recipeName string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return err
	}

	for _, ing := range ingredients {
		if merged := mergeAmount(items, ing); merged {
			continue
		}
		items = append(items, pantry.ShoppingItem{
			ID:         s.ids.next(),
			Name:       ing.Name,
			Amount:     ing.Amount,
			Checked:    false,
			RecipeName: recipeName,
		})
	}

	if err := s.save(ctx, items); err != nil {
		return err
	}

	s.logger.Debug("shopping list updated",
		zap.Int("incoming", len(ingredients)),
		zap.Int("rows", len(items)),
		zap.String("recipe", recipeName),
	)
	return nil
}

// mergeAmount finds an unchecked row matching the ingredient name and
// appends the incoming amount text when both sides are non-empty and
// the incoming text is not already present. It reports whether a
// matching row existed (even if nothing was appended).
func mergeAmount(items []pantry.ShoppingItem, ing recipe.Ingredient) bool {
	for i := range items {
		if items[i].Checked || items[i].Name != ing.Name {
			continue
		}
		if ing.Amount != "" && items[i].Amount != "" && !strings.Contains(items[i].Amount, ing.Amount) {
			items[i].Amount += " + " + ing.Amount
		}
		return true
	}
	return false
}

// List returns the shopping list in insertion order.
func (s *ShoppingStore) List(ctx context.Context) ([]pantry.ShoppingItem, error) {
	return s.load(ctx)
}

// Toggle flips the checked flag of one item. Unknown ids are a no-op.
func (s *ShoppingStore) Toggle(ctx context.Context, id pantry.ID) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return err
	}

	for i := range items {
		if items[i].ID == id {
			items[i].Checked = !items[i].Checked
			return s.save(ctx, items)
		}
	}
	return nil
}

// Remove deletes one item by id.
func (s *ShoppingStore) Remove(ctx context.Context, id pantry.ID) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return err
	}

	kept := items[:0]
	for _, item := range items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	return s.save(ctx, kept)
}

// Clear wipes the entire collection.
func (s *ShoppingStore) Clear(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.kv.Delete(ctx, keyShopping); err != nil {
		return errors.NewStorageError("clear shopping list", err)
	}
	return nil
}
