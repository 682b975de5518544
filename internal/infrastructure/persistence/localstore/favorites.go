package localstore

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/daidai-0318/nanimeshi-web/internal/domain/pantry"
	"github.com/daidai-0318/nanimeshi-web/internal/ports/outbound"
	"github.com/daidai-0318/nanimeshi-web/pkg/errors"
)

// FavoriteStore stores bookmarked recipes, independent of the meal log.
type FavoriteStore struct {
	kv     outbound.KVStore
	ids    idGenerator
	mutex  sync.Mutex
	logger *zap.Logger
}

// NewFavoriteStore creates a favorite store over kv.
func NewFavoriteStore(kv outbound.KVStore, logger *zap.Logger) *FavoriteStore {
	return &FavoriteStore{
		kv:     kv,
		logger: logger.Named("favorite-store"),
	}
}

var _ outbound.FavoriteRepository = (*FavoriteStore)(nil)

func (s *FavoriteStore) load(ctx context.Context) ([]pantry.Favorite, error) {
	data, ok, err := s.kv.Get(ctx, keyFavorites)
	if err != nil {
		return nil, errors.NewStorageError("read favorites", err)
	}
	if !ok {
		return nil, nil
	}

	var favorites []pantry.Favorite
	if err := json.Unmarshal(data, &favorites); err != nil {
		return nil, errors.NewStorageError("decode favorites", err)
	}
	return favorites, nil
}

func (s *FavoriteStore) save(ctx context.Context, favorites []pantry.Favorite) error {
	data, err := json.Marshal(favorites)
	if err != nil {
		return errors.NewStorageError("encode favorites", err)
	}
	if err := s.kv.Set(ctx, keyFavorites, data); err != nil {
		return errors.NewStorageError("write favorites", err)
	}
	return nil
}

// Add head-inserts a favorite with a creation stamp.
func (s *FavoriteStore) Add(ctx context.Context, recipeName, recipeData string) (pantry.ID, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	favorites, err := s.load(ctx)
	if err != nil {
		return 0, err
	}

	id := s.ids.next()
	favorite := pantry.Favorite{
		ID:         id,
		RecipeName: recipeName,
		RecipeData: recipeData,
		CreatedAt:  time.Now().Format(time.RFC3339),
	}

	favorites = append([]pantry.Favorite{favorite}, favorites...)
	if err := s.save(ctx, favorites); err != nil {
		return 0, err
	}

	s.logger.Debug("favorite added", zap.Int64("id", int64(id)), zap.String("recipe", recipeName))
	return id, nil
}

// List returns favorites newest first.
func (s *FavoriteStore) List(ctx context.Context) ([]pantry.Favorite, error) {
	return s.load(ctx)
}

// Remove deletes the favorite with the given id. Removing an unknown id
// is a no-op.
func (s *FavoriteStore) Remove(ctx context.Context, id pantry.ID) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	favorites, err := s.load(ctx)
	if err != nil {
		return err
	}

	kept := favorites[:0]
	for _, f := range favorites {
		if f.ID != id {
			kept = append(kept, f)
		}
	}
	return s.save(ctx, kept)
}
