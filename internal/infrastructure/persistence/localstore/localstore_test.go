package localstore

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/daidai-0318/nanimeshi-web/internal/domain/credential"
	"github.com/daidai-0318/nanimeshi-web/internal/domain/nutrition"
	"github.com/daidai-0318/nanimeshi-web/internal/domain/pantry"
	"github.com/daidai-0318/nanimeshi-web/internal/domain/recipe"
	"github.com/daidai-0318/nanimeshi-web/internal/infrastructure/persistence/memory"
	"github.com/daidai-0318/nanimeshi-web/internal/ports/outbound"
	apperrors "github.com/daidai-0318/nanimeshi-web/pkg/errors"
)

type LocalStoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	kv    *memory.KVStore
	faker *gofakeit.Faker
}

func (s *LocalStoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.kv = memory.NewKVStore()
	s.faker = gofakeit.New(42)
}

func (s *LocalStoreTestSuite) TestCredentialStore() {
	store := NewCredentialStore(s.kv, zap.NewNop())

	s.Run("HasFalseWhenUnset", func() {
		assert.False(s.T(), store.Has(s.ctx))
	})

	s.Run("SetThenHas", func() {
		require.NoError(s.T(), store.Set(s.ctx, credential.Credential("gsk_test123456")))
		assert.True(s.T(), store.Has(s.ctx))

		cred, ok, err := store.Get(s.ctx)
		require.NoError(s.T(), err)
		require.True(s.T(), ok)
		assert.Equal(s.T(), "gsk_test123456", cred.String())
	})

	s.Run("RemoveThenHasFalse", func() {
		require.NoError(s.T(), store.Set(s.ctx, credential.Credential("gsk_test123456")))
		require.NoError(s.T(), store.Remove(s.ctx))
		assert.False(s.T(), store.Has(s.ctx))
	})

	s.Run("WrongPrefixRejected", func() {
		err := store.Set(s.ctx, credential.Credential("sk-not-a-groq-key"))
		require.Error(s.T(), err)
		assert.True(s.T(), apperrors.Is(err, apperrors.CodeValidationFailed))
	})

	s.Run("EmptyRejected", func() {
		err := store.Set(s.ctx, credential.Credential("   "))
		require.Error(s.T(), err)
		assert.True(s.T(), apperrors.Is(err, apperrors.CodeValidationFailed))
	})
}

func (s *LocalStoreTestSuite) TestMealStore() {
	store := NewMealStore(s.kv, zap.NewNop())

	s.Run("AddThenListNewestFirst", func() {
		first, err := store.Add(s.ctx, outbound.MealInput{RecipeName: "肉じゃが", Category: "肉料理"})
		require.NoError(s.T(), err)
		second, err := store.Add(s.ctx, outbound.MealInput{RecipeName: "味噌汁", Category: "スープ"})
		require.NoError(s.T(), err)

		meals, err := store.List(s.ctx, 0)
		require.NoError(s.T(), err)
		require.Len(s.T(), meals, 2)
		assert.Equal(s.T(), second, meals[0].ID)
		assert.Equal(s.T(), "味噌汁", meals[0].RecipeName)
		assert.Equal(s.T(), first, meals[1].ID)
		assert.NotEmpty(s.T(), meals[0].CookedAt)
	})

	s.Run("IdentitiesUniqueWithinRun", func() {
		seen := make(map[pantry.ID]bool)
		for i := 0; i < 50; i++ {
			id, err := store.Add(s.ctx, outbound.MealInput{
				RecipeName: s.faker.Dinner(),
				Category:   "その他",
			})
			require.NoError(s.T(), err)
			assert.False(s.T(), seen[id], "identity %d issued twice", id)
			seen[id] = true
		}
	})

	s.Run("ListHonorsLimit", func() {
		for i := 0; i < 5; i++ {
			_, err := store.Add(s.ctx, outbound.MealInput{RecipeName: s.faker.Dinner(), Category: "その他"})
			require.NoError(s.T(), err)
		}
		meals, err := store.List(s.ctx, 3)
		require.NoError(s.T(), err)
		assert.Len(s.T(), meals, 3)
	})

	s.Run("AttachPFCAfterInsert", func() {
		id, err := store.Add(s.ctx, outbound.MealInput{RecipeName: "親子丼", Category: "ご飯もの"})
		require.NoError(s.T(), err)

		pfc := nutrition.PFC{Protein: 25, Fat: 12, Carbs: 60, Calories: 450}
		require.NoError(s.T(), store.AttachPFC(s.ctx, id, pfc))

		meals, err := store.List(s.ctx, 0)
		require.NoError(s.T(), err)
		require.NotNil(s.T(), meals[0].PFC)
		assert.Equal(s.T(), pfc, *meals[0].PFC)
	})

	s.Run("AttachPFCUnknownIDIsNoOp", func() {
		require.NoError(s.T(), store.AttachPFC(s.ctx, pantry.ID(1), nutrition.PFC{Protein: 1}))
	})

	s.Run("CorruptCollectionSurfacesStorageError", func() {
		require.NoError(s.T(), s.kv.Set(s.ctx, keyMeals, []byte("{not json")))
		_, err := store.List(s.ctx, 0)
		require.Error(s.T(), err)
		assert.True(s.T(), apperrors.Is(err, apperrors.CodeStorageError))
	})
}

func (s *LocalStoreTestSuite) TestFavoriteStore() {
	store := NewFavoriteStore(s.kv, zap.NewNop())

	s.Run("AddListRemove", func() {
		id, err := store.Add(s.ctx, "麻婆豆腐", `{"name":"麻婆豆腐"}`)
		require.NoError(s.T(), err)

		favorites, err := store.List(s.ctx)
		require.NoError(s.T(), err)
		require.Len(s.T(), favorites, 1)
		assert.Equal(s.T(), id, favorites[0].ID)
		assert.Equal(s.T(), `{"name":"麻婆豆腐"}`, favorites[0].RecipeData)
		assert.NotEmpty(s.T(), favorites[0].CreatedAt)

		require.NoError(s.T(), store.Remove(s.ctx, id))
		favorites, err = store.List(s.ctx)
		require.NoError(s.T(), err)
		assert.Empty(s.T(), favorites)
	})

	s.Run("RemoveKeepsOthers", func() {
		a, err := store.Add(s.ctx, "カレー", `{"name":"カレー"}`)
		require.NoError(s.T(), err)
		b, err := store.Add(s.ctx, "シチュー", `{"name":"シチュー"}`)
		require.NoError(s.T(), err)

		require.NoError(s.T(), store.Remove(s.ctx, a))

		favorites, err := store.List(s.ctx)
		require.NoError(s.T(), err)
		require.Len(s.T(), favorites, 1)
		assert.Equal(s.T(), b, favorites[0].ID)
	})
}

func (s *LocalStoreTestSuite) TestShoppingStoreMerge() {
	s.Run("SameNameMergesAmounts", func() {
		store := NewShoppingStore(memory.NewKVStore(), zap.NewNop())

		require.NoError(s.T(), store.AddIngredients(s.ctx, []recipe.Ingredient{{Name: "卵", Amount: "2個"}}, "オムレツ"))
		require.NoError(s.T(), store.AddIngredients(s.ctx, []recipe.Ingredient{{Name: "卵", Amount: "3個"}}, "親子丼"))

		items, err := store.List(s.ctx)
		require.NoError(s.T(), err)
		require.Len(s.T(), items, 1)
		assert.Equal(s.T(), "卵", items[0].Name)
		assert.Equal(s.T(), "2個 + 3個", items[0].Amount)
	})

	s.Run("DuplicateAmountNotReappended", func() {
		store := NewShoppingStore(memory.NewKVStore(), zap.NewNop())

		require.NoError(s.T(), store.AddIngredients(s.ctx, []recipe.Ingredient{{Name: "卵", Amount: "2個"}}, ""))
		require.NoError(s.T(), store.AddIngredients(s.ctx, []recipe.Ingredient{{Name: "卵", Amount: "2個"}}, ""))

		items, err := store.List(s.ctx)
		require.NoError(s.T(), err)
		require.Len(s.T(), items, 1)
		assert.Equal(s.T(), "2個", items[0].Amount)
	})

	s.Run("CheckedItemsNeverMergeTargets", func() {
		store := NewShoppingStore(memory.NewKVStore(), zap.NewNop())

		require.NoError(s.T(), store.AddIngredients(s.ctx, []recipe.Ingredient{{Name: "卵", Amount: "2個"}}, ""))
		items, err := store.List(s.ctx)
		require.NoError(s.T(), err)
		require.NoError(s.T(), store.Toggle(s.ctx, items[0].ID))

		require.NoError(s.T(), store.AddIngredients(s.ctx, []recipe.Ingredient{{Name: "卵", Amount: "1個"}}, ""))

		items, err = store.List(s.ctx)
		require.NoError(s.T(), err)
		require.Len(s.T(), items, 2)
		assert.True(s.T(), items[0].Checked)
		assert.Equal(s.T(), "2個", items[0].Amount)
		assert.False(s.T(), items[1].Checked)
		assert.Equal(s.T(), "1個", items[1].Amount)
	})

	s.Run("SameBatchDuplicatesMergeIntoOneRow", func() {
		store := NewShoppingStore(memory.NewKVStore(), zap.NewNop())

		require.NoError(s.T(), store.AddIngredients(s.ctx, []recipe.Ingredient{
			{Name: "ねぎ", Amount: "1本"},
			{Name: "ねぎ", Amount: "2本"},
		}, "鍋"))

		items, err := store.List(s.ctx)
		require.NoError(s.T(), err)
		require.Len(s.T(), items, 1)
		assert.Equal(s.T(), "1本 + 2本", items[0].Amount)
	})

	s.Run("DifferentNamesStaySeparate", func() {
		store := NewShoppingStore(memory.NewKVStore(), zap.NewNop())

		require.NoError(s.T(), store.AddIngredients(s.ctx, []recipe.Ingredient{
			{Name: "豚肉", Amount: "200g"},
			{Name: "玉ねぎ", Amount: "1個"},
		}, "生姜焼き"))

		items, err := store.List(s.ctx)
		require.NoError(s.T(), err)
		assert.Len(s.T(), items, 2)
	})
}

func (s *LocalStoreTestSuite) TestShoppingStoreOperations() {
	store := NewShoppingStore(s.kv, zap.NewNop())

	s.Run("ToggleFlipsChecked", func() {
		require.NoError(s.T(), store.AddIngredients(s.ctx, []recipe.Ingredient{{Name: "味噌", Amount: "大さじ2"}}, ""))
		items, err := store.List(s.ctx)
		require.NoError(s.T(), err)
		id := items[0].ID

		require.NoError(s.T(), store.Toggle(s.ctx, id))
		items, err = store.List(s.ctx)
		require.NoError(s.T(), err)
		assert.True(s.T(), items[0].Checked)

		require.NoError(s.T(), store.Toggle(s.ctx, id))
		items, err = store.List(s.ctx)
		require.NoError(s.T(), err)
		assert.False(s.T(), items[0].Checked)
	})

	s.Run("RemoveDeletesRow", func() {
		require.NoError(s.T(), store.AddIngredients(s.ctx, []recipe.Ingredient{{Name: "豆腐", Amount: "1丁"}}, ""))
		items, err := store.List(s.ctx)
		require.NoError(s.T(), err)
		before := len(items)

		var id pantry.ID
		for _, item := range items {
			if item.Name == "豆腐" {
				id = item.ID
			}
		}
		require.NoError(s.T(), store.Remove(s.ctx, id))

		items, err = store.List(s.ctx)
		require.NoError(s.T(), err)
		assert.Len(s.T(), items, before-1)
	})

	s.Run("ClearWipesCollection", func() {
		require.NoError(s.T(), store.AddIngredients(s.ctx, []recipe.Ingredient{{Name: "米", Amount: "2合"}}, ""))
		require.NoError(s.T(), store.Clear(s.ctx))

		items, err := store.List(s.ctx)
		require.NoError(s.T(), err)
		assert.Empty(s.T(), items)
	})
}

func (s *LocalStoreTestSuite) TestPreferenceStore() {
	store := NewPreferenceStore(s.kv)

	s.Run("DefaultsToLight", func() {
		theme, err := store.Theme(s.ctx)
		require.NoError(s.T(), err)
		assert.Equal(s.T(), ThemeLight, theme)
	})

	s.Run("RoundTrip", func() {
		require.NoError(s.T(), store.SetTheme(s.ctx, ThemeDark))
		theme, err := store.Theme(s.ctx)
		require.NoError(s.T(), err)
		assert.Equal(s.T(), ThemeDark, theme)
	})

	s.Run("RejectsUnknownTheme", func() {
		err := store.SetTheme(s.ctx, "sepia")
		require.Error(s.T(), err)
	})
}

func TestLocalStoreTestSuite(t *testing.T) {
	suite.Run(t, new(LocalStoreTestSuite))
}
