package groq_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/daidai-0318/nanimeshi-web/internal/domain/credential"
	"github.com/daidai-0318/nanimeshi-web/internal/domain/recipe"
	"github.com/daidai-0318/nanimeshi-web/internal/infrastructure/ai/groq"
	"github.com/daidai-0318/nanimeshi-web/internal/infrastructure/monitoring"
	"github.com/daidai-0318/nanimeshi-web/internal/infrastructure/persistence/localstore"
	"github.com/daidai-0318/nanimeshi-web/internal/infrastructure/persistence/memory"
	"github.com/daidai-0318/nanimeshi-web/internal/ports/outbound"
	"github.com/daidai-0318/nanimeshi-web/pkg/errors"
)

const testKey = "gsk_test_key_for_client_tests"

// capturedRequest records what the fake provider received.
type capturedRequest struct {
	Authorization string
	Body          map[string]interface{}
}

type GroqClientTestSuite struct {
	suite.Suite
	credentials *localstore.CredentialStore
}

func TestGroqClientTestSuite(t *testing.T) {
	suite.Run(t, new(GroqClientTestSuite))
}

func (s *GroqClientTestSuite) SetupTest() {
	s.credentials = localstore.NewCredentialStore(memory.NewKVStore(), zap.NewNop())
	err := s.credentials.Set(context.Background(), credential.Credential(testKey))
	s.Require().NoError(err)
}

// newClient points a client at the given handler.
func (s *GroqClientTestSuite) newClient(handler http.HandlerFunc) (*groq.Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	s.T().Cleanup(server.Close)

	client := groq.NewClient(
		groq.Config{BaseURL: server.URL},
		s.credentials,
		monitoring.NewMetrics(),
		zap.NewNop(),
	)
	return client, server
}

// completionHandler answers every chat completion with the given
// content and captures the last request.
func completionHandler(content string, captured *capturedRequest) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			captured.Authorization = r.Header.Get("Authorization")
			_ = json.NewDecoder(r.Body).Decode(&captured.Body)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	}
}

func statusHandler(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":{"message":"nope"}}`))
	}
}

const recipeJSON = `{
  "name": "鶏むね肉の照り焼き",
  "description": "甘辛だれでご飯が進む定番おかず",
  "cookingTime": "15",
  "difficulty": "簡単",
  "servings": 2,
  "category": "肉料理",
  "ingredients": [
    {"name": "鶏むね肉", "amount": "300g"},
    {"name": "しょうゆ", "amount": "大さじ2"}
  ],
  "steps": ["鶏むね肉を一口大（約2〜3cm角）に切る", "中火で両面を約3分ずつ焼く"],
  "tips": "片栗粉をまぶすと柔らかく仕上がります"
}`

func (s *GroqClientTestSuite) TestRequestRecipeParsesPureJSON() {
	var captured capturedRequest
	client, _ := s.newClient(completionHandler(recipeJSON, &captured))

	rec, err := client.RequestRecipe(context.Background(), outbound.ConsultationParams{
		Mode:        outbound.ModeConsult,
		Ingredients: []string{"鶏むね肉", "しょうゆ"},
		Servings:    2,
	})
	s.Require().NoError(err)

	s.Equal("鶏むね肉の照り焼き", rec.Name)
	s.Equal(recipe.CategoryMeat, rec.Category)
	s.Equal(recipe.DifficultyEasy, rec.Difficulty)
	s.Len(rec.Ingredients, 2)
	s.Len(rec.Steps, 2)

	s.Equal("Bearer "+testKey, captured.Authorization)
	s.Equal("llama-3.3-70b-versatile", captured.Body["model"])
	s.InDelta(0.8, captured.Body["temperature"], 0.001)
	s.EqualValues(2048, captured.Body["max_tokens"])
	s.Equal(map[string]interface{}{"type": "json_object"}, captured.Body["response_format"])
}

func (s *GroqClientTestSuite) TestRequestRecipeUnwrapsFencedJSON() {
	fenced := "もちろんです！こちらはいかがでしょうか。\n```json\n" + recipeJSON + "\n```"
	client, _ := s.newClient(completionHandler(fenced, nil))

	rec, err := client.RequestRecipe(context.Background(), outbound.ConsultationParams{Mode: outbound.ModeRandom})
	s.Require().NoError(err)
	s.Equal("鶏むね肉の照り焼き", rec.Name)
}

func (s *GroqClientTestSuite) TestRequestRecipePromptFields() {
	var captured capturedRequest
	client, _ := s.newClient(completionHandler(recipeJSON, &captured))

	_, err := client.RequestRecipe(context.Background(), outbound.ConsultationParams{
		Mode:        outbound.ModeConsult,
		Ingredients: []string{"卵", "ねぎ"},
		Mood:        "さっぱりしたもの",
		CookingTime: "15分以内",
		Servings:    2,
		RecentMeals: []string{"カレーライス"},
	})
	s.Require().NoError(err)

	messages := captured.Body["messages"].([]interface{})
	s.Require().Len(messages, 2)

	system := messages[0].(map[string]interface{})
	s.Equal("system", system["role"])
	s.Contains(system["content"], "なにめしシェフ")
	s.NotContains(system["content"], "包丁を使わない")

	user := messages[1].(map[string]interface{})
	s.Equal("user", user["role"])
	content := user["content"].(string)
	s.Contains(content, "冷蔵庫にある食材: 卵、ねぎ")
	s.Contains(content, "今日の気分: さっぱりしたもの")
	s.Contains(content, "調理時間: 15分以内")
	s.Contains(content, "人数: 2人分")
	s.Contains(content, "最近食べたもの: カレーライス")
	s.Contains(content, "最近の食事と被らない")
}

func (s *GroqClientTestSuite) TestLazyModeConstrainsPrompt() {
	var captured capturedRequest
	client, _ := s.newClient(completionHandler(recipeJSON, &captured))

	_, err := client.RequestRecipe(context.Background(), outbound.ConsultationParams{Mode: outbound.ModeLazy})
	s.Require().NoError(err)

	messages := captured.Body["messages"].([]interface{})
	system := messages[0].(map[string]interface{})
	s.Contains(system["content"], "包丁を使わない、調理時間5分以内")

	user := messages[1].(map[string]interface{})
	s.Contains(user["content"], "手抜きモードでお願いします")
}

func (s *GroqClientTestSuite) TestUnauthorizedMapsToCredentialInvalid() {
	client, _ := s.newClient(statusHandler(http.StatusUnauthorized))

	_, err := client.RequestRecipe(context.Background(), outbound.ConsultationParams{Mode: outbound.ModeRandom})
	s.Require().Error(err)
	s.True(errors.Is(err, errors.CodeCredentialInvalid))
}

func (s *GroqClientTestSuite) TestRateLimitMapsToRateLimited() {
	client, _ := s.newClient(statusHandler(http.StatusTooManyRequests))

	_, err := client.RequestRecipe(context.Background(), outbound.ConsultationParams{Mode: outbound.ModeRandom})
	s.Require().Error(err)
	s.True(errors.Is(err, errors.CodeRateLimited))
}

func (s *GroqClientTestSuite) TestServerErrorMapsToAPIError() {
	client, _ := s.newClient(statusHandler(http.StatusInternalServerError))

	_, err := client.RequestRecipe(context.Background(), outbound.ConsultationParams{Mode: outbound.ModeRandom})
	s.Require().Error(err)
	s.True(errors.Is(err, errors.CodeAPIError))
}

func (s *GroqClientTestSuite) TestEmptyContentMapsToContentMissing() {
	client, _ := s.newClient(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": ""}},
			},
		})
	})

	_, err := client.RequestRecipe(context.Background(), outbound.ConsultationParams{Mode: outbound.ModeRandom})
	s.Require().Error(err)
	s.True(errors.Is(err, errors.CodeContentMissing))
}

func (s *GroqClientTestSuite) TestGarbageContentMapsToParseFailure() {
	client, _ := s.newClient(completionHandler("今日はレシピを思いつきませんでした。", nil))

	_, err := client.RequestRecipe(context.Background(), outbound.ConsultationParams{Mode: outbound.ModeRandom})
	s.Require().Error(err)
	s.True(errors.Is(err, errors.CodeParseFailure))
}

func (s *GroqClientTestSuite) TestMissingCredentialFailsBeforeRequest() {
	called := false
	client, _ := s.newClient(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	s.Require().NoError(s.credentials.Remove(context.Background()))

	_, err := client.RequestRecipe(context.Background(), outbound.ConsultationParams{Mode: outbound.ModeRandom})
	s.Require().Error(err)
	s.True(errors.Is(err, errors.CodeCredentialMissing))
	s.False(called)
}

func (s *GroqClientTestSuite) TestEstimatePFCRoundsAndClamps() {
	var captured capturedRequest
	client, _ := s.newClient(completionHandler(`{"protein": 23.6, "fat": -2, "carbs": 37.2}`, &captured))

	pfc, err := client.EstimatePFC(context.Background(), outbound.EstimateParams{
		RecipeName:  "親子丼",
		Category:    "ご飯もの",
		Ingredients: "鶏もも肉 200g、卵 2個、白米 300g",
		Servings:    2,
	})
	s.Require().NoError(err)

	s.Equal(24, pfc.Protein)
	s.Equal(0, pfc.Fat)
	s.Equal(37, pfc.Carbs)
	s.Equal(0, pfc.Calories)

	s.InDelta(0.3, captured.Body["temperature"], 0.001)
	s.EqualValues(256, captured.Body["max_tokens"])
	s.Equal(map[string]interface{}{"type": "json_object"}, captured.Body["response_format"])

	messages := captured.Body["messages"].([]interface{})
	system := messages[0].(map[string]interface{})
	s.Contains(system["content"], "管理栄養士")

	user := messages[1].(map[string]interface{})
	content := user["content"].(string)
	s.Contains(content, "料理名: 親子丼")
	s.Contains(content, "カテゴリ: ご飯もの")
	s.Contains(content, "材料: 鶏もも肉 200g")
	s.Contains(content, "人数: 2人分（1人前の栄養素を回答してください）")
}

func (s *GroqClientTestSuite) TestChatReplaysTranscript() {
	var captured capturedRequest
	client, _ := s.newClient(completionHandler("  片栗粉の代わりに小麦粉でも大丈夫です。  ", &captured))

	rec := &recipe.Recipe{
		Name:        "鶏むね肉の照り焼き",
		Description: "甘辛だれでご飯が進む定番おかず",
		CookingTime: "15",
		Difficulty:  recipe.DifficultyEasy,
		Servings:    2,
		Category:    recipe.CategoryMeat,
		Ingredients: []recipe.Ingredient{{Name: "鶏むね肉", Amount: "300g"}},
		Steps:       []string{"切る", "焼く"},
		Tips:        "片栗粉をまぶすと柔らかく仕上がります",
	}
	transcript := []outbound.ChatMessage{
		{Role: outbound.RoleUser, Content: "もっと簡単にできますか？"},
		{Role: outbound.RoleAssistant, Content: "電子レンジでも作れます。"},
	}

	answer, err := client.ChatAboutRecipe(context.Background(), rec, transcript, "片栗粉がないのですが")
	s.Require().NoError(err)
	s.Equal("片栗粉の代わりに小麦粉でも大丈夫です。", answer)

	s.Nil(captured.Body["response_format"])
	s.InDelta(0.7, captured.Body["temperature"], 0.001)
	s.EqualValues(1024, captured.Body["max_tokens"])

	messages := captured.Body["messages"].([]interface{})
	s.Require().Len(messages, 4)

	system := messages[0].(map[string]interface{})
	content := system["content"].(string)
	s.Contains(content, "【現在のレシピ】")
	s.Contains(content, "料理名: 鶏むね肉の照り焼き")
	s.Contains(content, "材料: 鶏むね肉(300g)")
	s.Contains(content, "手順: 1. 切る\n2. 焼く")
	s.Contains(content, "ワンポイント: 片栗粉をまぶすと柔らかく仕上がります")

	s.Equal("もっと簡単にできますか？", messages[1].(map[string]interface{})["content"])
	s.Equal("電子レンジでも作れます。", messages[2].(map[string]interface{})["content"])
	s.Equal("片栗粉がないのですが", messages[3].(map[string]interface{})["content"])
}
