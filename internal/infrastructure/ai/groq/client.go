// Package groq provides recipe suggestion, follow-up chat, and
// nutrition estimation over the Groq chat-completion API.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/daidai-0318/nanimeshi-web/internal/domain/nutrition"
	"github.com/daidai-0318/nanimeshi-web/internal/domain/recipe"
	"github.com/daidai-0318/nanimeshi-web/internal/infrastructure/monitoring"
	"github.com/daidai-0318/nanimeshi-web/internal/ports/outbound"
	"github.com/daidai-0318/nanimeshi-web/pkg/errors"
	"github.com/daidai-0318/nanimeshi-web/pkg/jsonextract"
)

// DefaultBaseURL is the Groq OpenAI-compatible endpoint.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

// DefaultModel is used when the configuration does not name one.
const DefaultModel = "llama-3.3-70b-versatile"

// Config holds the provider connection settings.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client implements the AIService interface against a Groq-compatible
// chat-completion endpoint. The API key is read from the credential
// store on every call so key changes take effect immediately.
type Client struct {
	config      Config
	credentials outbound.CredentialRepository
	client      *http.Client
	metrics     *monitoring.Metrics
	logger      *zap.Logger
}

// NewClient creates a provider client.
func NewClient(config Config, credentials outbound.CredentialRepository, metrics *monitoring.Metrics, logger *zap.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}

	return &Client{
		config:      config,
		credentials: credentials,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Chat completion wire structures.
type chatCompletionRequest struct {
	Model          string                 `json:"model"`
	Messages       []outbound.ChatMessage `json:"messages"`
	Temperature    float64                `json:"temperature"`
	MaxTokens      int                    `json:"max_tokens"`
	ResponseFormat *responseFormat        `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionResponse struct {
	Choices []choice `json:"choices"`
	Usage   usage    `json:"usage"`
}

type choice struct {
	Message      outbound.ChatMessage `json:"message"`
	FinishReason string               `json:"finish_reason"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Per-call request parameters tuned for each use:
// suggestions want variety, estimates want determinism.
const (
	recipeTemperature = 0.8
	recipeMaxTokens   = 2048

	chatTemperature = 0.7
	chatMaxTokens   = 1024

	nutritionTemperature = 0.3
	nutritionMaxTokens   = 256
)

// estimateResponse keeps the raw float values so rounding happens in
// one place, in the nutrition package.
type estimateResponse struct {
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
	Calories float64 `json:"calories"`
}

// RequestRecipe asks the provider for a single recipe suggestion and
// parses the JSON payload out of the completion text.
func (c *Client) RequestRecipe(ctx context.Context, params outbound.ConsultationParams) (*recipe.Recipe, error) {
	messages := []outbound.ChatMessage{
		{Role: outbound.RoleSystem, Content: buildRecipeSystemPrompt(params.Mode)},
		{Role: outbound.RoleUser, Content: buildRecipeUserMessage(params)},
	}

	text, err := c.complete(ctx, "recipe", chatCompletionRequest{
		Model:          c.config.Model,
		Messages:       messages,
		Temperature:    recipeTemperature,
		MaxTokens:      recipeMaxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}

	payload, ok := jsonextract.Extract(text)
	if !ok {
		c.metrics.RecordProviderCall("recipe", monitoring.OutcomeParseFailure)
		return nil, errors.NewParseFailureError("レシピ", nil)
	}

	var rec recipe.Recipe
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		c.metrics.RecordProviderCall("recipe", monitoring.OutcomeParseFailure)
		c.logger.Warn("Recipe payload failed to unmarshal",
			zap.Error(err),
			zap.Int("payload_length", len(payload)),
		)
		return nil, errors.NewParseFailureError("レシピ", err)
	}

	c.metrics.RecordProviderCall("recipe", monitoring.OutcomeSuccess)
	return &rec, nil
}

// ChatAboutRecipe answers a follow-up question about a suggested
// recipe. The full recipe is serialized into the system prompt and the
// prior transcript is replayed ahead of the new question.
func (c *Client) ChatAboutRecipe(ctx context.Context, rec *recipe.Recipe, transcript []outbound.ChatMessage, userMessage string) (string, error) {
	messages := make([]outbound.ChatMessage, 0, len(transcript)+2)
	messages = append(messages, outbound.ChatMessage{Role: outbound.RoleSystem, Content: buildChatSystemPrompt(rec)})
	messages = append(messages, transcript...)
	messages = append(messages, outbound.ChatMessage{Role: outbound.RoleUser, Content: userMessage})

	text, err := c.complete(ctx, "chat", chatCompletionRequest{
		Model:       c.config.Model,
		Messages:    messages,
		Temperature: chatTemperature,
		MaxTokens:   chatMaxTokens,
	})
	if err != nil {
		return "", err
	}

	c.metrics.RecordProviderCall("chat", monitoring.OutcomeSuccess)
	return strings.TrimSpace(text), nil
}

// EstimatePFC asks for a per-serving macro estimate. Values come back
// as floats and are rounded and clamped before use.
func (c *Client) EstimatePFC(ctx context.Context, params outbound.EstimateParams) (nutrition.PFC, error) {
	messages := []outbound.ChatMessage{
		{Role: outbound.RoleSystem, Content: nutritionSystemPrompt},
		{Role: outbound.RoleUser, Content: buildNutritionUserMessage(params)},
	}

	text, err := c.complete(ctx, "nutrition", chatCompletionRequest{
		Model:          c.config.Model,
		Messages:       messages,
		Temperature:    nutritionTemperature,
		MaxTokens:      nutritionMaxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nutrition.PFC{}, err
	}

	payload, ok := jsonextract.Extract(text)
	if !ok {
		c.metrics.RecordProviderCall("nutrition", monitoring.OutcomeParseFailure)
		return nutrition.PFC{}, errors.NewParseFailureError("PFC推定", nil)
	}

	var est estimateResponse
	if err := json.Unmarshal([]byte(payload), &est); err != nil {
		c.metrics.RecordProviderCall("nutrition", monitoring.OutcomeParseFailure)
		return nutrition.PFC{}, errors.NewParseFailureError("PFC推定", err)
	}

	c.metrics.RecordProviderCall("nutrition", monitoring.OutcomeSuccess)
	return nutrition.FromEstimate(est.Protein, est.Fat, est.Carbs, est.Calories), nil
}

// complete performs a single chat-completion round trip and returns
// the assistant message content. Errors are classified by status:
// 401 means a bad key, 429 means the caller should wait, anything
// else is a generic provider failure. There are no retries.
func (c *Client) complete(ctx context.Context, call string, reqBody chatCompletionRequest) (string, error) {
	cred, ok, err := c.credentials.Get(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		c.metrics.RecordProviderCall(call, monitoring.OutcomeCredentialMissing)
		return "", errors.NewCredentialMissingError()
	}

	requestID := uuid.New().String()

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode provider request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", errors.Wrap(err, "failed to build provider request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cred.String())

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.RecordProviderCall(call, monitoring.OutcomeTransport)
		c.logger.Error("Provider request failed",
			zap.String("request_id", requestID),
			zap.String("call", call),
			zap.Error(err),
		)
		return "", errors.NewAPIError(0).WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.RecordProviderCall(call, monitoring.OutcomeTransport)
		return "", errors.NewAPIError(resp.StatusCode).WithCause(err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Provider returned error status",
			zap.String("request_id", requestID),
			zap.String("call", call),
			zap.Int("status", resp.StatusCode),
		)
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			c.metrics.RecordProviderCall(call, monitoring.OutcomeCredential)
			return "", errors.NewCredentialInvalidError()
		case http.StatusTooManyRequests:
			c.metrics.RecordProviderCall(call, monitoring.OutcomeRateLimited)
			return "", errors.NewRateLimitedError()
		default:
			c.metrics.RecordProviderCall(call, monitoring.OutcomeAPIError)
			return "", errors.NewAPIError(resp.StatusCode)
		}
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		c.metrics.RecordProviderCall(call, monitoring.OutcomeParseFailure)
		return "", errors.NewParseFailureError("レスポンス", err)
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		c.metrics.RecordProviderCall(call, monitoring.OutcomeContentMissing)
		return "", errors.NewContentMissingError()
	}

	c.logger.Info("Provider call completed",
		zap.String("request_id", requestID),
		zap.String("call", call),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("prompt_tokens", completion.Usage.PromptTokens),
		zap.Int("completion_tokens", completion.Usage.CompletionTokens),
	)

	return completion.Choices[0].Message.Content, nil
}
