package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/souschef-app/backend/internal/model"
)

// How long a recipe response may wait on image generation before shipping
// without one.
const defaultImageWait = 30 * time.Second

const draftTTL = 24 * time.Hour

const missingKeyMessage = "The recipe assistant isn't configured yet. Set LLM_API_KEY (or LLM_API_KEY_FILE) on the server and try again."

// LLMService handles interactions with the completion service
type LLMService struct {
	apiKey    string
	apiURL    string
	client    *http.Client
	redis     *redis.Client
	images    *ImageService
	imageWait time.Duration
	prompts   *PromptBuilder
	extractor *JSONExtractor
}

// NewLLMService creates a new LLMService instance. A missing API key is not
// an error: the chat and search flows short-circuit with an instructional
// message instead of calling the network.
func NewLLMService(redisClient *redis.Client, images *ImageService) *LLMService {
	apiKey := os.Getenv("LLM_API_KEY")
	if apiKey == "" {
		if apiKeyFile := os.Getenv("LLM_API_KEY_FILE"); apiKeyFile != "" {
			if data, err := os.ReadFile(apiKeyFile); err == nil {
				apiKey = strings.TrimSpace(string(data))
			} else {
				log.Printf("[LLMService] failed to read API key file: %v", err)
			}
		}
	}
	if apiKey == "" {
		log.Printf("[LLMService] no API key configured, recipe generation disabled")
	}

	apiURL := os.Getenv("LLM_API_URL")
	if apiURL == "" {
		apiURL = "https://api.deepseek.com/v1/chat/completions"
	}

	return &LLMService{
		apiKey:    apiKey,
		apiURL:    apiURL,
		client:    &http.Client{Timeout: 60 * time.Second},
		redis:     redisClient,
		images:    images,
		imageWait: defaultImageWait,
		prompts:   NewPromptBuilder(),
		extractor: NewJSONExtractor(),
	}
}

// Message represents a message sent to the completion service
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request represents a request to the completion service
type Request struct {
	Model            string    `json:"model"`
	Messages         []Message `json:"messages"`
	Temperature      float64   `json:"temperature"`
	TopP             float64   `json:"top_p"`
	FrequencyPenalty float64   `json:"frequency_penalty"`
	PresencePenalty  float64   `json:"presence_penalty"`
}

// ChatResult is what every chat/search flow returns: a recipe when one was
// extracted, and always a message for the user.
type ChatResult struct {
	Recipe  *model.Recipe `json:"recipe"`
	Message string        `json:"message"`
}

// Chat runs one conversational turn: prompt construction, completion call,
// extraction/repair, draft caching and best-effort image attachment.
// Upstream failures come back as a user-visible message with a nil recipe,
// never as an error the handler has to special-case.
func (s *LLMService) Chat(ctx context.Context, userID string, messages []ChatMessage, currentRecipe *model.Recipe, availableIngredients, removedIngredients []string, prefs *model.UserPreferences) ChatResult {
	if s.apiKey == "" {
		return ChatResult{Message: missingKeyMessage}
	}

	// A follow-up turn without an explicit recipe continues from the last
	// draft this user generated.
	if currentRecipe == nil {
		currentRecipe = s.getDraft(ctx, userID)
	}

	systemPrompt := s.prompts.BuildChatPrompt(prefs, currentRecipe, availableIngredients, removedIngredients)

	reply, err := s.complete(ctx, systemPrompt, messages)
	if err != nil {
		log.Printf("[LLMService] chat completion failed: %v", err)
		return ChatResult{Message: "Sorry, I couldn't reach the recipe assistant. Please try again in a moment."}
	}

	recipe, message := s.extractor.ExtractRecipe(reply)
	if recipe == nil {
		return ChatResult{Message: message}
	}

	s.attachImage(ctx, recipe)
	s.saveDraft(ctx, userID, recipe)

	return ChatResult{Recipe: recipe, Message: message}
}

// Search generates a single recipe for a one-shot query
func (s *LLMService) Search(ctx context.Context, userID, query string, availableIngredients []string, prefs *model.UserPreferences) ChatResult {
	if s.apiKey == "" {
		return ChatResult{Message: missingKeyMessage}
	}

	systemPrompt := s.prompts.BuildSearchPrompt(prefs, availableIngredients)
	messages := []ChatMessage{{Role: "user", Content: query}}

	reply, err := s.complete(ctx, systemPrompt, messages)
	if err != nil {
		log.Printf("[LLMService] search completion failed: %v", err)
		return ChatResult{Message: "Sorry, recipe search is unavailable right now. Please try again in a moment."}
	}

	recipe, message := s.extractor.ExtractRecipe(reply)
	if recipe == nil {
		return ChatResult{Message: message}
	}

	s.attachImage(ctx, recipe)
	s.saveDraft(ctx, userID, recipe)

	return ChatResult{Recipe: recipe, Message: message}
}

// FillRecipeDetail completes a lightweight recipe into a full one. The name
// and ID of the input survive; everything missing is generated.
func (s *LLMService) FillRecipeDetail(ctx context.Context, recipe *model.Recipe, prefs *model.UserPreferences) (*model.Recipe, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("no API key configured")
	}

	systemPrompt := s.prompts.BuildDetailPrompt(prefs, recipe)
	messages := []ChatMessage{{Role: "user", Content: "Complete this recipe."}}

	reply, err := s.complete(ctx, systemPrompt, messages)
	if err != nil {
		return nil, fmt.Errorf("detail completion failed: %w", err)
	}

	full, _ := s.extractor.ExtractRecipe(reply)
	if full == nil {
		return nil, fmt.Errorf("no recipe in detail reply")
	}

	// The caller's identity for this recipe must not change.
	full.ID = recipe.ID
	full.Name = recipe.Name
	if full.Description == "" {
		full.Description = recipe.Description
	}
	if full.ImageURL == "" {
		full.ImageURL = recipe.ImageURL
	}

	return full, nil
}

// complete performs one chat-completions call and returns the raw reply text
func (s *LLMService) complete(ctx context.Context, systemPrompt string, messages []ChatMessage) (string, error) {
	apiMessages := make([]Message, 0, len(messages)+1)
	apiMessages = append(apiMessages, Message{Role: "system", Content: systemPrompt})
	for _, m := range messages {
		apiMessages = append(apiMessages, Message{Role: m.Role, Content: m.Content})
	}

	reqBody := Request{
		Model:            "deepseek-chat",
		Messages:         apiMessages,
		Temperature:      0.9,
		TopP:             0.9,
		FrequencyPenalty: 0.5,
		PresencePenalty:  0.5,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no response from API")
	}

	return result.Choices[0].Message.Content, nil
}

// attachImage generates and attaches a hosted image URL under a bounded
// wait. A slow or failed image call never blocks or fails the recipe
// response.
func (s *LLMService) attachImage(ctx context.Context, recipe *model.Recipe) {
	if s.images == nil {
		return
	}

	imgCtx, cancel := context.WithTimeout(ctx, s.imageWait)
	defer cancel()

	url, err := s.images.GenerateRecipeImage(imgCtx, recipe)
	if err != nil {
		log.Printf("[LLMService] proceeding without image for %q: %v", recipe.Name, err)
		return
	}
	recipe.ImageURL = url
}

// saveDraft caches the last extracted recipe per user so follow-up chat
// turns can modify it without the client resending it
func (s *LLMService) saveDraft(ctx context.Context, userID string, recipe *model.Recipe) {
	if s.redis == nil || userID == "" {
		return
	}

	data, err := json.Marshal(recipe)
	if err != nil {
		return
	}

	key := fmt.Sprintf("recipe:draft:%s", userID)
	if err := s.redis.Set(ctx, key, data, draftTTL).Err(); err != nil {
		log.Printf("[LLMService] failed to cache draft: %v", err)
	}
}

func (s *LLMService) getDraft(ctx context.Context, userID string) *model.Recipe {
	if s.redis == nil || userID == "" {
		return nil
	}

	key := fmt.Sprintf("recipe:draft:%s", userID)
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}

	var recipe model.Recipe
	if err := json.Unmarshal(data, &recipe); err != nil {
		return nil
	}
	return &recipe
}
