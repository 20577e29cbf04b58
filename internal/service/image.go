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

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/souschef-app/backend/config"
	"github.com/souschef-app/backend/internal/model"
)

// ImageGenerationRequest represents a request to the image API
type ImageGenerationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	Quality        string `json:"quality"`
	ResponseFormat string `json:"response_format"`
}

// ImageGenerationResponse represents the response from the image API
type ImageGenerationResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		URL           string `json:"url,omitempty"`
		RevisedPrompt string `json:"revised_prompt,omitempty"`
	} `json:"data"`
}

// ImageService generates recipe images and stores them in S3
type ImageService struct {
	apiKey   string
	apiURL   string
	s3Config *config.S3Config
	client   *http.Client
}

// NewImageService creates a new ImageService instance
func NewImageService(s3Config *config.S3Config) (*ImageService, error) {
	apiKey := os.Getenv("IMAGE_API_KEY")
	if apiKey == "" {
		apiKeyFile := os.Getenv("IMAGE_API_KEY_FILE")
		if apiKeyFile == "" {
			return nil, fmt.Errorf("IMAGE_API_KEY or IMAGE_API_KEY_FILE must be set")
		}

		apiKeyBytes, err := os.ReadFile(apiKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read API key file: %w", err)
		}

		apiKey = strings.TrimSpace(string(apiKeyBytes))
		if apiKey == "" {
			return nil, fmt.Errorf("API key file is empty")
		}
	}

	apiURL := os.Getenv("IMAGE_API_URL")
	if apiURL == "" {
		apiURL = "https://api.openai.com/v1/images/generations"
	}

	return &ImageService{
		apiKey:   apiKey,
		apiURL:   apiURL,
		s3Config: s3Config,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// GenerateRecipeImage generates a hosted image for an extracted recipe. The
// caller bounds the wait via ctx; a cancelled context aborts the request.
func (s *ImageService) GenerateRecipeImage(ctx context.Context, recipe *model.Recipe) (string, error) {
	prompt := buildRecipeImagePrompt(recipe)
	log.Printf("[ImageService] generating image for %q", recipe.Name)

	reqBody := ImageGenerationRequest{
		Model:          "dall-e-3",
		Prompt:         prompt,
		N:              1,
		Size:           "1024x1024",
		Quality:        "standard",
		ResponseFormat: "url",
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

	var result ImageGenerationResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Data) == 0 || result.Data[0].URL == "" {
		return "", fmt.Errorf("no image URL in API response")
	}

	imageURL := result.Data[0].URL

	// Rehost in S3 so the image survives the provider's short-lived URL.
	s3URL, err := s.rehostImage(ctx, imageURL)
	if err != nil {
		log.Printf("[ImageService] failed to upload to S3, returning original URL: %v", err)
		return imageURL, nil
	}

	return s3URL, nil
}

// rehostImage downloads the generated image and uploads it to S3
func (s *ImageService) rehostImage(ctx context.Context, imageURL string) (string, error) {
	if s.s3Config == nil {
		return "", fmt.Errorf("S3 storage not configured")
	}

	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download image, status: %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read image data: %w", err)
	}

	fileName := fmt.Sprintf("recipe-images/%s.png", uuid.New().String())

	_, err = s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(imageData),
		ContentType: aws.String("image/png"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, fileName)
	log.Printf("[ImageService] uploaded image to %s", publicURL)

	return publicURL, nil
}

// buildRecipeImagePrompt derives the image prompt from the recipe's name,
// its first five ingredients and its first presentation tip
func buildRecipeImagePrompt(recipe *model.Recipe) string {
	var sb strings.Builder

	sb.WriteString("A professional food photography shot of ")
	sb.WriteString(strings.ToLower(recipe.Name))

	if len(recipe.Ingredients) > 0 {
		names := make([]string, 0, 5)
		for i, ing := range recipe.Ingredients {
			if i == 5 {
				break
			}
			names = append(names, strings.ToLower(ing.Name))
		}
		sb.WriteString(", featuring ")
		sb.WriteString(strings.Join(names, ", "))
	}

	if len(recipe.Tips) > 0 {
		sb.WriteString(". ")
		sb.WriteString(recipe.Tips[0])
	}

	sb.WriteString(", shot with natural lighting, shallow depth of field, restaurant quality presentation, appetizing colors")

	prompt := sb.String()
	if len(prompt) > 900 {
		prompt = prompt[:900]
	}
	return prompt
}
