package grading

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"examly/config"

	"github.com/go-resty/resty/v2"
	openai "github.com/sashabaranov/go-openai"
)

// ErrOracleUnavailable is returned when the similarity oracle cannot be
// reached or its reply cannot be parsed to a score. Callers degrade the
// answer to pending; this error never aborts a scoring pass.
var ErrOracleUnavailable = errors.New("similarity oracle unavailable")

// SimilarityProvider is the external semantic-comparison oracle. It
// returns a 0-100 similarity between the expected and actual answers.
type SimilarityProvider interface {
	Similarity(ctx context.Context, expected, actual string) (float64, error)
}

// scoreRe pulls the first decimal number out of the model's reply.
var scoreRe = regexp.MustCompile(`(\d+(?:\.\d+)?)`)

func buildSimilarityPrompt(expected, actual string) string {
	var sb strings.Builder
	sb.WriteString("Analyze the similarity between these two answers about the same topic.\n\n")
	sb.WriteString("EXPECTED ANSWER (ANSWER KEY):\n")
	sb.WriteString(strings.TrimSpace(expected))
	sb.WriteString("\n\nSTUDENT ANSWER:\n")
	sb.WriteString(strings.TrimSpace(actual))
	sb.WriteString("\n\nEvaluate the similarity considering:\n")
	sb.WriteString("- Correct concepts mentioned\n")
	sb.WriteString("- Accuracy of the information\n")
	sb.WriteString("- Understanding of the topic\n")
	sb.WriteString("- Language and terms used\n\n")
	sb.WriteString("Reply ONLY with a number from 0 to 100 (decimals allowed, e.g. 75.5):\n")
	sb.WriteString("- 90-100: perfect answer, identical in concepts\n")
	sb.WriteString("- 80-89: very good answer, correct concepts\n")
	sb.WriteString("- 70-79: good answer, main concepts correct\n")
	sb.WriteString("- 60-69: satisfactory answer, basic concepts correct\n")
	sb.WriteString("- 40-59: partial answer, some correct concepts\n")
	sb.WriteString("- 20-39: weak answer, few correct concepts\n")
	sb.WriteString("- 0-19: incorrect or very different answer\n\n")
	sb.WriteString("SCORE:")
	return sb.String()
}

// parseScore extracts and clamps the similarity score from a raw model
// reply.
func parseScore(raw string) (float64, error) {
	m := scoreRe.FindString(strings.TrimSpace(raw))
	if m == "" {
		return 0, fmt.Errorf("%w: no score in reply %q", ErrOracleUnavailable, raw)
	}
	score, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return round2(score), nil
}

// OpenAIProvider asks an OpenAI-compatible chat API for the similarity
// score.
type OpenAIProvider struct {
	api   *openai.Client
	model string
}

// NewOpenAIProvider creates a provider. baseURL may be empty for the
// default endpoint, or point at any OpenAI-compatible server.
func NewOpenAIProvider(baseURL, apiKey, model string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIProvider{api: openai.NewClientWithConfig(cfg), model: model}
}

func (p *OpenAIProvider) Similarity(ctx context.Context, expected, actual string) (float64, error) {
	resp, err := p.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: buildSimilarityPrompt(expected, actual)},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return 0, fmt.Errorf("%w: empty completion", ErrOracleUnavailable)
	}
	return parseScore(resp.Choices[0].Message.Content)
}

// GeminiProvider calls the Google Generative Language REST API.
type GeminiProvider struct {
	client *resty.Client
	apiKey string
	model  string
}

func NewGeminiProvider(apiKey, model string) *GeminiProvider {
	return &GeminiProvider{
		client: resty.New().SetBaseURL("https://generativelanguage.googleapis.com/v1beta"),
		apiKey: apiKey,
		model:  model,
	}
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (p *GeminiProvider) Similarity(ctx context.Context, expected, actual string) (float64, error) {
	body := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": buildSimilarityPrompt(expected, actual)}}},
		},
	}

	var out geminiResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("key", p.apiKey).
		SetBody(body).
		SetResult(&out).
		Post(fmt.Sprintf("/models/%s:generateContent", p.model))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("%w: status %d", ErrOracleUnavailable, resp.StatusCode())
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return 0, fmt.Errorf("%w: empty candidates", ErrOracleUnavailable)
	}
	return parseScore(out.Candidates[0].Content.Parts[0].Text)
}

// NewProviderFromConfig picks the configured oracle. Returns nil when no
// API key is set; essay answers then stay pending until manual grading.
func NewProviderFromConfig() SimilarityProvider {
	cfg := config.AppConfig
	switch cfg.OracleProvider {
	case "openai":
		if cfg.OpenAIApiKey == "" {
			log.Println("[GRADING] OPENAI_API_KEY not set, essay auto-correction disabled")
			return nil
		}
		return NewOpenAIProvider(cfg.OpenAIBaseURL, cfg.OpenAIApiKey, cfg.OpenAIModel)
	case "gemini":
		if cfg.GeminiApiKey == "" {
			log.Println("[GRADING] GEMINI_API_KEY not set, essay auto-correction disabled")
			return nil
		}
		return NewGeminiProvider(cfg.GeminiApiKey, cfg.GeminiModel)
	default:
		log.Printf("[GRADING] unknown ORACLE_PROVIDER %q, essay auto-correction disabled", cfg.OracleProvider)
		return nil
	}
}

// defaultProvider is the process-wide oracle used by the request
// handlers. Configured once at startup.
var defaultProvider SimilarityProvider

// InitDefaultProvider builds the process-wide provider from config.
// Call once after LoadConfig.
func InitDefaultProvider() {
	defaultProvider = NewProviderFromConfig()
}

// DefaultProvider returns the process-wide oracle, which may be nil
// when no provider is configured.
func DefaultProvider() SimilarityProvider {
	return defaultProvider
}

// CorrectEssay asks the provider for a similarity score and maps it to
// points through the interval curve. Both return values are nil when
// the oracle is unavailable or disabled; the caller keeps the answer
// pending in that case.
func CorrectEssay(ctx context.Context, provider SimilarityProvider, expected, actual string, maxPoints float64) (pointsEarned, similarity *float64, err error) {
	if provider == nil {
		return nil, nil, ErrOracleUnavailable
	}
	if strings.TrimSpace(expected) == "" || strings.TrimSpace(actual) == "" {
		zero := 0.0
		return &zero, &zero, nil
	}

	sim, err := provider.Similarity(ctx, expected, actual)
	if err != nil {
		return nil, nil, err
	}

	points := PointsForSimilarity(sim, maxPoints)
	log.Printf("[GRADING] essay similarity %.2f/100 -> %.2f/%.2f points", sim, points, maxPoints)
	return &points, &sim, nil
}
