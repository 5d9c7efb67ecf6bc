package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/pathlight-io/pathlight/internal/catalog"
)

const systemPrompt = `You are a career guidance counselor. Given a student's
normalized interest/aptitude scores or their education profile, respond with
a single JSON object of the shape:
{"summary": string,
 "confidence": number between 0 and 1,
 "categories": {"careers": [{"title","description","match"}],
                "degrees": [{"title","description","match"}],
                "skills":  [{"title","description","match"}]}}
Every category key must be present even if its list is empty. Respond with
JSON only, no prose.`

// OpenAIProducer generates recommendations through an OpenAI-compatible
// chat completion endpoint.
type OpenAIProducer struct {
	client      *openai.Client
	model       string
	temperature float32
	log         *zap.Logger
}

type ProducerConfig struct {
	Endpoint    string // base URL, e.g. "https://api.openai.com/v1"
	Model       string
	APIKey      string // optional for local endpoints
	Temperature float64
}

func NewOpenAIProducer(cfg ProducerConfig, log *zap.Logger) (*OpenAIProducer, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")
	return &OpenAIProducer{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		log:         log.Named("producer"),
	}, nil
}

func (p *OpenAIProducer) Produce(ctx context.Context, src Source) (RecommendationPayload, error) {
	prompt := buildPrompt(src)

	p.log.Debug("recommendation request",
		zap.String("model", p.model),
		zap.String("source_kind", string(src.Kind)),
		zap.Int("prompt_len", len(prompt)))

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		p.log.Error("recommendation request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return RecommendationPayload{}, err
	}
	if len(resp.Choices) == 0 {
		return RecommendationPayload{}, fmt.Errorf("no choices in response")
	}

	var payload RecommendationPayload
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &payload); err != nil {
		return RecommendationPayload{}, fmt.Errorf("decode producer output: %w", err)
	}

	p.log.Info("recommendation request completed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))
	return payload, nil
}

func buildPrompt(src Source) string {
	var b strings.Builder
	switch src.Kind {
	case SourceAssessment:
		b.WriteString("Assessment scores (0-100 per dimension):\n")
		cats := make([]catalog.Category, 0, len(src.Scores))
		for c := range src.Scores {
			cats = append(cats, c)
		}
		sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] }) // deterministic prompt
		for _, c := range cats {
			fmt.Fprintf(&b, "- %s: %d\n", c, src.Scores[c])
		}
	case SourceIntake:
		fmt.Fprintf(&b, "Education level: %s", src.Intake.Level)
		if src.Intake.Status != "" {
			fmt.Fprintf(&b, " (%s)", src.Intake.Status)
		}
		b.WriteString("\nProfile:\n")
		writeFields(&b, src.Intake.Common)
		writeFields(&b, src.Intake.Specific)
	}
	b.WriteString("\nRecommend suitable careers, degree programs, and skills to develop.")
	return b.String()
}

func writeFields(b *strings.Builder, fields map[string]interface{}) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "- %s: %v\n", k, fields[k])
	}
}
