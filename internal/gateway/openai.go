package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/swipehire/interview-api/internal/models"
	"github.com/swipehire/interview-api/internal/observability"
)

// OpenAIConfig defines configuration options for the OpenAI-backed gateways.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIGateway implements QuestionProvider and AnswerScorer against the
// OpenAI chat completion API, for deployments that run without a separate
// question provider service.
type OpenAIGateway struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIGateway builds the gateway using the provided configuration.
func NewOpenAIGateway(cfg OpenAIConfig) (*OpenAIGateway, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &OpenAIGateway{
		client: openai.NewClientWithConfig(openai.DefaultConfig(cfg.APIKey)),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/swipehire/interview-api/internal/gateway/openai"),
		logger: logger.With().Str("component", "openai_gateway").Logger(),
	}, nil
}

// FetchQuestions asks the model for a six-question battery (two easy, two
// medium, two hard) for the given role.
func (g *OpenAIGateway) FetchQuestions(ctx context.Context, role string) ([]models.Question, error) {
	ctx, span := g.tracer.Start(ctx, "openai.generate_questions", trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
		attribute.String("interview.role", role),
	))
	defer span.End()

	content, err := g.complete(ctx, questionSystemPrompt(), questionUserPrompt(role))
	if err != nil {
		observability.QuestionFetchFailures().Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, newGenerationError("", err)
	}

	questions, err := parseQuestionResponse(content)
	if err != nil {
		observability.QuestionFetchFailures().Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, newGenerationError("", err)
	}

	span.SetAttributes(attribute.Int("interview.question_count", len(questions)))
	return questions, nil
}

// Score grades one answer on a 0..100 scale.
func (g *OpenAIGateway) Score(ctx context.Context, questionText, answerText string) (int, error) {
	ctx, span := g.tracer.Start(ctx, "openai.score_answer", trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
	))
	defer span.End()

	start := time.Now()
	content, err := g.complete(ctx, scorerSystemPrompt(), scorerUserPrompt(questionText, answerText))
	observability.ScoringDuration().Observe(time.Since(start).Seconds())
	if err != nil {
		observability.ScoringFailures().Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("openai score: %w", err)
	}

	score, err := parseScoreResponse(content)
	if err != nil {
		observability.ScoringFailures().Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	span.SetAttributes(attribute.Int("interview.score", score))
	return score, nil
}

func (g *OpenAIGateway) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from openai")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func questionSystemPrompt() string {
	return "You are an interview question writer. Respond with a JSON object containing a questions array. Each question has" +
		" an integer id, text, timer (seconds the candidate gets to answer) and difficulty (easy, medium or hard)."
}

func questionUserPrompt(role string) string {
	builder := strings.Builder{}
	builder.WriteString("Generate 6 interview questions for the role: ")
	builder.WriteString(role)
	builder.WriteString("\nProduce 2 easy (timer 20), 2 medium (timer 60) and 2 hard (timer 120) questions, ids 1 through 6, easiest first.")
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

func scorerSystemPrompt() string {
	return "You are an interview answer grader. Respond with a JSON object containing an integer score between 0 and 100." +
		" Grade correctness, depth and clarity. An empty or placeholder answer scores 0."
}

func scorerUserPrompt(questionText, answerText string) string {
	builder := strings.Builder{}
	builder.WriteString("# Question\n")
	builder.WriteString(questionText)
	builder.WriteString("\n\n# Answer\n")
	builder.WriteString(answerText)
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

func parseQuestionResponse(content string) ([]models.Question, error) {
	var data struct {
		Questions []models.Question `json:"questions"`
	}
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return nil, fmt.Errorf("parse questions json: %w", err)
	}
	if err := validateQuestionSet(data.Questions); err != nil {
		return nil, err
	}
	return data.Questions, nil
}

func parseScoreResponse(content string) (int, error) {
	var data struct {
		Score *int `json:"score"`
	}
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return 0, fmt.Errorf("parse score json: %w", err)
	}
	if data.Score == nil {
		return 0, fmt.Errorf("no score in response")
	}
	return clampScore(*data.Score), nil
}
