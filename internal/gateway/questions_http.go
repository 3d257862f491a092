package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/swipehire/interview-api/internal/models"
	"github.com/swipehire/interview-api/internal/observability"
)

const questionsPath = "/api/generateQuestions"

// questionsSchema validates the decoded provider response before the set is
// installed on a session.
const questionsSchema = `{
  "type": "object",
  "required": ["questions"],
  "properties": {
    "questions": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "text", "timer", "difficulty"],
        "properties": {
          "id": {"type": "integer"},
          "text": {"type": "string", "minLength": 1},
          "timer": {"type": "integer", "minimum": 1},
          "difficulty": {"enum": ["easy", "medium", "hard"]}
        }
      }
    }
  }
}`

// HTTPQuestionProvider calls the external question generation service.
type HTTPQuestionProvider struct {
	baseURL string
	client  *http.Client
	schema  *jsonschema.Schema
	logger  zerolog.Logger
	tracer  trace.Tracer
}

// NewHTTPQuestionProvider builds the provider client.
func NewHTTPQuestionProvider(baseURL string, timeout time.Duration, logger zerolog.Logger) (*HTTPQuestionProvider, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("question provider base url is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	schema, err := jsonschema.CompileString("questions.json", questionsSchema)
	if err != nil {
		return nil, fmt.Errorf("compile questions schema: %w", err)
	}

	return &HTTPQuestionProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		schema:  schema,
		logger:  logger.With().Str("component", "question_provider").Logger(),
		tracer:  otel.Tracer("github.com/swipehire/interview-api/internal/gateway/questions"),
	}, nil
}

// FetchQuestions issues one outbound request carrying the target role and
// validates the response shape. Non-2xx responses surface the server-supplied
// error message verbatim inside a QuestionGenerationError.
func (p *HTTPQuestionProvider) FetchQuestions(ctx context.Context, role string) ([]models.Question, error) {
	ctx, span := p.tracer.Start(ctx, "questions.fetch", trace.WithAttributes(
		attribute.String("interview.role", role),
	))
	defer span.End()

	body, err := json.Marshal(map[string]string{"role": role})
	if err != nil {
		return nil, fmt.Errorf("marshal question request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+questionsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build question request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := p.client.Do(request)
	if err != nil {
		observability.QuestionFetchFailures().Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, newGenerationError("", err)
	}
	defer response.Body.Close()

	var decoded struct {
		Questions []models.Question `json:"questions"`
		Error     string            `json:"error"`
	}
	var raw json.RawMessage
	if err := json.NewDecoder(response.Body).Decode(&raw); err != nil {
		observability.QuestionFetchFailures().Inc()
		span.RecordError(err)
		return nil, newGenerationError("", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		_ = json.Unmarshal(raw, &decoded)
		observability.QuestionFetchFailures().Inc()
		err := newGenerationError(decoded.Error, fmt.Errorf("provider returned status %d", response.StatusCode))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var document interface{}
	if err := json.Unmarshal(raw, &document); err != nil {
		observability.QuestionFetchFailures().Inc()
		return nil, newGenerationError("", err)
	}
	if err := p.schema.Validate(document); err != nil {
		observability.QuestionFetchFailures().Inc()
		span.RecordError(err)
		return nil, newGenerationError("", fmt.Errorf("invalid provider response: %w", err))
	}

	if err := json.Unmarshal(raw, &decoded); err != nil {
		observability.QuestionFetchFailures().Inc()
		return nil, newGenerationError("", err)
	}
	if err := validateQuestionSet(decoded.Questions); err != nil {
		observability.QuestionFetchFailures().Inc()
		return nil, newGenerationError("", err)
	}

	span.SetAttributes(attribute.Int("interview.question_count", len(decoded.Questions)))
	p.logger.Debug().Int("count", len(decoded.Questions)).Str("role", role).Msg("question set fetched")

	return decoded.Questions, nil
}
