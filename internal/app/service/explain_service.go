package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dsa_arena/internal/common"
	"dsa_arena/internal/domain/model"
	"dsa_arena/internal/platform/leetcode"
	"dsa_arena/internal/platform/llm"
	"dsa_arena/internal/platform/logger"
	"dsa_arena/internal/platform/observability"

	"go.opentelemetry.io/otel/attribute"
)

const DefaultExplainLanguage = "C++"

type ProblemFetcher interface {
	FetchProblem(ctx context.Context, slug string) (*leetcode.Problem, error)
}

type ChatStreamer interface {
	StreamChat(ctx context.Context, messages []llm.Message, onDelta func(delta string) error) error
}

type ExplainService struct {
	problems ProblemFetcher
	chat     ChatStreamer
	log      *logger.Logger
}

func NewExplainService(problems ProblemFetcher, chat ChatStreamer, log *logger.Logger) *ExplainService {
	return &ExplainService{problems: problems, chat: chat, log: log.With("service", "ExplainService")}
}

type ExplainRequest struct {
	Slug     string `json:"slug" validate:"required"`
	Lang     string `json:"lang"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
}

// Explanation is a prepared prompt waiting to be streamed.
type Explanation struct {
	Title    string
	Language string
	messages []llm.Message
}

const systemPrompt = "You are a patient competitive programming tutor. Explain problems clearly and write correct, idiomatic solutions."

const promptTemplate = `Explain the following problem and how to solve it.

Title: %s
Language: %s

Problem description:
%s

Starter code:
%s

Walk through the intuition, then the approach step by step, then give a complete %s solution that fits the starter code, and finish with the time and space complexity.`

// Prepare fetches the problem and builds the prompt. It fails before any streaming starts,
// so callers can still answer with a plain error response.
func (s *ExplainService) Prepare(ctx context.Context, req ExplainRequest) (*Explanation, error) {
	req.Slug = strings.TrimSpace(req.Slug)
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	lang := strings.TrimSpace(req.Lang)
	if lang == "" {
		lang = DefaultExplainLanguage
	}

	problem, err := s.problems.FetchProblem(ctx, req.Slug)
	if err != nil {
		if errors.Is(err, leetcode.ErrProblemNotFound) {
			return nil, fmt.Errorf("problem %q: %w", req.Slug, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch problem %q: %w", req.Slug, err)
	}

	starter := problem.Snippet(lang)
	if starter == "" {
		starter = "(none)"
	}
	prompt := fmt.Sprintf(promptTemplate, problem.Title, lang, leetcode.HTMLToText(problem.Content), starter, lang)
	return &Explanation{
		Title:    problem.Title,
		Language: lang,
		messages: []llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	}, nil
}

// Stream relays the generated explanation as envelopes: content deltas, then exactly one complete or error.
// When ctx is cancelled (client gone) it stops without emitting a terminal envelope.
func (s *ExplainService) Stream(ctx context.Context, exp *Explanation, emit func(model.StreamEnvelope) error) error {
	ctx, span := observability.StartSpan(ctx, "ExplainService.Stream",
		attribute.String("title", exp.Title),
		attribute.String("lang", exp.Language),
	)
	defer span.End()

	err := s.chat.StreamChat(ctx, exp.messages, func(delta string) error {
		return emit(model.ContentEnvelope(delta))
	})
	if ctx.Err() != nil {
		s.log.Info("explanation stream cancelled by client", "title", exp.Title)
		return ctx.Err()
	}
	if err != nil {
		s.log.Error("explanation stream failed", "title", exp.Title, "error", err)
		span.RecordError(err)
		msg := err.Error()
		if errors.Is(err, llm.ErrNotConfigured) {
			msg = llm.ErrNotConfigured.Error()
		}
		return emit(model.ErrorEnvelope(msg))
	}
	return emit(model.CompleteEnvelope())
}
