package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"fieldforce.com/fieldforce/fieldforce/core"
)

const DefaultTimeout = 8 * time.Second

// Generator is the model behind the assistant.
type Generator interface {
	GenerateInsight(ctx context.Context, prompt string) (*core.Insight, error)
	GenerateText(ctx context.Context, system, prompt string) (string, error)
}

// Assistant implements core.Assistant over a Generator. Every failure,
// including a slow or malformed answer, turns into the fallback text.
type Assistant struct {
	gen      Generator
	timeout  time.Duration
	language string
	logger   core.Logger
}

type Option func(*Assistant)

func WithTimeout(d time.Duration) Option {
	return func(a *Assistant) { a.timeout = d }
}

// WithLanguage sets the language answers are written in.
func WithLanguage(lang string) Option {
	return func(a *Assistant) { a.language = lang }
}

func WithLogger(l core.Logger) Option {
	return func(a *Assistant) { a.logger = l }
}

func NewAssistant(gen Generator, opts ...Option) *Assistant {
	a := &Assistant{gen: gen, timeout: DefaultTimeout, language: "Bengali", logger: log.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var errEmptyAnswer = errors.New("empty answer")

func (a *Assistant) SummarizeAttendance(ctx context.Context, rows []core.DigestRow) core.Insight {
	fallback := core.Insight{Summary: core.FallbackSummary}
	if a.gen == nil {
		return fallback
	}
	data, err := json.Marshal(rows)
	if err != nil {
		a.logger.Printf("[ERROR] encode attendance rows: %v\n", err)
		return fallback
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	insight, err := a.gen.GenerateInsight(ctx, summaryPrompt(string(data), a.language))
	if err == nil {
		err = checkInsight(insight)
	}
	if err != nil {
		a.logger.Printf("[ERROR] attendance summary: %v\n", err)
		return fallback
	}
	insight.Summary = strings.TrimSpace(insight.Summary)
	return *insight
}

func checkInsight(in *core.Insight) error {
	if in == nil || strings.TrimSpace(in.Summary) == "" {
		return errEmptyAnswer
	}
	if in.PunctualityRating < 0 || in.PunctualityRating > 10 {
		return fmt.Errorf("punctuality rating %.1f out of range", in.PunctualityRating)
	}
	return nil
}

func (a *Assistant) FieldAdvice(ctx context.Context, req core.AdviceRequest) string {
	if a.gen == nil {
		return core.FallbackAdvice
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	text, err := a.gen.GenerateText(ctx, adviceSystem, advicePrompt(req, a.language))
	if err == nil && strings.TrimSpace(text) == "" {
		err = errEmptyAnswer
	}
	if err != nil {
		a.logger.Printf("[ERROR] field advice for %s: %v\n", req.Name, err)
		return core.FallbackAdvice
	}
	return strings.TrimSpace(text)
}
