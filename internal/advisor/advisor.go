package advisor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/catalog"
	"storefront/internal/util"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const (
	// FallbackUnavailable is shown whenever the advisory service cannot answer
	FallbackUnavailable = "Oh dear, our ovens are a bit overwhelmed! I'm having trouble thinking right now, but our Blush Velvet Cupcakes are always a great choice!"

	// FallbackEmpty replaces an empty reply
	FallbackEmpty = "I lost my train of thought! Try asking again."

	defaultTimeout = 30 * time.Second
)

var ErrNotConfigured = errors.New("advisory service not configured")

// Generator sends a prompt to a text-generation service
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Outcome tells the two result variants apart
type Outcome int

const (
	OutcomeReply Outcome = iota
	OutcomeUnavailable
)

// Result of one advisory call: either a reply or the service being unavailable
type Result struct {
	Outcome Outcome
	Text    string
	Reason  error
}

// Reply builds a successful result
func Reply(text string) Result {
	return Result{Outcome: OutcomeReply, Text: text}
}

// Unavailable builds a failed result
func Unavailable(reason error) Result {
	return Result{Outcome: OutcomeUnavailable, Reason: reason}
}

// Display collapses the result to text that is always safe to show
func (r Result) Display() string {
	if r.Outcome == OutcomeUnavailable {
		return FallbackUnavailable
	}
	if r.Text == "" {
		return FallbackEmpty
	}
	return r.Text
}

// Label names the outcome for metrics and events
func (r Result) Label() string {
	switch {
	case r.Outcome == OutcomeUnavailable:
		return "unavailable"
	case r.Text == "":
		return "empty"
	default:
		return "reply"
	}
}

// Advisor answers customer questions using the catalog as context
type Advisor struct {
	generator Generator
	menu      *catalog.Catalog
	timeout   time.Duration
	logger    *zap.Logger
}

// New creates an advisor. A nil generator makes every call Unavailable.
func New(generator Generator, menu *catalog.Catalog, timeout time.Duration) *Advisor {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Advisor{
		generator: generator,
		menu:      menu,
		timeout:   timeout,
		logger:    util.GetLogger(),
	}
}

// Ask sends userText to the generator once and reports the result
func (a *Advisor) Ask(ctx context.Context, userText string) (res Result) {
	ctx, span := util.StartSpan(ctx, "Advisor.Ask")
	defer span.End()

	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			res = Unavailable(fmt.Errorf("generator panic: %v", p))
		}
		util.AdviceLatency.Observe(time.Since(start).Seconds())
		util.AdviceRequestsTotal.WithLabelValues(res.Label()).Inc()
		span.SetAttributes(attribute.String("advice.outcome", res.Label()))
		if res.Reason != nil {
			span.SetStatus(codes.Error, res.Reason.Error())
			a.logger.Error("Advisory service failed", zap.Error(res.Reason))
		}
	}()

	if a.generator == nil {
		return Unavailable(ErrNotConfigured)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	text, err := a.generator.Generate(ctx, BuildPrompt(a.menu, userText))
	if err != nil {
		return Unavailable(err)
	}
	return Reply(text)
}

// GetAdvice returns displayable advice for userText; it never fails
func (a *Advisor) GetAdvice(ctx context.Context, userText string) string {
	return a.Ask(ctx, userText).Display()
}
