package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pdf-rag-chatbot/internal/logger"
	"pdf-rag-chatbot/internal/telemetry"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

// ErrCircuitOpen is returned while the provider breaker is open.
var ErrCircuitOpen = errors.New("LLM provider temporarily unavailable")

// ResilientCompleter guards a Completer with a rate limiter, a circuit breaker
// and a tracing span per call.
type ResilientCompleter struct {
	next        Completer
	service     string
	breaker     *gobreaker.CircuitBreaker
	rateLimiter *rate.Limiter
	metrics     *telemetry.Metrics
}

// NewResilientCompleter wraps next. rpm <= 0 disables rate limiting.
func NewResilientCompleter(next Completer, service string, rpm int, metrics *telemetry.Metrics) *ResilientCompleter {
	rc := &ResilientCompleter{
		next:    next,
		service: service,
		metrics: metrics,
	}

	rc.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        service,
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			rc.metrics.RecordCircuitBreakerState(name, to.String())
		},
	})

	if rpm > 0 {
		burst := rpm / 10
		if burst < 1 {
			burst = 1
		}
		// RPM limit with some buffer
		rc.rateLimiter = rate.NewLimiter(rate.Limit(float64(rpm)*0.9/60.0), burst)
	}

	return rc
}

func (rc *ResilientCompleter) Model() string { return rc.next.Model() }

// Close closes the wrapped completer if it holds resources.
func (rc *ResilientCompleter) Close() error { return Close(rc.next) }

func (rc *ResilientCompleter) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	tracer := otel.Tracer("llm-client")
	ctx, span := tracer.Start(ctx, "llm.complete")
	defer span.End()

	span.SetAttributes(
		attribute.String("llm.service", rc.service),
		attribute.String("llm.model", rc.next.Model()),
		attribute.Int("llm.prompt_chars", len(req.Prompt)),
		attribute.Float64("llm.temperature", req.Temperature),
	)

	if rc.rateLimiter != nil {
		if err := rc.rateLimiter.Wait(ctx); err != nil {
			span.SetAttributes(attribute.Bool("llm.rate_limited", true))
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	result, err := rc.breaker.Execute(func() (interface{}, error) {
		return rc.next.Complete(ctx, req)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrCircuitOpen
		}
		return nil, err
	}

	completion := result.(*Completion)
	span.SetAttributes(attribute.Int("llm.total_tokens", completion.TotalTokens))
	rc.metrics.RecordTokensUsed(int64(completion.TotalTokens), completion.Model)
	return completion, nil
}

// BreakerState reports the breaker's current state.
func (rc *ResilientCompleter) BreakerState() string {
	return rc.breaker.State().String()
}
