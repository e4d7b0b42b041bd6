// Package engine drives one model conversation to completion against a
// pool of rate-limited credentials.
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/openclaw/forge/internal/llm"
	"github.com/openclaw/forge/internal/logging"
	"github.com/openclaw/forge/internal/progress"
	"github.com/openclaw/forge/internal/tools"
	"github.com/openclaw/forge/internal/workspace"
)

// Sentinel results for non-fatal budget exhaustion. The pipeline does not
// branch on these; the artifact existence gate decides whether the phase
// actually failed.
const (
	ResultMaxCalls = "Agent reached max tool calls."
	rateLimitedFmt = "Agent aborted: rate limit hit %d times."
)

// correctionMessage is injected when the endpoint rejects the model's
// tool-call encoding.
const correctionMessage = "Your previous tool call was malformed. " +
	"You MUST call tools using the provided JSON function schema - " +
	"do NOT use XML-style <function=...> syntax. Please retry."

// Config bounds one conversation run. The productive-call and
// rate-limit-hit budgets are independent: a rate-limited request never
// consumes a productive-call slot.
type Config struct {
	MaxProductiveCalls  int
	MaxRateLimitHits    int
	MaxMalformedRetries int
	BackoffBase         time.Duration
	Temperature         float32
	MaxTokens           int
}

// DefaultConfig returns the standard budgets.
func DefaultConfig() Config {
	return Config{
		MaxProductiveCalls:  25,
		MaxRateLimitHits:    30,
		MaxMalformedRetries: 2,
		BackoffBase:         20 * time.Second,
		Temperature:         0.3,
	}
}

// Engine executes conversations. One Engine may serve many sequential
// runs, but never two concurrently: the credential cursor is owned by the
// single active run.
type Engine struct {
	clients []llm.Provider
	tools   *tools.Set
	cfg     Config
	record  *progress.Record
	logger  *logging.Logger

	// rotate maps a credential index to its successor. Defaults to
	// round-robin over the client slice; SetRotation lets the credential
	// pool own the order.
	rotate func(current int) int

	// Injectable for tests.
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() time.Duration
}

// New creates an Engine over one provider per pool credential.
func New(clients []llm.Provider, set *tools.Set, cfg Config, record *progress.Record, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.New().WithComponent("engine")
	}
	return &Engine{
		clients: clients,
		tools:   set,
		cfg:     cfg,
		record:  record,
		logger:  logger,
		rotate:  func(current int) int { return (current + 1) % len(clients) },
		sleep:   sleepContext,
		jitter:  func() time.Duration { return time.Duration(rand.Float64() * float64(5*time.Second)) },
	}
}

// SetRotation replaces the default successor function, typically with
// credentials.Pool.NextAfter so the pool owns rotation order.
func (e *Engine) SetRotation(fn func(current int) int) {
	e.rotate = fn
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// backoffWait computes the full-pool-exhaustion wait for the given cycle:
// base * 2^(cycle-1) plus a small random addend to avoid synchronized
// retries.
func (e *Engine) backoffWait(cycle int) time.Duration {
	return e.cfg.BackoffBase*time.Duration(1<<(cycle-1)) + e.jitter()
}

// Run drives a single conversation to a terminal assistant response or a
// bounded-failure sentinel. The agent label is only used for progress and
// log attribution.
func (e *Engine) Run(ctx context.Context, agent, systemPrompt, userMessage string, ws *workspace.Workspace) (string, error) {
	ctx, span := startRunSpan(ctx, agent)

	conversation := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userMessage},
	}
	toolDefs := e.tools.Definitions()

	e.logger.Info("run_start", map[string]interface{}{
		"agent": agent,
		"keys":  len(e.clients),
		"root":  ws.Root(),
	})
	e.update(agent, "Thinking...")

	var (
		productiveCalls  int // API calls that returned a usable response
		rateLimitHits    int // transient rejections, counted separately
		malformedRetries int
		clientIndex      int
		exhaustionCycle  int
	)

	for productiveCalls < e.cfg.MaxProductiveCalls && rateLimitHits < e.cfg.MaxRateLimitHits {
		resp, err := e.clients[clientIndex].Chat(ctx, llm.ChatRequest{
			Messages:    conversation,
			Tools:       toolDefs,
			Temperature: e.cfg.Temperature,
			MaxTokens:   e.cfg.MaxTokens,
		})

		if err != nil {
			switch {
			case llm.IsRateLimit(err):
				// Rotate to the next credential without consuming a
				// productive-call slot.
				rateLimitHits++
				next := e.rotate(clientIndex)
				if next == 0 {
					// Wrapped back to the first credential: the whole pool
					// is exhausted for this sweep.
					exhaustionCycle++
					wait := e.backoffWait(exhaustionCycle)
					e.logger.PoolExhausted(agent, len(e.clients), exhaustionCycle, wait)
					e.update(agent, fmt.Sprintf("All keys exhausted. Waiting %.1fs...", wait.Seconds()))
					if serr := e.sleep(ctx, wait); serr != nil {
						endRunSpan(span, productiveCalls, rateLimitHits, serr)
						return "", serr
					}
				} else {
					e.logger.KeyRotation(agent, clientIndex, next, len(e.clients), rateLimitHits, e.cfg.MaxRateLimitHits)
					e.update(agent, fmt.Sprintf("Rotating to key [%d/%d]...", next+1, len(e.clients)))
				}
				clientIndex = next
				continue

			case llm.IsMalformedToolCall(err) && malformedRetries < e.cfg.MaxMalformedRetries:
				// Demand the documented schema and retry; no productive
				// slot consumed.
				malformedRetries++
				e.logger.MalformedToolCall(agent, malformedRetries, e.cfg.MaxMalformedRetries)
				conversation = append(conversation, llm.Message{
					Role:    "user",
					Content: correctionMessage,
				})
				continue

			default:
				endRunSpan(span, productiveCalls, rateLimitHits, err)
				return "", fmt.Errorf("chat request failed: %w", err)
			}
		}

		productiveCalls++
		exhaustionCycle = 0

		// No tool calls: the assistant's text is the final result.
		if len(resp.ToolCalls) == 0 {
			e.logger.Info("run_complete", map[string]interface{}{
				"agent":      agent,
				"output_len": len(resp.Content),
				"calls":      productiveCalls,
				"rate_hits":  rateLimitHits,
			})
			endRunSpan(span, productiveCalls, rateLimitHits, nil)
			return resp.Content, nil
		}

		conversation = append(conversation, llm.Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		for _, call := range resp.ToolCalls {
			e.update(agent, fmt.Sprintf("Using tool: %s", call.Name))
			result := e.tools.Dispatch(ctx, agent, call, ws)
			conversation = append(conversation, llm.Message{
				Role:       "tool",
				ToolCallID: call.ID,
				Content:    result,
			})
		}
	}

	if rateLimitHits >= e.cfg.MaxRateLimitHits {
		e.logger.Error("run_aborted", map[string]interface{}{
			"agent":     agent,
			"rate_hits": rateLimitHits,
		})
		endRunSpan(span, productiveCalls, rateLimitHits, nil)
		return fmt.Sprintf(rateLimitedFmt, rateLimitHits), nil
	}

	e.logger.Warn("run_budget_reached", map[string]interface{}{
		"agent": agent,
		"calls": productiveCalls,
	})
	endRunSpan(span, productiveCalls, rateLimitHits, nil)
	return ResultMaxCalls, nil
}

func (e *Engine) update(agent, task string) {
	if e.record != nil {
		e.record.Update(agent, task, fmt.Sprintf("[%s] %s", agent, task))
	}
}
