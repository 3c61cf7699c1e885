package chat

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/capitalize-ai/extension-chat/pkg/logger"
	"github.com/capitalize-ai/extension-chat/pkg/metrics"
)

// MessageFunc translates interaction arguments into the follow-up user
// message. It reports false when the arguments do not match the expected
// shape.
type MessageFunc func(args []any) (string, bool)

// Submitter sends a follow-up message into the active conversation.
type Submitter func(ctx context.Context, text string) error

// Router converts rendered-widget interactions into conversation
// submissions. Handle never panics and never surfaces an error to the
// caller: interactions come from UI event paths with nobody to report to.
type Router struct {
	submit Submitter
	log    *logger.Logger

	mu    sync.RWMutex
	kinds map[string]MessageFunc
}

// NewRouter creates a router with the built-in interaction vocabulary
// registered.
func NewRouter(submit Submitter, log *logger.Logger) *Router {
	r := &Router{
		submit: submit,
		log:    log,
		kinds:  make(map[string]MessageFunc),
	}
	r.Register("select", selectMessage)
	r.Register("coin-flip-game-ended", coinFlipMessage)
	r.Register("guessing-game-ended", guessingGameMessage)
	r.Register("clicker-game-ended", clickerGameMessage)
	return r
}

// Register adds or replaces the handler for an interaction kind.
func (r *Router) Register(kind string, fn MessageFunc) {
	r.mu.Lock()
	r.kinds[kind] = fn
	r.mu.Unlock()
}

// Handle routes one interaction. Unknown kinds and malformed arguments are
// logged no-ops; submission failures are logged and swallowed.
func (r *Router) Handle(ctx context.Context, kind string, args []any) {
	r.mu.RLock()
	fn, ok := r.kinds[kind]
	r.mu.RUnlock()

	if !ok {
		metrics.InteractionsTotal.WithLabelValues(kind, "false").Inc()
		r.log.Debug("ignoring unknown interaction kind", zap.String("kind", kind))
		return
	}

	text, ok := fn(args)
	if !ok {
		metrics.InteractionsTotal.WithLabelValues(kind, "false").Inc()
		r.log.Warn("ignoring interaction with malformed arguments",
			zap.String("kind", kind),
			zap.Int("arg_count", len(args)))
		return
	}

	metrics.InteractionsTotal.WithLabelValues(kind, "true").Inc()
	if err := r.submit(ctx, text); err != nil {
		r.log.Warn("interaction submission failed",
			zap.String("kind", kind),
			zap.Error(err))
	}
}

func selectMessage(args []any) (string, bool) {
	if len(args) < 1 {
		return "", false
	}
	option, ok := args[0].(string)
	if !ok || option == "" {
		return "", false
	}
	return option, true
}

func coinFlipMessage(args []any) (string, bool) {
	if len(args) < 3 {
		return "", false
	}
	wins, ok1 := asNumber(args[0])
	rounds, ok2 := asNumber(args[1])
	pct, ok3 := asNumber(args[2])
	if !ok1 || !ok2 || !ok3 {
		return "", false
	}
	return fmt.Sprintf("I finished the coin flip game: %d wins out of %d rounds (%.0f%%).",
		int(wins), int(rounds), pct), true
}

func guessingGameMessage(args []any) (string, bool) {
	if len(args) < 2 {
		return "", false
	}
	outcome, ok := args[0].(string)
	if !ok {
		return "", false
	}
	n, ok := asNumber(args[1])
	if !ok {
		return "", false
	}
	switch outcome {
	case "won":
		return fmt.Sprintf("I won the guessing game in %d attempts.", int(n)), true
	case "lost":
		return fmt.Sprintf("I lost the guessing game. The number was %d.", int(n)), true
	default:
		return "", false
	}
}

func clickerGameMessage(args []any) (string, bool) {
	if len(args) >= 1 {
		if score, ok := asNumber(args[0]); ok {
			return fmt.Sprintf("I finished the clicker game with a score of %d.", int(score)), true
		}
	}
	return "I finished the clicker game.", true
}

// asNumber accepts the numeric types that survive a JSON round-trip.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
