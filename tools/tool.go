// Package tools defines the assistant's capability surface. A Tool answers
// one kind of farmer question from verified data: it declares when it is
// relevant to a query and produces a Result whose payload is the only
// material a reply may be built from. Concrete tools live in subpackages;
// this package carries the interface, the result envelope, the registry,
// and the Invoke wrapper with hook dispatch and panic containment.
package tools

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/krishidhan/sahayak/components"
	"github.com/krishidhan/sahayak/components/fallback"
)

// Metadata keys shared across tool results.
const (
	// MetaProvider names the provider whose answer backs the result.
	MetaProvider = "provider_used"
	// MetaProviderRank is the 1-based position of that provider in its
	// chain; "1" means the primary answered.
	MetaProviderRank = "provider_rank"
	// MetaCache is "hit" when the result was served from cache.
	MetaCache = "cache"
	// MetaElapsedMS is the execution wall time in milliseconds.
	MetaElapsedMS = "elapsed_ms"
)

// Tool is one capability of the assistant.
type Tool interface {
	// Name is the unique registry key.
	Name() string
	// Description is a one-line account of what the tool answers.
	Description() string
	// Priority orders selected tools; higher renders first, ties keep
	// registration order.
	Priority() int
	// IsRelevant reports whether the tool can serve the query. It must
	// be pure: no I/O, no mutation, same answer for same input.
	IsRelevant(query string, snap components.SessionSnapshot) bool
	// Execute answers the query. Provider failures never escape as
	// errors; they come back as Result{Success: false} with a message
	// naming the unavailable source in plain language.
	Execute(ctx context.Context, query string, snap components.SessionSnapshot) *Result
}

// Result is the envelope every tool execution produces. Payload holds the
// structured answer and is the only thing response generation may quote;
// Message is a ready plain-language line for the template path. Raw
// provider errors stay out of all three user-facing fields.
type Result struct {
	// Tool is the name of the tool that produced the result.
	Tool string `json:"tool"`
	// Success reports whether Payload holds a usable answer.
	Success bool `json:"success"`
	// Payload is the tool's structured answer, nil on failure.
	Payload any `json:"payload,omitempty"`
	// Message is a short user-safe line: the answer summary on success,
	// the unavailable data source on failure.
	Message string `json:"message,omitempty"`
	// Metadata carries diagnostics such as provider_used and elapsed_ms.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Failure builds a failed Result carrying a user-safe message.
func Failure(tool, message string) *Result {
	return &Result{Tool: tool, Message: message}
}

// SetMeta records one metadata entry, allocating the map on first use.
func (r *Result) SetMeta(key, value string) {
	if r.Metadata == nil {
		r.Metadata = make(map[string]string, 4)
	}
	r.Metadata[key] = value
}

// ChainMeta records which provider of a fallback chain answered.
func (r *Result) ChainMeta(inv *fallback.Invocation) {
	if inv == nil || inv.Provider == "" {
		return
	}
	r.SetMeta(MetaProvider, inv.Provider)
	r.SetMeta(MetaProviderRank, strconv.Itoa(len(inv.Attempts)+1))
}

// ExecutionError wraps whatever stopped a tool: chain exhaustion, a
// recovered panic, a broken collaborator. It is logged and hook-visible
// but surfaces to the user only as a failed Result.
type ExecutionError struct {
	Tool string
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("tool %s: %v", e.Tool, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// hooked is satisfied by every tool embedding Config.
type hooked interface {
	StartHook() func(context.Context, string)
	EndHook() func(context.Context, string, *Result)
	ErrorHook() func(context.Context, string, error)
}

// Invoke runs one tool with hook dispatch and panic containment. A panic
// inside Execute becomes Result{Success: false} so one broken tool cannot
// take down the turn; the recovered value reaches the error hook as an
// *ExecutionError. Invoke never returns nil and always stamps the tool
// name and elapsed time.
func Invoke(ctx context.Context, t Tool, query string, snap components.SessionSnapshot) (res *Result) {
	start := time.Now()
	hooks, _ := t.(hooked)
	if hooks != nil {
		if fn := hooks.StartHook(); fn != nil {
			fn(ctx, query)
		}
	}
	defer func() {
		if rec := recover(); rec != nil {
			res = Failure(t.Name(), "The "+t.Name()+" tool hit an internal error.")
			if hooks != nil {
				if fn := hooks.ErrorHook(); fn != nil {
					fn(ctx, query, &ExecutionError{Tool: t.Name(), Err: fmt.Errorf("panic: %v", rec)})
				}
			}
		}
		if res == nil {
			res = Failure(t.Name(), "The "+t.Name()+" tool returned nothing.")
		}
		if res.Tool == "" {
			res.Tool = t.Name()
		}
		res.SetMeta(MetaElapsedMS, strconv.FormatInt(time.Since(start).Milliseconds(), 10))
		if hooks != nil {
			if fn := hooks.EndHook(); fn != nil {
				fn(ctx, query, res)
			}
		}
	}()
	res = t.Execute(ctx, query, snap)
	return res
}
