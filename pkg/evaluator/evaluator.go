// Package evaluator implements the JSONata evaluation engine.
//
// The evaluator walks the resolved tree produced by the compiler against
// an input document. It supports:
//   - Path navigation with tuple streams for focus, index and ancestor bindings
//   - Function calls (builtins, host functions and lambdas)
//   - Partial application and tail-call elimination
//   - Lexical frames and variable bindings
//   - Timeout and cancellation via context.Context
//
// # Example
//
//	ev := evaluator.New()
//	result, err := ev.Eval(ctx, expr, data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Concurrency
//
// An Evaluator and the expressions it evaluates are immutable; any number
// of goroutines may call Eval concurrently. Each call owns its frames.
package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sandrolain/jsonata/pkg/cache"
	"github.com/sandrolain/jsonata/pkg/compiler"
	"github.com/sandrolain/jsonata/pkg/functions"
	"github.com/sandrolain/jsonata/pkg/types"
)

// Evaluator evaluates JSONata expressions against data.
type Evaluator struct {
	opts   EvalOptions
	logger *slog.Logger
	cache  *cache.Cache // non-nil when Caching is enabled
	// custom holds host functions and bindings of this evaluator. It is
	// read-only after New and shared by every evaluation.
	custom map[string]interface{}
}

// EvalOptions configures evaluator behavior.
type EvalOptions struct {
	// Caching enables expression compilation caching.
	// When true, compiled expressions are cached by query string.
	// The default cache holds up to 256 entries with LRU eviction.
	Caching bool
	// CacheSize sets the maximum number of cached expressions.
	// Only used when Caching is true and no explicit Cache is provided.
	// Defaults to 256.
	CacheSize int
	// Cache is a custom expression cache. If non-nil, Caching is implicitly enabled.
	Cache *cache.Cache
	// MaxDepth limits the nesting of lambda applications. Calls in tail
	// position do not count.
	MaxDepth int
	// Timeout sets evaluation timeout.
	Timeout time.Duration
	// Debug enables debug logging.
	Debug bool
	// Logger for structured logging.
	Logger *slog.Logger
	// CustomFunctions holds user-defined functions to register with the evaluator.
	CustomFunctions []functions.CustomFunctionDef
	// AdvancedFunctions holds user-defined functions that can call back
	// into the evaluator.
	AdvancedFunctions []functions.AdvancedCustomFunctionDef
	// Bindings are variables visible to every evaluation.
	Bindings map[string]interface{}
}

// New creates a new Evaluator with default options.
// It panics if a custom function carries an invalid signature.
func New(opts ...EvalOption) *Evaluator {
	options := EvalOptions{
		Caching:  false,
		MaxDepth: 10000,
		Timeout:  30 * time.Second,
	}

	for _, opt := range opts {
		opt(&options)
	}

	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	var c *cache.Cache
	if options.Cache != nil {
		c = options.Cache
	} else if options.Caching {
		size := options.CacheSize
		if size <= 0 {
			size = 256
		}
		c = cache.New(size)
	}

	custom := make(map[string]interface{}, len(options.CustomFunctions)+len(options.AdvancedFunctions)+len(options.Bindings))
	for name, value := range options.Bindings {
		custom[name] = normalize(value)
	}
	for _, cfd := range options.CustomFunctions {
		fn := cfd.Fn
		n, err := NewNative(cfd.Name, cfd.Signature, func(ctx context.Context, _ *Call, args []interface{}) (interface{}, error) {
			res, err := fn(ctx, plainArgs(args)...)
			if err != nil {
				return nil, err
			}
			return normalize(res), nil
		})
		if err != nil {
			panic(fmt.Sprintf("evaluator: custom function %s: %v", cfd.Name, err))
		}
		custom[cfd.Name] = n
	}
	for _, afd := range options.AdvancedFunctions {
		fn := afd.Fn
		n, err := NewNative(afd.Name, afd.Signature, func(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
			res, err := fn(ctx, call, plainArgs(args)...)
			if err != nil {
				return nil, err
			}
			return normalize(res), nil
		})
		if err != nil {
			panic(fmt.Sprintf("evaluator: custom function %s: %v", afd.Name, err))
		}
		custom[afd.Name] = n
	}

	return &Evaluator{
		opts:   options,
		logger: options.Logger,
		cache:  c,
		custom: custom,
	}
}

// plainArgs converts arguments for host functions, which see sequences
// as plain slices.
func plainArgs(args []interface{}) []interface{} {
	out := make([]interface{}, len(args))
	for i, arg := range args {
		out[i] = types.Plain(arg)
	}
	return out
}

// Cache returns the expression cache, or nil if caching is disabled.
func (e *Evaluator) Cache() *cache.Cache {
	return e.cache
}

// Compile compiles src, through the expression cache when caching is
// enabled.
func (e *Evaluator) Compile(src string) (*types.Expression, error) {
	if e.cache == nil {
		return compiler.Compile(src)
	}
	return e.cache.GetOrCompile(src, func() (*types.Expression, error) {
		return compiler.Compile(src)
	})
}

// Options returns the options the evaluator was created with.
func (e *Evaluator) Options() EvalOptions {
	return e.opts
}

// Eval evaluates an expression against data.
func (e *Evaluator) Eval(ctx context.Context, expr *types.Expression, data interface{}) (interface{}, error) {
	return e.EvalWithBindings(ctx, expr, data, nil)
}

// EvalWithBindings evaluates an expression with additional variable bindings.
// Binding names are given without the leading $.
func (e *Evaluator) EvalWithBindings(ctx context.Context, expr *types.Expression, data interface{}, bindings map[string]interface{}) (interface{}, error) {
	if expr == nil || expr.AST() == nil {
		return nil, fmt.Errorf("invalid expression")
	}

	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	env := NewFrame(&Frame{bindings: e.custom, parent: staticFrame()})
	for name, value := range bindings {
		env.Bind(name, normalize(value))
	}

	input := normalize(data)
	env.Bind("$", input)

	// a top-level array is wrapped so that it is treated as a single input
	if items, ok := input.([]interface{}); ok {
		input = &types.Sequence{Items: []interface{}{items}, OuterWrapper: true}
	}

	ev := &evaluation{
		e:         e,
		timestamp: time.Now(),
	}
	if e.opts.Debug {
		e.logger.Debug("evaluation started", "expression", expr.Source())
	}
	result, err := ev.eval(ctx, expr.AST(), input, env)
	if err != nil {
		if e.opts.Debug {
			e.logger.Debug("evaluation failed", "error", err)
		}
		return nil, err
	}
	return types.Plain(result), nil
}

// evaluation is the state of one Eval call.
type evaluation struct {
	e         *Evaluator
	timestamp time.Time
	depth     int
}

func (ev *evaluation) debug() bool {
	return ev.e.opts.Debug
}
