package evaluator

import (
	"log/slog"
	"time"

	"github.com/sandrolain/jsonata/pkg/cache"
	"github.com/sandrolain/jsonata/pkg/functions"
)

// EvalOption configures an Evaluator.
type EvalOption func(*EvalOptions)

// WithCaching enables or disables expression compilation caching.
// When enabled, a default LRU cache of 256 entries is created.
// To control the cache size use WithCacheSize; to supply your own cache use WithCache.
func WithCaching(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Caching = enabled
	}
}

// WithCacheSize sets the maximum number of cached expressions.
// Only effective when combined with WithCaching(true).
func WithCacheSize(size int) EvalOption {
	return func(opts *EvalOptions) {
		opts.CacheSize = size
	}
}

// WithCache attaches an external expression cache.
// The evaluator will use this cache regardless of the Caching flag.
func WithCache(c *cache.Cache) EvalOption {
	return func(opts *EvalOptions) {
		opts.Cache = c
	}
}

// WithTimeout sets the evaluation timeout. Zero disables it.
func WithTimeout(timeout time.Duration) EvalOption {
	return func(opts *EvalOptions) {
		opts.Timeout = timeout
	}
}

// WithDebug enables or disables debug logging.
func WithDebug(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Debug = enabled
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) EvalOption {
	return func(opts *EvalOptions) {
		opts.Logger = logger
	}
}

// WithMaxDepth sets the maximum nesting of lambda applications.
// Zero disables the limit.
func WithMaxDepth(depth int) EvalOption {
	return func(opts *EvalOptions) {
		opts.MaxDepth = depth
	}
}

// WithCustomFunction registers a user-defined function with the evaluator.
// name is the function name without the leading "$" (the expression must use "$name" to call it).
// signature is an optional type signature such as "<s:s>"; pass "" to skip validation.
//
// Example:
//
//	ev := evaluator.New(evaluator.WithCustomFunction("greet", "<s:s>", func(ctx context.Context, args ...interface{}) (interface{}, error) {
//	    return "Hello, " + args[0].(string) + "!", nil
//	}))
func WithCustomFunction(name, signature string, fn functions.CustomFunc) EvalOption {
	return func(opts *EvalOptions) {
		opts.CustomFunctions = append(opts.CustomFunctions, functions.CustomFunctionDef{
			Name:      name,
			Signature: signature,
			Fn:        fn,
		})
	}
}

// WithAdvancedFunction registers a user-defined function that receives a
// functions.Caller to invoke function arguments.
func WithAdvancedFunction(name, signature string, fn functions.AdvancedCustomFunc) EvalOption {
	return func(opts *EvalOptions) {
		opts.AdvancedFunctions = append(opts.AdvancedFunctions, functions.AdvancedCustomFunctionDef{
			Name:      name,
			Signature: signature,
			Fn:        fn,
		})
	}
}

// WithFunctions registers several custom functions of either kind.
func WithFunctions(entries ...functions.FunctionEntry) EvalOption {
	return func(opts *EvalOptions) {
		for _, entry := range entries {
			switch def := entry.(type) {
			case functions.CustomFunctionDef:
				opts.CustomFunctions = append(opts.CustomFunctions, def)
			case functions.AdvancedCustomFunctionDef:
				opts.AdvancedFunctions = append(opts.AdvancedFunctions, def)
			}
		}
	}
}

// WithBindings binds variables for every evaluation. Names are given
// without the leading $.
func WithBindings(bindings map[string]interface{}) EvalOption {
	return func(opts *EvalOptions) {
		if opts.Bindings == nil {
			opts.Bindings = make(map[string]interface{}, len(bindings))
		}
		for k, v := range bindings {
			opts.Bindings[k] = v
		}
	}
}
