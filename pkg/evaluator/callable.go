package evaluator

import (
	"context"
	"regexp"
	"unicode/utf8"

	"github.com/sandrolain/jsonata/pkg/types"
)

// variadicArity is reported by functions without a signature; higher-order
// builtins pass them every optional argument.
const variadicArity = 4

// Function is a callable value: a lambda, a builtin, a closure over a
// function argument or a regular expression matcher.
type Function interface {
	// Arity is the number of arguments the function expects. Higher-order
	// builtins only pass the optional index and array arguments when the
	// arity allows them.
	Arity() int
	// Signature returns the declared signature, or nil.
	Signature() *types.Signature
}

// FunctionImpl is the implementation of a builtin. args have been
// validated against the builtin's signature; missing optional arguments
// are absent or nil.
type FunctionImpl func(ctx context.Context, call *Call, args []interface{}) (interface{}, error)

// Call carries the dynamic context of a builtin invocation.
type Call struct {
	ev *evaluation
	// Input is the context value at the call site.
	Input interface{}
	// Env is the frame of the call site.
	Env *Frame
}

// Apply invokes fn with args in the frame of the call.
func (c *Call) Apply(ctx context.Context, fn Function, args ...interface{}) (interface{}, error) {
	return c.ev.apply(ctx, fn, args, nil, c.Env)
}

// Call implements functions.Caller.
func (c *Call) Call(ctx context.Context, fn interface{}, args ...interface{}) (interface{}, error) {
	f, ok := fn.(Function)
	if !ok {
		return nil, types.NewError(types.ErrInvokeNonFunction, "", -1).WithValue(fn)
	}
	for i, arg := range args {
		args[i] = normalize(arg)
	}
	return c.Apply(ctx, f, args...)
}

// Lambda is a user-defined function value. It captures the context value
// and the frame in which it was defined.
type Lambda struct {
	Params []string
	Body   *types.ASTNode
	Sig    *types.Signature

	input interface{}
	env   *Frame
	// native is set for the wrapper produced by partially applying a
	// function other than a lambda. nativeParams names all of its
	// arguments, bound or not; Params only the ones still open.
	native       Function
	nativeParams []string
}

func (l *Lambda) Arity() int                  { return len(l.Params) }
func (l *Lambda) Signature() *types.Signature { return l.Sig }

// Native is a builtin or host function.
type Native struct {
	Name string
	Sig  *types.Signature
	Impl FunctionImpl
}

// NewNative creates a builtin from its signature source.
func NewNative(name, signature string, impl FunctionImpl) (*Native, error) {
	n := &Native{Name: name, Impl: impl}
	if signature != "" {
		sig, err := types.ParseSignature(signature)
		if err != nil {
			return nil, err
		}
		n.Sig = sig
	}
	return n, nil
}

func (n *Native) Arity() int {
	if n.Sig == nil {
		return variadicArity
	}
	return n.Sig.Arity()
}

func (n *Native) Signature() *types.Signature { return n.Sig }

// Closure is a function passed as an argument, bound to the frame of the
// call that passed it.
type Closure struct {
	fn  Function
	env *Frame
}

func (c *Closure) Arity() int                  { return c.fn.Arity() }
func (c *Closure) Signature() *types.Signature { return nil }

// Matcher is the function value of a regular expression literal. Applied
// to a string it returns the first match as an object with match, start,
// end, groups and a next function for the following match.
type Matcher struct {
	re       *regexp.Regexp
	source   string
	position int
}

func (m *Matcher) Arity() int                  { return 1 }
func (m *Matcher) Signature() *types.Signature { return nil }

// String returns the pattern source.
func (m *Matcher) String() string { return m.source }

// regexMatch is one match of a Matcher. Offsets count characters.
type regexMatch struct {
	match    string
	start    int
	end      int
	groups   []interface{}
	byteFrom int
	byteEnd  int
}

// allMatches returns every match of m in str, left to right.
func (m *Matcher) allMatches(str string) []regexMatch {
	locs := m.re.FindAllStringSubmatchIndex(str, -1)
	out := make([]regexMatch, 0, len(locs))
	for _, loc := range locs {
		rm := regexMatch{
			match:    str[loc[0]:loc[1]],
			start:    utf8.RuneCountInString(str[:loc[0]]),
			byteEnd:  loc[1],
			byteFrom: loc[0],
			groups:   []interface{}{},
		}
		rm.end = rm.start + utf8.RuneCountInString(rm.match)
		for g := 1; g < len(loc)/2; g++ {
			if loc[2*g] < 0 {
				rm.groups = append(rm.groups, "")
				continue
			}
			rm.groups = append(rm.groups, str[loc[2*g]:loc[2*g+1]])
		}
		out = append(out, rm)
	}
	return out
}

// matches returns successive matches of m in str, at most limit of them
// when limit is non-negative. Asking for another match after a
// zero-length match that is not at the end of str fails with D1004.
func (m *Matcher) matches(str string, limit int) ([]regexMatch, error) {
	all := m.allMatches(str)
	var out []regexMatch
	for _, rm := range all {
		if limit >= 0 && len(out) >= limit {
			return out, nil
		}
		if n := len(out); n > 0 && out[n-1].match == "" {
			return nil, m.emptyMatchError()
		}
		out = append(out, rm)
	}
	if n := len(out); n > 0 && (limit < 0 || n < limit) {
		if last := out[n-1]; last.match == "" && last.byteEnd < len(str) {
			return nil, m.emptyMatchError()
		}
	}
	return out, nil
}

func (m *Matcher) emptyMatchError() error {
	return types.NewError(types.ErrRegexEmptyMatch, "", m.position).WithValue(m.source)
}

// object renders the i-th match the way a matcher application returns
// it, with next chaining to the following match.
func (m *Matcher) object(str string, all []regexMatch, i int) interface{} {
	if i >= len(all) {
		return nil
	}
	rm := all[i]
	obj := types.NewOrderedObject()
	obj.Set("match", rm.match)
	obj.Set("start", float64(rm.start))
	obj.Set("end", float64(rm.end))
	obj.Set("groups", rm.groups)
	obj.Set("next", &Native{
		Name: "next",
		Impl: func(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
			if rm.match == "" && rm.byteEnd < len(str) {
				return nil, m.emptyMatchError()
			}
			return m.object(str, all, i+1), nil
		},
	})
	return obj
}

// tailCall is a function call in tail position of a lambda body. It is
// returned to the trampoline in apply instead of being evaluated.
type tailCall struct {
	node  *types.ASTNode
	input interface{}
	env   *Frame
}

// placeholder marks an unbound argument of a partial application.
type placeholder struct{}
