package evaluator

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
)

type builtin struct {
	name      string
	signature string
	impl      FunctionImpl
}

func builtins() []builtin {
	return []builtin{
		// Aggregation functions
		{"sum", "<a<n>:n>", fnSum},
		{"count", "<a:n>", fnCount},
		{"max", "<a<n>:n>", fnMax},
		{"min", "<a<n>:n>", fnMin},
		{"average", "<a<n>:n>", fnAverage},

		// String functions
		{"string", "<x-b?:s>", fnString},
		{"substring", "<s-nn?:s>", fnSubstring},
		{"substringBefore", "<s-s:s>", fnSubstringBefore},
		{"substringAfter", "<s-s:s>", fnSubstringAfter},
		{"lowercase", "<s-:s>", fnLowercase},
		{"uppercase", "<s-:s>", fnUppercase},
		{"length", "<s-:n>", fnLength},
		{"trim", "<s-:s>", fnTrim},
		{"pad", "<s-ns?:s>", fnPad},
		{"match", "<s-f<s:o>n?:a<o>>", fnMatch},
		{"contains", "<s-(sf):b>", fnContains},
		{"replace", "<s-(sf)(sf)n?:s>", fnReplace},
		{"split", "<s-(sf)n?:a<s>>", fnSplit},
		{"join", "<a<s>s?:s>", fnJoin},

		// Numeric functions
		{"formatBase", "<n-n?:s>", fnFormatBase},
		{"number", "<(nsb)-:n>", fnNumber},
		{"floor", "<n-:n>", fnFloor},
		{"ceil", "<n-:n>", fnCeil},
		{"round", "<n-n?:n>", fnRound},
		{"abs", "<n-:n>", fnAbs},
		{"sqrt", "<n-:n>", fnSqrt},
		{"power", "<n-n:n>", fnPower},
		{"random", "<:n>", fnRandom},

		// Boolean functions
		{"boolean", "<x-:b>", fnBoolean},
		{"not", "<x-:b>", fnNot},
		{"exists", "<x:b>", fnExists},

		// Higher-order functions
		{"map", "<af>", fnMap},
		{"filter", "<af>", fnFilter},
		{"single", "<af?>", fnSingle},
		{"reduce", "<afj?:j>", fnReduce},
		{"sift", "<o-f?:o>", fnSift},
		{"each", "<o-f:a>", fnEach},

		// Array functions
		{"zip", "<a+>", fnZip},
		{"append", "<xx:a>", fnAppend},
		{"reverse", "<a:a>", fnReverse},
		{"shuffle", "<a:a>", fnShuffle},
		{"distinct", "<x:x>", fnDistinct},
		{"sort", "<af?:a>", fnSort},

		// Object functions
		{"keys", "<x-:a<s>>", fnKeys},
		{"lookup", "<x-s:x>", fnLookup},
		{"spread", "<x-:a<o>>", fnSpread},
		{"merge", "<a<o>:o>", fnMerge},
		{"type", "<x:s>", fnType},
		{"clone", "<(oa)-:o>", fnClone},

		// Control functions
		{"error", "<s?:x>", fnError},
		{"assert", "<bs?:x>", fnAssert},
		{"eval", "<sx?:x>", fnEval},

		// Encoding functions
		{"base64encode", "<s-:s>", fnBase64Encode},
		{"base64decode", "<s-:s>", fnBase64Decode},
		{"encodeUrlComponent", "<s-:s>", fnEncodeURLComponent},
		{"encodeUrl", "<s-:s>", fnEncodeURL},
		{"decodeUrlComponent", "<s-:s>", fnDecodeURLComponent},
		{"decodeUrl", "<s-:s>", fnDecodeURL},

		// Date/Time functions
		{"now", "<:s>", fnNow},
		{"millis", "<:n>", fnMillis},
		{"fromMillis", "<n-:s>", fnFromMillis},
		{"toMillis", "<s-:n>", fnToMillis},
	}
}

var (
	staticOnce sync.Once
	static     atomic.Pointer[Frame]
	registerMu sync.Mutex
)

// staticFrame returns the frame holding the builtin functions. It is the
// outermost frame of every evaluation and is never modified in place.
func staticFrame() *Frame {
	staticOnce.Do(func() {
		list := builtins()
		f := &Frame{bindings: make(map[string]interface{}, len(list))}
		for _, b := range list {
			n, err := NewNative(b.name, b.signature, b.impl)
			if err != nil {
				panic(fmt.Sprintf("evaluator: builtin %s: %v", b.name, err))
			}
			f.bindings[b.name] = n
		}
		static.Store(f)
	})
	return static.Load()
}

// RegisterFunction adds a function to the static frame, making it visible
// to every evaluation that starts afterwards. name is given without the
// leading $; registering an existing name replaces it.
func RegisterFunction(name, signature string, impl FunctionImpl) error {
	n, err := NewNative(name, signature, impl)
	if err != nil {
		return err
	}
	registerMu.Lock()
	defer registerMu.Unlock()

	cur := staticFrame()
	next := &Frame{bindings: make(map[string]interface{}, len(cur.bindings)+1)}
	for k, v := range cur.bindings {
		next.bindings[k] = v
	}
	next.bindings[name] = n
	static.Store(next)
	return nil
}

// FunctionNames returns the sorted names of the builtin and registered
// functions, without the leading $.
func FunctionNames() []string {
	f := staticFrame()
	names := make([]string, 0, len(f.bindings))
	for name := range f.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// hofArgs builds the arguments a higher-order builtin passes to fn: the
// value, then its index and the whole array when fn accepts them.
func hofArgs(fn Function, v interface{}, index interface{}, arr interface{}) []interface{} {
	args := []interface{}{v}
	arity := fn.Arity()
	if arity >= 2 {
		args = append(args, index)
	}
	if arity >= 3 {
		args = append(args, arr)
	}
	return args
}
