package cache

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/sandrolain/jsonata/pkg/compiler"
	"github.com/sandrolain/jsonata/pkg/types"
)

func compile(src string) func() (*types.Expression, error) {
	return func() (*types.Expression, error) {
		return compiler.Compile(src)
	}
}

func TestGetOrCompile(t *testing.T) {
	c := New(4)
	first, err := c.GetOrCompile("a.b", compile("a.b"))
	qt.Assert(t, qt.IsNil(err))
	second, err := c.GetOrCompile("a.b", func() (*types.Expression, error) {
		t.Fatal("compiled twice")
		return nil, nil
	})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(first, second))
	qt.Assert(t, qt.Equals(c.Stats(), Stats{Hits: 1, Misses: 1}))
}

func TestCompileErrorsAreNotCached(t *testing.T) {
	c := New(4)
	_, err := c.GetOrCompile("a[", compile("a["))
	qt.Assert(t, qt.IsNotNil(err))
	qt.Assert(t, qt.Equals(c.Len(), 0))

	boom := errors.New("boom")
	_, err = c.GetOrCompile("x", func() (*types.Expression, error) { return nil, boom })
	qt.Assert(t, qt.ErrorIs(err, boom))
}

func TestEviction(t *testing.T) {
	c := New(2)
	for _, src := range []string{"a", "b"} {
		_, err := c.GetOrCompile(src, compile(src))
		qt.Assert(t, qt.IsNil(err))
	}
	// touch a so that b is the oldest
	_, ok := c.Get("a")
	qt.Assert(t, qt.IsTrue(ok))

	_, err := c.GetOrCompile("c", compile("c"))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(c.Len(), 2))

	_, ok = c.Get("b")
	qt.Assert(t, qt.IsFalse(ok))
	_, ok = c.Get("a")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(c.Stats().Evictions, uint64(1)))
}

func TestInvalidateAndClear(t *testing.T) {
	c := New(0)
	qt.Assert(t, qt.Equals(c.Capacity(), DefaultCapacity))

	c.Set("a", compiler.MustCompile("a"))
	c.Set("b", compiler.MustCompile("b"))
	c.Invalidate("a")
	_, ok := c.Get("a")
	qt.Assert(t, qt.IsFalse(ok))
	qt.Assert(t, qt.Equals(c.Len(), 1))

	c.Clear()
	qt.Assert(t, qt.Equals(c.Len(), 0))
	qt.Assert(t, qt.Equals(c.Stats(), Stats{}))
}

func TestConcurrentAccess(t *testing.T) {
	c := New(8)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				src := fmt.Sprintf("a%d", (i+j)%12)
				expr, err := c.GetOrCompile(src, compile(src))
				if err != nil || expr.Source() != src {
					t.Errorf("GetOrCompile(%q) = %v, %v", src, expr, err)
					return
				}
			}
		}(i)
	}
	wg.Wait()
	qt.Assert(t, qt.IsTrue(c.Len() <= 8))
}
