package protocol

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/sass-embedded-go/internal/function"
	"github.com/wagiedev/sass-embedded-go/internal/message"
)

func TestRegistry_OrderAndReplace(t *testing.T) {
	r := newRegistry[string, int]()

	r.put("a", 1)
	r.put("b", 2)
	r.put("c", 3)
	r.put("a", 10)

	require.Equal(t, []int{10, 2, 3}, r.values())
	require.Equal(t, 3, r.len())

	require.True(t, r.remove("b"))
	require.False(t, r.remove("b"))
	require.Equal(t, []int{10, 3}, r.values())

	_, ok := r.get("b")
	require.False(t, ok)

	v, ok := r.get("c")
	require.True(t, ok)
	require.Equal(t, 3, v)
}

func TestRegistries_FunctionsByName(t *testing.T) {
	r := NewRegistries()

	first := function.MustNew("greet($name)", func(context.Context, []message.Value) (message.Value, error) {
		return function.Quoted("hi"), nil
	})
	second := function.MustNew("greet($name, $greeting: hello)", func(context.Context, []message.Value) (message.Value, error) {
		return function.Quoted("hello"), nil
	})

	r.RegisterFunction(first)
	r.RegisterFunction(second)

	// Last write wins.
	require.Equal(t, []string{"greet($name, $greeting: hello)"}, r.FunctionSignatures())

	fn, ok := r.Function("greet")
	require.True(t, ok)
	require.Same(t, second, fn)

	require.True(t, r.UnregisterFunction("greet"))
	require.False(t, r.UnregisterFunction("greet"))
	require.Empty(t, r.FunctionSignatures())
	require.Equal(t, 0, r.Len())
}

func TestRegistries_Importers(t *testing.T) {
	r := NewRegistries()

	a := &mapImporter{}
	b := &mapImporter{}

	r.RegisterCustomImporter(a)
	r.RegisterCustomImporter(b)
	r.RegisterCustomImporter(a)

	custom := r.CustomImporters()
	require.Len(t, custom, 2)
	require.Equal(t, a.ID(), custom[0].ID())
	require.Equal(t, b.ID(), custom[1].ID())

	got, ok := r.CustomImporter(b.ID())
	require.True(t, ok)
	require.Equal(t, b.ID(), got.ID())

	require.True(t, r.UnregisterCustomImporter(a.ID()))
	require.Len(t, r.CustomImporters(), 1)
	require.Empty(t, r.FileImporters())
}
