package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	var _ Value = Null{}
	var _ Value = String("test")
	var _ Value = Int(42)
	var _ Value = Float(1.5)
	var _ Value = Bool(true)
	var _ Value = Array{String("a"), Int(1)}
	var _ Value = Object{"key": String("value")}
}

func TestValueFromDecodedYAML(t *testing.T) {
	decoded := map[string]any{
		"name":  "cart",
		"count": 3,
		"ratio": 0.5,
		"whole": 2.0,
		"tags":  []any{"a", true, nil},
		"inner": map[any]any{"k": int64(7)},
	}

	v, err := ValueFrom(decoded)
	require.NoError(t, err)

	obj, ok := v.(Object)
	require.True(t, ok)
	assert.Equal(t, String("cart"), obj["name"])
	assert.Equal(t, Int(3), obj["count"])
	assert.Equal(t, Float(0.5), obj["ratio"])
	assert.Equal(t, Int(2), obj["whole"], "integral floats become Int")
	assert.Equal(t, Array{String("a"), Bool(true), Null{}}, obj["tags"])
	assert.Equal(t, Object{"k": Int(7)}, obj["inner"])
}

func TestValueFromRejects(t *testing.T) {
	_, err := ValueFrom(math.NaN())
	assert.Error(t, err)

	_, err = ValueFrom(map[any]any{1: "x"})
	assert.Error(t, err)

	_, err = ValueFrom(struct{}{})
	assert.Error(t, err)
}

func TestObjectSortedKeys(t *testing.T) {
	obj := Object{
		"a":  Int(1),
		"A":  Int(2),
		"aa": Int(3),
		"AA": Int(4),
	}
	assert.Equal(t, []string{"A", "AA", "a", "aa"}, obj.SortedKeys())
	assert.Empty(t, Object{}.SortedKeys())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, "null", KindOf(Null{}))
	assert.Equal(t, "string", KindOf(String("x")))
	assert.Equal(t, "integer", KindOf(Int(1)))
	assert.Equal(t, "number", KindOf(Float(1.5)))
	assert.Equal(t, "boolean", KindOf(Bool(false)))
	assert.Equal(t, "list", KindOf(Array{}))
	assert.Equal(t, "object", KindOf(Object{}))
}
