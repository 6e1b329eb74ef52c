package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExprConstructors(t *testing.T) {
	t.Parallel()

	t.Run("SingleChildUnwrapped", func(t *testing.T) {
		eq := EQ("name", "x")
		assert.Equal(t, eq, And(eq))
		assert.Equal(t, eq, Or(eq))
	})

	t.Run("Combinators", func(t *testing.T) {
		x := And(EQ("a", 1), Or(EQ("b", 2), EQ("c", 3)))
		and, ok := x.(AndExpr)
		require.True(t, ok)
		require.Len(t, and.Preds, 2)
		_, ok = and.Preds[1].(OrExpr)
		assert.True(t, ok)

		n, ok := Not(EQ("a", 1)).(NotExpr)
		require.True(t, ok)
		assert.Equal(t, EQ("a", 1), n.Pred)
	})

	t.Run("Conds", func(t *testing.T) {
		assert.Equal(t, Cond{Field: "n", Op: OpIn, Values: []any{1, 2}}, In("n", 1, 2))
		assert.Equal(t, Cond{Field: "n", Op: OpIsNull}, IsNull("n"))
		assert.Equal(t, Cond{Field: "n", Op: OpContains, Value: "x", Fold: true}, ContainsFold("n", "x"))
		assert.Equal(t, Cond{Field: "n", Op: OpEQ, Value: "x", Fold: true}, EqualFold("n", "x"))
	})
}

func TestWalk(t *testing.T) {
	t.Parallel()

	var fields []string
	err := Walk(And(EQ("a", 1), Not(Or(EQ("b", 2), GT("c", 3)))), func(c Cond) error {
		fields = append(fields, c.Field)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, fields)

	// A nil tree has no leaves.
	require.NoError(t, Walk(nil, func(Cond) error { return assert.AnError }))

	// The first leaf error stops the walk.
	err = Walk(And(EQ("a", 1), EQ("b", 2)), func(c Cond) error {
		if c.Field == "a" {
			return assert.AnError
		}
		t.Fatalf("walk continued past the failing leaf")
		return nil
	})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestCursorToken(t *testing.T) {
	t.Parallel()

	t.Run("Roundtrip", func(t *testing.T) {
		c := Cursor{Field: "id", Value: "u_42"}
		token, err := c.Token()
		require.NoError(t, err)
		assert.NotContains(t, token, "=")

		got, err := DecodeToken(token)
		require.NoError(t, err)
		assert.Equal(t, "id", got.Field)
		assert.Equal(t, "u_42", got.Value)
	})

	t.Run("InvalidBase64", func(t *testing.T) {
		_, err := DecodeToken("!!!not-base64!!!")
		assert.ErrorContains(t, err, "decode cursor")
	})

	t.Run("InvalidPayload", func(t *testing.T) {
		_, err := DecodeToken("YWJjZGVmZ2hpamtsbW5vcA")
		assert.ErrorContains(t, err, "decode cursor")
	})
}

func TestOrderShorthands(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Order{Field: "createdAt", Direction: Asc}, OrderAsc("createdAt"))
	assert.Equal(t, Order{Field: "createdAt", Direction: Desc}, OrderDesc("createdAt"))
}

func TestTake(t *testing.T) {
	t.Parallel()
	n := Take(5)
	require.NotNil(t, n)
	assert.Equal(t, 5, *n)
}

func TestOpString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "equals", OpEQ.String())
	assert.Equal(t, "startsWith", OpStartsWith.String())
	assert.Equal(t, "isNotNull", OpNotNull.String())
}
