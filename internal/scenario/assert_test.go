// internal/scenario/assert_test.go
package scenario

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stateWith(key string, o Observation) *State {
	st := NewState(nil, 0, nil)
	st.Record(key, o)
	return st
}

func TestChecks(t *testing.T) {
	t.Run("TextContains", func(t *testing.T) {
		assert.NoError(t, TextContains("loc", "inventory.html")(stateWith("loc", Observation{Present: true, Text: "https://x/inventory.html"})))

		err := TextContains("loc", "inventory.html")(stateWith("loc", Observation{Present: true, Text: "https://x/"}))
		var aerr *AssertionError
		require.ErrorAs(t, err, &aerr)
		assert.False(t, aerr.Absent)
		assert.Equal(t, `loc contains: expected "inventory.html", got "https://x/"`, err.Error())
	})

	t.Run("TextEquals absent", func(t *testing.T) {
		err := TextEquals("badge", "1")(stateWith("badge", Observation{Source: "class=shopping_cart_badge"}))
		var aerr *AssertionError
		require.ErrorAs(t, err, &aerr)
		assert.True(t, aerr.Absent)
		assert.Equal(t, `badge equals: expected "1", but class=shopping_cart_badge matched no element`, err.Error())
	})

	t.Run("Absent", func(t *testing.T) {
		assert.NoError(t, Absent("badge")(stateWith("badge", Observation{Count: 0})))
		assert.Error(t, Absent("badge")(stateWith("badge", Observation{Count: 1, Present: true})))
	})

	t.Run("IsVisible", func(t *testing.T) {
		assert.NoError(t, IsVisible("btn")(stateWith("btn", Observation{Present: true, Flag: true})))
		assert.Error(t, IsVisible("btn")(stateWith("btn", Observation{Present: true})))
	})

	t.Run("PricesNonDecreasing", func(t *testing.T) {
		ok := Observation{Present: true, Texts: []string{"$7.99", "$7.99", "$1,049.00"}}
		assert.NoError(t, PricesNonDecreasing("p")(stateWith("p", ok)))

		bad := Observation{Present: true, Texts: []string{"$9.99", "$7.99"}}
		assert.Error(t, PricesNonDecreasing("p")(stateWith("p", bad)))

		garbled := Observation{Present: true, Texts: []string{"free"}}
		assert.Error(t, PricesNonDecreasing("p")(stateWith("p", garbled)))

		var aerr *AssertionError
		require.ErrorAs(t, PricesNonDecreasing("p")(stateWith("p", Observation{})), &aerr)
		assert.True(t, aerr.Absent)
	})

	t.Run("missing observation is not an assertion failure", func(t *testing.T) {
		err := TextEquals("never-read", "x")(NewState(nil, 0, nil))
		require.Error(t, err)
		assert.Equal(t, KindUnexpectedInteractionFault, Classify(err))
	})
}

func TestParsePrice(t *testing.T) {
	p, err := ParsePrice(" $29.99 ")
	require.NoError(t, err)
	assert.InDelta(t, 29.99, p, 1e-9)

	_, err = ParsePrice("$")
	assert.Error(t, err)
}

func TestLoginFixture(t *testing.T) {
	store := newFakeStorefront()
	require.NoError(t, Login(context.Background(), store, "standard_user", "secret_sauce"))
	assert.True(t, store.loggedIn)

	// A second call lands on the inventory, where the login form is gone.
	err := Login(context.Background(), store, "standard_user", "secret_sauce")
	assert.Equal(t, KindLocatorTimeout, Classify(err))
	assert.Contains(t, err.Error(), "login:")
}
