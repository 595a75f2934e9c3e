package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type projected struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Notes string  `json:"notes"`
}

func TestProject_KeepsSelectedAndIdentity(t *testing.T) {
	out, err := Project(projected{ID: "s1", Name: "Haircut", Price: 25, Notes: "x"}, []string{"name", "price"})
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{"id": "s1", "name": "Haircut", "price": 25.0}, out)
}

func TestProject_NoFieldsReturnsItem(t *testing.T) {
	item := projected{ID: "s1"}
	out, err := Project(item, nil)
	require.NoError(t, err)
	assert.Equal(t, item, out)
}

func TestProjectAll(t *testing.T) {
	out, err := ProjectAll([]projected{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}, []string{"name"})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{
		map[string]interface{}{"id": "a", "name": "A"},
		map[string]interface{}{"id": "b", "name": "B"},
	}, out)
}

func TestProject_DottedPathKeepsNestedField(t *testing.T) {
	type place struct {
		City  string `json:"city"`
		State string `json:"state"`
	}
	type listing struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Location place  `json:"location"`
	}
	item := listing{ID: "b1", Name: "Bakery", Location: place{City: "Boston", State: "MA"}}

	out, err := Project(item, []string{"location.city"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"id":       "b1",
		"location": map[string]interface{}{"city": "Boston"},
	}, out)

	out, err = Project(item, []string{"location.city", "location"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"id":       "b1",
		"location": map[string]interface{}{"city": "Boston", "state": "MA"},
	}, out)
}
