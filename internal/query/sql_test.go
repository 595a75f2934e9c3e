package query

import (
	"testing"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhere_FilteredCountUsesSameFilter(t *testing.T) {
	spec, err := parse(t, "price[gte]=10&ingredient=flour&page=2&limit=5")
	require.NoError(t, err)

	base := goqu.Dialect("postgres").From("services")

	countSQL, countArgs, err := Count(base, spec).Prepared(true).ToSQL()
	require.NoError(t, err)
	assert.Contains(t, countSQL, `COUNT(*)`)
	assert.Contains(t, countSQL, `"ingredient" = $1`)
	assert.Contains(t, countSQL, `"price" >= $2`)
	assert.NotContains(t, countSQL, "LIMIT")
	assert.Equal(t, []interface{}{"flour", 10.0}, countArgs)

	pageSQL, pageArgs, err := Window(Where(base, spec), spec).Prepared(true).ToSQL()
	require.NoError(t, err)
	assert.Contains(t, pageSQL, `"ingredient" = $1`)
	assert.Contains(t, pageSQL, `"price" >= $2`)
	assert.Contains(t, pageSQL, `ORDER BY "created_at" DESC, "id" ASC`)
	assert.Contains(t, pageSQL, "LIMIT")
	assert.Contains(t, pageSQL, "OFFSET")
	require.GreaterOrEqual(t, len(pageArgs), 2)
	assert.Equal(t, []interface{}{"flour", 10.0}, pageArgs[:2])
}

func TestWhere_InAndComparisons(t *testing.T) {
	spec, err := parse(t, "name[in]=a,b&price[lt]=50&price[gt]=5")
	require.NoError(t, err)

	sql, _, err := Where(goqu.Dialect("postgres").From("services"), spec).ToSQL()
	require.NoError(t, err)
	assert.Contains(t, sql, `("name" IN ('a', 'b'))`)
	assert.Contains(t, sql, `("price" < 50)`)
	assert.Contains(t, sql, `("price" > 5)`)
}

func TestWindow_SortOrder(t *testing.T) {
	spec, err := parse(t, "sort=price,-name")
	require.NoError(t, err)

	sql, _, err := Window(goqu.Dialect("postgres").From("services"), spec).ToSQL()
	require.NoError(t, err)
	assert.Contains(t, sql, `ORDER BY "price" ASC, "name" DESC, "id" ASC LIMIT 20`)
}
