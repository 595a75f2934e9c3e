package query

import (
	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

// Where adds the filters of spec to ds.
func Where(ds *goqu.SelectDataset, spec Spec) *goqu.SelectDataset {
	if len(spec.Filters) == 0 {
		return ds
	}
	exprs := make([]exp.Expression, 0, len(spec.Filters))
	for _, f := range spec.Filters {
		exprs = append(exprs, expression(f))
	}
	return ds.Where(exprs...)
}

func expression(f Filter) exp.Expression {
	col := goqu.C(f.Column)
	switch f.Op {
	case OpGt:
		return col.Gt(f.Value)
	case OpGte:
		return col.Gte(f.Value)
	case OpLt:
		return col.Lt(f.Value)
	case OpLte:
		return col.Lte(f.Value)
	case OpIn:
		return col.In(f.Value)
	default:
		return col.Eq(f.Value)
	}
}

// Window adds ordering and the page window of spec to ds. The identity
// column is the final tie-break so pages never overlap.
func Window(ds *goqu.SelectDataset, spec Spec) *goqu.SelectDataset {
	order := make([]exp.OrderedExpression, 0, len(spec.Sort)+1)
	for _, k := range spec.Sort {
		if k.Desc {
			order = append(order, goqu.C(k.Column).Desc())
		} else {
			order = append(order, goqu.C(k.Column).Asc())
		}
	}
	order = append(order, goqu.C(IdentityField).Asc())

	ds = ds.Order(order...)
	if spec.Limit > 0 {
		ds = ds.Limit(uint(spec.Limit)).Offset(uint(spec.StartIndex()))
	}
	return ds
}

// Count returns a COUNT(*) dataset over the filtered ds.
func Count(ds *goqu.SelectDataset, spec Spec) *goqu.SelectDataset {
	return Where(ds, spec).Select(goqu.COUNT("*"))
}
