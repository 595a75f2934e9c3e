package query

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Josh363/small-business-app/pkg/errors"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
)

var reserved = map[string]bool{
	"select": true,
	"sort":   true,
	"page":   true,
	"limit":  true,
}

var operators = map[string]Operator{
	"gt":  OpGt,
	"gte": OpGte,
	"lt":  OpLt,
	"lte": OpLte,
	"in":  OpIn,
}

// field or dotted path, optionally followed by one bracketed operator:
// price, price[gte], location.city[in]
var keyPattern = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*)(?:\[([^\[\]]*)\])?$`)

// Parser builds Specs for one resource.
type Parser struct {
	schema      Schema
	defaultSort []SortKey
}

// NewParser returns a parser restricted to schema. Results default to newest
// first when the schema declares createdAt.
func NewParser(schema Schema) *Parser {
	p := &Parser{schema: schema}
	if f, ok := schema.Lookup("createdAt"); ok {
		p.defaultSort = []SortKey{{Field: "createdAt", Column: f.Column, Desc: true}}
	}
	return p
}

// Parse converts request parameters into a Spec.
func (p *Parser) Parse(values url.Values) (Spec, error) {
	spec := Spec{
		Page:  positiveInt(values.Get("page"), DefaultPage),
		Limit: positiveInt(values.Get("limit"), DefaultLimit),
	}

	filters, err := p.parseFilters(values)
	if err != nil {
		return Spec{}, err
	}
	spec.Filters = filters

	if spec.Select, err = p.parseSelect(values.Get("select")); err != nil {
		return Spec{}, err
	}
	if spec.Sort, err = p.parseSort(values.Get("sort")); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

func (p *Parser) parseFilters(values url.Values) ([]Filter, error) {
	keys := make([]string, 0, len(values))
	for key := range values {
		if !reserved[key] {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	filters := make([]Filter, 0, len(keys))
	for _, key := range keys {
		m := keyPattern.FindStringSubmatch(key)
		if m == nil {
			return nil, apperrors.NewInvalidQueryError(fmt.Sprintf("malformed filter parameter %q", key))
		}
		name, token := m[1], m[2]

		field, ok := p.schema.Lookup(name)
		if !ok || !field.queryable() {
			return nil, apperrors.NewInvalidQueryError(fmt.Sprintf("unknown filter field %q", name))
		}

		op := OpEq
		if strings.Contains(key, "[") {
			if op, ok = operators[token]; !ok {
				return nil, apperrors.NewInvalidQueryError(fmt.Sprintf("unknown operator %q on field %q", token, name))
			}
		}

		f, err := buildFilter(name, field, op, values[key])
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}

func buildFilter(name string, field Field, op Operator, raw []string) (Filter, error) {
	f := Filter{Field: name, Column: field.Column, Op: op}

	if op == OpIn {
		var set []interface{}
		for _, v := range raw {
			for _, part := range strings.Split(v, ",") {
				if part = strings.TrimSpace(part); part == "" {
					continue
				}
				val, err := coerce(name, field.Kind, part)
				if err != nil {
					return Filter{}, err
				}
				set = append(set, val)
			}
		}
		if len(set) == 0 {
			return Filter{}, apperrors.NewInvalidQueryError(fmt.Sprintf("empty set for %s[in]", name))
		}
		f.Value = set
		return f, nil
	}

	if len(raw) != 1 {
		return Filter{}, apperrors.NewInvalidQueryError(fmt.Sprintf("field %q given %d values, use %s[in] for sets", name, len(raw), name))
	}
	if op != OpEq && !field.Kind.ordered() {
		return Filter{}, apperrors.NewInvalidQueryError(fmt.Sprintf("operator %q not supported on field %q", op, name))
	}

	val, err := coerce(name, field.Kind, raw[0])
	if err != nil {
		return Filter{}, err
	}
	f.Value = val
	return f, nil
}

func coerce(name string, kind Kind, raw string) (interface{}, error) {
	invalid := func() error {
		return apperrors.NewInvalidQueryError(fmt.Sprintf("invalid value %q for field %q", raw, name))
	}

	switch kind {
	case KindNumber:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, invalid()
		}
		return v, nil
	case KindInt:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, invalid()
		}
		return v, nil
	case KindBool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, invalid()
		}
		return v, nil
	case KindTime:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if v, err := time.Parse(layout, raw); err == nil {
				return v, nil
			}
		}
		return nil, invalid()
	case KindUUID:
		v, err := uuid.Parse(raw)
		if err != nil {
			return nil, invalid()
		}
		return v.String(), nil
	default:
		return raw, nil
	}
}

func (p *Parser) parseSelect(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	seen := make(map[string]bool)
	var fields []string
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		if _, ok := p.schema.Lookup(name); !ok {
			return nil, apperrors.NewInvalidQueryError(fmt.Sprintf("unknown select field %q", name))
		}
		seen[name] = true
		fields = append(fields, name)
	}
	return fields, nil
}

func (p *Parser) parseSort(raw string) ([]SortKey, error) {
	var keys []SortKey
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		desc := strings.HasPrefix(name, "-")
		name = strings.TrimPrefix(name, "-")

		field, ok := p.schema.Lookup(name)
		if !ok || !field.queryable() {
			return nil, apperrors.NewInvalidQueryError(fmt.Sprintf("unknown sort field %q", name))
		}
		keys = append(keys, SortKey{Field: name, Column: field.Column, Desc: desc})
	}
	if len(keys) == 0 {
		return append([]SortKey(nil), p.defaultSort...), nil
	}
	return keys, nil
}

// positiveInt coerces raw to an integer >= 1, or returns def.
func positiveInt(raw string, def int) int {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || v < 1 || v > math.MaxInt32 {
		return def
	}
	return int(v)
}
