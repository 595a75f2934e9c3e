package query

// Kind is the value type of a queryable field.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindInt
	KindBool
	KindTime
	KindUUID
)

func (k Kind) ordered() bool {
	switch k {
	case KindNumber, KindInt, KindTime, KindString:
		return true
	}
	return false
}

// IdentityField is always kept by a projection.
const IdentityField = "id"

// Field maps an API field name to a column. A field without a column can be
// selected but not filtered or sorted on.
type Field struct {
	Column string
	Kind   Kind
}

func (f Field) queryable() bool {
	return f.Column != ""
}

// Schema lists the fields a resource allows in filters, select and sort,
// keyed by their API (JSON) name.
type Schema map[string]Field

// Lookup returns the field declared under name.
func (s Schema) Lookup(name string) (Field, bool) {
	f, ok := s[name]
	return f, ok
}
