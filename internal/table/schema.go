package table

// Role is the semantic purpose of a column, independent of its literal name.
type Role uint8

const (
	RoleEntity Role = iota
	RoleTime
	RoleValue
)

func (r Role) String() string {
	switch r {
	case RoleEntity:
		return "entity"
	case RoleTime:
		return "time"
	default:
		return "value"
	}
}

// Candidates holds the accepted column names per role, in priority order.
// Matching is case-sensitive: "Year" and "year" are distinct entries.
type Candidates struct {
	Entity []string
	Time   []string
	Value  []string
}

// DefaultCandidates covers the naming conventions of the population datasets
// this tool was built for (Eurostat exports, World Bank CSVs, plain files).
func DefaultCandidates() Candidates {
	return Candidates{
		Entity: []string{"geo", "country", "Country", "GEO", "Country Name"},
		Time:   []string{"TIME_PERIOD", "time", "year", "Year"},
		Value:  []string{"OBS_VALUE", "value", "population", "Population", "Value"},
	}
}

// ForRole returns the candidate list for one role.
func (c Candidates) ForRole(r Role) []string {
	switch r {
	case RoleEntity:
		return c.Entity
	case RoleTime:
		return c.Time
	default:
		return c.Value
	}
}

// Resolve maps a role onto an actual column of t: the first candidate name
// present in t's column set wins. ok is false when no candidate matches;
// that is a legitimate outcome callers degrade on, not an error. Resolve is
// a pure function of the column-name set and never returns a name absent
// from t.
func Resolve(t *Table, role Role, c Candidates) (string, bool) {
	for _, name := range c.ForRole(role) {
		if t.HasColumn(name) {
			return name, true
		}
	}
	return "", false
}

// Schema records the resolved column per role; an empty name means the role
// is unresolved in this table.
type Schema struct {
	Entity string
	Time   string
	Value  string
}

// ResolveSchema resolves all three roles against t.
func ResolveSchema(t *Table, c Candidates) Schema {
	var s Schema
	s.Entity, _ = Resolve(t, RoleEntity, c)
	s.Time, _ = Resolve(t, RoleTime, c)
	s.Value, _ = Resolve(t, RoleValue, c)
	return s
}

func (s Schema) HasEntity() bool { return s.Entity != "" }
func (s Schema) HasTime() bool   { return s.Time != "" }
func (s Schema) HasValue() bool  { return s.Value != "" }
