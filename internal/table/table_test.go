package table

import "testing"

func popTable() *Table {
	t := New("population.csv", []string{"Country Name", "Year", "Value"})
	t.AppendRow(Row{"Country Name": Str("Germany"), "Year": Num(2000), "Value": Num(100)})
	t.AppendRow(Row{"Country Name": Str("Germany"), "Year": Num(2001), "Value": Num(110)})
	t.AppendRow(Row{"Country Name": Str("France"), "Year": Num(2000), "Value": Num(50)})
	return t
}

func TestResolvePriorityOrder(t *testing.T) {
	cand := DefaultCandidates()

	tbl := New("x", []string{"Country", "geo", "year"})
	name, ok := Resolve(tbl, RoleEntity, cand)
	if !ok || name != "geo" {
		t.Fatalf("entity = %q, %v; want geo resolved", name, ok)
	}
	name, ok = Resolve(tbl, RoleTime, cand)
	if !ok || name != "year" {
		t.Fatalf("time = %q, %v; want year resolved", name, ok)
	}
	if _, ok := Resolve(tbl, RoleValue, cand); ok {
		t.Fatalf("value role should be unresolved")
	}
}

func TestResolveIsCaseSensitive(t *testing.T) {
	cand := DefaultCandidates()
	tbl := New("x", []string{"COUNTRY", "YEAR", "VALUE"})
	for _, role := range []Role{RoleEntity, RoleTime, RoleValue} {
		if name, ok := Resolve(tbl, role, cand); ok {
			t.Fatalf("role %s resolved to %q on mismatched case", role, name)
		}
	}
}

func TestResolveNeverReturnsAbsentName(t *testing.T) {
	cand := DefaultCandidates()
	tables := []*Table{
		popTable(),
		New("empty", nil),
		New("odd", []string{"alpha", "beta"}),
		New("mixed", []string{"population", "TIME_PERIOD", "noise"}),
	}
	for _, tbl := range tables {
		for _, role := range []Role{RoleEntity, RoleTime, RoleValue} {
			name, ok := Resolve(tbl, role, cand)
			if ok && !tbl.HasColumn(name) {
				t.Fatalf("table %s: resolved %q not among columns %v", tbl.Name(), name, tbl.Columns())
			}
			if !ok && name != "" {
				t.Fatalf("unresolved role %s returned name %q", role, name)
			}
		}
	}
}

func TestResolveSchema(t *testing.T) {
	s := ResolveSchema(popTable(), DefaultCandidates())
	if s.Entity != "Country Name" || s.Time != "Year" || s.Value != "Value" {
		t.Fatalf("schema = %+v", s)
	}
	if !s.HasEntity() || !s.HasTime() || !s.HasValue() {
		t.Fatalf("schema flags = %+v", s)
	}
}

func TestValueAccessors(t *testing.T) {
	if v, ok := Num(3.5).Number(); !ok || v != 3.5 {
		t.Fatalf("Number() = %v, %v", v, ok)
	}
	if _, ok := Str("x").Number(); ok {
		t.Fatalf("string cell parsed as number")
	}
	if s, ok := Str("Malta").Text(); !ok || s != "Malta" {
		t.Fatalf("Text() = %q, %v", s, ok)
	}
	if !Null().IsNull() || Null().IsUndefined() {
		t.Fatalf("null flags wrong")
	}
	if !Undefined().IsUndefined() || Undefined().IsNull() {
		t.Fatalf("undefined flags wrong")
	}
	var zero Value
	if !zero.IsNull() {
		t.Fatalf("zero Value should be null")
	}
}

func TestValueString(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Num(1234567), "1234567"},
		{Num(10.5), "10.5"},
		{Str("Austria"), "Austria"},
		{Null(), ""},
		{Undefined(), "undefined"},
	}
	for _, c := range cases {
		if got := c.v.String(); got != c.want {
			t.Fatalf("String() = %q, want %q", got, c.want)
		}
	}
}

func TestValueCompareOrder(t *testing.T) {
	ordered := []Value{Null(), Undefined(), Num(-3), Num(2000), Num(2001), Str("Austria"), Str("Belgium")}
	for i := range ordered {
		for j := range ordered {
			got := ordered[i].Compare(ordered[j])
			switch {
			case i < j && got >= 0:
				t.Fatalf("Compare(%v, %v) = %d, want < 0", ordered[i], ordered[j], got)
			case i > j && got <= 0:
				t.Fatalf("Compare(%v, %v) = %d, want > 0", ordered[i], ordered[j], got)
			case i == j && got != 0:
				t.Fatalf("Compare(%v, %v) = %d, want 0", ordered[i], ordered[j], got)
			}
		}
	}
}

func TestValueEqualDistinguishesKinds(t *testing.T) {
	if Num(1).Equal(Str("1")) {
		t.Fatalf("number and string compared equal")
	}
	if !Num(2000).Equal(Num(2000)) || !Str("a").Equal(Str("a")) || !Null().Equal(Null()) {
		t.Fatalf("same-kind equality broken")
	}
	if Null().Equal(Undefined()) {
		t.Fatalf("null equals undefined")
	}
}

func TestWithRowsSharesRows(t *testing.T) {
	base := popTable()
	sub := base.WithRows([]Row{base.Row(2)})
	if sub.NumRows() != 1 || base.NumRows() != 3 {
		t.Fatalf("rows: sub=%d base=%d", sub.NumRows(), base.NumRows())
	}
	if got, _ := sub.Value(0, "Country Name").Text(); got != "France" {
		t.Fatalf("sub row = %q", got)
	}
	if !equalStrings(sub.Columns(), base.Columns()) {
		t.Fatalf("columns diverged: %v vs %v", sub.Columns(), base.Columns())
	}
}

func TestWithColumnCopiesRows(t *testing.T) {
	base := popTable()
	vals := []Value{Null(), Num(10), Null()}
	derived := base.WithColumn("growth_rate", vals)

	if base.NumCols() != 3 {
		t.Fatalf("input gained a column: %v", base.Columns())
	}
	if !base.Value(1, "growth_rate").IsNull() {
		t.Fatalf("input row mutated")
	}
	if derived.NumCols() != 4 || !derived.HasColumn("growth_rate") {
		t.Fatalf("derived columns = %v", derived.Columns())
	}
	if v, _ := derived.Value(1, "growth_rate").Number(); v != 10 {
		t.Fatalf("derived growth cell = %v", derived.Value(1, "growth_rate"))
	}
	// replacing an existing column must not duplicate it
	again := derived.WithColumn("growth_rate", []Value{Num(1), Num(2), Num(3)})
	if again.NumCols() != 4 {
		t.Fatalf("column duplicated: %v", again.Columns())
	}
	if v, _ := again.Value(0, "growth_rate").Number(); v != 1 {
		t.Fatalf("replacement cell = %v", again.Value(0, "growth_rate"))
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
