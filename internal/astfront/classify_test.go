package astfront

import "testing"

func TestClassifyType(t *testing.T) {
	cases := []struct {
		in   string
		want Family
	}{
		{"int", FamilySignedInt},
		{"const int", FamilySignedInt},
		{"unsigned int", FamilyUnsignedInt},
		{"double", FamilyFloating},
		{"_Bool", FamilyBoolean},
		{"bool", FamilyBoolean},
		{"int *", FamilyNone},
		{"MyEnum", FamilyNone},
	}
	for _, c := range cases {
		if got := ClassifyType(c.in); got != c.want {
			t.Errorf("ClassifyType(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestDescribeTypeIdent(t *testing.T) {
	d := DescribeType(&TypeInfo{QualType: "unsigned int"}, false)
	if got := d.Ident(); got != "unsigned_int" {
		t.Errorf("Ident() = %q, want unsigned_int", got)
	}

	d = DescribeType(&TypeInfo{QualType: "volatile int"}, true)
	if got := d.Ident(); got != "volatile_int&" {
		t.Errorf("Ident() = %q, want volatile_int&", got)
	}
}
