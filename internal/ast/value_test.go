package ast

import "testing"

func TestTruthy(t *testing.T) {
	cases := []struct {
		v    *Value
		want bool
	}{
		{Null(), false},
		{Bool(false), false},
		{Bool(true), true},
		{Number(0), true},
		{String(""), true},
		{ValueFromList(NewEmptyList()), true},
	}
	for _, c := range cases {
		if got := c.v.Truthy(); got != c.want {
			t.Errorf("Truthy(%s) = %v, want %v", c.v.GoString(), got, c.want)
		}
	}
}

func TestEqualReferenceSemantics(t *testing.T) {
	l1 := ValueFromList(NewEmptyList())
	l2 := ValueFromList(NewEmptyList())
	if Equal(l1, l2) {
		t.Error("two distinct empty lists should not compare equal")
	}
	if !Equal(l1, l1) {
		t.Error("a list should compare equal to itself")
	}
}

func TestEqualPrimitiveByValue(t *testing.T) {
	if !Equal(Number(1), Number(1)) {
		t.Error("equal numbers should compare equal")
	}
	if Equal(Number(1), String("1")) {
		t.Error("different kinds should never compare equal")
	}
}

func TestIsEntity(t *testing.T) {
	obj := NewEmptyObject()
	obj.Set("id", Number(7))
	v := ValueFromObject(obj)
	if !v.IsEntity() {
		t.Error("object with numeric id should be recognized as an Entity")
	}
	if ValueFromObject(NewEmptyObject()).IsEntity() {
		t.Error("object without id should not be recognized as an Entity")
	}
}
