package value

import "testing"

func TestKindAndAccessors(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		kind Kind
	}{
		{"null", Null(), KindNull},
		{"bool", Bool(true), KindBool},
		{"number", Number(3.5), KindNumber},
		{"string", String("hi"), KindString},
		{"array", Array(Number(1), Number(2)), KindArray},
		{"map", Map(map[string]Value{"a": Number(1)}), KindMap},
	}
	for _, c := range cases {
		if got := c.v.Kind(); got != c.kind {
			t.Errorf("%s: Kind() = %v, want %v", c.name, got, c.kind)
		}
	}
}

func TestStringRendering(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Null(), ""},
		{Bool(true), "true"},
		{Bool(false), "false"},
		{Number(42), "42"},
		{Number(3.5), "3.5"},
		{String("hi"), "hi"},
	}
	for _, c := range cases {
		if got := c.v.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}

func TestArrayAndMapDeterministicRendering(t *testing.T) {
	m := Map(map[string]Value{
		"z": String("last"),
		"a": String("first"),
	})
	got := m.String()
	want := `{"a":"first","z":"last"}`
	if got != want {
		t.Errorf("Map.String() = %q, want %q (must be key-sorted, deterministic)", got, want)
	}

	arr := Array(Number(1), String("x"), Bool(true))
	if got := arr.String(); got != `[1,"x",true]` {
		t.Errorf("Array.String() = %q", got)
	}
}

func TestIndexAndKeyMissing(t *testing.T) {
	arr := Array(Number(1), Number(2))
	if _, ok := arr.Index(5); ok {
		t.Error("Index out of range should report missing")
	}
	if _, ok := arr.Index(-1); ok {
		t.Error("negative Index should report missing")
	}
	if _, ok := String("x").Index(0); ok {
		t.Error("Index on non-array should report missing")
	}

	m := Map(map[string]Value{"k": String("v")})
	if _, ok := m.Key("missing"); ok {
		t.Error("Key on absent field should report missing")
	}
	if _, ok := Number(1).Key("k"); ok {
		t.Error("Key on non-map should report missing")
	}
}

func TestEqual(t *testing.T) {
	a := Map(map[string]Value{"x": Number(1), "y": Array(String("a"), String("b"))})
	b := Map(map[string]Value{"y": Array(String("a"), String("b")), "x": Number(1)})
	if !a.Equal(b) {
		t.Error("maps with same fields in different insertion order should be equal")
	}
	if a.Equal(Map(map[string]Value{"x": Number(2)})) {
		t.Error("differing maps should not be equal")
	}
}

func TestFromAnyRoundTrip(t *testing.T) {
	v, err := FromAny(map[string]any{
		"n": float64(1),
		"s": "hi",
		"a": []any{1.0, 2.0},
		"b": true,
		"z": nil,
	})
	if err != nil {
		t.Fatalf("FromAny: %v", err)
	}
	m, ok := v.AsMap()
	if !ok {
		t.Fatal("expected map")
	}
	if s, _ := m["s"].AsString(); s != "hi" {
		t.Errorf("s = %q", s)
	}
	if n, _ := m["n"].AsNumber(); n != 1 {
		t.Errorf("n = %v", n)
	}
	if m["z"].Kind() != KindNull {
		t.Errorf("z kind = %v, want null", m["z"].Kind())
	}
}

func TestJSONRoundTrip(t *testing.T) {
	orig := Map(map[string]Value{
		"name": String("alice"),
		"age":  Number(30),
		"tags": Array(String("a"), String("b")),
	})
	data, err := orig.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	var decoded Value
	if err := decoded.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if !orig.Equal(decoded) {
		t.Errorf("round trip mismatch: %s vs %s", orig.String(), decoded.String())
	}
}
