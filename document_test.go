package localeflow

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseDocument_KeyOrderPreserved(t *testing.T) {
	input := `{"zebra":"z","alpha":"a","mid":{"b":1,"a":2}}`

	doc, err := ParseDocument([]byte(input))
	if err != nil {
		t.Fatalf("ParseDocument failed: %v", err)
	}

	keys := doc.Keys()
	want := []string{"zebra", "alpha", "mid"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(keys))
	}
	for i, k := range want {
		if keys[i] != k {
			t.Errorf("key %d: expected %q, got %q", i, k, keys[i])
		}
	}

	// Round trip keeps the original order
	data, err := doc.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	if string(data) != input {
		t.Errorf("round trip changed document:\n  in:  %s\n  out: %s", input, data)
	}
}

func TestParseDocument_NumberLiterals(t *testing.T) {
	input := `{"price":19.90,"count":3,"big":12345678901234567890}`

	doc, err := ParseDocument([]byte(input))
	if err != nil {
		t.Fatalf("ParseDocument failed: %v", err)
	}

	price, _ := doc.Get("price")
	if price.Number() != json.Number("19.90") {
		t.Errorf("expected literal 19.90, got %s", price.Number())
	}

	data, _ := doc.MarshalJSON()
	if string(data) != input {
		t.Errorf("number literals not preserved: %s", data)
	}
}

func TestParseDocument_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"truncated", `{"a":`},
		{"trailing content", `{"a":1} extra`},
		{"bare word", `hello`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseDocument([]byte(tt.input)); err == nil {
				t.Errorf("expected error for %q", tt.input)
			}
		})
	}
}

func TestValue_SetGetDelete(t *testing.T) {
	obj := NewObject()
	obj.Set("a", NewString("1"))
	obj.Set("b", NewString("2"))
	obj.Set("a", NewString("updated"))

	if obj.Len() != 2 {
		t.Fatalf("expected 2 keys, got %d", obj.Len())
	}
	// Replacing a key keeps its position
	if keys := obj.Keys(); keys[0] != "a" || keys[1] != "b" {
		t.Errorf("unexpected key order: %v", keys)
	}

	a, ok := obj.Get("a")
	if !ok || a.Text() != "updated" {
		t.Errorf("expected updated value, got %v", a)
	}

	obj.Delete("a")
	if _, ok := obj.Get("a"); ok {
		t.Error("expected key to be deleted")
	}
	if keys := obj.Keys(); len(keys) != 1 || keys[0] != "b" {
		t.Errorf("unexpected keys after delete: %v", keys)
	}

	// Deleting a missing key is a no-op
	obj.Delete("missing")
}

func TestValue_Clone(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"home":{"title":"Hi","tags":["a","b"]}}`))
	if err != nil {
		t.Fatalf("ParseDocument failed: %v", err)
	}

	clone := doc.Clone()
	home, _ := clone.Get("home")
	home.Set("title", NewString("Changed"))

	origHome, _ := doc.Get("home")
	origTitle, _ := origHome.Get("title")
	if origTitle.Text() != "Hi" {
		t.Error("mutating a clone changed the original")
	}
}

func TestValue_Equal(t *testing.T) {
	a, _ := ParseDocument([]byte(`{"x":1,"y":{"n":true}}`))
	b, _ := ParseDocument([]byte(`{"y":{"n":true},"x":1}`))
	c, _ := ParseDocument([]byte(`{"x":1,"y":{"n":false}}`))

	if !a.Equal(b) {
		t.Error("expected key order to be ignored")
	}
	if a.Equal(c) {
		t.Error("expected different documents to differ")
	}
}

func TestValue_Array(t *testing.T) {
	arr := NewArray(NewString("one"))
	arr.Append(NewString("two"))

	if arr.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", arr.Len())
	}
	if arr.Index(1).Text() != "two" {
		t.Errorf("unexpected item: %s", arr.Index(1).Text())
	}
	if arr.Index(5) != nil {
		t.Error("expected nil for out-of-range index")
	}
}

func TestValue_UnmarshalJSON(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`{"msg":"hi"}`), &v); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	msg, ok := v.Get("msg")
	if !ok || msg.Text() != "hi" {
		t.Errorf("unexpected value: %v", &v)
	}
}

func TestValue_String(t *testing.T) {
	doc, _ := ParseDocument([]byte(`{"a":null,"b":false}`))
	if s := doc.String(); !strings.Contains(s, "null") || !strings.Contains(s, "false") {
		t.Errorf("unexpected String(): %s", s)
	}
}
