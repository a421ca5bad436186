package json

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	type record struct {
		Name string     `json:"name"`
		Raw  RawMessage `json:"raw,omitempty"`
	}

	in := record{Name: "My App", Raw: RawMessage(`{"a":1}`)}
	b, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var out record
	if err := Unmarshal(b, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if diff := cmp.Diff(in.Name, out.Name); diff != "" {
		t.Errorf("name mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(`{"a":1}`, string(out.Raw)); diff != "" {
		t.Errorf("raw mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshalIndent(t *testing.T) {
	t.Parallel()

	b, err := MarshalIndent(map[string]int{"b": 2, "a": 1}, "", "  ")
	if err != nil {
		t.Fatalf("MarshalIndent: %v", err)
	}
	want := "{\n  \"a\": 1,\n  \"b\": 2\n}"
	if diff := cmp.Diff(want, string(b)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}
