package llm

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"prose wrapped", "Sure! Here you go:\n```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"nested braces", `x {"a":{"b":2}} y`, `{"a":{"b":2}}`},
		{"no braces", "plain text answer", "plain text answer"},
		{"reversed braces", "} oops {", "} oops {"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ExtractJSON(c.in)
			if got != c.want {
				t.Fatalf("ExtractJSON(%q) = %q; want %q", c.in, got, c.want)
			}
		})
	}
}

func TestFirstObjectList(t *testing.T) {
	in := `{"whatever_key": [{"user": "a", "text": "hi"}, {"user": "b", "text": "yo"}]}`
	got := FirstObjectList(in)
	want := []map[string]any{
		{"user": "a", "text": "hi"},
		{"user": "b", "text": "yo"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("FirstObjectList mismatch (-want +got):\n%s", diff)
	}
}

func TestFirstObjectListSkipsNonObjectLists(t *testing.T) {
	in := `{"a_scalars": [1, 2, 3], "b_objects": [{"k": "v"}]}`
	got := FirstObjectList(in)
	if len(got) != 1 || got[0]["k"] != "v" {
		t.Fatalf("expected the object list, got %v", got)
	}
}

func TestFirstObjectListUnparseable(t *testing.T) {
	if got := FirstObjectList("not json at all"); got != nil {
		t.Fatalf("expected nil for unparseable input, got %v", got)
	}
}
