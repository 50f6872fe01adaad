package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		vars map[string]string
		want string
	}{
		{
			name: "substitutes placeholders",
			tmpl: "Write {{n}} ideas about {{topic}}.",
			vars: map[string]string{"n": "3", "topic": "rats"},
			want: "Write 3 ideas about rats.",
		},
		{
			name: "unknown placeholders survive",
			tmpl: "keep {{this}}",
			vars: map[string]string{"other": "x"},
			want: "keep {{this}}",
		},
		{
			name: "trims surrounding whitespace",
			tmpl: "\n  body text  \n",
			vars: nil,
			want: "body text",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.tmpl, tt.vars); got != tt.want {
				t.Errorf("Render = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestBodyVariants(t *testing.T) {
	ps := &PromptSet{Article: map[string]string{
		"outline":     "...",
		"body_report": "...",
		"body_column": "...",
		"extract":     "...",
	}}
	want := []string{"body_column", "body_report"}
	if diff := cmp.Diff(want, ps.BodyVariants()); diff != "" {
		t.Errorf("BodyVariants mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadPrompts(t *testing.T) {
	ps, err := LoadPrompts("../prompts")
	if err != nil {
		t.Fatalf("LoadPrompts: %v", err)
	}
	for name, m := range map[string]map[string]string{
		"system":  ps.System,
		"ideas":   ps.Ideas,
		"article": ps.Article,
		"images":  ps.Images,
		"parody":  ps.Parody,
	} {
		if len(m) == 0 {
			t.Errorf("%s prompts are empty", name)
		}
	}
	if len(ps.BodyVariants()) < 2 {
		t.Errorf("expected at least two body variants, got %v", ps.BodyVariants())
	}
}
