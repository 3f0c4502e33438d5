package document

import "testing"

func TestExtractObject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{
			name: "bare object",
			in:   `{"a":1}`,
			want: `{"a":1}`,
			ok:   true,
		},
		{
			name: "code fence",
			in:   "```json\n{\"a\":1}\n```",
			want: `{"a":1}`,
			ok:   true,
		},
		{
			name: "prose around object",
			in:   `Here is the document you asked for: {"a":1} Let me know if it helps.`,
			want: `{"a":1}`,
			ok:   true,
		},
		{
			name: "nested objects",
			in:   `{"a":{"b":{"c":3}}}`,
			want: `{"a":{"b":{"c":3}}}`,
			ok:   true,
		},
		{
			name: "brace inside string literal",
			in:   `{"quote":"we said { add it } later","n":1}`,
			want: `{"quote":"we said { add it } later","n":1}`,
			ok:   true,
		},
		{
			name: "escaped quote inside string literal",
			in:   `{"quote":"he said \"{\" loudly"}`,
			want: `{"quote":"he said \"{\" loudly"}`,
			ok:   true,
		},
		{
			name: "stray close brace before object",
			in:   `} noise {"a":1}`,
			want: `{"a":1}`,
			ok:   true,
		},
		{
			name: "two objects returns the first",
			in:   `{"a":1} {"b":2}`,
			want: `{"a":1}`,
			ok:   true,
		},
		{
			name: "truncated object",
			in:   `{"a":1`,
			ok:   false,
		},
		{
			name: "unterminated string",
			in:   `{"a":"oops`,
			ok:   false,
		},
		{
			name: "no object at all",
			in:   "the meeting had no actionable items",
			ok:   false,
		},
		{
			name: "empty input",
			in:   "",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := extractObject(tt.in)
			if ok != tt.ok {
				t.Fatalf("extractObject(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if got != tt.want {
				t.Fatalf("extractObject(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
