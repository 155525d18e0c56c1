package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFencedBlocks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []fencedBlock
	}{
		{"none", "plain text", nil},
		{"tagged", "```json\n{}\n```", []fencedBlock{{lang: "json", body: "{}", closed: true}}},
		{"untagged crlf", "```\r\n[1]\r\n```", []fencedBlock{{lang: "", body: "[1]", closed: true}}},
		{"inline", "```json{\"a\":1}```", []fencedBlock{{lang: "json", body: `{"a":1}`, closed: true}}},
		{"unclosed", "text ```JSON\n{\"a\": 1", []fencedBlock{{lang: "JSON", body: `{"a": 1`}}},
		{"fence quoted in string", "```json\n{\"s\": \"```\"}\n```", []fencedBlock{{lang: "json", body: "{\"s\": \"```\"}", closed: true}}},
		{"indented closer", "```json\n{\"a\": \"x```y\"}\n  ```  \nafter", []fencedBlock{{lang: "json", body: "{\"a\": \"x```y\"}", closed: true}}},
		{"quoted fence without closer", "```json\n{\"s\": \"```\", \"t\": 1", []fencedBlock{{lang: "json", body: "{\"s\": \"```\", \"t\": 1"}}},
		{"two blocks", "```go\nx\n```\n```json\ny\n```", []fencedBlock{
			{lang: "go", body: "x", closed: true},
			{lang: "json", body: "y", closed: true},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fencedBlocks(tt.input)
			if diff := cmp.Diff(tt.want, got, cmp.AllowUnexported(fencedBlock{})); diff != "" {
				t.Errorf("fencedBlocks() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFencedCandidate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"no fence", `{"a":1}`, "", false},
		{"only code", "```python\nprint(1)\n```", "", false},
		{"json tag without brace", "```json\n  'a': 1\n```", "'a': 1", true},
		{"brace block beats json tag", "```json\nnull\n```\n```\n{}\n```", "{}", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := fencedCandidate(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("fencedCandidate() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestBareCandidate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "   ", ""},
		{"object", " {\"a\":1} ", `{"a":1}`},
		{"array", "[1]", "[1]"},
		{"embedded object", `He said "hi" then {"a": "}"} and left`, `{"a": "}"}`},
		{"escaped quote", `x {"a": "\"}"} y`, `{"a": "\"}"}`},
		{"truncated object", `prefix {"a": [1`, `{"a": [1`},
		{"no json", "just words", "just words"},
		{"bracketed prose before object", `[Note] see {"a": 1}`, `{"a": 1}`},
		{"array of strings", `[ "x" ]`, `[ "x" ]`},
		{"array of literals", "[null, true]", "[null, true]"},
		{"empty array", "[]", "[]"},
		{"bracketed prose only", "[Note] nothing here", "[Note] nothing here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bareCandidate(tt.input); got != tt.want {
				t.Errorf("bareCandidate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestOpensDocument(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"{", true},
		{"[1, 2]", true},
		{"[-1]", true},
		{"['a']", true},
		{"[\n  {\"a\": 1}\n]", true},
		{"[false]", true},
		{"[Note]", false},
		{"[see above]", false},
		{"plain", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := opensDocument(tt.input); got != tt.want {
			t.Errorf("opensDocument(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
