package ai

import "testing"

func TestNewOpenAIGateway_MissingKey(t *testing.T) {
	_, err := NewOpenAIGateway("", "gpt-4o-mini")
	if err != ErrMissingAPIKey {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}

	_, err = NewOpenAIGateway("   ", "gpt-4o-mini")
	if err != ErrMissingAPIKey {
		t.Errorf("expected ErrMissingAPIKey for blank key, got %v", err)
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain html untouched",
			input: "<!DOCTYPE html><html></html>",
			want:  "<!DOCTYPE html><html></html>",
		},
		{
			name:  "html fence",
			input: "```html\n<html></html>\n```",
			want:  "<html></html>",
		},
		{
			name:  "bare fence",
			input: "```\n<html></html>\n```",
			want:  "<html></html>",
		},
		{
			name:  "uppercase language tag",
			input: "```HTML\n<html></html>\n```",
			want:  "<html></html>",
		},
		{
			name:  "surrounding whitespace",
			input: "  \n```html\n<html></html>\n```\n  ",
			want:  "<html></html>",
		},
		{
			name:  "inner backticks preserved",
			input: "<html><code>```js</code></html>",
			want:  "<html><code>```js</code></html>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFences(tt.input); got != tt.want {
				t.Errorf("stripCodeFences(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPreview(t *testing.T) {
	if got := preview("hello", 10); got != "hello" {
		t.Errorf("expected unchanged string, got %q", got)
	}
	if got := preview("hello world", 5); got != "hello" {
		t.Errorf("expected first 5 chars, got %q", got)
	}
}
