package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *string
	}{
		{name: "empty", input: "", want: nil},
		{name: "whitespace", input: "   ", want: nil},
		{name: "placeholder", input: "#", want: nil},
		{name: "padded placeholder", input: " # ", want: nil},
		{name: "url", input: " https://centaura.group ", want: strPtr("https://centaura.group")},
		{name: "anchor", input: "#contact", want: strPtr("#contact")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeURL(tt.input))
		})
	}
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{}, SplitLines(""))
	assert.Equal(t, []string{"one", "two"}, SplitLines("one\n\n  two  \n"))
	assert.Equal(t, []string{"one", "two"}, SplitLines("one\r\ntwo\r\n"))
}

func TestParseMenuItems(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: "[]"},
		{name: "invalid", input: "[{", want: "[]"},
		{name: "object", input: `{"label":"Home"}`, want: "[]"},
		{name: "null", input: "null", want: "[]"},
		{name: "list", input: ` [{"label":"Home","url":"/"}, "Contact"] `, want: `[{"label":"Home","url":"/"},"Contact"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.JSONEq(t, tt.want, string(ParseMenuItems(tt.input)))
		})
	}
}

func TestSafeNext(t *testing.T) {
	assert.Equal(t, "/dashboard/hero", safeNext("/dashboard/hero"))
	assert.Equal(t, "/dashboard", safeNext(""))
	assert.Equal(t, "/dashboard", safeNext("https://evil.example/dashboard"))
	assert.Equal(t, "/dashboard", safeNext("//evil.example"))
}

func strPtr(v string) *string {
	return &v
}
