package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIdent(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"title", "title"},
		{"field_tags", "fieldtags"},
		{"FieldTags", "fieldtags"},
		{"created-at", "createdat"},
		{"XMLBody", "xmlbody"},
		{"meta.description", "metadescription"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeIdent(tt.input))
		})
	}
}

func TestNormalizeIdentWithPrefixStrip(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"field_tags", "tags"},
		{"FieldImage", "image"},
		{"fld_body", "body"},
		// A lone prefix token is a name on its own.
		{"field", "field"},
		{"title", "title"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeIdentWithPrefixStrip(tt.input))
		})
	}
}

func TestTokenizeIdent(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"", nil},
		{"OrderID", []string{"order", "id"}},
		{"field_tags", []string{"field", "tags"}},
		{"XMLParser", []string{"xml", "parser"}},
		{"getHTTPResponse", []string{"get", "http", "response"}},
		{"__a__b", []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, TokenizeIdent(tt.input))
		})
	}
}
