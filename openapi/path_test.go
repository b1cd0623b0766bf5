package openapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReformatPath(t *testing.T) {
	tests := []struct {
		tpl      string
		wantPath string
		wantVars []pathVar
	}{
		{"/users", "/users", nil},
		{"/shop/widgets/:id", "/shop/widgets/{id}", []pathVar{{name: "id"}}},
		{"/a/:x/b/:y_2", "/a/{x}/b/{y_2}", []pathVar{{name: "x"}, {name: "y_2"}}},
		{"/items/{id}", "/items/{id}", []pathVar{{name: "id"}}},
		{"/items/{id:[0-9]+}", "/items/{id}", []pathVar{{name: "id", pattern: "[0-9]+"}}},
		{"/users/{id:uuid}/:tab", "/users/{id}/{tab}", []pathVar{{name: "id", pattern: "uuid"}, {name: "tab"}}},
	}

	for _, tc := range tests {
		t.Run(tc.tpl, func(t *testing.T) {
			path, vars := reformatPath(tc.tpl)
			assert.Equal(t, tc.wantPath, path)
			assert.Equal(t, tc.wantVars, vars)
		})
	}
}

func TestPathParameters(t *testing.T) {
	params := pathParameters([]pathVar{
		{name: "id", pattern: "uuid"},
		{name: "page", pattern: "[0-9]+"},
		{name: "slug"},
		{name: "re", pattern: "[a-z]{2}"},
	})

	assert.Equal(t, []any{
		map[string]any{"name": "id", "in": "path", "required": true, "schema": map[string]any{"type": "string", "format": "uuid"}},
		map[string]any{"name": "page", "in": "path", "required": true, "schema": map[string]any{"type": "integer"}},
		map[string]any{"name": "slug", "in": "path", "required": true, "schema": map[string]any{"type": "string"}},
		map[string]any{"name": "re", "in": "path", "required": true, "schema": map[string]any{"type": "string"}},
	}, params)
}
