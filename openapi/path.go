package openapi

import (
	"regexp"
	"strings"
)

// macroTypeMap maps path variable patterns to OpenAPI type and format.
var macroTypeMap = map[string][2]string{
	"uuid":     {"string", "uuid"},
	"int":      {"integer", ""},
	"float":    {"number", ""},
	"slug":     {"string", ""},
	"alpha":    {"string", ""},
	"alphanum": {"string", ""},
	"date":     {"string", "date"},
	"hex":      {"string", ""},
	"domain":   {"string", "hostname"},
	`[0-9]+`:   {"integer", ""},
	`\d+`:      {"integer", ""},
}

var (
	// braceVarRegexp matches template variables in the form {name} or {name:pattern}.
	braceVarRegexp = regexp.MustCompile(`\{([^}]+)\}`)

	// colonVarRegexp matches colon parameters such as :id.
	colonVarRegexp = regexp.MustCompile(`:([A-Za-z0-9_]+)`)
)

// pathVar is a variable found in a route pattern.
type pathVar struct {
	name    string
	pattern string
}

// reformatPath rewrites every variable into the OpenAPI {name} form and
// returns the variables in order of appearance.
func reformatPath(tpl string) (string, []pathVar) {
	var vars []pathVar

	out := braceVarRegexp.ReplaceAllStringFunc(tpl, func(match string) string {
		name, pattern, _ := strings.Cut(match[1:len(match)-1], ":")
		vars = append(vars, pathVar{name: name, pattern: pattern})
		return "{" + name + "}"
	})

	out = colonVarRegexp.ReplaceAllStringFunc(out, func(match string) string {
		vars = append(vars, pathVar{name: match[1:]})
		return "{" + match[1:] + "}"
	})

	return out, vars
}

// pathParameters builds OpenAPI path parameter objects for the variables.
func pathParameters(vars []pathVar) []any {
	params := make([]any, 0, len(vars))
	for _, v := range vars {
		schema := map[string]any{"type": "string"}
		if typeInfo, ok := macroTypeMap[v.pattern]; ok {
			schema["type"] = typeInfo[0]
			if typeInfo[1] != "" {
				schema["format"] = typeInfo[1]
			}
		}

		params = append(params, map[string]any{
			"name":     v.name,
			"in":       "path",
			"required": true,
			"schema":   schema,
		})
	}
	return params
}
