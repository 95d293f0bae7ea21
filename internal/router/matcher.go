// Sportline - Sports News Platform Backend
// Copyright 2026 Sportline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sportlinehq/sportline

package router

import (
	"fmt"
	"regexp"
	"strings"
)

// paramNameRe validates named-parameter identifiers in templates.
var paramNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Matcher is a compiled path template. Compilation happens once at route
// registration; matching is a pure function with no side effects.
type Matcher struct {
	template string
	re       *regexp.Regexp
	names    []string
}

// CompileTemplate compiles a path template into a Matcher.
//
// Templates consist of literal segments and named parameters marked with a
// leading colon ("/articles/:id"). A parameter captures one or more
// characters excluding the path separator. A template without a trailing
// separator also accepts a request path with one optional trailing
// separator.
func CompileTemplate(template string) (*Matcher, error) {
	if template == "" || template[0] != '/' {
		return nil, fmt.Errorf("route template %q must start with '/'", template)
	}

	if template == "/" {
		return &Matcher{
			template: template,
			re:       regexp.MustCompile(`^/$`),
		}, nil
	}

	segments := strings.Split(strings.Trim(template, "/"), "/")
	var (
		pattern strings.Builder
		names   []string
		seen    = make(map[string]bool)
	)
	pattern.WriteString("^")

	for _, segment := range segments {
		pattern.WriteString("/")
		if strings.HasPrefix(segment, ":") {
			name := segment[1:]
			if !paramNameRe.MatchString(name) {
				return nil, fmt.Errorf("route template %q: invalid parameter name %q", template, segment)
			}
			if seen[name] {
				return nil, fmt.Errorf("route template %q: duplicate parameter %q", template, name)
			}
			seen[name] = true
			names = append(names, name)
			pattern.WriteString("([^/]+)")
			continue
		}
		if segment == "" {
			return nil, fmt.Errorf("route template %q: empty segment", template)
		}
		pattern.WriteString(regexp.QuoteMeta(segment))
	}

	// One optional trailing separator is tolerated.
	pattern.WriteString("/?$")

	re, err := regexp.Compile(pattern.String())
	if err != nil {
		return nil, fmt.Errorf("route template %q: %w", template, err)
	}

	return &Matcher{template: template, re: re, names: names}, nil
}

// Template returns the original template string.
func (m *Matcher) Template() string {
	return m.template
}

// Match tests path against the compiled template. On success it returns the
// captured parameter values keyed by name; on failure it returns (nil, false).
func (m *Matcher) Match(path string) (map[string]string, bool) {
	groups := m.re.FindStringSubmatch(path)
	if groups == nil {
		return nil, false
	}
	if len(m.names) == 0 {
		return map[string]string{}, true
	}

	params := make(map[string]string, len(m.names))
	for i, name := range m.names {
		params[name] = groups[i+1]
	}
	return params, true
}

// NormalizePath canonicalizes a request path before matching: the base
// prefix (deployment under a sub-path) is stripped, repeated trailing
// slashes collapse, and the root always normalizes to "/".
func NormalizePath(path, basePath string) string {
	if basePath != "" && basePath != "/" {
		base := strings.TrimSuffix(basePath, "/")
		if path == base {
			path = "/"
		} else if strings.HasPrefix(path, base+"/") {
			path = path[len(base):]
		}
	}

	for strings.HasSuffix(path, "/") && len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	if path == "" {
		return "/"
	}
	if path[0] != '/' {
		path = "/" + path
	}
	return path
}
