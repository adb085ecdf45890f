package router

import (
	"regexp"
	"strings"
	"sync"
)

// token is one path segment: static, :param, {param:regex} or *splat
type token struct {
	value     string
	matcher   string
	isDynamic bool
	isSplat   bool

	once sync.Once
	re   *regexp.Regexp
}

// pattern renders the token in chi syntax
func (t *token) pattern() string {
	switch {
	case t.isSplat:
		return "*"
	case t.isDynamic && t.matcher != "":
		return "{" + t.value + ":" + t.matcher + "}"
	case t.isDynamic:
		return "{" + t.value + "}"
	}
	return t.value
}

// match checks a param value against the token constraint
func (t *token) match(str string) bool {
	if !t.isDynamic || t.matcher == "" {
		return true
	}

	t.once.Do(func() {
		t.re, _ = regexp.Compile("^(?:" + t.matcher + ")$")
	})

	return t.re != nil && t.re.MatchString(str)
}

// tokenize splits a path into tokens applying constraints to dynamic ones
func tokenize(path string, constraints map[string]string) ([]*token, error) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	tokens := make([]*token, 0, len(segments))

	for pos, segment := range segments {
		if segment == "" {
			continue
		}

		var t *token

		switch segment[0] {
		case ':':
			t = &token{value: segment[1:], isDynamic: true}
		case '*':
			if pos != len(segments)-1 {
				return nil, ErrorInvalidRoute.Errorf("splat %s must be the last segment of %s", segment, path)
			}
			t = &token{value: segment[1:], isDynamic: true, isSplat: true}
		case '{':
			if segment[len(segment)-1] != '}' {
				return nil, ErrorInvalidRoute.Errorf("unterminated param %s in %s", segment, path)
			}
			name, matcher, _ := strings.Cut(segment[1:len(segment)-1], ":")
			t = &token{value: name, matcher: matcher, isDynamic: true}
		default:
			t = &token{value: segment}
		}

		if t.isDynamic && t.value == "" {
			return nil, ErrorInvalidRoute.Errorf("unnamed param in %s", path)
		}

		if m, ok := constraints[t.value]; ok && t.isDynamic && !t.isSplat {
			t.matcher = m
		}

		tokens = append(tokens, t)
	}

	return tokens, nil
}

// chiPattern renders tokens as a chi routing pattern
func chiPattern(tokens []*token) string {
	if len(tokens) == 0 {
		return "/"
	}

	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.pattern()
	}
	return "/" + strings.Join(parts, "/")
}

// joinPath joins a scope prefix and a route path
func joinPath(prefix, path string) string {
	joined := strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(path, "/")
	if joined != "/" {
		joined = strings.TrimRight(joined, "/")
	}
	if !strings.HasPrefix(joined, "/") {
		joined = "/" + joined
	}
	return joined
}

// namePrefix derives a route name prefix from the static segments of path
func namePrefix(path string) string {
	var parts []string
	for _, segment := range strings.Split(strings.Trim(path, "/"), "/") {
		if segment == "" || strings.ContainsAny(segment[:1], ":*{") {
			continue
		}
		parts = append(parts, strings.ReplaceAll(segment, "-", "_"))
	}
	return strings.Join(parts, "_")
}
