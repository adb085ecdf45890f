package action

import "strings"

// Directive is one content security policy directive
type Directive struct {
	Name  string
	Value string
}

// ContentSecurityPolicy keeps directives in the order they are sent
type ContentSecurityPolicy []Directive

func DefaultContentSecurityPolicy() ContentSecurityPolicy {
	return ContentSecurityPolicy{
		{"base-uri", "'self'"},
		{"child-src", "'self'"},
		{"connect-src", "'self'"},
		{"default-src", "'none'"},
		{"font-src", "'self'"},
		{"form-action", "'self'"},
		{"frame-ancestors", "'self'"},
		{"frame-src", "'self'"},
		{"img-src", "'self' https: data:"},
		{"media-src", "'self'"},
		{"object-src", "'none'"},
		{"script-src", "'self'"},
		{"style-src", "'self' 'unsafe-inline' https:"},
	}
}

func (csp ContentSecurityPolicy) Get(name string) string {
	for _, d := range csp {
		if d.Name == name {
			return d.Value
		}
	}
	return ""
}

// Set returns a copy with the directive replaced or appended
func (csp ContentSecurityPolicy) Set(name, value string) ContentSecurityPolicy {
	ret := append(ContentSecurityPolicy(nil), csp...)
	for i := range ret {
		if ret[i].Name == name {
			ret[i].Value = value
			return ret
		}
	}
	return append(ret, Directive{name, value})
}

// Delete returns a copy without the directive
func (csp ContentSecurityPolicy) Delete(name string) ContentSecurityPolicy {
	ret := make(ContentSecurityPolicy, 0, len(csp))
	for _, d := range csp {
		if d.Name != name {
			ret = append(ret, d)
		}
	}
	return ret
}

func (csp ContentSecurityPolicy) String() string {
	parts := make([]string, 0, len(csp))
	for _, d := range csp {
		parts = append(parts, d.Name+" "+d.Value)
	}
	return strings.Join(parts, ";")
}
