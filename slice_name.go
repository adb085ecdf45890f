package hanami

import (
	"regexp"
	"strings"

	"github.com/slimloans/hanami/inflector"
)

var sliceNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// SliceName is the dotted path of a slice, "admin.billing" for the billing
// slice nested in admin. The application has an empty path.
type SliceName struct {
	parts []string
}

func NewSliceName(path string) SliceName {
	if path == "" {
		return SliceName{}
	}
	return SliceName{parts: strings.Split(path, ".")}
}

func validSliceName(name string) bool {
	return sliceNamePattern.MatchString(name)
}

// Name is the last segment
func (n SliceName) Name() string {
	if len(n.parts) == 0 {
		return ""
	}
	return n.parts[len(n.parts)-1]
}

// String is the dotted path
func (n SliceName) String() string { return strings.Join(n.parts, ".") }

func (n SliceName) Parts() []string { return append([]string(nil), n.parts...) }

func (n SliceName) IsApp() bool { return len(n.parts) == 0 }

func (n SliceName) Child(name string) SliceName {
	return SliceName{parts: append(n.Parts(), name)}
}

func (n SliceName) Parent() SliceName {
	if len(n.parts) == 0 {
		return n
	}
	return SliceName{parts: n.Parts()[:len(n.parts)-1]}
}

// Key is the underscored path, used for logger fields and metric labels
func (n SliceName) Key() string { return strings.Join(n.parts, "_") }

// Camelized joins the camelized segments, "AdminBilling"
func (n SliceName) Camelized(inf *inflector.Inflector) string {
	var b strings.Builder
	for _, p := range n.parts {
		b.WriteString(inf.Camelize(p))
	}
	return b.String()
}
