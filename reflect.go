package hanami

import (
	"reflect"
	"strings"

	"github.com/slimloans/hanami/inflector"
)

// TypeNoPtr returns the underlying reflect.Type of the provided variable,
// stripping away pointer indirection if present.
// For example, it returns "mypackage.Something" instead of "*mypackage.Something".
func TypeNoPtr(myvar any) reflect.Type {
	t := reflect.TypeOf(myvar)
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}

// componentKey derives the key segments of a component from its package
// path relative to namespace and its underscored type name
func componentKey(namespace string, component any, inf *inflector.Inflector) ([]string, error) {
	if component == nil {
		return nil, ErrorAutoRegister.Errorf("cannot register a nil component")
	}

	t := TypeNoPtr(component)
	if t.Name() == "" {
		return nil, ErrorAutoRegister.Errorf("%s has no type name to derive a key from", t)
	}

	pkg := t.PkgPath()

	var rel string
	switch {
	case namespace == "":
		return nil, ErrorAutoRegister.Errorf("cannot register %s without a slice namespace", t)
	case pkg == namespace:
	case strings.HasPrefix(pkg, namespace+"/"):
		rel = pkg[len(namespace)+1:]
	default:
		return nil, ErrorAutoRegister.Errorf("%s is outside of namespace %s", t, namespace)
	}

	var segments []string
	if rel != "" {
		segments = strings.Split(rel, "/")
	}

	return append(segments, inf.Underscore(t.Name())), nil
}
