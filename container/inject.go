package container

import (
	"reflect"
	"strings"

	"github.com/slimloans/hanami/errors"
)

// Inject fills the fields of target tagged `inject:"key"` (or
// `inject:"key,optional"`). Fields already holding a value are left alone so
// explicit dependencies win over the container. Embedded structs are walked.
func Inject(r Resolver, target interface{}) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrorInvalidInjection.Errorf("inject target must be a pointer to a struct, got %T", target)
	}
	return injectStruct(r, rv.Elem())
}

func (c *Container) Inject(target interface{}) error {
	return Inject(c, target)
}

func injectStruct(r Resolver, v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		field := v.Field(i)

		tag, tagged := sf.Tag.Lookup("inject")
		if !tagged {
			if sf.Anonymous && field.Kind() == reflect.Struct && field.CanSet() {
				if err := injectStruct(r, field); err != nil {
					return err
				}
			}
			continue
		}

		key, opts, _ := strings.Cut(tag, ",")
		if key == "" || key == "-" {
			continue
		}

		if !field.CanSet() {
			return ErrorInvalidInjection.Errorf("%s.%s is unexported and cannot be injected", t.Name(), sf.Name)
		}

		if !field.IsZero() {
			continue
		}

		value, err := r.Resolve(key)
		if err != nil {
			if opts == "optional" && errors.Is(err, ErrorComponentNotFound) {
				continue
			}
			return err
		}

		rval := reflect.ValueOf(value)
		if !rval.IsValid() {
			continue
		}

		if !rval.Type().AssignableTo(field.Type()) {
			return ErrorInvalidInjection.Errorf("%s is %s and cannot be assigned to %s.%s (%s)", key, rval.Type(), t.Name(), sf.Name, field.Type())
		}

		field.Set(rval)
	}

	return nil
}
