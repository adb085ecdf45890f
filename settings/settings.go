// Package settings loads typed application settings from dotenv files and
// the process environment.
//
//	type Settings struct {
//		DatabaseURL string          `env:"DATABASE_URL" required:"true"`
//		PageSize    int             `default:"25"`
//		Fee         decimal.Decimal `default:"0.25"`
//	}
//
// Fields without an env tag read the upper snake case of their name
// (PageSize reads PAGE_SIZE). Fields tagged env:"-" are skipped.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"github.com/slimloans/hanami/env"
	"github.com/slimloans/hanami/errors"
	"github.com/slimloans/hanami/utils"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

var ErrorInvalidTarget = errors.Error{Key: "ERROR.SETTINGS_INVALID_TARGET"}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// InvalidSettingsError collects every setting that failed to load
type InvalidSettingsError struct {
	Errors map[string]error
}

func (e *InvalidSettingsError) Error() string {
	keys := make([]string, 0, len(e.Errors))
	for k := range e.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("could not initialize settings, the following settings were invalid:")
	for _, k := range keys {
		fmt.Fprintf(&b, "\n  %s: %s", k, e.Errors[k])
	}
	return b.String()
}

// Files lists the dotenv files read for environment e, the later ones win
func Files(e string) []string {
	files := []string{".env", ".env." + e}
	if e != env.Test {
		files = append(files, ".env.local")
	}
	return append(files, ".env."+e+".local")
}

// Read returns the values of the dotenv files of root, keys upper cased
func Read(root, e string) (map[string]string, error) {
	values := map[string]string{}

	for _, name := range Files(e) {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}

		v := viper.New()
		v.SetConfigFile(path)
		v.SetConfigType("dotenv")

		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WrapGeneric(fmt.Errorf("reading %s: %w", name, err))
		}

		for k, val := range v.AllSettings() {
			values[strings.ToUpper(k)] = cast.ToString(val)
		}
	}

	return values, nil
}

// Load decodes the dotenv files of root and the process environment into
// dst, a pointer to a struct
func Load(root, e string, dst interface{}) error {
	values, err := Read(root, e)
	if err != nil {
		return err
	}
	return Decode(values, dst)
}

// Decode fills dst from values, the process environment wins over values
func Decode(values map[string]string, dst interface{}) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return ErrorInvalidTarget.Errorf("settings must be a pointer to a struct, got %T", dst)
	}

	invalid := map[string]error{}
	decodeStruct(rv.Elem(), values, invalid)

	if len(invalid) > 0 {
		return &InvalidSettingsError{Errors: invalid}
	}
	return nil
}

func decodeStruct(rv reflect.Value, values map[string]string, invalid map[string]error) {
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		fv := rv.Field(i)

		if field.PkgPath != "" {
			continue
		}

		key, ok := field.Tag.Lookup("env")
		if key == "-" {
			continue
		}

		if !ok && field.Anonymous && field.Type.Kind() == reflect.Struct {
			decodeStruct(fv, values, invalid)
			continue
		}

		if key == "" {
			key = strings.ToUpper(utils.SnakeCase(field.Name))
		}

		raw, found := os.LookupEnv(key)
		if !found {
			raw, found = values[key]
		}

		if !found || raw == "" {
			if def, ok := field.Tag.Lookup("default"); ok {
				raw, found = def, true
			}
		}

		if !found || raw == "" {
			if field.Tag.Get("required") == "true" {
				invalid[key] = fmt.Errorf("is missing")
			}
			continue
		}

		if err := decodeField(raw, fv); err != nil {
			invalid[key] = err
		}
	}
}

// decodeField converts raw into the type of fv through mapstructure
func decodeField(raw string, fv reflect.Value) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "env",
		WeaklyTypedInput: true,
		Result:           fv.Addr().Interface(),
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.DecodeHookFuncType(stringToListHook),
			mapstructure.DecodeHookFuncType(stringToDecimalHook),
		),
	})
	if err != nil {
		return err
	}

	return decoder.Decode(raw)
}

// stringToListHook splits comma separated values, dropping blanks
func stringToListHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Slice {
		return data, nil
	}

	parts := []string{}
	for _, p := range strings.Split(data.(string), ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts, nil
}

func stringToDecimalHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != decimalType {
		return data, nil
	}
	return decimal.NewFromString(data.(string))
}
