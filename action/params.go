package action

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/slimloans/hanami/errors"
	"github.com/slimloans/hanami/router"
	"github.com/spf13/cast"
)

const maxMemory = 32 << 20

// Params are the merged query, body and path params of a request. Form keys
// like book[title] become nested maps.
type Params map[string]interface{}

// Get digs through nested params
func (p Params) Get(keys ...string) (interface{}, bool) {
	var cur interface{} = map[string]interface{}(p)

	for _, k := range keys {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		if cur, ok = m[k]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func (p Params) String(keys ...string) string {
	v, _ := p.Get(keys...)
	return cast.ToString(v)
}

func (p Params) Int(keys ...string) int {
	v, _ := p.Get(keys...)
	return cast.ToInt(v)
}

// Validator is implemented by bind targets that check themselves
type Validator interface {
	Validate() error
}

// Bind decodes params into dst using `param` tags, string values are
// converted to the field types
func (p Params) Bind(dst interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "param",
		WeaklyTypedInput: true,
		Result:           dst,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc("2006-01-02T15:04:05Z07:00"),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return errors.WrapGeneric(err)
	}

	if err := decoder.Decode(map[string]interface{}(p)); err != nil {
		return errors.WrapWithStatus(ErrorInvalidParams, err, http.StatusBadRequest)
	}

	if v, ok := dst.(Validator); ok {
		if err := v.Validate(); err != nil {
			return errors.WrapUnprocessable(err)
		}
	}

	return nil
}

// parseParams merges query, body and path params, later sources win
func parseParams(r *http.Request) (Params, error) {
	params := Params{}

	for key, values := range r.URL.Query() {
		setNested(params, key, values)
	}

	if err := parseBody(r, params); err != nil {
		return nil, errors.WrapWithStatus(ErrorInvalidParams, err, http.StatusBadRequest)
	}

	for key, value := range router.Params(r) {
		params[key] = value
	}

	return params, nil
}

func parseBody(r *http.Request, params Params) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch {
	case mt == "application/json" || strings.HasSuffix(mt, "+json"):
		body, err := io.ReadAll(r.Body)
		if err != nil || len(body) == 0 {
			return err
		}

		decoded := map[string]interface{}{}
		if err := json.Unmarshal(body, &decoded); err != nil {
			return err
		}
		for k, v := range decoded {
			params[k] = v
		}

	case mt == "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return err
		}
		for key, values := range r.PostForm {
			setNested(params, key, values)
		}

	case mt == "multipart/form-data":
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			return err
		}
		for key, values := range r.MultipartForm.Value {
			setNested(params, key, values)
		}
	}

	return nil
}

// setNested stores values under a key like "book[authors][]"
func setNested(params Params, key string, values []string) {
	path := splitKey(key)
	if len(path) == 0 {
		return
	}

	list := strings.HasSuffix(key, "[]")

	cur := map[string]interface{}(params)
	for _, segment := range path[:len(path)-1] {
		next, ok := cur[segment].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			cur[segment] = next
		}
		cur = next
	}

	last := path[len(path)-1]
	switch {
	case list:
		items := make([]interface{}, len(values))
		for i, v := range values {
			items[i] = v
		}
		cur[last] = items
	case len(values) > 0:
		cur[last] = values[len(values)-1]
	}
}

func splitKey(key string) []string {
	key = strings.TrimSuffix(key, "[]")

	head, rest, nested := strings.Cut(key, "[")
	if head == "" {
		return nil
	}

	path := []string{head}
	if !nested {
		return path
	}

	for _, part := range strings.Split(rest, "[") {
		part = strings.TrimSuffix(part, "]")
		if part != "" {
			path = append(path, part)
		}
	}
	return path
}
