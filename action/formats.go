package action

import (
	"mime"
	"sort"
	"strconv"
	"strings"
)

// Formats maps format names to their mime types, the first type is the one
// responses are sent with
type Formats map[string][]string

func DefaultFormats() Formats {
	return Formats{
		"html":      {"text/html", "application/xhtml+xml"},
		"json":      {"application/json", "text/json"},
		"text":      {"text/plain"},
		"xml":       {"application/xml", "text/xml"},
		"csv":       {"text/csv"},
		"js":        {"application/javascript", "text/javascript"},
		"css":       {"text/css"},
		"form":      {"application/x-www-form-urlencoded"},
		"multipart": {"multipart/form-data"},
	}
}

// Add registers mime types for a format
func (f Formats) Add(format string, mimes ...string) {
	f[format] = append(f[format], mimes...)
}

func (f Formats) Clone() Formats {
	ret := make(Formats, len(f))
	for k, v := range f {
		ret[k] = append([]string(nil), v...)
	}
	return ret
}

// MimeFor returns the primary mime type of format
func (f Formats) MimeFor(format string) string {
	if mimes := f[format]; len(mimes) > 0 {
		return mimes[0]
	}
	return ""
}

// FormatFor returns the format owning the mime type, params are ignored
func (f Formats) FormatFor(mimeType string) string {
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = mt
	}

	for _, format := range f.names() {
		for _, m := range f[format] {
			if m == mimeType {
				return format
			}
		}
	}
	return ""
}

func (f Formats) names() []string {
	names := make([]string, 0, len(f))
	for k := range f {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

type mediaRange struct {
	value string
	q     float64
}

// parseAccept returns the media ranges of an Accept header by preference
func parseAccept(header string) []mediaRange {
	var ranges []mediaRange

	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		mt, params, err := mime.ParseMediaType(part)
		if err != nil {
			continue
		}

		q := 1.0
		if v, ok := params["q"]; ok {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				q = parsed
			}
		}

		if q > 0 {
			ranges = append(ranges, mediaRange{value: mt, q: q})
		}
	}

	sort.SliceStable(ranges, func(i, j int) bool { return ranges[i].q > ranges[j].q })
	return ranges
}

func (mr mediaRange) matches(mimeType string) bool {
	if mr.value == "*/*" || mr.value == mimeType {
		return true
	}

	if strings.HasSuffix(mr.value, "/*") {
		return strings.HasPrefix(mimeType, strings.TrimSuffix(mr.value, "*"))
	}
	return false
}

// negotiate picks the first format of candidates acceptable to the Accept
// header, ok is false when none is
func (f Formats) negotiate(accept string, candidates []string) (string, bool) {
	ranges := parseAccept(accept)
	if len(ranges) == 0 {
		if len(candidates) > 0 {
			return candidates[0], true
		}
		return "", true
	}

	for _, mr := range ranges {
		for _, format := range candidates {
			for _, m := range f[format] {
				if mr.matches(m) {
					return format, true
				}
			}
		}
	}

	return "", false
}
