// Package inflector turns names between the forms the framework derives keys,
// paths and type names from.
package inflector

import (
	"strings"
	"sync"
	"unicode"

	"github.com/jinzhu/inflection"
	"github.com/slimloans/hanami/utils"
)

// Inflector converts words honoring the acronyms configured for an app
type Inflector struct {
	mu       sync.RWMutex
	acronyms map[string]string
}

func New(acronyms ...string) *Inflector {
	i := &Inflector{acronyms: map[string]string{}}
	i.Acronym(acronyms...)
	return i
}

// Acronym registers words that keep their casing when camelized (API, HTML)
func (i *Inflector) Acronym(words ...string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	for _, w := range words {
		if w == "" {
			continue
		}
		i.acronyms[strings.ToLower(w)] = w
	}
}

// Irregular and Uncountable affect every inflector in the process, the
// underlying rule set is global.
func (*Inflector) Irregular(singular, plural string) { inflection.AddIrregular(singular, plural) }
func (*Inflector) Uncountable(words ...string)       { inflection.AddUncountable(words...) }

func (*Inflector) Pluralize(word string) string   { return inflection.Plural(word) }
func (*Inflector) Singularize(word string) string { return inflection.Singular(word) }

// Underscore converts "BookRepo" or "APIKey" into "book_repo" or "api_key"
func (i *Inflector) Underscore(word string) string {
	i.mu.RLock()
	for lower, acronym := range i.acronyms {
		if strings.Contains(word, acronym) && acronym != strings.ToLower(acronym) {
			word = strings.ReplaceAll(word, acronym, "_"+lower+"_")
		}
	}
	i.mu.RUnlock()

	word = utils.SnakeCase(strings.ReplaceAll(word, "-", "_"))

	parts := strings.FieldsFunc(word, func(r rune) bool { return r == '_' })
	return strings.Join(parts, "_")
}

// Camelize converts "book_repo" into "BookRepo"
func (i *Inflector) Camelize(word string) string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	var b strings.Builder
	for _, part := range strings.FieldsFunc(word, isSeparator) {
		if acronym, ok := i.acronyms[strings.ToLower(part)]; ok {
			b.WriteString(acronym)
			continue
		}
		b.WriteString(capitalize(part))
	}
	return b.String()
}

// Humanize converts "book_repo" into "Book repo"
func (i *Inflector) Humanize(word string) string {
	word = strings.TrimSuffix(i.Underscore(word), "_id")
	return capitalize(strings.ReplaceAll(word, "_", " "))
}

// Dasherize converts "book_repo" into "book-repo"
func (*Inflector) Dasherize(word string) string {
	return strings.ReplaceAll(word, "_", "-")
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' ' || r == '/'
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
