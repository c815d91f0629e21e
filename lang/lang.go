// Package lang holds the UI string tables of the terminal.
package lang

import (
	"fmt"
	"strings"
)

const (
	En      = "en"
	Te      = "te"
	Default = En
)

// Supported lists the locales in switcher order.
var Supported = []string{En, Te}

// Normalize maps an arbitrary locale code to a supported one.
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if _, ok := tables[code]; ok {
		return code
	}
	return Default
}

// Valid reports whether code names a supported locale exactly.
func Valid(code string) bool {
	_, ok := tables[code]
	return ok
}

// T returns the string for key in the given locale, falling back to English
// and finally to the bare key. Args are applied with fmt.Sprintf to found
// strings only.
func T(code, key string, args ...interface{}) string {
	s, ok := tables[Normalize(code)][key]
	if !ok {
		s, ok = tables[Default][key]
	}
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(s, args...)
	}
	return s
}

// Table returns a copy of the locale's table merged over English, for
// front-ends that translate on their side.
func Table(code string) map[string]string {
	out := make(map[string]string, len(tables[Default]))
	for k, v := range tables[Default] {
		out[k] = v
	}
	for k, v := range tables[Normalize(code)] {
		out[k] = v
	}
	return out
}

// CategoryLabel is the localized display name of a menu category.
func CategoryLabel(code, category string) string {
	key := "category." + category
	if s := T(code, key); s != key {
		return s
	}
	return category
}

var tables = map[string]map[string]string{
	En: en,
	Te: te,
}
