package canonjson

import (
	"slices"
	"unicode/utf16"
)

// Value is a sealed interface over the value types canonical JSON allows.
// There is no float and no null.
type Value interface {
	value()
}

// String is a JSON string.
type String string

func (String) value() {}

// Int is a JSON integer.
type Int int64

func (Int) value() {}

// Bool is a JSON boolean.
type Bool bool

func (Bool) value() {}

// Array is a JSON array.
type Array []Value

func (Array) value() {}

// Object is a JSON object. Use SortedKeys for deterministic iteration.
type Object map[string]Value

func (Object) value() {}

// Strings builds an Array of Strings.
func Strings(ss ...string) Array {
	arr := make(Array, len(ss))
	for i, s := range ss {
		arr[i] = String(s)
	}
	return arr
}

// StringMap builds an Object whose values are all Strings.
func StringMap(m map[string]string) Object {
	obj := make(Object, len(m))
	for k, v := range m {
		obj[k] = String(v)
	}
	return obj
}

// SortedKeys returns keys in canonical order (UTF-16 code units).
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeys)
	return keys
}

// compareKeys orders strings by UTF-16 code units, which differs from the
// byte order of their UTF-8 encoding outside the BMP.
func compareKeys(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}
