package models

import (
	"fmt"
	"strconv"
)

// Kind is the JSON type of a value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the lowercase JSON type name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// IsContainer reports whether values of this kind hold children.
func (k Kind) IsContainer() bool {
	return k == KindArray || k == KindObject
}

// Value is a parsed JSON document node.
// Literal holds the source text for numbers, booleans and null.
// Str holds the decoded contents of a string.
type Value struct {
	Kind    Kind
	Literal string
	Str     string
	Items   []*Value
	Members []Member
}

// Member is one key/value pair of a JSON object, in source order.
type Member struct {
	Key   string
	Value *Value
}

// Len returns the number of elements or members, 0 for primitives.
func (v *Value) Len() int {
	switch v.Kind {
	case KindArray:
		return len(v.Items)
	case KindObject:
		return len(v.Members)
	default:
		return 0
	}
}

// Summary renders the value the way the tree view shows it:
// primitives as their literal, strings quoted without re-escaping,
// containers as a type/count badge.
func (v *Value) Summary() string {
	switch v.Kind {
	case KindString:
		return `"` + v.Str + `"`
	case KindArray:
		return fmt.Sprintf("Array(%d)", len(v.Items))
	case KindObject:
		return fmt.Sprintf("Object{%d}", len(v.Members))
	default:
		return v.Literal
	}
}

// Entries returns the children of a container as key/value pairs.
// Array elements are keyed by their decimal index.
func (v *Value) Entries() []Member {
	switch v.Kind {
	case KindObject:
		return v.Members
	case KindArray:
		entries := make([]Member, len(v.Items))
		for i, item := range v.Items {
			entries[i] = Member{Key: strconv.Itoa(i), Value: item}
		}
		return entries
	default:
		return nil
	}
}

// Document is a parsed JSON input together with the raw text it came from.
type Document struct {
	Root *Value
	Raw  string
}

// RootIsContainer reports whether the document root is an array or object.
func (d Document) RootIsContainer() bool {
	return d.Root != nil && d.Root.Kind.IsContainer()
}
