// Package analyze discovers content type schemas from annotated Go structs.
//
// Packages are loaded with golang.org/x/tools/go/packages into a TypeGraph
// of their exported types. Every struct carrying `content` tags becomes a
// schema.TypeSchema: slices are unlimited fields, arrays bound the
// cardinality, and fields of other content structs are references.
//
// Tag format:
//
//	content:"<name>[,key=<source>][,card=<n>|unlimited][,unique][,kind=<kind>]"
//
// A blank field `_ struct{}` carries type-level options: its tag name is the
// type name, `label=<text>` sets the label and `component` marks the type as
// non-reusable.
package analyze
