package analyze

import (
	"fmt"
	"go/token"
	"go/types"
	"reflect"

	"content-loader/internal/common"
)

// TypeID names a Go type by import path and identifier.
type TypeID struct {
	PkgPath string
	Name    string
}

func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// TypeKind classifies a Go type by how it maps onto a content field.
type TypeKind int

const (
	TypeKindUnknown TypeKind = iota
	TypeKindScalar           // basic types and named types over them
	TypeKindStruct           // struct declared in a loaded package
	TypeKindPointer
	TypeKindSlice
	TypeKindArray
	TypeKindOpaque // struct declared elsewhere, such as time.Time
)

func (k TypeKind) String() string {
	switch k {
	case TypeKindScalar:
		return "scalar"
	case TypeKindStruct:
		return "struct"
	case TypeKindPointer:
		return "pointer"
	case TypeKindSlice:
		return "slice"
	case TypeKindArray:
		return "array"
	case TypeKindOpaque:
		return "opaque"
	default:
		return common.UnknownStr
	}
}

// TypeInfo is one node of the type graph. Unnamed types (pointers, slices,
// arrays) have a zero ID.
type TypeInfo struct {
	ID     TypeID
	Kind   TypeKind
	Elem   *TypeInfo // pointer, slice and array element
	Len    int64     // array length
	Fields []FieldInfo
	GoType types.Type
}

// IsNamed reports whether the type has a TypeID.
func (t *TypeInfo) IsNamed() bool {
	return t.ID.Name != ""
}

// Deref follows pointers down to the pointed-to type.
func (t *TypeInfo) Deref() *TypeInfo {
	for t != nil && t.Kind == TypeKindPointer {
		t = t.Elem
	}

	return t
}

// FieldInfo is a struct field that may carry a content tag. Unexported
// fields other than the blank identifier are not recorded.
type FieldInfo struct {
	Name string
	Type *TypeInfo
	Tag  reflect.StructTag
	Pos  token.Position
}

// IsBlank reports whether the field is the blank identifier.
func (f *FieldInfo) IsBlank() bool {
	return f.Name == "_"
}

// HasTag reports whether the field carries a tag with key.
func (f *FieldInfo) HasTag(key string) bool {
	_, ok := f.Tag.Lookup(key)
	return ok
}

// TypeGraph holds the named types of the loaded packages.
type TypeGraph struct {
	Types    map[TypeID]*TypeInfo
	Packages map[string]*PackageInfo
}

// NewTypeGraph returns an empty graph.
func NewTypeGraph() *TypeGraph {
	return &TypeGraph{
		Types:    make(map[TypeID]*TypeInfo),
		Packages: make(map[string]*PackageInfo),
	}
}

// GetType returns the type with id, or nil.
func (g *TypeGraph) GetType(id TypeID) *TypeInfo {
	return g.Types[id]
}

// Struct returns the struct type with id.
func (g *TypeGraph) Struct(id TypeID) (*TypeInfo, error) {
	info := g.GetType(id)
	if info == nil {
		return nil, fmt.Errorf("type %s not found", id)
	}

	if info.Kind != TypeKindStruct {
		return nil, fmt.Errorf("type %s is a %s, not a struct", id, info.Kind)
	}

	return info, nil
}

// PackageInfo lists the exported named types of one loaded package.
type PackageInfo struct {
	Path  string
	Name  string
	Types []TypeID // sorted by name
}
