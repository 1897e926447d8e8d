package analyze

import (
	"errors"
	"fmt"
	"go/token"
	"go/types"
	"reflect"

	"golang.org/x/tools/go/packages"
)

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// Analyzer loads Go packages into a TypeGraph.
type Analyzer struct {
	dir   string
	graph *TypeGraph
	fset  *token.FileSet
	seen  map[types.Type]*TypeInfo // recursive types resolve to the same node
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithDir sets the directory package patterns are resolved in. The default
// is the current directory.
func WithDir(dir string) Option {
	return func(a *Analyzer) { a.dir = dir }
}

// NewAnalyzer returns an analyzer with an empty graph.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		graph: NewTypeGraph(),
		seen:  make(map[types.Type]*TypeInfo),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// LoadPackages loads the packages matching patterns, such as
// "./examples/blog", and adds their exported types to the graph.
func (a *Analyzer) LoadPackages(patterns ...string) (*TypeGraph, error) {
	a.fset = token.NewFileSet()

	pkgs, err := packages.Load(&packages.Config{Mode: loadMode, Dir: a.dir, Fset: a.fset}, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}

	var errs []error

	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	})

	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %w", errors.Join(errs...))
	}

	// Every package is registered before any type is classified as opaque.
	for _, pkg := range pkgs {
		a.graph.Packages[pkg.PkgPath] = &PackageInfo{Path: pkg.PkgPath, Name: pkg.Name}
	}

	for _, pkg := range pkgs {
		a.addPackage(pkg)
	}

	return a.graph, nil
}

func (a *Analyzer) addPackage(pkg *packages.Package) {
	info := a.graph.Packages[pkg.PkgPath]
	scope := pkg.Types.Scope()

	for _, name := range scope.Names() {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || !tn.Exported() || tn.IsAlias() {
			continue
		}

		t := a.typeOf(tn.Type())

		a.graph.Types[t.ID] = t
		info.Types = append(info.Types, t.ID)
	}
}

func (a *Analyzer) typeOf(t types.Type) *TypeInfo {
	if cached, ok := a.seen[t]; ok {
		return cached
	}

	info := &TypeInfo{GoType: t}
	a.seen[t] = info

	switch tt := t.(type) {
	case *types.Named:
		a.named(tt, info)
	case *types.Basic:
		info.Kind = TypeKindScalar
	case *types.Pointer:
		info.Kind = TypeKindPointer
		info.Elem = a.typeOf(tt.Elem())
	case *types.Slice:
		info.Kind = TypeKindSlice
		info.Elem = a.typeOf(tt.Elem())
	case *types.Array:
		info.Kind = TypeKindArray
		info.Len = tt.Len()
		info.Elem = a.typeOf(tt.Elem())
	case *types.Struct:
		info.Kind = TypeKindStruct
		a.fields(tt, info)
	default:
		info.Kind = TypeKindUnknown
	}

	return info
}

func (a *Analyzer) named(named *types.Named, info *TypeInfo) {
	obj := named.Obj()

	info.ID = TypeID{Name: obj.Name()}
	if obj.Pkg() != nil {
		info.ID.PkgPath = obj.Pkg().Path()
	}

	switch ut := named.Underlying().(type) {
	case *types.Basic:
		info.Kind = TypeKindScalar
	case *types.Struct:
		if _, local := a.graph.Packages[info.ID.PkgPath]; !local {
			info.Kind = TypeKindOpaque
			return
		}

		info.Kind = TypeKindStruct
		a.fields(ut, info)
	default:
		// Named slices and maps classify like their underlying type.
		u := a.typeOf(ut)
		info.Kind, info.Elem, info.Len = u.Kind, u.Elem, u.Len
	}
}

// fields records the exported fields of st and its blank fields, which
// carry type-level tags.
func (a *Analyzer) fields(st *types.Struct, info *TypeInfo) {
	for i := range st.NumFields() {
		field := st.Field(i)
		if !field.Exported() && field.Name() != "_" {
			continue
		}

		info.Fields = append(info.Fields, FieldInfo{
			Name: field.Name(),
			Type: a.typeOf(field.Type()),
			Tag:  reflect.StructTag(st.Tag(i)),
			Pos:  a.fset.Position(field.Pos()),
		})
	}
}
