package typegen

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind is the kind of a generated Go declaration.
type Kind string

const (
	KindObject      Kind = "object"
	KindInputObject Kind = "input"
	KindEnum        Kind = "enum"
	KindInterface   Kind = "interface"
	KindUnion       Kind = "union"
)

// Declaration is one generated Go type. Key is the schema type name for
// schema-scoped declarations and the selection path for operation-scoped
// ones.
type Declaration struct {
	Key         string       `json:"key" yaml:"key"`
	SchemaName  string       `json:"schemaName" yaml:"schemaName"`
	Name        string       `json:"name" yaml:"name"`
	Kind        Kind         `json:"kind" yaml:"kind"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Members     []*Member    `json:"members,omitempty" yaml:"members,omitempty"`
	Values      []*EnumValue `json:"values,omitempty" yaml:"values,omitempty"`
	// Variants are the Go names of the concrete types of an interface or
	// union.
	Variants []string `json:"variants,omitempty" yaml:"variants,omitempty"`
	// Implements lists the Go names of the interfaces an object implements.
	Implements []string `json:"implements,omitempty" yaml:"implements,omitempty"`
	// ValuesVar names the package variable listing every value of an enum.
	ValuesVar string `json:"valuesVar,omitempty" yaml:"valuesVar,omitempty"`
}

// Member is a struct field or interface field.
type Member struct {
	Name        string   `json:"name" yaml:"name"`
	SchemaName  string   `json:"schemaName" yaml:"schemaName"`
	Type        *TypeRef `json:"type" yaml:"type"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Deprecated  bool     `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	Reason      string   `json:"deprecationReason,omitempty" yaml:"deprecationReason,omitempty"`
}

// EnumValue is one enumerant.
type EnumValue struct {
	Name        string `json:"name" yaml:"name"`
	SchemaName  string `json:"schemaName" yaml:"schemaName"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Deprecated  bool   `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	Reason      string `json:"deprecationReason,omitempty" yaml:"deprecationReason,omitempty"`
}

// Member returns the member with the given schema field name.
func (d *Declaration) Member(schemaName string) *Member {
	for _, m := range d.Members {
		if m.SchemaName == schemaName {
			return m
		}
	}
	return nil
}

const defaultDeprecationReason = "No longer supported"

// Generate produces the declaration for def. Scalars have no declaration and
// yield nil. Calling Generate for a type that was already generated returns
// the existing declaration.
func Generate(ctx *Context, def *ast.Definition) (*Declaration, error) {
	if d, ok := ctx.decls[def.Name]; ok {
		return d, nil
	}
	if ctx.registry.IsAssigned(def.Name) {
		return nil, fmt.Errorf("gqlbind: declaration for '%s' is still being generated", def.Name)
	}

	var (
		decl *Declaration
		err  error
	)
	switch def.Kind {
	case ast.Scalar:
		return nil, nil
	case ast.Object, ast.InputObject:
		decl, err = ctx.generateRecord(def)
	case ast.Enum:
		decl, err = ctx.generateEnum(def)
	case ast.Interface:
		decl, err = ctx.generateInterface(def)
	case ast.Union:
		decl, err = ctx.generateUnion(def)
	default:
		return nil, fmt.Errorf("gqlbind: type '%s' has unsupported kind %s", def.Name, def.Kind)
	}
	if err != nil {
		return nil, err
	}
	ctx.AddDeclaration(decl)
	return decl, nil
}

// GenerateType generates the named type and everything reachable from it,
// recording it as a root of the run.
func GenerateType(ctx *Context, name string) (*Declaration, error) {
	def := ctx.schema.Types[name]
	if def == nil {
		return nil, ctx.unresolved(name, "", "", nil)
	}
	decl, err := Generate(ctx, def)
	if err == nil {
		err = ctx.claimMarkers()
	}
	if err != nil {
		return nil, fmt.Errorf("generating %s: %w", name, err)
	}
	if decl != nil {
		ctx.addRoot(decl.Name)
	}
	return decl, nil
}

// GenerateSchema generates every user-defined named type of the schema in
// name order. Root operation types are skipped unless IncludeRootTypes is
// set.
func GenerateSchema(ctx *Context) (*Result, error) {
	names := make([]string, 0, len(ctx.schema.Types))
	for name, def := range ctx.schema.Types {
		if def.BuiltIn || strings.HasPrefix(name, "__") || def.Kind == ast.Scalar {
			continue
		}
		if !ctx.cfg.IncludeRootTypes && ctx.isRootType(def) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, err := GenerateType(ctx, name); err != nil {
			return nil, err
		}
	}
	ctx.logger.Info("generated schema bindings", "declarations", len(ctx.decls), "roots", len(ctx.roots))
	return ctx.Result(), nil
}

func (c *Context) isRootType(def *ast.Definition) bool {
	return def == c.schema.Query || def == c.schema.Mutation || def == c.schema.Subscription
}

// ensure returns the Go name of a non-scalar type, generating it when no name
// has been assigned yet. A type whose name is assigned but whose declaration
// is still in progress (a cycle) resolves to the assigned name.
func (c *Context) ensure(def *ast.Definition) (string, error) {
	if name, ok := c.registry.Lookup(def.Name); ok {
		return name, nil
	}
	decl, err := Generate(c, def)
	if err != nil {
		return "", err
	}
	if decl == nil {
		return "", fmt.Errorf("gqlbind: scalar '%s' cannot be used as a composite type", def.Name)
	}
	return decl.Name, nil
}

func (c *Context) lookupDefinition(name, parent, field string, pos *ast.Position) (*ast.Definition, error) {
	def := c.schema.Types[name]
	if def == nil {
		return nil, c.unresolved(name, parent, field, pos)
	}
	return def, nil
}

func (c *Context) generateRecord(def *ast.Definition) (*Declaration, error) {
	name, err := c.assign(def.Name)
	if err != nil {
		return nil, err
	}
	kind := KindObject
	if def.Kind == ast.InputObject {
		kind = KindInputObject
	}
	decl := &Declaration{Key: def.Name, SchemaName: def.Name, Name: name, Kind: kind, Description: def.Description}

	for _, iface := range def.Interfaces {
		idef, err := c.lookupDefinition(iface, def.Name, "", def.Position)
		if err != nil {
			return nil, err
		}
		iname, err := c.ensure(idef)
		if err != nil {
			return nil, err
		}
		decl.Implements = append(decl.Implements, iname)
	}

	decl.Members, err = c.members(def)
	if err != nil {
		return nil, err
	}
	return decl, nil
}

func (c *Context) members(def *ast.Definition) ([]*Member, error) {
	names := NewRegistry(NamingCamel, c.cfg.CollisionPolicy, c.cfg.MaxCollisionAttempts)
	members := make([]*Member, 0, len(def.Fields))
	for _, f := range def.Fields {
		if strings.HasPrefix(f.Name, "__") {
			continue
		}
		ref, err := c.resolve(f.Type, def.Name, f.Name)
		if err != nil {
			return nil, err
		}
		goName, err := names.Assign(f.Name)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", def.Name, f.Name, err)
		}
		m := &Member{Name: goName, SchemaName: f.Name, Type: ref, Description: f.Description}
		m.Deprecated, m.Reason = deprecation(f.Directives)
		members = append(members, m)
	}
	return members, nil
}

func deprecation(directives ast.DirectiveList) (bool, string) {
	d := directives.ForName("deprecated")
	if d == nil {
		return false, ""
	}
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return true, arg.Value.Raw
	}
	return true, defaultDeprecationReason
}

// enumConstant builds the Go constant name for an enum value: Status +
// IN_PROGRESS -> StatusInProgress.
func enumConstant(typeName, value string) string {
	words := strings.FieldsFunc(value, func(r rune) bool { return r == '_' || r == '-' })
	caser := cases.Title(language.Und)
	var b strings.Builder
	b.WriteString(typeName)
	for _, w := range words {
		b.WriteString(caser.String(w))
	}
	return b.String()
}

func (c *Context) generateEnum(def *ast.Definition) (*Declaration, error) {
	name, err := c.assign(def.Name)
	if err != nil {
		return nil, err
	}
	decl := &Declaration{Key: def.Name, SchemaName: def.Name, Name: name, Kind: KindEnum, Description: def.Description}
	for _, v := range def.EnumValues {
		// Constants share the package namespace with type names.
		constName, err := c.registry.AssignCandidate(def.Name+"."+v.Name, enumConstant(name, v.Name))
		if err != nil {
			return nil, err
		}
		ev := &EnumValue{Name: constName, SchemaName: v.Name, Description: v.Description}
		ev.Deprecated, ev.Reason = deprecation(v.Directives)
		decl.Values = append(decl.Values, ev)
	}
	decl.ValuesVar, err = c.registry.AssignCandidate(def.Name+"$all", "All"+name)
	if err != nil {
		return nil, err
	}
	return decl, nil
}

func (c *Context) generateInterface(def *ast.Definition) (*Declaration, error) {
	name, err := c.assign(def.Name)
	if err != nil {
		return nil, err
	}
	decl := &Declaration{Key: def.Name, SchemaName: def.Name, Name: name, Kind: KindInterface, Description: def.Description}

	decl.Members, err = c.members(def)
	if err != nil {
		return nil, err
	}

	var implementers []*ast.Definition
	for _, t := range c.schema.Types {
		if t.Kind == ast.Object && slices.Contains(t.Interfaces, def.Name) {
			implementers = append(implementers, t)
		}
	}
	sort.Slice(implementers, func(i, j int) bool { return implementers[i].Name < implementers[j].Name })

	for _, impl := range implementers {
		vname, err := c.ensure(impl)
		if err != nil {
			return nil, err
		}
		decl.Variants = append(decl.Variants, vname)
	}
	return decl, nil
}

func (c *Context) generateUnion(def *ast.Definition) (*Declaration, error) {
	name, err := c.assign(def.Name)
	if err != nil {
		return nil, err
	}
	decl := &Declaration{Key: def.Name, SchemaName: def.Name, Name: name, Kind: KindUnion, Description: def.Description}
	for _, member := range def.Types {
		mdef, err := c.lookupDefinition(member, def.Name, "", def.Position)
		if err != nil {
			return nil, err
		}
		vname, err := c.ensure(mdef)
		if err != nil {
			return nil, err
		}
		decl.Variants = append(decl.Variants, vname)
	}
	return decl, nil
}
