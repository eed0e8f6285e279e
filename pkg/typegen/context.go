package typegen

import (
	"fmt"
	"go/token"
	"slices"

	"github.com/agnivade/levenshtein"
	"github.com/go-logr/logr"
	"github.com/vektah/gqlparser/v2/ast"
)

const defaultPackage = "model"

// Config holds the static options of one generation run.
type Config struct {
	// Package is the Go package the declarations are rendered into.
	Package string `yaml:"package" json:"package"`
	// CustomScalars maps custom scalar names to Go types ("time.Time",
	// "github.com/google/uuid.UUID").
	CustomScalars map[string]string `yaml:"customScalars" json:"customScalars,omitempty"`
	// DefaultScalar is used for custom scalars missing from CustomScalars.
	DefaultScalar        string          `yaml:"defaultScalar" json:"defaultScalar,omitempty"`
	Naming               NamingPolicy    `yaml:"naming" json:"naming,omitempty"`
	CollisionPolicy      CollisionPolicy `yaml:"collisionPolicy" json:"collisionPolicy,omitempty"`
	MaxCollisionAttempts int             `yaml:"maxCollisionAttempts" json:"maxCollisionAttempts,omitempty"`
	// ReservedNames are Go names no declaration may take.
	ReservedNames    []string `yaml:"reservedNames" json:"reservedNames,omitempty"`
	IncludeRootTypes bool     `yaml:"includeRootTypes" json:"includeRootTypes,omitempty"`
}

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the logger used for generation traces.
func WithLogger(logger logr.Logger) Option {
	return func(c *Context) {
		c.logger = logger
	}
}

// Context is the state of a single generation run. It is not safe for
// concurrent use; independent runs each get their own Context.
type Context struct {
	schema   *ast.Schema
	cfg      Config
	scalars  *ScalarMapper
	registry *Registry
	logger   logr.Logger

	decls      map[string]*Declaration
	order      []string
	slots      map[string]struct{}
	roots      []string
	operations []*Operation
	fallbacks  map[string]struct{}
}

// NewContext validates cfg and returns a Context for generating bindings
// from schema.
func NewContext(schema *ast.Schema, cfg Config, opts ...Option) (*Context, error) {
	if schema == nil {
		return nil, newConfigError("schema", nil, "schema document is required")
	}
	if cfg.Package == "" {
		cfg.Package = defaultPackage
	}
	if !token.IsIdentifier(cfg.Package) || token.IsKeyword(cfg.Package) {
		return nil, newConfigError("package", cfg.Package, "not a valid Go package name")
	}
	switch cfg.Naming {
	case "":
		cfg.Naming = NamingPreserve
	case NamingPreserve, NamingCamel:
	default:
		return nil, newConfigError("naming", cfg.Naming, "expected %q or %q", NamingPreserve, NamingCamel)
	}
	switch cfg.CollisionPolicy {
	case "":
		cfg.CollisionPolicy = CollisionSuffix
	case CollisionSuffix, CollisionFail:
	default:
		return nil, newConfigError("collisionPolicy", cfg.CollisionPolicy, "expected %q or %q", CollisionSuffix, CollisionFail)
	}
	switch {
	case cfg.MaxCollisionAttempts == 0:
		cfg.MaxCollisionAttempts = defaultMaxCollisionAttempts
	case cfg.MaxCollisionAttempts < 0:
		return nil, newConfigError("maxCollisionAttempts", cfg.MaxCollisionAttempts, "must be at least 1")
	}

	scalars, err := NewScalarMapper(cfg.CustomScalars, cfg.DefaultScalar)
	if err != nil {
		return nil, err
	}

	registry := NewRegistry(cfg.Naming, cfg.CollisionPolicy, cfg.MaxCollisionAttempts)
	for _, name := range cfg.ReservedNames {
		if !token.IsIdentifier(name) {
			return nil, newConfigError("reservedNames", name, "not a Go identifier")
		}
		if err := registry.Reserve(name); err != nil {
			return nil, err
		}
	}

	c := &Context{
		schema:    schema,
		cfg:       cfg,
		scalars:   scalars,
		registry:  registry,
		logger:    logr.Discard(),
		decls:     make(map[string]*Declaration),
		slots:     make(map[string]struct{}),
		fallbacks: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	for name := range cfg.CustomScalars {
		if def := schema.Types[name]; def == nil || def.Kind != ast.Scalar {
			c.logger.V(1).Info("custom scalar mapping has no matching scalar in schema", "scalar", name)
		}
	}
	return c, nil
}

// Schema returns the schema document being translated.
func (c *Context) Schema() *ast.Schema { return c.schema }

// Config returns the validated configuration with defaults applied.
func (c *Context) Config() Config { return c.cfg }

// Registry returns the run's name registry.
func (c *Context) Registry() *Registry { return c.registry }

// AddDeclaration stores decl under its key. It is a no-op returning false if
// a declaration for that key already exists.
func (c *Context) AddDeclaration(decl *Declaration) bool {
	if _, ok := c.decls[decl.Key]; ok {
		return false
	}
	c.decls[decl.Key] = decl
	c.reserveSlot(decl.Key)
	c.logger.V(1).Info("generated declaration", "kind", decl.Kind, "name", decl.Name, "key", decl.Key)
	return true
}

// Declaration returns the declaration generated for a schema name or
// selection key.
func (c *Context) Declaration(key string) (*Declaration, bool) {
	d, ok := c.decls[key]
	return d, ok
}

// Declarations returns every completed declaration in the order their names
// were assigned.
func (c *Context) Declarations() []*Declaration {
	decls := make([]*Declaration, 0, len(c.decls))
	for _, key := range c.order {
		if d, ok := c.decls[key]; ok {
			decls = append(decls, d)
		}
	}
	return decls
}

// Roots returns the Go names of the types explicitly requested.
func (c *Context) Roots() []string {
	return append([]string(nil), c.roots...)
}

// Result packages the declaration tree for a renderer.
func (c *Context) Result() *Result {
	return &Result{
		Package:      c.cfg.Package,
		Declarations: c.Declarations(),
		Roots:        c.Roots(),
		Operations:   append([]*Operation(nil), c.operations...),
	}
}

// Result is the output of one generation run.
type Result struct {
	Package      string         `json:"package" yaml:"package"`
	Declarations []*Declaration `json:"declarations" yaml:"declarations"`
	Roots        []string       `json:"roots,omitempty" yaml:"roots,omitempty"`
	Operations   []*Operation   `json:"operations,omitempty" yaml:"operations,omitempty"`
}

// Lookup finds a declaration by its Go name.
func (r *Result) Lookup(goName string) *Declaration {
	for _, d := range r.Declarations {
		if d.Name == goName {
			return d
		}
	}
	return nil
}

func (c *Context) reserveSlot(key string) {
	if _, ok := c.slots[key]; ok {
		return
	}
	c.slots[key] = struct{}{}
	c.order = append(c.order, key)
}

func (c *Context) assign(key string) (string, error) {
	name, err := c.registry.Assign(key)
	if err != nil {
		return "", err
	}
	c.reserveSlot(key)
	return name, nil
}

func (c *Context) assignCandidate(key, candidate string) (string, error) {
	name, err := c.registry.AssignCandidate(key, candidate)
	if err != nil {
		return "", err
	}
	c.reserveSlot(key)
	return name, nil
}

func (c *Context) addRoot(name string) {
	for _, r := range c.roots {
		if r == name {
			return
		}
	}
	c.roots = append(c.roots, name)
}

func (c *Context) mapScalar(name string) GoType {
	t, ok := c.scalars.Map(name)
	if !ok {
		if _, seen := c.fallbacks[name]; !seen {
			c.fallbacks[name] = struct{}{}
			c.logger.V(1).Info("custom scalar has no mapping, using default", "scalar", name, "goType", t.String())
		}
	}
	return t
}

const maxSuggestionDistance = 5

func (c *Context) unresolved(typeName, parent, field string, pos *ast.Position) *UnresolvedTypeError {
	err := &UnresolvedTypeError{TypeName: typeName, Parent: parent, Field: field, Position: pos}
	minDist := -1
	for name := range c.schema.Types {
		dist := levenshtein.ComputeDistance(typeName, name)
		if minDist == -1 || dist < minDist || dist == minDist && name < err.Suggestion {
			minDist = dist
			err.Suggestion = name
		}
	}
	if minDist > maxSuggestionDistance {
		err.Suggestion = ""
	}
	return err
}

// claimMarkers renames struct members that would clash with the Is<Abstract>
// marker methods rendered on the variants of interfaces and unions.
func (c *Context) claimMarkers() error {
	byName := make(map[string]*Declaration, len(c.decls))
	markers := make(map[string][]string)
	for _, key := range c.order {
		d, ok := c.decls[key]
		if !ok {
			continue
		}
		byName[d.Name] = d
		if d.Kind == KindInterface || d.Kind == KindUnion {
			for _, v := range d.Variants {
				markers[v] = append(markers[v], "Is"+d.Name)
			}
		}
	}
	for variant, methods := range markers {
		d := byName[variant]
		if d == nil || d.Kind != KindObject && d.Kind != KindInputObject {
			continue
		}
		if err := c.renameClashingMembers(d, methods); err != nil {
			return err
		}
	}
	return nil
}

func (c *Context) renameClashingMembers(d *Declaration, methods []string) error {
	names := NewRegistry(NamingPreserve, c.cfg.CollisionPolicy, c.cfg.MaxCollisionAttempts)
	for _, m := range methods {
		if err := names.Reserve(m); err != nil {
			return err
		}
	}
	var clashing []*Member
	for _, m := range d.Members {
		if slices.Contains(methods, m.Name) {
			clashing = append(clashing, m)
			continue
		}
		if err := names.Reserve(m.Name); err != nil {
			return err
		}
	}
	for _, m := range clashing {
		name, err := names.AssignCandidate(m.SchemaName, m.Name)
		if err != nil {
			return fmt.Errorf("field %s.%s: %w", d.SchemaName, m.SchemaName, err)
		}
		m.Name = name
	}
	return nil
}
