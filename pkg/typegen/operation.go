package typegen

import (
	"fmt"
	"slices"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

// Operation describes the bindings generated for one named operation.
type Operation struct {
	Name      string        `json:"name" yaml:"name"`
	Type      ast.Operation `json:"type" yaml:"type"`
	Data      string        `json:"data" yaml:"data"`
	Variables string        `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// GenerateDocument generates bindings for every operation of doc in document
// order. doc must already be validated against the context's schema.
func GenerateDocument(ctx *Context, doc *ast.QueryDocument) ([]*Operation, error) {
	ops := make([]*Operation, 0, len(doc.Operations))
	for _, op := range doc.Operations {
		o, err := GenerateOperation(ctx, doc, op)
		if err != nil {
			return nil, err
		}
		ops = append(ops, o)
	}
	ctx.logger.Info("generated operation bindings", "operations", len(ops), "declarations", len(ctx.decls))
	return ops, nil
}

// GenerateOperation generates a record for the variables of op (when it has
// any) and a record tree mirroring its selection set.
func GenerateOperation(ctx *Context, doc *ast.QueryDocument, op *ast.OperationDefinition) (*Operation, error) {
	if op.Name == "" {
		return nil, &OperationError{Message: "anonymous operations cannot be bound, give the operation a name", Position: op.Position}
	}
	root := ctx.rootFor(op.Operation)
	if root == nil {
		return nil, &OperationError{Operation: op.Name, Message: fmt.Sprintf("schema has no %s root type", op.Operation), Position: op.Position}
	}

	key := string(op.Operation) + " " + op.Name
	if _, ok := ctx.decls[key]; ok {
		return nil, &OperationError{Operation: op.Name, Message: "an operation with this name was already generated", Position: op.Position}
	}

	s := &selectionScope{ctx: ctx, doc: doc, op: op}
	out := &Operation{Name: op.Name, Type: op.Operation}

	if len(op.VariableDefinitions) > 0 {
		vars, err := s.variables(key)
		if err != nil {
			return nil, err
		}
		out.Variables = vars.Name
	}

	base := ctx.cfg.Naming.Identifier(op.Name)
	data, err := s.record(key, base+operationSuffix(op.Operation), root, op.SelectionSet, nil)
	if err != nil {
		return nil, err
	}
	if err := ctx.claimMarkers(); err != nil {
		return nil, err
	}
	out.Data = data.Name
	ctx.addRoot(data.Name)
	ctx.operations = append(ctx.operations, out)
	return out, nil
}

func operationSuffix(op ast.Operation) string {
	switch op {
	case ast.Mutation:
		return "Mutation"
	case ast.Subscription:
		return "Subscription"
	default:
		return "Query"
	}
}

func (c *Context) rootFor(op ast.Operation) *ast.Definition {
	switch op {
	case ast.Query:
		return c.schema.Query
	case ast.Mutation:
		return c.schema.Mutation
	case ast.Subscription:
		return c.schema.Subscription
	}
	return nil
}

type selectionScope struct {
	ctx *Context
	doc *ast.QueryDocument
	op  *ast.OperationDefinition
}

func (s *selectionScope) variables(opKey string) (*Declaration, error) {
	c := s.ctx
	name, err := c.assignCandidate(opKey+"$variables", c.cfg.Naming.Identifier(s.op.Name)+"Variables")
	if err != nil {
		return nil, err
	}
	decl := &Declaration{Key: opKey + "$variables", SchemaName: s.op.Name, Name: name, Kind: KindInputObject}
	names := NewRegistry(NamingCamel, c.cfg.CollisionPolicy, c.cfg.MaxCollisionAttempts)
	for _, v := range s.op.VariableDefinitions {
		ref, err := c.resolve(v.Type, s.op.Name, "$"+v.Variable)
		if err != nil {
			return nil, err
		}
		goName, err := names.Assign(v.Variable)
		if err != nil {
			return nil, err
		}
		decl.Members = append(decl.Members, &Member{Name: goName, SchemaName: v.Variable, Type: ref})
	}
	c.AddDeclaration(decl)
	return decl, nil
}

// fieldGroup is every selection of one response key within a selection set;
// their sub-selections are merged.
type fieldGroup struct {
	key   string
	field *ast.Field
	sets  ast.SelectionSet
}

type collected struct {
	fields     []*fieldGroup
	byKey      map[string]*fieldGroup
	conditions []string
	condSets   map[string]ast.SelectionSet
}

func (s *selectionScope) collect(parent *ast.Definition, set ast.SelectionSet, into *collected, seen map[string]bool) error {
	for _, sel := range set {
		switch sel := sel.(type) {
		case *ast.Field:
			key := sel.Alias
			if key == "" {
				key = sel.Name
			}
			if g, ok := into.byKey[key]; ok {
				g.sets = append(g.sets, sel.SelectionSet...)
				continue
			}
			g := &fieldGroup{key: key, field: sel, sets: append(ast.SelectionSet(nil), sel.SelectionSet...)}
			into.byKey[key] = g
			into.fields = append(into.fields, g)
		case *ast.InlineFragment:
			if err := s.fragment(parent, sel.TypeCondition, sel.SelectionSet, into, seen); err != nil {
				return err
			}
		case *ast.FragmentSpread:
			frag := sel.Definition
			if frag == nil {
				frag = s.doc.Fragments.ForName(sel.Name)
			}
			if frag == nil {
				return &OperationError{Operation: s.op.Name, Message: fmt.Sprintf("fragment '%s' is not defined", sel.Name), Position: sel.Position}
			}
			if seen[frag.Name] {
				continue
			}
			seen[frag.Name] = true
			err := s.fragment(parent, frag.TypeCondition, frag.SelectionSet, into, seen)
			delete(seen, frag.Name)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *selectionScope) fragment(parent *ast.Definition, cond string, set ast.SelectionSet, into *collected, seen map[string]bool) error {
	if s.ctx.appliesTo(parent, cond) {
		return s.collect(parent, set, into, seen)
	}
	if _, ok := into.condSets[cond]; !ok {
		into.conditions = append(into.conditions, cond)
	}
	into.condSets[cond] = append(into.condSets[cond], set...)
	return nil
}

// appliesTo reports whether a fragment on cond always applies to values of
// parent, in which case its selections are flattened into parent's record.
func (c *Context) appliesTo(parent *ast.Definition, cond string) bool {
	if cond == "" || cond == parent.Name {
		return true
	}
	if parent.Kind != ast.Object {
		return false
	}
	if slices.Contains(parent.Interfaces, cond) {
		return true
	}
	u := c.schema.Types[cond]
	return u != nil && u.Kind == ast.Union && slices.Contains(u.Types, parent.Name)
}

// record generates the declaration for a selection set on parent. Selections
// under type conditions that do not always apply turn the record into an
// interface whose variants are one record per condition.
func (s *selectionScope) record(key, candidate string, parent *ast.Definition, set ast.SelectionSet, implements []string) (*Declaration, error) {
	c := s.ctx
	into := &collected{byKey: map[string]*fieldGroup{}, condSets: map[string]ast.SelectionSet{}}
	if err := s.collect(parent, set, into, map[string]bool{}); err != nil {
		return nil, err
	}

	name, err := c.assignCandidate(key, candidate)
	if err != nil {
		return nil, err
	}
	decl := &Declaration{Key: key, SchemaName: parent.Name, Name: name, Kind: KindObject, Description: parent.Description, Implements: implements}

	decl.Members, err = s.members(key, name, parent, into.fields)
	if err != nil {
		return nil, err
	}

	if len(into.conditions) > 0 {
		decl.Kind = KindInterface
		common := make(ast.SelectionSet, 0, len(into.fields))
		for _, g := range into.fields {
			// Carry the merged sub-selections of repeated response keys.
			merged := *g.field
			merged.SelectionSet = g.sets
			common = append(common, &merged)
		}
		for _, cond := range into.conditions {
			cdef, err := c.lookupDefinition(cond, parent.Name, "", s.op.Position)
			if err != nil {
				return nil, err
			}
			vset := append(append(ast.SelectionSet(nil), common...), into.condSets[cond]...)
			variant, err := s.record(key+"|"+cond, name+c.cfg.Naming.Identifier(cond), cdef, vset, []string{name})
			if err != nil {
				return nil, err
			}
			decl.Variants = append(decl.Variants, variant.Name)
		}
	}

	c.AddDeclaration(decl)
	return decl, nil
}

func (s *selectionScope) members(key, declName string, parent *ast.Definition, fields []*fieldGroup) ([]*Member, error) {
	c := s.ctx
	names := NewRegistry(NamingCamel, c.cfg.CollisionPolicy, c.cfg.MaxCollisionAttempts)
	members := make([]*Member, 0, len(fields))
	for _, g := range fields {
		goName, err := names.Assign(g.key)
		if err != nil {
			return nil, err
		}

		if g.field.Name == "__typename" {
			members = append(members, &Member{
				Name:       goName,
				SchemaName: g.key,
				Type:       &TypeRef{Named: "String", Kind: ast.Scalar, GoType: c.mapScalar("String")},
			})
			continue
		}

		fdef := g.field.Definition
		if fdef == nil {
			fdef = parent.Fields.ForName(g.field.Name)
		}
		if fdef == nil {
			return nil, &OperationError{
				Operation: s.op.Name,
				Path:      strings.TrimPrefix(key+"."+g.key, string(s.op.Operation)+" "),
				Message:   fmt.Sprintf("type '%s' has no field '%s'", parent.Name, g.field.Name),
				Position:  g.field.Position,
			}
		}

		m := &Member{Name: goName, SchemaName: g.key, Description: fdef.Description}
		m.Deprecated, m.Reason = deprecation(fdef.Directives)

		base, err := c.lookupDefinition(fdef.Type.Name(), parent.Name, fdef.Name, fdef.Type.Position)
		if err != nil {
			return nil, err
		}
		switch base.Kind {
		case ast.Scalar, ast.Enum:
			m.Type, err = c.resolve(fdef.Type, parent.Name, fdef.Name)
		default:
			if len(g.sets) == 0 {
				return nil, &OperationError{
					Operation: s.op.Name,
					Path:      strings.TrimPrefix(key+"."+g.key, string(s.op.Operation)+" "),
					Message:   fmt.Sprintf("field of composite type '%s' needs a selection set", base.Name),
					Position:  g.field.Position,
				}
			}
			var child *Declaration
			child, err = s.record(key+"."+g.key, declName+NamingCamel.Identifier(g.key), base, g.sets, nil)
			if err != nil {
				return nil, err
			}
			kind := ast.Object
			if child.Kind == KindInterface {
				kind = ast.Interface
			}
			m.Type = wrap(fdef.Type, &TypeRef{Named: base.Name, Kind: kind, GoType: GoType{Name: child.Name}})
		}
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}
