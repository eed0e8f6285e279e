// Package gosource renders typegen declarations as a Go source file.
package gosource

import (
	"io"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/samwightt/gqlbind/pkg/typegen"
)

// Header is written at the top of every generated file.
const Header = "Code generated by gqlbind. DO NOT EDIT."

// Render builds a Jennifer file holding every declaration of res, in
// declaration order.
func Render(res *typegen.Result) *jen.File {
	f := jen.NewFile(res.Package)
	f.HeaderComment(Header)

	// Go name -> abstract types it is a variant of.
	markers := make(map[string][]string)
	for _, d := range res.Declarations {
		if d.Kind == typegen.KindInterface || d.Kind == typegen.KindUnion {
			for _, v := range d.Variants {
				markers[v] = append(markers[v], d.Name)
			}
		}
	}

	for _, d := range res.Declarations {
		switch d.Kind {
		case typegen.KindObject, typegen.KindInputObject:
			genStruct(f, d, markers[d.Name])
		case typegen.KindEnum:
			genEnum(f, d)
		case typegen.KindInterface, typegen.KindUnion:
			genInterface(f, d, markers[d.Name])
		}
	}
	return f
}

// Write renders res to w.
func Write(w io.Writer, res *typegen.Result) error {
	return Render(res).Render(w)
}

// TypeCode returns the Jennifer code for a resolved type reference.
func TypeCode(t *typegen.TypeRef) *jen.Statement {
	var levels []*typegen.TypeRef
	for cur := t; cur != nil; cur = cur.Elem {
		levels = append(levels, cur)
	}
	leaf := levels[len(levels)-1]

	var s *jen.Statement
	if leaf.GoType.Path != "" {
		s = jen.Qual(leaf.GoType.Path, leaf.GoType.Name)
	} else {
		s = jen.Id(leaf.GoType.Name)
	}
	abstract := leaf.Kind == ast.Interface || leaf.Kind == ast.Union
	for i := len(levels) - 1; i >= 0; i-- {
		if i < len(levels)-1 {
			s = jen.Index().Add(s)
		}
		if levels[i].Nullable && !(i == len(levels)-1 && abstract) {
			s = jen.Op("*").Add(s)
		}
	}
	return s
}

func docComment(description string, deprecated bool, reason string) []jen.Code {
	var lines []jen.Code
	if description != "" {
		for _, line := range strings.Split(strings.TrimSpace(description), "\n") {
			lines = append(lines, jen.Comment(strings.TrimRight(line, " \t")))
		}
	}
	if deprecated {
		if len(lines) > 0 {
			lines = append(lines, jen.Comment(""))
		}
		lines = append(lines, jen.Comment("Deprecated: "+reason))
	}
	return lines
}

func addDoc(f *jen.File, description string, deprecated bool, reason string) {
	for _, c := range docComment(description, deprecated, reason) {
		f.Add(c)
	}
}

func genStruct(f *jen.File, d *typegen.Declaration, markers []string) {
	addDoc(f, d.Description, false, "")
	f.Type().Id(d.Name).StructFunc(func(g *jen.Group) {
		for _, m := range d.Members {
			for _, c := range docComment(m.Description, m.Deprecated, m.Reason) {
				g.Add(c)
			}
			g.Id(m.Name).Add(TypeCode(m.Type)).Tag(map[string]string{"json": m.SchemaName})
		}
	})
	for _, abstract := range markers {
		f.Func().Params(jen.Id(d.Name)).Id("Is" + abstract).Params().Block()
	}
	f.Line()
}

func genEnum(f *jen.File, d *typegen.Declaration) {
	addDoc(f, d.Description, false, "")
	f.Type().Id(d.Name).String()
	if len(d.Values) == 0 {
		return
	}

	f.Const().DefsFunc(func(g *jen.Group) {
		for _, v := range d.Values {
			for _, c := range docComment(v.Description, v.Deprecated, v.Reason) {
				g.Add(c)
			}
			g.Id(v.Name).Id(d.Name).Op("=").Lit(v.SchemaName)
		}
	})

	valuesVar := d.ValuesVar
	if valuesVar == "" {
		valuesVar = "All" + d.Name
	}
	f.Var().Id(valuesVar).Op("=").Index().Id(d.Name).ValuesFunc(func(g *jen.Group) {
		for _, v := range d.Values {
			g.Id(v.Name)
		}
	})

	f.Comment("IsValid reports whether e is one of the declared values.")
	f.Func().Params(jen.Id("e").Id(d.Name)).Id("IsValid").Params().Bool().Block(
		jen.Switch(jen.Id("e")).Block(
			jen.CaseFunc(func(g *jen.Group) {
				for _, v := range d.Values {
					g.Id(v.Name)
				}
			}).Block(jen.Return(jen.True())),
		),
		jen.Return(jen.False()),
	)

	f.Func().Params(jen.Id("e").Id(d.Name)).Id("String").Params().String().Block(
		jen.Return(jen.String().Call(jen.Id("e"))),
	)
	f.Line()
}

func genInterface(f *jen.File, d *typegen.Declaration, markers []string) {
	addDoc(f, d.Description, false, "")
	f.Type().Id(d.Name).InterfaceFunc(func(g *jen.Group) {
		g.Id("Is" + d.Name).Params()
		for _, abstract := range markers {
			g.Id("Is" + abstract).Params()
		}
	})
	f.Line()
}
