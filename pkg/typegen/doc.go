// Package typegen translates a parsed GraphQL schema, and optionally parsed
// operation documents, into a tree of Go type declarations.
//
// A run starts with NewContext and walks the schema depth-first:
//
//	ctx, err := typegen.NewContext(schema, typegen.Config{Package: "model"})
//	if err != nil {
//		return err
//	}
//	res, err := typegen.GenerateSchema(ctx)
//
// Every named type is translated into exactly one Declaration. Names are
// assigned by the Context's Registry before a type's fields are visited, so
// self-referencing and mutually recursive types terminate. The package does
// no I/O; rendering declarations into source text is left to callers such as
// package gosource.
package typegen
