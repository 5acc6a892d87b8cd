// Package recordgen compiles JSON Schema object definitions into immutable,
// validated record types.
//
// For every object schema it emits a record declaration whose constructor
// checks presence, runtime kinds, formats, enums, unions and range
// constraints, plus one nested record type per object-typed property. Go and
// Ruby are supported targets.
//
// Design policy:
//   - Keep only public APIs in the root package; lowering lives in
//     internal/compiler and rendering in internal/gen/<target>.
//   - Report broken schemas as Issues (JSON Pointer, code, message); soft
//     failures such as a non-object root become comments in the output.
//   - Compilation is pure: the same schema and type name always produce the
//     same text.
//
// Typical usage:
//
//	c, err := recordgen.New(recordgen.WithTarget(recordgen.TargetGo))
//	doc, err := c.Load(recordgen.FileSource("schema.json"))
//	code, err := c.Compile(doc, "Person")
//
//	outs, err := c.BuildMany(ctx, doc, []string{"Address", "Order"})
//	file, err := c.Render(outs...)
package recordgen
