// Package attr serializes HTML attributes.
//
// Attribute names are classified once (Classify, or a host supplied Table)
// into a Kind that decides how a runtime value is written:
//
//	attr.Serialize("disabled", true, attr.Boolean)       // disabled
//	attr.Serialize("rows", "0", attr.PositiveNumeric)    // ""
//	attr.Serialize("title", `a "b"`, attr.Generic)       // title="a &quot;b&quot;"
//
// ClassList and Style implement the merged class and style attribute values,
// Escape and EscapeComment are the escaping functions used by the renderer.
package attr
