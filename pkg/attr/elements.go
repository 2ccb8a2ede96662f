package attr

// voidElements cannot have children and have no closing tag.
var voidElements = map[string]bool{
	"area":     true,
	"base":     true,
	"br":       true,
	"col":      true,
	"embed":    true,
	"hr":       true,
	"img":      true,
	"input":    true,
	"keygen":   true,
	"link":     true,
	"menuitem": true,
	"meta":     true,
	"param":    true,
	"source":   true,
	"track":    true,
	"wbr":      true,
}

// IsVoid reports whether tag is a void element.
func IsVoid(tag string) bool {
	return voidElements[tag]
}
