package attr

// Kind is the serialization class of an attribute name.
type Kind int

const (
	Generic Kind = iota
	Booleanish
	Boolean
	OverloadedBoolean
	PositiveNumeric
	Numeric
)

func (k Kind) String() string {
	switch k {
	case Booleanish:
		return "booleanish"
	case Boolean:
		return "boolean"
	case OverloadedBoolean:
		return "overloaded-boolean"
	case PositiveNumeric:
		return "positive-numeric"
	case Numeric:
		return "numeric"
	default:
		return "generic"
	}
}

// Table maps attribute names to their kind. Names absent from the table are
// Generic.
type Table map[string]Kind

// Classify returns the kind of name in t.
func (t Table) Classify(name string) Kind {
	return t[name]
}

// DefaultTable is the classification table for HTML and SVG attributes.
var DefaultTable = Table{
	// enumerated attributes that accept "true"/"false"
	"contenteditable":           Booleanish,
	"draggable":                 Booleanish,
	"spellcheck":                Booleanish,
	"value":                     Booleanish,
	"autoReverse":               Booleanish,
	"externalResourcesRequired": Booleanish,
	"focusable":                 Booleanish,
	"preserveAlpha":             Booleanish,

	"allowfullscreen": Boolean,
	"async":           Boolean,
	"autofocus":       Boolean,
	"autoplay":        Boolean,
	"checked":         Boolean,
	"controls":        Boolean,
	"default":         Boolean,
	"disabled":        Boolean,
	"formnovalidate":  Boolean,
	"hidden":          Boolean,
	"indeterminate":   Boolean,
	"ismap":           Boolean,
	"itemscope":       Boolean,
	"loop":            Boolean,
	"multiple":        Boolean,
	"muted":           Boolean,
	"nomodule":        Boolean,
	"novalidate":      Boolean,
	"open":            Boolean,
	"playsinline":     Boolean,
	"readonly":        Boolean,
	"required":        Boolean,
	"reversed":        Boolean,
	"seamless":        Boolean,
	"selected":        Boolean,

	"capture":  OverloadedBoolean,
	"download": OverloadedBoolean,

	"cols": PositiveNumeric,
	"rows": PositiveNumeric,
	"size": PositiveNumeric,
	"span": PositiveNumeric,

	"rowspan": Numeric,
	"start":   Numeric,
}

// Classify returns the kind of name in DefaultTable.
func Classify(name string) Kind {
	return DefaultTable.Classify(name)
}
