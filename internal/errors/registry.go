package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// Codes shared across packages.
const (
	CodeClassification    = "E200"
	CodeInvalidMarkup     = "E201"
	CodeExprCompile       = "E202"
	CodeOutsideRender     = "E210"
	CodeUnresolvable      = "E211"
	CodeMalformedDocument = "E212"
	CodeUnknownComponent  = "E213"
	CodeExprEval          = "E214"
	CodeInvalidConfig     = "E120"
	CodeMissingConfig     = "E121"
	CodeInvalidPort       = "E122"
	CodeDecode            = "E130"
	CodeSourceRead        = "E131"
	CodeNotProject        = "E141"
	CodeProjectExists     = "E142"
	CodeUnknownScaffold   = "E145"
)

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (E120-E129)
	// ============================================

	CodeInvalidConfig: {
		Category: CategoryConfig,
		Message:  "Invalid slate.yaml",
		Detail:   "The slate.yaml configuration file is malformed.",
	},
	CodeMissingConfig: {
		Category: CategoryConfig,
		Message:  "Missing required configuration",
	},
	CodeInvalidPort: {
		Category: CategoryConfig,
		Message:  "Invalid port number",
		Detail:   "The configured port number is invalid.",
	},

	// ============================================
	// Source Errors (E130-E139)
	// ============================================

	CodeDecode: {
		Category: CategorySource,
		Message:  "Invalid template document",
	},
	CodeSourceRead: {
		Category: CategorySource,
		Message:  "Unable to read template source",
	},

	// ============================================
	// CLI Errors (E140-E159)
	// ============================================

	CodeNotProject: {
		Category: CategoryCLI,
		Message:  "Not a slate project",
		Detail:   "The current directory has no slate.yaml.",
	},
	CodeProjectExists: {
		Category: CategoryCLI,
		Message:  "Project already exists",
	},
	CodeUnknownScaffold: {
		Category: CategoryCLI,
		Message:  "Unknown project template",
	},

	// ============================================
	// Compile Errors (E200-E209)
	// ============================================

	CodeClassification: {
		Category: CategoryCompile,
		Message:  "Unsupported expression",
	},
	CodeInvalidMarkup: {
		Category: CategoryCompile,
		Message:  "Invalid markup",
	},
	CodeExprCompile: {
		Category: CategoryCompile,
		Message:  "Expression does not compile",
	},

	// ============================================
	// Runtime Errors (E210-E229)
	// ============================================

	CodeOutsideRender: {
		Category: CategoryRuntime,
		Message:  "Unable to use createID outside of render",
	},
	CodeUnresolvable: {
		Category: CategoryRuntime,
		Message:  "Value cannot be rendered",
	},
	CodeMalformedDocument: {
		Category: CategoryRuntime,
		Message:  "Malformed document",
	},
	CodeUnknownComponent: {
		Category: CategoryRuntime,
		Message:  "Unknown component",
	},
	CodeExprEval: {
		Category: CategoryRuntime,
		Message:  "Expression failed",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
