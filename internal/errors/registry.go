package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Suggestion string
	DocURL     string
}

const docBase = "https://github.com/vango-dev/requery/blob/main/docs/errors.md#"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Binding and reconciliation (E101-E119)

	"E101": {
		Category:   CategoryBinding,
		Message:    "Binding node not found",
		Suggestion: `Add rq="<name>" to an element inside the component, outside nested components.`,
		DocURL:     docBase + "e101",
	},
	"E102": {
		Category:   CategoryReconcile,
		Message:    "Duplicate identity",
		Suggestion: "Make the key function return a unique value per item, or give each component instance a unique prop:key.",
		DocURL:     docBase + "e102",
	},
	"E103": {
		Category:   CategoryReconcile,
		Message:    "List source is not a collection",
		Suggestion: "The For accessor must return a slice or an array.",
		DocURL:     docBase + "e103",
	},
	"E104": {
		Category: CategoryLifecycle,
		Message:  "Cleanup failed",
		DocURL:   docBase + "e104",
	},
	"E105": {
		Category:   CategoryComponent,
		Message:    "Component not found",
		Suggestion: "Check the component name and the prop:key of the instance.",
		DocURL:     docBase + "e105",
	},

	// Configuration (E120-E139)

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		DocURL:   docBase + "e120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Invalid port number",
		DocURL:   docBase + "e121",
	},
	"E122": {
		Category:   CategoryConfig,
		Message:    "Invalid log setting",
		Suggestion: "log.level is one of debug, info, warn, error; log.format is text or json.",
		DocURL:     docBase + "e122",
	},
	"E123": {
		Category: CategoryConfig,
		Message:  "Unknown app",
		DocURL:   docBase + "e123",
	},
	"E124": {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Suggestion: "Create rq.yaml or rq.json at the project root, or run without one to use the defaults.",
		DocURL:     docBase + "e124",
	},

	// Live server protocol (E160-E179)

	"E160": {
		Category: CategoryProtocol,
		Message:  "Invalid client message",
		DocURL:   docBase + "e160",
	},
	"E161": {
		Category: CategoryProtocol,
		Message:  "Event target not found",
		DocURL:   docBase + "e161",
	},
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
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
