package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (E100-E119)
	// ============================================

	"E101": {
		Category: CategoryRuntime,
		Message:  "Computed value is read-only",
		Detail:   "A computed value derives from its dependencies and cannot be set directly. Set one of its dependencies instead.",
		DocURL:   "https://vango.dev/docs/pulse/errors/E101",
	},
	"E102": {
		Category: CategoryRuntime,
		Message:  "Value type mismatch",
		Detail:   "The value passed to a dynamically typed setter does not match the cell's value type.",
		DocURL:   "https://vango.dev/docs/pulse/errors/E102",
	},
	"E103": {
		Category: CategoryListener,
		Message:  "Listener panicked",
		Detail:   "A listener or deferred task panicked while the loop was running it. The panic value and stack are attached.",
		DocURL:   "https://vango.dev/docs/pulse/errors/E103",
	},
	"E104": {
		Category: CategoryRuntime,
		Message:  "Internal error",
		Detail:   "The request failed for a reason that has no code of its own. The cause is attached.",
		DocURL:   "https://vango.dev/docs/pulse/errors/E104",
	},
	"E110": {
		Category: CategoryRuntime,
		Message:  "Loop closed",
		Detail:   "The task loop has been closed and no longer accepts work.",
		DocURL:   "https://vango.dev/docs/pulse/errors/E110",
	},
	"E111": {
		Category: CategoryRuntime,
		Message:  "Loop already running",
		Detail:   "Run was called on a loop that is already running. A loop has exactly one owning goroutine.",
		DocURL:   "https://vango.dev/docs/pulse/errors/E111",
	},

	// ============================================
	// Protocol Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryProtocol,
		Message:  "Unknown cell",
		Detail:   "No cell is registered under the requested name.",
		DocURL:   "https://vango.dev/docs/pulse/errors/E120",
	},
	"E121": {
		Category: CategoryProtocol,
		Message:  "Malformed frame",
		Detail:   "The message could not be decoded or has an unsupported type.",
		DocURL:   "https://vango.dev/docs/pulse/errors/E121",
	},
	"E122": {
		Category: CategoryProtocol,
		Message:  "Duplicate cell name",
		Detail:   "A cell is already registered under this name.",
		DocURL:   "https://vango.dev/docs/pulse/errors/E122",
	},
	"E123": {
		Category: CategoryProtocol,
		Message:  "Unknown action",
		Detail:   "No action is registered under the requested name.",
		DocURL:   "https://vango.dev/docs/pulse/errors/E123",
	},
	"E124": {
		Category: CategoryProtocol,
		Message:  "Duplicate action name",
		Detail:   "An action is already registered under this name.",
		DocURL:   "https://vango.dev/docs/pulse/errors/E124",
	},

	// ============================================
	// Config Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryConfig,
		Message:  "Invalid pulse.json",
		Detail:   "The configuration file could not be parsed.",
		DocURL:   "https://vango.dev/docs/pulse/errors/E140",
	},
	"E141": {
		Category: CategoryConfig,
		Message:  "Missing pulse.json",
		Detail:   "No configuration file was found.",
		DocURL:   "https://vango.dev/docs/pulse/errors/E141",
	},
	"E142": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range or inconsistent.",
		DocURL:   "https://vango.dev/docs/pulse/errors/E142",
	},
}

// GetAllCodes returns all registered error codes in ascending order.
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
