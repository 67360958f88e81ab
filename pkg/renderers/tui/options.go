package tui

import "io"

// Theme captures optional message prefixes the editor applies when printing.
// Kept minimal to avoid coupling editor logic to ANSI specifics.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
	Indent      string
}

// DefaultTheme is used when no theme is configured.
var DefaultTheme = Theme{
	InfoPrefix:  "",
	ErrorPrefix: "! ",
	Indent:      "  ",
}

// Option configures the terminal editor.
type Option func(*Editor)

// WithPromptDriver overrides the prompt driver used by the editor.
func WithPromptDriver(driver PromptDriver) Option {
	return func(e *Editor) {
		if driver != nil {
			e.driver = driver
		}
	}
}

// WithOutput sets where the default survey driver prints messages.
func WithOutput(out io.Writer) Option {
	return func(e *Editor) {
		e.out = out
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(e *Editor) {
		e.theme = theme
	}
}

// WithPageSize caps how many options a select prompt shows at once.
func WithPageSize(size int) Option {
	return func(e *Editor) {
		if size > 0 {
			e.pageSize = size
		}
	}
}

// WithExportFormat selects the exporter used by the "Show schema" action.
func WithExportFormat(format string) Option {
	return func(e *Editor) {
		if format != "" {
			e.format = format
		}
	}
}
