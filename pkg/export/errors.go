package export

import "errors"

var (
	// ErrUnknownFormat is returned when no exporter is registered under a name.
	ErrUnknownFormat = errors.New("export: unknown format")
	// ErrNilExporter rejects a nil exporter at registration.
	ErrNilExporter = errors.New("export: exporter is nil")
	// ErrUnnamedExporter rejects an exporter whose Name is empty.
	ErrUnnamedExporter = errors.New("export: exporter has no name")
	// ErrDuplicateFormat is returned when a format name is already taken.
	ErrDuplicateFormat = errors.New("export: format already registered")
)
