package export

import "errors"

// Document is a serialized export payload and the format that produced it.
type Document struct {
	format      string
	contentType string
	raw         []byte
}

// NewDocument wraps raw, copying it so the caller can reuse the buffer.
func NewDocument(format, contentType string, raw []byte) (Document, error) {
	if format == "" {
		return Document{}, errors.New("export: format is required")
	}
	if len(raw) == 0 {
		return Document{}, errors.New("export: document is empty")
	}
	clone := append([]byte(nil), raw...)
	return Document{format: format, contentType: contentType, raw: clone}, nil
}

// Format returns the exporter name.
func (d Document) Format() string {
	return d.format
}

// ContentType returns the MIME type for HTTP responses.
func (d Document) ContentType() string {
	return d.contentType
}

// Raw returns a defensive copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

func (d Document) String() string {
	return string(d.raw)
}
