package parse

import "fmt"

// Registry resolves a MIME type to the Extractor that handles it. The set
// of formats is closed (PDF, DOC, DOCX, plain text, Markdown) — a
// tagged-variant dispatch fits better here than an open plugin interface
// because new formats require a new allowed-MIME-set entry anyway.
type Registry struct {
	extractors map[string]Extractor
}

// AllowedMIMETypes are the only MIME types the pipeline will index.
var AllowedMIMETypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"text/plain",
	"text/markdown",
}

// NewRegistry returns a Registry with the built-in extractors registered.
func NewRegistry() *Registry {
	r := &Registry{extractors: make(map[string]Extractor, len(AllowedMIMETypes))}
	docx := &DOCXExtractor{}
	r.extractors["application/pdf"] = &PDFExtractor{}
	r.extractors["application/msword"] = docx
	r.extractors["application/vnd.openxmlformats-officedocument.wordprocessingml.document"] = docx
	r.extractors["text/plain"] = &TextExtractor{}
	r.extractors["text/markdown"] = &MarkdownExtractor{}
	return r
}

// Get returns the Extractor registered for mimeType.
func (r *Registry) Get(mimeType string) (Extractor, error) {
	e, ok := r.extractors[mimeType]
	if !ok {
		return nil, fmt.Errorf("no extractor for mime type: %s", mimeType)
	}
	return e, nil
}

// IsAllowed reports whether mimeType is in the allowed set.
func IsAllowed(mimeType string) bool {
	for _, m := range AllowedMIMETypes {
		if m == mimeType {
			return true
		}
	}
	return false
}
