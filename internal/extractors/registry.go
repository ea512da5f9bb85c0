package extractors

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
	"github.com/custodia-labs/lexbrief/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry selects a PageExtractor for an upload.
type Registry struct {
	mu           sync.RWMutex
	byExtension  map[string]driven.PageExtractor
	byMIME       map[string]driven.PageExtractor
	registration []driven.PageExtractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byExtension: make(map[string]driven.PageExtractor),
		byMIME:      make(map[string]driven.PageExtractor),
	}
}

// Register adds an extractor. A later registration wins for a shared extension or type.
func (r *Registry) Register(e driven.PageExtractor) {
	if e == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range e.Extensions() {
		r.byExtension[strings.ToLower(ext)] = e
	}
	for _, mt := range e.MIMETypes() {
		r.byMIME[strings.ToLower(mt)] = e
	}
	r.registration = append(r.registration, e)
}

// Get returns the extractor for a file name or content type.
// The extension decides when known, because browsers often send a generic type.
func (r *Registry) Get(filename, mimeType string) (driven.PageExtractor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		if e, ok := r.byExtension[ext]; ok {
			return e, nil
		}
	}
	if mt := mediaType(mimeType); mt != "" {
		if e, ok := r.byMIME[mt]; ok {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %q (%s)", domain.ErrUnsupportedFormat, filename, mimeType)
}

// Extractors returns the registered extractors in registration order.
func (r *Registry) Extractors() []driven.PageExtractor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]driven.PageExtractor, len(r.registration))
	copy(out, r.registration)
	return out
}

// Extensions returns every registered extension, for help text and upload filters.
func (r *Registry) Extensions() []string {
	var exts []string
	for _, e := range r.Extractors() {
		exts = append(exts, e.Extensions()...)
	}
	return exts
}

// mediaType strips parameters such as charset from a content type.
func mediaType(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(v)
	if err != nil {
		return strings.ToLower(v)
	}
	return mt
}
