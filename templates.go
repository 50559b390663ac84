package fieldtree

import (
	"io/fs"

	"github.com/integrixs/fieldtree/pkg/render/outline"
)

// EmbeddedTemplates exposes the built-in outline templates so callers can
// reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return outline.TemplatesFS()
}
