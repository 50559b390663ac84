package render

import (
	"context"

	"github.com/integrixs/fieldtree/pkg/model"
)

// Renderer converts a field tree into a byte representation (plain text
// outline, markdown table, ...).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, fields []model.Field, options RenderOptions) ([]byte, error)
}
