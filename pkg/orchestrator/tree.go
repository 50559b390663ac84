package orchestrator

import (
	"context"

	"github.com/integrixs/fieldtree/pkg/model"
	"github.com/integrixs/fieldtree/pkg/schema"
)

// TreeReader is implemented by adapters whose documents already hold a field
// tree. The orchestrator reads those directly instead of normalizing and
// building.
type TreeReader interface {
	ReadTree(ctx context.Context, doc schema.Document) (id string, fields []model.Field, err error)
}

// TreeWriter is implemented by adapters that store field trees verbatim.
type TreeWriter interface {
	WriteTree(ctx context.Context, id string, fields []model.Field, opts schema.ExportOptions) ([]byte, error)
}
