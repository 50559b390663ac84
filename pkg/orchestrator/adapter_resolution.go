package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/integrixs/fieldtree/pkg/schema"
)

// resolve picks the adapter and document for a request. An explicit format
// wins; otherwise the document is loaded once through the orchestrator loader
// and offered to every adapter's Detect.
func (o *Orchestrator) resolve(ctx context.Context, req Request) (schema.FormatAdapter, schema.Document, error) {
	if o.registry == nil {
		return nil, schema.Document{}, errors.New("orchestrator: adapter registry is nil")
	}

	format := strings.TrimSpace(req.Format)
	if format != "" {
		adapter, err := o.registry.Get(format)
		if err != nil {
			return nil, schema.Document{}, err
		}
		doc, err := o.resolveDocument(ctx, req, adapter)
		if err != nil {
			return nil, schema.Document{}, err
		}
		return adapter, doc, nil
	}

	doc, err := o.resolveDocument(ctx, req, nil)
	if err != nil {
		return nil, schema.Document{}, err
	}

	adapter, err := o.registry.DetectOne(doc.Source(), doc.Raw())
	if errors.Is(err, ErrFormatNotDetected) && o.defaultAdapter != "" {
		adapter, err = o.registry.Get(o.defaultAdapter)
	}
	if err != nil {
		return nil, schema.Document{}, err
	}
	return adapter, doc, nil
}

// resolveDocument returns the request document or loads the source, through
// the adapter when one is already chosen.
func (o *Orchestrator) resolveDocument(ctx context.Context, req Request, adapter schema.FormatAdapter) (schema.Document, error) {
	if req.Document != nil {
		return *req.Document, nil
	}
	if req.Source == nil {
		return schema.Document{}, errors.New("orchestrator: source or document is required")
	}
	var (
		doc schema.Document
		err error
	)
	if adapter != nil {
		doc, err = adapter.Load(ctx, req.Source)
	} else {
		if o.loader == nil {
			return schema.Document{}, errors.New("orchestrator: loader is nil")
		}
		doc, err = o.loader.Load(ctx, req.Source)
	}
	if err != nil {
		return schema.Document{}, fmt.Errorf("orchestrator: load document: %w", err)
	}
	return doc, nil
}

func formatStructureRefs(refs []schema.StructureRef) string {
	if len(refs) == 0 {
		return "none"
	}
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.ID == "" {
			continue
		}
		ids = append(ids, ref.ID)
	}
	if len(ids) == 0 {
		return "none"
	}
	return strings.Join(ids, ", ")
}
