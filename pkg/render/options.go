package render

import "github.com/integrixs/fieldtree/pkg/model"

// RenderOptions describe per-call data that renderers can use to customise
// their output without touching the tree itself.
type RenderOptions struct {
	// Title is printed above the tree when set, usually the structure id.
	Title string
	// Descriptions toggles field descriptions in the output.
	Descriptions bool
	// Issues annotates the rows whose path matches, typically the output of
	// model.Lint.
	Issues []model.Issue
}

// IssuesByPath groups issues by the dotted form of their path.
func (o RenderOptions) IssuesByPath() map[string][]model.Issue {
	if len(o.Issues) == 0 {
		return nil
	}
	out := make(map[string][]model.Issue, len(o.Issues))
	for _, issue := range o.Issues {
		key := issue.Path.String()
		out[key] = append(out[key], issue)
	}
	return out
}
