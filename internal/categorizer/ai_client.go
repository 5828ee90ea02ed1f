package categorizer

import "context"

// Suggestion is an external provider's proposed categorization with its
// self-reported confidence in [0, 1].
type Suggestion struct {
	Category    string
	Subcategory string
	Confidence  float64
}

// AIClient abstracts the suggestion provider so the resolver can be
// tested without network access and so providers can be swapped.
type AIClient interface {
	// Suggest proposes a category for a merchant. The context carries
	// the deadline; implementations must respect it.
	Suggest(ctx context.Context, merchant, description string) (Suggestion, error)
}
