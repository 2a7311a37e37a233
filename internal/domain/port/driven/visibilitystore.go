package driven

// VisibilityStore persists the include/exclude classification of every
// known repository name between runs.
type VisibilityStore interface {
	// Load returns the two sets. A missing store yields two empty sets,
	// not an error, so first runs start from a blank classification.
	Load() (include, exclude map[string]bool, err error)
	// Save rewrites the store in full, both sets sorted alphabetically.
	Save(include, exclude map[string]bool) error
}
