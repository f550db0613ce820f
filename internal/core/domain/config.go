package domain

// AggregateConfig is the project's merged settings document plus the state
// needed to recompute it: the per-component fragments and the install order.
// Keeping fragments separate means mutating one component's fragment never
// requires re-reading any other component.
type AggregateConfig struct {
	// Order lists component ids in install order.
	Order []string `json:"order"`

	// Fragments holds each component's declared config fragment.
	Fragments map[string]map[string]any `json:"fragments"`

	// Merged is the folded document, derived from Order and Fragments.
	Merged map[string]any `json:"merged"`
}

// NewAggregateConfig returns an empty aggregate configuration.
func NewAggregateConfig() *AggregateConfig {
	return &AggregateConfig{
		Fragments: make(map[string]map[string]any),
		Merged:    make(map[string]any),
	}
}

// SetFragment records a component's fragment and refolds the merged document.
// Recording the same component again replaces its fragment but keeps its
// original position in the install order.
func (c *AggregateConfig) SetFragment(componentID string, fragment map[string]any) {
	if _, known := c.Fragments[componentID]; !known {
		c.Order = append(c.Order, componentID)
	}
	c.Fragments[componentID] = fragment
	c.refold()
}

// RemoveFragment drops a component's fragment and refolds.
func (c *AggregateConfig) RemoveFragment(componentID string) {
	if _, known := c.Fragments[componentID]; !known {
		return
	}
	delete(c.Fragments, componentID)
	for i, id := range c.Order {
		if id == componentID {
			c.Order = append(c.Order[:i], c.Order[i+1:]...)
			break
		}
	}
	c.refold()
}

// refold recomputes Merged by folding every fragment in install order.
// The merge is associative per top-level key: arrays concatenate, scalar
// keys shadow by latest write.
func (c *AggregateConfig) refold() {
	merged := make(map[string]any)
	for _, id := range c.Order {
		for key, value := range c.Fragments[id] {
			merged[key] = mergeValue(merged[key], value)
		}
	}
	c.Merged = merged
}

func mergeValue(existing, incoming any) any {
	existingList, eok := existing.([]any)
	incomingList, iok := incoming.([]any)
	if eok && iok {
		out := make([]any, 0, len(existingList)+len(incomingList))
		out = append(out, existingList...)
		return append(out, incomingList...)
	}
	if iok && existing == nil {
		return incomingList
	}
	return incoming
}
