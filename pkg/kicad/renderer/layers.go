package renderer

// LayerConfig controls which layers are drawn. Layers are visible unless
// hidden.
type LayerConfig struct {
	hidden map[string]bool
}

// NewLayerConfig returns a config with every layer visible
func NewLayerConfig() *LayerConfig {
	return &LayerConfig{hidden: make(map[string]bool)}
}

// SetVisible shows or hides a layer
func (lc *LayerConfig) SetVisible(layer string, visible bool) {
	if visible {
		delete(lc.hidden, layer)
		return
	}
	lc.hidden[layer] = true
}

// Toggle flips a layer and reports whether it is now visible
func (lc *LayerConfig) Toggle(layer string) bool {
	visible := !lc.IsVisible(layer)
	lc.SetVisible(layer, visible)
	return visible
}

// IsVisible reports whether a layer is drawn. A nil config draws everything.
func (lc *LayerConfig) IsVisible(layer string) bool {
	return lc == nil || !lc.hidden[layer]
}

// AnyVisible reports whether at least one of layers is drawn
func (lc *LayerConfig) AnyVisible(layers ...string) bool {
	for _, l := range layers {
		if lc.IsVisible(l) {
			return true
		}
	}
	return false
}

// ShowAll makes every layer visible
func (lc *LayerConfig) ShowAll() {
	clear(lc.hidden)
}
