package shade

// Swatch is one labeled reference color of a shade guide.
type Swatch struct {
	Label string `json:"label"`
	Color RGB    `json:"color"`
}

// Guide is an ordered reference table of a standardized shade system.
// Swatch order matters: the matcher keeps the earliest swatch on an
// exact distance tie, so guides declare their swatches in chart order.
type Guide struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Swatches []Swatch `json:"swatches"`
}

// Contains reports whether label names a swatch of g.
func (g *Guide) Contains(label string) bool {
	for _, s := range g.Swatches {
		if s.Label == label {
			return true
		}
	}
	return false
}

// Labels returns the swatch labels in chart order.
func (g *Guide) Labels() []string {
	labels := make([]string, len(g.Swatches))
	for i, s := range g.Swatches {
		labels[i] = s.Label
	}
	return labels
}

// Get returns the guide registered under id, or nil.
func Get(id string) *Guide {
	return registeredGuides[id]
}

// All returns every registered guide in registration order.
func All() []*Guide {
	guides := make([]*Guide, len(registeredIDs))
	for i, id := range registeredIDs {
		guides[i] = registeredGuides[id]
	}
	return guides
}

// IDs returns the registered guide IDs in registration order.
func IDs() []string {
	ids := make([]string, len(registeredIDs))
	copy(ids, registeredIDs)
	return ids
}

//--------------------------------------------------------------------------------
// private

var registeredGuides = map[string]*Guide{}
var registeredIDs = []string{}

func register(g *Guide) {
	registeredGuides[g.ID] = g
	registeredIDs = append(registeredIDs, g.ID)
}
