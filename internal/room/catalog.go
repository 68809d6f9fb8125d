// Package room holds the static catalog of bookable rooms.
package room

// Catalog maps room ids to display names. Unknown ids resolve to themselves
// so a stale id still renders.
type Catalog struct {
	names map[string]string
}

// DefaultRooms is the catalog used when the config file does not override it.
var DefaultRooms = map[string]string{
	"A": "Main Conference Room",
	"B": "Small Meeting Room",
}

// NewCatalog builds a catalog from an id -> name map. A nil or empty map
// falls back to DefaultRooms.
func NewCatalog(names map[string]string) *Catalog {
	if len(names) == 0 {
		names = DefaultRooms
	}
	copied := make(map[string]string, len(names))
	for id, name := range names {
		copied[id] = name
	}
	return &Catalog{names: copied}
}

// Name returns the display name for a room id, or the id itself when unknown.
func (c *Catalog) Name(roomID string) string {
	if name, ok := c.names[roomID]; ok {
		return name
	}
	return roomID
}
