package catalog

// Theme is a named unit of content with an ordered list of level ids.
type Theme struct {
	ID     string   `json:"id"`
	Levels []string `json:"levels"`
}

// FirstLevel returns the first level in catalog order, or "" for an empty theme.
func (t Theme) FirstLevel() string {
	if len(t.Levels) == 0 {
		return ""
	}
	return t.Levels[0]
}

// Snapshot is a read-only, point-in-time view of the catalog.
// The reconciliation engine treats it as the canonical shape every profile
// must track; it is never mutated.
type Snapshot struct {
	Themes []Theme `json:"themes"`
}

// Theme returns the theme with the given id, if present.
func (s Snapshot) Theme(id string) (Theme, bool) {
	for _, t := range s.Themes {
		if t.ID == id {
			return t, true
		}
	}
	return Theme{}, false
}

// ThemeIDs returns the theme ids in catalog order.
func (s Snapshot) ThemeIDs() []string {
	ids := make([]string, 0, len(s.Themes))
	for _, t := range s.Themes {
		ids = append(ids, t.ID)
	}
	return ids
}
