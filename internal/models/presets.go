package models

// ColumnPreset selects one of the two fixed column layouts.
type ColumnPreset int

const (
	Standard ColumnPreset = iota
	Compact
)

var (
	standardNames       = []string{"Artist", "Album", "Track No", "Title", "Duration"}
	standardExpressions = []string{"%artist%", "%album%", "%track%", "%title%", "%length%"}
	compactNames        = []string{"Artist", "Title"}
	compactExpressions  = []string{"%artist%", "%title%"}
)

// PresetFor returns [Compact] when compact is set and [Standard] otherwise.
func PresetFor(compact bool) ColumnPreset {
	if compact {
		return Compact
	}
	return Standard
}

// Names returns a copy of the preset's display labels.
func (c ColumnPreset) Names() []string {
	if c == Compact {
		return append([]string(nil), compactNames...)
	}
	return append([]string(nil), standardNames...)
}

// Expressions returns a copy of the preset's query expressions.
func (c ColumnPreset) Expressions() []string {
	if c == Compact {
		return append([]string(nil), compactExpressions...)
	}
	return append([]string(nil), standardExpressions...)
}

func (c ColumnPreset) String() string {
	if c == Compact {
		return "compact"
	}
	return "standard"
}
