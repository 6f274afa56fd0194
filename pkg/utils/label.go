package utils

// Label is a first-class explain/trace marker carried by pipeline items.
// The meaning of Value and Source is up to the node that writes it; this
// package only defines how two labels with the same key merge.
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // recall / rank / filter / rerank ...
}

// MergeLabel merges two labels with the same key, keeping history:
// Value accumulates with '|', Source accumulates with ','.
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}

	merged := existing
	merged.Value = existing.Value + "|" + incoming.Value
	switch {
	case existing.Source == "":
		merged.Source = incoming.Source
	case incoming.Source == "":
		merged.Source = existing.Source
	default:
		merged.Source = existing.Source + "," + incoming.Source
	}
	return merged
}
