package compare

import "github.com/sergi/go-diff/diffmatchpatch"

// Chunk is one added or removed run of text. Equal runs are omitted.
type Chunk struct {
	Type    string `json:"type"` // "added" or "removed"
	Content string `json:"content"`
}

// DiffText computes a semantic character diff between base and head.
func DiffText(base, head string) []Chunk {
	if base == head {
		return nil
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(base, head, true)
	diffs = dmp.DiffCleanupSemantic(diffs)

	chunks := make([]Chunk, 0, len(diffs))
	for _, d := range diffs {
		var typ string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			typ = "added"
		case diffmatchpatch.DiffDelete:
			typ = "removed"
		default:
			continue
		}
		if d.Text != "" {
			chunks = append(chunks, Chunk{Type: typ, Content: d.Text})
		}
	}
	return chunks
}

// Unified renders chunks as "+text" / "-text" lines for terminals.
func Unified(chunks []Chunk) []string {
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		prefix := "+"
		if c.Type == "removed" {
			prefix = "-"
		}
		out = append(out, prefix+c.Content)
	}
	return out
}
