package mesh

// Names hands out mesh names that are unique within one export run.
type Names struct {
	used map[string]bool
}

// NewNames returns an empty registry.
func NewNames() *Names {
	return &Names{used: make(map[string]bool)}
}

// Unique returns candidate, or candidate with 'a' appended until it no
// longer collides with a name already handed out, and records the result.
func (n *Names) Unique(candidate string) string {
	name := candidate
	for n.used[name] {
		name += "a"
	}
	n.used[name] = true
	return name
}

// Len returns the number of names handed out.
func (n *Names) Len() int {
	return len(n.used)
}
