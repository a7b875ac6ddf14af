package invoice

// DuplicateGuard tracks identities already stored or staged in a run.
// It is not safe for concurrent use.
type DuplicateGuard struct {
	seen map[Key]struct{}
}

func NewDuplicateGuard(existing []Key) *DuplicateGuard {
	g := &DuplicateGuard{seen: make(map[Key]struct{}, len(existing))}
	for _, k := range existing {
		g.seen[k] = struct{}{}
	}
	return g
}

// Claim reports whether k is new and records it.
func (g *DuplicateGuard) Claim(k Key) bool {
	if _, ok := g.seen[k]; ok {
		return false
	}
	g.seen[k] = struct{}{}
	return true
}
