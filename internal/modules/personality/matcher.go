package personality

// Code derives the 4-letter personality code, one letter per dimension.
// Traits that do not belong to their dimension render as '?'.
func Code(v TraitVector) string {
	buf := make([]byte, NumDimensions)
	for _, d := range Dimensions() {
		p, ok := d.poleOf(v[d])
		if !ok {
			buf[d] = '?'
			continue
		}
		buf[d] = p.letter
	}
	return string(buf)
}

// Match resolves v to a catalog entry. An exact trait match wins; otherwise the
// entry sharing the most traits is returned, ties going to the earliest entry in
// catalog order. Only an empty catalog yields nil.
//
// The tie-break is an arbitrary but stable rule, not a product decision.
func Match(c *Catalog, v TraitVector) *PersonalityType {
	if c == nil || c.Len() == 0 {
		return nil
	}
	if pt, ok := c.byTraits[v]; ok {
		return pt
	}
	var (
		best      *PersonalityType
		bestCount = -1
	)
	for _, pt := range c.entries {
		if n := pt.Traits.Matches(v); n > bestCount {
			best, bestCount = pt, n
		}
	}
	return best
}
