package personality

type TraitResult struct {
	Score float64 `json:"score"`
	Trait Trait   `json:"trait"`
	Label string  `json:"label"`
}

// Classify picks the positive pole for score >= 0 (zero ties go positive).
func Classify(d Dimension, score float64) TraitResult {
	spec := dimensionSpecs[d]
	p := spec.negative
	if score >= 0 {
		p = spec.positive
	}
	return TraitResult{Score: score, Trait: p.trait, Label: p.label}
}

func ClassifyAll(s Scores) [NumDimensions]TraitResult {
	var out [NumDimensions]TraitResult
	for _, d := range Dimensions() {
		out[d] = Classify(d, s[d])
	}
	return out
}

func VectorOf(results [NumDimensions]TraitResult) TraitVector {
	var v TraitVector
	for i, r := range results {
		v[i] = r.Trait
	}
	return v
}
