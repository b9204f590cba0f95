package personality

import "github.com/google/uuid"

// Scores holds one signed average per dimension, each in [-2, 2].
type Scores [NumDimensions]float64

type QuestionInput struct {
	ID       uuid.UUID
	Reversed bool
}

type SectionInput struct {
	Dimension Dimension
	Questions []QuestionInput
}

// Aggregate averages the answered questions of each dimension after
// reverse-scoring. Unanswered questions are ignored and a dimension with no
// answers scores 0. Sections sharing a dimension are pooled.
func Aggregate(sections []SectionInput, answers map[uuid.UUID]int) Scores {
	var (
		sums   [NumDimensions]float64
		counts [NumDimensions]int
	)
	for _, sec := range sections {
		if !sec.Dimension.Valid() {
			continue
		}
		for _, q := range sec.Questions {
			v, ok := answers[q.ID]
			if !ok {
				continue
			}
			if q.Reversed {
				v = -v
			}
			sums[sec.Dimension] += float64(v)
			counts[sec.Dimension]++
		}
	}

	var out Scores
	for d := range out {
		if counts[d] > 0 {
			out[d] = sums[d] / float64(counts[d])
		}
	}
	return out
}
