package personality

import "github.com/google/uuid"

// Evaluation is the full scoring outcome for one set of answers.
type Evaluation struct {
	Scores     Scores
	Traits     [NumDimensions]TraitResult
	Code       string
	Type       *PersonalityType
	Confidence int
	Fit        int
}

// Evaluator bundles a catalog with estimator tuning.
type Evaluator struct {
	Catalog    *Catalog
	Confidence Estimator
	Fit        Estimator
}

func NewEvaluator(c *Catalog) Evaluator {
	return Evaluator{Catalog: c, Confidence: ConfidenceEstimator, Fit: FitEstimator}
}

// Evaluate runs aggregation, classification, estimation and matching. It has
// no side effects.
func (e Evaluator) Evaluate(sections []SectionInput, answers map[uuid.UUID]int) Evaluation {
	scores := Aggregate(sections, answers)
	traits := ClassifyAll(scores)
	vector := VectorOf(traits)
	return Evaluation{
		Scores:     scores,
		Traits:     traits,
		Code:       Code(vector),
		Type:       Match(e.Catalog, vector),
		Confidence: e.Confidence.Estimate(scores),
		Fit:        e.Fit.Estimate(scores),
	}
}

// Evaluate uses the product estimator defaults.
func Evaluate(sections []SectionInput, answers map[uuid.UUID]int, c *Catalog) Evaluation {
	return NewEvaluator(c).Evaluate(sections, answers)
}
