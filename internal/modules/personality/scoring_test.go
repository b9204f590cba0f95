package personality

import (
	"math"
	"testing"

	"github.com/google/uuid"
)

func section(d Dimension, reversed ...bool) (SectionInput, []uuid.UUID) {
	sec := SectionInput{Dimension: d}
	ids := make([]uuid.UUID, 0, len(reversed))
	for _, r := range reversed {
		id := uuid.New()
		sec.Questions = append(sec.Questions, QuestionInput{ID: id, Reversed: r})
		ids = append(ids, id)
	}
	return sec, ids
}

func TestAggregateAlternatingReversedSection(t *testing.T) {
	sec, ids := section(WorkStyle, false, true, false, true, false, true, false, true)
	answers := map[uuid.UUID]int{}
	for i, id := range ids {
		if i%2 == 0 {
			answers[id] = 2
		} else {
			answers[id] = -2
		}
	}

	scores := Aggregate([]SectionInput{sec}, answers)
	if scores[WorkStyle] != 2.0 {
		t.Fatalf("work style score=%v, want 2.0", scores[WorkStyle])
	}
	tr := Classify(WorkStyle, scores[WorkStyle])
	if tr.Trait != Structured || tr.Label != "Structured" {
		t.Fatalf("unexpected trait %+v", tr)
	}
	for _, d := range []Dimension{DecisionProcess, CommunicationStyle, FocusOrientation} {
		if scores[d] != 0 {
			t.Fatalf("%s should score 0 without answers, got %v", d, scores[d])
		}
	}
}

func TestAggregateReverseScoringSymmetry(t *testing.T) {
	for v := -2; v <= 2; v++ {
		plain, plainIDs := section(DecisionProcess, false, false, false)
		flipped, flippedIDs := section(DecisionProcess, true, false, false)

		plainAnswers := map[uuid.UUID]int{plainIDs[0]: v, plainIDs[1]: 1, plainIDs[2]: -1}
		flippedAnswers := map[uuid.UUID]int{flippedIDs[0]: -v, flippedIDs[1]: 1, flippedIDs[2]: -1}

		a := Aggregate([]SectionInput{plain}, plainAnswers)
		b := Aggregate([]SectionInput{flipped}, flippedAnswers)
		if a != b {
			t.Fatalf("v=%d: plain %v != reversed+negated %v", v, a, b)
		}
	}
}

func TestAggregateIgnoresUnansweredAndUnknown(t *testing.T) {
	sec, ids := section(FocusOrientation, false, false, false, false)
	answers := map[uuid.UUID]int{
		ids[0]:     2,
		ids[1]:     1,
		uuid.New(): -2, // answer to a question not in any section
	}
	scores := Aggregate([]SectionInput{sec}, answers)
	if math.Abs(scores[FocusOrientation]-1.5) > 1e-9 {
		t.Fatalf("focus score=%v, want 1.5", scores[FocusOrientation])
	}
}

func TestAggregatePoolsSectionsWithSameDimension(t *testing.T) {
	a, aIDs := section(CommunicationStyle, false)
	b, bIDs := section(CommunicationStyle, false, false, false)
	answers := map[uuid.UUID]int{aIDs[0]: 2, bIDs[0]: -2, bIDs[1]: -2, bIDs[2]: -2}

	scores := Aggregate([]SectionInput{a, b}, answers)
	if scores[CommunicationStyle] != -1.0 {
		t.Fatalf("pooled score=%v, want -1", scores[CommunicationStyle])
	}
}

func TestClassifyZeroTiesPositive(t *testing.T) {
	cases := []struct {
		dim   Dimension
		score float64
		want  Trait
	}{
		{WorkStyle, 0, Structured},
		{WorkStyle, -0.01, Adaptive},
		{DecisionProcess, 0, Analytical},
		{DecisionProcess, -2, Empathic},
		{CommunicationStyle, 0.5, Expressive},
		{CommunicationStyle, -0.5, Reserved},
		{FocusOrientation, 0, Visionary},
		{FocusOrientation, -1, Practical},
	}
	for _, tc := range cases {
		t.Run(tc.dim.String(), func(t *testing.T) {
			if got := Classify(tc.dim, tc.score); got.Trait != tc.want || got.Score != tc.score {
				t.Fatalf("Classify(%s, %v)=%+v, want trait %s", tc.dim, tc.score, got, tc.want)
			}
		})
	}
}

func TestParseDimension(t *testing.T) {
	for _, d := range Dimensions() {
		got, err := ParseDimension(" " + d.String() + " ")
		if err != nil || got != d {
			t.Fatalf("ParseDimension(%q)=%v,%v", d.String(), got, err)
		}
	}
	if _, err := ParseDimension("charisma"); err == nil {
		t.Fatalf("expected error for unknown dimension")
	}
}
