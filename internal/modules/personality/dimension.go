package personality

import (
	"fmt"
	"strings"
)

// Dimension is one of the four behavioral axes, in fixed code order.
type Dimension int

const (
	WorkStyle Dimension = iota
	DecisionProcess
	CommunicationStyle
	FocusOrientation

	NumDimensions = 4
)

// Trait is the categorical outcome of one dimension.
type Trait string

const (
	Structured Trait = "structured"
	Adaptive   Trait = "adaptive"
	Analytical Trait = "analytical"
	Empathic   Trait = "empathic"
	Expressive Trait = "expressive"
	Reserved   Trait = "reserved"
	Visionary  Trait = "visionary"
	Practical  Trait = "practical"
)

type pole struct {
	trait  Trait
	letter byte
	label  string
}

type dimensionSpec struct {
	key      string
	positive pole
	negative pole
}

var dimensionSpecs = [NumDimensions]dimensionSpec{
	WorkStyle: {
		key:      "work_style",
		positive: pole{trait: Structured, letter: 'S', label: "Structured"},
		negative: pole{trait: Adaptive, letter: 'A', label: "Adaptive"},
	},
	DecisionProcess: {
		key:      "decision_process",
		positive: pole{trait: Analytical, letter: 'L', label: "Analytical"},
		negative: pole{trait: Empathic, letter: 'E', label: "Empathic"},
	},
	CommunicationStyle: {
		key:      "communication_style",
		positive: pole{trait: Expressive, letter: 'X', label: "Expressive"},
		negative: pole{trait: Reserved, letter: 'R', label: "Reserved"},
	},
	FocusOrientation: {
		key:      "focus_orientation",
		positive: pole{trait: Visionary, letter: 'V', label: "Visionary"},
		negative: pole{trait: Practical, letter: 'P', label: "Practical"},
	},
}

// Dimensions returns all dimensions in code order.
func Dimensions() []Dimension {
	return []Dimension{WorkStyle, DecisionProcess, CommunicationStyle, FocusOrientation}
}

func (d Dimension) Valid() bool { return d >= 0 && d < NumDimensions }

func (d Dimension) String() string {
	if !d.Valid() {
		return fmt.Sprintf("dimension(%d)", int(d))
	}
	return dimensionSpecs[d].key
}

func (d Dimension) Positive() Trait { return dimensionSpecs[d].positive.trait }
func (d Dimension) Negative() Trait { return dimensionSpecs[d].negative.trait }

func ParseDimension(s string) (Dimension, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, d := range Dimensions() {
		if dimensionSpecs[d].key == key {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown dimension %q", s)
}

// poleOf reports which side of d the trait belongs to.
func (d Dimension) poleOf(t Trait) (pole, bool) {
	spec := dimensionSpecs[d]
	switch t {
	case spec.positive.trait:
		return spec.positive, true
	case spec.negative.trait:
		return spec.negative, true
	default:
		return pole{}, false
	}
}

// TraitVector holds one trait per dimension, indexed by Dimension.
type TraitVector [NumDimensions]Trait

// Matches counts the dimensions on which v and other agree.
func (v TraitVector) Matches(other TraitVector) int {
	n := 0
	for i := range v {
		if v[i] == other[i] {
			n++
		}
	}
	return n
}

func (v TraitVector) Validate() error {
	for _, d := range Dimensions() {
		if _, ok := d.poleOf(v[d]); !ok {
			return fmt.Errorf("trait %q is not valid for %s", v[d], d)
		}
	}
	return nil
}
