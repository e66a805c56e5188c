package ep

import "math"

// Epsilon is the relative error allowed when verifying sums.
const Epsilon = 1.0e-8

// Verification is the outcome of checking a run against reference values.
type Verification int

const (
	// NotPerformed means there is no reference for the problem size.
	NotPerformed Verification = iota
	Successful
	Unsuccessful
)

func (v Verification) String() string {
	switch v {
	case Successful:
		return "SUCCESSFUL"
	case Unsuccessful:
		return "UNSUCCESSFUL"
	default:
		return "NOT PERFORMED"
	}
}

// MarshalYAML implements yaml.Marshaler.
func (v Verification) MarshalYAML() (interface{}, error) {
	return v.String(), nil
}

// Reference holds the expected sums for one problem exponent.
type Reference struct {
	SumX, SumY float64
}

var references = map[int]Reference{
	24: {-3.247834652034740e+3, -6.958407078382297e+3},
	25: {-2.863319731645753e+3, -6.320053679109499e+3},
	28: {-4.295875165629892e+3, -1.580732573678431e+4},
	30: {4.033815542441498e+4, -2.660669192809235e+4},
	32: {4.764367927995374e+4, -8.084072988043731e+4},
	36: {1.982481200946593e+5, -1.020596636361769e+5},
	40: {-5.319717441530e+05, -3.688834557731e+05},
}

// ReferenceFor returns the expected sums for exponent m, if known.
func ReferenceFor(m int) (Reference, bool) {
	ref, ok := references[m]
	return ref, ok
}

// Verify checks sx and sy against the reference for exponent m.
func Verify(m int, sx, sy float64) Verification {
	ref, ok := references[m]
	if !ok {
		return NotPerformed
	}

	if relErr(sx, ref.SumX) <= Epsilon && relErr(sy, ref.SumY) <= Epsilon {
		return Successful
	}
	return Unsuccessful
}

func relErr(got, want float64) float64 {
	return math.Abs((got - want) / want)
}
