// scheme.go -- This file is part of goueg.
//
//	goueg is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
// ------------------------------------------------

// Package scheme enumerates the dielectric theories and working modes
// and maps every theory to its dispatch descriptor.
package scheme

import "goueg/pkg/uegerr"

// Theory is one of the supported dielectric schemes.
type Theory int

const (
	RPA Theory = iota
	ESA
	STLS
	STLSHNC
	STLSIOI
	STLSLCT
	VSSTLS
	QSTLS
	QSTLSHNC
	QSTLSIOI
	QSTLSLCT
	QVSSTLS
)

var theoryNames = map[Theory]string{
	RPA:      "RPA",
	ESA:      "ESA",
	STLS:     "STLS",
	STLSHNC:  "STLS-HNC",
	STLSIOI:  "STLS-IOI",
	STLSLCT:  "STLS-LCT",
	VSSTLS:   "VSSTLS",
	QSTLS:    "QSTLS",
	QSTLSHNC: "QSTLS-HNC",
	QSTLSIOI: "QSTLS-IOI",
	QSTLSLCT: "QSTLS-LCT",
	QVSSTLS:  "QVSSTLS",
}

func (t Theory) String() string { return theoryNames[t] }

// ParseTheory maps the input string to a Theory.
func ParseTheory(s string) (Theory, error) {
	for t, name := range theoryNames {
		if name == s {
			return t, nil
		}
	}
	return 0, uegerr.Inputf("theory", "unknown theory %q", s)
}

// Bridge selects the bridge-function family for the IET variants.
type Bridge int

const (
	BridgeNone Bridge = iota
	BridgeHNC         // identically zero bridge
	BridgeIOI
	BridgeLCT
)

// Closure selects how the local field is produced.
type Closure int

const (
	ClosureNone Closure = iota // RPA: zero local field
	ClosureESA                 // analytic, single pass
	ClosureSTLS
	ClosureIET
	ClosureQ    // quantum auxiliary response
	ClosureQIET // quantum auxiliary response with bridge factor
)

// Descriptor is the dispatch tuple for a theory.
type Descriptor struct {
	Closure Closure
	Bridge  Bridge
	UsesCSR bool
	Quantum bool
}

var table = map[Theory]Descriptor{
	RPA:      {Closure: ClosureNone},
	ESA:      {Closure: ClosureESA},
	STLS:     {Closure: ClosureSTLS},
	STLSHNC:  {Closure: ClosureIET, Bridge: BridgeHNC},
	STLSIOI:  {Closure: ClosureIET, Bridge: BridgeIOI},
	STLSLCT:  {Closure: ClosureIET, Bridge: BridgeLCT},
	VSSTLS:   {Closure: ClosureSTLS, UsesCSR: true},
	QSTLS:    {Closure: ClosureQ, Quantum: true},
	QSTLSHNC: {Closure: ClosureQIET, Bridge: BridgeHNC, Quantum: true},
	QSTLSIOI: {Closure: ClosureQIET, Bridge: BridgeIOI, Quantum: true},
	QSTLSLCT: {Closure: ClosureQIET, Bridge: BridgeLCT, Quantum: true},
	QVSSTLS:  {Closure: ClosureQ, UsesCSR: true, Quantum: true},
}

// Describe returns the dispatch descriptor for t.
func (t Theory) Describe() Descriptor { return table[t] }

// Mapping is the quantum-classical state point correspondence used by
// the bridge functions.
type Mapping int

const (
	MapStandard Mapping = iota
	MapSqrt
	MapLinear
)

// ParseMapping maps the input string to a Mapping.
func ParseMapping(s string) (Mapping, error) {
	switch s {
	case "standard":
		return MapStandard, nil
	case "sqrt":
		return MapSqrt, nil
	case "linear":
		return MapLinear, nil
	}
	return 0, uegerr.Inputf("iet-mapping", "unknown mapping %q", s)
}

// Mode is the working mode of one invocation.
type Mode int

const (
	ModeStatic Mode = iota
	ModeDynamic
	ModeGuess
)

// ParseMode maps the input string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "static":
		return ModeStatic, nil
	case "dynamic":
		return ModeDynamic, nil
	case "guess":
		return ModeGuess, nil
	}
	return 0, uegerr.Inputf("mode", "unknown mode %q", s)
}
