package domain

import "strings"

// PlanFamily is the PERS plan a deduction-benefit code reports under
type PlanFamily string

const (
	Plan0       PlanFamily = "0" // retired but working
	Plan1       PlanFamily = "1"
	Plan2       PlanFamily = "2"
	Plan3       PlanFamily = "3"
	PlanUnknown PlanFamily = ""
)

// Deduction-benefit codes with special handling
const (
	CodePERS0       = "PERS0"
	CodePERS1       = "PERS1"
	CodePERS2       = "PERS2"
	CodePERS3       = "PERS3"
	CodePlan3Marker = "P3"
	CodeP3NewHire   = "P3NH"
)

// Plan 3 investment programs
const (
	ProgramSelf = "SELF"
	ProgramWSIB = "WSIB"
)

// PlanFamilyOf maps a deduction-benefit code to its plan family. The checks
// run in a fixed order: PERS2, any code containing P3, PERS1, PERS0.
func PlanFamilyOf(code string) (PlanFamily, bool) {
	c := strings.ToUpper(strings.TrimSpace(code))
	switch {
	case c == CodePERS2:
		return Plan2, true
	case strings.Contains(c, CodePlan3Marker):
		return Plan3, true
	case c == CodePERS1:
		return Plan1, true
	case c == CodePERS0:
		return Plan0, true
	}
	return PlanUnknown, false
}

// IsPlan3NewHire reports whether the code marks a plan 3 transfer who has not
// yet chosen an investment program
func IsPlan3NewHire(code string) bool {
	return strings.EqualFold(strings.TrimSpace(code), CodeP3NewHire)
}

type plan3Option struct {
	program    string
	rateOption string
}

var plan3Options = map[string]plan3Option{
	"P3AS":  {ProgramSelf, "A"},
	"P3AW":  {ProgramWSIB, "A"},
	"P3BS1": {ProgramSelf, "B"},
	"P3BS2": {ProgramSelf, "B"},
	"P3BS3": {ProgramSelf, "B"},
	"P3BW1": {ProgramWSIB, "B"},
	"P3BW2": {ProgramWSIB, "B"},
	"P3BW3": {ProgramWSIB, "B"},
	"P3CS1": {ProgramSelf, "C"},
	"P3CS2": {ProgramSelf, "C"},
	"P3CS3": {ProgramSelf, "C"},
	"P3CW1": {ProgramWSIB, "C"},
	"P3CW2": {ProgramWSIB, "C"},
	"P3CW3": {ProgramWSIB, "C"},
	"P3DS":  {ProgramSelf, "D"},
	"P3DW":  {ProgramWSIB, "D"},
	"P3ES":  {ProgramSelf, "E"},
	"P3EW":  {ProgramWSIB, "E"},
	"P3FS":  {ProgramSelf, "F"},
	"P3FW":  {ProgramWSIB, "F"},
	"P3NH":  {ProgramSelf, "A"},
}

// Plan3Option returns the investment program and rate option for a plan 3
// sub-code. ok is false for codes with no program on file.
func Plan3Option(code string) (program, rateOption string, ok bool) {
	opt, ok := plan3Options[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return "", "", false
	}
	return opt.program, opt.rateOption, true
}
