package setup

import (
	"strconv"
	"strings"
)

// State is the installation state bit set of an instance.
type State uint32

const (
	StateNone             State = 0
	StateLocal            State = 1
	StateRegistered       State = 2
	StateNoRebootRequired State = 4
	StateNoErrors         State = 8
	StateComplete         State = 0xFFFFFFFF
)

var stateNames = []struct {
	flag State
	name string
}{
	{StateLocal, "Local"},
	{StateRegistered, "Registered"},
	{StateNoRebootRequired, "NoRebootRequired"},
	{StateNoErrors, "NoErrors"},
}

// String renders the state the way the vendor API names its flags,
// e.g. "Local, Registered".
func (s State) String() string {
	switch s {
	case StateNone:
		return "None"
	case StateComplete:
		return "Complete"
	}

	var names []string
	rest := s
	for _, n := range stateNames {
		if s&n.flag != 0 {
			names = append(names, n.name)
			rest &^= n.flag
		}
	}

	if rest != 0 {
		return strconv.FormatUint(uint64(s), 10)
	}
	return strings.Join(names, ", ")
}
