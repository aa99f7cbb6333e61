package special

type mode int

const (
	modeReject mode = iota
	modeAll
	modeNone
	modeOnly
)

// Policy decides how special token strings found in input text are treated.
//
// The zero value is Reject.
type Policy struct {
	mode  mode
	names []string
}

var (
	// Reject fails encoding if any registered special string occurs.
	Reject = Policy{mode: modeReject}

	// AllowAll encodes every registered special string as its id.
	AllowAll = Policy{mode: modeAll}

	// AllowNone encodes special strings as ordinary text.
	AllowNone = Policy{mode: modeNone}
)

// AllowOnly encodes the named special strings as their ids and everything
// else, including other registered specials, as ordinary text. Names that
// are not registered are ignored.
func AllowOnly(names ...string) Policy {
	return Policy{mode: modeOnly, names: append([]string(nil), names...)}
}

// String implements fmt.Stringer.
func (p Policy) String() string {
	switch p.mode {
	case modeAll:
		return "all"
	case modeNone:
		return "none"
	case modeOnly:
		return "only"
	default:
		return "reject"
	}
}
