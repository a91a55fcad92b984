package mirror

// Domain is one category of mirrored data with its own validity flag.
type Domain string

const (
	DomainRoster      Domain = "roster"
	DomainAssignments Domain = "assignments"
	DomainOutline     Domain = "outline"
)

// freshness records which domains currently match the remote state as of
// their last successful reload. The zero value has every domain invalid.
type freshness struct {
	roster      bool
	assignments bool
	outline     bool
}

func (f *freshness) valid(d Domain) bool {
	switch d {
	case DomainRoster:
		return f.roster
	case DomainAssignments:
		return f.assignments
	case DomainOutline:
		return f.outline
	default:
		return false
	}
}

func (f *freshness) set(d Domain, v bool) {
	switch d {
	case DomainRoster:
		f.roster = v
	case DomainAssignments:
		f.assignments = v
	case DomainOutline:
		f.outline = v
	}
}

func (f *freshness) markValid(d Domain) { f.set(d, true) }
func (f *freshness) invalidate(d Domain) { f.set(d, false) }
