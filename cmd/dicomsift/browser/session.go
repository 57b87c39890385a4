package browser

import (
	"strings"

	"github.com/mrsinham/dicomsift/cmd/dicomsift/browser/screens"
)

// Session remembers the copy form values for the lifetime of the process.
type Session struct {
	LastDestination string
	Naming          string
	CustomName      string
	Prefix          string
}

// NamingValues returns the form values to prefill. The destination defaults to the last one
// used, else to root.
func (s *Session) NamingValues(root string) screens.NamingValues {
	dest := s.LastDestination
	if dest == "" {
		dest = root
	}
	return screens.NamingValues{
		Naming:      s.Naming,
		CustomName:  s.CustomName,
		Prefix:      s.Prefix,
		Destination: dest,
	}
}

// Remember stores submitted form values. A blank destination keeps the previous one.
func (s *Session) Remember(v screens.NamingValues) {
	s.Naming = v.Naming
	s.CustomName = v.CustomName
	s.Prefix = v.Prefix
	if strings.TrimSpace(v.Destination) != "" {
		s.LastDestination = v.Destination
	}
}
