package views

// Selector holds the active mode of a tool and switches it on navigation keys
type Selector struct {
	set    *Set
	active Mode
}

// NewSelector starts on DefaultMode
func NewSelector(set *Set) *Selector {
	return &Selector{set: set, active: DefaultMode}
}

// Active is the current mode
func (s *Selector) Active() Mode {
	return s.active
}

// Apply handles one key. Keys that are not navigation keys, or that select a
// mode the tool does not have, change nothing. Returns whether the mode changed.
func (s *Selector) Apply(key string) bool {
	mode, ok := ModeForKey(key)
	if !ok || !s.set.HasMode(mode) || mode == s.active {
		return false
	}
	s.active = mode
	return true
}

// View is the active mode's view for a server of this major version
func (s *Selector) View(major int) (*View, bool) {
	return s.set.Lookup(s.active, major)
}
