package views

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Mode is the active display selection. Exactly one is active at a time.
type Mode int

const (
	Transactions Mode = iota
	InnodbLockWaits
	TableLockWaits
	MetadataLocks
)

// DefaultMode is active at startup
const DefaultMode = Transactions

var modeNames = map[Mode]string{
	Transactions:    "transactions",
	InnodbLockWaits: "innodb-lock-waits",
	TableLockWaits:  "table-lock-waits",
	MetadataLocks:   "metadata-locks",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode is the inverse of Mode.String
func ParseMode(name string) (Mode, error) {
	for mode, modeName := range modeNames {
		if modeName == name {
			return mode, nil
		}
	}
	return DefaultMode, fmt.Errorf("unknown view mode %q", name)
}

// UnmarshalYAML reads a mode by name
func (m *Mode) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	mode, err := ParseMode(name)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// Navigation keys, as termui names them
const (
	KeyUp    = "<Up>"
	KeyDown  = "<Down>"
	KeyLeft  = "<Left>"
	KeyRight = "<Right>"
)

var keyModes = map[string]Mode{
	KeyUp:    Transactions,
	KeyDown:  InnodbLockWaits,
	KeyLeft:  TableLockWaits,
	KeyRight: MetadataLocks,
}

// ModeForKey maps a navigation key to its mode
func ModeForKey(key string) (Mode, bool) {
	mode, ok := keyModes[key]
	return mode, ok
}
