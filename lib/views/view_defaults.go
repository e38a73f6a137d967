package views

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

//go:embed defs/*.yaml
var viewFiles embed.FS

// Set is every view of one tool
type Set struct {
	Tool  string
	views []View
}

// LoadDefaultViews reads the embedded view definitions and returns the
// views of tool.
func LoadDefaultViews(tool string) (*Set, error) {
	// get the list of files
	fileNames, err := fs.Glob(viewFiles, "defs/*.yaml")
	if err != nil {
		return nil, err
	}

	set := &Set{Tool: tool}
	var errs *multierror.Error
	for _, fileName := range fileNames {
		bytes, err := fs.ReadFile(viewFiles, fileName)
		if err != nil {
			return nil, err
		}

		// Each file could have multiple views
		var parsedViews []View
		if err := yaml.Unmarshal(bytes, &parsedViews); err != nil {
			return nil, fmt.Errorf("%s: %w", fileName, err)
		}

		for _, view := range parsedViews {
			if err := view.validate(); err != nil {
				errs = multierror.Append(errs, fmt.Errorf("%s: %w", fileName, err))
				continue
			}
			if view.Tool == tool {
				set.views = append(set.views, view)
			}
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	if len(set.views) == 0 {
		return nil, fmt.Errorf("no views defined for %s", tool)
	}

	return set, nil
}

// Lookup returns the view of mode for a server of this major version
func (s *Set) Lookup(mode Mode, major int) (*View, bool) {
	for i := range s.views {
		v := &s.views[i]
		if v.Mode == mode && v.Matches(major) {
			return v, true
		}
	}
	return nil, false
}

// HasMode reports whether the tool has any view for mode
func (s *Set) HasMode(mode Mode) bool {
	for _, v := range s.views {
		if v.Mode == mode {
			return true
		}
	}
	return false
}

// Modes lists the modes of the set in definition order, without repeats
func (s *Set) Modes() []Mode {
	var modes []Mode
	seen := make(map[Mode]bool)
	for _, v := range s.views {
		if !seen[v.Mode] {
			seen[v.Mode] = true
			modes = append(modes, v.Mode)
		}
	}
	return modes
}
