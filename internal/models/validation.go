package models

import (
	"errors"
	"fmt"

	"github.com/san-kum/mapksim/internal/rules"
)

var ErrInvalidStates = errors.New("models: invalid state declaration")

// ValidateStates checks that every declared state list is non-empty and free
// of duplicates.
func ValidateStates(m *rules.Model) error {
	var errs []error
	for _, mon := range m.Monomers {
		for _, site := range mon.Sites {
			states, ok := mon.States[site]
			if !ok {
				continue
			}
			if len(states) == 0 {
				errs = append(errs, fmt.Errorf("%w: %s(%s) has no states", ErrInvalidStates, mon.Name, site))
				continue
			}
			seen := make(map[string]bool, len(states))
			for _, s := range states {
				if seen[s] {
					errs = append(errs, fmt.Errorf("%w: %s(%s) repeats state %s", ErrInvalidStates, mon.Name, site, s))
				}
				seen[s] = true
			}
		}
	}
	return errors.Join(errs...)
}
