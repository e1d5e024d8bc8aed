package rules

import "errors"

var (
	ErrParse            = errors.New("rules: parse error")
	ErrUnknownMonomer   = errors.New("rules: unknown monomer")
	ErrUnknownSite      = errors.New("rules: unknown site")
	ErrUnknownState     = errors.New("rules: unknown state")
	ErrUnknownParameter = errors.New("rules: unknown parameter")
	ErrDuplicateMonomer = errors.New("rules: monomer declared twice")
	ErrDuplicateName    = errors.New("rules: name declared twice")
	ErrNetworkTooLarge  = errors.New("rules: network exceeds species limit")
)
