package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// parseDrugConcentrations turns the --drug-concentration values into
// (MEKi, EGF). Each value may hold one number or two separated by a comma or
// whitespace; a lone value may be completed by the first positional argument.
func parseDrugConcentrations(values, args []string) (meki, egf float64, rest []string, err error) {
	var fields []string
	for _, v := range values {
		fields = append(fields, strings.FieldsFunc(v, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})...)
	}
	rest = args
	if len(fields) == 1 && len(args) > 0 {
		if _, perr := strconv.ParseFloat(args[0], 64); perr == nil {
			fields = append(fields, args[0])
			rest = args[1:]
		}
	}
	if len(fields) != 2 {
		return 0, 0, args, fmt.Errorf("--drug-concentration needs two values (MEKi EGF), got %d", len(fields))
	}

	out := make([]float64, 2)
	for i, f := range fields {
		v, perr := strconv.ParseFloat(f, 64)
		if perr != nil {
			return 0, 0, args, fmt.Errorf("--drug-concentration: %q is not a number", f)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return 0, 0, args, fmt.Errorf("--drug-concentration: %g is not a finite non-negative dose", v)
		}
		out[i] = v
	}
	return out[0], out[1], rest, nil
}
