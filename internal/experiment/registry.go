package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/mapksim/internal/ode"
)

const DefaultStepper = "rosenbrock"

// Registry builds steppers by name. Steppers keep scratch buffers, so every
// call returns a fresh one.
type Registry struct {
	steppers map[string]func() ode.Stepper
}

func NewRegistry() *Registry {
	r := &Registry{steppers: make(map[string]func() ode.Stepper)}

	r.steppers["rosenbrock"] = func() ode.Stepper { return ode.NewRosenbrock23() }
	r.steppers["rk45"] = func() ode.Stepper { return ode.NewRK45() }
	r.steppers["rk4"] = func() ode.Stepper { return ode.NewRK4() }
	r.steppers["euler"] = func() ode.Stepper { return ode.NewEuler() }

	return r
}

// Register adds or replaces a stepper constructor.
func (r *Registry) Register(name string, fn func() ode.Stepper) {
	r.steppers[name] = fn
}

func (r *Registry) Stepper(name string) (ode.Stepper, error) {
	if name == "" {
		name = DefaultStepper
	}
	fn, ok := r.steppers[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (have %v)", name, r.Names())
	}
	return fn(), nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.steppers))
	for name := range r.steppers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
