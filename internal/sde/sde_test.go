package sde

import (
	"context"
	"math"
	"reflect"
	"testing"

	"github.com/san-kum/mapksim/internal/ode"
)

// birthDeath is 0 -> X at rate kb and X -> 0 at rate kd*X.
type birthDeath struct{ kb, kd float64 }

func (b *birthDeath) Dim() int          { return 1 }
func (b *birthDeath) NumReactions() int { return 2 }

func (b *birthDeath) Propensities(x ode.State, dst []float64) {
	dst[0] = b.kb
	dst[1] = b.kd * x[0]
}

func (b *birthDeath) Stoichiometry(j int) ([]int, []float64) {
	if j == 0 {
		return []int{0}, []float64{1}
	}
	return []int{0}, []float64{-1}
}

func TestLangevin_LargeVolumeFollowsODE(t *testing.T) {
	net := &birthDeath{kb: 1, kd: 0.1}
	lv, err := NewLangevin(net, 1e12, 0.01)
	if err != nil {
		t.Fatal(err)
	}

	res, err := lv.Solve(context.Background(), ode.State{0}, []float64{0, 10, 50}, newRand(1))
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	for i, tt := range res.Times {
		want := 10 * (1 - math.Exp(-0.1*tt))
		if math.Abs(res.States[i][0]-want) > 0.01 {
			t.Errorf("x(%g) = %f, want %f", tt, res.States[i][0], want)
		}
	}
}

func TestLangevin_NonNegative(t *testing.T) {
	net := &birthDeath{kb: 0, kd: 5}
	lv, _ := NewLangevin(net, 0.01, 0.1)

	res, err := lv.Solve(context.Background(), ode.State{1}, []float64{0, 1, 2, 3}, newRand(7))
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	for _, s := range res.States {
		if s[0] < 0 {
			t.Fatalf("negative concentration %f", s[0])
		}
	}
}

func TestLangevin_Events(t *testing.T) {
	net := &birthDeath{kb: 0, kd: 0}
	lv, _ := NewLangevin(net, 1, 0.5)
	lv.AddEvent(Event{Time: 0, Apply: func(x ode.State) { x[0] += 5 }})

	res, err := lv.Solve(context.Background(), ode.State{1}, []float64{-1, 0, 1}, newRand(1))
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if res.States[0][0] != 1 {
		t.Errorf("before event: %f, want 1", res.States[0][0])
	}
	if res.States[1][0] != 6 || res.States[2][0] != 6 {
		t.Errorf("after event: %v, want 6", res.States[1:])
	}
}

func TestNewLangevin_Validation(t *testing.T) {
	if _, err := NewLangevin(&birthDeath{}, 1, 0); err == nil {
		t.Error("expected error for zero dt")
	}
	if _, err := NewLangevin(&birthDeath{}, 0, 1); err == nil {
		t.Error("expected error for zero volume")
	}
}

func TestEnsemble_Deterministic(t *testing.T) {
	base := Ensemble{Net: &birthDeath{kb: 1, kd: 0.1}, Volume: 10, Dt: 0.05, Seed: 42, CV: 0.2}
	tspan := []float64{0, 1, 2, 5}

	serial := base
	serial.Workers = 1
	a, err := serial.Run(context.Background(), 6, ode.State{3}, tspan)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	parallel := base
	parallel.Workers = 4
	b, err := parallel.Run(context.Background(), 6, ode.State{3}, tspan)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !reflect.DeepEqual(a, b) {
		t.Error("results depend on worker count")
	}
	if len(a) != 6 || len(a[0]) != len(tspan) || len(a[0][0]) != 1 {
		t.Fatalf("shape = [%d][%d][%d]", len(a), len(a[0]), len(a[0][0]))
	}
	if reflect.DeepEqual(a[0], a[1]) {
		t.Error("cells with different seeds produced identical trajectories")
	}
	if a[0][0][0] == a[1][0][0] {
		t.Error("initial variability not applied")
	}
}

func TestEnsemble_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := Ensemble{Net: &birthDeath{kb: 1, kd: 0.1}, Volume: 10, Dt: 0.05}
	if _, err := e.Run(ctx, 3, ode.State{1}, []float64{0, 1}); err == nil {
		t.Error("expected cancellation error")
	}
}

func TestPerturb_MeanOne(t *testing.T) {
	rng := newRand(3)
	x0 := ode.State{0, 10}
	sum := 0.0
	const n = 20000
	for i := 0; i < n; i++ {
		x := perturb(x0, 0.3, rng)
		if x[0] != 0 {
			t.Fatal("zero entries must stay zero")
		}
		sum += x[1]
	}
	if mean := sum / n; math.Abs(mean-10) > 0.15 {
		t.Errorf("mean = %f, want ~10", mean)
	}
}
