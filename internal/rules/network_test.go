package rules_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mapksim/internal/ode"
	"github.com/san-kum/mapksim/internal/rules"
	"gonum.org/v1/gonum/mat"
)

func bindingModel() *rules.Model {
	m := toyModel()
	Expect(m.AddRule("bind", "L(r) + R(l) <-> L(r!1).R(l!1)", "kon", "koff")).To(Succeed())
	Expect(m.AddRule("phos", "L(r!1).R(l!1,y~u) -> L(r!1).R(l!1,y~p)", "kp", "")).To(Succeed())
	Expect(m.AddRule("dephos", "R(y~p) -> R(y~u)", "kdp", "")).To(Succeed())
	Expect(m.AddObservable("R_P", "R(y~p)")).To(Succeed())
	Expect(m.AddObservable("Bound", "L(r!1).R(l!1)")).To(Succeed())
	Expect(m.AddInitial("L(r)", "L_0")).To(Succeed())
	Expect(m.AddInitial("R(l,y~u)", "R_0")).To(Succeed())
	return m
}

var _ = Describe("Generate", func() {
	var (
		ctx context.Context
		net *rules.Network
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		net, err = rules.Generate(ctx, bindingModel(), rules.GenerateOptions{})
		Expect(err).NotTo(HaveOccurred())
	})

	It("reaches the fixed point of the rule set", func() {
		Expect(net.Species).To(ConsistOf(
			"L(r)",
			"R(l,y~u)",
			"L(r!1).R(l!1,y~u)",
			"L(r!1).R(l!1,y~p)",
			"R(l,y~p)",
		))
		Expect(net.Reactions).To(HaveLen(7))
	})

	It("names reverse reactions after their rule", func() {
		var names []string
		for _, r := range net.Reactions {
			names = append(names, r.Rule)
		}
		Expect(names).To(ContainElement("bind_rev"))
		Expect(names).To(ContainElement("phos"))
	})

	It("keeps the seed species first", func() {
		Expect(net.Species[0]).To(Equal("L(r)"))
		Expect(net.Species[1]).To(Equal("R(l,y~u)"))
		Expect(net.Seeds).To(Equal([]rules.SeedSpecies{{Species: 0, Param: "L_0"}, {Species: 1, Param: "R_0"}}))
	})

	It("weights observables by matching species", func() {
		w, ok := net.Observable("R_P")
		Expect(ok).To(BeTrue())
		for i, s := range net.Species {
			switch s {
			case "R(l,y~p)", "L(r!1).R(l!1,y~p)":
				Expect(w[i]).To(Equal(1.0), s)
			default:
				Expect(w[i]).To(BeZero(), s)
			}
		}
	})

	It("is deterministic", func() {
		again, err := rules.Generate(ctx, bindingModel(), rules.GenerateOptions{})
		Expect(err).NotTo(HaveOccurred())
		Expect(again).To(Equal(net))
	})

	It("stops at the species limit", func() {
		_, err := rules.Generate(ctx, bindingModel(), rules.GenerateOptions{MaxSpecies: 3})
		Expect(err).To(MatchError(rules.ErrNetworkTooLarge))
	})

	It("honours cancellation", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := rules.Generate(cctx, bindingModel(), rules.GenerateOptions{})
		Expect(err).To(MatchError(context.Canceled))
	})

	It("builds the initial state from seed parameters", func() {
		x, err := net.InitialState(rules.ParameterSet{"L_0": 2, "R_0": 5})
		Expect(err).NotTo(HaveOccurred())
		Expect(x).To(HaveLen(len(net.Species)))
		Expect(x[0]).To(Equal(2.0))
		Expect(x[1]).To(Equal(5.0))

		_, err = net.InitialState(rules.ParameterSet{"L_0": 2})
		Expect(err).To(MatchError(rules.ErrUnknownParameter))
	})

	It("survives the cache encoding", func() {
		data, err := net.MarshalBinary()
		Expect(err).NotTo(HaveOccurred())

		var decoded rules.Network
		Expect(decoded.UnmarshalBinary(data)).To(Succeed())
		Expect(&decoded).To(Equal(net))

		Expect(decoded.UnmarshalBinary([]byte(`{"species":["A()"],"reactions":[{"rule":"x","reactants":[3]}]}`))).NotTo(Succeed())
	})
})

var _ = Describe("synthesis and degradation", func() {
	It("creates molecules in their default state and removes whole species", func() {
		m := toyModel()
		Expect(m.AddRule("syn", "0 -> R(l)", "ksyn", "")).To(Succeed())
		Expect(m.AddRule("bind", "L(r) + R(l) -> L(r!1).R(l!1)", "kon", "")).To(Succeed())
		Expect(m.AddRule("deg", "R() -> 0", "kdeg", "")).To(Succeed())
		Expect(m.AddInitial("L(r)", "L_0")).To(Succeed())

		net, err := rules.Generate(context.Background(), m, rules.GenerateOptions{})
		Expect(err).NotTo(HaveOccurred())
		Expect(net.Species).To(ConsistOf("L(r)", "R(l,y~u)", "L(r!1).R(l!1,y~u)"))

		var degradedComplex bool
		for _, r := range net.Reactions {
			if r.Rule == "deg" && net.Species[r.Reactants[0]] == "L(r!1).R(l!1,y~u)" {
				degradedComplex = true
				Expect(r.Products).To(BeEmpty())
			}
			if r.Rule == "syn" {
				Expect(r.Reactants).To(BeEmpty())
			}
		}
		Expect(degradedComplex).To(BeTrue())
	})
})

var _ = Describe("one molecule per type", func() {
	It("skips reactions that would join two molecules of one type", func() {
		m := rules.NewModel("dup")
		Expect(m.AddMonomer("A", []string{"x", "w"}, nil)).To(Succeed())
		Expect(m.AddMonomer("B", []string{"y", "z"}, nil)).To(Succeed())
		Expect(m.AddParameter("k", 1)).To(Succeed())
		Expect(m.AddParameter("A_0", 1)).To(Succeed())
		Expect(m.AddParameter("B_0", 1)).To(Succeed())
		Expect(m.AddRule("ab", "A(x) + B(y) -> A(x!1).B(y!1)", "k", "")).To(Succeed())
		Expect(m.AddRule("bridge", "A(x!+,w) + B(z) -> A(x!+,w!1).B(z!1)", "k", "")).To(Succeed())
		Expect(m.AddInitial("A(x,w)", "A_0")).To(Succeed())
		Expect(m.AddInitial("B(y,z)", "B_0")).To(Succeed())

		net, err := rules.Generate(context.Background(), m, rules.GenerateOptions{})
		Expect(err).NotTo(HaveOccurred())
		Expect(net.Species).To(ConsistOf("A(w,x)", "B(y,z)", "A(w,x!1).B(y!1,z)"))
		Expect(net.Reactions).To(HaveLen(1))
	})
})

var _ = Describe("MassAction", func() {
	var (
		net    *rules.Network
		params rules.ParameterSet
	)

	BeforeEach(func() {
		m := bindingModel()
		var err error
		net, err = rules.Generate(context.Background(), m, rules.GenerateOptions{})
		Expect(err).NotTo(HaveOccurred())
		params = m.Defaults()
		params["kon"] = 0.5
		params["kp"] = 2
	})

	It("conserves total receptor", func() {
		sys, err := net.System(params)
		Expect(err).NotTo(HaveOccurred())

		x := ode.State{1, 2, 0.3, 0.4, 0.5}
		dx := sys.Derive(x, 0)

		total := 0.0
		for i, s := range net.Species {
			if s != "L(r)" {
				total += dx[i]
			}
		}
		Expect(total).To(BeNumerically("~", 0, 1e-12))
	})

	It("provides an analytic Jacobian matching finite differences", func() {
		sys, err := net.System(params)
		Expect(err).NotTo(HaveOccurred())

		x := ode.State{1, 2, 0.3, 0.4, 0.5}
		n := sys.Dim()
		analytic := mat.NewDense(n, n, nil)
		numeric := mat.NewDense(n, n, nil)
		sys.Jacobian(x, 0, analytic)
		ode.NumericJacobian(sys, x, 0, numeric)

		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				Expect(analytic.At(i, j)).To(BeNumerically("~", numeric.At(i, j), 1e-5))
			}
		}
	})

	It("exposes propensities and stoichiometry", func() {
		sys, err := net.System(params)
		Expect(err).NotTo(HaveOccurred())
		Expect(sys.NumReactions()).To(Equal(len(net.Reactions)))

		x := ode.State{1, 2, 0.3, 0.4, 0.5}
		a := make([]float64, sys.NumReactions())
		sys.Propensities(x, a)
		for j, r := range net.Reactions {
			if r.Rule == "bind" && len(r.Reactants) == 2 {
				Expect(a[j]).To(BeNumerically("~", 0.5*x[r.Reactants[0]]*x[r.Reactants[1]], 1e-12))
				species, coef := sys.Stoichiometry(j)
				Expect(species).To(HaveLen(3))
				Expect(coef).To(ContainElement(1.0))
			}
		}
	})

	It("requires every rate parameter", func() {
		delete(params, "kp")
		_, err := net.System(params)
		Expect(err).To(MatchError(rules.ErrUnknownParameter))
	})

	It("evaluates observables", func() {
		x := make([]float64, len(net.Species))
		for i, s := range net.Species {
			if s == "L(r!1).R(l!1,y~p)" {
				x[i] = 3
			}
			if s == "R(l,y~p)" {
				x[i] = 1
			}
		}
		obs := net.ObservableValues(x)
		Expect(net.ObservableNames()).To(Equal([]string{"R_P", "Bound"}))
		Expect(obs).To(Equal([]float64{4, 3}))
	})
})
