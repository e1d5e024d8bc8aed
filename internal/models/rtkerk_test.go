package models_test

import (
	"context"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mapksim/internal/models"
	"github.com/san-kum/mapksim/internal/ode"
	"github.com/san-kum/mapksim/internal/rules"
)

var _ = Describe("RTKERK", func() {
	var (
		model *rules.Model
		net   *rules.Network
	)

	BeforeEach(func() {
		var err error
		model, err = models.RTKERK()
		Expect(err).NotTo(HaveOccurred())
		net, err = rules.Generate(context.Background(), model, rules.GenerateOptions{})
		Expect(err).NotTo(HaveOccurred())
	})

	It("declares every readout", func() {
		Expect(net.ObservableNames()).To(ConsistOf(
			"Diff_Cells", "AP1_Active", "Drug_Effect", "ERK_P", "BRAF_active", "Cell_diff",
			"MEK_ERK_Oscillation", "RTK_Feedback", "ERK_Activity_Cycle", "MEK_PP", "RAS_GTP", "SOS_P",
		))
		for _, name := range append(models.TrajectoryObservables, models.PopulationObservables...) {
			_, ok := net.Observable(name)
			Expect(ok).To(BeTrue(), name)
		}
	})

	It("always declares the mutant BRAF pool", func() {
		Expect(model.HasParameter("BRAF_mut_0")).To(BeTrue())
		Expect(model.Defaults()).To(HaveKey("MEKi_0"))
		Expect(model.Defaults()).To(HaveKey("EGF_0"))
		Expect(model.Defaults()).To(HaveKey("RAFi_0"))
	})

	It("generates a bounded network where every observable can be non-zero", func() {
		Expect(len(net.Species)).To(BeNumerically("<", 200))
		Expect(len(net.Reactions)).To(BeNumerically(">", len(model.Rules)))
		for _, o := range net.Observables {
			total := 0.0
			for _, w := range o.Weights {
				total += w
			}
			Expect(total).To(BeNumerically(">", 0), o.Name)
		}
	})

	It("binds every rate to a declared parameter", func() {
		_, err := net.System(model.Defaults())
		Expect(err).NotTo(HaveOccurred())
	})

	It("conserves total MEK and ERK", func() {
		sys, err := net.System(model.Defaults())
		Expect(err).NotTo(HaveOccurred())

		x := make(ode.State, sys.Dim())
		for i := range x {
			x[i] = 0.5 + float64(i%7)
		}
		dx := sys.Derive(x, 0)

		var dERK, dMEK float64
		for i, s := range net.Species {
			if strings.Contains(s, "ERK(") {
				dERK += dx[i]
			}
			if strings.Contains(s, "MEK(") {
				dMEK += dx[i]
			}
		}
		Expect(dERK).To(BeNumerically("~", 0, 1e-9))
		Expect(dMEK).To(BeNumerically("~", 0, 1e-9))
	})

	It("keeps V600E BRAF active", func() {
		for _, r := range net.Reactions {
			if r.Rule != "BRAF_deactivation" {
				continue
			}
			for _, i := range r.Reactants {
				Expect(net.Species[i]).NotTo(ContainSubstring("mut~v600e"))
			}
		}
	})

	It("has a stable fingerprint", func() {
		again, err := models.RTKERK()
		Expect(err).NotTo(HaveOccurred())
		Expect(again.Fingerprint()).To(Equal(model.Fingerprint()))
	})
})

var _ = Describe("ValidateStates", func() {
	It("rejects repeated states", func() {
		m := rules.NewModel("bad")
		Expect(m.AddMonomer("X", []string{"s"}, map[string][]string{"s": {"a", "a"}})).To(Succeed())
		Expect(models.ValidateStates(m)).To(MatchError(models.ErrInvalidStates))
	})

	It("accepts the shipped model", func() {
		m, err := models.RTKERK()
		Expect(err).NotTo(HaveOccurred())
		Expect(models.ValidateStates(m)).To(Succeed())
	})
})
