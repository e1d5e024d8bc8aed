package rules_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mapksim/internal/rules"
)

func toyModel() *rules.Model {
	m := rules.NewModel("toy")
	Expect(m.AddMonomer("L", []string{"r"}, nil)).To(Succeed())
	Expect(m.AddMonomer("R", []string{"l", "y"}, map[string][]string{"y": {"u", "p"}})).To(Succeed())
	Expect(m.AddMonomer("E", []string{"s"}, nil)).To(Succeed())
	for _, p := range []string{"kon", "koff", "kp", "kdp", "ksyn", "kdeg", "L_0", "R_0"} {
		Expect(m.AddParameter(p, 1)).To(Succeed())
	}
	return m
}

var _ = Describe("Model", func() {
	var m *rules.Model

	BeforeEach(func() {
		m = toyModel()
	})

	It("rejects duplicate monomers", func() {
		Expect(m.AddMonomer("L", nil, nil)).To(MatchError(rules.ErrDuplicateMonomer))
	})

	It("rejects states on undeclared sites", func() {
		err := m.AddMonomer("X", []string{"a"}, map[string][]string{"b": {"u"}})
		Expect(err).To(MatchError(rules.ErrUnknownSite))
	})

	DescribeTable("validates rules against declarations",
		func(expr string, want error) {
			Expect(m.AddRule("r", expr, "kon", "")).To(MatchError(want))
		},
		Entry("unknown monomer", "Q() -> 0", rules.ErrUnknownMonomer),
		Entry("unknown site", "R(z) -> R(z)", rules.ErrUnknownSite),
		Entry("unknown state", "R(y~x) -> R(y~p)", rules.ErrUnknownState),
		Entry("state on stateless site", "L(r~p) -> L(r)", rules.ErrUnknownState),
		Entry("same type twice on a side", "R(l) + R(y~u) -> R(l)", rules.ErrDuplicateMonomer),
		Entry("dangling bond label", "L(r!1) -> L(r)", rules.ErrParse),
	)

	It("requires declared rate parameters", func() {
		Expect(m.AddRule("r", "R(y~u) -> R(y~p)", "nope", "")).To(MatchError(rules.ErrUnknownParameter))
	})

	It("requires a reverse rate exactly for reversible rules", func() {
		Expect(m.AddRule("a", "L(r) + R(l) <-> L(r!1).R(l!1)", "kon", "")).To(MatchError(rules.ErrParse))
		Expect(m.AddRule("b", "R(y~u) -> R(y~p)", "kp", "kdp")).To(MatchError(rules.ErrParse))
	})

	It("rejects wildcard bonds on created molecules", func() {
		Expect(m.AddRule("syn", "0 -> E(s!+)", "ksyn", "")).To(MatchError(rules.ErrParse))
	})

	It("requires initial species to be concrete", func() {
		Expect(m.AddInitial("R(l!+)", "R_0")).To(MatchError(rules.ErrParse))
		Expect(m.AddInitial("L(r).R(l)", "R_0")).To(MatchError(rules.ErrParse))
		Expect(m.AddInitial("R(l,y~u)", "missing")).To(MatchError(rules.ErrUnknownParameter))
		Expect(m.AddInitial("R(l,y~u)", "R_0")).To(Succeed())
	})

	It("changes defaults through SetParameter", func() {
		Expect(m.SetParameter("kon", 3)).To(Succeed())
		Expect(m.Defaults()).To(HaveKeyWithValue("kon", 3.0))
		Expect(m.SetParameter("nope", 1)).To(MatchError(rules.ErrUnknownParameter))
	})

	Describe("Fingerprint", func() {
		It("ignores parameter values", func() {
			before := m.Fingerprint()
			Expect(m.SetParameter("kon", 42)).To(Succeed())
			Expect(m.Fingerprint()).To(Equal(before))
		})

		It("changes with the rule set", func() {
			before := m.Fingerprint()
			Expect(m.AddRule("phos", "R(y~u) -> R(y~p)", "kp", "")).To(Succeed())
			Expect(m.Fingerprint()).NotTo(Equal(before))
			Expect(m.Fingerprint()).To(HaveLen(16))
		})
	})
})
