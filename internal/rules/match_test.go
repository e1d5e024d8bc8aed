package rules_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mapksim/internal/rules"
)

var _ = Describe("Species", func() {
	var m *rules.Model

	BeforeEach(func() {
		m = toyModel()
	})

	It("canonicalises molecule and site order and bond numbering", func() {
		a, err := m.Species("R(y~p,l!7).L(r!7)")
		Expect(err).NotTo(HaveOccurred())
		b, err := m.Species("L(r!1).R(l!1,y~p)")
		Expect(err).NotTo(HaveOccurred())
		Expect(a.String()).To(Equal("L(r!1).R(l!1,y~p)"))
		Expect(a.String()).To(Equal(b.String()))
	})

	It("fills omitted sites with defaults", func() {
		s, err := m.Species("R()")
		Expect(err).NotTo(HaveOccurred())
		Expect(s.String()).To(Equal("R(l,y~u)"))
	})
})

var _ = Describe("Matches", func() {
	var (
		m       *rules.Model
		complex *rules.Species
		free    *rules.Species
	)

	BeforeEach(func() {
		m = toyModel()
		var err error
		complex, err = m.Species("L(r!1).R(l!1,y~p)")
		Expect(err).NotTo(HaveOccurred())
		free, err = m.Species("R(l,y~u)")
		Expect(err).NotTo(HaveOccurred())
	})

	DescribeTable("pattern semantics",
		func(pattern string, onComplex, onFree bool) {
			cp, err := rules.ParseComplex(pattern)
			Expect(err).NotTo(HaveOccurred())
			Expect(rules.Matches(cp, complex)).To(Equal(onComplex))
			Expect(rules.Matches(cp, free)).To(Equal(onFree))
		},
		Entry("bare site is unbound", "R(l)", false, true),
		Entry("wildcard needs a bond", "R(l!+)", true, false),
		Entry("don't care", "R(l!?)", true, true),
		Entry("state condition", "R(y~p)", true, false),
		Entry("unmentioned sites are ignored", "R()", true, true),
		Entry("labelled bond", "L(r!1).R(l!1)", true, false),
		Entry("missing molecule", "L()", true, false),
	)
})
