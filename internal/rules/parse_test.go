package rules_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mapksim/internal/rules"
)

var _ = Describe("ParseComplex", func() {
	It("parses sites, states and bonds", func() {
		cp, err := rules.ParseComplex("A(x~p,b!1).B(a!1,c!+,d!?)")
		Expect(err).NotTo(HaveOccurred())
		Expect(cp.Monomers).To(HaveLen(2))

		a := cp.Monomers[0]
		Expect(a.Name).To(Equal("A"))
		Expect(a.Sites).To(Equal([]rules.SitePattern{
			{Site: "x", State: "p", Bond: rules.BondFree},
			{Site: "b", Bond: rules.BondLabel, Label: 1},
		}))

		b := cp.Monomers[1]
		Expect(b.Sites[1].Bond).To(Equal(rules.BondWild))
		Expect(b.Sites[2].Bond).To(Equal(rules.BondAny))
	})

	It("accepts bare monomer names", func() {
		cp, err := rules.ParseComplex("EGF")
		Expect(err).NotTo(HaveOccurred())
		Expect(cp.Monomers[0].Name).To(Equal("EGF"))
		Expect(cp.Monomers[0].Sites).To(BeEmpty())
	})

	It("round-trips through String", func() {
		text := "A(x~p,b!1).B(a!1,c!+)"
		cp, err := rules.ParseComplex(text)
		Expect(err).NotTo(HaveOccurred())
		Expect(cp.String()).To(Equal(text))
	})

	DescribeTable("rejects malformed patterns",
		func(text string) {
			_, err := rules.ParseComplex(text)
			Expect(err).To(MatchError(rules.ErrParse))
		},
		Entry("unbalanced", "A(x"),
		Entry("empty term", "A()..B()"),
		Entry("bad bond", "A(x!z)"),
		Entry("zero bond", "A(x!0)"),
		Entry("bad name", "1A()"),
		Entry("empty", "  "),
	)
})

var _ = Describe("ParseRule", func() {
	It("splits reactants and products", func() {
		lhs, rhs, rev, err := rules.ParseRule("A(b) + B(a) <-> A(b!1).B(a!1)")
		Expect(err).NotTo(HaveOccurred())
		Expect(rev).To(BeTrue())
		Expect(lhs).To(HaveLen(2))
		Expect(rhs).To(HaveLen(1))
	})

	It("does not split on bond wildcards", func() {
		lhs, rhs, rev, err := rules.ParseRule("A(b!+,x~u) -> A(b!+,x~p)")
		Expect(err).NotTo(HaveOccurred())
		Expect(rev).To(BeFalse())
		Expect(lhs).To(HaveLen(1))
		Expect(rhs).To(HaveLen(1))
	})

	It("treats 0 as the empty side", func() {
		lhs, rhs, _, err := rules.ParseRule("0 -> A(x~u)")
		Expect(err).NotTo(HaveOccurred())
		Expect(lhs).To(BeEmpty())
		Expect(rhs).To(HaveLen(1))

		lhs, rhs, _, err = rules.ParseRule("A() -> 0")
		Expect(err).NotTo(HaveOccurred())
		Expect(lhs).To(HaveLen(1))
		Expect(rhs).To(BeEmpty())
	})

	It("requires an arrow", func() {
		_, _, _, err := rules.ParseRule("A() + B()")
		Expect(err).To(MatchError(rules.ErrParse))
	})
})
