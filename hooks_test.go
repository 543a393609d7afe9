package bbtrace_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/skipor/bbtrace"
	"github.com/skipor/bbtrace/trace"
)

var _ = Describe("Broker", func() {
	var b *bbtrace.Broker
	BeforeEach(func() { b = bbtrace.NewBroker() })

	It("delivers block events in registration order", func() {
		var order []int
		b.RegisterBlock(func(trace.Event) { order = append(order, 1) })
		b.RegisterBlock(func(trace.Event) { order = append(order, 2) })
		b.EmitBlock(trace.Event{Block: 0x10})
		b.EmitBlock(trace.Event{Block: 0x20})
		Expect(order).To(Equal([]int{1, 2, 1, 2}))
	})

	It("passes the event to hooks", func() {
		var got trace.Event
		b.RegisterBlock(func(ev trace.Event) { got = ev })
		b.EmitBlock(trace.Event{TID: 3, Block: 0x4005d0})
		Expect(got).To(Equal(trace.Event{TID: 3, Block: 0x4005d0}))
	})

	It("ignores nil hooks", func() {
		b.RegisterBlock(nil)
		b.RegisterExit(nil)
		b.EmitBlock(trace.Event{})
		b.EmitExit()
	})

	Context("exit notification", func() {
		It("fires exit hooks once in registration order", func() {
			var order []int
			b.RegisterExit(func() { order = append(order, 1) })
			b.RegisterExit(func() { order = append(order, 2) })
			b.EmitExit()
			Expect(order).To(Equal([]int{1, 2}))
		})

		It("forbids block events after exit", func() {
			b.EmitExit()
			Expect(func() { b.EmitBlock(trace.Event{}) }).To(Panic())
		})

		It("forbids double exit", func() {
			b.EmitExit()
			Expect(func() { b.EmitExit() }).To(Panic())
		})

		It("forbids late registration", func() {
			b.EmitExit()
			Expect(func() { b.RegisterBlock(func(trace.Event) {}) }).To(Panic())
		})
	})
})
