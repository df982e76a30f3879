package events_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/frahmantamala/shiftboard/internal/core/events"
	"github.com/frahmantamala/shiftboard/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestEvents(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Events Suite")
}

var _ = Describe("EventBus", func() {
	var bus *events.EventBus

	BeforeEach(func() {
		bus = events.NewEventBus(logger.Discard())
	})

	It("runs every subscriber of the published type", func() {
		var calls int32
		for i := 0; i < 3; i++ {
			bus.Subscribe(events.EventTypeSchedulePublished, func(ctx context.Context, e events.Event) error {
				atomic.AddInt32(&calls, 1)
				return nil
			})
		}
		bus.Subscribe(events.EventTypeScheduleUnpublished, func(ctx context.Context, e events.Event) error {
			Fail("unexpected handler")
			return nil
		})

		event := events.NewSchedulePublishedEvent("sched-1", "owner-1", "W5", "2025-01-27", "2025-02-02", []string{"emp-1"})
		Expect(bus.Publish(context.Background(), event)).To(Succeed())
		Expect(bus.Wait(context.Background())).To(Succeed())
		Expect(atomic.LoadInt32(&calls)).To(Equal(int32(3)))
	})

	It("hands handlers a context that outlives the publisher", func() {
		errs := make(chan error, 1)
		bus.Subscribe(events.EventTypeSchedulePublished, func(ctx context.Context, e events.Event) error {
			time.Sleep(10 * time.Millisecond)
			errs <- ctx.Err()
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		Expect(bus.Publish(ctx, events.NewSchedulePublishedEvent("sched-1", "owner-1", "W5", "", "", nil))).To(Succeed())
		cancel()

		Eventually(errs).Should(Receive(BeNil()))
	})

	It("does not report asynchronous handler failures to the publisher", func() {
		bus.Subscribe(events.EventTypeScheduleGenerated, func(ctx context.Context, e events.Event) error {
			return errors.New("boom")
		})

		Expect(bus.Publish(context.Background(), events.NewScheduleGeneratedEvent("sched-1", "owner-1", "W5", "", "", nil))).To(Succeed())
		Expect(bus.Wait(context.Background())).To(Succeed())
	})

	It("survives a panicking handler", func() {
		var after int32
		bus.Subscribe(events.EventTypeSchedulePublished, func(ctx context.Context, e events.Event) error {
			panic("nil roster")
		})
		bus.Subscribe(events.EventTypeSchedulePublished, func(ctx context.Context, e events.Event) error {
			atomic.AddInt32(&after, 1)
			return nil
		})

		Expect(bus.Publish(context.Background(), events.NewSchedulePublishedEvent("sched-1", "owner-1", "W5", "", "", nil))).To(Succeed())
		Expect(bus.Wait(context.Background())).To(Succeed())
		Expect(atomic.LoadInt32(&after)).To(Equal(int32(1)))
	})

	It("stops at the first failing handler when synchronous", func() {
		var second bool
		bus.Subscribe(events.EventTypeScheduleGenerated, func(ctx context.Context, e events.Event) error {
			return errors.New("boom")
		})
		bus.Subscribe(events.EventTypeScheduleGenerated, func(ctx context.Context, e events.Event) error {
			second = true
			return nil
		})

		err := bus.PublishSync(context.Background(), events.NewScheduleGeneratedEvent("sched-1", "owner-1", "W5", "", "", nil))
		Expect(err).To(MatchError(ContainSubstring("schedule.generated")))
		Expect(second).To(BeFalse())
	})

	It("gives up waiting when the context ends", func() {
		release := make(chan struct{})
		defer close(release)
		bus.Subscribe(events.EventTypeSchedulePublished, func(ctx context.Context, e events.Event) error {
			<-release
			return nil
		})
		Expect(bus.Publish(context.Background(), events.NewSchedulePublishedEvent("sched-1", "owner-1", "W5", "", "", nil))).To(Succeed())

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		Expect(bus.Wait(ctx)).To(MatchError(context.DeadlineExceeded))
	})

	It("carries the schedule fields in the payload", func() {
		event := events.NewScheduleUnpublishedEvent("sched-1", "owner-1", "W5", "2025-01-27", "2025-02-02", []string{"emp-1", "emp-2"})

		Expect(event.EventID()).NotTo(BeEmpty())
		Expect(event.EventType()).To(Equal(events.EventTypeScheduleUnpublished))
		Expect(event.Payload()).To(HaveKeyWithValue("schedule_id", "sched-1"))
		Expect(event.Payload()).To(HaveKeyWithValue("employee_ids", []string{"emp-1", "emp-2"}))
	})
})
