package store_test

import (
	"context"
	"errors"
	"sync"

	"github.com/frahmantamala/shiftboard/internal/store"
	"github.com/frahmantamala/shiftboard/internal/store/memory"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Records", func() {
	var (
		ctx     context.Context
		records *store.Records[note]
	)

	BeforeEach(func() {
		ctx = context.Background()
		records = store.NewRecords(store.NewCollection[note](memory.New(), "notes", nil))
		Expect(records.Insert(ctx, note{ID: "a", Title: "first"}, nil)).To(Succeed())
		Expect(records.Insert(ctx, note{ID: "b", Title: "second"}, nil)).To(Succeed())
	})

	It("gets a record by key", func() {
		n, err := records.Get(ctx, "b")
		Expect(err).NotTo(HaveOccurred())
		Expect(n.Title).To(Equal("second"))
	})

	It("reports a missing key as not found", func() {
		_, err := records.Get(ctx, "zzz")
		Expect(err).To(MatchError(store.ErrRecordNotFound))
	})

	It("rejects a duplicate key", func() {
		err := records.Insert(ctx, note{ID: "a", Title: "again"}, nil)
		Expect(err).To(MatchError(store.ErrDuplicateKey))

		all, _ := records.All(ctx)
		Expect(all).To(HaveLen(2))
	})

	It("lets the insert check veto the write", func() {
		taken := errors.New("title taken")
		err := records.Insert(ctx, note{ID: "c", Title: "first"}, func(items []note) error {
			for _, n := range items {
				if n.Title == "first" {
					return taken
				}
			}
			return nil
		})
		Expect(err).To(BeIdenticalTo(taken))
	})

	It("filters and finds", func() {
		out, err := records.Filter(ctx, func(n note) bool { return n.Title == "first" })
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HaveLen(1))

		n, ok, err := records.Find(ctx, func(n note) bool { return n.ID == "b" })
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(n.Title).To(Equal("second"))

		_, ok, err = records.Find(ctx, func(n note) bool { return n.ID == "nope" })
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	Describe("Modify", func() {
		It("persists the change and returns the new value", func() {
			n, err := records.Modify(ctx, "a", func(n *note) error {
				n.Body = "edited"
				return nil
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(n.Body).To(Equal("edited"))

			stored, _ := records.Get(ctx, "a")
			Expect(stored.Body).To(Equal("edited"))
		})

		It("leaves the record untouched when the callback fails", func() {
			_, err := records.Modify(ctx, "a", func(n *note) error {
				n.Title = "half applied"
				return errors.New("rejected")
			})
			Expect(err).To(MatchError("rejected"))

			stored, _ := records.Get(ctx, "a")
			Expect(stored.Title).To(Equal("first"))
		})

		It("fails for an unknown key", func() {
			_, err := records.Modify(ctx, "missing", func(*note) error { return nil })
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})

		It("keeps both of two concurrent edits to different fields", func() {
			var wg sync.WaitGroup
			start := make(chan struct{})
			edit := func(fn func(*note)) {
				defer GinkgoRecover()
				defer wg.Done()
				<-start
				_, err := records.Modify(ctx, "a", func(n *note) error {
					fn(n)
					return nil
				})
				Expect(err).NotTo(HaveOccurred())
			}

			wg.Add(2)
			go edit(func(n *note) { n.Body = "body from one" })
			go edit(func(n *note) { n.Tags = []string{"from-two"} })
			close(start)
			wg.Wait()

			stored, err := records.Get(ctx, "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Body).To(Equal("body from one"))
			Expect(stored.Tags).To(Equal([]string{"from-two"}))
		})
	})

	Describe("Remove", func() {
		It("is safe to call twice", func() {
			removed, err := records.Remove(ctx, "a", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(removed.ID).To(Equal("a"))

			_, err = records.Remove(ctx, "a", nil)
			Expect(err).To(MatchError(store.ErrRecordNotFound))

			all, err := records.All(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(ConsistOf(note{ID: "b", Title: "second"}))
		})

		It("honours the guard", func() {
			_, err := records.Remove(ctx, "a", func(note) error { return errors.New("locked") })
			Expect(err).To(MatchError("locked"))

			all, _ := records.All(ctx)
			Expect(all).To(HaveLen(2))
		})

		It("removes every match with RemoveWhere", func() {
			n, err := records.RemoveWhere(ctx, func(note) bool { return true })
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(2))

			all, _ := records.All(ctx)
			Expect(all).To(BeEmpty())
		})
	})
})
