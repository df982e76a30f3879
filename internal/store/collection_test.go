package store_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/frahmantamala/shiftboard/internal/store"
	"github.com/frahmantamala/shiftboard/internal/store/memory"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Collection", func() {
	var (
		ctx     context.Context
		backend *memory.Backend
		notes   *store.Collection[note]
	)

	BeforeEach(func() {
		ctx = context.Background()
		backend = memory.New()
		notes = store.NewCollection[note](backend, "notes", nil)
	})

	Describe("ReadAll", func() {
		It("initialises a missing collection with an empty array", func() {
			items, err := notes.ReadAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).NotTo(BeNil())
			Expect(items).To(BeEmpty())

			raw, err := backend.Load(ctx, "notes")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(raw)).To(Equal("[]\n"))
		})

		It("seeds defaults on first access only", func() {
			calls := 0
			seeded := store.NewCollection[note](backend, "seeded", func() []note {
				calls++
				return []note{{ID: "demo", Title: "Demo"}}
			})

			items, err := seeded.ReadAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(ConsistOf(note{ID: "demo", Title: "Demo"}))

			Expect(seeded.WriteAll(ctx, []note{})).To(Succeed())
			items, err = seeded.ReadAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(BeEmpty())
			Expect(calls).To(Equal(1))
		})

		It("returns a typed error for a corrupt document instead of an empty list", func() {
			backend.Put("notes", []byte(`[{"id": "1", "title": `))

			items, err := notes.ReadAll(ctx)
			Expect(items).To(BeNil())
			Expect(err).To(MatchError(store.ErrCorrupt))

			var se *store.Error
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.Collection).To(Equal("notes"))
			Expect(store.IsStoreError(err)).To(BeTrue())
		})

		It("treats a zero byte document as corrupt", func() {
			backend.Put("notes", []byte{})

			_, err := notes.ReadAll(ctx)
			Expect(err).To(MatchError(store.ErrCorrupt))
		})

		It("reads a JSON null as an empty collection", func() {
			backend.Put("notes", []byte("null"))

			items, err := notes.ReadAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(BeEmpty())
		})
	})

	Describe("WriteAll", func() {
		It("round-trips records including unset optional fields", func() {
			pinned := true
			written := []note{
				{ID: "1", Title: "bare"},
				{ID: "2", Title: "full", Body: "text", Tags: []string{"a", "b"}, Meta: &meta{Color: "red", Pin: &pinned}},
				{ID: "3", Title: "partial", Meta: &meta{}},
			}
			Expect(notes.WriteAll(ctx, written)).To(Succeed())

			read, err := notes.ReadAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(read).To(Equal(written))
			Expect(read[0].Meta).To(BeNil())
			Expect(read[0].Tags).To(BeNil())
		})

		It("writes an empty array rather than null", func() {
			Expect(notes.WriteAll(ctx, nil)).To(Succeed())

			raw, err := backend.Load(ctx, "notes")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(raw)).To(Equal("[]\n"))
		})
	})

	Describe("Update", func() {
		It("returns the callback error unchanged and writes nothing", func() {
			Expect(notes.WriteAll(ctx, []note{{ID: "1", Title: "keep"}})).To(Succeed())
			boom := errors.New("boom")

			err := notes.Update(ctx, func(items []note) ([]note, error) {
				items[0].Title = "changed"
				return nil, boom
			})
			Expect(err).To(BeIdenticalTo(boom))

			items, err := notes.ReadAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(items[0].Title).To(Equal("keep"))
		})

		It("refuses to rewrite a corrupt document", func() {
			backend.Put("notes", []byte("{oops"))

			called := false
			err := notes.Update(ctx, func(items []note) ([]note, error) {
				called = true
				return items, nil
			})
			Expect(err).To(MatchError(store.ErrCorrupt))
			Expect(called).To(BeFalse())

			raw, _ := backend.Load(ctx, "notes")
			Expect(string(raw)).To(Equal("{oops"))
		})

		It("applies concurrent updates without losing any", func() {
			Expect(notes.WriteAll(ctx, []note{})).To(Succeed())

			var wg sync.WaitGroup
			for i := 0; i < 40; i++ {
				wg.Add(1)
				go func(i int) {
					defer GinkgoRecover()
					defer wg.Done()
					err := notes.Update(ctx, func(items []note) ([]note, error) {
						return append(items, note{ID: fmt.Sprint(i)}), nil
					})
					Expect(err).NotTo(HaveOccurred())
				}(i)
			}
			wg.Wait()

			items, err := notes.ReadAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(40))
		})
	})
})
