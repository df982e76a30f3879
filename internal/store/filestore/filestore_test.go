package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/frahmantamala/shiftboard/internal/store"
	"github.com/frahmantamala/shiftboard/internal/store/filestore"
	"github.com/frahmantamala/shiftboard/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestFilestore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Filestore Suite")
}

type counter struct {
	ID    string `json:"id"`
	Left  int    `json:"left"`
	Right int    `json:"right"`
}

func (c counter) Key() string { return c.ID }

var _ = Describe("Filestore backend", func() {
	var (
		ctx     context.Context
		dir     string
		backend *filestore.Backend
	)

	BeforeEach(func() {
		ctx = context.Background()
		root, err := os.MkdirTemp("", "filestore-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, root)

		dir = filepath.Join(root, "data")
		backend = filestore.New(dir, logger.Discard())
	})

	It("reports a missing file as ErrNotExist", func() {
		_, err := backend.Load(ctx, "users")
		Expect(err).To(MatchError(store.ErrNotExist))
	})

	It("creates the data directory lazily and writes pretty JSON", func() {
		coll := store.NewCollection[counter](backend, "counters", nil)
		Expect(coll.WriteAll(ctx, []counter{{ID: "x", Left: 1}})).To(Succeed())

		raw, err := os.ReadFile(filepath.Join(dir, "counters.json"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).To(ContainSubstring("\n  {\n    \"id\": \"x\""))

		entries, err := os.ReadDir(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(1))
	})

	It("surfaces a corrupt file to the caller", func() {
		Expect(os.MkdirAll(dir, 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, "counters.json"), []byte("[{]"), 0o644)).To(Succeed())

		coll := store.NewCollection[counter](backend, "counters", nil)
		_, err := coll.ReadAll(ctx)
		Expect(err).To(MatchError(store.ErrCorrupt))
	})

	It("serialises concurrent read-modify-write cycles on one file", func() {
		records := store.NewRecords(store.NewCollection[counter](backend, "counters", nil))
		Expect(records.Insert(ctx, counter{ID: "c"}, nil)).To(Succeed())

		var wg sync.WaitGroup
		for i := 0; i < 25; i++ {
			wg.Add(2)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				_, err := records.Modify(ctx, "c", func(c *counter) error { c.Left++; return nil })
				Expect(err).NotTo(HaveOccurred())
			}()
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				_, err := records.Modify(ctx, "c", func(c *counter) error { c.Right++; return nil })
				Expect(err).NotTo(HaveOccurred())
			}()
		}
		wg.Wait()

		c, err := records.Get(ctx, "c")
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Left).To(Equal(25))
		Expect(c.Right).To(Equal(25))
	})

	It("survives a reopen", func() {
		coll := store.NewCollection[counter](backend, "counters", nil)
		Expect(coll.WriteAll(ctx, []counter{{ID: "k", Right: 7}})).To(Succeed())

		reopened := store.NewCollection[counter](filestore.New(dir, logger.Discard()), "counters", nil)
		items, err := reopened.ReadAll(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(items).To(Equal([]counter{{ID: "k", Right: 7}}))
	})
})
