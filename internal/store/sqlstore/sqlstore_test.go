package sqlstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/frahmantamala/shiftboard/internal/core/datamodel/document"
	"github.com/frahmantamala/shiftboard/internal/store"
	"github.com/frahmantamala/shiftboard/internal/store/sqlstore"
	"github.com/frahmantamala/shiftboard/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestSQLStore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "SQL Store Suite")
}

type shift struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

func (s shift) Key() string { return s.ID }

var _ = Describe("SQL backend", func() {
	var (
		ctx     context.Context
		db      *gorm.DB
		backend *sqlstore.Backend
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		// every connection to :memory: is its own database
		sqlDB.SetMaxOpenConns(1)

		backend = sqlstore.New(db, logger.Discard())
		Expect(backend.Migrate()).To(Succeed())
		DeferCleanup(backend.Close)
	})

	It("reports an absent collection as ErrNotExist", func() {
		_, err := backend.Load(ctx, "schedules")
		Expect(err).To(MatchError(store.ErrNotExist))
	})

	It("upserts the document row", func() {
		Expect(backend.Save(ctx, "schedules", []byte("[]"))).To(Succeed())
		Expect(backend.Save(ctx, "schedules", []byte(`[{"id":"1"}]`))).To(Succeed())

		var rows []document.Collection
		Expect(db.Find(&rows).Error).To(Succeed())
		Expect(rows).To(HaveLen(1))
		Expect(rows[0].Data).To(Equal(`[{"id":"1"}]`))
	})

	It("runs typed records on top of the table", func() {
		records := store.NewRecords(store.NewCollection[shift](backend, "shifts", nil))
		Expect(records.Insert(ctx, shift{ID: "s1", Role: "Serveur"}, nil)).To(Succeed())
		Expect(records.Insert(ctx, shift{ID: "s2", Role: "Commis"}, nil)).To(Succeed())

		_, err := records.Modify(ctx, "s2", func(s *shift) error {
			s.Role = "Cuisinier"
			return nil
		})
		Expect(err).NotTo(HaveOccurred())

		all, err := records.All(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(Equal([]shift{{ID: "s1", Role: "Serveur"}, {ID: "s2", Role: "Cuisinier"}}))
	})

	It("rolls back when the mutation fails", func() {
		Expect(backend.Save(ctx, "shifts", []byte(`[{"id":"s1","role":"Serveur"}]`))).To(Succeed())

		veto := errors.New("veto")
		err := backend.Mutate(ctx, "shifts", func(current []byte) ([]byte, error) {
			return nil, veto
		})
		Expect(err).To(MatchError(veto))

		raw, err := backend.Load(ctx, "shifts")
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).To(Equal(`[{"id":"s1","role":"Serveur"}]`))
	})

	It("answers pings", func() {
		Expect(backend.Ping(ctx)).To(Succeed())
	})
})
