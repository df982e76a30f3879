package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/core/common/fixtures"
	"github.com/frahmantamala/shiftboard/internal/store"
	"github.com/frahmantamala/shiftboard/internal/store/memory"
	"github.com/frahmantamala/shiftboard/internal/user"
	"github.com/frahmantamala/shiftboard/internal/user/storage"
	"github.com/frahmantamala/shiftboard/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Suite")
}

func strPtr(s string) *string { return &s }

var _ = Describe("User Service", func() {
	var (
		ctx     context.Context
		backend *memory.Backend
		clock   *fixtures.Clock
		service *user.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		backend = memory.New()
		clock = fixtures.NewClock(time.Time{})
		service = user.NewService(storage.NewUserRepository(backend), logger.Discard(),
			user.WithClock(clock.Now),
			user.WithIDGenerator(fixtures.NewIDGenerator("user").Next),
			user.WithBCryptCost(bcrypt.MinCost),
		)
	})

	createBistro := func() *user.User {
		u, err := service.Create(ctx, user.CreateUserDTO{
			Email:       "chef@bistro.fr",
			Password:    "motdepasse",
			CompanyName: "Le Bistro",
		})
		Expect(err).NotTo(HaveOccurred())
		return u
	}

	Describe("Create", func() {
		It("stores a hashed password and stamps the record", func() {
			u := createBistro()

			Expect(u.ID).To(Equal("user-1"))
			Expect(u.PasswordHash).NotTo(Equal("motdepasse"))
			Expect(bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("motdepasse"))).To(Succeed())
			Expect(u.CreatedAt).To(Equal(fixtures.ReferenceTime()))
			Expect(u.UpdatedAt).To(Equal(u.CreatedAt))
		})

		It("rejects a second account with the same email", func() {
			createBistro()

			_, err := service.Create(ctx, user.CreateUserDTO{
				Email:       "chef@bistro.fr",
				Password:    "autrepasse",
				CompanyName: "Another",
			})
			Expect(err).To(MatchError(internal.ErrEmailTaken))
		})

		It("treats emails as case-sensitive", func() {
			createBistro()

			_, err := service.Create(ctx, user.CreateUserDTO{
				Email:       "Chef@bistro.fr",
				Password:    "autrepasse",
				CompanyName: "Another",
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("validates input", func() {
			_, err := service.Create(ctx, user.CreateUserDTO{Email: "nope", Password: "short"})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
			details := appErr.Details.(internal.ValidationErrors)
			fields := []string{}
			for _, e := range details.Errors {
				fields = append(fields, e.Field)
			}
			Expect(fields).To(ConsistOf("email", "password", "companyName"))
		})
	})

	Describe("Lookups", func() {
		It("reports an unknown id as not found", func() {
			_, err := service.GetByID(ctx, "missing")
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})

		It("finds by email", func() {
			created := createBistro()
			u, err := service.GetByEmail(ctx, "chef@bistro.fr")
			Expect(err).NotTo(HaveOccurred())
			Expect(u.ID).To(Equal(created.ID))
		})

		It("propagates a corrupt users file instead of listing nobody", func() {
			backend.Put(store.Users, []byte("[{"))

			users, err := service.GetAll(ctx)
			Expect(users).To(BeNil())
			Expect(store.IsStoreError(err)).To(BeTrue())
		})
	})

	Describe("Update", func() {
		It("merges only the provided fields", func() {
			created := createBistro()
			clock.Advance(time.Hour)

			updated, err := service.Update(ctx, created.ID, user.UpdateUserDTO{
				Phone: strPtr("0102030405"),
				Settings: &user.UpdateSettingsDTO{
					Company: &user.CompanySettings{City: "Lyon"},
				},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Phone).To(Equal("0102030405"))
			Expect(updated.CompanyName).To(Equal("Le Bistro"))
			Expect(updated.Settings.Company.City).To(Equal("Lyon"))
			Expect(updated.Settings.Profile).To(BeNil())
			Expect(updated.Settings.Notifications).To(BeNil())
			Expect(updated.UpdatedAt).To(Equal(fixtures.ReferenceTime().Add(time.Hour)))

			reread, err := service.GetByID(ctx, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(reread).To(Equal(updated))
		})

		It("fails for an unknown id", func() {
			_, err := service.Update(ctx, "ghost", user.UpdateUserDTO{Phone: strPtr("1")})
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})

		It("rejects a blank company name", func() {
			created := createBistro()
			_, err := service.Update(ctx, created.ID, user.UpdateUserDTO{CompanyName: strPtr("  ")})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Passwords", func() {
		It("changes the password only when the current one matches", func() {
			created := createBistro()

			err := service.ChangePassword(ctx, created.ID, user.ChangePasswordDTO{CurrentPassword: "wrong-one", NewPassword: "nouveaupasse"})
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))

			Expect(service.ChangePassword(ctx, created.ID, user.ChangePasswordDTO{CurrentPassword: "motdepasse", NewPassword: "nouveaupasse"})).To(Succeed())

			_, err = service.Authenticate(ctx, "chef@bistro.fr", "motdepasse")
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))
			u, err := service.Authenticate(ctx, "chef@bistro.fr", "nouveaupasse")
			Expect(err).NotTo(HaveOccurred())
			Expect(u.ID).To(Equal(created.ID))
		})

		It("does not reveal unknown emails", func() {
			_, err := service.Authenticate(ctx, "nobody@nowhere.fr", "whatever")
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))
		})
	})

	Describe("Demo seed", func() {
		It("writes the demo account the first time the collection is read", func() {
			hash, _ := bcrypt.GenerateFromPassword([]byte(user.DemoPassword), bcrypt.MinCost)
			seeded := user.NewService(
				storage.NewUserRepository(memory.New(), user.DemoUser("demo", string(hash), fixtures.ReferenceTime())),
				logger.Discard(),
			)

			u, err := seeded.Authenticate(ctx, user.DemoEmail, user.DemoPassword)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.ID).To(Equal("demo"))
			Expect(u.CompanyName).To(Equal(user.DemoCompanyName))
		})
	})
})
