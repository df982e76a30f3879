package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/auth"
	"github.com/frahmantamala/shiftboard/internal/core/common/fixtures"
	"github.com/frahmantamala/shiftboard/internal/session"
	sessionStorage "github.com/frahmantamala/shiftboard/internal/session/storage"
	"github.com/frahmantamala/shiftboard/internal/store/memory"
	"github.com/frahmantamala/shiftboard/internal/user"
	userStorage "github.com/frahmantamala/shiftboard/internal/user/storage"
	"github.com/frahmantamala/shiftboard/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Suite")
}

const secret = "0123456789abcdef0123456789abcdef"

type failingSessions struct{ auth.SessionStore }

func (failingSessions) FindActiveByToken(context.Context, string) (*session.Session, error) {
	return nil, errors.New("disk on fire")
}

type env struct {
	clock    *fixtures.Clock
	users    *user.Service
	sessions *session.Service
	codec    *auth.JWTCodec
}

func newEnv() *env {
	backend := memory.New()
	clock := fixtures.NewClock(time.Time{})
	return &env{
		clock: clock,
		users: user.NewService(userStorage.NewUserRepository(backend), logger.Discard(),
			user.WithClock(clock.Now),
			user.WithIDGenerator(fixtures.NewIDGenerator("user").Next),
			user.WithBCryptCost(bcrypt.MinCost),
		),
		sessions: session.NewService(sessionStorage.NewSessionRepository(backend), logger.Discard(),
			session.WithClock(clock.Now),
			session.WithIDGenerator(fixtures.NewIDGenerator("sess").Next),
		),
		codec: auth.NewJWTCodec(secret, auth.WithCodecClock(clock.Now)),
	}
}

func (e *env) service(opts auth.Options) *auth.Service {
	return auth.NewService(e.users, e.sessions, e.codec, opts, logger.Discard())
}

var _ = Describe("Session Oracle", func() {
	var (
		ctx     context.Context
		e       *env
		service *auth.Service
		client  internal.ClientInfo
		signup  auth.SignupDTO
	)

	BeforeEach(func() {
		ctx = context.Background()
		e = newEnv()
		service = e.service(auth.Options{EnforceSessionRecords: true})
		client = internal.ClientInfo{IPAddress: "198.51.100.4", UserAgent: "Safari"}
		signup = auth.SignupDTO{Email: "chef@bistrot.fr", Password: "s3cretpass", CompanyName: "Le Bistrot"}
	})

	Describe("Signup and Login", func() {
		It("creates an account and opens a session", func() {
			res, err := service.Signup(ctx, signup, client)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Token).NotTo(BeEmpty())
			Expect(res.User.CompanyName).To(Equal("Le Bistrot"))
			Expect(res.ExpiresAt).To(Equal(fixtures.ReferenceTime().Add(session.DefaultTTL)))

			views, err := e.sessions.GetUserSessions(ctx, res.User.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(views).To(HaveLen(1))
			Expect(views[0].IPAddress).To(Equal("198.51.100.4"))
		})

		It("refuses a second account for the same email", func() {
			_, err := service.Signup(ctx, signup, client)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Signup(ctx, signup, client)
			Expect(err).To(MatchError(internal.ErrEmailTaken))
		})

		It("opens one session per login", func() {
			res, err := service.Signup(ctx, signup, client)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Login(ctx, auth.LoginDTO{Email: signup.Email, Password: signup.Password}, client)
			Expect(err).NotTo(HaveOccurred())

			views, err := e.sessions.GetUserSessions(ctx, res.User.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(views).To(HaveLen(2))
		})

		It("rejects a wrong password without opening a session", func() {
			res, err := service.Signup(ctx, signup, client)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Login(ctx, auth.LoginDTO{Email: signup.Email, Password: "nope-nope"}, client)
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))

			views, err := e.sessions.GetUserSessions(ctx, res.User.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(views).To(HaveLen(1))
		})

		It("validates the login payload", func() {
			_, err := service.Login(ctx, auth.LoginDTO{Email: signup.Email}, client)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})
	})

	Describe("GetSession", func() {
		var res *auth.Result

		BeforeEach(func() {
			var err error
			res, err = service.Signup(ctx, signup, client)
			Expect(err).NotTo(HaveOccurred())
		})

		It("resolves a fresh token to the account", func() {
			id, err := service.GetSession(ctx, res.Token)
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal(&internal.Identity{
				UserID:      res.User.ID,
				Email:       "chef@bistrot.fr",
				CompanyName: "Le Bistrot",
				SessionID:   res.SessionID,
			}))
		})

		DescribeTable("answers nil for tokens that do not resolve",
			func(token string) {
				id, err := service.GetSession(ctx, token)
				Expect(err).NotTo(HaveOccurred())
				Expect(id).To(BeNil())
			},
			Entry("empty", ""),
			Entry("garbage", "not-a-token"),
			Entry("signed with another key", func() string {
				t, _ := auth.NewJWTCodec("ffffffffffffffffffffffffffffffff").Issue(auth.Claims{UserID: "user-1", Email: "chef@bistrot.fr"}, fixtures.ReferenceTime().Add(time.Hour))
				return t
			}()),
		)

		It("stops resolving once the session expires", func() {
			e.clock.Advance(session.DefaultTTL - time.Second)
			id, err := service.GetSession(ctx, res.Token)
			Expect(err).NotTo(HaveOccurred())
			Expect(id).NotTo(BeNil())

			e.clock.Advance(time.Second)
			id, err = service.GetSession(ctx, res.Token)
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(BeNil())
		})

		It("stops resolving once the session is revoked", func() {
			Expect(e.sessions.Delete(ctx, res.User.ID, res.SessionID)).To(Succeed())

			id, err := service.GetSession(ctx, res.Token)
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(BeNil())
		})

		It("keeps resolving a revoked session when records are not enforced", func() {
			relaxed := e.service(auth.Options{})
			Expect(e.sessions.Delete(ctx, res.User.ID, res.SessionID)).To(Succeed())

			id, err := relaxed.GetSession(ctx, res.Token)
			Expect(err).NotTo(HaveOccurred())
			Expect(id).NotTo(BeNil())
			Expect(id.SessionID).To(BeEmpty())
		})

		It("surfaces store failures", func() {
			broken := auth.NewService(e.users, failingSessions{}, e.codec, auth.Options{EnforceSessionRecords: true}, logger.Discard())

			_, err := broken.GetSession(ctx, res.Token)
			Expect(err).To(MatchError(ContainSubstring("disk on fire")))
		})

		It("requires an identity in RequireAuth", func() {
			_, err := service.RequireAuth(ctx, "not-a-token")
			Expect(err).To(MatchError(internal.ErrUnauthorized))

			id, err := service.RequireAuth(ctx, res.Token)
			Expect(err).NotTo(HaveOccurred())
			Expect(id.UserID).To(Equal(res.User.ID))
		})
	})

	Describe("Legacy tokens", func() {
		var userID string

		BeforeEach(func() {
			res, err := service.Signup(ctx, signup, client)
			Expect(err).NotTo(HaveOccurred())
			userID = res.User.ID
		})

		It("is ignored unless enabled", func() {
			id, err := service.GetSession(ctx, auth.EncodeLegacy(signup.Email, userID, e.clock.Now()))
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(BeNil())
		})

		It("resolves when enabled and the email still matches", func() {
			legacy := e.service(auth.Options{AcceptLegacyTokens: true})

			id, err := legacy.GetSession(ctx, auth.EncodeLegacy(signup.Email, userID, e.clock.Now()))
			Expect(err).NotTo(HaveOccurred())
			Expect(id.UserID).To(Equal(userID))
			Expect(id.SessionID).To(BeEmpty())

			id, err = legacy.GetSession(ctx, auth.EncodeLegacy("someone@else.fr", userID, e.clock.Now()))
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(BeNil())

			id, err = legacy.GetSession(ctx, auth.EncodeLegacy(signup.Email, "user-404", e.clock.Now()))
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(BeNil())
		})
	})

	Describe("Logout", func() {
		It("ends only the session behind the token", func() {
			first, err := service.Signup(ctx, signup, client)
			Expect(err).NotTo(HaveOccurred())
			second, err := service.Login(ctx, auth.LoginDTO{Email: signup.Email, Password: signup.Password}, client)
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Logout(ctx, first.Token)).To(Succeed())

			id, err := service.GetSession(ctx, first.Token)
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(BeNil())

			id, err = service.GetSession(ctx, second.Token)
			Expect(err).NotTo(HaveOccurred())
			Expect(id).NotTo(BeNil())
		})

		It("ignores tokens it cannot read", func() {
			Expect(service.Logout(ctx, "garbage")).To(Succeed())
		})
	})
})
