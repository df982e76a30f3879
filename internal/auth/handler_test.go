package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/shiftboard/internal/auth"
	"github.com/frahmantamala/shiftboard/internal/transport"
	"github.com/frahmantamala/shiftboard/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Auth Handler", func() {
	var router chi.Router

	BeforeEach(func() {
		e := newEnv()
		h := auth.NewHandler(transport.NewBaseHandler(logger.Discard()),
			e.service(auth.Options{EnforceSessionRecords: true}), auth.CookieConfig{})

		router = chi.NewRouter()
		router.Use(h.Authenticate)
		router.Post("/auth/signup", h.Signup)
		router.Post("/auth/login", h.Login)
		router.Post("/auth/logout", h.Logout)
		router.With(h.RequireAuth).Get("/auth/session", h.Session)
	})

	send := func(req *http.Request) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	post := func(path string, body interface{}) *http.Request {
		var buf bytes.Buffer
		Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		req := httptest.NewRequest(http.MethodPost, path, &buf)
		req.RemoteAddr = "192.0.2.10:51234"
		return req
	}

	authCookie := func(rec *httptest.ResponseRecorder) *http.Cookie {
		for _, c := range rec.Result().Cookies() {
			if c.Name == auth.DefaultCookieName {
				return c
			}
		}
		return nil
	}

	It("signs up, resolves the cookie and logs out", func() {
		rec := send(post("/auth/signup", map[string]string{
			"email": "chef@bistrot.fr", "password": "s3cretpass", "companyName": "Le Bistrot",
		}))
		Expect(rec.Code).To(Equal(http.StatusCreated))

		cookie := authCookie(rec)
		Expect(cookie).NotTo(BeNil())
		Expect(cookie.HttpOnly).To(BeTrue())
		Expect(cookie.SameSite).To(Equal(http.SameSiteLaxMode))

		req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
		req.AddCookie(cookie)
		rec = send(req)
		Expect(rec.Code).To(Equal(http.StatusOK))

		var body map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body["user"].(map[string]interface{})["email"]).To(Equal("chef@bistrot.fr"))

		req = httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		req.AddCookie(cookie)
		rec = send(req)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(authCookie(rec).MaxAge).To(BeNumerically("<", 0))

		req = httptest.NewRequest(http.MethodGet, "/auth/session", nil)
		req.AddCookie(cookie)
		Expect(send(req).Code).To(Equal(http.StatusUnauthorized))
	})

	It("accepts the token as a bearer header", func() {
		Expect(send(post("/auth/signup", map[string]string{
			"email": "chef@bistrot.fr", "password": "s3cretpass", "companyName": "Le Bistrot",
		})).Code).To(Equal(http.StatusCreated))

		rec := send(post("/auth/login", map[string]string{"email": "chef@bistrot.fr", "password": "s3cretpass"}))
		Expect(rec.Code).To(Equal(http.StatusOK))

		var body struct {
			Session auth.Result `json:"session"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())

		req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
		req.Header.Set("Authorization", "Bearer "+body.Session.Token)
		Expect(send(req).Code).To(Equal(http.StatusOK))
	})

	It("answers 401 for bad credentials", func() {
		rec := send(post("/auth/login", map[string]string{"email": "ghost@bistrot.fr", "password": "whatever1"}))
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(authCookie(rec)).To(BeNil())
	})

	It("reads the client address from the request", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.10:51234"
		req.Header.Set("User-Agent", "Firefox")
		Expect(auth.ClientInfo(req).IPAddress).To(Equal("192.0.2.10"))
		Expect(auth.ClientInfo(req).UserAgent).To(Equal("Firefox"))

		req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
		Expect(auth.ClientInfo(req).IPAddress).To(Equal("192.0.2.10"))
	})
})
