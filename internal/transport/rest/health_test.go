package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestRest(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Rest Suite")
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

var _ = Describe("HealthHandler", func() {
	check := func(h *HealthHandler) (int, HealthResponse) {
		rec := httptest.NewRecorder()
		h.healthCheckHandler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

		var resp HealthResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		return rec.Code, resp
	}

	It("is healthy when every component answers", func() {
		code, resp := check(NewHealthHandler(map[string]Pinger{
			"storage": pingFunc(func(context.Context) error { return nil }),
		}))

		Expect(code).To(Equal(http.StatusOK))
		Expect(resp.Status).To(Equal(HealthHealthy))
		Expect(resp.Components).To(HaveKeyWithValue("storage", HaveField("Status", HealthHealthy)))
	})

	It("answers 503 and names the failing component", func() {
		code, resp := check(NewHealthHandler(map[string]Pinger{
			"storage": pingFunc(func(context.Context) error { return errors.New("connection refused") }),
		}))

		Expect(code).To(Equal(http.StatusServiceUnavailable))
		Expect(resp.Status).To(Equal(HealthUnhealthy))
		Expect(resp.Components["storage"].Message).To(Equal("connection refused"))
	})

	It("is healthy with nothing to check", func() {
		code, resp := check(NewHealthHandler(nil))
		Expect(code).To(Equal(http.StatusOK))
		Expect(resp.Components).To(BeEmpty())
	})

	It("answers ping", func() {
		rec := httptest.NewRecorder()
		NewHealthHandler(nil).pingHandler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"OK"`))
	})
})
