package schedule_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/schedule"
	"github.com/frahmantamala/shiftboard/internal/schedule/storage"
	"github.com/frahmantamala/shiftboard/internal/store/memory"
	"github.com/frahmantamala/shiftboard/internal/transport"
	"github.com/frahmantamala/shiftboard/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Schedule Handler", func() {
	var (
		router  chi.Router
		service *schedule.Service
	)

	BeforeEach(func() {
		service = schedule.NewService(storage.NewScheduleRepository(memory.New()), logger.Discard())
		h := schedule.NewHandler(transport.NewBaseHandler(logger.Discard()), service)

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("X-Test-User") != "" {
					r = r.WithContext(internal.ContextWithIdentity(r.Context(), &internal.Identity{UserID: r.Header.Get("X-Test-User")}))
				}
				next.ServeHTTP(w, r)
			})
		})
		router.Post("/schedules", h.CreateSchedule)
		router.Put("/schedules/{id}", h.UpdateSchedule)
		router.Post("/schedules/{id}/publish", h.PublishSchedule)
		router.Post("/schedules/{id}/unpublish", h.UnpublishSchedule)
	})

	do := func(method, path string, body interface{}) (int, map[string]interface{}) {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("X-Test-User", owner)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		var out map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &out)).To(Succeed())
		return rec.Code, out
	}

	It("wraps results in the success envelope and maps rejections to 409", func() {
		code, body := do(http.MethodPost, "/schedules", map[string]interface{}{
			"name": "W5", "startDate": "2025-01-29", "endDate": "2025-02-04",
			"shifts": []map[string]string{{
				"employeeId": "emp-1", "date": "2025-01-29", "startTime": "12:00", "endTime": "15:00", "role": "Serveur",
			}},
		})
		Expect(code).To(Equal(http.StatusCreated))
		Expect(body["success"]).To(BeTrue())
		created := body["schedule"].(map[string]interface{})
		Expect(created["status"]).To(Equal("draft"))
		id := created["id"].(string)

		code, _ = do(http.MethodPost, "/schedules/"+id+"/publish", nil)
		Expect(code).To(Equal(http.StatusOK))

		code, body = do(http.MethodPut, "/schedules/"+id, map[string]string{"status": "draft"})
		Expect(code).To(Equal(http.StatusConflict))
		Expect(body["success"]).To(BeFalse())
		Expect(body["code"]).To(Equal(string(internal.ErrCodeScheduleLocked)))
		Expect(body["error"]).NotTo(BeEmpty())

		code, body = do(http.MethodPost, "/schedules/"+id+"/unpublish", nil)
		Expect(code).To(Equal(http.StatusOK))
		Expect(body["schedule"].(map[string]interface{})["status"]).To(Equal("draft"))
	})

	It("answers 404 for an unknown schedule", func() {
		code, body := do(http.MethodPost, "/schedules/nope/publish", nil)
		Expect(code).To(Equal(http.StatusNotFound))
		Expect(body["code"]).To(Equal(string(internal.ErrCodeScheduleNotFound)))
	})

	It("answers 401 without an identity", func() {
		req := httptest.NewRequest(http.MethodPost, "/schedules", bytes.NewBufferString("{}"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req.WithContext(context.Background()))
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})
})
