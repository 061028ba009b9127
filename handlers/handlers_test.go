package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/contest-system/middleware"
	"github.com/Dosada05/contest-system/models"
	"github.com/Dosada05/contest-system/services"
)

type stubProcessService struct {
	services.ProcessService

	createFn  func(account string, in services.CreateProcessInput) (*models.Process, error)
	promoteFn func(account string, processID int, ids []int) ([]int, error)
	deleteFn  func(account string, contestID, processID int) error
	getFn     func(processID int) (*models.Process, error)
	uploadFn  func(contentType string, body io.Reader) (*models.Process, error)
}

func (s *stubProcessService) Create(ctx context.Context, account string, in services.CreateProcessInput) (*models.Process, error) {
	return s.createFn(account, in)
}

func (s *stubProcessService) PromoteGroups(ctx context.Context, account string, processID int, ids []int) ([]int, error) {
	return s.promoteFn(account, processID, ids)
}

func (s *stubProcessService) Delete(ctx context.Context, account string, contestID, processID int) error {
	return s.deleteFn(account, contestID, processID)
}

func (s *stubProcessService) GetInfo(ctx context.Context, processID int) (*models.Process, error) {
	return s.getFn(processID)
}

func (s *stubProcessService) UploadAttachment(ctx context.Context, account string, contestID, processID int, contentType string, body io.Reader) (*models.Process, error) {
	return s.uploadFn(contentType, body)
}

func withAccount(account string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithPrincipal(r.Context(), models.Principal{Account: account, Role: models.RoleTeacher})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newProcessRouter(svc services.ProcessService) http.Handler {
	h := NewProcessHandler(svc)
	r := chi.NewRouter()
	r.Use(withAccount("teacher-1"))
	r.Post("/contests/{contestID}/processes", h.Create)
	r.Delete("/contests/{contestID}/processes/{processID}", h.Delete)
	r.Post("/contests/{contestID}/processes/{processID}/attachment", h.UploadAttachment)
	r.Get("/processes/{processID}", h.GetByID)
	r.Post("/processes/{processID}/groups/promote", h.Promote)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateProcessPassesPathAndAccount(t *testing.T) {
	svc := &stubProcessService{
		createFn: func(account string, in services.CreateProcessInput) (*models.Process, error) {
			if account != "teacher-1" || in.ContestID != 7 || in.Name != "Prelim" {
				return nil, fmt.Errorf("unexpected call: %s %+v", account, in)
			}
			return &models.Process{ID: 11, ContestID: 7, Sort: 1, Name: in.Name}, nil
		},
	}

	rec := do(t, newProcessRouter(svc), http.MethodPost, "/contests/7/processes",
		`{"name":"Prelim","description":"d","end_submit_time":"2030-05-01T12:00:00Z"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/api/v1/processes/11" {
		t.Fatalf("unexpected Location %q", loc)
	}
	var body struct {
		Process models.Process `json:"process"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Process.ID != 11 || body.Process.Sort != 1 {
		t.Fatalf("unexpected body %+v", body.Process)
	}
}

func TestCreateProcessRejectsBadInput(t *testing.T) {
	svc := &stubProcessService{
		createFn: func(string, services.CreateProcessInput) (*models.Process, error) {
			return nil, errors.New("must not be called")
		},
	}
	router := newProcessRouter(svc)

	if rec := do(t, router, http.MethodPost, "/contests/abc/processes", `{}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", rec.Code)
	}
	if rec := do(t, router, http.MethodPost, "/contests/7/processes", `{"nme":"x"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}
}

func TestPromoteDecodesGroupIDs(t *testing.T) {
	svc := &stubProcessService{
		promoteFn: func(account string, processID int, ids []int) ([]int, error) {
			if processID != 3 || !reflect.DeepEqual(ids, []int{1, 2, 5}) {
				return nil, fmt.Errorf("unexpected call %d %v", processID, ids)
			}
			return []int{1, 2}, nil
		},
	}
	router := newProcessRouter(svc)

	rec := do(t, router, http.MethodPost, "/processes/3/groups/promote", `{"group_ids":[1,2,5]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Added []int `json:"added_group_ids"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(body.Added, []int{1, 2}) {
		t.Fatalf("unexpected added ids %v", body.Added)
	}

	if rec := do(t, router, http.MethodPost, "/processes/3/groups/promote", `{"group_ids":[]}`); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for empty ids, got %d", rec.Code)
	}
}

func TestServiceErrorsMapToStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{services.ErrProcessNotFound, http.StatusNotFound},
		{services.ErrProcessSortBroken, http.StatusNotFound},
		{services.ErrNotContestCreator, http.StatusForbidden},
		{services.ErrProcessNotLast, http.StatusBadRequest},
		{services.ErrContestNotEligible, http.StatusBadRequest},
		{services.ErrMembershipConflict, http.StatusConflict},
		{&services.ValidationError{Fields: map[string]string{"name": "must not be blank"}}, http.StatusUnprocessableEntity},
		{fmt.Errorf("failed to delete process: %w", errors.New("connection reset")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			svc := &stubProcessService{
				deleteFn: func(string, int, int) error { return tc.err },
			}
			rec := do(t, newProcessRouter(svc), http.MethodDelete, "/contests/1/processes/2", "")
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestDeleteProcessReturnsNoContent(t *testing.T) {
	svc := &stubProcessService{
		deleteFn: func(account string, contestID, processID int) error {
			if contestID != 4 || processID != 9 {
				return fmt.Errorf("unexpected ids %d %d", contestID, processID)
			}
			return nil
		},
	}
	if rec := do(t, newProcessRouter(svc), http.MethodDelete, "/contests/4/processes/9", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestUploadAttachmentMapsStorageErrors(t *testing.T) {
	for _, tc := range []struct {
		err  error
		want int
	}{
		{services.ErrAttachmentsDisabled, http.StatusServiceUnavailable},
		{fmt.Errorf("%w: application/x-msdownload", services.ErrUnsupportedMediaType), http.StatusUnsupportedMediaType},
	} {
		svc := &stubProcessService{
			uploadFn: func(string, io.Reader) (*models.Process, error) { return nil, tc.err },
		}
		body := "--b\r\nContent-Disposition: form-data; name=\"file\"; filename=\"a.pdf\"\r\nContent-Type: application/pdf\r\n\r\n%PDF\r\n--b--\r\n"
		req := httptest.NewRequest(http.MethodPost, "/contests/1/processes/2/attachment", strings.NewReader(body))
		req.Header.Set("Content-Type", "multipart/form-data; boundary=b")
		rec := httptest.NewRecorder()
		newProcessRouter(svc).ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("expected %d for %v, got %d: %s", tc.want, tc.err, rec.Code, rec.Body.String())
		}
	}
}

func TestHandlersRequirePrincipal(t *testing.T) {
	h := NewProcessHandler(&stubProcessService{})
	r := chi.NewRouter()
	r.Post("/processes/{processID}/groups/promote", h.Promote)

	if rec := do(t, r, http.MethodPost, "/processes/3/groups/promote", `{"group_ids":[1]}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without principal, got %d", rec.Code)
	}
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealthCheck(t *testing.T) {
	ok := NewHealthHandler(pingerFunc(func(context.Context) error { return nil }))
	if rec := do(t, http.HandlerFunc(ok.Check), http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	down := NewHealthHandler(pingerFunc(func(context.Context) error { return errors.New("down") }))
	if rec := do(t, http.HandlerFunc(down.Check), http.MethodGet, "/healthz", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.example"})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	if check(req) {
		t.Fatalf("foreign origin must be rejected")
	}
	req.Header.Set("Origin", "https://app.example")
	if !check(req) {
		t.Fatalf("listed origin must be accepted")
	}
	if !originChecker([]string{"*"})(req) {
		t.Fatalf("wildcard must accept any origin")
	}
}

func TestGetProcessIncludesContest(t *testing.T) {
	svc := &stubProcessService{
		getFn: func(processID int) (*models.Process, error) {
			if processID == 404 {
				return nil, services.ErrProcessNotFound
			}
			return &models.Process{ID: processID, ContestID: 1, Contest: &models.Contest{ID: 1, Name: "Spring cup"}}, nil
		},
	}
	router := newProcessRouter(svc)

	rec := do(t, router, http.MethodGet, "/processes/5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"Spring cup"`) {
		t.Fatalf("expected contest in body: %s", rec.Body.String())
	}
	if rec := do(t, router, http.MethodGet, "/processes/404", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
