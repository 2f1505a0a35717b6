package routing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) ErrorEnvelope {
	t.Helper()

	var body ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return body
}

func TestWriteError_AcceptJSONCharset(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Accept", "application/json; charset=utf-8")
	rec := httptest.NewRecorder()

	WriteError(rec, req, RouteClassUI, http.StatusNotFound, "not_found", "not found")
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		t.Fatalf("content-type=%q", rec.Header().Get("Content-Type"))
	}
}

func TestWriteError_HTMLForUI(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()

	WriteError(rec, req, RouteClassUI, http.StatusNotFound, "not_found", "page gone")
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("content-type=%q", rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Body.String(), "page gone") {
		t.Fatalf("body=%q", rec.Body.String())
	}
}

func TestWriteError_Envelope(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/console/api/demands:approve", nil)
	rec := httptest.NewRecorder()

	WriteError(rec, req, RouteClassInternalAPI, http.StatusUnprocessableEntity, "invalid_form", "请填写完整信息：版本、评审意见和审批人")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body.Code != "invalid_form" || body.Message != "请填写完整信息：版本、评审意见和审批人" {
		t.Fatalf("body=%+v", body)
	}
	if body.Meta.Path != "/console/api/demands:approve" || body.Meta.Method != http.MethodPost {
		t.Fatalf("meta=%+v", body.Meta)
	}
}

func TestTraceIDFromRequest(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		traceparent string
		requestID   string
		want        string
	}{
		{name: "empty", want: ""},
		{name: "malformed segments", traceparent: "00-abc-01", want: ""},
		{name: "invalid chars", traceparent: "00-0123456789abcdef0123456789abcdeg-0123456789abcdef-01", want: ""},
		{name: "all zero trace", traceparent: "00-00000000000000000000000000000000-0123456789abcdef-01", want: ""},
		{name: "valid", traceparent: "00-ABCDEFABCDEFABCDEFABCDEFABCDEFAB-0123456789abcdef-01", want: "abcdefabcdefabcdefabcdefabcdefab"},
		{name: "request id fallback", requestID: " req-1 ", want: "req-1"},
		{name: "traceparent wins", traceparent: "00-0123456789abcdef0123456789abcdef-0123456789abcdef-01", requestID: "req-1", want: "0123456789abcdef0123456789abcdef"},
		{name: "invalid traceparent falls back", traceparent: "bad", requestID: "req-2", want: "req-2"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tc.traceparent != "" {
				req.Header.Set("traceparent", tc.traceparent)
			}
			if tc.requestID != "" {
				req.Header.Set(RequestIDHeader, tc.requestID)
			}
			if got := traceIDFromRequest(req); got != tc.want {
				t.Fatalf("traceIDFromRequest()=%q want %q", got, tc.want)
			}
		})
	}
}

func TestWriteError_RewritesPlaceholderMessage(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/console/api/personnel/details", nil)
	rec := httptest.NewRecorder()

	WriteError(rec, req, RouteClassInternalAPI, http.StatusBadGateway, "personnel_load_failed", "personnel_load_failed")

	if got := decodeEnvelope(t, rec).Message; got != "加载人员信息失败，请稍后重试。" {
		t.Fatalf("message=%q", got)
	}
}

func TestWriteError_KeepsRemoteMessage(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/console/api/permissions:set", nil)
	rec := httptest.NewRecorder()

	const want = "Cannot remove the last super admin"
	WriteError(rec, req, RouteClassInternalAPI, http.StatusUnprocessableEntity, "permissions_update_failed", want)

	if got := decodeEnvelope(t, rec).Message; got != want {
		t.Fatalf("message=%q want %q", got, want)
	}
}

func TestNormalizeErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		code    string
		message string
		want    string
	}{
		{name: "explicit", code: "invalid_form", message: "key and label required", want: "key and label required"},
		{name: "known code placeholder", code: "forbidden", message: "forbidden", want: "无权限执行该操作。"},
		{name: "known code empty", code: "unauthorized", message: "", want: "登录已失效，请重新登录。"},
		{name: "unknown snake placeholder", code: "x", message: "dict_sync_error", want: "Dict sync error."},
		{name: "empty everything", code: "", message: "", want: "Request failed."},
		{name: "chinese kept", code: "release_plan_exists", message: "已存在", want: "已存在"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := normalizeErrorMessage(tt.code, tt.message); got != tt.want {
				t.Fatalf("normalizeErrorMessage(%q, %q)=%q want %q", tt.code, tt.message, got, tt.want)
			}
		})
	}
}

func TestIsGenericErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code    string
		message string
		want    bool
	}{
		{code: "E", message: "", want: true},
		{code: "FORBIDDEN", message: "forbidden", want: true},
		{code: "x", message: "viewer_load_failed", want: true},
		{code: "x", message: "create failed", want: false},
		{code: "x", message: "Viewer_Load", want: false},
		{code: "x", message: "remote says no", want: false},
	}
	for _, tt := range tests {
		if got := isGenericErrorMessage(tt.code, tt.message); got != tt.want {
			t.Fatalf("isGenericErrorMessage(%q, %q)=%v want %v", tt.code, tt.message, got, tt.want)
		}
	}
}

func TestHumanizeErrorCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code string
		want string
	}{
		{code: "", want: "Request failed."},
		{code: "___", want: "Request failed."},
		{code: "failed", want: "Request failed."},
		{code: "error", want: "Request error."},
		{code: "roster_xlsx_failed", want: "Roster XLSX failed."},
		{code: "remote_api_id_error", want: "Remote API ID error."},
		{code: "foo-bar", want: "Foo bar."},
	}
	for _, tt := range tests {
		if got := humanizeErrorCode(tt.code); got != tt.want {
			t.Fatalf("humanizeErrorCode(%q)=%q want %q", tt.code, got, tt.want)
		}
	}
}

func TestTitleCaseWordsAndCapitalizeWord(t *testing.T) {
	t.Parallel()

	if got := titleCaseWords(nil); got != "" {
		t.Fatalf("titleCaseWords(nil)=%q want empty", got)
	}
	if got := titleCaseWords([]string{"api", "db", "uuid", "id", "code"}); got != "API DB UUID ID code" {
		t.Fatalf("titleCaseWords=%q", got)
	}
	if got := capitalizeWord(""); got != "" {
		t.Fatalf("capitalizeWord(empty)=%q", got)
	}
	if got := capitalizeWord("roster"); got != "Roster" {
		t.Fatalf("capitalizeWord=%q", got)
	}
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]string{"id": "p1"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status=%d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		t.Fatalf("content-type=%q", rec.Header().Get("Content-Type"))
	}
	if strings.TrimSpace(rec.Body.String()) != `{"id":"p1"}` {
		t.Fatalf("body=%q", rec.Body.String())
	}
}
