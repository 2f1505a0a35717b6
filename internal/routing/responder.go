package routing

import (
	"encoding/json"
	"net/http"
	"strings"
)

// RequestIDHeader carries the per-request id assigned by the server
// middleware. It stands in for the trace id when no traceparent is present.
const RequestIDHeader = "X-Request-Id"

type ErrorEnvelope struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	TraceID string            `json:"trace_id"`
	Meta    ErrorEnvelopeMeta `json:"meta"`
}

type ErrorEnvelopeMeta struct {
	Path   string `json:"path"`
	Method string `json:"method"`
}

func WriteError(w http.ResponseWriter, r *http.Request, rc RouteClass, status int, code string, message string) {
	message = normalizeErrorMessage(code, message)
	if isJSONOnly(rc) || wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(ErrorEnvelope{
			Code:    code,
			Message: message,
			TraceID: traceIDFromRequest(r),
			Meta: ErrorEnvelopeMeta{
				Path:   r.URL.Path,
				Method: r.Method,
			},
		})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte("<!doctype html><html><body>"))
	_, _ = w.Write([]byte(message))
	_, _ = w.Write([]byte("</body></html>"))
}

// WriteJSON writes v as the JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func wantsJSON(r *http.Request) bool {
	return r.Header.Get("Accept") == "application/json" || r.Header.Get("Accept") == "application/json; charset=utf-8"
}

func isJSONOnly(rc RouteClass) bool {
	return rc == RouteClassInternalAPI || rc == RouteClassOps
}

func traceIDFromRequest(r *http.Request) string {
	if id := traceIDFromTraceparent(r.Header.Get("traceparent")); id != "" {
		return id
	}
	return strings.TrimSpace(r.Header.Get(RequestIDHeader))
}

func traceIDFromTraceparent(traceparent string) string {
	traceparent = strings.TrimSpace(traceparent)
	if traceparent == "" {
		return ""
	}
	parts := strings.Split(traceparent, "-")
	if len(parts) != 4 {
		return ""
	}
	traceID := strings.ToLower(parts[1])
	if len(traceID) != 32 || traceID == "00000000000000000000000000000000" {
		return ""
	}
	for _, ch := range traceID {
		if (ch < '0' || ch > '9') && (ch < 'a' || ch > 'f') {
			return ""
		}
	}
	return traceID
}

// normalizeErrorMessage keeps explicit messages verbatim. Placeholder
// messages (empty, or the code itself) are replaced by the catalog text for
// known codes and by a humanized code otherwise.
func normalizeErrorMessage(code string, message string) string {
	if !isGenericErrorMessage(code, message) {
		return message
	}
	if known := knownErrorMessage(code); known != "" {
		return known
	}
	return humanizeErrorCode(code)
}

func isGenericErrorMessage(code string, message string) bool {
	message = strings.TrimSpace(message)
	if message == "" {
		return true
	}
	if strings.EqualFold(message, strings.TrimSpace(code)) {
		return true
	}
	return !strings.ContainsAny(message, " \t") && strings.Contains(message, "_") && isASCIILowerSnake(message)
}

func isASCIILowerSnake(s string) bool {
	for _, ch := range s {
		if (ch < 'a' || ch > 'z') && (ch < '0' || ch > '9') && ch != '_' {
			return false
		}
	}
	return true
}

func knownErrorMessage(code string) string {
	switch strings.TrimSpace(code) {
	case "unauthorized":
		return "登录已失效，请重新登录。"
	case "forbidden":
		return "无权限执行该操作。"
	case "invalid_request":
		return "请求参数无效，请检查后重试。"
	case "invalid_form":
		return "表单信息不完整，请检查后重试。"
	case "not_found":
		return "请求的资源不存在。"
	case "method_not_allowed":
		return "不支持该请求方法。"
	case "internal_error":
		return "服务内部错误，请稍后重试。"
	case "viewer_load_failed":
		return "加载当前用户失败，请稍后重试。"
	case "personnel_load_failed":
		return "加载人员信息失败，请稍后重试。"
	case "field_definitions_load_failed":
		return "加载字段定义失败，请稍后重试。"
	case "demands_load_failed":
		return "加载需求失败，请稍后重试。"
	case "releases_load_failed":
		return "加载排期失败，请稍后重试。"
	case "release_plan_exists":
		return "该应用版本的发布计划已存在。"
	default:
		return ""
	}
}

func humanizeErrorCode(code string) string {
	words := strings.FieldsFunc(strings.ToLower(strings.TrimSpace(code)), func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	if len(words) == 0 {
		return "Request failed."
	}
	if len(words) == 1 && (words[0] == "failed" || words[0] == "error") {
		return "Request " + words[0] + "."
	}
	return titleCaseWords(words) + "."
}

var upperWords = map[string]string{
	"api":  "API",
	"id":   "ID",
	"xlsx": "XLSX",
	"uuid": "UUID",
	"db":   "DB",
}

func titleCaseWords(words []string) string {
	if len(words) == 0 {
		return ""
	}
	out := make([]string, len(words))
	for i, w := range words {
		if up, ok := upperWords[w]; ok {
			out[i] = up
			continue
		}
		if i == 0 {
			out[i] = capitalizeWord(w)
			continue
		}
		out[i] = w
	}
	return strings.Join(out, " ")
}

func capitalizeWord(w string) string {
	if w == "" {
		return ""
	}
	return strings.ToUpper(w[:1]) + w[1:]
}
