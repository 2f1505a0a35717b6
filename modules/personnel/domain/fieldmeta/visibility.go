package fieldmeta

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
	"unicode/utf8"
)

const (
	RoleSuperAdmin = "super_admin"
	RoleHRManager  = "hr_manager"
)

const (
	maskShort  = "***"
	maskMedium = "****"
	maskLong   = "******"
	maskDate   = "****/**/**"
	maskNumber = "***"
	maskJSON   = "***"
)

// displayDateLayout matches the zh-CN short date form (2024/1/5).
const displayDateLayout = "2006/1/2"

// HasOverrideRole reports whether roles include a role that sees every field.
func HasOverrideRole(roles []string) bool {
	for _, r := range roles {
		if r == RoleSuperAdmin || r == RoleHRManager {
			return true
		}
	}
	return false
}

// ResolveVisibility fails closed: nil roles or keys mean hidden unless an
// override role is held.
func ResolveVisibility(viewerRoles []string, visibleKeys []string, fieldKey string) bool {
	return NewVisibilitySet(viewerRoles, visibleKeys).Visible(fieldKey)
}

// VisibilitySet indexes the visible keys once per request.
type VisibilitySet struct {
	override bool
	keys     map[string]struct{}
}

func NewVisibilitySet(viewerRoles []string, visibleKeys []string) VisibilitySet {
	keys := make(map[string]struct{}, len(visibleKeys))
	for _, k := range visibleKeys {
		keys[k] = struct{}{}
	}
	return VisibilitySet{override: HasOverrideRole(viewerRoles), keys: keys}
}

func (s VisibilitySet) Visible(fieldKey string) bool {
	if s.override {
		return true
	}
	if fieldKey == "" {
		return false
	}
	_, ok := s.keys[fieldKey]
	return ok
}

// Elevated reports a field shown only because of an override role.
func (s VisibilitySet) Elevated(fieldKey string) bool {
	if !s.override {
		return false
	}
	_, ok := s.keys[fieldKey]
	return !ok
}

// MaskValue maps a hidden value to one of three length-band placeholders.
func MaskValue(value string, visible bool) string {
	if value == "" {
		return ""
	}
	if visible {
		return value
	}
	switch n := utf8.RuneCountInString(value); {
	case n <= 3:
		return maskShort
	case n <= 6:
		return maskMedium
	default:
		return maskLong
	}
}

// Render produces the display form of a value.
func Render(v FieldValue, visible bool) string {
	switch {
	case v.ValueString != nil && *v.ValueString != "":
		if ts, ok := parseTimestamp(*v.ValueString); ok {
			return renderDate(ts, visible)
		}
		return MaskValue(*v.ValueString, visible)
	case v.ValueNumber != nil && *v.ValueNumber != 0:
		if !visible {
			return maskNumber
		}
		return strconv.FormatFloat(*v.ValueNumber, 'f', -1, 64)
	case !v.ValueDate.IsZero():
		if v.ValueDate.Time.IsZero() {
			if !visible {
				return maskDate
			}
			return v.ValueDate.Raw
		}
		return renderDate(v.ValueDate.Time, visible)
	case hasJSON(v.ValueJSON):
		if !visible {
			return maskJSON
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, v.ValueJSON); err != nil {
			return string(v.ValueJSON)
		}
		return buf.String()
	default:
		return ""
	}
}

func renderDate(ts time.Time, visible bool) string {
	if !visible {
		return maskDate
	}
	return ts.Format(displayDateLayout)
}

func parseTimestamp(s string) (time.Time, bool) {
	if len(s) < len("2006-01-02T15:04:05Z") {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
