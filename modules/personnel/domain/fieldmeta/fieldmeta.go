package fieldmeta

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"sort"
	"strings"
	"time"
)

type Classification string

const (
	ClassificationPublic       Classification = "PUBLIC"
	ClassificationConfidential Classification = "CONFIDENTIAL"
)

func ParseClassification(raw string) (Classification, error) {
	switch Classification(strings.ToUpper(strings.TrimSpace(raw))) {
	case "", ClassificationPublic:
		return ClassificationPublic, nil
	case ClassificationConfidential:
		return ClassificationConfidential, nil
	default:
		return "", errors.New("classification must be PUBLIC or CONFIDENTIAL")
	}
}

// FieldDefinition describes one personnel attribute. Key is immutable and joins
// against stored field values; everything else is last-write-wins.
type FieldDefinition struct {
	Key            string         `json:"key"`
	Label          string         `json:"label"`
	Classification Classification `json:"classification"`
	SelfEditable   bool           `json:"selfEditable"`
}

// DisplayLabel falls back to the key when the label is blank.
func (d FieldDefinition) DisplayLabel() string {
	if label := strings.TrimSpace(d.Label); label != "" {
		return label
	}
	return d.Key
}

var fieldKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

// NormalizeUpsert validates an upsert payload and applies creation defaults.
func NormalizeUpsert(def FieldDefinition) (FieldDefinition, error) {
	def.Key = strings.TrimSpace(def.Key)
	def.Label = strings.TrimSpace(def.Label)
	if def.Key == "" || def.Label == "" {
		return FieldDefinition{}, errors.New("key and label required")
	}
	if !fieldKeyPattern.MatchString(def.Key) {
		return FieldDefinition{}, errors.New("key must be lower-case letters, digits and underscores")
	}
	c, err := ParseClassification(string(def.Classification))
	if err != nil {
		return FieldDefinition{}, err
	}
	def.Classification = c
	return def, nil
}

// IndexByKey keeps the last definition seen per key.
func IndexByKey(defs []FieldDefinition) map[string]FieldDefinition {
	out := make(map[string]FieldDefinition, len(defs))
	for _, def := range defs {
		out[def.Key] = def
	}
	return out
}

func SortByKey(defs []FieldDefinition) []FieldDefinition {
	out := append([]FieldDefinition(nil), defs...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out
}

// FieldValue holds at most one populated representation. The remote API sends
// all four slots; the first non-empty one in String, Number, Date, JSON order wins.
type FieldValue struct {
	FieldKey    string          `json:"fieldKey"`
	ValueString *string         `json:"valueString,omitempty"`
	ValueNumber *float64        `json:"valueNumber,omitempty"`
	ValueDate   *DateValue      `json:"valueDate,omitempty"`
	ValueJSON   json.RawMessage `json:"valueJson,omitempty"`
}

func (v FieldValue) IsEmpty() bool {
	if v.ValueString != nil && *v.ValueString != "" {
		return false
	}
	if v.ValueNumber != nil && *v.ValueNumber != 0 {
		return false
	}
	if !v.ValueDate.IsZero() {
		return false
	}
	return !hasJSON(v.ValueJSON)
}

// DateValue decodes valueDate leniently. The remote API has sent both full
// timestamps and bare dates; anything else is kept verbatim in Raw.
type DateValue struct {
	Time time.Time
	Raw  string
}

// DateOf wraps a parsed time.
func DateOf(t time.Time) *DateValue {
	return &DateValue{Time: t}
}

const dateOnlyLayout = "2006-01-02"

func (d *DateValue) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*d = DateValue{}
		return nil
	}
	*d = DateValue{}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		d.Raw = string(bytes.TrimSpace(b))
		return nil
	}
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		d.Time = ts
		return nil
	}
	if ts, err := time.Parse(dateOnlyLayout, s); err == nil {
		d.Time = ts
		return nil
	}
	d.Raw = s
	return nil
}

func (d DateValue) MarshalJSON() ([]byte, error) {
	if !d.Time.IsZero() {
		return json.Marshal(d.Time.Format(time.RFC3339Nano))
	}
	return json.Marshal(d.Raw)
}

// IsZero is nil-safe so callers can test an absent pointer directly.
func (d *DateValue) IsZero() bool {
	return d == nil || (d.Time.IsZero() && d.Raw == "")
}

func hasJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// IndexValues returns the non-empty value per key; later duplicates do not
// overwrite an earlier non-empty value.
func IndexValues(values []FieldValue) map[string]FieldValue {
	out := make(map[string]FieldValue, len(values))
	for _, v := range values {
		if v.IsEmpty() {
			continue
		}
		if _, ok := out[v.FieldKey]; ok {
			continue
		}
		out[v.FieldKey] = v
	}
	return out
}
