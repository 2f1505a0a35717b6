package issues

import (
	"sort"
	"strings"
	"time"
)

const (
	StateOpened = "opened"
	StateClosed = "closed"
	StateAll    = "all"
)

const (
	typeLabelPrefix    = "C:"
	versionLabelPrefix = "V:"

	NoType    = "-"
	NoVersion = "未分配"
)

const PageSize = 20

type Person struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// Issue mirrors an issue synced from the external tracker.
type Issue struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	Priority        string    `json:"priority"`
	Status          string    `json:"status"`
	Stage           string    `json:"stage"`
	InputSource     string    `json:"inputSource,omitempty"`
	IssueType       string    `json:"issueType,omitempty"`
	Creator         Person    `json:"creator"`
	Assignee        *Person   `json:"assignee,omitempty"`
	GitlabState     string    `json:"gitlabState"`
	GitlabLabels    []string  `json:"gitlabLabels"`
	GitlabProjectID int64     `json:"gitlabProjectId"`
	GitlabURL       string    `json:"gitlabUrl,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func labelWithPrefix(labels []string, prefix string) (string, bool) {
	for _, l := range labels {
		if strings.HasPrefix(l, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(l, prefix)), true
		}
	}
	return "", false
}

// TypeOf is the first "C:" label, or "-".
func TypeOf(labels []string) string {
	if t, ok := labelWithPrefix(labels, typeLabelPrefix); ok {
		return t
	}
	return NoType
}

// VersionOf is the first "V:" label, or 未分配.
func VersionOf(labels []string) string {
	if v, ok := labelWithPrefix(labels, versionLabelPrefix); ok {
		return v
	}
	return NoVersion
}

// Versions lists distinct "V:" labels across all labels of every issue, sorted.
func Versions(list []Issue) []string {
	set := make(map[string]struct{})
	for _, it := range list {
		for _, l := range it.GitlabLabels {
			if strings.HasPrefix(l, versionLabelPrefix) {
				set[strings.TrimSpace(strings.TrimPrefix(l, versionLabelPrefix))] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

type Counts struct {
	Opened int `json:"opened"`
	Closed int `json:"closed"`
	All    int `json:"all"`
}

func CountStates(list []Issue) Counts {
	c := Counts{All: len(list)}
	for _, it := range list {
		switch it.GitlabState {
		case StateOpened:
			c.Opened++
		case StateClosed:
			c.Closed++
		}
	}
	return c
}

// Page is a 1-based slice of items. Out-of-range pages return no items.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func Paginate[T any](items []T, page int, size int) Page[T] {
	if size <= 0 {
		size = PageSize
	}
	if page < 1 {
		page = 1
	}
	total := len(items)
	p := Page[T]{
		Items:      []T{},
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: (total + size - 1) / size,
	}
	start := (page - 1) * size
	if start >= total {
		return p
	}
	end := min(start+size, total)
	p.Items = items[start:end]
	return p
}
