package services

import (
	"github.com/jacksonlee411/people-console/modules/personnel/domain/fieldmeta"
)

// Person is the remote user record the detail and export views are built from.
type Person struct {
	ID         string
	Name       string
	Username   string
	Email      string
	Phone      string
	Avatar     string
	Department string
	IsActive   bool
	Values     []fieldmeta.FieldValue
}

type BasicInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Username   string `json:"username,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Avatar     string `json:"avatar,omitempty"`
	Department string `json:"department,omitempty"`
	IsActive   bool   `json:"is_active"`
}

type DetailField struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Value    string `json:"value"`
	Elevated bool   `json:"elevated"`
	Masked   bool   `json:"masked,omitempty"`
}

type DetailSection struct {
	Key    string        `json:"key"`
	Title  string        `json:"title"`
	Fields []DetailField `json:"fields"`
}

type PersonnelDetail struct {
	Basic             BasicInfo       `json:"basic"`
	Sections          []DetailSection `json:"sections"`
	ViewerIsHROrSuper bool            `json:"viewer_is_hr_or_super"`
}

type DetailOptions struct {
	ViewerRoles   []string
	VisibleKeys   []string
	IncludeMasked bool
}

// BuildDetail renders the fixed detail sections. A field appears only when it
// has a definition and a non-empty value; fields the viewer may not see are
// dropped unless IncludeMasked is set, in which case they carry masked values.
func BuildDetail(p Person, defs []fieldmeta.FieldDefinition, opts DetailOptions) PersonnelDetail {
	vis := fieldmeta.NewVisibilitySet(opts.ViewerRoles, opts.VisibleKeys)
	byKey := fieldmeta.IndexByKey(defs)
	values := fieldmeta.IndexValues(p.Values)

	sections := make([]DetailSection, 0, len(fieldmeta.DetailSections))
	for _, sec := range fieldmeta.DetailSections {
		fields := make([]DetailField, 0, len(sec.Fields))
		for _, key := range sec.Fields {
			def, ok := byKey[key]
			if !ok {
				continue
			}
			v, ok := values[key]
			if !ok {
				continue
			}
			visible := vis.Visible(key)
			if !visible && !opts.IncludeMasked {
				continue
			}
			fields = append(fields, DetailField{
				Key:      key,
				Label:    def.DisplayLabel(),
				Value:    fieldmeta.Render(v, visible),
				Elevated: visible && vis.Elevated(key),
				Masked:   !visible,
			})
		}
		if len(fields) == 0 {
			continue
		}
		sections = append(sections, DetailSection{Key: sec.Key, Title: sec.Title, Fields: fields})
	}

	return PersonnelDetail{
		Basic: BasicInfo{
			ID:         p.ID,
			Name:       p.Name,
			Username:   p.Username,
			Email:      p.Email,
			Phone:      p.Phone,
			Avatar:     p.Avatar,
			Department: p.Department,
			IsActive:   p.IsActive,
		},
		Sections:          sections,
		ViewerIsHROrSuper: fieldmeta.HasOverrideRole(opts.ViewerRoles),
	}
}
