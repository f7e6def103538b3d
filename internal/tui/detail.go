package tui

import (
	"fmt"
	"strings"

	"mbkm-console/internal/model"
)

type mdField struct {
	label string
	value string
}

func mdDoc(title string, fields []mdField, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			continue
		}
		fmt.Fprintf(&b, "- **%s:** %s\n", f.label, f.value)
	}
	if body = strings.TrimSpace(body); body != "" {
		b.WriteString("\n")
		b.WriteString(body)
		b.WriteString("\n")
	}
	return b.String()
}

func registrantDetail(r model.Registrant) string {
	fields := []mdField{
		{"NIM", r.NIM},
		{"Email", r.Email},
		{"Phone", r.Phone},
		{"Study program", r.StudyProgram},
		{"Program", r.ProgramName},
		{"Place", r.PlaceName},
		{"Period", r.AcademicYear + " " + string(r.Semester)},
		{"Status", string(r.Status)},
	}
	if r.CreatedAt != nil {
		fields = append(fields, mdField{"Registered", r.CreatedAt.Format("2006-01-02 15:04")})
	}
	return mdDoc(r.Name, fields, "")
}

func programDetail(p model.Program) string {
	return mdDoc(p.Name, []mdField{
		{"Code", p.Code},
		{"Category", p.Category},
		{"Quota", fmtCount(p.Registered) + " of " + fmtCount(p.Quota) + " filled"},
		{"Period", p.AcademicYear + " " + string(p.Semester)},
		{"Status", activeLabel(p.IsActive)},
	}, p.Description)
}

func placeDetail(p model.Place) string {
	fields := []mdField{
		{"Category", p.Category},
		{"Address", p.Address},
		{"City", p.City},
		{"Contact person", p.ContactPerson},
		{"Phone", p.Phone},
		{"Email", p.Email},
		{"Quota", fmtCount(p.Quota)},
		{"Logo", p.LogoURL},
		{"Status", activeLabel(p.IsActive)},
	}
	if p.DeletedAt != nil {
		fields = append(fields, mdField{"Deleted", p.DeletedAt.Format("2006-01-02")})
	}
	return mdDoc(p.Name, fields, p.Description)
}

func settingDetail(s model.Setting) string {
	return mdDoc(s.DisplayName(), []mdField{
		{"Semester runs", dateRange(s.StartDate, s.EndDate)},
		{"Registration", dateRange(s.RegistrationStart, s.RegistrationEnd)},
		{"Status", activeLabel(s.IsActive)},
	}, "")
}
