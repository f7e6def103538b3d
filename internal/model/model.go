package model

import (
	"strconv"
	"strings"
	"time"
)

type Semester string

const (
	SemesterGanjil Semester = "Ganjil"
	SemesterGenap  Semester = "Genap"
)

func (s Semester) Valid() bool {
	return s == SemesterGanjil || s == SemesterGenap
}

// Next cycles Ganjil -> Genap -> Ganjil. Unknown values start at Ganjil.
func (s Semester) Next() Semester {
	if s == SemesterGanjil {
		return SemesterGenap
	}
	return SemesterGanjil
}

type RegistrantStatus string

const (
	RegistrantPending  RegistrantStatus = "pending"
	RegistrantApproved RegistrantStatus = "approved"
	RegistrantRejected RegistrantStatus = "rejected"
)

type Registrant struct {
	ID           int              `json:"id"`
	Name         string           `json:"name"`
	NIM          string           `json:"nim"`
	Email        string           `json:"email"`
	Phone        string           `json:"phone,omitempty"`
	StudyProgram string           `json:"study_program,omitempty"`
	ProgramID    int              `json:"program_id,omitempty"`
	ProgramName  string           `json:"program_name,omitempty"`
	PlaceID      int              `json:"place_id,omitempty"`
	PlaceName    string           `json:"place_name,omitempty"`
	AcademicYear string           `json:"academic_year"`
	Semester     Semester         `json:"semester"`
	Status       RegistrantStatus `json:"status"`
	CreatedAt    *time.Time       `json:"created_at,omitempty"`
}

func (r Registrant) EntityID() int       { return r.ID }
func (r Registrant) DisplayName() string { return r.Name }

func (r *Registrant) ApplyStatus(c StatusChange) {
	if c.Status != "" {
		r.Status = RegistrantStatus(c.Status)
	}
}

type Program struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Code         string   `json:"code,omitempty"`
	Category     string   `json:"category,omitempty"`
	Description  string   `json:"description,omitempty"`
	Quota        int      `json:"quota"`
	Registered   int      `json:"registered_count,omitempty"`
	AcademicYear string   `json:"academic_year"`
	Semester     Semester `json:"semester"`
	IsActive     bool     `json:"is_active"`
}

func (p Program) EntityID() int       { return p.ID }
func (p Program) DisplayName() string { return p.Name }

func (p *Program) ApplyStatus(c StatusChange) {
	if c.IsActive != nil {
		p.IsActive = *c.IsActive
	}
}

type Place struct {
	ID            int        `json:"id"`
	Name          string     `json:"name"`
	Category      string     `json:"category,omitempty"`
	Address       string     `json:"address,omitempty"`
	City          string     `json:"city,omitempty"`
	ContactPerson string     `json:"contact_person,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	Email         string     `json:"email,omitempty"`
	Description   string     `json:"description,omitempty"`
	Quota         int        `json:"quota"`
	LogoURL       string     `json:"logo_url,omitempty"`
	IsActive      bool       `json:"is_active"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

func (p Place) EntityID() int       { return p.ID }
func (p Place) DisplayName() string { return p.Name }

func (p *Place) ApplyStatus(c StatusChange) {
	if c.IsActive != nil {
		p.IsActive = *c.IsActive
	}
}

// Setting is one academic-period configuration record. At most one is active.
type Setting struct {
	ID                int      `json:"id"`
	AcademicYear      string   `json:"academic_year"`
	Semester          Semester `json:"semester"`
	StartDate         string   `json:"start_date,omitempty"`
	EndDate           string   `json:"end_date,omitempty"`
	RegistrationStart string   `json:"registration_start,omitempty"`
	RegistrationEnd   string   `json:"registration_end,omitempty"`
	IsActive          bool     `json:"is_active"`
}

func (s Setting) EntityID() int { return s.ID }

// DisplayName is the canonical name used for delete confirmation ("2025/2026 Ganjil").
func (s Setting) DisplayName() string {
	return strings.TrimSpace(s.AcademicYear + " " + string(s.Semester))
}

func (s *Setting) ApplyStatus(c StatusChange) {
	if c.IsActive != nil {
		s.IsActive = *c.IsActive
	}
}

// Period returns the setting as an ActivePeriod.
func (s Setting) Period() ActivePeriod {
	return ActivePeriod{
		AcademicYear: s.AcademicYear,
		Semester:     s.Semester,
		StartDate:    s.StartDate,
		EndDate:      s.EndDate,
	}
}

// StatusChange is the payload of toggle/review endpoints: only the fields that changed.
type StatusChange struct {
	ID       int    `json:"id"`
	Status   string `json:"status,omitempty"`
	IsActive *bool  `json:"is_active,omitempty"`
}

type ActivePeriod struct {
	AcademicYear string   `json:"academic_year"`
	Semester     Semester `json:"semester"`
	StartDate    string   `json:"start_date,omitempty"`
	EndDate      string   `json:"end_date,omitempty"`
}

func (p ActivePeriod) IsZero() bool {
	return strings.TrimSpace(p.AcademicYear) == "" && p.Semester == ""
}

func (p ActivePeriod) String() string {
	if p.IsZero() {
		return "all periods"
	}
	return strings.TrimSpace(p.AcademicYear + " " + string(p.Semester))
}

// Statistics is the aggregate summary returned next to a list page (total, active, pending, ...).
type Statistics map[string]int

func (s Statistics) Get(key string) int {
	if s == nil {
		return 0
	}
	return s[key]
}

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FilterOptions holds the enumerated values per filterable dimension, in server order.
type FilterOptions map[string][]Option

func (f FilterOptions) Values(dimension string) []string {
	opts := f[dimension]
	out := make([]string, 0, len(opts))
	for _, o := range opts {
		if v := strings.TrimSpace(o.Value); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func IDString(id int) string { return strconv.Itoa(id) }
