package model

type ProgramInput struct {
	Name         string   `json:"name" validate:"required,min=3,max=150"`
	Code         string   `json:"code,omitempty" validate:"omitempty,max=30"`
	Category     string   `json:"category" validate:"required"`
	Description  string   `json:"description,omitempty"`
	Quota        int      `json:"quota" validate:"gte=0"`
	AcademicYear string   `json:"academic_year" validate:"required,academic_year"`
	Semester     Semester `json:"semester" validate:"required,semester"`
	IsActive     *bool    `json:"is_active,omitempty"`
}

type PlaceInput struct {
	Name          string `json:"name" validate:"required,min=3,max=150"`
	Category      string `json:"category,omitempty"`
	Address       string `json:"address" validate:"required"`
	City          string `json:"city,omitempty"`
	ContactPerson string `json:"contact_person,omitempty"`
	Phone         string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Email         string `json:"email,omitempty" validate:"omitempty,email"`
	Description   string `json:"description,omitempty"`
	Quota         int    `json:"quota" validate:"gte=0"`
	IsActive      *bool  `json:"is_active,omitempty"`
}

type SettingInput struct {
	AcademicYear      string   `json:"academic_year" validate:"required,academic_year"`
	Semester          Semester `json:"semester" validate:"required,semester"`
	StartDate         string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate           string   `json:"end_date" validate:"required,datetime=2006-01-02"`
	RegistrationStart string   `json:"registration_start,omitempty" validate:"omitempty,datetime=2006-01-02"`
	RegistrationEnd   string   `json:"registration_end,omitempty" validate:"omitempty,datetime=2006-01-02"`
	IsActive          bool     `json:"is_active"`
}

type RegistrantReview struct {
	Status RegistrantStatus `json:"status" validate:"required,oneof=pending approved rejected"`
	Note   string           `json:"note,omitempty" validate:"max=500"`
}

// DefaultPeriod fills an empty academic year/semester from the resolved period.
func (in *ProgramInput) DefaultPeriod(p ActivePeriod) {
	if in.AcademicYear == "" {
		in.AcademicYear = p.AcademicYear
	}
	if in.Semester == "" {
		in.Semester = p.Semester
	}
}

func (in *SettingInput) DefaultPeriod(p ActivePeriod) {
	if in.AcademicYear == "" {
		in.AcademicYear = p.AcademicYear
	}
	if in.Semester == "" {
		in.Semester = p.Semester
	}
}
