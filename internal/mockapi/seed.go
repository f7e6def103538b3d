package mockapi

import (
	"fmt"
	"strings"
	"time"

	"mbkm-console/internal/model"
)

// SeedRegistrants is the number of registrants seeded into the active period.
const SeedRegistrants = 42

var (
	seedFirstNames = []string{"Budi", "Siti", "Agus", "Dewi", "Rizky", "Putri", "Andi", "Nur"}
	seedLastNames  = []string{"Santoso", "Rahmawati", "Pratama", "Lestari", "Hidayat", "Wijaya"}
	seedStudy      = []string{"Teknik Informatika", "Sistem Informasi", "Manajemen", "Akuntansi"}
)

func (s *Server) seed() {
	s.settings.add(model.Setting{
		AcademicYear: "2024/2025", Semester: model.SemesterGenap,
		StartDate: "2025-02-01", EndDate: "2025-07-31",
		RegistrationStart: "2025-01-06", RegistrationEnd: "2025-01-31",
	})
	s.settings.add(model.Setting{
		AcademicYear: "2025/2026", Semester: model.SemesterGanjil,
		StartDate: "2025-08-01", EndDate: "2026-01-31",
		RegistrationStart: "2025-07-01", RegistrationEnd: "2025-07-31",
		IsActive: true,
	})
	s.settings.add(model.Setting{
		AcademicYear: "2025/2026", Semester: model.SemesterGenap,
		StartDate: "2026-02-01", EndDate: "2026-07-31",
		RegistrationStart: "2026-01-05", RegistrationEnd: "2026-01-30",
	})

	programs := []model.Program{
		{Name: "Magang Bersertifikat", Code: "MSIB-01", Category: "Magang", Quota: 20},
		{Name: "Studi Independen", Code: "SI-02", Category: "Studi Independen", Quota: 15},
		{Name: "Kampus Mengajar", Code: "KM-03", Category: "Asistensi Mengajar", Quota: 12},
		{Name: "Proyek Kemanusiaan", Code: "PK-04", Category: "Proyek", Quota: 8},
		{Name: "Wirausaha Merdeka", Code: "WM-05", Category: "Kewirausahaan", Quota: 10},
	}
	for i, p := range programs {
		p.AcademicYear = "2025/2026"
		p.Semester = model.SemesterGanjil
		p.IsActive = i != 3
		p.Description = fmt.Sprintf("## %s\n\nProgram **%s** untuk semester ganjil.", p.Name, p.Code)
		programs[i] = s.programs.add(p)
	}

	places := []model.Place{
		{Name: "PT Telkom Indonesia", Category: "BUMN", City: "Bandung", Address: "Jl. Japati No. 1"},
		{Name: "Bank Rakyat Indonesia", Category: "BUMN", City: "Jakarta", Address: "Jl. Jend. Sudirman 44"},
		{Name: "Gojek", Category: "Startup", City: "Jakarta", Address: "Jl. Iskandarsyah II"},
		{Name: "Dinas Pendidikan Kota", Category: "Pemerintahan", City: "Surabaya", Address: "Jl. Jagir Wonokromo"},
		{Name: "SD Negeri 1 Sukamaju", Category: "Sekolah", City: "Bogor", Address: "Jl. Raya Sukamaju"},
		{Name: "Tokopedia", Category: "Startup", City: "Jakarta", Address: "Jl. Prof. Dr. Satrio"},
	}
	for i, p := range places {
		p.Quota = 5 + i
		p.ContactPerson = "HRD " + p.Name
		p.Phone = fmt.Sprintf("0812000000%02d", i+1)
		p.IsActive = i != 5
		places[i] = s.places.add(p)
	}

	created := time.Date(2025, 7, 2, 8, 0, 0, 0, time.UTC)
	statuses := []model.RegistrantStatus{model.RegistrantPending, model.RegistrantApproved, model.RegistrantRejected}
	for i := 0; i < SeedRegistrants; i++ {
		first := seedFirstNames[i%len(seedFirstNames)]
		last := seedLastNames[(i/len(seedFirstNames))%len(seedLastNames)]
		prog := programs[i%len(programs)]
		place := places[i%len(places)]
		at := created.Add(time.Duration(i) * time.Hour)
		s.registrants.add(model.Registrant{
			Name:         first + " " + last,
			NIM:          fmt.Sprintf("2021%04d", i+1),
			Email:        fmt.Sprintf("%s.%d@student.ac.id", strings.ToLower(first), i+1),
			StudyProgram: seedStudy[i%len(seedStudy)],
			ProgramID:    prog.ID,
			ProgramName:  prog.Name,
			PlaceID:      place.ID,
			PlaceName:    place.Name,
			AcademicYear: "2025/2026",
			Semester:     model.SemesterGanjil,
			Status:       statuses[i%len(statuses)],
			CreatedAt:    &at,
		})
	}
	for i := 0; i < 6; i++ {
		at := created.AddDate(0, -6, i)
		s.registrants.add(model.Registrant{
			Name:         seedFirstNames[i] + " Alumni",
			NIM:          fmt.Sprintf("2020%04d", i+1),
			Email:        fmt.Sprintf("alumni.%d@student.ac.id", i+1),
			StudyProgram: seedStudy[i%len(seedStudy)],
			AcademicYear: "2024/2025",
			Semester:     model.SemesterGenap,
			Status:       model.RegistrantApproved,
			CreatedAt:    &at,
		})
	}
	for i := range s.programs.items {
		p := &s.programs.items[i]
		for _, r := range s.registrants.items {
			if r.ProgramID == p.ID {
				p.Registered++
			}
		}
	}
}
