package mockapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"mbkm-console/internal/model"
)

func decodeInput[I any](raw json.RawMessage) (I, error) {
	var in I
	if err := json.Unmarshal(raw, &in); err != nil {
		return in, fmt.Errorf("invalid body: %w", err)
	}
	if err := model.Validate(in); err != nil {
		return in, err
	}
	return in, nil
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func matchActive(q url.Values, active bool) bool {
	switch filterValue(q, "status") {
	case "":
		return true
	case "active":
		return active
	case "inactive":
		return !active
	default:
		return false
	}
}

func matchPeriod(q url.Values, year string, sem model.Semester) bool {
	if y := filterValue(q, "academic_year"); y != "" && y != year {
		return false
	}
	if s := filterValue(q, "semester"); s != "" && s != string(sem) {
		return false
	}
	return true
}

func matchInt(q url.Values, key string, v int) bool {
	raw := filterValue(q, key)
	if raw == "" {
		return true
	}
	n, err := strconv.Atoi(raw)
	return err == nil && n == v
}

// distinct returns unique values in first-seen order, or sorted descending when desc is set.
func distinct(values []string, desc bool) []model.Option {
	seen := map[string]bool{}
	var out []string
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	if desc {
		sort.Sort(sort.Reverse(sort.StringSlice(out)))
	}
	opts := make([]model.Option, 0, len(out))
	for _, v := range out {
		opts = append(opts, model.Option{Value: v, Label: v})
	}
	return opts
}

func semesterOptions() []model.Option {
	return []model.Option{
		{Value: string(model.SemesterGanjil), Label: string(model.SemesterGanjil)},
		{Value: string(model.SemesterGenap), Label: string(model.SemesterGenap)},
	}
}

func activeStatusOptions() []model.Option {
	return []model.Option{{Value: "active", Label: "Active"}, {Value: "inactive", Label: "Inactive"}}
}

func flipActive(active *bool) model.StatusChange {
	*active = !*active
	v := *active
	return model.StatusChange{IsActive: &v}
}

func registrantCollection() *collection[model.Registrant] {
	return &collection[model.Registrant]{
		name:  "registrants",
		label: "Registrant",
		id:    func(r model.Registrant) int { return r.ID },
		setID: func(r *model.Registrant, id int) { r.ID = id },
		match: func(r model.Registrant, q url.Values) bool {
			if s := filterValue(q, "search"); s != "" &&
				!containsFold(r.Name, s) && !containsFold(r.NIM, s) && !containsFold(r.Email, s) {
				return false
			}
			if st := filterValue(q, "status"); st != "" && st != string(r.Status) {
				return false
			}
			return matchPeriod(q, r.AcademicYear, r.Semester) &&
				matchInt(q, "program_id", r.ProgramID) &&
				matchInt(q, "place_id", r.PlaceID)
		},
		stats: func(items []model.Registrant) model.Statistics {
			st := model.Statistics{"total": len(items), "pending": 0, "approved": 0, "rejected": 0}
			for _, r := range items {
				st[string(r.Status)]++
			}
			return st
		},
		record: func(r model.Registrant) model.Record {
			return model.Record{Fields: []model.Field{
				{Key: "NIM", Value: r.NIM},
				{Key: "Name", Value: r.Name},
				{Key: "Email", Value: r.Email},
				{Key: "Study Program", Value: r.StudyProgram},
				{Key: "Program", Value: r.ProgramName},
				{Key: "Place", Value: r.PlaceName},
				{Key: "Academic Year", Value: r.AcademicYear},
				{Key: "Semester", Value: string(r.Semester)},
				{Key: "Status", Value: string(r.Status)},
			}}
		},
		options: func(items []model.Registrant) model.FilterOptions {
			var years, programs []string
			names := map[string]string{}
			for _, r := range items {
				years = append(years, r.AcademicYear)
				if r.ProgramID > 0 {
					id := model.IDString(r.ProgramID)
					programs = append(programs, id)
					names[id] = r.ProgramName
				}
			}
			progOpts := distinct(programs, false)
			for i := range progOpts {
				progOpts[i].Label = names[progOpts[i].Value]
			}
			return model.FilterOptions{
				"academic_years": distinct(years, true),
				"semesters":      semesterOptions(),
				"statuses": {
					{Value: string(model.RegistrantPending), Label: "Pending"},
					{Value: string(model.RegistrantApproved), Label: "Approved"},
					{Value: string(model.RegistrantRejected), Label: "Rejected"},
				},
				"programs": progOpts,
			}
		},
		active: func(r model.Registrant) bool { return r.Status == model.RegistrantApproved },
		review: func(r *model.Registrant, in model.RegistrantReview) model.StatusChange {
			r.Status = in.Status
			return model.StatusChange{ID: r.ID, Status: string(in.Status)}
		},
	}
}

func programCollection() *collection[model.Program] {
	return &collection[model.Program]{
		name:  "programs",
		label: "Program",
		id:    func(p model.Program) int { return p.ID },
		setID: func(p *model.Program, id int) { p.ID = id },
		match: func(p model.Program, q url.Values) bool {
			if s := filterValue(q, "search"); s != "" && !containsFold(p.Name, s) && !containsFold(p.Code, s) {
				return false
			}
			if c := filterValue(q, "category"); c != "" && c != p.Category {
				return false
			}
			return matchActive(q, p.IsActive) && matchPeriod(q, p.AcademicYear, p.Semester)
		},
		stats: func(items []model.Program) model.Statistics {
			st := model.Statistics{"total": len(items), "active": 0, "inactive": 0, "quota": 0}
			for _, p := range items {
				if p.IsActive {
					st["active"]++
				} else {
					st["inactive"]++
				}
				st["quota"] += p.Quota
			}
			return st
		},
		record: func(p model.Program) model.Record {
			return model.Record{Fields: []model.Field{
				{Key: "Code", Value: p.Code},
				{Key: "Name", Value: p.Name},
				{Key: "Category", Value: p.Category},
				{Key: "Quota", Value: p.Quota},
				{Key: "Registered", Value: p.Registered},
				{Key: "Academic Year", Value: p.AcademicYear},
				{Key: "Semester", Value: string(p.Semester)},
				{Key: "Status", Value: activeLabel(p.IsActive)},
			}}
		},
		options: func(items []model.Program) model.FilterOptions {
			var years, cats []string
			for _, p := range items {
				years = append(years, p.AcademicYear)
				cats = append(cats, p.Category)
			}
			return model.FilterOptions{
				"academic_years": distinct(years, true),
				"semesters":      semesterOptions(),
				"categories":     distinct(cats, false),
				"statuses":       activeStatusOptions(),
			}
		},
		active: func(p model.Program) bool { return p.IsActive },
		create: func(raw json.RawMessage) (model.Program, error) {
			in, err := decodeInput[model.ProgramInput](raw)
			if err != nil {
				return model.Program{}, err
			}
			p := model.Program{}
			applyProgram(&p, in)
			p.IsActive = boolOr(in.IsActive, true)
			return p, nil
		},
		update: func(p *model.Program, raw json.RawMessage) error {
			in, err := decodeInput[model.ProgramInput](raw)
			if err != nil {
				return err
			}
			applyProgram(p, in)
			p.IsActive = boolOr(in.IsActive, p.IsActive)
			return nil
		},
		toggle: func(p *model.Program) model.StatusChange {
			c := flipActive(&p.IsActive)
			c.ID = p.ID
			return c
		},
	}
}

func applyProgram(p *model.Program, in model.ProgramInput) {
	p.Name = in.Name
	p.Code = in.Code
	p.Category = in.Category
	p.Description = in.Description
	p.Quota = in.Quota
	p.AcademicYear = in.AcademicYear
	p.Semester = in.Semester
}

func placeCollection() *collection[model.Place] {
	return &collection[model.Place]{
		name:  "places",
		label: "Place",
		id:    func(p model.Place) int { return p.ID },
		setID: func(p *model.Place, id int) { p.ID = id },
		match: func(p model.Place, q url.Values) bool {
			if s := filterValue(q, "search"); s != "" &&
				!containsFold(p.Name, s) && !containsFold(p.City, s) && !containsFold(p.Address, s) {
				return false
			}
			if c := filterValue(q, "category"); c != "" && c != p.Category {
				return false
			}
			if c := filterValue(q, "city"); c != "" && c != p.City {
				return false
			}
			return matchActive(q, p.IsActive)
		},
		stats: func(items []model.Place) model.Statistics {
			st := model.Statistics{"total": len(items), "active": 0, "inactive": 0}
			for _, p := range items {
				if p.IsActive {
					st["active"]++
				} else {
					st["inactive"]++
				}
			}
			return st
		},
		record: func(p model.Place) model.Record {
			return model.Record{Fields: []model.Field{
				{Key: "Name", Value: p.Name},
				{Key: "Category", Value: p.Category},
				{Key: "Address", Value: p.Address},
				{Key: "City", Value: p.City},
				{Key: "Contact Person", Value: p.ContactPerson},
				{Key: "Phone", Value: p.Phone},
				{Key: "Quota", Value: p.Quota},
				{Key: "Status", Value: activeLabel(p.IsActive)},
			}}
		},
		options: func(items []model.Place) model.FilterOptions {
			var cats, cities []string
			for _, p := range items {
				cats = append(cats, p.Category)
				cities = append(cities, p.City)
			}
			return model.FilterOptions{
				"categories": distinct(cats, false),
				"cities":     distinct(cities, false),
				"statuses":   activeStatusOptions(),
			}
		},
		active: func(p model.Place) bool { return p.IsActive },
		create: func(raw json.RawMessage) (model.Place, error) {
			in, err := decodeInput[model.PlaceInput](raw)
			if err != nil {
				return model.Place{}, err
			}
			p := model.Place{}
			applyPlace(&p, in)
			p.IsActive = boolOr(in.IsActive, true)
			return p, nil
		},
		update: func(p *model.Place, raw json.RawMessage) error {
			in, err := decodeInput[model.PlaceInput](raw)
			if err != nil {
				return err
			}
			applyPlace(p, in)
			p.IsActive = boolOr(in.IsActive, p.IsActive)
			return nil
		},
		toggle: func(p *model.Place) model.StatusChange {
			c := flipActive(&p.IsActive)
			c.ID = p.ID
			return c
		},
		deleted: func(p model.Place) bool { return p.DeletedAt != nil },
		trash: func(p *model.Place) {
			now := time.Now().UTC()
			p.DeletedAt = &now
			p.IsActive = false
		},
	}
}

func applyPlace(p *model.Place, in model.PlaceInput) {
	p.Name = in.Name
	p.Category = in.Category
	p.Address = in.Address
	p.City = in.City
	p.ContactPerson = in.ContactPerson
	p.Phone = in.Phone
	p.Email = in.Email
	p.Description = in.Description
	p.Quota = in.Quota
}

var errActiveSetting = errors.New("active setting cannot be deleted, activate another period first")

func settingCollection() *collection[model.Setting] {
	return &collection[model.Setting]{
		name:  "settings",
		label: "Setting",
		id:    func(s model.Setting) int { return s.ID },
		setID: func(s *model.Setting, id int) { s.ID = id },
		match: func(s model.Setting, q url.Values) bool {
			if v := filterValue(q, "search"); v != "" && !containsFold(s.DisplayName(), v) {
				return false
			}
			return matchActive(q, s.IsActive) && matchPeriod(q, s.AcademicYear, s.Semester)
		},
		stats: func(items []model.Setting) model.Statistics {
			st := model.Statistics{"total": len(items), "active": 0}
			for _, s := range items {
				if s.IsActive {
					st["active"]++
				}
			}
			return st
		},
		record: func(s model.Setting) model.Record {
			return model.Record{Fields: []model.Field{
				{Key: "Academic Year", Value: s.AcademicYear},
				{Key: "Semester", Value: string(s.Semester)},
				{Key: "Start Date", Value: s.StartDate},
				{Key: "End Date", Value: s.EndDate},
				{Key: "Registration Start", Value: s.RegistrationStart},
				{Key: "Registration End", Value: s.RegistrationEnd},
				{Key: "Status", Value: activeLabel(s.IsActive)},
			}}
		},
		options: func(items []model.Setting) model.FilterOptions {
			var years []string
			for _, s := range items {
				years = append(years, s.AcademicYear)
			}
			return model.FilterOptions{
				"academic_years": distinct(years, true),
				"semesters":      semesterOptions(),
				"statuses":       activeStatusOptions(),
			}
		},
		active: func(s model.Setting) bool { return s.IsActive },
		create: func(raw json.RawMessage) (model.Setting, error) {
			in, err := decodeInput[model.SettingInput](raw)
			if err != nil {
				return model.Setting{}, err
			}
			s := model.Setting{}
			applySetting(&s, in)
			return s, nil
		},
		update: func(s *model.Setting, raw json.RawMessage) error {
			in, err := decodeInput[model.SettingInput](raw)
			if err != nil {
				return err
			}
			applySetting(s, in)
			return nil
		},
		toggle: func(s *model.Setting) model.StatusChange {
			c := flipActive(&s.IsActive)
			c.ID = s.ID
			return c
		},
		guard: func(s model.Setting) error {
			if s.IsActive {
				return errActiveSetting
			}
			return nil
		},
		afterToggle: func(c *collection[model.Setting], id int) {
			for i := range c.items {
				if c.items[i].ID != id {
					c.items[i].IsActive = false
				}
			}
		},
	}
}

func applySetting(s *model.Setting, in model.SettingInput) {
	s.AcademicYear = in.AcademicYear
	s.Semester = in.Semester
	s.StartDate = in.StartDate
	s.EndDate = in.EndDate
	s.RegistrationStart = in.RegistrationStart
	s.RegistrationEnd = in.RegistrationEnd
	s.IsActive = in.IsActive
}

func activeLabel(active bool) string {
	if active {
		return "Active"
	}
	return "Inactive"
}
