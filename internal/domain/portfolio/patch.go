package portfolio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"
	"time"
)

var (
	ErrEmptyPatch     = errors.New("update payload is empty")
	ErrMalformedPatch = errors.New("update payload is not a JSON object")
)

// SocialPatch carries only the social links present in the payload.
type SocialPatch struct {
	Github   *string
	Linkedin *string
	Twitter  *string
}

// Patch is a decoded partial update. A nil field was absent from the
// payload and leaves the stored value alone.
type Patch struct {
	Name       *string
	Title      *string
	About      *string
	Email      *string
	Social     *SocialPatch
	Skills     *[]Skill
	Projects   *[]Project
	Experience *[]Experience
	Education  *[]Education

	keys []string
}

// Keys lists every top-level key of the payload, including ignored ones.
func (p Patch) Keys() []string {
	return p.keys
}

func (p Patch) IsEmpty() bool {
	return len(p.keys) == 0
}

// PatchFrom builds a patch that overwrites every client-writable field with
// the values of src.
func PatchFrom(src *Portfolio) Patch {
	social := src.Social
	skills := slices.Clone(src.Skills)
	projects := slices.Clone(src.Projects)
	experience := slices.Clone(src.Experience)
	education := slices.Clone(src.Education)
	return Patch{
		Name:  &src.Name,
		Title: &src.Title,
		About: &src.About,
		Email: &src.Email,
		Social: &SocialPatch{
			Github:   &social.Github,
			Linkedin: &social.Linkedin,
			Twitter:  &social.Twitter,
		},
		Skills:     &skills,
		Projects:   &projects,
		Experience: &experience,
		Education:  &education,
		keys:       []string{"name", "title", "about", "email", "social", "skills", "projects", "experience", "education"},
	}
}

// New builds a fresh record from a patch, for the first write.
func New(patch Patch) *Portfolio {
	p := &Portfolio{
		Skills:     []Skill{},
		Projects:   []Project{},
		Experience: []Experience{},
		Education:  []Education{},
	}
	p.Apply(patch)
	return p
}

// Apply merges patch into p. List fields are replaced wholesale, social is
// merged key by key and scalar fields are overwritten.
func (p *Portfolio) Apply(patch Patch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.About != nil {
		p.About = *patch.About
	}
	if patch.Email != nil {
		p.Email = *patch.Email
	}
	if patch.Social != nil {
		if patch.Social.Github != nil {
			p.Social.Github = *patch.Social.Github
		}
		if patch.Social.Linkedin != nil {
			p.Social.Linkedin = *patch.Social.Linkedin
		}
		if patch.Social.Twitter != nil {
			p.Social.Twitter = *patch.Social.Twitter
		}
	}
	if patch.Skills != nil {
		p.Skills = cloneOrEmpty(*patch.Skills)
	}
	if patch.Projects != nil {
		p.Projects = cloneOrEmpty(*patch.Projects)
	}
	if patch.Experience != nil {
		p.Experience = cloneOrEmpty(*patch.Experience)
	}
	if patch.Education != nil {
		p.Education = cloneOrEmpty(*patch.Education)
	}
}

func cloneOrEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return slices.Clone(s)
}

// DecodePatch parses a JSON update payload. Type mismatches are reported
// together as a *ValidationError; the returned patch is only usable when err
// is nil. Storage-internal keys (_id, __v, createdAt, ...) and unknown keys
// are dropped.
func DecodePatch(data []byte) (Patch, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return Patch{}, ErrEmptyPatch
	}
	if data[0] != '{' {
		return Patch{}, ErrMalformedPatch
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Patch{}, fmt.Errorf("%w: %v", ErrMalformedPatch, err)
	}
	if len(fields) == 0 {
		return Patch{}, ErrEmptyPatch
	}

	p := Patch{keys: make([]string, 0, len(fields))}
	for k := range fields {
		p.keys = append(p.keys, k)
	}
	slices.Sort(p.keys)

	d := &patchDecoder{verr: &ValidationError{}}
	if raw, ok := fields["name"]; ok {
		p.Name = d.text(raw, "Name")
	}
	if raw, ok := fields["title"]; ok {
		p.Title = d.text(raw, "Title")
	}
	if raw, ok := fields["about"]; ok {
		p.About = d.text(raw, "About section")
	}
	if raw, ok := fields["email"]; ok {
		p.Email = d.text(raw, "Email")
	}
	if raw, ok := fields["social"]; ok {
		p.Social = d.social(raw)
	}
	if raw, ok := fields["skills"]; ok {
		p.Skills = d.skills(raw)
	}
	if raw, ok := fields["projects"]; ok {
		p.Projects = d.projects(raw)
	}
	if raw, ok := fields["experience"]; ok {
		p.Experience = d.experience(raw)
	}
	if raw, ok := fields["education"]; ok {
		p.Education = d.education(raw)
	}

	if err := d.verr.orNil(); err != nil {
		return Patch{}, err
	}
	return p, nil
}

type patchDecoder struct {
	verr *ValidationError
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func (d *patchDecoder) text(raw json.RawMessage, label string) *string {
	s := ""
	if !isNull(raw) {
		if err := json.Unmarshal(raw, &s); err != nil {
			d.verr.add(label + " must be a string")
			return nil
		}
	}
	s = strings.TrimSpace(s)
	return &s
}

func (d *patchDecoder) object(raw json.RawMessage, label string) (map[string]json.RawMessage, bool) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		d.verr.add(label + " must be an object")
		return nil, false
	}
	return m, true
}

func (d *patchDecoder) list(raw json.RawMessage, label string) ([]json.RawMessage, bool) {
	if isNull(raw) {
		return []json.RawMessage{}, true
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		d.verr.add(label + " must be a list")
		return nil, false
	}
	return items, true
}

func (d *patchDecoder) social(raw json.RawMessage) *SocialPatch {
	if isNull(raw) {
		empty := ""
		return &SocialPatch{Github: &empty, Linkedin: &empty, Twitter: &empty}
	}
	m, ok := d.object(raw, "Social")
	if !ok {
		return nil
	}
	sp := &SocialPatch{}
	if v, ok := m["github"]; ok {
		sp.Github = d.text(v, "Social github")
	}
	if v, ok := m["linkedin"]; ok {
		sp.Linkedin = d.text(v, "Social linkedin")
	}
	if v, ok := m["twitter"]; ok {
		sp.Twitter = d.text(v, "Social twitter")
	}
	return sp
}

func (d *patchDecoder) skills(raw json.RawMessage) *[]Skill {
	items, ok := d.list(raw, "Skills")
	if !ok {
		return nil
	}
	skills := make([]Skill, 0, len(items))
	for _, item := range items {
		m, ok := d.object(item, "Skill")
		if !ok {
			continue
		}
		var s Skill
		if v, ok := m["name"]; ok {
			if name := d.text(v, "Skill name"); name != nil {
				s.Name = *name
			}
		}
		v, ok := m["level"]
		if !ok || isNull(v) {
			d.verr.add("Skill level is required")
		} else {
			s.Level = d.level(v)
		}
		skills = append(skills, s)
	}
	return &skills
}

func (d *patchDecoder) level(raw json.RawMessage) int {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		d.verr.add("Skill level must be a number")
		return 0
	}
	if i, err := n.Int64(); err == nil {
		return clampInt(i)
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) {
		d.verr.add("Skill level must be an integer")
		return 0
	}
	return clampInt(clampFloat(f))
}

// clampInt and clampFloat keep huge levels out of int overflow; they still
// fail the range check in Validate.
func clampFloat(f float64) int64 {
	switch {
	case f > math.MaxInt32:
		return math.MaxInt32
	case f < math.MinInt32:
		return math.MinInt32
	}
	return int64(f)
}

func clampInt(i int64) int {
	switch {
	case i > math.MaxInt32:
		return math.MaxInt32
	case i < math.MinInt32:
		return math.MinInt32
	}
	return int(i)
}

func (d *patchDecoder) projects(raw json.RawMessage) *[]Project {
	items, ok := d.list(raw, "Projects")
	if !ok {
		return nil
	}
	projects := make([]Project, 0, len(items))
	for _, item := range items {
		var pr Project
		if err := json.Unmarshal(item, &pr); err != nil {
			d.typeError("Project", err)
			continue
		}
		if pr.Technologies == nil {
			pr.Technologies = []string{}
		}
		projects = append(projects, pr)
	}
	return &projects
}

type experiencePayload struct {
	Company     string  `json:"company"`
	Position    string  `json:"position"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
	Description string  `json:"description"`
}

func (d *patchDecoder) experience(raw json.RawMessage) *[]Experience {
	items, ok := d.list(raw, "Experience")
	if !ok {
		return nil
	}
	experience := make([]Experience, 0, len(items))
	for _, item := range items {
		var in experiencePayload
		if err := json.Unmarshal(item, &in); err != nil {
			d.typeError("Experience", err)
			continue
		}
		e := Experience{
			Company:     in.Company,
			Position:    in.Position,
			Description: in.Description,
		}
		if in.StartDate != nil && *in.StartDate != "" {
			t, err := ParseDate(*in.StartDate)
			if err != nil {
				d.verr.add("Experience start date is invalid")
			}
			e.StartDate = t
		}
		if in.EndDate != nil && *in.EndDate != "" {
			t, err := ParseDate(*in.EndDate)
			if err != nil {
				d.verr.add("Experience end date is invalid")
			} else {
				e.EndDate = &t
			}
		}
		experience = append(experience, e)
	}
	return &experience
}

func (d *patchDecoder) education(raw json.RawMessage) *[]Education {
	items, ok := d.list(raw, "Education")
	if !ok {
		return nil
	}
	education := make([]Education, 0, len(items))
	for _, item := range items {
		m := Education{}
		if err := json.Unmarshal(item, &m); err != nil || isNull(item) {
			d.verr.add("Education entry must be an object")
			continue
		}
		education = append(education, m)
	}
	return &education
}

func (d *patchDecoder) typeError(label string, err error) {
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) {
		if ute.Field == "" {
			d.verr.add(label + " must be an object")
			return
		}
		d.verr.add(fmt.Sprintf("%s %s must be %s", label, ute.Field, describeKind(ute.Type)))
		return
	}
	d.verr.add(label + " is invalid")
}

func describeKind(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Slice, reflect.Array:
		return "a list"
	case reflect.Int, reflect.Int64, reflect.Float64:
		return "a number"
	case reflect.Pointer:
		return describeKind(t.Elem())
	}
	return "a " + t.String()
}

var dateLayouts = []string{time.DateOnly, time.RFC3339Nano, time.RFC3339}

// ParseDate accepts "2006-01-02" and RFC 3339 timestamps.
func ParseDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, strings.TrimSpace(s))
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
