package portfolio

import "strings"

const (
	MinSkillLevel = 0
	MaxSkillLevel = 100
)

// ValidationError lists every violated constraint, in field order.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

func (e *ValidationError) add(msg string) {
	e.Messages = append(e.Messages, msg)
}

func (e *ValidationError) orNil() error {
	if e == nil || len(e.Messages) == 0 {
		return nil
	}
	return e
}

// Validate checks the whole record. It returns a *ValidationError or nil.
func (p *Portfolio) Validate() error {
	verr := &ValidationError{}

	if strings.TrimSpace(p.Name) == "" {
		verr.add("Name is required")
	}
	if strings.TrimSpace(p.Title) == "" {
		verr.add("Title is required")
	}
	if strings.TrimSpace(p.About) == "" {
		verr.add("About section is required")
	}

	for _, s := range p.Skills {
		if strings.TrimSpace(s.Name) == "" {
			verr.add("Skill name is required")
		}
		if s.Level < MinSkillLevel {
			verr.add("Skill level must be at least 0")
		}
		if s.Level > MaxSkillLevel {
			verr.add("Skill level cannot exceed 100")
		}
	}

	for _, pr := range p.Projects {
		if strings.TrimSpace(pr.Title) == "" {
			verr.add("Project title is required")
		}
		if strings.TrimSpace(pr.Description) == "" {
			verr.add("Project description is required")
		}
	}

	for _, e := range p.Experience {
		if strings.TrimSpace(e.Company) == "" {
			verr.add("Experience company is required")
		}
		if strings.TrimSpace(e.Position) == "" {
			verr.add("Experience position is required")
		}
		if e.StartDate.IsZero() {
			verr.add("Experience start date is required")
		}
	}

	return verr.orNil()
}
