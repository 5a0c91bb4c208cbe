package portfolio

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Social struct {
	Github   string `json:"github" yaml:"github"`
	Linkedin string `json:"linkedin" yaml:"linkedin"`
	Twitter  string `json:"twitter" yaml:"twitter"`
}

type Skill struct {
	Name  string `json:"name" yaml:"name"`
	Level int    `json:"level" yaml:"level"`
}

type Project struct {
	Title        string   `json:"title" yaml:"title"`
	Description  string   `json:"description" yaml:"description"`
	Technologies []string `json:"technologies" yaml:"technologies"`
	DemoURL      string   `json:"demoUrl,omitempty" yaml:"demoUrl,omitempty"`
	GithubURL    string   `json:"githubUrl,omitempty" yaml:"githubUrl,omitempty"`
}

type Experience struct {
	Company     string     `json:"company" yaml:"company"`
	Position    string     `json:"position" yaml:"position"`
	StartDate   time.Time  `json:"startDate" yaml:"startDate"`
	EndDate     *time.Time `json:"endDate" yaml:"endDate"`
	Description string     `json:"description" yaml:"description"`
}

// Current reports whether the position has no end date.
func (e Experience) Current() bool {
	return e.EndDate == nil
}

// Education entries are stored as given.
type Education map[string]any

type Portfolio struct {
	ID         uuid.UUID    `json:"id" yaml:"id"`
	Name       string       `json:"name" yaml:"name"`
	Title      string       `json:"title" yaml:"title"`
	About      string       `json:"about" yaml:"about"`
	Email      string       `json:"email,omitempty" yaml:"email,omitempty"`
	Social     Social       `json:"social" yaml:"social"`
	Skills     []Skill      `json:"skills" yaml:"skills"`
	Projects   []Project    `json:"projects" yaml:"projects"`
	Experience []Experience `json:"experience" yaml:"experience"`
	Education  []Education  `json:"education" yaml:"education"`
	Version    int          `json:"version" yaml:"version"`
	CreatedAt  time.Time    `json:"createdAt" yaml:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt" yaml:"updatedAt"`
}

func (p *Portfolio) FullTitle() string {
	return p.Name + " - " + p.Title
}

// IsStored reports whether p came from the store rather than Default.
func (p *Portfolio) IsStored() bool {
	return p.ID != uuid.Nil
}

// PrepareForSave runs the pre-persist hooks: social links are normalized
// and timestamps are stamped.
func (p *Portfolio) PrepareForSave(now time.Time) {
	p.Social = p.Social.Normalize()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

// Repository persists the single portfolio record.
//
// Get returns an apperror NotFound when nothing is stored. Create and Update
// return an apperror Conflict when another writer got there first: Create
// when a record already exists, Update when the stored version no longer
// equals expectedVersion.
type Repository interface {
	Get(ctx context.Context) (*Portfolio, error)
	Create(ctx context.Context, p *Portfolio) error
	Update(ctx context.Context, p *Portfolio, expectedVersion int) error
}

// Cache holds the last stored portfolio. Get returns (nil, nil) on a miss.
type Cache interface {
	Get(ctx context.Context) (*Portfolio, error)
	Set(ctx context.Context, p *Portfolio) error
	Invalidate(ctx context.Context) error
}
