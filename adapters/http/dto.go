package http

import (
	"time"

	"github.com/khoahotran/portfolio-builder/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-builder/internal/domain/search"
)

// Portfolio DTOs
type SocialDTO struct {
	Github   string `json:"github"`
	Linkedin string `json:"linkedin"`
	Twitter  string `json:"twitter"`
}

type SkillDTO struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

type ProjectDTO struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	DemoURL      string   `json:"demoUrl,omitempty"`
	GithubURL    string   `json:"githubUrl,omitempty"`
}

type ExperienceDTO struct {
	Company     string     `json:"company"`
	Position    string     `json:"position"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Description string     `json:"description"`
}

// PortfolioDTO is the wire shape of the portfolio. Identity, timestamps and
// fullTitle are only present for a stored record.
type PortfolioDTO struct {
	ID         string           `json:"id,omitempty"`
	Name       string           `json:"name"`
	Title      string           `json:"title"`
	FullTitle  string           `json:"fullTitle,omitempty"`
	About      string           `json:"about"`
	Email      string           `json:"email,omitempty"`
	Social     SocialDTO        `json:"social"`
	Skills     []SkillDTO       `json:"skills"`
	Projects   []ProjectDTO     `json:"projects"`
	Experience []ExperienceDTO  `json:"experience"`
	Education  []map[string]any `json:"education"`
	CreatedAt  *time.Time       `json:"createdAt,omitempty"`
	UpdatedAt  *time.Time       `json:"updatedAt,omitempty"`
}

func ToPortfolioDTO(p *portfolio.Portfolio) PortfolioDTO {
	dto := PortfolioDTO{
		Name:  p.Name,
		Title: p.Title,
		About: p.About,
		Email: p.Email,
		Social: SocialDTO{
			Github:   p.Social.Github,
			Linkedin: p.Social.Linkedin,
			Twitter:  p.Social.Twitter,
		},
	}
	if p.IsStored() {
		createdAt, updatedAt := p.CreatedAt, p.UpdatedAt
		dto.ID = p.ID.String()
		dto.FullTitle = p.FullTitle()
		dto.CreatedAt = &createdAt
		dto.UpdatedAt = &updatedAt
	}

	dto.Skills = make([]SkillDTO, len(p.Skills))
	for i, s := range p.Skills {
		dto.Skills[i] = SkillDTO{Name: s.Name, Level: s.Level}
	}

	dto.Projects = make([]ProjectDTO, len(p.Projects))
	for i, pr := range p.Projects {
		technologies := pr.Technologies
		if technologies == nil {
			technologies = []string{}
		}
		dto.Projects[i] = ProjectDTO{
			Title:        pr.Title,
			Description:  pr.Description,
			Technologies: technologies,
			DemoURL:      pr.DemoURL,
			GithubURL:    pr.GithubURL,
		}
	}

	dto.Experience = make([]ExperienceDTO, len(p.Experience))
	for i, e := range p.Experience {
		dto.Experience[i] = ExperienceDTO{
			Company:     e.Company,
			Position:    e.Position,
			StartDate:   e.StartDate,
			EndDate:     e.EndDate,
			Description: e.Description,
		}
	}

	dto.Education = make([]map[string]any, len(p.Education))
	for i, ed := range p.Education {
		dto.Education[i] = ed
	}
	return dto
}

// Search DTOs
type SearchResultDTO struct {
	Section string  `json:"section"`
	Title   string  `json:"title"`
	Snippet string  `json:"snippet"`
	Rank    float32 `json:"rank"`
}

func ToSearchResultDTO(res search.SearchResult) SearchResultDTO {
	return SearchResultDTO{
		Section: res.Section,
		Title:   res.Title,
		Snippet: res.Snippet,
		Rank:    res.Rank,
	}
}
