package portfolio

import "time"

// Default is served by the read path while nothing has been stored. It is
// never persisted by reads; every call returns a fresh copy.
func Default() *Portfolio {
	return &Portfolio{
		Name:   "Your Name",
		Title:  "Web Developer",
		About:  "A passionate developer creating amazing web experiences.",
		Email:  "your.email@example.com",
		Social: Social{},
		Skills: []Skill{
			{Name: "JavaScript", Level: 90},
			{Name: "React", Level: 85},
			{Name: "Node.js", Level: 80},
			{Name: "HTML/CSS", Level: 90},
		},
		Projects: []Project{
			{
				Title:        "Project 1",
				Description:  "A brief description of project 1",
				Technologies: []string{"React", "Node.js", "MongoDB"},
				DemoURL:      "#",
				GithubURL:    "#",
			},
			{
				Title:        "Project 2",
				Description:  "A brief description of project 2",
				Technologies: []string{"React", "Express", "PostgreSQL"},
				DemoURL:      "#",
				GithubURL:    "#",
			},
		},
		Experience: []Experience{
			{
				Company:     "Your Company",
				Position:    "Web Developer",
				StartDate:   time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
				EndDate:     nil,
				Description: "Brief description of your role and achievements.",
			},
		},
		Education: []Education{},
	}
}
