package search

import (
	"context"
)

const (
	SectionProfile    = "profile"
	SectionProject    = "project"
	SectionExperience = "experience"
	SectionEducation  = "education"
)

type SearchResult struct {
	Section string  `json:"section"`
	Title   string  `json:"title"`
	Snippet string  `json:"snippet"`
	Rank    float32 `json:"rank"`
}

type Repository interface {
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
}
