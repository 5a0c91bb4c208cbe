package portfolio

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Default(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidate_Violations(t *testing.T) {
	p := &Portfolio{
		Name:  " ",
		Title: "Engineer",
		Skills: []Skill{
			{Name: "", Level: 150},
			{Name: "Go", Level: -1},
			{Name: "SQL", Level: 100},
		},
		Projects:   []Project{{Title: "", Description: "x"}},
		Experience: []Experience{{Company: "C"}},
	}

	err := p.Validate()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{
		"Name is required",
		"About section is required",
		"Skill name is required",
		"Skill level cannot exceed 100",
		"Skill level must be at least 0",
		"Project title is required",
		"Experience position is required",
		"Experience start date is required",
	}, verr.Messages)
}

func TestValidate_Bounds(t *testing.T) {
	p := Default()
	p.Skills = []Skill{{Name: "min", Level: 0}, {Name: "max", Level: 100}}
	assert.NoError(t, p.Validate())
}

func TestValidate_DoesNotTouchRecordOnFailure(t *testing.T) {
	existing := seeded(t)
	next := *existing

	p, err := DecodePatch([]byte(`{"name":"Grace","skills":[{"name":"","level":150}]}`))
	require.NoError(t, err)
	next.Apply(p)

	require.Error(t, next.Validate())
	assert.Equal(t, "Ada", existing.Name)
	assert.Equal(t, []Skill{{Name: "Go", Level: 90}, {Name: "SQL", Level: 70}}, existing.Skills)
}

func TestFullTitle(t *testing.T) {
	p := &Portfolio{Name: "Ada", Title: "Engineer"}
	assert.Equal(t, "Ada - Engineer", p.FullTitle())
}

func TestDefault_FreshCopies(t *testing.T) {
	a := Default()
	a.Skills[0].Level = 1
	a.Name = "changed"

	b := Default()
	assert.Equal(t, "Your Name", b.Name)
	assert.Equal(t, 90, b.Skills[0].Level)
	assert.False(t, b.IsStored())
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), b.Experience[0].StartDate)
	assert.True(t, b.Experience[0].Current())
}
