package portfolio

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	tm, err := ParseDate(s)
	require.NoError(t, err)
	return tm
}

func seeded(t *testing.T) *Portfolio {
	t.Helper()
	end := mustTime(t, "2022-06-30")
	return &Portfolio{
		Name:  "Ada",
		Title: "Engineer",
		About: "Writes programs",
		Social: Social{
			Github:   "https://github.com/ada",
			Linkedin: "https://linkedin.com/in/ada",
			Twitter:  "https://twitter.com/ada",
		},
		Skills:   []Skill{{Name: "Go", Level: 90}, {Name: "SQL", Level: 70}},
		Projects: []Project{{Title: "Engine", Description: "Analytical", Technologies: []string{"brass"}}},
		Experience: []Experience{{
			Company:   "Babbage & Co",
			Position:  "Analyst",
			StartDate: mustTime(t, "2020-01-01"),
			EndDate:   &end,
		}},
		Education: []Education{{"institution": "Home", "degree": "Maths"}},
	}
}

func TestDecodePatch_Empty(t *testing.T) {
	for _, body := range []string{"", "   ", "null", "{}", " { } "} {
		_, err := DecodePatch([]byte(body))
		assert.ErrorIs(t, err, ErrEmptyPatch, "body %q", body)
	}
}

func TestDecodePatch_Malformed(t *testing.T) {
	for _, body := range []string{"[1,2]", `"name"`, "{", `{"name":}`} {
		_, err := DecodePatch([]byte(body))
		assert.ErrorIs(t, err, ErrMalformedPatch, "body %q", body)
	}
}

func TestDecodePatch_Fields(t *testing.T) {
	body := `{
		"_id": "abc", "__v": 3, "createdAt": "2020-01-01", "unknown": true,
		"name": "  Ada  ",
		"social": {"github": "ada"},
		"skills": [{"name": " Rust ", "level": 80}, {"name": "Go", "level": "75"}, {"name": "C", "level": 60.0}],
		"projects": [{"title": "P", "description": "D"}],
		"experience": [{"company": "C", "position": "P", "startDate": "2021-03-01", "endDate": ""},
		               {"company": "C2", "position": "P2", "startDate": "2019-01-01T00:00:00Z", "endDate": "2020-12-31"}],
		"education": [{"institution": "MIT", "field": "CS"}]
	}`

	p, err := DecodePatch([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, []string{"__v", "_id", "createdAt", "education", "experience", "name", "projects", "skills", "social", "unknown"}, p.Keys())
	require.NotNil(t, p.Name)
	assert.Equal(t, "Ada", *p.Name)
	assert.Nil(t, p.Title)
	assert.Nil(t, p.About)

	require.NotNil(t, p.Social)
	assert.Equal(t, "ada", *p.Social.Github)
	assert.Nil(t, p.Social.Linkedin)
	assert.Nil(t, p.Social.Twitter)

	require.NotNil(t, p.Skills)
	want := []Skill{{Name: "Rust", Level: 80}, {Name: "Go", Level: 75}, {Name: "C", Level: 60}}
	if diff := cmp.Diff(want, *p.Skills); diff != "" {
		t.Errorf("skills mismatch (-want +got):\n%s", diff)
	}

	require.NotNil(t, p.Projects)
	assert.Equal(t, []Project{{Title: "P", Description: "D", Technologies: []string{}}}, *p.Projects)

	require.NotNil(t, p.Experience)
	exp := *p.Experience
	require.Len(t, exp, 2)
	assert.True(t, exp[0].Current())
	assert.Equal(t, mustTime(t, "2021-03-01"), exp[0].StartDate)
	require.NotNil(t, exp[1].EndDate)
	assert.Equal(t, mustTime(t, "2020-12-31"), *exp[1].EndDate)

	require.NotNil(t, p.Education)
	assert.Equal(t, []Education{{"institution": "MIT", "field": "CS"}}, *p.Education)
}

func TestDecodePatch_TypeErrors(t *testing.T) {
	body := `{
		"name": 42,
		"social": "ada",
		"skills": [{"name": "Go"}, {"name": "C", "level": 12.5}, {"name": "X", "level": true}, 7],
		"projects": [{"title": "P", "description": "D", "technologies": "go"}],
		"experience": [{"company": "C", "position": "P", "startDate": "yesterday"}],
		"education": "MIT"
	}`

	_, err := DecodePatch([]byte(body))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{
		"Name must be a string",
		"Social must be an object",
		"Skill level is required",
		"Skill level must be an integer",
		"Skill level must be a number",
		"Skill must be an object",
		"Project technologies must be a list",
		"Experience start date is invalid",
		"Education must be a list",
	}, verr.Messages)
}

func TestDecodePatch_NullValues(t *testing.T) {
	p, err := DecodePatch([]byte(`{"name": null, "social": null, "skills": null}`))
	require.NoError(t, err)

	assert.Equal(t, "", *p.Name)
	assert.Equal(t, "", *p.Social.Github)
	assert.Equal(t, "", *p.Social.Linkedin)
	assert.Equal(t, "", *p.Social.Twitter)
	assert.Empty(t, *p.Skills)
}

func TestApply_ReplacesListsWholesale(t *testing.T) {
	existing := seeded(t)
	before := seeded(t)

	p, err := DecodePatch([]byte(`{"skills": [{"name": "Rust", "level": 80}]}`))
	require.NoError(t, err)

	existing.Apply(p)

	assert.Equal(t, []Skill{{Name: "Rust", Level: 80}}, existing.Skills)
	assert.Equal(t, before.Projects, existing.Projects)
	assert.Equal(t, before.Experience, existing.Experience)
	assert.Equal(t, before.Education, existing.Education)
	assert.Equal(t, before.Name, existing.Name)
	assert.Equal(t, before.Social, existing.Social)
}

func TestApply_SocialShallowMerge(t *testing.T) {
	existing := seeded(t)

	p, err := DecodePatch([]byte(`{"social": {"github": "grace"}}`))
	require.NoError(t, err)

	existing.Apply(p)

	assert.Equal(t, "grace", existing.Social.Github)
	assert.Equal(t, "https://linkedin.com/in/ada", existing.Social.Linkedin)
	assert.Equal(t, "https://twitter.com/ada", existing.Social.Twitter)
}

func TestApply_DoesNotAliasPatch(t *testing.T) {
	skills := []Skill{{Name: "Go", Level: 50}}
	p := Patch{Skills: &skills, keys: []string{"skills"}}

	existing := seeded(t)
	existing.Apply(p)
	skills[0].Level = 99

	assert.Equal(t, 50, existing.Skills[0].Level)
}

func TestDecodePatch_HugeLevelsKeepTheirSign(t *testing.T) {
	for _, tc := range []struct {
		raw  string
		want string
	}{
		{`1e20`, "Skill level cannot exceed 100"},
		{`"1e20"`, "Skill level cannot exceed 100"},
		{`99999999999`, "Skill level cannot exceed 100"},
		{`-1e20`, "Skill level must be at least 0"},
	} {
		p, err := DecodePatch([]byte(`{"name":"Ada","title":"Engineer","about":"...","skills":[{"name":"Go","level":` + tc.raw + `}]}`))
		require.NoError(t, err, tc.raw)

		var verr *ValidationError
		require.ErrorAs(t, New(p).Validate(), &verr, tc.raw)
		assert.Equal(t, []string{tc.want}, verr.Messages, tc.raw)
	}
}

func TestNew_FromPatch(t *testing.T) {
	p, err := DecodePatch([]byte(`{"name":"Ada","title":"Engineer","about":"...","skills":[{"name":"Rust","level":80}]}`))
	require.NoError(t, err)

	created := New(p)

	assert.Equal(t, "Ada", created.Name)
	assert.Equal(t, []Skill{{Name: "Rust", Level: 80}}, created.Skills)
	assert.NotNil(t, created.Projects)
	assert.NotNil(t, created.Experience)
	assert.NotNil(t, created.Education)
	assert.NoError(t, created.Validate())
}

func TestPatchFrom_RoundTrip(t *testing.T) {
	src := seeded(t)

	got := New(PatchFrom(src))

	if diff := cmp.Diff(src, got); diff != "" {
		t.Errorf("PatchFrom round trip mismatch (-want +got):\n%s", diff)
	}
}
