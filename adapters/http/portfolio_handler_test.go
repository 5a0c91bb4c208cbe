package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/portfolio-builder/adapters/persistence"
	portfolioUC "github.com/khoahotran/portfolio-builder/internal/application/usecase/portfolio"
	searchUC "github.com/khoahotran/portfolio-builder/internal/application/usecase/search"
	"github.com/khoahotran/portfolio-builder/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-builder/internal/domain/search"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

type memoryRepo struct {
	mu     sync.Mutex
	stored *portfolio.Portfolio
	getErr error
	writes int
}

func (r *memoryRepo) Get(ctx context.Context) (*portfolio.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	if r.stored == nil {
		return nil, apperror.NewNotFound("portfolio", "primary")
	}
	cp := *r.stored
	return &cp, nil
}

func (r *memoryRepo) Create(ctx context.Context, p *portfolio.Portfolio) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stored != nil {
		return apperror.NewConflict("portfolio", "slot", "1")
	}
	r.writes++
	p.Version = 1
	cp := *p
	r.stored = &cp
	return nil
}

func (r *memoryRepo) Update(ctx context.Context, p *portfolio.Portfolio, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stored == nil || r.stored.Version != expectedVersion {
		return apperror.NewConflict("portfolio", "version", "stale")
	}
	r.writes++
	p.Version = expectedVersion + 1
	cp := *p
	r.stored = &cp
	return nil
}

// gatedRepo parks the first Get after it has read the store, until release
// is closed.
type gatedRepo struct {
	*memoryRepo
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGatedRepo(stored *portfolio.Portfolio) *gatedRepo {
	return &gatedRepo{
		memoryRepo: &memoryRepo{stored: stored},
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
}

func (r *gatedRepo) Get(ctx context.Context) (*portfolio.Portfolio, error) {
	p, err := r.memoryRepo.Get(ctx)
	gated := false
	r.once.Do(func() { gated = true })
	if gated {
		close(r.entered)
		<-r.release
	}
	return p, err
}

type nopPublisher struct{}

func (nopPublisher) PublishPortfolioEvent(ctx context.Context, e portfolio.Event) error { return nil }

type stubSearchRepo struct {
	results []search.SearchResult
}

func (s *stubSearchRepo) Search(ctx context.Context, query string, limit int) ([]search.SearchResult, error) {
	if len(s.results) > limit {
		return s.results[:limit], nil
	}
	return s.results, nil
}

type PortfolioHandlerTestSuite struct {
	suite.Suite
	Router      *gin.Engine
	repo        *memoryRepo
	mr          *miniredis.Miniredis
	portfolioUC *portfolioUC.PortfolioUseCase
}

func (s *PortfolioHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.mr = miniredis.RunT(s.T())
	s.repo = &memoryRepo{}
	s.mount(s.repo)
}

// mount wires a router over repo and the suite's miniredis cache.
func (s *PortfolioHandlerTestSuite) mount(repo portfolio.Repository) {
	testLogger := logger.NewNopLogger()

	rdb := redis.NewClient(&redis.Options{Addr: s.mr.Addr()})
	s.T().Cleanup(func() { _ = rdb.Close() })

	cache := persistence.NewRedisPortfolioCache(rdb, time.Minute, testLogger)
	s.portfolioUC = portfolioUC.NewPortfolioUseCase(repo, cache, nopPublisher{}, testLogger)
	searchRepo := &stubSearchRepo{results: []search.SearchResult{
		{Section: search.SectionProject, Title: "Ledger", Snippet: "*Go* ledger", Rank: 0.5},
		{Section: search.SectionProfile, Title: "Ada - Engineer", Snippet: "builds in *Go*", Rank: 0.2},
	}}

	s.Router = NewRouter(Handlers{
		Portfolio: NewPortfolioHandler(s.portfolioUC, testLogger),
		Search:    NewSearchHandler(searchUC.NewSearchUseCase(searchRepo, testLogger), testLogger),
		Feed:      NewFeedHandler(portfolioUC.NewFeedUseCase(s.portfolioUC, "https://ada.dev", testLogger), testLogger),
	}, testLogger, "portfolio-api-test")
	s.Router.GET("/boom", func(c *gin.Context) { panic("kaboom") })
}

func (s *PortfolioHandlerTestSuite) TearDownTest() {
	s.portfolioUC.Wait()
}

func TestPortfolioHandler(t *testing.T) {
	suite.Run(t, new(PortfolioHandlerTestSuite))
}

func (s *PortfolioHandlerTestSuite) do(method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)

	var out map[string]any
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") && rr.Body.Len() > 0 && rr.Body.Bytes()[0] == '{' {
		s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &out))
	}
	return rr, out
}

func (s *PortfolioHandlerTestSuite) Test_Get_ReturnsDefaultWithoutPersisting() {
	rr, body := s.do(http.MethodGet, "/api/portfolio", "")

	s.Equal(http.StatusOK, rr.Code)
	s.Equal("Your Name", body["name"])
	s.Equal("Web Developer", body["title"])
	s.NotContains(body, "id")
	s.NotContains(body, "fullTitle")
	s.Len(body["skills"], 4)
	s.Nil(s.repo.stored)
	s.Zero(s.repo.writes)
	s.False(s.mr.Exists("portfolio:primary"))
}

func (s *PortfolioHandlerTestSuite) Test_Put_EmptyBodies() {
	for _, body := range []string{"", "{}", "null", "  {  }  "} {
		rr, out := s.do(http.MethodPut, "/api/portfolio", body)
		s.Equal(http.StatusBadRequest, rr.Code, "body %q", body)
		s.Equal(map[string]any{"message": "Request body cannot be empty"}, out, "body %q", body)
	}
	s.Zero(s.repo.writes)
}

func (s *PortfolioHandlerTestSuite) Test_Put_MalformedJSON() {
	for _, body := range []string{`{"name":`, `["a"]`, `"text"`, `42`} {
		rr, out := s.do(http.MethodPut, "/api/portfolio", body)
		s.Equal(http.StatusBadRequest, rr.Code, "body %q", body)
		s.Equal("Invalid JSON body", out["message"], "body %q", body)
		s.NotEmpty(out["error"])
	}
}

func (s *PortfolioHandlerTestSuite) Test_Put_CreatesThenGetReturnsStored() {
	rr, out := s.do(http.MethodPut, "/api/portfolio", `{
		"name": "Ada",
		"title": "Engineer",
		"about": "Builds engines",
		"social": {"github": "ada", "twitter": "@ada"},
		"skills": [{"name": "Go", "level": 95}]
	}`)
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())

	s.Equal("Ada - Engineer", out["fullTitle"])
	s.NotEmpty(out["id"])
	social := out["social"].(map[string]any)
	s.Equal("https://github.com/ada", social["github"])
	s.Equal("https://twitter.com/ada", social["twitter"])
	s.Equal("", social["linkedin"])
	s.Equal([]any{map[string]any{"name": "Go", "level": float64(95)}}, out["skills"])
	s.Equal([]any{}, out["projects"])

	rr, got := s.do(http.MethodGet, "/api/portfolio", "")
	s.Equal(http.StatusOK, rr.Code)
	s.Equal(out, got)
	s.True(s.mr.Exists("portfolio:primary"))
}

func (s *PortfolioHandlerTestSuite) Test_Get_SlowReadCannotRestoreOlderRecord() {
	stored := portfolio.Default()
	stored.ID = uuid.New()
	stored.Name = "Old"
	stored.Version = 1
	repo := newGatedRepo(stored)
	s.mount(repo)

	slow := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		rr := httptest.NewRecorder()
		s.Router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/portfolio", nil))
		slow <- rr
	}()
	<-repo.entered

	rr, out := s.do(http.MethodPut, "/api/portfolio", `{"name":"New"}`)
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	s.Equal("New", out["name"])

	close(repo.release)
	s.Equal(http.StatusOK, (<-slow).Code)

	for i := 0; i < 2; i++ {
		rr, got := s.do(http.MethodGet, "/api/portfolio", "")
		s.Equal(http.StatusOK, rr.Code)
		s.Equal("New", got["name"])
		s.Equal(out, got)
	}
}

func (s *PortfolioHandlerTestSuite) Test_Put_MergesIntoStoredRecord() {
	s.seed()

	rr, out := s.do(http.MethodPut, "/api/portfolio", `{
		"about": "Updated",
		"social": {"linkedin": "ada-l"},
		"skills": [{"name": "Rust", "level": 70}],
		"unknownField": true,
		"_id": "ignored"
	}`)
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())

	s.Equal("Ada", out["name"])
	s.Equal("Updated", out["about"])
	social := out["social"].(map[string]any)
	s.Equal("https://github.com/ada", social["github"])
	s.Equal("https://linkedin.com/in/ada-l", social["linkedin"])
	s.Equal([]any{map[string]any{"name": "Rust", "level": float64(70)}}, out["skills"])
	s.NotContains(out, "unknownField")
	s.Equal(2, s.repo.stored.Version)
}

func (s *PortfolioHandlerTestSuite) Test_Put_ValidationIsAllOrNothing() {
	s.seed()
	before := *s.repo.stored

	rr, out := s.do(http.MethodPut, "/api/portfolio", `{"name":"Changed","skills":[{"name":"Go","level":150}]}`)
	s.Equal(http.StatusBadRequest, rr.Code)
	s.Equal("Validation Error", out["message"])
	s.Equal([]any{"Skill level cannot exceed 100"}, out["errors"])

	s.Equal(before.Name, s.repo.stored.Name)
	s.Equal(before.Version, s.repo.stored.Version)
}

func (s *PortfolioHandlerTestSuite) Test_Put_TypeErrorsAreValidationErrors() {
	rr, out := s.do(http.MethodPut, "/api/portfolio", `{"name":"Ada","title":"Engineer","about":"x","skills":[{"name":"Go","level":"x"}]}`)
	s.Equal(http.StatusBadRequest, rr.Code)
	s.Equal("Validation Error", out["message"])
	s.NotEmpty(out["errors"])
	s.Nil(s.repo.stored)
}

func (s *PortfolioHandlerTestSuite) Test_Get_StoreFailureIs500() {
	s.repo.getErr = errors.New("connection refused")

	rr, out := s.do(http.MethodGet, "/api/portfolio", "")
	s.Equal(http.StatusInternalServerError, rr.Code)
	s.Equal("Something went wrong!", out["message"])
	s.Contains(out["error"], "connection refused")
}

func (s *PortfolioHandlerTestSuite) Test_PanicIs500() {
	rr, out := s.do(http.MethodGet, "/boom", "")
	s.Equal(http.StatusInternalServerError, rr.Code)
	s.Equal(map[string]any{"message": "Something went wrong!", "error": "kaboom"}, out)
}

func (s *PortfolioHandlerTestSuite) Test_Search() {
	rr, _ := s.do(http.MethodGet, "/api/portfolio/search", "")
	s.Equal(http.StatusBadRequest, rr.Code)

	rr, _ = s.do(http.MethodGet, "/api/portfolio/search?q=go&limit=abc", "")
	s.Equal(http.StatusBadRequest, rr.Code)

	rr, _ = s.do(http.MethodGet, "/api/portfolio/search?q=go&limit=1", "")
	s.Require().Equal(http.StatusOK, rr.Code)
	var results []SearchResultDTO
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &results))
	s.Equal([]SearchResultDTO{{Section: "project", Title: "Ledger", Snippet: "*Go* ledger", Rank: 0.5}}, results)
}

func (s *PortfolioHandlerTestSuite) Test_Feed() {
	rr, _ := s.do(http.MethodGet, "/api/portfolio/feed", "")
	s.Equal(http.StatusOK, rr.Code)
	s.Equal("application/rss+xml; charset=utf-8", rr.Header().Get("Content-Type"))
	s.Contains(rr.Body.String(), "<rss")
	s.Contains(rr.Body.String(), "Project 1")
}

func (s *PortfolioHandlerTestSuite) Test_HealthAndCORS() {
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://ada.dev")
	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)

	s.Equal(http.StatusOK, rr.Code)
	s.Equal("*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.JSONEq(s.T(), `{"status":"UP"}`, rr.Body.String())
}

func (s *PortfolioHandlerTestSuite) seed() {
	rr, _ := s.do(http.MethodPut, "/api/portfolio", `{"name":"Ada","title":"Engineer","about":"Builds engines","social":{"github":"ada"}}`)
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
}
