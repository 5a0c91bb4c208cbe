package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	searchUC "github.com/khoahotran/portfolio-builder/internal/application/usecase/search"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

type SearchHandler struct {
	searchUseCase *searchUC.SearchUseCase
	logger        logger.Logger
}

func NewSearchHandler(uc *searchUC.SearchUseCase, log logger.Logger) *SearchHandler {
	return &SearchHandler{
		searchUseCase: uc,
		logger:        log,
	}
}

func (h *SearchHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.Error(apperror.NewInvalidInput("'q' query param is required", nil))
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		c.Error(apperror.NewInvalidInput("'limit' must be a positive integer", err))
		return
	}

	output, err := h.searchUseCase.Execute(c.Request.Context(), searchUC.SearchInput{
		Query: query,
		Limit: limit,
	})
	if err != nil {
		c.Error(err)
		return
	}

	dtos := make([]SearchResultDTO, len(output.Results))
	for i, res := range output.Results {
		dtos[i] = ToSearchResultDTO(res)
	}
	c.JSON(http.StatusOK, dtos)
}
