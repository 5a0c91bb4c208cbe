package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	portfolioUC "github.com/khoahotran/portfolio-builder/internal/application/usecase/portfolio"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

type PortfolioHandler struct {
	portfolioUseCase *portfolioUC.PortfolioUseCase
	logger           logger.Logger
}

func NewPortfolioHandler(uc *portfolioUC.PortfolioUseCase, log logger.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioUseCase: uc,
		logger:           log,
	}
}

func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	output, err := h.portfolioUseCase.ExecuteGetPortfolio(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, ToPortfolioDTO(output.Portfolio))
}

// UpdatePortfolio applies the request body as a partial update. The body is
// decoded by the use case so that type errors surface as validation messages.
func (h *PortfolioHandler) UpdatePortfolio(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.Error(apperror.NewInvalidInput("failed to read request body", err))
		return
	}

	input, err := portfolioUC.ParseUpdateInput(body)
	if err != nil {
		c.Error(err)
		return
	}

	output, err := h.portfolioUseCase.ExecuteUpdatePortfolio(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}

	h.logger.Info("Portfolio saved",
		zap.Bool("created", output.Created),
		zap.Strings("fields", input.Patch.Keys()),
		zap.Int("version", output.Portfolio.Version),
	)
	c.JSON(http.StatusOK, ToPortfolioDTO(output.Portfolio))
}
