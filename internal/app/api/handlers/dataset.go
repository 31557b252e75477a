package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/saasgen/internal/app/service/generator"
	"github.com/fatflowers/saasgen/internal/models"
	"github.com/fatflowers/saasgen/pkg/config"
	"github.com/fatflowers/saasgen/pkg/response"
)

// previewSampleSize is how many customers and costs a preview echoes back.
const previewSampleSize = 5

// DatasetGenerator is the part of the generator used by the API.
type DatasetGenerator interface {
	Generate(ctx context.Context, p *generator.Params) (*models.Dataset, error)
}

// PreviewDatasetRequest overrides the configured generator settings. All
// fields are optional.
type PreviewDatasetRequest struct {
	Seed      *uint64 `json:"seed"`
	Customers *int    `json:"customers"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
}

type PreviewDatasetResponse struct {
	Seed        uint64             `json:"seed"`
	WindowStart string             `json:"window_start"`
	WindowEnd   string             `json:"window_end"`
	Summary     models.Summary     `json:"summary"`
	Customers   []*models.Customer `json:"sample_customers"`
	Costs       []*models.Cost     `json:"sample_costs"`
}

func previewParams(cfg *config.Config, req *PreviewDatasetRequest) (*generator.Params, error) {
	gc := cfg.Generator
	if req.Seed != nil {
		gc.Seed = *req.Seed
	}
	if req.Customers != nil {
		gc.Customers = *req.Customers
	}
	if req.StartDate != "" {
		gc.StartDate = req.StartDate
	}
	if req.EndDate != "" {
		gc.EndDate = req.EndDate
	}
	if limit := cfg.Server.PreviewMaxCustomers; limit > 0 && gc.Customers > limit {
		return nil, fmt.Errorf("customers %d exceeds preview limit %d", gc.Customers, limit)
	}
	p, err := generator.ParamsFromConfig(gc)
	if err != nil {
		return nil, err
	}
	if limit := cfg.Server.PreviewMaxDays; limit > 0 {
		if days := p.Start.DaysUntil(p.End) + 1; days > limit {
			return nil, fmt.Errorf("window of %d days exceeds preview limit %d", days, limit)
		}
	}
	return p, nil
}

// @Summary      Preview a dataset
// @Description  Generates a dataset in memory and returns summary figures and a small sample.
// @Tags         Datasets
// @Accept       json
// @Produce      json
// @Param        request body PreviewDatasetRequest false "Generator overrides"
// @Success      200  {object}  response.APIResponse[handlers.PreviewDatasetResponse]
// @Router       /api/v1/datasets/preview [post]
func ApiPreviewDataset(gen DatasetGenerator, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PreviewDatasetRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		p, err := previewParams(cfg, &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		ds, err := gen.Generate(c.Request.Context(), p)
		if err != nil {
			code := response.APIResponseCodeError
			if errors.Is(err, generator.ErrInvalidConfig) {
				code = response.APIResponseCodeBadRequest
			}
			c.JSON(http.StatusOK, response.ErrorT[any](code, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(&PreviewDatasetResponse{
			Seed:        p.Seed,
			WindowStart: p.Start.String(),
			WindowEnd:   p.End.String(),
			Summary:     ds.Summary(),
			Customers:   ds.Customers[:min(previewSampleSize, len(ds.Customers))],
			Costs:       ds.Costs[:min(previewSampleSize, len(ds.Costs))],
		}))
	}
}

func RegisterDatasetRoutes(r gin.IRouter, gen DatasetGenerator, cfg *config.Config) {
	r.POST("/preview", ApiPreviewDataset(gen, cfg))
}
