package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/saasgen/internal/app/service/report"
	"github.com/fatflowers/saasgen/pkg/response"
)

// ReportRunner runs KPI queries.
type ReportRunner interface {
	Run(ctx context.Context, name report.Name) (*report.Table, error)
}

// @Summary      List reports
// @Tags         Reports
// @Produce      json
// @Success      200  {object}  response.APIResponse[[]string]
// @Router       /api/v1/reports [get]
func ApiListReports(c *gin.Context) {
	c.JSON(http.StatusOK, response.OKT(report.Names()))
}

// @Summary      Run a report
// @Description  Runs one KPI query against the loaded dataset.
// @Tags         Reports
// @Produce      json
// @Param        name path string true "Report name"
// @Success      200  {object}  response.APIResponse[report.Table]
// @Router       /api/v1/reports/{name} [get]
func ApiRunReport(svc ReportRunner) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := report.Name(c.Param("name"))
		if !name.Valid() {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeNotFound, "unknown report "+string(name)))
			return
		}
		table, err := svc.Run(c.Request.Context(), name)
		if err != nil {
			code := response.APIResponseCodeError
			if errors.Is(err, report.ErrUnknownReport) {
				code = response.APIResponseCodeNotFound
			}
			_ = c.Error(err)
			c.JSON(http.StatusOK, response.ErrorT[any](code, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(table))
	}
}

func RegisterReportRoutes(r gin.IRouter, svc ReportRunner) {
	r.GET("", ApiListReports)
	r.GET("/:name", ApiRunReport(svc))
}
