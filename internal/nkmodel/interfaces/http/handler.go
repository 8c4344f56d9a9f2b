package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/nkmodel/internal/nkmodel/application"
	"github.com/wyfcoding/nkmodel/internal/nkmodel/domain"
	"github.com/wyfcoding/nkmodel/pkg/logger"
)

// percentFactor ?percent=true 时对序列的展示缩放
const percentFactor = 100

type simulateRequest struct {
	Name       string                   `json:"name" binding:"max=100"`
	Parameters domain.ModelParameters   `json:"parameters"`
	Initial    domain.InitialConditions `json:"initial"`
	Shock      domain.ShockSpec         `json:"shock"`
	// 缺省时使用 simulation.default_horizon
	Horizon *int `json:"horizon" binding:"omitempty,gte=1"`
}

type batchRequest struct {
	Scenarios []simulateRequest `json:"scenarios" binding:"required,min=1,dive"`
}

type calibratedRequest struct {
	Name       string                 `json:"name" binding:"max=100"`
	Parameters domain.ModelParameters `json:"parameters"`
	Shock      domain.ShockSpec       `json:"shock"`
	Horizon    *int                   `json:"horizon" binding:"omitempty,gte=1"`
	W0         float64                `json:"w0"`
}

type previewRequest struct {
	Shock   domain.ShockSpec `json:"shock"`
	Horizon *int             `json:"horizon" binding:"omitempty,gte=1"`
}

type listQuery struct {
	Page     int  `form:"page" binding:"omitempty,gte=1"`
	PageSize int  `form:"page_size" binding:"omitempty,gte=1"`
	Percent  bool `form:"percent"`
}

type Handler struct {
	app            *application.SimulationApplicationService
	calibrator     application.ParameterSource
	defaultHorizon int
}

// NewHandler 注册路由；calibrator 为 nil 时 /calibration 返回 503
func NewHandler(r *gin.Engine, app *application.SimulationApplicationService, calibrator application.ParameterSource, defaultHorizon int) *Handler {
	if defaultHorizon < 1 {
		defaultHorizon = 1
	}
	h := &Handler{app: app, calibrator: calibrator, defaultHorizon: defaultHorizon}
	v1 := r.Group("/api/v1/nkmodel")
	{
		v1.POST("/simulations", h.Run)
		v1.POST("/simulations/batch", h.RunBatch)
		v1.POST("/simulations/calibrated", h.RunCalibrated)
		v1.GET("/simulations", h.List)
		v1.GET("/simulations/:id", h.Get)
		v1.POST("/shock-series", h.PreviewShock)
		v1.GET("/calibration", h.Calibration)
	}
	return h
}

func (h *Handler) horizon(v *int) int {
	if v == nil {
		return h.defaultHorizon
	}
	return *v
}

func (h *Handler) toCommand(req simulateRequest) application.RunSimulationCommand {
	return application.RunSimulationCommand{
		Name:       req.Name,
		Parameters: req.Parameters,
		Initial:    req.Initial,
		Shock:      req.Shock,
		Horizon:    h.horizon(req.Horizon),
	}
}

func (h *Handler) Run(c *gin.Context) {
	var req simulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dto, err := h.app.RunSimulation(c.Request.Context(), h.toCommand(req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, present(dto, wantPercent(c)))
}

func (h *Handler) RunBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cmds := make([]application.RunSimulationCommand, len(req.Scenarios))
	for i, s := range req.Scenarios {
		cmds[i] = h.toCommand(s)
	}
	dtos, err := h.app.RunBatch(c.Request.Context(), cmds)
	if err != nil {
		writeError(c, err)
		return
	}

	pct := wantPercent(c)
	out := make([]*application.SimulationDTO, len(dtos))
	for i, d := range dtos {
		out[i] = present(d, pct)
	}
	c.JSON(http.StatusCreated, gin.H{"items": out})
}

func (h *Handler) RunCalibrated(c *gin.Context) {
	var req calibratedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := h.app.RunCalibrated(c.Request.Context(), application.RunCalibratedCommand{
		Name:       req.Name,
		Parameters: req.Parameters,
		Shock:      req.Shock,
		Horizon:    h.horizon(req.Horizon),
		W0:         req.W0,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	out.Simulation = present(out.Simulation, wantPercent(c))
	c.JSON(http.StatusCreated, out)
}

func (h *Handler) Get(c *gin.Context) {
	dto, err := h.app.GetSimulation(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, present(dto, wantPercent(c)))
}

func (h *Handler) List(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list, err := h.app.ListSimulations(c.Request.Context(), q.Page, q.PageSize)
	if err != nil {
		writeError(c, err)
		return
	}
	for i, d := range list.Items {
		list.Items[i] = present(d, q.Percent)
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) PreviewShock(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	series, err := h.app.PreviewShock(c.Request.Context(), req.Shock, h.horizon(req.Horizon))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, series)
}

func (h *Handler) Calibration(c *gin.Context) {
	if h.calibrator == nil {
		writeError(c, domain.ErrCalibrationUnavailable)
		return
	}
	cal, err := h.calibrator.Calibrate(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, application.CalibrationDTO{
		Inflation:        cal.Inflation,
		OutputGap:        cal.OutputGap,
		RealInterestRate: cal.RealInterestRate,
		AsOf:             cal.AsOf,
	})
}

func wantPercent(c *gin.Context) bool {
	v, err := strconv.ParseBool(c.DefaultQuery("percent", "false"))
	return err == nil && v
}

// present 返回用于展示的副本，引擎输出本身不被修改
func present(dto *application.SimulationDTO, percent bool) *application.SimulationDTO {
	if dto == nil || !percent || dto.Result == nil {
		return dto
	}
	cp := *dto
	cp.Result = dto.Result.Scaled(percentFactor)
	return &cp
}

func writeError(c *gin.Context, err error) {
	ctx := c.Request.Context()
	var code int
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		code = http.StatusBadRequest
	case errors.Is(err, domain.ErrNumericDegeneracy):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrRunNotFound):
		code = http.StatusNotFound
	case errors.Is(err, domain.ErrCalibrationUnavailable):
		code = http.StatusServiceUnavailable
	default:
		code = http.StatusInternalServerError
		logger.Error(ctx, "request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(code, gin.H{"error": err.Error(), "request_id": logger.RequestID(ctx)})
}
