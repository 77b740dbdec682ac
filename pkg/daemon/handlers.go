package daemon

import (
	"fmt"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/beltcalc/beltcalc/pkg/capacity"
	"github.com/beltcalc/beltcalc/pkg/config"
	"github.com/beltcalc/beltcalc/pkg/metrics"
	"github.com/beltcalc/beltcalc/pkg/types"
	"github.com/beltcalc/beltcalc/pkg/version"
)

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}

func getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(conf)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

func setTrace(c *gin.Context) {
	var t bool
	if err := c.BindJSON(&t); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	conf.SetTrace(t)
	if err := conf.Save(); err != nil {
		logrus.Errorf("saveConfig failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	swapEngine("trace")

	logrus.Infof("set engine tracing to %t", t)

	c.IndentedJSON(http.StatusCreated, "ok")
}

func setDefaultAngle(c *gin.Context) {
	var d float64
	if err := c.BindJSON(&d); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if math.IsNaN(d) || d < 0 || d > 90 {
		err := fmt.Errorf("default angle must be between 0 and 90, got %v", d)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	conf.SetDefaultAngle(d)
	if err := conf.Save(); err != nil {
		logrus.Errorf("saveConfig failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	swapEngine("default-angle")

	logrus.Infof("set default angle to %v", d)

	c.IndentedJSON(http.StatusCreated, "ok")
}

func getTable(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, capacity.Coefficients())
}

func postAngle(c *gin.Context) {
	var req types.AngleRequest
	if err := c.BindJSON(&req); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	c.IndentedJSON(http.StatusOK, resolveAngle(engine(), req.Label))
}

func postKFactor(c *gin.Context) {
	var req types.KFactorRequest
	if err := c.BindJSON(&req); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	e := engine()
	trough := resolveAngle(e, req.Trough).Degrees
	surcharge := resolveAngle(e, req.Surcharge).Degrees
	flat := capacity.IsFlat(trough)
	if flat {
		metrics.ObserveFallback(metrics.FallbackFlatBelt)
	}
	metrics.ObserveCalculation("k-factor")

	c.IndentedJSON(http.StatusOK, types.KFactorResponse{
		TroughDeg:    trough,
		SurchargeDeg: surcharge,
		Flat:         flat,
		K:            e.KFactor(trough, surcharge),
	})
}

func postCrossSection(c *gin.Context) {
	var req types.GeometryRequest
	if err := c.BindJSON(&req); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	e := engine()
	g := resolveGeometry(e, req)
	cs := e.CrossSection(g)
	if cs.Flat {
		metrics.ObserveFallback(metrics.FallbackFlatBelt)
	}
	metrics.ObserveCalculation("cross-section")

	if err := checkFinite(cs.AreaM2, cs.EffectiveWidthM, cs.WidthM); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	c.IndentedJSON(http.StatusOK, types.CrossSectionResponse{
		Geometry:     g,
		CrossSection: cs,
	})
}

func postCapacity(c *gin.Context) {
	var req types.CapacityRequest
	if err := c.BindJSON(&req); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	resp := evaluateCapacity(engine(), req)
	if err := checkFinite(resp.CrossSection.AreaM2, resp.Result.AreaM2, resp.Result.VolumeFlowM3H, resp.Result.MassFlowTPH); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	c.IndentedJSON(http.StatusOK, resp)
}

func postSize(c *gin.Context) {
	var req types.SizeRequest
	if err := c.BindJSON(&req); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if !(req.TargetTPH > 0) || math.IsInf(req.TargetTPH, 0) {
		err := fmt.Errorf("target capacity must be a positive number of t/h, got %v", req.TargetTPH)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	widths := req.Widths
	if len(widths) == 0 {
		widths = conf.StandardWidths()
	}

	e := engine()
	trough := resolveAngle(e, req.Trough).Degrees
	surcharge := resolveAngle(e, req.Surcharge).Degrees
	sel := e.SelectWidth(req.TargetTPH, trough, surcharge, capacity.Material{
		SpeedMPS:    req.SpeedMPS,
		DensityTPM3: req.DensityTPM3,
	}, widths)
	metrics.ObserveCalculation("size")

	if err := checkFinite(sel.Result.AreaM2, sel.Result.VolumeFlowM3H, sel.Result.MassFlowTPH, sel.Utilisation); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	c.IndentedJSON(http.StatusOK, types.SizeResponse{
		TroughDeg:    trough,
		SurchargeDeg: surcharge,
		Selection:    sel,
	})
}

func resolveAngle(e *capacity.Engine, label capacity.AngleLabel) types.AngleResponse {
	deg, ok := e.ParseAngle(label)
	if !ok {
		metrics.ObserveFallback(metrics.FallbackDefaultAngle)
	}
	return types.AngleResponse{Degrees: deg, Recognised: ok}
}

func resolveGeometry(e *capacity.Engine, req types.GeometryRequest) capacity.Geometry {
	return capacity.Geometry{
		WidthMM:      req.WidthMM,
		TroughDeg:    resolveAngle(e, req.Trough).Degrees,
		SurchargeDeg: resolveAngle(e, req.Surcharge).Degrees,
	}
}

// checkFinite rejects results that JSON cannot carry. Inputs near the float64
// limit overflow the area to +Inf.
func checkFinite(values ...float64) error {
	for _, v := range values {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return fmt.Errorf("inputs are out of range: result is %v", v)
		}
	}
	return nil
}

// evaluateCapacity serves both POST /capacity and websocket sessions.
func evaluateCapacity(e *capacity.Engine, req types.CapacityRequest) types.CapacityResponse {
	g := resolveGeometry(e, req.GeometryRequest)
	m := capacity.Material{SpeedMPS: req.SpeedMPS, DensityTPM3: req.DensityTPM3}
	cs, res := e.Evaluate(g, m)

	if cs.Flat {
		metrics.ObserveFallback(metrics.FallbackFlatBelt)
	}
	if res.Fallback {
		metrics.ObserveFallback(metrics.FallbackDegenerateArea)
	}
	metrics.ObserveCalculation("capacity")

	return types.CapacityResponse{
		Geometry:     g,
		Material:     m,
		CrossSection: cs,
		Result:       res,
	}
}
