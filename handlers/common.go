package handlers

import (
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/NomadCrew/nomad-crew-planner/errors"
)

func bindJSONOrError(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return false
	}
	return true
}

// locationParam reads the optional tz query parameter. Absent means the
// server zone.
func locationParam(c *gin.Context) (*time.Location, bool) {
	tz := c.Query("tz")
	if tz == "" {
		return nil, true
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		_ = c.Error(apperrors.ValidationFailed("invalid timezone", err.Error()))
		return nil, false
	}
	return loc, true
}

// floatParam reads an optional finite numeric query parameter. Absent is
// zero.
func floatParam(c *gin.Context, name string) (float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		_ = c.Error(apperrors.ValidationFailed("invalid query parameter", name+" must be a number"))
		return 0, false
	}
	return v, true
}
