package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tableflip.dev/termwise/pkg/course"
	"tableflip.dev/termwise/pkg/optimizer"
)

const termHeader = optimizer.TermHeader

const (
	msgInvalidTerm     = `Invalid or missing semester. X-Term header must be either "fall" or "winter"`
	msgServerConfig    = "Server error - Unable to process request"
	msgValidateFailed  = "Unable to validate courses. Please try again later."
	msgValidateError   = "Failed to validate courses"
	msgGenerateFailed  = "Unable to generate schedule. Please try again later."
	msgGenerateError   = "Failed to generate schedule"
	msgCoursesNotArray = "Invalid request: courses must be provided as an array"
	msgNoValidCodes    = "No valid course codes provided"
)

// errBadRequest carries a message that is safe to return to the client.
type errBadRequest string

func (e errBadRequest) Error() string { return string(e) }

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// term reads X-Term, aborting with 400 when it is missing or unknown.
func term(c *gin.Context) (course.Term, bool) {
	t := course.Term(c.GetHeader(termHeader))
	if !t.Valid() {
		abort(c, http.StatusBadRequest, msgInvalidTerm)
		return "", false
	}
	return t, true
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"upstream": s.Upstream.Configured(),
	})
}

func (s *Server) validateCourses(c *gin.Context) {
	t, ok := term(c)
	if !ok {
		return
	}

	var body struct {
		Courses json.RawMessage `json:"courses"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		abort(c, http.StatusBadRequest, msgCoursesNotArray)
		return
	}
	codes, err := courseCodes(body.Courses)
	if err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}

	if !s.Upstream.Configured() {
		s.logger().Error("upstream not configured")
		abort(c, http.StatusInternalServerError, msgServerConfig)
		return
	}

	if cached, ok := s.Cache.Get(t, codes); ok {
		c.Header("X-Cache", "HIT")
		c.Data(http.StatusOK, "application/json; charset=utf-8", cached)
		return
	}

	data, err := s.Upstream.ValidateCourses(c.Request.Context(), t, codes)
	if err != nil {
		s.upstreamError(c, err, msgValidateFailed, msgValidateError)
		return
	}
	if err := s.Cache.Put(t, codes, data); err != nil {
		s.logger().Warn("cache write failed", zap.Error(err))
	}
	c.Header("X-Cache", "MISS")
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// courseCodes extracts the trimmed, non-empty course codes.
func courseCodes(raw json.RawMessage) ([]string, error) {
	var courses []map[string]interface{}
	if len(raw) == 0 || json.Unmarshal(raw, &courses) != nil {
		return nil, errBadRequest(msgCoursesNotArray)
	}
	var codes []string
	for _, co := range courses {
		code, _ := co["courseCode"].(string)
		if code = strings.TrimSpace(code); code != "" {
			codes = append(codes, code)
		}
	}
	if len(codes) == 0 {
		return nil, errBadRequest(msgNoValidCodes)
	}
	return codes, nil
}

func (s *Server) generateSchedule(c *gin.Context) {
	t, ok := term(c)
	if !ok {
		return
	}

	var prefs map[string]interface{}
	if err := c.ShouldBindJSON(&prefs); err != nil || prefs == nil {
		abort(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := checkPreferences(prefs); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}

	if !s.Upstream.Configured() {
		s.logger().Error("upstream not configured")
		abort(c, http.StatusInternalServerError, msgServerConfig)
		return
	}

	data, err := s.Upstream.FilterCourses(c.Request.Context(), t, prefs)
	if err != nil {
		s.upstreamError(c, err, msgGenerateFailed, msgGenerateError)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// checkPreferences applies the structural checks the optimizer relies on.
// JSON numbers arrive as float64.
func checkPreferences(p map[string]interface{}) error {
	courses, ok := p["courses"].([]interface{})
	if !ok || len(courses) == 0 {
		return errBadRequest("At least one course is required")
	}
	for _, raw := range courses {
		co, ok := raw.(map[string]interface{})
		if !ok {
			return errBadRequest("Invalid course format")
		}
		code, ok := co["courseCode"].(string)
		if !ok || strings.TrimSpace(code) == "" {
			return errBadRequest("Invalid course format")
		}
		if st, present := co["sectionTypes"]; present && st != nil {
			list, ok := st.([]interface{})
			if !ok {
				return errBadRequest("Invalid section types")
			}
			for _, v := range list {
				name, _ := v.(string)
				if name != string(course.Online) && name != string(course.Hybrid) && name != string(course.InPerson) {
					return errBadRequest("Invalid section types")
				}
			}
		}
	}

	if bt, present := p["bufferTime"]; present && bt != nil && bt != "" {
		s, ok := bt.(string)
		if !ok || !acceptedBufferTimes[s] {
			return errBadRequest(fmt.Sprintf("Invalid buffer time: %v", bt))
		}
	}

	if da, present := p["dailyAvailability"]; present && da != nil {
		days, ok := da.([]interface{})
		if !ok {
			return errBadRequest("Invalid availability format")
		}
		for _, raw := range days {
			d, ok := raw.(map[string]interface{})
			if !ok {
				return errBadRequest("Invalid day in availability")
			}
			name, _ := d["day"].(string)
			if !isWeekDay(name) {
				return errBadRequest("Invalid day in availability")
			}
			if _, ok := d["availableTimes"].([]interface{}); !ok {
				return errBadRequest("Invalid available times format")
			}
			n, ok := d["maxClassesPerDay"].(float64)
			if !ok || n < 0 {
				return errBadRequest("Invalid max classes per day")
			}
		}
	}
	return nil
}

var acceptedBufferTimes = map[string]bool{
	"No Buffer":     true,
	"30 Minutes":    true,
	"1 Hour":        true,
	"1+ Hours":      true,
	"No preference": true,
	"30m":           true,
	"1h":            true,
	"1h+":           true,
}

func isWeekDay(name string) bool {
	for _, d := range course.WeekDays() {
		if name == string(d) {
			return true
		}
	}
	return false
}

// upstreamError relays the upstream status with a generic message, or 500
// when the call never completed. Detail only reaches the log.
func (s *Server) upstreamError(c *gin.Context, err error, statusMsg, failMsg string) {
	_ = c.Error(err)
	var apiErr *optimizer.APIError
	if errors.As(err, &apiErr) {
		s.logger().Error("upstream returned an error",
			zap.Int("status", apiErr.Status),
			zap.String("body", apiErr.Body),
		)
		abort(c, apiErr.Status, statusMsg)
		return
	}
	s.logger().Error("upstream call failed", zap.Error(err))
	abort(c, http.StatusInternalServerError, failMsg)
}
