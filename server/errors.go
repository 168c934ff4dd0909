package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"insurecalc/service"
	"insurecalc/spreadsheet"
)

// statusFor maps a service error kind to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, spreadsheet.ErrInvalidWorkbook):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrCityStandardNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAmbiguousCityStandard):
		return http.StatusConflict
	case errors.Is(err, service.ErrNoSalaryData):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func errorCode(err error) string {
	if errors.Is(err, spreadsheet.ErrInvalidWorkbook) {
		return "INVALID_SPREADSHEET"
	}
	return service.ErrorCode(err)
}

// respondError writes {"error", "code"} plus the violation list for validation failures
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	body := gin.H{
		"error": err.Error(),
		"code":  errorCode(err),
	}

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		body["violations"] = verr.Violations
	}
	var perr *spreadsheet.ParseError
	if errors.As(err, &perr) {
		body["cells"] = perr.Errors
	}

	if status == http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"path":  c.FullPath(),
			"error": err,
		}).Error("Request failed")
	}

	c.JSON(status, body)
}
