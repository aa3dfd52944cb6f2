package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lvillar/docsmith"
	"github.com/lvillar/docsmith/qrcode"
)

var errSessionNotFound = errors.New("httpapi: session not found")

// APIError is the body of every error response. It never carries technical
// detail; that goes to the log.
type APIError struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func abort(c *gin.Context, status int, title, description string) {
	c.AbortWithStatusJSON(status, APIError{Title: title, Description: description})
}

func invalidRequest(c *gin.Context, description string) {
	abort(c, http.StatusBadRequest, "Invalid request", description)
}

// abortWithError maps err onto a status and user-facing message. format
// selects the generation failure text; empty means a generic message.
func abortWithError(c *gin.Context, err error, format docsmith.Format) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, docsmith.ErrBusy):
		abort(c, http.StatusConflict, "Export in progress", "Please wait for the current export to finish.")
	case errors.Is(err, errSessionNotFound):
		abort(c, http.StatusNotFound, "Session expired", "This editing session no longer exists. Please start again.")
	case errors.Is(err, docsmith.ErrUnknownKind):
		abort(c, http.StatusNotFound, "Unknown document type", "This document type is not available.")
	case errors.Is(err, docsmith.ErrUnsupportedFormat):
		abort(c, http.StatusBadRequest, "Unsupported format", "This document cannot be downloaded in that format.")
	case errors.Is(err, qrcode.ErrEmptyData):
		abort(c, http.StatusBadRequest, "Error", qrcode.ErrEmptyData.Error())
	case docsmith.StageOf(err) == "" && errors.Is(err, docsmith.ErrInvalidParam):
		invalidRequest(c, "Please check the submitted values and try again.")
	case format != "":
		abort(c, http.StatusInternalServerError, "Error", docsmith.UserMessage(format))
	default:
		abort(c, http.StatusInternalServerError, "Error", "Something went wrong. Please try again.")
	}
}
