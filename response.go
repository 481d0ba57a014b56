package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/chitty_backend/utils"
)

// ApiResponse is the JSON envelope for all entity endpoints.
type ApiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, ApiResponse{Success: true, Message: message, Data: data})
}

func respondCreated(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, ApiResponse{Success: true, Message: message, Data: data})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ApiResponse{Success: false, Message: message})
}

// respondBindingError maps validator failures to a field -> tag map;
// non-validator binding errors fall back to the plain envelope.
func respondBindingError(c *gin.Context, err error) {
	if fields := utils.ProcessValidationErrors(err); fields != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": fields})
		return
	}
	respondBadRequest(c, err.Error())
}

// respondModelError: missing records are a bare 404, everything else a 400
// envelope carrying the domain error message.
func respondModelError(c *gin.Context, err error) {
	if errors.Is(err, utils.ErrorRecordNotFound) {
		c.Status(http.StatusNotFound)
		return
	}
	respondBadRequest(c, err.Error())
}
