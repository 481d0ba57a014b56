package main

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/chitty_backend/models"
	"github.com/mmdatafocus/chitty_backend/models/reports"
)

func generateMonthlySlipHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		chittiId := c.Query("chittiId")
		if chittiId == "" {
			respondBadRequest(c, "chittiId query parameter is required")
			return
		}
		month, err := strconv.Atoi(c.Query("month"))
		if err != nil {
			respondBadRequest(c, "month query parameter must be an integer")
			return
		}
		slip, err := models.GenerateMonthlySlip(c.Request.Context(), chittiId, month)
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, "Monthly slip generated", slip)
	}
}

func getSlipHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		slip, err := models.GetSlip(c.Request.Context(), c.Param("slipId"))
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, "", slip)
	}
}

func getSlipsByChittyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		slips, err := models.GetSlipsByChittiId(c.Request.Context(), c.Param("chittiId"))
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, "", slips)
	}
}

func getSlipByChittyAndMonthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		month, err := strconv.Atoi(c.Param("month"))
		if err != nil {
			respondBadRequest(c, "month must be an integer")
			return
		}
		slip, err := models.GetSlipByChittiIdAndMonth(c.Request.Context(), c.Param("chittiId"), month)
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, "", slip)
	}
}

func markSlipMemberLiftedHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		memberId := c.Query("memberId")
		if memberId == "" {
			respondBadRequest(c, "memberId query parameter is required")
			return
		}
		slip, err := models.MarkSlipMemberLifted(c.Request.Context(), c.Param("slipId"), memberId)
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, "Member marked as lifted on slip", slip)
	}
}

func markPaymentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		memberId := c.Query("memberId")
		if memberId == "" {
			respondBadRequest(c, "memberId query parameter is required")
			return
		}
		isPaid, err := strconv.ParseBool(c.Query("isPaid"))
		if err != nil {
			respondBadRequest(c, "isPaid query parameter must be a boolean")
			return
		}
		slip, err := models.MarkPayment(c.Request.Context(), c.Param("slipId"), memberId, isPaid)
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, "Payment updated", slip)
	}
}

func exportSlipHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		slipId := c.Param("slipId")
		f, err := reports.ExportSlipExcel(c.Request.Context(), slipId)
		if err != nil {
			respondModelError(c, err)
			return
		}
		defer f.Close()

		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=slip_%s.xlsx", slipId))
		if err := f.Write(c.Writer); err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
		}
	}
}

func deleteSlipHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := models.DeleteSlip(c.Request.Context(), c.Param("slipId")); err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, "Monthly slip deleted successfully", nil)
	}
}
