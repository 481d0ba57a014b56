package main

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/chitty_backend/models"
)

func getPaymentsByChittyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		payments, err := models.GetPaymentsByChittiId(c.Request.Context(), c.Param("chittiId"))
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, "", payments)
	}
}

func getPaymentsByChittyAndMonthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		month, err := strconv.Atoi(c.Param("month"))
		if err != nil {
			respondBadRequest(c, "month must be an integer")
			return
		}
		payments, err := models.GetPaymentsByChittiIdAndMonth(c.Request.Context(), c.Param("chittiId"), month)
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, "", payments)
	}
}

func getPaymentsByMemberHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		payments, err := models.GetPaymentsByMemberId(c.Request.Context(), c.Param("memberId"))
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, "", payments)
	}
}
