package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/chitty_backend/models"
	"github.com/mmdatafocus/chitty_backend/models/reports"
)

func createChittyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewChitty
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindingError(c, err)
			return
		}
		chitty, err := models.CreateChitty(c.Request.Context(), &input)
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondCreated(c, "Chitty created successfully", chitty)
	}
}

func getAllChittiesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		chitties, err := models.GetAllActiveChitties(c.Request.Context())
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, "", chitties)
	}
}

func getChittyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		chitty, err := models.GetChitty(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, "", chitty)
	}
}

func updateChittyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewChitty
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindingError(c, err)
			return
		}
		chitty, err := models.UpdateChitty(c.Request.Context(), c.Param("id"), &input)
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, "Chitty updated successfully", chitty)
	}
}

func deleteChittyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := models.DeleteChitty(c.Request.Context(), c.Param("id")); err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, "Chitty deleted successfully", nil)
	}
}

func getChittyMembersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 404 for an unknown chitty, not an empty list
		if _, err := models.GetChitty(c.Request.Context(), c.Param("id")); err != nil {
			respondModelError(c, err)
			return
		}
		members, err := models.GetMembersByChittiId(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, "", members)
	}
}

func addMemberToChittyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		memberName := c.Query("memberName")
		if memberName == "" {
			respondBadRequest(c, "memberName query parameter is required")
			return
		}
		chitty, err := models.AddMemberToChitty(c.Request.Context(), c.Param("id"), memberName)
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, "Member added successfully", chitty)
	}
}

func removeMemberFromChittyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		err := models.RemoveMemberFromChitty(c.Request.Context(), c.Param("id"), c.Param("memberId"))
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, "Member removed successfully", nil)
	}
}

func searchChittiesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		chitties, err := models.SearchChitties(c.Request.Context(), c.Query("query"))
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, "", chitties)
	}
}

func exportChittySummaryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := reports.ExportChittySummaryExcel(c.Request.Context())
		if err != nil {
			respondModelError(c, err)
			return
		}
		defer f.Close()

		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename=chitty_summary.xlsx")
		if err := f.Write(c.Writer); err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
		}
	}
}
