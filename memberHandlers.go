package main

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/chitty_backend/models"
)

func getMemberHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		member, err := models.GetMember(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, "", member)
	}
}

func updateMemberHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewMember
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindingError(c, err)
			return
		}
		member, err := models.UpdateMember(c.Request.Context(), c.Param("id"), &input)
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, "Member updated successfully", member)
	}
}

func deleteMemberHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := models.DeleteMember(c.Request.Context(), c.Param("id")); err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, "Member deleted successfully", nil)
	}
}

func markMemberLiftedHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		month, err := strconv.Atoi(c.Query("month"))
		if err != nil {
			respondBadRequest(c, "month query parameter must be an integer")
			return
		}
		member, err := models.MarkMemberLifted(c.Request.Context(), c.Param("id"), month)
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, "Member marked as lifted", member)
	}
}

func getLiftedMembersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		members, err := models.GetLiftedMembers(c.Request.Context(), c.Param("chittiId"))
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, "", members)
	}
}

func getNonLiftedMembersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		members, err := models.GetNonLiftedMembers(c.Request.Context(), c.Param("chittiId"))
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, "", members)
	}
}
