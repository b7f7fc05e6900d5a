package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jadygoy/cafe_backend/models"
)

func createUserHandler(directory *models.UserDirectory) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewUser
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		user, err := directory.CreateUser(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func listUsersHandler(directory *models.UserDirectory) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := directory.ListUsers(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

func loginHandler(directory *models.UserDirectory) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		user, err := directory.Login(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.LoginInfo{
			Message: models.LoginSuccessMessage,
			User:    user,
		})
	}
}
