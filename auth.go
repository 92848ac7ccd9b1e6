package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"bitbucket.org/mmdatafocus/imis_backend/config"
	"bitbucket.org/mmdatafocus/imis_backend/models"
	"bitbucket.org/mmdatafocus/imis_backend/utils"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func loginHandler(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	user, err := models.GetUserByUsername(c.Request.Context(), req.Username)
	if err != nil && !errors.Is(err, utils.ErrorRecordNotFound) {
		config.LogError(config.GetLogger(), "main", "loginHandler", "fetch user", req.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not process login"})
		return
	}
	if user == nil || !user.CheckPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	role := "user"
	if user.IsAdmin {
		role = "admin"
	}
	token, err := utils.JwtGenerate(user.ID, role, user.IsAdmin)
	if err != nil {
		config.LogError(config.GetLogger(), "main", "loginHandler", "generate token", user.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
