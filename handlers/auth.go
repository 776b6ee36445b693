package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/sales_backend/config"
	"bitbucket.org/mmdatafocus/sales_backend/models"
	"bitbucket.org/mmdatafocus/sales_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// register creates an ordinary user; admins are provisioned with cmd/seed-admin.
func register(c *gin.Context) {
	var input models.NewUser
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	input.Role = models.UserRoleUser
	result, err := models.CreateUser(c.Request.Context(), &input)
	respond(c, http.StatusCreated, result, err)
}

func login(c *gin.Context) {
	var input loginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := models.Login(c.Request.Context(), input.Username, input.Password)
	respond(c, http.StatusOK, result, err)
}

func me(c *gin.Context) {
	result, err := models.GetCurrentUser(c.Request.Context())
	respondFound(c, result, err)
}

func changePassword(c *gin.Context) {
	var input changePasswordRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := models.ChangePassword(c.Request.Context(), input.OldPassword, input.NewPassword)
	if err == nil {
		username, _ := utils.GetUsernameFromContext(c.Request.Context())
		config.GetLogger().WithFields(logrus.Fields{
			"module":   "User",
			"funcName": "ChangePassword",
			"username": username,
		}).Info("password changed")
	}
	respond(c, http.StatusOK, result, err)
}
