package handlers

import (
	"net/http"
	"strconv"

	"bitbucket.org/mmdatafocus/sales_backend/models"
	"bitbucket.org/mmdatafocus/sales_backend/utils"
	"github.com/gin-gonic/gin"
)

// customers

func listCustomers(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}
	result, err := models.GetCustomers(c.Request.Context(), page)
	respond(c, http.StatusOK, result, err)
}

func searchCustomers(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}
	result, err := models.SearchCustomers(c.Request.Context(), c.Query("keyword"), page)
	respond(c, http.StatusOK, result, err)
}

func getCustomer(c *gin.Context) {
	result, err := models.GetCustomer(c.Request.Context(), c.Param("code"))
	respondFound(c, result, err)
}

func customerExists(c *gin.Context) {
	exists, err := models.CustomerExists(c.Request.Context(), c.Param("code"))
	respondExists(c, exists, err)
}

func customerTaxCodeExists(c *gin.Context) {
	exists, err := models.CustomerTaxCodeExists(c.Request.Context(), c.Param("tax_code"))
	respondExists(c, exists, err)
}

func getCustomerByTaxCode(c *gin.Context) {
	result, err := models.GetCustomerByTaxCode(c.Request.Context(), c.Param("tax_code"))
	respondFound(c, result, err)
}

func createCustomer(c *gin.Context) {
	var input models.NewCustomer
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := models.CreateCustomer(c.Request.Context(), &input)
	respond(c, http.StatusCreated, result, err)
}

func updateCustomer(c *gin.Context) {
	var input models.CustomerPatch
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := models.UpdateCustomer(c.Request.Context(), c.Param("code"), &input)
	respond(c, http.StatusOK, result, err)
}

func deleteCustomer(c *gin.Context) {
	result, err := models.DeleteCustomer(c.Request.Context(), c.Param("code"))
	respond(c, http.StatusOK, result, err)
}

// products

func listProducts(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}
	result, err := models.GetProducts(c.Request.Context(), page)
	respond(c, http.StatusOK, result, err)
}

func searchProducts(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}
	result, err := models.SearchProducts(c.Request.Context(), c.Query("name"), page)
	respond(c, http.StatusOK, result, err)
}

func getProduct(c *gin.Context) {
	result, err := models.GetProduct(c.Request.Context(), c.Param("code"))
	respondFound(c, result, err)
}

func productExists(c *gin.Context) {
	exists, err := models.ProductExists(c.Request.Context(), c.Param("code"))
	respondExists(c, exists, err)
}

func createProduct(c *gin.Context) {
	var input models.NewProduct
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := models.CreateProduct(c.Request.Context(), &input)
	respond(c, http.StatusCreated, result, err)
}

func updateProduct(c *gin.Context) {
	var input models.ProductPatch
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := models.UpdateProduct(c.Request.Context(), c.Param("code"), &input)
	respond(c, http.StatusOK, result, err)
}

func deleteProduct(c *gin.Context) {
	result, err := models.DeleteProduct(c.Request.Context(), c.Param("code"))
	respond(c, http.StatusOK, result, err)
}

// accounts

func listAccounts(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}
	result, err := models.GetAccounts(c.Request.Context(), page)
	respond(c, http.StatusOK, result, err)
}

func searchAccounts(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}
	result, err := models.SearchAccounts(c.Request.Context(), c.Query("keyword"), page)
	respond(c, http.StatusOK, result, err)
}

func accountExists(c *gin.Context) {
	exists, err := models.AccountExists(c.Request.Context(), c.Param("code"))
	respondExists(c, exists, err)
}

func listAccountsByLevel(c *gin.Context) {
	level, err := strconv.Atoi(c.Param("level"))
	if err != nil {
		respondError(c, utils.NewValidationError("level", "must be an integer"))
		return
	}
	result, err := models.GetAccountsByLevel(c.Request.Context(), level)
	respond(c, http.StatusOK, result, err)
}

func getAccount(c *gin.Context) {
	result, err := models.GetAccount(c.Request.Context(), c.Param("code"))
	respondFound(c, result, err)
}

func createAccount(c *gin.Context) {
	var input models.NewAccount
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := models.CreateAccount(c.Request.Context(), &input)
	respond(c, http.StatusCreated, result, err)
}

func updateAccount(c *gin.Context) {
	var input models.AccountPatch
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := models.UpdateAccount(c.Request.Context(), c.Param("code"), &input)
	respond(c, http.StatusOK, result, err)
}

func deleteAccount(c *gin.Context) {
	result, err := models.DeleteAccount(c.Request.Context(), c.Param("code"))
	respond(c, http.StatusOK, result, err)
}
