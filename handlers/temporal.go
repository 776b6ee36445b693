package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/sales_backend/models"
	"github.com/gin-gonic/gin"
)

// Price lists and discount tiers are keyed by product code and effective date.

func createPriceListEntry(c *gin.Context) {
	var input models.NewPriceListEntry
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := models.CreatePriceListEntry(c.Request.Context(), &input)
	respond(c, http.StatusCreated, result, err)
}

func listAllPriceListEntries(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}
	result, err := models.GetAllPriceListEntries(c.Request.Context(), page)
	respond(c, http.StatusOK, result, err)
}

func listPriceListEntries(c *gin.Context) {
	result, err := models.GetPriceListEntries(c.Request.Context(), c.Param("product_code"))
	respond(c, http.StatusOK, result, err)
}

func getPriceListEntry(c *gin.Context) {
	date, ok := dateParam(c, "effective_date")
	if !ok {
		return
	}
	result, err := models.GetPriceListEntry(c.Request.Context(), c.Param("product_code"), date)
	respondFound(c, result, err)
}

// getLatestPrice resolves the price in force on ?date=, now when absent.
func getLatestPrice(c *gin.Context) {
	date, ok := dateQueryOrNow(c, "date")
	if !ok {
		return
	}
	result, err := models.GetLatestPrice(c.Request.Context(), c.Param("product_code"), date)
	respondFound(c, result, err)
}

func updatePriceListEntry(c *gin.Context) {
	date, ok := dateParam(c, "effective_date")
	if !ok {
		return
	}
	var input models.PriceListEntryPatch
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := models.UpdatePriceListEntry(c.Request.Context(), c.Param("product_code"), date, &input)
	respond(c, http.StatusOK, result, err)
}

func deletePriceListEntry(c *gin.Context) {
	date, ok := dateParam(c, "effective_date")
	if !ok {
		return
	}
	result, err := models.DeletePriceListEntry(c.Request.Context(), c.Param("product_code"), date)
	respond(c, http.StatusOK, result, err)
}

func createDiscountTier(c *gin.Context) {
	var input models.NewDiscountTier
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := models.CreateDiscountTier(c.Request.Context(), &input)
	respond(c, http.StatusCreated, result, err)
}

func listAllDiscountTiers(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}
	result, err := models.GetAllDiscountTiers(c.Request.Context(), page)
	respond(c, http.StatusOK, result, err)
}

func listDiscountTiers(c *gin.Context) {
	result, err := models.GetDiscountTiers(c.Request.Context(), c.Param("product_code"))
	respond(c, http.StatusOK, result, err)
}

func getDiscountTier(c *gin.Context) {
	date, ok := dateParam(c, "effective_date")
	if !ok {
		return
	}
	result, err := models.GetDiscountTier(c.Request.Context(), c.Param("product_code"), date)
	respondFound(c, result, err)
}

// getApplicableDiscount takes ?date= (now when absent) and an optional ?amount= threshold filter.
func getApplicableDiscount(c *gin.Context) {
	date, ok := dateQueryOrNow(c, "date")
	if !ok {
		return
	}
	amount, ok := decimalQuery(c, "amount")
	if !ok {
		return
	}
	result, err := models.GetApplicableDiscount(c.Request.Context(), c.Param("product_code"), date, amount)
	respondFound(c, result, err)
}

func updateDiscountTier(c *gin.Context) {
	date, ok := dateParam(c, "effective_date")
	if !ok {
		return
	}
	var input models.DiscountTierPatch
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := models.UpdateDiscountTier(c.Request.Context(), c.Param("product_code"), date, &input)
	respond(c, http.StatusOK, result, err)
}

func deleteDiscountTier(c *gin.Context) {
	date, ok := dateParam(c, "effective_date")
	if !ok {
		return
	}
	result, err := models.DeleteDiscountTier(c.Request.Context(), c.Param("product_code"), date)
	respond(c, http.StatusOK, result, err)
}
