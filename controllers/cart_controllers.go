package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andikarw/resto-order-api/models"
	"github.com/andikarw/resto-order-api/utils"
)

type CartController struct {
	DB *gorm.DB
}

func NewCartController(db *gorm.DB) *CartController {
	return &CartController{DB: db}
}

// GetCart -> list the caller's cart lines
func (cc *CartController) GetCart(c *gin.Context) {
	userID := currentUserID(c)

	var lines []models.CartItem
	if err := cc.DB.Preload("MenuItem").Preload("MenuItem.Category").
		Where("user_id = ?", userID).Find(&lines).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Cart items", lines)
}

// AddToCart adds a menu item to the caller's cart. Adding an item that is
// already in the cart accumulates: quantity adds up, the unit price is
// refreshed from the current menu price and the line price is recomputed.
// The whole merge is one upsert statement, so concurrent adds of the same
// item cannot lose an update.
func (cc *CartController) AddToCart(c *gin.Context) {
	userID := currentUserID(c)

	var req struct {
		MenuItemID uint `json:"menuitem_id" binding:"required"`
		Quantity   int  `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Quantity <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("quantity must be greater than 0"))
		return
	}

	var item models.MenuItem
	if err := cc.DB.First(&item, req.MenuItemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("menu item not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	line := models.CartItem{
		UserID:     userID,
		MenuItemID: item.ID,
		Quantity:   req.Quantity,
		UnitPrice:  item.Price,
		Price:      item.Price.MulInt(req.Quantity),
	}

	// price is assigned before quantity: MySQL applies the assignments in
	// order, so both expressions must see the pre-merge quantity.
	err := cc.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "menu_item_id"}},
		DoUpdates: clause.Set{
			{Column: clause.Column{Name: "price"}, Value: gorm.Expr("round((cart_items.quantity + ?) * ?, 2)", req.Quantity, item.Price)},
			{Column: clause.Column{Name: "quantity"}, Value: gorm.Expr("cart_items.quantity + ?", req.Quantity)},
			{Column: clause.Column{Name: "unit_price"}, Value: item.Price},
		},
	}).Create(&line).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// Reload: on a merge the upsert leaves line with the pre-merge values.
	var saved models.CartItem
	if err := cc.DB.Preload("MenuItem").Preload("MenuItem.Category").
		Where("user_id = ? AND menu_item_id = ?", userID, item.ID).
		First(&saved).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Cart add: user=%d menu_item=%d qty=%d", userID, item.ID, req.Quantity)

	utils.RespondJSON(c, http.StatusCreated, fmt.Sprintf("%s added to cart", item.Title), saved)
}

// ClearCart deletes every cart line of the caller. Clearing an empty cart
// succeeds with no effect.
func (cc *CartController) ClearCart(c *gin.Context) {
	userID := currentUserID(c)

	if err := cc.DB.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Cart cleared", nil)
}
