package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/andikarw/resto-order-api/models"
	"github.com/andikarw/resto-order-api/utils"
)

type OrderController struct {
	DB *gorm.DB
}

func NewOrderController(db *gorm.DB) *OrderController {
	return &OrderController{DB: db}
}

var (
	ErrCartEmpty   = &CustomError{"Cart is empty"}
	ErrCartChanged = &CustomError{"Cart changed while checking out, please retry"}
)

// GetAllOrders -> role-scoped order list, newest first
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	userID := currentUserID(c)

	query := oc.DB.Preload("OrderItems").Preload("OrderItems.MenuItem").
		Order("date DESC, id DESC")

	switch currentRole(c) {
	case models.RoleManager:
		// sees everything
	case models.RoleDeliveryCrew:
		query = query.Where("delivery_crew_id = ?", userID)
	default:
		query = query.Where("user_id = ?", userID)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// Checkout converts the caller's entire cart into one immutable order.
// Customer role only; the cart-read, order/item creation and cart-delete
// run in a single transaction so a failure never leaves a partial order
// or a half-cleared cart.
func (oc *OrderController) Checkout(c *gin.Context) {
	if currentRole(c) != models.RoleCustomer {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}
	userID := currentUserID(c)

	var order models.Order
	err := oc.DB.Transaction(func(tx *gorm.DB) error {
		var lines []models.CartItem
		if err := tx.Where("user_id = ?", userID).Find(&lines).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrCartEmpty
		}

		order = models.Order{
			UserID: userID,
			Status: false,
			Date:   time.Now(),
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		var total models.Amount
		lineIDs := make([]uint, 0, len(lines))
		for _, line := range lines {
			item := models.OrderItem{
				OrderID:    order.ID,
				MenuItemID: line.MenuItemID,
				Quantity:   line.Quantity,
				UnitPrice:  line.UnitPrice,
				Price:      line.Price,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			total = total.Add(item.Price)
			lineIDs = append(lineIDs, line.ID)
		}

		order.Total = total.Round2()
		if err := tx.Model(&order).Update("total", order.Total).Error; err != nil {
			return err
		}

		// Delete exactly the rows read above, not a fresh query: lines added
		// by a racing request stay in the cart for the next checkout.
		res := tx.Where("id IN ?", lineIDs).Delete(&models.CartItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(lineIDs)) {
			// A concurrent checkout consumed part of this cart; roll back
			// rather than bill the same lines twice.
			return ErrCartChanged
		}
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, ErrCartEmpty):
			utils.RespondError(c, http.StatusBadRequest, err)
		case errors.Is(err, ErrCartChanged):
			utils.RespondError(c, http.StatusConflict, err)
		default:
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return
	}

	if err := oc.DB.Preload("OrderItems").Preload("OrderItems.MenuItem").
		First(&order, order.ID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Checkout: user=%d order=%d total=%s", userID, order.ID, order.Total.StringFixed(2))

	utils.RespondJSON(c, http.StatusCreated, "Order placed", order)
}

// GetOrderByID -> single order with items. A nonexistent id is 404 before
// any role logic; an existing but invisible order is 403.
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	order, done := oc.fetchOrder(c)
	if done {
		return
	}

	if !orderVisibleTo(currentRole(c), currentUserID(c), order) {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// UpdateOrder applies a role-gated field mask. PATCH and PUT are handled
// identically. Managers may set delivery_crew_id and status on any order;
// delivery crew may set only status, and only on their own assignments.
func (oc *OrderController) UpdateOrder(c *gin.Context) {
	order, done := oc.fetchOrder(c)
	if done {
		return
	}
	userID := currentUserID(c)

	var fields map[string]json.RawMessage
	if err := c.ShouldBindJSON(&fields); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	updates := map[string]interface{}{}

	switch currentRole(c) {
	case models.RoleManager:
		for key, raw := range fields {
			switch key {
			case "status":
				var v bool
				if err := json.Unmarshal(raw, &v); err != nil {
					utils.RespondError(c, http.StatusBadRequest, errors.New("status must be a boolean"))
					return
				}
				updates["status"] = v
			case "delivery_crew_id":
				var v *uint
				if err := json.Unmarshal(raw, &v); err != nil {
					utils.RespondError(c, http.StatusBadRequest, errors.New("delivery_crew_id must be a user id or null"))
					return
				}
				if v != nil {
					role, err := models.ResolveRole(oc.DB, *v)
					if err != nil {
						utils.RespondError(c, http.StatusBadRequest, errors.New("no such user"))
						return
					}
					if role != models.RoleDeliveryCrew {
						utils.RespondError(c, http.StatusBadRequest, errors.New("user is not delivery crew"))
						return
					}
				}
				updates["delivery_crew_id"] = v
			default:
				utils.RespondError(c, http.StatusBadRequest, errors.New("field "+strconv.Quote(key)+" is not updatable"))
				return
			}
		}

	case models.RoleDeliveryCrew:
		if order.DeliveryCrewID == nil || *order.DeliveryCrewID != userID {
			utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
			return
		}
		for key, raw := range fields {
			if key != "status" {
				utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
				return
			}
			var v bool
			if err := json.Unmarshal(raw, &v); err != nil {
				utils.RespondError(c, http.StatusBadRequest, errors.New("status must be a boolean"))
				return
			}
			updates["status"] = v
		}

	default:
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	if len(updates) > 0 {
		if err := oc.DB.Model(order).Updates(updates).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}

	if err := oc.DB.Preload("OrderItems").Preload("OrderItems.MenuItem").
		First(order, order.ID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order updated", order)
}

// DeleteOrder -> manager only; removes the order and its items
func (oc *OrderController) DeleteOrder(c *gin.Context) {
	order, done := oc.fetchOrder(c)
	if done {
		return
	}

	if currentRole(c) != models.RoleManager {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	err := oc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(order).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order deleted", gin.H{"order_id": order.ID})
}

// fetchOrder loads the order from the path param and responds itself when
// the id is malformed or unknown. The existence check runs before any role
// check so 404 vs 403 stay distinct.
func (oc *OrderController) fetchOrder(c *gin.Context) (*models.Order, bool) {
	id, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid order id"))
		return nil, true
	}

	var order models.Order
	if err := oc.DB.Preload("OrderItems").Preload("OrderItems.MenuItem").
		First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
			return nil, true
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return nil, true
	}
	return &order, false
}

func orderVisibleTo(role models.Role, userID uint, order *models.Order) bool {
	switch role {
	case models.RoleManager:
		return true
	case models.RoleDeliveryCrew:
		return order.DeliveryCrewID != nil && *order.DeliveryCrewID == userID
	default:
		return order.UserID == userID
	}
}
