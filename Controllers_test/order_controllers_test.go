package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/andikarw/resto-order-api/controllers"
	"github.com/andikarw/resto-order-api/models"
)

// orderFixture wires a database with one user per role plus a small menu.
type orderFixture struct {
	db        *gorm.DB
	customerA models.User
	customerB models.User
	manager   models.User
	crewU     models.User
	crewV     models.User
	salad     models.MenuItem
	bruscetta models.MenuItem
}

func setupOrderFixture(t *testing.T, name string) *orderFixture {
	db := setupTestDB(t, name)

	managerGroup := models.Group{Name: models.GroupManager}
	crewGroup := models.Group{Name: models.GroupDeliveryCrew}
	if err := db.Create(&managerGroup).Error; err != nil {
		t.Fatalf("seed groups: %v", err)
	}
	if err := db.Create(&crewGroup).Error; err != nil {
		t.Fatalf("seed groups: %v", err)
	}

	f := &orderFixture{db: db}
	users := []*models.User{&f.customerA, &f.customerB, &f.manager, &f.crewU, &f.crewV}
	names := []string{"Alice", "Bob", "Mara", "Uri", "Vera"}
	for i, u := range users {
		u.Name = names[i]
		u.Email = fmt.Sprintf("%s-%s@example.com", name, names[i])
		u.Password = "hashed"
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("seed user %s: %v", names[i], err)
		}
	}
	if err := db.Model(&f.manager).Association("Groups").Append(&managerGroup); err != nil {
		t.Fatalf("assign manager group: %v", err)
	}
	for _, crew := range []*models.User{&f.crewU, &f.crewV} {
		if err := db.Model(crew).Association("Groups").Append(&crewGroup); err != nil {
			t.Fatalf("assign crew group: %v", err)
		}
	}

	f.salad, f.bruscetta = seedMenu(t, db)
	return f
}

func (f *orderFixture) router(userID uint, role models.Role) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
	})

	orderCtrl := controllers.NewOrderController(f.db)
	r.GET("/orders", orderCtrl.GetAllOrders)
	r.POST("/orders", orderCtrl.Checkout)
	r.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	r.PATCH("/orders/:order_id", orderCtrl.UpdateOrder)
	r.DELETE("/orders/:order_id", orderCtrl.DeleteOrder)
	return r
}

func (f *orderFixture) fillCart(t *testing.T, user models.User, item models.MenuItem, quantity int) {
	line := models.CartItem{
		UserID:     user.ID,
		MenuItemID: item.ID,
		Quantity:   quantity,
		UnitPrice:  item.Price,
		Price:      item.Price.MulInt(quantity),
	}
	if err := f.db.Create(&line).Error; err != nil {
		t.Fatalf("fill cart: %v", err)
	}
}

// checkout runs POST /orders for the given customer and returns the order id.
func (f *orderFixture) checkout(t *testing.T, user models.User) uint {
	r := f.router(user.ID, models.RoleCustomer)
	req := httptest.NewRequest(http.MethodPost, "/orders", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("checkout: expected 201, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("checkout: bad body: %v", err)
	}
	return resp.Data.ID
}

func patchOrder(r *gin.Engine, orderID uint, body map[string]interface{}) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPatch, fmt.Sprintf("/orders/%d", orderID), bytes.NewBuffer(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type orderResp struct {
	Status bool   `json:"status"`
	Msg    string `json:"message"`
	Data   struct {
		ID             uint   `json:"id"`
		UserID         uint   `json:"user_id"`
		DeliveryCrewID *uint  `json:"delivery_crew_id"`
		Status         bool   `json:"status"`
		Total          string `json:"total"`
		OrderItems     []struct {
			MenuItemID uint   `json:"menuitem_id"`
			Quantity   int    `json:"quantity"`
			UnitPrice  string `json:"unit_price"`
			Price      string `json:"price"`
		} `json:"order_items"`
	} `json:"data"`
}

func TestCheckoutEmptyCartFails(t *testing.T) {
	f := setupOrderFixture(t, "order_empty")
	r := f.router(f.customerA.ID, models.RoleCustomer)

	req := httptest.NewRequest(http.MethodPost, "/orders", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Cart is empty")

	var count int64
	f.db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCheckoutForbiddenForElevatedRoles(t *testing.T) {
	f := setupOrderFixture(t, "order_elevated")
	f.fillCart(t, f.manager, f.salad, 1)

	for _, tc := range []struct {
		user models.User
		role models.Role
	}{
		{f.manager, models.RoleManager},
		{f.crewU, models.RoleDeliveryCrew},
	} {
		r := f.router(tc.user.ID, tc.role)
		req := httptest.NewRequest(http.MethodPost, "/orders", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	}

	var count int64
	f.db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCheckoutSnapshotsCartAndClearsIt(t *testing.T) {
	f := setupOrderFixture(t, "order_snapshot")
	f.fillCart(t, f.customerA, f.salad, 3)     // 28.50
	f.fillCart(t, f.customerA, f.bruscetta, 2) // 14.50

	r := f.router(f.customerA.ID, models.RoleCustomer)
	req := httptest.NewRequest(http.MethodPost, "/orders", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp orderResp
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, f.customerA.ID, resp.Data.UserID)
	assert.False(t, resp.Data.Status)
	assert.Nil(t, resp.Data.DeliveryCrewID)
	assert.Equal(t, "43.00", resp.Data.Total)
	assert.Len(t, resp.Data.OrderItems, 2)

	byMenuItem := map[uint]int{}
	for _, item := range resp.Data.OrderItems {
		byMenuItem[item.MenuItemID] = item.Quantity
	}
	assert.Equal(t, 3, byMenuItem[f.salad.ID])
	assert.Equal(t, 2, byMenuItem[f.bruscetta.ID])

	// The cart is empty immediately after checkout.
	var cartCount int64
	f.db.Model(&models.CartItem{}).Where("user_id = ?", f.customerA.ID).Count(&cartCount)
	assert.Equal(t, int64(0), cartCount)

	// Stored total matches the sum of the frozen item prices.
	var stored models.Order
	assert.NoError(t, f.db.Preload("OrderItems").First(&stored, resp.Data.ID).Error)
	var sum models.Amount
	for _, item := range stored.OrderItems {
		sum = sum.Add(item.Price)
	}
	assert.True(t, stored.Total.Equal(sum.Round2()),
		"total %s != item sum %s", stored.Total.StringFixed(2), sum.StringFixed(2))
}

func TestSingleOrderVisibility(t *testing.T) {
	f := setupOrderFixture(t, "order_visibility")
	f.fillCart(t, f.customerA, f.salad, 1)
	orderID := f.checkout(t, f.customerA)

	get := func(r *gin.Engine, id uint) int {
		req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/orders/%d", id), nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	// Owner and manager see the order.
	assert.Equal(t, http.StatusOK, get(f.router(f.customerA.ID, models.RoleCustomer), orderID))
	assert.Equal(t, http.StatusOK, get(f.router(f.manager.ID, models.RoleManager), orderID))

	// Another customer gets 403: the order exists but is not theirs.
	assert.Equal(t, http.StatusForbidden, get(f.router(f.customerB.ID, models.RoleCustomer), orderID))

	// Unassigned crew gets 403 as well.
	assert.Equal(t, http.StatusForbidden, get(f.router(f.crewU.ID, models.RoleDeliveryCrew), orderID))

	// A nonexistent id is 404 for everyone, checked before the role.
	assert.Equal(t, http.StatusNotFound, get(f.router(f.customerA.ID, models.RoleCustomer), 99999))
	assert.Equal(t, http.StatusNotFound, get(f.router(f.crewU.ID, models.RoleDeliveryCrew), 99999))
}

func TestOrderListScopedByRole(t *testing.T) {
	f := setupOrderFixture(t, "order_listscope")
	f.fillCart(t, f.customerA, f.salad, 1)
	orderA := f.checkout(t, f.customerA)
	f.fillCart(t, f.customerB, f.bruscetta, 1)
	f.checkout(t, f.customerB)

	list := func(r *gin.Engine) []orderResp {
		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Data []struct {
				ID     uint `json:"id"`
				UserID uint `json:"user_id"`
			} `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		out := make([]orderResp, len(resp.Data))
		for i, o := range resp.Data {
			out[i].Data.ID = o.ID
			out[i].Data.UserID = o.UserID
		}
		return out
	}

	assert.Len(t, list(f.router(f.manager.ID, models.RoleManager)), 2)

	own := list(f.router(f.customerA.ID, models.RoleCustomer))
	assert.Len(t, own, 1)
	assert.Equal(t, f.customerA.ID, own[0].Data.UserID)

	// Crew sees nothing until assigned.
	assert.Len(t, list(f.router(f.crewU.ID, models.RoleDeliveryCrew)), 0)

	f.db.Model(&models.Order{}).Where("id = ?", orderA).
		Update("delivery_crew_id", f.crewU.ID)
	assigned := list(f.router(f.crewU.ID, models.RoleDeliveryCrew))
	assert.Len(t, assigned, 1)
	assert.Equal(t, orderA, assigned[0].Data.ID)
}

func TestOrderListNewestFirst(t *testing.T) {
	f := setupOrderFixture(t, "order_listorder")

	old := models.Order{UserID: f.customerA.ID, Total: models.NewAmount("5.00"),
		Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	newer := models.Order{UserID: f.customerA.ID, Total: models.NewAmount("7.00"),
		Date: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)}
	sameDay := models.Order{UserID: f.customerA.ID, Total: models.NewAmount("9.00"),
		Date: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)}
	for _, o := range []*models.Order{&old, &newer, &sameDay} {
		assert.NoError(t, f.db.Create(o).Error)
	}

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	w := httptest.NewRecorder()
	f.router(f.manager.ID, models.RoleManager).ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 3)
	// Descending date, then descending id within the same date.
	assert.Equal(t, sameDay.ID, resp.Data[0].ID)
	assert.Equal(t, newer.ID, resp.Data[1].ID)
	assert.Equal(t, old.ID, resp.Data[2].ID)
}

func TestManagerFieldMaskUpdate(t *testing.T) {
	f := setupOrderFixture(t, "order_managermask")
	f.fillCart(t, f.customerA, f.salad, 1)
	orderID := f.checkout(t, f.customerA)
	manager := f.router(f.manager.ID, models.RoleManager)

	// Assigning a crew leaves status untouched.
	w := patchOrder(manager, orderID, map[string]interface{}{"delivery_crew_id": f.crewU.ID})
	assert.Equal(t, http.StatusOK, w.Code)
	var resp orderResp
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	if assert.NotNil(t, resp.Data.DeliveryCrewID) {
		assert.Equal(t, f.crewU.ID, *resp.Data.DeliveryCrewID)
	}
	assert.False(t, resp.Data.Status)

	// Both fields in one request.
	w = patchOrder(manager, orderID, map[string]interface{}{"status": true, "delivery_crew_id": f.crewV.ID})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Status)
	if assert.NotNil(t, resp.Data.DeliveryCrewID) {
		assert.Equal(t, f.crewV.ID, *resp.Data.DeliveryCrewID)
	}

	// Unassigning with null.
	w = patchOrder(manager, orderID, map[string]interface{}{"delivery_crew_id": nil})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp.Data.DeliveryCrewID)

	// Fields outside the mask are rejected.
	w = patchOrder(manager, orderID, map[string]interface{}{"total": "0.01"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The assignee must actually be delivery crew.
	w = patchOrder(manager, orderID, map[string]interface{}{"delivery_crew_id": f.customerB.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeliveryCrewFieldMaskUpdate(t *testing.T) {
	f := setupOrderFixture(t, "order_crewmask")
	f.fillCart(t, f.customerA, f.salad, 1)
	orderID := f.checkout(t, f.customerA)

	f.db.Model(&models.Order{}).Where("id = ?", orderID).
		Update("delivery_crew_id", f.crewU.ID)

	crewU := f.router(f.crewU.ID, models.RoleDeliveryCrew)
	crewV := f.router(f.crewV.ID, models.RoleDeliveryCrew)

	// The assigned crew may flip the delivered flag.
	w := patchOrder(crewU, orderID, map[string]interface{}{"status": true})
	assert.Equal(t, http.StatusOK, w.Code)
	var resp orderResp
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Status)

	// Unassigned crew gets 403, even when trying to assign themselves.
	w = patchOrder(crewV, orderID, map[string]interface{}{"status": true})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = patchOrder(crewV, orderID, map[string]interface{}{"delivery_crew_id": f.crewV.ID})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The assigned crew still may not touch anything but status.
	w = patchOrder(crewU, orderID, map[string]interface{}{"delivery_crew_id": f.crewV.ID})
	assert.Equal(t, http.StatusForbidden, w.Code)

	var stored models.Order
	assert.NoError(t, f.db.First(&stored, orderID).Error)
	if assert.NotNil(t, stored.DeliveryCrewID) {
		assert.Equal(t, f.crewU.ID, *stored.DeliveryCrewID)
	}

	// Customers have no mutation rights at all.
	w = patchOrder(f.router(f.customerA.ID, models.RoleCustomer), orderID,
		map[string]interface{}{"status": true})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteOrderManagerOnly(t *testing.T) {
	f := setupOrderFixture(t, "order_delete")
	f.fillCart(t, f.customerA, f.salad, 1)
	orderID := f.checkout(t, f.customerA)

	del := func(r *gin.Engine) int {
		req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/orders/%d", orderID), nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusForbidden, del(f.router(f.customerA.ID, models.RoleCustomer)))
	assert.Equal(t, http.StatusForbidden, del(f.router(f.crewU.ID, models.RoleDeliveryCrew)))

	assert.Equal(t, http.StatusOK, del(f.router(f.manager.ID, models.RoleManager)))

	var orderCount, itemCount int64
	f.db.Model(&models.Order{}).Where("id = ?", orderID).Count(&orderCount)
	f.db.Model(&models.OrderItem{}).Where("order_id = ?", orderID).Count(&itemCount)
	assert.Equal(t, int64(0), orderCount)
	assert.Equal(t, int64(0), itemCount)

	// Deleting again is a plain 404 for the manager.
	assert.Equal(t, http.StatusNotFound, del(f.router(f.manager.ID, models.RoleManager)))
}
