package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/andikarw/resto-order-api/config"
	"github.com/andikarw/resto-order-api/middlewares"
	"github.com/andikarw/resto-order-api/models"
	"github.com/andikarw/resto-order-api/router"
	"github.com/andikarw/resto-order-api/utils"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	utils.InitLogger()
}

func main() {
	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)
	seed(db)

	rateLimiter := middlewares.NewRateLimiter(50, 1)

	r := router.SetupRouter(db)
	r.Use(rateLimiter.RateLimit())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.MenuCategory{},
		&models.MenuItem{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}

// seed makes sure the two role groups exist and gives a fresh database a
// small menu to order from.
func seed(db *gorm.DB) {
	for _, name := range []string{models.GroupManager, models.GroupDeliveryCrew} {
		if err := db.FirstOrCreate(&models.Group{}, models.Group{Name: name}).Error; err != nil {
			utils.ErrorLogger.Fatalf("Failed to seed group %q: %v", name, err)
		}
	}

	var count int64
	db.Model(&models.MenuItem{}).Count(&count)
	if count > 0 {
		return
	}

	mains := models.MenuCategory{Slug: "mains", Title: "Mains"}
	desserts := models.MenuCategory{Slug: "desserts", Title: "Desserts"}
	db.Create(&mains)
	db.Create(&desserts)

	db.Create(&[]models.MenuItem{
		{Title: "Greek Salad", Price: models.NewAmount("9.50"), Featured: true, CategoryID: mains.ID},
		{Title: "Bruschetta", Price: models.NewAmount("7.25"), CategoryID: mains.ID},
		{Title: "Lemon Dessert", Price: models.NewAmount("5.00"), CategoryID: desserts.ID},
	})
	utils.InfoLogger.Println("Seeded role groups and starter menu.")
}
