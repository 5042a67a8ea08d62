package main

import (
	"log"
	"os"

	"github.com/roomcast/roomcast/internal/config"
	"github.com/roomcast/roomcast/internal/database"
	"github.com/roomcast/roomcast/internal/models"
	"github.com/roomcast/roomcast/internal/service"
	"github.com/roomcast/roomcast/internal/utils"
)

// Seeds a demo room with a superadmin user, and prints an admin API token
// when ADMIN_JWT_SECRET is configured.
func main() {
	cfg := config.Load()
	database.Connect(cfg)
	database.Migrate()

	roomName := os.Getenv("SEED_ROOM_NAME")
	if roomName == "" {
		roomName = "Demo Room"
	}
	adminUsername := os.Getenv("SEED_ADMIN_USERNAME")
	if adminUsername == "" {
		adminUsername = "superadmin"
	}

	var room models.Room
	result := database.DB.Where("name = ?", roomName).First(&room)

	if result.Error == nil {
		log.Println("Seed room already exists:", room.Name)
		log.Println("   Code:", room.RoomCode)
		return
	}

	// Draw a unique code the same way the room directory does.
	var code string
	for {
		code = service.RandomCode()
		var count int64
		database.DB.Model(&models.Room{}).Where("room_code = ?", code).Count(&count)
		if count == 0 {
			break
		}
	}

	room = models.Room{
		RoomCode: code,
		Name:     roomName,
	}
	if err := database.DB.Create(&room).Error; err != nil {
		log.Fatal("Failed to create seed room:", err)
	}

	admin := models.User{
		Username: adminUsername,
		Role:     models.RoleSuperadmin,
		RoomID:   room.ID,
		Status:   models.StatusApproved,
	}
	if err := database.DB.Create(&admin).Error; err != nil {
		log.Fatal("Failed to create superadmin:", err)
	}

	log.Println("Seed room created successfully!")
	log.Println("   Name:", room.Name)
	log.Println("   Code:", room.RoomCode)
	log.Println("   Superadmin:", admin.Username)

	if cfg.AdminJWTSecret != "" {
		token, err := utils.GenerateAdminToken(models.RoleSuperadmin, cfg.AdminJWTSecret, cfg.AdminJWTExpiry)
		if err != nil {
			log.Fatal("Failed to generate admin token:", err)
		}
		log.Println("   Admin API token:", token)
	}
}
