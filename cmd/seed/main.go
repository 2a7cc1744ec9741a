package main

import (
	"os"
	"strings"

	"github.com/campusbooks/internal/config"
	"github.com/campusbooks/internal/constants"
	"github.com/campusbooks/internal/logger"
	"github.com/campusbooks/internal/models"

	"golang.org/x/crypto/bcrypt"
)

const defaultSeedPassword = "campus123"

type seedBook struct {
	Title        string
	Author       string
	Edition      string
	Subject      string
	Course       string
	Condition    string
	BasePrice    string
	SellingPrice string
	Description  string
}

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, false); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	password := strings.TrimSpace(os.Getenv("CB_SEED_PASSWORD"))
	if password == "" {
		password = defaultSeedPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("Failed to hash seed password: %v", err)
	}

	// 添加演示账号
	profiles := []models.Profile{
		{Email: "senior.physics@campus.edu", FullName: "Ravi Menon", Role: constants.RoleSenior, Phone: "9000000001"},
		{Email: "senior.cs@campus.edu", FullName: "Meera Iyer", Role: constants.RoleSenior, Phone: "9000000002"},
		{Email: "junior.one@campus.edu", FullName: "Asha Rao", Role: constants.RoleJunior},
		{Email: "junior.two@campus.edu", FullName: "Kiran Das", Role: constants.RoleJunior},
	}
	profileIDs := map[string]uint{}
	for _, profile := range profiles {
		var existing models.Profile
		if err := models.DB.Where("email = ?", profile.Email).First(&existing).Error; err == nil {
			stdLog.Printf("Profile already exists: %s", profile.Email)
			profileIDs[profile.Email] = existing.ID
			continue
		}
		profile.PasswordHash = string(hash)
		if err := models.DB.Create(&profile).Error; err != nil {
			stdLog.Printf("Failed to create profile %s: %v", profile.Email, err)
			continue
		}
		stdLog.Printf("Created profile: %s (%s)", profile.Email, profile.Role)
		profileIDs[profile.Email] = profile.ID
	}

	// 添加书籍
	catalog := map[string][]seedBook{
		"senior.physics@campus.edu": {
			{Title: "Concepts of Physics Vol. 1", Author: "H. C. Verma", Edition: "2022", Subject: "Physics", Course: "PHY101", Condition: constants.BookConditionGood, BasePrice: "450.00", SellingPrice: "300.00", Description: "Light pencil marks in chapter 3."},
			{Title: "Fundamentals of Physics", Author: "Halliday, Resnick, Walker", Edition: "10th", Subject: "Physics", Course: "PHY102", Condition: constants.BookConditionLikeNew, BasePrice: "899.00", Description: "Used for one semester."},
			{Title: "Higher Engineering Mathematics", Author: "B. S. Grewal", Edition: "44th", Subject: "Mathematics", Course: "MA101", Condition: constants.BookConditionFair, BasePrice: "750.00", SellingPrice: "420.00"},
		},
		"senior.cs@campus.edu": {
			{Title: "Introduction to Algorithms", Author: "Cormen, Leiserson, Rivest, Stein", Edition: "3rd", Subject: "Computer Science", Course: "CS201", Condition: constants.BookConditionGood, BasePrice: "1200.00", SellingPrice: "800.00", Description: "Cover slightly worn."},
			{Title: "Let Us C", Author: "Yashavant Kanetkar", Edition: "16th", Subject: "Computer Science", Course: "CS101", Condition: constants.BookConditionNew, BasePrice: "350.00"},
			{Title: "Digital Design", Author: "M. Morris Mano", Edition: "5th", Subject: "Electronics", Course: "EC201", Condition: constants.BookConditionPoor, BasePrice: "600.00", SellingPrice: "150.00", Description: "Binding loose, all pages present."},
		},
	}
	for email, books := range catalog {
		sellerID, ok := profileIDs[email]
		if !ok {
			continue
		}
		for _, item := range books {
			var count int64
			if err := models.DB.Model(&models.Book{}).Where("seller_id = ? AND title = ?", sellerID, item.Title).Count(&count).Error; err != nil {
				stdLog.Printf("Failed to check book %s: %v", item.Title, err)
				continue
			}
			if count > 0 {
				stdLog.Printf("Book already exists: %s", item.Title)
				continue
			}
			book := models.Book{
				SellerID:    sellerID,
				Title:       item.Title,
				Author:      item.Author,
				Edition:     item.Edition,
				Subject:     item.Subject,
				Course:      item.Course,
				Condition:   item.Condition,
				BasePrice:   models.MustMoney(item.BasePrice),
				Description: item.Description,
				IsAvailable: true,
			}
			if item.SellingPrice != "" {
				price := models.MustMoney(item.SellingPrice)
				book.SellingPrice = &price
			}
			if err := models.DB.Create(&book).Error; err != nil {
				stdLog.Printf("Failed to create book %s: %v", item.Title, err)
				continue
			}
			stdLog.Printf("Created book: %s", item.Title)
		}
	}

	stdLog.Printf("Seed completed, demo password: %s", password)
}
