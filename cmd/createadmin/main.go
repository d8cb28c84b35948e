// Command createadmin bootstraps an admin account. Admins cannot register
// through the API.
//
//	go run ./cmd/createadmin -email admin@firm.in -name "Office Admin" -password '...'
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/aldoetobex/legal-practice-backend/internal/auth"
	"github.com/aldoetobex/legal-practice-backend/pkg/database"
	"github.com/aldoetobex/legal-practice-backend/pkg/logger"
	"github.com/aldoetobex/legal-practice-backend/pkg/models"
)

var errExists = errors.New("a user with that email already exists")

type input struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

func (in input) validate() error {
	var missing []string
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "-name")
	}
	if strings.TrimSpace(in.Email) == "" {
		missing = append(missing, "-email")
	}
	if len(in.Password) < 8 {
		missing = append(missing, "-password (min 8 chars)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing or invalid: %s", strings.Join(missing, ", "))
	}
	return nil
}

func createAdmin(ctx context.Context, db *gorm.DB, in input, cost int) (models.User, error) {
	if err := in.validate(); err != nil {
		return models.User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), cost)
	if err != nil {
		return models.User{}, err
	}
	u := models.NewUser(in.Name, in.Email, in.Phone, "", string(hash), models.RoleAdmin, nil)
	if err := db.WithContext(ctx).Create(&u).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return models.User{}, errExists
		}
		return models.User{}, err
	}
	return u, nil
}

func main() {
	_ = godotenv.Load()
	log := logger.New("info", "console")

	var in input
	dsn := flag.String("dsn", os.Getenv("DATABASE_URL"), "postgres DSN (defaults to DATABASE_URL)")
	flag.StringVar(&in.Name, "name", "", "admin display name")
	flag.StringVar(&in.Email, "email", "", "admin login email")
	flag.StringVar(&in.Phone, "phone", "", "optional phone number")
	flag.StringVar(&in.Password, "password", os.Getenv("ADMIN_PASSWORD"), "password (or ADMIN_PASSWORD)")
	flag.Parse()

	db, err := database.Open(*dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	u, err := createAdmin(ctx, db, in, auth.HashCost)
	if err != nil {
		log.Fatal().Err(err).Str("email", in.Email).Msg("create admin")
	}
	log.Info().Str("id", u.ID.String()).Str("email", u.Email).Msg("admin created")
}
