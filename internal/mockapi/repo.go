package mockapi

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExist   = errors.New("user already exist")
)

// Seed is the pair of demo accounts shown on the login screen.
var Seed = []struct {
	Nome, Email, Senha string
}{
	{Nome: "João Silva", Email: "joao@email.com", Senha: "123456"},
	{Nome: "Maria Santos", Email: "maria@email.com", Senha: "123456"},
}

type GormRepo struct {
	DB *gorm.DB
}

func NewGormRepo(ctx context.Context, db *gorm.DB) (*GormRepo, error) {
	if err := db.WithContext(ctx).AutoMigrate(&User{}); err != nil {
		return nil, fmt.Errorf("migrate users: %w", err)
	}
	return &GormRepo{DB: db}, nil
}

// SeedUsers inserts the demo accounts that are not present yet.
func (r *GormRepo) SeedUsers(ctx context.Context) error {
	for _, s := range Seed {
		if _, err := r.CreateUser(ctx, s.Nome, s.Email, s.Senha); err != nil && !errors.Is(err, ErrUserAlreadyExist) {
			return fmt.Errorf("seed %s: %w", s.Email, err)
		}
	}
	return nil
}

func (r *GormRepo) CreateUser(ctx context.Context, nome, email, password string) (*User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &User{Nome: nome, Email: normalizeEmail(email), PasswordHash: hash}

	tx := r.DB.WithContext(ctx).Where("email = ?", u.Email).FirstOrCreate(u)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, ErrUserAlreadyExist
	}
	return u, nil
}

func (r *GormRepo) Authenticate(ctx context.Context, email, password string) (*User, error) {
	var user User
	if err := r.DB.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (r *GormRepo) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := r.DB.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
