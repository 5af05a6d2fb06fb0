package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

type Admin struct {
	ID           int    `db:"id"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
}

type AdminAuthRepository interface {
	GetByEmail(email string) (*Admin, error)
	CreateNewUser(email, password string) error
}

type adminAuthRepository struct {
	db *sqlx.DB
}

func NewAdminAuthRepository(db *sqlx.DB) AdminAuthRepository {
	return &adminAuthRepository{db: db}
}

func (r *adminAuthRepository) GetByEmail(email string) (*Admin, error) {
	var admin Admin
	err := r.db.Get(&admin, "SELECT id, email, password_hash FROM admins WHERE email = $1", email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

func (r *adminAuthRepository) CreateNewUser(email, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = r.db.Exec("INSERT INTO admins (email, password_hash) VALUES ($1, $2)", email, hashedPassword)
	return err
}
