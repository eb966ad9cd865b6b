package postgres

import (
	"database/sql"

	"bloodbridge-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.RequestRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                db,
		UserRepository:    NewUserRepository(db),
		RequestRepository: NewRequestRepository(db),
	}
}
