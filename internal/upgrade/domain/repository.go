package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, req *Request) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Request, error)
	ListByBrand(ctx context.Context, db *gorm.DB, brandID snowflake.ID) ([]Request, error)
	ListByStatus(ctx context.Context, db *gorm.DB, status string) ([]Request, error)
	HasPending(ctx context.Context, db *gorm.DB, brandID snowflake.ID) (bool, error)

	// CloseIfPending flips the request to a terminal status only when it is
	// still pending, reporting whether this caller won the transition.
	CloseIfPending(ctx context.Context, db *gorm.DB, id snowflake.ID, status, reviewedBy string, reviewedAt time.Time) (bool, error)
}
