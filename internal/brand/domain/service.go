package domain

import (
	"context"
	"errors"

	"github.com/reelforge/reelforge/internal/unlock"
)

type Service interface {
	CreateBrand(ctx context.Context, req CreateBrandRequest) (*Brand, error)
	GetBrand(ctx context.Context, id string) (*Brand, error)
	GetLedger(ctx context.Context, brandID string) (*VolumeLedger, error)
	GetUnlockState(ctx context.Context, brandID string) (*unlock.UnlockState, error)
}

type CreateBrandRequest struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

var (
	ErrInvalidBrand = errors.New("invalid_brand")
	ErrInvalidUser  = errors.New("invalid_user")
	ErrInvalidName  = errors.New("invalid_name")
	ErrNotFound     = errors.New("brand_not_found")
)
