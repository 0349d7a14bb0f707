package domain

import (
	"context"
	"errors"
)

type Service interface {
	Submit(ctx context.Context, brandID string, req SubmitRequest) (*Request, error)
	ListForBrand(ctx context.Context, brandID string) ([]Request, error)
	ListPending(ctx context.Context) ([]Request, error)
	Approve(ctx context.Context, requestID, reviewerID string) (*Request, error)
	Reject(ctx context.Context, requestID, reviewerID string) (*Request, error)
}

type SubmitRequest struct {
	VideoLink string `json:"video_link"`
}

var (
	ErrInvalidBrand      = errors.New("invalid_brand")
	ErrInvalidRequest    = errors.New("invalid_request")
	ErrMissingProof      = errors.New("missing_video_link")
	ErrNotEligible       = errors.New("not_eligible")
	ErrPendingExists     = errors.New("pending_request_exists")
	ErrNotFound          = errors.New("upgrade_request_not_found")
	ErrMilestoneMissing  = errors.New("target_milestone_missing")
	ErrInvalidReviewerID = errors.New("invalid_reviewer")
)
