package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Request is one tier-upgrade claim. pending is the only non-terminal state
// and its row-level status flip is the serialization point for reviews.
type Request struct {
	ID                snowflake.ID `json:"id" gorm:"primaryKey"`
	BrandID           snowflake.ID `json:"brand_id" gorm:"not null;index"`
	TargetMilestoneID snowflake.ID `json:"target_milestone_id" gorm:"not null"`
	VideoLink         string       `json:"video_link" gorm:"type:text;not null"`
	Status            string       `json:"status" gorm:"type:text;not null;default:pending"`
	ReviewedBy        string       `json:"reviewed_by" gorm:"type:text;not null;default:''"`
	ReviewedAt        *time.Time   `json:"reviewed_at,omitempty"`
	CreatedAt         time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Request) TableName() string { return "upgrade_requests" }
