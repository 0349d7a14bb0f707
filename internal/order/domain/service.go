package domain

import (
	"context"

	checkoutdomain "github.com/reelforge/reelforge/internal/checkout/domain"
	"github.com/reelforge/reelforge/pkg/db/pagination"
)

type ListOrdersRequest struct {
	PageToken string
	PageSize  int32
}

type ListOrdersResponse struct {
	pagination.PageInfo
	Orders []Order `json:"orders"`
}

type BriefRequest struct {
	IntakeResponses       map[string]any `json:"intake_responses"`
	Notes                 string         `json:"notes"`
	FootageFolderURL      string         `json:"footage_folder_url"`
	PrimaryPlatform       string         `json:"primary_platform"`
	PrimaryAspectRatio    string         `json:"primary_aspect_ratio"`
	NeedsAdditionalFormat *bool          `json:"needs_additional_format"`
	AdditionalAspectRatio string         `json:"additional_aspect_ratio"`
}

type Service interface {
	// Materialize turns a confirmed checkout into orders and the brand's
	// volume-ledger delta, atomically and exactly once per session.
	// Redelivery returns ErrAlreadyProcessed.
	Materialize(ctx context.Context, event *checkoutdomain.CompletedEvent) error

	List(ctx context.Context, brandID string, req ListOrdersRequest) (ListOrdersResponse, error)
	Get(ctx context.Context, brandID, orderID string) (*Order, error)

	// SubmitBrief moves a needs_brief order to submitted with the client's
	// production brief attached.
	SubmitBrief(ctx context.Context, brandID, orderID string, req BriefRequest) (*Order, error)

	// ApproveDelivery is the client accepting the final cut
	// (awaiting_feedback to completed).
	ApproveDelivery(ctx context.Context, brandID, orderID string) (*Order, error)

	// Transition moves an order along any valid pipeline edge. Admin only.
	Transition(ctx context.Context, orderID string, to Status) (*Order, error)
}
