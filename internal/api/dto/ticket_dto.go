package dto

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject     string  `json:"subject"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	CourtID     *string `json:"court_id"`
	AssetID     *string `json:"asset_id"`
	Channel     string  `json:"channel"`
}

// ChangeStatusRequest payload.
type ChangeStatusRequest struct {
	Status       string  `json:"status"`
	TechnicianID *string `json:"technician_id"`
	Comment      *string `json:"comment"`
}

// TicketView is the flattened, read-only ticket representation. Unset optional fields are omitted.
type TicketView struct {
	ID                string  `json:"id"`
	Subject           string  `json:"subject"`
	Description       string  `json:"description"`
	Status            string  `json:"status"`
	Priority          string  `json:"priority"`
	CourtID           *string `json:"court_id,omitempty"`
	CourtName         *string `json:"court_name,omitempty"`
	RequesterID       string  `json:"requester_id"`
	RequesterName     *string `json:"requester_name,omitempty"`
	TechnicianID      *string `json:"technician_id,omitempty"`
	TechnicianName    *string `json:"technician_name,omitempty"`
	AssetID           *string `json:"asset_id,omitempty"`
	AssetInventoryTag *string `json:"asset_inventory_tag,omitempty"`
	Log               *string `json:"log,omitempty"`
	Channel           string  `json:"channel"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         *string `json:"updated_at,omitempty"`
	ClosedAt          *string `json:"closed_at,omitempty"`
}

// TicketListResponse wraps a ticket listing.
type TicketListResponse struct {
	Items []TicketView `json:"items"`
	Count int          `json:"count"`
}
