package dto

// AuditRecordView renders one audit trail entry.
type AuditRecordView struct {
	ID            string  `json:"id"`
	EntityName    string  `json:"entity_name"`
	EntityID      string  `json:"entity_id"`
	Action        string  `json:"action"`
	ActorUsername string  `json:"actor_username"`
	Field         *string `json:"field,omitempty"`
	OldValue      *string `json:"old_value,omitempty"`
	NewValue      *string `json:"new_value,omitempty"`
	Timestamp     string  `json:"timestamp"`
}

// AuditListResponse wraps an audit listing.
type AuditListResponse struct {
	Items []AuditRecordView `json:"items"`
	Count int               `json:"count"`
}
