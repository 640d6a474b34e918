package types

import "encoding/json"

// CreateResourceRequest is the body of POST /resources and each element of
// POST /resources/bulk.
type CreateResourceRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Type        string          `json:"type" validate:"omitempty,oneof=document image video audio other"`
	Status      string          `json:"status" validate:"omitempty,oneof=active inactive pending archived"`
	Value       *float64        `json:"value" validate:"required"`
	Metadata    json.RawMessage `json:"metadata"`
}

// UpdateResourceRequest is the body of PUT /resources/{id}. Absent fields
// leave the stored value untouched.
type UpdateResourceRequest struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Type        *string         `json:"type" validate:"omitempty,oneof=document image video audio other"`
	Status      *string         `json:"status" validate:"omitempty,oneof=active inactive pending archived"`
	Value       *float64        `json:"value"`
	Metadata    json.RawMessage `json:"metadata"`
}
