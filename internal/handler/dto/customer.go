// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"github.com/custadmin/custadmin/internal/model"
	"github.com/custadmin/custadmin/internal/roster"
	"github.com/custadmin/custadmin/internal/store"
)

// CustomerRequest is the body of the add and edit customer dialogs.
type CustomerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ToForm converts the request to a CustomerForm.
func (r CustomerRequest) ToForm() model.CustomerForm {
	return model.CustomerForm{Username: r.Username, Email: r.Email}
}

// AssociationsRequest overlays vehicles and cards. A missing or null field
// is left untouched; an empty array clears the collection.
type AssociationsRequest struct {
	Vehicles model.Optional[[]model.Vehicle] `json:"vehicles"`
	Cards    model.Optional[[]model.Card]    `json:"cards"`
}

// ToAssociations converts the request to roster.Associations.
func (r AssociationsRequest) ToAssociations() roster.Associations {
	return roster.Associations{Vehicles: r.Vehicles, Cards: r.Cards}
}

// PasswordRequest is the body of the change password action.
type PasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ToPasswordChange converts the request to a PasswordChange.
func (r PasswordRequest) ToPasswordChange() model.PasswordChange {
	return model.PasswordChange{OldPassword: r.OldPassword, NewPassword: r.NewPassword}
}

// CustomerResponse represents a customer in API responses.
type CustomerResponse struct {
	UserID   string          `json:"userId"`
	Username string          `json:"username"`
	Email    string          `json:"email"`
	Vehicles []model.Vehicle `json:"vehicles"`
	Cards    []model.Card    `json:"cards"`
	Active   bool            `json:"active"`
}

// CustomerListResponse is the current customer list.
type CustomerListResponse struct {
	Data     []CustomerResponse `json:"data"`
	Revision string             `json:"revision"`
	Count    int                `json:"count"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error          string             `json:"error"`
	Code           string             `json:"code"`
	Fields         []model.FieldError `json:"fields,omitempty"`
	UpstreamStatus int                `json:"upstream_status,omitempty"`
}

// ToCustomerResponse converts a Customer to its DTO.
func ToCustomerResponse(c model.Customer) CustomerResponse {
	return CustomerResponse{
		UserID:   c.UserID,
		Username: c.Username,
		Email:    c.Email,
		Vehicles: c.Vehicles,
		Cards:    c.Cards,
		Active:   roster.IsActive(c),
	}
}

// ToCustomerListResponse converts a snapshot to its DTO.
func ToCustomerListResponse(snap store.Snapshot) *CustomerListResponse {
	data := make([]CustomerResponse, len(snap.Customers))
	for i, c := range snap.Customers {
		data[i] = ToCustomerResponse(c)
	}
	return &CustomerListResponse{
		Data:     data,
		Revision: snap.Revision,
		Count:    len(data),
	}
}
