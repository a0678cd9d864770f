// Package model defines domain entities for the application.
package model

import "slices"

// Vehicle is a vehicle registered to exactly one customer.
type Vehicle struct {
	VehicleID   string `json:"vehicleId"`
	PlateNumber string `json:"plateNumber"`
	Model       string `json:"model,omitempty"`
}

// Card is a payment or access card issued to exactly one customer.
type Card struct {
	CardID     string `json:"cardId"`
	CardNumber string `json:"cardNumber"`
}

// Customer is a customer profile as returned by the remote users service.
// UserID is assigned by the service at creation and never changes.
//
// A nil Vehicles or Cards slice means the collection was absent in the
// payload; a non-nil empty slice means it was explicitly empty.
type Customer struct {
	UserID   string    `json:"userId"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Vehicles []Vehicle `json:"vehicles"`
	Cards    []Card    `json:"cards"`
}

// Clone returns a copy of the customer that shares no backing arrays
// with the receiver. Nil collections stay nil.
func (c Customer) Clone() Customer {
	c.Vehicles = slices.Clone(c.Vehicles)
	c.Cards = slices.Clone(c.Cards)
	return c
}

// CloneCustomers copies a customer list element by element.
func CloneCustomers(list []Customer) []Customer {
	if list == nil {
		return nil
	}
	out := make([]Customer, len(list))
	for i, c := range list {
		out[i] = c.Clone()
	}
	return out
}
