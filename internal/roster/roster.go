// Package roster keeps a local customer list in step with the results of
// remote create, update and delete calls.
//
// Lists are ordered most-recently-touched first. Every function is pure:
// the input slice is never modified and a freshly allocated slice is
// returned.
package roster

import "github.com/custadmin/custadmin/internal/model"

// Associations overlays a customer's owned collections. An absent field
// leaves the collection as it is; a present empty field clears it.
type Associations struct {
	Vehicles model.Optional[[]model.Vehicle] `json:"vehicles"`
	Cards    model.Optional[[]model.Card]    `json:"cards"`
}

// Insert puts c at the front of list. It does not check for an existing
// entry with the same UserID; callers must only insert new customers.
func Insert(c model.Customer, list []model.Customer) []model.Customer {
	out := make([]model.Customer, 0, len(list)+1)
	out = append(out, c)
	return append(out, list...)
}

// Replace puts c at the front of list and drops every other entry with
// the same UserID. Without a prior entry it behaves like Insert.
func Replace(c model.Customer, list []model.Customer) []model.Customer {
	out := make([]model.Customer, 0, len(list)+1)
	out = append(out, c)
	for _, e := range list {
		if e.UserID != c.UserID {
			out = append(out, e)
		}
	}
	return out
}

// Remove drops every entry whose UserID matches c.
func Remove(c model.Customer, list []model.Customer) []model.Customer {
	out := make([]model.Customer, 0, len(list))
	for _, e := range list {
		if e.UserID != c.UserID {
			out = append(out, e)
		}
	}
	return out
}

// MergeAssociations returns c with its vehicles and cards replaced by the
// present fields of a. Scalar fields are never touched. A present nil
// slice is stored as empty so it stays distinct from absent.
func MergeAssociations(c model.Customer, a Associations) model.Customer {
	if v, ok := a.Vehicles.Get(); ok {
		if v == nil {
			v = []model.Vehicle{}
		}
		c.Vehicles = v
	}
	if cards, ok := a.Cards.Get(); ok {
		if cards == nil {
			cards = []model.Card{}
		}
		c.Cards = cards
	}
	return c
}

// IsActive reports whether the customer has at least one vehicle.
func IsActive(c model.Customer) bool {
	return len(c.Vehicles) > 0
}

// Find returns the first entry with the given UserID.
func Find(userID string, list []model.Customer) (model.Customer, bool) {
	for _, e := range list {
		if e.UserID == userID {
			return e, true
		}
	}
	return model.Customer{}, false
}
