// Package console drives the customer management screens: every user
// action calls the users service through the gateway and then reconciles
// the current customer list with the result.
package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/custadmin/custadmin/internal/gateway"
	"github.com/custadmin/custadmin/internal/metrics"
	"github.com/custadmin/custadmin/internal/model"
	"github.com/custadmin/custadmin/internal/roster"
	"github.com/custadmin/custadmin/internal/store"
)

// Console errors.
var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrMissingID        = errors.New("customer id is required")
	ErrUnknownMode      = errors.New("unknown dialog mode")
)

// Mode is the dialog a form was submitted from.
type Mode string

const (
	ModeAdd  Mode = "Add"
	ModeEdit Mode = "Edit"
)

// Gateway is the part of the users service client the console needs.
type Gateway interface {
	GetCustomer(ctx context.Context, id string) *model.Customer
	ListCustomers(ctx context.Context) ([]model.Customer, error)
	CreateCustomer(ctx context.Context, form model.CustomerForm) (*model.Customer, error)
	UpdateCustomer(ctx context.Context, id string, form model.CustomerForm) (*model.Customer, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword string) (*gateway.Ack, error)
	DeleteCustomer(ctx context.Context, id string) (*gateway.Ack, error)
}

// Console owns the current customer list.
//
// Gateway calls are not serialized: two saves for the same customer race
// and the response that resolves last wins. Only the list update itself
// is atomic.
type Console struct {
	gw      Gateway
	store   store.Store
	logger  *slog.Logger
	metrics metrics.Recorder
}

// New creates a Console.
func New(gw Gateway, st store.Store, logger *slog.Logger, recorder metrics.Recorder) *Console {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Console{
		gw:      gw,
		store:   st,
		logger:  logger.With("component", "console"),
		metrics: recorder,
	}
}

// Load replaces the current list with a fresh listing from the service.
// On failure the current list is kept.
func (c *Console) Load(ctx context.Context) (store.Snapshot, error) {
	customers, err := c.gw.ListCustomers(ctx)
	if err != nil {
		return store.Snapshot{}, err
	}

	snap, err := c.store.Update(ctx, func([]model.Customer) ([]model.Customer, error) {
		return customers, nil
	})
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("store customer list: %w", err)
	}

	c.metrics.IncListLoaded()
	c.logger.Info("customer_list_loaded",
		"count", len(snap.Customers),
		"revision", snap.Revision,
	)
	return snap, nil
}

// List returns the current list.
func (c *Console) List(ctx context.Context) (store.Snapshot, error) {
	return c.store.Get(ctx)
}

// Profile looks up one customer on the service. A failed lookup is
// reported as ErrCustomerNotFound.
func (c *Console) Profile(ctx context.Context, id string) (*model.Customer, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	customer := c.gw.GetCustomer(ctx, id)
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	return customer, nil
}

// Save submits the customer dialog. Add creates the customer and puts it
// at the front of the list; Edit updates it and moves it to the front.
func (c *Console) Save(ctx context.Context, mode Mode, id string, form model.CustomerForm) (*model.Customer, store.Snapshot, error) {
	if err := form.Validate(); err != nil {
		return nil, store.Snapshot{}, err
	}

	var (
		saved     *model.Customer
		err       error
		reconcile func(model.Customer, []model.Customer) []model.Customer
	)

	switch mode {
	case ModeAdd:
		saved, err = c.gw.CreateCustomer(ctx, form)
		reconcile = roster.Insert
	case ModeEdit:
		if id == "" {
			return nil, store.Snapshot{}, ErrMissingID
		}
		saved, err = c.gw.UpdateCustomer(ctx, id, form)
		reconcile = roster.Replace
	default:
		return nil, store.Snapshot{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	if err != nil {
		return nil, store.Snapshot{}, err
	}

	customer := *saved
	snap, err := c.store.Update(ctx, func(cur []model.Customer) ([]model.Customer, error) {
		return reconcile(customer, cur), nil
	})
	if err != nil {
		return nil, store.Snapshot{}, fmt.Errorf("store customer list: %w", err)
	}

	if mode == ModeAdd {
		c.metrics.IncCustomerInserted()
		c.logger.Info("customer_created", "user_id", customer.UserID)
	} else {
		c.metrics.IncCustomerReplaced()
		c.logger.Info("customer_updated", "user_id", customer.UserID)
	}

	return saved, snap, nil
}

// Delete removes a customer on the service and from the list.
func (c *Console) Delete(ctx context.Context, id string) (store.Snapshot, error) {
	if id == "" {
		return store.Snapshot{}, ErrMissingID
	}

	if _, err := c.gw.DeleteCustomer(ctx, id); err != nil {
		return store.Snapshot{}, err
	}

	snap, err := c.store.Update(ctx, func(cur []model.Customer) ([]model.Customer, error) {
		return roster.Remove(model.Customer{UserID: id}, cur), nil
	})
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("store customer list: %w", err)
	}

	c.metrics.IncCustomerRemoved()
	c.logger.Info("customer_deleted", "user_id", id)
	return snap, nil
}

// AttachAssociations overlays vehicles and/or cards on a listed customer
// and moves it to the front. No service call is made.
func (c *Console) AttachAssociations(ctx context.Context, id string, a roster.Associations) (*model.Customer, store.Snapshot, error) {
	if id == "" {
		return nil, store.Snapshot{}, ErrMissingID
	}

	var merged model.Customer
	snap, err := c.store.Update(ctx, func(cur []model.Customer) ([]model.Customer, error) {
		existing, ok := roster.Find(id, cur)
		if !ok {
			return nil, ErrCustomerNotFound
		}
		merged = roster.MergeAssociations(existing, a)
		return roster.Replace(merged, cur), nil
	})
	if err != nil {
		return nil, store.Snapshot{}, err
	}

	c.metrics.IncCustomerReplaced()
	c.logger.Info("customer_associations_updated",
		"user_id", id,
		"vehicles_set", a.Vehicles.IsSet(),
		"cards_set", a.Cards.IsSet(),
		"active", roster.IsActive(merged),
	)
	return &merged, snap, nil
}

// ChangePassword validates and forwards a password change.
func (c *Console) ChangePassword(ctx context.Context, change model.PasswordChange) error {
	if err := change.Validate(); err != nil {
		return err
	}
	if _, err := c.gw.ChangePassword(ctx, change.OldPassword, change.NewPassword); err != nil {
		return err
	}
	c.logger.Info("password_changed")
	return nil
}
