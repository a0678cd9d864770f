package console

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custadmin/custadmin/internal/gateway"
	"github.com/custadmin/custadmin/internal/metrics"
	"github.com/custadmin/custadmin/internal/model"
	"github.com/custadmin/custadmin/internal/roster"
	"github.com/custadmin/custadmin/internal/store"
	"github.com/custadmin/custadmin/internal/testutil"
)

// fakeGateway is an in-memory stand-in for the users service client.
type fakeGateway struct {
	customers map[string]model.Customer
	list      []model.Customer
	nextID    string
	err       error
	calls     []string
}

func (f *fakeGateway) GetCustomer(ctx context.Context, id string) *model.Customer {
	f.calls = append(f.calls, "get:"+id)
	c, ok := f.customers[id]
	if !ok || f.err != nil {
		return nil
	}
	return &c
}

func (f *fakeGateway) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	f.calls = append(f.calls, "list")
	if f.err != nil {
		return nil, f.err
	}
	return f.list, nil
}

func (f *fakeGateway) CreateCustomer(ctx context.Context, form model.CustomerForm) (*model.Customer, error) {
	f.calls = append(f.calls, "create")
	if f.err != nil {
		return nil, f.err
	}
	form = form.Trimmed()
	return &model.Customer{UserID: f.nextID, Username: form.Username, Email: form.Email}, nil
}

func (f *fakeGateway) UpdateCustomer(ctx context.Context, id string, form model.CustomerForm) (*model.Customer, error) {
	f.calls = append(f.calls, "update:"+id)
	if f.err != nil {
		return nil, f.err
	}
	form = form.Trimmed()
	return &model.Customer{UserID: id, Username: form.Username, Email: form.Email}, nil
}

func (f *fakeGateway) ChangePassword(ctx context.Context, oldPassword, newPassword string) (*gateway.Ack, error) {
	f.calls = append(f.calls, "password")
	if f.err != nil {
		return nil, f.err
	}
	return &gateway.Ack{StatusCode: http.StatusOK}, nil
}

func (f *fakeGateway) DeleteCustomer(ctx context.Context, id string) (*gateway.Ack, error) {
	f.calls = append(f.calls, "delete:"+id)
	if f.err != nil {
		return nil, f.err
	}
	return &gateway.Ack{StatusCode: http.StatusNoContent}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConsole(t *testing.T, gw Gateway, seed ...model.Customer) (*Console, *metrics.InMemoryRecorder) {
	t.Helper()
	st := store.NewMemory()
	if len(seed) > 0 {
		_, err := st.Update(context.Background(), func([]model.Customer) ([]model.Customer, error) {
			return seed, nil
		})
		require.NoError(t, err)
	}
	recorder := metrics.NewInMemory()
	return New(gw, st, quietLogger(), recorder), recorder
}

func userIDs(snap store.Snapshot) []string {
	out := make([]string, len(snap.Customers))
	for i, c := range snap.Customers {
		out[i] = c.UserID
	}
	return out
}

func TestConsole_Load(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{list: []model.Customer{testutil.NewTestCustomer(t, "1"), testutil.NewTestCustomer(t, "2")}}
	c, recorder := newTestConsole(t, gw, testutil.NewTestCustomer(t, "stale"))

	snap, err := c.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, userIDs(snap))
	assert.NotEmpty(t, snap.Revision)
	assert.Equal(t, uint64(1), recorder.Snapshot().ListsLoaded)
}

func TestConsole_Load_FailureKeepsList(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{err: errors.New("connection refused")}
	c, _ := newTestConsole(t, gw, testutil.NewTestCustomer(t, "1"))
	before, _ := c.List(context.Background())

	_, err := c.Load(context.Background())

	assert.EqualError(t, err, "connection refused")
	after, _ := c.List(context.Background())
	assert.Equal(t, before, after)
}

func TestConsole_Profile(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{customers: map[string]model.Customer{"1": testutil.NewTestCustomer(t, "1")}}
	c, _ := newTestConsole(t, gw)

	got, err := c.Profile(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Customer 1", got.Username)

	_, err = c.Profile(context.Background(), "404")
	assert.ErrorIs(t, err, ErrCustomerNotFound)

	_, err = c.Profile(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestConsole_SaveAdd_PrependsCreatedCustomer(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{nextID: "2"}
	c, recorder := newTestConsole(t, gw, testutil.NewTestCustomer(t, "1"))

	saved, snap, err := c.Save(context.Background(), ModeAdd, "", model.CustomerForm{Username: " Jane ", Email: "jane@example.com"})

	require.NoError(t, err)
	assert.Equal(t, "2", saved.UserID)
	assert.Equal(t, "Jane", saved.Username)
	assert.Equal(t, []string{"2", "1"}, userIDs(snap))
	assert.Equal(t, uint64(1), recorder.Snapshot().CustomersInserted)
}

func TestConsole_SaveEdit_MovesToFront(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	c, recorder := newTestConsole(t, gw,
		testutil.NewTestCustomer(t, "1"),
		testutil.NewTestCustomer(t, "2"),
		testutil.NewTestCustomer(t, "3"),
	)

	saved, snap, err := c.Save(context.Background(), ModeEdit, "3", model.CustomerForm{Username: "Bob"})

	require.NoError(t, err)
	assert.Equal(t, "Bob", saved.Username)
	assert.Equal(t, []string{"3", "1", "2"}, userIDs(snap))
	assert.Equal(t, "Bob", snap.Customers[0].Username)
	assert.Equal(t, []string{"update:3"}, gw.calls)
	assert.Equal(t, uint64(1), recorder.Snapshot().CustomersReplaced)
}

func TestConsole_Save_InvalidFormSkipsGateway(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	c, _ := newTestConsole(t, gw)

	_, _, err := c.Save(context.Background(), ModeAdd, "", model.CustomerForm{Username: "  "})

	var verrs model.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
	assert.Empty(t, gw.calls)
}

func TestConsole_Save_GatewayFailureKeepsList(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	gw := &fakeGateway{err: boom}
	c, _ := newTestConsole(t, gw, testutil.NewTestCustomer(t, "1"))
	before, _ := c.List(context.Background())

	_, _, err := c.Save(context.Background(), ModeEdit, "1", model.CustomerForm{Username: "Bob"})

	assert.ErrorIs(t, err, boom)
	after, _ := c.List(context.Background())
	assert.Equal(t, before, after)
}

func TestConsole_Save_ModeErrors(t *testing.T) {
	t.Parallel()

	c, _ := newTestConsole(t, &fakeGateway{})
	form := model.CustomerForm{Username: "Bob"}

	_, _, err := c.Save(context.Background(), ModeEdit, "", form)
	assert.ErrorIs(t, err, ErrMissingID)

	_, _, err = c.Save(context.Background(), Mode("Clone"), "1", form)
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestConsole_Delete(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	c, recorder := newTestConsole(t, gw, testutil.NewTestCustomer(t, "1"), testutil.NewTestCustomer(t, "2"))

	snap, err := c.Delete(context.Background(), "1")

	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, userIDs(snap))
	assert.Equal(t, []string{"delete:1"}, gw.calls)
	assert.Equal(t, uint64(1), recorder.Snapshot().CustomersRemoved)
}

func TestConsole_Delete_FailureKeepsList(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{err: errors.New("forbidden")}
	c, _ := newTestConsole(t, gw, testutil.NewTestCustomer(t, "1"))

	_, err := c.Delete(context.Background(), "1")

	assert.Error(t, err)
	snap, _ := c.List(context.Background())
	assert.Equal(t, []string{"1"}, userIDs(snap))
}

func TestConsole_AttachAssociations(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	c, _ := newTestConsole(t, gw,
		testutil.NewTestCustomer(t, "1"),
		testutil.NewTestCustomerWithVehicles(t, "2", 2),
	)

	merged, snap, err := c.AttachAssociations(context.Background(), "2", roster.Associations{
		Cards: model.Some([]model.Card{{CardID: "c-1", CardNumber: "4111"}}),
	})

	require.NoError(t, err)
	assert.Len(t, merged.Vehicles, 2, "absent vehicles stay")
	assert.Len(t, merged.Cards, 1)
	assert.True(t, roster.IsActive(*merged))
	assert.Equal(t, []string{"2", "1"}, userIDs(snap))
	assert.Empty(t, gw.calls, "associations are merged locally")
}

func TestConsole_AttachAssociations_EmptyClears(t *testing.T) {
	t.Parallel()

	c, _ := newTestConsole(t, &fakeGateway{}, testutil.NewTestCustomerWithVehicles(t, "1", 1))

	merged, _, err := c.AttachAssociations(context.Background(), "1", roster.Associations{
		Vehicles: model.Some([]model.Vehicle{}),
	})

	require.NoError(t, err)
	assert.NotNil(t, merged.Vehicles)
	assert.Empty(t, merged.Vehicles)
	assert.False(t, roster.IsActive(*merged))
}

func TestConsole_AttachAssociations_UnknownCustomer(t *testing.T) {
	t.Parallel()

	c, _ := newTestConsole(t, &fakeGateway{}, testutil.NewTestCustomer(t, "1"))
	before, _ := c.List(context.Background())

	_, _, err := c.AttachAssociations(context.Background(), "9", roster.Associations{})

	assert.ErrorIs(t, err, ErrCustomerNotFound)
	after, _ := c.List(context.Background())
	assert.Equal(t, before.Revision, after.Revision)
}

func TestConsole_ChangePassword(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	c, _ := newTestConsole(t, gw)

	err := c.ChangePassword(context.Background(), model.PasswordChange{OldPassword: "a", NewPassword: "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"password"}, gw.calls)

	err = c.ChangePassword(context.Background(), model.PasswordChange{OldPassword: "a"})
	var verrs model.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
	assert.Len(t, gw.calls, 1)
}

func TestConsole_WithHTTPGateway(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"info":[{"userId":"1","username":"Alice"}]}`)
	})
	mux.HandleFunc("/users/1", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"info":{"userId":"1","username":"Bob"}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	gw, err := gateway.New(srv.URL, srv.Client(), quietLogger(), nil)
	require.NoError(t, err)
	c, _ := newTestConsole(t, gw)

	_, err = c.Load(context.Background())
	require.NoError(t, err)

	_, snap, err := c.Save(context.Background(), ModeEdit, "1", model.CustomerForm{Username: "Bob"})
	require.NoError(t, err)

	require.Len(t, snap.Customers, 1)
	assert.Equal(t, "Bob", snap.Customers[0].Username)
}
