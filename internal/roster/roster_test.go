package roster

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custadmin/custadmin/internal/model"
)

func customer(id string) model.Customer {
	return model.Customer{UserID: id, Username: "user-" + id, Email: id + "@example.com"}
}

func ids(list []model.Customer) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.UserID
	}
	return out
}

func countID(list []model.Customer, id string) int {
	n := 0
	for _, c := range list {
		if c.UserID == id {
			n++
		}
	}
	return n
}

// lists returns a few lists of increasing size, none containing "new".
func lists() [][]model.Customer {
	out := [][]model.Customer{nil, {}}
	for n := 1; n <= 5; n++ {
		l := make([]model.Customer, n)
		for i := range l {
			l[i] = customer(fmt.Sprintf("%d", i+1))
		}
		out = append(out, l)
	}
	return out
}

func TestInsert_Scenario(t *testing.T) {
	t.Parallel()

	got := Insert(customer("2"), []model.Customer{customer("1")})

	assert.Equal(t, []string{"2", "1"}, ids(got))
}

func TestInsert_PrependsAndGrows(t *testing.T) {
	t.Parallel()

	c := customer("new")
	for _, l := range lists() {
		got := Insert(c, l)

		require.Len(t, got, len(l)+1)
		assert.Equal(t, c, got[0])
		assert.Equal(t, ids(l), ids(got[1:]))
	}
}

func TestInsert_DoesNotDeduplicate(t *testing.T) {
	t.Parallel()

	// Insert trusts the caller to pass a new id; Replace is the deduplicating
	// operation. Both behaviours are kept on purpose.
	list := []model.Customer{customer("1"), customer("2")}

	inserted := Insert(customer("1"), list)
	replaced := Replace(customer("1"), list)

	assert.Equal(t, 2, countID(inserted, "1"), "Insert keeps the duplicate")
	assert.Len(t, inserted, 3)
	assert.Equal(t, 1, countID(replaced, "1"), "Replace removes the duplicate")
	assert.Len(t, replaced, 2)
}

func TestReplace_Scenario(t *testing.T) {
	t.Parallel()

	list := []model.Customer{{UserID: "1", Username: "Alice", Email: "a@example.com"}}
	updated := model.Customer{UserID: "1", Username: "Bob", Email: "a@example.com"}

	got := Replace(updated, list)

	require.Len(t, got, 1)
	assert.Equal(t, "Bob", got[0].Username)
}

func TestReplace_MovesToFrontKeepingLength(t *testing.T) {
	t.Parallel()

	for _, l := range lists() {
		for i := range l {
			updated := customer(l[i].UserID)
			updated.Username = "renamed"

			got := Replace(updated, l)

			require.Len(t, got, len(l))
			assert.Equal(t, updated, got[0])
			assert.Equal(t, 1, countID(got, updated.UserID))

			// Relative order of the untouched entries is preserved.
			var rest []string
			for _, c := range l {
				if c.UserID != updated.UserID {
					rest = append(rest, c.UserID)
				}
			}
			assert.Equal(t, rest, nilIfEmpty(ids(got[1:])))
		}
	}
}

func TestReplace_WithoutMatchBehavesLikeInsert(t *testing.T) {
	t.Parallel()

	for _, l := range lists() {
		assert.Equal(t, Insert(customer("new"), l), Replace(customer("new"), l))
	}
}

func TestReplace_CollapsesExistingDuplicates(t *testing.T) {
	t.Parallel()

	list := []model.Customer{customer("1"), customer("2"), customer("1"), customer("3")}

	got := Replace(customer("1"), list)

	assert.Equal(t, []string{"1", "2", "3"}, ids(got))
}

func TestRemove_Scenario(t *testing.T) {
	t.Parallel()

	got := Remove(customer("1"), []model.Customer{customer("1"), customer("2")})

	assert.Equal(t, []string{"2"}, ids(got))
}

func TestRemove_DropsEveryMatch(t *testing.T) {
	t.Parallel()

	list := []model.Customer{customer("1"), customer("2"), customer("1")}

	got := Remove(customer("1"), list)

	assert.Equal(t, []string{"2"}, ids(got))
}

func TestRemove_NeverGrows(t *testing.T) {
	t.Parallel()

	for _, l := range lists() {
		for _, target := range append(l, customer("absent")) {
			got := Remove(target, l)

			assert.LessOrEqual(t, len(got), len(l))
			assert.Zero(t, countID(got, target.UserID))
		}
	}
}

func TestRemove_MatchesOnIdentifierOnly(t *testing.T) {
	t.Parallel()

	stale := model.Customer{UserID: "1", Username: "old name"}

	got := Remove(stale, []model.Customer{{UserID: "1", Username: "new name"}})

	assert.Empty(t, got)
}

func TestOperations_DoNotMutateInput(t *testing.T) {
	t.Parallel()

	list := []model.Customer{customer("1"), customer("2"), customer("3")}
	snapshot := model.CloneCustomers(list)

	_ = Insert(customer("4"), list)
	_ = Replace(customer("2"), list)
	_ = Remove(customer("1"), list)

	assert.Equal(t, snapshot, list)
}

func TestOperations_ReturnFreshBackingArray(t *testing.T) {
	t.Parallel()

	list := make([]model.Customer, 2, 10)
	list[0], list[1] = customer("1"), customer("2")

	got := Remove(customer("9"), list)
	got[0].Username = "changed"

	assert.Equal(t, "user-1", list[0].Username)
}

func TestMergeAssociations_NothingSupplied(t *testing.T) {
	t.Parallel()

	base := customer("1")
	base.Vehicles = []model.Vehicle{{VehicleID: "v-1", PlateNumber: "P-1"}}
	base.Cards = []model.Card{{CardID: "c-1", CardNumber: "4111"}}

	got := MergeAssociations(base, Associations{})

	assert.Equal(t, base, got)
}

func TestMergeAssociations_EmptyReplaces(t *testing.T) {
	t.Parallel()

	base := customer("1")
	base.Vehicles = []model.Vehicle{{VehicleID: "v-1"}}
	base.Cards = []model.Card{{CardID: "c-1"}}

	got := MergeAssociations(base, Associations{Vehicles: model.Some([]model.Vehicle{})})

	assert.NotNil(t, got.Vehicles)
	assert.Empty(t, got.Vehicles)
	assert.Equal(t, base.Cards, got.Cards, "absent cards stay untouched")
	assert.Len(t, base.Vehicles, 1, "base is not modified")
}

func TestMergeAssociations_PresentNilBecomesEmpty(t *testing.T) {
	t.Parallel()

	base := customer("1")
	base.Vehicles = []model.Vehicle{{VehicleID: "v-1"}}
	base.Cards = []model.Card{{CardID: "c-1"}}

	got := MergeAssociations(base, Associations{
		Vehicles: model.Some([]model.Vehicle(nil)),
		Cards:    model.Some([]model.Card(nil)),
	})

	require.NotNil(t, got.Vehicles)
	require.NotNil(t, got.Cards)
	assert.Empty(t, got.Vehicles)
	assert.Empty(t, got.Cards)
	assert.False(t, IsActive(got))

	b, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"vehicles":[]`)
	assert.Contains(t, string(b), `"cards":[]`)
}

func TestMergeAssociations_OverlaysBothFields(t *testing.T) {
	t.Parallel()

	base := customer("1")
	vehicles := []model.Vehicle{{VehicleID: "v-2"}, {VehicleID: "v-3"}}
	cards := []model.Card{{CardID: "c-9"}}

	got := MergeAssociations(base, Associations{
		Vehicles: model.Some(vehicles),
		Cards:    model.Some(cards),
	})

	assert.Equal(t, vehicles, got.Vehicles)
	assert.Equal(t, cards, got.Cards)
	assert.Equal(t, base.UserID, got.UserID)
	assert.Equal(t, base.Username, got.Username)
	assert.Equal(t, base.Email, got.Email)
}

func TestIsActive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		vehicles []model.Vehicle
		want     bool
	}{
		{"absent vehicles", nil, false},
		{"empty vehicles", []model.Vehicle{}, false},
		{"one vehicle", []model.Vehicle{{VehicleID: "v-1"}}, true},
		{"two vehicles", []model.Vehicle{{VehicleID: "v-1"}, {VehicleID: "v-2"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := customer("1")
			c.Vehicles = tt.vehicles
			assert.Equal(t, tt.want, IsActive(c))
		})
	}
}

func TestIsActive_IgnoresCards(t *testing.T) {
	t.Parallel()

	c := customer("1")
	c.Cards = []model.Card{{CardID: "c-1"}}

	assert.False(t, IsActive(c))
}

func TestFind(t *testing.T) {
	t.Parallel()

	list := []model.Customer{customer("1"), customer("2")}

	got, ok := Find("2", list)
	require.True(t, ok)
	assert.Equal(t, "user-2", got.Username)

	_, ok = Find("3", list)
	assert.False(t, ok)

	_, ok = Find("1", nil)
	assert.False(t, ok)
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}
