package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kakaka820/Titanic/pkg/data"
)

func fixture() []data.Passenger {
	planet, cabin := "Europa", "B/0/P"
	age, zero := 39.0, 0.0
	no := false
	return []data.Passenger{
		{
			PassengerID: "0001_01", HomePlanet: &planet, CryoSleep: &no, Cabin: &cabin, Age: &age, VIP: &no,
			RoomService: &zero, FoodCourt: &zero, ShoppingMall: &zero, Spa: &zero, VRDeck: &zero,
			Deck: "B", CabinNum: "0", Side: "P", GroupSize: 1,
		},
		{PassengerID: "0002_01", Transported: true, TotalSpent: 711, SpendingFlag: true,
			Deck: "Unknown", CabinNum: "Unknown", Side: "Unknown", GroupSize: 1},
	}
}

func testStore(t *testing.T, st Store) {
	ctx := context.Background()
	ps, err := st.Passengers(ctx)
	require.NoError(t, err)
	assert.Empty(t, ps)

	require.NoError(t, st.SeedPassengers(ctx, fixture()))
	require.NoError(t, st.SeedPassengers(ctx, fixture()), "seeding twice replaces the rows")

	ps, err = st.Passengers(ctx)
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, "0001_01", ps[0].PassengerID)
	require.NotNil(t, ps[0].Age)
	assert.Equal(t, 39.0, *ps[0].Age)
	assert.Equal(t, "B", ps[0].Deck)
	assert.Nil(t, ps[1].HomePlanet)
	assert.True(t, ps[1].Transported)
	assert.Equal(t, 711.0, ps[1].TotalSpent)
}

func TestMemoryStore(t *testing.T) {
	st := NewMemoryStore()
	testStore(t, st)

	ps, _ := st.Passengers(context.Background())
	ps[0].PassengerID = "changed"
	again, _ := st.Passengers(context.Background())
	assert.Equal(t, "0001_01", again[0].PassengerID)
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("TITANIC_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TITANIC_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	st, err := OpenPostgres(ctx, url)
	require.NoError(t, err)
	defer st.Close()

	_, err = st.db.ExecContext(ctx, `DELETE FROM passengers`)
	require.NoError(t, err)
	testStore(t, st)
}
