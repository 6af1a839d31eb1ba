package data

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const header = "PassengerId,HomePlanet,CryoSleep,Cabin,Destination,Age,VIP,RoomService,FoodCourt,ShoppingMall,Spa,VRDeck,Name,Transported\n"

func TestReadCSV(t *testing.T) {
	csv := "\ufeff" + header +
		"0001_01,Europa,False,B/0/P,TRAPPIST-1e,39,False,0,0,0,0,0,Maham Ofracculy,False\n" +
		"\n" +
		"0002_01,,True,,,,,,,,,,,True\n"

	tbl, err := ReadCSV(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
	assert.True(t, tbl.HasColumn("PassengerId"), "BOM must be stripped from the first header")

	ids, err := tbl.Column(ColPassengerID)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_01", "0002_01"}, ids)

	_, err = tbl.Column("Nope")
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyTable)

	_, err = ReadCSV(strings.NewReader(header))
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestParsePassengers(t *testing.T) {
	csv := header +
		"0001_01,Europa,False,B/0/P,TRAPPIST-1e,39,False,0,0,0,0,0,Maham Ofracculy,False\n" +
		"0002_01,,True,,,NaN,,109,,25,549,44,,\n"
	tbl, err := ReadCSV(strings.NewReader(csv))
	require.NoError(t, err)

	ps, err := ParsePassengers(tbl)
	require.NoError(t, err)
	require.Len(t, ps, 2)

	first := ps[0]
	require.NotNil(t, first.HomePlanet)
	assert.Equal(t, "Europa", *first.HomePlanet)
	require.NotNil(t, first.Age)
	assert.Equal(t, 39.0, *first.Age)
	require.NotNil(t, first.CryoSleep)
	assert.False(t, *first.CryoSleep)
	require.NotNil(t, first.Name)
	assert.Equal(t, "0001", first.GroupID())

	second := ps[1]
	assert.Nil(t, second.HomePlanet)
	assert.Nil(t, second.Cabin)
	assert.Nil(t, second.Age, "NaN reads as missing")
	assert.Nil(t, second.VIP)
	assert.Nil(t, second.FoodCourt)
	require.NotNil(t, second.RoomService)
	assert.Equal(t, 109.0, *second.RoomService)
	assert.False(t, second.Transported, "empty label reads as not transported")
}

func TestParsePassengersErrors(t *testing.T) {
	t.Run("missing column", func(t *testing.T) {
		tbl, err := ReadCSV(strings.NewReader("PassengerId,Age\n0001_01,3\n"))
		require.NoError(t, err)
		_, err = ParsePassengers(tbl)
		assert.ErrorIs(t, err, ErrMissingColumn)
		assert.Contains(t, err.Error(), ColHomePlanet)
	})

	t.Run("bad number", func(t *testing.T) {
		tbl, err := ReadCSV(strings.NewReader(header +
			"0001_01,Europa,False,B/0/P,TRAPPIST-1e,old,False,0,0,0,0,0,X,False\n"))
		require.NoError(t, err)
		_, err = ParsePassengers(tbl)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "row 2")
		assert.Contains(t, err.Error(), ColAge)
	})

	t.Run("bad bool", func(t *testing.T) {
		tbl, err := ReadCSV(strings.NewReader(header +
			"0001_01,Europa,maybe,B/0/P,TRAPPIST-1e,3,False,0,0,0,0,0,X,False\n"))
		require.NoError(t, err)
		_, err = ParsePassengers(tbl)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ColCryoSleep)
	})
}

func TestReadTableXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"PassengerId", "HomePlanet", "CryoSleep", "Cabin", "Destination", "Age", "VIP",
			"RoomService", "FoodCourt", "ShoppingMall", "Spa", "VRDeck", "Name", "Transported"},
		{"0001_01", "Earth", "False", "F/1/S", "55 Cancri e", "24", "False", "0", "10", "0", "0", "0", "A B", "True"},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	ps, err := LoadPassengers(path)
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.True(t, ps[0].Transported)
	require.NotNil(t, ps[0].FoodCourt)
	assert.Equal(t, 10.0, *ps[0].FoodCourt)
}
