package staff_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/billroom/internal/persist"
	"github.com/MrJamesThe3rd/billroom/internal/staff"
)

func TestDirectory_Add(t *testing.T) {
	type testCase struct {
		name    string
		params  staff.CreateParams
		wantErr error
	}

	tests := []testCase{
		{
			name:   "Success",
			params: staff.CreateParams{Name: "Kinjal", Role: "Employee", RoomNumber: "150"},
		},
		{
			name:    "RoomTaken",
			params:  staff.CreateParams{Name: "Heer", Role: "Employee", RoomNumber: "120"},
			wantErr: staff.ErrRoomTaken,
		},
		{
			name:    "MissingRoom",
			params:  staff.CreateParams{Name: "Heer", Role: "Employee"},
			wantErr: staff.ErrInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := staff.NewDirectory(persist.Discard)
			_, err := d.Add(staff.CreateParams{Name: "Riya", Role: "Employee", RoomNumber: "120"})
			require.NoError(t, err)

			got, err := d.Add(tt.params)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 1, d.Len())

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)

			owner, ok := d.ByRoom("150")
			require.True(t, ok)
			assert.Equal(t, got, owner)
		})
	}
}

func TestDirectory_AddBatchIsAllOrNothing(t *testing.T) {
	d := staff.NewDirectory(persist.Discard)

	_, err := d.AddBatch([]staff.CreateParams{
		{Name: "A", Role: "Employee", RoomNumber: "110"},
		{Name: "B", Role: "Employee", RoomNumber: "110"},
	})

	assert.ErrorIs(t, err, staff.ErrRoomTaken)
	assert.Zero(t, d.Len())
}

func TestDirectory_Update(t *testing.T) {
	d := staff.NewDirectory(persist.Discard)

	a, err := d.Add(staff.CreateParams{Name: "A", Role: "Employee", RoomNumber: "110"})
	require.NoError(t, err)

	_, err = d.Add(staff.CreateParams{Name: "B", Role: "Employee", RoomNumber: "111"})
	require.NoError(t, err)

	a.RoomNumber = "111"
	assert.ErrorIs(t, d.Update(a), staff.ErrRoomTaken)

	a.RoomNumber = "112"
	a.Role = "Fund Manager"
	require.NoError(t, d.Update(a))

	got, err := d.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fund Manager", got.Role)

	assert.ErrorIs(t, d.Update(staff.Employee{ID: uuid.New(), Name: "X", Role: "Y", RoomNumber: "999"}), staff.ErrNotFound)
}

func TestDirectory_UpdateTrimsFields(t *testing.T) {
	d := staff.NewDirectory(persist.Discard)

	a, err := d.Add(staff.CreateParams{Name: "A", Role: "Employee", RoomNumber: "110"})
	require.NoError(t, err)

	b, err := d.Add(staff.CreateParams{Name: "B", Role: "Employee", RoomNumber: "111"})
	require.NoError(t, err)

	a.RoomNumber = " 111 "
	assert.ErrorIs(t, d.Update(a), staff.ErrRoomTaken)

	b.Name = "  Savani Diya "
	b.RoomNumber = " 150 "
	require.NoError(t, d.Update(b))

	got, ok := d.ByRoom("150")
	require.True(t, ok)
	assert.Equal(t, b.ID, got.ID)
	assert.Equal(t, "Savani Diya", got.Name)
	assert.Equal(t, "150", got.RoomNumber)
}

func TestDirectory_PersistsAndRestores(t *testing.T) {
	mem := persist.NewMemory()
	w := persist.NewWriter(mem, slog.Default())

	d := staff.NewDirectory(w)
	_, err := d.Add(staff.CreateParams{Name: "A", Role: "Employee", RoomNumber: "110"})
	require.NoError(t, err)
	require.NoError(t, w.Flush(context.Background()))

	var saved []staff.Employee
	require.True(t, persist.LoadJSON(context.Background(), mem, persist.KeyStaff, &saved))

	restored := staff.NewDirectory(persist.Discard)
	restored.Restore(saved)

	assert.Equal(t, d.List(), restored.List())
}
