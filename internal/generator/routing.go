package generator

import (
	"math/rand/v2"
	"slices"

	"github.com/MrJamesThe3rd/billroom/internal/staff"
)

// Routing names the fixed rooms and the high-value threshold (paise).
type Routing struct {
	CashRoom     string
	FinanceRoom  string
	VIPRoom      string
	FallbackRoom string
	VIPThreshold int64
}

// Route decides whether a generated bill is a self/cash sale and which room plays it.
func (r Routing) Route(rng *rand.Rand, total int64, employees []staff.Employee) (room string, self bool) {
	if total >= r.VIPThreshold {
		if rng.Float64() < 0.2 {
			return r.CashRoom, true
		}

		return r.VIPRoom, false
	}

	if rng.Float64() < 0.3 {
		return r.CashRoom, true
	}

	rooms := r.staffRooms(employees, r.FinanceRoom)
	if len(rooms) == 0 {
		return r.CashRoom, true
	}

	return rooms[rng.IntN(len(rooms))], false
}

// ManualRoom picks the room for a manually entered bill.
func (r Routing) ManualRoom(rng *rand.Rand, self bool, employees []staff.Employee) string {
	if self {
		return r.CashRoom
	}

	rooms := r.staffRooms(employees, r.CashRoom, r.FinanceRoom)
	if len(rooms) == 0 {
		return r.FallbackRoom
	}

	return rooms[rng.IntN(len(rooms))]
}

func (r Routing) staffRooms(employees []staff.Employee, exclude ...string) []string {
	var rooms []string

	for _, e := range employees {
		if !slices.Contains(exclude, e.RoomNumber) {
			rooms = append(rooms, e.RoomNumber)
		}
	}

	return rooms
}
