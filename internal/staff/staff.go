package staff

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/billroom/internal/persist"
)

var (
	ErrNotFound  = errors.New("employee not found")
	ErrRoomTaken = errors.New("room already assigned")
	ErrInvalid   = errors.New("name, role and room are required")
)

// Employee is a staff profile. Each room belongs to at most one employee.
type Employee struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	ImageURL   string    `json:"image_url,omitempty"`
	RoomNumber string    `json:"room_number"`
}

type CreateParams struct {
	Name       string
	Role       string
	ImageURL   string
	RoomNumber string
}

func (p CreateParams) validate() error {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Role) == "" || strings.TrimSpace(p.RoomNumber) == "" {
		return ErrInvalid
	}

	return nil
}

// Directory owns the staff profiles.
type Directory struct {
	mu        sync.RWMutex
	employees []Employee
	sink      persist.Sink
}

func NewDirectory(sink persist.Sink) *Directory {
	return &Directory{sink: sink}
}

// Restore replaces the directory content with previously persisted profiles.
func (d *Directory) Restore(employees []Employee) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.employees = slices.Clone(employees)
}

func (d *Directory) List() []Employee {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return slices.Clone(d.employees)
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.employees)
}

func (d *Directory) Get(id uuid.UUID) (Employee, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, e := range d.employees {
		if e.ID == id {
			return e, nil
		}
	}

	return Employee{}, ErrNotFound
}

func (d *Directory) ByRoom(room string) (Employee, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, e := range d.employees {
		if e.RoomNumber == room {
			return e, true
		}
	}

	return Employee{}, false
}

func (d *Directory) Add(params CreateParams) (Employee, error) {
	added, err := d.AddBatch([]CreateParams{params})
	if err != nil {
		return Employee{}, err
	}

	return added[0], nil
}

// AddBatch adds all profiles or none of them.
func (d *Directory) AddBatch(params []CreateParams) ([]Employee, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	rooms := make(map[string]struct{}, len(d.employees)+len(params))
	for _, e := range d.employees {
		rooms[e.RoomNumber] = struct{}{}
	}

	added := make([]Employee, 0, len(params))

	for _, p := range params {
		if err := p.validate(); err != nil {
			return nil, err
		}

		room := strings.TrimSpace(p.RoomNumber)
		if _, taken := rooms[room]; taken {
			return nil, fmt.Errorf("room %s: %w", room, ErrRoomTaken)
		}

		rooms[room] = struct{}{}

		added = append(added, Employee{
			ID:         uuid.New(),
			Name:       strings.TrimSpace(p.Name),
			Role:       strings.TrimSpace(p.Role),
			ImageURL:   p.ImageURL,
			RoomNumber: room,
		})
	}

	d.employees = append(d.employees, added...)
	d.sink.Put(persist.KeyStaff, d.employees)

	return added, nil
}

func (d *Directory) Update(emp Employee) error {
	p := CreateParams{Name: emp.Name, Role: emp.Role, RoomNumber: emp.RoomNumber}
	if err := p.validate(); err != nil {
		return err
	}

	emp.Name = strings.TrimSpace(emp.Name)
	emp.Role = strings.TrimSpace(emp.Role)
	emp.RoomNumber = strings.TrimSpace(emp.RoomNumber)

	d.mu.Lock()
	defer d.mu.Unlock()

	idx := -1

	for i, e := range d.employees {
		if e.ID == emp.ID {
			idx = i
			continue
		}

		if e.RoomNumber == emp.RoomNumber {
			return fmt.Errorf("room %s: %w", emp.RoomNumber, ErrRoomTaken)
		}
	}

	if idx == -1 {
		return ErrNotFound
	}

	d.employees[idx] = emp
	d.sink.Put(persist.KeyStaff, d.employees)

	return nil
}
