package entity

import (
	"time"

	"github.com/google/uuid"
)

type ClassStatus string

const (
	ClassStatusActive    ClassStatus = "active"
	ClassStatusCancelled ClassStatus = "cancelled"
)

// Class is a bookable slot published by an instructor.
// Invariant: BookedCount <= Capacity at all times; the counter is mutated
// only through BookingRepository's conditional reserve/release statements.
type Class struct {
	Base
	InstructorID uuid.UUID   `db:"instructor_id"`
	Title        string      `db:"title"`
	ScheduleAt   time.Time   `db:"schedule_at"`
	Capacity     int         `db:"capacity"`
	BookedCount  int         `db:"booked_count"`
	Price        float64     `db:"price"`
	Status       ClassStatus `db:"status"`
}

// Bookable reports whether new reservations may be taken, capacity aside.
func (c *Class) Bookable(now time.Time) bool {
	return c.Status == ClassStatusActive && c.ScheduleAt.After(now)
}
