package response

import (
	"time"

	"studio-booking/internal/data/entity"
)

type ClassResponse struct {
	ID           string             `json:"id"`
	InstructorID string             `json:"instructor_id"`
	Title        string             `json:"title"`
	ScheduleAt   time.Time          `json:"schedule_at"`
	Capacity     int                `json:"capacity"`
	BookedCount  int                `json:"booked_count"`
	SpotsLeft    int                `json:"spots_left"`
	Price        float64            `json:"price"`
	Status       entity.ClassStatus `json:"status"`
	CreatedAt    time.Time          `json:"created_at"`
}

func ClassToResponse(class *entity.Class) ClassResponse {
	return ClassResponse{
		ID:           class.ID.String(),
		InstructorID: class.InstructorID.String(),
		Title:        class.Title,
		ScheduleAt:   class.ScheduleAt,
		Capacity:     class.Capacity,
		BookedCount:  class.BookedCount,
		SpotsLeft:    class.Capacity - class.BookedCount,
		Price:        class.Price,
		Status:       class.Status,
		CreatedAt:    class.CreatedAt,
	}
}
