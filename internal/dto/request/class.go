package request

type CreateClassRequest struct {
	Title      string  `json:"title" validate:"required,min=3,max=120"`
	ScheduleAt string  `json:"schedule_at" validate:"required"` // RFC3339
	Capacity   int     `json:"capacity" validate:"required,min=1"`
	Price      float64 `json:"price" validate:"required,gt=0"`
}
