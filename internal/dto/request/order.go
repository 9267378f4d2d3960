package request

type CreateOrderRequest struct {
	StudentName  string  `json:"studentName" validate:"required,min=1,max=80"`
	StudentPhone string  `json:"studentPhone" validate:"required,min=8,phonenum"`
	Subject      string  `json:"subject" validate:"required,min=1"`
	SyllabusID   *string `json:"syllabusId,omitempty"`
	PreferredAt  *string `json:"preferredAt,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Notes        *string `json:"notes,omitempty"`
}
