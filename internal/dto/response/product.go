package response

import (
	"lesson-booking/internal/data/entity"
)

type ProductResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Description string `json:"description,omitempty"`
}

func ProductToResponse(product *entity.LessonProduct) ProductResponse {
	return ProductResponse{
		ID:          product.ID.String(),
		Name:        product.Name,
		Price:       product.Price,
		Description: product.Description,
	}
}
