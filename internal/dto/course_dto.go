package dto

import (
	"time"

	"github.com/techversity/crm-api/internal/models"
)

// CourseCreateRequest describes the payload for adding a catalog course.
type CourseCreateRequest struct {
	Title string  `json:"title" validate:"required,min=2"`
	Fee   float64 `json:"fee" validate:"required,gt=0"`
}

// CourseResponse is the serialized course returned to API clients.
type CourseResponse struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Fee       float64   `json:"fee"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCourseResponse converts a model into a DTO.
func NewCourseResponse(model models.Course) CourseResponse {
	return CourseResponse{
		ID:        model.ID,
		Title:     model.Title,
		Fee:       model.Fee,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// NewCourseResponseSlice converts a slice of models into DTOs.
func NewCourseResponseSlice(courses []models.Course) []CourseResponse {
	responses := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, NewCourseResponse(course))
	}

	return responses
}
