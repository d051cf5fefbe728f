package handler

import (
	"time"

	"github.com/msomdec/portfolio-api/internal/domain"
)

// UploadDTO is the JSON representation of an upload record.
// The id appears as both _id and id for older clients.
type UploadDTO struct {
	MongoID      string `json:"_id"`
	ID           string `json:"id"`
	Category     string `json:"category"`
	Title        string `json:"title"`
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size"`
	StorageRef   string `json:"storageRef"`
	ImageURL     string `json:"imageUrl"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	Format       string `json:"format,omitempty"`
	CreatedAt    string `json:"createdAt"`
}

func toUploadDTO(u domain.Upload) UploadDTO {
	return UploadDTO{
		MongoID:      u.ID,
		ID:           u.ID,
		Category:     u.Category,
		Title:        u.Title,
		OriginalName: u.OriginalName,
		MimeType:     u.MimeType,
		Size:         u.Size,
		StorageRef:   u.StorageRef,
		ImageURL:     u.ImageURL,
		Width:        u.Width,
		Height:       u.Height,
		Format:       u.Format,
		CreatedAt:    u.CreatedAt.Format(time.RFC3339Nano),
	}
}

func toUploadDTOs(uploads []domain.Upload) []UploadDTO {
	dtos := make([]UploadDTO, len(uploads))
	for i, u := range uploads {
		dtos[i] = toUploadDTO(u)
	}
	return dtos
}

// UploadCreatedDTO is returned by POST /uploads. id and URL are each
// duplicated under a second name for heterogeneous consumers.
type UploadCreatedDTO struct {
	MongoID  string `json:"_id"`
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	ImageURL string `json:"imageUrl"`
	URL      string `json:"url"`
}

func toUploadCreatedDTO(u *domain.Upload) UploadCreatedDTO {
	return UploadCreatedDTO{
		MongoID:  u.ID,
		ID:       u.ID,
		Title:    u.Title,
		Category: u.Category,
		ImageURL: u.ImageURL,
		URL:      u.ImageURL,
	}
}

// toOrderDocument flattens an order into the caller's document plus the
// server-managed fields.
func toOrderDocument(o domain.Order) map[string]any {
	doc := make(map[string]any, len(o.Document)+3)
	for k, v := range o.Document {
		doc[k] = v
	}
	doc["_id"] = o.ID
	doc["isReviewed"] = o.IsReviewed
	doc["createdAt"] = o.CreatedAt.Format(time.RFC3339Nano)
	return doc
}

// InsertedDTO acknowledges a created order.
type InsertedDTO struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

// SuccessDTO acknowledges an update or delete.
type SuccessDTO struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
