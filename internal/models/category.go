package models

import "github.com/gofrs/uuid"

// Category is reference data. Tasks join on Name, not ID.
type Category struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
	Icon  string    `json:"icon"`
}
