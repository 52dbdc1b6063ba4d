package domain

import (
	"time"

	"github.com/google/uuid"
)

// Client is a customer that sales are posted against. Email and phone are
// unique and usable as lookup keys when posting a sale.
type Client struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	Address   string    `json:"address" db:"address"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
