package models

import "time"

// Account is a user of the ledger. The ledger itself only cares about ID.
type Account struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
