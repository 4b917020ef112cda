package board

import "time"

// Board groups a client's tasks (one kanban board per client engagement).
type Board struct {
	ID          string    `yaml:"id" json:"id"`
	Name        string    `yaml:"name" json:"name"`
	ClientID    string    `yaml:"client_id" json:"client_id"`
	Description string    `yaml:"description" json:"description"`
	CreatedAt   time.Time `yaml:"created_at" json:"created_at"`
	UpdatedAt   time.Time `yaml:"updated_at" json:"updated_at"`
}
