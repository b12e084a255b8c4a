package messages

import "time"

type Message struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	Message   string    `json:"message" bson:"message"`
	Read      bool      `json:"read" bson:"read"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// CreateRequest is the public contact form. Website is a honeypot that real
// visitors never see.
type CreateRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,max=5000"`
	Website string `json:"website"`
}

type UpdateRequest struct {
	Read *bool `json:"read" validate:"required"`
}

type ListFilter struct {
	Unread bool
	Limit  int64
	Offset int64
}
