package skills

import "time"

// Icons are the design-tool tokens a skill can show.
var Icons = []string{"Ps", "Ae", "Ai", "Pr", "Xd", "Id"}

type Skill struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	Icon        string    `bson:"icon" json:"icon"`
	Color       string    `bson:"color" json:"color"`
	Order       int       `bson:"order" json:"order"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updatedAt"`
}

type UpsertRequest struct {
	Title       string `json:"title" validate:"required,max=80"`
	Description string `json:"description" validate:"required"`
	Icon        string `json:"icon" validate:"required,oneof=Ps Ae Ai Pr Xd Id"`
	Color       string `json:"color" validate:"required,hexcolor6"`
	Order       *int   `json:"order" validate:"omitempty,gte=0"`
}

type ReorderEntry struct {
	ID    string `json:"id" validate:"required"`
	Order int    `json:"order" validate:"gte=0"`
}

type ReorderRequest struct {
	Skills []ReorderEntry `json:"skills" validate:"required,min=1,dive"`
}
