package portfolio

import (
	"time"

	"portfolio-backend/internal/blocks"
)

type ItemType string

const (
	TypeProject ItemType = "PROJECT"
	TypeWebsite ItemType = "WEBSITE"
	TypeDesign  ItemType = "DESIGN"
	TypeVideo   ItemType = "VIDEO"
)

type MediaType string

const (
	MediaImage MediaType = "IMAGE"
	MediaVideo MediaType = "VIDEO"
	MediaEmbed MediaType = "EMBED"
)

type Item struct {
	ID          string     `bson:"_id,omitempty" json:"id"`
	Title       string     `bson:"title" json:"title"`
	Description string     `bson:"description" json:"description"`
	Thumbnail   string     `bson:"thumbnail" json:"thumbnail"`
	Type        ItemType   `bson:"type" json:"type"`
	EmbedURL    string     `bson:"embed_url,omitempty" json:"embedUrl,omitempty"`
	Slug        string     `bson:"slug" json:"slug"`
	Published   bool       `bson:"published" json:"published"`
	Order       int        `bson:"order" json:"order"`
	ProjectDate *time.Time `bson:"project_date,omitempty" json:"projectDate,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updatedAt"`
}

type Media struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	ItemID    string    `bson:"portfolio_item_id" json:"itemId"`
	Type      MediaType `bson:"type" json:"type"`
	URL       string    `bson:"url" json:"url"`
	Caption   string    `bson:"caption,omitempty" json:"caption,omitempty"`
	Order     int       `bson:"order" json:"order"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// Detail is an item together with everything its page shows.
type Detail struct {
	Item
	Media         []Media               `json:"media"`
	Blocks        []blocks.Block        `json:"blocks"`
	Presentations []blocks.Presentation `json:"presentations,omitempty"`
}

type UpsertRequest struct {
	Title       string         `json:"title" validate:"required"`
	Description string         `json:"description" validate:"required"`
	Thumbnail   string         `json:"thumbnail" validate:"required,mediaurl"`
	Type        ItemType       `json:"type" validate:"required,oneof=PROJECT WEBSITE DESIGN VIDEO"`
	EmbedURL    string         `json:"embedUrl" validate:"omitempty,url"`
	Embeds      []string       `json:"embeds" validate:"omitempty,dive,url"`
	Slug        string         `json:"slug"`
	Published   *bool          `json:"published"`
	Order       *int           `json:"order" validate:"omitempty,gte=0"`
	ProjectDate string         `json:"projectDate" validate:"omitempty,date"`
	Blocks      []blocks.Block `json:"blocks"`
}

type PublishRequest struct {
	Published *bool `json:"published" validate:"required"`
}

type MediaRequest struct {
	Type    MediaType `json:"type" validate:"required,oneof=IMAGE VIDEO"`
	URL     string    `json:"url" validate:"required,mediaurl"`
	Caption string    `json:"caption"`
	Order   *int      `json:"order" validate:"omitempty,gte=0"`
}

type ReorderEntry struct {
	ID    string `json:"id" validate:"required"`
	Order int    `json:"order" validate:"gte=0"`
}

type ReorderRequest struct {
	Items []ReorderEntry `json:"items" validate:"required,min=1,dive"`
}

type AdminListFilter struct {
	Type      ItemType
	Published *bool
}
