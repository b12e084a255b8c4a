package blocks

import (
	"encoding/json"
	"fmt"
	"time"
)

// Block is one typed unit of a portfolio item's detail page.
type Block struct {
	ID        string    `json:"id,omitempty"`
	ItemID    string    `json:"portfolioItemId,omitempty"`
	Type      Type      `json:"type"`
	Order     int       `json:"order"`
	Content   Content   `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// parseErr holds the reason Content could not be built while decoding a
	// request; Validate reports it.
	parseErr error
}

func (b *Block) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID      string          `json:"id"`
		ItemID  string          `json:"portfolioItemId"`
		Type    Type            `json:"type"`
		Order   int             `json:"order"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*b = Block{
		ID:     raw.ID,
		ItemID: raw.ItemID,
		Type:   raw.Type,
		Order:  raw.Order,
	}
	if !raw.Type.Valid() {
		b.parseErr = fmt.Errorf("%w: %q", ErrUnknownType, raw.Type)
		return nil
	}
	if len(raw.Content) == 0 || string(raw.Content) == "null" {
		b.Content = DefaultContent(raw.Type)
		return nil
	}
	content, err := ParseContent(raw.Type, raw.Content)
	if err != nil {
		b.parseErr = err
		return nil
	}
	b.Content = content
	return nil
}

// ParseErr reports why the submitted content could not be decoded.
func (b Block) ParseErr() error {
	return b.parseErr
}

// Renumber rewrites every block's Order to its index.
func Renumber(list []Block) {
	for i := range list {
		list[i].Order = i
	}
}

func cloneList(list []Block) []Block {
	out := make([]Block, len(list))
	copy(out, list)
	return out
}
