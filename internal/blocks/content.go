package blocks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnknownType     = errors.New("unknown block type")
	ErrEmptyContent    = errors.New("empty block content")
	ErrContentMismatch = errors.New("content does not match block type")
)

// Content is the typed payload of a block. The set of implementations is
// closed: MediaContent, LinkContent, TextContent, WebsiteContent, ImagesContent.
type Content interface {
	accepts(t Type) bool
}

// MediaContent is the payload of PHOTO and VIDEO blocks.
type MediaContent struct {
	URL     string `json:"url" validate:"omitempty,mediaurl"`
	Caption string `json:"caption,omitempty"`
}

func (MediaContent) accepts(t Type) bool { return t == TypePhoto || t == TypeVideo }

type LinkContent struct {
	URL  string `json:"url" validate:"omitempty,mediaurl"`
	Text string `json:"text,omitempty"`
}

func (LinkContent) accepts(t Type) bool { return t == TypeLink }

// TextContent is the payload of TITLE, SUBTITLE and TEXT blocks.
type TextContent struct {
	Text string `json:"text"`
}

func (TextContent) accepts(t Type) bool {
	return t == TypeTitle || t == TypeSubtitle || t == TypeText
}

type WebsiteContent struct {
	URL  string `json:"url" validate:"omitempty,mediaurl"`
	Mode string `json:"type" validate:"oneof=embed popup"`
}

func (WebsiteContent) accepts(t Type) bool { return t == TypeWebsite }

// ImagesContent is the payload of GALLERY and SLIDER blocks.
type ImagesContent struct {
	Images []Image `json:"images" validate:"dive"`
}

func (ImagesContent) accepts(t Type) bool { return t == TypeGallery || t == TypeSlider }

func (c ImagesContent) MarshalJSON() ([]byte, error) {
	images := c.Images
	if images == nil {
		images = []Image{}
	}
	return json.Marshal(struct {
		Images []Image `json:"images"`
	}{Images: images})
}

func (c *ImagesContent) UnmarshalJSON(data []byte) error {
	var raw struct {
		Images []Image `json:"images"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Images = raw.Images
	if c.Images == nil {
		c.Images = []Image{}
	}
	return nil
}

// Image is one entry of a gallery or slider. On the wire it is either a bare
// URL string or an object with url and caption.
type Image struct {
	URL     string `json:"url" validate:"mediaurl"`
	Caption string `json:"caption,omitempty"`
}

func (img Image) MarshalJSON() ([]byte, error) {
	if img.Caption == "" {
		return json.Marshal(img.URL)
	}
	type plain Image
	return json.Marshal(plain(img))
}

func (img *Image) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var url string
		if err := json.Unmarshal(data, &url); err != nil {
			return err
		}
		*img = Image{URL: url}
		return nil
	}
	type plain Image
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*img = Image(p)
	return nil
}

// URLs returns the image URLs in order.
func (c ImagesContent) URLs() []string {
	out := make([]string, len(c.Images))
	for i, img := range c.Images {
		out[i] = img.URL
	}
	return out
}

// ParseContent turns a stored or submitted payload into the typed content for
// t. It accepts serialized JSON (string, []byte, json.RawMessage), decoded
// JSON values such as map[string]interface{}, and already parsed Content,
// which is returned unchanged.
func ParseContent(t Type, v interface{}) (Content, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}

	var data []byte
	switch value := derefContent(v).(type) {
	case nil:
		return nil, ErrEmptyContent
	case Content:
		if !value.accepts(t) {
			return nil, fmt.Errorf("%w: %T for %s", ErrContentMismatch, value, t)
		}
		return value, nil
	case string:
		data = []byte(value)
	case []byte:
		data = value
	case json.RawMessage:
		data = value
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		data = encoded
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, ErrEmptyContent
	}
	// Content serialized twice arrives as a JSON string; unwrap one level.
	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil, err
		}
		return ParseContent(t, inner)
	}

	return decodeContent(t, data)
}

// derefContent turns pointers to content variants into values, so callers
// only ever see value types. A nil pointer becomes nil.
func derefContent(v interface{}) interface{} {
	switch p := v.(type) {
	case *MediaContent:
		if p != nil {
			return *p
		}
	case *LinkContent:
		if p != nil {
			return *p
		}
	case *TextContent:
		if p != nil {
			return *p
		}
	case *WebsiteContent:
		if p != nil {
			return *p
		}
	case *ImagesContent:
		if p != nil {
			return *p
		}
	default:
		return v
	}
	return nil
}

func decodeContent(t Type, data []byte) (Content, error) {
	switch t {
	case TypePhoto, TypeVideo:
		var c MediaContent
		err := json.Unmarshal(data, &c)
		return c, err
	case TypeLink:
		var c LinkContent
		err := json.Unmarshal(data, &c)
		return c, err
	case TypeTitle, TypeSubtitle, TypeText:
		var c TextContent
		err := json.Unmarshal(data, &c)
		return c, err
	case TypeWebsite:
		var c WebsiteContent
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		if c.Mode == "" {
			c.Mode = WebsiteEmbed
		}
		return c, nil
	case TypeGallery, TypeSlider:
		var c ImagesContent
		err := json.Unmarshal(data, &c)
		return c, err
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
}

// MarshalContent serializes c for storage.
func MarshalContent(c Content) (string, error) {
	if c == nil {
		return "", ErrEmptyContent
	}
	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
