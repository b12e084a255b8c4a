package blocks

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

type Kind string

const (
	KindImage        Kind = "image"
	KindVideoEmbed   Kind = "video-embed"
	KindVideo        Kind = "video"
	KindLink         Kind = "link"
	KindTitle        Kind = "title"
	KindSubtitle     Kind = "subtitle"
	KindText         Kind = "text"
	KindWebsiteEmbed Kind = "website-embed"
	KindWebsiteLink  Kind = "website-link"
	KindGallery      Kind = "gallery"
	KindSlider       Kind = "slider"
)

var textKinds = map[Type]Kind{
	TypeTitle:    KindTitle,
	TypeSubtitle: KindSubtitle,
	TypeText:     KindText,
}

// SliderInterval is the auto-advance period of SLIDER blocks.
const SliderInterval = 5 * time.Second

// Presentation is the public rendering of one block.
type Presentation struct {
	BlockID     string    `json:"blockId,omitempty"`
	Type        Type      `json:"type"`
	Kind        Kind      `json:"kind"`
	URL         string    `json:"url,omitempty"`
	Caption     string    `json:"caption,omitempty"`
	Text        string    `json:"text,omitempty"`
	Alt         string    `json:"alt,omitempty"`
	NewTab      bool      `json:"newTab,omitempty"`
	Images      []Picture `json:"images,omitempty"`
	AutoAdvance bool      `json:"autoAdvance,omitempty"`
	IntervalMs  int64     `json:"intervalMs,omitempty"`
}

type Picture struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
	Alt     string `json:"alt"`
}

// Render maps blocks to their public presentations in ascending order.
// Blocks with an unknown type or unusable content produce nothing.
func Render(list []Block) []Presentation {
	sorted := cloneList(list)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	out := make([]Presentation, 0, len(sorted))
	for _, b := range sorted {
		if p, ok := renderBlock(b); ok {
			out = append(out, p)
		}
	}
	return out
}

func renderBlock(b Block) (Presentation, bool) {
	if b.Content == nil {
		return Presentation{}, false
	}
	p := Presentation{BlockID: b.ID, Type: b.Type}

	switch b.Type {
	case TypePhoto:
		c, ok := b.Content.(MediaContent)
		if !ok || strings.TrimSpace(c.URL) == "" {
			return Presentation{}, false
		}
		p.Kind = KindImage
		p.URL = c.URL
		p.Caption = c.Caption
		p.Alt = fallback(c.Caption, "Photo")

	case TypeVideo:
		c, ok := b.Content.(MediaContent)
		if !ok || strings.TrimSpace(c.URL) == "" {
			return Presentation{}, false
		}
		p.Caption = c.Caption
		p.Alt = fallback(c.Caption, "Video")
		if IsEmbeddableVideo(c.URL) {
			p.Kind = KindVideoEmbed
			p.URL = EmbedURL(c.URL)
		} else {
			p.Kind = KindVideo
			p.URL = c.URL
		}

	case TypeLink:
		c, ok := b.Content.(LinkContent)
		if !ok || strings.TrimSpace(c.URL) == "" {
			return Presentation{}, false
		}
		p.Kind = KindLink
		p.URL = c.URL
		p.Text = fallback(c.Text, c.URL)
		p.NewTab = true

	case TypeTitle, TypeSubtitle, TypeText:
		c, ok := b.Content.(TextContent)
		if !ok || strings.TrimSpace(c.Text) == "" {
			return Presentation{}, false
		}
		p.Kind = textKinds[b.Type]
		p.Text = c.Text

	case TypeWebsite:
		c, ok := b.Content.(WebsiteContent)
		if !ok || strings.TrimSpace(c.URL) == "" {
			return Presentation{}, false
		}
		p.URL = c.URL
		if c.Mode == WebsitePopup {
			p.Kind = KindWebsiteLink
			p.Text = "Open website"
			p.NewTab = true
		} else {
			p.Kind = KindWebsiteEmbed
			p.Alt = "Website embed"
		}

	case TypeGallery, TypeSlider:
		c, ok := b.Content.(ImagesContent)
		if !ok {
			return Presentation{}, false
		}
		p.Images = pictures(c.Images, b.Type)
		if len(p.Images) == 0 {
			return Presentation{}, false
		}
		if b.Type == TypeGallery {
			p.Kind = KindGallery
		} else {
			slider := NewSlider(len(p.Images), SliderInterval)
			p.Kind = KindSlider
			p.AutoAdvance = slider.AutoAdvance()
			p.IntervalMs = SliderInterval.Milliseconds()
		}

	default:
		return Presentation{}, false
	}

	return p, true
}

func pictures(images []Image, t Type) []Picture {
	label := "Image"
	if t == TypeSlider {
		label = "Slide"
	}
	out := make([]Picture, 0, len(images))
	for _, img := range images {
		if strings.TrimSpace(img.URL) == "" {
			continue
		}
		out = append(out, Picture{
			URL:     img.URL,
			Caption: img.Caption,
			Alt:     fallback(img.Caption, label+" "+strconv.Itoa(len(out)+1)),
		})
	}
	return out
}

// IsEmbeddableVideo reports whether url points at a video host that is
// rendered through its embeddable player.
func IsEmbeddableVideo(raw string) bool {
	return strings.Contains(raw, "youtube.com") || strings.Contains(raw, "youtu.be") || strings.Contains(raw, "vimeo.com")
}

// EmbedURL rewrites YouTube and Vimeo page URLs to their player URLs.
// Anything else, including URLs that already point at a player, is returned
// unchanged.
func EmbedURL(raw string) string {
	if strings.Contains(raw, "youtube.com/watch") {
		if u, err := url.Parse(raw); err == nil {
			if id := u.Query().Get("v"); id != "" {
				return "https://www.youtube.com/embed/" + id
			}
		}
	}
	if idx := strings.Index(raw, "youtu.be/"); idx >= 0 {
		if id := pathID(raw[idx+len("youtu.be/"):]); id != "" {
			return "https://www.youtube.com/embed/" + id
		}
	}
	if idx := strings.Index(raw, "vimeo.com/"); idx >= 0 && !strings.Contains(raw, "player.vimeo.com") {
		if id := pathID(raw[idx+len("vimeo.com/"):]); id != "" {
			return "https://player.vimeo.com/video/" + id
		}
	}
	return raw
}

func pathID(rest string) string {
	if idx := strings.IndexAny(rest, "?#"); idx >= 0 {
		rest = rest[:idx]
	}
	return rest
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
