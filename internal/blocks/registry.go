package blocks

type Type string

const (
	TypePhoto    Type = "PHOTO"
	TypeVideo    Type = "VIDEO"
	TypeLink     Type = "LINK"
	TypeTitle    Type = "TITLE"
	TypeSubtitle Type = "SUBTITLE"
	TypeText     Type = "TEXT"
	TypeWebsite  Type = "WEBSITE"
	TypeGallery  Type = "GALLERY"
	TypeSlider   Type = "SLIDER"
)

const (
	WebsiteEmbed = "embed"
	WebsitePopup = "popup"
)

// Definition describes one block kind for the editor's add menu.
type Definition struct {
	Type    Type          `json:"type"`
	Label   string        `json:"label"`
	Icon    string        `json:"icon"`
	Default func() Content `json:"-"`
}

var registry = []Definition{
	{Type: TypePhoto, Label: "Foto", Icon: "image", Default: func() Content { return MediaContent{} }},
	{Type: TypeVideo, Label: "Video", Icon: "video", Default: func() Content { return MediaContent{} }},
	{Type: TypeLink, Label: "Link", Icon: "link", Default: func() Content { return LinkContent{} }},
	{Type: TypeTitle, Label: "Titel", Icon: "type", Default: func() Content { return TextContent{} }},
	{Type: TypeSubtitle, Label: "Subtitel", Icon: "type", Default: func() Content { return TextContent{} }},
	{Type: TypeText, Label: "Bericht", Icon: "file-text", Default: func() Content { return TextContent{} }},
	{Type: TypeWebsite, Label: "Website", Icon: "globe", Default: func() Content { return WebsiteContent{Mode: WebsiteEmbed} }},
	{Type: TypeGallery, Label: "Gallerij", Icon: "grid", Default: func() Content { return ImagesContent{Images: []Image{}} }},
	{Type: TypeSlider, Label: "Slider", Icon: "layers", Default: func() Content { return ImagesContent{Images: []Image{}} }},
}

// Registry returns every block kind in add-menu order.
func Registry() []Definition {
	out := make([]Definition, len(registry))
	copy(out, registry)
	return out
}

func Lookup(t Type) (Definition, bool) {
	for _, def := range registry {
		if def.Type == t {
			return def, true
		}
	}
	return Definition{}, false
}

func (t Type) Valid() bool {
	_, ok := Lookup(t)
	return ok
}

// DefaultContent returns the empty payload for t, or nil for an unknown type.
func DefaultContent(t Type) Content {
	def, ok := Lookup(t)
	if !ok {
		return nil
	}
	return def.Default()
}
