package blocks

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContentRoundTrip(t *testing.T) {
	cases := []struct {
		t       Type
		content Content
	}{
		{TypePhoto, MediaContent{URL: "/api/uploads/a.jpg", Caption: "Hero"}},
		{TypeVideo, MediaContent{URL: "https://youtu.be/abc123"}},
		{TypeLink, LinkContent{URL: "https://example.com", Text: "Live site"}},
		{TypeTitle, TextContent{Text: "Brand refresh"}},
		{TypeSubtitle, TextContent{Text: "2024"}},
		{TypeText, TextContent{Text: "Long form story."}},
		{TypeWebsite, WebsiteContent{URL: "https://example.com", Mode: WebsitePopup}},
		{TypeGallery, ImagesContent{Images: []Image{{URL: "/a.jpg"}, {URL: "/b.jpg", Caption: "B"}}}},
		{TypeSlider, ImagesContent{Images: []Image{{URL: "/c.jpg"}}}},
	}

	for _, tc := range cases {
		t.Run(string(tc.t), func(t *testing.T) {
			serialized, err := MarshalContent(tc.content)
			require.NoError(t, err)

			parsed, err := ParseContent(tc.t, serialized)
			require.NoError(t, err)
			assert.Equal(t, tc.content, parsed)

			again, err := ParseContent(tc.t, parsed)
			require.NoError(t, err)
			assert.Equal(t, parsed, again)
		})
	}
}

func TestParseContentAcceptsDecodedValues(t *testing.T) {
	parsed, err := ParseContent(TypeGallery, map[string]interface{}{
		"images": []interface{}{"/a.jpg", map[string]interface{}{"url": "/b.jpg", "caption": "B"}},
	})
	require.NoError(t, err)
	assert.Equal(t, ImagesContent{Images: []Image{{URL: "/a.jpg"}, {URL: "/b.jpg", Caption: "B"}}}, parsed)

	parsed, err = ParseContent(TypeTitle, json.RawMessage(`{"text":"Hi"}`))
	require.NoError(t, err)
	assert.Equal(t, TextContent{Text: "Hi"}, parsed)
}

func TestParseContentUnwrapsDoubleEncoding(t *testing.T) {
	inner, err := MarshalContent(TextContent{Text: "Hi"})
	require.NoError(t, err)
	outer, err := json.Marshal(inner)
	require.NoError(t, err)

	parsed, err := ParseContent(TypeText, string(outer))
	require.NoError(t, err)
	assert.Equal(t, TextContent{Text: "Hi"}, parsed)
}

func TestParseContentErrors(t *testing.T) {
	_, err := ParseContent(Type("CAROUSEL"), `{}`)
	assert.ErrorIs(t, err, ErrUnknownType)

	_, err = ParseContent(TypePhoto, nil)
	assert.ErrorIs(t, err, ErrEmptyContent)

	_, err = ParseContent(TypePhoto, "  ")
	assert.ErrorIs(t, err, ErrEmptyContent)

	_, err = ParseContent(TypePhoto, TextContent{Text: "x"})
	assert.ErrorIs(t, err, ErrContentMismatch)

	_, err = ParseContent(TypePhoto, `{"url":`)
	assert.Error(t, err)
}

func TestParseContentDereferencesPointers(t *testing.T) {
	parsed, err := ParseContent(TypePhoto, &MediaContent{URL: "/a.jpg"})
	require.NoError(t, err)
	assert.Equal(t, MediaContent{URL: "/a.jpg"}, parsed)

	out := Render([]Block{{Type: TypePhoto, Content: parsed}})
	require.Len(t, out, 1)
	assert.Equal(t, KindImage, out[0].Kind)

	_, err = ParseContent(TypePhoto, &TextContent{Text: "x"})
	assert.ErrorIs(t, err, ErrContentMismatch)

	var missing *MediaContent
	_, err = ParseContent(TypePhoto, missing)
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestWebsiteModeDefaultsToEmbed(t *testing.T) {
	parsed, err := ParseContent(TypeWebsite, `{"url":"https://example.com"}`)
	require.NoError(t, err)
	assert.Equal(t, WebsiteContent{URL: "https://example.com", Mode: WebsiteEmbed}, parsed)
}

func TestImagesSerializeCaptionlessAsStrings(t *testing.T) {
	serialized, err := MarshalContent(ImagesContent{Images: []Image{{URL: "/a.jpg"}, {URL: "/b.jpg", Caption: "B"}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"images":["/a.jpg",{"url":"/b.jpg","caption":"B"}]}`, serialized)

	empty, err := MarshalContent(ImagesContent{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"images":[]}`, empty)
}

func TestBlockUnmarshalIsTolerant(t *testing.T) {
	var list []Block
	body := `[
		{"type":"TITLE","order":0,"content":{"text":"Hi"}},
		{"type":"CAROUSEL","order":1,"content":{}},
		{"type":"PHOTO","order":2,"content":"{not json"},
		{"type":"GALLERY","order":3}
	]`
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	require.Len(t, list, 4)

	assert.NoError(t, list[0].ParseErr())
	assert.Equal(t, TextContent{Text: "Hi"}, list[0].Content)
	assert.ErrorIs(t, list[1].ParseErr(), ErrUnknownType)
	assert.Error(t, list[2].ParseErr())
	assert.Equal(t, ImagesContent{Images: []Image{}}, list[3].Content)
}

func TestBlockMarshalsContentAsObject(t *testing.T) {
	data, err := json.Marshal(Block{ID: "b1", Type: TypeLink, Content: LinkContent{URL: "https://x.io"}})
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.JSONEq(t, `{"url":"https://x.io"}`, string(raw["content"]))
}

func TestRegistry(t *testing.T) {
	defs := Registry()
	require.Len(t, defs, 9)
	assert.Equal(t, TypePhoto, defs[0].Type)
	assert.Equal(t, TypeSlider, defs[8].Type)

	for _, def := range defs {
		assert.True(t, def.Type.Valid())
		content := DefaultContent(def.Type)
		require.NotNil(t, content, def.Type)
		assert.True(t, content.accepts(def.Type), def.Type)
	}

	assert.False(t, Type("QUOTE").Valid())
	assert.Nil(t, DefaultContent(Type("QUOTE")))
}
