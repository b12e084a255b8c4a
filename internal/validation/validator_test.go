package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Slug  string `json:"slug" validate:"omitempty,slug"`
	Color string `json:"color" validate:"omitempty,hexcolor6"`
	Date  string `json:"projectDate" validate:"omitempty,date"`
	Media string `json:"media" validate:"omitempty,mediaurl"`
}

func TestCustomTags(t *testing.T) {
	v := New()

	require.NoError(t, v.Struct(sample{
		Slug:  "brand-identity-2024",
		Color: "#31A8FF",
		Date:  "2024-02-29",
		Media: "/api/uploads/x.png",
	}))

	err := v.Struct(sample{
		Slug:  "Brand Identity",
		Color: "#FFF",
		Date:  "2024-13-01",
		Media: "javascript:alert(1)",
	})
	require.Error(t, err)

	tags := map[string]string{}
	for _, fe := range v.ValidationErrors(err) {
		tags[fe.Field()] = fe.Tag()
	}
	assert.Equal(t, map[string]string{
		"slug":        "slug",
		"color":       "hexcolor6",
		"projectDate": "date",
		"media":       "mediaurl",
	}, tags)
}

func TestIsMediaURL(t *testing.T) {
	assert.True(t, IsMediaURL("https://cdn.example.com/a.jpg"))
	assert.True(t, IsMediaURL("/api/uploads/a.jpg"))
	assert.False(t, IsMediaURL("//evil.example.com/a.jpg"))
	assert.False(t, IsMediaURL("ftp://example.com/a.jpg"))
	assert.False(t, IsMediaURL("data:image/png;base64,AAAA"))
	assert.False(t, IsMediaURL(" "))
}

func TestIsSlug(t *testing.T) {
	assert.True(t, IsSlug("a"))
	assert.True(t, IsSlug("night-poster-2"))
	assert.False(t, IsSlug("-lead"))
	assert.False(t, IsSlug("double--dash"))
	assert.False(t, IsSlug("Upper"))
}
