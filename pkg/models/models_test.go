package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalString(t *testing.T) {
	t.Run("Present", func(t *testing.T) {
		v, ok := String("hello").Get()
		assert.True(t, ok)
		assert.Equal(t, "hello", v)
		assert.True(t, String("").Present(), "an empty string is still a value")
	})

	t.Run("Absent", func(t *testing.T) {
		_, ok := NoString().Get()
		assert.False(t, ok)
		assert.Equal(t, "fallback", NoString().Or("fallback"))
		assert.Equal(t, "value", String("value").Or("fallback"))
	})

	t.Run("FromRawValues", func(t *testing.T) {
		assert.False(t, StringFrom(nil).Present())
		assert.False(t, StringFrom(math.NaN()).Present(), "NaN sentinel maps to absent")
		assert.Equal(t, "NaN", StringFrom("NaN").Or(""), "the literal string is a value")
		assert.Equal(t, "64", StringFrom(float64(64)).Or(""))
		assert.False(t, StringFrom(42).Present(), "unexpected types map to absent")
	})

	t.Run("JSON", func(t *testing.T) {
		data, err := json.Marshal(NoString())
		require.NoError(t, err)
		assert.Equal(t, "null", string(data))

		data, err = json.Marshal(String("x"))
		require.NoError(t, err)
		assert.Equal(t, `"x"`, string(data))

		var o OptionalString
		require.NoError(t, json.Unmarshal([]byte("null"), &o))
		assert.False(t, o.Present())
		require.NoError(t, json.Unmarshal([]byte(`"y"`), &o))
		assert.Equal(t, "y", o.Or(""))
	})
}

func TestAbsent(t *testing.T) {
	assert.True(t, Absent(nil))
	assert.True(t, Absent(""))
	assert.True(t, Absent(math.NaN()))
	assert.True(t, Absent(NoString()))
	assert.False(t, Absent("NaN"), "the literal string is present")
	assert.False(t, Absent(float64(0)), "a zero count is a value")
	assert.False(t, Absent(String("")))
}

func TestAsInt64(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want int64
		ok   bool
	}{
		{"int64", int64(7), 7, true},
		{"int32", int32(7), 7, true},
		{"int", 7, 7, true},
		{"float64", float64(64.0), 64, true},
		{"json.Number", json.Number("123"), 123, true},
		{"NaN", math.NaN(), 0, false},
		{"string", "7", 0, false},
		{"nil", nil, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := AsInt64(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSplitEmails(t *testing.T) {
	assert.Equal(t, []string{"a@x.com", "b@y.com"}, SplitEmails("a@x.com;b@y.com"))
	assert.Equal(t, []string{"a@x.com"}, SplitEmails(" a@x.com ; "))
	assert.Equal(t, []string{}, SplitEmails(""), "never nil")
	assert.Equal(t, []string{}, SplitEmails(";;"))
}

func TestPersonFromDocument(t *testing.T) {
	t.Run("LegacyEmailString", func(t *testing.T) {
		p, err := PersonFromDocument(map[string]any{
			"id":             int64(1),
			"firstName":      "Jan",
			"lastName":       "Zakrzewski",
			"email":          "jan@example.com;jz@example.org",
			"LocationCityId": int32(655),
			"language":       math.NaN(),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), p.ID)
		assert.Equal(t, "Jan Zakrzewski", p.Name())
		assert.Equal(t, []string{"jan@example.com", "jz@example.org"}, p.Email)
		require.NotNil(t, p.LocationCityID)
		assert.Equal(t, int64(655), *p.LocationCityID)
		assert.False(t, p.Language.Present())
	})

	t.Run("EmailArray", func(t *testing.T) {
		p, err := PersonFromDocument(map[string]any{
			"id":    int64(2),
			"email": []any{"a@x.com", "b@y.com"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a@x.com", "b@y.com"}, p.Email)
	})

	t.Run("NoEmail", func(t *testing.T) {
		p, err := PersonFromDocument(map[string]any{"id": int64(3)})
		require.NoError(t, err)
		assert.NotNil(t, p.Email)
		assert.Empty(t, p.Email)
		assert.Nil(t, p.LocationCityID)
	})

	t.Run("MissingID", func(t *testing.T) {
		_, err := PersonFromDocument(map[string]any{"firstName": "Jan"})
		var shapeErr *DataShapeError
		require.ErrorAs(t, err, &shapeErr)
		assert.Equal(t, "person", shapeErr.Collection)
		assert.Equal(t, "id", shapeErr.Field)
	})
}

func TestPostFromDocument(t *testing.T) {
	t.Run("ContentPost", func(t *testing.T) {
		p, err := PostFromDocument(map[string]any{
			"id":              int64(10),
			"CreatorPersonId": int64(1),
			"content":         "About Augustine of Hippo",
			"imageFile":       math.NaN(),
			"length":          float64(24),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(10), p.ID)
		assert.Equal(t, "About Augustine of Hippo", p.DisplayContent().Or(""))
		require.NotNil(t, p.Length)
		assert.Equal(t, int64(24), *p.Length)
	})

	t.Run("ImagePost", func(t *testing.T) {
		p, err := PostFromDocument(map[string]any{
			"id":              int64(11),
			"CreatorPersonId": int64(1),
			"content":         math.NaN(),
			"imageFile":       "photo11.jpg",
		})
		require.NoError(t, err)
		assert.Equal(t, "photo11.jpg", p.DisplayContent().Or(""), "image file stands in for absent content")
	})

	t.Run("MissingCreator", func(t *testing.T) {
		_, err := PostFromDocument(map[string]any{"id": int64(12)})
		var shapeErr *DataShapeError
		require.ErrorAs(t, err, &shapeErr)
		assert.Equal(t, "CreatorPersonId", shapeErr.Field)
	})
}

func TestCommentFromDocument(t *testing.T) {
	c, err := CommentFromDocument(map[string]any{
		"id":              int64(20),
		"CreatorPersonId": int64(2),
		"ParentPostId":    int64(10),
		"content":         "fine",
	})
	require.NoError(t, err)
	require.NotNil(t, c.ParentPostID)
	assert.Equal(t, int64(10), *c.ParentPostID)

	c, err = CommentFromDocument(map[string]any{
		"id":              int64(21),
		"CreatorPersonId": int64(2),
		"ParentPostId":    math.NaN(),
	})
	require.NoError(t, err)
	assert.Nil(t, c.ParentPostID, "reply-to-comment rows carry no parent post")
}

func TestForumFromDocument(t *testing.T) {
	f, err := ForumFromDocument(map[string]any{
		"id":    int64(30),
		"title": "Wall of Jan",
	})
	require.NoError(t, err)
	assert.Equal(t, "Wall of Jan", f.Title)
	assert.Nil(t, f.ModeratorPersonID)
}
