package models

import "fmt"

// DataShapeError reports a document missing an expected key field, such as
// a person record without a numeric id. It is fatal for that record only:
// callers log it and skip the record rather than aborting the batch.
type DataShapeError struct {
	Collection string
	Field      string
}

func (e *DataShapeError) Error() string {
	return fmt.Sprintf("%s document is missing required field %q", e.Collection, e.Field)
}

// Person is the document-store person record. Email is never nil; a person
// with no address has an empty list.
type Person struct {
	ID             int64          `json:"id"`
	Email          []string       `json:"email"`
	FirstName      string         `json:"firstName"`
	LastName       string         `json:"lastName"`
	Gender         string         `json:"gender,omitempty"`
	Birthday       string         `json:"birthday,omitempty"`
	CreationDate   string         `json:"creationDate"`
	LocationCityID *int64         `json:"LocationCityId,omitempty"`
	BrowserUsed    string         `json:"browserUsed,omitempty"`
	LocationIP     string         `json:"locationIP,omitempty"`
	Language       OptionalString `json:"language"`
}

// Name returns the display name used in assembled responses.
func (p Person) Name() string {
	return p.FirstName + " " + p.LastName
}

// Post is the document-store post record. Content, ImageFile and Language
// arrive as NaN sentinels when the source column is empty and are carried
// as absent values.
type Post struct {
	ID               int64          `json:"id"`
	CreatorPersonID  int64          `json:"CreatorPersonId"`
	ContainerForumID *int64         `json:"ContainerForumId,omitempty"`
	Content          OptionalString `json:"content"`
	ImageFile        OptionalString `json:"imageFile"`
	CreationDate     string         `json:"creationDate"`
	Language         OptionalString `json:"language"`
	Length           *int64         `json:"length,omitempty"`
}

// DisplayContent is the text shown for a post: the content field when
// present, otherwise the image-file reference. The fallback mirrors
// observed behavior of the dataset's consumers and is a product policy
// still to be confirmed.
func (p Post) DisplayContent() OptionalString {
	if p.Content.Present() {
		return p.Content
	}
	return p.ImageFile
}

// Comment is the document-store comment record.
type Comment struct {
	ID              int64          `json:"id"`
	CreatorPersonID int64          `json:"CreatorPersonId"`
	ParentPostID    *int64         `json:"ParentPostId,omitempty"`
	Content         OptionalString `json:"content"`
	CreationDate    string         `json:"creationDate"`
	Length          *int64         `json:"length,omitempty"`
}

// Forum is the document-store forum record.
type Forum struct {
	ID                int64  `json:"id"`
	Title             string `json:"title"`
	CreationDate      string `json:"creationDate"`
	ModeratorPersonID *int64 `json:"ModeratorPersonId,omitempty"`
}

func requireID(collection string, doc map[string]any) (int64, error) {
	id, ok := AsInt64(doc["id"])
	if !ok {
		return 0, &DataShapeError{Collection: collection, Field: "id"}
	}
	return id, nil
}

func optInt64(v any) *int64 {
	if n, ok := AsInt64(v); ok {
		return &n
	}
	return nil
}

func asString(v any) string {
	s, _ := StringFrom(v).Get()
	return s
}

// PersonFromDocument decodes a raw person document. The email field may be
// stored as an array (post-migration) or as a semicolon-joined string
// (freshly loaded legacy data); both decode to the same list shape.
func PersonFromDocument(doc map[string]any) (Person, error) {
	id, err := requireID("person", doc)
	if err != nil {
		return Person{}, err
	}
	p := Person{
		ID:             id,
		Email:          []string{},
		FirstName:      asString(doc["firstName"]),
		LastName:       asString(doc["lastName"]),
		Gender:         asString(doc["gender"]),
		Birthday:       asString(doc["birthday"]),
		CreationDate:   asString(doc["creationDate"]),
		LocationCityID: optInt64(doc["LocationCityId"]),
		BrowserUsed:    asString(doc["browserUsed"]),
		LocationIP:     asString(doc["locationIP"]),
		Language:       StringFrom(doc["language"]),
	}
	switch emails := doc["email"].(type) {
	case []string:
		p.Email = append(p.Email, emails...)
	case []any:
		for _, e := range emails {
			if s, ok := e.(string); ok && s != "" {
				p.Email = append(p.Email, s)
			}
		}
	case string:
		p.Email = SplitEmails(emails)
	}
	return p, nil
}

// PostFromDocument decodes a raw post document.
func PostFromDocument(doc map[string]any) (Post, error) {
	id, err := requireID("post", doc)
	if err != nil {
		return Post{}, err
	}
	creator, ok := AsInt64(doc["CreatorPersonId"])
	if !ok {
		return Post{}, &DataShapeError{Collection: "post", Field: "CreatorPersonId"}
	}
	return Post{
		ID:               id,
		CreatorPersonID:  creator,
		ContainerForumID: optInt64(doc["ContainerForumId"]),
		Content:          StringFrom(doc["content"]),
		ImageFile:        StringFrom(doc["imageFile"]),
		CreationDate:     asString(doc["creationDate"]),
		Language:         StringFrom(doc["language"]),
		Length:           optInt64(doc["length"]),
	}, nil
}

// CommentFromDocument decodes a raw comment document.
func CommentFromDocument(doc map[string]any) (Comment, error) {
	id, err := requireID("comment", doc)
	if err != nil {
		return Comment{}, err
	}
	creator, ok := AsInt64(doc["CreatorPersonId"])
	if !ok {
		return Comment{}, &DataShapeError{Collection: "comment", Field: "CreatorPersonId"}
	}
	return Comment{
		ID:              id,
		CreatorPersonID: creator,
		ParentPostID:    optInt64(doc["ParentPostId"]),
		Content:         StringFrom(doc["content"]),
		CreationDate:    asString(doc["creationDate"]),
		Length:          optInt64(doc["length"]),
	}, nil
}

// ForumFromDocument decodes a raw forum document.
func ForumFromDocument(doc map[string]any) (Forum, error) {
	id, err := requireID("forum", doc)
	if err != nil {
		return Forum{}, err
	}
	return Forum{
		ID:                id,
		Title:             asString(doc["title"]),
		CreationDate:      asString(doc["creationDate"]),
		ModeratorPersonID: optInt64(doc["ModeratorPersonId"]),
	}, nil
}
