package models

// Relational reference entities. Column names keep the dataset's mixed-case
// headers so the bulk loader can pass CSV columns straight through; GORM
// tags pin the quoted identifiers instead of letting the naming strategy
// snake-case them.
//
// Foreign keys are intentionally not declared as GORM constraints: place
// and tagclass reference themselves, and constraint creation must be
// deferred until every referenced table is fully loaded. The relational
// store adds them in a separate step after import.

// Place is a city or region. Cities reference their containing region
// through PartOfPlaceID.
type Place struct {
	ID            int64  `gorm:"column:id;primaryKey" json:"id"`
	Name          string `gorm:"column:name" json:"name"`
	URL           string `gorm:"column:url" json:"url,omitempty"`
	Type          string `gorm:"column:type" json:"type,omitempty"`
	PartOfPlaceID *int64 `gorm:"column:PartOfPlaceId" json:"PartOfPlaceId,omitempty"`
}

func (Place) TableName() string { return "place" }

// Organization is a company or university, discriminated by Type.
type Organization struct {
	ID              int64  `gorm:"column:id;primaryKey" json:"id"`
	Type            string `gorm:"column:type" json:"type"`
	Name            string `gorm:"column:name" json:"name"`
	URL             string `gorm:"column:url" json:"url,omitempty"`
	LocationPlaceID *int64 `gorm:"column:LocationPlaceId" json:"LocationPlaceId,omitempty"`
}

func (Organization) TableName() string { return "organization" }

// TagClass groups tags; classes form a subclass hierarchy.
type TagClass struct {
	ID                   int64  `gorm:"column:id;primaryKey" json:"id"`
	Name                 string `gorm:"column:name" json:"name"`
	URL                  string `gorm:"column:url" json:"url,omitempty"`
	SubclassOfTagClassID *int64 `gorm:"column:SubclassOfTagClassId" json:"SubclassOfTagClassId,omitempty"`
}

func (TagClass) TableName() string { return "tagclass" }

// Tag belongs to exactly one TagClass.
type Tag struct {
	ID             int64  `gorm:"column:id;primaryKey" json:"id"`
	Name           string `gorm:"column:name" json:"name"`
	URL            string `gorm:"column:url" json:"url,omitempty"`
	TypeTagClassID *int64 `gorm:"column:TypeTagClassId" json:"TypeTagClassId,omitempty"`
}

func (Tag) TableName() string { return "tag" }
