package model

import "encoding/json"

// Relationship is the category a family member belongs to.
type Relationship string

const (
	RelationshipSpouse  Relationship = "Spouse"
	RelationshipChild   Relationship = "Child"
	RelationshipParent  Relationship = "Parent"
	RelationshipSibling Relationship = "Sibling"
	RelationshipOther   Relationship = "Other"
)

// Relationships lists every selectable relationship in display order.
var Relationships = []Relationship{
	RelationshipSpouse,
	RelationshipChild,
	RelationshipParent,
	RelationshipSibling,
	RelationshipOther,
}

// Valid reports whether r is one of the known relationships.
func (r Relationship) Valid() bool {
	for _, known := range Relationships {
		if r == known {
			return true
		}
	}
	return false
}

// FamilyMember is a record owned by the signed-in user. ID is assigned by the
// backend and treated as opaque.
type FamilyMember struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Relationship Relationship `json:"relationship"`
	Age          *int         `json:"age,omitempty"`
}

// UnmarshalJSON accepts the backend's "_id" as well as "id".
func (m *FamilyMember) UnmarshalJSON(data []byte) error {
	var raw struct {
		MongoID      string       `json:"_id"`
		ID           string       `json:"id"`
		Name         string       `json:"name"`
		Relationship Relationship `json:"relationship"`
		Age          *int         `json:"age"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.ID = raw.ID
	if raw.MongoID != "" {
		m.ID = raw.MongoID
	}
	m.Name = raw.Name
	m.Relationship = raw.Relationship
	m.Age = raw.Age
	return nil
}

// FamilyMemberInput is the create/update payload. A nil Age is left out of
// the JSON entirely.
type FamilyMemberInput struct {
	Name         string       `json:"name"`
	Relationship Relationship `json:"relationship"`
	Age          *int         `json:"age,omitempty"`
}
