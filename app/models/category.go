package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Category groups products in the catalogue.
type Category struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name  string             `bson:"name"          json:"name"`
	Icon  string             `bson:"icon"          json:"icon"`
	Color string             `bson:"color"         json:"color"`
}
