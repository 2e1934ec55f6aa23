package travelstore

import (
	"context"
)

// Attribute names of the single-table schema. The partition key scopes every
// record to one user and the sort key namespaces record type and identity
// within that user.
const (
	AttrUser    = "PK"
	AttrSortKey = "SK"
	AttrEntity  = "Entity"
)

// Entity is a record type stored in the travel table.
type Entity string

const (
	EntityDestination Entity = "DESTINATION"
	EntityPlace       Entity = "PLACE"
	EntityPhoto       Entity = "PHOTO"
)

// SortKey returns the sort key for a record: "<ENTITY>#<id>". A begins_with
// query on an entity's prefix under a fixed partition key enumerates all
// records of that type for the user.
func SortKey(entity Entity, id string) string {
	return string(entity) + "#" + id
}

// SortKeyPrefix returns the "<ENTITY>#" prefix shared by all records of the
// entity type.
func (e Entity) SortKeyPrefix() string {
	return string(e) + "#"
}

// Destination is a travel destination a user wants to visit.
type Destination struct {
	PlaceID     string  `json:"place_id" dynamodbav:"place_id"`
	Name        string  `json:"name" dynamodbav:"name"`
	Country     string  `json:"country" dynamodbav:"country"`
	CountryCode string  `json:"country_code" dynamodbav:"country_code"`
	Latitude    float64 `json:"latitude" dynamodbav:"latitude"`
	Longitude   float64 `json:"longitude" dynamodbav:"longitude"`
}

// Place is a point of interest within a destination. DestinationID is the
// place ID of the destination it belongs to.
type Place struct {
	PlaceID       string `json:"place_id" dynamodbav:"place_id"`
	Name          string `json:"name" dynamodbav:"name"`
	Address       string `json:"address" dynamodbav:"address"`
	City          string `json:"city" dynamodbav:"city"`
	State         string `json:"state" dynamodbav:"state"`
	Country       string `json:"country" dynamodbav:"country"`
	ZipCode       string `json:"zip_code" dynamodbav:"zip_code"`
	Latitude      string `json:"latitude" dynamodbav:"latitude"`
	Longitude     string `json:"longitude" dynamodbav:"longitude"`
	DestinationID string `json:"destination_id" dynamodbav:"destination_id"`
}

// Record is a stored table item as returned to clients: the composite key
// plus the entity payload.
type Record struct {
	User    string         `json:"PK" dynamodbav:"PK"`
	SortKey string         `json:"SK" dynamodbav:"SK"`
	Entity  map[string]any `json:"Entity" dynamodbav:"Entity"`
}

// Store persists per-user travel records. Puts overwrite on natural key
// collision (last write wins) and deletes succeed whether or not the key
// existed.
type Store interface {
	PutDestination(ctx context.Context, user string, destination Destination) error
	PutPlace(ctx context.Context, user string, place Place) error
	DeletePlace(ctx context.Context, user string, placeID string) error
	List(ctx context.Context, user string, entity Entity) ([]Record, error)
}
