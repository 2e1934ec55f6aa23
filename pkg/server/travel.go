package server

import (
	"net/http"

	"github.com/scrapmap/scrapmap/pkg/aws"
	"github.com/scrapmap/scrapmap/pkg/store/travelstore"
)

// NewListDestinationsHandler returns every destination saved by a user.
func NewListDestinationsHandler(source StoreSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := source.CheckReadConfig(); err != nil {
			serverError(w, msgServerError, err)
			return
		}
		user, ok := requireQuery(w, r, "user")
		if !ok {
			return
		}
		reader, err := source.Reader(r.Context(), aws.SessionListDestinations)
		if err != nil {
			serverError(w, msgServerError, err)
			return
		}
		records, err := reader.List(r.Context(), user, travelstore.EntityDestination)
		if err != nil {
			serverError(w, msgServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, records)
	}
}

// NewCreateDestinationHandler saves a destination under the calling user.
func NewCreateDestinationHandler(source StoreSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := source.CheckWriteConfig(); err != nil {
			serverError(w, msgServerError, err)
			return
		}
		var body struct {
			PlaceID     string   `json:"place_id"`
			Name        string   `json:"name"`
			Country     string   `json:"country"`
			CountryCode string   `json:"country_code"`
			Latitude    *float64 `json:"latitude"`
			Longitude   *float64 `json:"longitude"`
		}
		ok := decodeBody(w, r, &body, func() []field {
			return []field{{"place_id", body.PlaceID}, {"name", body.Name}, {"country", body.Country}, {"country_code", body.CountryCode}}
		})
		if !ok {
			return
		}
		if body.Latitude == nil {
			writeMessage(w, http.StatusBadRequest, `Invalid Request Body: missing field "latitude"`)
			return
		}
		if body.Longitude == nil {
			writeMessage(w, http.StatusBadRequest, `Invalid Request Body: missing field "longitude"`)
			return
		}
		user, err := callerUsername(r)
		if err != nil {
			serverError(w, msgServerError, err)
			return
		}
		writer, err := source.Writer(r.Context(), aws.SessionCreateDestination)
		if err != nil {
			serverError(w, msgServerError, err)
			return
		}
		destination := travelstore.Destination{
			PlaceID:     body.PlaceID,
			Name:        body.Name,
			Country:     body.Country,
			CountryCode: body.CountryCode,
			Latitude:    *body.Latitude,
			Longitude:   *body.Longitude,
		}
		if err := writer.PutDestination(r.Context(), user, destination); err != nil {
			serverError(w, msgServerError, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// NewDeletePlaceHandler removes one of the calling user's places.
func NewDeletePlaceHandler(source StoreSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := source.CheckWriteConfig(); err != nil {
			serverError(w, msgServerError, err)
			return
		}
		placeID, ok := requireQuery(w, r, "place_id")
		if !ok {
			return
		}
		user, err := callerUsername(r)
		if err != nil {
			serverError(w, msgServerError, err)
			return
		}
		writer, err := source.Writer(r.Context(), aws.SessionDeletePlace)
		if err != nil {
			serverError(w, msgServerError, err)
			return
		}
		if err := writer.DeletePlace(r.Context(), user, placeID); err != nil {
			serverError(w, msgServerError, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// NewCreatePlaceHandler saves a place within one of the calling user's
// destinations.
func NewCreatePlaceHandler(source StoreSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := source.CheckWriteConfig(); err != nil {
			serverError(w, msgServerError, err)
			return
		}
		var body travelstore.Place
		ok := decodeBody(w, r, &body, func() []field {
			return []field{
				{"place_id", body.PlaceID},
				{"name", body.Name},
				{"address", body.Address},
				{"city", body.City},
				{"state", body.State},
				{"country", body.Country},
				{"zip_code", body.ZipCode},
				{"latitude", body.Latitude},
				{"longitude", body.Longitude},
				{"destination_id", body.DestinationID},
			}
		})
		if !ok {
			return
		}
		user, err := callerUsername(r)
		if err != nil {
			serverError(w, msgServerError, err)
			return
		}
		writer, err := source.Writer(r.Context(), aws.SessionCreatePlace)
		if err != nil {
			serverError(w, msgServerError, err)
			return
		}
		if err := writer.PutPlace(r.Context(), user, body); err != nil {
			serverError(w, msgServerError, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
