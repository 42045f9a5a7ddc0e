package handler

import (
	"encoding/json"
	"net/http"

	"user-profile-service/internal/domain"
)

const maxBodyBytes = 1 << 20

func decodeProfileBody(r *http.Request) (*domain.UserProfile, error) {
	defer r.Body.Close()

	var p domain.UserProfile
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}
