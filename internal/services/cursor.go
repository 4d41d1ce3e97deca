package services

import (
	"encoding/base64"
	"encoding/json"
	"time"

	apperrors "github.com/clubarena/matchup/pkg/errors"
)

// pageCursor pins a position in the (updated_at DESC, id DESC) ordering.
type pageCursor struct {
	UpdatedAt time.Time `json:"u"`
	ID        string    `json:"id"`
}

func encodeCursor(updatedAt time.Time, id string) string {
	data, _ := json.Marshal(pageCursor{UpdatedAt: updatedAt.UTC(), ID: id})
	return base64.RawURLEncoding.EncodeToString(data)
}

func decodeCursor(raw string) (pageCursor, error) {
	var cursor pageCursor
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return cursor, apperrors.ErrBadRequest.WithMessage("invalid cursor")
	}
	if err := json.Unmarshal(data, &cursor); err != nil {
		return cursor, apperrors.ErrBadRequest.WithMessage("invalid cursor")
	}
	if cursor.ID == "" || cursor.UpdatedAt.IsZero() {
		return cursor, apperrors.ErrBadRequest.WithMessage("invalid cursor")
	}
	return cursor, nil
}
