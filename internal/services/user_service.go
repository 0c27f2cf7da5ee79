package services

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/kalimapp/kalima-backend/internal/database"
	"github.com/kalimapp/kalima-backend/internal/models"
)

// GetUserByID returns the public profile for an active user, or nil when
// not found.
func GetUserByID(userID uuid.UUID) (*models.User, error) {
	var u models.User
	var avatarURL sql.NullString

	err := database.PostgresDB.QueryRow(`
		SELECT id, username, avatar_url, created_at, is_active
		FROM users WHERE id = $1 AND is_active = TRUE
	`, userID).Scan(&u.ID, &u.Username, &avatarURL, &u.CreatedAt, &u.IsActive)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	u.AvatarURL = avatarURL.String
	return &u, nil
}

// GetUsernameByID retrieves just the username for display.
func GetUsernameByID(userID string) (string, error) {
	parsedID, err := uuid.Parse(userID)
	if err != nil {
		return "", err
	}

	var username string
	err = database.PostgresDB.QueryRow(`
		SELECT username FROM users WHERE id = $1 AND is_active = TRUE
	`, parsedID).Scan(&username)

	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}

	return username, nil
}

// SetUserAvatar stores the uploaded avatar URL on the user row.
func SetUserAvatar(userID uuid.UUID, avatarURL string) error {
	_, err := database.PostgresDB.Exec(`
		UPDATE users SET avatar_url = $2 WHERE id = $1
	`, userID, avatarURL)
	return err
}
