package services

import (
	"database/sql"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/kalimapp/kalima-backend/internal/database"
	"github.com/kalimapp/kalima-backend/internal/models"
	"github.com/kalimapp/kalima-backend/pkg/textsafety"
)

// safetyConfig is the word-list policy used across the app. Loaded once at
// startup; SetSafetyConfig lets main override it from external config.
var safetyConfig = textsafety.DefaultConfig()

// SetSafetyConfig replaces the active word-list policy.
func SetSafetyConfig(cfg textsafety.Config) {
	safetyConfig = cfg
}

// SafetyConfig returns the active word-list policy.
func SafetyConfig() textsafety.Config {
	return safetyConfig
}

// ValidateUsername screens a proposed username against the restricted-term
// and profanity lists plus the charset/length policy.
func ValidateUsername(username string) textsafety.Result {
	return safetyConfig.Validate(username)
}

// CensorChatText masks exact blacklist/restricted matches in free chat
// text. Obfuscated variants pass through; see pkg/textsafety.
func CensorChatText(text string) string {
	return safetyConfig.Censor(text)
}

// ChatTextFlagged reports whether chat text contains restricted or
// blacklisted content in raw or normalized form. Used to record violations
// even when the censored message is still delivered.
func ChatTextFlagged(text string) bool {
	res := safetyConfig.Validate(text)
	if res.Valid {
		return false
	}
	return res.Error == textsafety.ErrRestrictedContent || res.Error == textsafety.ErrInappropriate
}

// RecordViolation stores a moderation hit for admin review.
func RecordViolation(userID *uuid.UUID, ipAddress string, violationType models.ViolationType, content string, actionTaken string) error {
	_, err := database.PostgresDB.Exec(`
		INSERT INTO violations (id, created_at, user_id, ip_address, type, content, action_taken)
		VALUES ($1, NOW(), $2, $3, $4, $5, $6)
	`, uuid.New(), userID, ipAddress, violationType, content, actionTaken)
	return err
}

// GetViolationCount returns the number of violations for an IP in the last
// 24 hours.
func GetViolationCount(ipAddress string) (int64, error) {
	var count int64
	err := database.PostgresDB.QueryRow(`
		SELECT COUNT(*) FROM violations
		WHERE ip_address = $1 AND created_at >= NOW() - INTERVAL '24 hours'
	`, ipAddress).Scan(&count)
	return count, err
}

// IsIPBlocked checks for an active, unexpired block on the IP.
func IsIPBlocked(ipAddress string) (bool, *models.BlockedIP, error) {
	var b models.BlockedIP
	err := database.PostgresDB.QueryRow(`
		SELECT id, created_at, expires_at, ip_address, reason, is_active
		FROM blocked_ips
		WHERE ip_address = $1 AND is_active = TRUE AND expires_at > NOW()
		ORDER BY created_at DESC
		LIMIT 1
	`, ipAddress).Scan(&b.ID, &b.CreatedAt, &b.ExpiresAt, &b.IPAddress, &b.Reason, &b.IsActive)

	if err == sql.ErrNoRows {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, err
	}
	return true, &b, nil
}

// BlockIP blocks an IP address for durationDays, deactivating any previous
// block first so there is at most one active row per IP.
func BlockIP(ipAddress string, reason string, durationDays int) error {
	_, err := database.PostgresDB.Exec(`
		UPDATE blocked_ips SET is_active = FALSE WHERE ip_address = $1 AND is_active = TRUE
	`, ipAddress)
	if err != nil {
		return err
	}

	_, err = database.PostgresDB.Exec(`
		INSERT INTO blocked_ips (id, created_at, expires_at, ip_address, reason, is_active)
		VALUES ($1, NOW(), NOW() + make_interval(days => $2), $3, $4, TRUE)
	`, uuid.New(), durationDays, ipAddress, reason)
	return err
}

// UnblockIP deactivates all blocks for an IP (admin action).
func UnblockIP(ipAddress string) error {
	_, err := database.PostgresDB.Exec(`
		UPDATE blocked_ips SET is_active = FALSE WHERE ip_address = $1 AND is_active = TRUE
	`, ipAddress)
	return err
}

// CleanupOldViolations deletes violation rows older than hoursOld. Blocked
// IPs are kept; only the raw violation log is pruned.
func CleanupOldViolations(hoursOld int) error {
	res, err := database.PostgresDB.Exec(`
		DELETE FROM violations WHERE created_at < NOW() - make_interval(hours => $1)
	`, hoursOld)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		log.Printf("moderation: cleaned up %d old violations", n)
	}
	return nil
}

// StartViolationCleanup runs CleanupOldViolations periodically in the
// background.
func StartViolationCleanup(cleanupIntervalHours int, violationsAgeHours int) {
	if cleanupIntervalHours <= 0 {
		cleanupIntervalHours = 1
	}
	if violationsAgeHours <= 0 {
		violationsAgeHours = 6
	}

	go func() {
		ticker := time.NewTicker(time.Duration(cleanupIntervalHours) * time.Hour)
		defer ticker.Stop()

		_ = CleanupOldViolations(violationsAgeHours)

		for range ticker.C {
			_ = CleanupOldViolations(violationsAgeHours)
		}
	}()
}
