package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/smartshuttle/shuttle/internal/storage"
)

// MarkNotificationsRead records ids as read for userID. Already-read ids
// keep their original timestamp. An unknown user yields storage.ErrNotFound.
func (s *Store) MarkNotificationsRead(ctx context.Context, userID string, ids []string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("user id is required")
	}
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
INSERT OR IGNORE INTO notification_reads (user_id, notification_id, read_at)
VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare mark read: %w", err)
	}
	defer stmt.Close()

	now := toMillis(time.Now())
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, userID, id, now); err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("user %s: %w", userID, storage.ErrNotFound)
			}
			return fmt.Errorf("mark notification %s read: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit mark read: %w", err)
	}
	return nil
}

// ReadNotificationIDs returns the set of notification ids userID has read.
func (s *Store) ReadNotificationIDs(ctx context.Context, userID string) (map[string]bool, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT notification_id FROM notification_reads WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("query read notifications: %w", err)
	}
	defer rows.Close()

	read := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan read notification: %w", err)
		}
		read[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate read notifications: %w", err)
	}
	return read, nil
}
