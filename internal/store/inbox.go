package store

import (
	"context"
	"fmt"

	"github.com/aretw0/quill/pkg/domain"
)

// InsertInbox stores a message and returns its ID. CreateTime is set by the store.
func (s *Store) InsertInbox(ctx context.Context, msg domain.InboxMessage) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO email_inbox
		(from_mail, to_mail, send_date, subject, plain_content, html_content, create_time)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		msg.FromMail,
		msg.ToMail,
		msg.SendDate,
		msg.Subject,
		msg.PlainContent,
		msg.HTMLContent,
		s.now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert inbox: %w", err)
	}
	return res.LastInsertId()
}

// ListInbox returns every message, newest first.
func (s *Store) ListInbox(ctx context.Context) ([]domain.InboxMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, from_mail, to_mail, send_date, subject, plain_content, html_content, create_time
		FROM email_inbox
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list inbox: %w", err)
	}
	defer rows.Close()

	messages := make([]domain.InboxMessage, 0)
	for rows.Next() {
		var m domain.InboxMessage
		if err := rows.Scan(&m.ID, &m.FromMail, &m.ToMail, &m.SendDate, &m.Subject, &m.PlainContent, &m.HTMLContent, &m.CreateTime); err != nil {
			return nil, fmt.Errorf("list inbox: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list inbox: %w", err)
	}
	return messages, nil
}

// DeleteAllInbox empties the inbox and returns the number of deleted messages.
func (s *Store) DeleteAllInbox(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM email_inbox`)
	if err != nil {
		return 0, fmt.Errorf("delete inbox: %w", err)
	}
	return res.RowsAffected()
}
