package postgres

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/magpress/receipts/internal/models"
)

type SentEmailStore struct {
	db *sql.DB
}

func NewSentEmailStore(db *sql.DB) *SentEmailStore {
	return &SentEmailStore{db: db}
}

func (s *SentEmailStore) CreateSentEmail(ctx context.Context, params models.SentEmailCreateParams) (*models.SentEmail, error) {
	record := &models.SentEmail{
		PublicID:        uuid.New(),
		UserID:          params.UserID,
		RecipientEmail:  params.RecipientEmail,
		RecipientName:   params.RecipientName,
		PurchaseDate:    params.PurchaseDate,
		Edition:         params.Edition,
		Quantity:        params.Quantity,
		DigitalLink:     params.DigitalLink,
		DigitalUsername: params.DigitalUsername,
		DigitalPassword: params.DigitalPassword,
		TransactionID:   params.TransactionID,
		MessageID:       params.MessageID,
		Status:          params.Status,
		ErrorMessage:    params.ErrorMessage,
	}
	if record.Quantity < 1 {
		record.Quantity = 1
	}

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO sent_emails
		 (public_id, user_id, recipient_email, recipient_name, purchase_date, edition, quantity,
		  digital_link, digital_username, digital_password, transaction_id, message_id, status, error_message)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''), NULLIF($12, ''), $13, NULLIF($14, ''))
		 RETURNING id, sent_at`,
		record.PublicID, record.UserID, record.RecipientEmail, record.RecipientName,
		record.PurchaseDate, record.Edition, record.Quantity,
		record.DigitalLink, record.DigitalUsername, record.DigitalPassword,
		record.TransactionID, record.MessageID, record.Status, record.ErrorMessage,
	).Scan(&record.ID, &record.SentAt)
	if err != nil {
		return nil, err
	}

	return record, nil
}

func (s *SentEmailStore) SearchSentEmails(ctx context.Context, query models.SentEmailQuery) ([]models.SentEmail, error) {
	limit := query.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}

	var sb strings.Builder
	sb.WriteString(
		`SELECT se.id, se.public_id, se.user_id, u.username,
		        se.recipient_email, se.recipient_name, se.purchase_date, se.edition, se.quantity,
		        COALESCE(se.digital_link, ''), COALESCE(se.digital_username, ''), COALESCE(se.digital_password, ''),
		        se.sent_at, COALESCE(se.transaction_id, ''), COALESCE(se.message_id, ''), se.status, COALESCE(se.error_message, '')
		 FROM sent_emails se
		 JOIN users u ON u.id = se.user_id`,
	)
	where, args := buildSentEmailFilters(query)
	sb.WriteString(where)

	args = append(args, limit, offset)
	sb.WriteString(" ORDER BY se.sent_at DESC, se.id DESC LIMIT $" + itoa(len(args)-1) + " OFFSET $" + itoa(len(args)))

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]models.SentEmail, 0, limit)
	for rows.Next() {
		var r models.SentEmail
		if err := rows.Scan(
			&r.ID, &r.PublicID, &r.UserID, &r.SentBy,
			&r.RecipientEmail, &r.RecipientName, &r.PurchaseDate, &r.Edition, &r.Quantity,
			&r.DigitalLink, &r.DigitalUsername, &r.DigitalPassword,
			&r.SentAt, &r.TransactionID, &r.MessageID, &r.Status, &r.ErrorMessage,
		); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SentEmailStore) CountSentEmails(ctx context.Context, query models.SentEmailQuery) (int, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT COUNT(*) FROM sent_emails se JOIN users u ON u.id = se.user_id`)
	where, args := buildSentEmailFilters(query)
	sb.WriteString(where)

	var count int
	err := s.db.QueryRowContext(ctx, sb.String(), args...).Scan(&count)
	return count, err
}

// buildSentEmailFilters renders the shared WHERE clause so list and count
// queries can never drift apart.
func buildSentEmailFilters(query models.SentEmailQuery) (string, []interface{}) {
	var (
		sb   strings.Builder
		args []interface{}
	)
	sb.WriteString(" WHERE TRUE")

	if status := strings.TrimSpace(query.Status); status != "" {
		args = append(args, status)
		sb.WriteString(" AND se.status = $" + itoa(len(args)))
	}
	if q := strings.TrimSpace(query.Q); q != "" {
		args = append(args, "%"+q+"%")
		sb.WriteString(" AND (se.recipient_email ILIKE $" + itoa(len(args)) + " OR se.recipient_name ILIKE $" + itoa(len(args)) + ")")
	}
	if query.From != nil {
		args = append(args, *query.From)
		sb.WriteString(" AND se.sent_at >= $" + itoa(len(args)))
	}
	if query.To != nil {
		args = append(args, *query.To)
		sb.WriteString(" AND se.sent_at < $" + itoa(len(args)))
	}

	return sb.String(), args
}

func itoa(n int) string {
	// tiny helper to avoid pulling fmt into query assembly.
	return strconv.Itoa(n)
}
