package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/getwhereabouts/whereabouts/store"
)

func (d *DB) UpsertStatusRecord(ctx context.Context, upsert *store.UpsertStatusRecord) (*store.StatusRecord, error) {
	fields := []string{"uid", "user_id", "user_name", "date", "status", "updated_ts"}
	placeholderValues := []any{
		upsert.UID, upsert.UserID, upsert.UserName, upsert.Date, upsert.Status, upsert.UpdatedTs,
	}

	// The conflict target is the logical key: one current record per
	// (user_id, date). The original row keeps its uid and created_ts.
	stmt := `INSERT INTO status_record (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		ON CONFLICT (user_id, date) DO UPDATE SET
			user_name = excluded.user_name,
			status = excluded.status,
			updated_ts = excluded.updated_ts
		RETURNING id, uid, created_ts, updated_ts`

	record := store.StatusRecord{
		UserID:   upsert.UserID,
		UserName: upsert.UserName,
		Date:     upsert.Date,
		Status:   upsert.Status,
	}
	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&record.ID,
		&record.UID,
		&record.CreatedTs,
		&record.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to upsert status record: %w", err)
	}

	return &record, nil
}

func (d *DB) ListStatusRecords(ctx context.Context, find *store.FindStatusRecord) ([]*store.StatusRecord, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.UserID; v != nil {
		where, args = append(where, "status_record.user_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Date; v != nil {
		where, args = append(where, "status_record.date = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.SinceDate; v != nil {
		where, args = append(where, "status_record.date >= "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UntilDate; v != nil {
		where, args = append(where, "status_record.date <= "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT
			id, uid, created_ts, updated_ts,
			user_id, user_name, date, status
		FROM status_record
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY status_record.date ASC, status_record.user_name ASC, status_record.id ASC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query status records: %w", err)
	}
	defer rows.Close()

	list := make([]*store.StatusRecord, 0)
	for rows.Next() {
		var record store.StatusRecord
		if err := rows.Scan(
			&record.ID,
			&record.UID,
			&record.CreatedTs,
			&record.UpdatedTs,
			&record.UserID,
			&record.UserName,
			&record.Date,
			&record.Status,
		); err != nil {
			return nil, fmt.Errorf("failed to scan status record: %w", err)
		}
		list = append(list, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate status records: %w", err)
	}

	return list, nil
}
