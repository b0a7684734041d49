package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/lib/pq"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

const leadColumns = "id, user_id, name, email, phone, company, status, notes, created_at, updated_at"

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (id, user_id, name, email, phone, company, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.UserID,
		lead.Name,
		lead.Email,
		lead.Phone,
		lead.Company,
		lead.Status,
		lead.Notes,
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	return err
}

func (r *LeadRepository) CreateBatch(ctx context.Context, leads []*entity.Lead) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO leads (id, user_id, name, email, phone, company, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, lead := range leads {
		_, err := stmt.ExecContext(ctx,
			lead.ID, lead.UserID, lead.Name, lead.Email, lead.Phone,
			lead.Company, lead.Status, lead.Notes, lead.CreatedAt, lead.UpdatedAt,
		)
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(leads), nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id, userID string) (*entity.Lead, error) {
	query := fmt.Sprintf(`SELECT %s FROM leads WHERE id = $1 AND user_id = $2`, leadColumns)
	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	return lead, err
}

// Update is a single conditional write: the owner scope lives in the WHERE
// clause, so a wrong owner and a missing row both come back as ErrNotFound.
func (r *LeadRepository) Update(ctx context.Context, id, userID string, fields map[string]any) (*entity.Lead, error) {
	cols := make([]string, 0, len(fields))
	for col := range fields {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	set := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+2)
	for i, col := range cols {
		set = append(set, fmt.Sprintf("%s = $%d", col, i+1))
		args = append(args, fields[col])
	}
	set = append(set, "updated_at = NOW()")

	query := fmt.Sprintf(
		`UPDATE leads SET %s WHERE id = $%d AND user_id = $%d RETURNING %s`,
		strings.Join(set, ", "), len(cols)+1, len(cols)+2, leadColumns,
	)
	args = append(args, id, userID)

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	return lead, err
}

// Delete cascades to the lead's interactions inside one transaction.
func (r *LeadRepository) Delete(ctx context.Context, id, userID string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM interactions WHERE lead_id = $1 AND user_id = $2`, id, userID); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM leads WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return entity.ErrNotFound
	}

	return tx.Commit()
}

// List runs the conjunctive filter, newest first. filter.Limit <= 0 means
// no limit (export path).
func (r *LeadRepository) List(ctx context.Context, userID string, filter usecase.LeadFilter) ([]entity.Lead, int, error) {
	where := []string{"user_id = $1"}
	args := []any{userID}

	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(filter.Statuses) > 0 {
		where = append(where, "status = ANY("+next(pq.Array(filter.Statuses))+")")
	}
	if filter.Company != "" {
		where = append(where, "company ILIKE "+next("%"+filter.Company+"%"))
	}
	if filter.DateFrom != "" {
		where = append(where, "created_at >= "+next(filter.DateFrom))
	}
	if filter.DateTo != "" {
		// Inclusive end date: anything before the next day counts.
		where = append(where, "created_at < ("+next(filter.DateTo)+"::date + INTERVAL '1 day')")
	}
	if filter.Query != "" {
		term := next("%" + filter.Query + "%")
		where = append(where, fmt.Sprintf(
			"(name ILIKE %s OR email ILIKE %s OR company ILIKE %s OR notes ILIKE %s)",
			term, term, term, term,
		))
	}

	cond := strings.Join(where, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM leads WHERE " + cond
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM leads WHERE %s ORDER BY created_at DESC", leadColumns, cond)
	if filter.Limit > 0 {
		query += " LIMIT " + next(filter.Limit)
		query += " OFFSET " + next(filter.Offset)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads := []entity.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, *lead)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return leads, total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var lead entity.Lead
	var email, phone, company, notes sql.NullString

	err := row.Scan(
		&lead.ID, &lead.UserID, &lead.Name,
		&email, &phone, &company,
		&lead.Status, &notes,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	lead.Email = nullStr(email)
	lead.Phone = nullStr(phone)
	lead.Company = nullStr(company)
	lead.Notes = nullStr(notes)
	return &lead, nil
}

func nullStr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
