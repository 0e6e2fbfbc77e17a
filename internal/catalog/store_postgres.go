package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

const resourceColumns = `id, type, grade, exam, subject, topic, difficulty, url, solutions_url, description`

// PostgresStore is a PostgreSQL-backed Store implementation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed catalog store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) ListResources(ctx context.Context, f Filter) ([]Resource, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	where, args := f.where()
	rows, err := s.pool.Query(ctx,
		`SELECT `+resourceColumns+` FROM resources`+where+` ORDER BY id ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query resources: %w", err)
	}
	defer rows.Close()

	out := []Resource{}
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resources: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) GetResource(ctx context.Context, id int64) (Resource, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	r, err := scanResource(s.pool.QueryRow(ctx,
		`SELECT `+resourceColumns+` FROM resources WHERE id = $1`,
		id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Resource{}, fmt.Errorf("resource %d: %w", id, ErrNotFound)
	}
	return r, err
}

func (s *PostgresStore) CreateResource(ctx context.Context, r Resource) (Resource, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	err := s.pool.QueryRow(ctx,
		`INSERT INTO resources (type, grade, exam, subject, topic, difficulty, url, solutions_url, description)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		r.Type,
		r.Grade,
		r.Exam,
		r.Subject,
		r.Topic,
		r.Difficulty,
		r.URL,
		r.SolutionsURL,
		r.Description,
	).Scan(&r.ID)
	if err != nil {
		return Resource{}, fmt.Errorf("insert resource: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) DeleteResource(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	cmd, err := s.pool.Exec(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("resource %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) CountResources(ctx context.Context) (int, error) {
	return s.count(ctx, "resources")
}

func (s *PostgresStore) ListWeightages(ctx context.Context, f Filter) ([]Weightage, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	where, args := f.where()
	rows, err := s.pool.Query(ctx,
		`SELECT id, grade, exam, subject, topic, weightage FROM subject_weightages`+where+` ORDER BY id ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query weightages: %w", err)
	}
	defer rows.Close()

	out := []Weightage{}
	for rows.Next() {
		var w Weightage
		if err := rows.Scan(&w.ID, &w.Grade, &w.Exam, &w.Subject, &w.Topic, &w.Weightage); err != nil {
			return nil, fmt.Errorf("scan weightage: %w", err)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate weightages: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CreateWeightage(ctx context.Context, w Weightage) (Weightage, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	err := s.pool.QueryRow(ctx,
		`INSERT INTO subject_weightages (grade, exam, subject, topic, weightage)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		w.Grade,
		w.Exam,
		w.Subject,
		w.Topic,
		w.Weightage,
	).Scan(&w.ID)
	if err != nil {
		return Weightage{}, fmt.Errorf("insert weightage: %w", err)
	}
	return w, nil
}

func (s *PostgresStore) CountWeightages(ctx context.Context) (int, error) {
	return s.count(ctx, "subject_weightages")
}

func (s *PostgresStore) count(ctx context.Context, table string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func scanResource(row pgx.Row) (Resource, error) {
	var r Resource
	err := row.Scan(
		&r.ID,
		&r.Type,
		&r.Grade,
		&r.Exam,
		&r.Subject,
		&r.Topic,
		&r.Difficulty,
		&r.URL,
		&r.SolutionsURL,
		&r.Description,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Resource{}, pgx.ErrNoRows
		}
		return Resource{}, fmt.Errorf("scan resource: %w", err)
	}
	return r, nil
}

// where renders f as a SQL WHERE clause with positional arguments.
func (f Filter) where() (string, []any) {
	var clauses []string
	var args []any
	add := func(expr, value string) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(expr, len(args)))
	}

	if f.Grade != "" {
		add("grade = $%d", f.Grade)
	}
	if f.Exam != "" {
		add("exam ILIKE $%d", f.Exam)
	}
	if f.Subject != "" {
		add("subject ILIKE $%d", f.Subject)
	}
	if f.Topic != "" {
		add("topic = $%d", f.Topic)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
