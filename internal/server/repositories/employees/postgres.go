package employees

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/employeehub/internal/common"
	"github.com/dmitrijs2005/employeehub/internal/dbx"
	"github.com/dmitrijs2005/employeehub/internal/server/models"
)

const emailConstraint = "employees_email_key"

// courses are kept as one comma separated column
const courseSeparator = ","

// PostgresRepository implements employee storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts e and fills in ID and CreatedAt. A taken email yields
// common.ErrorAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, e *models.Employee) (*models.Employee, error) {
	query := `
		INSERT INTO employees (name, email, mobile, designation, gender, courses, image_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		e.Name, e.Email, e.Mobile, e.Designation, e.Gender, joinCourses(e.Courses), e.ImagePath,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err, emailConstraint) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

// List returns every employee, oldest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.Employee, error) {
	query := `SELECT id, name, email, mobile, designation, gender, courses, image_path, created_at
		FROM employees ORDER BY created_at, email`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Employee
	for rows.Next() {
		item, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Employee, error) {
	query := `SELECT id, name, email, mobile, designation, gender, courses, image_path, created_at
		FROM employees WHERE email = $1`

	e, err := scanEmployee(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

// Update overwrites the mutable columns of the row keyed by e.Email.
func (r *PostgresRepository) Update(ctx context.Context, e *models.Employee) error {
	query := `
		UPDATE employees
		SET name = $1, mobile = $2, designation = $3, gender = $4, courses = $5, image_path = $6
		WHERE email = $7
	`
	res, err := r.db.ExecContext(ctx, query,
		e.Name, e.Mobile, e.Designation, e.Gender, joinCourses(e.Courses), e.ImagePath, e.Email)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// Delete removes the row and returns the image reference it held.
func (r *PostgresRepository) Delete(ctx context.Context, email string) (string, error) {
	query := `DELETE FROM employees WHERE email = $1 RETURNING image_path`

	var imagePath string
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&imagePath); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return imagePath, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(s scanner) (*models.Employee, error) {
	var (
		e       models.Employee
		courses string
	)
	if err := s.Scan(&e.ID, &e.Name, &e.Email, &e.Mobile, &e.Designation, &e.Gender,
		&courses, &e.ImagePath, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Courses = splitCourses(courses)
	return &e, nil
}

func joinCourses(c []string) string {
	return strings.Join(c, courseSeparator)
}

func splitCourses(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, courseSeparator)
}
