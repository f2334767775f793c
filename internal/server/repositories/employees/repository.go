// Package employees provides storage for roster records.
package employees

import (
	"context"

	"github.com/dmitrijs2005/employeehub/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, e *models.Employee) (*models.Employee, error)
	List(ctx context.Context) ([]*models.Employee, error)
	GetByEmail(ctx context.Context, email string) (*models.Employee, error)
	Update(ctx context.Context, e *models.Employee) error
	Delete(ctx context.Context, email string) (string, error)
}
