package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/employeehub/internal/common"
	"github.com/dmitrijs2005/employeehub/internal/dbx"
	"github.com/dmitrijs2005/employeehub/internal/keylock"
	"github.com/dmitrijs2005/employeehub/internal/logging"
	"github.com/dmitrijs2005/employeehub/internal/server/media"
	"github.com/dmitrijs2005/employeehub/internal/server/models"
	"github.com/dmitrijs2005/employeehub/internal/server/repositories/repomanager"
)

// Media is the part of media.Manager the employee service relies on.
type Media interface {
	Stage(ctx context.Context, r io.Reader, originalName string) (*media.Upload, error)
	Delete(ctx context.Context, ref string)
	URL(ctx context.Context, ref string) string
}

// Image is an uploaded picture as received from the client.
type Image struct {
	Reader io.Reader
	Name   string
}

// EmployeeService owns the roster. Writes for one email are serialized, and
// image files are only made visible together with the record that owns them.
type EmployeeService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	media       Media
	locks       *keylock.Locker
	logger      logging.Logger
}

func NewEmployeeService(db *sql.DB, m repomanager.RepositoryManager, store Media, logger logging.Logger) *EmployeeService {
	return &EmployeeService{
		db:          db,
		repomanager: m,
		media:       store,
		locks:       keylock.New(),
		logger:      logger.With("module", "employees"),
	}
}

// Create validates e, stores img and inserts the record. A taken email
// yields common.ErrorAlreadyExists and leaves no file behind.
func (s *EmployeeService) Create(ctx context.Context, e *models.Employee, img *Image) (*models.Employee, error) {
	e.Name = strings.TrimSpace(e.Name)
	e.Email = strings.TrimSpace(e.Email)
	e.Mobile = strings.TrimSpace(e.Mobile)
	e.Designation = strings.TrimSpace(e.Designation)
	e.Gender = strings.TrimSpace(e.Gender)

	courses, err := NormalizeCourses(e.Courses)
	if err != nil {
		return nil, err
	}
	e.Courses = courses

	if e.Name == "" || e.Email == "" || e.Mobile == "" || e.Designation == "" || e.Gender == "" ||
		len(e.Courses) == 0 || img == nil || img.Reader == nil {
		return nil, fmt.Errorf("%w: all fields are required", common.ErrorValidation)
	}

	unlock := s.locks.Lock(e.Email)
	defer unlock()

	// rejecting early keeps duplicates from ever touching storage
	_, err = s.repomanager.Employees(s.db).GetByEmail(ctx, e.Email)
	switch {
	case err == nil:
		return nil, common.ErrorAlreadyExists
	case !errors.Is(err, common.ErrorNotFound):
		return nil, internal(err)
	}

	upload, err := s.media.Stage(ctx, img.Reader, img.Name)
	if err != nil {
		return nil, internal(err)
	}
	defer upload.Discard(ctx)

	e.ImagePath = upload.Ref()

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Employees(tx).Create(ctx, e); err != nil {
			return err
		}
		return upload.Commit(ctx)
	})
	if err != nil {
		if upload.Committed() {
			s.media.Delete(ctx, upload.Ref())
		}
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, internal(err)
	}

	s.logger.Info(ctx, "employee created", "email", e.Email, "image", e.ImagePath)

	return s.withURL(ctx, e), nil
}

// List returns every employee. An empty roster yields common.ErrorNotFound.
func (s *EmployeeService) List(ctx context.Context) ([]*models.Employee, error) {
	list, err := s.repomanager.Employees(s.db).List(ctx)
	if err != nil {
		return nil, internal(err)
	}
	if len(list) == 0 {
		return nil, common.ErrorNotFound
	}
	for _, e := range list {
		s.withURL(ctx, e)
	}
	return list, nil
}

func (s *EmployeeService) GetByEmail(ctx context.Context, email string) (*models.Employee, error) {
	e, err := s.repomanager.Employees(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, internal(err)
	}
	return s.withURL(ctx, e), nil
}

// Update replaces the supplied fields of the employee keyed by email. When
// img is set the new file replaces the old one, which is removed after the
// record is written.
func (s *EmployeeService) Update(ctx context.Context, email string, patch models.EmployeePatch, img *Image) (*models.Employee, error) {
	if patch.Courses != nil {
		courses, err := NormalizeCourses(patch.Courses)
		if err != nil {
			return nil, err
		}
		if len(courses) == 0 {
			return nil, fmt.Errorf("%w: at least one course is required", common.ErrorValidation)
		}
		patch.Courses = courses
	}

	unlock := s.locks.Lock(email)
	defer unlock()

	e, err := s.repomanager.Employees(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, internal(err)
	}

	if patch.Empty() && (img == nil || img.Reader == nil) {
		return s.withURL(ctx, e), nil
	}

	patch.Apply(e)
	oldRef := e.ImagePath

	var upload *media.Upload
	if img != nil && img.Reader != nil {
		upload, err = s.media.Stage(ctx, img.Reader, img.Name)
		if err != nil {
			return nil, internal(err)
		}
		defer upload.Discard(ctx)
		e.ImagePath = upload.Ref()
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Employees(tx).Update(ctx, e); err != nil {
			return err
		}
		if upload != nil {
			return upload.Commit(ctx)
		}
		return nil
	})
	if err != nil {
		if upload != nil && upload.Committed() {
			s.media.Delete(ctx, upload.Ref())
		}
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, internal(err)
	}

	if upload != nil && oldRef != "" && oldRef != e.ImagePath {
		s.media.Delete(ctx, oldRef)
	}

	s.logger.Info(ctx, "employee updated", "email", email, "image", e.ImagePath)

	return s.withURL(ctx, e), nil
}

// Delete removes the employee and then, best-effort, its image.
func (s *EmployeeService) Delete(ctx context.Context, email string) error {
	unlock := s.locks.Lock(email)
	defer unlock()

	ref, err := s.repomanager.Employees(s.db).Delete(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return internal(err)
	}

	s.media.Delete(ctx, ref)

	s.logger.Info(ctx, "employee deleted", "email", email)

	return nil
}

func (s *EmployeeService) withURL(ctx context.Context, e *models.Employee) *models.Employee {
	e.ImageURL = s.media.URL(ctx, e.ImagePath)
	return e
}

// NormalizeCourses accepts repeated values as well as comma joined ones,
// drops blanks and duplicates, and rejects unknown course codes.
func NormalizeCourses(in []string) ([]string, error) {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		for _, c := range strings.Split(v, ",") {
			c = strings.ToUpper(strings.TrimSpace(c))
			if c == "" {
				continue
			}
			if !models.IsKnownCourse(c) {
				return nil, fmt.Errorf("%w: unknown course %q", common.ErrorValidation, c)
			}
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out, nil
}
