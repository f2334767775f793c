package services

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/employeehub/internal/common"
	"github.com/dmitrijs2005/employeehub/internal/dbx"
	"github.com/dmitrijs2005/employeehub/internal/server/models"
	"github.com/dmitrijs2005/employeehub/internal/server/repositories/employees"
	"github.com/dmitrijs2005/employeehub/internal/server/repositories/users"
)

type fakeUsersRepo struct {
	mu     sync.Mutex
	byName map[string]*models.User
	nextID int

	getErr    error
	createErr error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byName: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byName[u.UserName]; ok {
		return nil, common.ErrorAlreadyExists
	}
	f.nextID++
	cp := *u
	cp.ID = "u-" + strconv.Itoa(f.nextID)
	cp.CreatedAt = time.Now()
	f.byName[u.UserName] = &cp
	return &cp, nil
}

func (f *fakeUsersRepo) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[login]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byName {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

type fakeEmployeesRepo struct {
	mu      sync.Mutex
	byEmail map[string]*models.Employee

	// hideOnGet makes GetByEmail miss, as a concurrent writer would see it
	hideOnGet bool
	listErr   error
	updateErr error
}

func newFakeEmployeesRepo() *fakeEmployeesRepo {
	return &fakeEmployeesRepo{byEmail: map[string]*models.Employee{}}
}

func (f *fakeEmployeesRepo) Create(_ context.Context, e *models.Employee) (*models.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[e.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	e.ID = "e-" + e.Email
	e.CreatedAt = time.Now()
	cp := *e
	f.byEmail[e.Email] = &cp
	return e, nil
}

func (f *fakeEmployeesRepo) List(context.Context) ([]*models.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*models.Employee
	for _, e := range f.byEmail {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeEmployeesRepo) GetByEmail(_ context.Context, email string) (*models.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byEmail[email]
	if !ok || f.hideOnGet {
		return nil, common.ErrorNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEmployeesRepo) Update(_ context.Context, e *models.Employee) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.byEmail[e.Email]; !ok {
		return common.ErrorNotFound
	}
	cp := *e
	f.byEmail[e.Email] = &cp
	return nil
}

func (f *fakeEmployeesRepo) Delete(_ context.Context, email string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byEmail[email]
	if !ok {
		return "", common.ErrorNotFound
	}
	delete(f.byEmail, email)
	return e.ImagePath, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	e *fakeEmployeesRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository             { return m.u }
func (m *fakeRepoManager) Employees(dbx.DBTX) employees.Repository     { return m.e }

var errBoom = errors.New("boom")
