package models

import "time"

// Courses an employee may be enrolled in.
const (
	CourseMCA = "MCA"
	CourseBCA = "BCA"
	CourseBSC = "BSC"
)

// IsKnownCourse reports whether c is one of the recognised course codes.
func IsKnownCourse(c string) bool {
	switch c {
	case CourseMCA, CourseBCA, CourseBSC:
		return true
	}
	return false
}

// Employee is a roster record. Email is the natural key used by the API.
// ImagePath is the media reference kept in the database; ImageURL is filled
// in on the way out and never stored.
type Employee struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Mobile      string    `json:"mobile"`
	Designation string    `json:"designation"`
	Gender      string    `json:"gender"`
	Courses     []string  `json:"course"`
	ImagePath   string    `json:"image"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// EmployeePatch carries the fields supplied to an update. Nil fields are
// left unchanged.
type EmployeePatch struct {
	Name        *string
	Mobile      *string
	Designation *string
	Gender      *string
	Courses     []string
}

// Empty reports whether the patch changes nothing.
func (p EmployeePatch) Empty() bool {
	return p.Name == nil && p.Mobile == nil && p.Designation == nil && p.Gender == nil && p.Courses == nil
}

// Apply copies the supplied fields onto e.
func (p EmployeePatch) Apply(e *Employee) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Mobile != nil {
		e.Mobile = *p.Mobile
	}
	if p.Designation != nil {
		e.Designation = *p.Designation
	}
	if p.Gender != nil {
		e.Gender = *p.Gender
	}
	if p.Courses != nil {
		e.Courses = p.Courses
	}
}
