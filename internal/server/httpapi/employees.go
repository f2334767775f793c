package httpapi

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/employeehub/internal/common"
	"github.com/dmitrijs2005/employeehub/internal/server/models"
	"github.com/dmitrijs2005/employeehub/internal/server/services"
	"github.com/gin-gonic/gin"
)

// multipart parts above this size spill to temp files
const formMemory = 8 << 20

func (s *Server) handleCreateEmployee(c *gin.Context) {
	if !s.parseForm(c) {
		return
	}

	img, closeImg, ok := s.formImage(c)
	if !ok {
		return
	}
	defer closeImg()

	e := &models.Employee{
		Name:        c.PostForm("name"),
		Email:       c.PostForm("email"),
		Mobile:      c.PostForm("mobile"),
		Designation: c.PostForm("designation"),
		Gender:      c.PostForm("gender"),
		Courses:     formCourses(c),
	}

	created, err := s.employees.Create(c.Request.Context(), e, img)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"message": "Email already exists"})
		case errors.Is(err, common.ErrorValidation):
			c.JSON(http.StatusBadRequest, gin.H{"message": validationMessage(err)})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error registering employee"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Employee registered successfully", "employee": created})
}

func (s *Server) handleListEmployees(c *gin.Context) {
	list, err := s.employees.List(c.Request.Context())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "No employees found"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching employees"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"employees": list})
}

func (s *Server) handleGetEmployee(c *gin.Context) {
	e, err := s.employees.GetByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Employee not found"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching employee data"})
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *Server) handleUpdateEmployee(c *gin.Context) {
	if !s.parseForm(c) {
		return
	}

	img, closeImg, ok := s.formImage(c)
	if !ok {
		return
	}
	defer closeImg()

	patch := models.EmployeePatch{
		Name:        formValue(c, "name"),
		Mobile:      formValue(c, "mobile"),
		Designation: formValue(c, "designation"),
		Gender:      formValue(c, "gender"),
	}
	if courses := formCourses(c); len(courses) > 0 {
		patch.Courses = courses
	}

	e, err := s.employees.Update(c.Request.Context(), c.Param("email"), patch, img)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Employee not found"})
		case errors.Is(err, common.ErrorValidation):
			c.JSON(http.StatusBadRequest, gin.H{"message": validationMessage(err)})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error updating employee data"})
		}
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *Server) handleDeleteEmployee(c *gin.Context) {
	if err := s.employees.Delete(c.Request.Context(), c.Param("email")); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Employee not found"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error deleting employee"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Employee deleted successfully"})
}

// parseForm reads the multipart body and answers 400/413 itself on failure.
func (s *Server) parseForm(c *gin.Context) bool {
	err := c.Request.ParseMultipartForm(formMemory)
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": "Upload too large"})
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid form data"})
	return false
}

// formImage opens the "image" part. A missing part yields a nil image.
func (s *Server) formImage(c *gin.Context) (*services.Image, func(), bool) {
	fh, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, true
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid image"})
		return nil, nil, false
	}

	f, err := fh.Open()
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error reading image"})
		return nil, nil, false
	}
	return &services.Image{Reader: f, Name: fh.Filename}, closer(f), true
}

func closer(f multipart.File) func() {
	return func() { _ = f.Close() }
}

// formCourses collects "course" and "course[]" parts. Each value may itself
// be a comma joined list; services.NormalizeCourses splits them.
func formCourses(c *gin.Context) []string {
	var out []string
	for _, key := range []string{"course", "course[]"} {
		for _, v := range c.PostFormArray(key) {
			if strings.TrimSpace(v) != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// formValue returns nil for absent or blank fields.
func formValue(c *gin.Context, key string) *string {
	v, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func validationMessage(err error) string {
	msg, ok := strings.CutPrefix(err.Error(), common.ErrorValidation.Error()+": ")
	if !ok || msg == "" {
		return "Invalid input"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
