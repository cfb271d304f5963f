package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/smk-presensi-api/internal/models"
)

// PersonRepository reads the student and employee directories. The attendance
// core treats both as reference data and never writes here.
type PersonRepository struct {
	db *sqlx.DB
}

// NewPersonRepository constructs the repository.
func NewPersonRepository(db *sqlx.DB) *PersonRepository {
	return &PersonRepository{db: db}
}

// GetStudent looks a student up by NIS.
func (r *PersonRepository) GetStudent(ctx context.Context, nis string) (*models.Student, error) {
	query := `SELECT nis, nama, kelas, no_hp_ortu FROM students WHERE nis = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, nis); err != nil {
		return nil, err
	}
	return &student, nil
}

// GetEmployee looks an employee up by their employee number.
func (r *PersonRepository) GetEmployee(ctx context.Context, noID string) (*models.Employee, error) {
	query := `SELECT id, no_id, nama, role, no_hp FROM employees WHERE no_id = $1`
	var employee models.Employee
	if err := r.db.GetContext(ctx, &employee, query, noID); err != nil {
		return nil, err
	}
	return &employee, nil
}

// ListStudents returns students ordered by name, optionally narrowed to one
// class.
func (r *PersonRepository) ListStudents(ctx context.Context, filter models.PersonFilter) ([]models.Student, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.ClassName != "" {
		where = append(where, fmt.Sprintf("kelas = $%d", len(args)+1))
		args = append(args, filter.ClassName)
	}
	query := fmt.Sprintf(`SELECT nis, nama, kelas, no_hp_ortu FROM students WHERE %s ORDER BY nama ASC`, strings.Join(where, " AND "))
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// ListEmployees returns employees ordered by name, optionally narrowed to one
// role.
func (r *PersonRepository) ListEmployees(ctx context.Context, filter models.PersonFilter) ([]models.Employee, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Role != "" {
		where = append(where, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, filter.Role)
	}
	query := fmt.Sprintf(`SELECT id, no_id, nama, role, no_hp FROM employees WHERE %s ORDER BY nama ASC`, strings.Join(where, " AND "))
	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, query, args...); err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return employees, nil
}

// ListSecurityStaff returns the employees governed by shift scheduling.
func (r *PersonRepository) ListSecurityStaff(ctx context.Context) ([]models.Employee, error) {
	return r.ListEmployees(ctx, models.PersonFilter{Role: models.PopulationSecurity})
}

// CountStudents returns the directory size for dashboard tallies.
func (r *PersonRepository) CountStudents(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM students`); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return total, nil
}

// CountEmployees returns the employee directory size.
func (r *PersonRepository) CountEmployees(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM employees`); err != nil {
		return 0, fmt.Errorf("count employees: %w", err)
	}
	return total, nil
}
