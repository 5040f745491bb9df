package engine

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Bleutonik/lovirtual-backend/pkg/schema"
)

// Demo account credentials created on first run.
const (
	SeedEmployeeUsername = "rock"
	SeedEmployeePassword = "123456"
	SeedAdminUsername    = "admin"
	SeedAdminPassword    = "admin123"
)

// Seed installs the first-run dataset: a demo employee, an admin account and
// the welcome announcements. It is a no-op whenever any user already exists,
// so repeated startups never duplicate the seed rows.
func Seed(s *Store) error {
	if len(s.Users().All()) > 0 {
		return nil
	}

	employeeHash, err := bcrypt.GenerateFromPassword([]byte(SeedEmployeePassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash employee password: %w", err)
	}
	adminHash, err := bcrypt.GenerateFromPassword([]byte(SeedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	_, err = s.Users().Insert(&schema.User{
		Username:   SeedEmployeeUsername,
		Password:   string(employeeHash),
		Name:       "Rock Demo",
		Email:      "rock@lovirtual.local",
		Role:       schema.RoleEmployee,
		Department: "Operations",
	})
	if err != nil {
		return fmt.Errorf("seed employee: %w", err)
	}
	admin, err := s.Users().Insert(&schema.User{
		Username:   SeedAdminUsername,
		Password:   string(adminHash),
		Name:       "Administrator",
		Email:      "admin@lovirtual.local",
		Role:       schema.RoleAdmin,
		Department: "Management",
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	seedAnnouncements := []*schema.Announcement{
		{
			AuthorID: admin.ID,
			Title:    "Welcome to LoVirtual",
			Content:  "Use the demo accounts to explore attendance, breaks, tasks and leave requests.",
			Category: "general",
			Pinned:   true,
		},
		{
			AuthorID: admin.ID,
			Title:    "Remember to clock in",
			Content:  "Attendance is registered per day; clock in when you start and clock out when you finish.",
			Category: "policy",
		},
	}
	for _, a := range seedAnnouncements {
		if _, err := s.Announcements().Insert(a); err != nil {
			return fmt.Errorf("seed announcement: %w", err)
		}
	}
	return nil
}
