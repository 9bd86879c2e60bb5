package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/ratiba/core/schedule"
	"github.com/trezcool/ratiba/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateSession(
	t *testing.T,
	repo schedule.Repository,
	tmpl schedule.ClassTemplate,
	date time.Time,
	start, end schedule.ClockTime,
) schedule.Session {
	t.Helper()

	sess := schedule.Session{
		TemplateID:   tmpl.ID,
		TeacherID:    tmpl.TeacherID,
		TeacherName:  tmpl.TeacherName,
		LocationID:   tmpl.LocationID,
		ClassName:    tmpl.ClassName,
		Subject:      tmpl.Subject,
		Capacity:     tmpl.Capacity,
		StudentCount: tmpl.Enrolled,
		Date:         schedule.DateOnly(date),
		StartTime:    start,
		EndTime:      end,
		Status:       schedule.StatusScheduled,
		CreatedAt:    time.Now().UTC(),
	}
	created, err := repo.CreateSessions(context.Background(), sess)
	if err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}
	return created[0]
}

// Diff returns a unified diff of want vs got; empty when equal.
func Diff(want, got string) string {
	if want == got {
		return ""
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	return diff
}
