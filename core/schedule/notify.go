package schedule

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/user"
)

type (
	// Roster is the enrollment provider: it supplies the current student
	// roster for a class template.
	Roster interface {
		ListEnrolledStudents(ctx context.Context, templateID string) ([]user.User, error)
	}

	// Directory resolves user records for recipient fan-out.
	Directory interface {
		GetByID(ctx context.Context, id string) (user.User, error)
		QueryAdmins(ctx context.Context) ([]user.User, error)
	}

	// Dispatcher fans a CancellationEvent out to the session's teacher,
	// every enrolled student and the administrators. Delivery itself is
	// the email service's problem; the dispatcher neither waits for nor
	// observes it.
	Dispatcher struct {
		roster    Roster
		directory Directory
		mailSvc   core.EmailService
	}
)

func NewDispatcher(roster Roster, directory Directory, mailSvc core.EmailService) *Dispatcher {
	return &Dispatcher{roster: roster, directory: directory, mailSvc: mailSvc}
}

// DispatchCancellation resolves the recipient set and emits one dispatch
// request for the event. Recipient resolution failures abort the dispatch;
// delivery failures do not surface here.
func (d *Dispatcher) DispatchCancellation(ctx context.Context, evt CancellationEvent) error {
	recipients, err := d.resolveRecipients(ctx, evt.Session)
	if err != nil {
		return errors.Wrap(err, "resolving cancellation recipients")
	}
	if len(recipients) == 0 {
		return nil
	}

	d.mailSvc.SendMessages(&core.EmailMessage{
		To:          recipients,
		Subject:     fmt.Sprintf("Class cancelled: %s on %s", evt.Session.ClassName, evt.Session.Date.Format("Mon, 02 Jan 2006")),
		TextContent: cancellationBody(evt),
	})
	return nil
}

// resolveRecipients returns the union of teacher, enrolled students and
// admins, deduplicated by email address.
func (d *Dispatcher) resolveRecipients(ctx context.Context, sess Session) ([]mail.Address, error) {
	var users []user.User

	teacher, err := d.directory.GetByID(ctx, sess.TeacherID)
	if err != nil && err != user.ErrNotFound {
		return nil, errors.Wrap(err, "finding teacher")
	}
	if err == nil {
		users = append(users, teacher)
	}

	students, err := d.roster.ListEnrolledStudents(ctx, sess.TemplateID)
	if err != nil {
		return nil, errors.Wrap(err, "listing enrolled students")
	}
	users = append(users, students...)

	admins, err := d.directory.QueryAdmins(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying admins")
	}
	users = append(users, admins...)

	seen := make(map[string]bool, len(users))
	addrs := make([]mail.Address, 0, len(users))
	for _, u := range users {
		email := core.CleanString(u.Email, true /* lower */)
		if email == "" || seen[email] {
			continue
		}
		seen[email] = true
		addrs = append(addrs, mail.Address{Name: u.Name, Address: email})
	}
	return addrs, nil
}

func cancellationBody(evt CancellationEvent) string {
	b := new(strings.Builder)
	_, _ = fmt.Fprintf(b, "The following class session has been cancelled:\n\n")
	_, _ = fmt.Fprintf(b, "Class:    %s (%s)\n", evt.Session.ClassName, evt.Session.Subject)
	_, _ = fmt.Fprintf(b, "Teacher:  %s\n", evt.Session.TeacherName)
	_, _ = fmt.Fprintf(b, "Date:     %s\n", evt.Session.Date.Format("Mon, 02 Jan 2006"))
	_, _ = fmt.Fprintf(b, "Time:     %s - %s\n", evt.Session.StartTime, evt.Session.EndTime)
	if evt.Session.LocationID != "" {
		_, _ = fmt.Fprintf(b, "Location: %s\n", evt.Session.LocationID)
	}
	_, _ = fmt.Fprintf(b, "\nReason: %s\n", evt.Note)
	return b.String()
}
