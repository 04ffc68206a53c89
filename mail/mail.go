// Package mail reports upload outcomes to uploaders and administrators
package mail

import (
	"bytes"
	"fmt"
	"net/smtp"
	"strings"
	"text/template"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/mentors-dev/importer/deb"
	"github.com/mentors-dev/importer/store"
)

// Notifier delivers upload outcome notifications
type Notifier interface {
	// Accepted tells the uploader their package entered the repository
	Accepted(changes *deb.Changes, uploader *store.User) error
	// Rejected tells the uploader why their package was turned away
	Rejected(changesName string, uploader *store.User, reason string) error
	// Failed tells the administrators the pipeline itself broke
	Failed(changesName string, uploader *store.User, diagnostic string) error
}

// NullNotifier drops every notification, used with the skip-email setting
type NullNotifier struct{}

// Accepted does nothing
func (NullNotifier) Accepted(*deb.Changes, *store.User) error { return nil }

// Rejected does nothing
func (NullNotifier) Rejected(string, *store.User, string) error { return nil }

// Failed does nothing
func (NullNotifier) Failed(string, *store.User, string) error { return nil }

var acceptedTemplate = template.Must(template.New("accepted").Parse(
	`Your upload of {{.Source}} {{.Version}} to {{.Distribution}} was accepted.

{{.ChangesText}}
Thank you for your contribution.
`))

var rejectedTemplate = template.Must(template.New("rejected").Parse(
	`Your upload {{.Name}} was rejected:

{{.Reason}}

Please fix the problem and upload again.
`))

var failedTemplate = template.Must(template.New("failed").Parse(
	`Processing of upload {{.Name}} failed with an internal error:

{{.Diagnostic}}
`))

// SMTPNotifier sends notifications through a plain SMTP relay
type SMTPNotifier struct {
	server     string
	from       string
	adminEmail string
}

// NewSMTPNotifier creates a notifier, server is host:port of the relay
func NewSMTPNotifier(server, from, adminEmail string) *SMTPNotifier {
	return &SMTPNotifier{server: server, from: from, adminEmail: adminEmail}
}

// Accepted implements Notifier
func (n *SMTPNotifier) Accepted(changes *deb.Changes, uploader *store.User) error {
	if uploader == nil {
		return nil
	}

	subject := fmt.Sprintf("%s_%s: ACCEPTED into %s",
		changes.Source, changes.Version, changes.Distribution)

	var body bytes.Buffer
	err := acceptedTemplate.Execute(&body, map[string]interface{}{
		"Source":       changes.Source,
		"Version":      changes.Version.String(),
		"Distribution": changes.Distribution,
		"ChangesText":  changes.ChangesText,
	})
	if err != nil {
		return err
	}

	return n.send([]string{uploader.Email}, subject, body.String())
}

// Rejected implements Notifier
func (n *SMTPNotifier) Rejected(changesName string, uploader *store.User, reason string) error {
	recipients := []string{n.adminEmail}
	if uploader != nil {
		recipients = []string{uploader.Email}
	}

	subject := fmt.Sprintf("%s: REJECTED", changesName)

	var body bytes.Buffer
	err := rejectedTemplate.Execute(&body, map[string]string{
		"Name":   changesName,
		"Reason": reason,
	})
	if err != nil {
		return err
	}

	return n.send(recipients, subject, body.String())
}

// Failed implements Notifier. The full diagnostic goes to the administrators,
// the uploader gets a copy when identifiable.
func (n *SMTPNotifier) Failed(changesName string, uploader *store.User, diagnostic string) error {
	recipients := []string{n.adminEmail}
	if uploader != nil {
		recipients = append(recipients, uploader.Email)
	}

	subject := fmt.Sprintf("%s: processing FAILED", changesName)

	var body bytes.Buffer
	err := failedTemplate.Execute(&body, map[string]string{
		"Name":       changesName,
		"Diagnostic": diagnostic,
	})
	if err != nil {
		return err
	}

	return n.send(recipients, subject, body.String())
}

func (n *SMTPNotifier) send(recipients []string, subject, body string) error {
	message := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		n.from, strings.Join(recipients, ", "), subject, body)

	err := smtp.SendMail(n.server, nil, n.from, recipients, []byte(message))
	if err != nil {
		// notification failure must not change the upload outcome
		log.Error().Err(err).Str("subject", subject).Msg("unable to send notification")
		return errors.Wrap(err, "unable to send notification")
	}

	return nil
}
