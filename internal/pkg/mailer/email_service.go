package mailer

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	// SendSubmissionNotice tells the admin inbox about a new appointment or feedback.
	SendSubmissionNotice(flow string, fields map[string]string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
	adminEmail  string
}

func NewEmailService(host string, port int, username, password, senderEmail, senderName, adminEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		senderName:  senderName,
		adminEmail:  adminEmail,
	}
}

func (s *emailService) SendSubmissionNotice(flow string, fields map[string]string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", s.adminEmail)
	if email := fields["email"]; strings.Contains(email, "@") {
		m.SetHeader("Reply-To", email)
	}
	m.SetHeader("Subject", NoticeSubject(flow, fields["name"]))
	m.SetBody("text/html", NoticeBody(flow, fields))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send %s notice: %w", flow, err)
	}
	return nil
}

func NoticeSubject(flow, name string) string {
	title := "New " + flow
	if flow == "appointment" {
		title = "New appointment request"
	}
	if name != "" {
		title += " from " + name
	}
	return title
}

// NoticeBody renders the fields as an HTML table, escaping every value.
func NoticeBody(flow string, fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var rows strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&rows, `<tr><td style="padding: 4px 12px; font-weight: bold;">%s</td><td style="padding: 4px 12px;">%s</td></tr>`,
			html.EscapeString(k), html.EscapeString(fields[k]))
	}

	return fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>FLCS chatbot: new %s</h2>
			<table>%s</table>
		</div>
	`, html.EscapeString(flow), rows.String())
}
