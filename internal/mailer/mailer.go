// Package mailer renders and sends the storefront's transactional emails:
// order confirmation, delivery/cancellation notices and movement approvals.
// Templates carry the inline-styled HTML look of the shop's existing mails.
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"storefront-service/internal/models"
)

// Sender delivers a rendered email. The SMTP implementation is used in
// production; tests substitute a recording fake.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

// SMTPSender sends mail through a plain SMTP relay
type SMTPSender struct {
	Addr string
	From string
}

func (s *SMTPSender) Send(to, subject, htmlBody string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.From, to, subject, htmlBody)
	if err := smtp.SendMail(s.Addr, nil, s.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

var orderConfirmationTmpl = template.Must(template.New("orderConfirmation").Parse(`
<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">
  <h2 style="color:#1a1a2e">Cảm ơn bạn đã đặt hàng!</h2>
  <p>Đơn hàng <strong>{{.OrderNumber}}</strong> của bạn đã được tiếp nhận.</p>
  <table style="width:100%;border-collapse:collapse">
    {{range .Items}}
    <tr>
      <td style="padding:8px;border-bottom:1px solid #eee">{{.Name}}{{if .Size}} ({{.Size}}{{if .Color}}, {{.Color}}{{end}}){{end}}</td>
      <td style="padding:8px;border-bottom:1px solid #eee;text-align:center">x{{.Quantity}}</td>
      <td style="padding:8px;border-bottom:1px solid #eee;text-align:right">{{.Price}}₫</td>
    </tr>
    {{end}}
  </table>
  <p style="text-align:right;font-size:18px"><strong>Tổng cộng: {{.Total}}₫</strong></p>
  <p style="color:#666;font-size:13px">Chúng tôi sẽ thông báo khi đơn hàng được giao cho đơn vị vận chuyển.</p>
</div>`))

var orderStatusTmpl = template.Must(template.New("orderStatus").Parse(`
<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">
  <h2 style="color:#1a1a2e">Cập nhật đơn hàng {{.OrderNumber}}</h2>
  <p>Trạng thái mới: <strong>{{.Status}}</strong></p>
  {{if .Reason}}<p>Lý do: {{.Reason}}</p>{{end}}
</div>`))

var movementApprovedTmpl = template.Must(template.New("movementApproved").Parse(`
<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">
  <h2 style="color:#1a1a2e">Phiếu kho {{.Code}} đã được duyệt</h2>
  <p>Người duyệt: <strong>{{.ApprovedBy}}</strong></p>
</div>`))

// Mailer renders the shop's transactional emails
type Mailer struct {
	sender Sender
}

// NewMailer creates a mailer on top of a Sender
func NewMailer(sender Sender) *Mailer {
	return &Mailer{sender: sender}
}

// SendOrderConfirmation mails the checkout confirmation
func (m *Mailer) SendOrderConfirmation(to string, event *models.OrderCreatedEvent) error {
	var buf bytes.Buffer
	if err := orderConfirmationTmpl.Execute(&buf, event); err != nil {
		return fmt.Errorf("failed to render order confirmation: %w", err)
	}
	subject := fmt.Sprintf("Xác nhận đơn hàng %s", event.OrderNumber)
	return m.sender.Send(to, subject, buf.String())
}

// SendOrderStatus mails a lifecycle update (delivered, cancelled)
func (m *Mailer) SendOrderStatus(to string, event *models.OrderStatusChangedEvent) error {
	var buf bytes.Buffer
	data := struct {
		OrderNumber string
		Status      models.OrderStatus
		Reason      string
	}{event.OrderNumber, event.To, event.Reason}
	if err := orderStatusTmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render order status mail: %w", err)
	}
	subject := fmt.Sprintf("Đơn hàng %s: %s", event.OrderNumber, event.To)
	return m.sender.Send(to, subject, buf.String())
}

// SendMovementApproved mails the warehouse team on approval
func (m *Mailer) SendMovementApproved(to string, event *models.MovementApprovedEvent) error {
	var buf bytes.Buffer
	if err := movementApprovedTmpl.Execute(&buf, event); err != nil {
		return fmt.Errorf("failed to render movement approval mail: %w", err)
	}
	subject := fmt.Sprintf("Phiếu kho %s đã duyệt", event.Code)
	return m.sender.Send(to, subject, buf.String())
}
