// Package templates holds the built-in transactional e-mail bodies. The
// service parses these at startup; a configured template_dir overrides
// individual templates by file name.
package templates

import "html/template"

const (
	EmailVerification         = "email_verification.html"
	ChangePassword            = "change_password.html"
	SupportTicketConfirmation = "support_ticket_confirmation.html"
	SupportTicketAlert        = "support_ticket_alert.html"
)

// Defaults returns a fresh template set with every built-in template parsed.
// Callers may ParseGlob over it before first use to override by name.
func Defaults() *template.Template {
	t := template.New("emails")
	template.Must(t.New(EmailVerification).Parse(emailVerificationHTML))
	template.Must(t.New(ChangePassword).Parse(changePasswordHTML))
	template.Must(t.New(SupportTicketConfirmation).Parse(supportTicketConfirmationHTML))
	template.Must(t.New(SupportTicketAlert).Parse(supportTicketAlertHTML))
	return t
}

const emailVerificationHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Verify your email</title>
</head>
<body style="margin:0;padding:0;background-color:#f4f5f7;font-family:Arial,Helvetica,sans-serif;">
  <table role="presentation" width="100%" cellpadding="0" cellspacing="0">
    <tr>
      <td align="center" style="padding:32px 16px;">
        <table role="presentation" width="480" cellpadding="0" cellspacing="0" style="background-color:#ffffff;border-radius:8px;padding:32px;">
          <tr>
            <td style="color:#1a1a2e;font-size:20px;font-weight:bold;padding-bottom:16px;">
              Verify your email address
            </td>
          </tr>
          <tr>
            <td style="color:#444;font-size:14px;line-height:22px;padding-bottom:24px;">
              Hi {{if .UserName}}{{.UserName}}{{else}}there{{end}},<br><br>
              Thanks for signing up. Please confirm this email address by
              clicking the button below. The link expires in 24 hours.
            </td>
          </tr>
          <tr>
            <td align="center" style="padding-bottom:24px;">
              <a href="{{.Link}}" style="background-color:#2f6fed;color:#ffffff;text-decoration:none;padding:12px 28px;border-radius:6px;font-size:14px;display:inline-block;">
                Verify Email
              </a>
            </td>
          </tr>
          <tr>
            <td style="color:#888;font-size:12px;line-height:18px;">
              If the button does not work, copy this link into your browser:<br>
              <a href="{{.Link}}" style="color:#2f6fed;word-break:break-all;">{{.Link}}</a><br><br>
              If you did not create an account, you can safely ignore this message.
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>
`

const changePasswordHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Change your password</title>
</head>
<body style="margin:0;padding:0;background-color:#f4f5f7;font-family:Arial,Helvetica,sans-serif;">
  <table role="presentation" width="100%" cellpadding="0" cellspacing="0">
    <tr>
      <td align="center" style="padding:32px 16px;">
        <table role="presentation" width="480" cellpadding="0" cellspacing="0" style="background-color:#ffffff;border-radius:8px;padding:32px;">
          <tr>
            <td style="color:#1a1a2e;font-size:20px;font-weight:bold;padding-bottom:16px;">
              Password change requested
            </td>
          </tr>
          <tr>
            <td style="color:#444;font-size:14px;line-height:22px;padding-bottom:24px;">
              Hi {{if .UserName}}{{.UserName}}{{else}}there{{end}},<br><br>
              We received a request to change the password on your account.
              Click the button below to continue. The link expires in 1 hour.
            </td>
          </tr>
          <tr>
            <td align="center" style="padding-bottom:24px;">
              <a href="{{.Link}}" style="background-color:#2f6fed;color:#ffffff;text-decoration:none;padding:12px 28px;border-radius:6px;font-size:14px;display:inline-block;">
                Change Password
              </a>
            </td>
          </tr>
          <tr>
            <td style="color:#888;font-size:12px;line-height:18px;">
              If the button does not work, copy this link into your browser:<br>
              <a href="{{.Link}}" style="color:#2f6fed;word-break:break-all;">{{.Link}}</a><br><br>
              If you did not request a password change, ignore this message and
              your password will stay the same.
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>
`

const supportTicketConfirmationHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>We received your request</title>
</head>
<body style="margin:0;padding:0;background-color:#f4f5f7;font-family:Arial,Helvetica,sans-serif;">
  <table role="presentation" width="100%" cellpadding="0" cellspacing="0">
    <tr>
      <td align="center" style="padding:32px 16px;">
        <table role="presentation" width="480" cellpadding="0" cellspacing="0" style="background-color:#ffffff;border-radius:8px;padding:32px;">
          <tr>
            <td style="color:#1a1a2e;font-size:20px;font-weight:bold;padding-bottom:16px;">
              We received your support request
            </td>
          </tr>
          <tr>
            <td style="color:#444;font-size:14px;line-height:22px;padding-bottom:16px;">
              Hi {{if .UserName}}{{.UserName}}{{else}}there{{end}},<br><br>
              Your ticket <strong>#{{.TicketID}}</strong> has been created and
              our team will get back to you as soon as possible.
            </td>
          </tr>
          {{if .Subject}}
          <tr>
            <td style="color:#444;font-size:14px;line-height:22px;padding-bottom:8px;">
              <strong>Subject:</strong> {{.Subject}}
            </td>
          </tr>
          {{end}}
          {{if .Message}}
          <tr>
            <td style="background-color:#f4f5f7;border-radius:6px;color:#444;font-size:13px;line-height:20px;padding:16px;margin-bottom:16px;">
              {{.Message}}
            </td>
          </tr>
          {{end}}
          <tr>
            <td style="color:#888;font-size:12px;line-height:18px;padding-top:16px;">
              Replying to this e-mail adds your reply to the ticket.
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>
`

const supportTicketAlertHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>New support ticket</title>
</head>
<body style="margin:0;padding:0;background-color:#f4f5f7;font-family:Arial,Helvetica,sans-serif;">
  <table role="presentation" width="100%" cellpadding="0" cellspacing="0">
    <tr>
      <td align="center" style="padding:32px 16px;">
        <table role="presentation" width="520" cellpadding="0" cellspacing="0" style="background-color:#ffffff;border-radius:8px;padding:32px;">
          <tr>
            <td style="color:#1a1a2e;font-size:18px;font-weight:bold;padding-bottom:16px;">
              New support ticket #{{.TicketID}}{{if .Priority}} ({{.Priority}}){{end}}
            </td>
          </tr>
          <tr>
            <td style="color:#444;font-size:13px;line-height:20px;padding-bottom:4px;">
              <strong>From:</strong> {{if .UserName}}{{.UserName}} &lt;{{.UserEmail}}&gt;{{else}}{{.UserEmail}}{{end}}
            </td>
          </tr>
          {{if .Subject}}
          <tr>
            <td style="color:#444;font-size:13px;line-height:20px;padding-bottom:4px;">
              <strong>Subject:</strong> {{.Subject}}
            </td>
          </tr>
          {{end}}
          <tr>
            <td style="background-color:#f4f5f7;border-radius:6px;color:#444;font-size:13px;line-height:20px;padding:16px;">
              {{if .Message}}{{.Message}}{{else}}(no message provided){{end}}
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>
`
