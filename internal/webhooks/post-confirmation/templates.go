package postconfirmation

import (
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

var (
	subjectTemplate = texttemplate.Must(texttemplate.New("welcome-subject").Parse(
		`Welcome to {{.Brand}} Student Portal!`))

	textTemplate = texttemplate.Must(texttemplate.New("welcome-text").Parse(`Hi {{.Name}},

Welcome to {{.Brand}} Student Portal! Your account has been successfully activated.

Username: {{.UserName}}
Email: {{.Email}}

You can now:
- Upload homework assignments
- View your grades
- Access course materials
- Download resources

Getting Started:
1. Log in at: {{.Portal}}
2. Complete your profile
3. Explore your dashboard

Need help? Contact {{.Support}}

Best regards,
{{.Brand}} Team
`))

	htmlTemplate = htmltemplate.Must(htmltemplate.New("welcome-html").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Arial, sans-serif; background-color: #f4f7fc;">
    <table width="100%" cellpadding="0" cellspacing="0" border="0" style="background-color: #f4f7fc; padding: 20px;">
        <tr>
            <td align="center">
                <table width="600" cellpadding="0" cellspacing="0" border="0" style="background-color: white; border-radius: 12px; overflow: hidden; max-width: 100%;">
                    <tr>
                        <td style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); padding: 40px 30px; text-align: center;">
                            <h1 style="margin: 0; color: white; font-size: 32px;">🎓 {{.Brand}}</h1>
                            <p style="margin: 10px 0 0; color: white; font-size: 16px;">Student Portal</p>
                        </td>
                    </tr>
                    <tr>
                        <td style="padding: 40px 30px;">
                            <h2 style="margin: 0 0 20px; color: #2d3748; font-size: 26px;">Welcome, {{.Name}}! 🎉</h2>
                            <p style="color: #4a5568; line-height: 1.7; font-size: 16px;">
                                Your account has been successfully created and verified. You now have full access to the {{.Brand}} Student Portal!
                            </p>
                            <p style="color: #4a5568; font-size: 14px;">
                                Username: <strong>{{.UserName}}</strong><br>
                                Email: <strong>{{.Email}}</strong>
                            </p>
                            <ul style="color: #4a5568; line-height: 1.8; font-size: 15px;">
                                <li>Upload homework assignments</li>
                                <li>View your grades</li>
                                <li>Access course materials</li>
                                <li>Download resources</li>
                            </ul>
                            <p style="text-align: center; margin: 30px 0;">
                                <a href="{{.Portal}}" style="background: #667eea; color: white; padding: 14px 32px; text-decoration: none; border-radius: 8px; font-weight: 600;">Go to the portal</a>
                            </p>
                            <p style="color: #718096; font-size: 13px;">
                                Need help? Contact <a href="mailto:{{.Support}}">{{.Support}}</a>
                            </p>
                        </td>
                    </tr>
                </table>
            </td>
        </tr>
    </table>
</body>
</html>
`))
)

// renderWelcome returns subject, text and HTML parts.
func renderWelcome(data WelcomeData) (string, string, string, error) {
	var subject, text, html strings.Builder
	if err := subjectTemplate.Execute(&subject, data); err != nil {
		return "", "", "", err
	}
	if err := textTemplate.Execute(&text, data); err != nil {
		return "", "", "", err
	}
	if err := htmlTemplate.Execute(&html, data); err != nil {
		return "", "", "", err
	}
	return subject.String(), text.String(), html.String(), nil
}
