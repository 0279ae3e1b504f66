package custommessage

import (
	htmltemplate "html/template"
	texttemplate "text/template"
)

type messageTemplate struct {
	subject *texttemplate.Template
	body    *htmltemplate.Template
}

// The code is rendered verbatim: the platform substitutes its {####}
// placeholder after the hook returns. html/template leaves it untouched
// because it contains no HTML-special characters.
var templates = map[MessageKind]messageTemplate{
	KindSignupVerification: {
		subject: texttemplate.Must(texttemplate.New("signup-subject").Parse(
			`Welcome to {{.Brand}}, {{.Name}} - your verification code is {{.Code}} 📧`)),
		body: htmltemplate.Must(htmltemplate.New("signup-body").Parse(`<html>
<body style="font-family: Arial, sans-serif;">
    <h2>Welcome to {{.Brand}}, {{.Name}}! 🎓</h2>
    <p>Thank you for registering with {{.Brand}} Student Portal.</p>
    <p>Your verification code is:</p>
    <h1 style="color: #4CAF50; letter-spacing: 5px;">{{.Code}}</h1>
    <p>Enter this code to verify your email address and activate your account.</p>
    <p>This code expires in 24 hours.</p>
    <hr>
    <p style="color: #666; font-size: 12px;">
        If you didn't create this account, please ignore this email.
    </p>
</body>
</html>`)),
	},
	KindPasswordReset: {
		subject: texttemplate.Must(texttemplate.New("reset-subject").Parse(
			`{{.Brand}} password reset code for {{.Name}}: {{.Code}} 🔐`)),
		body: htmltemplate.Must(htmltemplate.New("reset-body").Parse(`<html>
<body style="font-family: Arial, sans-serif;">
    <h2>Password Reset Request</h2>
    <p>Hi {{.Name}},</p>
    <p>You requested to reset your password for your {{.Brand}} account.</p>
    <p>Your password reset code is:</p>
    <h1 style="color: #FF5722; letter-spacing: 5px;">{{.Code}}</h1>
    <p>Enter this code to set a new password.</p>
    <p>This code expires in 1 hour.</p>
    <p><strong>If you didn't request this, please contact support immediately.</strong></p>
    <hr>
    <p style="color: #666; font-size: 12px;">
        {{.Brand}} Security Team<br>
        {{.Support}}
    </p>
</body>
</html>`)),
	},
	KindCodeResend: {
		subject: texttemplate.Must(texttemplate.New("resend-subject").Parse(
			`{{.Name}}, your new {{.Brand}} verification code is {{.Code}} 📧`)),
		body: htmltemplate.Must(htmltemplate.New("resend-body").Parse(`<html>
<body style="font-family: Arial, sans-serif;">
    <h2>New Verification Code</h2>
    <p>Hi {{.Name}},</p>
    <p>Here's your new verification code:</p>
    <h1 style="color: #2196F3; letter-spacing: 5px;">{{.Code}}</h1>
    <p>Enter this code to verify your email address.</p>
</body>
</html>`)),
	},
}
