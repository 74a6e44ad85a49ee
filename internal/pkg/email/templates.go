package email

// Email templates in HTML format

// BaseTemplate is the base layout for all emails
const BaseTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body {
            margin: 0;
            padding: 0;
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background-color: #0f0f0f;
            color: #ffffff;
        }
        .container {
            max-width: 600px;
            margin: 0 auto;
            padding: 40px 20px;
        }
        .card {
            background: #1a1a1a;
            border-radius: 12px;
            padding: 32px;
            border: 1px solid #2a2a2a;
        }
        .logo {
            text-align: center;
            margin-bottom: 24px;
        }
        .logo h1 {
            font-size: 28px;
            background: linear-gradient(135deg, #22d3ee 0%, #6366f1 100%);
            -webkit-background-clip: text;
            -webkit-text-fill-color: transparent;
            margin: 0;
        }
        h2 {
            color: #ffffff;
            font-size: 24px;
            margin: 0 0 16px;
        }
        p {
            color: #888888;
            font-size: 16px;
            line-height: 1.6;
            margin: 0 0 16px;
        }
        .code {
            display: block;
            text-align: center;
            font-size: 32px;
            letter-spacing: 8px;
            font-weight: 700;
            color: #ffffff;
            background: #111827;
            border-radius: 8px;
            padding: 16px 0;
            margin: 24px 0;
        }
        .footer {
            text-align: center;
            color: #555555;
            font-size: 13px;
            margin-top: 24px;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="logo"><h1>Echo Era</h1></div>
        <div class="card">
            {{.Content}}
        </div>
        <div class="footer">
            You are receiving this email because an account on Echo Era uses this address.
        </div>
    </div>
</body>
</html>
`

// VerificationTemplate is sent right after registration
const VerificationTemplate = `
<h2>Verify your email</h2>
<p>Hi {{.Username}},</p>
<p>Use the code below to activate your Echo Era account. The code is valid for 24 hours.</p>
<span class="code">{{.Code}}</span>
<p>If you did not create this account, you can safely ignore this email.</p>
`

// PasswordResetTemplate is sent on forgot-password requests
const PasswordResetTemplate = `
<h2>Reset your password</h2>
<p>Hi {{.Username}},</p>
<p>Use the code below to set a new password. The code expires in 10 minutes.</p>
<span class="code">{{.Code}}</span>
<p>If you did not request a password reset, your account is still safe and no action is needed.</p>
`

// WelcomeTemplate is sent after successful email verification
const WelcomeTemplate = `
<h2>Welcome to Echo Era!</h2>
<p>Hi {{.Username}},</p>
<p>Your account is verified. Add friends, join group chats and start talking.</p>
`
