package demo

import "github.com/docuassist/backend/internal/rag"

// Entry is one canned answer in the static knowledge base, triggered by
// substring keyword match against the lowercased query.
type Entry struct {
	Category string
	Keywords []string
	Answer   string
	Passages []rag.Passage
}

// knowledgeBase holds deterministic answers for the most common support
// topics. Enumeration order is fixed; the first matching entry wins.
var knowledgeBase = []Entry{
	{
		Category: "Password Reset",
		Keywords: []string{"password"},
		Answer: "To reset your password:\n\n" +
			"1. Go to the login page\n" +
			"2. Click 'Forgot Password?' link\n" +
			"3. Enter your email address\n" +
			"4. Check your email for a reset link (valid for 24 hours)\n" +
			"5. Click the link and create a new password (minimum 8 characters with uppercase, lowercase, and numbers)\n" +
			"6. Sign in with your new password\n\n" +
			"If you don't receive the email within 5 minutes, check your spam folder or contact support@company.com",
		Passages: []rag.Passage{
			{Text: "Password reset requires email verification. Reset links expire after 24 hours.", RelevanceScore: 0.95},
		},
	},
	{
		Category: "Pricing & Billing",
		Keywords: []string{"pricing", "cost", "refund", "billing", "payment"},
		Answer: "Pricing & Billing Information:\n\n" +
			"Plans:\n" +
			"- Starter: $29/month (100 users)\n" +
			"- Professional: $99/month (500 users)\n" +
			"- Enterprise: Custom pricing\n\n" +
			"Payment Methods:\n" +
			"Visa, Mastercard, American Express, and bank transfers\n\n" +
			"Billing Benefits:\n" +
			"- 20% discount on annual plans\n" +
			"- 30-day money-back guarantee\n" +
			"- Cancel anytime\n\n" +
			"For more details, visit your Billing page or contact support.",
		Passages: []rag.Passage{
			{Text: "Annual billing plans receive 20% discount. All plans include 30-day money-back guarantee.", RelevanceScore: 0.92},
		},
	},
	{
		Category: "Contact Support",
		Keywords: []string{"contact support", "customer support", "help", "support"},
		Answer: "How to Contact Support:\n\n" +
			"Email: support@company.com (24 hours, business days)\n" +
			"Live Chat: Monday-Friday, 9 AM - 5 PM EST\n" +
			"Phone: 1-800-COMPANY (Enterprise only, M-F 9 AM - 6 PM EST)\n" +
			"Help Center: help.company.com (instant answers, 24/7)\n" +
			"Community: community.company.com (get help from other users)\n\n" +
			"Response Times:\n" +
			"Critical issues: 1 hour\n" +
			"High priority: 4 hours\n" +
			"Medium priority: 24 hours\n" +
			"Low priority: 48 hours",
		Passages: []rag.Passage{
			{Text: "Support team available via email, live chat, and community forum. Enterprise customers have phone support.", RelevanceScore: 0.94},
		},
	},
	{
		Category: "Account Creation",
		Keywords: []string{"create account", "sign up", "new account", "registration"},
		Answer: "Creating a New Account:\n\n" +
			"1. Visit our website and click 'Sign Up'\n" +
			"2. Enter your email address\n" +
			"3. Create a strong password (min 8 chars: uppercase, lowercase, number)\n" +
			"4. Select your organization type\n" +
			"5. Accept Terms of Service & Privacy Policy\n" +
			"6. Click 'Create Account'\n" +
			"7. Verify email via link (check spam folder if needed)\n" +
			"8. Complete your profile\n\n" +
			"Your account includes:\n" +
			"- 30-day free trial with full features\n" +
			"- Community support access\n" +
			"- Basic analytics dashboard",
		Passages: []rag.Passage{
			{Text: "New accounts get 30-day free trial access to all features with community support included.", RelevanceScore: 0.96},
		},
	},
	{
		Category: "Security Features",
		Keywords: []string{"security", "2fa", "two factor", "encryption", "data privacy"},
		Answer: "Security & Privacy Features:\n\n" +
			"Two-Factor Authentication (2FA):\n" +
			"- Extra layer of protection\n" +
			"- Use authenticator app (Google Authenticator, Authy) or SMS\n" +
			"- Enable in Settings > Security\n\n" +
			"Data Protection:\n" +
			"- All data encrypted in transit (HTTPS/TLS)\n" +
			"- GDPR & CCPA compliant\n" +
			"- SOC 2 Type II certified\n" +
			"- You own your data and can export anytime\n\n" +
			"Login Security:\n" +
			"- Auto-logout after 5 minutes inactivity\n" +
			"- Session management available\n" +
			"- Unusual login alerts via email",
		Passages: []rag.Passage{
			{Text: "All data is encrypted with TLS. 2FA available for extra security. GDPR and CCPA compliant.", RelevanceScore: 0.93},
		},
	},
}

const fallbackAnswer = "I'm running in demo mode with limited knowledge. Here's what I can help with:\n\n" +
	"- Password Reset\n" +
	"- Pricing & Billing\n" +
	"- Contact Support\n" +
	"- Account Creation\n" +
	"- Security Features\n\n" +
	"Please ask about any of these topics for detailed information!"

var fallbackPassages = []rag.Passage{
	{Text: "Demo mode - Limited knowledge base", RelevanceScore: 0.5},
}
