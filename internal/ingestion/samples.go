package ingestion

import (
	"context"

	"github.com/docuassist/backend/internal/rag"
)

// sampleDocuments seeds a fresh index with the core support topics so
// the assistant is useful before any real documentation is uploaded.
var sampleDocuments = []rag.Document{
	{
		ID:   "sample_password_reset",
		Text: "To reset your password, go to the login page and click the 'Forgot Password?' link. Enter your email address and check your inbox for a reset link. Reset links expire after 24 hours. New passwords must be at least 8 characters with uppercase, lowercase, and numbers.",
		Metadata: map[string]string{
			"source":   "help_docs",
			"category": "account",
		},
	},
	{
		ID:   "sample_billing_plans",
		Text: "We offer three plans: Starter at $29/month for up to 100 users, Professional at $99/month for up to 500 users, and Enterprise with custom pricing. Annual billing receives a 20% discount, and all plans include a 30-day money-back guarantee.",
		Metadata: map[string]string{
			"source":   "help_docs",
			"category": "billing",
		},
	},
	{
		ID:   "sample_contact_support",
		Text: "Support is available via email at support@company.com with responses within 24 hours on business days, live chat Monday through Friday 9 AM to 5 PM EST, and phone for Enterprise customers. Critical issues receive a response within 1 hour.",
		Metadata: map[string]string{
			"source":   "help_docs",
			"category": "support",
		},
	},
	{
		ID:   "sample_account_creation",
		Text: "To create an account, visit the website and click 'Sign Up'. Enter your email, create a strong password, select your organization type, and accept the Terms of Service. Verify your email via the link sent to you. New accounts include a 30-day free trial with full features.",
		Metadata: map[string]string{
			"source":   "help_docs",
			"category": "account",
		},
	},
	{
		ID:   "sample_security_features",
		Text: "Two-factor authentication can be enabled in Settings under Security, using an authenticator app or SMS. All data is encrypted in transit with TLS. The platform is GDPR and CCPA compliant and SOC 2 Type II certified. Sessions auto-logout after 5 minutes of inactivity.",
		Metadata: map[string]string{
			"source":   "help_docs",
			"category": "security",
		},
	},
}

// LoadSamples indexes the built-in sample corpus.
func (p *Processor) LoadSamples(ctx context.Context) (int, error) {
	return p.IndexDocuments(ctx, sampleDocuments)
}
