package model

// User owns campaigns and supplies the sender's business context for
// generation. EmailsRemaining is the credit ledger: decremented by exactly
// one per successfully generated email, spent on generation rather than on
// later approval.
type User struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	CompanyName        string `json:"company_name,omitempty"`
	ProductDescription string `json:"product_description,omitempty"`
	ValueProp          string `json:"value_prop,omitempty"`
	TargetAudience     string `json:"target_audience,omitempty"`
	EmailsRemaining    int    `json:"emails_remaining"`
}

// SenderContext is the slice of User the generator needs, with defaults for
// missing fields so prompts never contain empty placeholders.
type SenderContext struct {
	CompanyName        string
	ProductDescription string
	ValueProp          string
	TargetAudience     string
}

// Sender derives a SenderContext from the user, applying defaults.
func (u User) Sender() SenderContext {
	s := SenderContext{
		CompanyName:        u.CompanyName,
		ProductDescription: u.ProductDescription,
		ValueProp:          u.ValueProp,
		TargetAudience:     u.TargetAudience,
	}
	if s.CompanyName == "" {
		s.CompanyName = "Our company"
	}
	if s.ProductDescription == "" {
		s.ProductDescription = "Our product"
	}
	if s.ValueProp == "" {
		s.ValueProp = "help businesses grow"
	}
	if s.TargetAudience == "" {
		s.TargetAudience = "Business professionals"
	}
	return s
}
