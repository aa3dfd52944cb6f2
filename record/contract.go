package record

import (
	"time"

	"github.com/lvillar/docsmith"
)

// Contract is a service agreement between a client and a contractor.
type Contract struct {
	Title              string    `json:"title"`
	ClientName         string    `json:"clientName"`
	ContractorName     string    `json:"contractorName"`
	EffectiveDate      time.Time `json:"effectiveDate"`
	ScopeOfWork        string    `json:"scopeOfWork"`
	PaymentTerms       string    `json:"paymentTerms"`
	TermsAndConditions string    `json:"termsAndConditions"`
	CompanyName        string    `json:"companyName,omitempty"`
	CompanyLogo        string    `json:"companyLogo,omitempty"`
}

func (c *Contract) Kind() docsmith.Kind { return docsmith.KindContract }
func (c *Contract) Identifier() string  { return c.Title }

func (c *Contract) Clone() Record {
	cp := *c
	return &cp
}
