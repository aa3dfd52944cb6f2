package record

import (
	"time"

	"github.com/lvillar/docsmith"
)

// Placeholder images used by editors that offer a logo or profile photo.
const (
	PlaceholderLogo    = "https://placehold.co/150x50.png"
	PlaceholderProfile = "https://placehold.co/150x150.png"
)

// Sample returns the starting draft an editor shows for kind, dated now.
// Samples reference no remote images, so they export without network access.
func Sample(kind docsmith.Kind, now time.Time) (Record, error) {
	switch kind {
	case docsmith.KindInvoice:
		inv := sampleInvoice(now)
		return &inv, nil
	case docsmith.KindQuotation:
		inv := sampleInvoice(now)
		inv.InvoiceNumber = ""
		inv.ClientName = "Future Client"
		inv.ClientEmail = "contact@futureclient.com"
		inv.ClientAddress = "456 Prospect Ave\nSomecity, USA 67890"
		inv.Items = []Item{
			{ID: "1", Name: "Initial Project Consultation", Quantity: 2, Price: 150},
			{ID: "2", Name: "Website Design Mockup", Quantity: 1, Price: 750},
		}
		inv.TaxRate = 0
		inv.Notes = "This quotation is valid for 14 days. Prices are subject to change afterwards."
		return &Quotation{
			Invoice:         inv,
			QuotationNumber: "QUO-001",
			ValidUntil:      now.AddDate(0, 0, 14),
		}, nil
	case docsmith.KindCV:
		return &CV{
			PersonalInfo: samplePerson(),
			Summary: "A highly motivated and results-oriented professional with a proven track record of success in fast-paced environments. " +
				"Seeking a challenging role to leverage my skills in project management and software development.",
			Experience: []Experience{
				{
					ID:          "1",
					Company:     "Tech Solutions Inc.",
					Title:       "Senior Software Engineer",
					StartDate:   "Jan 2020",
					EndDate:     "Present",
					Description: "- Led the development of a new client-facing web application, resulting in a 20% increase in user engagement.\n- Mentored junior engineers and conducted code reviews to ensure code quality and best practices.",
				},
				{
					ID:          "2",
					Company:     "Web Innovators",
					Title:       "Software Engineer",
					StartDate:   "Jun 2017",
					EndDate:     "Dec 2019",
					Description: "- Contributed to the development of a large-scale e-commerce platform.\n- Implemented new features and resolved bugs to improve application performance and user experience.",
				},
			},
			Education: []Education{
				{ID: "1", School: "State University", Degree: "B.S. in Computer Science", StartDate: "2013", EndDate: "2017"},
			},
			Skills: []string{"JavaScript", "React", "Node.js", "Project Management", "Agile Methodologies"},
		}, nil
	case docsmith.KindCoverLetter:
		return &CoverLetter{
			PersonalInfo: samplePerson(),
			RecipientInfo: Recipient{
				Name:    "Jane Smith",
				Title:   "Hiring Manager",
				Company: "Tech Solutions Inc.",
				Address: "456 Corporate Blvd, Business City, USA",
			},
			Date:    now,
			Subject: "Application for Senior Software Engineer Position",
			Body: "Dear Ms. Smith,\n\n" +
				"I am writing to express my keen interest in the Senior Software Engineer position at Tech Solutions Inc. " +
				"With my extensive experience in developing scalable web applications and my passion for innovative technologies, " +
				"I am confident I would be a valuable asset to your team.\n\n" +
				"My resume provides further detail on my qualifications and accomplishments. Thank you for your time and consideration. " +
				"I look forward to the possibility of discussing this exciting opportunity with you.",
			Closing: "Sincerely,",
		}, nil
	case docsmith.KindContract:
		return &Contract{
			Title:              "Service Agreement",
			ClientName:         "Client Name",
			ContractorName:     "Your Name / Company",
			EffectiveDate:      now,
			ScopeOfWork:        "- Development of a new website.\n- Deployment and testing.\n- Basic SEO setup.",
			PaymentTerms:       "- 50% upfront.\n- 50% upon completion.",
			TermsAndConditions: "1. All work will be completed within the agreed-upon timeframe.\n2. Any changes to the scope of work must be submitted in writing.",
			CompanyName:        "Your Company Inc.",
		}, nil
	case docsmith.KindBusinessCard:
		return &BusinessCard{
			Name:        "John Doe",
			Title:       "CEO & Founder",
			CompanyName: "Creative Solutions",
			Email:       "john.doe@creativesolutions.com",
			Phone:       "+1 234 567 890",
			Website:     "www.creativesolutions.com",
			Address:     "123 Design Lane, Art City, 54321",
			AccentColor: "#3b82f6",
		}, nil
	}
	return New(kind)
}

func sampleInvoice(now time.Time) Invoice {
	return Invoice{
		InvoiceNumber: "INV-001",
		Date:          now,
		ClientName:    "Acme Inc.",
		ClientEmail:   "contact@acme.com",
		ClientAddress: "123 Main Street\nAnytown, USA 12345",
		Items: []Item{
			{ID: "1", Name: "Premium Website Hosting", Quantity: 1, Price: 120},
			{ID: "2", Name: "Domain Name Registration", Quantity: 1, Price: 15},
		},
		TaxRate:        8.5,
		Notes:          "Payment is due within 30 days. Thank you for your business!",
		CompanyName:    "Your Company Inc.",
		CompanyAddress: "123 Business Rd, Suite 100\nBusiness City, 12345",
		CompanyEmail:   "your-email@company.com",
		Currency:       DefaultCurrency,
	}
}

func samplePerson() PersonalInfo {
	return PersonalInfo{
		Name:    "John Doe",
		Email:   "john.doe@example.com",
		Phone:   "123-456-7890",
		Address: "123 Main St, Anytown USA",
		Website: "johndoe.com",
	}
}
