package record

import (
	"time"

	"github.com/lvillar/docsmith"
)

// PersonalInfo identifies the author of a CV or cover letter.
type PersonalInfo struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	Website      string `json:"website"`
	ProfileImage string `json:"profileImage,omitempty"`
}

// Experience is one position in a CV.
type Experience struct {
	ID          string `json:"id"`
	Company     string `json:"company"`
	Title       string `json:"title"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
}

// Education is one degree in a CV.
type Education struct {
	ID        string `json:"id"`
	School    string `json:"school"`
	Degree    string `json:"degree"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// CV is a curriculum vitae.
type CV struct {
	PersonalInfo PersonalInfo `json:"personalInfo"`
	Summary      string       `json:"summary"`
	Experience   []Experience `json:"experience"`
	Education    []Education  `json:"education"`
	Skills       []string     `json:"skills"`
}

func (cv *CV) Kind() docsmith.Kind { return docsmith.KindCV }
func (cv *CV) Identifier() string  { return cv.PersonalInfo.Name }

func (cv *CV) Clone() Record {
	c := *cv
	c.Experience = append([]Experience(nil), cv.Experience...)
	c.Education = append([]Education(nil), cv.Education...)
	c.Skills = append([]string(nil), cv.Skills...)
	return &c
}

// Recipient is the addressee of a cover letter.
type Recipient struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Company string `json:"company"`
	Address string `json:"address"`
}

// CoverLetter is a job application letter.
type CoverLetter struct {
	PersonalInfo  PersonalInfo `json:"personalInfo"`
	RecipientInfo Recipient    `json:"recipientInfo"`
	Date          time.Time    `json:"date"`
	Subject       string       `json:"subject"`
	Body          string       `json:"body"`
	Closing       string       `json:"closing"`
}

func (cl *CoverLetter) Kind() docsmith.Kind { return docsmith.KindCoverLetter }
func (cl *CoverLetter) Identifier() string  { return cl.PersonalInfo.Name }

func (cl *CoverLetter) Clone() Record {
	c := *cl
	return &c
}
