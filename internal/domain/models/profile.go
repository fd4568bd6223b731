// internal/domain/models/profile.go
package models

// Year values accepted for Profile.Year.
const (
	YearFirst  = "1st"
	YearSecond = "2nd"
	YearThird  = "3rd"
	YearFourth = "4th"
	YearAlumni = "alumni"
)

// Years lists the accepted Profile.Year values in display order.
var Years = []string{YearFirst, YearSecond, YearThird, YearFourth, YearAlumni}

// IsValidYear reports whether y is blank or one of Years.
func IsValidYear(y string) bool {
	if y == "" {
		return true
	}
	for _, v := range Years {
		if v == y {
			return true
		}
	}
	return false
}

// SocialLinks holds optional profile URLs.
type SocialLinks struct {
	LinkedIn  string `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	GitHub    string `bson:"github,omitempty" json:"github,omitempty"`
	Twitter   string `bson:"twitter,omitempty" json:"twitter,omitempty"`
	Instagram string `bson:"instagram,omitempty" json:"instagram,omitempty"`
	Portfolio string `bson:"portfolio,omitempty" json:"portfolio,omitempty"`
}

// Profile is shared by PendingSignup and Account and copied verbatim on
// promotion.
type Profile struct {
	SkillsWanted []string    `bson:"skills_wanted" json:"wants_to_learn"`
	SkillsTaught []string    `bson:"skills_taught" json:"can_teach"`
	Skills       []string    `bson:"skills,omitempty" json:"skills,omitempty"`
	Age          int         `bson:"age,omitempty" json:"age,omitempty"`
	Gender       string      `bson:"gender,omitempty" json:"gender,omitempty"`
	About        string      `bson:"about,omitempty" json:"about,omitempty"`
	Bio          string      `bson:"bio,omitempty" json:"bio,omitempty"` // max 500 chars
	College      string      `bson:"college,omitempty" json:"college,omitempty"`
	Year         string      `bson:"year,omitempty" json:"year,omitempty"`
	SocialLinks  SocialLinks `bson:"social_links" json:"social_links"`
	PhotoURL     string      `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
}

// MaxBioLength bounds Profile.Bio in characters.
const MaxBioLength = 500
