// internal/domain/models/alumni.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Interview difficulty values accepted for InterviewProcess.Difficulty.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// Difficulties lists the accepted difficulty values in display order.
var Difficulties = []string{DifficultyEasy, DifficultyMedium, DifficultyHard}

// IsValidDifficulty reports whether d is blank or one of Difficulties.
func IsValidDifficulty(d string) bool {
	if d == "" {
		return true
	}
	for _, v := range Difficulties {
		if v == d {
			return true
		}
	}
	return false
}

// InterviewProcess describes how an alumnus was hired.
type InterviewProcess struct {
	Rounds      int      `bson:"rounds,omitempty" json:"rounds,omitempty"`
	Description string   `bson:"description,omitempty" json:"description,omitempty"`
	Tips        []string `bson:"tips,omitempty" json:"tips,omitempty"`
	Difficulty  string   `bson:"difficulty,omitempty" json:"difficulty,omitempty"`
}

// Alumni is an entry in the admin-curated alumni directory. Removing an
// entry clears IsActive; inactive entries are hidden from every read.
type Alumni struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name             string             `bson:"name" json:"name"`
	Email            string             `bson:"email" json:"email"`
	CollegeName      string             `bson:"college_name,omitempty" json:"college_name,omitempty"`
	GraduationYear   string             `bson:"graduation_year" json:"graduation_year"`
	Degree           string             `bson:"degree,omitempty" json:"degree,omitempty"`
	CurrentCompany   string             `bson:"current_company" json:"current_company"`
	CurrentRole      string             `bson:"current_role" json:"current_role"`
	Location         string             `bson:"location,omitempty" json:"location,omitempty"`
	Bio              string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Expertise        []string           `bson:"expertise" json:"expertise"`
	SocialLinks      SocialLinks        `bson:"social_links" json:"social_links"`
	InterviewProcess InterviewProcess   `bson:"interview_process" json:"interview_process"`
	PhotoURL         string             `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
	IsActive         bool               `bson:"is_active" json:"is_active"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}

// CompanyCount and YearCount are rows of the alumni stats overview.
type CompanyCount struct {
	Company string `bson:"_id" json:"company"`
	Count   int64  `bson:"count" json:"count"`
}

type YearCount struct {
	Year  string `bson:"_id" json:"year"`
	Count int64  `bson:"count" json:"count"`
}

// AlumniStats summarises the active alumni directory.
type AlumniStats struct {
	Total        int64          `json:"total"`
	TopCompanies []CompanyCount `json:"top_companies"`
	ByYear       []YearCount    `json:"by_year"`
}
