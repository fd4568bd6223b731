// Package profilefields cleans user-supplied profile fields before they are
// stored. Signup and profile edit share it so both paths store the same
// shapes.
package profilefields

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dalemusser/peerhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/peerhub/internal/app/system/inputval"
	"github.com/dalemusser/peerhub/internal/app/system/normalize"
	"github.com/dalemusser/peerhub/internal/app/system/skills"
	"github.com/dalemusser/peerhub/internal/domain/models"
)

// Limits on free-text fields, in characters.
const (
	MaxNameLength    = 100
	MaxAboutLength   = 1000
	MaxCollegeLength = 200
	MaxAge           = 120
	MinAge           = 13
)

// Genders accepted for Profile.Gender. Blank is always allowed.
var Genders = []string{"male", "female", "other"}

// Text strips markup and surrounding space from a free-text field.
func Text(s string) string {
	return strings.TrimSpace(htmlsanitize.Text(s))
}

// Name cleans a first or last name.
func Name(s string) (string, error) {
	n := normalize.Name(htmlsanitize.Text(s))
	if n == "" {
		return "", errors.New("Name is required.")
	}
	if utf8.RuneCountInString(n) > MaxNameLength {
		return "", fmt.Errorf("Name must be at most %d characters.", MaxNameLength)
	}
	return n, nil
}

// Bio cleans the short biography and enforces models.MaxBioLength.
func Bio(s string) (string, error) {
	b := Text(s)
	if utf8.RuneCountInString(b) > models.MaxBioLength {
		return "", fmt.Errorf("Bio must be at most %d characters.", models.MaxBioLength)
	}
	return b, nil
}

// About cleans the long description.
func About(s string) (string, error) {
	a := Text(s)
	if utf8.RuneCountInString(a) > MaxAboutLength {
		return "", fmt.Errorf("About must be at most %d characters.", MaxAboutLength)
	}
	return a, nil
}

// College cleans the college name.
func College(s string) (string, error) {
	c := Text(s)
	if utf8.RuneCountInString(c) > MaxCollegeLength {
		return "", fmt.Errorf("College must be at most %d characters.", MaxCollegeLength)
	}
	return c, nil
}

// Age checks the optional age. Zero means unset.
func Age(n int) error {
	if n == 0 {
		return nil
	}
	if n < MinAge || n > MaxAge {
		return fmt.Errorf("Age must be between %d and %d.", MinAge, MaxAge)
	}
	return nil
}

// Gender normalizes and checks the optional gender.
func Gender(s string) (string, error) {
	g := normalize.Gender(s)
	if g == "" {
		return "", nil
	}
	for _, v := range Genders {
		if v == g {
			return g, nil
		}
	}
	return "", fmt.Errorf("Gender must be one of: %s.", strings.Join(Genders, ", "))
}

// Year checks the optional academic year.
func Year(s string) (string, error) {
	y := strings.ToLower(strings.TrimSpace(s))
	if !models.IsValidYear(y) {
		return "", fmt.Errorf("Year must be one of: %s.", strings.Join(models.Years, ", "))
	}
	return y, nil
}

// URL checks an optional http(s) link.
func URL(label, s string) (string, error) {
	u := strings.TrimSpace(s)
	if u == "" {
		return "", nil
	}
	if !inputval.IsValidHTTPURL(u) {
		return "", fmt.Errorf("%s must be a valid http or https URL.", label)
	}
	return u, nil
}

// SocialLinks checks every link.
func SocialLinks(l models.SocialLinks) (models.SocialLinks, error) {
	var err error
	out := models.SocialLinks{}
	fields := []struct {
		label string
		in    string
		out   *string
	}{
		{"LinkedIn", l.LinkedIn, &out.LinkedIn},
		{"GitHub", l.GitHub, &out.GitHub},
		{"Twitter", l.Twitter, &out.Twitter},
		{"Instagram", l.Instagram, &out.Instagram},
		{"Portfolio", l.Portfolio, &out.Portfolio},
	}
	for _, f := range fields {
		if *f.out, err = URL(f.label, f.in); err != nil {
			return models.SocialLinks{}, err
		}
	}
	return out, nil
}

// Skills normalizes a skill list; it never fails.
func Skills(list []string) []string {
	return skills.List(list)
}

// Clean applies every rule to a whole profile and returns the cleaned copy
// or the first problem found.
func Clean(p models.Profile) (models.Profile, error) {
	var err error
	out := p
	out.SkillsWanted = Skills(p.SkillsWanted)
	out.SkillsTaught = Skills(p.SkillsTaught)
	if p.Skills != nil {
		out.Skills = Skills(p.Skills)
	}
	if err = Age(p.Age); err != nil {
		return models.Profile{}, err
	}
	if out.Gender, err = Gender(p.Gender); err != nil {
		return models.Profile{}, err
	}
	if out.About, err = About(p.About); err != nil {
		return models.Profile{}, err
	}
	if out.Bio, err = Bio(p.Bio); err != nil {
		return models.Profile{}, err
	}
	if out.College, err = College(p.College); err != nil {
		return models.Profile{}, err
	}
	if out.Year, err = Year(p.Year); err != nil {
		return models.Profile{}, err
	}
	if out.SocialLinks, err = SocialLinks(p.SocialLinks); err != nil {
		return models.Profile{}, err
	}
	if out.PhotoURL, err = URL("Photo URL", p.PhotoURL); err != nil {
		return models.Profile{}, err
	}
	return out, nil
}
