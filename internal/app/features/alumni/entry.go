// internal/app/features/alumni/entry.go
package alumni

import (
	"fmt"
	"strings"
	"unicode/utf8"

	alumnistore "github.com/dalemusser/peerhub/internal/app/store/alumni"
	"github.com/dalemusser/peerhub/internal/app/system/apperr"
	"github.com/dalemusser/peerhub/internal/app/system/inputval"
	"github.com/dalemusser/peerhub/internal/app/system/normalize"
	"github.com/dalemusser/peerhub/internal/app/system/profilefields"
	"github.com/dalemusser/peerhub/internal/domain/models"
	"github.com/samber/lo"
)

// Limits on alumni text fields, in characters.
const (
	maxFieldLength       = 200
	maxYearLength        = 20
	maxDescriptionLength = 2000
	maxRounds            = 20
)

const msgRequired = "Name, email, graduation year, current company, and current role are required"

// entryRequest is the body of POST and PUT /alumni. Absent keys stay nil,
// so the same shape serves a full create and a partial update.
type entryRequest struct {
	Name             *string                  `json:"name"`
	Email            *string                  `json:"email"`
	CollegeName      *string                  `json:"college_name"`
	GraduationYear   *string                  `json:"graduation_year"`
	Degree           *string                  `json:"degree"`
	CurrentCompany   *string                  `json:"current_company"`
	CurrentRole      *string                  `json:"current_role"`
	Location         *string                  `json:"location"`
	Bio              *string                  `json:"bio"`
	Expertise        *[]string                `json:"expertise"`
	SocialLinks      *models.SocialLinks      `json:"social_links"`
	InterviewProcess *models.InterviewProcess `json:"interview_process"`
	PhotoURL         *string                  `json:"photo_url"`
	IsActive         *bool                    `json:"is_active"`
}

// required are the fields a new entry must carry.
func (req entryRequest) required() []*string {
	return []*string{req.Name, req.Email, req.GraduationYear, req.CurrentCompany, req.CurrentRole}
}

// hasRequired reports whether every required field is present and not
// blank.
func (req entryRequest) hasRequired() bool {
	return lo.EveryBy(req.required(), func(p *string) bool {
		return p != nil && strings.TrimSpace(*p) != ""
	})
}

// blanksRequired reports whether a required field is present but blank.
func (req entryRequest) blanksRequired() bool {
	return lo.SomeBy(req.required(), func(p *string) bool {
		return p != nil && strings.TrimSpace(*p) == ""
	})
}

func text(label string, limit int) func(string) (string, error) {
	return func(s string) (string, error) {
		t := profilefields.Text(s)
		if utf8.RuneCountInString(t) > limit {
			return "", apperr.Validation(fmt.Sprintf("%s must be at most %d characters.", label, limit))
		}
		return t, nil
	}
}

func email(s string) (string, error) {
	e := normalize.Email(s)
	if !inputval.IsValidEmail(e) {
		return "", apperr.Validation("A valid email address is required.")
	}
	return e, nil
}

func interview(p models.InterviewProcess) (models.InterviewProcess, error) {
	var err error
	out := models.InterviewProcess{Rounds: p.Rounds, Difficulty: strings.TrimSpace(p.Difficulty)}
	if out.Rounds < 0 || out.Rounds > maxRounds {
		return out, apperr.Validation(fmt.Sprintf("Interview rounds must be between 0 and %d.", maxRounds))
	}
	if !models.IsValidDifficulty(out.Difficulty) {
		return out, apperr.Validation("Interview difficulty must be one of: " + strings.Join(models.Difficulties, ", ") + ".")
	}
	if out.Description, err = text("Interview description", maxDescriptionLength)(p.Description); err != nil {
		return out, err
	}
	out.Tips = lo.Compact(lo.Map(p.Tips, func(t string, _ int) string { return profilefields.Text(t) }))
	return out, nil
}

// clean runs every present field through its rule. Failures are
// validation errors carrying the message shown to the client.
func (req entryRequest) clean() (alumnistore.Changes, error) {
	var ch alumnistore.Changes

	str := func(in *string, clean func(string) (string, error)) (*string, error) {
		if in == nil {
			return nil, nil
		}
		v, err := clean(*in)
		if err != nil {
			return nil, asValidation(err)
		}
		return &v, nil
	}
	photo := func(s string) (string, error) { return profilefields.URL("Photo URL", s) }

	var err error
	for _, f := range []struct {
		in    *string
		out   **string
		clean func(string) (string, error)
	}{
		{req.Name, &ch.Name, profilefields.Name},
		{req.Email, &ch.Email, email},
		{req.CollegeName, &ch.CollegeName, profilefields.College},
		{req.GraduationYear, &ch.GraduationYear, text("Graduation year", maxYearLength)},
		{req.Degree, &ch.Degree, text("Degree", maxFieldLength)},
		{req.CurrentCompany, &ch.CurrentCompany, text("Current company", maxFieldLength)},
		{req.CurrentRole, &ch.CurrentRole, text("Current role", maxFieldLength)},
		{req.Location, &ch.Location, text("Location", maxFieldLength)},
		{req.Bio, &ch.Bio, profilefields.Bio},
		{req.PhotoURL, &ch.PhotoURL, photo},
	} {
		if *f.out, err = str(f.in, f.clean); err != nil {
			return ch, err
		}
	}

	if req.Expertise != nil {
		v := profilefields.Skills(*req.Expertise)
		ch.Expertise = &v
	}
	if req.SocialLinks != nil {
		links, err := profilefields.SocialLinks(*req.SocialLinks)
		if err != nil {
			return ch, asValidation(err)
		}
		ch.SocialLinks = &links
	}
	if req.InterviewProcess != nil {
		p, err := interview(*req.InterviewProcess)
		if err != nil {
			return ch, err
		}
		ch.InterviewProcess = &p
	}
	ch.IsActive = req.IsActive
	return ch, nil
}

// asValidation keeps apperr values and turns profilefields messages into
// validation errors.
func asValidation(err error) error {
	if apperr.KindOf(err) == apperr.KindValidation {
		return err
	}
	return apperr.Validation(err.Error())
}

// newEntry builds a new entry from cleaned changes.
func newEntry(ch alumnistore.Changes) models.Alumni {
	a := models.Alumni{
		Name:           lo.FromPtr(ch.Name),
		Email:          lo.FromPtr(ch.Email),
		CollegeName:    lo.FromPtr(ch.CollegeName),
		GraduationYear: lo.FromPtr(ch.GraduationYear),
		Degree:         lo.FromPtr(ch.Degree),
		CurrentCompany: lo.FromPtr(ch.CurrentCompany),
		CurrentRole:    lo.FromPtr(ch.CurrentRole),
		Location:       lo.FromPtr(ch.Location),
		Bio:            lo.FromPtr(ch.Bio),
		PhotoURL:       lo.FromPtr(ch.PhotoURL),
		Expertise:      lo.FromPtr(ch.Expertise),
	}
	if ch.SocialLinks != nil {
		a.SocialLinks = *ch.SocialLinks
	}
	if ch.InterviewProcess != nil {
		a.InterviewProcess = *ch.InterviewProcess
	}
	return a
}
