package players

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/goliatone/go-formwizard/pkg/field"
	"github.com/goliatone/go-formwizard/pkg/visibility/expr"
)

// Skill levels offered by the registration form.
const (
	SkillBeginner     = "Beginner"
	SkillIntermediate = "Intermediate"
	SkillAdvanced     = "Advanced"
	SkillProfessional = "Professional"
)

// ErrIncompleteProfile is returned when submitted values lack a required
// profile attribute.
var ErrIncompleteProfile = errors.New("players: incomplete profile")

// Profile is a registered player.
type Profile struct {
	ID                 string    `json:"id"`
	FirstName          string    `json:"firstName"`
	LastName           string    `json:"lastName"`
	Birthday           string    `json:"birthday"`
	Position           string    `json:"position"`
	SkillLevel         string    `json:"skillLevel"`
	Licensed           string    `json:"licensed"`
	ClubCategory       string    `json:"clubCategory,omitempty"`
	GenderCategory     string    `json:"genderCategory"`
	PreviousExperience string    `json:"previousExperience,omitempty"`
	MedicalConditions  string    `json:"medicalConditions,omitempty"`
	EmergencyContact   string    `json:"emergencyContact"`
	EmergencyPhone     string    `json:"emergencyPhone"`
	Avatar             string    `json:"avatar,omitempty"`
	CreatedDate        time.Time `json:"createdDate"`
	GamesPlayed        int       `json:"gamesPlayed"`
	Goals              int       `json:"goals"`
	Assists            int       `json:"assists"`
	IsActive           bool      `json:"isActive"`
}

func (p Profile) ItemID() string { return p.ID }

// Stamp gives a new registration its id and creation time and resets the
// match statistics.
func (p Profile) Stamp(id string, created time.Time) Profile {
	p.ID = id
	p.CreatedDate = created
	p.GamesPlayed = 0
	p.Goals = 0
	p.Assists = 0
	p.IsActive = true
	return p
}

// FullName joins first and last name.
func (p Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Age returns the player's age in whole years on now.
func (p Profile) Age(now time.Time) (int, bool) {
	return expr.AgeOn(p.Birthday, now)
}

// ProfileFromValues converts submitted registration values. The uploaded
// avatar is referenced by URL.
func ProfileFromValues(values field.Values) (Profile, error) {
	p := Profile{
		FirstName:          strings.TrimSpace(values.String("firstName")),
		LastName:           strings.TrimSpace(values.String("lastName")),
		Birthday:           values.String("birthday"),
		Position:           values.String("position"),
		SkillLevel:         values.String("skillLevel"),
		Licensed:           values.String("licensed"),
		ClubCategory:       values.String("clubCategory"),
		GenderCategory:     values.String("genderCategory"),
		PreviousExperience: strings.TrimSpace(values.String("previousExperience")),
		MedicalConditions:  strings.TrimSpace(values.String("medicalConditions")),
		EmergencyContact:   strings.TrimSpace(values.String("emergencyContact")),
		EmergencyPhone:     values.String("emergencyPhone"),
	}
	if ref, ok := values.File("avatar"); ok {
		p.Avatar = ref.URL
	}

	var missing []string
	for name, value := range map[string]string{
		"firstName":        p.FirstName,
		"lastName":         p.LastName,
		"birthday":         p.Birthday,
		"position":         p.Position,
		"skillLevel":       p.SkillLevel,
		"licensed":         p.Licensed,
		"genderCategory":   p.GenderCategory,
		"emergencyContact": p.EmergencyContact,
		"emergencyPhone":   p.EmergencyPhone,
	} {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return Profile{}, fmt.Errorf("%w: missing %s", ErrIncompleteProfile, strings.Join(missing, ", "))
	}
	return p, nil
}
