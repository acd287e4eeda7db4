package vanilla

// ChromeClass is a typed identifier for semantic chrome CSS classes.
type ChromeClass string

const (
	ClassForm     ChromeClass = "fw-form"
	ClassSteps    ChromeClass = "fw-steps"
	ClassProgress ChromeClass = "fw-progress"
	ClassGrid     ChromeClass = "fw-grid"
	ClassField    ChromeClass = "fw-field"
	ClassError    ChromeClass = "fw-error"
	ClassActions  ChromeClass = "fw-actions"
	ClassFlash    ChromeClass = "fw-flash"
)

// Classes lets callers swap the chrome class names for their own design
// system. Empty entries fall back to the defaults.
type Classes struct {
	Form     string `json:"form"`
	Steps    string `json:"steps"`
	Progress string `json:"progress"`
	Grid     string `json:"grid"`
	Field    string `json:"field"`
	Error    string `json:"error"`
	Actions  string `json:"actions"`
	Flash    string `json:"flash"`
}

// DefaultClasses returns the built-in class names.
func DefaultClasses() Classes {
	return Classes{
		Form:     string(ClassForm),
		Steps:    string(ClassSteps),
		Progress: string(ClassProgress),
		Grid:     string(ClassGrid),
		Field:    string(ClassField),
		Error:    string(ClassError),
		Actions:  string(ClassActions),
		Flash:    string(ClassFlash),
	}
}

func (c Classes) withDefaults() Classes {
	d := DefaultClasses()
	pick := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}
	return Classes{
		Form:     pick(c.Form, d.Form),
		Steps:    pick(c.Steps, d.Steps),
		Progress: pick(c.Progress, d.Progress),
		Grid:     pick(c.Grid, d.Grid),
		Field:    pick(c.Field, d.Field),
		Error:    pick(c.Error, d.Error),
		Actions:  pick(c.Actions, d.Actions),
		Flash:    pick(c.Flash, d.Flash),
	}
}
