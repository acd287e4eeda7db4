package accounts

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-formwizard/pkg/field"
	"github.com/goliatone/go-formwizard/pkg/storage"
	"github.com/goliatone/go-formwizard/pkg/validation"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

func signupValues() map[string]string {
	return map[string]string{
		"firstName":            "Lina",
		"lastName":             "Diaz",
		"country":              "India",
		"state":                "delhi",
		"email":                "Lina@Example.com",
		"phone":                "9123456789",
		"password":             "Str0ng!Pass",
		"passwordConfirmation": "Str0ng!Pass",
	}
}

func openDirectory(t *testing.T, store storage.Store) *Directory {
	t.Helper()
	dir, err := OpenDirectory(context.Background(), store)
	if err != nil {
		t.Fatalf("open directory: %v", err)
	}
	dir.SetHashCost(bcrypt.MinCost)
	return dir
}

func TestLoadSignup(t *testing.T) {
	def, err := LoadSignup(context.Background())
	if err != nil {
		t.Fatalf("LoadSignup: %v", err)
	}
	if len(def.Steps) != 0 || def.SubmitText != "Sign up" {
		t.Fatalf("signup should be a single-page form, got %d steps, submit %q", len(def.Steps), def.SubmitText)
	}

	var names []string
	for _, f := range def.Fields {
		names = append(names, f.Common().Name)
	}
	want := []string{
		"firstName", "lastName", "country", "state", "email", "phone",
		"password", "passwordConfirmation", "referralCode", "marketingEmails", "termsConditions",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("field names mismatch (-want +got):\n%s", diff)
	}

	byName := map[string]field.Field{}
	for _, f := range def.Fields {
		byName[f.Common().Name] = f
	}
	rules, ok := byName["password"].(field.Password).Validation.(field.PasswordRules)
	if !ok {
		t.Fatalf("password rules missing")
	}
	if rules.Length() != 10 || !rules.SpecialChars() {
		t.Fatalf("unexpected password rules %+v", rules)
	}
	if got := validation.Password("Abcdefg1!", rules); got != "Password must be at least 10 characters long" {
		t.Fatalf("nine characters should fail, got %q", got)
	}
	if _, ok := byName["passwordConfirmation"].(field.Password).Validation.(field.MatchPassword); !ok {
		t.Fatalf("confirmation should match the password")
	}
	if terms := byName["termsConditions"].(field.Checkbox); !terms.Required {
		t.Fatalf("terms must be required")
	}
}

func TestLoadLogin(t *testing.T) {
	def, err := LoadLogin(context.Background())
	if err != nil {
		t.Fatalf("LoadLogin: %v", err)
	}
	if len(def.Fields) != 2 || def.Title != "Welcome Back" {
		t.Fatalf("unexpected login form %+v", def)
	}
	pw := def.Fields[1].(field.Password)
	if !pw.ShowToggle || pw.Validation != nil {
		t.Fatalf("login password should only toggle visibility: %+v", pw)
	}
}

func TestSignupFormThroughWizard(t *testing.T) {
	ctx := context.Background()
	def, err := LoadSignup(ctx)
	if err != nil {
		t.Fatalf("LoadSignup: %v", err)
	}
	store := storage.NewMemory()
	dir := openDirectory(t, store)

	var created Account
	w, err := wizard.NewForm(def.Fields, dir.SignupFunc(func(a Account) { created = a }))
	if err != nil {
		t.Fatalf("NewForm: %v", err)
	}
	for name, value := range signupValues() {
		if name == "phone" {
			err = w.SetPhone(name, value)
		} else {
			err = w.SetValue(name, value)
		}
		if err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}

	if err := w.Submit(ctx); !errors.Is(err, wizard.ErrValidation) {
		t.Fatalf("terms unchecked: want ErrValidation, got %v", err)
	}
	if got := w.State().Errors["termsConditions"]; got == "" {
		t.Fatalf("expected a terms error")
	}

	if err := w.SetChecked("termsConditions", true); err != nil {
		t.Fatalf("SetChecked: %v", err)
	}
	if err := w.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v (errors %v)", err, w.State().Errors)
	}
	if created.Email != "lina@example.com" || created.Phone != "912-345-6789" || created.PasswordHash == "" {
		t.Fatalf("unexpected account %+v", created)
	}
	if created.PasswordHash == "Str0ng!Pass" {
		t.Fatalf("password stored in clear")
	}

	reopened := openDirectory(t, store)
	if _, err := reopened.Authenticate("LINA@example.com", "Str0ng!Pass"); err != nil {
		t.Fatalf("account should survive a reload: %v", err)
	}
}

func TestSignUpRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	dir := openDirectory(t, storage.NewMemory())
	if _, err := dir.SignUp(ctx, Account{Email: "a@b.co", FirstName: "A", LastName: "B"}, "Secret1!xx"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	_, err := dir.SignUp(ctx, Account{Email: " A@B.co ", FirstName: "C", LastName: "D"}, "Secret1!yy")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("want ErrEmailTaken, got %v", err)
	}
	if dir.Len() != 1 {
		t.Fatalf("directory size %d", dir.Len())
	}
}

func TestLoginFunc(t *testing.T) {
	ctx := context.Background()
	dir := openDirectory(t, storage.NewMemory())
	if _, err := dir.SignUp(ctx, Account{Email: "lina@example.com", FirstName: "Lina", LastName: "Diaz"}, "Str0ng!Pass"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	var who string
	login := dir.LoginFunc(func(a Account) { who = a.FullName() })
	if err := login(ctx, field.Values{"email": "lina@example.com", "password": "wrong"}); !errors.Is(err, ErrWrongCredentials) {
		t.Fatalf("want ErrWrongCredentials, got %v", err)
	}
	if err := login(ctx, field.Values{"email": "nobody@example.com", "password": "Str0ng!Pass"}); !errors.Is(err, ErrWrongCredentials) {
		t.Fatalf("unknown email: want ErrWrongCredentials, got %v", err)
	}
	if err := login(ctx, field.Values{"email": "Lina@Example.com", "password": "Str0ng!Pass"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if who != "Lina Diaz" {
		t.Fatalf("onLogin saw %q", who)
	}
}

func TestAccountFromValuesReportsMissing(t *testing.T) {
	_, err := AccountFromValues(field.Values{"email": "a@b.co"})
	if !errors.Is(err, ErrIncompleteAccount) {
		t.Fatalf("want ErrIncompleteAccount, got %v", err)
	}
	if want := "accounts: incomplete account: missing firstName, lastName, password"; err.Error() != want {
		t.Fatalf("want %q, got %q", want, err.Error())
	}
}
