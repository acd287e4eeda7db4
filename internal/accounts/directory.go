package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-formwizard/pkg/field"
	"github.com/goliatone/go-formwizard/pkg/liststore"
	"github.com/goliatone/go-formwizard/pkg/storage"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

// StorageKey holds the directory in the backing store.
const StorageKey = "accounts"

var (
	// ErrEmailTaken is returned when signing up with a registered email.
	ErrEmailTaken = errors.New("accounts: email already registered")
	// ErrWrongCredentials is returned when the email or password does not
	// match an account.
	ErrWrongCredentials = errors.New("accounts: wrong email or password")
	// ErrIncompleteAccount is returned when submitted values lack a required
	// account attribute.
	ErrIncompleteAccount = errors.New("accounts: incomplete account")
)

// Account is a registered user. The password is kept as a bcrypt hash.
type Account struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Country         string    `json:"country"`
	State           string    `json:"state"`
	Phone           string    `json:"phone"`
	ReferralCode    string    `json:"referralCode,omitempty"`
	MarketingEmails bool      `json:"marketingEmails"`
	PasswordHash    string    `json:"passwordHash"`
	CreatedDate     time.Time `json:"createdDate"`
}

func (a Account) ItemID() string { return a.ID }

func (a Account) Stamp(id string, created time.Time) Account {
	a.ID = id
	a.CreatedDate = created
	return a
}

// FullName joins first and last name.
func (a Account) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// CheckPassword reports whether plaintext matches the stored hash.
func (a Account) CheckPassword(plaintext string) bool {
	if a.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plaintext)) == nil
}

// NormalizeEmail lowercases and trims an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Directory is the persisted set of accounts, unique by email.
type Directory struct {
	list   *liststore.List[Account]
	cost   int
	logger *slog.Logger

	// mu makes the email check and the insert of SignUp atomic.
	mu sync.Mutex
}

// OpenDirectory loads the directory from store.
func OpenDirectory(ctx context.Context, store storage.Store, opts ...liststore.Option) (*Directory, error) {
	list, err := liststore.Open[Account](ctx, store, StorageKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("accounts: open directory: %w", err)
	}
	return &Directory{list: list, cost: bcrypt.DefaultCost, logger: slog.Default()}, nil
}

// SetHashCost overrides bcrypt.DefaultCost for new passwords. Values
// outside bcrypt's range are ignored.
func (d *Directory) SetHashCost(cost int) {
	if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
		d.cost = cost
	}
}

// Lookup returns the account registered under email.
func (d *Directory) Lookup(email string) (Account, bool) {
	email = NormalizeEmail(email)
	found := d.list.Find(func(a Account) bool { return a.Email == email })
	if len(found) == 0 {
		return Account{}, false
	}
	return found[0], true
}

// Len returns the number of accounts.
func (d *Directory) Len() int {
	return d.list.Len()
}

// SignUp hashes password and stores a.
func (d *Directory) SignUp(ctx context.Context, a Account, password string) (Account, error) {
	a.Email = NormalizeEmail(a.Email)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.cost)
	if err != nil {
		return Account{}, fmt.Errorf("accounts: hash password: %w", err)
	}
	a.PasswordHash = string(hash)

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, taken := d.Lookup(a.Email); taken {
		return Account{}, ErrEmailTaken
	}
	added, err := d.list.Add(ctx, a)
	if err != nil {
		return Account{}, err
	}
	d.logger.Info("account_created", "account_id", added.ID)
	return added, nil
}

// Authenticate returns the account matching email and password.
func (d *Directory) Authenticate(email, password string) (Account, error) {
	a, ok := d.Lookup(email)
	if !ok || !a.CheckPassword(password) {
		return Account{}, ErrWrongCredentials
	}
	return a, nil
}

// SignupFunc adapts the directory into the sign up form's submit handler.
// onCreated, when set, sees the stored account.
func (d *Directory) SignupFunc(onCreated func(Account)) wizard.SubmitFunc {
	return func(ctx context.Context, values field.Values) error {
		a, err := AccountFromValues(values)
		if err != nil {
			return err
		}
		added, err := d.SignUp(ctx, a, values.String(field.PasswordFieldName))
		if err != nil {
			return err
		}
		if onCreated != nil {
			onCreated(added)
		}
		return nil
	}
}

// LoginFunc adapts the directory into the sign in form's submit handler.
// A wrong email or password fails the submit with ErrWrongCredentials.
func (d *Directory) LoginFunc(onLogin func(Account)) wizard.SubmitFunc {
	return func(_ context.Context, values field.Values) error {
		a, err := d.Authenticate(values.String("email"), values.String(field.PasswordFieldName))
		if err != nil {
			d.logger.Warn("account_login_failed", "error", err)
			return err
		}
		if onLogin != nil {
			onLogin(a)
		}
		return nil
	}
}

// AccountFromValues converts submitted sign up values. The password is not
// copied; SignUp hashes it.
func AccountFromValues(values field.Values) (Account, error) {
	a := Account{
		Email:           NormalizeEmail(values.String("email")),
		FirstName:       strings.TrimSpace(values.String("firstName")),
		LastName:        strings.TrimSpace(values.String("lastName")),
		Country:         values.String("country"),
		State:           values.String("state"),
		Phone:           values.String("phone"),
		ReferralCode:    strings.TrimSpace(values.String("referralCode")),
		MarketingEmails: values.Bool("marketingEmails"),
	}
	var missing []string
	for name, value := range map[string]string{
		"email":     a.Email,
		"firstName": a.FirstName,
		"lastName":  a.LastName,
		"password":  values.String(field.PasswordFieldName),
	} {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return Account{}, fmt.Errorf("%w: missing %s", ErrIncompleteAccount, strings.Join(missing, ", "))
	}
	return a, nil
}
