// Package webapp serves the player registration wizard and the sign up and
// sign in forms over HTTP. Each browser gets its own wizard instance per
// page, keyed by a cookie, whose progress is persisted through a
// progress.Store.
package webapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"

	"github.com/goliatone/go-formwizard/internal/accounts"
	"github.com/goliatone/go-formwizard/internal/players"
	"github.com/goliatone/go-formwizard/pkg/field"
	"github.com/goliatone/go-formwizard/pkg/progress"
	"github.com/goliatone/go-formwizard/pkg/render"
	"github.com/goliatone/go-formwizard/pkg/schema"
	"github.com/goliatone/go-formwizard/pkg/upload"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

// Routes and names used by the server.
const (
	RegisterPath   = "/register"
	SignupPath     = "/signup"
	LoginPath      = "/login"
	PlayersPath    = "/players"
	UploadsPath    = "/api/uploads"
	FilesPath      = "/files/"
	AssetsPath     = "/assets/"
	HealthPath     = "/healthz"
	InstanceCookie = "formwizard_instance"
	CSRFFieldName  = "gorilla.csrf.Token"

	// DefaultRenderer answers requests whose Accept header names no
	// registered renderer.
	DefaultRenderer = "vanilla"

	maxFormMemory = 32 << 20
)

// Config wires the collaborators of a Server.
type Config struct {
	Definition schema.Definition
	Roster     *players.Roster
	// Accounts enables the sign up and sign in pages built from Signup and
	// Login.
	Accounts  *accounts.Directory
	Signup    schema.Definition
	Login     schema.Definition
	Progress  progress.Store
	Renderers *render.Registry
	Uploader  upload.Client
	// Uploads, when set, serves the upload endpoint and stored files.
	Uploads *DiskUploads
	Logger  *slog.Logger
	// MaxInstances caps the wizards kept in memory and InstanceTTL drops
	// idle ones. Zero values take DefaultMaxInstances and
	// DefaultInstanceTTL.
	MaxInstances int
	InstanceTTL  time.Duration
}

// page is one wizard-backed form.
type page struct {
	path   string
	prefix string
	title  string
	// build returns a wizard for one instance. note records the flash shown
	// after a successful submit.
	build func(note func(string), opts []wizard.Option) (*wizard.Wizard, error)
	// rejected maps a submit callback error to a flash and status.
	rejected func(error) (string, int, bool)
	busy     string
	failed   string
	// ephemeral pages keep no drafts.
	ephemeral bool
}

// instanceKey keeps the drafts of different pages apart in the store.
func (p *page) instanceKey(key string) string {
	if p.prefix == "" {
		return key
	}
	return p.prefix + "-" + key
}

// Server holds the live wizards of every page.
type Server struct {
	cfg    Config
	logger *slog.Logger
	pages  []*page
	live   *instances

	mu      sync.Mutex
	flashes map[string]string
	newKey  func() string
}

// New validates cfg and returns a Server.
func New(cfg Config) (*Server, error) {
	if len(cfg.Definition.Steps) == 0 {
		return nil, errors.New("webapp: definition has no steps")
	}
	if cfg.Roster == nil {
		return nil, errors.New("webapp: roster is required")
	}
	if cfg.Renderers == nil || !cfg.Renderers.Has(DefaultRenderer) {
		return nil, fmt.Errorf("webapp: renderer %q must be registered", DefaultRenderer)
	}
	if cfg.Accounts != nil && (len(cfg.Signup.Fields) == 0 || len(cfg.Login.Fields) == 0) {
		return nil, errors.New("webapp: accounts need single-page signup and login definitions")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		live:    newInstances(cfg.MaxInstances, cfg.InstanceTTL),
		flashes: make(map[string]string),
		newKey:  uuid.NewString,
	}
	s.pages = append(s.pages, s.registerPage())
	if cfg.Accounts != nil {
		s.pages = append(s.pages, s.signupPage(), s.loginPage())
	}
	return s, nil
}

func (s *Server) registerPage() *page {
	return &page{
		path:  RegisterPath,
		title: s.cfg.Definition.Title,
		build: func(note func(string), opts []wizard.Option) (*wizard.Wizard, error) {
			submit := s.cfg.Roster.SubmitFunc(func(p players.Profile) {
				note(fmt.Sprintf("Player profile created successfully! **%s** has been added to your team.", p.FullName()))
			})
			opts = append(opts, wizard.WithSubmitText(s.cfg.Definition.SubmitText))
			return wizard.New(s.cfg.Definition.Steps, submit, opts...)
		},
		busy:   "Your registration is already being processed.",
		failed: "Failed to create player profile. Please try again or contact support if the problem persists.",
	}
}

func (s *Server) signupPage() *page {
	return &page{
		path:   SignupPath,
		prefix: "signup",
		title:  s.cfg.Signup.Title,
		build: func(note func(string), opts []wizard.Option) (*wizard.Wizard, error) {
			submit := s.cfg.Accounts.SignupFunc(func(a accounts.Account) {
				note(fmt.Sprintf("Registration submitted! Welcome, **%s**.", a.FullName()))
			})
			opts = append(opts, wizard.WithSubmitText(s.cfg.Signup.SubmitText))
			return wizard.NewForm(s.cfg.Signup.Fields, submit, opts...)
		},
		rejected: func(err error) (string, int, bool) {
			if errors.Is(err, accounts.ErrEmailTaken) {
				return "An account with this email already exists.", http.StatusConflict, true
			}
			return "", 0, false
		},
		busy:   "Your registration is already being processed.",
		failed: "Failed to create your account. Please try again.",
	}
}

func (s *Server) loginPage() *page {
	return &page{
		path:   LoginPath,
		prefix: "login",
		title:  s.cfg.Login.Title,
		build: func(note func(string), opts []wizard.Option) (*wizard.Wizard, error) {
			submit := s.cfg.Accounts.LoginFunc(func(a accounts.Account) {
				note(fmt.Sprintf("Login submitted! Signed in as **%s**.", a.Email))
			})
			opts = append(opts, wizard.WithSubmitText(s.cfg.Login.SubmitText))
			return wizard.NewForm(s.cfg.Login.Fields, submit, opts...)
		},
		rejected: func(err error) (string, int, bool) {
			if errors.Is(err, accounts.ErrWrongCredentials) {
				return "Invalid email or password.", http.StatusUnauthorized, true
			}
			return "", 0, false
		},
		busy:      "Signing you in...",
		failed:    "Failed to sign in. Please try again.",
		ephemeral: true,
	}
}

// Handler returns the routes without CSRF protection.
func (s *Server) Handler(assets http.Handler) http.Handler {
	mux := http.NewServeMux()
	for _, p := range s.pages {
		mux.HandleFunc(p.path, s.handlePage(p))
	}
	mux.HandleFunc(PlayersPath, s.handlePlayers)
	if s.cfg.Uploads != nil {
		mux.Handle(UploadsPath, s.cfg.Uploads)
		mux.Handle(FilesPath, http.StripPrefix(FilesPath, http.FileServer(http.Dir(s.cfg.Uploads.Root()))))
	}
	if assets != nil {
		mux.Handle(AssetsPath, http.StripPrefix(AssetsPath, assets))
	}
	mux.HandleFunc(HealthPath, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/", http.RedirectHandler(RegisterPath, http.StatusSeeOther))
	return mux
}

// Cleanup drops wizards idle for longer than the configured ttl and reports
// how many were dropped.
func (s *Server) Cleanup() int {
	removed := s.live.cleanup()
	if removed > 0 {
		s.logger.Debug("wizard_instances_expired", "count", removed)
	}
	return removed
}

// Protect wraps h with gorilla/csrf. The upload endpoint is exempt; it is
// called by the server itself or by scripts holding no form token.
func Protect(h http.Handler, authKey []byte, secure bool) http.Handler {
	protected := csrf.Protect(authKey,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.FieldName(CSRFFieldName),
	)(h)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == UploadsPath {
			h.ServeHTTP(w, r)
			return
		}
		if !secure {
			r = csrf.PlaintextHTTPRequest(r)
		}
		protected.ServeHTTP(w, r)
	})
}

func (s *Server) handlePage(p *page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead:
			_, wz, err := s.wizardFor(p, w, r, false)
			if err != nil {
				s.fail(w, "load wizard", err)
				return
			}
			s.renderStep(w, r, p, wz, "", http.StatusOK)
		case http.MethodPost:
			s.handlePost(p, w, r)
		default:
			w.Header().Set("Allow", "GET, POST")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func (s *Server) handlePost(p *page, w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}
	id, wz, err := s.wizardFor(p, w, r, true)
	if err != nil {
		s.fail(w, "load wizard", err)
		return
	}

	// A post from a stale tab must not overwrite the values of another step.
	posted, convErr := strconv.Atoi(r.PostFormValue(render.StepInputName))
	if convErr == nil && posted == wz.State().CurrentStep {
		s.bind(r, wz)
	}

	var flash string
	status := http.StatusOK
	action := render.ParseAction(r.PostFormValue(render.ActionInputName))
	switch action.Kind {
	case render.ActionNext:
		if !wz.Advance() {
			status = http.StatusUnprocessableEntity
		}
	case render.ActionPrevious:
		wz.Retreat()
	case render.ActionJump:
		wz.Jump(action.Target)
	case render.ActionRemove:
		if err := wz.RemoveFile(r.Context(), action.Field); err != nil {
			s.logger.Warn("remove_file_rejected", "field", action.Field, "error", err)
		}
	case render.ActionSubmit:
		flash, status = s.submit(r.Context(), p, id, wz)
	}
	s.renderStep(w, r, p, wz, flash, status)
}

func (s *Server) submit(ctx context.Context, p *page, id string, wz *wizard.Wizard) (string, int) {
	err := wz.Submit(ctx)
	switch {
	case err == nil:
		s.mu.Lock()
		flash := s.flashes[id]
		delete(s.flashes, id)
		s.mu.Unlock()
		return flash, http.StatusOK
	case errors.Is(err, wizard.ErrValidation), errors.Is(err, wizard.ErrNotLastStep):
		return "", http.StatusUnprocessableEntity
	case errors.Is(err, wizard.ErrBusy):
		return p.busy, http.StatusConflict
	}
	if p.rejected != nil {
		if flash, status, ok := p.rejected(err); ok {
			return flash, status
		}
	}
	return p.failed, http.StatusInternalServerError
}

func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.cfg.Roster.Search(r.URL.Query().Get("q")))
}

func (s *Server) renderStep(w http.ResponseWriter, r *http.Request, p *page, wz *wizard.Wizard, flash string, status int) {
	renderer, err := s.cfg.Renderers.ForAccept(r.Header.Get("Accept"), DefaultRenderer)
	if err != nil {
		s.fail(w, "select renderer", err)
		return
	}
	var hidden []render.HiddenField
	if token := csrf.Token(r); token != "" {
		hidden = append(hidden, render.CSRFToken(CSRFFieldName, token))
	}
	body, err := renderer.Render(r.Context(), render.BuildStep(wz), render.RenderOptions{
		Action: p.path,
		Title:  p.title,
		Hidden: hidden,
		Flash:  flash,
	})
	if err != nil {
		s.fail(w, "render step", err)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		_, _ = w.Write(body)
	}
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	s.logger.Error("webapp_request_failed", "op", op, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// wizardFor returns the wizard of the requesting browser for p. A live
// wizard is reused. Otherwise a fresh one is built and its draft restored;
// it is kept in memory only when keep is set, so page views alone never
// grow the cache.
func (s *Server) wizardFor(p *page, w http.ResponseWriter, r *http.Request, keep bool) (string, *wizard.Wizard, error) {
	key := ""
	if c, err := r.Cookie(InstanceCookie); err == nil {
		key = c.Value
	}
	if _, err := uuid.Parse(key); err != nil {
		key = s.newKey()
		http.SetCookie(w, &http.Cookie{
			Name:     InstanceCookie,
			Value:    key,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	instanceKey := p.instanceKey(key)
	id := p.path + "|" + instanceKey
	if wz, ok := s.live.get(id); ok {
		return id, wz, nil
	}

	opts := []wizard.Option{
		wizard.WithInstanceKey(instanceKey),
		wizard.WithLogger(s.logger),
	}
	if s.cfg.Progress != nil && !p.ephemeral {
		opts = append(opts, wizard.WithProgressStore(s.cfg.Progress))
	}
	if s.cfg.Uploader != nil {
		opts = append(opts, wizard.WithUploader(s.cfg.Uploader))
	}
	note := func(flash string) {
		s.mu.Lock()
		s.flashes[id] = flash
		s.mu.Unlock()
	}
	wz, err := p.build(note, opts)
	if err != nil {
		return "", nil, err
	}
	if wz.Restore(r.Context()) {
		s.logger.Info("wizard_restored", "page", p.path, "instance", instanceKey, "step", wz.State().CurrentStep)
	}
	if keep {
		wz = s.live.add(id, wz)
	}
	return id, wz, nil
}

// bind copies posted values of the visible current-step fields into wz.
func (s *Server) bind(r *http.Request, wz *wizard.Wizard) {
	b := &binder{r: r, wz: wz, logger: s.logger}
	for _, f := range wz.VisibleFields() {
		if wz.Disabled(f.Common().Name) {
			continue
		}
		f.Accept(b)
	}
}

type binder struct {
	r      *http.Request
	wz     *wizard.Wizard
	logger *slog.Logger
}

func (b *binder) set(name string) {
	if err := b.wz.SetValue(name, b.r.PostFormValue(name)); err != nil {
		b.logger.Warn("bind_value_failed", "field", name, "error", err)
	}
}

func (b *binder) VisitText(f field.Text)         { b.set(f.Name) }
func (b *binder) VisitDate(f field.Date)         { b.set(f.Name) }
func (b *binder) VisitPassword(f field.Password) { b.set(f.Name) }
func (b *binder) VisitSelect(f field.Select)     { b.set(f.Name) }
func (b *binder) VisitTextarea(f field.Textarea) { b.set(f.Name) }

func (b *binder) VisitPhone(f field.Phone) {
	if err := b.wz.SetPhone(f.Name, b.r.PostFormValue(f.Name)); err != nil {
		b.logger.Warn("bind_value_failed", "field", f.Name, "error", err)
	}
}

func (b *binder) VisitCheckbox(f field.Checkbox) {
	if err := b.wz.SetChecked(f.Name, b.r.PostFormValue(f.Name) != ""); err != nil {
		b.logger.Warn("bind_value_failed", "field", f.Name, "error", err)
	}
}

func (b *binder) VisitCaptcha(f field.Captcha) {
	b.wz.SetCaptchaVerified(b.r.PostFormValue(f.Name) != "")
}

// VisitFile uploads a newly picked file. An empty file input keeps the
// current value.
func (b *binder) VisitFile(f field.File) {
	if b.r.MultipartForm == nil {
		return
	}
	headers := b.r.MultipartForm.File[f.Name]
	if len(headers) == 0 || headers[0].Filename == "" {
		return
	}
	header := headers[0]
	file, err := header.Open()
	if err != nil {
		b.logger.Warn("bind_file_failed", "field", f.Name, "error", err)
		return
	}
	defer file.Close()

	err = b.wz.UploadFile(b.r.Context(), f.Name, upload.File{
		Name: header.Filename,
		Type: header.Header.Get("Content-Type"),
		Size: header.Size,
		Body: file,
	})
	if err != nil {
		b.logger.Warn("bind_file_failed", "field", f.Name, "error", err)
	}
}
