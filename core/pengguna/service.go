package pengguna

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/labasprak/asprak/core"
)

var (
	// errors
	ErrNotFound    = core.NewNotFoundError("pengguna")
	ErrEmailExists = errors.New("a pengguna with this email already exists")
)

type (
	Repository interface {
		// CheckEmailUniqueness returns ErrEmailExists when another pengguna (not in excludeIDs) owns email.
		CheckEmailUniqueness(ctx context.Context, email string, excludeIDs ...string) error
		Create(ctx context.Context, p Pengguna) (Pengguna, error)
		QueryAll(ctx context.Context) ([]Pengguna, error)
		GetByID(ctx context.Context, id string) (Pengguna, error)
		GetByEmail(ctx context.Context, email string) (Pengguna, error)
		Update(ctx context.Context, p Pengguna) (Pengguna, error)
		Delete(ctx context.Context, ids ...string) error
		// QueryAssignments lists the active koordinator assignments of a pengguna.
		QueryAssignments(ctx context.Context, id string) ([]Assignment, error)
		// SetAssignments makes praktikumIDs the only active assignments of a pengguna.
		SetAssignments(ctx context.Context, id string, praktikumIDs []string) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
		tokens  tokenGenerator
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
		tokens:  tokenGenerator{secret: []byte(conf.SecretKey), timeout: conf.PasswordResetTimeoutDelta},
	}
}

func (svc *Service) checkUniqueness(ctx context.Context, email string, excludeIDs ...string) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, excludeIDs...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, np NewPengguna) (Pengguna, error) {
	if err := svc.checkUniqueness(ctx, np.Email); err != nil {
		return Pengguna{}, err
	}

	now := time.Now().UTC()
	p := Pengguna{
		NamaLengkap: np.NamaLengkap,
		Email:       np.Email,
		Role:        np.Role,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.SetPassword(np.Password); err != nil {
		return Pengguna{}, errors.Wrap(err, "setting password")
	}
	p, err := svc.repo.Create(ctx, p)
	if err != nil {
		return Pengguna{}, errors.Wrap(err, "creating pengguna")
	}
	svc.sendWelcomeMail(p)
	return p, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]Pengguna, error) {
	return svc.repo.QueryAll(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Pengguna, error) {
	return svc.repo.GetByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Pengguna, error) {
	return svc.repo.GetByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) Update(ctx context.Context, id string, up UpdatePengguna) (Pengguna, error) {
	p, err := svc.repo.GetByID(ctx, id)
	if err != nil {
		return Pengguna{}, err
	}
	p.NamaLengkap = up.nameOr(p)
	if up.Role != nil {
		p.Role = *up.Role
	}
	if up.IsActive != nil {
		p.IsActive = *up.IsActive
	}
	if up.Password != "" {
		if err := p.SetPassword(up.Password); err != nil {
			return Pengguna{}, errors.Wrap(err, "setting password")
		}
	}
	p.UpdatedAt = time.Now().UTC()
	return svc.repo.Update(ctx, p)
}

// SetPassword replaces the password without applying the policy (operator CLI).
func (svc *Service) SetPassword(ctx context.Context, email, pwd string) (Pengguna, error) {
	p, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return Pengguna{}, err
	}
	if err = p.SetPassword(pwd); err != nil {
		return Pengguna{}, errors.Wrap(err, "setting password")
	}
	p.UpdatedAt = time.Now().UTC()
	return svc.repo.Update(ctx, p)
}

func (svc *Service) SetLastLogin(ctx context.Context, p Pengguna) (Pengguna, error) {
	p.LastLogin = time.Now().UTC()
	return svc.repo.Update(ctx, p)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.Delete(ctx, ids...)
}

func (svc *Service) Assignments(ctx context.Context, id string) ([]Assignment, error) {
	as, err := svc.repo.QueryAssignments(ctx, id)
	if err != nil {
		return nil, err
	}
	if as == nil {
		as = []Assignment{}
	}
	return as, nil
}

func (svc *Service) SetAssignments(ctx context.Context, id string, praktikumIDs []string) ([]Assignment, error) {
	if _, err := svc.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := svc.repo.SetAssignments(ctx, id, core.UniqueStrings(praktikumIDs)); err != nil {
		return nil, errors.Wrap(err, "setting assignments")
	}
	return svc.Assignments(ctx, id)
}

// ActivePraktikumIDs lists the praktikum a koordinator currently coordinates.
func (svc *Service) ActivePraktikumIDs(ctx context.Context, id string) ([]string, error) {
	as, err := svc.repo.QueryAssignments(ctx, id)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(as))
	for _, a := range as {
		ids = append(ids, a.IDPraktikum)
	}
	return ids, nil
}

func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	p, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !p.IsActive {
		return ErrNotFound
	}
	svc.sendPasswordResetMail(p)
	return nil
}

func (svc *Service) ResetPassword(ctx context.Context, rp ResetPassword) error {
	id, err := decodeUID(rp.UID)
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "uid", Error: "invalid value"})
	}
	p, err := svc.repo.GetByID(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return core.NewValidationError(nil, core.FieldError{Field: "uid", Error: "invalid value"})
		}
		return err
	}
	if err = svc.tokens.verifyToken(p, rp.Token); err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "token", Error: err.Error()})
	}
	if err = p.SetPassword(rp.Password); err != nil {
		return errors.Wrap(err, "setting password")
	}
	p.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.Update(ctx, p)
	return err
}

func (svc *Service) sendWelcomeMail(p Pengguna) {
	if svc.mailSvc == nil {
		return
	}
	data := map[string]string{"Name": p.NamaLengkap, "Email": p.Email, "Role": p.Role}
	svc.mailSvc.SendMessages(core.NewEmailMessage(svc.conf, "welcome", "Your account", data, p.MailAddress()))
}

func (svc *Service) sendPasswordResetMail(p Pengguna) {
	if svc.mailSvc == nil {
		return
	}
	data := map[string]string{"Name": p.NamaLengkap, "UID": encodeUID(p), "Token": svc.tokens.makeToken(p)}
	svc.mailSvc.SendMessages(core.NewEmailMessage(svc.conf, "password_reset", "Password reset", data, p.MailAddress()))
}
