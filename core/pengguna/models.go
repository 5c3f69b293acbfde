package pengguna

import (
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/labasprak/asprak/core"
	"github.com/labasprak/asprak/core/rbac"
)

var errAllFieldsRequired = errors.New("Semua field wajib diisi.")

type Pengguna struct {
	ID           string    `json:"id"`
	NamaLengkap  string    `json:"nama_lengkap"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (p *Pengguna) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.PasswordHash = hash
	return nil
}

func (p *Pengguna) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(p.PasswordHash, []byte(pwd))
}

func (p Pengguna) IsAdmin() bool { return p.Role == rbac.RoleAdmin }
func (p Pengguna) IsKoor() bool  { return p.Role == rbac.RoleAsprakKoor }

func (p Pengguna) MailAddress() mail.Address {
	return mail.Address{Name: p.NamaLengkap, Address: p.Email}
}

// Assignment is an active koordinator link between a pengguna and a praktikum.
type Assignment struct {
	IDPraktikum   string `json:"id_praktikum"`
	TahunAjaran   string `json:"tahun_ajaran"`
	NamaPraktikum string `json:"nama_praktikum"`
}

// NewPengguna contains information needed to create a new Pengguna.
type NewPengguna struct {
	NamaLengkap string `json:"nama_lengkap" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	Role        string `json:"role" validate:"required,role"`
}

func (np *NewPengguna) Validate(validate *validator.Validate) error {
	np.NamaLengkap = core.CleanString(np.NamaLengkap)
	np.Email = core.CleanString(np.Email, true /* lower */)
	np.Role = core.CleanUpper(np.Role)

	if np.NamaLengkap == "" || np.Email == "" || np.Password == "" || np.Role == "" {
		return core.NewValidationError(errAllFieldsRequired)
	}
	return validate.Struct(np)
}

// UpdatePengguna defines what information may be provided to modify an existing Pengguna.
type UpdatePengguna struct {
	NamaLengkap *string `json:"nama_lengkap"`
	Role        *string `json:"role" validate:"omitempty,role"`
	IsActive    *bool   `json:"is_active"`
	Password    string  `json:"password"`

	// email is only used by the password similarity check
	email string
}

func (up *UpdatePengguna) Validate(orig Pengguna, validate *validator.Validate) error {
	if up.NamaLengkap != nil {
		name := core.CleanString(*up.NamaLengkap)
		if name == "" {
			return core.NewValidationError(nil, core.FieldError{Field: "nama_lengkap", Error: "this field is required"})
		}
		up.NamaLengkap = &name
	}
	if up.Role != nil {
		role := core.CleanUpper(*up.Role)
		up.Role = &role
	}
	up.email = orig.Email
	return validate.Struct(up)
}

func (up UpdatePengguna) nameOr(orig Pengguna) string {
	if up.NamaLengkap != nil {
		return *up.NamaLengkap
	}
	return orig.NamaLengkap
}

type ResetPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetPassword) Validate(validate *validator.Validate) error { return validate.Struct(rp) }
