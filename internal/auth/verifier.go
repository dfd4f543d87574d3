package auth

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"log"

	"github.com/mediatrack/mediatrack/internal/database"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleOwner = "owner"
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Identity is the outcome of a successful verification.
type Identity struct {
	Handle string
	Role   string
}

// Policy resolves ban flags and elevated roles from the admin settings blob.
type Policy interface {
	IsBanned(ctx context.Context, handle string) bool
	Role(ctx context.Context, handle string) string
}

// OwnerIdentity is the designated owner account from deployment config. It
// is verified against config alone and never against storage.
type OwnerIdentity struct {
	Handle   string
	Password string
}

type Verifier struct {
	log          *log.Logger
	repo         database.Repository
	policy       Policy
	owner        OwnerIdentity
	accessSecret string
}

func NewVerifier(logger *log.Logger, repo database.Repository, policy Policy, owner OwnerIdentity, accessSecret string) *Verifier {
	return &Verifier{
		log:          logger,
		repo:         repo,
		policy:       policy,
		owner:        owner,
		accessSecret: accessSecret,
	}
}

func constantEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Verify checks a handle/password pair and resolves its role. An empty
// handle selects shared-secret mode, where the password must equal the
// deployment access secret and no account is involved.
func (v *Verifier) Verify(ctx context.Context, handle, password string) (Identity, error) {
	if handle == "" {
		if v.accessSecret == "" || !constantEqual(password, v.accessSecret) {
			return Identity{}, ErrInvalidCredentials
		}
		return Identity{Role: RoleUser}, nil
	}

	if v.policy != nil && v.policy.IsBanned(ctx, handle) {
		return Identity{}, ErrAccountBanned
	}

	if v.owner.Handle != "" && handle == v.owner.Handle {
		if !constantEqual(password, v.owner.Password) {
			return Identity{}, ErrInvalidCredentials
		}
		v.ensureOwnerAccount(ctx)
		return Identity{Handle: handle, Role: RoleOwner}, nil
	}

	account, err := v.repo.GetAccount(ctx, handle)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Identity{}, ErrInvalidCredentials
		}
		return Identity{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return Identity{}, ErrInvalidCredentials
	}

	role := RoleUser
	if v.policy != nil {
		if r := v.policy.Role(ctx, handle); r != "" {
			role = r
		}
	}

	return Identity{Handle: handle, Role: role}, nil
}

// ensureOwnerAccount lazily creates the owner's account row so the owner can
// use features that join against accounts. Owner login does not depend on
// storage, so failures here are logged and swallowed.
func (v *Verifier) ensureOwnerAccount(ctx context.Context) {
	exists, err := v.repo.AccountExists(ctx, v.owner.Handle)
	if err != nil || exists {
		if err != nil {
			v.log.Println("owner account lookup:", err)
		}
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(v.owner.Password), bcrypt.DefaultCost)
	if err != nil {
		v.log.Println("owner password hash:", err)
		return
	}

	_, err = v.repo.CreateAccount(ctx, database.CreateAccountParams{
		Handle:       v.owner.Handle,
		PasswordHash: string(hash),
		Role:         RoleOwner,
	})
	if err != nil && !errors.Is(err, database.ErrDuplicateKey) {
		v.log.Println("owner account provisioning:", err)
	}
}

// Elevated reports whether the identity may act on other accounts.
func (i Identity) Elevated() bool {
	return i.Role == RoleOwner || i.Role == RoleAdmin
}
