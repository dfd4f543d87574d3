package auth

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"

	"github.com/mediatrack/mediatrack/internal/database"
)

// BindState reports the binding outcome of a login.
type BindState struct {
	// Bound is true when the account already has a device binding and the
	// supplied code matched it.
	Bound bool
	// MachineCode echoes the code the caller supplied, normalized.
	MachineCode string
}

// BindingManager enforces the one-machine-per-account policy.
type BindingManager struct {
	log  *log.Logger
	repo database.Repository
}

func NewBindingManager(logger *log.Logger, repo database.Repository) *BindingManager {
	return &BindingManager{log: logger, repo: repo}
}

// CheckAndBind evaluates the binding state machine at login time. It never
// writes; the bind itself is a separate Bind call so callers control when a
// device becomes claimed.
func (bm *BindingManager) CheckAndBind(ctx context.Context, handle, code string) (BindState, error) {
	binding, err := bm.repo.GetBinding(ctx, handle)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return BindState{}, err
	}
	hasBinding := err == nil

	if hasBinding {
		if code == "" {
			return BindState{}, ErrCodeRequired
		}
		if !strings.EqualFold(binding.MachineCode, code) {
			return BindState{}, ErrCodeMismatch
		}
		return BindState{Bound: true, MachineCode: binding.MachineCode}, nil
	}

	if code == "" {
		return BindState{}, nil
	}

	// The code is new to this account; refuse it up front when some other
	// account holds it. The lookup is advisory, the authoritative check is
	// the unique index consulted by Bind.
	other, err := bm.repo.GetBindingByCode(ctx, code)
	if err == nil && other.Handle != handle {
		return BindState{}, &CodeTakenError{Owner: other.Handle}
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		bm.log.Println("device code lookup:", err)
	}

	return BindState{MachineCode: code}, nil
}

// Bind claims a machine code for a handle. The write is a single conditional
// upsert: losing a race for the same code to another handle surfaces as
// CodeTakenError, never as a lost update.
func (bm *BindingManager) Bind(ctx context.Context, handle, code, descriptor string) (database.DeviceBinding, error) {
	binding, err := bm.repo.BindDevice(ctx, database.BindDeviceParams{
		Handle:      handle,
		MachineCode: code,
		Descriptor:  descriptor,
	})
	if err != nil {
		if errors.Is(err, database.ErrCodeConflict) {
			owner := ""
			if other, lookupErr := bm.repo.GetBindingByCode(ctx, code); lookupErr == nil {
				owner = other.Handle
			}
			return database.DeviceBinding{}, &CodeTakenError{Owner: owner}
		}
		return database.DeviceBinding{}, err
	}

	return binding, nil
}

func (bm *BindingManager) Unbind(ctx context.Context, handle string) error {
	return bm.repo.DeleteBinding(ctx, handle)
}
