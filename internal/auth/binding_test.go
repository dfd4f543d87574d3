package auth

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/mediatrack/mediatrack/internal/database"
	"github.com/mediatrack/mediatrack/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAndBind(t *testing.T) {
	existing := database.DeviceBinding{Handle: "alice", MachineCode: "ABC123"}

	tcases := []struct {
		name        string
		handle      string
		code        string
		mockBinding database.DeviceBinding
		mockErr     error
		byCode      database.DeviceBinding
		byCodeErr   error
		expected    BindState
		err         error
		taken       string
	}{
		{
			name:     "no binding and no code proceeds unbound",
			handle:   "alice",
			code:     "",
			mockErr:  sql.ErrNoRows,
			expected: BindState{},
		},
		{
			name:        "binding without code is rejected",
			handle:      "alice",
			code:        "",
			mockBinding: existing,
			err:         ErrCodeRequired,
		},
		{
			name:        "binding with mismatched code is rejected",
			handle:      "alice",
			code:        "XYZ999",
			mockBinding: existing,
			err:         ErrCodeMismatch,
		},
		{
			name:        "binding with matching code proceeds",
			handle:      "alice",
			code:        "ABC123",
			mockBinding: existing,
			expected:    BindState{Bound: true, MachineCode: "ABC123"},
		},
		{
			name:        "code comparison is case-insensitive",
			handle:      "alice",
			code:        "abc123",
			mockBinding: existing,
			expected:    BindState{Bound: true, MachineCode: "ABC123"},
		},
		{
			name:      "new code held by another handle is rejected",
			handle:    "bob",
			code:      "ABC123",
			mockErr:   sql.ErrNoRows,
			byCode:    existing,
			taken:     "alice",
		},
		{
			name:      "new unclaimed code proceeds unbound",
			handle:    "bob",
			code:      "NEW456",
			mockErr:   sql.ErrNoRows,
			byCodeErr: sql.ErrNoRows,
			expected:  BindState{MachineCode: "NEW456"},
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &database.MockRepository{}
			defer mockRepo.AssertExpectations(t)
			mockRepo.On("GetBinding", tc.handle).Return(tc.mockBinding, tc.mockErr).Once()
			if tc.byCode.Handle != "" || tc.byCodeErr != nil {
				mockRepo.On("GetBindingByCode", tc.code).Return(tc.byCode, tc.byCodeErr).Once()
			}

			bm := NewBindingManager(testutil.TestLogger(t), mockRepo)
			state, err := bm.CheckAndBind(context.Background(), tc.handle, tc.code)

			if tc.taken != "" {
				var takenErr *CodeTakenError
				require.ErrorAs(t, err, &takenErr)
				assert.Equal(t, tc.taken, takenErr.Owner, "expected the conflicting owner to be named")
				return
			}

			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, state)
		})
	}
}

func TestCheckAndBind_CodeLookupDegrades(t *testing.T) {
	// the advisory taken-check is best-effort: a storage error there must
	// not block login, the unique index still backstops the bind
	mockRepo := &database.MockRepository{}
	defer mockRepo.AssertExpectations(t)
	mockRepo.On("GetBinding", "bob").Return(database.DeviceBinding{}, sql.ErrNoRows).Once()
	mockRepo.On("GetBindingByCode", "NEW456").
		Return(database.DeviceBinding{}, errors.New("db down")).Once()

	bm := NewBindingManager(testutil.TestLogger(t), mockRepo)
	state, err := bm.CheckAndBind(context.Background(), "bob", "NEW456")

	require.NoError(t, err)
	assert.Equal(t, BindState{MachineCode: "NEW456"}, state)
}

func TestBind(t *testing.T) {
	t.Run("successful bind", func(t *testing.T) {
		mockRepo := &database.MockRepository{}
		defer mockRepo.AssertExpectations(t)

		params := database.BindDeviceParams{Handle: "alice", MachineCode: "ABC123", Descriptor: "laptop"}
		mockRepo.On("BindDevice", params).
			Return(database.DeviceBinding{Handle: "alice", MachineCode: "ABC123", Descriptor: "laptop"}, nil).Once()

		bm := NewBindingManager(testutil.TestLogger(t), mockRepo)
		binding, err := bm.Bind(context.Background(), "alice", "ABC123", "laptop")

		require.NoError(t, err)
		assert.Equal(t, "ABC123", binding.MachineCode)
	})

	t.Run("rebinding the same code is idempotent", func(t *testing.T) {
		mockRepo := &database.MockRepository{}
		defer mockRepo.AssertExpectations(t)

		params := database.BindDeviceParams{Handle: "alice", MachineCode: "ABC123"}
		mockRepo.On("BindDevice", params).
			Return(database.DeviceBinding{Handle: "alice", MachineCode: "ABC123"}, nil).Twice()

		bm := NewBindingManager(testutil.TestLogger(t), mockRepo)
		for i := 0; i < 2; i++ {
			_, err := bm.Bind(context.Background(), "alice", "ABC123", "")
			require.NoError(t, err)
		}
	})

	t.Run("losing the race names the winner", func(t *testing.T) {
		mockRepo := &database.MockRepository{}
		defer mockRepo.AssertExpectations(t)

		mockRepo.On("BindDevice", database.BindDeviceParams{Handle: "bob", MachineCode: "ABC123"}).
			Return(database.DeviceBinding{}, database.ErrCodeConflict).Once()
		mockRepo.On("GetBindingByCode", "ABC123").
			Return(database.DeviceBinding{Handle: "alice", MachineCode: "ABC123"}, nil).Once()

		bm := NewBindingManager(testutil.TestLogger(t), mockRepo)
		_, err := bm.Bind(context.Background(), "bob", "ABC123", "")

		var takenErr *CodeTakenError
		require.ErrorAs(t, err, &takenErr)
		assert.Equal(t, "alice", takenErr.Owner)
	})

	t.Run("unbind", func(t *testing.T) {
		mockRepo := &database.MockRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("DeleteBinding", "alice").Return(nil).Once()

		bm := NewBindingManager(testutil.TestLogger(t), mockRepo)
		assert.NoError(t, bm.Unbind(context.Background(), "alice"))
	})
}
