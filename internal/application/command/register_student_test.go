package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
)

func TestRegisterStudent(t *testing.T) {
	repo := newFakeStudentRepo()
	pub := &recordingPublisher{}
	handler := NewRegisterStudentHandler(repo, pub).WithBcryptCost(bcrypt.MinCost)

	result, err := handler.Handle(context.Background(), RegisterStudentCommand{
		Name:     "Aigerim",
		Email:    "  Aigerim@Example.COM ",
		Password: "correct horse",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.StudentID)
	assert.Equal(t, "aigerim@example.com", result.Email)

	stored, err := repo.GetByID(context.Background(), result.StudentID)
	require.NoError(t, err)
	assert.Equal(t, shared.RoleStudent, stored.Role)
	assert.NotEqual(t, "correct horse", stored.PasswordHash, "password must never be stored in plain text")
	assert.True(t, VerifyPassword(stored.PasswordHash, "correct horse"))
	assert.False(t, VerifyPassword(stored.PasswordHash, "wrong horse"))

	require.Len(t, pub.events, 1)
	assert.Equal(t, shared.EventStudentRegistered, pub.events[0].EventType())
}

func TestRegisterStudent_EmailTaken(t *testing.T) {
	repo := newFakeStudentRepo()
	handler := NewRegisterStudentHandler(repo, nil).WithBcryptCost(bcrypt.MinCost)

	_, err := handler.Handle(context.Background(), RegisterStudentCommand{
		Name:     "First",
		Email:    "taken@example.com",
		Password: "password-1",
	})
	require.NoError(t, err)

	// Same address, different case and spacing.
	_, err = handler.Handle(context.Background(), RegisterStudentCommand{
		Name:     "Second",
		Email:    " TAKEN@example.com",
		Password: "password-2",
	})
	assert.ErrorIs(t, err, shared.ErrEmailTaken)
}

func TestRegisterStudent_Validation(t *testing.T) {
	handler := NewRegisterStudentHandler(newFakeStudentRepo(), nil)

	_, err := handler.Handle(context.Background(), RegisterStudentCommand{
		Name: "", Email: "a@example.com", Password: "long enough",
	})
	assert.Error(t, err)

	_, err = handler.Handle(context.Background(), RegisterStudentCommand{
		Name: "A", Email: "not-an-email", Password: "long enough",
	})
	assert.Error(t, err)

	_, err = handler.Handle(context.Background(), RegisterStudentCommand{
		Name: "A", Email: "a@example.com", Password: "short",
	})
	assert.Error(t, err)
}
