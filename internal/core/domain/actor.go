package domain

import (
	"context"

	"github.com/suchimauz/clinic-scheduling-engine/internal/core/json_types"
)

type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// Actor пользователь, от имени которого выполняется операция
type Actor struct {
	ID   json_types.ID
	Role Role
}

// Credential токен доступа к бэкенду. Передается через контекст каждого
// вызова хранилища, глобального состояния сессии нет
type Credential struct {
	AccessToken string
}

func (c Credential) IsEmpty() bool {
	return c.AccessToken == ""
}

type credentialKey struct{}

func WithCredential(ctx context.Context, cred Credential) context.Context {
	return context.WithValue(ctx, credentialKey{}, cred)
}

func CredentialFrom(ctx context.Context) (Credential, bool) {
	cred, ok := ctx.Value(credentialKey{}).(Credential)
	if !ok || cred.IsEmpty() {
		return Credential{}, false
	}
	return cred, true
}
