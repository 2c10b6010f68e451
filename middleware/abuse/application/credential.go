package application

import (
	"time"

	"sentinela-gateway/middleware/abuse/domain"
)

// CredentialService responde o hook por credencial.
//
// A credencial é rejeitada se QUALQUER um valer: hash na blacklist
// individual, OU issued-at estritamente anterior ao marcador de revogação do
// usuário. Assinatura e expiração natural são responsabilidade de quem
// verificou o token antes de chegar aqui.
type CredentialService struct {
	Registry domain.RevocationChecker
}

func (s CredentialService) IsCredentialValid(tokenHash, userID string, issuedAt time.Time) bool {
	if s.Registry == nil {
		return true
	}
	if s.Registry.IsBlacklisted(tokenHash) {
		return false
	}
	if s.Registry.IsRevokedByMarker(userID, issuedAt) {
		return false
	}
	return true
}
