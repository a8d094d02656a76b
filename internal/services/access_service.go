package services

import "github.com/you/authsvc/domain"

// AccessService is the role-based access decision point. Each protected
// operation declares zero or more required roles; the decision is pure role
// membership, with no per-resource ownership checks.
type AccessService struct{}

// NewAccessService creates a new access service
func NewAccessService() *AccessService {
	return &AccessService{}
}

// Authorize decides whether a caller with the given role may perform an
// operation declaring the required roles. An empty declared set allows any
// caller. A missing role and a role outside the set both deny, but with
// distinct errors so callers of this function can tell them apart even
// though both surface as the same Forbidden response.
func (s *AccessService) Authorize(role string, required []string) error {
	if len(required) == 0 {
		return nil
	}
	if role == "" {
		return domain.ErrNoPrincipal
	}
	for _, r := range required {
		if role == r {
			return nil
		}
	}
	return domain.ErrRoleDenied
}
