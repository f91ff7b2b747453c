package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	Documents      int    `json:"documents"`
	Users          int    `json:"users"`
	Loans          int    `json:"loans"`
	NextLoanSeq    int    `json:"next_loan_seq"`
	StoreType      string `json:"store_type"`
	HasBroadcaster bool   `json:"has_broadcaster"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	storeType := "store"
	if comp, ok := s.store.(introspection.Component); ok {
		storeType = comp.ComponentType()
	}

	return ServiceState{
		Documents:      s.documents.size(),
		Users:          s.users.size(),
		Loans:          s.loans.size(),
		NextLoanSeq:    s.nextLoanSeq,
		StoreType:      storeType,
		HasBroadcaster: s.broadcaster != nil,
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "lending-service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
