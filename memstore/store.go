package memstore

import (
	"jobmatrimony/access"
	"jobmatrimony/catalog"
	"jobmatrimony/matrimony"
	"jobmatrimony/messaging"
	"jobmatrimony/profile"
)

// Store bundles one instance of every repository.
type Store struct {
	Roles     *Roles
	Profiles  *Profiles
	Catalog   *Catalog
	Matrimony *Matrimony
	Messages  *Messages
}

func New() *Store {
	return &Store{
		Roles:     NewRoles(),
		Profiles:  NewProfiles(),
		Catalog:   NewCatalog(),
		Matrimony: NewMatrimony(),
		Messages:  NewMessages(),
	}
}

var (
	_ access.Repository    = (*Roles)(nil)
	_ profile.Repository   = (*Profiles)(nil)
	_ catalog.Repository   = (*Catalog)(nil)
	_ matrimony.Repository = (*Matrimony)(nil)
	_ messaging.Repository = (*Messages)(nil)
)
