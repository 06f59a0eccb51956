package repository

import "sprout/entities"

type VarietyRepository interface {
	Create(v *entities.Variety) error
	// FindByID returns (nil, nil) when the variety is absent; callers treat
	// that as a controlled absence, not an error.
	FindByID(id uint) (*entities.Variety, error)
	FindByName(name string) (*entities.Variety, error)
	List() ([]entities.Variety, error)
	UpsertByName(v *entities.Variety) error
}
