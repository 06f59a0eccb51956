package repository

import "sprout/entities"

type PlantRepository interface {
	Create(p *entities.Plant) error
	// FindByID is uid-scoped for the HTTP surface.
	FindByID(id uint, uid string) (*entities.Plant, error)
	// Get is the engine-side lookup, unscoped.
	Get(id uint) (*entities.Plant, error)
	ListActiveByUser(uid string) ([]entities.Plant, error)
	ConfirmStage(id uint, uid string, conf *entities.StageConfirmation) error
	UpdateCount(id uint, count int) error
	Deactivate(id uint, uid string) error
	// SubscribePlantsForUser delivers the user's active plants now and after
	// every change. Returns an unsubscribe func.
	SubscribePlantsForUser(uid string, onPlants func([]entities.Plant)) func()
}
