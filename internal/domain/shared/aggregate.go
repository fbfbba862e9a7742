package shared

// BaseAggregateRoot provides common aggregate root behavior:
// optimistic-lock versioning and domain event collection.
type BaseAggregateRoot struct {
	BaseEntity
	Version int `gorm:"default:1" json:"version"`

	domainEvents []DomainEvent `gorm:"-"`
}

// NewBaseAggregateRoot creates an aggregate root at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

// AddDomainEvent records a domain event for later publication
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// DomainEvents returns the recorded events
func (a *BaseAggregateRoot) DomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents drops recorded events after publication
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}

// IncrementVersion bumps the optimistic-lock version
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}
