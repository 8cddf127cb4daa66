package entitystore

import (
	"errors"
	"maps"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var (
	ErrInvalidPayloadJSON  = errors.New("payload json is not valid")
	ErrEmptyEntityType     = errors.New("entity type must not be empty")
	ErrEmptyEntityIdentity = errors.New("entity identity must not be the nil uuid")
)

var payloadJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// StorableEntities is an alias type for a slice of StorableEntity.
type StorableEntities = []StorableEntity

// StorableEntity is a DTO (data transfer object) used between the repositories and the engines.
//
// It is built on scalars so that engines stay agnostic of the entity types defined in client code.
//
// While its properties are exported, it should only be constructed with the supplied factory methods:
//   - BuildStorableEntity
//   - StorableEntityFrom
type StorableEntity struct {
	EntityType  string
	EntityID    uuid.UUID
	PayloadJSON []byte
	Deleted     bool
	UniqueKeys  map[string]string
}

// BuildStorableEntity is a factory method for StorableEntity.
//
// Returns an error if the entity type is empty, the id is the nil uuid, or payloadJSON is not valid JSON.
func BuildStorableEntity(
	entityType string,
	id uuid.UUID,
	payload []byte,
	deleted bool,
	uniqueKeys map[string]string,
) (StorableEntity, error) {

	if entityType == "" {
		return StorableEntity{}, ErrEmptyEntityType
	}

	if id == uuid.Nil {
		return StorableEntity{}, ErrEmptyEntityIdentity
	}

	if !jsoniter.ConfigFastest.Valid(payload) {
		return StorableEntity{}, ErrInvalidPayloadJSON
	}

	return StorableEntity{
		EntityType:  entityType,
		EntityID:    id,
		PayloadJSON: payload,
		Deleted:     deleted,
		UniqueKeys:  uniqueKeys,
	}, nil
}

// StorableEntityFrom marshals an Entity into its StorableEntity form.
func StorableEntityFrom(e Entity) (StorableEntity, error) {
	if e.EntityID() == uuid.Nil {
		return StorableEntity{}, NewValidationError("id", e.EntityType()+" identity must be assigned before staging")
	}

	payload, err := payloadJSON.Marshal(e)
	if err != nil {
		return StorableEntity{}, errors.Join(ErrMarshalingPayloadFailed, err)
	}

	return BuildStorableEntity(e.EntityType(), e.EntityID(), payload, isDeleted(e), uniqueKeysOf(e))
}

// Clone returns a deep copy, so engines never share payload buffers with callers.
func (s StorableEntity) Clone() StorableEntity {
	c := s
	c.PayloadJSON = append([]byte(nil), s.PayloadJSON...)
	if s.UniqueKeys != nil {
		c.UniqueKeys = maps.Clone(s.UniqueKeys)
	}

	return c
}

// decodeInto unmarshals the payload into a fresh T.
func decodeInto[T any](s StorableEntity) (T, error) {
	var t T
	if err := payloadJSON.Unmarshal(s.PayloadJSON, &t); err != nil {
		return t, errors.Join(ErrUnmarshalingPayloadFailed, err)
	}

	return t, nil
}
