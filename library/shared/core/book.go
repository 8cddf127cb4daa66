package core

import (
	"github.com/google/uuid"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
)

// Book is a title in the catalog. Physical items are BookCopy entities.
type Book struct {
	ID              uuid.UUID `json:"id"`
	ISBN            string    `json:"isbn"`
	Title           string    `json:"title"`
	Authors         string    `json:"authors"`
	Edition         string    `json:"edition"`
	Publisher       string    `json:"publisher"`
	PublicationYear uint      `json:"publicationYear"`
}

func (b Book) EntityType() string  { return BookEntityType }
func (b Book) EntityID() uuid.UUID { return b.ID }

func (b Book) UniqueKeys() map[string]string {
	return map[string]string{"isbn": b.ISBN}
}

// BookCopy is one physical, lendable item of a Book.
type BookCopy struct {
	ID      uuid.UUID `json:"id"`
	BookID  uuid.UUID `json:"bookId"`
	Barcode string    `json:"barcode"`
	Removed bool      `json:"removed"`

	Book *Book `json:"-"`
}

func (c BookCopy) EntityType() string  { return BookCopyEntityType }
func (c BookCopy) EntityID() uuid.UUID { return c.ID }
func (c BookCopy) IsDeleted() bool     { return c.Removed }

func (c BookCopy) UniqueKeys() map[string]string {
	return map[string]string{"barcode": c.Barcode}
}

func (c BookCopy) References() []entitystore.Reference {
	return []entitystore.Reference{entitystore.Ref(RelationBook, BookEntityType, c.BookID)}
}

func (c BookCopy) BindRelation(name string, related entitystore.Entity) BookCopy {
	if book, ok := related.(Book); ok && name == RelationBook {
		c.Book = &book
	}

	return c
}
