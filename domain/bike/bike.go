package bike

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Category string

const (
	Scooter   Category = "Scooter"
	Sport     Category = "Sport"
	Cruiser   Category = "Cruiser"
	Adventure Category = "Adventure"
	Electric  Category = "Electric"
)

var Categories = []Category{Scooter, Sport, Cruiser, Adventure, Electric}

var (
	ErrNotFound      = errors.New("bike not found")
	ErrInvalid       = errors.New("invalid bike")
	ErrAlreadyExists = errors.New("bike id already taken")
)

// Bike is a catalog entry. Amount is the owned stock and is never changed by
// availability checks; IsAvailable switches the whole model off regardless of stock.
type Bike struct {
	Id             string   `json:"id"`
	Name           string   `json:"name" validate:"required,min=3"`
	Category       Category `json:"type" validate:"required,oneof=Scooter Sport Cruiser Adventure Electric"`
	ImageUrl       string   `json:"imageUrl"`
	PricePerDay    float64  `json:"pricePerDay" validate:"gt=0"`
	Description    string   `json:"description" validate:"min=10"`
	Features       []string `json:"features" validate:"min=1,dive,required"`
	Location       string   `json:"location" validate:"required,min=3"`
	Rating         *float64 `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	IsAvailable    bool     `json:"isAvailable"`
	Amount         int32    `json:"amount" validate:"gte=0"`
	CylinderVolume *int32   `json:"cylinderVolume,omitempty"`
}

var validate = validator.New()

func (b *Bike) Validate() error {
	if err := validate.Struct(b); err != nil {
		return errors.Join(ErrInvalid, err)
	}
	return nil
}

// CylinderClass buckets bikes by engine size for catalog filtering.
type CylinderClass string

const (
	AnyVolume  CylinderClass = "all"
	NoCylinder CylinderClass = "electric"
	Under150   CylinderClass = "under-150"
	From150    CylinderClass = "150-300"
	From301    CylinderClass = "301-500"
	Over500    CylinderClass = "over-500"
)

func (b *Bike) InCylinderClass(class CylinderClass) bool {
	switch class {
	case "", AnyVolume:
		return true
	case NoCylinder:
		return b.Category == Electric || b.CylinderVolume == nil
	}
	if b.CylinderVolume == nil {
		return false
	}
	v := *b.CylinderVolume
	switch class {
	case Under150:
		return v < 150
	case From150:
		return v >= 150 && v <= 300
	case From301:
		return v >= 301 && v <= 500
	case Over500:
		return v > 500
	}
	return false
}

const AnyLocation = "Any Location"

type Filter struct {
	Location string
	Category Category
	Cylinder CylinderClass
}

func (f Filter) Matches(b *Bike) bool {
	if f.Location != "" && f.Location != AnyLocation && !strings.EqualFold(f.Location, b.Location) {
		return false
	}
	if f.Category != "" && f.Category != "all" && f.Category != b.Category {
		return false
	}
	return b.InCylinderClass(f.Cylinder)
}
