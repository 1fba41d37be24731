package game

import "fmt"

// Category is the kind of waste an object belongs to.
type Category uint8

const (
	Plastic Category = iota
	Paper
	Metal
	Organic
)

// AllCategories returns the categories in bin order, left to right.
func AllCategories() []Category {
	return []Category{Plastic, Paper, Metal, Organic}
}

// String returns the lower-case category name.
func (c Category) String() string {
	switch c {
	case Plastic:
		return "plastic"
	case Paper:
		return "paper"
	case Metal:
		return "metal"
	case Organic:
		return "organic"
	default:
		return fmt.Sprintf("category(%d)", uint8(c))
	}
}

// Label returns the text printed on bins and objects.
func (c Category) Label() string {
	switch c {
	case Plastic:
		return "PLASTIC"
	case Paper:
		return "PAPER"
	case Metal:
		return "METAL"
	case Organic:
		return "ORGANIC"
	default:
		return "?"
	}
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
