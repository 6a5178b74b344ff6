package logbook

import "fmt"

// Codec converts block bodies of one category to records and back.
type Codec interface {
	Category() Category
	Tag() string
	Parse(body string) Record
	Serialize(r Record) (string, error)
}

type codec[T Record] struct {
	category Category
	parse    func(string) T
}

func (c codec[T]) Category() Category { return c.category }
func (c codec[T]) Tag() string        { return c.category.Tag() }
func (c codec[T]) Parse(body string) Record {
	return c.parse(body)
}

func (c codec[T]) Serialize(r Record) (string, error) {
	if _, ok := r.(T); !ok {
		return "", fmt.Errorf("%w: %s codec got %T", ErrCategoryMismatch, c.category, r)
	}
	return r.Serialize(), nil
}

var codecs = map[Category]Codec{
	CategoryWorkout: codec[Workout]{category: CategoryWorkout, parse: ParseWorkout},
	CategoryStudy:   codec[StudyLog]{category: CategoryStudy, parse: ParseStudy},
	CategoryWork:    codec[WorkLog]{category: CategoryWork, parse: ParseWork},
	CategoryMeal:    codec[MealLog]{category: CategoryMeal, parse: ParseMeal},
}

// CodecFor returns the codec registered for c.
func CodecFor(c Category) (Codec, error) {
	if cd, ok := codecs[c]; ok {
		return cd, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, c)
}

// Parse dispatches body to the codec for c.
func Parse(c Category, body string) (Record, error) {
	cd, err := CodecFor(c)
	if err != nil {
		return nil, err
	}
	return cd.Parse(body), nil
}
