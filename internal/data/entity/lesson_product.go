package entity

type LessonProduct struct {
	Base
	Name        string `db:"name"`
	Price       int64  `db:"price"`
	Description string `db:"description"`
}
