package model

// Category is an expense category. The values are the localized names shown to users.
type Category string

const (
	CategoryMeals     Category = "餐费"
	CategoryLodging   Category = "住宿"
	CategoryTransport Category = "交通"
	CategoryRnD       Category = "研发费用"
)

// Categories lists the accepted categories in display order.
var Categories = []Category{
	CategoryMeals,
	CategoryLodging,
	CategoryTransport,
	CategoryRnD,
}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
