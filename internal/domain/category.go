package domain

// Category is the employee class that selects the allocation rules
type Category string

const (
	Commissioner Category = "Commissioner"
	Retiree      Category = "Retiree"
	NonExempt    Category = "NonExempt"
	Exempt       Category = "Exempt"
)

// Categories lists every class in precedence order
var Categories = []Category{Commissioner, Retiree, NonExempt, Exempt}

// UsesActualHours reports whether the class is split by actual charge-date hours
func (c Category) UsesActualHours() bool {
	return c == Commissioner || c == NonExempt
}
