package repo

// Paging bounds for Get.
const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// Sort orders a result set by one column.
type Sort struct {
	Column string
	Desc   bool
}

// Condition is one filter predicate. Op must be one of the supported
// comparison operators; Value always travels as a bind parameter.
type Condition struct {
	Column string
	Op     string
	Value  any
}

// Filter is an AND-combined list of conditions.
type Filter []Condition

var allowedOps = map[string]string{
	"=":     "=",
	"<>":    "<>",
	"<":     "<",
	"<=":    "<=",
	">":     ">",
	">=":    ">=",
	"like":  "LIKE",
	"ilike": "ILIKE",
}

func clampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func clampPageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}
