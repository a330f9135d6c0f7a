package types

// ListQuery selects and pages rows from a table.
type ListQuery struct {
	// Where is a remote filter expression, e.g. "(Email,eq,a@b.c)".
	Where  string
	Limit  int
	Offset int
}

// RowPage is one page of a table listing.
type RowPage struct {
	Rows   []Row
	IsLast bool
	Total  int
}
