package domain

// PaginationParams holds from/size pagination parameters for list queries.
type PaginationParams struct {
	From int
	Size int
}

// Offset returns the row offset of the page that contains From.
// Formula: (From / Size) * Size, so pages are always aligned to Size.
func (p PaginationParams) Offset() int {
	if p.Size < 1 || p.From < 0 {
		return 0
	}
	return (p.From / p.Size) * p.Size
}
