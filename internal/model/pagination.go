package model

// Pagination mirrors the list envelope's pagination block.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	From        int `json:"from"`
	To          int `json:"to"`
}

// Normalize fills the derived fields a server may omit. count is the number of
// items actually returned for the page.
func (p Pagination) Normalize(count int) Pagination {
	if p.PerPage <= 0 {
		p.PerPage = count
	}
	if p.CurrentPage <= 0 {
		p.CurrentPage = 1
	}
	if p.Total < count {
		p.Total = count
	}
	if p.PerPage > 0 {
		p.LastPage = (p.Total + p.PerPage - 1) / p.PerPage
	}
	if p.LastPage < 1 {
		p.LastPage = 1
	}
	if count == 0 {
		p.From, p.To = 0, 0
		return p
	}
	if p.From <= 0 {
		p.From = (p.CurrentPage-1)*p.PerPage + 1
	}
	if p.To <= 0 || p.To < p.From {
		p.To = p.From + count - 1
	}
	return p
}

func (p Pagination) HasNext() bool { return p.CurrentPage < p.LastPage }
func (p Pagination) HasPrev() bool { return p.CurrentPage > 1 }
