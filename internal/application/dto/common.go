package dto

import "math"

// MaxPerPage tope de elementos por página en todos los listados.
const MaxPerPage = 10

// maxPage evita que (Page-1)*PerPage desborde.
const maxPage = math.MaxInt / MaxPerPage

// PageRequest paginación para listados (?page=&per_page=).
type PageRequest struct {
	Page    int `query:"page"`
	PerPage int `query:"per_page"`
}

// Normalize aplica valores por defecto y el tope de MaxPerPage aunque se pidan más.
func (p *PageRequest) Normalize() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Page > maxPage {
		p.Page = maxPage
	}
	if p.PerPage <= 0 || p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
}

// Offset desplazamiento SQL de la página.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	Total   int  `json:"total"`
	Pages   int  `json:"pages"`
	HasPrev bool `json:"has_prev"`
	HasNext bool `json:"has_next"`
	PrevNum int  `json:"prev_num,omitempty"`
	NextNum int  `json:"next_num,omitempty"`
}

// NewPageResponse calcula los metadatos a partir de la petición normalizada y el total.
func NewPageResponse(p PageRequest, total int) PageResponse {
	pages := 0
	if p.PerPage > 0 {
		pages = (total + p.PerPage - 1) / p.PerPage
	}
	r := PageResponse{Page: p.Page, PerPage: p.PerPage, Total: total, Pages: pages}
	if p.Page > 1 {
		r.HasPrev = true
		r.PrevNum = p.Page - 1
	}
	if p.Page < pages {
		r.HasNext = true
		r.NextNum = p.Page + 1
	}
	return r
}

// ErrorResponse cuerpo de error en endpoints JSON (/getvendorlist, /autocomplete).
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
