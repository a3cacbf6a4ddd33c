package dto

import "time"

// VendorRequest formulario de alta de proveedor.
type VendorRequest struct {
	Name      string `form:"name"`
	Cellphone string `form:"cellphone"`
}

// VendorResponse proveedor (también es el elemento de /getvendorlist).
type VendorResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Cellphone    string    `json:"cellphone"`
	UserEmail    string    `json:"user_email"`
	CreationDate time.Time `json:"creation_date"`
}

// VendorListResponse página de proveedores.
type VendorListResponse struct {
	Items []VendorResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}
