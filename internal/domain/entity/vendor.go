package entity

import "time"

// Vendor proveedor dueño de insumos. No se puede eliminar mientras tenga insumos.
type Vendor struct {
	ID           int64
	Name         string // único
	Cellphone    string
	UserEmail    string
	CreationDate time.Time
}
