package entity

// BayerUser entrada del padrón de representantes (sólo lectura; se carga con cmd/seed).
type BayerUser struct {
	ID           int64
	Email        string // único
	CustomerTeam string
	Name         string
	CWID         string
	Address      string
	ExtNumber    string
	IntNumber    string
	Colonia      string
	City         string
	State        string
	PostalCode   string
	Phone        string
}
