package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/xaldigital/insumos-portal/internal/domain/entity"
)

// rosterColumns encabezado esperado del CSV del padrón.
var rosterColumns = []string{
	"email", "nombre", "cwid", "equipo", "direccion", "num_ext", "num_int",
	"colonia", "ciudad", "estado", "cp", "telefono",
}

// parseRoster lee el padrón exportado de Excel. latin1 = archivo en ISO-8859-1 (exportación por defecto de Excel en español).
// Las columnas se ubican por nombre; filas sin email se omiten.
func parseRoster(r io.Reader, latin1 bool) ([]*entity.BayerUser, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("leer encabezado: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	if _, ok := idx["email"]; !ok {
		return nil, errors.New("el padrón no tiene columna email")
	}

	var out []*entity.BayerUser
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		col := func(name string) string {
			i, ok := idx[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		email := strings.ToLower(col("email"))
		if email == "" {
			continue
		}
		out = append(out, &entity.BayerUser{
			Email:        email,
			Name:         col("nombre"),
			CWID:         strings.ToUpper(col("cwid")),
			CustomerTeam: col("equipo"),
			Address:      col("direccion"),
			ExtNumber:    col("num_ext"),
			IntNumber:    col("num_int"),
			Colonia:      col("colonia"),
			City:         col("ciudad"),
			State:        col("estado"),
			PostalCode:   col("cp"),
			Phone:        col("telefono"),
		})
	}
	return out, nil
}

// demoRoster padrón sintético para desarrollo.
func demoRoster() []*entity.BayerUser {
	return []*entity.BayerUser{
		{Email: "ana.lopez@bayer.com", Name: "Ana López", CWID: "EXAMP01", CustomerTeam: "Norte", Address: "Av. Constitución", ExtNumber: "100", Colonia: "Centro", City: "Monterrey", State: "Nuevo León", PostalCode: "64000", Phone: "8100000001"},
		{Email: "luis.perez@bayer.com", Name: "Luis Pérez", CWID: "EXAMP02", CustomerTeam: "Centro", Address: "Paseo de la Reforma", ExtNumber: "250", IntNumber: "4B", Colonia: "Juárez", City: "Ciudad de México", State: "CDMX", PostalCode: "06600", Phone: "5500000002"},
		{Email: "maria.garcia@bayer.com", Name: "María García", CWID: "EXAMP03", CustomerTeam: "Occidente", Address: "Av. Chapultepec", ExtNumber: "45", Colonia: "Americana", City: "Guadalajara", State: "Jalisco", PostalCode: "44160", Phone: "3300000003"},
	}
}
