package http

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaldigital/insumos-portal/internal/domain"
)

func TestParseIDs(t *testing.T) {
	assert.Equal(t, []int64{1, 2, 3}, parseIDs("[1,2,3]"))
	assert.Equal(t, []int64{4, 5}, parseIDs(` 4, "5" `))
	assert.Equal(t, []int64{7}, parseIDs("[7,-1,x,0]"))
	assert.Nil(t, parseIDs(""))
	assert.Nil(t, parseIDs("[]"))
}

func TestPageURL(t *testing.T) {
	assert.Equal(t, "/search_insumos?", pageURL("/search_insumos", url.Values{"search": {""}}))
	assert.Equal(t, "/api/orders_admin?status=En+camino&", pageURL("/api/orders_admin", url.Values{"status": {"En camino"}, "representante": {""}}))
}

func TestParseOrderForm(t *testing.T) {
	in, err := parseOrderForm(map[string]string{
		"quantity_insumo_3":  "2",
		"quantity_insumo_9":  " ",
		"name_3":             "Gasas",
		"medico_solicitante": " Dra. Ruiz ",
		"nombre_institucion": "Hospital Civil",
	})
	require.NoError(t, err)
	require.Len(t, in.Lines, 1)
	assert.Equal(t, int64(3), in.Lines[0].InsumoID)
	assert.Equal(t, 2, in.Lines[0].Quantity)
	assert.Equal(t, "Dra. Ruiz", in.DoctorName)
	assert.Equal(t, "Hospital Civil", in.Institution)

	_, err = parseOrderForm(map[string]string{"quantity_insumo_x": "1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = parseOrderForm(map[string]string{"quantity_insumo_1": "uno"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2026, 3, 9, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "09/03/2026", formatDate(d))
	assert.Equal(t, "09/03/2026", formatDate(&d))
	assert.Equal(t, "", formatDate((*time.Time)(nil)))
	assert.Equal(t, "", formatDate(time.Time{}))
}

func TestErrorMessage(t *testing.T) {
	status, msg := errorMessage(errors.Join(errors.New("insumo 4"), domain.ErrInsufficientStock))
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, msgInsufficientStock, msg)

	status, msg = errorMessage(errors.New("pgx: conexión cerrada"))
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, msgGeneral, msg)
}
