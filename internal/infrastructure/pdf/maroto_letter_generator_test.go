package pdf

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaldigital/insumos-portal/internal/application/order"
	"github.com/xaldigital/insumos-portal/internal/domain/entity"
	"github.com/xaldigital/insumos-portal/internal/testutil"
)

func sampleOrder() *entity.Order {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local)
	return &entity.Order{
		ID:           42,
		UserEmail:    "ana.lopez@bayer.com",
		CreationDate: now,
		Lines: []entity.OrderLine{
			{ID: 1, Name: "Gasas estériles", Quantity: 3, Cost: decimal.RequireFromString("2500.50")},
			{ID: 2, Name: "Jeringa 5ml", Quantity: 2, Cost: decimal.RequireFromString("3000")},
		},
		Status:              entity.OrderStatusInTransit,
		DoctorName:          "Dra. Rivera",
		DoctorPosition:      "Jefa de cirugía",
		DeliveryInstitute:   "Hospital Central",
		DeliveryInformation: "Av. Siempre Viva 742",
		Total:               decimal.RequireFromString("13501.50"),
	}
}

func TestGenerateLetter_Solicitud(t *testing.T) {
	g, err := NewMarotoLetterGenerator("")
	require.NoError(t, err)

	o := sampleOrder()
	o.LetterSignature = testutil.SignatureDataURL
	b, err := g.GenerateLetter(context.Background(), entity.LetterRequest, order.LetterData{
		Order:          o,
		Representative: &entity.BayerUser{Email: o.UserEmail, Name: "Ana López", CustomerTeam: "Norte", City: "Monterrey"},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
}

func TestGenerateLetter_RespuestaSinFirma(t *testing.T) {
	g, err := NewMarotoLetterGenerator("")
	require.NoError(t, err)

	b, err := g.GenerateLetter(context.Background(), entity.LetterResponse, order.LetterData{Order: sampleOrder()})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
}

func TestGenerateLetter_ConLogo(t *testing.T) {
	png, err := base64.StdEncoding.DecodeString(testutil.PNGPixel)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "logo.png")
	require.NoError(t, os.WriteFile(path, png, 0o600))

	g, err := NewMarotoLetterGenerator(path)
	require.NoError(t, err)
	b, err := g.GenerateLetter(context.Background(), entity.LetterRequest, order.LetterData{Order: sampleOrder()})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
}

func TestGenerateLetter_Errores(t *testing.T) {
	g, err := NewMarotoLetterGenerator("")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = g.GenerateLetter(ctx, entity.LetterRequest, order.LetterData{})
	assert.Error(t, err)

	_, err = g.GenerateLetter(ctx, "otra", order.LetterData{Order: sampleOrder()})
	assert.Error(t, err)

	o := sampleOrder()
	o.LetterSignature = "data:image/png;base64,no-es-imagen"
	_, err = g.GenerateLetter(ctx, entity.LetterRequest, order.LetterData{Order: o})
	assert.Error(t, err)

	_, err = NewMarotoLetterGenerator("/no/existe/logo.png")
	assert.Error(t, err)
	_, err = NewMarotoLetterGenerator("logo.gif")
	assert.Error(t, err)
}
