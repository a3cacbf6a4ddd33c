// Package pdf genera las cartas de un pedido (solicitud y respuesta) con Maroto v2.
//
// Layout de la carta de solicitud (A4):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  LOGO  │  CARTA DE SOLICITUD DE INSUMOS  │  Pedido + Fecha   │
//	│  DESTINATARIO: médico, cargo, institución                   │
//	│  TABLA: Cant | Insumo | Costo unit. | Subtotal               │
//	│  TOTAL                                                       │
//	│  ENTREGA + REPRESENTANTE + FIRMA                             │
//	└─────────────────────────────────────────────────────────────┘
//
// La carta de respuesta repite el encabezado y cierra con la firma de recibido.
package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/xaldigital/insumos-portal/internal/application/order"
	"github.com/xaldigital/insumos-portal/internal/domain/entity"
	"github.com/xaldigital/insumos-portal/pkg/money"
)

var _ order.LetterGenerator = (*MarotoLetterGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 16, Green: 56, Blue: 79}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

const dateFormat = "02/01/2006"

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoLetterGenerator implementa order.LetterGenerator.
type MarotoLetterGenerator struct {
	logo    []byte
	logoExt extension.Type
	now     func() time.Time
}

// NewMarotoLetterGenerator carga el logo de logoPath (png/jpg). Ruta vacía = cartas sin logo.
func NewMarotoLetterGenerator(logoPath string) (*MarotoLetterGenerator, error) {
	g := &MarotoLetterGenerator{now: time.Now}
	if logoPath == "" {
		return g, nil
	}
	ext, ok := imageExtension(filepath.Ext(logoPath))
	if !ok {
		return nil, fmt.Errorf("pdf: logo %q debe ser png o jpg", logoPath)
	}
	b, err := os.ReadFile(logoPath)
	if err != nil {
		return nil, fmt.Errorf("pdf: leer logo: %w", err)
	}
	g.logo, g.logoExt = b, ext
	return g, nil
}

// GenerateLetter devuelve los bytes del PDF.
func (g *MarotoLetterGenerator) GenerateLetter(_ context.Context, lt entity.LetterType, data order.LetterData) ([]byte, error) {
	if data.Order == nil {
		return nil, fmt.Errorf("pdf: pedido vacío")
	}
	title := "CARTA DE SOLICITUD DE INSUMOS"
	if lt == entity.LetterResponse {
		title = "CARTA DE RESPUESTA Y RECEPCIÓN"
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).WithRightMargin(15).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 10}).
		WithTitle(title, true).
		Build()

	m := maroto.New(cfg)
	o := data.Order

	m.AddRows(g.headerRow(title, o))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(recipientRow(o))

	var rows []core.Row
	var err error
	switch lt {
	case entity.LetterRequest:
		rows, err = requestBody(o, data.Representative)
	case entity.LetterResponse:
		rows, err = responseBody(o)
	default:
		return nil, fmt.Errorf("pdf: tipo de carta desconocido %q", lt)
	}
	if err != nil {
		return nil, err
	}
	m.AddRows(rows...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *MarotoLetterGenerator) headerRow(title string, o *entity.Order) core.Row {
	titleCol := col.New(6).Add(
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 4}),
	)
	right := col.New(3).Add(
		text.New(fmt.Sprintf("Pedido N° %d", o.ID), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 3}),
		text.New("Fecha: "+g.now().Format(dateFormat), props.Text{Size: 8, Align: align.Right, Top: 10, Color: colorGray}),
	)
	if len(g.logo) == 0 {
		return row.New(20).Add(col.New(3), titleCol, right)
	}
	return row.New(20).Add(
		image.NewFromBytesCol(3, g.logo, g.logoExt, props.Rect{Percent: 90}),
		titleCol,
		right,
	)
}

func recipientRow(o *entity.Order) core.Row {
	return row.New(22).Add(col.New(12).Add(
		text.New("DESTINATARIO", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}),
		text.New(nonEmpty(o.DoctorName, "-"), props.Text{Style: fontstyle.Bold, Size: 10, Top: 7}),
		text.New(nonEmpty(o.DoctorPosition, "-"), props.Text{Size: 9, Top: 12, Color: colorGray}),
		text.New(nonEmpty(o.DeliveryInstitute, "-"), props.Text{Size: 9, Top: 17, Color: colorGray}),
	))
}

func requestBody(o *entity.Order, rep *entity.BayerUser) ([]core.Row, error) {
	rows := []core.Row{
		row.New(14).Add(col.New(12).Add(text.New(
			"Por medio de la presente se solicita la entrega de los siguientes insumos médicos "+
				"para la institución indicada.",
			props.Text{Size: 9, Top: 3},
		))),
		tableHeaderRow(),
	}
	rows = append(rows, tableDetailRows(o.Lines)...)
	rows = append(rows,
		line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}),
		row.New(8).Add(
			col.New(9).Add(text.New("TOTAL:", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2, Right: 2})),
			col.New(3).Add(text.New(money.Format(o.Total), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2, Right: 1})),
		),
		row.New(14).Add(col.New(12).Add(
			text.New("LUGAR DE ENTREGA", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 3}),
			text.New(nonEmpty(o.DeliveryInformation, "-"), props.Text{Size: 9, Top: 8}),
		)),
		representativeRow(o.UserEmail, rep),
	)
	sig, err := signatureRow(o.LetterSignature, "Firma del representante")
	if err != nil {
		return nil, err
	}
	return append(rows, sig...), nil
}

func responseBody(o *entity.Order) ([]core.Row, error) {
	received := "-"
	if o.LetterResponseDate != nil {
		received = o.LetterResponseDate.Format(dateFormat)
	}
	rows := []core.Row{
		row.New(18).Add(col.New(12).Add(text.New(
			fmt.Sprintf("Se confirma la recepción de los insumos del pedido N° %d, con un total de %s, "+
				"en las instalaciones de la institución indicada.", o.ID, money.Format(o.Total)),
			props.Text{Size: 9, Top: 3},
		))),
		row.New(14).Add(
			col.New(8).Add(
				text.New("INFORMACIÓN DE ENTREGA", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}),
				text.New(nonEmpty(o.DeliveryInformation, "-"), props.Text{Size: 9, Top: 7}),
			),
			col.New(4).Add(
				text.New("FECHA DE RECEPCIÓN", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 2}),
				text.New(received, props.Text{Size: 9, Align: align.Right, Top: 7}),
			),
		),
	}
	sig, err := signatureRow(o.LetterResponseSignature, "Firma de quien recibe")
	if err != nil {
		return nil, err
	}
	return append(rows, sig...), nil
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Insumo", 6, align.Left),
		h("Costo unit.", 2, align.Right),
		h("Subtotal", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func tableDetailRows(lines []entity.OrderLine) []core.Row {
	out := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		out = append(out, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", l.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(6).Add(text.New(l.Name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(money.Format(l.Cost), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(money.Format(l.Subtotal()), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return out
}

func representativeRow(email string, rep *entity.BayerUser) core.Row {
	name, detail := email, email
	if rep != nil {
		name = rep.Name
		parts := []string{rep.Email}
		if rep.CustomerTeam != "" {
			parts = append(parts, "Equipo "+rep.CustomerTeam)
		}
		if rep.Phone != "" {
			parts = append(parts, "Tel. "+rep.Phone)
		}
		if rep.City != "" {
			parts = append(parts, strings.TrimSpace(rep.City+" "+rep.State))
		}
		detail = strings.Join(parts, "   |   ")
	}
	return row.New(16).Add(col.New(12).Add(
		text.New("REPRESENTANTE", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 3}),
		text.New(name, props.Text{Style: fontstyle.Bold, Size: 9, Top: 8}),
		text.New(detail, props.Text{Size: 8, Top: 13, Color: colorGray}),
	))
}

// signatureRow imagen de la firma capturada; sin firma deja la línea en blanco.
func signatureRow(dataURL, caption string) ([]core.Row, error) {
	rows := []core.Row{row.New(6)}
	if dataURL == "" {
		rows = append(rows, row.New(20))
	} else {
		sig, err := entity.ParseSignature(dataURL)
		if err != nil {
			return nil, fmt.Errorf("pdf: firma guardada ilegible: %w", err)
		}
		ext := extension.Png
		if sig.MIME == "image/jpeg" {
			ext = extension.Jpg
		}
		rows = append(rows, row.New(20).Add(
			col.New(4),
			image.NewFromBytesCol(4, sig.Data, ext, props.Rect{Center: true, Percent: 100}),
			col.New(4),
		))
	}
	return append(rows,
		row.New(2).Add(col.New(4), line.NewCol(4, props.Line{Color: colorGray, Thickness: 0.3}), col.New(4)),
		row.New(6).Add(col.New(12).Add(text.New(caption, props.Text{Size: 8, Align: align.Center, Color: colorGray, Top: 1}))),
	), nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func imageExtension(ext string) (extension.Type, bool) {
	switch strings.ToLower(ext) {
	case ".png":
		return extension.Png, true
	case ".jpg", ".jpeg":
		return extension.Jpg, true
	}
	return "", false
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
