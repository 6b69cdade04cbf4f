package voucher

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/avstrong/resort/internal/booking"
)

const (
	qrSize    = 256
	currency  = "INR"
	lineH     = 8.0
	labelW    = 50.0
	qrPosX    = 150.0
	qrPosY    = 20.0
	qrPrintMM = 40.0
)

type Hotel struct {
	Name    string
	Address string
	Phone   string
}

var printer = message.NewPrinter(language.English)

// FormatAmount groups thousands and keeps paise only when present.
func FormatAmount(amount decimal.Decimal) string {
	if amount.Equal(amount.Truncate(0)) {
		return printer.Sprintf("%d", amount.IntPart())
	}

	return printer.Sprintf("%.2f", amount.InexactFloat64())
}

// QRPayload is what the voucher QR code encodes.
func QRPayload(b *booking.Booking) string {
	return strings.Join([]string{b.ID, b.CheckIn.String(), b.CheckOut.String()}, "|")
}

// Render builds the confirmation voucher PDF for a booking.
func Render(b *booking.Booking, hotel Hotel) ([]byte, error) {
	qr, err := qrcode.Encode(QRPayload(b), qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr for booking %v: %w", b.ID, err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking "+b.ID, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, hotel.Name)
	pdf.Ln(lineH)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, hotel.Address)
	pdf.Ln(5)
	pdf.Cell(0, 6, hotel.Phone)
	pdf.Ln(14)

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, "Booking confirmation "+b.ID)
	pdf.Ln(12)

	rows := [][2]string{
		{"Guest", b.CustomerName},
		{"Email", b.CustomerEmail},
		{"Phone", b.CustomerPhone},
		{"Room", b.RoomTitle},
		{"Check-in", b.CheckIn.String()},
		{"Check-out", b.CheckOut.String()},
		{"Nights", fmt.Sprint(booking.Nights(b.Range()))},
		{"Guests", fmt.Sprint(b.Guests)},
		{"Subtotal", currency + " " + FormatAmount(b.Subtotal)},
	}

	if b.PromoCode != "" {
		rows = append(rows, [2]string{"Discount (" + b.PromoCode + ")", "- " + currency + " " + FormatAmount(b.Discount)})
	}

	rows = append(rows,
		[2]string{"Total", currency + " " + FormatAmount(b.Total)},
		[2]string{"Payment", fmt.Sprintf("%v (%v)", b.PaymentMethod, b.PaymentStatus)},
		[2]string{"Status", string(b.Status)},
	)

	for _, row := range rows {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(labelW, lineH, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, lineH, row[1], "", 1, "L", false, 0, "")
	}

	//nolint:exhaustruct
	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qr))
	pdf.ImageOptions("qr", qrPosX, qrPosY, qrPrintMM, qrPrintMM, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render voucher for booking %v: %w", b.ID, err)
	}

	return buf.Bytes(), nil
}
