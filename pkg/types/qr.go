package types

import "time"

type QRType string

const (
	QRTypeTable      QRType = "table"
	QRTypeMenu       QRType = "menu"
	QRTypePortafolio QRType = "portafolio"
	QRTypeOther      QRType = "other"
)

// ValidQRType reports whether t is one of the known QR categories.
func ValidQRType(t QRType) bool {
	switch t {
	case QRTypeTable, QRTypeMenu, QRTypePortafolio, QRTypeOther:
		return true
	}
	return false
}

// QR is a rendered QR code owned by a tenant. DataURL holds the encoded
// PNG as a base64 data URL, generated once at creation.
type QR struct {
	ID        string    `json:"qrId"`
	Type      QRType    `json:"type"`
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	DataURL   string    `json:"qrDataUrl"`
	CreatedAt time.Time `json:"createdAt"`
}
