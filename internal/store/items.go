package store

import (
	"fmt"
	"time"

	"github.com/aaoeclipse/serverless-qr-manager/pkg/types"
)

// Raw table records. Timestamps are stored as RFC3339 strings and resource
// identifiers live only in the SK suffix; they are reconstructed on read.

type keyItem struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
}

type profileItem struct {
	keyItem
	Email                 string  `dynamodbav:"email"`
	Name                  string  `dynamodbav:"name,omitempty"`
	CreatedAt             string  `dynamodbav:"createdAt"`
	Tier                  string  `dynamodbav:"tier"`
	Directory             string  `dynamodbav:"directory"`
	SubscriptionID        *string `dynamodbav:"subscriptionId,omitempty"`
	SubscriptionStatus    string  `dynamodbav:"subscriptionStatus,omitempty"`
	SubscriptionStartDate string  `dynamodbav:"subscriptionStartDate,omitempty"`
	SubscriptionEndDate   string  `dynamodbav:"subscriptionEndDate,omitempty"`
}

type qrItem struct {
	keyItem
	Type      string `dynamodbav:"type"`
	Path      string `dynamodbav:"path"`
	Name      string `dynamodbav:"name"`
	QRDataURL string `dynamodbav:"qrDataUrl"`
	CreatedAt string `dynamodbav:"createdAt"`
}

type documentItem struct {
	keyItem
	Name      string `dynamodbav:"name"`
	URL       string `dynamodbav:"url"`
	CreatedAt string `dynamodbav:"createdAt"`
	OwnerID   string `dynamodbav:"ownerId"`
	Uploading bool   `dynamodbav:"uploading"`
}

type counterItem struct {
	keyItem
	N int64 `dynamodbav:"n"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseTimePtr(s string) *time.Time {
	if s == "" {
		return nil
	}
	t := parseTime(s)
	if t.IsZero() {
		return nil
	}
	return &t
}

func newProfileItem(p *types.Profile) profileItem {
	item := profileItem{
		keyItem: keyItem{
			PK: UserPK(p.ID),
			SK: SortKey(KindProfile, p.ID),
		},
		Email:              p.Email,
		Name:               p.Name,
		CreatedAt:          formatTime(p.CreatedAt),
		Tier:               string(p.Tier),
		Directory:          p.Directory,
		SubscriptionID:     p.SubscriptionID,
		SubscriptionStatus: string(p.SubscriptionStatus),
	}
	if p.SubscriptionStartDate != nil {
		item.SubscriptionStartDate = formatTime(*p.SubscriptionStartDate)
	}
	if p.SubscriptionEndDate != nil {
		item.SubscriptionEndDate = formatTime(*p.SubscriptionEndDate)
	}
	return item
}

func (i profileItem) toProfile() (*types.Profile, error) {
	_, id, err := ParseSortKey(i.SK)
	if err != nil {
		return nil, fmt.Errorf("profile item: %w", err)
	}

	tier := types.Tier(i.Tier)
	if tier == "" {
		tier = types.TierFree
	}
	status := types.SubscriptionStatus(i.SubscriptionStatus)
	if status == "" {
		status = types.SubscriptionNone
	}

	return &types.Profile{
		ID:                    id,
		Email:                 i.Email,
		Name:                  i.Name,
		CreatedAt:             parseTime(i.CreatedAt),
		Tier:                  tier,
		Directory:             i.Directory,
		SubscriptionID:        i.SubscriptionID,
		SubscriptionStatus:    status,
		SubscriptionStartDate: parseTimePtr(i.SubscriptionStartDate),
		SubscriptionEndDate:   parseTimePtr(i.SubscriptionEndDate),
	}, nil
}

func newQRItem(tenantID string, qr *types.QR) qrItem {
	return qrItem{
		keyItem: keyItem{
			PK: UserPK(tenantID),
			SK: SortKey(KindQR, qr.ID),
		},
		Type:      string(qr.Type),
		Path:      qr.Path,
		Name:      qr.Name,
		QRDataURL: qr.DataURL,
		CreatedAt: formatTime(qr.CreatedAt),
	}
}

func (i qrItem) toQR() (*types.QR, error) {
	_, id, err := ParseSortKey(i.SK)
	if err != nil {
		return nil, fmt.Errorf("qr item: %w", err)
	}

	qrType := types.QRType(i.Type)
	if !types.ValidQRType(qrType) {
		qrType = types.QRTypeOther
	}

	return &types.QR{
		ID:        id,
		Type:      qrType,
		Path:      i.Path,
		Name:      i.Name,
		DataURL:   i.QRDataURL,
		CreatedAt: parseTime(i.CreatedAt),
	}, nil
}

func newDocumentItem(tenantID string, doc *types.Document) documentItem {
	return documentItem{
		keyItem: keyItem{
			PK: UserPK(tenantID),
			SK: SortKey(KindDocument, doc.ID),
		},
		Name:      doc.Name,
		URL:       doc.URL,
		CreatedAt: formatTime(doc.CreatedAt),
		OwnerID:   doc.OwnerID,
		Uploading: doc.Uploading,
	}
}

func (i documentItem) toDocument() (*types.Document, error) {
	_, id, err := ParseSortKey(i.SK)
	if err != nil {
		return nil, fmt.Errorf("document item: %w", err)
	}

	return &types.Document{
		ID:        id,
		Name:      i.Name,
		URL:       i.URL,
		CreatedAt: parseTime(i.CreatedAt),
		OwnerID:   i.OwnerID,
		Uploading: i.Uploading,
	}, nil
}
