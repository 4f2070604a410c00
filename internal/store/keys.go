package store

import (
	"fmt"
	"strings"
)

// Kind identifies a resource class within a tenant partition. The kind is
// the sort key prefix, so one begins_with query enumerates a tenant's
// resources of a single class.
type Kind string

const (
	KindProfile  Kind = "PROFILE"
	KindQR       Kind = "QR"
	KindDocument Kind = "DOCUMENT"
	KindCounter  Kind = "COUNT"
)

// keyDelimiter joins typed key segments. It is not permitted inside
// identifiers; ValidIdentifier enforces that before any key is built.
const keyDelimiter = "#"

// UserPK builds the partition key for a tenant. Every store operation folds
// the tenant id into the partition key before it reaches DynamoDB, which is
// what makes cross-tenant reads structurally impossible.
func UserPK(tenantID string) string {
	return "USER" + keyDelimiter + tenantID
}

// SortKey builds the sort key for one resource of the given kind.
func SortKey(kind Kind, id string) string {
	return string(kind) + keyDelimiter + id
}

// KindPrefix is the begins_with prefix covering every resource of a kind.
func KindPrefix(kind Kind) string {
	return string(kind) + keyDelimiter
}

// ParseSortKey splits a sort key back into kind and resource id.
func ParseSortKey(sk string) (Kind, string, error) {
	prefix, id, ok := strings.Cut(sk, keyDelimiter)
	if !ok || prefix == "" || id == "" {
		return "", "", fmt.Errorf("malformed sort key %q", sk)
	}
	return Kind(prefix), id, nil
}

// ValidIdentifier reports whether id can be embedded in a key segment.
func ValidIdentifier(id string) bool {
	return id != "" && !strings.Contains(id, keyDelimiter)
}
