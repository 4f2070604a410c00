package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/aaoeclipse/serverless-qr-manager/pkg/types"
)

// DynamoAPI is the slice of the DynamoDB client this package uses. Narrowed
// so tests can substitute a fake without a live table.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DB implements ProfileStore, QRStore, DocumentStore and QuotaStore against
// one DynamoDB table.
type DB struct {
	client DynamoAPI
	table  string
}

func NewDB(client DynamoAPI, table string) *DB {
	return &DB{client: client, table: table}
}

func (d *DB) key(tenantID string, kind Kind, id string) map[string]ddbtypes.AttributeValue {
	return map[string]ddbtypes.AttributeValue{
		"PK": &ddbtypes.AttributeValueMemberS{Value: UserPK(tenantID)},
		"SK": &ddbtypes.AttributeValueMemberS{Value: SortKey(kind, id)},
	}
}

func (d *DB) prefixQuery(tenantID string, kind Kind) *dynamodb.QueryInput {
	return &dynamodb.QueryInput{
		TableName:              aws.String(d.table),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":pk": &ddbtypes.AttributeValueMemberS{Value: UserPK(tenantID)},
			":sk": &ddbtypes.AttributeValueMemberS{Value: KindPrefix(kind)},
		},
	}
}

func conditionFailed(err error) bool {
	var ccf *ddbtypes.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func (d *DB) putItem(ctx context.Context, record any) error {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}

	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put item: %w: %w", types.ErrUpstream, err)
	}
	return nil
}

func (d *DB) getItem(ctx context.Context, tenantID string, kind Kind, id string, out any) error {
	resp, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.table),
		Key:       d.key(tenantID, kind, id),
	})
	if err != nil {
		return fmt.Errorf("get item: %w: %w", types.ErrUpstream, err)
	}
	if resp.Item == nil {
		return types.ErrNotFound
	}
	if err := attributevalue.UnmarshalMap(resp.Item, out); err != nil {
		return fmt.Errorf("unmarshal item: %w", err)
	}
	return nil
}

func (d *DB) deleteItem(ctx context.Context, tenantID string, kind Kind, id string) (bool, error) {
	resp, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(d.table),
		Key:          d.key(tenantID, kind, id),
		ReturnValues: ddbtypes.ReturnValueAllOld,
	})
	if err != nil {
		return false, fmt.Errorf("delete item: %w: %w", types.ErrUpstream, err)
	}
	return len(resp.Attributes) > 0, nil
}

// ProfileStore

func (d *DB) Put(ctx context.Context, profile *types.Profile) error {
	return d.putItem(ctx, newProfileItem(profile))
}

func (d *DB) Get(ctx context.Context, tenantID string) (*types.Profile, error) {
	var item profileItem
	if err := d.getItem(ctx, tenantID, KindProfile, tenantID, &item); err != nil {
		return nil, err
	}
	return item.toProfile()
}

func (d *DB) Tier(ctx context.Context, tenantID string) (types.Tier, error) {
	resp, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                aws.String(d.table),
		Key:                      d.key(tenantID, KindProfile, tenantID),
		ProjectionExpression:     aws.String("#tier"),
		ExpressionAttributeNames: map[string]string{"#tier": "tier"},
	})
	if err != nil {
		return "", fmt.Errorf("get tier: %w: %w", types.ErrUpstream, err)
	}
	if resp.Item == nil {
		return types.TierFree, nil
	}

	var projected struct {
		Tier string `dynamodbav:"tier"`
	}
	if err := attributevalue.UnmarshalMap(resp.Item, &projected); err != nil {
		return "", fmt.Errorf("unmarshal tier: %w", err)
	}
	if projected.Tier == "" {
		return types.TierFree, nil
	}
	return types.Tier(projected.Tier), nil
}

// QRStore

type qrDB struct{ *DB }

// QRs returns the QR-typed view of the table.
func (d *DB) QRs() QRStore { return qrDB{d} }

func (d qrDB) Create(ctx context.Context, tenantID string, qr *types.QR) error {
	return d.putItem(ctx, newQRItem(tenantID, qr))
}

func (d qrDB) Get(ctx context.Context, tenantID, qrID string) (*types.QR, error) {
	var item qrItem
	if err := d.getItem(ctx, tenantID, KindQR, qrID, &item); err != nil {
		return nil, err
	}
	return item.toQR()
}

func (d qrDB) List(ctx context.Context, tenantID string) ([]types.QR, error) {
	qrs := make([]types.QR, 0)

	paginator := dynamodb.NewQueryPaginator(d.client, d.prefixQuery(tenantID, KindQR))
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query qrs: %w: %w", types.ErrUpstream, err)
		}
		for _, raw := range page.Items {
			var item qrItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, fmt.Errorf("unmarshal qr item: %w", err)
			}
			qr, err := item.toQR()
			if err != nil {
				return nil, err
			}
			qrs = append(qrs, *qr)
		}
	}

	return qrs, nil
}

func (d qrDB) Delete(ctx context.Context, tenantID, qrID string) (bool, error) {
	return d.deleteItem(ctx, tenantID, KindQR, qrID)
}

// DocumentStore

type documentDB struct{ *DB }

// Documents returns the document-typed view of the table.
func (d *DB) Documents() DocumentStore { return documentDB{d} }

func (d documentDB) Create(ctx context.Context, tenantID string, doc *types.Document) error {
	return d.putItem(ctx, newDocumentItem(tenantID, doc))
}

func (d documentDB) Get(ctx context.Context, tenantID, docID string) (*types.Document, error) {
	var item documentItem
	if err := d.getItem(ctx, tenantID, KindDocument, docID, &item); err != nil {
		return nil, err
	}
	return item.toDocument()
}

func (d documentDB) List(ctx context.Context, tenantID string) ([]types.Document, error) {
	docs := make([]types.Document, 0)

	paginator := dynamodb.NewQueryPaginator(d.client, d.prefixQuery(tenantID, KindDocument))
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query documents: %w: %w", types.ErrUpstream, err)
		}
		for _, raw := range page.Items {
			var item documentItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, fmt.Errorf("unmarshal document item: %w", err)
			}
			doc, err := item.toDocument()
			if err != nil {
				return nil, err
			}
			docs = append(docs, *doc)
		}
	}

	return docs, nil
}

func (d documentDB) Delete(ctx context.Context, tenantID, docID string) (bool, error) {
	return d.deleteItem(ctx, tenantID, KindDocument, docID)
}

func (d documentDB) SetUploading(ctx context.Context, tenantID, docID string, uploading bool) error {
	// Condition prevents the update from upserting a fresh item for an
	// unknown document id.
	_, err := d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(d.table),
		Key:                 d.key(tenantID, KindDocument, docID),
		UpdateExpression:    aws.String("SET uploading = :uploading"),
		ConditionExpression: aws.String("attribute_exists(PK)"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":uploading": &ddbtypes.AttributeValueMemberBOOL{Value: uploading},
		},
	})
	if err != nil {
		if conditionFailed(err) {
			return types.ErrNotFound
		}
		return fmt.Errorf("update uploading: %w: %w", types.ErrUpstream, err)
	}
	return nil
}

// QuotaStore

func (d *DB) CountByPrefix(ctx context.Context, tenantID string, kind Kind) (int64, error) {
	input := d.prefixQuery(tenantID, kind)
	input.Select = ddbtypes.SelectCount

	var total int64
	paginator := dynamodb.NewQueryPaginator(d.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("count %s: %w: %w", kind, types.ErrUpstream, err)
		}
		total += int64(page.Count)
	}
	return total, nil
}

func (d *DB) Reserve(ctx context.Context, tenantID string, kind Kind, ceiling int64) error {
	input := &dynamodb.UpdateItemInput{
		TableName:        aws.String(d.table),
		Key:              d.key(tenantID, KindCounter, string(kind)),
		UpdateExpression: aws.String("ADD n :one"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":one": &ddbtypes.AttributeValueMemberN{Value: "1"},
		},
	}
	if ceiling > 0 {
		input.ConditionExpression = aws.String("attribute_not_exists(n) OR n < :ceiling")
		input.ExpressionAttributeValues[":ceiling"] = &ddbtypes.AttributeValueMemberN{
			Value: fmt.Sprintf("%d", ceiling),
		}
	}

	_, err := d.client.UpdateItem(ctx, input)
	if err != nil {
		if conditionFailed(err) {
			return types.ErrQuotaExceeded
		}
		return fmt.Errorf("reserve %s slot: %w: %w", kind, types.ErrUpstream, err)
	}
	return nil
}

func (d *DB) Release(ctx context.Context, tenantID string, kind Kind) error {
	_, err := d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(d.table),
		Key:                 d.key(tenantID, KindCounter, string(kind)),
		UpdateExpression:    aws.String("ADD n :negative"),
		ConditionExpression: aws.String("attribute_exists(n) AND n > :zero"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":negative": &ddbtypes.AttributeValueMemberN{Value: "-1"},
			":zero":     &ddbtypes.AttributeValueMemberN{Value: "0"},
		},
	})
	if err != nil {
		if conditionFailed(err) {
			// Counter already at zero; nothing to release.
			return nil
		}
		return fmt.Errorf("release %s slot: %w: %w", kind, types.ErrUpstream, err)
	}
	return nil
}
