package store

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaoeclipse/serverless-qr-manager/pkg/types"
)

type fakeDynamo struct {
	getItem    func(*dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error)
	putItem    func(*dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error)
	deleteItem func(*dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error)
	updateItem func(*dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error)
	query      func(*dynamodb.QueryInput) (*dynamodb.QueryOutput, error)
}

func (f *fakeDynamo) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return f.getItem(params)
}

func (f *fakeDynamo) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	return f.putItem(params)
}

func (f *fakeDynamo) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	return f.deleteItem(params)
}

func (f *fakeDynamo) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	return f.updateItem(params)
}

func (f *fakeDynamo) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	return f.query(params)
}

func stringAttr(item map[string]ddbtypes.AttributeValue, name string) string {
	member, ok := item[name].(*ddbtypes.AttributeValueMemberS)
	if !ok {
		return ""
	}
	return member.Value
}

func TestDBGetScopesKeyToTenantPartition(t *testing.T) {
	var captured *dynamodb.GetItemInput
	fake := &fakeDynamo{
		getItem: func(in *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
			captured = in
			return &dynamodb.GetItemOutput{}, nil
		},
	}
	db := NewDB(fake, "users-table")

	_, err := db.QRs().Get(context.Background(), "tenant-a", "qr-1")
	require.ErrorIs(t, err, types.ErrNotFound)

	require.NotNil(t, captured)
	assert.Equal(t, "users-table", aws.ToString(captured.TableName))
	assert.Equal(t, "USER#tenant-a", stringAttr(captured.Key, "PK"))
	assert.Equal(t, "QR#qr-1", stringAttr(captured.Key, "SK"))
}

func TestDBDeleteReportsExistence(t *testing.T) {
	fake := &fakeDynamo{
		deleteItem: func(in *dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error) {
			require.Equal(t, ddbtypes.ReturnValueAllOld, in.ReturnValues)
			if stringAttr(in.Key, "SK") == "QR#present" {
				return &dynamodb.DeleteItemOutput{
					Attributes: map[string]ddbtypes.AttributeValue{
						"PK": &ddbtypes.AttributeValueMemberS{Value: "USER#u1"},
					},
				}, nil
			}
			return &dynamodb.DeleteItemOutput{}, nil
		},
	}
	db := NewDB(fake, "users-table")

	existed, err := db.QRs().Delete(context.Background(), "u1", "present")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = db.QRs().Delete(context.Background(), "u1", "absent")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestDBSetUploadingNeverUpserts(t *testing.T) {
	fake := &fakeDynamo{
		updateItem: func(in *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
			require.Equal(t, "attribute_exists(PK)", aws.ToString(in.ConditionExpression))
			return nil, &ddbtypes.ConditionalCheckFailedException{}
		},
	}
	db := NewDB(fake, "users-table")

	err := db.Documents().SetUploading(context.Background(), "u1", "missing", false)
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestDBReserveConditionGatesCeiling(t *testing.T) {
	var captured *dynamodb.UpdateItemInput
	fake := &fakeDynamo{
		updateItem: func(in *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
			captured = in
			return &dynamodb.UpdateItemOutput{}, nil
		},
	}
	db := NewDB(fake, "users-table")

	require.NoError(t, db.Reserve(context.Background(), "u1", KindQR, 1))
	require.NotNil(t, captured)
	assert.Equal(t, "USER#u1", stringAttr(captured.Key, "PK"))
	assert.Equal(t, "COUNT#QR", stringAttr(captured.Key, "SK"))
	assert.Equal(t, "attribute_not_exists(n) OR n < :ceiling", aws.ToString(captured.ConditionExpression))

	captured = nil
	require.NoError(t, db.Reserve(context.Background(), "u1", KindQR, 0))
	require.NotNil(t, captured)
	assert.Nil(t, captured.ConditionExpression)
}

func TestDBReserveConditionFailureIsQuotaExceeded(t *testing.T) {
	fake := &fakeDynamo{
		updateItem: func(in *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
			return nil, &ddbtypes.ConditionalCheckFailedException{}
		},
	}
	db := NewDB(fake, "users-table")

	err := db.Reserve(context.Background(), "u1", KindDocument, 1)
	require.ErrorIs(t, err, types.ErrQuotaExceeded)
}

func TestDBTierMissingProfileDefaultsToFree(t *testing.T) {
	fake := &fakeDynamo{
		getItem: func(in *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
			assert.Equal(t, "PROFILE#u1", stringAttr(in.Key, "SK"))
			return &dynamodb.GetItemOutput{}, nil
		},
	}
	db := NewDB(fake, "users-table")

	tier, err := db.Tier(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, types.TierFree, tier)
}

func TestDBTransportErrorsWrapUpstream(t *testing.T) {
	transportErr := errors.New("connection refused")
	fake := &fakeDynamo{
		getItem: func(in *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
			return nil, transportErr
		},
	}
	db := NewDB(fake, "users-table")

	_, err := db.QRs().Get(context.Background(), "u1", "qr-1")
	require.ErrorIs(t, err, types.ErrUpstream)
	require.ErrorIs(t, err, transportErr)
}
